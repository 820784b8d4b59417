package model

// Prediction is the classification code returned by the lookup endpoint
// in the prediction_result field.
type Prediction int

const (
	// PredictionReliable marks a URL the classifier considers legitimate.
	PredictionReliable Prediction = -1

	// PredictionSuspicious marks a URL with some phishing indicators.
	PredictionSuspicious Prediction = 0

	// PredictionNotReliable marks a URL the classifier considers phishing.
	PredictionNotReliable Prediction = 1
)

// Labels shown to the user for each prediction code.
const (
	LabelNotReliable = "not reliable site"
	LabelSuspicious  = "suspicious site"
	LabelReliable    = "reliable site"
	LabelUnknown     = "unknown"
)

// Label returns the human-readable classification.
// Every value outside {-1, 0, 1} maps to LabelUnknown.
func (p Prediction) Label() string {
	switch p {
	case PredictionNotReliable:
		return LabelNotReliable
	case PredictionSuspicious:
		return LabelSuspicious
	case PredictionReliable:
		return LabelReliable
	default:
		return LabelUnknown
	}
}

// Known reports whether p is one of the three codes the classifier emits.
func (p Prediction) Known() bool {
	return p == PredictionReliable || p == PredictionSuspicious || p == PredictionNotReliable
}

// ClassifyLabel maps a raw prediction_result value to its label.
func ClassifyLabel(predictionResult int) string {
	return Prediction(predictionResult).Label()
}
