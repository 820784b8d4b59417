package model

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// NotAvailable is rendered in place of a feature list the endpoint omitted.
const NotAvailable = "N/A"

// Status box texts derived from the VPN flag.
const (
	StatusDanger = "Danger"
	StatusSafe   = "Safe"
)

// LookupResult is the decoded response of POST /api/url/detailed.
// It is never modified after decoding; a new lookup produces a new value.
//
// A nil feature list means the endpoint omitted the field (or sent null),
// while an empty, non-nil list means the field was present with no entries.
// The two render differently, so the distinction survives JSON round trips.
type LookupResult struct {
	// URL is the URL the endpoint classified.
	URL string `json:"url"`

	// PredictionResult is the raw classifier output (-1, 0 or 1).
	PredictionResult int `json:"prediction_result"`

	// PredictionProb is the classifier's phishing probability.
	PredictionProb float64 `json:"prediction_prob"`

	// IPAddress is the resolved address of the URL's host.
	IPAddress string `json:"ip_address"`

	// Country and Region locate IPAddress.
	Country string `json:"country"`
	Region  string `json:"region"`

	// ISPName is the network operator announcing IPAddress.
	ISPName string `json:"isp_name"`

	// IsVPN is true when IPAddress belongs to a VPN or proxy provider.
	IsVPN bool `json:"is_vpn"`

	// URLBasedFeatures are reasons derived from the URL string itself.
	URLBasedFeatures []string `json:"url_based_feature_list"`

	// ContentBasedFeatures are reasons derived from the page content.
	ContentBasedFeatures []string `json:"content_based_feature_list"`

	// DomainBasedFeatures are reasons derived from domain metadata.
	DomainBasedFeatures []string `json:"domain_based_feature_list"`
}

// wireResult mirrors LookupResult with pointers for the fields whose absence
// must be detected during decoding.
type wireResult struct {
	URL              *string  `json:"url"`
	PredictionResult *float64 `json:"prediction_result"`
	PredictionProb   float64  `json:"prediction_prob"`
	IPAddress        string   `json:"ip_address"`
	Country          string   `json:"country"`
	Region           string   `json:"region"`
	ISPName          string   `json:"isp_name"`
	IsVPN            bool     `json:"is_vpn"`

	URLBasedFeatures     []string `json:"url_based_feature_list"`
	ContentBasedFeatures []string `json:"content_based_feature_list"`
	DomainBasedFeatures  []string `json:"domain_based_feature_list"`
}

// DecodeLookupResult parses a response body into a LookupResult.
// Unknown fields are ignored. The body must be a JSON object that carries
// url and prediction_result, and every known field must have the expected
// JSON type. Any violation is reported as an error wrapping ErrDecode.
func DecodeLookupResult(data []byte) (*LookupResult, error) {
	trimmed := strings.TrimSpace(string(data))
	if !strings.HasPrefix(trimmed, "{") {
		return nil, fmt.Errorf("%w: body is not a JSON object", ErrDecode)
	}

	var w wireResult
	if err := json.Unmarshal([]byte(trimmed), &w); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	if w.URL == nil {
		return nil, fmt.Errorf("%w: missing field %q", ErrDecode, "url")
	}
	if w.PredictionResult == nil {
		return nil, fmt.Errorf("%w: missing field %q", ErrDecode, "prediction_result")
	}
	code, ok := integral(*w.PredictionResult)
	if !ok {
		return nil, fmt.Errorf("%w: prediction_result %v is not an integer", ErrDecode, *w.PredictionResult)
	}

	return &LookupResult{
		URL:                  *w.URL,
		PredictionResult:     code,
		PredictionProb:       w.PredictionProb,
		IPAddress:            w.IPAddress,
		Country:              w.Country,
		Region:               w.Region,
		ISPName:              w.ISPName,
		IsVPN:                w.IsVPN,
		URLBasedFeatures:     w.URLBasedFeatures,
		ContentBasedFeatures: w.ContentBasedFeatures,
		DomainBasedFeatures:  w.DomainBasedFeatures,
	}, nil
}

// Prediction returns the typed classification code.
func (r *LookupResult) Prediction() Prediction {
	return Prediction(r.PredictionResult)
}

// Label returns the classification label for the result.
func (r *LookupResult) Label() string {
	return r.Prediction().Label()
}

// Status returns the IP score status box text.
func (r *LookupResult) Status() string {
	if r.IsVPN {
		return StatusDanger
	}
	return StatusSafe
}

// VPNUsage returns "Yes" or "No".
func (r *LookupResult) VPNUsage() string {
	if r.IsVPN {
		return "Yes"
	}
	return "No"
}

// FeatureLines returns the three reason lines in display order:
// URL-based, content-based, domain-based.
func (r *LookupResult) FeatureLines() []string {
	return []string{
		FeatureLine(r.URLBasedFeatures),
		FeatureLine(r.ContentBasedFeatures),
		FeatureLine(r.DomainBasedFeatures),
	}
}

// FeatureLine joins a feature list with ", ".
// A nil list renders as NotAvailable; an empty list renders as "".
func FeatureLine(features []string) string {
	if features == nil {
		return NotAvailable
	}
	return strings.Join(features, ", ")
}

// integral returns f as an int when it has no fractional part and fits in
// 32 bits. Services serializing through floats send 1.0 for 1.
func integral(f float64) (int, bool) {
	if f != math.Trunc(f) || f < math.MinInt32 || f > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}
