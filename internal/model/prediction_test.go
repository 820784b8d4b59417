package model

import (
	"math"
	"testing"
)

// TestClassifyLabel tests the prediction code to label mapping.
func TestClassifyLabel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    int
		expected string
	}{
		{"1 is not reliable", 1, "not reliable site"},
		{"0 is suspicious", 0, "suspicious site"},
		{"-1 is reliable", -1, "reliable site"},
		{"7 is unknown", 7, "unknown"},
		{"2 is unknown", 2, "unknown"},
		{"-2 is unknown", -2, "unknown"},
		{"max int is unknown", math.MaxInt, "unknown"},
		{"min int is unknown", math.MinInt, "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ClassifyLabel(tt.input); got != tt.expected {
				t.Errorf("ClassifyLabel(%d) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}

// TestClassifyLabelTotal checks that every value outside {-1, 0, 1} maps to unknown.
func TestClassifyLabelTotal(t *testing.T) {
	t.Parallel()

	for n := -1000; n <= 1000; n++ {
		if n >= -1 && n <= 1 {
			continue
		}
		if got := ClassifyLabel(n); got != LabelUnknown {
			t.Fatalf("ClassifyLabel(%d) = %q, expected %q", n, got, LabelUnknown)
		}
	}
}

// TestPredictionKnown tests the Known method.
func TestPredictionKnown(t *testing.T) {
	t.Parallel()

	for _, p := range []Prediction{PredictionReliable, PredictionSuspicious, PredictionNotReliable} {
		if !p.Known() {
			t.Errorf("expected %d to be known", p)
		}
	}
	if Prediction(3).Known() {
		t.Error("expected 3 to be unknown")
	}
}
