package simtime

import (
	"math"
	"testing"
)

func TestHazardProbabilityDegenerateInputs(t *testing.T) {
	tests := []struct {
		name      string
		rate      float64
		stepHours float64
	}{
		{"zero rate", 0, 1},
		{"negative rate", -0.5, 1},
		{"zero hours", 0.1, 0},
		{"negative hours", 0.1, -2},
		{"NaN rate", math.NaN(), 1},
		{"+Inf rate", math.Inf(1), 1},
		{"-Inf rate", math.Inf(-1), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HazardProbability(tt.rate, tt.stepHours); got != 0 {
				t.Errorf("HazardProbability(%v, %v) = %v, want 0", tt.rate, tt.stepHours, got)
			}
		})
	}
}

func TestHazardProbabilityMonotonic(t *testing.T) {
	// Strictly increasing in rate for fixed exposure.
	prev := 0.0
	for _, rate := range []float64{0.01, 0.1, 0.5, 1, 5, 20} {
		p := HazardProbability(rate, 1)
		if p <= prev {
			t.Errorf("not increasing in rate: p(%v)=%v <= %v", rate, p, prev)
		}
		prev = p
	}

	// Strictly increasing in exposure for fixed rate.
	prev = 0.0
	for _, hours := range []float64{0.5, 1, 2, 6, 24, 96} {
		p := HazardProbability(0.2, hours)
		if p <= prev {
			t.Errorf("not increasing in hours: p(%v)=%v <= %v", hours, p, prev)
		}
		prev = p
	}
}

func TestHazardProbabilityAsymptote(t *testing.T) {
	p := HazardProbability(1e6, 1)
	if p <= 0.999999 || p > 1 {
		t.Errorf("large rate should approach 1, got %v", p)
	}
	// Known value: rate 24/day over one hour is 1-e^-1.
	want := 1 - math.Exp(-1)
	if got := HazardProbability(24, 1); math.Abs(got-want) > 1e-12 {
		t.Errorf("HazardProbability(24, 1) = %v, want %v", got, want)
	}
}

func TestRoundTripConversions(t *testing.T) {
	c := Default()

	for _, n := range []int{0, 1, 7, 24, 1000, 86400} {
		if got := c.HoursToSteps(c.StepsToHours(n)); got != n {
			t.Errorf("HoursToSteps(StepsToHours(%d)) = %d", n, got)
		}
	}

	if got := c.DaysToSteps(1); got != 24 {
		t.Errorf("DaysToSteps(1) = %d, want 24", got)
	}
	if got := c.StepsToDays(48); got != 2 {
		t.Errorf("StepsToDays(48) = %v, want 2", got)
	}
}

func TestStepHazardMatchesFreeFunction(t *testing.T) {
	c := Config{StepHours: 3}
	if got, want := c.StepHazard(0.4), HazardProbability(0.4, 3); got != want {
		t.Errorf("StepHazard = %v, want %v", got, want)
	}
}
