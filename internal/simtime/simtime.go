// Package simtime maps the discrete tick counter onto continuous simulated
// time and converts per-day hazard rates into per-step probabilities.
// Every rate-driven transition in the engine routes through this package so
// behavior stays invariant if the step duration is ever reconfigured.
package simtime

import "math"

// HoursPerDay is fixed for the simulated calendar.
const HoursPerDay = 24.0

// Config is the time mapping, constructed once at startup and passed by
// handle to every component that models rates. Never mutated.
type Config struct {
	StepHours float64 // Simulated hours per tick
}

// Default returns the standard mapping: one tick is one simulated hour.
func Default() Config {
	return Config{StepHours: 1.0}
}

// StepsToHours converts a tick count to simulated hours.
func (c Config) StepsToHours(steps int) float64 {
	return float64(steps) * c.StepHours
}

// StepsToDays converts a tick count to simulated days.
func (c Config) StepsToDays(steps int) float64 {
	return c.StepsToHours(steps) / HoursPerDay
}

// HoursToSteps converts simulated hours to a whole tick count, rounding to
// the nearest step.
func (c Config) HoursToSteps(hours float64) int {
	if c.StepHours <= 0 {
		return 0
	}
	return int(math.Round(hours / c.StepHours))
}

// DaysToSteps converts simulated days to a whole tick count.
func (c Config) DaysToSteps(days float64) int {
	return c.HoursToSteps(days * HoursPerDay)
}

// HazardProbability converts a continuous per-day hazard rate into the
// probability that the event fires at least once during stepHours of
// exposure: 1 - exp(-rate * stepHours / 24).
//
// Returns 0 for rates that are non-positive or non-finite and for
// non-positive exposure, so callers never need to guard their inputs.
func HazardProbability(ratePerDay, stepHours float64) float64 {
	if ratePerDay <= 0 || stepHours <= 0 {
		return 0
	}
	if math.IsNaN(ratePerDay) || math.IsInf(ratePerDay, 0) {
		return 0
	}
	return 1 - math.Exp(-ratePerDay*stepHours/HoursPerDay)
}

// StepHazard is a convenience for one step of exposure under c.
func (c Config) StepHazard(ratePerDay float64) float64 {
	return HazardProbability(ratePerDay, c.StepHours)
}
