// Package agents provides the agent data model, the per-tick state machine,
// the tabular movement policy, and the social layer carried by causal agents.
package agents

import (
	"github.com/Bbeierle12/ecosysx/internal/env"
)

// Status is the SIR infection state. Transitions are monotonic:
// Susceptible → Infected → Recovered, never backward.
type Status uint8

const (
	Susceptible Status = iota
	Infected
	Recovered
)

// String returns the status name for logs and exports.
func (s Status) String() string {
	switch s {
	case Susceptible:
		return "susceptible"
	case Infected:
		return "infected"
	case Recovered:
		return "recovered"
	default:
		return "unknown"
	}
}

// Kind discriminates the agent variants. Causal agents carry the Social
// extension and route movement through the planning layer.
type Kind uint8

const (
	KindBase Kind = iota
	KindCausal
)

// String returns the kind name for logs and exports.
func (k Kind) String() string {
	if k == KindCausal {
		return "causal"
	}
	return "base"
}

// Velocity is the planar movement vector.
type Velocity struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

// Energy bounds. Every energy mutation clamps into this range.
const (
	MinEnergy = 0.0
	MaxEnergy = 100.0
)

// Agent is an individual in the population. The engine exclusively owns the
// live agent collection; each agent exclusively owns its policy and social
// sub-objects.
type Agent struct {
	ID   int  `json:"id"`
	Kind Kind `json:"kind"`

	Position env.Position `json:"position"`
	Velocity Velocity     `json:"velocity"`

	Genotype Genotype `json:"genotype"`

	BirthStep int     `json:"birth_step"` // Tick of creation, immutable
	Energy    float64 `json:"energy"`     // [0,100]
	Status    Status  `json:"status"`

	InfectionTimer       int `json:"infection_timer"`       // Ticks since infection onset
	ReproductionCooldown int `json:"reproduction_cooldown"` // Ticks until next reproduction allowed

	Policy *Policy `json:"-"`
	Social *Social `json:"-"` // nil for base agents
}

// Age returns the agent's age in ticks. Age is derived, never stored.
func (a *Agent) Age(tick int) int {
	return tick - a.BirthStep
}

// IsCausal reports whether the agent carries the social layer.
func (a *Agent) IsCausal() bool {
	return a.Kind == KindCausal && a.Social != nil
}

// AddEnergy applies a delta and clamps into [MinEnergy, MaxEnergy].
func (a *Agent) AddEnergy(delta float64) {
	a.Energy += delta
	if a.Energy < MinEnergy {
		a.Energy = MinEnergy
	}
	if a.Energy > MaxEnergy {
		a.Energy = MaxEnergy
	}
}

// Infect moves a susceptible agent to Infected and resets its timer.
// No-op for agents already past Susceptible, preserving S→I→R monotonicity.
func (a *Agent) Infect() bool {
	if a.Status != Susceptible {
		return false
	}
	a.Status = Infected
	a.InfectionTimer = 0
	return true
}

// Outcome is the result of one agent update.
type Outcome uint8

const (
	Continue Outcome = iota
	Die
	Reproduce
)

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
