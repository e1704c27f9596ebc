// Deliberative planning for causal agents. The planner scores a small set
// of behavior archetypes against a situation snapshot and returns the best
// one with a reasoning trace. Scoring is pure and deterministic: the same
// snapshot always yields the same decision.
package reason

import (
	"fmt"
	"math"

	"github.com/Bbeierle12/ecosysx/internal/env"
)

// Behavior archetype labels carried on decisions and surfaced in analytics.
const (
	ArchetypeAvoidInfection = "avoid_infection"
	ArchetypeSeekFood       = "seek_food"
	ArchetypeAssistAlly     = "assist_ally"
	ArchetypeReproduce      = "reproduce"
	ArchetypeExplore        = "explore"
)

// Snapshot is the situational data the planner needs about one agent. The
// engine builds it from the tick snapshot; the planner never touches live
// agent state.
type Snapshot struct {
	AgentID int
	Tick    int

	Energy    float64
	MaxEnergy float64
	Infected  bool
	AgeFrac   float64 // Age over lifespan, [0,1]
	CanBreed  bool    // Cooldown clear and above the energy threshold
	Position  env.Position
	WorldSize float64

	InfectedNearby int
	InfectedAt     env.Position // Centroid, meaningful when InfectedNearby > 0

	HasFood   bool
	FoodAt    env.Position
	FoodValue float64

	AllyInNeed bool
	AllyAt     env.Position

	InDangerZone bool
}

// Decision is one planned behavior: an archetype label, an optional spatial
// target, and a confidence the movement layer uses as intensity. The
// reasoning trace exists for observability only.
type Decision struct {
	AgentID    int          `json:"agent_id"`
	Tick       int          `json:"tick"`
	Archetype  string       `json:"archetype"`
	Target     env.Position `json:"target"`
	HasTarget  bool         `json:"has_target"`
	Confidence float64      `json:"confidence"`
	Reasoning  string       `json:"reasoning"`
}

// Plan scores each archetype for the snapshot and returns the winner.
// Ties break in fixed priority order: infection avoidance first, then
// food, allies, reproduction, exploration.
func Plan(s Snapshot) Decision {
	energyFrac := 0.0
	if s.MaxEnergy > 0 {
		energyFrac = s.Energy / s.MaxEnergy
	}

	type candidate struct {
		archetype string
		score     float64
	}
	candidates := []candidate{
		{ArchetypeAvoidInfection, scoreAvoidInfection(s)},
		{ArchetypeSeekFood, scoreSeekFood(s, energyFrac)},
		{ArchetypeAssistAlly, scoreAssistAlly(s, energyFrac)},
		{ArchetypeReproduce, scoreReproduce(s, energyFrac)},
		{ArchetypeExplore, 0.1}, // Floor: always a valid fallback
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.score > best.score {
			best = c
		}
	}

	d := Decision{
		AgentID:    s.AgentID,
		Tick:       s.Tick,
		Archetype:  best.archetype,
		Confidence: clamp01(best.score),
	}

	switch best.archetype {
	case ArchetypeAvoidInfection:
		// Target the point opposite the infected centroid.
		d.Target = awayFrom(s.Position, s.InfectedAt, s.WorldSize)
		d.HasTarget = true
		d.Reasoning = fmt.Sprintf("%d infected nearby, retreating", s.InfectedNearby)
	case ArchetypeSeekFood:
		d.Target = s.FoodAt
		d.HasTarget = true
		d.Reasoning = fmt.Sprintf("energy %.0f, heading to food worth %.0f", s.Energy, s.FoodValue)
	case ArchetypeAssistAlly:
		d.Target = s.AllyAt
		d.HasTarget = true
		d.Reasoning = "ally called for help"
	case ArchetypeReproduce:
		d.Reasoning = fmt.Sprintf("energy %.0f, conditions favor reproduction", s.Energy)
	default:
		d.Reasoning = "nothing pressing, exploring"
	}
	return d
}

func scoreAvoidInfection(s Snapshot) float64 {
	if s.Infected || s.InfectedNearby == 0 {
		return 0
	}
	score := 0.4 + 0.15*float64(s.InfectedNearby)
	if s.InDangerZone {
		score += 0.2
	}
	return score
}

func scoreSeekFood(s Snapshot, energyFrac float64) float64 {
	if !s.HasFood {
		return 0
	}
	// Hunger dominates: an agent near starvation outranks everything but a
	// wall of infected neighbors.
	return (1 - energyFrac) * 0.9
}

func scoreAssistAlly(s Snapshot, energyFrac float64) float64 {
	if !s.AllyInNeed || energyFrac < 0.5 {
		return 0
	}
	return 0.35
}

func scoreReproduce(s Snapshot, energyFrac float64) float64 {
	if !s.CanBreed || s.AgeFrac > 0.8 {
		return 0
	}
	return energyFrac * 0.45
}

// awayFrom projects a retreat target on the far side of pos from threat,
// clamped to the world.
func awayFrom(pos, threat env.Position, size float64) env.Position {
	dx, dy := pos.X-threat.X, pos.Y-threat.Y
	if dx == 0 && dy == 0 {
		dx = 1
	}
	const retreat = 10.0
	d := dist(dx, dy)
	return env.Position{
		X: clamp(pos.X+dx/d*retreat, 0, size),
		Y: clamp(pos.Y+dy/d*retreat, 0, size),
	}
}

func dist(x, y float64) float64 {
	d := math.Sqrt(x*x + y*y)
	if d == 0 {
		return 1
	}
	return d
}

func clamp01(v float64) float64 { return clamp(v, 0, 1) }

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
