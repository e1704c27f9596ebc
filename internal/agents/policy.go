package agents

import (
	"math/rand"

	"github.com/Bbeierle12/ecosysx/internal/config"
)

// Observation is the discretized state key for the movement policy.
// It is comparable and used directly as the action-value table key.
type Observation struct {
	EnergyBucket int // 0–4 over [0,100]
	Neighbors    int // Clamped to 0–3
	Infected     int // Clamped to 0–3
	NearResource bool
	Status       Status
}

// MoveAction is one entry of the fixed discrete action set: a direction, an
// intensity scale, and an avoidance flag that steers away from nearby
// infected agents instead of following the direction.
type MoveAction struct {
	DX        float64
	DY        float64
	Intensity float64
	Avoid     bool
}

// moveActions is the full action set. Index order is fixed: the table layout
// depends on it.
var moveActions = [...]MoveAction{
	{0, 0, 0, false},             // Hold position
	{0, 1, 1, false},             // N
	{0, -1, 1, false},            // S
	{1, 0, 1, false},             // E
	{-1, 0, 1, false},            // W
	{0.707, 0.707, 0.7, false},   // NE, gentler
	{-0.707, 0.707, 0.7, false},  // NW
	{0.707, -0.707, 0.7, false},  // SE
	{-0.707, -0.707, 0.7, false}, // SW
	{0, 0, 1, true},              // Flee infected
}

// NumActions is the size of the action set.
const NumActions = len(moveActions)

// Policy is a per-agent tabular action-value learner. Action selection is
// ε-greedy; values update toward reward + γ·max over the successor state.
// No convergence is promised — determinism under a seeded source is.
type Policy struct {
	cfg config.LearningConfig

	q map[Observation]*[NumActions]float64

	hasLast    bool
	lastObs    Observation
	lastAction int
}

// NewPolicy creates an empty policy table.
func NewPolicy(cfg config.LearningConfig) *Policy {
	return &Policy{
		cfg: cfg,
		q:   make(map[Observation]*[NumActions]float64),
	}
}

// ObserveState builds the discretized observation for an agent.
func ObserveState(a *Agent, neighbors, infected int, nearResource bool) Observation {
	bucket := int(a.Energy / (MaxEnergy / 5))
	if bucket > 4 {
		bucket = 4
	}
	if neighbors > 3 {
		neighbors = 3
	}
	if infected > 3 {
		infected = 3
	}
	return Observation{
		EnergyBucket: bucket,
		Neighbors:    neighbors,
		Infected:     infected,
		NearResource: nearResource,
		Status:       a.Status,
	}
}

// Decide applies the learning update for the previous (state, action) pair
// using reward, then selects the next action for obs ε-greedily.
func (p *Policy) Decide(obs Observation, reward float64, rng *rand.Rand) MoveAction {
	next := p.row(obs)

	if p.hasLast {
		row := p.row(p.lastObs)
		target := reward + p.cfg.Gamma*maxValue(next)
		row[p.lastAction] += p.cfg.Alpha * (target - row[p.lastAction])
	}

	var action int
	if rng.Float64() < p.cfg.Epsilon {
		action = rng.Intn(NumActions)
	} else {
		action = argmax(next)
	}

	p.hasLast = true
	p.lastObs = obs
	p.lastAction = action
	return moveActions[action]
}

// Value returns the learned value for a (state, action) pair. Zero for
// unvisited states.
func (p *Policy) Value(obs Observation, action int) float64 {
	if row, ok := p.q[obs]; ok {
		return row[action]
	}
	return 0
}

// StatesVisited returns the number of distinct states in the table.
func (p *Policy) StatesVisited() int {
	return len(p.q)
}

func (p *Policy) row(obs Observation) *[NumActions]float64 {
	row, ok := p.q[obs]
	if !ok {
		row = &[NumActions]float64{}
		p.q[obs] = row
	}
	return row
}

func maxValue(row *[NumActions]float64) float64 {
	best := row[0]
	for _, v := range row[1:] {
		if v > best {
			best = v
		}
	}
	return best
}

func argmax(row *[NumActions]float64) int {
	best := 0
	for i := 1; i < NumActions; i++ {
		if row[i] > row[best] {
			best = i
		}
	}
	return best
}
