// Package contact detects close-proximity encounters between agents and
// carries the contact-mediated transmission channel. Detection uses the
// shared spatial grid; every encounter is reported so analytics can feed
// the contact matrix, while the tracker itself owns the infection rolls.
package contact

import (
	"math/rand"

	"github.com/Bbeierle12/ecosysx/internal/agents"
	"github.com/Bbeierle12/ecosysx/internal/config"
	"github.com/Bbeierle12/ecosysx/internal/simtime"
	"github.com/Bbeierle12/ecosysx/internal/spatial"
)

// Event is one detected encounter within the contact radius. IDs are
// ordered so the same pair always reports the same way around. Kinds are
// captured at detection time: a party may be removed from the population
// before the event is consumed.
type Event struct {
	A, B         int
	KindA, KindB agents.Kind
	Tick         int
	Distance     float64
}

// Transmission records an infection passed during an encounter.
type Transmission struct {
	Source, Target int
	Tick           int
}

// Tracker evaluates encounters for one tick. It reuses its scratch slices
// across calls; a Tracker serves a single engine goroutine.
type Tracker struct {
	cfg config.AnalyticsConfig
	tc  simtime.Config

	scratch []spatial.Neighbor
}

// NewTracker builds a tracker with the configured contact radius and
// contact-hazard rate.
func NewTracker(cfg config.AnalyticsConfig, tc simtime.Config) *Tracker {
	return &Tracker{cfg: cfg, tc: tc}
}

// Evaluate scans the population for encounters and runs one transmission
// trial per susceptible-infected pair. The grid must already hold the
// current positions, keyed by index into list. Evaluate is the only place
// outside the agent state machine that flips a susceptible to infected.
func (t *Tracker) Evaluate(list []*agents.Agent, grid *spatial.Grid, tick int, rng *rand.Rand) ([]Event, []Transmission) {
	var events []Event
	var transmissions []Transmission

	p := t.tc.StepHazard(t.cfg.ContactRatePerDay)

	for i, a := range list {
		t.scratch = grid.NeighborsInto(t.scratch[:0], a.Position.X, a.Position.Y, t.cfg.ContactRadius, i)
		for _, n := range t.scratch {
			// Each unordered pair once.
			if n.ID <= i {
				continue
			}
			b := list[n.ID]
			events = append(events, Event{
				A: a.ID, B: b.ID,
				KindA: a.Kind, KindB: b.Kind,
				Tick: tick, Distance: n.Distance(),
			})

			source, target := a, b
			if source.Status != agents.Infected {
				source, target = b, a
			}
			if source.Status != agents.Infected || target.Status != agents.Susceptible {
				continue
			}
			if rng.Float64() < p && target.Infect() {
				transmissions = append(transmissions, Transmission{
					Source: source.ID, Target: target.ID, Tick: tick,
				})
			}
		}
	}
	return events, transmissions
}
