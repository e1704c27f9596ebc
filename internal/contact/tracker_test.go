package contact

import (
	"math"
	"math/rand"
	"testing"

	"github.com/Bbeierle12/ecosysx/internal/agents"
	"github.com/Bbeierle12/ecosysx/internal/config"
	"github.com/Bbeierle12/ecosysx/internal/env"
	"github.com/Bbeierle12/ecosysx/internal/simtime"
	"github.com/Bbeierle12/ecosysx/internal/spatial"
)

func makeAgent(id int, x, y float64, status agents.Status) *agents.Agent {
	return &agents.Agent{ID: id, Position: env.Position{X: x, Y: y}, Status: status}
}

func fillGrid(g *spatial.Grid, list []*agents.Agent) {
	g.Reset()
	for i, a := range list {
		g.Insert(i, a.Position.X, a.Position.Y)
	}
}

func TestEvaluateReportsPairsOnce(t *testing.T) {
	cfg := config.Default().Analytics
	tracker := NewTracker(cfg, simtime.Default())
	grid := spatial.NewGrid(100, cfg.ContactRadius)

	list := []*agents.Agent{
		makeAgent(10, 50, 50, agents.Susceptible),
		makeAgent(20, 50.5, 50, agents.Susceptible),
		makeAgent(30, 90, 90, agents.Susceptible), // Out of range
	}
	list[1].Kind = agents.KindCausal
	fillGrid(grid, list)

	events, transmissions := tracker.Evaluate(list, grid, 5, rand.New(rand.NewSource(1)))

	if len(events) != 1 {
		t.Fatalf("events = %d, want exactly 1 for one close pair", len(events))
	}
	ev := events[0]
	if ev.A != 10 || ev.B != 20 || ev.Tick != 5 {
		t.Errorf("event = %+v, want pair (10,20) at tick 5", ev)
	}
	if ev.KindA != agents.KindBase || ev.KindB != agents.KindCausal {
		t.Errorf("event kinds = %v/%v, want the kinds at contact time", ev.KindA, ev.KindB)
	}
	if math.Abs(ev.Distance-0.5) > 1e-9 {
		t.Errorf("distance = %v, want 0.5", ev.Distance)
	}
	if len(transmissions) != 0 {
		t.Errorf("transmissions between susceptibles = %d, want 0", len(transmissions))
	}
}

func TestEvaluateOnlyInfectsSusceptible(t *testing.T) {
	cfg := config.Default().Analytics
	cfg.ContactRatePerDay = 1e9 // Certain per-step transmission
	tracker := NewTracker(cfg, simtime.Default())
	grid := spatial.NewGrid(100, cfg.ContactRadius)

	list := []*agents.Agent{
		makeAgent(1, 50, 50, agents.Infected),
		makeAgent(2, 50.5, 50, agents.Susceptible),
		makeAgent(3, 50, 50.5, agents.Recovered),
	}
	fillGrid(grid, list)

	_, transmissions := tracker.Evaluate(list, grid, 1, rand.New(rand.NewSource(2)))

	if len(transmissions) != 1 {
		t.Fatalf("transmissions = %d, want 1 (recovered agent is immune)", len(transmissions))
	}
	tr := transmissions[0]
	if tr.Source != 1 || tr.Target != 2 {
		t.Errorf("transmission = %+v, want 1 -> 2", tr)
	}
	if list[1].Status != agents.Infected {
		t.Error("target not flipped to infected")
	}
	if list[2].Status != agents.Recovered {
		t.Error("recovered bystander changed status")
	}
}

func TestEvaluateZeroRateNeverTransmits(t *testing.T) {
	cfg := config.Default().Analytics
	cfg.ContactRatePerDay = 0
	tracker := NewTracker(cfg, simtime.Default())
	grid := spatial.NewGrid(100, cfg.ContactRadius)

	list := []*agents.Agent{
		makeAgent(1, 50, 50, agents.Infected),
		makeAgent(2, 50.5, 50, agents.Susceptible),
	}
	fillGrid(grid, list)

	for tick := 0; tick < 1000; tick++ {
		if _, tr := tracker.Evaluate(list, grid, tick, rand.New(rand.NewSource(int64(tick)))); len(tr) != 0 {
			t.Fatalf("tick %d: transmission at zero rate", tick)
		}
	}
}

func TestTransmissionRateMatchesHazard(t *testing.T) {
	cfg := config.Default().Analytics
	cfg.ContactRatePerDay = 0.1
	tc := simtime.Default()
	tracker := NewTracker(cfg, tc)
	grid := spatial.NewGrid(100, cfg.ContactRadius)
	rng := rand.New(rand.NewSource(7))

	const trials = 20000
	hits := 0
	for i := 0; i < trials; i++ {
		list := []*agents.Agent{
			makeAgent(1, 50, 50, agents.Infected),
			makeAgent(2, 50.5, 50, agents.Susceptible),
		}
		fillGrid(grid, list)
		if _, tr := tracker.Evaluate(list, grid, i, rng); len(tr) == 1 {
			hits++
		}
	}

	p := tc.StepHazard(cfg.ContactRatePerDay)
	mean := float64(hits) / trials
	se := math.Sqrt(p * (1 - p) / trials)
	if math.Abs(mean-p) > 4*se {
		t.Errorf("observed transmission rate %v, expected %v (±%v)", mean, p, 4*se)
	}
}
