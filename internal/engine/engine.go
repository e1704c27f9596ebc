// Package engine owns the simulation loop: it builds the world, sweeps the
// population every tick, runs the social and planning phases, applies
// births and deaths, and feeds the analytics recorder. All mutation happens
// on the loop goroutine; other goroutines interact through the control
// methods and the event stream.
package engine

import (
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/Bbeierle12/ecosysx/internal/agents"
	"github.com/Bbeierle12/ecosysx/internal/analytics"
	"github.com/Bbeierle12/ecosysx/internal/config"
	"github.com/Bbeierle12/ecosysx/internal/contact"
	"github.com/Bbeierle12/ecosysx/internal/env"
	"github.com/Bbeierle12/ecosysx/internal/reason"
	"github.com/Bbeierle12/ecosysx/internal/simtime"
	"github.com/Bbeierle12/ecosysx/internal/spatial"
)

const eventBuffer = 256

// Engine holds the complete simulation state and wires the systems
// together.
type Engine struct {
	mu sync.Mutex

	cfg *config.Config
	tc  simtime.Config
	rng *rand.Rand

	world    env.Environment
	agents   []*agents.Agent
	agentIdx map[int]*agents.Agent
	nextID   int
	tick     int

	grid       *spatial.Grid
	tracker    *contact.Tracker
	recorder   *analytics.Recorder
	dispatcher *reason.Dispatcher

	events        chan Event
	eventsDropped int

	speed    float64
	interval time.Duration
	running  bool
	halted   bool // Extinction / step-limit latch; cleared only by Reset

	logger *slog.Logger

	neighborScratch []spatial.Neighbor
}

// New builds an engine with a fresh world and seed population. The logger
// may be nil.
func New(cfg *config.Config, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	tc := simtime.Default()
	e := &Engine{
		cfg:      cfg,
		tc:       tc,
		rng:      rand.New(rand.NewSource(cfg.Simulation.Seed)),
		grid:     spatial.NewGrid(cfg.Simulation.WorldSize, cfg.Analytics.ContactRadius*2),
		tracker:  contact.NewTracker(cfg.Analytics, tc),
		events:   make(chan Event, eventBuffer),
		speed:    1.0,
		interval: 50 * time.Millisecond,
		logger:   logger,
	}
	e.recorder = analytics.NewRecorder(cfg.Analytics, tc, rand.New(rand.NewSource(cfg.Simulation.Seed+1)))
	e.dispatcher = reason.NewDispatcher(2, cfg.Simulation.InitialPopulation, nil, logger)
	e.world = env.NewField(cfg.Environment, cfg.Simulation.WorldSize, cfg.Simulation.Seed, tc)
	e.seedPopulation()
	return e
}

// seedPopulation creates the initial agents: a causal fraction of the
// configured population, with a slice of them already infected partway
// through their course.
func (e *Engine) seedPopulation() {
	e.agents = nil
	e.agentIdx = make(map[int]*agents.Agent)
	e.nextID = 1

	n := e.cfg.Simulation.InitialPopulation
	causal := int(float64(n) * e.cfg.Simulation.CausalFraction)
	size := e.cfg.Simulation.WorldSize
	recoveryTicks := e.tc.DaysToSteps(e.cfg.Disease.RecoveryDays)

	for i := 0; i < n; i++ {
		kind := agents.KindBase
		if i < causal {
			kind = agents.KindCausal
		}
		pos := env.Position{X: e.rng.Float64() * size, Y: e.rng.Float64() * size}
		a := agents.NewAgent(e.nextID, kind, pos, 0, e.rng, e.cfg)
		e.nextID++

		if e.rng.Float64() < e.cfg.Simulation.InitialInfectionRate {
			a.Infect()
			// Seeded cases are partway through, not all freshly exposed.
			if recoveryTicks > 0 {
				a.InfectionTimer = e.rng.Intn(recoveryTicks)
			}
		}
		e.agents = append(e.agents, a)
		e.agentIdx[a.ID] = a
	}

	e.logger.Info("population seeded",
		"total", len(e.agents),
		"causal", causal,
		"infected", analytics.ComputeStats(e.agents).Infected,
	)
}

// Run drives the loop until Stop. Each tick sleeps out the remainder of
// the interval scaled by speed; speed 0 pauses.
func (e *Engine) Run() {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return
	}
	e.running = true
	e.mu.Unlock()

	e.logger.Info("engine started", "tick", e.Tick(), "speed", e.Speed())

	for {
		e.mu.Lock()
		if !e.running {
			e.mu.Unlock()
			break
		}
		speed := e.speed
		halted := e.halted
		e.mu.Unlock()

		if speed <= 0 || halted {
			time.Sleep(100 * time.Millisecond)
			continue
		}

		start := time.Now()
		e.Step()

		target := time.Duration(float64(e.interval) / speed)
		if elapsed := time.Since(start); elapsed < target {
			time.Sleep(target - elapsed)
		}
	}

	e.logger.Info("engine stopped", "tick", e.Tick())
}

// Stop halts the loop. The engine can be stepped or restarted afterwards.
func (e *Engine) Stop() {
	e.mu.Lock()
	wasRunning := e.running
	e.running = false
	tick := e.tick
	e.mu.Unlock()

	if wasRunning {
		e.emit(Event{Type: EventSimulationEnded, Tick: tick, Detail: "stopped by host"})
	}
}

// Pause sets speed to zero without leaving the loop.
func (e *Engine) Pause() {
	e.SetSpeed(0)
}

// SetSpeed adjusts the loop speed multiplier. Negative values clamp to 0.
func (e *Engine) SetSpeed(speed float64) {
	e.mu.Lock()
	if speed < 0 {
		speed = 0
	}
	e.speed = speed
	e.mu.Unlock()
}

// Speed returns the current speed multiplier.
func (e *Engine) Speed() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.speed
}

// Tick returns the last completed tick.
func (e *Engine) Tick() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tick
}

// Population returns the live agent count.
func (e *Engine) Population() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.agents)
}

// Stats tallies the current population.
func (e *Engine) Stats() analytics.PopulationStats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return analytics.ComputeStats(e.agents)
}

// Recorder exposes the analytics recorder for export.
func (e *Engine) Recorder() *analytics.Recorder {
	return e.recorder
}

// StepN advances n ticks synchronously. Stops early on extinction.
func (e *Engine) StepN(n int) {
	for i := 0; i < n; i++ {
		e.mu.Lock()
		halted := e.halted
		e.mu.Unlock()
		if halted {
			return
		}
		e.Step()
	}
}

// Reset rebuilds the world and population from the seed and clears all
// accumulated analytics. The planner is rebuilt so no decision computed for
// a pre-reset agent can land on a new agent reusing its id.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.dispatcher.Close()
	e.dispatcher = reason.NewDispatcher(2, e.cfg.Simulation.InitialPopulation, nil, e.logger)

	e.rng = rand.New(rand.NewSource(e.cfg.Simulation.Seed))
	e.tick = 0
	e.halted = false
	e.world.Reset()
	e.recorder.Reset()
	e.seedPopulation()
	e.logger.Info("engine reset", "population", len(e.agents))
	e.emit(Event{Type: EventSimulationReset, Population: len(e.agents)})
}

// Close releases the planner workers. The engine is unusable afterwards.
func (e *Engine) Close() {
	e.Stop()
	e.dispatcher.Close()
}
