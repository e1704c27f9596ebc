package engine

import (
	"math"

	"github.com/Bbeierle12/ecosysx/internal/agents"
	"github.com/Bbeierle12/ecosysx/internal/analytics"
	"github.com/Bbeierle12/ecosysx/internal/env"
)

// spawnCounter is implemented by environments that can report how many
// resources they spawned during the last update.
type spawnCounter interface {
	SpawnsLastUpdate() int
}

// Step advances the simulation one tick: environment, population sweep,
// social exchange, planning, contact evaluation, births and deaths, then
// analytics. Offspring born this tick first act on the next one.
func (e *Engine) Step() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.halted {
		return
	}
	if e.world == nil {
		e.logger.Warn("no environment attached, skipping tick", "tick", e.tick)
		return
	}

	tick := e.tick + 1
	e.world.Update(tick)

	snapshot := e.agents
	popBefore := len(snapshot)
	effects := &agents.StepEffects{}

	// Pre-move positions feed the neighbor views.
	e.fillGrid(snapshot)

	var dead []*agents.Agent
	var parents []*agents.Agent

	for i, a := range snapshot {
		neighbors := e.neighborsOf(snapshot, i, a)
		outcome := e.updateAgent(a, neighbors, tick, popBefore, effects)
		switch outcome {
		case agents.Die:
			dead = append(dead, a)
		case agents.Reproduce:
			parents = append(parents, a)
		}
	}

	e.socialPhase(snapshot, tick)
	e.planPhase(snapshot, tick)

	// Contacts and contact-mediated transmission use post-move positions.
	e.fillGrid(snapshot)
	contacts, transmissions := e.tracker.Evaluate(snapshot, e.grid, tick, e.rng)

	for _, a := range dead {
		e.removeAgent(a, tick)
	}
	for _, p := range parents {
		if p.Energy <= p.Genotype.ReproductionThreshold {
			continue // Energy spent since the roll; skip this round
		}
		e.addOffspring(p, tick)
	}

	spawned := 0
	if sc, ok := e.world.(spawnCounter); ok {
		spawned = sc.SpawnsLastUpdate()
	}
	e.recorder.RecordStep(tick, e.agents, *effects, contacts, transmissions, spawned)

	e.tick = tick

	e.emit(Event{Type: EventStepCompleted, Tick: tick, Population: len(e.agents)})
	e.emit(Event{Type: EventEnvironmentUpdated, Tick: tick, Spawned: spawned, Consumed: effects.ResourcesConsumed})
	if len(e.agents) != popBefore {
		e.emit(Event{Type: EventPopulationChanged, Tick: tick, Population: len(e.agents)})
	}
	if e.cfg.Analytics.WindowSize > 0 && tick%e.cfg.Analytics.WindowSize == 0 {
		stats := analytics.ComputeStats(e.agents)
		e.emit(Event{Type: EventStatisticsUpdated, Tick: tick, Stats: &stats})
	}
	if len(e.agents) == 0 {
		e.halted = true
		e.logger.Warn("population extinct", "tick", tick)
		e.emit(Event{Type: EventExtinction, Tick: tick, Detail: "population reached zero"})
		e.emit(Event{Type: EventSimulationEnded, Tick: tick, Detail: "extinction"})
	}
	if !e.halted && e.cfg.Simulation.MaxSteps > 0 && tick >= e.cfg.Simulation.MaxSteps {
		e.halted = true
		e.logger.Info("step limit reached", "tick", tick, "max_steps", e.cfg.Simulation.MaxSteps)
		e.emit(Event{Type: EventSimulationEnded, Tick: tick, Detail: "max steps reached"})
	}
}

// updateAgent runs one agent's state machine, isolating panics so a single
// misbehaving agent cannot take the run down.
func (e *Engine) updateAgent(a *agents.Agent, neighbors []*agents.Agent, tick, population int, effects *agents.StepEffects) (outcome agents.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("agent update panicked", "agent", a.ID, "tick", tick, "panic", r)
			outcome = agents.Continue
		}
	}()

	view := &agents.View{
		Tick:           tick,
		WorldSize:      e.cfg.Simulation.WorldSize,
		Env:            e.world,
		Neighbors:      neighbors,
		Population:     population,
		BasePopulation: e.cfg.Simulation.InitialPopulation,
		Time:           e.tc,
		Cfg:            e.cfg,
		RNG:            e.rng,
		Effects:        effects,
	}
	return a.Update(view)
}

func (e *Engine) fillGrid(list []*agents.Agent) {
	e.grid.Reset()
	for i, a := range list {
		e.grid.Insert(i, a.Position.X, a.Position.Y)
	}
}

// neighborsOf gathers the agents within this agent's perception: the larger
// of its social reach and the infection radius.
func (e *Engine) neighborsOf(list []*agents.Agent, idx int, a *agents.Agent) []*agents.Agent {
	radius := math.Max(a.Genotype.Phenotype().SocialReach, e.cfg.Disease.InfectionRadius)
	e.neighborScratch = e.grid.NeighborsInto(e.neighborScratch[:0], a.Position.X, a.Position.Y, radius, idx)

	out := make([]*agents.Agent, 0, len(e.neighborScratch))
	for _, n := range e.neighborScratch {
		out = append(out, list[n.ID])
	}
	return out
}

func (e *Engine) removeAgent(a *agents.Agent, tick int) {
	for i, x := range e.agents {
		if x.ID == a.ID {
			e.agents = append(e.agents[:i], e.agents[i+1:]...)
			break
		}
	}
	delete(e.agentIdx, a.ID)

	cause := "old age or starvation"
	if a.Status == agents.Infected {
		cause = "infection"
	}
	e.recorder.RecordDeath(tick, a, cause)
	e.emit(Event{Type: EventAgentRemoved, Tick: tick, AgentID: a.ID})
}

func (e *Engine) addOffspring(parent *agents.Agent, tick int) {
	child := parent.Reproduce(e.nextID, tick, e.cfg.Simulation.WorldSize, e.rng, e.cfg)
	e.nextID++

	e.agents = append(e.agents, child)
	e.agentIdx[child.ID] = child
	e.recorder.RecordBirth(tick, child)
	e.emit(Event{Type: EventAgentAdded, Tick: tick, AgentID: child.ID})
}

// Agent looks up a live agent by id.
func (e *Engine) Agent(id int) (*agents.Agent, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	a, ok := e.agentIdx[id]
	return a, ok
}

var _ spawnCounter = (*env.Field)(nil)
