package engine

import (
	"github.com/Bbeierle12/ecosysx/internal/agents"
	"github.com/Bbeierle12/ecosysx/internal/env"
	"github.com/Bbeierle12/ecosysx/internal/reason"
)

// planPhase bridges the causal agents and the asynchronous planner: drain
// finished decisions first, then submit snapshots for agents with no plan
// queued and no request outstanding. A decision submitted this tick is
// consumed on a later one.
func (e *Engine) planPhase(snapshot []*agents.Agent, tick int) {
	for _, decision := range e.dispatcher.Drain() {
		a, ok := e.agentIdx[decision.AgentID]
		if !ok || !a.IsCausal() {
			continue
		}
		a.Social.PlanInFlight = false
		a.Social.Planned = &agents.PlannedMove{
			Archetype:  decision.Archetype,
			Target:     decision.Target,
			HasTarget:  decision.HasTarget,
			Confidence: decision.Confidence,
			Reasoning:  decision.Reasoning,
		}
	}

	for _, a := range snapshot {
		if !a.IsCausal() || a.Social.PlanInFlight || a.Social.Planned != nil {
			continue
		}
		if e.dispatcher.Submit(e.buildSnapshot(a, snapshot, tick)) {
			a.Social.PlanInFlight = true
		}
	}
}

// buildSnapshot assembles the planner's view of one agent from state the
// engine already tracks. The snapshot is a value copy; the planner never
// sees live agent state.
func (e *Engine) buildSnapshot(a *agents.Agent, snapshot []*agents.Agent, tick int) reason.Snapshot {
	ph := a.Genotype.Phenotype()
	s := reason.Snapshot{
		AgentID:   a.ID,
		Tick:      tick,
		Energy:    a.Energy,
		MaxEnergy: agents.MaxEnergy,
		Infected:  a.Status == agents.Infected,
		Position:  a.Position,
		WorldSize: e.cfg.Simulation.WorldSize,
		CanBreed: a.ReproductionCooldown == 0 &&
			a.Energy > a.Genotype.ReproductionThreshold &&
			a.Age(tick) >= e.cfg.Agents.ReproductionMinAge,
	}
	if ph.MaxAge > 0 {
		s.AgeFrac = float64(a.Age(tick)) / ph.MaxAge
	}

	infected := 0
	var cx, cy float64
	for _, p := range snapshot {
		if p.ID == a.ID || p.Status != agents.Infected {
			continue
		}
		if a.Position.DistanceTo(p.Position) <= ph.SocialReach {
			infected++
			cx += p.Position.X
			cy += p.Position.Y
		}
	}
	if infected > 0 {
		s.InfectedNearby = infected
		s.InfectedAt = env.Position{X: cx / float64(infected), Y: cy / float64(infected)}
	}
	s.InDangerZone = a.Social.InDanger(a.Position)

	if best := a.Social.BestKnownResource(tick, e.cfg.Social.InformationDecay); best != nil {
		s.HasFood = true
		s.FoodAt = best.Position
		s.FoodValue = best.Value
	}

	for _, hr := range a.Social.HelpRequests {
		if a.Social.AlliedWith(hr.From) {
			s.AllyInNeed = true
			s.AllyAt = hr.Position
			break
		}
	}
	return s
}
