package reason

import (
	"testing"

	"github.com/Bbeierle12/ecosysx/internal/env"
)

func baseSnapshot() Snapshot {
	return Snapshot{
		AgentID:   1,
		Tick:      10,
		Energy:    70,
		MaxEnergy: 100,
		Position:  env.Position{X: 50, Y: 50},
		WorldSize: 100,
	}
}

func TestPlanDeterministic(t *testing.T) {
	s := baseSnapshot()
	s.HasFood = true
	s.FoodAt = env.Position{X: 60, Y: 50}

	a, b := Plan(s), Plan(s)
	if a != b {
		t.Errorf("identical snapshots produced different decisions:\n%+v\n%+v", a, b)
	}
}

func TestPlanDefaultsToExplore(t *testing.T) {
	d := Plan(baseSnapshot())
	if d.Archetype != ArchetypeExplore {
		t.Errorf("archetype = %q, want explore for an unremarkable situation", d.Archetype)
	}
	if d.HasTarget {
		t.Error("explore decision carries a target")
	}
}

func TestPlanFleesInfection(t *testing.T) {
	s := baseSnapshot()
	s.InfectedNearby = 3
	s.InfectedAt = env.Position{X: 55, Y: 50}
	s.HasFood = true
	s.FoodAt = env.Position{X: 60, Y: 50}

	d := Plan(s)
	if d.Archetype != ArchetypeAvoidInfection {
		t.Fatalf("archetype = %q, want avoid_infection with 3 infected nearby", d.Archetype)
	}
	if !d.HasTarget {
		t.Fatal("retreat decision has no target")
	}
	// The target must be on the far side: further from the threat than the
	// agent already is.
	if d.Target.DistanceTo(s.InfectedAt) <= s.Position.DistanceTo(s.InfectedAt) {
		t.Errorf("retreat target %+v is not away from the infected centroid", d.Target)
	}
}

func TestPlanIgnoresInfectionWhenAlreadyInfected(t *testing.T) {
	s := baseSnapshot()
	s.Infected = true
	s.InfectedNearby = 3
	s.InfectedAt = env.Position{X: 55, Y: 50}

	if d := Plan(s); d.Archetype == ArchetypeAvoidInfection {
		t.Error("infected agent planned to avoid infection")
	}
}

func TestPlanStarvingAgentSeeksFood(t *testing.T) {
	s := baseSnapshot()
	s.Energy = 10
	s.HasFood = true
	s.FoodAt = env.Position{X: 40, Y: 40}
	s.FoodValue = 20
	s.InfectedNearby = 1
	s.InfectedAt = env.Position{X: 55, Y: 50}

	d := Plan(s)
	if d.Archetype != ArchetypeSeekFood {
		t.Fatalf("archetype = %q, want seek_food when starving", d.Archetype)
	}
	if d.Target != s.FoodAt {
		t.Errorf("target = %+v, want the food location %+v", d.Target, s.FoodAt)
	}
}

func TestPlanReproducesWhenThriving(t *testing.T) {
	s := baseSnapshot()
	s.Energy = 95
	s.CanBreed = true

	d := Plan(s)
	if d.Archetype != ArchetypeReproduce {
		t.Errorf("archetype = %q, want reproduce for a thriving eligible agent", d.Archetype)
	}

	s.AgeFrac = 0.9
	if d := Plan(s); d.Archetype == ArchetypeReproduce {
		t.Error("near-lifespan agent planned reproduction")
	}
}

func TestPlanAssistsAllyWhenAble(t *testing.T) {
	s := baseSnapshot()
	s.AllyInNeed = true
	s.AllyAt = env.Position{X: 30, Y: 30}
	s.Energy = 80

	d := Plan(s)
	if d.Archetype != ArchetypeAssistAlly {
		t.Fatalf("archetype = %q, want assist_ally", d.Archetype)
	}
	if d.Target != s.AllyAt {
		t.Errorf("target = %+v, want ally position", d.Target)
	}

	// Too weak to help.
	s.Energy = 30
	if d := Plan(s); d.Archetype == ArchetypeAssistAlly {
		t.Error("weak agent planned to assist")
	}
}

func TestRetreatTargetStaysInWorld(t *testing.T) {
	s := baseSnapshot()
	s.Position = env.Position{X: 1, Y: 1}
	s.InfectedNearby = 2
	s.InfectedAt = env.Position{X: 5, Y: 5}

	d := Plan(s)
	if d.Target.X < 0 || d.Target.X > s.WorldSize || d.Target.Y < 0 || d.Target.Y > s.WorldSize {
		t.Errorf("retreat target %+v outside the world", d.Target)
	}
}
