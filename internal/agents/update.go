package agents

import (
	"math"
	"math/rand"

	"github.com/Bbeierle12/ecosysx/internal/config"
	"github.com/Bbeierle12/ecosysx/internal/env"
	"github.com/Bbeierle12/ecosysx/internal/simtime"
)

// Velocity carried over between ticks is damped before the new action is
// integrated.
const velocityDamping = 0.8

// View is the slice of the world an agent sees during one update. The
// engine builds it from the per-tick population snapshot; Neighbors holds
// agents within the larger of the agent's social reach and the infection
// radius.
type View struct {
	Tick           int
	WorldSize      float64
	Env            env.Environment
	Neighbors      []*Agent
	Population     int
	BasePopulation int // Configured initial population, the density reference
	Time           simtime.Config
	Cfg            *config.Config
	RNG            *rand.Rand
	Effects        *StepEffects
}

// StepEffects accumulates side effects across one tick's sweep for the
// analytics recorder.
type StepEffects struct {
	ResourcesConsumed int
	EnergyForaged     float64
	Infections        int
}

// NewAgent creates a fresh agent for the initial population.
func NewAgent(id int, kind Kind, pos env.Position, tick int, rng *rand.Rand, cfg *config.Config) *Agent {
	a := &Agent{
		ID:        id,
		Kind:      kind,
		Position:  pos,
		Genotype:  SampleGenotype(rng, cfg.Agents.Genotype),
		BirthStep: tick,
		Energy:    cfg.Agents.InitialEnergyMin + rng.Float64()*(cfg.Agents.InitialEnergyMax-cfg.Agents.InitialEnergyMin),
		Status:    Susceptible,
		Policy:    NewPolicy(cfg.Learning),
	}
	if kind == KindCausal {
		a.Social = NewSocial(rng, cfg.Social)
	}
	return a
}

// Update runs one tick of the agent state machine, in fixed order: energy
// accounting, death check, infection progression, exposure, foraging,
// movement, reproduction eligibility.
func (a *Agent) Update(v *View) Outcome {
	cfg := v.Cfg
	weather := v.Env.WeatherEffects()
	terrain := v.Env.TerrainEffects(a.Position)
	stress := v.Env.Stress()
	ph := a.Genotype.Phenotype()
	age := float64(a.Age(v.Tick))

	// 1. Environment-modulated energy delta.
	loss := cfg.Agents.MetabolicRate * ph.MetabolicScale *
		weather.EnergyConsumptionMultiplier * terrain.WeatherExposureMultiplier
	if a.Status == Infected {
		loss += cfg.Agents.InfectionPenalty
	}
	if age > 0.8*ph.MaxAge {
		loss += cfg.Agents.OldAgePenalty
	}
	a.AddEnergy(terrain.EnergyBonus - loss)

	// 2. Death check: probabilistic, scaled by environmental stress.
	stressSum := stress.Heat + stress.Cold + stress.Storm
	critical := cfg.Agents.CriticalEnergy *
		(1 + 0.5*weather.ShelterNeed*(1-terrain.WeatherProtection))
	if age >= ph.MaxAge || a.Energy <= critical {
		p := v.Time.StepHazard(cfg.Agents.DeathRatePerDay * (1 + stressSum))
		if v.RNG.Float64() < p {
			return Die
		}
	}
	if a.Status == Infected {
		if v.RNG.Float64() < v.Time.StepHazard(cfg.Disease.MortalityRatePerDay) {
			return Die
		}
	}

	// 3. Infection progression and recovery.
	if a.Status == Infected {
		a.InfectionTimer++
		recoveryTicks := v.Time.DaysToSteps(cfg.Disease.RecoveryDays * (1 + 0.5*stress.Cold))
		if a.InfectionTimer > recoveryTicks {
			a.Status = Recovered
			a.InfectionTimer = 0
			a.AddEnergy(cfg.Agents.RecoveryEnergyBonus)
		}
	}

	// 4. Exposure: one independent trial per infected neighbor in range.
	if a.Status == Susceptible {
		for _, p := range v.Neighbors {
			if p.Status != Infected {
				continue
			}
			if a.Position.DistanceTo(p.Position) > cfg.Disease.InfectionRadius {
				continue
			}
			prob := v.Time.StepHazard(cfg.Disease.TransmissionRatePerDay) *
				weather.InfectionSpreadMultiplier *
				terrain.InfectionRiskModifier *
				(1 - terrain.WeatherProtection) *
				(1 - ph.Resistance)
			if v.RNG.Float64() < clamp01(prob) {
				a.Infect()
				if v.Effects != nil {
					v.Effects.Infections++
				}
				break
			}
		}
	}

	// 5. Foraging.
	a.forage(v, weather, terrain)

	// 6. Movement via the learned policy (causal agents may act on a
	// queued planner decision instead).
	a.move(v, weather, ph, age)

	// 7. Reproduction eligibility.
	if a.ReproductionCooldown > 0 {
		a.ReproductionCooldown--
	} else if a.wantsToReproduce(v, stress, ph, age) {
		return Reproduce
	}

	return Continue
}

func (a *Agent) forage(v *View, weather env.WeatherEffects, terrain env.TerrainEffects) {
	pickup := v.Cfg.Environment.PickupRadius
	// Harsh weather makes foraging less productive; a survived infection
	// leaves a modest efficiency bonus.
	weatherMod := clamp(2-weather.EnergyConsumptionMultiplier, 0.5, 1.2)
	recoveredBonus := 1.0
	if a.Status == Recovered {
		recoveredBonus = 1.1
	}

	for id, r := range v.Env.Resources() {
		if a.Position.DistanceTo(r.Position) > pickup {
			continue
		}
		if !v.Env.ConsumeResource(id) {
			continue
		}
		gain := r.Value * r.Quality * a.Genotype.ForageEfficiency *
			weatherMod * recoveredBonus * (1 + terrain.EnergyBonus)
		a.AddEnergy(gain)
		if v.Effects != nil {
			v.Effects.ResourcesConsumed++
			v.Effects.EnergyForaged += gain
		}
	}
}

func (a *Agent) move(v *View, weather env.WeatherEffects, ph Phenotype, age float64) {
	infectedCount := 0
	var infectedX, infectedY float64
	for _, p := range v.Neighbors {
		if p.Status == Infected {
			infectedCount++
			infectedX += p.Position.X
			infectedY += p.Position.Y
		}
	}

	nearestRes := math.Inf(1)
	var nearestPos env.Position
	for _, r := range v.Env.Resources() {
		if d := a.Position.DistanceTo(r.Position); d < nearestRes {
			nearestRes = d
			nearestPos = r.Position
		}
	}
	nearResource := nearestRes < ph.SocialReach

	obs := ObserveState(a, len(v.Neighbors), infectedCount, nearResource)
	reward := a.reward(infectedCount, nearResource, age, ph)
	action := a.Policy.Decide(obs, reward, v.RNG)

	dirX, dirY := action.DX, action.DY
	intensity := action.Intensity
	if action.Avoid && infectedCount > 0 {
		// Head directly away from the infected centroid.
		cx := infectedX / float64(infectedCount)
		cy := infectedY / float64(infectedCount)
		dirX, dirY = normalize(a.Position.X-cx, a.Position.Y-cy)
	}

	// A queued planner decision overrides the table for this tick.
	if a.IsCausal() && a.Social.Planned != nil {
		plan := a.Social.Planned
		a.Social.Planned = nil
		if plan.HasTarget {
			dirX, dirY = normalize(plan.Target.X-a.Position.X, plan.Target.Y-a.Position.Y)
			intensity = clamp(plan.Confidence, 0.3, 1)
		}
	} else if nearResource && a.Energy < 50 && !action.Avoid {
		// Hungry agents drift toward the nearest visible resource.
		dirX, dirY = normalize(nearestPos.X-a.Position.X, nearestPos.Y-a.Position.Y)
	}

	step := ph.MaxSpeed * intensity * weather.MovementSpeedMultiplier
	a.Velocity.DX = a.Velocity.DX*velocityDamping + dirX*step*(1-velocityDamping)
	a.Velocity.DY = a.Velocity.DY*velocityDamping + dirY*step*(1-velocityDamping)

	a.Position.X += a.Velocity.DX
	a.Position.Y += a.Velocity.DY
	a.reflect(v.WorldSize)
}

// reflect bounces the agent off the world boundary.
func (a *Agent) reflect(size float64) {
	if a.Position.X < 0 {
		a.Position.X = -a.Position.X
		a.Velocity.DX = -a.Velocity.DX
	}
	if a.Position.X > size {
		a.Position.X = 2*size - a.Position.X
		a.Velocity.DX = -a.Velocity.DX
	}
	if a.Position.Y < 0 {
		a.Position.Y = -a.Position.Y
		a.Velocity.DY = -a.Velocity.DY
	}
	if a.Position.Y > size {
		a.Position.Y = 2*size - a.Position.Y
		a.Velocity.DY = -a.Velocity.DY
	}
	// A bounce larger than the world could land outside again; settle on
	// the boundary in that case.
	a.Position.X = clamp(a.Position.X, 0, size)
	a.Position.Y = clamp(a.Position.Y, 0, size)
}

// reward scores the previous action: stay energetic, stay away from the
// infected, stay near food, and discount with age.
func (a *Agent) reward(infectedCount int, nearResource bool, age float64, ph Phenotype) float64 {
	r := a.Energy/MaxEnergy - 0.3*float64(infectedCount)
	if nearResource {
		r += 0.2
	}
	if ph.MaxAge > 0 {
		r -= 0.1 * age / ph.MaxAge
	}
	return r
}

func (a *Agent) wantsToReproduce(v *View, stress env.Stress, ph Phenotype, age float64) bool {
	cfg := v.Cfg
	if age < float64(cfg.Agents.ReproductionMinAge) {
		return false
	}

	base := 1
	if v.BasePopulation > 0 {
		base = v.BasePopulation
	}
	pressure := float64(v.Population) / float64(base)

	// Dense populations raise the bar; sparse ones lower it.
	threshold := a.Genotype.ReproductionThreshold * (0.85 + 0.15*math.Min(pressure, 1))
	if a.Energy <= threshold {
		return false
	}

	rate := cfg.Agents.ReproductionRatePerDay
	if pressure < 1 {
		rate *= 2 - pressure
	} else {
		rate /= pressure
	}
	rate *= 1 - 0.5*stress.Storm

	return v.RNG.Float64() < v.Time.StepHazard(rate)
}

// Reproduce creates the offspring for a successful reproduction roll. The
// parent pays the energy cost and enters cooldown; the child is returned
// un-added — only the engine inserts into the population.
func (a *Agent) Reproduce(childID, tick int, worldSize float64, rng *rand.Rand, cfg *config.Config) *Agent {
	child := &Agent{
		ID:   childID,
		Kind: a.Kind,
		Position: env.Position{
			X: clamp(a.Position.X+(rng.Float64()*4-2), 0, worldSize),
			Y: clamp(a.Position.Y+(rng.Float64()*4-2), 0, worldSize),
		},
		Genotype:             a.Genotype.Mutate(rng, cfg.Agents),
		BirthStep:            tick,
		Energy:               math.Min(MaxEnergy, cfg.Agents.ReproductionCost*2),
		Status:               Susceptible,
		ReproductionCooldown: cfg.Agents.ReproductionCooldown,
		Policy:               NewPolicy(cfg.Learning),
	}
	if a.Kind == KindCausal {
		child.Social = NewSocial(rng, cfg.Social)
	}

	a.AddEnergy(-cfg.Agents.ReproductionCost)
	a.ReproductionCooldown = cfg.Agents.ReproductionCooldown
	return child
}

func normalize(x, y float64) (float64, float64) {
	d := math.Sqrt(x*x + y*y)
	if d == 0 {
		return 0, 0
	}
	return x / d, y / d
}
