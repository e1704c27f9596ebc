package env

import (
	"fmt"
	"math"
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/Bbeierle12/ecosysx/internal/config"
	"github.com/Bbeierle12/ecosysx/internal/simtime"
)

// Terrain noise thresholds. Shelter patches are the densest knots of the
// terrain field; fertile ground follows the fertility field.
const (
	shelterThreshold = 0.72
	fertileThreshold = 0.60
	terrainFrequency = 0.05
)

// Field is the default Environment: a seeded noise landscape with a weather
// cycle, consumable resources, and hazard-driven respawning.
type Field struct {
	cfg       config.EnvironmentConfig
	worldSize float64
	seed      int64
	tc        simtime.Config

	rng       *rand.Rand
	fertility opensimplex.Noise
	terrain   opensimplex.Noise

	resources  map[string]*Resource
	nextResID  int
	spawnCount int // Spawns during the most recent Update

	weather WeatherEffects
	stress  Stress
}

// NewField builds an environment from the configuration and seed.
func NewField(cfg config.EnvironmentConfig, worldSize float64, seed int64, tc simtime.Config) *Field {
	f := &Field{
		cfg:       cfg,
		worldSize: worldSize,
		seed:      seed,
		tc:        tc,
	}
	f.generate()
	return f
}

func (f *Field) generate() {
	f.rng = rand.New(rand.NewSource(f.seed))
	f.fertility = opensimplex.NewNormalized(f.seed)
	f.terrain = opensimplex.NewNormalized(f.seed + 1)
	f.resources = make(map[string]*Resource, f.cfg.ResourceCount)
	f.nextResID = 0
	f.spawnCount = 0

	for i := 0; i < f.cfg.ResourceCount; i++ {
		f.spawnResource()
	}

	// Calm starting weather until the first Update.
	f.weather = WeatherEffects{
		EnergyConsumptionMultiplier: 1,
		InfectionSpreadMultiplier:   1,
		MovementSpeedMultiplier:     1,
	}
	f.stress = Stress{}
}

// spawnResource places one resource at a fertility-weighted position.
func (f *Field) spawnResource() *Resource {
	var pos Position
	// Rejection-sample toward fertile ground; bail out after a few tries so
	// a barren seed cannot stall the spawner.
	for attempt := 0; attempt < 8; attempt++ {
		pos = Position{X: f.rng.Float64() * f.worldSize, Y: f.rng.Float64() * f.worldSize}
		if f.fertilityAt(pos) >= f.rng.Float64() {
			break
		}
	}

	quality := 0.5 + 0.5*f.fertilityAt(pos)
	value := f.cfg.ResourceValueMin + f.rng.Float64()*(f.cfg.ResourceValueMax-f.cfg.ResourceValueMin)

	f.nextResID++
	r := &Resource{
		ID:               fmt.Sprintf("res-%d", f.nextResID),
		Position:         pos,
		Value:            value,
		Quality:          quality,
		WeatherResistant: f.rng.Float64() < 0.25,
	}
	f.resources[r.ID] = r
	return r
}

func (f *Field) fertilityAt(pos Position) float64 {
	return f.fertility.Eval2(pos.X*terrainFrequency, pos.Y*terrainFrequency)
}

func (f *Field) terrainAt(pos Position) float64 {
	return f.terrain.Eval2(pos.X*terrainFrequency, pos.Y*terrainFrequency)
}

// Update advances the weather cycle, weathers and regenerates resources, and
// respawns toward the configured count.
func (f *Field) Update(tick int) {
	f.updateWeather(tick)
	f.spawnCount = 0

	storm := f.stress.Storm
	for id, r := range f.resources {
		// Storms erode exposed resources; regeneration restores value
		// toward the cap in calm weather.
		if storm > 0.5 {
			decay := 0.02 * storm
			if r.WeatherResistant {
				decay = 0.005 * storm
			}
			r.Value *= 1 - decay
			if r.Value < 1 {
				delete(f.resources, id)
				continue
			}
		} else if r.Value < f.cfg.ResourceValueMax {
			r.Value = math.Min(f.cfg.ResourceValueMax, r.Value+0.05)
		}
	}

	// Respawn each missing slot with a per-step hazard draw.
	p := f.tc.StepHazard(f.cfg.RespawnRatePerDay)
	for deficit := f.cfg.ResourceCount - len(f.resources); deficit > 0; deficit-- {
		if f.rng.Float64() < p {
			f.spawnResource()
			f.spawnCount++
		}
	}
}

func (f *Field) updateWeather(tick int) {
	days := f.tc.StepsToDays(tick)

	// Temperature swings on the weather cycle: positive half is heat,
	// negative half is cold.
	temp := math.Sin(2 * math.Pi * days / f.cfg.WeatherCycleDays)
	heat := clamp01(temp)
	cold := clamp01(-temp)

	// Storm intensity from a slower noise track; only the strong tail of
	// the field reads as a storm.
	stormRaw := f.terrain.Eval2(days/f.cfg.StormCycleDays, 100)
	storm := clamp01((stormRaw - 0.6) / 0.4)

	f.stress = Stress{Heat: heat, Cold: cold, Storm: storm}
	f.weather = WeatherEffects{
		EnergyConsumptionMultiplier: 1 + 0.4*heat + 0.6*cold + 0.5*storm,
		ShelterNeed:                 math.Max(storm, 0.5*cold),
		InfectionSpreadMultiplier:   math.Max(0.5, 1+0.5*cold+0.3*storm-0.2*heat),
		MovementSpeedMultiplier:     math.Max(0.3, 1-0.4*storm-0.2*cold),
	}
}

// Resources returns the live resource set. Not safe to mutate.
func (f *Field) Resources() map[string]*Resource {
	return f.resources
}

// ConsumeResource removes a resource by id.
func (f *Field) ConsumeResource(id string) bool {
	if _, ok := f.resources[id]; !ok {
		return false
	}
	delete(f.resources, id)
	return true
}

// WeatherEffects returns the current global weather multipliers.
func (f *Field) WeatherEffects() WeatherEffects {
	return f.weather
}

// TerrainEffects returns the local modifiers at a position.
func (f *Field) TerrainEffects(pos Position) TerrainEffects {
	t := f.terrainAt(pos)
	fert := f.fertilityAt(pos)

	sheltered := t > shelterThreshold
	protection := 0.3 * t
	if sheltered {
		protection = 0.8
	}

	bonus := 0.0
	if fert > fertileThreshold {
		bonus = (fert - fertileThreshold) * 0.5
	}

	return TerrainEffects{
		IsInShelter:               sheltered,
		EnergyBonus:               bonus,
		WeatherExposureMultiplier: 1 - protection,
		// Damp fertile ground carries more infection pressure.
		InfectionRiskModifier: 0.8 + 0.4*fert,
		WeatherProtection:     protection,
	}
}

// Stress returns the current environmental stress levels.
func (f *Field) Stress() Stress {
	return f.stress
}

// Reset regenerates the field from its original seed.
func (f *Field) Reset() {
	f.generate()
}

// SpawnsLastUpdate reports how many resources appeared during the most
// recent Update. Consumed by the analytics recorder via the engine.
func (f *Field) SpawnsLastUpdate() int {
	return f.spawnCount
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
