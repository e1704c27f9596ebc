// Package env defines the environment collaborator the engine consumes:
// resource positions and values, weather effect queries, and terrain effect
// queries. The engine never mutates environment state directly — resources
// are consumed only through ConsumeResource.
package env

import "math"

// Position is a point on the bounded plane. Z is carried for hosts that
// render in 3D; the simulation itself is planar.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// DistanceTo returns the planar distance between two positions.
func (p Position) DistanceTo(o Position) float64 {
	dx := p.X - o.X
	dy := p.Y - o.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Resource is a consumable energy source placed in the world.
type Resource struct {
	ID               string   `json:"id"`
	Position         Position `json:"position"`
	Value            float64  `json:"value"`
	Quality          float64  `json:"quality"` // 0–1, scales energy yield
	WeatherResistant bool     `json:"weather_resistant"`
}

// WeatherEffects holds the global multipliers the current weather applies to
// agent updates.
type WeatherEffects struct {
	EnergyConsumptionMultiplier float64 `json:"energy_consumption_multiplier"`
	ShelterNeed                 float64 `json:"shelter_need"` // 0–1
	InfectionSpreadMultiplier   float64 `json:"infection_spread_multiplier"`
	MovementSpeedMultiplier     float64 `json:"movement_speed_multiplier"`
}

// TerrainEffects holds position-local modifiers.
type TerrainEffects struct {
	IsInShelter               bool    `json:"is_in_shelter"`
	EnergyBonus               float64 `json:"energy_bonus"`
	WeatherExposureMultiplier float64 `json:"weather_exposure_multiplier"`
	InfectionRiskModifier     float64 `json:"infection_risk_modifier"`
	WeatherProtection         float64 `json:"weather_protection"` // 0–1
}

// Stress holds environmental stress levels, each in [0,1].
type Stress struct {
	Heat  float64 `json:"heat"`
	Cold  float64 `json:"cold"`
	Storm float64 `json:"storm"`
}

// Environment is the world the agent population lives in.
type Environment interface {
	// Update advances weather, resource regeneration, and respawning for
	// the given tick.
	Update(tick int)

	// Resources returns the live resource set keyed by id. Callers must
	// not mutate the returned map.
	Resources() map[string]*Resource

	// ConsumeResource removes a resource. Reports whether it existed.
	ConsumeResource(id string) bool

	// WeatherEffects returns the current global weather multipliers.
	WeatherEffects() WeatherEffects

	// TerrainEffects returns the local modifiers at a position.
	TerrainEffects(pos Position) TerrainEffects

	// Stress returns the current environmental stress levels.
	Stress() Stress

	// Reset regenerates the environment from its original seed.
	Reset()
}
