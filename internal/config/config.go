// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation parameters.
type Config struct {
	Simulation  SimulationConfig  `yaml:"simulation"`
	Agents      AgentsConfig      `yaml:"agents"`
	Disease     DiseaseConfig     `yaml:"disease"`
	Learning    LearningConfig    `yaml:"learning"`
	Social      SocialConfig      `yaml:"social"`
	Analytics   AnalyticsConfig   `yaml:"analytics"`
	Environment EnvironmentConfig `yaml:"environment"`
}

// SimulationConfig holds top-level run parameters.
type SimulationConfig struct {
	Seed                 int64   `yaml:"seed"`
	WorldSize            float64 `yaml:"world_size"` // Side length of the bounded plane
	InitialPopulation    int     `yaml:"initial_population"`
	CausalFraction       float64 `yaml:"causal_fraction"`        // Share of agents with the social layer
	InitialInfectionRate float64 `yaml:"initial_infection_rate"` // Share seeded Infected
	MaxSteps             int     `yaml:"max_steps"`              // 0 = unbounded
}

// GenotypeConfig bounds each heritable trait at creation time.
type GenotypeConfig struct {
	SpeedMin                 float64 `yaml:"speed_min"`
	SpeedMax                 float64 `yaml:"speed_max"`
	SizeMin                  float64 `yaml:"size_min"`
	SizeMax                  float64 `yaml:"size_max"`
	SocialRadiusMin          float64 `yaml:"social_radius_min"`
	SocialRadiusMax          float64 `yaml:"social_radius_max"`
	ResistanceMin            float64 `yaml:"resistance_min"`
	ResistanceMax            float64 `yaml:"resistance_max"`
	LifespanMin              float64 `yaml:"lifespan_min"` // Ticks
	LifespanMax              float64 `yaml:"lifespan_max"`
	ReproductionThresholdMin float64 `yaml:"reproduction_threshold_min"`
	ReproductionThresholdMax float64 `yaml:"reproduction_threshold_max"`
	AggressivenessMin        float64 `yaml:"aggressiveness_min"`
	AggressivenessMax        float64 `yaml:"aggressiveness_max"`
	ForageEfficiencyMin      float64 `yaml:"forage_efficiency_min"`
	ForageEfficiencyMax      float64 `yaml:"forage_efficiency_max"`
}

// AgentsConfig holds the per-agent state machine parameters.
type AgentsConfig struct {
	InitialEnergyMin       float64        `yaml:"initial_energy_min"`
	InitialEnergyMax       float64        `yaml:"initial_energy_max"`
	MetabolicRate          float64        `yaml:"metabolic_rate"`    // Base energy loss per tick
	InfectionPenalty       float64        `yaml:"infection_penalty"` // Extra loss per tick while Infected
	OldAgePenalty          float64        `yaml:"old_age_penalty"`   // Extra loss per tick past 0.8·lifespan
	CriticalEnergy         float64        `yaml:"critical_energy"`
	DeathRatePerDay        float64        `yaml:"death_rate_per_day"` // Base hazard when a death condition holds
	RecoveryEnergyBonus    float64        `yaml:"recovery_energy_bonus"`
	ReproductionMinAge     int            `yaml:"reproduction_min_age"` // Ticks
	ReproductionCooldown   int            `yaml:"reproduction_cooldown"`
	ReproductionCost       float64        `yaml:"reproduction_cost"`
	ReproductionRatePerDay float64        `yaml:"reproduction_rate_per_day"`
	MutationProbability    float64        `yaml:"mutation_probability"` // Per trait
	MutationJitter         float64        `yaml:"mutation_jitter"`      // Multiplicative: 1 ± jitter
	Genotype               GenotypeConfig `yaml:"genotype"`
}

// DiseaseConfig holds the SIR model parameters. Rates are per simulated day
// and are converted per-step through simtime.
type DiseaseConfig struct {
	TransmissionRatePerDay float64 `yaml:"transmission_rate_per_day"`
	InfectionRadius        float64 `yaml:"infection_radius"`
	RecoveryDays           float64 `yaml:"recovery_days"`
	MortalityRatePerDay    float64 `yaml:"mortality_rate_per_day"`
}

// LearningConfig holds the tabular policy parameters.
type LearningConfig struct {
	Alpha   float64 `yaml:"alpha"`   // Learning rate
	Gamma   float64 `yaml:"gamma"`   // Discount
	Epsilon float64 `yaml:"epsilon"` // Exploration probability
}

// SocialConfig holds the causal-agent social layer parameters.
type SocialConfig struct {
	MaxKnownAgents      int     `yaml:"max_known_agents"`
	InformationDecay    int     `yaml:"information_decay"` // Ticks until list entries age out
	MessageRange        float64 `yaml:"message_range"`
	MessageCooldown     int     `yaml:"message_cooldown"`
	HelpCooldown        int     `yaml:"help_cooldown"`
	HelpEnergyThreshold float64 `yaml:"help_energy_threshold"`
	TrustGain           float64 `yaml:"trust_gain"`
	TrustLoss           float64 `yaml:"trust_loss"`
	TrustIdleTicks      int     `yaml:"trust_idle_ticks"` // Idle period before decay toward neutral
	TrustDecayRate      float64 `yaml:"trust_decay_rate"`
	MaxMessages         int     `yaml:"max_messages"` // Cap on the received-message log
	MinHelpTrust        float64 `yaml:"min_help_trust"`
	AllianceTrust       float64 `yaml:"alliance_trust"`
}

// AnalyticsConfig holds the windowed analytics parameters.
type AnalyticsConfig struct {
	WindowSize         int     `yaml:"window_size"` // Ticks per window
	CheckpointInterval int     `yaml:"checkpoint_interval"`
	PanelSize          int     `yaml:"panel_size"`
	ContactRadius      float64 `yaml:"contact_radius"`
	ContactRatePerDay  float64 `yaml:"contact_rate_per_day"` // Transmission hazard per contact-hour
	MaxEventsPerWindow int     `yaml:"max_events_per_window"`
}

// EnvironmentConfig holds the default environment field parameters.
type EnvironmentConfig struct {
	ResourceCount     int     `yaml:"resource_count"`
	ResourceValueMin  float64 `yaml:"resource_value_min"`
	ResourceValueMax  float64 `yaml:"resource_value_max"`
	RespawnRatePerDay float64 `yaml:"respawn_rate_per_day"`
	PickupRadius      float64 `yaml:"pickup_radius"`
	WeatherCycleDays  float64 `yaml:"weather_cycle_days"`
	StormCycleDays    float64 `yaml:"storm_cycle_days"`
}

// Default returns the embedded default configuration.
func Default() *Config {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		// The embedded defaults are part of the build; failing to parse them
		// is a programming error, not a runtime condition.
		panic(fmt.Sprintf("config: embedded defaults invalid: %v", err))
	}
	return cfg
}

// Load reads a YAML file over the embedded defaults. Missing keys keep their
// default values.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks cross-field constraints that yaml decoding cannot express.
func (c *Config) Validate() error {
	if c.Simulation.WorldSize <= 0 {
		return fmt.Errorf("simulation.world_size must be positive, got %v", c.Simulation.WorldSize)
	}
	if c.Simulation.InitialPopulation < 0 {
		return fmt.Errorf("simulation.initial_population must be non-negative, got %d", c.Simulation.InitialPopulation)
	}
	if c.Simulation.CausalFraction < 0 || c.Simulation.CausalFraction > 1 {
		return fmt.Errorf("simulation.causal_fraction must be in [0,1], got %v", c.Simulation.CausalFraction)
	}
	if c.Simulation.InitialInfectionRate < 0 || c.Simulation.InitialInfectionRate > 1 {
		return fmt.Errorf("simulation.initial_infection_rate must be in [0,1], got %v", c.Simulation.InitialInfectionRate)
	}
	if c.Simulation.MaxSteps < 0 {
		return fmt.Errorf("simulation.max_steps must be non-negative, got %d", c.Simulation.MaxSteps)
	}
	if c.Agents.InitialEnergyMin > c.Agents.InitialEnergyMax {
		return fmt.Errorf("agents.initial_energy_min %v exceeds max %v", c.Agents.InitialEnergyMin, c.Agents.InitialEnergyMax)
	}
	if c.Learning.Alpha <= 0 || c.Learning.Alpha > 1 {
		return fmt.Errorf("learning.alpha must be in (0,1], got %v", c.Learning.Alpha)
	}
	if c.Learning.Gamma < 0 || c.Learning.Gamma >= 1 {
		return fmt.Errorf("learning.gamma must be in [0,1), got %v", c.Learning.Gamma)
	}
	if c.Learning.Epsilon < 0 || c.Learning.Epsilon > 1 {
		return fmt.Errorf("learning.epsilon must be in [0,1], got %v", c.Learning.Epsilon)
	}
	if c.Social.MaxKnownAgents <= 0 {
		return fmt.Errorf("social.max_known_agents must be positive, got %d", c.Social.MaxKnownAgents)
	}
	if c.Analytics.WindowSize <= 0 {
		return fmt.Errorf("analytics.window_size must be positive, got %d", c.Analytics.WindowSize)
	}
	if c.Analytics.CheckpointInterval <= 0 {
		return fmt.Errorf("analytics.checkpoint_interval must be positive, got %d", c.Analytics.CheckpointInterval)
	}
	if c.Analytics.PanelSize <= 0 {
		return fmt.Errorf("analytics.panel_size must be positive, got %d", c.Analytics.PanelSize)
	}
	if c.Environment.ResourceValueMin > c.Environment.ResourceValueMax {
		return fmt.Errorf("environment.resource_value_min %v exceeds max %v", c.Environment.ResourceValueMin, c.Environment.ResourceValueMax)
	}
	return nil
}
