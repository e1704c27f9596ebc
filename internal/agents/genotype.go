package agents

import (
	"math/rand"

	"github.com/Bbeierle12/ecosysx/internal/config"
)

// Genotype is the heritable trait set, sampled at creation or inherited with
// mutation. Resistance, Aggressiveness, and ForageEfficiency are bounded to
// [0,1]; the remaining traits are bounded by their configured sampling
// ranges.
type Genotype struct {
	Speed                 float64 `json:"speed"`
	Size                  float64 `json:"size"`
	SocialRadius          float64 `json:"social_radius"`
	InfectionResistance   float64 `json:"infection_resistance"`
	Lifespan              float64 `json:"lifespan"` // Ticks
	ReproductionThreshold float64 `json:"reproduction_threshold"`
	Aggressiveness        float64 `json:"aggressiveness"`
	ForageEfficiency      float64 `json:"forage_efficiency"`
}

// Phenotype is the read-only behavioral projection of a genotype.
type Phenotype struct {
	MaxSpeed       float64 `json:"max_speed"`       // Movement units per tick
	MetabolicScale float64 `json:"metabolic_scale"` // Size-driven energy cost scale
	SocialReach    float64 `json:"social_reach"`
	Resistance     float64 `json:"resistance"`
	MaxAge         float64 `json:"max_age"` // Ticks
}

// SampleGenotype draws a fresh genotype uniformly within the configured
// trait ranges.
func SampleGenotype(rng *rand.Rand, cfg config.GenotypeConfig) Genotype {
	u := func(lo, hi float64) float64 { return lo + rng.Float64()*(hi-lo) }
	return Genotype{
		Speed:                 u(cfg.SpeedMin, cfg.SpeedMax),
		Size:                  u(cfg.SizeMin, cfg.SizeMax),
		SocialRadius:          u(cfg.SocialRadiusMin, cfg.SocialRadiusMax),
		InfectionResistance:   u(cfg.ResistanceMin, cfg.ResistanceMax),
		Lifespan:              u(cfg.LifespanMin, cfg.LifespanMax),
		ReproductionThreshold: u(cfg.ReproductionThresholdMin, cfg.ReproductionThresholdMax),
		Aggressiveness:        u(cfg.AggressivenessMin, cfg.AggressivenessMax),
		ForageEfficiency:      u(cfg.ForageEfficiencyMin, cfg.ForageEfficiencyMax),
	}
}

// Phenotype derives the behavioral projection. Larger bodies move their mass
// at a higher metabolic cost but are not faster.
func (g Genotype) Phenotype() Phenotype {
	return Phenotype{
		MaxSpeed:       g.Speed,
		MetabolicScale: 0.5 + 0.5*g.Size,
		SocialReach:    g.SocialRadius,
		Resistance:     g.InfectionResistance,
		MaxAge:         g.Lifespan,
	}
}

// Mutate returns an inherited copy. Each trait independently mutates with
// the configured probability, applying a multiplicative jitter of 1 ± jitter
// and clamping back into the trait's legal range.
func (g Genotype) Mutate(rng *rand.Rand, cfg config.AgentsConfig) Genotype {
	jitter := func(v float64) float64 {
		if rng.Float64() >= cfg.MutationProbability {
			return v
		}
		return v * (1 + (rng.Float64()*2-1)*cfg.MutationJitter)
	}
	gc := cfg.Genotype

	out := Genotype{
		Speed:                 clamp(jitter(g.Speed), gc.SpeedMin, gc.SpeedMax),
		Size:                  clamp(jitter(g.Size), gc.SizeMin, gc.SizeMax),
		SocialRadius:          clamp(jitter(g.SocialRadius), gc.SocialRadiusMin, gc.SocialRadiusMax),
		InfectionResistance:   clamp01(jitter(g.InfectionResistance)),
		Lifespan:              clamp(jitter(g.Lifespan), gc.LifespanMin, gc.LifespanMax),
		ReproductionThreshold: clamp(jitter(g.ReproductionThreshold), gc.ReproductionThresholdMin, gc.ReproductionThresholdMax),
		Aggressiveness:        clamp01(jitter(g.Aggressiveness)),
		ForageEfficiency:      clamp01(jitter(g.ForageEfficiency)),
	}
	return out
}
