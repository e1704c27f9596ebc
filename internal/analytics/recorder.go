// Package analytics turns the raw tick stream into windowed summaries, a
// persistent contact matrix, a longitudinal agent panel, and periodic
// checkpoints. It observes the simulation only: nothing in this package
// mutates agent state.
package analytics

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/stat"

	"github.com/Bbeierle12/ecosysx/internal/agents"
	"github.com/Bbeierle12/ecosysx/internal/config"
	"github.com/Bbeierle12/ecosysx/internal/contact"
	"github.com/Bbeierle12/ecosysx/internal/simtime"
)

// Retention caps. Oldest entries fall off when exceeded.
const (
	maxWindows     = 50
	maxCheckpoints = 10

	// Closed windows embedded in each checkpoint.
	checkpointWindows = 5
)

// EventRecord is one notable occurrence kept in the window's event log.
type EventRecord struct {
	Tick   int    `json:"tick"`
	Type   string `json:"type"`
	Detail string `json:"detail"`
}

// WindowStats is the aggregate for one closed window.
type WindowStats struct {
	WindowStart int     `csv:"-" json:"window_start"`
	WindowEnd   int     `csv:"window_end" json:"window_end"`
	SimDays     float64 `csv:"sim_days" json:"sim_days"`

	// Population at window end
	Population  int `csv:"population" json:"population"`
	Susceptible int `csv:"susceptible" json:"susceptible"`
	Infected    int `csv:"infected" json:"infected"`
	Recovered   int `csv:"recovered" json:"recovered"`
	Causal      int `csv:"causal" json:"causal"`

	// Events during the window
	Births int `csv:"births" json:"births"`
	Deaths int `csv:"deaths" json:"deaths"`

	// Contact structure
	Contacts       int `csv:"contacts" json:"contacts"`
	ContactsBase   int `csv:"contacts_base" json:"contacts_base"`
	ContactsCausal int `csv:"contacts_causal" json:"contacts_causal"`
	ContactsMixed  int `csv:"contacts_mixed" json:"contacts_mixed"`
	Transmissions  int `csv:"transmissions" json:"transmissions"`

	InfectiousHours       float64 `csv:"infectious_hours" json:"infectious_hours"`
	InfectiousHoursCausal float64 `csv:"infectious_hours_causal" json:"infectious_hours_causal"`

	// Infections credited to each source agent during the window.
	InfectionsBySource map[int]int `csv:"-" json:"infections_by_source,omitempty"`

	// Energy distribution at window end
	EnergyMean       float64 `csv:"energy_mean" json:"energy_mean"`
	EnergyStd        float64 `csv:"energy_std" json:"energy_std"`
	EnergyMeanBase   float64 `csv:"energy_mean_base" json:"energy_mean_base"`
	EnergyMeanCausal float64 `csv:"energy_mean_causal" json:"energy_mean_causal"`

	// Resource flow
	ResourcesConsumed int     `csv:"resources_consumed" json:"resources_consumed"`
	ResourcesSpawned  int     `csv:"resources_spawned" json:"resources_spawned"`
	EnergyForaged     float64 `csv:"energy_foraged" json:"energy_foraged"`

	Events        []EventRecord `csv:"-" json:"events,omitempty"`
	EventsDropped int           `csv:"events_dropped" json:"events_dropped"`
}

// CheckpointPerf holds the run counters captured with each checkpoint.
type CheckpointPerf struct {
	WindowsClosed int `json:"windows_closed"`
	PairsSeen     int `json:"pairs_seen"`
	EventsLogged  int `json:"events_logged"`
	EventsDropped int `json:"events_dropped"`
}

// Checkpoint is a periodic self-contained snapshot of the run: population
// totals, the most recently closed windows, the panel membership, and the
// run counters at the moment it was cut.
type Checkpoint struct {
	Tick        int     `json:"tick"`
	Population  int     `json:"population"`
	Susceptible int     `json:"susceptible"`
	Infected    int     `json:"infected"`
	Recovered   int     `json:"recovered"`
	Causal      int     `json:"causal"`
	MeanEnergy  float64 `json:"mean_energy"`

	RecentWindows []WindowStats  `json:"recent_windows,omitempty"`
	Panel         []int          `json:"panel,omitempty"`
	Perf          CheckpointPerf `json:"perf"`
}

// PopulationStats is the instantaneous population tally.
type PopulationStats struct {
	Population  int     `json:"population"`
	Susceptible int     `json:"susceptible"`
	Infected    int     `json:"infected"`
	Recovered   int     `json:"recovered"`
	Causal      int     `json:"causal"`
	MeanEnergy  float64 `json:"mean_energy"`
}

// ComputeStats tallies the live population.
func ComputeStats(list []*agents.Agent) PopulationStats {
	s := PopulationStats{Population: len(list)}
	energies := make([]float64, 0, len(list))
	for _, a := range list {
		switch a.Status {
		case agents.Susceptible:
			s.Susceptible++
		case agents.Infected:
			s.Infected++
		case agents.Recovered:
			s.Recovered++
		}
		if a.IsCausal() {
			s.Causal++
		}
		energies = append(energies, a.Energy)
	}
	if len(energies) > 0 {
		s.MeanEnergy = stat.Mean(energies, nil)
	}
	return s
}

// Recorder accumulates one window at a time and keeps the cross-window
// artifacts. It serves a single engine goroutine.
type Recorder struct {
	cfg config.AnalyticsConfig
	tc  simtime.Config

	windowStart int

	births, deaths        int
	contacts              int
	contactsBase          int
	contactsCausal        int
	contactsMixed         int
	transmissions         int
	infectiousHours       float64
	infectiousHoursCausal float64
	infectionsBySource    map[int]int
	resourcesConsumed     int
	resourcesSpawned      int
	energyForaged         float64
	events                []EventRecord
	eventsDropped         int

	// Run totals, untouched by window flushes.
	eventsLoggedRun  int
	eventsDroppedRun int

	windows     []WindowStats
	checkpoints []Checkpoint
	matrix      *Matrix
	panel       *Panel
}

// NewRecorder builds a recorder with the run's window cadence.
func NewRecorder(cfg config.AnalyticsConfig, tc simtime.Config, rng *rand.Rand) *Recorder {
	return &Recorder{
		cfg:    cfg,
		tc:     tc,
		matrix: NewMatrix(tc.StepHours),
		panel:  NewPanel(cfg.PanelSize, cfg.WindowSize, rng),
	}
}

// RecordStep folds one completed tick into the current window: the
// population sweep's side effects, the tick's contact events, and any
// transmissions. Closes the window when the cadence is reached and cuts a
// checkpoint on the checkpoint interval.
func (r *Recorder) RecordStep(
	tick int,
	list []*agents.Agent,
	effects agents.StepEffects,
	contacts []contact.Event,
	transmissions []contact.Transmission,
	spawned int,
) {
	for _, a := range list {
		if a.Status == agents.Infected {
			r.infectiousHours += r.tc.StepHours
			if a.IsCausal() {
				r.infectiousHoursCausal += r.tc.StepHours
			}
		}
		r.panel.Offer(a.ID, tick)
	}

	for _, ev := range contacts {
		r.contacts++
		// Kinds come from the event, not the live list: a party may have
		// died between detection and recording.
		switch {
		case ev.KindA == agents.KindCausal && ev.KindB == agents.KindCausal:
			r.contactsCausal++
		case ev.KindA == agents.KindBase && ev.KindB == agents.KindBase:
			r.contactsBase++
		default:
			r.contactsMixed++
		}
		r.matrix.RecordContact(ev.A, ev.B, ev.Tick)
	}

	for _, tr := range transmissions {
		r.transmissions++
		if r.infectionsBySource == nil {
			r.infectionsBySource = make(map[int]int)
		}
		r.infectionsBySource[tr.Source]++
		r.matrix.RecordTransmission(tr.Source, tr.Target, tr.Tick)
		r.Event(tr.Tick, "transmission", fmt.Sprintf("agent %d infected agent %d", tr.Source, tr.Target))
	}

	r.resourcesConsumed += effects.ResourcesConsumed
	r.energyForaged += effects.EnergyForaged
	r.resourcesSpawned += spawned

	if tick-r.windowStart >= r.cfg.WindowSize {
		r.flush(tick, list)
	}
	if r.cfg.CheckpointInterval > 0 && tick > 0 && tick%r.cfg.CheckpointInterval == 0 {
		r.checkpoint(tick, list)
	}
}

// RecordBirth notes a birth in the current window.
func (r *Recorder) RecordBirth(tick int, a *agents.Agent) {
	r.births++
	r.Event(tick, "birth", fmt.Sprintf("agent %d born (%s)", a.ID, a.Kind))
}

// RecordDeath notes a death and retires the agent from the panel.
func (r *Recorder) RecordDeath(tick int, a *agents.Agent, cause string) {
	r.deaths++
	r.panel.Remove(a.ID)
	r.Event(tick, "death", fmt.Sprintf("agent %d died (%s)", a.ID, cause))
}

// Event appends to the window's capped event log. Overflow is counted, not
// stored.
func (r *Recorder) Event(tick int, kind, detail string) {
	if r.cfg.MaxEventsPerWindow > 0 && len(r.events) >= r.cfg.MaxEventsPerWindow {
		r.eventsDropped++
		r.eventsDroppedRun++
		return
	}
	r.events = append(r.events, EventRecord{Tick: tick, Type: kind, Detail: detail})
	r.eventsLoggedRun++
}

func (r *Recorder) flush(tick int, list []*agents.Agent) {
	pop := ComputeStats(list)

	energies := make([]float64, len(list))
	var baseEnergies, causalEnergies []float64
	for i, a := range list {
		energies[i] = a.Energy
		if a.IsCausal() {
			causalEnergies = append(causalEnergies, a.Energy)
		} else {
			baseEnergies = append(baseEnergies, a.Energy)
		}
	}
	var std, meanBase, meanCausal float64
	if len(energies) > 1 {
		std = stat.StdDev(energies, nil)
	}
	if len(baseEnergies) > 0 {
		meanBase = stat.Mean(baseEnergies, nil)
	}
	if len(causalEnergies) > 0 {
		meanCausal = stat.Mean(causalEnergies, nil)
	}

	w := WindowStats{
		WindowStart: r.windowStart,
		WindowEnd:   tick,
		SimDays:     r.tc.StepsToDays(tick),

		Population:  pop.Population,
		Susceptible: pop.Susceptible,
		Infected:    pop.Infected,
		Recovered:   pop.Recovered,
		Causal:      pop.Causal,

		Births: r.births,
		Deaths: r.deaths,

		Contacts:       r.contacts,
		ContactsBase:   r.contactsBase,
		ContactsCausal: r.contactsCausal,
		ContactsMixed:  r.contactsMixed,
		Transmissions:  r.transmissions,

		InfectiousHours:       r.infectiousHours,
		InfectiousHoursCausal: r.infectiousHoursCausal,
		InfectionsBySource:    r.infectionsBySource,
		EnergyMean:            pop.MeanEnergy,
		EnergyStd:             std,
		EnergyMeanBase:        meanBase,
		EnergyMeanCausal:      meanCausal,

		ResourcesConsumed: r.resourcesConsumed,
		ResourcesSpawned:  r.resourcesSpawned,
		EnergyForaged:     r.energyForaged,

		Events:        r.events,
		EventsDropped: r.eventsDropped,
	}

	r.windows = append(r.windows, w)
	if len(r.windows) > maxWindows {
		r.windows = r.windows[len(r.windows)-maxWindows:]
	}

	r.windowStart = tick
	r.births, r.deaths = 0, 0
	r.contacts, r.contactsBase, r.contactsCausal, r.contactsMixed = 0, 0, 0, 0
	r.transmissions = 0
	r.infectiousHours, r.infectiousHoursCausal = 0, 0
	r.infectionsBySource = nil
	r.resourcesConsumed, r.resourcesSpawned = 0, 0
	r.energyForaged = 0
	r.events = nil
	r.eventsDropped = 0
}

func (r *Recorder) checkpoint(tick int, list []*agents.Agent) {
	pop := ComputeStats(list)

	// Copy the window tail: the history slice is trimmed in place as it
	// rolls, and the checkpoint must stay self-contained.
	tail := r.windows
	if len(tail) > checkpointWindows {
		tail = tail[len(tail)-checkpointWindows:]
	}
	recent := make([]WindowStats, len(tail))
	copy(recent, tail)

	r.checkpoints = append(r.checkpoints, Checkpoint{
		Tick:        tick,
		Population:  pop.Population,
		Susceptible: pop.Susceptible,
		Infected:    pop.Infected,
		Recovered:   pop.Recovered,
		Causal:      pop.Causal,
		MeanEnergy:  pop.MeanEnergy,

		RecentWindows: recent,
		Panel:         r.panel.IDs(),
		Perf: CheckpointPerf{
			WindowsClosed: len(r.windows),
			PairsSeen:     r.matrix.Len(),
			EventsLogged:  r.eventsLoggedRun,
			EventsDropped: r.eventsDroppedRun,
		},
	})
	if len(r.checkpoints) > maxCheckpoints {
		r.checkpoints = r.checkpoints[len(r.checkpoints)-maxCheckpoints:]
	}
}

// Windows returns the closed windows, oldest first.
func (r *Recorder) Windows() []WindowStats {
	return r.windows
}

// Checkpoints returns the retained checkpoints, oldest first.
func (r *Recorder) Checkpoints() []Checkpoint {
	return r.checkpoints
}

// Matrix returns the persistent contact matrix.
func (r *Recorder) Matrix() *Matrix {
	return r.matrix
}

// Panel returns the longitudinal agent panel.
func (r *Recorder) Panel() *Panel {
	return r.panel
}

// Reset clears everything, including the cross-window artifacts.
func (r *Recorder) Reset() {
	r.windowStart = 0
	r.births, r.deaths = 0, 0
	r.contacts, r.contactsBase, r.contactsCausal, r.contactsMixed = 0, 0, 0, 0
	r.transmissions = 0
	r.infectiousHours, r.infectiousHoursCausal = 0, 0
	r.infectionsBySource = nil
	r.resourcesConsumed, r.resourcesSpawned = 0, 0
	r.energyForaged = 0
	r.events = nil
	r.eventsDropped = 0
	r.eventsLoggedRun, r.eventsDroppedRun = 0, 0
	r.windows = nil
	r.checkpoints = nil
	r.matrix.Reset()
	r.panel.Reset()
}
