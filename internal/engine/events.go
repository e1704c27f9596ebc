package engine

import "github.com/Bbeierle12/ecosysx/internal/analytics"

// EventType labels the lifecycle notifications the engine emits.
type EventType string

const (
	EventStepCompleted      EventType = "step_completed"
	EventAgentAdded         EventType = "agent_added"
	EventAgentRemoved       EventType = "agent_removed"
	EventPopulationChanged  EventType = "population_changed"
	EventStatisticsUpdated  EventType = "statistics_updated"
	EventEnvironmentUpdated EventType = "environment_updated"
	EventExtinction         EventType = "extinction"
	EventSimulationReset    EventType = "simulation_reset"
	EventSimulationEnded    EventType = "simulation_ended"
)

// Event is one notification on the engine's event stream.
type Event struct {
	Type       EventType                  `json:"type"`
	Tick       int                        `json:"tick"`
	AgentID    int                        `json:"agent_id,omitempty"`
	Population int                        `json:"population,omitempty"`
	Spawned    int                        `json:"spawned,omitempty"`
	Consumed   int                        `json:"consumed,omitempty"`
	Stats      *analytics.PopulationStats `json:"stats,omitempty"`
	Detail     string                     `json:"detail,omitempty"`
}

// emit delivers without blocking: a slow or absent consumer drops events
// rather than stalling the tick loop.
func (e *Engine) emit(ev Event) {
	select {
	case e.events <- ev:
	default:
		e.eventsDropped++
	}
}

// Events returns the engine's notification stream.
func (e *Engine) Events() <-chan Event {
	return e.events
}
