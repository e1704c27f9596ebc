package reason

import (
	"context"
	"log/slog"
	"sync"
)

// PlanFunc computes a decision for a snapshot. The default is Plan; tests
// substitute their own.
type PlanFunc func(Snapshot) Decision

// Dispatcher runs planning off the simulation goroutine. Submissions are
// queued per tick and results collected on a later tick; an agent never has
// more than one request outstanding. A full queue drops the submission
// rather than stalling the tick loop.
type Dispatcher struct {
	plan PlanFunc

	requests chan Snapshot
	results  chan Decision

	mu       sync.Mutex
	inFlight map[int]struct{}

	cancel context.CancelFunc
	wg     sync.WaitGroup
	logger *slog.Logger
}

// NewDispatcher starts workers goroutines serving planning requests.
// Close releases them.
func NewDispatcher(workers, queueSize int, plan PlanFunc, logger *slog.Logger) *Dispatcher {
	if plan == nil {
		plan = Plan
	}
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = workers
	}
	ctx, cancel := context.WithCancel(context.Background())
	d := &Dispatcher{
		plan:     plan,
		requests: make(chan Snapshot, queueSize),
		results:  make(chan Decision, queueSize),
		inFlight: make(map[int]struct{}),
		cancel:   cancel,
		logger:   logger,
	}
	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.worker(ctx)
	}
	return d
}

func (d *Dispatcher) worker(ctx context.Context) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-d.requests:
			if !ok {
				return
			}
			decision := d.plan(snap)
			select {
			case d.results <- decision:
			case <-ctx.Done():
				return
			}
		}
	}
}

// Submit queues a planning request. Returns false when the agent already
// has a request outstanding or the queue is full; the caller retries on a
// later tick.
func (d *Dispatcher) Submit(snap Snapshot) bool {
	d.mu.Lock()
	if _, busy := d.inFlight[snap.AgentID]; busy {
		d.mu.Unlock()
		return false
	}
	d.inFlight[snap.AgentID] = struct{}{}
	d.mu.Unlock()

	select {
	case d.requests <- snap:
		return true
	default:
		d.mu.Lock()
		delete(d.inFlight, snap.AgentID)
		d.mu.Unlock()
		if d.logger != nil {
			d.logger.Debug("planner queue full, dropping request", "agent", snap.AgentID)
		}
		return false
	}
}

// Drain collects every decision completed so far without blocking. Each
// drained agent becomes eligible for a new submission.
func (d *Dispatcher) Drain() []Decision {
	var out []Decision
	for {
		select {
		case decision := <-d.results:
			d.mu.Lock()
			delete(d.inFlight, decision.AgentID)
			d.mu.Unlock()
			out = append(out, decision)
		default:
			return out
		}
	}
}

// Pending returns the number of agents with an outstanding request.
func (d *Dispatcher) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.inFlight)
}

// Close cancels the workers and waits for them to exit. Undrained results
// are discarded.
func (d *Dispatcher) Close() {
	d.cancel()
	d.wg.Wait()
}
