package analytics

import (
	"bytes"
	"math/rand"
	"strings"
	"testing"

	"github.com/Bbeierle12/ecosysx/internal/agents"
	"github.com/Bbeierle12/ecosysx/internal/config"
	"github.com/Bbeierle12/ecosysx/internal/contact"
	"github.com/Bbeierle12/ecosysx/internal/simtime"
)

func newTestRecorder(cfg config.AnalyticsConfig) *Recorder {
	return NewRecorder(cfg, simtime.Default(), rand.New(rand.NewSource(1)))
}

func population(n int) []*agents.Agent {
	list := make([]*agents.Agent, n)
	for i := range list {
		list[i] = &agents.Agent{ID: i + 1, Energy: 50, Status: agents.Susceptible}
	}
	return list
}

func TestWindowClosesOnCadence(t *testing.T) {
	cfg := config.Default().Analytics
	cfg.WindowSize = 10
	r := newTestRecorder(cfg)
	list := population(5)

	for tick := 1; tick <= 35; tick++ {
		r.RecordStep(tick, list, agents.StepEffects{}, nil, nil, 0)
	}

	windows := r.Windows()
	if len(windows) != 3 {
		t.Fatalf("windows after 35 ticks at size 10 = %d, want 3", len(windows))
	}
	for i, w := range windows {
		if w.WindowEnd-w.WindowStart != cfg.WindowSize {
			t.Errorf("window %d spans [%d,%d], want span %d", i, w.WindowStart, w.WindowEnd, cfg.WindowSize)
		}
		if w.Population != 5 {
			t.Errorf("window %d population = %d, want 5", i, w.Population)
		}
	}
}

func TestWindowHistoryCapped(t *testing.T) {
	cfg := config.Default().Analytics
	cfg.WindowSize = 1
	r := newTestRecorder(cfg)
	list := population(2)

	for tick := 1; tick <= 3*maxWindows; tick++ {
		r.RecordStep(tick, list, agents.StepEffects{}, nil, nil, 0)
	}

	if got := len(r.Windows()); got != maxWindows {
		t.Errorf("retained windows = %d, cap is %d", got, maxWindows)
	}
	// Oldest were dropped: the first retained window is a late one.
	if first := r.Windows()[0]; first.WindowEnd <= 2*maxWindows {
		t.Errorf("first retained window ends at %d, expected the early history gone", first.WindowEnd)
	}
}

func TestCountersResetBetweenWindows(t *testing.T) {
	cfg := config.Default().Analytics
	cfg.WindowSize = 10
	r := newTestRecorder(cfg)
	list := population(4)

	r.RecordBirth(1, list[0])
	r.RecordDeath(2, list[1], "starvation")
	for tick := 1; tick <= 10; tick++ {
		r.RecordStep(tick, list, agents.StepEffects{ResourcesConsumed: 1}, nil, nil, 2)
	}

	first := r.Windows()[0]
	if first.Births != 1 || first.Deaths != 1 {
		t.Errorf("first window births/deaths = %d/%d, want 1/1", first.Births, first.Deaths)
	}
	if first.ResourcesConsumed != 10 || first.ResourcesSpawned != 20 {
		t.Errorf("first window resources = %d consumed / %d spawned, want 10/20",
			first.ResourcesConsumed, first.ResourcesSpawned)
	}

	for tick := 11; tick <= 20; tick++ {
		r.RecordStep(tick, list, agents.StepEffects{}, nil, nil, 0)
	}
	second := r.Windows()[1]
	if second.Births != 0 || second.Deaths != 0 || second.ResourcesConsumed != 0 {
		t.Errorf("second window inherited counters: %+v", second)
	}
}

func TestContactKindsClassified(t *testing.T) {
	cfg := config.Default().Analytics
	cfg.WindowSize = 1
	r := newTestRecorder(cfg)

	list := []*agents.Agent{
		{ID: 1, Kind: agents.KindBase},
		{ID: 2, Kind: agents.KindBase},
		{ID: 3, Kind: agents.KindCausal},
		{ID: 4, Kind: agents.KindCausal},
	}
	contacts := []contact.Event{
		{A: 1, B: 2, KindA: agents.KindBase, KindB: agents.KindBase, Tick: 1},
		{A: 3, B: 4, KindA: agents.KindCausal, KindB: agents.KindCausal, Tick: 1},
		{A: 1, B: 3, KindA: agents.KindBase, KindB: agents.KindCausal, Tick: 1},
	}
	r.RecordStep(1, list, agents.StepEffects{}, contacts, nil, 0)

	w := r.Windows()[0]
	if w.Contacts != 3 || w.ContactsBase != 1 || w.ContactsCausal != 1 || w.ContactsMixed != 1 {
		t.Errorf("contact classification = total %d base %d causal %d mixed %d, want 3/1/1/1",
			w.Contacts, w.ContactsBase, w.ContactsCausal, w.ContactsMixed)
	}
}

func TestContactKindsSurviveRemoval(t *testing.T) {
	cfg := config.Default().Analytics
	cfg.WindowSize = 1
	r := newTestRecorder(cfg)

	// Agent 2 died after the encounter was detected: it is gone from the
	// live list, but the event carries the kinds it had at contact time.
	list := []*agents.Agent{
		{ID: 1, Kind: agents.KindCausal, Social: &agents.Social{}},
	}
	contacts := []contact.Event{
		{A: 1, B: 2, KindA: agents.KindCausal, KindB: agents.KindCausal, Tick: 1},
	}
	r.RecordStep(1, list, agents.StepEffects{}, contacts, nil, 0)

	w := r.Windows()[0]
	if w.ContactsCausal != 1 || w.ContactsMixed != 0 || w.ContactsBase != 0 {
		t.Errorf("contact with removed party classified as base %d causal %d mixed %d, want 0/1/0",
			w.ContactsBase, w.ContactsCausal, w.ContactsMixed)
	}
}

func TestMatrixPersistsAcrossWindows(t *testing.T) {
	cfg := config.Default().Analytics
	cfg.WindowSize = 5
	r := newTestRecorder(cfg)
	list := population(2)

	for tick := 1; tick <= 20; tick++ {
		contacts := []contact.Event{{A: 1, B: 2, Tick: tick}}
		r.RecordStep(tick, list, agents.StepEffects{}, contacts, nil, 0)
	}

	pair := r.Matrix().Pair(1, 2)
	if pair.Hours != 20 {
		t.Errorf("pair hours = %v after 20 one-hour contact ticks, want 20", pair.Hours)
	}
	if pair.LastTick != 20 {
		t.Errorf("pair last tick = %d, want 20", pair.LastTick)
	}
	// Pair order must not matter.
	if r.Matrix().Pair(2, 1) != pair {
		t.Error("pair lookup is order sensitive")
	}
}

func TestTransmissionsLoggedAndCounted(t *testing.T) {
	cfg := config.Default().Analytics
	cfg.WindowSize = 1
	r := newTestRecorder(cfg)
	list := population(3)

	transmissions := []contact.Transmission{{Source: 1, Target: 2, Tick: 1}}
	r.RecordStep(1, list, agents.StepEffects{}, []contact.Event{{A: 1, B: 2, Tick: 1}}, transmissions, 0)

	w := r.Windows()[0]
	if w.Transmissions != 1 {
		t.Errorf("window transmissions = %d, want 1", w.Transmissions)
	}
	if got := r.Matrix().Pair(1, 2).Transmissions; got != 1 {
		t.Errorf("matrix pair transmissions = %d, want 1", got)
	}
	if got := w.InfectionsBySource[1]; got != 1 {
		t.Errorf("infections credited to source 1 = %d, want 1", got)
	}
	found := false
	for _, ev := range w.Events {
		if ev.Type == "transmission" {
			found = true
		}
	}
	if !found {
		t.Error("transmission missing from the window event log")
	}
}

func TestEventLogCapped(t *testing.T) {
	cfg := config.Default().Analytics
	cfg.WindowSize = 100
	cfg.MaxEventsPerWindow = 5
	r := newTestRecorder(cfg)

	for i := 0; i < 20; i++ {
		r.Event(1, "death", "x")
	}
	list := population(1)
	for tick := 1; tick <= 100; tick++ {
		r.RecordStep(tick, list, agents.StepEffects{}, nil, nil, 0)
	}

	w := r.Windows()[0]
	if len(w.Events) != 5 {
		t.Errorf("events kept = %d, cap is 5", len(w.Events))
	}
	if w.EventsDropped != 15 {
		t.Errorf("events dropped = %d, want 15", w.EventsDropped)
	}
}

func TestCheckpointCadenceAndCap(t *testing.T) {
	cfg := config.Default().Analytics
	cfg.WindowSize = 1000
	cfg.CheckpointInterval = 10
	r := newTestRecorder(cfg)
	list := population(3)

	for tick := 1; tick <= 300; tick++ {
		r.RecordStep(tick, list, agents.StepEffects{}, nil, nil, 0)
	}

	cps := r.Checkpoints()
	if len(cps) != maxCheckpoints {
		t.Fatalf("checkpoints = %d, cap is %d", len(cps), maxCheckpoints)
	}
	// The newest survive; 30 were cut, the first 20 dropped.
	if cps[0].Tick != 210 || cps[len(cps)-1].Tick != 300 {
		t.Errorf("retained checkpoint range [%d,%d], want [210,300]", cps[0].Tick, cps[len(cps)-1].Tick)
	}
}

func TestCheckpointSelfContained(t *testing.T) {
	cfg := config.Default().Analytics
	cfg.WindowSize = 10
	cfg.CheckpointInterval = 30
	r := newTestRecorder(cfg)
	list := population(4)

	r.RecordBirth(1, list[0])
	for tick := 1; tick <= 30; tick++ {
		contacts := []contact.Event{{A: 1, B: 2, Tick: tick}}
		r.RecordStep(tick, list, agents.StepEffects{}, contacts, nil, 0)
	}

	cps := r.Checkpoints()
	if len(cps) != 1 {
		t.Fatalf("checkpoints = %d, want 1", len(cps))
	}
	cp := cps[0]
	if cp.Perf.WindowsClosed != 3 || cp.Perf.PairsSeen != 1 || cp.Perf.EventsLogged != 1 {
		t.Errorf("perf = %+v, want 3 windows / 1 pair / 1 event", cp.Perf)
	}
	if len(cp.RecentWindows) != 3 {
		t.Fatalf("embedded windows = %d, want all 3 closed so far", len(cp.RecentWindows))
	}
	if last := cp.RecentWindows[2]; last.WindowEnd != 30 {
		t.Errorf("newest embedded window ends at %d, want 30", last.WindowEnd)
	}
	if len(cp.Panel) != 4 {
		t.Errorf("embedded panel = %v, want all 4 members", cp.Panel)
	}

	// Later checkpoints carry their own bounded tail; earlier ones keep the
	// snapshot they were cut with.
	for tick := 31; tick <= 60; tick++ {
		r.RecordStep(tick, list, agents.StepEffects{}, nil, nil, 0)
	}
	cps = r.Checkpoints()
	if len(cps) != 2 {
		t.Fatalf("checkpoints after 60 ticks = %d, want 2", len(cps))
	}
	second := cps[1]
	if len(second.RecentWindows) != checkpointWindows {
		t.Errorf("second checkpoint embeds %d windows, want %d", len(second.RecentWindows), checkpointWindows)
	}
	if got := second.RecentWindows[len(second.RecentWindows)-1].WindowEnd; got != 60 {
		t.Errorf("second checkpoint newest window ends at %d, want 60", got)
	}
	if got := cps[0].RecentWindows[0].WindowEnd; got != 10 {
		t.Errorf("first checkpoint embedded window now ends at %d, want the original 10", got)
	}
}

func TestInfectiousHoursAccumulate(t *testing.T) {
	cfg := config.Default().Analytics
	cfg.WindowSize = 24
	r := newTestRecorder(cfg)

	list := population(3)
	list[0].Status = agents.Infected
	list[0].Kind = agents.KindCausal
	list[0].Social = &agents.Social{}

	for tick := 1; tick <= 24; tick++ {
		r.RecordStep(tick, list, agents.StepEffects{}, nil, nil, 0)
	}
	w := r.Windows()[0]
	if w.InfectiousHours != 24 {
		t.Errorf("infectious hours = %v for one infected agent over 24 one-hour ticks, want 24", w.InfectiousHours)
	}
	if w.InfectiousHoursCausal != 24 {
		t.Errorf("causal infectious hours = %v, want 24", w.InfectiousHoursCausal)
	}
	if w.Infected != 1 || w.Susceptible != 2 {
		t.Errorf("window tally I=%d S=%d, want 1/2", w.Infected, w.Susceptible)
	}
}

func TestResetClearsEverything(t *testing.T) {
	cfg := config.Default().Analytics
	cfg.WindowSize = 1
	r := newTestRecorder(cfg)
	list := population(2)
	for tick := 1; tick <= 10; tick++ {
		r.RecordStep(tick, list, agents.StepEffects{}, []contact.Event{{A: 1, B: 2, Tick: tick}}, nil, 0)
	}

	r.Reset()
	if len(r.Windows()) != 0 || len(r.Checkpoints()) != 0 || r.Matrix().Len() != 0 || r.Panel().Len() != 0 {
		t.Errorf("state survived reset: windows=%d checkpoints=%d pairs=%d panel=%d",
			len(r.Windows()), len(r.Checkpoints()), r.Matrix().Len(), r.Panel().Len())
	}
}

func TestExportContainsRetainedHistory(t *testing.T) {
	cfg := config.Default().Analytics
	cfg.WindowSize = 5
	cfg.CheckpointInterval = 10
	r := newTestRecorder(cfg)
	list := population(3)

	for tick := 1; tick <= 20; tick++ {
		contacts := []contact.Event{
			{A: 1, B: 2, Tick: tick},
			{A: 2, B: 3, Tick: tick},
		}
		var transmissions []contact.Transmission
		if tick == 3 {
			transmissions = []contact.Transmission{{Source: 1, Target: 2, Tick: tick}}
		}
		r.RecordStep(tick, list, agents.StepEffects{}, contacts, transmissions, 0)
	}

	rep := r.Export()
	if len(rep.Windows) != 4 {
		t.Errorf("exported windows = %d, want 4", len(rep.Windows))
	}
	if len(rep.Checkpoints) != 2 {
		t.Errorf("exported checkpoints = %d, want 2", len(rep.Checkpoints))
	}
	if len(rep.Panel) != 3 {
		t.Errorf("exported panel = %v, want all 3 members", rep.Panel)
	}
	if len(rep.Contacts) != r.Matrix().Len() {
		t.Fatalf("exported matrix rows = %d, matrix has %d cells", len(rep.Contacts), r.Matrix().Len())
	}
	rows := make(map[[2]int]MatrixRow, len(rep.Contacts))
	for _, row := range rep.Contacts {
		rows[[2]int{row.AgentA, row.AgentB}] = row
	}
	if row, ok := rows[[2]int{1, 2}]; !ok || row.Hours != 20 || row.Transmissions != 1 {
		t.Errorf("pair (1,2) exported as %+v, want 20 hours and 1 transmission", row)
	}
	if row, ok := rows[[2]int{2, 3}]; !ok || row.Hours != 20 || row.Transmissions != 0 {
		t.Errorf("pair (2,3) exported as %+v, want 20 hours and no transmissions", row)
	}
}

func TestWindowsCSVHasHeaderAndRows(t *testing.T) {
	cfg := config.Default().Analytics
	cfg.WindowSize = 5
	r := newTestRecorder(cfg)
	list := population(2)
	for tick := 1; tick <= 10; tick++ {
		r.RecordStep(tick, list, agents.StepEffects{}, nil, nil, 0)
	}

	var buf bytes.Buffer
	if err := r.WriteWindowsCSV(&buf); err != nil {
		t.Fatalf("WriteWindowsCSV: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("csv lines = %d, want header plus 2 windows", len(lines))
	}
	if !strings.Contains(lines[0], "window_end") || !strings.Contains(lines[0], "energy_mean") {
		t.Errorf("header missing expected columns: %q", lines[0])
	}
}
