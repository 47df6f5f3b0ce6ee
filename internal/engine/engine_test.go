package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/sadopc/pomo/internal/clock"
	"github.com/sadopc/pomo/internal/store"
)

// ============================================================
// Test fakes
// ============================================================

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }

type fakeTask struct {
	delay     time.Duration
	fn        func()
	cancelled bool
	fired     bool
}

func (t *fakeTask) Cancel() bool {
	if t.cancelled || t.fired {
		return false
	}
	t.cancelled = true
	return true
}

type fakeScheduler struct {
	tasks []*fakeTask
}

func (s *fakeScheduler) ScheduleIn(d time.Duration, fn func()) clock.Handle {
	task := &fakeTask{delay: d, fn: fn}
	s.tasks = append(s.tasks, task)
	return task
}

// live returns tasks that are neither cancelled nor already fired.
func (s *fakeScheduler) live() []*fakeTask {
	var out []*fakeTask
	for _, t := range s.tasks {
		if !t.cancelled && !t.fired {
			out = append(out, t)
		}
	}
	return out
}

type recordingNotifier struct {
	titles []string
	bodies []string
}

func (n *recordingNotifier) Notify(title, body string) {
	n.titles = append(n.titles, title)
	n.bodies = append(n.bodies, body)
}

// ============================================================
// Harness
// ============================================================

type harness struct {
	t        *testing.T
	store    *store.Store
	clk      *fakeClock
	sched    *fakeScheduler
	notifier *recordingNotifier
	engine   *Engine
}

var testEpoch = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

// newHarness builds the collaborators but not the engine, so tests can
// seed the store before construction.
func newHarness(t *testing.T) *harness {
	t.Helper()
	s, err := store.NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	return &harness{
		t:        t,
		store:    s,
		clk:      &fakeClock{now: testEpoch},
		sched:    &fakeScheduler{},
		notifier: &recordingNotifier{},
	}
}

func (h *harness) build() *Engine {
	h.t.Helper()
	h.engine = New(h.store, h.notifier, h.clk, h.sched)
	return h.engine
}

// tick fires the single pending scheduled callback, advancing the fake
// clock by its delay first.
func (h *harness) tick() {
	h.t.Helper()
	live := h.sched.live()
	if len(live) != 1 {
		h.t.Fatalf("expected exactly one pending tick, got %d", len(live))
	}
	task := live[0]
	task.fired = true
	h.clk.advance(task.delay)
	task.fn()
}

func (h *harness) wantState(phase Phase, remaining int, running bool) {
	h.t.Helper()
	got := h.engine.State()
	if got.Phase != phase || got.Remaining != remaining || got.Running != running {
		h.t.Fatalf("state = {%v %d %v}, want {%v %d %v}",
			got.Phase, got.Remaining, got.Running, phase, remaining, running)
	}
}

func (h *harness) seedSnapshot(snap store.Snapshot) {
	h.t.Helper()
	if err := h.store.SaveSnapshot(snap); err != nil {
		h.t.Fatalf("seed snapshot: %v", err)
	}
}

// ============================================================
// Initialization
// ============================================================

func TestNewDefaults(t *testing.T) {
	h := newHarness(t)
	h.build()

	h.wantState(Work, 25*60, false)

	// The resulting state is persisted immediately.
	snap, err := h.store.LoadSnapshot()
	if err != nil {
		t.Fatal(err)
	}
	if snap == nil {
		t.Fatal("expected a persisted snapshot after init")
	}
	if snap.IsRunning || snap.TimeLeft != 25*60 || snap.IsBreak {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if snap.LastUpdate != testEpoch.UnixMilli() {
		t.Fatalf("LastUpdate = %d, want %d", snap.LastUpdate, testEpoch.UnixMilli())
	}

	if len(h.sched.live()) != 0 {
		t.Fatal("no tick should be scheduled while paused")
	}
}

func TestFullDurationFollowsSettings(t *testing.T) {
	h := newHarness(t)
	if err := h.store.SaveSettings(store.Settings{WorkMinutes: 50, BreakMinutes: 10}); err != nil {
		t.Fatal(err)
	}
	e := h.build()

	if got := e.FullDuration(Work); got != 50*60 {
		t.Fatalf("FullDuration(Work) = %d, want %d", got, 50*60)
	}
	if got := e.FullDuration(Break); got != 10*60 {
		t.Fatalf("FullDuration(Break) = %d, want %d", got, 10*60)
	}
	h.wantState(Work, 50*60, false)
}

// ============================================================
// Ticking
// ============================================================

func TestTickDecrementsByOne(t *testing.T) {
	h := newHarness(t)
	e := h.build()
	e.Start()

	for i := 1; i <= 5; i++ {
		h.tick()
		if got := e.State().Remaining; got != 25*60-i {
			t.Fatalf("after %d ticks remaining = %d, want %d", i, got, 25*60-i)
		}
	}

	// Each tick persists with a fresh timestamp.
	snap, _ := h.store.LoadSnapshot()
	if snap.TimeLeft != 25*60-5 {
		t.Fatalf("persisted TimeLeft = %d, want %d", snap.TimeLeft, 25*60-5)
	}
	if snap.LastUpdate != h.clk.now.UnixMilli() {
		t.Fatalf("persisted LastUpdate = %d, want %d", snap.LastUpdate, h.clk.now.UnixMilli())
	}
}

func TestStartWhenRunningIsNoop(t *testing.T) {
	h := newHarness(t)
	e := h.build()
	e.Start()
	e.Start()

	if got := len(h.sched.live()); got != 1 {
		t.Fatalf("pending ticks = %d, want 1", got)
	}
	h.wantState(Work, 25*60, true)
}

func TestPauseCancelsPendingTick(t *testing.T) {
	h := newHarness(t)
	e := h.build()
	e.Start()
	h.tick()
	e.Pause()

	if got := len(h.sched.live()); got != 0 {
		t.Fatalf("pending ticks after pause = %d, want 0", got)
	}
	h.wantState(Work, 25*60-1, false)

	// Pause again is a no-op but still re-persists.
	e.Pause()
	snap, _ := h.store.LoadSnapshot()
	if snap.IsRunning {
		t.Fatal("snapshot should not be running")
	}
}

func TestStaleTickIgnoredAfterPause(t *testing.T) {
	h := newHarness(t)
	e := h.build()
	e.Start()

	stale := h.sched.live()[0]
	e.Pause()
	e.Start()

	// Simulate the cancelled timer having already fired: its callback
	// must not decrement or double-schedule.
	stale.fn()

	h.wantState(Work, 25*60, true)
	if got := len(h.sched.live()); got != 1 {
		t.Fatalf("pending ticks = %d, want 1", got)
	}
}

// ============================================================
// Phase transitions
// ============================================================

func TestTransitionFlipsAndAutoPauses(t *testing.T) {
	h := newHarness(t)
	if err := h.store.SaveSettings(store.Settings{WorkMinutes: 1, BreakMinutes: 5}); err != nil {
		t.Fatal(err)
	}
	e := h.build()
	e.Start()

	for i := 0; i < 60; i++ {
		h.tick()
	}

	h.wantState(Break, 5*60, false)
	if got := len(h.sched.live()); got != 0 {
		t.Fatalf("pending ticks after transition = %d, want 0", got)
	}

	if len(h.notifier.bodies) != 1 {
		t.Fatalf("notifications = %d, want 1", len(h.notifier.bodies))
	}
	if h.notifier.bodies[0] != "Great work! Time for a well-deserved break." {
		t.Fatalf("unexpected notification body: %q", h.notifier.bodies[0])
	}

	sessions, err := h.store.ListSessions(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 1 || sessions[0].Phase != "work" || sessions[0].Duration != 60 {
		t.Fatalf("unexpected session log: %+v", sessions)
	}

	// The transition itself is persisted.
	snap, _ := h.store.LoadSnapshot()
	if snap.IsRunning || !snap.IsBreak || snap.TimeLeft != 5*60 {
		t.Fatalf("unexpected snapshot after transition: %+v", snap)
	}

	// Restart runs the break; finishing it flips back to work.
	e.Start()
	for i := 0; i < 5*60; i++ {
		h.tick()
	}
	h.wantState(Work, 60, false)
	if len(h.notifier.bodies) != 2 {
		t.Fatalf("notifications = %d, want 2", len(h.notifier.bodies))
	}
	if h.notifier.bodies[1] != "Break is over. Time to get back to work!" {
		t.Fatalf("unexpected notification body: %q", h.notifier.bodies[1])
	}
}

func TestTransitionMessages(t *testing.T) {
	title, body := transitionMessage(Work)
	if title != "Work session complete" || body != "Great work! Time for a well-deserved break." {
		t.Fatalf("unexpected work message: %q / %q", title, body)
	}
	title, body = transitionMessage(Break)
	if title != "Break complete" || body != "Break is over. Time to get back to work!" {
		t.Fatalf("unexpected break message: %q / %q", title, body)
	}
}

// ============================================================
// Elapsed-time reconciliation
// ============================================================

func TestReconcileShortAbsence(t *testing.T) {
	h := newHarness(t)
	h.seedSnapshot(store.Snapshot{
		IsRunning:  true,
		TimeLeft:   100,
		IsBreak:    false,
		LastUpdate: testEpoch.Add(-40 * time.Second).UnixMilli(),
	})
	h.build()

	h.wantState(Work, 60, true)
	if got := len(h.sched.live()); got != 1 {
		t.Fatalf("pending ticks = %d, want 1", got)
	}
	if len(h.notifier.bodies) != 0 {
		t.Fatal("no notification expected for a short absence")
	}
}

func TestReconcileLongAbsenceAppliesOneFlip(t *testing.T) {
	h := newHarness(t)
	h.seedSnapshot(store.Snapshot{
		IsRunning:  true,
		TimeLeft:   100,
		IsBreak:    false,
		LastUpdate: testEpoch.Add(-400 * time.Second).UnixMilli(),
	})
	h.build()

	h.wantState(Break, 5*60, false)
	if got := len(h.sched.live()); got != 0 {
		t.Fatalf("pending ticks = %d, want 0", got)
	}
	if len(h.notifier.bodies) != 1 {
		t.Fatalf("notifications = %d, want 1", len(h.notifier.bodies))
	}

	sessions, _ := h.store.ListSessions(0)
	if len(sessions) != 1 || sessions[0].Phase != "work" {
		t.Fatalf("expected one logged work session, got %+v", sessions)
	}
}

func TestReconcileVeryLongAbsenceStillOneFlip(t *testing.T) {
	h := newHarness(t)
	// Several full cycles could have elapsed; exactly one flip applies.
	h.seedSnapshot(store.Snapshot{
		IsRunning:  true,
		TimeLeft:   100,
		IsBreak:    false,
		LastUpdate: testEpoch.Add(-24 * time.Hour).UnixMilli(),
	})
	h.build()

	h.wantState(Break, 5*60, false)
	if len(h.notifier.bodies) != 1 {
		t.Fatalf("notifications = %d, want 1", len(h.notifier.bodies))
	}
}

func TestReconcilePausedRestoresVerbatim(t *testing.T) {
	h := newHarness(t)
	h.seedSnapshot(store.Snapshot{
		IsRunning:  false,
		TimeLeft:   123,
		IsBreak:    true,
		LastUpdate: testEpoch.Add(-72 * time.Hour).UnixMilli(),
	})
	h.build()

	// Elapsed time is ignored for a paused snapshot.
	h.wantState(Break, 123, false)
	if len(h.notifier.bodies) != 0 {
		t.Fatal("no notification expected")
	}
}

func TestReconcileFutureTimestampClampsElapsed(t *testing.T) {
	h := newHarness(t)
	h.seedSnapshot(store.Snapshot{
		IsRunning:  true,
		TimeLeft:   100,
		IsBreak:    false,
		LastUpdate: testEpoch.Add(time.Hour).UnixMilli(),
	})
	h.build()

	// A clock that moved backwards counts as zero elapsed.
	h.wantState(Work, 100, true)
}

func TestReconcileRunningClampsToShrunkenSettings(t *testing.T) {
	h := newHarness(t)
	if err := h.store.SaveSettings(store.Settings{WorkMinutes: 5, BreakMinutes: 5}); err != nil {
		t.Fatal(err)
	}
	// Snapshot written under larger settings than the store now holds.
	h.seedSnapshot(store.Snapshot{
		IsRunning:  true,
		TimeLeft:   1400,
		IsBreak:    false,
		LastUpdate: testEpoch.Add(-10 * time.Second).UnixMilli(),
	})
	h.build()

	h.wantState(Work, 5*60, true)
	if got := h.engine.Progress(); got != 0 {
		t.Fatalf("progress = %v, want 0", got)
	}
}

func TestRoundTripZeroElapsed(t *testing.T) {
	h := newHarness(t)
	h.seedSnapshot(store.Snapshot{
		IsRunning:  true,
		TimeLeft:   100,
		IsBreak:    false,
		LastUpdate: testEpoch.UnixMilli(),
	})
	h.build()

	h.wantState(Work, 100, true)
}

// ============================================================
// Reset
// ============================================================

func TestResetClearsPersistence(t *testing.T) {
	h := newHarness(t)
	e := h.build()
	e.Start()
	h.tick()
	h.tick()

	e.Reset()
	h.wantState(Work, 25*60, false)
	if got := len(h.sched.live()); got != 0 {
		t.Fatalf("pending ticks = %d, want 0", got)
	}

	snap, err := h.store.LoadSnapshot()
	if err != nil {
		t.Fatal(err)
	}
	if snap != nil {
		t.Fatalf("snapshot should be cleared, got %+v", snap)
	}

	// A fresh engine must start from defaults, not reconcile stale state.
	h2 := &harness{t: t, store: h.store, clk: &fakeClock{now: testEpoch.Add(time.Hour)}, sched: &fakeScheduler{}, notifier: &recordingNotifier{}}
	h2.build()
	h2.wantState(Work, 25*60, false)
}

// ============================================================
// Settings updates
// ============================================================

func TestUpdateSettingsValidation(t *testing.T) {
	h := newHarness(t)
	e := h.build()

	cases := []store.Settings{
		{WorkMinutes: 0, BreakMinutes: 5},
		{WorkMinutes: 61, BreakMinutes: 5},
		{WorkMinutes: 25, BreakMinutes: 0},
		{WorkMinutes: 25, BreakMinutes: 31},
		{WorkMinutes: -1, BreakMinutes: -1},
	}
	for _, cfg := range cases {
		err := e.UpdateSettings(cfg)
		if !errors.Is(err, ErrInvalidSettings) {
			t.Fatalf("UpdateSettings(%+v) = %v, want ErrInvalidSettings", cfg, err)
		}
	}

	// State and stored settings are untouched by rejected updates.
	h.wantState(Work, 25*60, false)
	if got := h.store.LoadSettings(); got != store.DefaultSettings() {
		t.Fatalf("stored settings changed: %+v", got)
	}
}

func TestUpdateSettingsBoundaryValues(t *testing.T) {
	h := newHarness(t)
	e := h.build()

	for _, cfg := range []store.Settings{
		{WorkMinutes: 1, BreakMinutes: 1},
		{WorkMinutes: 60, BreakMinutes: 30},
	} {
		if err := e.UpdateSettings(cfg); err != nil {
			t.Fatalf("UpdateSettings(%+v) = %v, want nil", cfg, err)
		}
	}
}

func TestUpdateSettingsWhilePausedRebases(t *testing.T) {
	h := newHarness(t)
	e := h.build()

	if err := e.UpdateSettings(store.Settings{WorkMinutes: 50, BreakMinutes: 10}); err != nil {
		t.Fatal(err)
	}
	h.wantState(Work, 50*60, false)

	snap, _ := h.store.LoadSnapshot()
	if snap.TimeLeft != 50*60 {
		t.Fatalf("persisted TimeLeft = %d, want %d", snap.TimeLeft, 50*60)
	}
	if got := h.store.LoadSettings(); got != (store.Settings{WorkMinutes: 50, BreakMinutes: 10}) {
		t.Fatalf("stored settings = %+v", got)
	}
}

func TestUpdateSettingsWhileRunningDefersToNextPhase(t *testing.T) {
	h := newHarness(t)
	if err := h.store.SaveSettings(store.Settings{WorkMinutes: 1, BreakMinutes: 5}); err != nil {
		t.Fatal(err)
	}
	e := h.build()
	e.Start()
	h.tick()

	if err := e.UpdateSettings(store.Settings{WorkMinutes: 2, BreakMinutes: 10}); err != nil {
		t.Fatal(err)
	}

	// The active countdown is not interrupted.
	h.wantState(Work, 59, true)

	// The new break duration applies at the transition.
	for i := 0; i < 59; i++ {
		h.tick()
	}
	h.wantState(Break, 10*60, false)
}

// ============================================================
// Progress
// ============================================================

func TestProgressDerivedFromRemaining(t *testing.T) {
	h := newHarness(t)
	if err := h.store.SaveSettings(store.Settings{WorkMinutes: 1, BreakMinutes: 1}); err != nil {
		t.Fatal(err)
	}
	e := h.build()

	if got := e.Progress(); got != 0 {
		t.Fatalf("initial progress = %v, want 0", got)
	}

	e.Start()
	for i := 0; i < 15; i++ {
		h.tick()
	}
	if got := e.Progress(); got != 25 {
		t.Fatalf("progress = %v, want 25", got)
	}
}

func TestProgressClampedWhenRemainingExceedsDuration(t *testing.T) {
	h := newHarness(t)
	e := h.build()
	e.Start()
	h.tick()

	// Remaining (~25 min) legitimately exceeds the new 5-minute duration
	// until the next transition.
	if err := e.UpdateSettings(store.Settings{WorkMinutes: 5, BreakMinutes: 5}); err != nil {
		t.Fatal(err)
	}
	if got := e.State().Remaining; got != 25*60-1 {
		t.Fatalf("remaining = %d, want %d", got, 25*60-1)
	}
	if got := e.Progress(); got != 0 {
		t.Fatalf("progress = %v, want 0", got)
	}
}

// ============================================================
// Close
// ============================================================

func TestCloseCancelsTickAndPersists(t *testing.T) {
	h := newHarness(t)
	e := h.build()
	e.Start()
	h.tick()

	e.Close()
	if got := len(h.sched.live()); got != 0 {
		t.Fatalf("pending ticks after close = %d, want 0", got)
	}

	snap, _ := h.store.LoadSnapshot()
	if snap == nil || snap.TimeLeft != 25*60-1 {
		t.Fatalf("unexpected final snapshot: %+v", snap)
	}

	// Commands after close are ignored.
	e.Start()
	if got := len(h.sched.live()); got != 0 {
		t.Fatal("closed engine must not schedule ticks")
	}
}

// ============================================================
// Phase
// ============================================================

func TestPhaseNextAndString(t *testing.T) {
	if Work.Next() != Break || Break.Next() != Work {
		t.Fatal("Next should flip phases")
	}
	if Work.String() != "work" || Break.String() != "break" {
		t.Fatal("unexpected phase names")
	}
}
