// Package engine implements the countdown state machine that alternates
// work and break phases, persists a snapshot on every mutation, and
// reconciles elapsed time when restarted.
package engine

import (
	"sync"
	"time"

	"github.com/sadopc/pomo/internal/clock"
	"github.com/sadopc/pomo/internal/store"
)

// Notifier delivers phase-transition notifications. Implementations must
// return without blocking; the engine calls Notify while holding its lock.
type Notifier interface {
	Notify(title, body string)
}

// State is the engine's observable state at a point in time.
type State struct {
	Phase     Phase
	Remaining int // seconds
	Running   bool
}

// Engine owns the phase/remaining-time state machine. A single mutex
// covers commands, tick handling and startup reconciliation, so at most
// one mutation is in flight at any time.
type Engine struct {
	mu       sync.Mutex
	store    *store.Store
	notifier Notifier
	clk      clock.Clock
	sched    clock.Scheduler

	settings  store.Settings
	phase     Phase
	remaining int // seconds
	running   bool

	tick    clock.Handle
	tickGen uint64
	closed  bool
}

// New builds an engine, reconciles any persisted snapshot against the
// current time, persists the resulting state, and schedules the first
// tick if the restored state was running. The engine is ready as soon as
// New returns; no tick can observe a not-yet-reconciled state.
func New(s *store.Store, n Notifier, clk clock.Clock, sched clock.Scheduler) *Engine {
	e := &Engine{
		store:    s,
		notifier: n,
		clk:      clk,
		sched:    sched,
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.settings = s.LoadSettings()
	e.phase = Work
	e.remaining = e.fullDurationLocked(Work)

	e.reconcileLocked()
	e.persistLocked()
	if e.running {
		e.scheduleTickLocked()
	}
	return e
}

// reconcileLocked adjusts the default state for a persisted snapshot,
// correcting for time elapsed while the process was not alive. A read
// failure or malformed snapshot falls back to defaults.
func (e *Engine) reconcileLocked() {
	snap, err := e.store.LoadSnapshot()
	if err != nil || snap == nil {
		return
	}

	phase := Work
	if snap.IsBreak {
		phase = Break
	}

	if !snap.IsRunning {
		// Paused timers restore verbatim; elapsed time is irrelevant.
		e.phase = phase
		full := e.fullDurationLocked(phase)
		e.remaining = snap.TimeLeft
		if e.remaining < 1 || e.remaining > full {
			e.remaining = full
		}
		return
	}

	elapsed := int(e.clk.Now().UnixMilli()-snap.LastUpdate) / 1000
	if elapsed < 0 {
		elapsed = 0
	}

	if snap.TimeLeft > elapsed {
		// Short absence: keep counting from where the clock would be now.
		// Capped at the configured duration in case settings shrank since
		// the snapshot was written.
		e.phase = phase
		e.remaining = snap.TimeLeft - elapsed
		if full := e.fullDurationLocked(phase); e.remaining > full {
			e.remaining = full
		}
		e.running = true
		return
	}

	// The phase ran out while inactive. Apply exactly one flip, even if
	// several full cycles could have elapsed.
	e.phase = phase
	e.transitionLocked()
}

// Start begins (or continues) the countdown. Always re-persists.
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	if !e.running {
		e.running = true
		e.scheduleTickLocked()
	}
	e.persistLocked()
}

// Pause stops the countdown without losing remaining time. Always
// re-persists.
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	if e.running {
		e.running = false
		e.cancelTickLocked()
	}
	e.persistLocked()
}

// Reset stops the timer, re-bases remaining time to the current phase's
// full duration, and deletes the persisted snapshot so the next startup
// begins fresh.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.cancelTickLocked()
	e.running = false
	e.remaining = e.fullDurationLocked(e.phase)
	e.store.ClearSnapshot()
}

// UpdateSettings validates and stores new phase durations. While paused,
// the current phase's remaining time is re-based immediately; while
// running, the change only applies from the next transition.
func (e *Engine) UpdateSettings(cfg store.Settings) error {
	if err := validateSettings(cfg); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}

	e.settings = cfg
	e.store.SaveSettings(cfg) // best-effort, self-healing on next write

	if !e.running {
		e.remaining = e.fullDurationLocked(e.phase)
		e.persistLocked()
	}
	return nil
}

// Close cancels any pending tick and persists the final state. The
// engine must not be used afterwards.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.closed = true
	e.cancelTickLocked()
	e.persistLocked()
}

// State returns the current observable state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return State{Phase: e.phase, Remaining: e.remaining, Running: e.running}
}

// Settings returns the durations the engine is currently using.
func (e *Engine) Settings() store.Settings {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.settings
}

// Progress returns how far the current phase has advanced, in percent,
// clamped to [0, 100]. Derived for display only, never stored. Remaining
// time can exceed the configured duration while a settings change is
// pending, so the raw ratio is not trusted.
func (e *Engine) Progress() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	full := e.fullDurationLocked(e.phase)
	if full <= 0 {
		return 0
	}
	pct := float64(full-e.remaining) / float64(full) * 100
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// FullDuration returns the configured duration of a phase in seconds.
func (e *Engine) FullDuration(p Phase) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.fullDurationLocked(p)
}

func (e *Engine) fullDurationLocked(p Phase) int {
	if p == Break {
		return e.settings.BreakMinutes * 60
	}
	return e.settings.WorkMinutes * 60
}

// scheduleTickLocked arms the next one-second tick. The generation
// counter invalidates callbacks from ticks that were already in flight
// when running flipped, so at most one live tick exists at any time.
func (e *Engine) scheduleTickLocked() {
	e.tickGen++
	gen := e.tickGen
	e.tick = e.sched.ScheduleIn(time.Second, func() { e.handleTick(gen) })
}

func (e *Engine) cancelTickLocked() {
	if e.tick != nil {
		e.tick.Cancel()
		e.tick = nil
	}
	e.tickGen++
}

func (e *Engine) handleTick(gen uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || gen != e.tickGen || !e.running {
		return
	}
	e.tick = nil

	e.remaining--
	if e.remaining <= 0 {
		e.transitionLocked()
	}
	e.persistLocked()
	if e.running {
		e.scheduleTickLocked()
	}
}

// transitionLocked ends the current phase: notify, log the completed
// session, flip the phase, re-base remaining time from current settings,
// and auto-pause until the user restarts.
func (e *Engine) transitionLocked() {
	ended := e.phase

	title, body := transitionMessage(ended)
	e.notifier.Notify(title, body)

	e.store.LogSession(ended.String(), int64(e.fullDurationLocked(ended)), e.clk.Now())

	e.phase = ended.Next()
	e.remaining = e.fullDurationLocked(e.phase)
	e.running = false
}

// persistLocked mirrors the in-memory state into the snapshot store.
// Write failures are tolerated: the timer keeps counting in memory and
// the next successful write corrects the stored snapshot.
func (e *Engine) persistLocked() {
	e.store.SaveSnapshot(store.Snapshot{
		IsRunning:  e.running,
		TimeLeft:   e.remaining,
		IsBreak:    e.phase == Break,
		LastUpdate: e.clk.Now().UnixMilli(),
	})
}

func transitionMessage(ended Phase) (title, body string) {
	if ended == Work {
		return "Work session complete", "Great work! Time for a well-deserved break."
	}
	return "Break complete", "Break is over. Time to get back to work!"
}
