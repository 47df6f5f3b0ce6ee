package store

import "time"

// Snapshot is the durable record of timer state, overwritten on every
// mutation and read once at engine startup to reconcile elapsed time.
// The JSON field names are the wire format; they must not change.
type Snapshot struct {
	IsRunning  bool  `json:"isRunning"`
	TimeLeft   int   `json:"timeLeft"` // seconds
	IsBreak    bool  `json:"isBreak"`
	LastUpdate int64 `json:"lastUpdate"` // epoch milliseconds
}

// Settings holds the configured phase durations in minutes.
type Settings struct {
	WorkMinutes  int
	BreakMinutes int
}

// DefaultSettings matches the values seeded by the v1 migration.
func DefaultSettings() Settings {
	return Settings{WorkMinutes: 25, BreakMinutes: 5}
}

// Session is one completed phase, logged at each transition.
type Session struct {
	ID       int64
	Phase    string // "work" or "break"
	Duration int64  // seconds
	EndedAt  time.Time
}

type Setting struct {
	Key   string
	Value string
}

// DailySummary represents aggregated completed time per phase per day.
type DailySummary struct {
	Date         string
	Phase        string
	TotalSeconds int64
	SessionCount int
}
