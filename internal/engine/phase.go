package engine

import (
	"errors"
	"fmt"

	"github.com/sadopc/pomo/internal/store"
)

// Phase is the current countdown mode.
type Phase int

const (
	Work Phase = iota
	Break
)

func (p Phase) String() string {
	if p == Break {
		return "break"
	}
	return "work"
}

// Next returns the phase that follows p.
func (p Phase) Next() Phase {
	if p == Work {
		return Break
	}
	return Work
}

// ErrInvalidSettings is returned by UpdateSettings when a duration is
// out of range. Out-of-range values are an error, not clamped.
var ErrInvalidSettings = errors.New("invalid settings")

// Allowed duration ranges in minutes.
const (
	MinWorkMinutes  = 1
	MaxWorkMinutes  = 60
	MinBreakMinutes = 1
	MaxBreakMinutes = 30
)

func validateSettings(cfg store.Settings) error {
	if cfg.WorkMinutes < MinWorkMinutes || cfg.WorkMinutes > MaxWorkMinutes {
		return fmt.Errorf("%w: work minutes %d not in [%d, %d]",
			ErrInvalidSettings, cfg.WorkMinutes, MinWorkMinutes, MaxWorkMinutes)
	}
	if cfg.BreakMinutes < MinBreakMinutes || cfg.BreakMinutes > MaxBreakMinutes {
		return fmt.Errorf("%w: break minutes %d not in [%d, %d]",
			ErrInvalidSettings, cfg.BreakMinutes, MinBreakMinutes, MaxBreakMinutes)
	}
	return nil
}
