// Package timeman computes the optimum and maximum time budgets for a
// single search from UCI time-control parameters. It is a collaborator of
// the search core rather than part of it: the core only ever consumes the
// optimum-time value this package hands back (§6).
package timeman

import (
	"time"

	"chesscore/internal/board"
)

// Limits mirrors the subset of UCI `go` parameters that bear on time
// allocation.
type Limits struct {
	Time      [2]time.Duration // wtime, btime
	Inc       [2]time.Duration // winc, binc
	MovesToGo int              // 0 means sudden death
	MoveTime  time.Duration    // fixed time per move, overrides the rest
	Depth     int
	Nodes     uint64
	Infinite  bool
}

// Manager tracks the budget for one search and adjusts the optimum time as
// the iterative-deepening loop reports move stability.
type Manager struct {
	optimumTime time.Duration
	maximumTime time.Duration
	baseOptimum time.Duration
	startTime   time.Time
}

// NewManager returns a zero-valued Manager; call Init before use.
func NewManager() *Manager { return &Manager{} }

// Init computes the optimum/maximum budget for the side to move at game
// ply ply (half-moves since the start position).
func (tm *Manager) Init(limits Limits, us board.Color, ply int) {
	tm.startTime = time.Now()

	if limits.MoveTime > 0 {
		tm.optimumTime = limits.MoveTime
		tm.maximumTime = limits.MoveTime
		return
	}

	if limits.Infinite || (limits.Time[us] == 0 && limits.MoveTime == 0) {
		tm.optimumTime = time.Hour
		tm.maximumTime = time.Hour
		return
	}

	timeLeft := limits.Time[us]
	inc := limits.Inc[us]

	mtg := limits.MovesToGo
	if mtg == 0 {
		mtg = 50 - ply/4
		if mtg < 10 {
			mtg = 10
		}
		if mtg > 50 {
			mtg = 50
		}
	}

	baseTime := timeLeft / time.Duration(mtg)
	baseTime += inc * 9 / 10

	tm.optimumTime = baseTime
	if ply < 8 {
		tm.optimumTime = baseTime * 85 / 100
	}

	maxFromOptimum := tm.optimumTime * 5
	maxFromRemaining := timeLeft * 8 / 10
	if maxFromOptimum < maxFromRemaining {
		tm.maximumTime = maxFromOptimum
	} else {
		tm.maximumTime = maxFromRemaining
	}

	safetyMargin := timeLeft * 95 / 100
	if tm.maximumTime > safetyMargin {
		tm.maximumTime = safetyMargin
	}

	if tm.optimumTime < 10*time.Millisecond {
		tm.optimumTime = 10 * time.Millisecond
	}
	if tm.maximumTime < 50*time.Millisecond {
		tm.maximumTime = 50 * time.Millisecond
	}

	tm.baseOptimum = tm.optimumTime
}

// Elapsed reports the time since Init.
func (tm *Manager) Elapsed() time.Duration { return time.Since(tm.startTime) }

// OptimumTime is the target time for this move, subject to stability scaling.
func (tm *Manager) OptimumTime() time.Duration { return tm.optimumTime }

// MaximumTime is the hard ceiling for this move.
func (tm *Manager) MaximumTime() time.Duration { return tm.maximumTime }

// ShouldStop reports whether the maximum budget has been exhausted.
func (tm *Manager) ShouldStop() bool { return tm.Elapsed() >= tm.maximumTime }

// PastOptimum reports whether the optimum budget has been exhausted.
func (tm *Manager) PastOptimum() bool { return tm.Elapsed() >= tm.optimumTime }

// ApplyStability rescales the optimum budget from the Init-time base by
// optScale = 1.1 - 0.05*stability (clamped to a sane floor), recomputed
// fresh from the base each call so repeated calls don't compound (§4.7).
func (tm *Manager) ApplyStability(stability int) {
	scale := 1.1 - 0.05*float64(stability)
	if scale < 0.5 {
		scale = 0.5
	}
	tm.optimumTime = time.Duration(float64(tm.baseOptimum) * scale)
}
