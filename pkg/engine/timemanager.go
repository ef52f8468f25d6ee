package engine

import (
	"context"
	"time"

	. "github.com/vchizhov/corechess/pkg/common"
)

// timeManager is the adaptive time manager (part of C6): it derives
// an ideal/soft and a maximum/hard budget from the clock the same way
// a simple manager would, then stretches the soft budget within the
// hard ceiling when the latest iteration suggests the position is
// unsettled — the score dropped sharply or the best move changed.
type timeManager struct {
	ctx       context.Context
	start     time.Time
	limits    LimitsType
	idealTime time.Duration
	softLimit time.Duration
	hardLimit time.Duration
	cancel    context.CancelFunc

	havePrev  bool
	prevScore int
	prevMove  Move
}

func newTimeManager(ctx context.Context, start time.Time,
	limits LimitsType, p *Position) *timeManager {

	var tm = &timeManager{
		start:  start,
		limits: limits,
	}

	if limits.MoveTime > 0 {
		tm.hardLimit = time.Duration(limits.MoveTime) * time.Millisecond
		tm.softLimit = tm.hardLimit
	} else if limits.WhiteTime > 0 || limits.BlackTime > 0 {
		var main, inc time.Duration
		if p.WhiteMove {
			main = time.Duration(limits.WhiteTime) * time.Millisecond
			inc = time.Duration(limits.WhiteIncrement) * time.Millisecond
		} else {
			main = time.Duration(limits.BlackTime) * time.Millisecond
			inc = time.Duration(limits.BlackIncrement) * time.Millisecond
		}
		tm.softLimit, tm.hardLimit = calcLimits(main, inc, limits.MovesToGo)
	}
	tm.idealTime = tm.softLimit

	var cancel context.CancelFunc
	if tm.hardLimit != 0 {
		ctx, cancel = context.WithDeadline(ctx, start.Add(tm.hardLimit))
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	tm.ctx = ctx
	tm.cancel = cancel
	return tm
}

func (tm *timeManager) IsDone() bool {
	select {
	case <-tm.ctx.Done():
		return true
	default:
		return false
	}
}

func (tm *timeManager) OnNodesChanged(nodes int) {
	if tm.limits.Nodes > 0 && nodes >= tm.limits.Nodes {
		tm.cancel()
	}
}

// OnIterationComplete stretches the soft budget when this iteration's
// result looks unstable relative to the previous one, so the search
// doesn't stop on a move it is about to change its mind about.
func (tm *timeManager) OnIterationComplete(line mainLine) {
	if tm.limits.Infinite {
		return
	}
	if tm.limits.Depth != 0 && line.depth >= tm.limits.Depth {
		tm.cancel()
		return
	}
	if line.score >= winIn(line.depth-5) ||
		line.score <= lossIn(line.depth-5) {
		tm.cancel()
		return
	}

	if tm.idealTime != 0 {
		var budget = tm.idealTime
		if tm.havePrev {
			if tm.prevScore-line.score >= 8 {
				budget = budget * 110 / 100
			}
			if len(line.moves) != 0 && line.moves[0] != tm.prevMove {
				budget = budget * 135 / 100
			}
		}
		if budget > tm.hardLimit {
			budget = tm.hardLimit
		}
		tm.softLimit = budget
		tm.havePrev = true
		tm.prevScore = line.score
		if len(line.moves) != 0 {
			tm.prevMove = line.moves[0]
		}
	}

	if tm.softLimit != 0 && time.Since(tm.start) >= tm.softLimit {
		tm.cancel()
		return
	}
}

func (tm *timeManager) Close() {
	tm.cancel()
}

func calcLimits(main, inc time.Duration, moves int) (soft, hard time.Duration) {
	const (
		DefaultMovesToGo = 40
		MoveOverhead     = 300 * time.Millisecond
		MinTimeLimit     = 1 * time.Millisecond
	)

	main -= MoveOverhead
	if main < MinTimeLimit {
		main = MinTimeLimit
	}

	if moves == 0 {
		var ideal = main/35 + inc/2
		soft = ideal * 7 / 10
		hard = ideal * 21 / 10
	} else {
		moves = Min(moves, DefaultMovesToGo)
		soft = (main/time.Duration(moves+1) + inc) * 7 / 10
		hard = (main/time.Duration(moves+1) + inc) * 21 / 10
	}

	hard = limitDuration(hard, MinTimeLimit, main)
	soft = limitDuration(soft, MinTimeLimit, main)

	return
}

func limitDuration(v, min, max time.Duration) time.Duration {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
