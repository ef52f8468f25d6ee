package engine

import (
	"context"
	"testing"

	. "github.com/vchizhov/corechess/pkg/common"
	eval "github.com/vchizhov/corechess/pkg/eval/pesto"
)

func newTestEngine(threads int) *Engine {
	var e = NewEngine(func() interface{} {
		return eval.NewEvaluationService()
	})
	e.Hash = 16
	e.Threads = threads
	return e
}

func searchFen(t *testing.T, e *Engine, fen string, depth int) SearchInfo {
	t.Helper()
	var pos, err = NewPositionFromFEN(fen)
	if err != nil {
		t.Fatalf("parse %q: %v", fen, err)
	}
	return e.Search(context.Background(), SearchParams{
		Positions: []Position{*pos},
		Limits:    LimitsType{Depth: depth},
	})
}

// scoreValue collapses a UciScore to a single comparable integer: a
// reported mate dominates any centipawn score in the same direction.
func scoreValue(s UciScore) int {
	if s.Mate > 0 {
		return valueMate
	}
	if s.Mate < 0 {
		return -valueMate
	}
	return s.Centipawns
}

func TestSearchStalemateDefenceIsDrawn(t *testing.T) {
	var e = newTestEngine(1)
	// White is already stalemated: f1/h1 are covered by the g2 pawn,
	// f2/h2 and the pawn itself by the g3 king, so no move exists.
	var info = searchFen(t, e, "8/8/8/8/8/6k1/6p1/6K1 w - - 0 1", 10)
	if len(info.MainLine) != 0 {
		t.Fatalf("move %v returned from a stalemated position", info.MainLine[0])
	}
	if got := scoreValue(info.Score); got != 0 {
		t.Fatalf("score = %d, want 0 (drawn defence)", got)
	}
}

func TestSearchRookMoveMaintainsAdvantage(t *testing.T) {
	var e = newTestEngine(1)
	var info = searchFen(t, e, "8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1", 8)
	if len(info.MainLine) == 0 {
		t.Fatalf("no move returned")
	}
	if got := scoreValue(info.Score); got <= 0 {
		t.Fatalf("score = %d, want > 0", got)
	}
}

func TestSearchComplexMiddlegameNearEqual(t *testing.T) {
	var e = newTestEngine(1)
	var info = searchFen(t, e, "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1", 7)
	if len(info.MainLine) == 0 {
		t.Fatalf("no move returned")
	}
	if got := scoreValue(info.Score); got < -80 || got > 80 {
		t.Fatalf("score = %d, want within +-80cp of 0", got)
	}
}

func TestSearchNaturalDevelopmentNearEqual(t *testing.T) {
	var e = newTestEngine(1)
	var info = searchFen(t, e, "r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R w KQkq - 2 3", 6)
	if len(info.MainLine) == 0 {
		t.Fatalf("no move returned")
	}
	if got := scoreValue(info.Score); got < -30 || got > 30 {
		t.Fatalf("score = %d, want within +-30cp of 0", got)
	}
}

func TestSearchOpeningPositionNearEqual(t *testing.T) {
	var e = newTestEngine(1)
	var info = searchFen(t, e, InitialPositionFen, 4)
	if len(info.MainLine) == 0 {
		t.Fatalf("no move returned")
	}
	if got := scoreValue(info.Score); got < -30 || got > 30 {
		t.Fatalf("score = %d, want within +-30cp of 0", got)
	}
}

func TestSearchFindsWinningPawnPush(t *testing.T) {
	var e = newTestEngine(1)
	var info = searchFen(t, e, "4k3/8/8/8/8/8/4P3/4K3 w - - 0 1", 20)
	if len(info.MainLine) == 0 {
		t.Fatalf("no move returned")
	}
	var want = MakeMove(SquareE2, SquareE4, KindNormal, 0)
	if info.MainLine[0] != want {
		t.Fatalf("best move = %v, want e2e4", info.MainLine[0])
	}
	if got := scoreValue(info.Score); got <= 0 {
		t.Fatalf("score = %d, want > 0", got)
	}
}

func TestSearchHashfullNonDecreasing(t *testing.T) {
	var e = newTestEngine(1)
	var last int
	var pos, err = NewPositionFromFEN("r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	e.Search(context.Background(), SearchParams{
		Positions: []Position{*pos},
		Limits:    LimitsType{Depth: 7},
		Progress: func(info SearchInfo) {
			if info.Hashfull < last {
				t.Fatalf("hashfull decreased from %d to %d", last, info.Hashfull)
			}
			last = info.Hashfull
		},
	})
}

func TestSearchDeterministicSingleThread(t *testing.T) {
	const fen = "r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R w KQkq - 2 3"
	var e1 = newTestEngine(1)
	var info1 = searchFen(t, e1, fen, 6)

	var e2 = newTestEngine(1)
	var info2 = searchFen(t, e2, fen, 6)

	if len(info1.MainLine) == 0 || len(info2.MainLine) == 0 {
		t.Fatalf("no move returned")
	}
	if info1.MainLine[0] != info2.MainLine[0] {
		t.Fatalf("best move differs across runs: %v vs %v", info1.MainLine[0], info2.MainLine[0])
	}
	if info1.Score != info2.Score {
		t.Fatalf("score differs across runs: %v vs %v", info1.Score, info2.Score)
	}
}

func TestSearchFourThreadsNoWorseThanOneOnWinningEndgame(t *testing.T) {
	var e1 = newTestEngine(1)
	var info1 = searchFen(t, e1, "4k3/8/8/8/8/8/4P3/4K3 w - - 0 1", 20)

	var e4 = newTestEngine(4)
	var info4 = searchFen(t, e4, "4k3/8/8/8/8/8/4P3/4K3 w - - 0 1", 20)

	if scoreValue(info4.Score) < scoreValue(info1.Score) {
		t.Fatalf("4-thread score %d worse than 1-thread score %d", scoreValue(info4.Score), scoreValue(info1.Score))
	}
}

// shuffleStack walks pos forward through moves, recording the
// resulting position at each ply into consecutive search-stack slots
// starting at t.stack[0]. It does not touch the engine's own Apply
// pointer dance, so the slots it fills are never reverted.
func shuffleStack(t *testing.T, th *thread, pos Position, moves []Move) {
	t.Helper()
	th.stack[0].position = pos
	for i, move := range moves {
		var cur = th.stack[i].position
		var undo Undo
		if !Apply(&cur, move, &undo) {
			t.Fatalf("move %d (%v) rejected from %v", i, move, th.stack[i].position)
		}
		th.stack[i+1].position = cur
	}
}

func TestIsRepeatDetectsInSearchCycle(t *testing.T) {
	var e = newTestEngine(1)
	e.Prepare()
	var th = &e.threads[0]

	var pos, err = NewPositionFromFEN("4k3/8/8/8/8/8/P7/4K3 w - - 0 1")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	var king4 = []Move{
		MakeMove(SquareE1, SquareD1, KindNormal, 0),
		MakeMove(SquareE8, SquareD8, KindNormal, 0),
		MakeMove(SquareD1, SquareE1, KindNormal, 0),
		MakeMove(SquareD8, SquareE8, KindNormal, 0),
	}
	shuffleStack(t, th, *pos, king4)

	if th.stack[4].position.Key != th.stack[0].position.Key {
		t.Fatalf("shuffled position key = %x, want %x (identical to the root)", th.stack[4].position.Key, th.stack[0].position.Key)
	}
	if !th.isRepeat(4) {
		t.Fatalf("isRepeat(4) = false, want true: height 4 repeats the root exactly")
	}
	if th.isRepeat(2) {
		t.Fatalf("isRepeat(2) = true, want false: no earlier position repeats at height 2")
	}
}

func TestIsRepeatFalseWithoutAMatch(t *testing.T) {
	var e = newTestEngine(1)
	e.Prepare()
	var th = &e.threads[0]

	var pos, err = NewPositionFromFEN("4k3/8/8/8/8/8/P7/4K3 w - - 0 1")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	var moves = []Move{
		MakeMove(SquareA2, SquareA3, KindNormal, 0),
		MakeMove(SquareE8, SquareD8, KindNormal, 0),
		MakeMove(SquareE1, SquareE2, KindNormal, 0),
		MakeMove(SquareD8, SquareC8, KindNormal, 0),
	}
	shuffleStack(t, th, *pos, moves)

	if th.isRepeat(4) {
		t.Fatalf("isRepeat(4) = true, want false: none of the earlier positions match, and the scan should stop at the pawn push without consulting historyKeys")
	}
}

func TestIsRepeatFallsBackToHistoryKeys(t *testing.T) {
	var e = newTestEngine(1)
	e.Prepare()
	var th = &e.threads[0]

	var pos, err = NewPositionFromFEN("4k3/8/8/8/8/8/P7/4K3 b - - 4 3")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	pos.LastMove = MakeMove(SquareE1, SquareD1, KindNormal, 0)
	th.stack[0].position = *pos

	if th.isRepeat(0) {
		t.Fatalf("isRepeat(0) = true, want false: historyKeys is empty")
	}

	e.historyKeys = map[uint64]int{pos.Key: 2}
	if !th.isRepeat(0) {
		t.Fatalf("isRepeat(0) = false, want true: the root key was already seen twice in game history")
	}
}

// TestAlphaBetaScoresInSearchRepetitionAsDraw reaches a repetition of
// the root position four plies into the search (a king shuffles out and back
// while the opponent mirrors it) and checks alphaBeta reports it as a
// draw rather than handing the evaluator a live position.
func TestAlphaBetaScoresInSearchRepetitionAsDraw(t *testing.T) {
	var e = newTestEngine(1)
	e.Prepare()
	var th = &e.threads[0]

	var pos, err = NewPositionFromFEN("4k3/8/8/8/8/8/P7/4K3 w - - 0 1")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	th.evaluator.Init(pos)

	var king4 = []Move{
		MakeMove(SquareE1, SquareD1, KindNormal, 0),
		MakeMove(SquareE8, SquareD8, KindNormal, 0),
		MakeMove(SquareD1, SquareE1, KindNormal, 0),
		MakeMove(SquareD8, SquareE8, KindNormal, 0),
	}
	shuffleStack(t, th, *pos, king4)

	if score := th.alphaBeta(-valueInfinity, valueInfinity, 2, 4, NoMove); score != valueDraw {
		t.Fatalf("alphaBeta at a repeated position = %d, want %d (draw)", score, valueDraw)
	}
}
