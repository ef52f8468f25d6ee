package eval

import . "github.com/vchizhov/corechess/pkg/common"

// Weights holds the tapered piece-square tables this evaluator scores
// material and placement with. The tables are built from the same
// material+PST baseline the Move Executor keeps incrementally on
// Position.PsqtMg/PsqtEg, so that accumulator and this evaluator agree
// on the skeleton; Evaluate adds phase tapering, the bishop pair and
// endgame scaling on top of it.
type Weights struct {
	PST                [2][King + 1][64]Score
	BishopPairMaterial Score
}

func (w *Weights) init() {
	for piece := Pawn; piece <= King; piece++ {
		for sq := 0; sq < 64; sq++ {
			w.PST[SideWhite][piece][sq] = scoreFromBaseline(piece, true, sq)
			w.PST[SideBlack][piece][sq] = scoreFromBaseline(piece, false, sq)
		}
	}
	w.BishopPairMaterial = S(30, 30)
}

func scoreFromBaseline(piece int, white bool, sq int) Score {
	mg, eg := PsqtValue(piece, white, sq)
	return S(mg, eg)
}
