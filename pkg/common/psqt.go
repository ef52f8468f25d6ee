package common

// Material + piece-square baseline the Move Executor maintains
// incrementally on Position.PsqtMg/PsqtEg (spec's psqt_mat
// accumulator). This is deliberately small and untuned — exactness of
// evaluation coefficients is explicitly out of scope; the full
// evaluator (pkg/eval/pesto) layers phase-tapering, a bishop-pair
// bonus and drawish-endgame scaling on top of this baseline.
var materialMg = [PIECE_NB]int{Pawn: 82, Knight: 337, Bishop: 365, Rook: 477, Queen: 1025, King: 0}
var materialEg = [PIECE_NB]int{Pawn: 94, Knight: 281, Bishop: 297, Rook: 512, Queen: 936, King: 0}

var pawnPSQT = [64]int{
	0, 0, 0, 0, 0, 0, 0, 0,
	-35, -1, -20, -23, -15, 24, 38, -22,
	-26, -4, -4, -10, 3, 3, 33, -12,
	-27, -2, -5, 12, 17, 6, 10, -25,
	-14, 13, 6, 21, 23, 12, 17, -23,
	-6, 7, 26, 31, 65, 56, 25, -20,
	98, 134, 61, 95, 68, 126, 34, -11,
	0, 0, 0, 0, 0, 0, 0, 0,
}

var knightPSQT = [64]int{
	-105, -21, -58, -33, -17, -28, -19, -23,
	-29, -53, -12, -3, -1, 18, -14, -19,
	-23, -9, 12, 10, 19, 17, 25, -16,
	-13, 4, 16, 13, 28, 19, 21, -8,
	-9, 17, 19, 53, 37, 69, 18, 22,
	-47, 60, 37, 65, 84, 129, 73, 44,
	-73, -41, 72, 36, 23, 62, 7, -17,
	-167, -89, -34, -49, 61, -97, -15, -107,
}

var bishopPSQT = [64]int{
	-33, -3, -14, -21, -13, -12, -39, -21,
	4, 15, 16, 0, 7, 21, 33, 1,
	0, 15, 15, 15, 14, 27, 18, 10,
	-6, 13, 13, 26, 34, 12, 10, 4,
	-4, 5, 19, 50, 37, 37, 7, -2,
	-16, 37, 43, 40, 35, 50, 37, -2,
	-26, 16, -18, -13, 30, 59, 18, -47,
	-29, 4, -82, -37, -25, -42, 7, -8,
}

var rookPSQT = [64]int{
	-19, -13, 1, 17, 16, 7, -37, -26,
	-44, -16, -20, -9, -1, 11, -6, -71,
	-45, -25, -16, -17, 3, 0, -5, -33,
	-36, -26, -12, -1, 9, -7, 6, -23,
	-24, -11, 7, 26, 24, 35, -8, -20,
	-5, 19, 26, 36, 17, 45, 61, 16,
	27, 32, 58, 62, 80, 67, 26, 44,
	32, 42, 32, 51, 63, 9, 31, 43,
}

var queenPSQT = [64]int{
	-1, -18, -9, 10, -15, -25, -31, -50,
	-35, -8, 11, 2, 8, 15, -3, 1,
	-14, 2, -11, -2, -5, 2, 14, 5,
	-9, -26, -9, -10, -2, -4, 3, -3,
	-27, -27, -16, -16, -1, 17, -2, 1,
	-13, -17, 7, 8, 29, 56, 47, 57,
	-24, -39, -5, 1, -16, 57, 28, 54,
	-28, 0, 29, 12, 59, 44, 43, 45,
}

var kingPSQT = [64]int{
	-15, 36, 12, -54, 8, -28, 24, 14,
	1, 7, -8, -64, -43, -16, 9, 8,
	-14, -14, -22, -46, -44, -30, -15, -27,
	-49, -1, -27, -39, -46, -44, -33, -51,
	-17, -20, -12, -27, -30, -25, -14, -36,
	-9, 24, 2, -16, -20, 6, 22, -22,
	29, -1, -20, -7, -8, -4, -38, -29,
	-65, 23, 16, -15, -56, -34, 2, 13,
}

var kingEndPSQT = [64]int{
	-53, -34, -21, -11, -28, -14, -24, -43,
	-27, -11, 4, 13, 14, 4, -5, -17,
	-19, -3, 11, 21, 23, 16, 7, -9,
	-18, -4, 21, 24, 27, 23, 9, -11,
	-8, 22, 24, 27, 26, 33, 26, 3,
	10, 17, 23, 15, 20, 45, 44, 13,
	-12, 17, 14, 17, 17, 38, 23, 11,
	-74, -35, -18, -18, -11, 15, 4, -17,
}

var psqtMg [PIECE_NB][64]int
var psqtEg [PIECE_NB][64]int

func init() {
	var tables = [PIECE_NB][64]int{
		Pawn:   pawnPSQT,
		Knight: knightPSQT,
		Bishop: bishopPSQT,
		Rook:   rookPSQT,
		Queen:  queenPSQT,
		King:   kingPSQT,
	}
	var egTables = [PIECE_NB][64]int{
		Pawn:   pawnPSQT,
		Knight: knightPSQT,
		Bishop: bishopPSQT,
		Rook:   rookPSQT,
		Queen:  queenPSQT,
		King:   kingEndPSQT,
	}
	for piece := Pawn; piece <= King; piece++ {
		for sq := 0; sq < 64; sq++ {
			psqtMg[piece][sq] = materialMg[piece] + tables[piece][sq]
			psqtEg[piece][sq] = materialEg[piece] + egTables[piece][sq]
		}
	}
}

// PsqtValue returns the (mg, eg) contribution of a piece of the given
// colour sitting on sq, from White's point of view.
func PsqtValue(piece int, white bool, sq int) (mg, eg int) {
	if !white {
		sq = FlipSquare(sq)
	}
	mg, eg = psqtMg[piece][sq], psqtEg[piece][sq]
	if !white {
		mg, eg = -mg, -eg
	}
	return
}
