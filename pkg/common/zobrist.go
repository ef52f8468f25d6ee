package common

import "math/rand"

// Zobrist keys: piece x square, side to move, en-passant file, and one
// key per rook home square (castle rights live on CastleRooks bits,
// so XOR-ing a rook square's key in/out tracks that square's right).
var (
	pieceSquareKey [PIECE_NB][2][64]uint64
	sideKey        uint64
	enpassantKey   [8]uint64
	castleRookKey  [64]uint64
)

func PieceSquareKey(piece int, white bool, square int) uint64 {
	return pieceSquareKey[piece][boolIndex(white)][square]
}

func boolIndex(white bool) int {
	if white {
		return SideWhite
	}
	return SideBlack
}

func init() {
	var r = rand.New(rand.NewSource(20160423))
	for piece := Pawn; piece <= King; piece++ {
		for side := 0; side < 2; side++ {
			for sq := 0; sq < 64; sq++ {
				pieceSquareKey[piece][side][sq] = r.Uint64()
			}
		}
	}
	sideKey = r.Uint64()
	for i := range enpassantKey {
		enpassantKey[i] = r.Uint64()
	}
	for i := range castleRookKey {
		castleRookKey[i] = r.Uint64()
	}
}
