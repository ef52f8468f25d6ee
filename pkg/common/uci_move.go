package common

import "strings"

// MakeMoveLAN finds the legal move matching a UCI long-algebraic
// string and applies it, returning the resulting position. It accepts
// both the canonical king-to-g1/c1 castle notation and, for
// Chess960 games, the king-takes-own-rook notation some GUIs send on
// the wire.
func (pos *Position) MakeMoveLAN(lan string) (Position, bool) {
	var buffer [MaxMoves]Move
	var ml = GenerateLegalMoves(pos, buffer[:0])
	for _, m := range ml {
		if strings.EqualFold(m.String(), lan) ||
			strings.EqualFold(UciMoveString(pos, m, true), lan) {
			var next = *pos
			var undo Undo
			if !Apply(&next, m, &undo) {
				return Position{}, false
			}
			return next, true
		}
	}
	return Position{}, false
}

// UciMoveString renders m the way it should appear on the UCI wire.
// With chess960 set, castling is written king-takes-rook
// (e.g. "e1h1"); otherwise it is always king-to-g1/c1/g8/c8. The UCI
// front end turns chess960 on through the "UCI_Chess960" option or a
// FEN with Chess960 castle letters.
func UciMoveString(pos *Position, m Move, chess960 bool) string {
	if chess960 && m.Kind() == KindCastle {
		var _, white = pos.GetPieceTypeAndSide(m.From())
		var rookSq = castleRookSquare(pos, white, m.To())
		if rookSq != SquareNone {
			return SquareName(m.From()) + SquareName(rookSq)
		}
	}
	return m.String()
}
