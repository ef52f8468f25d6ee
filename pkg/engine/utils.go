package engine

import (
	. "github.com/vchizhov/corechess/pkg/common"
)

const (
	stackSize     = 128
	maxHeight     = stackSize - 1
	valueDraw     = 0
	valueMate     = 30000
	valueInfinity = valueMate + 1
	valueWin      = valueMate - 2*maxHeight
	valueLoss     = -valueWin
)

func winIn(height int) int {
	return valueMate - height
}

func lossIn(height int) int {
	return -valueMate + height
}

func valueToTT(v, height int) int {
	if v >= valueWin {
		return v + height
	}
	if v <= valueLoss {
		return v - height
	}
	return v
}

func valueFromTT(v, height int) int {
	if v >= valueWin {
		return v - height
	}
	if v <= valueLoss {
		return v + height
	}
	return v
}

func newUciScore(v int) UciScore {
	if v >= valueWin {
		return UciScore{Mate: (valueMate - v + 1) / 2}
	} else if v <= valueLoss {
		return UciScore{Mate: (-valueMate - v) / 2}
	} else {
		return UciScore{Centipawns: v}
	}
}

func isLateEndgame(p *Position, white bool) bool {
	var ownPieces = p.PiecesByColor(white)
	return ((p.Rooks|p.Queens)&ownPieces) == 0 &&
		!MoreThanOne((p.Knights|p.Bishops)&ownPieces)
}

func isCaptureOrPromotion(pos *Position, move Move) bool {
	return IsTactical(pos, move)
}

func isPawnPush7th(pos *Position, move Move, white bool) bool {
	if pos.WhatPiece(move.From()) != Pawn {
		return false
	}
	var rank = Rank(move.To())
	if white {
		return rank == Rank7
	}
	return rank == Rank2
}

func isPawnAdvance(pos *Position, move Move, white bool) bool {
	if pos.WhatPiece(move.From()) != Pawn {
		return false
	}
	var rank = Rank(move.To())
	if white {
		return rank >= Rank6
	}
	return rank <= Rank3
}

func isRecapture(prev, move Move) bool {
	return prev != NoMove && prev != NullMove && move.To() == prev.To()
}
