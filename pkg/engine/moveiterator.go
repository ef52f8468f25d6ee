package engine

import . "github.com/vchizhov/corechess/pkg/common"

const sortTableKeyImportant = 100000

// moveIteratorQS drives the quiescence search: all moves when in
// check, captures/promotions/en-passant only otherwise, ordered by
// MVV-LVA.
type moveIteratorQS struct {
	position *Position
	buffer   []OrderedMove
	count    int
	index    int
}

func (mi *moveIteratorQS) Init() {
	var moves []Move
	if mi.position.IsCheck() {
		moves = GenerateMoves(mi.position, nil)
	} else {
		moves = GenerateCaptures(mi.position, nil)
	}

	mi.count = len(moves)
	for i, m := range moves {
		var score int
		if isCaptureOrPromotion(mi.position, m) {
			score = 29000 + mvvlva(mi.position, m)
		}
		mi.buffer[i] = OrderedMove{Move: m, Key: int32(score)}
	}

	sortMoves(mi.buffer[:mi.count])
}

func (mi *moveIteratorQS) Reset() {
	mi.index = 0
}

func (mi *moveIteratorQS) Next() Move {
	if mi.index >= mi.count {
		return NoMove
	}
	var m = mi.buffer[mi.index].Move
	mi.index++
	return m
}

// moveIterator drives the main search: hash move, then SEE-positive
// captures, then killers, then SEE-negative captures and quiet moves
// sorted together, the captures keyed by MVV-LVA and the quiets by
// history score.
type moveIterator struct {
	position  *Position
	buffer    []OrderedMove
	history   historyContext
	transMove Move
	killer1   Move
	killer2   Move
	count     int
	index     int
}

func (mi *moveIterator) Init() {
	var moves = GenerateMoves(mi.position, nil)
	mi.count = len(moves)

	for i, m := range moves {
		var score int
		if m == mi.transMove {
			score = sortTableKeyImportant + 2000
		} else if isCaptureOrPromotion(mi.position, m) {
			if seeGEZero(mi.position, m) {
				score = sortTableKeyImportant + 1000 + mvvlva(mi.position, m)
			} else {
				score = mvvlva(mi.position, m)
			}
		} else if m == mi.killer1 {
			score = sortTableKeyImportant + 1
		} else if m == mi.killer2 {
			score = sortTableKeyImportant
		} else {
			score = mi.history.ReadTotal(m)
		}
		mi.buffer[i] = OrderedMove{Move: m, Key: int32(score)}
	}
}

func (mi *moveIterator) Reset() {
	mi.index = 0
}

func (mi *moveIterator) Next() Move {
	if mi.index >= mi.count {
		return NoMove
	}
	const SortMovesIndex = 1
	if mi.index <= SortMovesIndex {
		if mi.index == SortMovesIndex {
			sortMoves(mi.buffer[mi.index:mi.count])
		} else {
			moveToTop(mi.buffer[mi.index:mi.count])
		}
	}
	var m = mi.buffer[mi.index].Move
	mi.index++
	return m
}

var sortPieceValues = [PIECE_NB]int{Empty: 0, Pawn: 1, Knight: 2, Bishop: 3, Rook: 4, Queen: 5, King: 6}

func mvvlva(pos *Position, move Move) int {
	var captured = Empty
	if move.Kind() == KindEnPassant {
		captured = Pawn
	} else {
		captured = pos.WhatPiece(move.To())
	}
	return 8*(sortPieceValues[captured]+sortPieceValues[move.PromotionPiece()]) -
		sortPieceValues[pos.WhatPiece(move.From())]
}

func sortMoves(moves []OrderedMove) {
	for i := 1; i < len(moves); i++ {
		j, t := i, moves[i]
		for ; j > 0 && moves[j-1].Key < t.Key; j-- {
			moves[j] = moves[j-1]
		}
		moves[j] = t
	}
}

func moveToTop(ml []OrderedMove) {
	var bestIndex = 0
	for i := 1; i < len(ml); i++ {
		if ml[i].Key > ml[bestIndex].Key {
			bestIndex = i
		}
	}
	if bestIndex != 0 {
		ml[0], ml[bestIndex] = ml[bestIndex], ml[0]
	}
}
