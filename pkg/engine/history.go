package engine

import . "github.com/vchizhov/corechess/pkg/common"

const historyMax = 1 << 14

type historyContext struct {
	thread     *thread
	position   *Position
	sideToMove bool
	cont1      int
	cont2      int
}

func (h *historyContext) ReadTotal(m Move) int {
	var sideToMove = h.sideToMove
	var score int
	score += int(h.thread.mainHistory[sideFromToIndex(sideToMove, m)])
	var pieceToIndex = h.pieceSquareIndex(m)
	if h.cont1 != -1 {
		score += int(h.thread.continuationHistory[h.cont1][pieceToIndex])
	}
	if h.cont2 != -1 {
		score += int(h.thread.continuationHistory[h.cont2][pieceToIndex])
	}
	return score
}

func (h *historyContext) Update(quietsSearched []Move, bestMove Move, depth int) {
	var bonus = Min(depth*depth, 400)
	var t = h.thread
	var sideToMove = h.sideToMove
	var cont1 = h.cont1
	var cont2 = h.cont2

	for _, m := range quietsSearched {
		var good = m == bestMove

		var fromToIndex = sideFromToIndex(sideToMove, m)
		updateHistory(&t.mainHistory[fromToIndex], bonus, good)
		var pieceToIndex = h.pieceSquareIndex(m)
		if cont1 != -1 {
			updateHistory(&t.continuationHistory[cont1][pieceToIndex], bonus, good)
		}
		if cont2 != -1 {
			updateHistory(&t.continuationHistory[cont2][pieceToIndex], bonus, good)
		}

		if good {
			break
		}
	}
}

// Exponential moving average
func updateHistory(v *int16, bonus int, good bool) {
	var newVal int
	if good {
		newVal = historyMax
	} else {
		newVal = -historyMax
	}
	*v += int16((newVal - int(*v)) * bonus / 512)
}

func (t *thread) clearHistory() {
	for i := range t.mainHistory {
		t.mainHistory[i] = 0
	}
	for i := range t.continuationHistory {
		for j := range t.continuationHistory[i] {
			t.continuationHistory[i][j] = 0
		}
	}
}

func (t *thread) getHistoryContext(height int) historyContext {
	var pos = &t.stack[height].position
	var sideToMove = pos.WhiteMove
	var cont1 = -1
	{
		var prev1 = pos.LastMove
		if prev1 != NoMove && prev1 != NullMove {
			cont1 = pieceSquareIndexFor(!sideToMove, pos.WhatPiece(prev1.To()), prev1)
		}
	}
	var cont2 = -1
	if height > 0 {
		var prevPos = &t.stack[height-1].position
		var prev2 = prevPos.LastMove
		if prev2 != NoMove && prev2 != NullMove {
			cont2 = pieceSquareIndexFor(sideToMove, prevPos.WhatPiece(prev2.To()), prev2)
		}
	}
	return historyContext{
		thread:     t,
		position:   pos,
		sideToMove: sideToMove,
		cont1:      cont1,
		cont2:      cont2,
	}
}

// pieceSquareIndex indexes the continuation history by the piece
// landing on move's destination square in the context's own
// position, before the move is made.
func (h *historyContext) pieceSquareIndex(move Move) int {
	return pieceSquareIndexFor(h.sideToMove, h.position.WhatPiece(move.From()), move)
}

func pieceSquareIndexFor(side bool, piece int, move Move) int {
	var result = (piece << 6) | move.To()
	if side {
		result |= 1 << 9
	}
	return result
}

func sideFromToIndex(side bool, move Move) int {
	var result = (move.From() << 6) | move.To()
	if side {
		result |= 1 << 12
	}
	return result
}
