package engine

import (
	. "github.com/vchizhov/corechess/pkg/common"
)

const pawnValue = 100

// aspirationWindow drives the search at a fixed depth with a narrow
// window around the previous iteration's score, falling back to a
// full-width search on repeated fail-low/fail-high.
func aspirationWindow(t *thread, ml []Move, depth, prevScore int) int {
	const Window = 25
	var alpha, beta = -valueInfinity, valueInfinity
	if t.engine.AspirationWindows && depth >= 5 {
		alpha = Max(-valueInfinity, prevScore-Window)
		beta = Min(valueInfinity, prevScore+Window)
	}

	for {
		var score = searchRoot(t, ml, alpha, beta, depth)
		if score <= alpha {
			beta = (alpha + beta) / 2
			alpha = Max(-valueInfinity, alpha-Window*2)
		} else if score >= beta {
			beta = Min(valueInfinity, beta+Window*2)
		} else {
			return score
		}
		if alpha == -valueInfinity && beta == valueInfinity {
			return score
		}
	}
}

func searchRoot(t *thread, ml []Move, alpha, beta, depth int) int {
	const height = 0
	var pos = &t.stack[height].position
	t.stack[height].pv.clear()

	var best = -valueInfinity
	for i, move := range ml {
		var newDepth = depth - 1
		var undo Undo
		if !Apply(pos, move, &undo) {
			continue
		}
		t.MakeMove(height, move)
		t.stack[height+1].position = *pos
		Revert(pos, move, &undo)

		var score int
		if i == 0 {
			score = -t.alphaBeta(-beta, -alpha, newDepth, height+1, NoMove)
		} else {
			score = -t.alphaBeta(-alpha-1, -alpha, newDepth, height+1, NoMove)
			if score > alpha {
				score = -t.alphaBeta(-beta, -alpha, newDepth, height+1, NoMove)
			}
		}

		t.UnmakeMove()

		if score > best {
			best = score
			if score > alpha {
				alpha = score
				t.stack[height].pv.assign(move, &t.stack[height+1].pv)
				if i != 0 {
					moveToBegin(ml, i)
				}
			}
		}
		if alpha >= beta {
			break
		}
	}
	return best
}

func (t *thread) alphaBeta(alpha, beta, depth, height int, skipMove Move) int {
	var pvNode = beta != alpha+1
	var pos = &t.stack[height].position
	var e = t.engine

	t.incNodes()

	if height >= maxHeight {
		return t.evaluate(height)
	}

	if isDraw(pos) || t.isRepeat(height) {
		return valueDraw
	}

	alpha = Max(alpha, lossIn(height))
	beta = Min(beta, winIn(height+1))
	if alpha >= beta {
		return alpha
	}

	var ttDepth, ttScore, ttBoundVal, ttMove, ttHit = e.transTable.Read(pos.Key)
	if ttHit && !IsPseudoLegal(pos, ttMove) {
		ttMove = NoMove
		ttHit = false
	}
	if ttHit && skipMove == NoMove {
		ttScore = valueFromTT(ttScore, height)
		if ttDepth >= depth {
			if ttBoundVal == boundExact {
				return ttScore
			}
			if ttBoundVal == boundLower && ttScore >= beta {
				t.updateKiller(height, ttMove)
				return ttScore
			}
			if ttBoundVal == boundUpper && ttScore <= alpha {
				return ttScore
			}
		}
	}

	var inCheck = pos.IsCheck()
	var staticEval int
	if inCheck {
		staticEval = -valueInfinity
	} else {
		staticEval = t.evaluator.EvaluateQuick(pos)
	}
	t.stack[height].staticEval = staticEval

	if depth <= 0 {
		return t.quiescence(alpha, beta, height)
	}

	var improving = !inCheck && height >= 2 && staticEval > t.stack[height-2].staticEval

	if !pvNode && !inCheck && skipMove == NoMove {
		if e.Razoring && depth <= 3 && staticEval+pawnValue*2*depth <= alpha {
			var razorScore = t.quiescence(alpha, beta, height)
			if razorScore <= alpha {
				return razorScore
			}
		}

		if e.ReverseFutility && depth <= 8 &&
			staticEval-pawnValue*depth >= beta &&
			beta > valueLoss {
			return staticEval
		}

		if e.NullMovePruning && depth >= 3 &&
			staticEval >= beta &&
			!isLateEndgame(pos, pos.WhiteMove) {
			var reduction = 4 + depth/6 + Min(2, (staticEval-beta)/200)
			var undo Undo
			ApplyNull(pos, &undo)
			t.stack[height+1].position = *pos
			RevertNull(pos, &undo)
			var nullScore = -t.alphaBeta(-beta, -beta+1, depth-1-reduction, height+1, NoMove)
			if nullScore >= beta {
				if nullScore >= valueWin {
					nullScore = beta
				}
				return nullScore
			}
		}

		var probcutBeta = Min(valueWin-1, beta+150)
		if e.Probcut && depth >= 5 &&
			beta > valueLoss && beta < valueWin &&
			!(ttHit && ttDepth >= depth-4 && ttScore < probcutBeta && ttBoundVal == boundUpper) {

			var mi = moveIteratorQS{
				position: pos,
				buffer:   t.stack[height].moveList[:],
			}
			mi.Init()

			for {
				var move = mi.Next()
				if move == NoMove {
					break
				}
				if !seeGEZero(pos, move) {
					continue
				}
				var undo Undo
				if !Apply(pos, move, &undo) {
					continue
				}
				t.MakeMove(height, move)
				t.stack[height+1].position = *pos

				var score = -t.quiescence(-probcutBeta, -probcutBeta+1, height+1)
				if score >= probcutBeta {
					score = -t.alphaBeta(-probcutBeta, -probcutBeta+1, depth-4, height+1, NoMove)
				}

				t.UnmakeMove()
				Revert(pos, move, &undo)

				if score >= probcutBeta {
					return score
				}
			}
		}
	}

	if ttMove == NoMove && depth >= 6 {
		t.alphaBeta(alpha, beta, depth-2, height, skipMove)
		ttDepth, ttScore, ttBoundVal, ttMove, ttHit = e.transTable.Read(pos.Key)
		if ttHit && !IsPseudoLegal(pos, ttMove) {
			ttMove = NoMove
		}
	}

	var extension = 0
	if e.CheckExt && inCheck {
		extension = 1
	}

	if e.SingularExt && depth >= 8 && ttMove != NoMove && skipMove == NoMove && ttHit {
		var singularBeta = Max(-valueInfinity, ttScore-depth)
		var singularScore = t.alphaBeta(singularBeta-1, singularBeta, depth/2, height, ttMove)
		if singularScore < singularBeta {
			extension = Max(extension, 1)
		}
	}

	var killer1 = t.stack[height].killer1
	var killer2 = t.stack[height].killer2
	var history = t.getHistoryContext(height)
	var mi = moveIterator{
		position:  pos,
		buffer:    t.stack[height].moveList[:],
		history:   history,
		transMove: ttMove,
		killer1:   killer1,
		killer2:   killer2,
	}
	mi.Init()

	var best = -valueInfinity
	var bestMove = NoMove
	var oldAlpha = alpha
	var movesSearched = 0
	var quietsSearched = t.stack[height].quietsSearched[:0]
	var lmp = 5 + (depth-1)*depth
	if !improving {
		lmp /= 2
	}

	for {
		var move = mi.Next()
		if move == NoMove {
			break
		}
		if move == skipMove {
			continue
		}

		var tactical = isCaptureOrPromotion(pos, move)

		var pawnAdvance = isPawnAdvance(pos, move, pos.WhiteMove)
		var dangerous = tactical ||
			isPawnPush7th(pos, move, pos.WhiteMove) ||
			isRecapture(pos.LastMove, move)

		if !pvNode && best > valueLoss {
			if e.Lmp && !dangerous && movesSearched >= lmp {
				continue
			}
			if e.Futility && !dangerous && depth <= 6 &&
				staticEval+100+pawnValue*depth <= alpha {
				continue
			}
			if e.See && depth <= 8 {
				var margin = -20 * depth * depth
				if !tactical {
					margin -= 50
				}
				if !SeeGE(pos, move, margin) {
					continue
				}
			}
		}

		var undo Undo
		if !Apply(pos, move, &undo) {
			continue
		}
		movesSearched++
		if !tactical {
			quietsSearched = append(quietsSearched, move)
		}
		t.MakeMove(height, move)
		t.stack[height+1].position = *pos
		Revert(pos, move, &undo)

		var newDepth = depth - 1 + extension

		var score int
		if movesSearched == 1 {
			score = -t.alphaBeta(-beta, -alpha, newDepth, height+1, NoMove)
		} else {
			var reduction = 0
			if depth >= 3 && movesSearched > 1 && !tactical {
				reduction = e.Lmr(depth, movesSearched)
				if pvNode {
					reduction--
				}
				if move == killer1 || move == killer2 {
					reduction--
				}
				if !improving {
					reduction++
				}
				if pawnAdvance {
					reduction--
				}
				reduction = Max(0, Min(reduction, newDepth-1))
			}
			score = -t.alphaBeta(-alpha-1, -alpha, newDepth-reduction, height+1, NoMove)
			if score > alpha && reduction != 0 {
				score = -t.alphaBeta(-alpha-1, -alpha, newDepth, height+1, NoMove)
			}
			if score > alpha && pvNode {
				score = -t.alphaBeta(-beta, -alpha, newDepth, height+1, NoMove)
			}
		}

		t.UnmakeMove()

		if score > best {
			best = score
			bestMove = move
			if score > alpha {
				alpha = score
				t.stack[height].pv.assign(move, &t.stack[height+1].pv)
			}
		}
		if alpha >= beta {
			t.updateKiller(height, move)
			break
		}
	}

	if movesSearched == 0 {
		if skipMove != NoMove {
			return alpha
		}
		if inCheck {
			return lossIn(height)
		}
		return valueDraw
	}

	if bestMove != NoMove && !isCaptureOrPromotion(pos, bestMove) {
		history.Update(quietsSearched, bestMove, depth)
	}

	if skipMove == NoMove {
		var bound int
		if best <= oldAlpha {
			bound = boundUpper
		} else if best >= beta {
			bound = boundLower
		} else {
			bound = boundExact
		}
		e.transTable.Update(pos.Key, depth, valueToTT(best, height), bound, bestMove)
	}

	return best
}

func (t *thread) quiescence(alpha, beta, height int) int {
	var pos = &t.stack[height].position
	var e = t.engine

	t.incNodes()

	if height >= maxHeight {
		return t.evaluate(height)
	}

	var ttDepth, ttScore, ttBoundVal, _, ttHit = e.transTable.Read(pos.Key)
	if ttHit {
		ttScore = valueFromTT(ttScore, height)
		if ttDepth >= 0 {
			if ttBoundVal == boundExact {
				return ttScore
			}
			if ttBoundVal == boundLower && ttScore >= beta {
				return ttScore
			}
			if ttBoundVal == boundUpper && ttScore <= alpha {
				return ttScore
			}
		}
	}

	var inCheck = pos.IsCheck()
	var best int
	if inCheck {
		best = -valueInfinity
	} else {
		best = t.evaluator.EvaluateQuick(pos)
		if best >= beta {
			return best
		}
		if best > alpha {
			alpha = best
		}
	}

	var mi = moveIteratorQS{
		position: pos,
		buffer:   t.stack[height].moveList[:],
	}
	mi.Init()

	for {
		var move = mi.Next()
		if move == NoMove {
			break
		}

		if !inCheck {
			var value = EstimatedValue(pos, move)
			if best+value+200 <= alpha {
				continue
			}
			if !SeeGE(pos, move, 0) {
				continue
			}
		}

		var undo Undo
		if !Apply(pos, move, &undo) {
			continue
		}
		t.MakeMove(height, move)
		t.stack[height+1].position = *pos

		var score = -t.quiescence(-beta, -alpha, height+1)

		t.UnmakeMove()
		Revert(pos, move, &undo)

		if score > best {
			best = score
			if score > alpha {
				alpha = score
			}
		}
		if alpha >= beta {
			break
		}
	}

	if inCheck && best == -valueInfinity {
		return lossIn(height)
	}

	return best
}

func (t *thread) evaluate(height int) int {
	return t.evaluator.EvaluateQuick(&t.stack[height].position)
}

func (t *thread) updateKiller(height int, move Move) {
	if isCaptureOrPromotion(&t.stack[height].position, move) {
		return
	}
	if t.stack[height].killer1 != move {
		t.stack[height].killer2 = t.stack[height].killer1
		t.stack[height].killer1 = move
	}
}

func (t *thread) incNodes() {
	t.nodes++
	const checkNodes = 1024
	if t.nodes&(checkNodes-1) == 0 {
		t.engine.onNodesChanged(t)
		if t.engine.timeManager.IsDone() {
			panic(errSearchTimeout)
		}
	}
}

func (e *Engine) onNodesChanged(t *thread) {
	e.mu.Lock()
	var total = e.nodes
	for i := range e.threads {
		total += e.threads[i].nodes
	}
	e.mu.Unlock()
	e.timeManager.OnNodesChanged(int(total))
}

func (t *thread) MakeMove(height int, move Move) {
	t.evaluator.MakeMove(&t.stack[height].position, move)
}

func (t *thread) UnmakeMove() {
	t.evaluator.UnmakeMove()
}

func isDraw(pos *Position) bool {
	if pos.Rule50 > 100 {
		return true
	}
	return isInsufficientMaterial(pos)
}

// isRepeat walks the stack backwards within the fifty-move window
// looking for a repeated key: a match found inside this search counts
// immediately, a match older than the search root falls back to
// historyKeys, which counts every game key seen since the last
// irreversible move; a count of two or more is a repetition.
func (t *thread) isRepeat(height int) bool {
	var p = &t.stack[height].position

	if p.Rule50 == 0 || p.LastMove == NoMove {
		return false
	}
	for i := height - 1; i >= 0; i-- {
		var temp = &t.stack[i].position
		if temp.Key == p.Key {
			return true
		}
		if temp.Rule50 == 0 || temp.LastMove == NoMove {
			return false
		}
	}

	return t.engine.historyKeys[p.Key] >= 2
}

func isInsufficientMaterial(pos *Position) bool {
	if pos.Pawns != 0 || pos.Queens != 0 || pos.Rooks != 0 {
		return false
	}
	var minorCount = PopCount(pos.Knights | pos.Bishops)
	return minorCount <= 2
}

func (e *Engine) genRootMoves() []Move {
	var t = &e.threads[0]
	var pos = &t.stack[0].position
	return GenerateLegalMoves(pos, make([]Move, 0, MaxMoves))
}

func cloneMoves(ml []Move) []Move {
	var result = make([]Move, len(ml))
	copy(result, ml)
	return result
}

func findMoveIndex(ml []Move, move Move) int {
	for i, m := range ml {
		if m == move {
			return i
		}
	}
	return -1
}

func moveToBegin(ml []Move, index int) {
	var m = ml[index]
	copy(ml[1:index+1], ml[:index])
	ml[0] = m
}
