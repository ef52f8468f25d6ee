package engine

import (
	"errors"

	"golang.org/x/sync/errgroup"

	. "github.com/vchizhov/corechess/pkg/common"
)

var errSearchTimeout = errors.New("engine: search timeout")

type searchTask struct {
	depth         int
	startingMove  Move // for move ordering
	startingScore int  // for aspirationWindow
}

// lazySmp runs the Lazy-SMP thread pool: every worker shares the
// transposition table and repeatedly asks iterativeDeepening for the
// next depth to search, so threads naturally spread across depths
// instead of all redoing the same one.
func lazySmp(e *Engine) {
	var ml = e.genRootMoves()
	if len(ml) != 0 {
		e.mainLine = mainLine{
			depth: 0,
			score: 0,
			moves: []Move{ml[0]},
		}
	}
	if len(ml) <= 1 {
		return
	}

	var tasks = make(chan searchTask)
	var taskResults = make(chan mainLine)

	var group errgroup.Group
	for i := range e.threads {
		var t = &e.threads[i]
		var threadMoves = cloneMoves(ml)
		group.Go(func() error {
			searchDepth(t, threadMoves, tasks, taskResults)
			return nil
		})
	}

	go func() {
		group.Wait()
		close(taskResults)
	}()

	iterativeDeepening(e, tasks, taskResults)
}

func iterativeDeepening(
	e *Engine,
	tasks chan<- searchTask,
	taskResults <-chan mainLine,
) {
	var searchCountByDepth [stackSize]int
	for {
		var task = searchTask{
			depth:         e.mainLine.depth + 1,
			startingMove:  e.mainLine.moves[0],
			startingScore: e.mainLine.score,
		}
		if task.depth < len(searchCountByDepth) &&
			searchCountByDepth[task.depth] >= (e.Threads+1)/2 {
			task.depth = e.mainLine.depth + 2
		}

		if task.depth > maxHeight || e.timeManager.IsDone() {
			if tasks != nil {
				close(tasks)
				tasks = nil
			}
		}

		select {
		case taskResult, ok := <-taskResults:
			if !ok {
				return
			}
			e.mainLine.nodes += taskResult.nodes
			if taskResult.depth > e.mainLine.depth {
				e.mainLine.depth = taskResult.depth
				e.mainLine.score = taskResult.score
				e.mainLine.moves = taskResult.moves
				e.timeManager.OnIterationComplete(e.mainLine)
				if e.progress != nil && e.mainLine.nodes >= int64(e.ProgressMinNodes) {
					e.progress(e.currentSearchResult())
				}
			}
		case tasks <- task:
			searchCountByDepth[task.depth]++
		}
	}
}

func searchDepth(
	t *thread,
	ml []Move,
	tasks <-chan searchTask,
	taskResults chan<- mainLine,
) {
	defer func() {
		if r := recover(); r != nil {
			if r == errSearchTimeout {
				return
			}
			panic(r)
		}
	}()

	const height = 0
	for h := 0; h <= 2; h++ {
		t.stack[h].killer1 = NoMove
		t.stack[h].killer2 = NoMove
	}

	for task := range tasks {
		if task.startingMove != NoMove {
			var index = findMoveIndex(ml, task.startingMove)
			if index >= 0 {
				moveToBegin(ml, index)
			}
		}
		var score = aspirationWindow(t, ml, task.depth, task.startingScore)
		taskResults <- mainLine{
			depth: task.depth,
			score: score,
			moves: t.stack[height].pv.toSlice(),
			nodes: t.nodes,
		}
		t.nodes = 0
	}
}
