package engine

import (
	"sync/atomic"
	"time"

	"chesscore/internal/board"
	"chesscore/internal/nnue"
	"chesscore/internal/timeman"
)

// SearchInfo reports one completed (or in-progress) iterative-deepening
// pass, the shape a UCI `info` line is built from (§6).
type SearchInfo struct {
	Depth    int
	SelDepth int
	Score    int
	Nodes    uint64
	NPS      uint64
	Time     time.Duration
	PV       []board.Move
	HashFull int
}

// Engine bundles the state that used to be process-global: the
// transposition table, history tables, and NNUE evaluator survive across
// searches within a game, while a fresh Worker is built per search (§9).
type Engine struct {
	tt   *TranspositionTable
	hist *History
	eval *nnue.Evaluator
	tm   *timeman.Manager

	state atomic.Int32

	// OnInfo, if set, is called once per completed iterative-deepening
	// depth with the current best line.
	OnInfo func(SearchInfo)
}

// NewEngine builds an Engine with its own transposition table of the given
// size and the supplied (already-loaded) NNUE evaluator.
func NewEngine(ttSizeMB int, eval *nnue.Evaluator) *Engine {
	return &Engine{
		tt:   NewTranspositionTable(ttSizeMB),
		hist: NewHistory(),
		eval: eval,
		tm:   timeman.NewManager(),
	}
}

// Stop requests cooperative cancellation of any search in progress (§5).
func (e *Engine) Stop() {
	e.state.Store(int32(stateStopPending))
}

// Clear resets the transposition table and history tables, as on
// `ucinewgame`.
func (e *Engine) Clear() {
	e.tt.Clear()
	e.hist.Clear()
}

// HashFull reports the transposition table's permille occupancy.
func (e *Engine) HashFull() int { return e.tt.HashFull() }

// SetEvaluator swaps the NNUE evaluator backing every future search, e.g.
// after `setoption name EvalFile` loads a new network.
func (e *Engine) SetEvaluator(ev *nnue.Evaluator) { e.eval = ev }

// Perft counts leaf nodes at depth below pos, for move-generator
// verification via the UCI `perft` debug command.
func (e *Engine) Perft(pos *board.Position, depth int) uint64 {
	if depth == 0 {
		return 1
	}
	moves := pos.GenerateLegalMoves()
	if depth == 1 {
		return uint64(moves.Len())
	}
	var nodes uint64
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		undo := pos.MakeMove(m)
		nodes += e.Perft(pos, depth-1)
		pos.UnmakeMove(m, undo)
	}
	return nodes
}

func legalRootMoves(pos *board.Position) []board.Move {
	pseudo := pos.GeneratePseudoLegalMoves()
	moves := make([]board.Move, 0, pseudo.Len())
	for i := 0; i < pseudo.Len(); i++ {
		m := pseudo.Get(i)
		if pos.IsLegal(m) {
			moves = append(moves, m)
		}
	}
	return moves
}

// SearchWithLimits runs the iterative-deepening driver of §4.7 over pos and
// returns the best move found. history carries the Zobrist hashes of the
// game played so far (for in-search repetition detection) and ply is the
// current game ply, both needed by the time manager and the draw rules.
func (e *Engine) SearchWithLimits(pos *board.Position, limits timeman.Limits, history []uint64, ply int) board.Move {
	e.state.Store(int32(stateRunning))
	e.tt.NewSearch()
	e.tm.Init(limits, pos.SideToMove, ply)

	var worker *Worker
	checkTime := func() bool {
		if limits.Nodes > 0 && worker.Nodes() >= limits.Nodes {
			return true
		}
		return e.tm.ShouldStop()
	}
	worker = NewWorker(pos, e.tt, e.hist, e.eval, &e.state, checkTime)
	worker.ResetForNewSearch(history)
	rootMoves := legalRootMoves(pos)
	worker.SetRootMoves(rootMoves)

	maxDepth := MaxPly - 1
	if limits.Depth > 0 && limits.Depth < maxDepth {
		maxDepth = limits.Depth
	}

	startTime := time.Now()
	var bestMove board.Move
	var bestScore int
	stability := 0

	for rootDepth := 1; rootDepth <= maxDepth; rootDepth++ {
		worker.SetRootDepth(rootDepth)

		score, stopped := e.searchOneDepth(worker, rootDepth, bestMove, bestScore)
		if stopped {
			break
		}

		rootPV := worker.RootPV()
		if len(rootPV) > 0 {
			newBest := rootPV[0]
			if newBest == bestMove {
				stability = minInt(stability+1, 8)
			} else {
				stability = 0
			}
			bestMove = newBest
			bestScore = score
		}

		if e.OnInfo != nil {
			elapsed := time.Since(startTime)
			nodes := worker.Nodes()
			var nps uint64
			if elapsed > 0 {
				nps = uint64(float64(nodes) / elapsed.Seconds())
			}
			e.OnInfo(SearchInfo{
				Depth:    rootDepth,
				SelDepth: worker.SelDepth(),
				Score:    bestScore,
				Nodes:    nodes,
				NPS:      nps,
				Time:     elapsed,
				PV:       rootPV,
				HashFull: e.tt.HashFull(),
			})
		}

		if abs(bestScore) >= ValueMateInMaxPly {
			break
		}
		if rootDepth >= 40 && abs(bestScore) < 5 {
			break
		}

		e.tm.ApplyStability(stability)
		if e.tm.PastOptimum() {
			break
		}
	}

	e.state.Store(int32(stateIdle))
	return fallbackBestMove(bestMove, rootMoves)
}

// fallbackBestMove implements §5's cancellation guarantee: if cooperative
// cancellation fires before depth 1 even completes, bestMove is still
// NoMove here, so the first move of the pre-scored root list is emitted
// instead, rather than no move at all.
func fallbackBestMove(bestMove board.Move, rootMoves []board.Move) board.Move {
	if bestMove == board.NoMove && len(rootMoves) > 0 {
		return rootMoves[0]
	}
	return bestMove
}

// searchOneDepth runs one iterative-deepening pass at rootDepth, applying
// aspiration windows once rootDepth has reached aspWindowStartDepth and a
// previous iteration's score is available (§4.7).
func (e *Engine) searchOneDepth(worker *Worker, rootDepth int, prevBest board.Move, prevScore int) (score int, stopped bool) {
	if rootDepth < aspWindowStartDepth || prevBest == board.NoMove {
		score = worker.negaMax(nodeRoot, -ValueInfinite, ValueInfinite, rootDepth, false, 0)
		return score, e.state.Load() == int32(stateStopPending)
	}

	window := aspInitialWindow
	alpha := maxInt(prevScore-window, -ValueInfinite)
	beta := minInt(prevScore+window, ValueInfinite)
	failHighCnt := 0

	for {
		depth := maxInt(1, rootDepth-failHighCnt)
		score = worker.negaMax(nodeRoot, alpha, beta, depth, false, 0)
		if e.state.Load() == int32(stateStopPending) {
			return score, true
		}

		switch {
		case score <= alpha:
			beta = (alpha + beta) / 2
			alpha = maxInt(alpha-window, -ValueInfinite)
			failHighCnt = 0
		case score >= beta:
			beta = minInt(beta+window, ValueInfinite)
			failHighCnt = minInt(failHighCnt+1, aspFailHighReductionMax)
			if abs(score) >= ValueMateInMaxPly {
				beta = ValueInfinite
			}
		default:
			return score, false
		}
		window += window / 3
	}
}
