package engine

import (
	"sync/atomic"

	"chesscore/internal/board"
	"chesscore/internal/nnue"
)

// searchRunState tags the cooperative run/stop lifecycle the driver and the
// recursive search share through a single atomic value (§5).
type searchRunState int32

const (
	stateIdle searchRunState = iota
	stateRunning
	stateStopPending
)

// lmrTable[depth][moveIndex] is the Stockfish-style logarithmic reduction
// floor(0.25 + ln(d)*ln(m)/2.25), precomputed once at package init (§4.5).
var lmrTable [64][64]int

func init() {
	for d := 1; d < 64; d++ {
		for m := 1; m < 64; m++ {
			lmrTable[d][m] = lmrFormula(d, m)
		}
	}
}

func lmrFormula(depth, moveIndex int) int {
	r := 0.25 + logTable[depth]*logTable[moveIndex]/2.25
	if r < 0 {
		return 0
	}
	return int(r)
}

// logTable holds ln(1)..ln(63), computed once at init so the reduction
// table doesn't need a math import for a handful of constants.
var logTable = buildLogTable()

func buildLogTable() [64]float64 {
	var t [64]float64
	for i := 1; i < 64; i++ {
		t[i] = natLog(float64(i))
	}
	return t
}

// natLog is a small range-reduced atanh-series ln(), adequate for the
// coarse depth/move-index domain the reduction table is built over.
func natLog(x float64) float64 {
	if x <= 0 {
		return 0
	}
	k := 0.0
	for x >= 2 {
		x /= 2
		k++
	}
	for x < 1 {
		x *= 2
		k--
	}
	y := (x - 1) / (x + 1)
	y2 := y * y
	sum := y
	term := y
	for n := 1; n < 12; n++ {
		term *= y2
		sum += term / float64(2*n+1)
	}
	const ln2 = 0.6931471805599453
	return 2*sum + k*ln2
}

func btoi(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Worker holds everything one search pass mutates: the position being
// searched, the search stack, the shared history/TT/evaluator state, and
// the bookkeeping needed for cooperative cancellation and repetition
// detection (§9, "bundle the prior globals into an Engine/Worker value").
type Worker struct {
	pos   *board.Position
	stack searchStack
	tt    *TranspositionTable
	hist  *History
	eval  *nnue.Evaluator

	nodes     uint64
	selDepth  int
	rootDepth int

	posHistory []uint64

	state     *atomic.Int32
	checkTime func() bool // returns true once the time budget is exhausted

	rootMoves []board.Move
}

func loadState(s *atomic.Int32) searchRunState  { return searchRunState(s.Load()) }
func storeState(s *atomic.Int32, v searchRunState) { s.Store(int32(v)) }

// NewWorker builds a Worker over an already-positioned board, sharing tt,
// hist and eval with the rest of the engine.
func NewWorker(pos *board.Position, tt *TranspositionTable, hist *History, eval *nnue.Evaluator, state *atomic.Int32, checkTime func() bool) *Worker {
	w := &Worker{pos: pos, tt: tt, hist: hist, eval: eval, state: state, checkTime: checkTime}
	w.stack.reset()
	return w
}

// ResetForNewSearch prepares the worker for a fresh iterative-deepening run:
// clears node/seldepth counters, refreshes the accumulator from the current
// position, and seeds the repetition history with the game's prior hashes.
func (w *Worker) ResetForNewSearch(history []uint64) {
	w.nodes = 0
	w.selDepth = 0
	w.stack.reset()
	w.eval.Reset()
	w.eval.Refresh(w.pos)
	w.posHistory = append(w.posHistory[:0], history...)
}

// SetRootMoves installs the pre-filtered legal move list the root node
// iterates instead of generating pseudo-legal moves and checking legality.
func (w *Worker) SetRootMoves(moves []board.Move) { w.rootMoves = moves }

// SetRootDepth records the depth the current iterative-deepening pass is
// searching at, used to bound singular-extension recursion (ply < 2*rootDepth).
func (w *Worker) SetRootDepth(d int) { w.rootDepth = d }

// Nodes reports the node count visited so far this search.
func (w *Worker) Nodes() uint64 { return w.nodes }

// SelDepth reports the deepest ply reached so far this search.
func (w *Worker) SelDepth() int { return w.selDepth }

// RootPV returns the principal variation recorded at the root frame.
func (w *Worker) RootPV() []board.Move {
	f := w.stack.at(0)
	return append([]board.Move(nil), f.pv[:f.pvLength]...)
}

func (w *Worker) drawValue() int {
	return int(w.nodes%3) - 1
}

func (w *Worker) stopped() bool {
	return loadState(w.state) == stateStopPending
}

func (w *Worker) pushRepetition() {
	w.posHistory = append(w.posHistory, w.pos.Hash)
}

func (w *Worker) popRepetition() {
	w.posHistory = w.posHistory[:len(w.posHistory)-1]
}

// isRepetitionOrFiftyMove reports whether the current position should be
// scored as a draw by the 50-move rule, insufficient material, or a single
// earlier occurrence of the same position (same side to move) within the
// last HalfMoveClock plies of posHistory, whose last entry is the current
// position. A single repeat, rather than the game's
// full three-fold rule, is enough within the tree: a third occurrence, if
// it ever happens, occurs outside the part of the game this search reaches.
func (w *Worker) isRepetitionOrFiftyMove() bool {
	if w.pos.HalfMoveClock >= 100 {
		return true
	}
	if w.pos.IsInsufficientMaterial() {
		return true
	}
	n := len(w.posHistory)
	limit := w.pos.HalfMoveClock
	if limit > n {
		limit = n
	}
	for i := 4; i <= limit && i < n; i += 2 {
		if w.posHistory[n-1-i] == w.pos.Hash {
			return true
		}
	}
	return false
}

// ttCutoff reports whether a TT hit licenses an immediate return at a
// non-PV node, and if so, the value to return. beta == alpha+1 at every
// non-PV node, which is what makes the Upper-bound/alpha comparison below
// equivalent to the textbook "ttValue < beta" phrasing.
func ttCutoff(data TTData, hit bool, depth, ply, alpha, beta int) (int, bool) {
	if !hit || data.Depth < depth {
		return 0, false
	}
	value := AdjustScoreFromTT(data.Value, ply)
	switch data.Bound {
	case BoundExact:
		return value, true
	case BoundLower:
		if value >= beta {
			return value, true
		}
	case BoundUpper:
		if value <= alpha {
			return value, true
		}
	}
	return 0, false
}

// negaMax implements the search core of §4.5. Iterative deepening drives
// the root via nodeRoot; every recursive call descends with nodePV or
// nodeNonPV depending on whether the parent searched it with a full window.
func (w *Worker) negaMax(nt nodeType, alpha, beta, depth int, cutNode bool, ply int) int {
	w.nodes++
	if w.nodes%checkTimeInterval == 0 && w.checkTime != nil && w.checkTime() {
		storeState(w.state, stateStopPending)
	}
	if w.stopped() {
		return w.drawValue()
	}

	pos := w.pos
	ss := w.stack.at(ply)
	if nt.isPV() {
		ss.pvLength = ply
	}
	if ply+1 > w.selDepth {
		w.selDepth = ply + 1
	}
	w.stack.at(ply + 1).clearKillers()

	if !nt.isRoot() {
		if w.isRepetitionOrFiftyMove() {
			return w.drawValue()
		}
		if ply >= MaxPly {
			return w.evaluateStatic()
		}
		alpha = maxInt(alpha, ply-ValueMate)
		beta = minInt(beta, ValueMate-ply-1)
		if alpha >= beta {
			return alpha
		}
	}

	ttData, ttHit := w.tt.Probe(pos.Hash)
	ttMove := board.NoMove
	ttValue := ValueNone
	ttBound := BoundNone
	ttPV := nt.isPV()
	if ttHit {
		ttMove = ttData.Move
		ttValue = AdjustScoreFromTT(ttData.Value, ply)
		ttBound = ttData.Bound
		ttPV = ttPV || ttData.PV
	}

	if !nt.isPV() && ss.excludedMove == board.NoMove {
		if v, ok := ttCutoff(ttData, ttHit, depth, ply, alpha, beta); ok {
			return v
		}
	}

	inCheck := pos.InCheck()
	if inCheck && !nt.isRoot() {
		depth = maxInt(1, depth+1)
	}

	if depth <= 0 {
		childNT := nodeNonPV
		if nt.isPV() {
			childNT = nodePV
		}
		return w.qsearch(childNT, alpha, beta, ply)
	}

	var staticEval int
	switch {
	case inCheck:
		staticEval = ValueNone
	case ss.excludedMove != board.NoMove:
		staticEval = ss.staticEval
	case ttHit && ttData.StaticEval != ValueNone:
		staticEval = ttData.StaticEval
	default:
		staticEval = w.evaluateStatic()
	}
	ss.staticEval = staticEval

	eval := staticEval
	if ttHit && staticEval != ValueNone {
		if (ttBound == BoundLower && ttValue > eval) || (ttBound == BoundUpper && ttValue < eval) {
			eval = ttValue
		}
	}

	improving := !inCheck && w.stack.improving(ply, staticEval)

	if !inCheck && !nt.isPV() && ss.excludedMove == board.NoMove {
		// Razoring: the static eval sits so far below alpha that only a
		// tactical shot found in quiescence could rescue this node.
		if eval < alpha-400*depth {
			score := w.qsearch(nodeNonPV, alpha-1, alpha, ply)
			if score < alpha {
				return score
			}
		}

		// Reverse futility pruning.
		if depth < 9 && abs(eval) < ValueTBWinInMaxPly && eval >= beta &&
			eval-120*(depth-btoi(improving)) >= beta {
			return eval
		}

		// Null-move pruning.
		if !w.stack.at(ply-1).nullMove && eval >= beta &&
			beta > ValueTBLossInMaxPly && pos.HasNonPawns(pos.SideToMove) {
			r := minInt((eval-beta)/200, 3) + depth/3 + 4
			nd := depth - r
			if nd < 1 {
				nd = 1
			}
			child := w.stack.at(ply + 1)
			child.playedMove = board.NoMove
			child.playedPiece = board.NoPiece
			child.nullMove = true
			child.excludedMove = board.NoMove

			w.eval.Push()
			undo := pos.MakeNullMove()
			w.pushRepetition()
			score := -w.negaMax(nodeNonPV, -beta, -beta+1, nd, !cutNode, ply+1)
			w.popRepetition()
			pos.UnmakeNullMove(undo)
			w.eval.Pop()

			if score >= beta && score < ValueTBWinInMaxPly {
				return score
			}
		}
	}

	// Internal iterative reduction: no TT move to trust at this node, so
	// its apparent depth is probably optimistic.
	if (nt.isPV() || cutNode) && depth >= 4 && ttMove == board.NoMove {
		depth--
	}

	var moves *board.MoveList
	if nt.isRoot() {
		moves = board.NewMoveList()
		for _, m := range w.rootMoves {
			moves.Add(m)
		}
	} else {
		moves = pos.GeneratePseudoLegalMoves()
	}
	scores := scoreMovesAt(pos, moves, ttMove, ss, &w.stack, ply, w.hist)
	origAlpha := alpha

	quietMoves := make([]quietTried, 0, 8)
	skipQuiets := false
	playedMoves := 0
	quietCount := 0
	legalMoveFound := false
	bestValue := -ValueInfinite
	bestMove := board.NoMove

	ttMoveNoisy := ttMove != board.NoMove && !ttMove.IsQuiet(pos)

	for i := 0; i < moves.Len(); i++ {
		move, moveScore := nextBestMove(moves, scores, i)
		if move == ss.excludedMove {
			continue
		}
		if !nt.isRoot() && !pos.IsLegal(move) {
			continue
		}

		isQuiet := move.IsQuiet(pos)

		if skipQuiets && isQuiet {
			if len(quietMoves) < maxTrackedQuiets {
				quietMoves = append(quietMoves, quietTried{move, pos.PieceAt(move.From())})
			}
			continue
		}

		legalMoveFound = true

		if !nt.isRoot() && !inCheck && isQuiet && bestValue > ValueTBLossInMaxPly && pos.HasNonPawns(pos.SideToMove) {
			limit := (2*depth*depth + 7) / (2 - btoi(improving))
			if quietCount > limit {
				skipQuiets = true
				if len(quietMoves) < maxTrackedQuiets {
					quietMoves = append(quietMoves, quietTried{move, pos.PieceAt(move.From())})
				}
				continue
			}
		}

		if !inCheck && !isQuiet && !pos.SEEGE(move, -140*depth) {
			continue
		}

		if !inCheck && isQuiet && depth <= 8 && eval+180+120*depth <= alpha {
			skipQuiets = true
			if len(quietMoves) < maxTrackedQuiets {
				quietMoves = append(quietMoves, quietTried{move, pos.PieceAt(move.From())})
			}
			continue
		}

		extension := 0
		if !nt.isRoot() && ply < 2*w.rootDepth && depth >= 6 && ss.excludedMove == board.NoMove && move == ttMove &&
			ttHit && abs(ttValue) < ValueTBWinInMaxPly &&
			(ttBound == BoundLower || ttBound == BoundExact) && ttData.Depth >= depth-3 {

			singularBeta := ttValue - depth
			singularDepth := (depth - 1) / 2
			if singularDepth < 1 {
				singularDepth = 1
			}
			ss.excludedMove = move
			score := w.negaMax(nodeNonPV, singularBeta-1, singularBeta, singularDepth, cutNode, ply)
			ss.excludedMove = board.NoMove

			switch {
			case score < singularBeta:
				extension = 1
			case singularBeta >= beta:
				return singularBeta
			case ttValue >= beta:
				extension = -1 + btoi(nt.isPV())
			}
		}

		if isQuiet {
			quietCount++
			if len(quietMoves) < maxTrackedQuiets {
				quietMoves = append(quietMoves, quietTried{move, pos.PieceAt(move.From())})
			}
		}

		w.eval.Push()
		undo := pos.MakeMove(move)
		w.eval.Refresh(pos)
		w.pushRepetition()

		child := w.stack.at(ply + 1)
		child.playedMove = move
		child.playedPiece = pos.PieceAt(move.To())
		child.nullMove = false
		child.excludedMove = board.NoMove

		playedMoves++
		newDepth := depth - 1 + extension

		var score int
		if !inCheck && depth >= 3 && playedMoves > 1+2*btoi(nt.isPV()) {
			d := clampInt(depth, 1, 63)
			m := clampInt(playedMoves, 1, 63)
			r := lmrTable[d][m]
			if isQuiet {
				r += btoi(ttMoveNoisy)
				if abs(moveScore) < 50000 {
					r -= clampInt(moveScore/8000, -2, 2)
				}
			} else {
				r /= 2
			}
			r += btoi(!improving) - btoi(nt.isPV()) + btoi(cutNode)

			reduced := clampInt(newDepth-r, 1, newDepth+1)
			score = -w.negaMax(nodeNonPV, -alpha-1, -alpha, reduced, true, ply+1)
			if score > alpha && reduced < newDepth {
				score = -w.negaMax(nodeNonPV, -alpha-1, -alpha, newDepth, !cutNode, ply+1)
			}
		} else if nt.isPV() && playedMoves == 1 {
			score = -w.negaMax(nodePV, -beta, -alpha, newDepth, false, ply+1)
		} else {
			score = -w.negaMax(nodeNonPV, -alpha-1, -alpha, newDepth, !cutNode, ply+1)
			if score > alpha && score < beta && nt.isPV() {
				score = -w.negaMax(nodePV, -beta, -alpha, newDepth, false, ply+1)
			}
		}

		w.popRepetition()
		pos.UnmakeMove(move, undo)
		w.eval.Pop()

		if w.stopped() {
			return w.drawValue()
		}

		if score > bestValue {
			bestValue = score
			bestMove = move
			if score > alpha {
				alpha = score
				ss.updatePV(ply, move, w.stack.at(ply+1))
			}
		}
		if score >= beta {
			break
		}
	}

	if !legalMoveFound {
		if ss.excludedMove != board.NoMove {
			return alpha
		}
		if inCheck {
			return ply - ValueMate
		}
		return ValueDraw
	}

	bound := BoundUpper
	switch {
	case bestValue >= beta:
		bound = BoundLower
	case bestValue > origAlpha:
		bound = BoundExact
	}

	if bestValue >= beta && bestMove != board.NoMove && bestMove.IsQuiet(pos) {
		ss.updateKillers(bestMove)
		ss1, ss2 := w.stack.at(ply-1), w.stack.at(ply-2)
		cont1 := w.hist.contHist.Entry(ss1.playedPiece, ss1.playedMove.To())
		cont2 := w.hist.contHist.Entry(ss2.playedPiece, ss2.playedMove.To())
		bestPiece := pos.PieceAt(bestMove.From())
		w.hist.UpdateOnFailHigh(pos.SideToMove, bestMove, bestPiece, quietMoves, depth, bestValue, beta, cont1, cont2, ss1.playedPiece, ss1.playedMove.To())
	}

	if ss.excludedMove == board.NoMove {
		w.tt.Store(pos.Hash, bound, depth, bestMove, AdjustScoreToTT(bestValue, ply), staticEval, ttPV)
	}

	return bestValue
}

// qsearch implements §4.6: a tactics-only search that stands pat unless the
// side to move is in check, in which case every evasion is considered.
func (w *Worker) qsearch(nt nodeType, alpha, beta, ply int) int {
	w.nodes++
	if w.stopped() {
		return w.drawValue()
	}

	pos := w.pos
	ss := w.stack.at(ply)
	if nt.isPV() {
		ss.pvLength = ply
	}
	if ply+1 > w.selDepth {
		w.selDepth = ply + 1
	}

	if w.isRepetitionOrFiftyMove() {
		return w.drawValue()
	}
	if ply >= MaxPly {
		return w.evaluateStatic()
	}

	ttData, ttHit := w.tt.Probe(pos.Hash)
	if !nt.isPV() {
		if v, ok := ttCutoff(ttData, ttHit, 0, ply, alpha, beta); ok {
			return v
		}
	}
	ttMove := board.NoMove
	if ttHit {
		ttMove = ttData.Move
	}

	inCheck := pos.InCheck()
	var bestValue int
	var moves *board.MoveList
	var staticEval int

	if inCheck {
		bestValue = -ValueInfinite
		staticEval = ValueNone
		moves = pos.GeneratePseudoLegalMoves()
	} else {
		if ttHit && ttData.StaticEval != ValueNone {
			staticEval = ttData.StaticEval
		} else {
			staticEval = w.evaluateStatic()
		}
		eval := staticEval
		if ttHit {
			if (ttData.Bound == BoundLower && ttData.Value > eval) || (ttData.Bound == BoundUpper && ttData.Value < eval) {
				eval = AdjustScoreFromTT(ttData.Value, ply)
			}
		}
		if eval >= beta {
			if !ttHit {
				w.tt.Store(pos.Hash, BoundLower, 0, board.NoMove, AdjustScoreToTT(eval, ply), staticEval, nt.isPV())
			}
			return eval
		}
		if eval > alpha {
			alpha = eval
		}
		bestValue = eval
		moves = pos.GenerateCaptures()
	}

	scores := scoreMoves(pos, moves, ttMove, ss, w.hist)

	bestMove := board.NoMove
	legalMoveFound := false

	for i := 0; i < moves.Len(); i++ {
		move, moveScore := nextBestMove(moves, scores, i)

		if inCheck {
			if !pos.IsLegal(move) {
				continue
			}
		} else {
			if move.IsPromotion() && move.Promotion() != board.Queen {
				continue
			}
			if moveScore < -50000 {
				break
			}
			if !pos.SEEGE(move, 0) {
				continue
			}
		}

		legalMoveFound = true

		w.eval.Push()
		undo := pos.MakeMove(move)
		w.eval.Refresh(pos)
		w.pushRepetition()

		child := w.stack.at(ply + 1)
		child.playedMove = move
		child.playedPiece = pos.PieceAt(move.To())
		child.nullMove = false
		child.excludedMove = board.NoMove

		childNT := nodeNonPV
		if nt.isPV() {
			childNT = nodePV
		}
		score := -w.qsearch(childNT, -beta, -alpha, ply+1)

		w.popRepetition()
		pos.UnmakeMove(move, undo)
		w.eval.Pop()

		if score > bestValue {
			bestValue = score
			bestMove = move
			if score > alpha {
				alpha = score
				ss.updatePV(ply, move, w.stack.at(ply+1))
			}
			if score >= beta {
				break
			}
		}
	}

	if inCheck && !legalMoveFound {
		return ply - ValueMate
	}

	bound := BoundUpper
	if bestValue >= beta {
		bound = BoundLower
	}
	w.tt.Store(pos.Hash, bound, 0, bestMove, AdjustScoreToTT(bestValue, ply), staticEval, nt.isPV())

	return bestValue
}

func (w *Worker) evaluateStatic() int {
	return w.eval.Evaluate(w.pos.SideToMove)
}
