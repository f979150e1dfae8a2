package engine

import "chesscore/internal/board"

// Move ordering scores, exactly the priority table of §4.3. Gaps between
// bands (e.g. 400000 vs 300000+MVV*100) leave room for the MVV/history
// terms added within a band without one band ever outscoring the next.
const (
	scoreTTMove           = 1 << 30 // INT_MAX stand-in
	scoreGoodQueenPromo   = 410000
	scoreGoodKnightPromo  = 400000
	scoreGoodCaptureBase  = 300000
	scoreKiller0          = 200001
	scoreKiller1          = 200000
	scoreCounterMove      = 100000
	scoreUnderPromoBishop = -100000
	scoreUnderPromoRook   = -100001
	scoreBadCaptureBase   = -200000

	seeGoodCaptureThreshold = -50
)

// mvvPieceValue gives the MVV/LVA weight per piece type (P..Q; king victims
// never occur and king attackers fall through to the plain capture base).
var mvvPieceValue = [6]int{100, 320, 330, 500, 900, 0}

// scoreMoves assigns every move in the list an ordering score using the
// priority table of §4.3. h supplies the shared history/counter-move state;
// ss is the current ply's stack frame (for killers). No previous-move
// context is passed, so counter-move and continuation-history terms see
// NoPiece; scoreMovesAt supplies that context from the stack.
func scoreMoves(pos *board.Position, moves *board.MoveList, ttMove board.Move, ss *searchStackFrame, h *History) []int {
	scores := make([]int, moves.Len())

	var prevPiece, prev2Piece board.Piece = board.NoPiece, board.NoPiece
	var prevTo, prev2To board.Square

	for i := 0; i < moves.Len(); i++ {
		scores[i] = scoreMove(pos, moves.Get(i), ttMove, ss, h, prevPiece, prevTo, prev2Piece, prev2To)
	}
	return scores
}

// scoreMovesAt is scoreMoves plus the continuation-history and
// counter-move context derived from the two preceding stack frames.
func scoreMovesAt(pos *board.Position, moves *board.MoveList, ttMove board.Move, ss *searchStackFrame, stack *searchStack, ply int, h *History) []int {
	scores := make([]int, moves.Len())
	ss1, ss2 := stack.at(ply-1), stack.at(ply-2)

	for i := 0; i < moves.Len(); i++ {
		scores[i] = scoreMove(pos, moves.Get(i), ttMove, ss, h, ss1.playedPiece, ss1.playedMove.To(), ss2.playedPiece, ss2.playedMove.To())
	}
	return scores
}

func scoreMove(pos *board.Position, m board.Move, ttMove board.Move, ss *searchStackFrame, h *History, prevPiece board.Piece, prevTo board.Square, prev2Piece board.Piece, prev2To board.Square) int {
	if m == ttMove {
		return scoreTTMove
	}

	if m.IsPromotion() {
		switch m.Promotion() {
		case board.Queen:
			return scoreGoodQueenPromo
		case board.Knight:
			return scoreGoodKnightPromo
		case board.Bishop:
			return scoreUnderPromoBishop
		default: // Rook
			return scoreUnderPromoRook
		}
	}

	if m.IsEnPassant() {
		mvv := mvvPieceValue[board.Pawn]
		lva := mvvPieceValue[board.Pawn]
		return scoreGoodCaptureBase + mvv*100 - lva
	}

	if m.IsCapture(pos) {
		attacker := pos.PieceAt(m.From())
		victim := pos.PieceAt(m.To())
		if attacker == board.NoPiece || victim == board.NoPiece {
			return scoreGoodCaptureBase
		}
		mvv := mvvPieceValue[victim.Type()]
		lva := mvvPieceValue[attacker.Type()]
		if pos.SEEGE(m, seeGoodCaptureThreshold) {
			return scoreGoodCaptureBase + mvv*100 - lva
		}
		return scoreBadCaptureBase + mvv*100 - lva
	}

	if m == ss.killers[0] {
		return scoreKiller0
	}
	if m == ss.killers[1] {
		return scoreKiller1
	}

	if m == h.CounterMove(prevPiece, prevTo) {
		return scoreCounterMove
	}

	piece := pos.PieceAt(m.From())
	return h.QuietOrderingScore(pos.SideToMove, m, piece, prevPiece, prevTo, prev2Piece, prev2To)
}

// nextBestMove performs one selection-sort step: it scans [i, size) for the
// highest score, swaps that move (and its score) into position i, and
// returns it (§4.3). This keeps ordering lazy so a cutoff early in the list
// never pays for sorting the rest.
func nextBestMove(moves *board.MoveList, scores []int, i int) (board.Move, int) {
	best := i
	for j := i + 1; j < moves.Len(); j++ {
		if scores[j] > scores[best] {
			best = j
		}
	}
	if best != i {
		moves.Swap(i, best)
		scores[i], scores[best] = scores[best], scores[i]
	}
	return moves.Get(i), scores[i]
}
