package engine

import "chesscore/internal/board"

// historyMax bounds every history-style counter to ±historyMax (§3, "History
// counters... bounded range (±16384)").
const historyMax = 16384

// historyBonus implements bonus = min(2*d^2 + 64*d, 1200); doublePly widens
// it to bonus(d+1) when the caller observed bestValue > beta+110 (§4.4).
func historyBonus(depth int, doublePly bool) int {
	d := depth
	if doublePly {
		d++
	}
	b := 2*d*d + 64*d
	if b > 1200 {
		b = 1200
	}
	return b
}

// applySaturating applies the update law h <- h + bonus - h*|bonus|/MAX,
// which saturates toward +-historyMax without ever overflowing.
func applySaturating(h *int32, bonus int) {
	v := int(*h)
	v += bonus - v*abs(bonus)/historyMax
	*h = int32(clampInt(v, -historyMax, historyMax))
}

// butterflyHistory indexes by [side-to-move][from][to].
type butterflyHistory [2][64][64]int32

// continuationTable indexes by [piece-that-moved-to-reach-the-frame][that
// move's destination][piece-making-the-current-move][current move's
// destination]. Entry returns the 2-D slice for a specific previous
// (piece, to), matching the "arena plus integer index" ownership model for
// continuation history described in the design notes rather than a
// back-pointer per search-stack frame.
type continuationTable [12][64][12][64]int32

func (ct *continuationTable) Entry(prevPiece board.Piece, prevTo board.Square) *[12][64]int32 {
	if prevPiece == board.NoPiece {
		return nil
	}
	return &ct[prevPiece][prevTo]
}

// counterMoveTable indexes by [piece placed on the previous move's
// destination][that destination], per §4.4.
type counterMoveTable [12][64]board.Move

// History bundles the butterfly, continuation and counter-move tables that
// survive across the whole search (§2 "History Tables").
type History struct {
	butterfly butterflyHistory
	contHist  continuationTable
	counter   counterMoveTable
}

// NewHistory returns a zeroed History ready for a fresh game.
func NewHistory() *History { return &History{} }

// Clear zeroes every table. Called on ucinewgame.
func (h *History) Clear() {
	h.butterfly = butterflyHistory{}
	h.contHist = continuationTable{}
	h.counter = counterMoveTable{}
}

// ButterflyScore returns the quiet-move ordering contribution from the main
// history table alone (used by move ordering and pruning decisions that
// only look at the butterfly table).
func (h *History) ButterflyScore(stm board.Color, m board.Move) int {
	return int(h.butterfly[stm][m.From()][m.To()])
}

// ContinuationScore looks up the bonus contributed by a single
// continuation-history offset, or 0 if that offset's frame had no played
// move (prevPiece == board.NoPiece).
func (h *History) ContinuationScore(prevPiece board.Piece, prevTo board.Square, piece board.Piece, to board.Square) int {
	e := h.contHist.Entry(prevPiece, prevTo)
	if e == nil {
		return 0
	}
	return int(e[piece][to])
}

// CounterMove returns the stored reply to the move that placed prevPiece on
// prevTo, or board.NoMove if none is recorded.
func (h *History) CounterMove(prevPiece board.Piece, prevTo board.Square) board.Move {
	if prevPiece == board.NoPiece {
		return board.NoMove
	}
	return h.counter[prevPiece][prevTo]
}

// SetCounterMove records reply as the countermove to the move that placed
// prevPiece on prevTo.
func (h *History) SetCounterMove(prevPiece board.Piece, prevTo board.Square, reply board.Move) {
	if prevPiece == board.NoPiece {
		return
	}
	h.counter[prevPiece][prevTo] = reply
}

// quietTried records one quiet move considered at a node, for the fail-high
// penalty pass (§4.4, "bounded to 64 tracked").
type quietTried struct {
	move  board.Move
	piece board.Piece
}

const maxTrackedQuiets = 64

// UpdateOnFailHigh applies the §4.4 history update following a fail-high
// with a quiet best move: +bonus to best's butterfly/continuation entries,
// -bonus to every other quiet move tried at this node (bounded to the first
// maxTrackedQuiets), and slides bestMove into the counter-move table.
//
// cont1/cont2 are the continuation sub-tables keyed by the moves played at
// ss-1 and ss-2 respectively (nil if that frame played no move).
func (h *History) UpdateOnFailHigh(stm board.Color, best board.Move, bestPiece board.Piece, others []quietTried, depth, bestValue, beta int, cont1, cont2 *[12][64]int32, prevPiece board.Piece, prevTo board.Square) {
	bonus := historyBonus(depth, bestValue > beta+110)

	h.bump(stm, best, bestPiece, bonus, cont1, cont2)
	for _, q := range others {
		if q.move == best {
			continue
		}
		h.bump(stm, q.move, q.piece, -bonus, cont1, cont2)
	}

	h.SetCounterMove(prevPiece, prevTo, best)
}

func (h *History) bump(stm board.Color, m board.Move, piece board.Piece, bonus int, cont1, cont2 *[12][64]int32) {
	applySaturating(&h.butterfly[stm][m.From()][m.To()], bonus)
	if cont1 != nil {
		applySaturating(&cont1[piece][m.To()], bonus)
	}
	if cont2 != nil {
		applySaturating(&cont2[piece][m.To()], bonus)
	}
}

// QuietOrderingScore is the combined quiet-move ordering score used by
// scoreMoves: main history plus the two continuation-history offsets
// (§4.3).
func (h *History) QuietOrderingScore(stm board.Color, m board.Move, piece board.Piece, prevPiece board.Piece, prevTo board.Square, prev2Piece board.Piece, prev2To board.Square) int {
	score := h.ButterflyScore(stm, m)
	score += h.ContinuationScore(prevPiece, prevTo, piece, m.To())
	score += h.ContinuationScore(prev2Piece, prev2To, piece, m.To())
	return score
}
