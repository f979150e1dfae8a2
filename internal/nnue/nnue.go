// Package nnue implements the incrementally-updatable neural network
// position evaluator: a single-hidden-layer, piece-square feature
// network quantized to int16 weights.
package nnue

import "chesscore/internal/board"

// Network dimensions. FeatureDimensions covers the 5 non-king piece types
// of both colors across all 64 squares, from one perspective.
const (
	FeatureDimensions            = 640 // 2 colors * 5 piece types * 64 squares
	TransformedFeatureDimensions = 512 // hidden layer width, per perspective
)

// OutputDivisor scales the raw int32 accumulation down to centipawns.
const OutputDivisor = 40

// featureIndex returns the column of FeatureWeights activated by placing
// piece pc (color+type) on sq, as seen from perspective. pc must not be a
// king: FeatureDimensions covers the 5 non-king piece types only, and a
// king's pt (5, zero-indexed) would index past FeatureWeights' 640 rows.
// Callers activating/deactivating a board's pieces go through
// Accumulator.ActivateFeature/DeactivateFeature, which filter kings out
// before reaching here.
//
// pt is board's zero-based PieceType (Pawn=0 .. Queen=4). The perspective
// side's own pieces occupy rows 0..319 (64*pt + sq) and the other side's
// pieces rows 320..639 (64*(pt+5) + sq); from Black's perspective squares
// are rank-flipped.
func featureIndex(perspective board.Color, pc board.Piece, sq board.Square) int {
	pt := int(pc.Type())
	color := pc.Color()

	if perspective == board.White {
		if color == board.White {
			return 64*pt + int(sq)
		}
		return 64*(pt+5) + int(sq)
	}

	// Black perspective: own/enemy roles swap, squares are rank-flipped.
	flipped := int(sq.Mirror())
	if color == board.White {
		return 64*(pt+5) + flipped
	}
	return 64*pt + flipped
}

// clampInt16 implements crelu: clamp(v, 0, 255) into an int16.
func clampInt16(v int16) int16 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}

// Value clamping bounds, named after the spec's Value sentinels (§3, §7).
const (
	ValueTBLossInMaxPly = -31000
	ValueTBWinInMaxPly  = 31000
)

// Evaluator owns the loaded weights and the position-stack-aligned
// accumulator stack. It is the concrete realization of §4.2's "NNUE
// Evaluator" component.
type Evaluator struct {
	weights *Weights
	stack   *AccumulatorStack
}

// NewEvaluator wraps already-loaded weights. Use Load to read weights from
// a file, or NewRandomWeights for tests.
func NewEvaluator(w *Weights) *Evaluator {
	return &Evaluator{weights: w, stack: NewAccumulatorStack()}
}

// Weights exposes the evaluator's loaded network, read-only after Load
// (§5: "Weights are an immutable companion value that can be shared").
func (e *Evaluator) Weights() *Weights { return e.weights }

// Reset clears the accumulator stack for a new search.
func (e *Evaluator) Reset() { e.stack.Reset() }

// Refresh recomputes the current frame's accumulator from scratch.
func (e *Evaluator) Refresh(pos *board.Position) {
	e.stack.Current().RefreshFromScratch(e.weights, pos)
}

// Push descends one ply, copying the parent accumulator into the child
// frame (§3, §5). Call before mutating the position for a move.
func (e *Evaluator) Push() { e.stack.Push() }

// Pop returns to the parent frame. No inverse computation happens: the
// parent accumulator was never touched.
func (e *Evaluator) Pop() { e.stack.Pop() }

// Current returns the live accumulator.
func (e *Evaluator) Current() *Accumulator { return e.stack.Current() }

// Evaluate runs the output pipeline for the current accumulator and
// clamps the result into Value's legal range (§7).
func (e *Evaluator) Evaluate(stm board.Color) int {
	v := int(Evaluate(e.weights, e.stack.Current(), stm))
	if v < ValueTBLossInMaxPly+1 {
		v = ValueTBLossInMaxPly + 1
	}
	if v > ValueTBWinInMaxPly-1 {
		v = ValueTBWinInMaxPly - 1
	}
	return v
}
