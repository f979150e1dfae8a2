package nnue

import "chesscore/internal/board"

// Accumulator is the pre-activation hidden layer, maintained incrementally.
// White and Black hold the two perspective vectors (§3 Accumulator).
type Accumulator struct {
	White [TransformedFeatureDimensions]int16
	Black [TransformedFeatureDimensions]int16
}

// Reset seeds both perspective vectors from FeatureBiases (§4.2).
func (a *Accumulator) Reset(w *Weights) {
	copy(a.White[:], w.FeatureBiases[:])
	copy(a.Black[:], w.FeatureBiases[:])
}

// ActivateFeature adds the weight column for pc@sq to both perspectives.
// The king has no feature of its own (FeatureDimensions covers the 5
// non-king piece types only, per §4.2); a king pc is silently ignored
// rather than indexing past FeatureWeights.
func (a *Accumulator) ActivateFeature(w *Weights, sq board.Square, pc board.Piece) {
	if pc.Type() == board.King {
		return
	}
	wi := featureIndex(board.White, pc, sq)
	bi := featureIndex(board.Black, pc, sq)
	addInt16(a.White[:], w.FeatureWeights[wi][:])
	addInt16(a.Black[:], w.FeatureWeights[bi][:])
}

// DeactivateFeature subtracts the weight column for pc@sq from both
// perspectives. Kings are excluded, as in ActivateFeature.
func (a *Accumulator) DeactivateFeature(w *Weights, sq board.Square, pc board.Piece) {
	if pc.Type() == board.King {
		return
	}
	wi := featureIndex(board.White, pc, sq)
	bi := featureIndex(board.Black, pc, sq)
	subInt16(a.White[:], w.FeatureWeights[wi][:])
	subInt16(a.Black[:], w.FeatureWeights[bi][:])
}

// MoveFeature fuses the add(to)+subtract(from) pair for a piece sliding
// from one square to another without changing type or color.
func (a *Accumulator) MoveFeature(w *Weights, from, to board.Square, pc board.Piece) {
	a.DeactivateFeature(w, from, pc)
	a.ActivateFeature(w, to, pc)
}

// RefreshFromScratch recomputes the accumulator from the full board. The
// search calls it (through Evaluator.Refresh) at search start and after
// every move it plays; no incremental update path is used there.
func (a *Accumulator) RefreshFromScratch(w *Weights, pos *board.Position) {
	a.Reset(w)
	for sq := board.Square(0); sq < 64; sq++ {
		pc := pos.PieceAt(sq)
		if pc == board.NoPiece || pc.Type() == board.King {
			continue
		}
		a.ActivateFeature(w, sq, pc)
	}
}

// maxStackDepth bounds the accumulator stack; it matches the search
// engine's MaxPly plus headroom for check-extension overrun.
const maxStackDepth = 136

// AccumulatorStack is the depth-indexed stack of accumulators, one per
// position-stack frame, with Push/Pop semantics tied to playMove/cancelMove
// (§3, §5).
type AccumulatorStack struct {
	frames [maxStackDepth]Accumulator
	top    int
}

// NewAccumulatorStack creates an empty stack positioned at depth 0.
func NewAccumulatorStack() *AccumulatorStack {
	return &AccumulatorStack{}
}

// Reset returns the stack to its root frame.
func (s *AccumulatorStack) Reset() { s.top = 0 }

// Current returns the accumulator for the live position.
func (s *AccumulatorStack) Current() *Accumulator { return &s.frames[s.top] }

// Push seeds the child frame from the parent frame (copy), ready for the
// caller to apply incremental feature deltas for the move just played.
func (s *AccumulatorStack) Push() {
	s.frames[s.top+1] = s.frames[s.top]
	s.top++
}

// Pop re-enters the parent frame; no inverse computation is performed,
// matching the spec's accumulator lifetime contract.
func (s *AccumulatorStack) Pop() {
	s.top--
}
