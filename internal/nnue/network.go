package nnue

import "chesscore/internal/board"

// Evaluate runs the output pipeline (§4.2 step 1-4) for the given
// accumulator and side to move, returning a raw centipawn-ish score
// before Value clamping (applied by the caller, per §7).
func Evaluate(w *Weights, acc *Accumulator, stm board.Color) int32 {
	var stmVec, oppVec *[TransformedFeatureDimensions]int16
	if stm == board.White {
		stmVec, oppVec = &acc.White, &acc.Black
	} else {
		stmVec, oppVec = &acc.Black, &acc.White
	}

	var sum int32 = int32(w.OutputBias)
	sum += dotCReLU(stmVec[:], w.OutputWeights[:TransformedFeatureDimensions])
	sum += dotCReLU(oppVec[:], w.OutputWeights[TransformedFeatureDimensions:])

	return sum / OutputDivisor
}

// dotCReLU computes sum(crelu(v[i]) * weights[i]) as a plain sequential
// int32 sum. It has no SIMD variant (the SIMD build only replaces the
// accumulator add/subtract kernels), so every build evaluates identically
// (§4.2, §8).
func dotCReLU(v []int16, weights []int16) int32 {
	var sum int32
	for i := range v {
		sum += int32(clampInt16(v[i])) * int32(weights[i])
	}
	return sum
}
