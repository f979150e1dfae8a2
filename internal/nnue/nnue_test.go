package nnue

import (
	"os"
	"path/filepath"
	"testing"

	"chesscore/internal/board"
)

func TestLoadMissingFileReturnsLoadError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.nnue"))
	if err == nil {
		t.Fatal("expected an error for a missing file")
	}
	var le *LoadError
	if !asLoadError(err, &le) {
		t.Fatalf("expected *LoadError, got %T: %v", err, err)
	}
}

func TestLoadTruncatedFileReturnsLoadError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "truncated.nnue")
	if err := os.WriteFile(path, make([]byte, 16), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := Load(path)
	if err == nil {
		t.Fatal("expected an error for a truncated file")
	}
	var le *LoadError
	if !asLoadError(err, &le) {
		t.Fatalf("expected *LoadError, got %T: %v", err, err)
	}
}

func asLoadError(err error, target **LoadError) bool {
	le, ok := err.(*LoadError)
	if ok {
		*target = le
	}
	return ok
}

func TestRefreshIsDeterministic(t *testing.T) {
	w := NewRandomWeights(7)
	pos := board.NewPosition()

	e1 := NewEvaluator(w)
	e1.Refresh(pos)
	v1 := e1.Evaluate(board.White)

	e2 := NewEvaluator(w)
	e2.Refresh(pos)
	v2 := e2.Evaluate(board.White)

	if v1 != v2 {
		t.Fatalf("expected deterministic evaluation, got %d and %d", v1, v2)
	}
}

func TestEvaluateBothPerspectivesNonTrivialAndInClampRange(t *testing.T) {
	w := NewRandomWeights(3)
	pos := board.NewPosition()
	e := NewEvaluator(w)
	e.Refresh(pos)

	white := e.Evaluate(board.White)
	black := e.Evaluate(board.Black)
	// Startpos is not perfectly symmetric under color swap in general NNUE
	// feature encodings, so no antisymmetry is asserted: the two
	// perspectives must not both be zero, and both must be within the
	// clamp range.
	if white == 0 && black == 0 {
		t.Fatalf("expected a non-trivial evaluation from random weights")
	}
	if white < ValueTBLossInMaxPly+1 || white > ValueTBWinInMaxPly-1 {
		t.Fatalf("white eval %d out of clamp range", white)
	}
	if black < ValueTBLossInMaxPly+1 || black > ValueTBWinInMaxPly-1 {
		t.Fatalf("black eval %d out of clamp range", black)
	}
}

func TestPushPopRestoresParentAccumulator(t *testing.T) {
	w := NewRandomWeights(11)
	pos := board.NewPosition()
	e := NewEvaluator(w)
	e.Refresh(pos)

	before := *e.Current()

	e.Push()
	e.Current().ActivateFeature(w, board.E4, board.WhiteQueen)
	e.Pop()

	after := *e.Current()
	if before != after {
		t.Fatalf("expected Pop to restore the untouched parent accumulator")
	}
}

func TestResetReturnsToRootFrame(t *testing.T) {
	w := NewRandomWeights(5)
	pos := board.NewPosition()
	e := NewEvaluator(w)
	e.Refresh(pos)
	e.Push()
	e.Push()

	e.Reset()
	// After Reset, Current should be the (now stale, but addressable) root
	// frame rather than panicking on an out-of-range index.
	_ = e.Current()
}

func TestActivateThenDeactivateIsIdentity(t *testing.T) {
	w := NewRandomWeights(9)
	var acc Accumulator
	acc.Reset(w)
	before := acc

	acc.ActivateFeature(w, board.D4, board.BlackKnight)
	acc.DeactivateFeature(w, board.D4, board.BlackKnight)

	if acc != before {
		t.Fatalf("expected activate+deactivate to be the identity transform")
	}
}

func TestMoveFeatureMatchesDeactivateThenActivate(t *testing.T) {
	w := NewRandomWeights(13)
	var a, b Accumulator
	a.Reset(w)
	b.Reset(w)

	a.MoveFeature(w, board.E2, board.E4, board.WhitePawn)

	b.DeactivateFeature(w, board.E2, board.WhitePawn)
	b.ActivateFeature(w, board.E4, board.WhitePawn)

	if a != b {
		t.Fatalf("expected MoveFeature to match deactivate+activate")
	}
}

func TestRefreshFromScratchExcludesKings(t *testing.T) {
	// Every legal position has two kings on the board; RefreshFromScratch
	// must skip them rather than indexing featureIndex's enemy-king row
	// (640..703) past FeatureWeights' declared 640 rows.
	w := NewRandomWeights(17)
	pos := board.NewPosition()
	e := NewEvaluator(w)
	e.Refresh(pos)

	score := e.Evaluate(board.White)
	if score < ValueTBLossInMaxPly+1 || score > ValueTBWinInMaxPly-1 {
		t.Fatalf("evaluate after refresh = %d, want a clamped in-range value", score)
	}
}

func TestActivateFeatureIgnoresKing(t *testing.T) {
	w := NewRandomWeights(19)
	var acc Accumulator
	acc.Reset(w)
	before := acc

	acc.ActivateFeature(w, board.E1, board.WhiteKing)
	if acc != before {
		t.Fatalf("expected ActivateFeature with a king to be a no-op")
	}

	acc.DeactivateFeature(w, board.E1, board.WhiteKing)
	if acc != before {
		t.Fatalf("expected DeactivateFeature with a king to be a no-op")
	}
}

func TestClampInt16Bounds(t *testing.T) {
	if clampInt16(-5) != 0 {
		t.Fatalf("expected negative clamp to 0")
	}
	if clampInt16(300) != 255 {
		t.Fatalf("expected clamp to 255")
	}
	if clampInt16(100) != 100 {
		t.Fatalf("expected mid-range value unchanged")
	}
}
