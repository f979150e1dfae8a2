package engine

import (
	"testing"

	"chesscore/internal/board"
	"chesscore/internal/nnue"
	"chesscore/internal/timeman"
)

func newTestEngine() *Engine {
	return NewEngine(1, nnue.NewEvaluator(nnue.NewRandomWeights(1)))
}

func mustParseFEN(t *testing.T, fen string) *board.Position {
	t.Helper()
	pos, err := board.ParseFEN(fen)
	if err != nil {
		t.Fatalf("ParseFEN(%q): %v", fen, err)
	}
	return pos
}

// newTestWorker builds a Worker sharing eng's tables, ready for a fresh
// search over pos, mirroring what SearchWithLimits sets up internally.
func newTestWorker(eng *Engine, pos *board.Position) *Worker {
	w := NewWorker(pos, eng.tt, eng.hist, eng.eval, &eng.state, func() bool { return false })
	w.ResetForNewSearch(nil)
	w.SetRootMoves(legalRootMoves(pos))
	return w
}

func TestSearchFindsMateInOne(t *testing.T) {
	// White to move, Ra4-a8# boxes the black king in with its own pawns.
	pos := mustParseFEN(t, "7k/6pp/8/8/R7/8/8/K7 w - - 0 1")
	eng := newTestEngine()

	best := eng.SearchWithLimits(pos, timeman.Limits{Depth: 4}, nil, 0)
	if best == board.NoMove {
		t.Fatal("expected a move, got NoMove")
	}
	if best.From() != board.A4 || best.To() != board.A8 {
		t.Fatalf("expected Ra4-a8#, got %s", best)
	}

	undo := pos.MakeMove(best)
	pos.UpdateCheckers()
	if !pos.IsCheckmate() {
		t.Fatal("expected the returned move to deliver checkmate")
	}
	pos.UnmakeMove(best, undo)
}

func TestNegaMaxReturnsDrawAtStalemate(t *testing.T) {
	// Classic king+queen-vs-king corner stalemate, black to move.
	pos := mustParseFEN(t, "k7/8/1QK5/8/8/8/8/8 b - - 0 1")
	pos.UpdateCheckers()
	if !pos.IsStalemate() {
		t.Fatal("test position is not actually stalemate")
	}

	eng := newTestEngine()
	w := newTestWorker(eng, pos)

	score := w.negaMax(nodeRoot, -ValueInfinite, ValueInfinite, 3, false, 0)
	if score != ValueDraw {
		t.Fatalf("negaMax at a stalemate root = %d, want ValueDraw (%d)", score, ValueDraw)
	}
}

func TestIsRepetitionOrFiftyMoveBoundary(t *testing.T) {
	// A white rook keeps the position out of the insufficient-material draw,
	// so only the halfmove clock decides.
	pos := mustParseFEN(t, "4k3/8/8/8/8/8/8/R3K3 w - - 99 80")
	eng := newTestEngine()
	w := newTestWorker(eng, pos)

	if w.isRepetitionOrFiftyMove() {
		t.Fatal("halfmove clock 99 should not yet be a draw")
	}

	pos.HalfMoveClock = 100
	if !w.isRepetitionOrFiftyMove() {
		t.Fatal("halfmove clock 100 should be a forced draw")
	}
}

// Both aspiration-window tests reuse the mate-in-1 position: the resulting
// root score is a forced-mate value derived purely from ply arithmetic
// (ValueMate minus the mating ply), so the assertions hold regardless of
// what the (untrained, randomly seeded) NNUE network would otherwise say
// about the position's material balance.
const mateInOneFEN = "7k/6pp/8/8/R7/8/8/K7 w - - 0 1"

func TestAspirationWindowResearchesOnFailHigh(t *testing.T) {
	// A 0 guess is far below the forced-mate score Ra4-a8# delivers, so the
	// first pass must fail high and widen the window before converging.
	pos := mustParseFEN(t, mateInOneFEN)
	eng := newTestEngine()
	w := newTestWorker(eng, pos)

	prevBest := w.rootMoves[0]
	score, stopped := eng.searchOneDepth(w, 6, prevBest, 0)
	if stopped {
		t.Fatal("search unexpectedly reported stopped")
	}
	if score < ValueMateInMaxPly {
		t.Fatalf("expected the re-search to converge on a mate score, got %d", score)
	}
}

func TestAspirationWindowResearchesOnFailLow(t *testing.T) {
	// A guess pinned just above the maximum achievable mate score puts the
	// true score below alpha, forcing the low side of the window to widen.
	pos := mustParseFEN(t, mateInOneFEN)
	eng := newTestEngine()
	w := newTestWorker(eng, pos)

	prevBest := w.rootMoves[0]
	score, stopped := eng.searchOneDepth(w, 6, prevBest, ValueMate+aspInitialWindow)
	if stopped {
		t.Fatal("search unexpectedly reported stopped")
	}
	if score < ValueMateInMaxPly {
		t.Fatalf("expected the re-search to converge on a mate score, got %d", score)
	}
}

func TestQSearchStandPatEqualsStaticEvalWithNoCaptures(t *testing.T) {
	// Kings plus one white pawn (enough material not to be an automatic
	// draw) with no captures available: qsearch can't improve on the
	// stand-pat static evaluation, so it must return exactly that value,
	// whatever the (untrained, randomly seeded) network assigns it.
	pos := mustParseFEN(t, "4k3/8/8/8/8/8/P7/4K3 w - - 0 1")
	eng := newTestEngine()
	w := newTestWorker(eng, pos)

	want := w.evaluateStatic()
	got := w.qsearch(nodeNonPV, -ValueInfinite, ValueInfinite, 0)
	if got != want {
		t.Fatalf("qsearch stand-pat = %d, want static eval %d", got, want)
	}
}

// TestFallbackBestMoveUsesFirstRootMoveOnCancellation covers §5's
// cancellation guarantee: if cancellation fires before depth 1 completes,
// bestMove is still NoMove when SearchWithLimits returns, and it must emit
// the first move of the pre-scored root list rather than no move at all.
func TestFallbackBestMoveUsesFirstRootMoveOnCancellation(t *testing.T) {
	pos := mustParseFEN(t, board.StartFEN)
	roots := legalRootMoves(pos)

	got := fallbackBestMove(board.NoMove, roots)
	if got != roots[0] {
		t.Fatalf("fallbackBestMove(NoMove, roots) = %s, want first root move %s", got, roots[0])
	}

	completed := roots[3]
	if got := fallbackBestMove(completed, roots); got != completed {
		t.Fatalf("fallbackBestMove should not override a move a completed iteration found: got %s, want %s", got, completed)
	}
}
