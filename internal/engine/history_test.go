package engine

import (
	"testing"

	"chesscore/internal/board"
)

func TestApplySaturatingConvergesWithoutOverflow(t *testing.T) {
	var h int32
	for i := 0; i < 10_000; i++ {
		applySaturating(&h, 1200)
	}
	if h > historyMax || h < -historyMax {
		t.Fatalf("history value escaped bounds: %d", h)
	}
	if h < historyMax-10 {
		t.Fatalf("expected h to saturate near historyMax, got %d", h)
	}
}

func TestApplySaturatingNegativeBonusDrivesDown(t *testing.T) {
	var h int32 = 10000
	applySaturating(&h, -1200)
	if h >= 10000 {
		t.Fatalf("expected negative bonus to decrease h, got %d", h)
	}
}

func TestHistoryBonusCapsAt1200(t *testing.T) {
	if b := historyBonus(100, false); b != 1200 {
		t.Fatalf("expected cap of 1200 at large depth, got %d", b)
	}
	if b := historyBonus(1, false); b != 2+64 {
		t.Fatalf("expected 2*1+64=66 at depth 1, got %d", b)
	}
}

func TestContinuationTableEntryNilForNoPiece(t *testing.T) {
	var ct continuationTable
	if e := ct.Entry(board.NoPiece, board.E4); e != nil {
		t.Fatalf("expected nil entry for NoPiece")
	}
	if e := ct.Entry(board.WhiteKnight, board.F3); e == nil {
		t.Fatalf("expected non-nil entry for a real piece")
	}
}

func TestCounterMoveRoundTrip(t *testing.T) {
	h := NewHistory()
	reply := board.NewMove(board.E7, board.E5)

	if cm := h.CounterMove(board.WhitePawn, board.E4); cm != board.NoMove {
		t.Fatalf("expected no countermove before SetCounterMove, got %v", cm)
	}

	h.SetCounterMove(board.WhitePawn, board.E4, reply)
	if cm := h.CounterMove(board.WhitePawn, board.E4); cm != reply {
		t.Fatalf("expected countermove %v, got %v", reply, cm)
	}
}

func TestUpdateOnFailHighPenalizesOtherQuiets(t *testing.T) {
	h := NewHistory()
	stm := board.White
	best := board.NewMove(board.E2, board.E4)
	other := board.NewMove(board.D2, board.D4)

	others := []quietTried{
		{move: best, piece: board.WhitePawn},
		{move: other, piece: board.WhitePawn},
	}

	h.UpdateOnFailHigh(stm, best, board.WhitePawn, others, 6, 150, 100, nil, nil, board.NoPiece, board.A1)

	bestScore := h.ButterflyScore(stm, best)
	otherScore := h.ButterflyScore(stm, other)

	if bestScore <= 0 {
		t.Fatalf("expected best move's history to increase, got %d", bestScore)
	}
	if otherScore >= 0 {
		t.Fatalf("expected other quiet's history to decrease, got %d", otherScore)
	}
}

func TestUpdateOnFailHighSetsCounterMove(t *testing.T) {
	h := NewHistory()
	best := board.NewMove(board.G1, board.F3)
	h.UpdateOnFailHigh(board.White, best, board.WhiteKnight, nil, 4, 50, 50, nil, nil, board.BlackPawn, board.D5)

	if cm := h.CounterMove(board.BlackPawn, board.D5); cm != best {
		t.Fatalf("expected best move stored as countermove, got %v", cm)
	}
}

func TestClearResetsAllTables(t *testing.T) {
	h := NewHistory()
	m := board.NewMove(board.E2, board.E4)
	h.UpdateOnFailHigh(board.White, m, board.WhitePawn, nil, 6, 100, 50, nil, nil, board.NoPiece, board.A1)
	h.SetCounterMove(board.WhitePawn, board.E4, m)

	h.Clear()

	if h.ButterflyScore(board.White, m) != 0 {
		t.Fatalf("expected butterfly table cleared")
	}
	if h.CounterMove(board.WhitePawn, board.E4) != board.NoMove {
		t.Fatalf("expected counter-move table cleared")
	}
}
