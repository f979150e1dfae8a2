package engine

import (
	"testing"

	"chesscore/internal/board"
)

func TestSearchStackResetSeedsSentinels(t *testing.T) {
	var s searchStack
	s.reset()

	for ply := -4; ply < MaxPly; ply++ {
		f := s.at(ply)
		if f.staticEval != ValueNone {
			t.Fatalf("ply %d: expected staticEval ValueNone, got %d", ply, f.staticEval)
		}
		if f.playedMove != board.NoMove {
			t.Fatalf("ply %d: expected NoMove", ply)
		}
		if f.playedPiece != board.NoPiece {
			t.Fatalf("ply %d: expected NoPiece", ply)
		}
	}
}

func TestImprovingFallsBackToPlyMinus4WhenPlyMinus2InCheck(t *testing.T) {
	var s searchStack
	s.reset()

	s.at(-2).staticEval = ValueNone // "was in check"
	s.at(-4).staticEval = 10

	if !s.improving(0, 20) {
		t.Fatalf("expected improving=true comparing against ply-4's eval of 10")
	}
	if s.improving(0, 5) {
		t.Fatalf("expected improving=false comparing against ply-4's eval of 10")
	}
}

func TestImprovingDefaultsTrueWhenNoHistoryAvailable(t *testing.T) {
	var s searchStack
	s.reset()
	if !s.improving(0, -500) {
		t.Fatalf("expected improving=true when neither ply-2 nor ply-4 has data")
	}
}

func TestUpdateKillersSlidesPreviousIntoSecondSlot(t *testing.T) {
	f := &searchStackFrame{}
	m1 := board.NewMove(board.E2, board.E4)
	m2 := board.NewMove(board.D2, board.D4)

	f.updateKillers(m1)
	if f.killers[0] != m1 {
		t.Fatalf("expected killers[0]=%v, got %v", m1, f.killers[0])
	}

	f.updateKillers(m2)
	if f.killers[0] != m2 || f.killers[1] != m1 {
		t.Fatalf("expected killers [%v %v], got [%v %v]", m2, m1, f.killers[0], f.killers[1])
	}
}

func TestUpdateKillersIgnoresDuplicateOfFirstSlot(t *testing.T) {
	f := &searchStackFrame{}
	m1 := board.NewMove(board.E2, board.E4)
	f.updateKillers(m1)
	f.updateKillers(m1)
	if f.killers[1] != board.NoMove {
		t.Fatalf("expected killers[1] untouched when re-inserting killers[0], got %v", f.killers[1])
	}
}

func TestUpdatePVPropagatesChildLine(t *testing.T) {
	parent := &searchStackFrame{}
	child := &searchStackFrame{pvLength: 3}
	m1 := board.NewMove(board.E2, board.E4)
	m2 := board.NewMove(board.E7, board.E5)
	m3 := board.NewMove(board.G1, board.F3)
	child.pv[1] = m2
	child.pv[2] = m3

	parent.updatePV(0, m1, child)

	if parent.pv[0] != m1 || parent.pv[1] != m2 || parent.pv[2] != m3 {
		t.Fatalf("unexpected PV: %v", parent.pv[:3])
	}
	if parent.pvLength != 3 {
		t.Fatalf("expected pvLength 3, got %d", parent.pvLength)
	}
}
