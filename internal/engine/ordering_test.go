package engine

import (
	"testing"

	"chesscore/internal/board"
)

func TestScoreMoveTTMoveOutranksEverything(t *testing.T) {
	pos := board.NewPosition()
	moves := pos.GenerateLegalMoves()
	if moves.Len() == 0 {
		t.Fatal("expected legal moves from startpos")
	}
	ttMove := moves.Get(0)
	ss := &searchStackFrame{}
	h := NewHistory()

	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		score := scoreMove(pos, m, ttMove, ss, h, board.NoPiece, board.A1, board.NoPiece, board.A1)
		if m == ttMove {
			if score != scoreTTMove {
				t.Fatalf("expected ttMove score %d, got %d", scoreTTMove, score)
			}
		} else if score >= scoreTTMove {
			t.Fatalf("non-tt move %v scored >= scoreTTMove", m)
		}
	}
}

func TestScoreMoveGoodCaptureOutranksKillerAndQuiet(t *testing.T) {
	// White queen can capture an undefended black rook on d5, with legal
	// quiet moves available too.
	pos, err := board.ParseFEN("4k3/8/8/3r4/8/8/8/3QK3 w - - 0 1")
	if err != nil {
		t.Fatalf("FEN parse: %v", err)
	}
	moves := pos.GenerateLegalMoves()

	var capture, quiet board.Move
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		if m.IsCapture(pos) {
			capture = m
		} else if quiet == board.NoMove {
			quiet = m
		}
	}
	if capture == board.NoMove || quiet == board.NoMove {
		t.Skip("position did not yield both a capture and a quiet move")
	}

	ss := &searchStackFrame{}
	h := NewHistory()

	capScore := scoreMove(pos, capture, board.NoMove, ss, h, board.NoPiece, board.A1, board.NoPiece, board.A1)
	quietScore := scoreMove(pos, quiet, board.NoMove, ss, h, board.NoPiece, board.A1, board.NoPiece, board.A1)

	if capScore <= quietScore {
		t.Fatalf("expected capture (%d) to outscore quiet (%d)", capScore, quietScore)
	}

	ss.killers[0] = quiet
	killerScore := scoreMove(pos, quiet, board.NoMove, ss, h, board.NoPiece, board.A1, board.NoPiece, board.A1)
	if capScore <= killerScore {
		t.Fatalf("expected capture (%d) to outscore killer (%d)", capScore, killerScore)
	}
}

func TestScoreMoveKillerOutranksPlainQuiet(t *testing.T) {
	pos := board.NewPosition()
	moves := pos.GenerateLegalMoves()

	var killer, other board.Move
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		if !m.IsCapture(pos) {
			if killer == board.NoMove {
				killer = m
			} else if other == board.NoMove {
				other = m
				break
			}
		}
	}
	if killer == board.NoMove || other == board.NoMove {
		t.Fatal("expected at least two quiet moves from startpos")
	}

	ss := &searchStackFrame{}
	ss.killers[0] = killer
	h := NewHistory()

	killerScore := scoreMove(pos, killer, board.NoMove, ss, h, board.NoPiece, board.A1, board.NoPiece, board.A1)
	otherScore := scoreMove(pos, other, board.NoMove, ss, h, board.NoPiece, board.A1, board.NoPiece, board.A1)

	if killerScore != scoreKiller0 {
		t.Fatalf("expected killer score %d, got %d", scoreKiller0, killerScore)
	}
	if killerScore <= otherScore {
		t.Fatalf("expected killer (%d) to outrank plain quiet (%d)", killerScore, otherScore)
	}
}

func TestNextBestMoveSortsDescending(t *testing.T) {
	pos := board.NewPosition()
	moves := pos.GenerateLegalMoves()
	ttMove := moves.Get(moves.Len() - 1)
	ss := &searchStackFrame{}
	h := NewHistory()

	scores := scoreMoves(pos, moves, ttMove, ss, h)

	var prevScore = 1 << 31
	for i := 0; i < moves.Len(); i++ {
		_, score := nextBestMove(moves, scores, i)
		if score > prevScore {
			t.Fatalf("nextBestMove produced non-descending order at index %d: %d > %d", i, score, prevScore)
		}
		prevScore = score
	}
	if moves.Get(0) != ttMove {
		t.Fatalf("expected ttMove to be selected first")
	}
}
