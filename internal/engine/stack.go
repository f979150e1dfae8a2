package engine

import "chesscore/internal/board"

// searchStackFrame holds the per-ply state that negaMax threads through
// recursion: static eval, the move played to reach this frame, killers, PV,
// an excluded move for singular search, and the piece/destination of the
// played move (used as the row key into the continuation-history table by
// frames one and two plies deeper).
type searchStackFrame struct {
	staticEval   int
	playedMove   board.Move
	playedPiece  board.Piece
	killers      [2]board.Move
	pv           [MaxPly]board.Move
	pvLength     int
	excludedMove board.Move
	nullMove     bool // true if the move that reached this frame was a null move
}

// searchStack is a fixed array indexed by ply, with four sentinel frames
// before index 0 (accessed as ply-1 .. ply-4) holding neutral values so the
// "improving" heuristic and continuation-history lookups never need bounds
// checks at shallow ply (§3).
type searchStack struct {
	frames [MaxPly + 4]searchStackFrame
}

// at returns the frame for ply, where ply may range from -4 to MaxPly-1;
// negative ply reads one of the sentinel frames.
func (s *searchStack) at(ply int) *searchStackFrame {
	return &s.frames[ply+4]
}

// reset clears every frame and seeds the sentinels with neutral values:
// staticEval = NONE and no played move, matching the spec's description of
// ss-1..ss-4.
func (s *searchStack) reset() {
	for i := range s.frames {
		s.frames[i] = searchStackFrame{
			staticEval:  ValueNone,
			playedMove:  board.NoMove,
			playedPiece: board.NoPiece,
		}
	}
}

// improving derives the "improving" flag for the frame at ply: the current
// static eval is compared against ply-2's, falling back to ply-4 if ply-2
// was in check (sentinel staticEval == NONE means "was in check or
// unavailable" from the caller's perspective) (§4.5).
func (s *searchStack) improving(ply, staticEval int) bool {
	ss2 := s.at(ply - 2)
	if ss2.staticEval != ValueNone {
		return staticEval > ss2.staticEval
	}
	ss4 := s.at(ply - 4)
	if ss4.staticEval != ValueNone {
		return staticEval > ss4.staticEval
	}
	return true
}

// updatePV copies the child frame's PV into the parent frame after
// recording move at index ply, per the textbook PV-propagation idiom.
func (s *searchStackFrame) updatePV(ply int, move board.Move, child *searchStackFrame) {
	s.pv[ply] = move
	for j := ply + 1; j < child.pvLength; j++ {
		s.pv[j] = child.pv[j]
	}
	s.pvLength = child.pvLength
}

// clearKillers resets the killer slots, called on ss+1 at the start of
// every negaMax node so stale killers from the previous search at that ply
// don't leak across iterative-deepening passes.
func (f *searchStackFrame) clearKillers() {
	f.killers[0] = board.NoMove
	f.killers[1] = board.NoMove
}

// updateKillers slides bestMove into killer[0], moving the previous
// killer[0] into killer[1], unless bestMove is already killer[0] (§4.4).
func (f *searchStackFrame) updateKillers(bestMove board.Move) {
	if f.killers[0] == bestMove {
		return
	}
	f.killers[1] = f.killers[0]
	f.killers[0] = bestMove
}
