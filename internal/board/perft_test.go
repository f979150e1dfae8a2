package board

import "testing"

// countLeafNodes recursively plays every legal move to depth and counts
// the leaves reached — perft, chess engines' standard move-generation
// correctness check, since known-correct leaf counts exist for many
// positions.
func countLeafNodes(p *Position, depth int) int64 {
	if depth == 0 {
		return 1
	}

	moves := p.GenerateLegalMoves()
	if depth == 1 {
		return int64(moves.Len())
	}

	var nodes int64
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		undo := p.MakeMove(m)
		nodes += countLeafNodes(p, depth-1)
		p.UnmakeMove(m, undo)
	}
	return nodes
}

func runPerftCases(t *testing.T, pos *Position, cases []struct {
	depth    int
	expected int64
}) {
	for _, tc := range cases {
		tc := tc
		t.Run("", func(t *testing.T) {
			got := countLeafNodes(pos, tc.depth)
			if got != tc.expected {
				t.Errorf("perft(%d) = %d, want %d", tc.depth, got, tc.expected)
			}
		})
	}
}

func TestPerftStartingPosition(t *testing.T) {
	pos := NewPosition()
	runPerftCases(t, pos, []struct {
		depth    int
		expected int64
	}{
		{1, 20},
		{2, 400},
		{3, 8902},
		{4, 197281},
	})
}

// TestPerftKiwipete exercises Kiwipete, the position chess-engine authors
// use to shake out castling, promotion, and check-evasion interactions
// that quieter positions don't reach.
func TestPerftKiwipete(t *testing.T) {
	pos, err := ParseFEN("r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq -")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}

	runPerftCases(t, pos, []struct {
		depth    int
		expected int64
	}{
		{1, 48},
		{2, 2039},
		{3, 97862},
		{4, 4085603},
	})
}

func TestPerftEnPassantEdgeCases(t *testing.T) {
	pos, err := ParseFEN("8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - -")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}

	runPerftCases(t, pos, []struct {
		depth    int
		expected int64
	}{
		{1, 14},
		{2, 191},
		{3, 2812},
		{4, 43238},
	})
}

// TestPerftEnPassantHorizontalPin targets one specific legality wrinkle:
// capturing en passant removes two pawns from the same rank, which can
// expose the king to a rook/queen along that rank even though neither
// pawn is individually pinned.
func TestPerftEnPassantHorizontalPin(t *testing.T) {
	pos, err := ParseFEN("8/8/8/8/k2Pp2R/8/8/4K3 b - d3 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}

	moves := pos.GenerateLegalMoves()
	for i := 0; i < moves.Len(); i++ {
		if m := moves.Get(i); m.IsEnPassant() {
			t.Errorf("en passant move %v should be illegal (horizontal pin through the captured pawns)", m)
		}
	}

	runPerftCases(t, pos, []struct {
		depth    int
		expected int64
	}{
		{1, 6},
		{2, 94},
	})
}
