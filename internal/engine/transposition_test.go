package engine

import (
	"testing"

	"chesscore/internal/board"
)

func TestTranspositionStoreProbeRoundTrip(t *testing.T) {
	tt := NewTranspositionTable(1)

	key := uint64(0x0123456789ABCDEF)
	move := board.NewMove(board.E2, board.E4)

	tt.Store(key, BoundExact, 6, move, 123, -45, true)

	data, hit := tt.Probe(key)
	if !hit {
		t.Fatalf("expected hit after store")
	}
	if data.Move != move || data.Value != 123 || data.StaticEval != -45 || data.Depth != 6 || data.Bound != BoundExact || !data.PV {
		t.Fatalf("round-trip mismatch: %+v", data)
	}
}

func TestTranspositionProbeMiss(t *testing.T) {
	tt := NewTranspositionTable(1)
	if _, hit := tt.Probe(0xDEADBEEF); hit {
		t.Fatalf("expected miss on empty table")
	}
}

func TestTranspositionReplacementPrefersOldestGeneration(t *testing.T) {
	tt := NewTranspositionTable(1)

	// Find four keys landing in the same cluster by brute-force scanning a
	// small range of synthetic keys, since clusterIndex is a multiply-shift
	// over the whole 64-bit space. Each candidate is k<<32 so the keys also
	// differ in their upper 32 bits, which is what an entry verifies.
	var keys []uint64
	idx := tt.clusterIndex(1 << 32)
	for k := uint64(1); len(keys) < entriesPerCluster+1 && k < 1_000_000; k++ {
		if key := k << 32; tt.clusterIndex(key) == idx {
			keys = append(keys, key)
		}
	}
	if len(keys) <= entriesPerCluster {
		t.Skip("could not find enough colliding keys in range")
	}

	for i := 0; i < entriesPerCluster; i++ {
		tt.Store(keys[i], BoundExact, 1, board.NoMove, 0, 0, false)
	}
	tt.NewSearch() // age the whole cluster by one generation

	// Overwrite only the first two with the fresh generation, deepened.
	tt.Store(keys[0], BoundExact, 10, board.NoMove, 0, 0, false)
	tt.Store(keys[1], BoundExact, 10, board.NoMove, 0, 0, false)

	// The 4th colliding key must evict keys[2], the sole entry still on the
	// old generation.
	tt.Store(keys[3], BoundExact, 1, board.NoMove, 0, 0, false)

	if _, hit := tt.Probe(keys[2]); hit {
		t.Fatalf("expected keys[2] (oldest generation) to be evicted")
	}
	if _, hit := tt.Probe(keys[0]); !hit {
		t.Fatalf("expected keys[0] (fresh generation) to survive")
	}
}

func TestTranspositionStorePreservesMoveOnNoMoveUpdate(t *testing.T) {
	tt := NewTranspositionTable(1)
	key := uint64(42)
	move := board.NewMove(board.G1, board.F3)

	tt.Store(key, BoundExact, 5, move, 10, 10, false)
	tt.Store(key, BoundUpper, 3, board.NoMove, -5, -5, false)

	data, hit := tt.Probe(key)
	if !hit {
		t.Fatalf("expected hit")
	}
	if data.Move != move {
		t.Fatalf("expected existing move %v to be preserved, got %v", move, data.Move)
	}
	if data.Bound != BoundUpper || data.Depth != 3 {
		t.Fatalf("expected new bound/depth to apply, got %+v", data)
	}
}

func TestTranspositionClear(t *testing.T) {
	tt := NewTranspositionTable(1)
	tt.Store(7, BoundExact, 4, board.NoMove, 1, 1, false)
	tt.Clear()
	if _, hit := tt.Probe(7); hit {
		t.Fatalf("expected Clear to remove all entries")
	}
	if tt.HashFull() != 0 {
		t.Fatalf("expected HashFull 0 after Clear, got %d", tt.HashFull())
	}
}

func TestAdjustScoreToAndFromTT(t *testing.T) {
	cases := []struct {
		value, ply int
	}{
		{ValueMate - 3, 5},
		{-(ValueMate - 3), 5},
		{150, 10},
		{ValueNone, 10},
	}
	for _, c := range cases {
		stored := AdjustScoreToTT(c.value, c.ply)
		back := AdjustScoreFromTT(stored, c.ply)
		if back != c.value {
			t.Errorf("value=%d ply=%d: round trip gave %d (via stored=%d)", c.value, c.ply, back, stored)
		}
	}
}

func TestAdjustScoreToTTMakesMateRelativeToStoragePosition(t *testing.T) {
	// A root-relative mate score seen at ply 3 must be stored 3 points
	// closer to ValueMate, i.e. as the shorter mate distance counted from
	// the position being stored, so that later probes at different ply
	// re-derive the correct mate distance from the root of that search.
	mateAtRoot := ValueMate - 2
	stored := AdjustScoreToTT(mateAtRoot, 3)
	if stored != mateAtRoot+3 {
		t.Fatalf("expected stored=%d, got %d", mateAtRoot+3, stored)
	}
}
