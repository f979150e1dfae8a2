package engine

import (
	"sync/atomic"

	"chesscore/internal/board"
)

// Bound indicates which side of the true minimax value a stored Value
// represents.
type Bound uint8

const (
	BoundNone Bound = iota
	BoundLower
	BoundUpper
	BoundExact
)

// ttEntry is one slot of a cluster: key32 plus move/value/depth/bound/pv
// packed into 16 bytes so three of them fit a cache-friendly cluster.
type ttEntry struct {
	key32      uint32
	move       board.Move
	value      int16
	staticEval int16
	depth      int8
	bound      Bound
	pv         bool
	generation uint8
}

const entriesPerCluster = 3

type ttCluster struct {
	entries [entriesPerCluster]ttEntry
}

// TranspositionTable is a fixed-capacity, always-overwrite hash table
// indexed by the high bits of the Zobrist key modulo the cluster count
// (§4.1). It never allocates after construction and never fails.
type TranspositionTable struct {
	clusters   []ttCluster
	generation atomic.Uint32
}

// NewTranspositionTable builds a table sized to
// floor(MiB*2^20/sizeof(cluster)) clusters.
func NewTranspositionTable(sizeMB int) *TranspositionTable {
	if sizeMB < 1 {
		sizeMB = 1
	}
	clusterBytes := uint64(entriesPerCluster) * 16
	numClusters := (uint64(sizeMB) * 1024 * 1024) / clusterBytes
	if numClusters < 1 {
		numClusters = 1
	}
	return &TranspositionTable{clusters: make([]ttCluster, numClusters)}
}

// clusterIndex maps a 64-bit key onto a cluster using the high-bit
// multiply-shift trick, so the cluster count need not be a power of two.
func (tt *TranspositionTable) clusterIndex(key uint64) uint64 {
	hi, _ := bitsMul64(key, uint64(len(tt.clusters)))
	return hi
}

// bitsMul64 returns the high and low 64 bits of a*b.
func bitsMul64(a, b uint64) (hi, lo uint64) {
	const mask32 = 0xFFFFFFFF
	aLo, aHi := a&mask32, a>>32
	bLo, bHi := b&mask32, b>>32

	t := aLo * bLo
	w0 := t & mask32
	k := t >> 32

	t = aHi*bLo + k
	w1 := t & mask32
	w2 := t >> 32

	t = aLo*bHi + w1
	k = t >> 32

	hi = aHi*bHi + w2 + k
	lo = (t << 32) + w0
	return hi, lo
}

func key32(key uint64) uint32 {
	return uint32(key >> 32)
}

// TTData is the value half of a probe result: the caller must not trust any
// field of it unless Probe reports hit=true.
type TTData struct {
	Move       board.Move
	Value      int
	StaticEval int
	Depth      int
	Bound      Bound
	PV         bool
}

// Probe looks up key, returning the cached data and whether key32 matched
// an occupied slot in the cluster.
func (tt *TranspositionTable) Probe(key uint64) (TTData, bool) {
	cluster := &tt.clusters[tt.clusterIndex(key)]
	want := key32(key)

	for i := range cluster.entries {
		e := &cluster.entries[i]
		if e.bound != BoundNone && e.key32 == want {
			return TTData{
				Move:       e.move,
				Value:      int(e.value),
				StaticEval: int(e.staticEval),
				Depth:      int(e.depth),
				Bound:      e.bound,
				PV:         e.pv,
			}, true
		}
	}
	return TTData{}, false
}

// Store writes (key, bound, depth, move, value, staticEval, pv), replacing
// whichever existing slot in the cluster has the lowest priority: a match
// on key32, else the oldest generation, then lowest depth. The existing
// move is kept when the caller passes board.NoMove and the slot already
// holds this key, preserving ordering information on upper-bound-only
// updates (§4.1).
func (tt *TranspositionTable) Store(key uint64, bound Bound, depth int, move board.Move, value, staticEval int, pv bool) {
	cluster := &tt.clusters[tt.clusterIndex(key)]
	want := key32(key)
	gen := uint8(tt.generation.Load())

	replace := &cluster.entries[0]
	for i := range cluster.entries {
		e := &cluster.entries[i]
		if e.bound == BoundNone || e.key32 == want {
			replace = e
			break
		}
		if worseSlot(e, replace, gen) {
			replace = e
		}
	}

	if move == board.NoMove && replace.key32 == want && replace.bound != BoundNone {
		move = replace.move
	}

	replace.key32 = want
	replace.move = move
	replace.value = int16(value)
	replace.staticEval = int16(staticEval)
	replace.depth = int8(depth)
	replace.bound = bound
	replace.pv = pv
	replace.generation = gen
}

// worseSlot reports whether candidate is a lower-priority replacement
// target than current: oldest generation first, then lowest depth.
func worseSlot(candidate, current *ttEntry, gen uint8) bool {
	candidateAge := gen - candidate.generation
	currentAge := gen - current.generation
	if candidateAge != currentAge {
		return candidateAge > currentAge
	}
	return candidate.depth < current.depth
}

// NewSearch advances the generation counter so stale entries from a prior
// search become preferred replacement targets.
func (tt *TranspositionTable) NewSearch() {
	tt.generation.Add(1)
}

// Clear zeroes every entry and resets the generation counter. Called on
// ucinewgame.
func (tt *TranspositionTable) Clear() {
	for i := range tt.clusters {
		tt.clusters[i] = ttCluster{}
	}
	tt.generation.Store(0)
}

// HashFull samples the first 1000 slots and returns the permille in use by
// the current generation, matching the UCI `info hashfull` convention.
func (tt *TranspositionTable) HashFull() int {
	sample := 1000
	total := len(tt.clusters) * entriesPerCluster
	if sample > total {
		sample = total
	}
	gen := uint8(tt.generation.Load())
	used := 0
	checked := 0
	for i := 0; i < len(tt.clusters) && checked < sample; i++ {
		for j := range tt.clusters[i].entries {
			checked++
			e := &tt.clusters[i].entries[j]
			if e.bound != BoundNone && e.generation == gen {
				used++
			}
			if checked >= sample {
				break
			}
		}
	}
	if checked == 0 {
		return 0
	}
	return used * 1000 / checked
}

// AdjustScoreFromTT reverses the ply-relative mate-score offset applied by
// AdjustScoreToTT, converting a stored value back to "mate in N from the
// root" (§4.1).
func AdjustScoreFromTT(value int, ply int) int {
	if value == ValueNone {
		return value
	}
	if value >= ValueMateInMaxPly {
		return value - ply
	}
	if value <= -ValueMateInMaxPly {
		return value + ply
	}
	return value
}

// AdjustScoreToTT offsets a mate score by the current ply before storage,
// so the entry records "mate in N from this position" regardless of how
// deep in the tree it was found (§4.1, mandatory per the design notes).
func AdjustScoreToTT(value int, ply int) int {
	if value == ValueNone {
		return value
	}
	if value >= ValueMateInMaxPly {
		return value + ply
	}
	if value <= -ValueMateInMaxPly {
		return value - ply
	}
	return value
}
