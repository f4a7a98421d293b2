package search

import (
	"math"
	"sync"
	"sync/atomic"

	"github.com/pbnjay/memory"
	"github.com/rs/zerolog/log"

	"github.com/fgantt/sente/move"
)

const (
	TTExact = 0x01
	TTLower = 0x02
	TTUpper = 0x03
)

const entrySize = 16

const depthMask = (1 << 6) - 1

// 16 bytes (entrySize)
type TableEntry struct {
	fullHash     uint64
	play         move.Move
	score        int16
	flagAndDepth uint8
	age          uint8
}

func (t TableEntry) flag() uint8 {
	return t.flagAndDepth >> 6
}

func (t TableEntry) depth() uint8 {
	return t.flagAndDepth & depthMask
}

func (t TableEntry) valid() bool {
	// a table flag is 1, 2, or 3.
	return t.flag() != 0
}

func (t TableEntry) move() move.Move {
	return t.play
}

// numShards must be a power of two; shard selection slices the hash.
const numShards = 256

// TranspositionTable is a fixed-capacity, hash-indexed cache of search
// results. In single-threaded mode it runs lock-free; with LazySMP the
// slots are protected by sharded locks so a reader can never observe a
// half-written entry.
type TranspositionTable struct {
	table        []TableEntry
	shards       []sync.RWMutex // nil in single-threaded mode
	created      atomic.Uint64
	lookups      atomic.Uint64
	hits         atomic.Uint64
	sizePowerOf2 int
	sizeMask     uint64
	generation   uint8
	// "type 2" collisions: two live positions mapping to the same slot.
	t2collisions atomic.Uint64
}

func (t *TranspositionTable) SetSingleThreadedMode() {
	t.shards = nil
}

func (t *TranspositionTable) SetMultiThreadedMode() {
	t.shards = make([]sync.RWMutex, numShards)
}

func (t *TranspositionTable) lock(zval uint64) func() {
	if t.shards == nil {
		return func() {}
	}
	sh := &t.shards[zval&(numShards-1)]
	sh.Lock()
	return sh.Unlock
}

func (t *TranspositionTable) rlock(zval uint64) func() {
	if t.shards == nil {
		return func() {}
	}
	sh := &t.shards[zval&(numShards-1)]
	sh.RLock()
	return sh.RUnlock
}

func (t *TranspositionTable) lookup(zval uint64) TableEntry {
	unlock := t.rlock(zval)
	defer unlock()
	t.lookups.Add(1)
	idx := zval & t.sizeMask
	entry := t.table[idx]
	if entry.fullHash != zval {
		if entry.valid() {
			// An unrelated live node occupies this slot.
			t.t2collisions.Add(1)
		}
		return TableEntry{}
	}
	t.hits.Add(1)
	return entry
}

// store writes tentry under the replacement policy: a slot is taken by
// an entry for the same position, by anything when the incumbent is
// from an older search generation, or by an equal-or-deeper result.
// Shallow fresh entries never evict deeper same-generation ones.
func (t *TranspositionTable) store(zval uint64, tentry TableEntry) {
	idx := zval & t.sizeMask
	tentry.fullHash = zval
	tentry.age = t.generation
	unlock := t.lock(zval)
	defer unlock()
	existing := t.table[idx]
	if existing.valid() &&
		existing.fullHash != zval &&
		existing.age == t.generation &&
		existing.depth() > tentry.depth() {
		return
	}
	t.table[idx] = tentry
	t.created.Add(1)
}

// Reset sizes the table to a fraction of system memory (with a floor of
// 2^minPower entries) and clears it. Passing the same size again reuses
// the allocation.
func (t *TranspositionTable) Reset(fractionOfMemory float64, minPower int) {
	totalMem := memory.TotalMemory()
	desiredNElems := fractionOfMemory * (float64(totalMem) / float64(entrySize))
	t.sizePowerOf2 = 0
	if desiredNElems > 1 {
		t.sizePowerOf2 = int(math.Log2(desiredNElems))
	}
	if t.sizePowerOf2 < minPower {
		t.sizePowerOf2 = minPower
	}

	numElems := 1 << t.sizePowerOf2
	t.sizeMask = uint64(numElems - 1)
	reused := false
	if t.table != nil && len(t.table) == numElems {
		reused = true
		clear(t.table)
	} else {
		t.table = make([]TableEntry, numElems)
	}

	log.Info().Int("num-elems", numElems).
		Float64("desired-num-elems", desiredNElems).
		Int("estimated-total-memory-bytes", numElems*entrySize).
		Uint64("total-system-memory-bytes", totalMem).
		Bool("reused", reused).
		Msg("transposition-table-size")

	t.generation = 0
	t.created.Store(0)
	t.lookups.Store(0)
	t.hits.Store(0)
	t.t2collisions.Store(0)
}

// NewGeneration marks the start of a fresh top-level search. Old
// entries stay probeable but lose their replacement priority, so
// shallow stale results are the first to be evicted.
func (t *TranspositionTable) NewGeneration() {
	t.generation++
	t.lookups.Store(0)
	t.hits.Store(0)
	t.t2collisions.Store(0)
}

func (t *TranspositionTable) Created() uint64 {
	return t.created.Load()
}
