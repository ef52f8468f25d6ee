package engine

import (
	. "github.com/vchizhov/corechess/pkg/common"
)

const (
	boundLower = 1 << iota
	boundUpper
)

const boundExact = boundLower | boundUpper

const entriesPerBucket = 4

func roundPowerOfTwo(size int) int {
	var x = 1
	for (x << 1) <= size {
		x <<= 1
	}
	return x
}

// ttEntry is 8 bytes; four of them make up one 32-byte bucket. Reads
// and writes are deliberately unsynchronized: worker goroutines share
// the table without locking, so a torn read occasionally returns a
// corrupted entry. That is caught downstream — IsPseudoLegal rejects
// a garbage hash move, and a garbage score just gets rediscovered by
// the normal search. Synchronizing this structure would cost far more
// in contention than the occasional torn read ever costs in search
// quality.
type ttEntry struct {
	key16    uint16
	move     Move
	score    int16
	depth    int8
	genBound uint8
}

func (e *ttEntry) generation() uint8 { return e.genBound >> 2 }
func (e *ttEntry) bound() int        { return int(e.genBound & 3) }

type ttBucket struct {
	entries [entriesPerBucket]ttEntry
}

type transTable struct {
	megabytes int
	buckets   []ttBucket
	mask      uint64
	gen       uint8
}

func newTransTable(megabytes int) *transTable {
	var bucketCount = roundPowerOfTwo(1024 * 1024 * megabytes / 32)
	if bucketCount == 0 {
		bucketCount = 1
	}
	return &transTable{
		megabytes: megabytes,
		buckets:   make([]ttBucket, bucketCount),
		mask:      uint64(bucketCount - 1),
	}
}

func (tt *transTable) Size() int {
	return tt.megabytes
}

func (tt *transTable) IncDate() {
	tt.gen = (tt.gen + 1) & 0x3f
}

func (tt *transTable) Clear() {
	tt.gen = 0
	for i := range tt.buckets {
		tt.buckets[i] = ttBucket{}
	}
}

func (tt *transTable) bucket(key uint64) *ttBucket {
	return &tt.buckets[key&tt.mask]
}

func (tt *transTable) Read(key uint64) (depth, score, bound int, move Move, ok bool) {
	var bucket = tt.bucket(key)
	var key16 = uint16(key >> 48)
	for i := range bucket.entries {
		var e = &bucket.entries[i]
		if e.key16 == key16 && e.move != NoMove {
			e.genBound = tt.gen<<2 | uint8(e.bound())
			return int(e.depth), int(e.score), e.bound(), e.move, true
		}
	}
	return
}

// Update replaces the weakest entry in key's bucket: an empty or
// same-key slot is taken first, and a same-key entry is overwritten
// unless the incoming depth is notably shallower; otherwise the slot
// with the lowest depth minus eight per generation of age is replaced.
func (tt *transTable) Update(key uint64, depth, score, bound int, move Move) {
	var bucket = tt.bucket(key)
	var key16 = uint16(key >> 48)

	var replaceIdx = 0
	var replaceScore = 1 << 30
	for i := range bucket.entries {
		var e = &bucket.entries[i]
		if e.move == NoMove || e.key16 == key16 {
			replaceIdx = i
			break
		}
		var candidateScore = int(e.depth) - 8*int(tt.gen-e.generation())
		if candidateScore < replaceScore {
			replaceScore = candidateScore
			replaceIdx = i
		}
	}

	var e = &bucket.entries[replaceIdx]
	if e.key16 == key16 && move == NoMove {
		move = e.move
	}
	if e.key16 != key16 || depth >= int(e.depth)-3 || bound == boundExact {
		e.key16 = key16
		e.move = move
		e.score = int16(score)
		e.depth = int8(depth)
		e.genBound = tt.gen<<2 | uint8(bound)
	}
}

// Hashfull estimates, per mille, how full the table is by sampling
// the first 1000 buckets' first slot.
func (tt *transTable) Hashfull() int {
	var sample = 1000
	if sample > len(tt.buckets) {
		sample = len(tt.buckets)
	}
	if sample == 0 {
		return 0
	}
	var used = 0
	for i := 0; i < sample; i++ {
		if tt.buckets[i].entries[0].move != NoMove && tt.buckets[i].entries[0].generation() == tt.gen {
			used++
		}
	}
	return used * 1000 / sample
}
