package engine

import (
	"testing"

	. "github.com/vchizhov/corechess/pkg/common"
)

func TestTransTableReadWriteRoundTrip(t *testing.T) {
	var tt = newTransTable(1)
	var key = uint64(0x1234567890abcdef)
	tt.Update(key, 7, 55, boundExact, MakeMove(SquareE2, SquareE4, KindNormal, 0))

	depth, score, bound, move, ok := tt.Read(key)
	if !ok {
		t.Fatalf("Read after Update: not found")
	}
	if depth != 7 || score != 55 || bound != boundExact || move != MakeMove(SquareE2, SquareE4, KindNormal, 0) {
		t.Fatalf("Read returned (%d, %d, %d, %v), want (7, 55, %d, e2e4)", depth, score, bound, move, boundExact)
	}
}

func TestTransTableMissReturnsNotFound(t *testing.T) {
	var tt = newTransTable(1)
	if _, _, _, _, ok := tt.Read(0xdeadbeef); ok {
		t.Fatalf("Read on empty table reported a hit")
	}
}

func TestTransTableKeepsBestEntryPerBucket(t *testing.T) {
	var tt = newTransTable(1)
	// Four distinct keys that collide into the same bucket: this
	// table's mask only looks at the low bits, so zeroing them keeps
	// the high 16 key bits (the part Read/Update actually compare)
	// distinct while forcing a shared bucket.
	var base = uint64(0x0001) << 48
	var keys [5]uint64
	for i := range keys {
		keys[i] = (base * uint64(i+1)) &^ tt.mask
	}
	for i, k := range keys[:4] {
		tt.Update(k, i+1, 0, boundExact, MakeMove(SquareA2, SquareA4, KindNormal, 0))
	}
	// A fifth distinct key forces an eviction; the shallowest entry
	// should be the one replaced.
	tt.Update(keys[4], 10, 0, boundExact, MakeMove(SquareA2, SquareA4, KindNormal, 0))

	if _, _, _, _, ok := tt.Read(keys[0]); ok {
		t.Fatalf("shallowest entry (depth 1) survived eviction")
	}
	if _, _, _, _, ok := tt.Read(keys[4]); !ok {
		t.Fatalf("newly inserted entry not found after eviction")
	}
}

func TestValueToFromTTRoundTripsMateScores(t *testing.T) {
	for _, v := range []int{0, 100, -100, valueWin, valueWin + 10, valueLoss, valueLoss - 10, valueMate - 1, -valueMate + 1} {
		for _, height := range []int{0, 1, 5, 30} {
			var stored = valueToTT(v, height)
			var back = valueFromTT(stored, height)
			if back != v {
				t.Fatalf("valueFromTT(valueToTT(%d, %d), %d) = %d, want %d", v, height, height, back, v)
			}
		}
	}
}

func TestHashfullMonotonicallyIncreases(t *testing.T) {
	var tt = newTransTable(1)
	var last = tt.Hashfull()
	if last != 0 {
		t.Fatalf("fresh table Hashfull() = %d, want 0", last)
	}
	for i := 0; i < 1000; i++ {
		var key = uint64(i) << 32
		tt.Update(key, 1, 0, boundExact, MakeMove(SquareA2, SquareA4, KindNormal, 0))
		var cur = tt.Hashfull()
		if cur < last {
			t.Fatalf("Hashfull() decreased from %d to %d after insert %d", last, cur, i)
		}
		last = cur
	}
	if last == 0 {
		t.Fatalf("Hashfull() still 0 after 1000 inserts")
	}
}

func TestClearResetsHashfull(t *testing.T) {
	var tt = newTransTable(1)
	for i := 0; i < 1000; i++ {
		tt.Update(uint64(i)<<32, 1, 0, boundExact, MakeMove(SquareA2, SquareA4, KindNormal, 0))
	}
	tt.Clear()
	if got := tt.Hashfull(); got != 0 {
		t.Fatalf("Hashfull() after Clear() = %d, want 0", got)
	}
}
