package bitset

import (
	"sync"
	"testing"
)

func TestAtomicBitSet_SetClearGet(t *testing.T) {
	b := New(130)

	for _, idx := range []int64{0, 63, 64, 129} {
		if b.Get(idx) {
			t.Errorf("bit %d set before Set", idx)
		}
		b.Set(idx)
		if !b.Get(idx) {
			t.Errorf("bit %d not set after Set", idx)
		}
	}

	if got := b.Cardinality(); got != 4 {
		t.Errorf("Cardinality() = %d, want 4", got)
	}

	b.Clear(64)
	if b.Get(64) {
		t.Error("bit 64 still set after Clear")
	}
	if !b.Get(63) {
		t.Error("Clear(64) affected bit 63")
	}
}

func TestAtomicBitSet_GetAndSet(t *testing.T) {
	b := New(10)
	if b.GetAndSet(3) {
		t.Error("GetAndSet on clear bit returned true")
	}
	if !b.GetAndSet(3) {
		t.Error("GetAndSet on set bit returned false")
	}
	if !b.GetAndClear(3) {
		t.Error("GetAndClear on set bit returned false")
	}
	if b.GetAndClear(3) {
		t.Error("GetAndClear on clear bit returned true")
	}
}

func TestAtomicBitSet_AllSet(t *testing.T) {
	tests := []struct {
		name string
		size int64
	}{
		{"empty", 0},
		{"single", 1},
		{"partial word", 70},
		{"exact word", 128},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New(tt.size)
			if tt.size > 0 && b.AllSet() {
				t.Fatal("AllSet() true on fresh set")
			}
			for i := int64(0); i < tt.size; i++ {
				b.Set(i)
			}
			if !b.AllSet() {
				t.Fatal("AllSet() false after setting every bit")
			}
			if tt.size > 0 {
				b.Clear(tt.size - 1)
				if b.AllSet() {
					t.Fatal("AllSet() true after clearing the last bit")
				}
			}
		})
	}
}

func TestAtomicBitSet_SetAllClearAll(t *testing.T) {
	b := New(100)
	b.SetAll()
	if !b.AllSet() || b.Cardinality() != 100 {
		t.Errorf("SetAll: AllSet=%v Cardinality=%d", b.AllSet(), b.Cardinality())
	}
	b.ClearAll()
	if b.Cardinality() != 0 {
		t.Errorf("ClearAll: Cardinality=%d", b.Cardinality())
	}
}

func TestAtomicBitSet_ConcurrentWriters(t *testing.T) {
	const size = 4096
	b := New(size)

	// Writers interleave on the same words: each goroutine owns every
	// eighth bit.
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(offset int64) {
			defer wg.Done()
			for i := offset; i < size; i += 8 {
				b.Set(i)
			}
		}(int64(w))
	}
	wg.Wait()

	if !b.AllSet() {
		t.Fatalf("lost updates: Cardinality=%d, want %d", b.Cardinality(), size)
	}

	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(offset int64) {
			defer wg.Done()
			for i := offset; i < size; i += 16 {
				b.Clear(i)
			}
		}(int64(w))
	}
	wg.Wait()

	if got := b.Cardinality(); got != size/2 {
		t.Errorf("Cardinality after concurrent clears = %d, want %d", got, size/2)
	}
}
