// Package bitset provides a fixed-size bit set that is safe for concurrent
// Set/Clear/Get calls from multiple goroutines.
package bitset

import (
	"math/bits"
	"sync/atomic"
)

const wordBits = 64

// AtomicBitSet is a fixed-size bit set backed by atomically updated words.
// Individual bit operations never lock. Whole-structure operations (AllSet,
// Cardinality, ClearAll) are not atomic with respect to concurrent writers
// and are meant to be called at a synchronization point.
type AtomicBitSet struct {
	words []atomic.Uint64
	size  int64
}

// New creates a bit set holding size bits, all cleared
func New(size int64) *AtomicBitSet {
	if size < 0 {
		size = 0
	}
	return &AtomicBitSet{
		words: make([]atomic.Uint64, (size+wordBits-1)/wordBits),
		size:  size,
	}
}

// Size returns the number of bits in the set
func (b *AtomicBitSet) Size() int64 {
	return b.size
}

// Set sets the bit at index
func (b *AtomicBitSet) Set(index int64) {
	b.words[index/wordBits].Or(1 << uint(index%wordBits))
}

// Clear clears the bit at index
func (b *AtomicBitSet) Clear(index int64) {
	b.words[index/wordBits].And(^(uint64(1) << uint(index%wordBits)))
}

// Get reports whether the bit at index is set
func (b *AtomicBitSet) Get(index int64) bool {
	return b.words[index/wordBits].Load()&(1<<uint(index%wordBits)) != 0
}

// GetAndSet sets the bit at index and returns its previous state
func (b *AtomicBitSet) GetAndSet(index int64) bool {
	mask := uint64(1) << uint(index%wordBits)
	return b.words[index/wordBits].Or(mask)&mask != 0
}

// GetAndClear clears the bit at index and returns its previous state
func (b *AtomicBitSet) GetAndClear(index int64) bool {
	mask := uint64(1) << uint(index%wordBits)
	return b.words[index/wordBits].And(^mask)&mask != 0
}

// AllSet reports whether every bit is set. An empty set is trivially all set.
func (b *AtomicBitSet) AllSet() bool {
	if b.size == 0 {
		return true
	}
	last := len(b.words) - 1
	for i := 0; i < last; i++ {
		if b.words[i].Load() != ^uint64(0) {
			return false
		}
	}
	return b.words[last].Load() == b.lastWordMask()
}

// Cardinality returns the number of set bits
func (b *AtomicBitSet) Cardinality() int64 {
	var n int64
	for i := range b.words {
		n += int64(bits.OnesCount64(b.words[i].Load()))
	}
	return n
}

// ClearAll clears every bit
func (b *AtomicBitSet) ClearAll() {
	for i := range b.words {
		b.words[i].Store(0)
	}
}

// SetAll sets every bit
func (b *AtomicBitSet) SetAll() {
	if b.size == 0 {
		return
	}
	last := len(b.words) - 1
	for i := 0; i < last; i++ {
		b.words[i].Store(^uint64(0))
	}
	b.words[last].Store(b.lastWordMask())
}

func (b *AtomicBitSet) lastWordMask() uint64 {
	rem := b.size % wordBits
	if rem == 0 {
		return ^uint64(0)
	}
	return (uint64(1) << uint(rem)) - 1
}
