package bitset

import (
	"fmt"
	"iter"
	"math/bits"
)

// Bitset is a fixed-capacity set of small non-negative integers.
//
// Capacity is chosen at construction and never changes. Iteration always
// yields members in ascending order.
type Bitset struct {
	words []uint64
	size  uint32
}

// New constructs an empty bitset able to hold indices in [0, size).
func New(size uint32) *Bitset {
	return &Bitset{
		words: make([]uint64, (size+63)/64),
		size:  size,
	}
}

// Size returns the capacity of the bitset.
func (m *Bitset) Size() uint32 {
	return m.size
}

// Count returns the number of bits set in the bitset.
func (m *Bitset) Count() uint {
	count := uint(0)
	for _, word := range m.words {
		count += uint(bits.OnesCount64(word))
	}

	return count
}

// Insert inserts the given index into the bitset.
func (m *Bitset) Insert(idx uint32) {
	m.checkIndex(idx)
	m.words[idx/64] |= 1 << (idx % 64)
}

// Remove removes the given index from the bitset.
func (m *Bitset) Remove(idx uint32) {
	m.checkIndex(idx)
	m.words[idx/64] &^= 1 << (idx % 64)
}

// Contains reports whether the given index is set.
//
// Indices beyond the capacity are never set.
func (m *Bitset) Contains(idx uint32) bool {
	if idx >= m.size {
		return false
	}

	return m.words[idx/64]&(1<<(idx%64)) != 0
}

// Traverse calls the given function for each bit set, from the least
// significant bit to the most significant one, until it returns false.
func (m *Bitset) Traverse(fn func(uint32) bool) {
	for idx, word := range m.words {
		for word != 0 {
			r := bits.TrailingZeros64(word)
			// Clears the lowest set bit.
			word &= word - 1

			if !fn(64*uint32(idx) + uint32(r)) {
				return
			}
		}
	}
}

// Iter returns an iterator over the bits set.
func (m *Bitset) Iter() iter.Seq[uint32] {
	return func(yield func(uint32) bool) {
		m.Traverse(yield)
	}
}

// AsSlice returns the bitset as a slice of indices, where each index is a
// position of the bit set.
func (m *Bitset) AsSlice() []uint32 {
	out := make([]uint32, 0, m.Count())

	m.Traverse(func(idx uint32) bool {
		out = append(out, idx)
		return true
	})

	return out
}

func (m *Bitset) checkIndex(idx uint32) {
	if idx >= m.size {
		panic(fmt.Sprintf("index %d is too big: must be less than %d", idx, m.size))
	}
}
