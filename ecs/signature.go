package ecs

import (
	"iter"
	"math/bits"
	"strings"
)

const signatureWords = (MaxComponents + 63) / 64

// Signature is a fixed-width bitset recording which component ids an entity carries,
// or which component ids a system requires.
type Signature [signatureWords]uint64

// Set enables the bit for id.
func (s *Signature) Set(id ComponentID) {
	s[id>>6] |= uint64(1) << (id & 63)
}

// Clear disables the bit for id.
func (s *Signature) Clear(id ComponentID) {
	s[id>>6] &^= uint64(1) << (id & 63)
}

// Reset clears every bit.
func (s *Signature) Reset() {
	*s = Signature{}
}

// Test reports whether the bit for id is set.
func (s Signature) Test(id ComponentID) bool {
	return s[id>>6]&(uint64(1)<<(id&63)) != 0
}

// Contains reports whether every bit of sub is also set in s, i.e. (s & sub) == sub.
func (s Signature) Contains(sub Signature) bool {
	for i := range s {
		if s[i]&sub[i] != sub[i] {
			return false
		}
	}
	return true
}

// IsEmpty reports whether no bit is set.
func (s Signature) IsEmpty() bool {
	return s == Signature{}
}

// Count returns the number of set bits.
func (s Signature) Count() int {
	n := 0
	for _, word := range s {
		n += bits.OnesCount64(word)
	}
	return n
}

// IDs iterates the set component ids in ascending order.
func (s Signature) IDs() iter.Seq[ComponentID] {
	return func(yield func(ComponentID) bool) {
		for wordIdx, word := range s {
			for word != 0 {
				bit := bits.TrailingZeros64(word)
				if !yield(ComponentID(wordIdx*64 + bit)) {
					return
				}
				word &^= uint64(1) << bit
			}
		}
	}
}

func (s Signature) first() (ComponentID, bool) {
	for wordIdx, word := range s {
		if word != 0 {
			return ComponentID(wordIdx*64 + bits.TrailingZeros64(word)), true
		}
	}
	return 0, false
}

// String renders the bitset most significant bit first, MaxComponents characters wide.
func (s Signature) String() string {
	var b strings.Builder
	b.Grow(MaxComponents)
	for i := MaxComponents - 1; i >= 0; i-- {
		if s.Test(ComponentID(i)) {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}
