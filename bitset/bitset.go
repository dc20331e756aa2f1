// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// Package bitset implements the byte-packed bitmap that backs
// the iZ sieves. Bit i lives in byte i/8 at position i%8.
package bitset

import (
	"fmt"
	"strings"
)

// Set is a fixed-size array of bits.
// The size is fixed at creation; accesses past it are the
// caller's bug, not a checked condition, since Get/Set/Clear
// sit on the sieve hot path.
type Set struct {
	bits []byte
	size uint64
}

// New returns a Set of the given size with all bits zero.
func New(size uint64) *Set {
	return &Set{
		bits: make([]byte, (size+7)/8),
		size: size,
	}
}

// Size returns the number of addressable bits.
func (s *Set) Size() uint64 { return s.size }

// Bytes returns the packed backing storage.
// Trailing bits past Size() are unspecified.
func (s *Set) Bytes() []byte { return s.bits }

// SetAll sets every bit.
func (s *Set) SetAll() {
	for i := range s.bits {
		s.bits[i] = 0xff
	}
}

// ClearAll clears every bit.
func (s *Set) ClearAll() {
	for i := range s.bits {
		s.bits[i] = 0
	}
}

// Get reports whether bit i is set.
func (s *Set) Get(i uint64) bool {
	return s.bits[i>>3]&(1<<(i&7)) != 0
}

// Set sets bit i.
func (s *Set) Set(i uint64) {
	s.bits[i>>3] |= 1 << (i & 7)
}

// Clear clears bit i.
func (s *Set) Clear(i uint64) {
	s.bits[i>>3] &^= 1 << (i & 7)
}

// ClearModP clears the bits start, start+p, start+2p, ...
// up to and including limit. This is the composite-marking
// primitive used by every sieve in this module.
func (s *Set) ClearModP(p, start, limit uint64) {
	for i := start; i <= limit; i += p {
		s.bits[i>>3] &^= 1 << (i & 7)
	}
}

// Copy copies length bits from src starting at srcIdx into dst
// starting at dstIdx. The copy proceeds in ascending bit order,
// so an overlapping forward copy (dstIdx > srcIdx) tiles the
// source pattern across the destination; segment duplication
// depends on that behavior.
func Copy(dst *Set, dstIdx uint64, src *Set, srcIdx, length uint64) {
	for i := uint64(0); i < length; i++ {
		if src.bits[(srcIdx+i)>>3]&(1<<((srcIdx+i)&7)) != 0 {
			dst.bits[(dstIdx+i)>>3] |= 1 << ((dstIdx + i) & 7)
		} else {
			dst.bits[(dstIdx+i)>>3] &^= 1 << ((dstIdx + i) & 7)
		}
	}
}

// CopyFrom makes s a bit-exact copy of src.
// Both sets must have the same size.
func (s *Set) CopyFrom(src *Set) {
	if s.size != src.size {
		panic(fmt.Sprintf("bitset: CopyFrom size mismatch: %d != %d", s.size, src.size))
	}
	copy(s.bits, src.bits)
}

// Clone returns a new Set with the same size and contents.
func (s *Set) Clone() *Set {
	c := New(s.size)
	copy(c.bits, s.bits)
	return c
}

// DuplicateSegment appends y-1 additional copies of the bit range
// [start, start+vxSize) immediately to its right, filling
// [start, start+y*vxSize). The range must fit inside the set;
// violating that is a programming error.
func (s *Set) DuplicateSegment(start, vxSize, y uint64) {
	if y == 0 || vxSize == 0 {
		return
	}
	end := start + vxSize*y
	if end < start || end > s.size {
		panic(fmt.Sprintf("bitset: DuplicateSegment out of bounds: [%d, %d) beyond size %d",
			start, end, s.size))
	}
	// single overlapping forward copy; see Copy
	Copy(s, start+vxSize, s, start, vxSize*(y-1))
}

// String renders the bits as '0'/'1' characters, lowest index first.
func (s *Set) String() string {
	var b strings.Builder
	b.Grow(int(s.size))
	for i := uint64(0); i < s.size; i++ {
		if s.Get(i) {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}

// FromString parses the output of String.
func FromString(repr string) (*Set, error) {
	s := New(uint64(len(repr)))
	for i := 0; i < len(repr); i++ {
		switch repr[i] {
		case '1':
			s.Set(uint64(i))
		case '0':
		default:
			return nil, fmt.Errorf("bitset: invalid character %q at offset %d", repr[i], i)
		}
	}
	return s, nil
}
