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

package sieve

import (
	"encoding/binary"
	"fmt"

	"github.com/dchest/siphash"
)

// Func is the contract every sieve in this package satisfies:
// all primes up to and including n, strictly ascending.
type Func func(n uint64) []uint64

// Named pairs a sieve with the name used in integrity reports.
type Named struct {
	Name string
	Run  Func
}

// All lists every sieve in the package, baselines first.
var All = []Named{
	{"eratosthenes", Eratosthenes},
	{"wheel", Wheel},
	{"euler", Euler},
	{"atkin", Atkin},
	{"segmented", Segmented},
	{"iZ", IZ},
	{"iZm", IZm},
}

// ByName returns the sieve registered under name, or nil.
func ByName(name string) Func {
	for i := range All {
		if All[i].Name == name {
			return All[i].Run
		}
	}
	return nil
}

// digest keys; arbitrary but fixed, so digests are comparable
// across runs and processes.
const (
	digestK0 = 0x695a7072696d6573 // "iZprimes"
	digestK1 = 0x36782d312f36782b // "6x-1/6x+"
)

// Digest returns a 64-bit digest of a prime sequence: siphash over
// the primes packed as little-endian uint64s. Two sieves agree on a
// bound iff their digests are bit-identical; there is no tolerance,
// since the prime set is canonical.
func Digest(primes []uint64) uint64 {
	h := siphash.New(digestKey())
	var buf [8]byte
	for _, p := range primes {
		binary.LittleEndian.PutUint64(buf[:], p)
		h.Write(buf[:])
	}
	return h.Sum64()
}

func digestKey() []byte {
	var k [16]byte
	binary.LittleEndian.PutUint64(k[:8], digestK0)
	binary.LittleEndian.PutUint64(k[8:], digestK1)
	return k[:]
}

// CheckIntegrity runs every given sieve at bound n and compares the
// digests of the emitted sequences. The first sieve is the reference;
// a nil return means all sieves agree. On disagreement the error
// names the offending sieve.
func CheckIntegrity(sieves []Named, n uint64) error {
	if len(sieves) < 2 {
		return fmt.Errorf("sieve: integrity check needs at least 2 sieves, got %d", len(sieves))
	}
	ref := Digest(sieves[0].Run(n))
	for _, s := range sieves[1:] {
		if d := Digest(s.Run(n)); d != ref {
			return fmt.Errorf("sieve: %s disagrees with %s at n=%d (%#x != %#x)",
				s.Name, sieves[0].Name, n, d, ref)
		}
	}
	return nil
}
