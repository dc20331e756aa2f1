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
	"github.com/Zprime137/iZ-library/bitset"
)

// IZ is the classic iZ sieve. Two bitmaps indexed by x track the
// candidates 6x-1 (x5) and 6x+1 (x7); a single ascending pass over x
// emits surviving candidates and strikes their composites in both
// matrices. Memory is one bit per candidate, about N/3 bits total.
func IZ(n uint64) []uint64 {
	primes := newPrimeList(n)
	if n < 2 {
		return primes
	}
	primes = append(primes, 2)
	if n >= 3 {
		primes = append(primes, 3)
	}
	if n < 5 {
		return primes
	}

	xn := (n+1)/6 + 1
	x5 := bitset.New(xn + 1)
	x7 := bitset.New(xn + 1)
	x5.SetAll()
	x7.SetAll()

	root := isqrt(n)
	for x := uint64(1); x < xn; x++ {
		if x5.Get(x) {
			z := 6*x - 1
			primes = append(primes, z)
			if z <= root {
				// first composites are z(z+2) in x5 and z² in x7
				x5.ClearModP(z, z*x+x, xn)
				x7.ClearModP(z, z*x-x, xn)
			}
		}
		if x7.Get(x) {
			z := 6*x + 1
			primes = append(primes, z)
			if z <= root {
				// first composites are z² in x7 and z(z-2) in x5
				x5.ClearModP(z, z*x-x, xn)
				x7.ClearModP(z, z*x+x, xn)
			}
		}
	}
	return trimTo(primes, n)
}
