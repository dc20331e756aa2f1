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
	"github.com/Zprime137/iZ-library/iz"
)

// IZm is the segmented iZ sieve. One pre-sieved wheel segment of
// primorial length vx is built once and cloned into a scratch pair
// for every segment, so the working memory is four bitmaps of vx+1
// bits (about 4·vx bits) no matter how large n grows. Within a segment, each root prime's
// first multiple is located arithmetically (iz.SolveForX) instead of
// by scanning.
func IZm(n uint64) []uint64 {
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
	vx := iz.ComputeLimitedVX(xn, 6)
	factors := iz.VXFactors(vx)
	primes = append(primes, factors...)
	rootStart := len(primes) // sieved root primes begin after the wheel factors

	x5 := bitset.New(vx + 1)
	x7 := bitset.New(vx + 1)
	WheelConstruct(vx, x5, x7)
	t5 := x5.Clone()
	t7 := x7.Clone()

	maxY := xn / vx

	// first segment: same emission logic as the classic sieve, but on
	// the pre-sieved pattern, so only candidates coprime to vx remain
	limit := vx
	if maxY == 0 {
		limit = xn
	}
	root6 := isqrt(6*limit + 1)
	for x := uint64(1); x <= limit; x++ {
		if t5.Get(x) {
			z := 6*x - 1
			primes = append(primes, z)
			if z <= root6 {
				t5.ClearModP(z, z*x+x, limit)
				t7.ClearModP(z, z*x-x, limit)
			}
		}
		if t7.Get(x) {
			z := 6*x + 1
			primes = append(primes, z)
			if z <= root6 {
				t5.ClearModP(z, z*x-x, limit)
				t7.ClearModP(z, z*x+x, limit)
			}
		}
	}

	for y := uint64(1); y <= maxY; y++ {
		t5.CopyFrom(x5)
		t7.CopyFrom(x7)
		limit = vx
		if y == maxY {
			limit = xn % vx
			if limit == 0 {
				break
			}
		}

		top := y*vx + limit
		for _, p := range primes[rootStart:] {
			if p*p/6 > top {
				break
			}
			t5.ClearModP(p, iz.SolveForX(iz.MatrixNeg, p, vx, y), limit)
			t7.ClearModP(p, iz.SolveForX(iz.MatrixPos, p, vx, y), limit)
		}

		for x := uint64(1); x <= limit; x++ {
			if t5.Get(x) {
				primes = append(primes, 6*(y*vx+x)-1)
			}
			if t7.Get(x) {
				primes = append(primes, 6*(y*vx+x)+1)
			}
		}
	}
	return trimTo(primes, n)
}
