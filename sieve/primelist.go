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
	"math"

	"golang.org/x/exp/slices"
)

// EstimateCount returns the capacity estimate used when collecting
// primes up to n: 1.5·n/ln(n), comfortably above π(n) for all n ≥ 2.
func EstimateCount(n uint64) int {
	if n < 2 {
		return 0
	}
	if n < 8 {
		return 4
	}
	return int(1.5 * float64(n) / math.Log(float64(n)))
}

// newPrimeList allocates an empty prime list sized for primes up to n.
func newPrimeList(n uint64) []uint64 {
	return make([]uint64, 0, EstimateCount(n))
}

// trimTo drops trailing primes above n (the sieves may overshoot by
// one x-row) and tightens the capacity to the final count.
func trimTo(primes []uint64, n uint64) []uint64 {
	for len(primes) > 0 && primes[len(primes)-1] > n {
		primes = primes[:len(primes)-1]
	}
	return slices.Clip(primes)
}

// isqrt returns floor(sqrt(n)).
func isqrt(n uint64) uint64 {
	if n == 0 {
		return 0
	}
	r := uint64(math.Sqrt(float64(n)))
	for r > 0 && r*r > n {
		r--
	}
	for r < math.MaxUint32 && (r+1)*(r+1) <= n {
		r++
	}
	return r
}
