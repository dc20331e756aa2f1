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
	"sync"

	"github.com/Zprime137/iZ-library/bitset"
)

// WheelVX is the fixed primorial 5·7·11·13·17·19 shared by the VX6
// micro-sieve and the random-prime generator's candidate pre-screen.
const WheelVX = 5 * 7 * 11 * 13 * 17 * 19 // 1,616,615

var wheelCache struct {
	once   sync.Once
	x5, x7 *bitset.Set
	primes []uint64
}

func buildWheelCache() {
	wheelCache.x5 = bitset.New(WheelVX + 1)
	wheelCache.x7 = bitset.New(WheelVX + 1)
	WheelConstruct(WheelVX, wheelCache.x5, wheelCache.x7)
	wheelCache.primes = Eratosthenes(WheelVX)
}

// CachedWheel returns the process-wide pre-sieved segment at WheelVX.
// It is built once, on first use, and never mutated afterwards, so
// concurrent readers need no locking. Callers that want to mark
// composites must work on a Clone.
func CachedWheel() (x5, x7 *bitset.Set) {
	wheelCache.once.Do(buildWheelCache)
	return wheelCache.x5, wheelCache.x7
}

// CachedWheelPrimes returns the ascending primes up to WheelVX,
// under the same build-once, read-only contract as CachedWheel.
func CachedWheelPrimes() []uint64 {
	wheelCache.once.Do(buildWheelCache)
	return wheelCache.primes
}
