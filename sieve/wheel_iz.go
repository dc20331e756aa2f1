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
	"fmt"

	"github.com/Zprime137/iZ-library/bitset"
	"github.com/Zprime137/iZ-library/iz"
)

// WheelConstruct fills x5 and x7 with the pre-sieved segment of
// length vx: after the call, bit x in [1, vx] is set iff the
// corresponding 6x ∓ 1 is coprime to every prime dividing vx.
// The pattern is periodic with period vx, so it tiles the whole
// x-axis and can be reused for every segment of a sieve run.
//
// vx must be a primorial 5·7·11·... as produced by
// iz.ComputeLimitedVX, and both bitmaps must hold at least vx+1 bits.
//
// Construction seeds the product 5·7 = 35 directly from the residue
// definition and then grows by one prime factor q at a time:
// duplicate the current pattern q-1 times, then strike q's own
// multiples across the widened range.
func WheelConstruct(vx uint64, x5, x7 *bitset.Set) {
	if vx%35 != 0 {
		panic(fmt.Sprintf("sieve: wheel size %d is not a 5·7·... primorial", vx))
	}
	if x5.Size() <= vx || x7.Size() <= vx {
		panic("sieve: wheel bitmaps smaller than vx")
	}
	x5.ClearAll()
	x7.ClearAll()

	// 6i-1 is divisible by 5 iff i ≡ 1 (mod 5), by 7 iff i ≡ 6 (mod 7);
	// symmetrically for 6i+1.
	for i := uint64(1); i <= 35; i++ {
		if (i-1)%5 != 0 && (i+1)%7 != 0 {
			x5.Set(i)
		}
		if (i+1)%5 != 0 && (i-1)%7 != 0 {
			x7.Set(i)
		}
	}

	cur := uint64(35)
	for _, q := range iz.VXFactors(vx)[2:] {
		x5.DuplicateSegment(1, cur, q)
		x7.DuplicateSegment(1, cur, q)
		cur *= q
		x5.ClearModP(q, iz.NormalizedXP(iz.MatrixNeg, q), cur)
		x7.ClearModP(q, iz.NormalizedXP(iz.MatrixPos, q), cur)
	}
	if cur != vx {
		panic(fmt.Sprintf("sieve: wheel factors of %d only cover %d", vx, cur))
	}
}
