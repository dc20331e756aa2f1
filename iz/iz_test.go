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

package iz

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// small iZ primes used as rapid generators below
var testPrimes = []uint64{5, 7, 11, 13, 17, 19, 23, 29, 31, 37, 41, 43, 47, 53, 59, 61, 67, 71, 73, 79, 83, 89, 97, 101, 103}

func TestZRecomposition(t *testing.T) {
	// 6·((p+1)/6) + matrix(p) == p for every prime p > 3
	for _, p := range testPrimes {
		require.Equal(t, p, Z(XP(p), MatrixOf(p)), "p=%d", p)
	}
}

func TestZPanicsOnBadArgs(t *testing.T) {
	require.Panics(t, func() { Z(0, MatrixPos) })
	require.Panics(t, func() { Z(1, 0) })
	require.Panics(t, func() { Z(1, 2) })
}

func TestNormalizedXP(t *testing.T) {
	// the returned residue class must contain exactly the multiples
	// of p within the target matrix
	for _, p := range testPrimes {
		for _, matrix := range []int{MatrixNeg, MatrixPos} {
			xp := NormalizedXP(matrix, p)
			require.Less(t, xp, p)
			for x := uint64(1); x < 6*p; x++ {
				z := Z(x, matrix)
				require.Equal(t, z%p == 0, x%p == xp%p,
					"p=%d matrix=%+d x=%d z=%d xp=%d", p, matrix, x, z, xp)
			}
		}
	}
}

func TestSolveForX(t *testing.T) {
	// worked example: 35035 ≡ 0 (mod 11), so x is x_p itself
	require.Equal(t, uint64(2), SolveForX(MatrixNeg, 11, 5005, 7))
	require.Equal(t, uint64(9), SolveForX(MatrixPos, 11, 5005, 7))

	rapid.Check(t, func(t *rapid.T) {
		p := rapid.SampledFrom(testPrimes).Draw(t, "p")
		vx := rapid.Uint64Range(35, 1<<40).Draw(t, "vx")
		y := rapid.Uint64Range(0, 1<<40).Draw(t, "y")
		matrix := rapid.SampledFrom([]int{MatrixNeg, MatrixPos}).Draw(t, "matrix")

		x := SolveForX(matrix, p, vx, y)
		if x >= p {
			t.Fatalf("x=%d out of range [0, %d)", x, p)
		}
		xp := NormalizedXP(matrix, p)
		if (x%p+mulmod(vx, y, p))%p != xp%p {
			t.Fatalf("(x + vx·y) !≡ x_p (mod %d)", p)
		}
	})
}

func TestSolveForY(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		p := rapid.SampledFrom(testPrimes).Draw(t, "p")
		vx := rapid.Uint64Range(35, 1<<40).Draw(t, "vx")
		x := rapid.Uint64Range(0, 1<<40).Draw(t, "x")
		matrix := rapid.SampledFrom([]int{MatrixNeg, MatrixPos}).Draw(t, "matrix")

		y, ok := SolveForY(matrix, p, vx, x)
		if vx%p == 0 {
			if ok {
				t.Fatalf("solution claimed for p=%d dividing vx=%d", p, vx)
			}
			return
		}
		if !ok {
			t.Fatalf("no solution for p=%d vx=%d", p, vx)
		}
		if y >= p {
			t.Fatalf("y=%d out of range [0, %d)", y, p)
		}
		xp := NormalizedXP(matrix, p)
		if (x%p+mulmod(vx, y, p))%p != xp%p {
			t.Fatalf("(x + vx·y) !≡ x_p (mod %d)", p)
		}
	})
}

func TestModInverse(t *testing.T) {
	for _, m := range testPrimes {
		for a := uint64(1); a < m; a++ {
			inv, ok := ModInverse(a, m)
			require.True(t, ok, "a=%d m=%d", a, m)
			require.Equal(t, uint64(1), a*inv%m, "a=%d m=%d inv=%d", a, m, inv)
		}
	}
	_, ok := ModInverse(6, 9)
	require.False(t, ok, "gcd(6,9) != 1 must have no inverse")
	require.Panics(t, func() { ModInverse(3, 1) })
}

func TestComputeLimitedVX(t *testing.T) {
	// never exceeds 6 factors: caps at 5·7·11·13·17·19
	require.Equal(t, uint64(1616615), ComputeLimitedVX(1<<62, 6))
	// small x_n stays at the seed primorial
	require.Equal(t, uint64(35), ComputeLimitedVX(100, 6))
	// growth respects vx·next < x_n/2
	require.Equal(t, uint64(385), ComputeLimitedVX(35*11*2+25, 6))
}

func TestVXFactors(t *testing.T) {
	require.Equal(t, []uint64{5, 7}, VXFactors(35))
	require.Equal(t, []uint64{5, 7, 11, 13, 17, 19}, VXFactors(1616615))
}
