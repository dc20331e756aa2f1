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

// Package iz implements the arithmetic of the iZ set,
// the integers of the form 6x ± 1. Every prime above 3 lies in it,
// so a number z > 3 in the set is addressed as a (matrix, x) pair
// with matrix ∈ {-1, +1} and z = 6x + matrix.
//
// The functions here are pure, and all but VXFactors are
// allocation-free; every decision the sieves make reduces to one of
// them.
package iz

import (
	"fmt"
	"math/bits"
)

// The two matrices of the iZ set.
const (
	MatrixNeg = -1 // 6x - 1
	MatrixPos = +1 // 6x + 1
)

// checkMatrix guards the matrix invariant shared by the
// functions below. Anything outside {-1, +1} is a caller bug.
func checkMatrix(matrix int) {
	if matrix != MatrixNeg && matrix != MatrixPos {
		panic(fmt.Sprintf("iz: matrix must be -1 or +1, got %d", matrix))
	}
}

// Z returns 6x + matrix. x must be positive: x = 0 would address
// the non-members 6·0-1 and 6·0+1 of the set.
func Z(x uint64, matrix int) uint64 {
	checkMatrix(matrix)
	if x == 0 {
		panic("iz: x must be positive")
	}
	if matrix == MatrixNeg {
		return 6*x - 1
	}
	return 6*x + 1
}

// XP returns the x-coordinate (p+1)/6 of a prime p > 3.
func XP(p uint64) uint64 {
	return (p + 1) / 6
}

// MatrixOf returns the matrix a prime p > 3 belongs to:
// +1 if p ≡ 1 (mod 6), -1 otherwise.
func MatrixOf(p uint64) int {
	if p%6 == 1 {
		return MatrixPos
	}
	return MatrixNeg
}

// NormalizedXP returns the residue class (mod p) of the x-indices
// at which p's multiples fall within the target matrix. Marking
// composites of p in that matrix starts from this x and steps by p.
func NormalizedXP(matrix int, p uint64) uint64 {
	checkMatrix(matrix)
	x0 := XP(p)
	pid := MatrixOf(p)
	if matrix == pid {
		return x0
	}
	return p - x0
}

// mulmod returns a*b mod m using a 128-bit intermediate, so the
// segment arithmetic stays exact for any 64-bit vx·y product.
func mulmod(a, b, m uint64) uint64 {
	hi, lo := bits.Mul64(a%m, b%m)
	_, rem := bits.Div64(hi, lo, m)
	return rem
}

// SolveForX returns the smallest x ≥ 0 such that x + vx·y falls on a
// multiple of p within the target matrix, i.e.
// (x + vx·y) ≡ NormalizedXP(matrix, p) (mod p). The result is in [0, p).
func SolveForX(matrix int, p, vx, y uint64) uint64 {
	xp := NormalizedXP(matrix, p)
	d := mulmod(vx, y, p)
	if d <= xp {
		return xp - d
	}
	return p - (d - xp)
}

// SolveForY returns the smallest y ≥ 0 such that x + vx·y falls on a
// multiple of p within the target matrix. The progression only meets
// multiples of p when vx is invertible mod p; for prime p that means
// p does not divide vx. The second result reports whether a solution
// exists.
func SolveForY(matrix int, p, vx, x uint64) (uint64, bool) {
	inv, ok := ModInverse(vx%p, p)
	if !ok {
		return 0, false
	}
	xp := NormalizedXP(matrix, p)
	var d uint64
	if xp >= x%p {
		d = xp - x%p
	} else {
		d = p - (x%p - xp)
	}
	return mulmod(d, inv, p), true
}

// ModInverse returns a^-1 mod m via the extended Euclidean
// algorithm, and whether the inverse exists (gcd(a, m) = 1).
// m must be greater than 1.
func ModInverse(a, m uint64) (uint64, bool) {
	if m <= 1 {
		panic("iz: modulus must be > 1")
	}
	// int64 is wide enough: the Bézout coefficients stay below m
	// in magnitude, and every modulus used here fits in 63 bits.
	var t, newt int64 = 0, 1
	var r, newr = m, a % m
	for newr != 0 {
		q := r / newr
		t, newt = newt, t-int64(q)*newt
		r, newr = newr, r-q*newr
	}
	if r != 1 {
		return 0, false
	}
	if t < 0 {
		t += int64(m)
	}
	return uint64(t), true
}

// Primes returns the ascending iZ primes 5, 7, 11, ... used to grow
// primorials, filling dst up to its capacity by trial division
// against the primes found so far.
func Primes(dst []uint64) []uint64 {
	dst = dst[:0]
	for z := uint64(5); len(dst) < cap(dst); z++ {
		if z%2 == 0 || z%3 == 0 {
			continue
		}
		composite := false
		for _, p := range dst {
			if p*p > z {
				break
			}
			if z%p == 0 {
				composite = true
				break
			}
		}
		if !composite {
			dst = append(dst, z)
		}
	}
	return dst
}

// ComputeLimitedVX chooses the primorial segment size for a sieve
// over x-indices up to xn. Starting from 35 = 5·7, it multiplies in
// successive iZ primes while the next product stays below xn/2 and
// the total factor count stays within limit.
func ComputeLimitedVX(xn uint64, limit int) uint64 {
	var buf [16]uint64
	primes := Primes(buf[:0:16])
	vx := uint64(35)
	nfactors := 2 // 5 and 7
	for _, q := range primes[2:] {
		if nfactors >= limit || vx*q >= xn/2 {
			break
		}
		vx *= q
		nfactors++
	}
	return vx
}

// VXFactors returns the ascending prime factors of a primorial
// produced by ComputeLimitedVX.
func VXFactors(vx uint64) []uint64 {
	var buf [16]uint64
	var factors []uint64
	for _, q := range Primes(buf[:0:16]) {
		if vx%q == 0 {
			factors = append(factors, q)
		}
		if q > vx {
			break
		}
	}
	return factors
}
