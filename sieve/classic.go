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

// Package sieve enumerates primes. The iZ variants (IZ, IZm) work on
// the 6x ± 1 residue classes; the classical algorithms in this file
// (Eratosthenes, Wheel, Euler, Atkin, Segmented) serve as baselines
// the iZ variants are cross-checked against, see CheckIntegrity.
//
// Every sieve honors the same contract: it returns the primes up to
// and including n in strictly ascending order, with an empty result
// for n < 2.
package sieve

import "bytes"

// Eratosthenes is the classical sieve restricted to odd candidates;
// index i of the work buffer represents the number 2i + 3.
func Eratosthenes(n uint64) []uint64 {
	if n < 2 {
		return nil
	}
	primes := newPrimeList(n)
	primes = append(primes, 2)
	if n < 3 {
		return primes
	}

	size := (n - 1) / 2 // count of odd numbers in [3, n]
	work := make([]byte, size)
	for i := range work {
		work[i] = 1
	}

	root := isqrt(n)
	for p := uint64(3); p <= root; p += 2 {
		if work[(p-3)/2] == 0 {
			continue
		}
		for q := (p*p - 3) / 2; q < size; q += p {
			work[q] = 0
		}
	}

	// bytes.IndexByte scan beats a plain loop on long runs of zeros
	idx := 0
	for {
		pos := bytes.IndexByte(work[idx:], 1)
		if pos < 0 {
			break
		}
		idx += pos
		primes = append(primes, 2*uint64(idx)+3)
		idx++
		if idx >= int(size) {
			break
		}
	}
	return primes
}

// Wheel is Eratosthenes on the mod-30 wheel: after 2, 3 and 5 only
// the eight residues coprime to 30 are ever consulted.
func Wheel(n uint64) []uint64 {
	if n < 2 {
		return nil
	}
	primes := newPrimeList(n)
	for _, p := range []uint64{2, 3, 5} {
		if p <= n {
			primes = append(primes, p)
		}
	}
	if n < 7 {
		return primes
	}

	composite := make([]byte, n+1)
	steps := [8]uint64{4, 2, 4, 2, 4, 6, 2, 6}
	root := isqrt(n)
	for p, i := uint64(7), 0; p <= root; p, i = p+steps[i&7], i+1 {
		if composite[p] != 0 {
			continue
		}
		for q := p * p; q <= n; q += 2 * p {
			composite[q] = 1
		}
	}
	for p, i := uint64(7), 0; p <= n; p, i = p+steps[i&7], i+1 {
		if composite[p] == 0 {
			primes = append(primes, p)
		}
	}
	return primes
}

// Euler is the linear sieve: each composite is struck exactly once,
// by its smallest prime factor.
func Euler(n uint64) []uint64 {
	if n < 2 {
		return nil
	}
	primes := newPrimeList(n)
	composite := make([]byte, n+1)
	for i := uint64(2); i <= n; i++ {
		if composite[i] == 0 {
			primes = append(primes, i)
		}
		for _, p := range primes {
			if p > n/i {
				break
			}
			composite[i*p] = 1
			if i%p == 0 {
				break
			}
		}
	}
	return primes
}

// Atkin is the sieve of Atkin: candidates are toggled by counting
// representations under three quadratic forms, then squares of the
// survivors are struck out.
func Atkin(n uint64) []uint64 {
	if n < 2 {
		return nil
	}
	primes := newPrimeList(n)
	for _, p := range []uint64{2, 3} {
		if p <= n {
			primes = append(primes, p)
		}
	}
	if n < 5 {
		return primes
	}

	flags := make([]byte, n+1)
	for x := uint64(1); x*x <= n; x++ {
		for y := uint64(1); y*y <= n; y++ {
			z := 4*x*x + y*y
			if z <= n && (z%12 == 1 || z%12 == 5) {
				flags[z] ^= 1
			}
			z = 3*x*x + y*y
			if z <= n && z%12 == 7 {
				flags[z] ^= 1
			}
			if x > y {
				z = 3*x*x - y*y
				if z <= n && z%12 == 11 {
					flags[z] ^= 1
				}
			}
		}
	}
	root := isqrt(n)
	for p := uint64(5); p <= root; p++ {
		if flags[p] == 0 {
			continue
		}
		for q := p * p; q <= n; q += p * p {
			flags[q] = 0
		}
	}
	for p := uint64(5); p <= n; p++ {
		if flags[p] != 0 {
			primes = append(primes, p)
		}
	}
	return primes
}

// segmentSize is the span of one Segmented pass; it keeps the work
// buffer comfortably inside L2.
const segmentSize = 1 << 20

// Segmented is the classical segmented sieve: base primes up to
// sqrt(n) are collected first, then fixed-size windows are sieved
// with a single reusable buffer.
func Segmented(n uint64) []uint64 {
	if n < 2 {
		return nil
	}
	if n < segmentSize {
		return Eratosthenes(n)
	}

	base := Eratosthenes(isqrt(n))
	primes := newPrimeList(n)
	primes = append(primes, base...)

	work := make([]byte, segmentSize)
	for low := base[len(base)-1] + 1; low <= n; low += segmentSize {
		high := low + segmentSize - 1
		if high > n || high < low { // also guards uint64 wrap
			high = n
		}
		span := high - low + 1
		for i := uint64(0); i < span; i++ {
			work[i] = 1
		}
		for _, p := range base {
			if p*p > high {
				break
			}
			start := ((low + p - 1) / p) * p
			if start < p*p {
				start = p * p
			}
			for q := start; q <= high; q += p {
				work[q-low] = 0
			}
		}
		for i := uint64(0); i < span; i++ {
			if work[i] != 0 {
				primes = append(primes, low+i)
			}
		}
	}
	return primes
}
