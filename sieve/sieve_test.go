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
	"strings"
	"testing"

	"golang.org/x/exp/slices"
	"pgregory.net/rapid"
)

var first25 = []uint64{2, 3, 5, 7, 11, 13, 17, 19, 23, 29, 31, 37, 41, 43, 47, 53, 59, 61, 67, 71, 73, 79, 83, 89, 97}

func TestBoundaries(t *testing.T) {
	cases := []struct {
		n    uint64
		want []uint64
	}{
		{0, nil},
		{1, nil},
		{2, []uint64{2}},
		{3, []uint64{2, 3}},
		{4, []uint64{2, 3}},
		{5, []uint64{2, 3, 5}},
		{6, []uint64{2, 3, 5}},
		{7, []uint64{2, 3, 5, 7}},
	}
	for _, s := range All {
		for _, c := range cases {
			got := s.Run(c.n)
			if len(got) == 0 && len(c.want) == 0 {
				continue
			}
			if !slices.Equal(got, c.want) {
				t.Errorf("%s(%d) = %v, want %v", s.Name, c.n, got, c.want)
			}
		}
	}
}

func TestFirst25(t *testing.T) {
	for _, s := range All {
		if got := s.Run(100); !slices.Equal(got, first25) {
			t.Errorf("%s(100) = %v, want %v", s.Name, got, first25)
		}
	}
}

func TestCrossCheckGrid(t *testing.T) {
	grid := []uint64{10, 29, 30, 31, 97, 100, 210, 1000, 9973, 9974, 10000, 65537, 100000, 211050}
	for _, n := range grid {
		want := Eratosthenes(n)
		for _, s := range All[1:] {
			got := s.Run(n)
			if !slices.Equal(got, want) {
				t.Fatalf("%s(%d): %d primes, eratosthenes has %d (first diff near %v)",
					s.Name, n, len(got), len(want), firstDiff(got, want))
			}
		}
	}
}

func firstDiff(a, b []uint64) []uint64 {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			lo := i - 2
			if lo < 0 {
				lo = 0
			}
			return []uint64{a[lo], a[i], b[i]}
		}
	}
	return nil
}

func TestCrossCheckRandomBounds(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.Uint64Range(0, 30000).Draw(t, "n")
		want := Eratosthenes(n)
		for _, s := range All[1:] {
			if got := s.Run(n); !slices.Equal(got, want) {
				t.Fatalf("%s(%d) disagrees with eratosthenes", s.Name, n)
			}
		}
	})
}

func TestMillionBound(t *testing.T) {
	if testing.Short() {
		t.Skip("short mode")
	}
	want := Eratosthenes(1_000_000)
	if len(want) != 78498 {
		t.Fatalf("π(10^6) = %d, want 78498", len(want))
	}
	if last := want[len(want)-1]; last != 999983 {
		t.Fatalf("last prime %d, want 999983", last)
	}
	ref := Digest(want)
	for _, s := range All[1:] {
		primes := s.Run(1_000_000)
		if d := Digest(primes); d != ref {
			t.Errorf("%s digest %#x, want %#x (count %d)", s.Name, d, ref, len(primes))
		}
	}
}

func TestAscendingAndDistinct(t *testing.T) {
	for _, s := range All {
		primes := s.Run(50000)
		for i := 1; i < len(primes); i++ {
			if primes[i] <= primes[i-1] {
				t.Fatalf("%s: not strictly ascending at %d: %d, %d",
					s.Name, i, primes[i-1], primes[i])
			}
		}
	}
}

func TestEstimateCount(t *testing.T) {
	for _, n := range []uint64{10, 100, 1000, 100000, 1000000} {
		if got, actual := EstimateCount(n), len(Eratosthenes(n)); got < actual {
			t.Errorf("EstimateCount(%d) = %d below π(n) = %d", n, got, actual)
		}
	}
}

func TestCheckIntegrity(t *testing.T) {
	if err := CheckIntegrity(All, 100000); err != nil {
		t.Fatal(err)
	}

	broken := []Named{
		{"eratosthenes", Eratosthenes},
		{"offbyone", func(n uint64) []uint64 { return Eratosthenes(n - 1) }},
	}
	err := CheckIntegrity(broken, 9973)
	if err == nil {
		t.Fatal("integrity check passed with a broken sieve")
	}
	if !strings.Contains(err.Error(), "offbyone") {
		t.Errorf("error does not name the offending sieve: %v", err)
	}

	if err := CheckIntegrity(All[:1], 100); err == nil {
		t.Error("single-sieve integrity check should be rejected")
	}
}

func TestDigestDistinguishes(t *testing.T) {
	a := Digest([]uint64{2, 3, 5})
	b := Digest([]uint64{2, 3, 7})
	if a == b {
		t.Fatal("digests collide on different sequences")
	}
	if a != Digest([]uint64{2, 3, 5}) {
		t.Fatal("digest is not deterministic")
	}
}

func TestByName(t *testing.T) {
	if ByName("iZm") == nil || ByName("eratosthenes") == nil {
		t.Fatal("registered sieve not found")
	}
	if ByName("nope") != nil {
		t.Fatal("unknown name resolved")
	}
}
