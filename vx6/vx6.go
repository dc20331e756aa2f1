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

// Package vx6 is the micro-sieve at the fixed primorial
// 5·7·11·13·17·19 = 1,616,615. One call sieves the lattice row
// selected by an arbitrary-precision y and compresses the surviving
// primes into 16-bit gaps from the row's base value, small enough to
// persist and cheap to replay.
package vx6

import (
	"errors"
	"fmt"
	"math/big"

	"golang.org/x/crypto/blake2b"

	"github.com/Zprime137/iZ-library/iz"
	"github.com/Zprime137/iZ-library/sieve"
)

// VX is the primorial the micro-sieve is specialized to.
const VX = sieve.WheelVX

// ErrGapOverflow is returned when two consecutive primes in the
// segment are more than 2^16-1 apart. No realistic y produces this.
var ErrGapOverflow = errors.New("vx6: prime gap does not fit in 16 bits")

// Object is one sieved segment: the primes in
// (iZ(vx·y, +1), iZ(vx·(y+1), +1)] encoded as gaps from the base
// value iZ(vx·y, +1).
type Object struct {
	// Y selects the lattice row; it must be positive.
	Y *big.Int
	// Gaps holds the differences between consecutive primes,
	// starting from Base().
	Gaps []uint16
	// Hash is the blake2b-256 digest of the raw gap bytes, filled
	// by Sieve and validated by Decode.
	Hash [32]byte
}

// Base returns iZ(vx·y, +1), the value the gap stream starts from.
func (o *Object) Base() *big.Int {
	base := new(big.Int).SetUint64(VX)
	base.Mul(base, o.Y)
	base.Mul(base, big.NewInt(6))
	return base.Add(base, big.NewInt(1))
}

// Primes replays the gap stream: cumulative sums over Base()
// reproduce the segment's primes in ascending order.
func (o *Object) Primes() []*big.Int {
	primes := make([]*big.Int, 0, len(o.Gaps))
	cur := o.Base()
	for _, g := range o.Gaps {
		cur = new(big.Int).Add(cur, big.NewInt(int64(g)))
		primes = append(primes, cur)
	}
	return primes
}

// Sieve sieves row y of the vx6 lattice. Composites of every cached
// prime below VX are struck from a clone of the shared wheel
// segment; while the segment's upper bound stays below VX² the
// survivors are provably prime, beyond that each survivor must also
// pass a Miller-Rabin test with the given round count.
func Sieve(y *big.Int, rounds int) (*Object, error) {
	if y == nil || y.Sign() <= 0 {
		return nil, fmt.Errorf("vx6: y must be a positive integer, got %v", y)
	}
	if rounds <= 0 {
		rounds = 25
	}

	wx5, wx7 := sieve.CachedWheel()
	t5 := wx5.Clone()
	t7 := wx7.Clone()

	// strike composites of all root primes that do not divide VX;
	// only y mod p matters for locating the first in-segment multiple
	pmod := new(big.Int)
	pbig := new(big.Int)
	for _, p := range sieve.CachedWheelPrimes() {
		if p < 5 || VX%p == 0 {
			continue
		}
		pbig.SetUint64(p)
		yr := pmod.Mod(y, pbig).Uint64()
		t5.ClearModP(p, iz.SolveForX(iz.MatrixNeg, p, VX, yr), VX)
		t7.ClearModP(p, iz.SolveForX(iz.MatrixPos, p, VX, yr), VX)
	}

	o := &Object{Y: new(big.Int).Set(y)}
	base := o.Base()

	// survivors are certain primes only while the segment top is
	// below VX²; past that, composites with no factor under VX can
	// survive the marking and Miller-Rabin must vet each one
	top := new(big.Int).Add(base, big.NewInt(6*VX))
	needMR := top.Cmp(new(big.Int).SetUint64(VX * VX)) > 0

	prev := new(big.Int).Set(base)
	val := new(big.Int)
	gap := new(big.Int)
	for x := uint64(1); x <= VX; x++ {
		for _, m := range [2]int{iz.MatrixNeg, iz.MatrixPos} {
			if m == iz.MatrixNeg && !t5.Get(x) {
				continue
			}
			if m == iz.MatrixPos && !t7.Get(x) {
				continue
			}
			// val = base + 6x + (m-1)
			val.SetUint64(6 * x)
			val.Add(val, base)
			if m == iz.MatrixNeg {
				val.Sub(val, big.NewInt(2))
			}
			if needMR && !val.ProbablyPrime(rounds) {
				continue
			}
			gap.Sub(val, prev)
			if !gap.IsUint64() || gap.Uint64() > 0xffff {
				return nil, ErrGapOverflow
			}
			o.Gaps = append(o.Gaps, uint16(gap.Uint64()))
			prev.Set(val)
		}
	}
	o.Hash = blake2b.Sum256(gapBytes(o.Gaps))
	return o, nil
}
