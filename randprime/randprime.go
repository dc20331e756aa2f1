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

// Package randprime generates large random probable primes by
// searching the iZ lattice. A primorial vx just below the requested
// bit size pins the candidate progression iZ(x + vx·y) to residues
// coprime to every factor of vx, which makes primes in the
// progression far denser near 2^B than among random odd integers.
// Several workers search independent progressions; the first
// Miller-Rabin survivor wins.
//
// This is a throughput tool, not a hardened key generator: draws come
// from crypto/rand, but no side-channel precautions are taken.
package randprime

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"runtime"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/Zprime137/iZ-library/iz"
	"github.com/Zprime137/iZ-library/sieve"
)

// Per-worker search budgets: a draw may be nudged by +6 at most
// coprimeBudget times to reach a residue coprime to vx, and a
// progression is walked for at most attemptBudget rows before the
// worker redraws.
const (
	coprimeBudget = 10_000
	attemptBudget = 1_000_000
)

// ErrNotFound is returned when every worker exhausted its attempt
// budget without producing a probable prime. For bit sizes up to
// 8192 this is not expected to ever happen.
var ErrNotFound = errors.New("randprime: no probable prime found within the attempt budget")

// Config parameterizes a search.
type Config struct {
	// Matrix selects the residue class of the result:
	// iz.MatrixNeg for 6x-1, iz.MatrixPos for 6x+1.
	Matrix int
	// Bits is the exact bit length of the result.
	Bits int
	// Rounds is the Miller-Rabin round count used to accept a
	// candidate. Zero selects 25.
	Rounds int
	// Workers is the number of concurrent searchers.
	// Zero selects runtime.NumCPU().
	Workers int
}

func (c *Config) fill() error {
	if c.Matrix != iz.MatrixNeg && c.Matrix != iz.MatrixPos {
		return fmt.Errorf("randprime: matrix must be -1 or +1, got %d", c.Matrix)
	}
	if c.Bits < 16 {
		return fmt.Errorf("randprime: bit size %d too small (min 16)", c.Bits)
	}
	if c.Rounds <= 0 {
		c.Rounds = 25
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	return nil
}

// Random searches for a probable prime with exactly cfg.Bits bits in
// the chosen matrix and returns the first one any worker confirms.
// The remaining workers are cancelled, and Random does not return
// until all of them have stopped.
func Random(ctx context.Context, cfg Config) (*big.Int, error) {
	if err := cfg.fill(); err != nil {
		return nil, err
	}
	vx := PrimorialBelow(cfg.Bits)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	out := make(chan *big.Int, cfg.Workers)
	var wg sync.WaitGroup
	for i := 0; i < cfg.Workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			if p := search(ctx, id, vx, &cfg); p != nil {
				out <- p
			}
		}(i)
	}
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case p := <-out:
		cancel()
		<-done
		return p, nil
	case <-done:
		// all workers finished; one may still have produced a result
		select {
		case p := <-out:
			return p, nil
		default:
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, ErrNotFound
	case <-ctx.Done():
		<-done
		return nil, ctx.Err()
	}
}

// PrimorialBelow returns the largest primorial 5·7·11·... whose bit
// length is below bits.
func PrimorialBelow(bits int) *big.Int {
	f := new(big.Int)
	bound := uint64(bits)
	if bound < 64 {
		bound = 64
	}
	for {
		vx := big.NewInt(35)
		for _, q := range sieve.Eratosthenes(bound)[4:] { // skip 2,3,5,7
			f.SetUint64(q)
			f.Mul(vx, f)
			if f.BitLen() >= bits {
				return vx
			}
			vx.Set(f)
		}
		bound *= 2 // prime supply exhausted; rebuild with more primes
	}
}

// search runs one worker: draw a random lattice row, walk it one vx
// stride at a time, and hand back the first candidate of exactly
// cfg.Bits bits that passes Miller-Rabin. A nil return means the
// context was cancelled, or the worker gave up while siblings keep
// searching.
func search(ctx context.Context, id int, vx *big.Int, cfg *Config) *big.Int {
	wx5, wx7 := sieve.CachedWheel()
	wheel := wx5
	if cfg.Matrix == iz.MatrixPos {
		wheel = wx7
	}
	six := big.NewInt(6)
	matrix := big.NewInt(int64(cfg.Matrix))
	one := big.NewInt(1)
	cand := new(big.Int)
	gcd := new(big.Int)
	mod := new(big.Int)

	for {
		if ctx.Err() != nil {
			return nil
		}

		// (b) random x in [0, vx)
		x, err := rand.Int(rand.Reader, vx)
		if err != nil {
			log.Debug("izprime: rand draw failed", "worker", id, "err", err)
			return nil
		}
		cand.Mul(x, six)
		cand.Add(cand, matrix)

		// (c) nudge by +6 until the candidate is coprime to vx; the
		// cached wheel bit rules out most residues without a gcd
		xr := mod.Mod(x, wheelVXBig).Uint64()
		ok := false
		for i := 0; i < coprimeBudget; i++ {
			if xr != 0 && wheel.Get(xr) && gcd.GCD(nil, nil, vx, cand).Cmp(one) == 0 {
				ok = true
				break
			}
			cand.Add(cand, six)
			if xr++; xr > sieve.WheelVX {
				xr = 0
			}
		}
		if !ok {
			continue
		}

		// (d) skip the first row, then (e) walk the progression
		cand.Add(cand, vx)
		exhausted := true
		for i := 0; i < attemptBudget; i++ {
			if i&0x3ff == 0 && ctx.Err() != nil {
				return nil
			}
			cand.Add(cand, vx)
			if cand.BitLen() > cfg.Bits {
				// walked past the target size; this row has no more
				// candidates of exactly cfg.Bits bits
				exhausted = false
				break
			}
			if cand.BitLen() < cfg.Bits {
				continue
			}
			if cand.ProbablyPrime(cfg.Rounds) {
				return cand
			}
		}
		if exhausted {
			log.Debug("izprime: attempt budget exhausted", "worker", id, "bits", cfg.Bits)
			if cfg.Workers > 1 {
				// siblings keep searching; this worker retires
				return nil
			}
		}
	}
}

var wheelVXBig = big.NewInt(sieve.WheelVX)
