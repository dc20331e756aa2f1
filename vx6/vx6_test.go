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

package vx6

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Zprime137/iZ-library/sieve"
)

func TestSieveRowOne(t *testing.T) {
	if testing.Short() {
		t.Skip("short mode")
	}
	obj, err := Sieve(big.NewInt(1), 25)
	require.NoError(t, err)

	// row 1 covers (6·vx+1, 12·vx+1]; below vx² every survivor is a
	// certain prime, so the gap stream must replay the exact prime
	// sequence of that window
	base := uint64(6*VX + 1)
	top := uint64(12*VX + 1)
	var want []uint64
	for _, p := range sieve.Segmented(top) {
		if p > base {
			want = append(want, p)
		}
	}

	got := obj.Primes()
	require.Equal(t, len(want), len(got))
	for i, p := range got {
		require.True(t, p.IsUint64())
		require.Equal(t, want[i], p.Uint64(), "prime %d", i)
	}
}

func TestSieveDeepRow(t *testing.T) {
	if testing.Short() {
		t.Skip("short mode")
	}
	// deep enough that composites without a factor below vx could
	// survive the marking; Miller-Rabin takes over
	y := big.NewInt(1_000_000)
	obj, err := Sieve(y, 8)
	require.NoError(t, err)
	require.NotEmpty(t, obj.Gaps)

	primes := obj.Primes()
	base := obj.Base()
	top := new(big.Int).Add(base, big.NewInt(6*VX))
	for i, p := range primes {
		require.Positive(t, p.Cmp(base), "prime %d below base", i)
		require.True(t, p.Cmp(top) <= 0, "prime %d above segment top", i)
	}
	// sampled independent confirmation with a stricter round count
	step := len(primes)/40 + 1
	for i := 0; i < len(primes); i += step {
		require.True(t, primes[i].ProbablyPrime(25), "survivor %v failed 25 rounds", primes[i])
	}
}

func TestSieveRejectsBadY(t *testing.T) {
	_, err := Sieve(nil, 25)
	require.Error(t, err)
	_, err = Sieve(big.NewInt(0), 25)
	require.Error(t, err)
	_, err = Sieve(big.NewInt(-3), 25)
	require.Error(t, err)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	obj := &Object{
		Y:    big.NewInt(123456789),
		Gaps: []uint16{4, 2, 6, 6, 2, 10, 2},
	}
	var buf bytes.Buffer
	require.NoError(t, obj.Encode(&buf))

	back, err := Decode(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Zero(t, back.Y.Cmp(obj.Y))
	require.Equal(t, obj.Gaps, back.Gaps)
}

func TestDecodeRejectsTampering(t *testing.T) {
	obj := &Object{
		Y:    big.NewInt(42),
		Gaps: []uint16{4, 2, 6, 6, 2, 10, 2, 4, 8},
	}
	var buf bytes.Buffer
	require.NoError(t, obj.Encode(&buf))
	good := buf.Bytes()

	// pristine payload decodes
	_, err := Decode(bytes.NewReader(good))
	require.NoError(t, err)

	// flip one byte of the last gap
	bad := append([]byte(nil), good...)
	bad[len(bad)-33] ^= 0x01
	_, err = Decode(bytes.NewReader(bad))
	require.ErrorIs(t, err, ErrHashMismatch)

	// flip one byte of the stored hash
	bad = append([]byte(nil), good...)
	bad[len(bad)-1] ^= 0x80
	_, err = Decode(bytes.NewReader(bad))
	require.ErrorIs(t, err, ErrHashMismatch)

	// truncate
	_, err = Decode(bytes.NewReader(good[:len(good)-5]))
	require.Error(t, err)
}

func TestDecodeRejectsGarbageY(t *testing.T) {
	obj := &Object{Y: big.NewInt(7), Gaps: []uint16{4}}
	var buf bytes.Buffer
	require.NoError(t, obj.Encode(&buf))
	raw := buf.Bytes()
	raw[8] = 'x' // y string becomes non-numeric
	_, err := Decode(bytes.NewReader(raw))
	require.Error(t, err)
}

func TestGapStreamMonotonic(t *testing.T) {
	if testing.Short() {
		t.Skip("short mode")
	}
	obj, err := Sieve(big.NewInt(3), 25)
	require.NoError(t, err)
	prev := obj.Base()
	for _, p := range obj.Primes() {
		require.Positive(t, p.Cmp(prev))
		prev = p
	}
}
