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
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math/big"

	"golang.org/x/crypto/blake2b"
)

// ErrHashMismatch is returned by Decode when the stored content hash
// does not match the gap payload.
var ErrHashMismatch = errors.New("vx6: content hash mismatch")

// The wire layout, little-endian throughout:
//
//	uint64          length of the y string, including its trailing NUL
//	bytes           y in decimal ASCII, NUL-terminated
//	uint64          gap count
//	uint16[count]   prime gaps
//	[32]byte        blake2b-256 of the raw gap bytes

// gapBytes packs gaps as consecutive little-endian uint16s; this is
// the exact byte string the content hash covers.
func gapBytes(gaps []uint16) []byte {
	b := make([]byte, 2*len(gaps))
	for i, g := range gaps {
		binary.LittleEndian.PutUint16(b[2*i:], g)
	}
	return b
}

// Encode writes the object in the wire layout above.
func (o *Object) Encode(w io.Writer) error {
	bw := bufio.NewWriter(w)
	ystr := o.Y.String()
	if err := binary.Write(bw, binary.LittleEndian, uint64(len(ystr)+1)); err != nil {
		return err
	}
	bw.WriteString(ystr)
	bw.WriteByte(0)
	if err := binary.Write(bw, binary.LittleEndian, uint64(len(o.Gaps))); err != nil {
		return err
	}
	payload := gapBytes(o.Gaps)
	if _, err := bw.Write(payload); err != nil {
		return err
	}
	sum := blake2b.Sum256(payload)
	if _, err := bw.Write(sum[:]); err != nil {
		return err
	}
	return bw.Flush()
}

// maxGaps caps the gap count a reader will allocate for; one segment
// can never hold more survivors than it has candidates.
const maxGaps = 2 * VX

// Decode reads an object in the wire layout above, validating both
// the y string and the content hash. A corrupted payload is rejected,
// never returned.
func Decode(r io.Reader) (*Object, error) {
	br := bufio.NewReader(r)
	var ylen uint64
	if err := binary.Read(br, binary.LittleEndian, &ylen); err != nil {
		return nil, fmt.Errorf("vx6: reading y length: %w", err)
	}
	if ylen == 0 || ylen > 1<<20 {
		return nil, fmt.Errorf("vx6: implausible y length %d", ylen)
	}
	ybuf := make([]byte, ylen)
	if _, err := io.ReadFull(br, ybuf); err != nil {
		return nil, fmt.Errorf("vx6: reading y: %w", err)
	}
	if ybuf[ylen-1] != 0 {
		return nil, errors.New("vx6: y string is not NUL-terminated")
	}
	y, ok := new(big.Int).SetString(string(ybuf[:ylen-1]), 10)
	if !ok {
		return nil, fmt.Errorf("vx6: invalid y string %q", ybuf[:ylen-1])
	}

	var count uint64
	if err := binary.Read(br, binary.LittleEndian, &count); err != nil {
		return nil, fmt.Errorf("vx6: reading gap count: %w", err)
	}
	if count > maxGaps {
		return nil, fmt.Errorf("vx6: implausible gap count %d", count)
	}
	payload := make([]byte, 2*count)
	if _, err := io.ReadFull(br, payload); err != nil {
		return nil, fmt.Errorf("vx6: reading gaps: %w", err)
	}
	var stored [32]byte
	if _, err := io.ReadFull(br, stored[:]); err != nil {
		return nil, fmt.Errorf("vx6: reading hash: %w", err)
	}
	if blake2b.Sum256(payload) != stored {
		return nil, ErrHashMismatch
	}

	o := &Object{Y: y, Hash: stored}
	if count > 0 {
		o.Gaps = make([]uint16, count)
		for i := range o.Gaps {
			o.Gaps[i] = binary.LittleEndian.Uint16(payload[2*i:])
		}
	}
	return o, nil
}
