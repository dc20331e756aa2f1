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

// Package store persists bitmap and prime-list artifacts for the
// benchmark harness. Every payload carries a trailing blake2b-256
// content hash; readers reject anything that does not verify.
//
// File helpers transparently compress artifacts whose path carries a
// .zst or .s2 suffix.
package store

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/blake2b"

	"github.com/Zprime137/iZ-library/bitset"
	"github.com/Zprime137/iZ-library/compr"
)

// Output directories for auxiliary files, created on demand.
const (
	OutputDir = "output"
	IZmDir    = "output/iZm"
)

// ErrHashMismatch is returned when a stored payload fails its
// content-hash check.
var ErrHashMismatch = errors.New("store: content hash mismatch")

// EnsureOutputDirs creates the output directories with mode 0700.
func EnsureOutputDirs() error {
	for _, dir := range []string{OutputDir, IZmDir} {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("store: creating %s: %w", dir, err)
		}
	}
	return nil
}

// MarshalBitSet encodes a bitmap as
// {uint64 size, packed bytes, 32-byte hash}.
func MarshalBitSet(s *bitset.Set) []byte {
	raw := s.Bytes()
	out := make([]byte, 8, 8+len(raw)+32)
	binary.LittleEndian.PutUint64(out, s.Size())
	out = append(out, raw...)
	sum := blake2b.Sum256(raw)
	return append(out, sum[:]...)
}

// UnmarshalBitSet decodes the output of MarshalBitSet, validating
// the content hash.
func UnmarshalBitSet(buf []byte) (*bitset.Set, error) {
	if len(buf) < 8+32 {
		return nil, errors.New("store: bitset payload truncated")
	}
	size := binary.LittleEndian.Uint64(buf)
	nbytes := (size + 7) / 8
	if uint64(len(buf)) != 8+nbytes+32 {
		return nil, fmt.Errorf("store: bitset payload is %d bytes, want %d", len(buf), 8+nbytes+32)
	}
	raw := buf[8 : 8+nbytes]
	var stored [32]byte
	copy(stored[:], buf[8+nbytes:])
	if blake2b.Sum256(raw) != stored {
		return nil, ErrHashMismatch
	}
	s := bitset.New(size)
	copy(s.Bytes(), raw)
	return s, nil
}

// MarshalPrimeList encodes a prime list as
// {int32 count, uint64[count], 32-byte hash}.
func MarshalPrimeList(primes []uint64) []byte {
	out := make([]byte, 4, 4+8*len(primes)+32)
	binary.LittleEndian.PutUint32(out, uint32(int32(len(primes))))
	for _, p := range primes {
		out = binary.LittleEndian.AppendUint64(out, p)
	}
	sum := blake2b.Sum256(out[4:])
	return append(out, sum[:]...)
}

// UnmarshalPrimeList decodes the output of MarshalPrimeList,
// validating the content hash.
func UnmarshalPrimeList(buf []byte) ([]uint64, error) {
	if len(buf) < 4+32 {
		return nil, errors.New("store: prime list payload truncated")
	}
	count := int32(binary.LittleEndian.Uint32(buf))
	if count < 0 || uint64(len(buf)) != 4+8*uint64(count)+32 {
		return nil, fmt.Errorf("store: prime list payload is %d bytes for count %d", len(buf), count)
	}
	n := int(count)
	payload := buf[4 : 4+8*n]
	var stored [32]byte
	copy(stored[:], buf[4+8*n:])
	if blake2b.Sum256(payload) != stored {
		return nil, ErrHashMismatch
	}
	primes := make([]uint64, count)
	for i := range primes {
		primes[i] = binary.LittleEndian.Uint64(payload[8*i:])
	}
	return primes, nil
}

// codecFor maps a file suffix to its compression codec;
// an empty name means the artifact is stored raw.
func codecFor(path string) string {
	switch {
	case strings.HasSuffix(path, ".zst"):
		return "zstd"
	case strings.HasSuffix(path, ".s2"):
		return "s2"
	}
	return ""
}

// WriteFile writes an encoded artifact to path, compressing it if
// the path carries a codec suffix. Parent directories must exist;
// see EnsureOutputDirs.
func WriteFile(path string, encoded []byte) error {
	if name := codecFor(path); name != "" {
		encoded = compr.Compression(name).Compress(encoded, nil)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, encoded, 0600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// ReadFile reads an artifact written by WriteFile.
func ReadFile(path string) ([]byte, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if name := codecFor(path); name != "" {
		return compr.Decompression(name).Decompress(buf, nil)
	}
	return buf, nil
}

// WriteBitSetFile persists a bitmap artifact.
func WriteBitSetFile(path string, s *bitset.Set) error {
	return WriteFile(path, MarshalBitSet(s))
}

// ReadBitSetFile loads a bitmap artifact, validating its hash.
func ReadBitSetFile(path string) (*bitset.Set, error) {
	buf, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	return UnmarshalBitSet(buf)
}

// WritePrimeListFile persists a prime-list artifact.
func WritePrimeListFile(path string, primes []uint64) error {
	return WriteFile(path, MarshalPrimeList(primes))
}

// ReadPrimeListFile loads a prime-list artifact, validating its hash.
func ReadPrimeListFile(path string) ([]uint64, error) {
	buf, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	return UnmarshalPrimeList(buf)
}

// ArtifactPath joins the output directory with a file name.
func ArtifactPath(name string) string {
	return filepath.Join(OutputDir, name)
}
