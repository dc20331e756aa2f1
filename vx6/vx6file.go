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
	"fmt"
	"os"
	"path/filepath"

	"github.com/Zprime137/iZ-library/store"
)

// FileName returns the conventional artifact name for a row,
// rooted in the iZm output directory.
func (o *Object) FileName() string {
	return filepath.Join(store.IZmDir, fmt.Sprintf("vx6_y%s.bin", o.Y))
}

// WriteFile persists the object at path (or, if path is empty, at
// FileName under the output directory, creating it on demand).
// The write goes through a temporary file and a rename, so readers
// never observe a torn artifact.
func (o *Object) WriteFile(path string) error {
	if path == "" {
		if err := store.EnsureOutputDirs(); err != nil {
			return err
		}
		path = o.FileName()
	}
	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}
	if err := o.Encode(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

// ReadFile loads and validates an object written by WriteFile.
func ReadFile(path string) (*Object, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}
