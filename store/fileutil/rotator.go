// Copyright 2022-2026 The N42 Authors
// This file is part of the N42 library.
//
// The N42 library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The N42 library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the N42 library. If not, see <http://www.gnu.org/licenses/>.

//go:build unix

package fileutil

import "os"

// Rotator stages a snapshot into a scratch directory and publishes it
// with a single atomic rename, so a reader never observes a
// partially-written snapshot directory. The two slot names keep fixed
// roles: each publish removes the published slot and renames the
// staging slot over it, and the next Stage recreates the staging slot.
type Rotator struct {
	root      string // parent directory holding both slots
	primary   string // published snapshot directory name
	temporary string // scratch staging directory name
}

// NewRotator binds a Rotator to a parent directory with the given
// published and staging slot names.
func NewRotator(root, primary, temporary string) *Rotator {
	return &Rotator{root: root, primary: primary, temporary: temporary}
}

// Stage clears and recreates the temporary staging directory, returning
// its path for the caller to populate.
func (r *Rotator) Stage() (string, error) {
	path := r.root + "/" + r.temporary
	if err := ClearDirectory(path); err != nil {
		return "", err
	}
	return path, nil
}

// Publish atomically replaces the primary snapshot directory with the
// populated staging directory.
func (r *Rotator) Publish() error {
	primary := r.root + "/" + r.primary
	temporary := r.root + "/" + r.temporary
	_ = os.RemoveAll(primary)
	return Rename(temporary, primary)
}

// Primary returns the published snapshot directory path.
func (r *Rotator) Primary() string {
	return r.root + "/" + r.primary
}
