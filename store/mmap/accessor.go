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

package mmap

import "sync"

// Accessor is a scoped handle over a [begin,end) byte window inside a
// Map's current mapping. Obtaining an Accessor holds the map's remap lock
// shared for the Accessor's lifetime, which blocks any concurrent Allocate
// that needs to grow the mapping. Callers must not hold an Accessor while
// invoking a writer that might cause the same table to remap: that is the
// one deadlock this type cannot protect against on its own (see
// iterator.Iterator for the documented pattern of collecting links first
// and releasing before writing).
type Accessor struct {
	data    []byte
	release func()
	once    sync.Once
}

func newAccessor(data []byte, release func()) *Accessor {
	return &Accessor{data: data, release: release}
}

// Data returns the full byte window. Callers must not retain slices of it
// beyond Close, as a subsequent remap invalidates the backing array.
func (a *Accessor) Data() []byte { return a.data }

// Size returns the length of the byte window.
func (a *Accessor) Size() int { return len(a.data) }

// Offset returns the bounds-checked view starting at byte n within the
// window, or nil if n exceeds the window size.
func (a *Accessor) Offset(n int) []byte {
	if n < 0 || n > len(a.data) {
		return nil
	}
	return a.data[n:]
}

// Close releases the remap-shared lock held by this accessor. Idempotent.
func (a *Accessor) Close() {
	a.once.Do(func() {
		if a.release != nil {
			a.release()
		}
	})
}
