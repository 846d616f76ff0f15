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

package head

import (
	"sync"

	"github.com/bitledger/chaindb/store/dberr"
	"github.com/bitledger/chaindb/store/link"
	"github.com/bitledger/chaindb/store/mmap"
)

// ArrayHead is a dynamically growing bucket table where the key is
// itself the bucket index (e.g. a block height). Less space efficient
// than HashHead since it never collapses unused ranges, but it never
// collides and needs no hash.
type ArrayHead struct {
	file           *mmap.Map
	linkSize       link.Size
	initialBuckets uint64
	mu             sync.RWMutex
}

// NewArrayHead binds an ArrayHead to an already Open+Load-ed head file,
// pre-sized to initialBuckets slots. A zero initialBuckets count leaves
// the table disabled.
func NewArrayHead(file *mmap.Map, linkSize link.Size, initialBuckets uint64) *ArrayHead {
	return &ArrayHead{file: file, linkSize: linkSize, initialBuckets: initialBuckets}
}

// Enabled reports whether this table was configured with any buckets.
func (a *ArrayHead) Enabled() bool { return a.initialBuckets > 0 }

// Buckets returns the current allocated bucket count, which grows as
// Push is asked to address indexes beyond the current range.
func (a *ArrayHead) Buckets() uint64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	size := a.file.Size()
	header := headerSize(a.linkSize)
	if size < header {
		return 0
	}
	return uint64((size - header) / int(a.linkSize))
}

// Size returns the head file's current logical byte size.
func (a *ArrayHead) Size() int { return a.file.Size() }

// Create initializes an empty head file sized to initialBuckets, all
// slots set to the terminal sentinel.
func (a *ArrayHead) Create() error {
	return create(a.file, a.linkSize, fileSize(a.linkSize, a.initialBuckets))
}

// Verify reports whether the head file's logical size is a valid
// header-plus-whole-number-of-buckets layout.
func (a *ArrayHead) Verify() bool {
	size := a.file.Size()
	header := headerSize(a.linkSize)
	if size < header {
		return false
	}
	return (size-header)%int(a.linkSize) == 0
}

// BodyCount returns the associated body table's record count as of the
// last SetBodyCount call.
func (a *ArrayHead) BodyCount() (link.Link, error) {
	if !a.Verify() {
		return 0, dberr.ErrVerifyTable
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	acc := a.file.Get(0)
	if acc == nil {
		return 0, dberr.ErrUnloadedFile
	}
	defer acc.Close()
	return readLink(acc.Data(), a.linkSize), nil
}

// SetBodyCount records the associated body table's current record count.
func (a *ArrayHead) SetBodyCount(count link.Link) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	acc := a.file.Get(0)
	if acc == nil {
		return dberr.ErrUnloadedFile
	}
	defer acc.Close()
	writeLink(acc.Data(), a.linkSize, count)
	return nil
}

// At returns the link stored at bucket index, or the terminal sentinel
// if index lies beyond the currently allocated range.
func (a *ArrayHead) At(index uint64) link.Link {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.atLocked(index)
}

func (a *ArrayHead) atLocked(index uint64) link.Link {
	acc := a.file.Get(bucketPosition(a.linkSize, link.Link(index)))
	if acc == nil || acc.Size() < int(a.linkSize) {
		return link.Terminal(a.linkSize)
	}
	defer acc.Close()
	return readLink(acc.Data(), a.linkSize)
}

// Push assigns current to bucket index, growing the bucket array (new
// slots filled with the terminal sentinel) if index lies beyond the
// current range.
func (a *ArrayHead) Push(index uint64, current link.Link) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	required := bucketPosition(a.linkSize, link.Link(index)) + int(a.linkSize)
	if required > a.file.Size() {
		if !a.growLocked(required) {
			return false
		}
	}

	acc := a.file.Get(bucketPosition(a.linkSize, link.Link(index)))
	if acc == nil {
		return false
	}
	defer acc.Close()
	writeLink(acc.Data(), a.linkSize, current)
	return true
}

func (a *ArrayHead) growLocked(required int) bool {
	chunk := required - a.file.Size()
	offset, ok := a.file.Allocate(chunk)
	if !ok {
		return false
	}
	acc := a.file.Get(offset)
	if acc == nil {
		return false
	}
	defer acc.Close()
	data := acc.Data()
	for i := range data {
		data[i] = 0xFF
	}
	return true
}
