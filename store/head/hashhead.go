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

// HashHead is a fixed-size bucket table: a key's 64-bit digest is
// reduced modulo the (power-of-two) bucket count to find its chain
// head. A HashHead with bits == 0 is disabled (one or zero buckets).
type HashHead struct {
	file     *mmap.Map
	linkSize link.Size
	bits     uint
	buckets  uint64
	mask     uint64
	mu       sync.RWMutex
}

// NewHashHead binds a HashHead to an already Open+Load-ed head file with
// 2^bits buckets.
func NewHashHead(file *mmap.Map, linkSize link.Size, bits uint) *HashHead {
	buckets := uint64(1) << bits
	return &HashHead{file: file, linkSize: linkSize, bits: bits, buckets: buckets, mask: buckets - 1}
}

// Enabled reports whether this table has more than one bucket.
func (h *HashHead) Enabled() bool { return h.buckets > 1 }

// Buckets returns the fixed bucket count.
func (h *HashHead) Buckets() uint64 { return h.buckets }

// Size returns the expected head file byte size for this bucket count.
func (h *HashHead) Size() int { return fileSize(h.linkSize, h.buckets) }

// Create initializes an empty head file: a zero body count followed by
// buckets all set to the terminal sentinel.
func (h *HashHead) Create() error {
	return create(h.file, h.linkSize, h.Size())
}

// Verify reports whether the head file's logical size matches the
// expected size for its configured bucket count.
func (h *HashHead) Verify() bool {
	return h.file.Size() == h.Size()
}

// Index reduces a key digest to a bucket index via bitmask.
func (h *HashHead) Index(keyDigest uint64) link.Link {
	return link.Link(keyDigest & h.mask)
}

// BodyCount returns the record count the associated body table held as
// of the last SetBodyCount call (used for snapshot/recovery).
func (h *HashHead) BodyCount() (link.Link, error) {
	if !h.Verify() {
		return 0, dberr.ErrVerifyTable
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	acc := h.file.Get(0)
	if acc == nil {
		return 0, dberr.ErrUnloadedFile
	}
	defer acc.Close()
	return readLink(acc.Data(), h.linkSize), nil
}

// SetBodyCount records the associated body table's current record count
// into the head file's prefix.
func (h *HashHead) SetBodyCount(count link.Link) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	acc := h.file.Get(0)
	if acc == nil {
		return dberr.ErrUnloadedFile
	}
	defer acc.Close()
	writeLink(acc.Data(), h.linkSize, count)
	return nil
}

// Top returns the current chain head link stored at bucket index.
func (h *HashHead) Top(index link.Link) link.Link {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.topLocked(index)
}

func (h *HashHead) topLocked(index link.Link) link.Link {
	acc := h.file.Get(bucketPosition(h.linkSize, index))
	if acc == nil {
		return link.Terminal(h.linkSize)
	}
	defer acc.Close()
	return readLink(acc.Data(), h.linkSize)
}

// Push atomically replaces the link stored at bucket index with current,
// writing the value that was previously there into nextOut (the new
// element's own reserved next-link field) under the same exclusive lock.
// Because both writes happen inside one critical section, no reader can
// ever observe the bucket pointing at current before current's own next
// field has been set: a reader needs the head's shared lock to read the
// bucket in the first place, and that can't be granted until this
// function returns.
func (h *HashHead) Push(index link.Link, current link.Link, nextOut []byte) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	previous := h.topLocked(index)
	acc := h.file.Get(bucketPosition(h.linkSize, index))
	if acc == nil {
		return false
	}
	defer acc.Close()
	writeLink(acc.Data(), h.linkSize, current)
	writeLink(nextOut, h.linkSize, previous)
	return true
}
