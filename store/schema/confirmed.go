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

package schema

import (
	"sync"

	"github.com/RoaringBitmap/roaring"

	"github.com/bitledger/chaindb/store/element"
	"github.com/bitledger/chaindb/store/table"
)

// Mark is the fixed-size record stored per confirmed height: nothing
// beyond a timestamp, since presence in the table is itself the signal.
type Mark struct {
	UnixSeconds int64
}

// Size returns the fixed encoded length of a Mark.
func (Mark) Size() int { return 8 }

// EncodeTo writes m's timestamp.
func (m Mark) EncodeTo(w *element.Writer) { w.WriteUint64(uint64(m.UnixSeconds)) }

// DecodeFrom reads m's timestamp.
func (m *Mark) DecodeFrom(r *element.Reader) { m.UnixSeconds = int64(r.ReadUint64()) }

// Confirmed tracks which block heights have been fully confirmed,
// backed by an ArrayMap of Mark records for durable storage and an
// in-memory roaring bitmap for O(1)-ish gap queries: finding the lowest
// unconfirmed height below a given one, without walking the array, is
// the operation a backfill worker needs on every tick.
//
// The bitmap is a pure index over the ArrayMap's key space: it is
// rebuilt from the table on open (see Rebuild) and never itself
// persisted, so it can never drift out of sync with what was actually
// durably written.
type Confirmed struct {
	mu     sync.RWMutex
	bitmap *roaring.Bitmap
	tbl    *table.ArrayMap
}

// NewConfirmed wraps an already-created ArrayMap with a fresh, empty
// gap index. Call Rebuild after opening an existing store to populate
// it from the table's recorded contents.
func NewConfirmed(tbl *table.ArrayMap) *Confirmed {
	return &Confirmed{bitmap: roaring.New(), tbl: tbl}
}

// Confirm marks height as confirmed at unixSeconds, writing the
// durable record before updating the in-memory index so a reader can
// never observe a height set in the bitmap that is not yet in the
// table.
func (c *Confirmed) Confirm(height uint32, unixSeconds int64) error {
	if err := c.tbl.Put(uint64(height), Mark{UnixSeconds: unixSeconds}); err != nil {
		return err
	}
	c.mu.Lock()
	c.bitmap.Add(height)
	c.mu.Unlock()
	return nil
}

// IsConfirmed reports whether height is marked confirmed, consulting
// only the in-memory index.
func (c *Confirmed) IsConfirmed(height uint32) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.bitmap.Contains(height)
}

// NextGap returns the lowest height in [0, ceiling) that is not marked
// confirmed, and whether one exists. A backfill worker calls this to
// find the next height it needs to fetch.
func (c *Confirmed) NextGap(ceiling uint32) (uint32, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	full := roaring.New()
	full.AddRange(0, uint64(ceiling))
	full.AndNot(c.bitmap)
	if full.IsEmpty() {
		return 0, false
	}
	return full.Minimum(), true
}

// Count returns the number of confirmed heights recorded.
func (c *Confirmed) Count() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.bitmap.GetCardinality()
}

// Rebuild repopulates the gap index by probing every height below upTo
// in the underlying table and marking each one whose record decodes;
// callers supply the bound since ArrayMap itself has no native
// iteration and recovery only knows the slab body's byte extent, not
// which ordinals within it decoded successfully.
func (c *Confirmed) Rebuild(upTo uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bitmap.Clear()
	var m Mark
	for h := uint32(0); h < upTo; h++ {
		if err := c.tbl.Get(uint64(h), &m); err == nil {
			c.bitmap.Add(h)
		}
	}
}
