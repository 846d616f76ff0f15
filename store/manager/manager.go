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

// Package manager translates table links into byte positions over a
// mapped file. Two table shapes are supported: record tables, where
// every record occupies a fixed width and a link is a record ordinal,
// and slab tables, where records vary in size and a link is itself a
// byte offset. Obtaining memory for a link is considered read access
// even though the bytes are mutable in place; growing the table (via
// Allocate) is the only write that can trigger a remap.
package manager

import (
	"github.com/bitledger/chaindb/store/fileutil"
	"github.com/bitledger/chaindb/store/link"
	"github.com/bitledger/chaindb/store/mmap"
)

// RecordSlab designates a slab (variable-size element) table: a link is
// a byte offset rather than a record ordinal.
const RecordSlab = 0

// Manager owns a memory map and the arithmetic for one table's link
// width and record shape.
type Manager struct {
	file       *mmap.Map
	linkSize   link.Size
	recordSize int // 0 for slab tables
}

// New binds a Manager to an already Open+Load-ed Map. recordSize is the
// fixed byte width of one record (the whole stride the table lays out,
// including any next-link and key fields) for record tables,
// or RecordSlab for slab tables where link values are byte offsets.
func New(file *mmap.Map, linkSize link.Size, recordSize int) *Manager {
	return &Manager{file: file, linkSize: linkSize, recordSize: recordSize}
}

// IsSlab reports whether this manager addresses a slab (variable-size)
// table.
func (m *Manager) IsSlab() bool { return m.recordSize == RecordSlab }

// positionToLink converts a byte offset into the Link unit appropriate
// for this table's shape.
func (m *Manager) positionToLink(position int) link.Link {
	if m.IsSlab() {
		return link.Link(position)
	}
	return link.Link(position / m.recordSize)
}

// linkToPosition converts a Link into its byte offset.
func (m *Manager) linkToPosition(l link.Link) int {
	if m.IsSlab() {
		return int(l)
	}
	return int(l) * m.recordSize
}

// Size returns the file's logical byte size.
func (m *Manager) Size() int { return m.file.Size() }

// Capacity returns the file's mapped byte capacity.
func (m *Manager) Capacity() int { return m.file.Capacity() }

// Count returns the logical element count: byte size for slab tables,
// record count for record tables.
func (m *Manager) Count() link.Link {
	return m.positionToLink(m.file.Size())
}

// Truncate reduces the logical element count. False if count exceeds the
// current logical count.
func (m *Manager) Truncate(count link.Link) bool {
	return m.file.Truncate(m.linkToPosition(count))
}

// Allocate grows the logical size by count elements (bytes for slab,
// records for record tables) and returns the link of the first newly
// allocated element, or the terminal sentinel and false on failure (disk
// full or a latched fault).
func (m *Manager) Allocate(count link.Link) (link.Link, bool) {
	chunk := int(count)
	if !m.IsSlab() {
		chunk = int(count) * m.recordSize
	}
	offset, ok := m.file.Allocate(chunk)
	if !ok {
		return link.Terminal(m.linkSize), false
	}
	return m.positionToLink(offset), true
}

// Get returns an Accessor positioned at link l's byte offset, spanning to
// the end of the logical region, or nil if l is out of range.
func (m *Manager) Get(l link.Link) *mmap.Accessor {
	return m.file.Get(m.linkToPosition(l))
}

// GetAll returns an Accessor over the entire logical region.
func (m *Manager) GetAll() *mmap.Accessor {
	return m.file.Get(0)
}

// Fault returns the latched fatal fault on the underlying map, if any.
func (m *Manager) Fault() error { return m.file.Fault() }

// IsFull reports the latched disk-full condition.
func (m *Manager) IsFull() bool { return m.file.IsFull() }

// Space returns the free space, in bytes, currently available on the
// volume backing this table's file. It does not report how much more
// space the failed allocation behind a disk-full latch needed.
func (m *Manager) Space() (uint64, error) {
	return fileutil.Space(m.file.File())
}

// Reload clears the disk-full latch after the operator has freed space,
// allowing subsequent Allocate calls to retry.
func (m *Manager) Reload() {
	m.file.ResetFull()
}
