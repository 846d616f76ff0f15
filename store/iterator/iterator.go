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

// Package iterator walks the singly-linked hash-collision chains that
// hang off a head bucket. Every record begins with a link-width
// "next" field; the iterator reads it, exposes the remainder as the
// record's payload, then follows it.
package iterator

import (
	"github.com/bitledger/chaindb/store/link"
	"github.com/bitledger/chaindb/store/manager"
	"github.com/bitledger/chaindb/store/mmap"
)

// Iterator walks one hash chain starting from a bucket's top link.
//
// Each call to Next holds the table's remap lock shared for exactly one
// record's lifetime (via the mmap.Accessor it wraps), released as soon
// as the iterator advances past it or is closed. That is enough to keep
// a concurrent Allocate-triggered remap from invalidating the slice the
// caller is reading, but it also means an iterator must NOT be held
// across a write to the same table: if that write has to grow the body
// file, its remap waits for the exclusive lock this iterator's accessor
// is holding shared, and the calling goroutine deadlocks. Collect what
// you need from the chain first, release, then write.
type Iterator struct {
	mgr      *manager.Manager
	linkSize link.Size
	current  link.Link
	value    link.Link
	acc      *mmap.Accessor
}

// New starts an Iterator over mgr's records, beginning at the chain head
// start (typically a HashHead.Top or ArrayHead.At result).
func New(mgr *manager.Manager, linkSize link.Size, start link.Link) *Iterator {
	return &Iterator{mgr: mgr, linkSize: linkSize, current: start}
}

// Next advances to the next record in the chain, returning false once
// the terminal sentinel is reached or the underlying record cannot be
// read. The previous record's accessor is released before the new one
// is acquired.
func (it *Iterator) Next() bool {
	it.release()
	if it.current.IsTerminal(it.linkSize) {
		return false
	}
	acc := it.mgr.Get(it.current)
	if acc == nil || acc.Size() < int(it.linkSize) {
		if acc != nil {
			acc.Close()
		}
		return false
	}
	next := link.FromBytes(acc.Data()[:it.linkSize])
	it.acc = acc
	it.value = it.current
	it.current = next
	return true
}

// Link returns the link of the record the iterator currently sits on.
func (it *Iterator) Link() link.Link { return it.value }

// Payload returns the bytes from just after the current record's
// next-link field to the end of the table's logical region: the record's
// own key and payload come first, followed by every later record. The
// slice is only valid until the next call to Next or Close.
func (it *Iterator) Payload() []byte {
	if it.acc == nil {
		return nil
	}
	return it.acc.Data()[it.linkSize:]
}

// Close releases any accessor the iterator currently holds. Idempotent,
// and safe to call after Next has returned false.
func (it *Iterator) Close() {
	it.release()
}

func (it *Iterator) release() {
	if it.acc != nil {
		it.acc.Close()
		it.acc = nil
	}
}
