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

package table

import (
	"github.com/bitledger/chaindb/store/dberr"
	"github.com/bitledger/chaindb/store/element"
	"github.com/bitledger/chaindb/store/head"
	"github.com/bitledger/chaindb/store/link"
	"github.com/bitledger/chaindb/store/manager"
	"github.com/bitledger/chaindb/store/mmap"
)

// ArrayMap is a dense ordinal array of variable-size slab elements: the
// key is itself the logical index (e.g. block height), and ArrayHead's
// dynamically growing bucket array maps that index to the slab's byte
// offset in the body file.
type ArrayMap struct {
	headTbl  *head.ArrayHead
	mgr      *manager.Manager
	linkSize link.Size
}

// NewArrayMap binds an ArrayMap to already Open+Load-ed head and slab
// body files, with a head file pre-sized to initialBuckets ordinal
// slots.
func NewArrayMap(headFile, bodyFile *mmap.Map, linkSize link.Size, initialBuckets uint64) *ArrayMap {
	return &ArrayMap{
		headTbl:  head.NewArrayHead(headFile, linkSize, initialBuckets),
		mgr:      manager.New(bodyFile, linkSize, manager.RecordSlab),
		linkSize: linkSize,
	}
}

// Create initializes the head file (0xFF ordinal slots).
func (a *ArrayMap) Create() error { return a.headTbl.Create() }

// Verify reports whether the head file has a valid layout.
func (a *ArrayMap) Verify() bool { return a.headTbl.Verify() }

// Buckets returns the current allocated ordinal range, the upper bound
// a caller must probe up to in order to rediscover every written index.
func (a *ArrayMap) Buckets() uint64 { return a.headTbl.Buckets() }

// BodyCount returns the slab body's byte count recorded in the head file.
func (a *ArrayMap) BodyCount() (link.Link, error) { return a.headTbl.BodyCount() }

// Backup records the slab body's current byte count into the head file.
func (a *ArrayMap) Backup() error { return a.headTbl.SetBodyCount(a.mgr.Count()) }

// Restore truncates the slab body to the byte count recorded in the
// head file.
func (a *ArrayMap) Restore() error {
	count, err := a.headTbl.BodyCount()
	if err != nil {
		return err
	}
	if !a.mgr.Truncate(count) {
		return dberr.ErrRestoreTable
	}
	return nil
}

// Put encodes elem as a new slab and records its offset at ordinal
// index, growing the head's bucket array as needed.
func (a *ArrayMap) Put(index uint64, elem element.Element) error {
	size := elem.Size()
	offset, ok := a.mgr.Allocate(link.Link(size))
	if !ok {
		if a.mgr.IsFull() {
			return dberr.ErrDiskFull
		}
		return dberr.ErrCreateTable
	}
	acc := a.mgr.Get(offset)
	if acc == nil {
		return dberr.ErrUnloadedFile
	}
	defer acc.Close()
	data := acc.Data()
	if len(data) < size {
		return dberr.ErrIntegrity
	}
	w := element.NewWriter(data[:size])
	elem.EncodeTo(w)
	if !w.Valid() {
		return dberr.ErrIntegrity
	}
	if !a.headTbl.Push(index, offset) {
		return dberr.ErrCreateTable
	}
	return nil
}

// Get decodes the slab recorded at ordinal index into elem. Returns
// dberr.ErrIntegrity if index was never written.
func (a *ArrayMap) Get(index uint64, elem element.Element) error {
	l := a.headTbl.At(index)
	if l.IsTerminal(a.linkSize) {
		return dberr.ErrIntegrity
	}
	acc := a.mgr.Get(l)
	if acc == nil {
		return dberr.ErrUnloadedFile
	}
	defer acc.Close()
	r := element.NewReader(acc.Data())
	elem.DecodeFrom(r)
	if !r.Valid() {
		return dberr.ErrIntegrity
	}
	return nil
}
