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

// NoMap is a dense, append-only ordinal record array with no key and no
// chain: a link is simply the record's insertion ordinal. Used for
// tables keyed by an already-dense small integer, such as height to
// header. It reuses the ArrayHead head-file layout purely for the
// body-size bookkeeping Store.Snapshot/Close/recovery need, with zero
// buckets (no indexing through it).
type NoMap struct {
	headTbl *head.ArrayHead
	mgr     *manager.Manager
}

// NewNoMap binds a NoMap to already Open+Load-ed head and body files.
// payloadSize is the fixed record width.
func NewNoMap(headFile, bodyFile *mmap.Map, linkSize link.Size, payloadSize int) *NoMap {
	return &NoMap{
		headTbl: head.NewArrayHead(headFile, linkSize, 0),
		mgr:     manager.New(bodyFile, linkSize, payloadSize),
	}
}

// Create initializes the (bucket-less) head file.
func (n *NoMap) Create() error { return n.headTbl.Create() }

// Verify reports whether the head file has a valid layout.
func (n *NoMap) Verify() bool { return n.headTbl.Verify() }

// BodyCount returns the record count recorded in the head file.
func (n *NoMap) BodyCount() (link.Link, error) { return n.headTbl.BodyCount() }

// Backup records the body manager's current count into the head file.
func (n *NoMap) Backup() error { return n.headTbl.SetBodyCount(n.mgr.Count()) }

// Restore truncates the body to the count recorded in the head file.
func (n *NoMap) Restore() error {
	count, err := n.headTbl.BodyCount()
	if err != nil {
		return err
	}
	if !n.mgr.Truncate(count) {
		return dberr.ErrRestoreTable
	}
	return nil
}

// PutLink appends elem as the next ordinal record, returning its link.
func (n *NoMap) PutLink(elem element.Element) (link.Link, error) {
	l, ok := n.mgr.Allocate(1)
	if !ok {
		if n.mgr.IsFull() {
			return l, dberr.ErrDiskFull
		}
		return l, dberr.ErrCreateTable
	}
	acc := n.mgr.Get(l)
	if acc == nil {
		return l, dberr.ErrUnloadedFile
	}
	defer acc.Close()
	w := element.NewWriter(acc.Data())
	elem.EncodeTo(w)
	if !w.Valid() {
		return l, dberr.ErrIntegrity
	}
	return l, nil
}

// Get decodes the record at ordinal link l into elem.
func (n *NoMap) Get(l link.Link, elem element.Element) error {
	acc := n.mgr.Get(l)
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

// Count returns the number of records appended so far.
func (n *NoMap) Count() link.Link { return n.mgr.Count() }
