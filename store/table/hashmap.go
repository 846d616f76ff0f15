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

// Package table assembles head and manager primitives into the three
// access patterns tables present to callers: HashMap (keyed hash chains),
// NoMap (dense ordinal record array, no chain), and ArrayMap (dense
// ordinal array of variable-size slabs).
package table

import (
	"bytes"

	"github.com/bitledger/chaindb/store/dberr"
	"github.com/bitledger/chaindb/store/element"
	"github.com/bitledger/chaindb/store/head"
	"github.com/bitledger/chaindb/store/iterator"
	"github.com/bitledger/chaindb/store/link"
	"github.com/bitledger/chaindb/store/manager"
	"github.com/bitledger/chaindb/store/mmap"
)

// HashMap composes a HashHead with a record or slab body manager: the
// classic keyed linked-list table. A record body's stride is
// link-width + key-size + payload-size; a slab body's payload varies
// per element and the stride is computed per Put.
type HashMap struct {
	headFile *mmap.Map
	bodyFile *mmap.Map
	headTbl  *head.HashHead
	mgr      *manager.Manager
	linkSize link.Size
	keySize  int
}

// NewHashMap binds a HashMap to already Open+Load-ed head and body files.
// payloadSize is the fixed element payload width, or manager.RecordSlab
// for a slab (variable-size) body.
func NewHashMap(headFile, bodyFile *mmap.Map, linkSize link.Size, bits uint, keySize, payloadSize int) *HashMap {
	recordSize := payloadSize
	if payloadSize != manager.RecordSlab {
		recordSize = int(linkSize) + keySize + payloadSize
	}
	return &HashMap{
		headFile: headFile,
		bodyFile: bodyFile,
		headTbl:  head.NewHashHead(headFile, linkSize, bits),
		mgr:      manager.New(bodyFile, linkSize, recordSize),
		linkSize: linkSize,
		keySize:  keySize,
	}
}

// Create initializes the head file (0xFF buckets, zero body count).
func (h *HashMap) Create() error {
	return h.headTbl.Create()
}

// Verify reports whether the head file's size matches its bucket count.
func (h *HashMap) Verify() bool { return h.headTbl.Verify() }

// BodyCount returns the body record count recorded in the head file.
func (h *HashMap) BodyCount() (link.Link, error) { return h.headTbl.BodyCount() }

// Backup records the body manager's current count into the head file,
// the step Store.Snapshot and Store.Close use to make recovery possible.
func (h *HashMap) Backup() error {
	return h.headTbl.SetBodyCount(h.mgr.Count())
}

// Restore truncates the body to the count recorded in the head file, the
// recovery step run when the flush lock signals an unclean shutdown.
func (h *HashMap) Restore() error {
	count, err := h.headTbl.BodyCount()
	if err != nil {
		return err
	}
	if !h.mgr.Truncate(count) {
		return dberr.ErrRestoreTable
	}
	return nil
}

func (h *HashMap) bucket(key []byte) link.Link {
	return h.headTbl.Index(head.HashKey(key))
}

// it returns a chain iterator starting at key's bucket head.
func (h *HashMap) it(key []byte) *iterator.Iterator {
	top := h.headTbl.Top(h.bucket(key))
	return iterator.New(h.mgr, h.linkSize, top)
}

// First returns the link of the most recently inserted element with the
// given key, or (terminal, false) if none exists.
func (h *HashMap) First(key []byte) (link.Link, bool) {
	it := h.it(key)
	defer it.Close()
	for it.Next() {
		if bytes.Equal(it.Payload()[:h.keySize], key) {
			return it.Link(), true
		}
	}
	return link.Terminal(h.linkSize), false
}

// Exists reports whether any element with key is present.
func (h *HashMap) Exists(key []byte) bool {
	_, ok := h.First(key)
	return ok
}

// Get decodes the element stored at link l into elem.
func (h *HashMap) Get(l link.Link, elem element.Element) error {
	acc := h.mgr.Get(l)
	if acc == nil {
		return dberr.ErrUnloadedFile
	}
	defer acc.Close()
	return h.decode(acc.Data(), elem)
}

// GetFromIterator decodes the element the iterator currently sits on,
// reusing its already-held accessor rather than acquiring a fresh one
// (the pattern that avoids the iterator/writer deadlock on the same
// table).
func (h *HashMap) GetFromIterator(it *iterator.Iterator, elem element.Element) error {
	data := it.Payload()
	if len(data) < h.keySize {
		return dberr.ErrIntegrity
	}
	r := element.NewReader(data[h.keySize:])
	elem.DecodeFrom(r)
	if !r.Valid() {
		return dberr.ErrIntegrity
	}
	return nil
}

func (h *HashMap) decode(data []byte, elem element.Element) error {
	if len(data) < int(h.linkSize)+h.keySize {
		return dberr.ErrIntegrity
	}
	payload := data[int(h.linkSize)+h.keySize:]
	r := element.NewReader(payload)
	elem.DecodeFrom(r)
	if !r.Valid() {
		return dberr.ErrIntegrity
	}
	return nil
}

// PutLink allocates a new record, encodes elem and key into it, and
// publishes it to the front of key's bucket chain, returning the new
// element's link. The allocated bytes are unreachable garbage (not
// corruption) if any step after allocation fails.
func (h *HashMap) PutLink(key []byte, elem element.Element) (link.Link, error) {
	size := elem.Size()
	stride := int(h.linkSize) + h.keySize + size

	var chunk link.Link
	if h.mgr.IsSlab() {
		chunk = link.Link(stride)
	} else {
		chunk = 1
	}

	offset, ok := h.mgr.Allocate(chunk)
	if !ok {
		if h.mgr.IsFull() {
			return link.Terminal(h.linkSize), dberr.ErrDiskFull
		}
		return link.Terminal(h.linkSize), dberr.ErrCreateTable
	}

	acc := h.mgr.Get(offset)
	if acc == nil {
		return link.Terminal(h.linkSize), dberr.ErrUnloadedFile
	}
	defer acc.Close()

	data := acc.Data()
	if len(data) < stride {
		return link.Terminal(h.linkSize), dberr.ErrIntegrity
	}

	copy(data[int(h.linkSize):int(h.linkSize)+h.keySize], key)

	fin := element.NewFinalizer(data[int(h.linkSize)+h.keySize : int(h.linkSize)+h.keySize+size])
	elem.EncodeTo(fin.Writer)

	bucket := h.bucket(key)
	fin.SetFinalizer(func() bool {
		return h.headTbl.Push(bucket, offset, data[:h.linkSize])
	})

	if !fin.Finalize() {
		return link.Terminal(h.linkSize), dberr.ErrCreateTable
	}
	return offset, nil
}

// Put is PutLink discarding the new link.
func (h *HashMap) Put(key []byte, elem element.Element) error {
	_, err := h.PutLink(key, elem)
	return err
}
