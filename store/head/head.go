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

// Package head implements the bucket-table header file shared by every
// table assembly: a body-record-count prefix followed by an array of
// bucket links. HashHead hashes a key down into a fixed bucket count;
// ArrayHead uses the key itself as the bucket index and grows the
// bucket array on demand. Both serialize concurrent pushes with a single
// RWMutex: reads (Top, BodyCount) take it shared, and the push-to-front
// swap takes it exclusive just long enough to read-then-write one slot.
package head

import (
	"hash/fnv"

	"github.com/bitledger/chaindb/store/link"
	"github.com/bitledger/chaindb/store/mmap"
)

// layout: [bodyCount link][bucket[0]]...[bucket[buckets-1]]

func headerSize(linkSize link.Size) int { return int(linkSize) }

func bucketPosition(linkSize link.Size, index link.Link) int {
	return headerSize(linkSize) + int(index)*int(linkSize)
}

func fileSize(linkSize link.Size, buckets uint64) int {
	return headerSize(linkSize) + int(buckets)*int(linkSize)
}

// HashKey reduces an arbitrary key's bytes to a 64-bit digest for use
// with HashHead.Index. FNV-1a is used rather than a second cryptographic
// hash because table keys are already block or transaction hashes; all
// this needs to do is scatter those bits across the bucket range cheaply.
func HashKey(key []byte) uint64 {
	h := fnv.New64a()
	_, _ = h.Write(key)
	return h.Sum64()
}

func readLink(data []byte, linkSize link.Size) link.Link {
	return link.FromBytes(data[:linkSize])
}

func writeLink(data []byte, linkSize link.Size, value link.Link) {
	value.PutBytes(data, linkSize)
}

func create(file *mmap.Map, linkSize link.Size, size int) error {
	if _, ok := file.Allocate(size); !ok {
		return file.Fault()
	}
	acc := file.Get(0)
	if acc == nil {
		return nil
	}
	defer acc.Close()
	data := acc.Data()
	for i := 0; i < len(data); i++ {
		data[i] = 0xFF
	}
	// The body-count prefix starts at zero, not the terminal sentinel:
	// a fresh table's associated body is empty.
	for i := 0; i < headerSize(linkSize) && i < len(data); i++ {
		data[i] = 0
	}
	return nil
}
