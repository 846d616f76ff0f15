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

// Package schema holds the sample concrete tables that exercise the
// HashMap and ArrayMap table assemblies: Header (hashmap, fixed record,
// uint256 field), Tx (hashmap, slab, snappy-compressed payload), and
// Confirmed (arraymap, roaring-bitmap gap index). NoMap is not used here.
package schema

import (
	"github.com/holiman/uint256"

	"github.com/bitledger/chaindb/store/element"
)

// HeaderKeySize is the byte width of a block hash key.
const HeaderKeySize = 32

// Header is a block header record keyed by its 32-byte hash. Total
// carries the chain's running total-difficulty-style accumulator, the
// one field in this schema wide enough to need a 256-bit integer.
type Header struct {
	Height     uint32
	ParentHash [32]byte
	Total      uint256.Int
}

// Size returns the fixed encoded length of a Header.
func (h Header) Size() int {
	return 4 + 32 + 32 // height + parent hash + 256-bit total, big-endian
}

// EncodeTo writes h's fields in fixed order.
func (h Header) EncodeTo(w *element.Writer) {
	w.WriteUint32(h.Height)
	w.WriteBytes(h.ParentHash[:])
	total := h.Total.Bytes32()
	w.WriteBytes(total[:])
}

// DecodeFrom reads h's fields in fixed order.
func (h *Header) DecodeFrom(r *element.Reader) {
	h.Height = r.ReadUint32()
	copy(h.ParentHash[:], r.ReadBytes(32))
	total := r.ReadBytes(32)
	if r.Valid() {
		h.Total.SetBytes(total)
	}
}
