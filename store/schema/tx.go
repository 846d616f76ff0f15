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
	"github.com/golang/snappy"

	"github.com/bitledger/chaindb/store/element"
)

// TxKeySize is the byte width of a transaction hash key.
const TxKeySize = 32

// Tx is a raw transaction slab keyed by its 32-byte hash. The slab
// table's variable width is exactly what lets Raw vary in length; the
// bytes are snappy-compressed on the way in and decompressed on the way
// out, so Size reports the compressed length actually written plus its
// 4-byte length prefix.
type Tx struct {
	Raw []byte

	encoded []byte // set by Size, reused by EncodeTo to avoid compressing twice
}

// Size compresses Raw (caching the result) and returns the compressed
// length plus the 4-byte length prefix, which is what the slab allocator
// must reserve.
func (t *Tx) Size() int {
	t.encoded = snappy.Encode(nil, t.Raw)
	return 4 + len(t.encoded)
}

// EncodeTo writes the length of the already-compressed bytes computed by
// Size, then the bytes themselves.
func (t *Tx) EncodeTo(w *element.Writer) {
	if t.encoded == nil {
		t.encoded = snappy.Encode(nil, t.Raw)
	}
	w.WriteUint32(uint32(len(t.encoded)))
	w.WriteBytes(t.encoded)
}

// DecodeFrom reads the length prefix, then that many compressed bytes,
// and decompresses them as the transaction's raw bytes. The reader's
// window runs on past this slab to the end of the table, so the prefix
// is what bounds the read.
func (t *Tx) DecodeFrom(r *element.Reader) {
	n := r.ReadUint32()
	compressed := r.ReadBytes(int(n))
	if !r.Valid() {
		return
	}
	raw, err := snappy.Decode(nil, compressed)
	if err != nil {
		return
	}
	t.Raw = raw
}
