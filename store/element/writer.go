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

package element

import (
	"encoding/binary"
	"io"

	"github.com/bitledger/chaindb/store/link"
)

// Writer is a forward-only cursor over a fixed byte window, the sink
// side of Reader. Like Reader, short-write errors accumulate on the
// stream; check Err once after a sequence of writes.
type Writer struct {
	data []byte
	pos  int
	err  error
}

// NewWriter wraps data (already allocated to the element's full encoded
// size) for sequential encoding.
func NewWriter(data []byte) *Writer {
	return &Writer{data: data}
}

// Err returns the first short-write error encountered, if any.
func (w *Writer) Err() error { return w.err }

// Valid reports whether every write so far has succeeded.
func (w *Writer) Valid() bool { return w.err == nil }

// Position returns the writer's current cursor offset.
func (w *Writer) Position() int { return w.pos }

func (w *Writer) place(n int) []byte {
	if w.err != nil {
		return nil
	}
	if n < 0 || w.pos+n > len(w.data) {
		w.err = io.ErrShortWrite
		return nil
	}
	b := w.data[w.pos : w.pos+n]
	w.pos += n
	return b
}

// WriteByte writes a single byte.
func (w *Writer) WriteByte(v byte) {
	b := w.place(1)
	if b == nil {
		return
	}
	b[0] = v
}

// WriteBytes copies v into the stream.
func (w *Writer) WriteBytes(v []byte) {
	b := w.place(len(v))
	if b == nil {
		return
	}
	copy(b, v)
}

// WriteUint32 writes a little-endian uint32.
func (w *Writer) WriteUint32(v uint32) {
	b := w.place(4)
	if b == nil {
		return
	}
	binary.LittleEndian.PutUint32(b, v)
}

// WriteUint64 writes a little-endian uint64.
func (w *Writer) WriteUint64(v uint64) {
	b := w.place(8)
	if b == nil {
		return
	}
	binary.LittleEndian.PutUint64(b, v)
}

// WriteLink writes a little-endian link of the given width.
func (w *Writer) WriteLink(v link.Link, size link.Size) {
	b := w.place(int(size))
	if b == nil {
		return
	}
	v.PutBytes(b, size)
}

// PutLinkAt overwrites the link-width slot at byte offset n without
// moving the cursor. Used by Finalizer to patch the reserved
// link-to-next field once the rest of the record has been written.
func (w *Writer) PutLinkAt(n int, v link.Link, size link.Size) bool {
	if n < 0 || n+int(size) > len(w.data) {
		return false
	}
	v.PutBytes(w.data[n:], size)
	return true
}
