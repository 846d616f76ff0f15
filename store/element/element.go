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

// Package element defines the byte-stream contract every stored record
// type implements, and the Reader/Writer/Finalizer primitives tables use
// to move bytes between a record's Go representation and its mapped
// storage window.
package element

// Element is implemented by every type stored in a table. Size reports
// the fixed or computed encoded length (excluding the key and the
// link-width next-pointer fields the table itself manages). EncodeTo and DecodeFrom
// move bytes through a Writer/Reader; encoding errors accumulate on the
// stream itself rather than being returned eagerly, matching the
// byte_writer/byte_reader accumulate-then-check contract the lower
// layers use.
type Element interface {
	Size() int
	EncodeTo(w *Writer)
	DecodeFrom(r *Reader)
}
