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

// Package link implements the width-parameterized link integer used by
// every table primitive: a record ordinal for record/array tables, or a
// byte offset for slab tables. A link is stored on disk as little-endian
// of its configured byte width (3, 4, 5 or 6 bytes) and held in memory as
// a native uint64 with the unused high bytes zero.
package link

import "encoding/binary"

// Size is the configured on-disk byte width of a Link for one table.
type Size int

// Supported link widths. Six bytes (48 bits) is the widest that still
// leaves every bit pattern representable in a uint64 with room to spare
// for the all-ones terminal sentinel.
const (
	Size3 Size = 3
	Size4 Size = 4
	Size5 Size = 5
	Size6 Size = 6
)

// Valid reports whether s is one of the supported link widths.
func (s Size) Valid() bool {
	return s >= Size3 && s <= Size6
}

// Link is an unsigned integer that identifies a record ordinal (record and
// array tables) or a byte offset (slab tables).
type Link uint64

// Terminal is the all-ones sentinel of width size: "no entry". It is never
// a valid link position.
func Terminal(size Size) Link {
	return Link(uint64(1)<<(8*uint(size)) - 1)
}

// IsTerminal reports whether l is the terminal sentinel for width size.
func (l Link) IsTerminal(size Size) bool {
	return l == Terminal(size)
}

// Bytes little-endian encodes l into a freshly allocated size-byte slice.
func (l Link) Bytes(size Size) []byte {
	buf := make([]byte, size)
	l.PutBytes(buf, size)
	return buf
}

// PutBytes little-endian encodes l into the first size bytes of dst. dst
// must be at least size bytes long.
func (l Link) PutBytes(dst []byte, size Size) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(l))
	copy(dst, buf[:size])
}

// FromBytes decodes a little-endian link of len(b) bytes (b must be 3..6
// bytes; any trailing bytes beyond 8 are ignored).
func FromBytes(b []byte) Link {
	var buf [8]byte
	n := len(b)
	if n > 8 {
		n = 8
	}
	copy(buf[:n], b[:n])
	return Link(binary.LittleEndian.Uint64(buf[:]))
}

// Uint64 returns the native representation of the link.
func (l Link) Uint64() uint64 { return uint64(l) }
