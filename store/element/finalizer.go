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

// Finalizer wraps a Writer with a deferred callback that is only invoked
// once the caller decides the write succeeded. Table.Put reserves the
// record's link-to-next field, writes the element body through the
// embedded Writer, and only then calls Finalize to patch the next field
// and publish the bucket head — so a reader walking the hash chain never
// observes a bucket head pointing at a half-written record.
type Finalizer struct {
	*Writer
	finalize func() bool
}

// NewFinalizer wraps data for encoding with a deferred finalize step.
func NewFinalizer(data []byte) *Finalizer {
	return &Finalizer{Writer: NewWriter(data)}
}

// SetFinalizer installs the callback Finalize will invoke.
func (f *Finalizer) SetFinalizer(fn func() bool) {
	f.finalize = fn
}

// Finalize invokes the installed callback, but only if every write
// through the embedded Writer succeeded and a callback was installed.
func (f *Finalizer) Finalize() bool {
	if !f.Valid() || f.finalize == nil {
		return false
	}
	return f.finalize()
}
