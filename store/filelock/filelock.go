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

// Package filelock implements the two sentinel-file locks that guard a
// store directory: FlushLock, a plain marker file whose mere presence at
// open means the previous session ended without a clean close (and so
// needs recovery), and ProcessLock, an OS-advisory exclusive lock that
// keeps two processes from ever opening the same store concurrently.
package filelock

import (
	"os"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"github.com/bitledger/chaindb/store/dberr"
)

// FlushLock marks, for the duration of a store session, that data may be
// inconsistent with its head bucket tables. It is created on open and
// removed on clean close; its existence at the next open is evidence of
// an unclean shutdown requiring Store recovery.
type FlushLock struct {
	path string
}

// NewFlushLock binds a FlushLock to path without touching the filesystem.
func NewFlushLock(path string) *FlushLock { return &FlushLock{path: path} }

// File returns the sentinel file path.
func (f *FlushLock) File() string { return f.path }

// IsLocked reports whether the sentinel file currently exists.
func (f *FlushLock) IsLocked() bool {
	_, err := os.Stat(f.path)
	return err == nil
}

// TryLock creates the sentinel file. Returns ErrFlushLock if it
// already exists, signalling the store was not closed cleanly.
func (f *FlushLock) TryLock() error {
	file, err := os.OpenFile(f.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return dberr.ErrFlushLock
	}
	return file.Close()
}

// TryUnlock removes the sentinel file. Returns nil if it did not exist
// (already unlocked is not an error at this layer).
func (f *FlushLock) TryUnlock() error {
	if err := os.Remove(f.path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return dberr.ErrFlushUnlock
	}
	return nil
}

// ProcessLock is an OS-advisory exclusive lock over a sentinel file,
// preventing a second process from opening the same store directory
// concurrently. A random diagnostic session id is generated at
// construction and exposed through Session; it is kept in memory only
// and is not written to the lock file.
type ProcessLock struct {
	path    string
	lock    *flock.Flock
	session string
}

// NewProcessLock binds a ProcessLock to path without touching the
// filesystem.
func NewProcessLock(path string) *ProcessLock {
	return &ProcessLock{path: path, lock: flock.New(path), session: uuid.NewString()}
}

// File returns the lock file path.
func (p *ProcessLock) File() string { return p.path }

// Session returns the diagnostic session id assigned at construction.
func (p *ProcessLock) Session() string { return p.session }

// TryLock attempts to obtain exclusive, non-blocking ownership of the
// lock file. Returns dberr.ErrProcessLock if another process (or another
// holder within this process) already holds it.
func (p *ProcessLock) TryLock() error {
	ok, err := p.lock.TryLock()
	if err != nil || !ok {
		return dberr.ErrProcessLock
	}
	return nil
}

// Unlock releases ownership. Idempotent.
func (p *ProcessLock) Unlock() error {
	if !p.lock.Locked() {
		return nil
	}
	if err := p.lock.Unlock(); err != nil {
		return dberr.ErrProcessUnlock
	}
	return nil
}
