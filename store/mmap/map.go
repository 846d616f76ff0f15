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

//go:build unix

// Package mmap implements the memory-mapped file abstraction that every
// table primitive is built on: a byte region whose logical size grows on
// demand, shared by concurrent readers and mediated against a remap that
// must briefly exclude them. See Accessor for the reader-side handle.
package mmap

import (
	"os"
	"sync"
	"sync/atomic"

	"golang.org/x/sys/unix"

	"github.com/bitledger/chaindb/store/dberr"
)

const defaultMinimum = 1

// Map provides thread safe access to a memory-mapped file. Its state
// machine is closed -> open(fd) -> loaded(fd, mmap) -> open(fd) -> closed.
// Load is valid only from open; Unload returns to open; Close is valid
// only when not loaded.
type Map struct {
	filename  string
	minimum   int
	expansion int // percent

	// Protected by remapMu. Held shared by every live Accessor and
	// exclusive by the remap path inside Allocate. Obtaining an Accessor
	// is considered read access despite remapMu being internal state.
	// capacity lives here rather than under fieldMu because it only ever
	// changes in lockstep with data, inside remap: keeping both under
	// the same lock means growing never needs to hold fieldMu and
	// remapMu at once, which is what let a blocked Get (remapMu then
	// fieldMu) and a blocked Allocate (fieldMu then remapMu) deadlock
	// against each other.
	remapMu  sync.RWMutex
	data     []byte
	capacity int

	// Protected by fieldMu.
	fieldMu sync.RWMutex
	file    *os.File
	opened  bool
	loaded  bool
	logical int

	full  atomic.Bool
	fault atomic.Value // stores error, first fatal fault wins
}

// New constructs a Map bound to filename. minimum is the smallest mapped
// region (bytes); expansionPercent controls how aggressively the backing
// file grows past a computed requirement (see toCapacity).
func New(filename string, minimum int, expansionPercent int) *Map {
	if minimum <= 0 {
		minimum = defaultMinimum
	}
	return &Map{filename: filename, minimum: minimum, expansion: expansionPercent}
}

// File returns the filesystem path of the mapped file.
func (m *Map) File() string { return m.filename }

// IsOpen reports whether the backing file descriptor is open.
func (m *Map) IsOpen() bool {
	m.fieldMu.RLock()
	defer m.fieldMu.RUnlock()
	return m.opened
}

// IsLoaded reports whether the file is currently mapped into memory.
func (m *Map) IsLoaded() bool {
	m.fieldMu.RLock()
	defer m.fieldMu.RUnlock()
	return m.loaded
}

// Open opens (creating if necessary) the backing file. Must be called
// from closed state; repeat calls are errors.
func (m *Map) Open() error {
	m.fieldMu.Lock()
	defer m.fieldMu.Unlock()
	if m.opened {
		return dberr.ErrOpenOpen
	}
	f, err := os.OpenFile(m.filename, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		m.setFirstFault(err)
		return err
	}
	m.file = f
	m.opened = true
	return nil
}

// Close closes the file descriptor. Must be called while unloaded.
// Idempotent.
func (m *Map) Close() error {
	m.fieldMu.Lock()
	defer m.fieldMu.Unlock()
	if !m.opened {
		return nil
	}
	if m.loaded {
		return dberr.ErrUnknownState
	}
	err := m.file.Close()
	m.opened = false
	m.file = nil
	return err
}

// Load mmaps the current file length, or a minimum-sized region if the
// file is empty. Must be called from the open, not-loaded state.
func (m *Map) Load() error {
	m.fieldMu.Lock()
	if !m.opened {
		m.fieldMu.Unlock()
		return dberr.ErrUnknownState
	}
	if m.loaded {
		m.fieldMu.Unlock()
		return dberr.ErrLoadLoaded
	}
	file := m.file
	m.fieldMu.Unlock()

	info, err := file.Stat()
	if err != nil {
		m.setFirstFault(err)
		return err
	}

	logical := int(info.Size())
	capacity := logical
	if capacity < m.minimum {
		capacity = m.minimum
	}
	if err := file.Truncate(int64(capacity)); err != nil {
		m.setFirstFault(err)
		return dberr.ErrFtruncateFailure
	}

	data, err := unix.Mmap(int(file.Fd()), 0, capacity, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		m.setFirstFault(err)
		return dberr.ErrLoadFailure
	}

	// data and capacity are committed together, under remapMu alone,
	// never nested inside fieldMu: see the field comment above.
	m.remapMu.Lock()
	m.data = data
	m.capacity = capacity
	m.remapMu.Unlock()

	m.fieldMu.Lock()
	m.logical = logical
	m.loaded = true
	m.fieldMu.Unlock()
	return nil
}

// Size returns the current logical size of the memory map (zero if
// closed).
func (m *Map) Size() int {
	m.fieldMu.RLock()
	defer m.fieldMu.RUnlock()
	return m.logical
}

// Capacity returns the current mapped capacity (zero if unloaded).
func (m *Map) Capacity() int {
	m.remapMu.RLock()
	defer m.remapMu.RUnlock()
	return m.capacity
}

// Truncate reduces the logical size to size. Returns false if size
// exceeds the current logical size (growth is only via Allocate).
func (m *Map) Truncate(size int) bool {
	m.fieldMu.Lock()
	defer m.fieldMu.Unlock()
	if size > m.logical {
		return false
	}
	m.logical = size
	return true
}

// toCapacity computes the grown capacity for a required byte count: the
// minimum if required fits within it, otherwise required grown by the
// configured expansion percent and page-aligned.
func (m *Map) toCapacity(required int) int {
	if required <= m.minimum {
		return m.minimum
	}
	grown := required
	if m.expansion > 0 {
		grown = required + (required*m.expansion)/100
	}
	return pageAlign(grown)
}

const pageSize = 4096

func pageAlign(n int) int {
	if n%pageSize == 0 {
		return n
	}
	return ((n / pageSize) + 1) * pageSize
}

// Allocate increases the logical size by chunk bytes and returns the
// offset of the first allocated byte, or (0, false) on eof (disk full or
// latched fault). If logical+chunk exceeds capacity it remaps first;
// most allocations do not need to grow and so only ever take fieldMu,
// never blocking a concurrent Get's remapMu hold. fieldMu and remapMu
// are never held at once here: the capacity check, the grow, and the
// logical commit are three separate critical sections, re-checked in a
// loop so a concurrent grow (or Truncate) never gets lost or double
// applied.
func (m *Map) Allocate(chunk int) (int, bool) {
	if chunk < 0 {
		return 0, false
	}
	if err, _ := m.fault.Load().(error); err != nil {
		return 0, false
	}
	if m.full.Load() {
		return 0, false
	}

	for {
		m.remapMu.RLock()
		capacity := m.capacity
		m.remapMu.RUnlock()

		m.fieldMu.Lock()
		required := m.logical + chunk
		if required <= capacity {
			offset := m.logical
			m.logical = required
			m.fieldMu.Unlock()
			return offset, true
		}
		m.fieldMu.Unlock()

		if !m.remap(m.toCapacity(required)) {
			return 0, false
		}
		// Loop back and re-check logical+chunk against the now-larger
		// capacity under a fresh fieldMu section: another Allocate may
		// have grown logical (or even raced us to the same remap)
		// while remapMu was held exclusively.
	}
}

// remap grows the backing file to at least newCapacity and remaps it,
// unless a concurrent caller already grew past it. Takes remapMu
// exclusively, which waits for every live Accessor's shared hold to
// drain, and never touches fieldMu: growing must never need to wait on
// both locks at once, or it can deadlock against a Get blocked the
// other way round (remapMu then fieldMu).
func (m *Map) remap(newCapacity int) bool {
	m.remapMu.Lock()
	defer m.remapMu.Unlock()

	if newCapacity <= m.capacity {
		return true
	}

	if len(m.data) > 0 {
		_ = unix.Msync(m.data, unix.MS_SYNC)
		if err := unix.Munmap(m.data); err != nil {
			m.setFirstFault(err)
			m.data = nil
			m.capacity = 0
			return false
		}
		m.data = nil
		m.capacity = 0
	}

	if err := m.file.Truncate(int64(newCapacity)); err != nil {
		m.setFirstFault(classifyTruncateError(err))
		return false
	}

	data, err := unix.Mmap(int(m.file.Fd()), 0, newCapacity, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		m.setFirstFault(dberr.ErrMremapFailure)
		return false
	}

	m.data = data
	m.capacity = newCapacity
	return true
}

func classifyTruncateError(err error) error {
	if err == unix.ENOSPC {
		return dberr.ErrDiskFull
	}
	return dberr.ErrFtruncateFailure
}

func (m *Map) setFirstFault(err error) {
	if err == nil {
		return
	}
	if err == unix.ENOSPC || err == dberr.ErrDiskFull {
		m.full.Store(true)
		return
	}
	m.fault.CompareAndSwap(nil, err)
}

// Get returns a shared-lock-holding Accessor over [base+offset, base+
// logical), or nil if a fatal fault is latched or offset is out of range.
func (m *Map) Get(offset int) *Accessor {
	if err, _ := m.fault.Load().(error); err != nil {
		return nil
	}
	m.remapMu.RLock()
	m.fieldMu.RLock()
	logical := m.logical
	m.fieldMu.RUnlock()

	if offset < 0 || offset > logical || offset > len(m.data) {
		m.remapMu.RUnlock()
		return nil
	}
	end := logical
	if end > len(m.data) {
		end = len(m.data)
	}
	window := m.data[offset:end]
	released := false
	return newAccessor(window, func() {
		if !released {
			released = true
			m.remapMu.RUnlock()
		}
	})
}

// Flush msyncs the capacity range: a best-effort durability marker. Must
// be called while loaded.
func (m *Map) Flush() error {
	m.fieldMu.RLock()
	defer m.fieldMu.RUnlock()
	if !m.loaded {
		return dberr.ErrFlushUnloaded
	}
	m.remapMu.RLock()
	defer m.remapMu.RUnlock()
	if len(m.data) == 0 {
		return nil
	}
	if err := unix.Msync(m.data, unix.MS_SYNC); err != nil {
		m.setFirstFault(dberr.ErrFsyncFailure)
		return dberr.ErrFsyncFailure
	}
	return nil
}

// Unload flushes, truncates the file to the logical size, and unmaps.
// Restartable (a subsequent Load reopens a fresh mapping) and idempotent.
// Like Allocate, this never holds fieldMu and remapMu at once.
func (m *Map) Unload() error {
	m.fieldMu.Lock()
	if !m.loaded {
		m.fieldMu.Unlock()
		return nil
	}
	file := m.file
	logical := m.logical
	m.fieldMu.Unlock()

	m.remapMu.Lock()
	if len(m.data) > 0 {
		_ = unix.Msync(m.data, unix.MS_SYNC)
		if err := unix.Munmap(m.data); err != nil {
			m.setFirstFault(dberr.ErrUnloadFailure)
			m.remapMu.Unlock()
			return dberr.ErrUnloadFailure
		}
	}
	if err := file.Truncate(int64(logical)); err != nil {
		m.setFirstFault(dberr.ErrUnloadFailure)
		m.remapMu.Unlock()
		return dberr.ErrUnloadFailure
	}
	m.data = nil
	m.capacity = 0
	m.remapMu.Unlock()

	m.fieldMu.Lock()
	m.loaded = false
	m.fieldMu.Unlock()
	return nil
}

// Fault returns the latched fatal fault, if any.
func (m *Map) Fault() error {
	err, _ := m.fault.Load().(error)
	return err
}

// IsFull reports the latched disk-full condition.
func (m *Map) IsFull() bool { return m.full.Load() }

// ResetFull clears the disk-full latch. The caller is responsible for
// having actually made room before retrying allocations.
func (m *Map) ResetFull() { m.full.Store(false) }
