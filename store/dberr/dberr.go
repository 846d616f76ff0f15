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

// Package dberr defines the sentinel error taxonomy used throughout the
// storage engine. This package provides a centralized location for error
// definitions so the memory map, locks, and table primitives all latch
// and report faults consistently.
package dberr

import "errors"

// =====================
// General
// =====================

var (
	// ErrUnknownState is returned when a component is asked to operate
	// from a state transition it does not recognize (e.g. double open).
	ErrUnknownState = errors.New("unknown state")

	// ErrIntegrity is returned when on-disk structure fails a basic
	// consistency check (e.g. a head file whose size does not match its
	// configured bucket count).
	ErrIntegrity = errors.New("integrity check failed")
)

// =====================
// Memory map
// =====================

var (
	// ErrOpenOpen is returned by Map.Open when the file is already open.
	ErrOpenOpen = errors.New("map already open")

	// ErrLoadLoaded is returned by Map.Load when already loaded.
	ErrLoadLoaded = errors.New("map already loaded")

	// ErrLoadFailure is returned when the initial mmap call fails.
	ErrLoadFailure = errors.New("map load failure")

	// ErrUnloadLocked reports an unload attempted while an accessor holds
	// the remap lock. Map.Unload does not return it: it waits for every
	// accessor to be closed.
	ErrUnloadLocked = errors.New("map unload: remap lock held")

	// ErrUnloadFailure is returned when msync/munmap/truncate fails during
	// unload.
	ErrUnloadFailure = errors.New("map unload failure")

	// ErrFlushUnloaded is returned by Map.Flush when not loaded.
	ErrFlushUnloaded = errors.New("map flush: not loaded")

	// ErrFlushFailure reports a failed flush. Map.Flush does not return
	// it: a failed msync there returns ErrFsyncFailure.
	ErrFlushFailure = errors.New("map flush failure")
)

// =====================
// OS / mmap syscalls
// =====================

var (
	// ErrDiskFull is latched when ftruncate/mmap fails due to lack of
	// space. Distinct from other faults because it may be cleared by the
	// operator via Map.ResetFull once space has been freed.
	ErrDiskFull = errors.New("disk full")

	// ErrMmapFailure wraps a failed mmap(2) call.
	ErrMmapFailure = errors.New("mmap failure")

	// ErrMremapFailure wraps a failed remap growth sequence.
	ErrMremapFailure = errors.New("mremap failure")

	// ErrMunmapFailure wraps a failed munmap(2) call.
	ErrMunmapFailure = errors.New("munmap failure")

	// ErrFtruncateFailure wraps a failed ftruncate(2) call.
	ErrFtruncateFailure = errors.New("ftruncate failure")

	// ErrFsyncFailure wraps a failed msync/fsync call.
	ErrFsyncFailure = errors.New("fsync failure")
)

// =====================
// Locks
// =====================

var (
	// ErrTransactorLock is returned when the store-wide transactor lock
	// cannot be acquired (should not occur under the advertised contract;
	// surfaced defensively).
	ErrTransactorLock = errors.New("transactor lock failed")

	// ErrProcessLock is returned when the interprocess lock is already
	// held by another process.
	ErrProcessLock = errors.New("store already owned by another process")

	// ErrFlushLock is returned when the flush-lock sentinel cannot be
	// created at open.
	ErrFlushLock = errors.New("flush lock create failed")

	// ErrFlushUnlock is returned when the flush-lock sentinel cannot be
	// removed at clean close.
	ErrFlushUnlock = errors.New("flush lock remove failed")

	// ErrProcessUnlock is returned when the interprocess lock cannot be
	// released.
	ErrProcessUnlock = errors.New("process lock release failed")
)

// =====================
// Filesystem
// =====================

var (
	// ErrMissingDirectory is returned when a required store directory
	// does not exist and could not be created.
	ErrMissingDirectory = errors.New("missing directory")

	// ErrClearDirectory is returned when a directory could not be
	// emptied (e.g. clearing temporary/ before a rotate).
	ErrClearDirectory = errors.New("clear directory failed")

	// ErrRenameDirectory is returned when an atomic directory rename
	// fails (temporary/ -> secondary/ swap).
	ErrRenameDirectory = errors.New("rename directory failed")

	// ErrCopyDirectory is returned when copying head files into the
	// snapshot secondary directory fails.
	ErrCopyDirectory = errors.New("copy directory failed")
)

// =====================
// Store
// =====================

var (
	// ErrMissingSnapshot reports that no snapshot directory is configured.
	// Store.Snapshot does not return it: with none configured it skips
	// the secondary copy and succeeds.
	ErrMissingSnapshot = errors.New("no snapshot directory configured")

	// ErrUnloadedFile is returned when an operation requires a loaded
	// table but the table is not loaded.
	ErrUnloadedFile = errors.New("table file not loaded")
)

// =====================
// Tables
// =====================

var (
	// ErrCreateTable is returned when Store.Create fails to initialize a
	// table's head/body files.
	ErrCreateTable = errors.New("create table failed")

	// ErrCloseTable is returned when a table fails to flush/unload
	// cleanly during Store.Close.
	ErrCloseTable = errors.New("close table failed")

	// ErrBackupTable is returned when a table's body size could not be
	// recorded into its head file during snapshot.
	ErrBackupTable = errors.New("backup table failed")

	// ErrRestoreTable is returned when dirty-shutdown recovery fails to
	// truncate a body to its recorded size.
	ErrRestoreTable = errors.New("restore table failed")

	// ErrVerifyTable is returned when a head file's size does not match
	// its configured bucket count plus the body-size prefix.
	ErrVerifyTable = errors.New("verify table failed")
)
