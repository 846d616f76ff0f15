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

// Package fileutil collects the directory and file primitives the store
// builds its create/open/snapshot/recovery orchestration on top of.
package fileutil

import (
	"io"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"github.com/bitledger/chaindb/store/dberr"
)

// IsDirectory reports whether directory exists and is a directory.
func IsDirectory(directory string) bool {
	info, err := os.Stat(directory)
	return err == nil && info.IsDir()
}

// IsFile reports whether filename exists and is a regular file.
func IsFile(filename string) bool {
	info, err := os.Stat(filename)
	return err == nil && !info.IsDir()
}

// CreateDirectory creates directory (and parents) if it does not already
// exist. Returns nil whether or not it already existed.
func CreateDirectory(directory string) error {
	if err := os.MkdirAll(directory, 0o755); err != nil {
		return dberr.ErrMissingDirectory
	}
	return nil
}

// ClearDirectory removes directory and all contents, then recreates it
// empty. Used before a temporary/ staging directory is repopulated for a
// snapshot.
func ClearDirectory(directory string) error {
	if err := os.RemoveAll(directory); err != nil {
		return dberr.ErrClearDirectory
	}
	return CreateDirectory(directory)
}

// Remove deletes a file or empty directory. Not an error if it does not
// exist.
func Remove(name string) error {
	if err := os.Remove(name); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Rename performs an atomic directory or file rename, the mechanism the
// store uses to publish a staged snapshot directory in a single step.
func Rename(from, to string) error {
	if err := os.Rename(from, to); err != nil {
		return dberr.ErrRenameDirectory
	}
	return nil
}

// Copy copies a single file's contents from src to dst, failing if dst
// already exists.
func Copy(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return dberr.ErrCopyDirectory
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return dberr.ErrCopyDirectory
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return dberr.ErrCopyDirectory
	}
	return out.Sync()
}

// CopyDirectory copies every regular file directly inside from into to
// (non-recursive), creating to if necessary.
func CopyDirectory(from, to string) error {
	if err := CreateDirectory(to); err != nil {
		return err
	}
	entries, err := os.ReadDir(from)
	if err != nil {
		return dberr.ErrCopyDirectory
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		src := filepath.Join(from, entry.Name())
		dst := filepath.Join(to, entry.Name())
		_ = os.Remove(dst)
		if err := Copy(src, dst); err != nil {
			return err
		}
	}
	return nil
}

// Size returns the byte size of filename.
func Size(filename string) (int64, error) {
	info, err := os.Stat(filename)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// Space returns the bytes of free space available on the volume
// containing path.
func Space(path string) (uint64, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return 0, err
	}
	return stat.Bavail * uint64(stat.Bsize), nil
}
