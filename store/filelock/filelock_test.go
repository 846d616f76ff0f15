package filelock

import (
	"path/filepath"
	"testing"
)

func TestFlushLockLifecycle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flush.lock")
	fl := NewFlushLock(path)

	if fl.IsLocked() {
		t.Fatal("expected not locked before creation")
	}
	if err := fl.TryLock(); err != nil {
		t.Fatalf("TryLock: %v", err)
	}
	if !fl.IsLocked() {
		t.Fatal("expected locked after TryLock")
	}
	if err := fl.TryLock(); err == nil {
		t.Fatal("expected second TryLock to fail (unclean shutdown detection)")
	}
	if err := fl.TryUnlock(); err != nil {
		t.Fatalf("TryUnlock: %v", err)
	}
	if fl.IsLocked() {
		t.Fatal("expected not locked after TryUnlock")
	}
	if err := fl.TryUnlock(); err != nil {
		t.Fatalf("second TryUnlock should be a no-op: %v", err)
	}
}

func TestProcessLockExclusive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "process.lock")
	a := NewProcessLock(path)
	b := NewProcessLock(path)

	if a.Session() == b.Session() {
		t.Fatal("expected distinct diagnostic session ids")
	}
	if err := a.TryLock(); err != nil {
		t.Fatalf("first TryLock: %v", err)
	}
	if err := b.TryLock(); err == nil {
		t.Fatal("expected second TryLock to fail while first holds the lock")
	}
	if err := a.Unlock(); err != nil {
		t.Fatalf("Unlock: %v", err)
	}
	if err := b.TryLock(); err != nil {
		t.Fatalf("TryLock after release: %v", err)
	}
	_ = b.Unlock()
}
