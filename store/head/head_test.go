//go:build unix

package head

import (
	"path/filepath"
	"testing"

	"github.com/bitledger/chaindb/store/link"
	"github.com/bitledger/chaindb/store/mmap"
)

func newTestFile(t *testing.T) *mmap.Map {
	t.Helper()
	path := filepath.Join(t.TempDir(), "head.dat")
	f := mmap.New(path, 4096, 50)
	if err := f.Open(); err != nil {
		t.Fatal(err)
	}
	if err := f.Load(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = f.Unload(); _ = f.Close() })
	return f
}

func TestHashHeadCreateAndPush(t *testing.T) {
	f := newTestFile(t)
	h := NewHashHead(f, link.Size4, 4) // 16 buckets
	if err := h.Create(); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !h.Verify() {
		t.Fatal("expected verify true after create")
	}
	if count, err := h.BodyCount(); err != nil || count != 0 {
		t.Fatalf("fresh BodyCount = %d, err=%v, want 0", count, err)
	}

	idx := h.Index(HashKey([]byte("some-key")))
	if got := h.Top(idx); got != link.Terminal(link.Size4) {
		t.Fatalf("expected empty bucket to read terminal, got %x", got)
	}

	var next [link.Size4]byte
	if !h.Push(idx, link.Link(7), next[:]) {
		t.Fatal("Push failed")
	}
	if got := link.FromBytes(next[:]); got != link.Terminal(link.Size4) {
		t.Fatalf("expected previous terminal written to next, got %x", got)
	}
	if got := h.Top(idx); got != link.Link(7) {
		t.Fatalf("Top after push = %d, want 7", got)
	}

	var next2 [link.Size4]byte
	if !h.Push(idx, link.Link(9), next2[:]) {
		t.Fatal("second Push failed")
	}
	if got := link.FromBytes(next2[:]); got != link.Link(7) {
		t.Fatalf("second push next = %d, want 7", got)
	}

	if err := h.SetBodyCount(link.Link(2)); err != nil {
		t.Fatalf("SetBodyCount: %v", err)
	}
	count, err := h.BodyCount()
	if err != nil || count != 2 {
		t.Fatalf("BodyCount = %d, err=%v", count, err)
	}
}

func TestArrayHeadGrowsOnPush(t *testing.T) {
	f := newTestFile(t)
	a := NewArrayHead(f, link.Size4, 2)
	if err := a.Create(); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if a.Buckets() != 2 {
		t.Fatalf("Buckets = %d, want 2", a.Buckets())
	}
	if count, err := a.BodyCount(); err != nil || count != 0 {
		t.Fatalf("fresh BodyCount = %d, err=%v, want 0", count, err)
	}

	if !a.Push(0, link.Link(5)) {
		t.Fatal("push within range failed")
	}
	if got := a.At(0); got != 5 {
		t.Fatalf("At(0) = %d, want 5", got)
	}

	// Push beyond current range forces growth.
	if !a.Push(10, link.Link(42)) {
		t.Fatal("push beyond range failed")
	}
	if a.Buckets() < 11 {
		t.Fatalf("expected growth to at least 11 buckets, got %d", a.Buckets())
	}
	if got := a.At(10); got != 42 {
		t.Fatalf("At(10) = %d, want 42", got)
	}
	if got := a.At(5); got != link.Terminal(link.Size4) {
		t.Fatalf("untouched slot At(5) = %x, want terminal", got)
	}
}
