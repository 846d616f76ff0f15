//go:build unix

package table

import (
	"path/filepath"
	"testing"

	"github.com/bitledger/chaindb/store/element"
	"github.com/bitledger/chaindb/store/link"
	"github.com/bitledger/chaindb/store/mmap"
)

// openPair opens+loads a head/body file pair under a fresh temp dir.
func openPair(t *testing.T) (*mmap.Map, *mmap.Map) {
	t.Helper()
	dir := t.TempDir()
	headFile := mmap.New(filepath.Join(dir, "table.head"), 4096, 50)
	bodyFile := mmap.New(filepath.Join(dir, "table.body"), 4096, 50)
	for _, f := range []*mmap.Map{headFile, bodyFile} {
		if err := f.Open(); err != nil {
			t.Fatal(err)
		}
		if err := f.Load(); err != nil {
			t.Fatal(err)
		}
	}
	t.Cleanup(func() {
		_ = headFile.Unload()
		_ = headFile.Close()
		_ = bodyFile.Unload()
		_ = bodyFile.Close()
	})
	return headFile, bodyFile
}

type testElem struct{ v uint32 }

func (e testElem) Size() int { return 4 }
func (e testElem) EncodeTo(w *element.Writer) {
	w.WriteUint32(e.v)
}
func (e *testElem) DecodeFrom(r *element.Reader) {
	e.v = r.ReadUint32()
}

func TestHashMapPutGetFindMostRecent(t *testing.T) {
	headFile, bodyFile := openPair(t)
	hm := NewHashMap(headFile, bodyFile, link.Size4, 4, 4, 4)
	if err := hm.Create(); err != nil {
		t.Fatalf("Create: %v", err)
	}

	key := []byte("key1")
	if err := hm.Put(key, &testElem{1}); err != nil {
		t.Fatalf("first Put: %v", err)
	}
	if err := hm.Put(key, &testElem{2}); err != nil {
		t.Fatalf("second Put: %v", err)
	}

	if !hm.Exists(key) {
		t.Fatal("expected key to exist")
	}
	l, ok := hm.First(key)
	if !ok {
		t.Fatal("expected First to find a link")
	}
	var got testElem
	if err := hm.Get(l, &got); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.v != 2 {
		t.Fatalf("expected most recent insert (2), got %d", got.v)
	}

	if hm.Exists([]byte("miss")) {
		t.Fatal("expected missing key to report absent")
	}
}

func TestHashMapBackupRestore(t *testing.T) {
	headFile, bodyFile := openPair(t)
	hm := NewHashMap(headFile, bodyFile, link.Size4, 4, 4, 4)
	if err := hm.Create(); err != nil {
		t.Fatal(err)
	}
	if err := hm.Put([]byte("key1"), &testElem{1}); err != nil {
		t.Fatal(err)
	}
	if err := hm.Backup(); err != nil {
		t.Fatalf("Backup: %v", err)
	}
	count, err := hm.BodyCount()
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Fatalf("BodyCount = %d, want 1", count)
	}
	if err := hm.Put([]byte("key2"), &testElem{2}); err != nil {
		t.Fatal(err)
	}
	if err := hm.Restore(); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if got := hm.mgr.Count(); got != 1 {
		t.Fatalf("body count after Restore = %d, want 1", got)
	}
}

func TestNoMapAppendAndGet(t *testing.T) {
	headFile, bodyFile := openPair(t)
	nm := NewNoMap(headFile, bodyFile, link.Size4, 4)
	if err := nm.Create(); err != nil {
		t.Fatalf("Create: %v", err)
	}

	l0, err := nm.PutLink(&testElem{10})
	if err != nil {
		t.Fatalf("PutLink: %v", err)
	}
	l1, err := nm.PutLink(&testElem{20})
	if err != nil {
		t.Fatalf("second PutLink: %v", err)
	}
	if l1 != l0+1 {
		t.Fatalf("expected dense ordinals, got %d then %d", l0, l1)
	}

	var got testElem
	if err := nm.Get(l1, &got); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.v != 20 {
		t.Fatalf("got %d, want 20", got.v)
	}
	if nm.Count() != 2 {
		t.Fatalf("Count = %d, want 2", nm.Count())
	}
}

func TestArrayMapSparseOrdinals(t *testing.T) {
	headFile, bodyFile := openPair(t)
	am := NewArrayMap(headFile, bodyFile, link.Size4, 4)
	if err := am.Create(); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := am.Put(100, &testElem{77}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	var got testElem
	if err := am.Get(100, &got); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.v != 77 {
		t.Fatalf("got %d, want 77", got.v)
	}

	var missing testElem
	if err := am.Get(5, &missing); err == nil {
		t.Fatal("expected error reading unwritten ordinal")
	}
}
