//go:build unix

package schema

import (
	"path/filepath"
	"testing"

	"github.com/holiman/uint256"

	"github.com/bitledger/chaindb/store/link"
	"github.com/bitledger/chaindb/store/mmap"
	"github.com/bitledger/chaindb/store/table"
)

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

func TestHeaderRoundTrip(t *testing.T) {
	headFile, bodyFile := openPair(t)
	hm := table.NewHashMap(headFile, bodyFile, link.Size4, 8, HeaderKeySize, Header{}.Size())
	if err := hm.Create(); err != nil {
		t.Fatalf("Create: %v", err)
	}

	key := make([]byte, HeaderKeySize)
	key[0] = 0x42
	want := &Header{Height: 9001, Total: *uint256.NewInt(123456789)}
	copy(want.ParentHash[:], key)

	if err := hm.Put(key, want); err != nil {
		t.Fatalf("Put: %v", err)
	}

	l, ok := hm.First(key)
	if !ok {
		t.Fatal("expected First to find inserted header")
	}
	var got Header
	if err := hm.Get(l, &got); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Height != want.Height {
		t.Fatalf("Height = %d, want %d", got.Height, want.Height)
	}
	if got.Total.Cmp(&want.Total) != 0 {
		t.Fatalf("Total = %s, want %s", got.Total.String(), want.Total.String())
	}
}

func TestTxCompressedRoundTrip(t *testing.T) {
	headFile, bodyFile := openPair(t)
	hm := table.NewHashMap(headFile, bodyFile, link.Size4, 8, TxKeySize, 0)
	if err := hm.Create(); err != nil {
		t.Fatalf("Create: %v", err)
	}

	key := make([]byte, TxKeySize)
	key[0] = 0x07
	raw := make([]byte, 512)
	for i := range raw {
		raw[i] = byte(i % 7) // repetitive so snappy actually shrinks it
	}
	want := &Tx{Raw: raw}
	if err := hm.Put(key, want); err != nil {
		t.Fatalf("Put: %v", err)
	}

	l, ok := hm.First(key)
	if !ok {
		t.Fatal("expected First to find inserted tx")
	}
	var got Tx
	if err := hm.Get(l, &got); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got.Raw) != len(raw) {
		t.Fatalf("Raw length = %d, want %d", len(got.Raw), len(raw))
	}
	for i := range raw {
		if got.Raw[i] != raw[i] {
			t.Fatalf("Raw[%d] = %d, want %d", i, got.Raw[i], raw[i])
		}
	}
}

func TestConfirmedGapTracking(t *testing.T) {
	headFile, bodyFile := openPair(t)
	am := table.NewArrayMap(headFile, bodyFile, link.Size4, 16)
	if err := am.Create(); err != nil {
		t.Fatalf("Create: %v", err)
	}
	c := NewConfirmed(am)

	if err := c.Confirm(0, 1000); err != nil {
		t.Fatalf("Confirm(0): %v", err)
	}
	if err := c.Confirm(1, 1001); err != nil {
		t.Fatalf("Confirm(1): %v", err)
	}
	if err := c.Confirm(3, 1003); err != nil {
		t.Fatalf("Confirm(3): %v", err)
	}

	if !c.IsConfirmed(1) {
		t.Fatal("expected height 1 confirmed")
	}
	if c.IsConfirmed(2) {
		t.Fatal("expected height 2 unconfirmed")
	}
	gap, ok := c.NextGap(10)
	if !ok || gap != 2 {
		t.Fatalf("NextGap = %d, %v, want 2, true", gap, ok)
	}
	if c.Count() != 3 {
		t.Fatalf("Count = %d, want 3", c.Count())
	}

	c.Rebuild(10)
	if !c.IsConfirmed(3) {
		t.Fatal("expected Rebuild to rediscover height 3 from the table")
	}
	gap, ok = c.NextGap(10)
	if !ok || gap != 2 {
		t.Fatalf("after Rebuild: NextGap = %d, %v, want 2, true", gap, ok)
	}
}
