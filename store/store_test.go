//go:build unix

package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/holiman/uint256"

	"github.com/bitledger/chaindb/conf"
	"github.com/bitledger/chaindb/store/schema"
)

func testConfig(t *testing.T) conf.StoreConfig {
	t.Helper()
	cfg := conf.DefaultStoreConfig(t.TempDir())
	cfg.HeaderBuckets = 4
	cfg.TxBuckets = 4
	cfg.ConfirmedInitialBuckets = 8
	cfg.MapMinimumSize = 4096
	return cfg
}

func TestCreateOpenPutGetClose(t *testing.T) {
	cfg := testConfig(t)
	if err := Create(cfg); err != nil {
		t.Fatalf("Create: %v", err)
	}

	s, err := Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	var hash [32]byte
	hash[0] = 0x01
	h := &schema.Header{Height: 42, Total: *uint256.NewInt(7)}
	copy(h.ParentHash[:], hash[:])
	if err := s.PutHeader(hash, h); err != nil {
		t.Fatalf("PutHeader: %v", err)
	}

	got, ok := s.GetHeader(hash)
	if !ok {
		t.Fatal("expected header to be found")
	}
	if got.Height != 42 {
		t.Fatalf("Height = %d, want 42", got.Height)
	}

	var txHash [32]byte
	txHash[0] = 0x02
	tx := &schema.Tx{Raw: []byte("a transaction body")}
	if err := s.PutTx(txHash, tx); err != nil {
		t.Fatalf("PutTx: %v", err)
	}
	gotTx, ok := s.GetTx(txHash)
	if !ok {
		t.Fatal("expected tx to be found")
	}
	if string(gotTx.Raw) != string(tx.Raw) {
		t.Fatalf("Raw = %q, want %q", gotTx.Raw, tx.Raw)
	}

	if err := s.ConfirmHeight(0, 1000); err != nil {
		t.Fatalf("ConfirmHeight: %v", err)
	}
	if gap, ok := s.NextGap(5); !ok || gap != 1 {
		t.Fatalf("NextGap = %d, %v, want 1, true", gap, ok)
	}

	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if _, err := os.Stat(filepath.Join(cfg.Path, flushLockFile)); !os.IsNotExist(err) {
		t.Fatal("expected flush lock removed after clean close")
	}
}

func TestOpenAfterCreateVerifiesHeads(t *testing.T) {
	cfg := testConfig(t)
	if err := Create(cfg); err != nil {
		t.Fatalf("Create: %v", err)
	}
	s, err := Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestSecondOpenWhileHeldFails(t *testing.T) {
	cfg := testConfig(t)
	if err := Create(cfg); err != nil {
		t.Fatalf("Create: %v", err)
	}
	s, err := Open(cfg)
	if err != nil {
		t.Fatalf("first Open: %v", err)
	}
	defer s.Close()

	if _, err := Open(cfg); err == nil {
		t.Fatal("expected second concurrent Open to fail on the process lock")
	}
}

func TestDirtyShutdownRecoveryTruncatesBody(t *testing.T) {
	cfg := testConfig(t)
	if err := Create(cfg); err != nil {
		t.Fatalf("Create: %v", err)
	}

	s, err := Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	var hash [32]byte
	hash[0] = 0xAA
	if err := s.PutHeader(hash, &schema.Header{Height: 1}); err != nil {
		t.Fatalf("PutHeader: %v", err)
	}
	if err := s.Snapshot(); err != nil {
		t.Fatalf("Snapshot: %v", err)
	}

	var hash2 [32]byte
	hash2[0] = 0xBB
	if err := s.PutHeader(hash2, &schema.Header{Height: 2}); err != nil {
		t.Fatalf("second PutHeader: %v", err)
	}

	// Simulate an unclean shutdown: release just the process lock,
	// leaving the flush-lock sentinel behind and the unrecorded second
	// header still appended past the snapshot's recorded body size.
	if err := s.processLock.Unlock(); err != nil {
		t.Fatalf("processLock.Unlock: %v", err)
	}
	if err := s.headerFiles.head.Flush(); err != nil {
		t.Fatalf("flush head: %v", err)
	}
	if err := s.headerFiles.body.Flush(); err != nil {
		t.Fatalf("flush body: %v", err)
	}

	if _, err := os.Stat(filepath.Join(cfg.Path, flushLockFile)); err != nil {
		t.Fatalf("expected flush lock sentinel to still be present: %v", err)
	}

	reopened, err := Open(cfg)
	if err != nil {
		t.Fatalf("reopen after dirty shutdown: %v", err)
	}
	defer reopened.Close()

	if _, ok := reopened.GetHeader(hash); !ok {
		t.Fatal("expected header recorded before snapshot to survive recovery")
	}
	if _, ok := reopened.GetHeader(hash2); ok {
		t.Fatal("expected header written after the last snapshot to be discarded by recovery")
	}
}

func TestSnapshotWithSecondaryDirectory(t *testing.T) {
	cfg := testConfig(t)
	cfg.SnapshotDir = "secondary"
	if err := Create(cfg); err != nil {
		t.Fatalf("Create: %v", err)
	}
	s, err := Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	if err := s.Snapshot(); err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	secondary := filepath.Join(cfg.Path, secondaryDir)
	if _, err := os.Stat(filepath.Join(secondary, "header.head")); err != nil {
		t.Fatalf("expected secondary header.head to exist: %v", err)
	}
}
