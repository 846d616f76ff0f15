//go:build unix

package fileutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDirectoryLifecycle(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "sub")
	if IsDirectory(dir) {
		t.Fatal("expected missing directory")
	}
	if err := CreateDirectory(dir); err != nil {
		t.Fatalf("CreateDirectory: %v", err)
	}
	if !IsDirectory(dir) {
		t.Fatal("expected directory to exist")
	}

	marker := filepath.Join(dir, "a")
	if err := os.WriteFile(marker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := ClearDirectory(dir); err != nil {
		t.Fatalf("ClearDirectory: %v", err)
	}
	if IsFile(marker) {
		t.Fatal("expected marker removed by ClearDirectory")
	}
}

func TestCopyAndCopyDirectory(t *testing.T) {
	root := t.TempDir()
	from := filepath.Join(root, "from")
	to := filepath.Join(root, "to")
	if err := CreateDirectory(from); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(from, "head"), []byte("123"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := CopyDirectory(from, to); err != nil {
		t.Fatalf("CopyDirectory: %v", err)
	}
	size, err := Size(filepath.Join(to, "head"))
	if err != nil {
		t.Fatal(err)
	}
	if size != 3 {
		t.Fatalf("copied size = %d, want 3", size)
	}
}

func TestRotatorStagePublish(t *testing.T) {
	root := t.TempDir()
	r := NewRotator(root, "snapshot", "snapshot.tmp")

	staged, err := r.Stage()
	if err != nil {
		t.Fatalf("Stage: %v", err)
	}
	if err := os.WriteFile(filepath.Join(staged, "bucket.head"), []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := r.Publish(); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if !IsFile(filepath.Join(r.Primary(), "bucket.head")) {
		t.Fatal("expected published file under primary")
	}

	staged2, err := r.Stage()
	if err != nil {
		t.Fatalf("second Stage: %v", err)
	}
	if err := os.WriteFile(filepath.Join(staged2, "bucket.head"), []byte("data2"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := r.Publish(); err != nil {
		t.Fatalf("second Publish: %v", err)
	}
	b, err := os.ReadFile(filepath.Join(r.Primary(), "bucket.head"))
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "data2" {
		t.Fatalf("expected republished content, got %q", b)
	}
}
