package element

import (
	"testing"

	"github.com/bitledger/chaindb/store/link"
)

type sample struct {
	height uint32
	hash   [4]byte
}

func (s sample) Size() int { return 4 + 4 }

func (s sample) EncodeTo(w *Writer) {
	w.WriteUint32(s.height)
	w.WriteBytes(s.hash[:])
}

func (s *sample) DecodeFrom(r *Reader) {
	s.height = r.ReadUint32()
	copy(s.hash[:], r.ReadBytes(4))
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	in := sample{height: 42, hash: [4]byte{1, 2, 3, 4}}
	buf := make([]byte, in.Size())
	w := NewWriter(buf)
	in.EncodeTo(w)
	if !w.Valid() {
		t.Fatalf("encode failed: %v", w.Err())
	}

	var out sample
	r := NewReader(buf)
	out.DecodeFrom(r)
	if !r.Valid() {
		t.Fatalf("decode failed: %v", r.Err())
	}
	if out != in {
		t.Fatalf("round trip mismatch: got %+v want %+v", out, in)
	}
}

func TestReaderShortReadLatches(t *testing.T) {
	r := NewReader([]byte{1, 2})
	_ = r.ReadUint32()
	if r.Valid() {
		t.Fatal("expected short read to invalidate reader")
	}
	if r.ReadByte() != 0 {
		t.Fatal("expected reads after error to return zero value")
	}
}

func TestWriterShortWriteLatches(t *testing.T) {
	w := NewWriter(make([]byte, 2))
	w.WriteUint32(1)
	if w.Valid() {
		t.Fatal("expected short write to invalidate writer")
	}
}

func TestFinalizerOnlyRunsOnValidWrite(t *testing.T) {
	called := false
	buf := make([]byte, link.Size4)
	f := NewFinalizer(buf)
	f.SetFinalizer(func() bool {
		called = true
		return f.PutLinkAt(0, link.Link(5), link.Size4)
	})
	f.WriteLink(link.Terminal(link.Size4), link.Size4)
	if !f.Finalize() {
		t.Fatal("expected finalize to succeed on a valid write")
	}
	if !called {
		t.Fatal("expected finalizer callback to run")
	}

	called = false
	bad := NewFinalizer(make([]byte, 1))
	bad.SetFinalizer(func() bool { called = true; return true })
	bad.WriteLink(link.Terminal(link.Size4), link.Size4) // overruns, latches error
	if bad.Finalize() {
		t.Fatal("expected finalize to refuse after a short write")
	}
	if called {
		t.Fatal("finalizer callback must not run after a failed write")
	}
}
