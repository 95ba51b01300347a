package index_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/basalt-db/chunkstore/errmsg"
	"github.com/basalt-db/chunkstore/header"
	"github.com/basalt-db/chunkstore/index"
)

func openTemp(t *testing.T) *os.File {
	fp, err := os.Create(filepath.Join(t.TempDir(), "store.db"))
	if err != nil {
		t.Fatalf("create temp file: %v", err)
	}
	t.Cleanup(func() { fp.Close() })
	return fp
}

func TestNewAllZero(t *testing.T) {
	h := header.New()
	h.SetArraySize(5)
	a := index.New(h)
	if a.N() != 5 {
		t.Fatalf("N = %d, want 5", a.N())
	}
	for i := uint64(0); i < 5; i++ {
		e, err := a.Elem(i)
		if err != nil {
			t.Fatalf("Elem(%d): %v", i, err)
		}
		if e.Offset != 0 || e.Length != 0 {
			t.Fatalf("slot %d not zero: %+v", i, e)
		}
	}
}

func TestElemOutOfBounds(t *testing.T) {
	h := header.New()
	h.SetArraySize(3)
	a := index.New(h)
	if _, err := a.Elem(3); err != errmsg.ErrOutOfBounds {
		t.Fatalf("Elem(3) = %v, want ErrOutOfBounds", err)
	}
}

func TestCommitAndLoadRoundTrip(t *testing.T) {
	fp := openTemp(t)
	h := header.New()
	h.SetArraySize(4)
	a := index.New(h)

	e, err := a.Elem(2)
	if err != nil {
		t.Fatalf("Elem: %v", err)
	}
	e.Offset, e.Length = 1000, 42

	if err := h.Commit(fp); err != nil {
		t.Fatalf("header Commit: %v", err)
	}
	if err := a.Commit(fp, h); err != nil {
		t.Fatalf("array Commit: %v", err)
	}
	if err := h.Commit(fp); err != nil {
		t.Fatalf("header re-Commit: %v", err)
	}

	loaded, err := index.Load(h, fp)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	le, err := loaded.Elem(2)
	if err != nil {
		t.Fatalf("Elem: %v", err)
	}
	if le.Offset != 1000 || le.Length != 42 {
		t.Fatalf("round-tripped entry = %+v, want {1000 42}", le)
	}
}

func TestCommitBackLinksToPreviousSnapshot(t *testing.T) {
	fp := openTemp(t)
	h := header.New()
	h.SetArraySize(2)
	a := index.New(h)

	if err := a.Commit(fp, h); err != nil {
		t.Fatalf("first Commit: %v", err)
	}
	firstOffset := h.CurrentCommit()
	firstLen := uint64((h.ArraySize() + 1) * index.EntrySize)

	if err := a.Commit(fp, h); err != nil {
		t.Fatalf("second Commit: %v", err)
	}
	secondOffset := h.CurrentCommit()
	if secondOffset == firstOffset {
		t.Fatal("second snapshot should live at a new offset")
	}

	buf := make([]byte, index.EntrySize)
	if _, err := fp.ReadAt(buf, int64(secondOffset)); err != nil {
		t.Fatalf("ReadAt entry 0 of second snapshot: %v", err)
	}
	backlinkOffset := littleEndianUint64(buf[0:8])
	backlinkLen := littleEndianUint64(buf[8:16])
	if backlinkOffset != firstOffset || backlinkLen != firstLen {
		t.Fatalf("back-link = (%d,%d), want (%d,%d)", backlinkOffset, backlinkLen, firstOffset, firstLen)
	}
}

func littleEndianUint64(b []byte) uint64 {
	var v uint64
	for i := 7; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v
}

func TestResizeGrows(t *testing.T) {
	h := header.New()
	h.SetArraySize(2)
	a := index.New(h)

	e, _ := a.Elem(1)
	e.Offset, e.Length = 77, 3

	if err := a.Resize(5, h); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	if a.N() != 5 || h.ArraySize() != 5 {
		t.Fatalf("N/ArraySize not updated: %d / %d", a.N(), h.ArraySize())
	}
	kept, _ := a.Elem(1)
	if kept.Offset != 77 || kept.Length != 3 {
		t.Fatalf("existing entry lost on resize: %+v", kept)
	}
	for i := uint64(2); i < 5; i++ {
		fresh, _ := a.Elem(i)
		if fresh.Offset != 0 || fresh.Length != 0 {
			t.Fatalf("new slot %d not zero: %+v", i, fresh)
		}
	}
}

func TestResizeShrinkFails(t *testing.T) {
	h := header.New()
	h.SetArraySize(5)
	a := index.New(h)
	if err := a.Resize(3, h); err != errmsg.ErrTooSmall {
		t.Fatalf("Resize(3) on N=5 = %v, want ErrTooSmall", err)
	}
}

func TestResizeSameIsNoop(t *testing.T) {
	h := header.New()
	h.SetArraySize(5)
	a := index.New(h)
	if err := a.Resize(5, h); err != nil {
		t.Fatalf("Resize(5) on N=5 should be a no-op, got %v", err)
	}
}
