package header_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/basalt-db/chunkstore/header"
)

func openTemp(t *testing.T) *os.File {
	fp, err := os.Create(filepath.Join(t.TempDir(), "store.db"))
	if err != nil {
		t.Fatalf("create temp file: %v", err)
	}
	t.Cleanup(func() { fp.Close() })
	return fp
}

func TestNew(t *testing.T) {
	h := header.New()
	if h.DataStart() != header.Size {
		t.Fatalf("DataStart = %d, want %d", h.DataStart(), header.Size)
	}
	if h.CurrentCommit() != 0 || h.FirstCommit() != 0 {
		t.Fatalf("fresh header should have zero commit pointers")
	}
}

func TestCommitThenLoad(t *testing.T) {
	fp := openTemp(t)
	h := header.New()
	h.SetArraySize(10)
	h.SetCurrentCommit(header.Size)
	h.SetFirstCommit(header.Size)
	if err := h.Commit(fp); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	loaded, err := header.Load(fp)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.ArraySize() != 10 {
		t.Fatalf("ArraySize = %d, want 10", loaded.ArraySize())
	}
	if loaded.CurrentCommit() != header.Size || loaded.FirstCommit() != header.Size {
		t.Fatalf("commit pointers not round-tripped: %+v", loaded)
	}
}

func TestCommitAppendsHistoricalCopy(t *testing.T) {
	fp := openTemp(t)
	h := header.New()
	if err := h.Commit(fp); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	st, err := fp.Stat()
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if st.Size() != 2*header.Size {
		t.Fatalf("file size after one commit = %d, want %d", st.Size(), 2*header.Size)
	}
}

func TestLoadRejectsBadMagic(t *testing.T) {
	fp := openTemp(t)
	if _, err := fp.WriteAt(make([]byte, header.Size), 0); err != nil {
		t.Fatalf("seed zeroed header: %v", err)
	}
	if _, err := header.Load(fp); err == nil {
		t.Fatal("Load of zeroed header should fail")
	}
}

func TestReload(t *testing.T) {
	fp := openTemp(t)
	h := header.New()
	if err := h.Commit(fp); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	h.SetAuxOffset(123)
	if err := h.Commit(fp); err != nil {
		t.Fatalf("second Commit: %v", err)
	}

	other, err := header.Load(fp)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	other.SetAuxOffset(0) // drift the in-memory copy
	if err := other.Reload(fp); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if other.AuxOffset() != 123 {
		t.Fatalf("AuxOffset after Reload = %d, want 123", other.AuxOffset())
	}
}
