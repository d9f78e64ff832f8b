package fileid

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestDocID(t *testing.T) {
	if got := DocID(42); got != "file:42" {
		t.Errorf("DocID(42) = %q", got)
	}
	if DocID(1) == DocID(2) {
		t.Error("different files should give different IDs")
	}
}

func TestPathDocID(t *testing.T) {
	id1 := PathDocID("/foo/bar.txt")
	id2 := PathDocID("/foo/bar.txt")
	if id1 != id2 {
		t.Errorf("same path should give same ID: %q vs %q", id1, id2)
	}
	if !strings.HasPrefix(id1, pathPrefix) {
		t.Errorf("ID should have prefix %q: got %q", pathPrefix, id1)
	}
	if id1 == PathDocID("/foo/baz.txt") {
		t.Errorf("different paths should give different IDs: %q", id1)
	}
}

func TestPathDocID_cleaned(t *testing.T) {
	dir := t.TempDir()
	clean := filepath.Join(dir, "a.txt")
	dirty := dir + string(filepath.Separator) + "." + string(filepath.Separator) + "a.txt"
	if PathDocID(clean) != PathDocID(dirty) {
		t.Error("equivalent paths should give the same ID")
	}
}

func TestContentHash(t *testing.T) {
	// sha256("abc")
	const want = "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if got := ContentHash([]byte("abc")); got != want {
		t.Errorf("ContentHash = %q, want %q", got, want)
	}
}
