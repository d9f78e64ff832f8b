package filestore

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestStore_SaveAndOpen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	s, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	path, size, err := s.Save(strings.NewReader("hello"), "../../Report.PDF", 0)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if size != 5 {
		t.Errorf("size = %d, want 5", size)
	}
	if filepath.Dir(path) != dir {
		t.Errorf("saved outside upload dir: %s", path)
	}
	if filepath.Ext(path) != ".pdf" {
		t.Errorf("extension = %q, want .pdf", filepath.Ext(path))
	}
	f, err := s.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer f.Close()
	b, _ := io.ReadAll(f)
	if string(b) != "hello" {
		t.Errorf("content = %q", b)
	}

	other, _, err := s.Save(strings.NewReader("x"), "Report.pdf", 0)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if other == path {
		t.Error("two uploads with the same name share a path")
	}
}

func TestStore_SaveLimit(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := s.Save(strings.NewReader("0123456789"), "a.txt", 4); err == nil {
		t.Fatal("expected error for oversized upload")
	}
	entries, _ := os.ReadDir(s.Dir())
	if len(entries) != 0 {
		t.Errorf("oversized upload left %d files behind", len(entries))
	}
	if _, size, err := s.Save(strings.NewReader("0123"), "a.txt", 4); err != nil || size != 4 {
		t.Errorf("Save at limit: size=%d err=%v", size, err)
	}
}

func TestStore_OpenOutside(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Open("/etc/passwd"); err == nil {
		t.Error("expected error opening a file outside the store")
	}
	if err := s.Remove(filepath.Join(s.Dir(), "missing")); err != nil {
		t.Errorf("Remove missing: %v", err)
	}
}

func TestNew_emptyDir(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Error("expected error for empty dir")
	}
}
