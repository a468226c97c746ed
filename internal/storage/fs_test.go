package storage

import (
	"errors"
	"os"
	"strings"
	"testing"
)

func tempRoot(t *testing.T) *FS {
	t.Helper()
	dir := t.TempDir()
	fs, err := NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs
}

func TestWriteAndRead(t *testing.T) {
	s := tempRoot(t)
	n, err := s.Write("case-1/log.txt", strings.NewReader("evidence\n"))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if n != 9 {
		t.Errorf("written = %d, want 9", n)
	}
	got, err := s.Read("case-1/log.txt")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != "evidence\n" {
		t.Errorf("content mismatch: got %q", got)
	}
}

func TestDelete(t *testing.T) {
	s := tempRoot(t)
	_, _ = s.Write("case-1/del.bin", strings.NewReader("bye"))
	if err := s.Delete("case-1/del.bin"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Read("case-1/del.bin"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("read after delete = %v, want ErrNotExist", err)
	}
}

func TestList(t *testing.T) {
	s := tempRoot(t)
	_, _ = s.Write("case-2/b.txt", strings.NewReader("b"))
	_, _ = s.Write("case-2/a.txt", strings.NewReader("aa"))
	_, _ = s.Write("case-3/other.txt", strings.NewReader("x"))

	items, err := s.List("case-2")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 files, got %d", len(items))
	}
	if items[0].Name != "a.txt" || items[0].Size != 2 {
		t.Errorf("first item = %+v", items[0])
	}
	if items[0].Checksum == "" {
		t.Error("checksum should be populated")
	}
}

func TestListMissingDir(t *testing.T) {
	s := tempRoot(t)
	items, err := s.List("case-404")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if items == nil || len(items) != 0 {
		t.Errorf("expected empty non-nil list, got %#v", items)
	}
}

func TestRemoveAll(t *testing.T) {
	s := tempRoot(t)
	_, _ = s.Write("case-5/a.txt", strings.NewReader("a"))
	if err := s.RemoveAll("case-5"); err != nil {
		t.Fatalf("RemoveAll: %v", err)
	}
	items, _ := s.List("case-5")
	if len(items) != 0 {
		t.Errorf("files survived RemoveAll: %+v", items)
	}
	if err := s.RemoveAll(""); err == nil {
		t.Error("removing the root should fail")
	}
}

func TestPathTraversal(t *testing.T) {
	s := tempRoot(t)
	cases := []string{"../escape.txt", "../../etc/passwd", "case-1/../../x"}
	for _, p := range cases {
		if _, err := s.Write(p, strings.NewReader("bad")); err == nil {
			t.Errorf("expected error for path %q", p)
		}
	}
}

func TestAbsolutePathRejected(t *testing.T) {
	s := tempRoot(t)
	if _, err := s.Read("/etc/passwd"); err == nil {
		t.Error("expected error for absolute path")
	}
}
