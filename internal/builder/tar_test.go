package builder

import (
	"archive/tar"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func readEntries(t *testing.T, r io.Reader) map[string]string {
	t.Helper()

	entries := map[string]string{}
	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("read tar: %v", err)
		}
		data, err := io.ReadAll(tr)
		if err != nil {
			t.Fatalf("read tar entry %s: %v", hdr.Name, err)
		}
		entries[hdr.Name] = string(data)
	}
	return entries
}

func TestTarFileRootsAtWorkDir(t *testing.T) {
	r, err := tarFile("/app", "requirements.txt", []byte("requests==2.31.0\n"))
	if err != nil {
		t.Fatalf("tarFile: %v", err)
	}

	entries := readEntries(t, r)

	if _, ok := entries["app/"]; !ok {
		t.Error("missing workdir entry, extraction at / would fail")
	}
	if got := entries["app/requirements.txt"]; got != "requests==2.31.0\n" {
		t.Errorf("manifest content = %q", got)
	}
}

func TestTarDirArchivesTree(t *testing.T) {
	src := t.TempDir()
	if err := os.WriteFile(filepath.Join(src, "main.py"), []byte(`print("ok")`), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(src, "pkg"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(src, "pkg", "util.py"), []byte("x = 1\n"), 0644); err != nil {
		t.Fatal(err)
	}

	r, err := tarDir("/app", src)
	if err != nil {
		t.Fatalf("tarDir: %v", err)
	}

	entries := readEntries(t, r)

	if got := entries["app/main.py"]; got != `print("ok")` {
		t.Errorf("main.py content = %q", got)
	}
	if _, ok := entries["app/pkg/"]; !ok {
		t.Error("nested directory entry missing")
	}
	if got := entries["app/pkg/util.py"]; got != "x = 1\n" {
		t.Errorf("util.py content = %q", got)
	}
}

func TestTarDirMissingSource(t *testing.T) {
	if _, err := tarDir("/app", filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatal("expected error for missing source tree")
	}
}

func TestTarDirSourceIsFile(t *testing.T) {
	f := filepath.Join(t.TempDir(), "main.py")
	if err := os.WriteFile(f, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := tarDir("/app", f); err == nil {
		t.Fatal("expected error when source tree is a file")
	}
}
