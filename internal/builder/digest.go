package builder

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// digestOf derives a short content digest for stage tagging. Same inputs,
// same tag: that is what makes rebuilds idempotent.
func digestOf(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))[:12]
}

// sourceDigest hashes the source tree: every regular file's relative path
// and content, in walk order (lexical, so deterministic).
func sourceDigest(srcDir string) (string, error) {
	info, err := os.Stat(srcDir)
	if err != nil {
		return "", fmt.Errorf("source tree: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("source tree %s is not a directory", srcDir)
	}

	h := sha256.New()
	err = filepath.WalkDir(srcDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(srcDir, p)
		if err != nil {
			return err
		}
		h.Write([]byte(filepath.ToSlash(rel)))
		h.Write([]byte{0})

		f, err := os.Open(p)
		if err != nil {
			return err
		}
		defer f.Close()
		if _, err := io.Copy(h, f); err != nil {
			return err
		}
		h.Write([]byte{0})
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("hash source tree: %w", err)
	}

	return hex.EncodeToString(h.Sum(nil))[:12], nil
}
