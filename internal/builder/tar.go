package builder

import (
	"archive/tar"
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// The Docker SDK copies content into containers as tar streams. These
// helpers build streams rooted at the (not yet existing) working directory,
// so extracting at / creates it.

func tarFile(workDir, name string, data []byte) (io.Reader, error) {
	prefix := strings.TrimPrefix(workDir, "/")

	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)

	if err := writeDirHeaders(tw, prefix); err != nil {
		return nil, err
	}
	hdr := &tar.Header{
		Name: path.Join(prefix, name),
		Mode: 0644,
		Size: int64(len(data)),
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return nil, err
	}
	if _, err := tw.Write(data); err != nil {
		return nil, err
	}
	if err := tw.Close(); err != nil {
		return nil, err
	}
	return &buf, nil
}

// tarDir archives the whole source tree under workDir. Directories and
// regular files only; anything else in the tree is skipped.
func tarDir(workDir, srcDir string) (io.Reader, error) {
	info, err := os.Stat(srcDir)
	if err != nil {
		return nil, fmt.Errorf("source tree: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source tree %s is not a directory", srcDir)
	}

	prefix := strings.TrimPrefix(workDir, "/")

	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)

	if err := writeDirHeaders(tw, prefix); err != nil {
		return nil, err
	}

	err = filepath.WalkDir(srcDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(srcDir, p)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		name := path.Join(prefix, filepath.ToSlash(rel))

		if d.IsDir() {
			return tw.WriteHeader(&tar.Header{
				Name:     name + "/",
				Typeflag: tar.TypeDir,
				Mode:     0755,
			})
		}
		if !d.Type().IsRegular() {
			return nil
		}

		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		hdr := &tar.Header{
			Name: name,
			Mode: 0644,
			Size: int64(len(data)),
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		_, err = tw.Write(data)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("archive source tree: %w", err)
	}

	if err := tw.Close(); err != nil {
		return nil, err
	}
	return &buf, nil
}

func writeDirHeaders(tw *tar.Writer, prefix string) error {
	if prefix == "" {
		return nil
	}
	var p string
	for _, part := range strings.Split(prefix, "/") {
		p = path.Join(p, part)
		err := tw.WriteHeader(&tar.Header{
			Name:     p + "/",
			Typeflag: tar.TypeDir,
			Mode:     0755,
		})
		if err != nil {
			return err
		}
	}
	return nil
}
