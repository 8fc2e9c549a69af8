package fileio

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// DirSink writes artifacts into a directory under their declared filename.
// Data is written to a temporary file first so an interrupted transfer never leaves a truncated artifact.
type DirSink struct {
	Dir string
}

func NewDirSink(dir string) *DirSink {
	return &DirSink{Dir: dir}
}

func ValidateFilename(filename string) error {
	if filename == "" || filename == "." || filename == ".." {
		return fmt.Errorf("invalid filename %q", filename)
	}
	if filepath.Base(filename) != filename || strings.ContainsAny(filename, `/\`) {
		return fmt.Errorf("filename %q must not contain a path", filename)
	}
	return nil
}

func (s *DirSink) Store(filename string, r io.Reader) (int64, error) {
	if err := ValidateFilename(filename); err != nil {
		return 0, err
	}
	if err := os.MkdirAll(s.Dir, os.ModePerm); err != nil {
		return 0, err
	}

	tmp, err := os.CreateTemp(s.Dir, "."+filename+".*.part")
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(tmp, r)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(tmp.Name())
		return n, err
	}

	if err := os.Rename(tmp.Name(), filepath.Join(s.Dir, filename)); err != nil {
		_ = os.Remove(tmp.Name())
		return n, err
	}
	return n, nil
}
