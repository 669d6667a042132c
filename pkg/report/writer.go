package report

import (
	"fmt"
	"os"
	"path/filepath"
)

// Artifact is one rendered output ready to be placed on disk.
type Artifact struct {
	Path string
	Data []byte
}

// WriteAll places artifacts on disk. Each file is written to a temporary
// name in its destination directory and renamed into place, so a crash or
// full disk never leaves a half written report behind.
func WriteAll(artifacts []Artifact) error {
	for _, a := range artifacts {
		if err := writeAtomic(a); err != nil {
			return err
		}
	}
	return nil
}

func writeAtomic(a Artifact) error {
	dir := filepath.Dir(a.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating output directory %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(a.Path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(a.Data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", a.Path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", a.Path, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", a.Path, err)
	}
	if err := os.Rename(tmpName, a.Path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("placing %s: %w", a.Path, err)
	}
	return nil
}
