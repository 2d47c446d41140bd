package repo

import (
	"fmt"
	"os"
	"path/filepath"
)

// stageFile writes data to a temp file next to dst and fsyncs it.
// The caller renames the returned temp file into place or removes it.
func stageFile(dst string, data []byte) (string, error) {
	tmp, err := os.CreateTemp(filepath.Dir(dst), ".fleetlog-tmp-*")
	if err != nil {
		return "", fmt.Errorf("create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return "", fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return "", fmt.Errorf("fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp: %w", err)
	}
	success = true
	return tmpName, nil
}

// writeFileAtomic replaces dst with data: tmp file → fsync → rename.
func writeFileAtomic(dst string, data []byte) error {
	tmpName, err := stageFile(dst, data)
	if err != nil {
		return err
	}
	if err := os.Rename(tmpName, dst); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
