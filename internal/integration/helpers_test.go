package integration

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

func rootPath() string {
	return mountPoint
}

func notePath(parts ...string) string {
	return filepath.Join(append([]string{mountPoint}, parts...)...)
}

func listDirNames(path string) ([]string, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}
	return names, nil
}

func dirContains(path, name string) bool {
	entries, err := os.ReadDir(path)
	if err != nil {
		return false
	}
	for _, e := range entries {
		if e.Name() == name {
			return true
		}
	}
	return false
}

func waitForFileGone(path string, maxWait time.Duration) error {
	deadline := time.Now().Add(maxWait)
	for time.Now().Before(deadline) {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil
		}
		time.Sleep(50 * time.Millisecond)
	}
	return fmt.Errorf("file %s still exists after %v", path, maxWait)
}

const defaultWaitTime = 2 * time.Second
