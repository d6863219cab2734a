package mocks

import (
	"os"
	"path/filepath"
)

func writeExtracted(dir, rel, content string) error {
	target := filepath.Join(dir, rel)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	return os.WriteFile(target, []byte(content), 0o755) //nolint:gosec // test helper mirrors unpack permissions
}
