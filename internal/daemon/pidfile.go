package daemon

import (
	"fmt"
	"os"
	"strconv"
)

func writePIDFile(path string) error {
	content := strconv.Itoa(os.Getpid())
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	return nil
}

func removePIDFile(path string) {
	os.Remove(path)
}
