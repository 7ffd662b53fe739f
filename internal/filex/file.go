// Package filex contains small filesystem helpers shared by the server
// components.
package filex

import (
	"fmt"
	"os"
)

// EnsureDir creates the directory (and any parents) if it does not exist.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o770); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return nil
}

// WriteNewFile creates the file and writes data to it. It fails if the file
// already exists, so duplicate writes are detected instead of overwriting.
func WriteNewFile(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o660)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	_, werr := f.Write(data)
	cerr := f.Close()
	if werr != nil {
		return fmt.Errorf("write %s: %w", path, werr)
	}
	if cerr != nil {
		return fmt.Errorf("close %s: %w", path, cerr)
	}

	return nil
}
