// Package storage persists uploaded files on the local disk.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Disk stores uploaded files under a root directory. Stored names are
// generated, never taken from the client.
type Disk struct {
	root string
}

// NewDisk constructs a Disk rooted at dir, creating it if missing.
func NewDisk(dir string) (*Disk, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("platform/storage: mkdir %s: %w", dir, err)
	}
	return &Disk{root: dir}, nil
}

// Store writes the content to a generated unique filename that keeps the
// original extension, and returns that filename.
func (d *Disk) Store(src io.Reader, originalName string) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	name := uuid.NewString() + ext

	dst, err := os.Create(filepath.Join(d.root, name))
	if err != nil {
		return "", fmt.Errorf("platform/storage: create: %w", err)
	}
	defer func() {
		_ = dst.Close()
	}()

	if _, err := io.Copy(dst, src); err != nil {
		_ = os.Remove(dst.Name())
		return "", fmt.Errorf("platform/storage: write: %w", err)
	}
	if err := dst.Sync(); err != nil {
		return "", fmt.Errorf("platform/storage: sync: %w", err)
	}
	return name, nil
}

// Delete removes a stored file. A missing file is not an error.
func (d *Disk) Delete(name string) error {
	if name == "" {
		return nil
	}
	// Reject anything that escapes the root.
	if name != filepath.Base(name) {
		return fmt.Errorf("platform/storage: invalid name %q", name)
	}
	err := os.Remove(filepath.Join(d.root, name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("platform/storage: remove: %w", err)
	}
	return nil
}

// Exists reports whether a stored file is present.
func (d *Disk) Exists(name string) bool {
	if name == "" || name != filepath.Base(name) {
		return false
	}
	_, err := os.Stat(filepath.Join(d.root, name))
	return err == nil
}

// Root returns the directory files are stored in.
func (d *Disk) Root() string {
	return d.root
}
