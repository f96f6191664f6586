package storage_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/warungpos/warungpos/internal/platform/storage"
)

func TestStoreGeneratesUniqueName(t *testing.T) {
	disk, err := storage.NewDisk(t.TempDir())
	require.NoError(t, err)

	first, err := disk.Store(strings.NewReader("image-a"), "drinks.png")
	require.NoError(t, err)
	second, err := disk.Store(strings.NewReader("image-b"), "drinks.png")
	require.NoError(t, err)

	require.NotEqual(t, first, second)
	require.True(t, strings.HasSuffix(first, ".png"))
	require.True(t, disk.Exists(first))

	data, err := os.ReadFile(filepath.Join(disk.Root(), first))
	require.NoError(t, err)
	require.Equal(t, "image-a", string(data))
}

func TestDeleteIsIdempotent(t *testing.T) {
	disk, err := storage.NewDisk(t.TempDir())
	require.NoError(t, err)

	name, err := disk.Store(strings.NewReader("x"), "a.jpg")
	require.NoError(t, err)

	require.NoError(t, disk.Delete(name))
	require.False(t, disk.Exists(name))
	// Second delete of the same name must not fail.
	require.NoError(t, disk.Delete(name))
}

func TestDeleteRejectsPathTraversal(t *testing.T) {
	disk, err := storage.NewDisk(t.TempDir())
	require.NoError(t, err)
	require.Error(t, disk.Delete("../escape.png"))
}
