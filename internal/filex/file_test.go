package filex

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnsureDir_CreatesNestedDirectory(t *testing.T) {
	tmp := t.TempDir()

	dir := filepath.Join(tmp, "a", "b", "c")
	require.NoError(t, EnsureDir(dir))

	fi, err := os.Stat(dir)
	require.NoError(t, err)
	require.True(t, fi.IsDir())
}

func TestEnsureDir_Idempotent(t *testing.T) {
	tmp := t.TempDir()

	dir := filepath.Join(tmp, "d")
	require.NoError(t, EnsureDir(dir))
	require.NoError(t, EnsureDir(dir))
}

func TestEnsureDir_FailsIfFileWithSameNameExists(t *testing.T) {
	tmp := t.TempDir()

	path := filepath.Join(tmp, "f")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o660))

	require.Error(t, EnsureDir(path))
}

func TestWriteNewFile_WritesContent(t *testing.T) {
	tmp := t.TempDir()

	path := filepath.Join(tmp, "payload.json")
	require.NoError(t, WriteNewFile(path, []byte(`{"a":1}`)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, `{"a":1}`, string(data))
}

func TestWriteNewFile_FailsIfExists(t *testing.T) {
	tmp := t.TempDir()

	path := filepath.Join(tmp, "payload.json")
	require.NoError(t, WriteNewFile(path, []byte("first")))
	require.Error(t, WriteNewFile(path, []byte("second")))

	// the original content is untouched
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "first", string(data))
}
