package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeWriteFileReplacesAtomically(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "out.json")
	require.NoError(t, SafeWriteFile(p, []byte("one")))
	require.NoError(t, SafeWriteFile(p, []byte("two")))

	b, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "two", string(b))
	_, err = os.Stat(p + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestSafeWriteFileMissingDir(t *testing.T) {
	err := SafeWriteFile(filepath.Join(t.TempDir(), "nope", "x"), []byte("x"))
	assert.Error(t, err)
}

func TestEnsureDirNested(t *testing.T) {
	d := filepath.Join(t.TempDir(), "a", "b")
	require.NoError(t, EnsureDir(d))
	info, err := os.Stat(d)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestEncoders(t *testing.T) {
	v := map[string]any{"name": "iris", "rows": 3}
	j, err := PrettyJSON(v)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"name\": \"iris\",\n  \"rows\": 3\n}", string(j))

	y, err := YAML(struct {
		Columns []string `yaml:"columns"`
	}{Columns: []string{"a", "b"}})
	require.NoError(t, err)
	assert.Equal(t, "columns:\n  - a\n  - b\n", string(y))
}
