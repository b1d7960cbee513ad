package fsutil

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFileAtomic(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "out.txt")

	require.NoError(t, WriteFileAtomic(dst, []byte("first")))
	require.NoError(t, WriteFileAtomic(dst, []byte("second")))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
	assertNoTempFiles(t, filepath.Dir(dst))
}

func TestWriteAtomic_FailureKeepsDestination(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "keep.txt")
	require.NoError(t, os.WriteFile(dst, []byte("original"), 0600))

	err := WriteAtomic(dst, func(w io.Writer) error {
		_, _ = w.Write([]byte("half"))
		return errors.New("boom")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "keep.txt")

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "original", string(data))
	assertNoTempFiles(t, filepath.Dir(dst))
}

func TestWriteAtomic_ReadsDestinationWhileWriting(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "same.txt")
	require.NoError(t, os.WriteFile(dst, []byte("abc"), 0600))

	err := WriteAtomic(dst, func(w io.Writer) error {
		src, err := os.Open(dst)
		if err != nil {
			return err
		}
		defer src.Close()
		data, err := io.ReadAll(src)
		if err != nil {
			return err
		}
		_, err = w.Write([]byte(strings.ToUpper(string(data))))
		return err
	})
	require.NoError(t, err)

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "ABC", string(data))
}

func TestWriteAtomic_MissingDirectory(t *testing.T) {
	err := WriteFileAtomic(filepath.Join(t.TempDir(), "nope", "out.txt"), []byte("x"))
	assert.Error(t, err)
}

func assertNoTempFiles(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasPrefix(e.Name(), TempPrefix), "leftover %s", e.Name())
	}
}
