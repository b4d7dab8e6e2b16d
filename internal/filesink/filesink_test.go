package filesink

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAppendsToExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file.bin")
	require.NoError(t, os.WriteFile(path, []byte("hello "), 0644))

	s, err := Open(path)
	require.NoError(t, err)
	_, err = s.Write([]byte("world"))
	require.NoError(t, err)

	size, err := s.Size()
	require.NoError(t, err)
	assert.Equal(t, int64(11), size)
	require.NoError(t, s.Flush())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(data))
}

func TestOpenCreatesMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "new.bin")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Flush())
	assert.FileExists(t, path)
}

func TestFlushIsIdempotentAndClosesWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file.bin")
	s, err := Open(path)
	require.NoError(t, err)
	_, err = s.Write([]byte("abc"))
	require.NoError(t, err)

	require.NoError(t, s.Flush())
	require.NoError(t, s.Flush())

	_, err = s.Write([]byte("def"))
	require.ErrorIs(t, err, ErrClosed)

	size, err := s.Size()
	require.NoError(t, err)
	assert.Equal(t, int64(3), size)
}

func TestDiscardRemovesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file.bin")
	require.NoError(t, os.WriteFile(path, []byte("partial"), 0644))

	s, err := Open(path)
	require.NoError(t, err)
	_, err = s.Write([]byte(" more"))
	require.NoError(t, err)

	require.NoError(t, s.Discard())
	assert.NoFileExists(t, path)
}

func TestResetTruncates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file.bin")
	require.NoError(t, os.WriteFile(path, []byte("stale bytes"), 0644))

	s, err := Open(path)
	require.NoError(t, err)
	_, err = s.Write([]byte("buffered"))
	require.NoError(t, err)
	require.NoError(t, s.Reset())
	_, err = s.Write([]byte("fresh"))
	require.NoError(t, err)
	require.NoError(t, s.Flush())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "fresh", string(data))
}

func TestOpenFailsForMissingDirectory(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing", "file.bin"))
	require.Error(t, err)
}
