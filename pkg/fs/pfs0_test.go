package fs

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPfs0WriteThenOpenRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.nsp")

	names := []string{"a.nca", "b.txt"}
	writer, err := NewPfs0Writer(path, names)
	require.NoError(t, err)

	dataA := []byte("hello world, this is file a")
	dataB := []byte("short")

	require.NoError(t, writer.AddFile(0, bytes.NewReader(dataA), int64(len(dataA))))
	require.NoError(t, writer.AddFile(1, bytes.NewReader(dataB), int64(len(dataB))))
	require.NoError(t, writer.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	files, headerSize, err := OpenPfs0(f)
	require.NoError(t, err)
	require.Len(t, files, 2)

	assert.Equal(t, "a.nca", files[0].Name)
	assert.Equal(t, "b.txt", files[1].Name)
	assert.Equal(t, uint64(len(dataA)), files[0].Entry.DataSize)
	assert.Equal(t, uint64(len(dataB)), files[1].Entry.DataSize)

	gotA := make([]byte, len(dataA))
	_, err = f.ReadAt(gotA, headerSize+int64(files[0].Entry.DataOffset))
	require.NoError(t, err)
	assert.Equal(t, dataA, gotA)

	gotB := make([]byte, len(dataB))
	_, err = f.ReadAt(gotB, headerSize+int64(files[1].Entry.DataOffset))
	require.NoError(t, err)
	assert.Equal(t, dataB, gotB)
}

func TestOpenPfs0RejectsBadMagic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.nsp")
	require.NoError(t, os.WriteFile(path, make([]byte, 32), 0o600))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	_, _, err = OpenPfs0(f)
	require.Error(t, err)
}
