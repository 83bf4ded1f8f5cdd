package keys

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadParsesHexKeysFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prod.keys")
	contents := "# comment\n" +
		"header_key = 000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f\n" +
		"\n" +
		"not_a_valid_line\n" +
		"bad_hex = zz\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	require.NoError(t, Load(path))

	got := Get("header_key")
	require.NotNil(t, got)
	assert.Len(t, got, 32)
	assert.Equal(t, byte(0x00), got[0])
	assert.Equal(t, byte(0x1f), got[31])

	assert.Nil(t, Get("bad_hex"))
	assert.Nil(t, Get("does_not_exist"))
}

func TestGetReturnsACopy(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prod.keys")
	require.NoError(t, os.WriteFile(path, []byte("some_key = aabbccdd\n"), 0o600))
	require.NoError(t, Load(path))

	first := Get("some_key")
	first[0] = 0xff

	second := Get("some_key")
	assert.NotEqual(t, first[0], second[0], "Get must not expose the internal backing array")
}
