package keys

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateKekChainsThreeDecrypts(t *testing.T) {
	masterKey := make([]byte, 16)
	kekSeed := make([]byte, 16)
	keySeed := make([]byte, 16)
	src := make([]byte, 16)
	for i := range masterKey {
		masterKey[i] = byte(i)
		kekSeed[i] = byte(0xA0 + i)
		keySeed[i] = byte(0xB0 + i)
		src[i] = byte(0xC0 + i)
	}

	got, err := GenerateKek(src, masterKey, kekSeed, keySeed)
	require.NoError(t, err)
	assert.Len(t, got, 16)

	// GenerateKek(src, masterKey, kekSeed, nil) should skip the final
	// keySeed-keyed decrypt and return the intermediate srcKek directly.
	withoutKeySeed, err := GenerateKek(src, masterKey, kekSeed, nil)
	require.NoError(t, err)
	assert.NotEqual(t, got, withoutKeySeed, "keySeed decrypt should change the result")
}

func TestDecryptTitleKeyMissingGenReturnsError(t *testing.T) {
	_, err := DecryptTitleKey(make([]byte, 16), 31)
	require.Error(t, err)
}

func TestDecryptTicketTitleKeyRejectsShortTicket(t *testing.T) {
	_, err := DecryptTicketTitleKey(make([]byte, 0x100), 0)
	require.Error(t, err)
}

func TestUnwrapAesWrappedTitleKeyMissingGenReturnsError(t *testing.T) {
	_, err := UnwrapAesWrappedTitleKey(make([]byte, 16), 31)
	require.Error(t, err)
}
