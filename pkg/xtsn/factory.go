package xtsn

import (
	"github.com/falk/switchxts/pkg/aes128"
	"github.com/falk/switchxts/pkg/aesprovider"
)

// providerCipher adapts pkg/aesprovider's process-wide external AES handle
// to blockCipher for one specific 16-byte key.
type providerCipher struct {
	key [16]byte
}

func (p *providerCipher) encrypt(dst, src *[16]byte) bool {
	return aesprovider.EncryptECB(p.key, dst, src)
}

func (p *providerCipher) decrypt(dst, src *[16]byte) bool {
	return aesprovider.DecryptECB(p.key, dst, src)
}

// newBlockCipher picks the external provider when it is available and the
// raw key is known (see ParseScheduledKeys), falling back to the bundled
// scalar primitive otherwise. hasRawKey is false for ScheduledKeys
// reconstructed from a 352-byte blob, which only carries round keys.
func newBlockCipher(key [16]byte, rk aes128.RoundKeys, hasRawKey bool) blockCipher {
	if hasRawKey && aesprovider.Available() {
		return &providerCipher{key: key}
	}
	return &scalarCipher{rk: rk}
}
