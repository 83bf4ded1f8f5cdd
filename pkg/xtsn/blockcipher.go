package xtsn

import "github.com/falk/switchxts/pkg/aes128"

// blockCipher is the small strategy interface spec.md §9 describes: a
// fallible (round_keys, in, out) -> ok block primitive. scalarCipher,
// wrapping aes128.RoundKeys, satisfies it trivially (it never fails);
// providerCipher, the aesprovider-backed adapter,
// can satisfy it too, propagating a false on provider failure up through
// the engine's inner loop per spec.md §7's CipherProviderFailed policy.
type blockCipher interface {
	encrypt(dst, src *[16]byte) bool
	decrypt(dst, src *[16]byte) bool
}

// scalarCipher adapts the bundled pkg/aes128 primitive to blockCipher.
type scalarCipher struct {
	rk aes128.RoundKeys
}

func (s *scalarCipher) encrypt(dst, src *[16]byte) bool {
	s.rk.EncryptBlock(dst, src)
	return true
}

func (s *scalarCipher) decrypt(dst, src *[16]byte) bool {
	s.rk.DecryptBlock(dst, src)
	return true
}
