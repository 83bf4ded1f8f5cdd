package xtsn

import "encoding/binary"

// tweak is the 128-bit per-block masking value (C3 in the design). It is
// manipulated only as bytes and as two little-endian 64-bit limbs via
// encoding/binary helpers — never through host-native aliasing — so the
// doubling step below is correct on big-endian and little-endian hosts
// alike without build tags.
type tweak [16]byte

// newTweak derives the initial tweak for counter c: the AES-128 encryption,
// under the tweak cipher, of the big-endian serialisation of c (spec
// invariant 6). The tweak cipher is always used in its encrypt direction,
// even when the engine is decrypting data.
func newTweak(c Counter, tweakCipher blockCipher) (tweak, bool) {
	seed := c.Bytes()
	var out tweak
	ok := tweakCipher.encrypt((*[16]byte)(&out), &seed)
	return out, ok
}

// update advances the tweak by one step of GF(2^128) doubling with the
// XTS reduction polynomial 0x87.
func (t *tweak) update() {
	lo := binary.LittleEndian.Uint64(t[0:8])
	hi := binary.LittleEndian.Uint64(t[8:16])
	carry := hi >> 63

	hi = (hi << 1) | (lo >> 63)
	lo <<= 1

	binary.LittleEndian.PutUint64(t[0:8], lo)
	binary.LittleEndian.PutUint64(t[8:16], hi)

	if carry != 0 {
		t[0] ^= 0x87
	}
}

func (t *tweak) xorBlock(block *[16]byte) {
	for i := range block {
		block[i] ^= t[i]
	}
}
