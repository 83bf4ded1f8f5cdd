package xtsn

import "github.com/falk/switchxts/pkg/aes128"

// ScheduledKeys is the opaque key-schedule pair (C5 in the design): round
// keys for the data cipher and the tweak cipher, kept together. It is
// immutable after construction and safe to share across concurrently
// running Cipher sessions.
type ScheduledKeys struct {
	cryptKey  [16]byte
	tweakKey  [16]byte
	cryptRK   aes128.RoundKeys
	tweakRK   aes128.RoundKeys
	hasRawKey bool
}

// NewScheduledKeys expands cryptKey and tweakKey into a ScheduledKeys pair.
func NewScheduledKeys(cryptKey, tweakKey [16]byte) ScheduledKeys {
	return ScheduledKeys{
		cryptKey:  cryptKey,
		tweakKey:  tweakKey,
		cryptRK:   aes128.Schedule(cryptKey),
		tweakRK:   aes128.Schedule(tweakKey),
		hasRawKey: true,
	}
}

// Bytes serialises the pair into the wire-visible 352-byte region spec.md
// §3 describes: the data key's 176-byte schedule, then the tweak key's.
func (k ScheduledKeys) Bytes() [352]byte {
	var out [352]byte
	copy(out[:176], k.cryptRK[:])
	copy(out[176:], k.tweakRK[:])
	return out
}

// ParseScheduledKeys reconstructs a ScheduledKeys pair from its wire form.
// The raw 16-byte keys are not recoverable from expanded round keys, so a
// ScheduledKeys built this way can drive the bundled scalar primitive but
// not the external provider (which needs the raw key for EVP_*Init); such
// a pair transparently falls back to the scalar primitive regardless of
// provider availability.
func ParseScheduledKeys(raw [352]byte) ScheduledKeys {
	var k ScheduledKeys
	copy(k.cryptRK[:], raw[:176])
	copy(k.tweakRK[:], raw[176:])
	return k
}

// Schedule is the protocol-level operation from spec.md §6: it rejects key
// lengths other than 16 and returns the opaque 352-byte scheduled-keys blob.
func Schedule(cryptKey, tweakKey []byte) ([352]byte, error) {
	var out [352]byte
	if len(cryptKey) != 16 || len(tweakKey) != 16 {
		return out, ErrBadKeyLength
	}
	var ck, tk [16]byte
	copy(ck[:], cryptKey)
	copy(tk[:], tweakKey)
	return NewScheduledKeys(ck, tk).Bytes(), nil
}
