// Package xtsn implements AES-XTSN, the Nintendo Switch variant of the
// AES-XTS tweakable block-cipher mode: bit-exact sector-level encryption
// for NCA/NAX0-style game images. It differs from standard XTS-AES only in
// how the initial tweak is derived (spec.md §1, §4.3) and carries no
// ciphertext stealing.
package xtsn

// Cipher drives C2 (Counter) and C3 (tweak) across a caller-supplied buffer
// under the data and tweak primitives chosen at construction time (C5).
// A Cipher holds no per-call state beyond its two blockCipher strategies,
// so one Cipher can serve any number of encrypt/decrypt calls; both
// strategies are safe to reuse across concurrent Ciphers built from the
// same ScheduledKeys.
type Cipher struct {
	data  blockCipher
	tweak blockCipher
}

// NewCipher builds a Cipher over keys, picking the external AES provider
// for both roles when it is available and the raw keys are known, falling
// back to the bundled scalar primitive otherwise (spec.md §4.6).
func NewCipher(keys ScheduledKeys) *Cipher {
	return &Cipher{
		data:  newBlockCipher(keys.cryptKey, keys.cryptRK, keys.hasRawKey),
		tweak: newBlockCipher(keys.tweakKey, keys.tweakRK, keys.hasRawKey),
	}
}

// Encrypt AES-XTSN-encrypts buf in place, starting at the given sector
// counter. See Decrypt for the shared validation and control flow; the
// only difference is which direction the data primitive runs.
func (c *Cipher) Encrypt(buf []byte, counter Counter, sectorSize uint32, skippedBytes uint64) error {
	return c.run(buf, counter, sectorSize, skippedBytes, c.data.encrypt)
}

// Decrypt AES-XTSN-decrypts buf in place, starting at the given sector
// counter.
func (c *Cipher) Decrypt(buf []byte, counter Counter, sectorSize uint32, skippedBytes uint64) error {
	return c.run(buf, counter, sectorSize, skippedBytes, c.data.decrypt)
}

// EncryptBytes is the non-mutating convenience form spec.md §6 describes
// for callers that cannot mutate their source buffer in place.
func (c *Cipher) EncryptBytes(buf []byte, counter Counter, sectorSize uint32, skippedBytes uint64) ([]byte, error) {
	out := append([]byte(nil), buf...)
	if err := c.Encrypt(out, counter, sectorSize, skippedBytes); err != nil {
		return nil, err
	}
	return out, nil
}

// DecryptBytes is the non-mutating counterpart of EncryptBytes.
func (c *Cipher) DecryptBytes(buf []byte, counter Counter, sectorSize uint32, skippedBytes uint64) ([]byte, error) {
	out := append([]byte(nil), buf...)
	if err := c.Decrypt(out, counter, sectorSize, skippedBytes); err != nil {
		return nil, err
	}
	return out, nil
}

func validate(buf []byte, sectorSize uint32, skippedBytes uint64) error {
	if len(buf)%16 != 0 {
		return ErrBadBufferAlignment
	}
	if sectorSize == 0 || sectorSize%16 != 0 {
		return ErrBadSectorSize
	}
	if skippedBytes%16 != 0 {
		return ErrBadSkippedBytes
	}
	return nil
}

// run implements spec.md §4.4's control flow: skipped-bytes resumption,
// then the whole-sector loop, then any trailing partial sector. crypher is
// c.data.encrypt or c.data.decrypt; the tweak cipher is always encryption.
func (c *Cipher) run(buf []byte, counter Counter, sectorSize uint32, skippedBytes uint64, crypher func(dst, src *[16]byte) bool) error {
	if err := validate(buf, sectorSize, skippedBytes); err != nil {
		return err
	}
	if len(buf) == 0 {
		return nil
	}

	pos := 0

	if skippedBytes > 0 {
		sectorSize64 := uint64(sectorSize)
		if skippedBytes >= sectorSize64 {
			counter.StepN(skippedBytes / sectorSize64)
			skippedBytes %= sectorSize64
		}
		if skippedBytes > 0 {
			t, ok := newTweak(counter, c.tweak)
			if !ok {
				return ErrCipherProviderFailed
			}
			skips := skippedBytes / 16
			for i := uint64(0); i < skips; i++ {
				t.update()
			}

			remaining := (sectorSize64 - skippedBytes) / 16
			for i := uint64(0); i < remaining && pos < len(buf); i++ {
				if err := cryptBlock(buf[pos:pos+16], &t, crypher); err != nil {
					return err
				}
				t.update()
				pos += 16
			}
			counter.Step()
		}
	}

	sectorBytes := int(sectorSize)
	for len(buf)-pos >= sectorBytes {
		if err := c.cryptSector(buf[pos:pos+sectorBytes], counter, crypher); err != nil {
			return err
		}
		counter.Step()
		pos += sectorBytes
	}

	if pos < len(buf) {
		if err := c.cryptSector(buf[pos:], counter, crypher); err != nil {
			return err
		}
		// Trailing partial sector: no further sector follows, so the
		// counter is deliberately left unadvanced (spec.md §4.4).
	}

	return nil
}

// cryptSector processes a whole or partial sector's worth of blocks under
// a freshly derived tweak for counter.
func (c *Cipher) cryptSector(sector []byte, counter Counter, crypher func(dst, src *[16]byte) bool) error {
	t, ok := newTweak(counter, c.tweak)
	if !ok {
		return ErrCipherProviderFailed
	}
	for i := 0; i+16 <= len(sector); i += 16 {
		if err := cryptBlock(sector[i:i+16], &t, crypher); err != nil {
			return err
		}
		t.update()
	}
	return nil
}

// cryptBlock runs one 16-byte block through XOR-crypher-XOR under tweak t.
func cryptBlock(block []byte, t *tweak, crypher func(dst, src *[16]byte) bool) error {
	var b [16]byte
	copy(b[:], block)

	t.xorBlock(&b)
	if !crypher(&b, &b) {
		return ErrCipherProviderFailed
	}
	t.xorBlock(&b)

	copy(block, b[:])
	return nil
}
