package xtsn

// Encrypt is the protocol-level operation from spec.md §6. It validates
// roundKeys' length, schedules nothing further (roundKeys is already an
// expanded ScheduledKeys blob), and returns a freshly allocated buffer the
// same length as buf containing the AES-XTSN ciphertext.
func Encrypt(roundKeys []byte, buf []byte, counterHi, counterLo uint64, sectorSize uint32, skippedBytes uint64) ([]byte, error) {
	return crypt(roundKeys, buf, counterHi, counterLo, sectorSize, skippedBytes, true)
}

// Decrypt is the inverse of Encrypt under the same parameters.
func Decrypt(roundKeys []byte, buf []byte, counterHi, counterLo uint64, sectorSize uint32, skippedBytes uint64) ([]byte, error) {
	return crypt(roundKeys, buf, counterHi, counterLo, sectorSize, skippedBytes, false)
}

func crypt(roundKeys []byte, buf []byte, counterHi, counterLo uint64, sectorSize uint32, skippedBytes uint64, encrypt bool) ([]byte, error) {
	if len(roundKeys) != 352 {
		return nil, ErrBadRoundKeysLength
	}
	var raw [352]byte
	copy(raw[:], roundKeys)

	cipher := NewCipher(ParseScheduledKeys(raw))
	counter := NewCounter(counterHi, counterLo)

	if encrypt {
		return cipher.EncryptBytes(buf, counter, sectorSize, skippedBytes)
	}
	return cipher.DecryptBytes(buf, counter, sectorSize, skippedBytes)
}
