package aes128

import "fmt"

// ECBEncrypt and ECBDecrypt drive the scalar primitive in plain
// block-at-a-time ECB mode, with no chaining or tweak. Switch key
// derivation (wrapping master keys, title keys, key-area entries) uses
// ECB rather than XTSN, so this lives alongside the XTSN engine instead
// of inside pkg/xtsn.
func ECBEncrypt(data, key []byte) ([]byte, error) {
	rk, err := scheduleFromSlice(key)
	if err != nil {
		return nil, err
	}
	if len(data)%blockSize != 0 {
		return nil, fmt.Errorf("aes128: data length %d not a multiple of the block size", len(data))
	}

	out := make([]byte, len(data))
	var in, blk [16]byte
	for i := 0; i < len(data); i += blockSize {
		copy(in[:], data[i:i+blockSize])
		rk.EncryptBlock(&blk, &in)
		copy(out[i:i+blockSize], blk[:])
	}
	return out, nil
}

func ECBDecrypt(data, key []byte) ([]byte, error) {
	rk, err := scheduleFromSlice(key)
	if err != nil {
		return nil, err
	}
	if len(data)%blockSize != 0 {
		return nil, fmt.Errorf("aes128: data length %d not a multiple of the block size", len(data))
	}

	out := make([]byte, len(data))
	var in, blk [16]byte
	for i := 0; i < len(data); i += blockSize {
		copy(in[:], data[i:i+blockSize])
		rk.DecryptBlock(&blk, &in)
		copy(out[i:i+blockSize], blk[:])
	}
	return out, nil
}

func scheduleFromSlice(key []byte) (RoundKeys, error) {
	if len(key) != 16 {
		return RoundKeys{}, fmt.Errorf("aes128: key must be 16 bytes, got %d", len(key))
	}
	var k [16]byte
	copy(k[:], key)
	return Schedule(k), nil
}
