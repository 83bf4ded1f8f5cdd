// Package crypto holds the AES-CTR streaming helper used for BKTR and CTR
// section decryption. Header decryption (AES-XTSN) lives in pkg/xtsn, and
// key-area unwrapping (AES-ECB) lives in pkg/aes128; both run on the
// bundled primitive, and XTSN can also use the external provider.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/binary"
	"fmt"
	"sync"
)

var (
	cipherCache   = make(map[[16]byte]cipher.Block)
	cipherCacheMu sync.RWMutex
)

func getCachedCipher(key []byte) (cipher.Block, error) {
	if len(key) != 16 {
		return nil, fmt.Errorf("key must be 16 bytes, got %d", len(key))
	}

	var keyArr [16]byte
	copy(keyArr[:], key)

	cipherCacheMu.RLock()
	block, ok := cipherCache[keyArr]
	cipherCacheMu.RUnlock()
	if ok {
		return block, nil
	}

	cipherCacheMu.Lock()
	defer cipherCacheMu.Unlock()

	if block, ok = cipherCache[keyArr]; ok {
		return block, nil
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	cipherCache[keyArr] = block
	return block, nil
}

// NewCTRStream creates an AES-CTR stream starting at a specific absolute
// offset. iv holds the section's base counter; bytes 8-15 are overwritten
// with the block number (offset / 16) in big-endian. CTR sections (BKTR
// relocation/subsection tables, NCA CryptoTypeCTR) are outside AES-XTSN's
// scope, so this keeps using crypto/aes directly rather than pkg/aes128.
func NewCTRStream(key, iv []byte, absoluteOffset int64) (cipher.Stream, error) {
	block, err := getCachedCipher(key)
	if err != nil {
		return nil, err
	}

	counter := make([]byte, 16)
	copy(counter, iv)
	binary.BigEndian.PutUint64(counter[8:], uint64(absoluteOffset>>4))

	return cipher.NewCTR(block, counter), nil
}
