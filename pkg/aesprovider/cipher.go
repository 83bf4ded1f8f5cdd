package aesprovider

// EncryptECB encrypts one 16-byte block under key using the active external
// provider in ECB mode with padding disabled (spec.md §4.6 step 4). It
// reports false if no provider is active or if any EVP call fails; the
// caller (pkg/xtsn) treats false as ErrCipherProviderFailed and aborts.
func EncryptECB(key [16]byte, dst, src *[16]byte) bool {
	if !Available() {
		return false
	}
	return active.run(true, key, dst, src)
}

// DecryptECB is the decrypt-direction counterpart of EncryptECB.
func DecryptECB(key [16]byte, dst, src *[16]byte) bool {
	if !Available() {
		return false
	}
	return active.run(false, key, dst, src)
}

// run creates a fresh cipher context, inits it in ECB mode with padding
// off, pushes the single block through Update/Final, and frees the
// context — the per-block allocation shape spec.md §4.6 describes.
func (h *handle) run(encrypt bool, key [16]byte, dst, src *[16]byte) bool {
	ctx := h.cipherCtxNew()
	if ctx == 0 {
		return false
	}
	defer h.cipherCtxFree(ctx)

	cipher := h.aes128ECB()
	var rc int32
	if encrypt {
		rc = h.encryptInit(ctx, cipher, 0, &key[0], nil)
	} else {
		rc = h.decryptInit(ctx, cipher, 0, &key[0], nil)
	}
	if rc != 1 {
		return false
	}
	if h.setPadding(ctx, 0) != 1 {
		return false
	}

	var outLen int32
	out := make([]byte, 32) // room for one block plus a possible padding block
	if encrypt {
		rc = h.encryptUpdate(ctx, &out[0], &outLen, &src[0], 16)
	} else {
		rc = h.decryptUpdate(ctx, &out[0], &outLen, &src[0], 16)
	}
	if rc != 1 || outLen != 16 {
		return false
	}

	var finalLen int32
	if encrypt {
		rc = h.encryptFinal(ctx, &out[outLen], &finalLen)
	} else {
		rc = h.decryptFinal(ctx, &out[outLen], &finalLen)
	}
	if rc != 1 {
		return false
	}

	copy(dst[:], out[:16])
	return true
}
