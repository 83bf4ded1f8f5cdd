package aesprovider

import (
	"runtime"

	"github.com/ebitengine/purego"
)

// discover tries each candidate library name for the host OS in turn and
// returns the first one that resolves every symbol this package needs and
// reports a version >= 1.1.0 and a 16-byte AES-128 key length. It returns
// nil — falling back to pkg/aes128 — if none qualify.
func discover() *handle {
	names := candidateLibraries[runtime.GOOS]
	for _, name := range names {
		lib, err := purego.Dlopen(name, purego.RTLD_NOW|purego.RTLD_GLOBAL)
		if err != nil {
			continue
		}
		h, ok := bind(lib)
		if !ok {
			purego.Dlclose(lib)
			continue
		}
		log.Infof("loaded external AES provider %s", name)
		return h
	}
	log.Infof("no external AES provider found, using bundled primitive")
	return nil
}

// bind resolves the EVP symbols this package drives and validates the
// library's version and key length, per spec.md §4.6 steps 2-3.
func bind(lib uintptr) (*handle, bool) {
	h := &handle{lib: lib}

	symbols := []struct {
		fptr interface{}
		name string
	}{
		{&h.cipherCtxNew, "EVP_CIPHER_CTX_new"},
		{&h.cipherCtxFree, "EVP_CIPHER_CTX_free"},
		{&h.setPadding, "EVP_CIPHER_CTX_set_padding"},
		{&h.encryptInit, "EVP_EncryptInit_ex"},
		{&h.encryptUpdate, "EVP_EncryptUpdate"},
		{&h.encryptFinal, "EVP_EncryptFinal_ex"},
		{&h.decryptInit, "EVP_DecryptInit_ex"},
		{&h.decryptUpdate, "EVP_DecryptUpdate"},
		{&h.decryptFinal, "EVP_DecryptFinal_ex"},
		{&h.aes128ECB, "EVP_aes_128_ecb"},
		{&h.keyLength, "EVP_CIPHER_key_length"},
	}

	for _, s := range symbols {
		if _, err := purego.Dlsym(lib, s.name); err != nil {
			return nil, false
		}
		purego.RegisterLibFunc(s.fptr, lib, s.name)
	}

	var versionFn func() uint64
	resolvedVersionSymbol := false
	for _, name := range []string{"OPENSSL_version_num", "OpenSSL_version_num"} {
		if _, err := purego.Dlsym(lib, name); err == nil {
			purego.RegisterLibFunc(&versionFn, lib, name)
			resolvedVersionSymbol = true
			break
		}
	}
	if !resolvedVersionSymbol || versionFn() < minVersion {
		return nil, false
	}

	cipher := h.aes128ECB()
	if cipher == 0 || h.keyLength(cipher) != 16 {
		return nil, false
	}

	return h, true
}
