// Package aesprovider is the optional external AES-128-ECB provider (C6 in
// the design): a runtime-discovered host crypto library substituted for
// pkg/aes128's bundled scalar primitive when present and version-compatible.
//
// It is discovered via github.com/ebitengine/purego, the same
// dlopen-without-cgo mechanism the broader Go ecosystem reaches for when a
// shared library needs to be probed and called at runtime rather than
// linked against at build time.
package aesprovider

import (
	"sync"

	"github.com/ebitengine/purego"

	"github.com/falk/switchxts/internal/xlog"
)

// minVersion is OpenSSL_version_num()'s encoding of 1.1.0 (the lowest
// version this provider trusts, per spec.md §4.6 step 3): a 0xMNNFFPPS
// packed value where M is the major version and NN the minor.
const minVersion = 0x10100000

var candidateLibraries = map[string][]string{
	"linux":   {"libcrypto.so.3", "libcrypto.so.1.1", "libcrypto.so"},
	"darwin":  {"libcrypto.3.dylib", "libcrypto.1.1.dylib", "libcrypto.dylib"},
	"windows": {"libcrypto-3-x64.dll", "libcrypto-1_1-x64.dll", "libcrypto-1_1.dll"},
}

// handle bundles the resolved symbols needed to drive one-shot AES-128-ECB
// cipher contexts. Everything here is read-only after Load succeeds.
type handle struct {
	lib uintptr

	cipherCtxNew  func() uintptr
	cipherCtxFree func(ctx uintptr)
	setPadding    func(ctx uintptr, pad int32) int32
	encryptInit   func(ctx, cipher, impl uintptr, key, iv *byte) int32
	encryptUpdate func(ctx uintptr, out *byte, outl *int32, in *byte, inl int32) int32
	encryptFinal  func(ctx uintptr, out *byte, outl *int32) int32
	decryptInit   func(ctx, cipher, impl uintptr, key, iv *byte) int32
	decryptUpdate func(ctx uintptr, out *byte, outl *int32, in *byte, inl int32) int32
	decryptFinal  func(ctx uintptr, out *byte, outl *int32) int32
	aes128ECB     func() uintptr
	keyLength     func(cipher uintptr) int32
}

var (
	mu       sync.Mutex
	active   *handle
	disabled bool
	loadOnce sync.Once
	log      = xlog.New("aesprovider")
)

// Load attempts to discover and validate a host AES library, per spec.md
// §4.6. It is idempotent: repeated calls after the first are no-ops. It
// runs automatically, once, from Available/EncryptECB/DecryptECB, but can
// be called explicitly at process start to pay the discovery cost early.
func Load() {
	loadOnce.Do(func() {
		mu.Lock()
		defer mu.Unlock()
		active = discover()
	})
}

// Unload tears down the active provider handle, if any. Safe to call
// whether or not a provider was ever loaded.
func Unload() {
	mu.Lock()
	defer mu.Unlock()
	if active != nil {
		purego.Dlclose(active.lib)
		active = nil
	}
}

// Disable forces Available to report false regardless of what was
// discovered, for deterministic tests that must exercise the bundled
// scalar primitive only (spec.md §6's "switch to force-disable").
func Disable(v bool) {
	mu.Lock()
	defer mu.Unlock()
	disabled = v
}

// Available reports whether a validated external provider is ready for use.
func Available() bool {
	Load()
	mu.Lock()
	defer mu.Unlock()
	return active != nil && !disabled
}
