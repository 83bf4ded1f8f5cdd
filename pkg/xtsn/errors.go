package xtsn

import "errors"

// Sentinel errors for the validation and runtime-failure kinds spec.md §7
// names. Callers can match against these with errors.Is.
var (
	ErrBadKeyLength       = errors.New("xtsn: key must be 16 bytes")
	ErrBadRoundKeysLength = errors.New("xtsn: scheduled round keys must be 352 bytes")
	ErrBadBufferAlignment = errors.New("xtsn: buffer length must be a multiple of 16")
	ErrBadSectorSize      = errors.New("xtsn: sector size must be a positive multiple of 16")
	ErrBadSkippedBytes    = errors.New("xtsn: skipped bytes must be a multiple of 16")
	ErrBadSectorOffset    = errors.New("xtsn: sector offset does not fit an unsigned 128-bit integer")
	ErrCipherProviderFailed = errors.New("xtsn: external AES provider failed a block call")
)
