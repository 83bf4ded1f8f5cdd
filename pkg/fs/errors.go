package fs

import "errors"

// Sentinel errors for the container-format failures this package's
// decoders can hit, so callers can match with errors.Is instead of
// string-matching fmt.Errorf output.
var (
	ErrBadPfs0Magic       = errors.New("fs: not a PFS0 partition")
	ErrNameOutOfBounds    = errors.New("fs: string table offset out of bounds")
	ErrBadNcaMagic        = errors.New("fs: not an NCA3 container")
	ErrHeaderKeyMissing   = errors.New("fs: header_key not loaded")
	ErrBadHeaderKeyLength = errors.New("fs: header_key must be 32 bytes")
)
