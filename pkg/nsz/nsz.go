package nsz

import (
	"encoding/binary"
	"errors"
	"io"
)

const (
	MagicNSZ = "NSZ%"
)

// ErrBadNSZMagic is returned by ReadHeader when the leading four bytes
// don't match MagicNSZ.
var ErrBadNSZMagic = errors.New("nsz: not an NSZ container")

// NSZHeader structure (Little Endian)
// Offset 0x00: Magic "NSZ%" (4 bytes)
// Offset 0x04: Version (4 bytes)
// Offset 0x08: Target Block Size Exponent (4 bytes) (e.g. 20 for 1MB)
// Offset 0x0C: Number of Sections (4 bytes)
// Offset 0x10: Data Offset (8 bytes)
type NSZHeader struct {
	Magic        [4]byte
	Version      uint32
	BlockSizeExp uint32
	SectionCount uint32
	DataOffset   uint64
}

// NewHeader builds a single-section NSZ header for blockSizeExp-sized
// compression blocks (2^blockSizeExp bytes each).
func NewHeader(blockSizeExp uint32) *NSZHeader {
	h := &NSZHeader{
		Version:      0,
		BlockSizeExp: blockSizeExp,
		SectionCount: 1,
	}
	copy(h.Magic[:], MagicNSZ)
	return h
}

// Write writes the NSZ header to w.
func (h *NSZHeader) Write(w io.Writer) error {
	return binary.Write(w, binary.LittleEndian, h)
}

// ReadHeader reads and validates an NSZ header from r.
func ReadHeader(r io.Reader) (*NSZHeader, error) {
	var h NSZHeader
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return nil, err
	}
	if string(h.Magic[:]) != MagicNSZ {
		return nil, ErrBadNSZMagic
	}
	return &h, nil
}

// SectionHeader inside NSZ
type SectionHeader struct {
	FileOffset    uint64
	Size          uint64
	CryptoType    int64
	Padding       [8]byte
	CryptoKey     [16]byte
	CryptoCounter [16]byte
}
