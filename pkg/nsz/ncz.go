package nsz

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const (
	MagicNCZSECTN = "NCZSECTN"
	MagicNCZBLOCK = "NCZBLOCK"
)

// ErrBadNczSectionMagic and ErrBadNczBlockMagic flag a corrupt or
// foreign NCZ stream when reading the section/block headers back.
var (
	ErrBadNczSectionMagic = errors.New("nsz: not an NCZSECTN header")
	ErrBadNczBlockMagic   = errors.New("nsz: not an NCZBLOCK header")
)

type NczSectionHeader struct {
	Magic        [8]byte // NCZSECTN
	SectionCount uint64
}

type NczSectionEntry struct {
	Offset        uint64
	Size          uint64
	CryptoType    uint64
	Padding       uint64
	CryptoKey     [16]byte
	CryptoCounter [16]byte
}

type NczBlockHeader struct {
	Magic            [8]byte // NCZBLOCK
	Version          uint8   // 2
	Type             uint8   // 1
	Unused           uint8
	BlockSizeExp     uint8
	BlockCount       uint32
	DecompressedSize uint64
}

// WriteNczHeader writes the NCZSECTN header and its section entries.
func WriteNczHeader(w io.Writer, sections []NczSectionEntry) error {
	var h NczSectionHeader
	copy(h.Magic[:], MagicNCZSECTN)
	h.SectionCount = uint64(len(sections))

	if err := binary.Write(w, binary.LittleEndian, h); err != nil {
		return err
	}

	for _, s := range sections {
		if err := binary.Write(w, binary.LittleEndian, s); err != nil {
			return err
		}
	}
	return nil
}

// ReadNczHeader reads the NCZSECTN header and its section entries back.
func ReadNczHeader(r io.Reader) ([]NczSectionEntry, error) {
	var h NczSectionHeader
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return nil, err
	}
	if string(h.Magic[:]) != MagicNCZSECTN {
		return nil, fmt.Errorf("%w: got %q", ErrBadNczSectionMagic, h.Magic)
	}

	sections := make([]NczSectionEntry, h.SectionCount)
	if err := binary.Read(r, binary.LittleEndian, &sections); err != nil {
		return nil, err
	}
	return sections, nil
}

// ReadNczBlockHeader reads and validates an NCZBLOCK header.
func ReadNczBlockHeader(r io.Reader) (*NczBlockHeader, error) {
	var h NczBlockHeader
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return nil, err
	}
	if string(h.Magic[:]) != MagicNCZBLOCK {
		return nil, fmt.Errorf("%w: got %q", ErrBadNczBlockMagic, h.Magic)
	}
	return &h, nil
}
