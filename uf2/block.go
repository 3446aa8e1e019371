package uf2

import (
	"encoding/binary"
	"fmt"
)

// Block is a single self-describing UF2 block.
type Block struct {
	// Flags holds the header flag bits (FlagFamilyIDPresent, ...)
	Flags uint32

	// TargetAddr is the flash address the payload is written to
	TargetAddr uint32

	// BlockNo is the zero-based sequence number of the block
	BlockNo uint32

	// NumBlocks is the total block count advertised in the header
	NumBlocks uint32

	// FamilyID identifies the target chip family, or 0 when absent
	FamilyID uint32

	// Data is the payload. Encoded blocks always carry PayloadSize bytes.
	Data []byte
}

// HasFamilyID reports whether the family ID flag is set.
func (b *Block) HasFamilyID() bool {
	return b.Flags&FlagFamilyIDPresent != 0
}

// MarshalBinary encodes the block into its 512-byte wire form.
func (b *Block) MarshalBinary() ([]byte, error) {
	return b.AppendBinary(make([]byte, 0, BlockSize))
}

// AppendBinary appends the 512-byte wire form of the block to dst.
func (b *Block) AppendBinary(dst []byte) ([]byte, error) {
	if len(b.Data) > MaxPayloadSize {
		return nil, fmt.Errorf("block %d: %w: %d bytes", b.BlockNo, ErrPayloadTooLarge, len(b.Data))
	}

	n := len(dst)
	dst = append(dst, make([]byte, BlockSize)...)
	buf := dst[n : n+BlockSize]

	binary.LittleEndian.PutUint32(buf[offMagicStart0:], MagicStart0)
	binary.LittleEndian.PutUint32(buf[offMagicStart1:], MagicStart1)
	binary.LittleEndian.PutUint32(buf[offFlags:], b.Flags)
	binary.LittleEndian.PutUint32(buf[offTargetAddr:], b.TargetAddr)
	binary.LittleEndian.PutUint32(buf[offPayloadSize:], uint32(len(b.Data)))
	binary.LittleEndian.PutUint32(buf[offBlockNo:], b.BlockNo)
	binary.LittleEndian.PutUint32(buf[offNumBlocks:], b.NumBlocks)
	binary.LittleEndian.PutUint32(buf[offFamilyID:], b.FamilyID)
	copy(buf[offData:], b.Data)
	binary.LittleEndian.PutUint32(buf[offMagicEnd:], MagicEnd)

	return dst, nil
}

// UnmarshalBinary decodes and validates a 512-byte block.
// Both magic words must match and the declared payload must fit the data area.
func (b *Block) UnmarshalBinary(data []byte) error {
	if len(data) != BlockSize {
		return fmt.Errorf("%w: got %d bytes, expected %d", ErrTruncatedBlock, len(data), BlockSize)
	}

	start0 := binary.LittleEndian.Uint32(data[offMagicStart0:])
	start1 := binary.LittleEndian.Uint32(data[offMagicStart1:])
	if start0 != MagicStart0 || start1 != MagicStart1 {
		return fmt.Errorf("%w: start words 0x%08X 0x%08X", ErrBadMagic, start0, start1)
	}
	if end := binary.LittleEndian.Uint32(data[offMagicEnd:]); end != MagicEnd {
		return fmt.Errorf("%w: end word 0x%08X", ErrBadMagic, end)
	}

	size := binary.LittleEndian.Uint32(data[offPayloadSize:])
	if size > MaxPayloadSize {
		return fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, size)
	}

	b.Flags = binary.LittleEndian.Uint32(data[offFlags:])
	b.TargetAddr = binary.LittleEndian.Uint32(data[offTargetAddr:])
	b.BlockNo = binary.LittleEndian.Uint32(data[offBlockNo:])
	b.NumBlocks = binary.LittleEndian.Uint32(data[offNumBlocks:])
	b.FamilyID = binary.LittleEndian.Uint32(data[offFamilyID:])
	b.Data = make([]byte, size)
	copy(b.Data, data[offData:offData+int(size)])

	return nil
}
