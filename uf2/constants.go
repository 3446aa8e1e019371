package uf2

// Block framing constants. Every block is exactly BlockSize bytes on the wire.
const (
	// MagicStart0 is the first header word ("UF2\n")
	MagicStart0 = 0x0A324655

	// MagicStart1 is the second header word
	MagicStart1 = 0x9E5D5157

	// MagicEnd is the trailing word of every block
	MagicEnd = 0x0AB16F30

	// BlockSize is the fixed size of an encoded block in bytes
	BlockSize = 512

	// HeaderSize is the size of the eight 32-bit header words
	HeaderSize = 32

	// PayloadSize is the number of image bytes carried by each emitted block
	PayloadSize = 256

	// PaddingSize is the number of zero bytes between payload and trailer
	PaddingSize = 220

	// TrailerSize is the size of the MagicEnd word
	TrailerSize = 4

	// MaxPayloadSize is the largest payload a decoded block may declare
	// (the whole data area between header and trailer)
	MaxPayloadSize = BlockSize - HeaderSize - TrailerSize

	// FillByte pads addresses that are absent from the image (erased flash)
	FillByte = 0xFF
)

// Header flag bits.
const (
	// FlagNotMainFlash marks blocks a bootloader should not write to main flash
	FlagNotMainFlash = 0x00000001

	// FlagFileContainer marks blocks that carry a file, not a flash image
	FlagFileContainer = 0x00001000

	// FlagFamilyIDPresent means the last header word holds a family ID
	FlagFamilyIDPresent = 0x00002000

	// FlagMD5Present means the data area carries an MD5 checksum
	FlagMD5Present = 0x00004000

	// FlagExtensionTags means extension tags follow the payload
	FlagExtensionTags = 0x00008000
)

// Header word byte offsets.
const (
	offMagicStart0 = 0
	offMagicStart1 = 4
	offFlags       = 8
	offTargetAddr  = 12
	offPayloadSize = 16
	offBlockNo     = 20
	offNumBlocks   = 24
	offFamilyID    = 28
	offData        = HeaderSize
	offMagicEnd    = BlockSize - TrailerSize
)

// The framing must add up to one block.
var _ = [1]struct{}{}[HeaderSize+PayloadSize+PaddingSize+TrailerSize-BlockSize]
