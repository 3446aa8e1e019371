// Package uf2 encodes sparse memory images into the UF2 flashing format.
//
// # Block Format
//
// A UF2 file is a concatenation of 512-byte blocks. Each block is
// self-describing, so a bootloader can accept blocks from a mass-storage
// write in any order and detect truncation from the magic words:
//
//	Offset  Size  Field
//	0       4     MagicStart0 (0x0A324655)
//	4       4     MagicStart1 (0x9E5D5157)
//	8       4     Flags (0x2000 = family ID present)
//	12      4     Target address
//	16      4     Payload size (256)
//	20      4     Block number (0-based)
//	24      4     Total block count
//	28      4     Family ID, or 0
//	32      256   Payload, 0xFF past the image end
//	288     220   Zero padding
//	508     4     MagicEnd (0x0AB16F30)
//
// All words are little-endian.
//
// # Encoding
//
// The first block starts at the image's minimum address rounded down to a
// 256-byte boundary. Blocks follow at 256-byte steps until the cursor passes
// the maximum address:
//
//	img, err := ihex.Parse("firmware.hex")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	blocks, err := uf2.Encode(img, 0xE48BFF56) // RP2040
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if _, err := blocks.WriteTo(out); err != nil {
//	    log.Fatal(err)
//	}
//
// Blocks is single-use: once Next has returned false (or WriteTo has
// returned) the sequence is exhausted.
//
// # Family IDs
//
// Families and ParseFamilyID expose a registry of known chip families.
// ParseFamilyID also accepts any 32-bit hexadecimal literal.
//
// # Decoding
//
// Decoder and Inspect read UF2 streams back and validate every block.
package uf2
