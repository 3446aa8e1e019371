// Package ihex loads sparse firmware memory images.
//
// # Intel HEX Format
//
// An Intel HEX file is a sequence of checksummed ASCII records, one per line:
//
//	:LLAAAATT[DD...]CC
//	  LL   = data byte count
//	  AAAA = 16-bit address offset (big-endian)
//	  TT   = record type
//	  DD   = data bytes
//	  CC   = two's complement checksum of all preceding bytes
//
// Record types understood by the parser:
//
//	00 = data
//	01 = end of file (required)
//	02 = extended segment address
//	04 = extended linear address (upper 16 address bits)
//	05 = start linear address (entry point)
//
// Record parsing is done by github.com/marcinbor85/gohex; this package
// wraps the result as an Image with a padded ranged Read.
//
// # Usage
//
// Parse a HEX file from disk:
//
//	img, err := ihex.Parse("firmware.hex")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, seg := range img.Segments() {
//	    fmt.Printf("0x%08X: %d bytes\n", seg.Address, len(seg.Data))
//	}
//
// Read a range, with gaps filled by 0xFF:
//
//	chunk := img.Read(0x10000000, 256)
//
// Raw binaries carry no addresses, so they are loaded at an explicit base:
//
//	img, err := ihex.Load("firmware.bin", 0x10000000)
//
// # Error Handling
//
// Open failures wrap the os error, so errors.Is(err, fs.ErrNotExist)
// identifies a missing file. Syntax, checksum, overlap and missing
// end-of-file errors carry the offending line number. A source with no data
// bytes returns ErrNoData.
package ihex
