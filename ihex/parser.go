package ihex

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/marcinbor85/gohex"
)

// ErrNoData is returned when a source parses cleanly but holds no bytes.
var ErrNoData = errors.New("no data records found")

// Parse parses an Intel HEX file from the given file path.
//
// Example:
//
//	img, err := ihex.Parse("firmware.hex")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("range: 0x%08X-0x%08X\n", img.MinAddress(), img.MaxAddress())
func Parse(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return ParseReader(f)
}

// ParseReader parses an Intel HEX record stream from any io.Reader.
// Data, end-of-file, extended segment/linear address and start linear
// address records are supported. An end-of-file record is required.
//
// Example:
//
//	img, err := ihex.ParseReader(strings.NewReader(":0100000042BD\n:00000001FF\n"))
func ParseReader(r io.Reader) (*Image, error) {
	mem := gohex.NewMemory()
	if err := mem.ParseIntelHex(r); err != nil {
		return nil, fmt.Errorf("failed to parse intel hex: %w", err)
	}

	img, err := newImage(mem)
	if err != nil {
		return nil, fmt.Errorf("failed to parse intel hex: %w", err)
	}
	if img.Empty() {
		return nil, ErrNoData
	}
	return img, nil
}

// ParseBinary loads a raw binary image, placing its first byte at base.
//
// Example:
//
//	img, err := ihex.ParseBinary(f, 0x10000000)
func ParseBinary(r io.Reader, base uint32) (*Image, error) {
	data, err := io.ReadAll(bufio.NewReader(r))
	if err != nil {
		return nil, fmt.Errorf("failed to read binary: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrNoData
	}
	if uint64(base)+uint64(len(data))-1 > math.MaxUint32 {
		return nil, fmt.Errorf("binary of %d bytes at 0x%08X exceeds the 32-bit address space", len(data), base)
	}
	return New(Segment{Address: base, Data: data})
}

// Load opens path and parses it according to its extension: ".bin" files
// are raw binaries placed at base, anything else is read as Intel HEX and
// base is ignored.
func Load(path string, base uint32) (*Image, error) {
	if !IsBinaryPath(path) {
		return Parse(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return ParseBinary(f, base)
}

// IsBinaryPath reports whether path names a raw binary image.
func IsBinaryPath(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".bin")
}
