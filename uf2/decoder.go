package uf2

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"slices"
)

// Decoder reads successive blocks from a UF2 stream.
type Decoder struct {
	r     *bufio.Reader
	buf   []byte
	index int
}

// NewDecoder returns a Decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{
		r:   bufio.NewReaderSize(r, 16*BlockSize),
		buf: make([]byte, BlockSize),
	}
}

// Next decodes the next block. It returns io.EOF at a clean end of stream
// and ErrTruncatedBlock if the stream ends inside a block.
func (d *Decoder) Next() (*Block, error) {
	n, err := io.ReadFull(d.r, d.buf)
	switch {
	case errors.Is(err, io.EOF):
		return nil, io.EOF
	case errors.Is(err, io.ErrUnexpectedEOF):
		return nil, fmt.Errorf("block %d: %w: got %d bytes, expected %d", d.index, ErrTruncatedBlock, n, BlockSize)
	case err != nil:
		return nil, fmt.Errorf("block %d: read: %w", d.index, err)
	}

	b := &Block{}
	if err := b.UnmarshalBinary(d.buf); err != nil {
		return nil, fmt.Errorf("block %d: %w", d.index, err)
	}
	d.index++
	return b, nil
}

// Summary describes a decoded UF2 stream.
type Summary struct {
	// Blocks is the number of blocks in the stream
	Blocks int

	// MinAddr and MaxAddr bound the written range, MaxAddr exclusive
	MinAddr uint32
	MaxAddr uint64

	// PayloadBytes is the sum of all declared payload sizes
	PayloadBytes int

	// Families lists the distinct family IDs seen, in order of appearance
	Families []uint32

	// HeaderBlockCount is the NumBlocks value of the first block
	HeaderBlockCount uint32

	// ConsistentCount is true when every header advertises the same
	// NumBlocks and it equals Blocks
	ConsistentCount bool

	// Sequential is true when BlockNo runs 0..Blocks-1 and addresses
	// strictly increase
	Sequential bool
}

// Inspect decodes the whole stream and summarises it.
func Inspect(r io.Reader) (*Summary, error) {
	d := NewDecoder(r)
	s := &Summary{ConsistentCount: true, Sequential: true}

	var prevAddr uint32
	for {
		b, err := d.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		if s.Blocks == 0 {
			s.MinAddr = b.TargetAddr
			s.HeaderBlockCount = b.NumBlocks
		} else {
			if b.NumBlocks != s.HeaderBlockCount {
				s.ConsistentCount = false
			}
			if b.TargetAddr <= prevAddr {
				s.Sequential = false
			}
		}
		if b.BlockNo != uint32(s.Blocks) {
			s.Sequential = false
		}

		s.MinAddr = min(s.MinAddr, b.TargetAddr)
		s.MaxAddr = max(s.MaxAddr, uint64(b.TargetAddr)+uint64(len(b.Data)))
		s.PayloadBytes += len(b.Data)
		if b.HasFamilyID() && !slices.Contains(s.Families, b.FamilyID) {
			s.Families = append(s.Families, b.FamilyID)
		}

		prevAddr = b.TargetAddr
		s.Blocks++
	}

	if s.Blocks == 0 {
		return nil, &InvalidInputError{Reason: "stream contains no blocks"}
	}
	if s.HeaderBlockCount != uint32(s.Blocks) {
		s.ConsistentCount = false
	}
	return s, nil
}
