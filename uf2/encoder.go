package uf2

import (
	"fmt"
	"io"
)

// Image is a sparse memory image that can be read with gap filling.
// ihex.Image implements it.
type Image interface {
	// Empty reports whether the image holds no bytes at all
	Empty() bool

	// MinAddress is the lowest address present in the image
	MinAddress() uint32

	// MaxAddress is the highest address present in the image
	MaxAddress() uint32

	// Read returns exactly length bytes starting at start,
	// with FillByte for every address not present in the image
	Read(start uint32, length int) []byte
}

// Job is the immutable input of one encoding run.
type Job struct {
	Image    Image
	FamilyID uint32
}

// Layout describes the block range covering an image.
type Layout struct {
	// StartAddr is MinAddress rounded down to a PayloadSize boundary
	StartAddr uint32

	// AdvisoryBlockCount is the count written into every header,
	// (MaxAddress-StartAddr)/PayloadSize + 1
	AdvisoryBlockCount uint32

	// ActualBlockCount is the number of blocks the encoder emits, one per
	// PayloadSize step from StartAddr while the cursor is <= MaxAddress
	ActualBlockCount uint32
}

// Size returns the encoded output size in bytes.
func (l Layout) Size() int64 {
	return int64(l.ActualBlockCount) * BlockSize
}

// PlanLayout computes the block range for a non-empty image.
func PlanLayout(img Image) (Layout, error) {
	if img == nil || img.Empty() {
		return Layout{}, &InvalidInputError{Reason: "image is empty"}
	}
	minAddr, maxAddr := img.MinAddress(), img.MaxAddress()
	if maxAddr < minAddr {
		return Layout{}, &InvalidInputError{
			Reason: fmt.Sprintf("max address 0x%08X below min address 0x%08X", maxAddr, minAddr),
		}
	}

	start := minAddr - minAddr%PayloadSize
	advisory := (maxAddr-start)/PayloadSize + 1

	// Cursor steps start, start+PayloadSize, ... while <= maxAddr.
	actual := uint32((uint64(maxAddr)-uint64(start))/PayloadSize + 1)

	return Layout{
		StartAddr:          start,
		AdvisoryBlockCount: advisory,
		ActualBlockCount:   actual,
	}, nil
}

// Blocks is a lazy, finite, single-use sequence of encoded blocks.
type Blocks struct {
	img      Image
	familyID uint32
	flags    uint32
	layout   Layout
	maxAddr  uint64
	curr     uint64
	blockNo  uint32
}

// Encode prepares the block sequence for img. Blocks are produced on demand
// by Next or WriteTo, in strictly increasing address order.
//
// Example:
//
//	blocks, err := uf2.Encode(img, 0xE48BFF56)
//	if err != nil {
//	    return err
//	}
//	_, err = blocks.WriteTo(f)
func Encode(img Image, familyID uint32) (*Blocks, error) {
	layout, err := PlanLayout(img)
	if err != nil {
		return nil, err
	}

	var flags uint32
	if familyID != 0 {
		flags |= FlagFamilyIDPresent
	}

	return &Blocks{
		img:      img,
		familyID: familyID,
		flags:    flags,
		layout:   layout,
		maxAddr:  uint64(img.MaxAddress()),
		curr:     uint64(layout.StartAddr),
	}, nil
}

// EncodeJob is Encode for a Job.
func EncodeJob(job Job) (*Blocks, error) {
	return Encode(job.Image, job.FamilyID)
}

// Layout returns the block range being encoded.
func (s *Blocks) Layout() Layout {
	return s.layout
}

// Emitted returns the number of blocks produced so far.
func (s *Blocks) Emitted() uint32 {
	return s.blockNo
}

// Next returns the next block, or false once the image is covered.
func (s *Blocks) Next() (*Block, bool) {
	if s.curr > s.maxAddr {
		return nil, false
	}

	addr := uint32(s.curr)
	b := &Block{
		Flags:      s.flags,
		TargetAddr: addr,
		BlockNo:    s.blockNo,
		NumBlocks:  s.layout.AdvisoryBlockCount,
		FamilyID:   s.familyID,
		Data:       payload(s.img.Read(addr, PayloadSize)),
	}

	s.blockNo++
	s.curr += PayloadSize
	return b, true
}

// WriteTo writes every remaining block to w sequentially.
func (s *Blocks) WriteTo(w io.Writer) (int64, error) {
	var written int64
	buf := make([]byte, 0, BlockSize)
	for {
		b, ok := s.Next()
		if !ok {
			return written, nil
		}

		var err error
		buf, err = b.AppendBinary(buf[:0])
		if err != nil {
			return written, err
		}

		n, err := w.Write(buf)
		written += int64(n)
		if err != nil {
			return written, fmt.Errorf("write block %d: %w", b.BlockNo, err)
		}
	}
}

// payload normalises a read to exactly PayloadSize bytes.
func payload(data []byte) []byte {
	switch {
	case len(data) == PayloadSize:
		return data
	case len(data) > PayloadSize:
		return data[:PayloadSize]
	}
	out := make([]byte, PayloadSize)
	n := copy(out, data)
	for i := n; i < PayloadSize; i++ {
		out[i] = FillByte
	}
	return out
}
