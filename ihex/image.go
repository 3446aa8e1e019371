package ihex

import (
	"bytes"
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"
	"sort"

	"github.com/marcinbor85/gohex"
)

// FillByte is returned for addresses that are not present in an image.
const FillByte = 0xFF

// ErrOverlap is returned when two data runs cover the same address.
var ErrOverlap = errors.New("data segments overlap")

// Segment is a contiguous run of bytes in an image.
type Segment struct {
	// Address is the absolute address of Data[0]
	Address uint32

	// Data holds the segment bytes
	Data []byte
}

// End returns the address one past the last byte of the segment.
func (s Segment) End() uint64 {
	return uint64(s.Address) + uint64(len(s.Data))
}

// Image is a sparse memory image: an ordered mapping from 32-bit address
// to byte value. Reads fill absent addresses with FillByte.
type Image struct {
	segments []Segment

	entry    uint32
	hasEntry bool
}

// New builds an image from segments. Segments may be given in any order but
// must not overlap. The data is copied; later changes to the caller's slices
// do not affect the image.
//
// Example:
//
//	img, err := ihex.New(ihex.Segment{Address: 0x10000000, Data: firmware})
func New(segments ...Segment) (*Image, error) {
	mem := gohex.NewMemory()
	for _, s := range segments {
		if len(s.Data) == 0 {
			continue
		}
		if s.End()-1 > math.MaxUint32 {
			return nil, fmt.Errorf("segment at 0x%08X: %d bytes exceed the 32-bit address space", s.Address, len(s.Data))
		}
		// gohex keeps the slice it is given when it prepends to a run.
		if err := mem.AddBinary(s.Address, bytes.Clone(s.Data)); err != nil {
			return nil, fmt.Errorf("add segment at 0x%08X: %w", s.Address, err)
		}
	}
	return newImage(mem)
}

func newImage(mem *gohex.Memory) (*Image, error) {
	img := &Image{}
	for _, s := range mem.GetDataSegments() {
		if len(s.Data) == 0 {
			continue
		}
		seg := Segment{Address: s.Address, Data: s.Data}
		if seg.End() > 1<<32 {
			// gohex joins a run ending at 0xFFFFFFFF with one starting at 0.
			head := int(1<<32 - uint64(seg.Address))
			img.segments = append(img.segments,
				Segment{Address: seg.Address, Data: seg.Data[:head]},
				Segment{Address: 0, Data: seg.Data[head:]},
			)
			continue
		}
		img.segments = append(img.segments, seg)
	}
	slices.SortFunc(img.segments, func(a, b Segment) int {
		return cmp.Compare(a.Address, b.Address)
	})
	// gohex misses overlaps with a run ending at 0xFFFFFFFF.
	for i := 1; i < len(img.segments); i++ {
		prev, cur := img.segments[i-1], img.segments[i]
		if uint64(cur.Address) < prev.End() {
			return nil, fmt.Errorf("%w: 0x%08X-0x%08X and 0x%08X", ErrOverlap, prev.Address, prev.End()-1, cur.Address)
		}
	}
	img.entry, img.hasEntry = mem.GetStartAddress()
	return img, nil
}

// Empty reports whether the image holds no bytes.
func (img *Image) Empty() bool {
	return img == nil || len(img.segments) == 0
}

// MinAddress returns the lowest address present. It is 0 for an empty image.
func (img *Image) MinAddress() uint32 {
	if img.Empty() {
		return 0
	}
	return img.segments[0].Address
}

// MaxAddress returns the highest address present. It is 0 for an empty image.
func (img *Image) MaxAddress() uint32 {
	if img.Empty() {
		return 0
	}
	var end uint64
	for _, s := range img.segments {
		end = max(end, s.End())
	}
	return uint32(end - 1)
}

// Len returns the number of bytes actually present in the image.
func (img *Image) Len() int {
	if img == nil {
		return 0
	}
	n := 0
	for _, s := range img.segments {
		n += len(s.Data)
	}
	return n
}

// Segments returns the contiguous runs of the image in address order.
func (img *Image) Segments() []Segment {
	if img == nil {
		return nil
	}
	out := make([]Segment, len(img.segments))
	copy(out, img.segments)
	return out
}

// EntryPoint returns the start linear address record, if the source had one.
func (img *Image) EntryPoint() (uint32, bool) {
	if img == nil {
		return 0, false
	}
	return img.entry, img.hasEntry
}

// Read returns exactly length bytes starting at start. Addresses absent from
// the image, including any past the top of the 32-bit address space, read
// as FillByte.
func (img *Image) Read(start uint32, length int) []byte {
	if length <= 0 {
		return []byte{}
	}
	out := fill(make([]byte, length))
	if img.Empty() {
		return out
	}

	lo := uint64(start)
	hi := lo + uint64(length)
	segs := img.segments
	i := sort.Search(len(segs), func(i int) bool { return segs[i].End() > lo })
	for ; i < len(segs) && uint64(segs[i].Address) < hi; i++ {
		s := segs[i]
		from := max(lo, uint64(s.Address))
		to := min(hi, s.End())
		copy(out[from-lo:to-lo], s.Data[from-uint64(s.Address):to-uint64(s.Address)])
	}
	return out
}

func fill(b []byte) []byte {
	for i := range b {
		b[i] = FillByte
	}
	return b
}
