package ihex

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eof = ":00000001FF\n"

func TestParseReader(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		want     []Segment
		wantMin  uint32
		wantMax  uint32
		wantErr  bool
		errMsg   string
		errorsIs error
	}{
		{
			name:    "single data record",
			input:   ":0401000001020304F1\n" + eof,
			want:    []Segment{{Address: 0x0100, Data: []byte{1, 2, 3, 4}}},
			wantMin: 0x0100,
			wantMax: 0x0103,
		},
		{
			name: "sparse records",
			input: ":02000000AABB99\n" +
				":01020000CC31\n" +
				eof,
			want: []Segment{
				{Address: 0x0000, Data: []byte{0xAA, 0xBB}},
				{Address: 0x0200, Data: []byte{0xCC}},
			},
			wantMin: 0x0000,
			wantMax: 0x0200,
		},
		{
			name: "extended linear address",
			input: ":020000041000EA\n" +
				":0401000001020304F1\n" +
				eof,
			want:    []Segment{{Address: 0x10000100, Data: []byte{1, 2, 3, 4}}},
			wantMin: 0x10000100,
			wantMax: 0x10000103,
		},
		{
			name: "extended segment address",
			input: ":020000021000EC\n" +
				":01001000559A\n" +
				eof,
			want:    []Segment{{Address: 0x00010010, Data: []byte{0x55}}},
			wantMin: 0x00010010,
			wantMax: 0x00010010,
		},
		{
			name: "top of address space",
			input: ":02000004FFFFFC\n" +
				":02FFFE000102FE\n" +
				eof,
			want:    []Segment{{Address: 0xFFFFFFFE, Data: []byte{1, 2}}},
			wantMin: 0xFFFFFFFE,
			wantMax: 0xFFFFFFFF,
		},
		{
			name: "overlap at top of address space",
			input: ":02000004FFFFFC\n" +
				":02FFFE000102FE\n" +
				":01FFFF0033CE\n" +
				eof,
			wantErr: true,
			errMsg:  "overlap",
		},
		{
			name:    "windows line endings",
			input:   ":0401000001020304F1\r\n:00000001FF\r\n",
			want:    []Segment{{Address: 0x0100, Data: []byte{1, 2, 3, 4}}},
			wantMin: 0x0100,
			wantMax: 0x0103,
		},
		{
			name:    "with empty lines",
			input:   "\n:0401000001020304F1\n\n" + eof + "\n",
			want:    []Segment{{Address: 0x0100, Data: []byte{1, 2, 3, 4}}},
			wantMin: 0x0100,
			wantMax: 0x0103,
		},
		{
			name:     "empty file",
			input:    "",
			wantErr:  true,
			errMsg:   "no end of file",
		},
		{
			name:     "no data records",
			input:    eof,
			wantErr:  true,
			errorsIs: ErrNoData,
		},
		{
			name:    "missing end of file",
			input:   ":0401000001020304F1\n",
			wantErr: true,
			errMsg:  "no end of file",
		},
		{
			name:    "checksum mismatch",
			input:   ":0401000001020304F0\n" + eof,
			wantErr: true,
			errMsg:  "checksum error",
		},
		{
			name:    "missing colon",
			input:   "0401000001020304F1\n" + eof,
			wantErr: true,
			errMsg:  "syntax error",
		},
		{
			name:    "invalid hex",
			input:   ":04010000010203ZZF1\n" + eof,
			wantErr: true,
			errMsg:  "syntax error",
		},
		{
			name: "overlapping records",
			input: ":0401000001020304F1\n" +
				":020102000909E9\n" +
				eof,
			wantErr: true,
			errMsg:  "overlap",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := ParseReader(strings.NewReader(tt.input))
			if tt.wantErr {
				require.Error(t, err)
				if tt.errMsg != "" {
					assert.Contains(t, err.Error(), tt.errMsg)
				}
				if tt.errorsIs != nil {
					assert.ErrorIs(t, err, tt.errorsIs)
				}
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, img.Segments())
			assert.Equal(t, tt.wantMin, img.MinAddress())
			assert.Equal(t, tt.wantMax, img.MaxAddress())
		})
	}
}

func TestParseReader_EntryPoint(t *testing.T) {
	img, err := ParseReader(strings.NewReader(
		":0400000510000101E5\n" +
			":0100000042BD\n" +
			eof))
	require.NoError(t, err)

	entry, ok := img.EntryPoint()
	require.True(t, ok)
	assert.Equal(t, uint32(0x10000101), entry)

	img, err = ParseReader(strings.NewReader(":0100000042BD\n" + eof))
	require.NoError(t, err)
	_, ok = img.EntryPoint()
	assert.False(t, ok)
}

func TestParse(t *testing.T) {
	dir := t.TempDir()

	t.Run("reads file from disk", func(t *testing.T) {
		path := filepath.Join(dir, "fw.hex")
		require.NoError(t, os.WriteFile(path, []byte(":02010000AABB98\n"+eof), 0o600))

		img, err := Parse(path)
		require.NoError(t, err)
		assert.Equal(t, uint32(0x100), img.MinAddress())
		assert.Equal(t, 2, img.Len())
	})

	t.Run("missing file wraps fs.ErrNotExist", func(t *testing.T) {
		_, err := Parse(filepath.Join(dir, "missing.hex"))
		require.Error(t, err)
		assert.True(t, errors.Is(err, fs.ErrNotExist))
		assert.Contains(t, err.Error(), "failed to open file")
	})
}

func TestParseBinary(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		base     uint32
		wantMax  uint32
		wantErr  bool
		errorsIs error
	}{
		{name: "at flash base", data: []byte{1, 2, 3}, base: 0x10000000, wantMax: 0x10000002},
		{name: "at zero", data: bytes.Repeat([]byte{7}, 300), base: 0, wantMax: 299},
		{name: "ends at top", data: []byte{1, 2}, base: 0xFFFFFFFE, wantMax: 0xFFFFFFFF},
		{name: "empty", data: nil, wantErr: true, errorsIs: ErrNoData},
		{name: "past top", data: []byte{1, 2, 3}, base: 0xFFFFFFFE, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := ParseBinary(bytes.NewReader(tt.data), tt.base)
			if tt.wantErr {
				require.Error(t, err)
				if tt.errorsIs != nil {
					assert.ErrorIs(t, err, tt.errorsIs)
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.base, img.MinAddress())
			assert.Equal(t, tt.wantMax, img.MaxAddress())
			assert.Equal(t, tt.data, img.Read(tt.base, len(tt.data)))
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	binPath := filepath.Join(dir, "fw.BIN")
	require.NoError(t, os.WriteFile(binPath, []byte{0xDE, 0xAD}, 0o600))
	hexPath := filepath.Join(dir, "fw.hex")
	require.NoError(t, os.WriteFile(hexPath, []byte(":0100000042BD\n"+eof), 0o600))

	img, err := Load(binPath, 0x2000)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x2000), img.MinAddress())
	assert.Equal(t, []byte{0xDE, 0xAD}, img.Read(0x2000, 2))

	img, err = Load(hexPath, 0x2000)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), img.MinAddress())

	_, err = Load(filepath.Join(dir, "missing.bin"), 0)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}
