package convert

import (
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/moffa90/go-uf2/uf2"
)

var validate = validator.New()

// Job describes one file conversion. It is consumed by a single Convert call.
type Job struct {
	// InputPath is the Intel HEX file, or raw binary when it ends in ".bin"
	InputPath string `validate:"required"`

	// OutputPath is where the UF2 file is written.
	// Empty selects DefaultOutputPath(InputPath)
	OutputPath string `validate:"required,nefield=InputPath"`

	// FamilyID is written into every block when non-zero
	FamilyID uint32

	// BaseAddress places the first byte of a raw binary input.
	// Ignored for Intel HEX, which carries its own addresses
	BaseAddress uint32

	// PublishKey, when set, uploads the finished output under this key
	PublishKey string `validate:"omitempty,max=1024,printascii"`
}

func (j Job) validate() error {
	if err := validate.Struct(j); err != nil {
		return &uf2.InvalidInputError{Reason: "invalid job", Err: err}
	}
	return nil
}

// DefaultOutputPath replaces the extension of input with ".uf2".
//
// Example:
//
//	convert.DefaultOutputPath("build/blink.hex") // "build/blink.uf2"
func DefaultOutputPath(input string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + ".uf2"
}
