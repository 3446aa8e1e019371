package convert

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/moffa90/go-uf2/ihex"
	"github.com/moffa90/go-uf2/uf2"
)

// Converter turns firmware images on disk into UF2 files.
//
// Converter is safe for concurrent use after initialization as long as the
// configured Storage and callbacks are.
type Converter struct {
	config Config
}

// Result describes a finished conversion.
type Result struct {
	// InputPath and OutputPath are the files that were read and written
	InputPath  string
	OutputPath string

	// Layout is the block range that was encoded
	Layout uf2.Layout

	// FamilyID is the family written into the headers, 0 if none
	FamilyID uint32

	// ImageBytes is the number of bytes present in the input image
	ImageBytes int

	// BytesWritten is the size of the output
	BytesWritten int64

	// URL is set when the output was published
	URL string

	// ElapsedTime is the wall time of the conversion
	ElapsedTime time.Duration
}

// New creates a new Converter with the given options.
//
// Example:
//
//	conv := convert.New(
//	    convert.WithLogger(slog.Default()),
//	    convert.WithProgressCallback(progressFunc),
//	)
func New(opts ...Option) *Converter {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Converter{config: cfg}
}

// Convert performs the complete conversion sequence:
//  1. Validate the job
//  2. Load the input image
//  3. Encode every block into a staging file beside the output
//  4. Move the staging file into place
//  5. Publish the output if the job has a PublishKey
//
// No output file is created or replaced unless every block was written.
// The operation can be cancelled via context between blocks.
//
// Example:
//
//	res, err := conv.Convert(ctx, convert.Job{
//	    InputPath: "blink.hex",
//	    FamilyID:  0xE48BFF56,
//	})
func (c *Converter) Convert(ctx context.Context, job Job) (*Result, error) {
	if job.OutputPath == "" {
		job.OutputPath = DefaultOutputPath(job.InputPath)
	}
	if err := job.validate(); err != nil {
		return nil, err
	}

	startTime := time.Now()

	// Phase 1: Load
	c.reportProgress(Progress{Phase: PhaseLoading})

	img, err := c.load(job)
	if err != nil {
		c.logError("load failed", "input", job.InputPath, "error", err)
		return nil, err
	}

	blocks, err := c.encode(img, job)
	if err != nil {
		return nil, err
	}
	layout := blocks.Layout()
	total := int(layout.ActualBlockCount)

	c.logInfo("converting",
		"input", job.InputPath,
		"range", fmt.Sprintf("0x%08X-0x%08X", img.MinAddress(), img.MaxAddress()),
		"family", familyLabel(job.FamilyID),
		"blocks", total,
		"output", job.OutputPath,
	)
	if entry, ok := img.EntryPoint(); ok {
		c.logDebug("entry point", "address", fmt.Sprintf("0x%08X", entry))
	}

	// Phase 2: Encode
	staged, err := c.config.Storage.Stage(ctx, job.OutputPath)
	if err != nil {
		return nil, fmt.Errorf("stage output: %w", err)
	}
	defer func() { _ = staged.Abort() }()

	c.logDebug("staging output", "path", staged.Name())

	buf := make([]byte, 0, uf2.BlockSize)
	var written int64
	for i := 0; ; i++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("cancelled: %w", err)
		}

		b, ok := blocks.Next()
		if !ok {
			break
		}
		if buf, err = b.AppendBinary(buf[:0]); err != nil {
			return nil, fmt.Errorf("encode block %d: %w", i, err)
		}
		n, err := staged.Write(buf)
		written += int64(n)
		if err != nil {
			return nil, fmt.Errorf("write block %d: %w", i, err)
		}

		if (i+1)%c.config.ProgressInterval == 0 || i+1 == total {
			c.reportProgress(Progress{
				Phase:        PhaseEncoding,
				CurrentBlock: i + 1,
				TotalBlocks:  total,
				Percentage:   float64(i+1) / float64(total) * 95,
				BytesWritten: written,
				ElapsedTime:  time.Since(startTime),
			})
		}
	}

	// Phase 3: Finalize
	c.reportProgress(Progress{
		Phase:        PhaseFinalizing,
		CurrentBlock: total,
		TotalBlocks:  total,
		Percentage:   96,
		BytesWritten: written,
		ElapsedTime:  time.Since(startTime),
	})

	if err := staged.Commit(); err != nil {
		return nil, fmt.Errorf("commit output: %w", err)
	}

	res := &Result{
		InputPath:    job.InputPath,
		OutputPath:   job.OutputPath,
		Layout:       layout,
		FamilyID:     job.FamilyID,
		ImageBytes:   img.Len(),
		BytesWritten: written,
	}

	// Phase 4: Publish
	if job.PublishKey != "" {
		c.reportProgress(Progress{
			Phase:        PhasePublishing,
			CurrentBlock: total,
			TotalBlocks:  total,
			Percentage:   98,
			BytesWritten: written,
			ElapsedTime:  time.Since(startTime),
		})

		url, err := c.publish(ctx, job.OutputPath, job.PublishKey)
		if err != nil {
			c.logError("publish failed", "key", job.PublishKey, "error", err)
			return nil, fmt.Errorf("publish %s: %w", job.PublishKey, err)
		}
		res.URL = url
		c.logInfo("published", "key", job.PublishKey, "url", url)
	}

	res.ElapsedTime = time.Since(startTime)

	c.reportProgress(Progress{
		Phase:        PhaseComplete,
		CurrentBlock: total,
		TotalBlocks:  total,
		Percentage:   100,
		BytesWritten: written,
		ElapsedTime:  res.ElapsedTime,
	})

	c.logInfo("conversion complete",
		"output", res.OutputPath,
		"bytes", res.BytesWritten,
		"duration", res.ElapsedTime,
	)

	return res, nil
}

// load reads the job input and maps loader failures onto the uf2 error types.
func (c *Converter) load(job Job) (*ihex.Image, error) {
	img, err := ihex.Load(job.InputPath, job.BaseAddress)
	switch {
	case err == nil:
		return img, nil
	case errors.Is(err, fs.ErrNotExist):
		return nil, &uf2.SourceNotFoundError{Path: job.InputPath, Err: err}
	case errors.Is(err, ihex.ErrNoData):
		return nil, &uf2.InvalidInputError{Reason: "image is empty", Err: err}
	default:
		return nil, &uf2.InvalidInputError{Reason: "cannot load " + job.InputPath, Err: err}
	}
}

func (c *Converter) encode(img uf2.Image, job Job) (*uf2.Blocks, error) {
	blocks, err := uf2.Encode(img, job.FamilyID)
	if err != nil {
		c.logError("encode failed", "input", job.InputPath, "error", err)
		return nil, err
	}
	return blocks, nil
}

func (c *Converter) publish(ctx context.Context, path, key string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open output: %w", err)
	}
	defer func() { _ = f.Close() }()

	return c.config.Storage.Publish(ctx, key, f)
}

func familyLabel(id uint32) string {
	if id == uf2.FamilyNone {
		return "none"
	}
	if name := uf2.FamilyName(id); name != "" {
		return fmt.Sprintf("%s (0x%08X)", name, id)
	}
	return fmt.Sprintf("0x%08X", id)
}

// reportProgress calls the progress callback if configured.
func (c *Converter) reportProgress(progress Progress) {
	if c.config.ProgressCallback != nil {
		c.config.ProgressCallback(progress)
	}
}

// logDebug logs a debug message if a logger is configured.
func (c *Converter) logDebug(msg string, keysAndValues ...interface{}) {
	if c.config.Logger != nil {
		c.config.Logger.Debug(msg, keysAndValues...)
	}
}

// logInfo logs an info message if a logger is configured.
func (c *Converter) logInfo(msg string, keysAndValues ...interface{}) {
	if c.config.Logger != nil {
		c.config.Logger.Info(msg, keysAndValues...)
	}
}

// logError logs an error message if a logger is configured.
func (c *Converter) logError(msg string, keysAndValues ...interface{}) {
	if c.config.Logger != nil {
		c.config.Logger.Error(msg, keysAndValues...)
	}
}
