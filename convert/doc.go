// Package convert turns firmware image files into UF2 files.
//
// A Converter loads an Intel HEX file (or a raw ".bin" placed at a base
// address), encodes it with package uf2 and writes the blocks through a
// storage.Storage. Output is staged next to the destination and only moved
// into place after the last block is written, so an interrupted or failed
// run never leaves a partial UF2 file.
//
// # Basic Usage
//
//	conv := convert.New()
//	res, err := conv.Convert(ctx, convert.Job{
//	    InputPath: "build/blink.hex",
//	    FamilyID:  0xE48BFF56, // rp2040
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("wrote %s (%d blocks)\n", res.OutputPath, res.Layout.ActualBlockCount)
//
// # Progress Tracking
//
// Track conversion progress with a callback:
//
//	conv := convert.New(
//	    convert.WithProgressCallback(func(p convert.Progress) {
//	        fmt.Printf("[%s] %.1f%% - Block %d/%d\n",
//	            p.Phase, p.Percentage, p.CurrentBlock, p.TotalBlocks)
//	    }),
//	)
//
// # Logging
//
// Any logger with Debug, Info and Error methods taking a message and
// key-value pairs can be attached. *slog.Logger works as is:
//
//	conv := convert.New(convert.WithLogger(slog.Default()))
//
// # Publishing
//
// Jobs with a PublishKey upload the finished file through the configured
// storage, typically a storage.S3Storage:
//
//	s3, err := storage.NewS3Storage(ctx, nil, storage.S3Config{
//	    Bucket: "firmware",
//	    Region: "eu-west-1",
//	})
//	conv := convert.New(convert.WithStorage(s3))
//	res, err := conv.Convert(ctx, convert.Job{
//	    InputPath:  "build/blink.hex",
//	    PublishKey: "blink/v1.2.0.uf2",
//	})
//
// # Error Handling
//
// A missing input is reported as *uf2.SourceNotFoundError. Malformed or
// empty inputs and invalid jobs are reported as *uf2.InvalidInputError:
//
//	_, err := conv.Convert(ctx, job)
//	switch {
//	case uf2.IsSourceNotFound(err):
//	    // wrong path
//	case uf2.IsInvalidInput(err):
//	    // bad file contents or job
//	}
package convert
