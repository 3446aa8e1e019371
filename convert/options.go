package convert

import "github.com/moffa90/go-uf2/storage"

// Config holds the converter configuration.
type Config struct {
	// ProgressCallback is called during conversion to report progress (optional)
	ProgressCallback ProgressCallback

	// Logger is used for logging operations (optional)
	Logger Logger

	// Storage stages outputs and publishes them.
	// Default is a LocalStorage, which cannot publish
	Storage storage.Storage

	// ProgressInterval is the number of blocks between encoding progress
	// reports. The last block is always reported
	ProgressInterval int
}

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		Storage:          storage.NewLocalStorage(0),
		ProgressInterval: 64, // 32 KiB of output
	}
}

// Option is a functional option for configuring the Converter.
type Option func(*Config)

// WithProgressCallback sets a callback function to track conversion progress.
//
// Example:
//
//	conv := convert.New(
//	    convert.WithProgressCallback(func(p convert.Progress) {
//	        fmt.Printf("%.1f%% complete\n", p.Percentage)
//	    }),
//	)
func WithProgressCallback(callback ProgressCallback) Option {
	return func(c *Config) {
		c.ProgressCallback = callback
	}
}

// WithLogger sets a logger for the converter operations.
//
// Example:
//
//	conv := convert.New(convert.WithLogger(slog.Default()))
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithStorage sets the output storage. A nil storage is ignored.
//
// Example:
//
//	s3, _ := storage.NewS3Storage(ctx, nil, storage.S3Config{Bucket: "fw", Region: "eu-west-1"})
//	conv := convert.New(convert.WithStorage(s3))
func WithStorage(s storage.Storage) Option {
	return func(c *Config) {
		if s != nil {
			c.Storage = s
		}
	}
}

// WithProgressInterval sets how many blocks are written between progress
// reports. Values below 1 are ignored.
func WithProgressInterval(blocks int) Option {
	return func(c *Config) {
		if blocks > 0 {
			c.ProgressInterval = blocks
		}
	}
}
