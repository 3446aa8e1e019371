package convert

import "time"

// Conversion phases reported through Progress.Phase.
const (
	PhaseLoading    = "loading"
	PhaseEncoding   = "encoding"
	PhaseFinalizing = "finalizing"
	PhasePublishing = "publishing"
	PhaseComplete   = "complete"
)

// Progress contains information about the conversion progress.
// Passed to ProgressCallback during Convert.
type Progress struct {
	// Phase describes the current operation phase:
	//   "loading"    - Reading and parsing the input image
	//   "encoding"   - Writing UF2 blocks
	//   "finalizing" - Moving the finished output into place
	//   "publishing" - Uploading the output (only with a PublishKey)
	//   "complete"   - Operation completed successfully
	Phase string

	// CurrentBlock is the number of blocks written so far
	CurrentBlock int

	// TotalBlocks is the total number of blocks to write
	TotalBlocks int

	// Percentage is the completion percentage (0.0 to 100.0)
	Percentage float64

	// BytesWritten is the number of output bytes written so far
	BytesWritten int64

	// ElapsedTime is the time elapsed since the conversion started
	ElapsedTime time.Duration
}

// ProgressCallback is called periodically during a conversion to report progress.
// Implementations should return quickly; blocks are not written while it runs.
//
// Example:
//
//	conv := convert.New(
//	    convert.WithProgressCallback(func(p convert.Progress) {
//	        fmt.Printf("[%s] %.1f%% - Block %d/%d\n",
//	            p.Phase, p.Percentage, p.CurrentBlock, p.TotalBlocks)
//	    }),
//	)
type ProgressCallback func(Progress)

// Logger is an optional logging interface that can be provided to the converter.
// *slog.Logger satisfies it directly.
//
// Example with standard log package:
//
//	type StdLogger struct{}
//	func (l *StdLogger) Debug(msg string, kv ...interface{}) { log.Println(msg, kv) }
//	func (l *StdLogger) Info(msg string, kv ...interface{})  { log.Println(msg, kv) }
//	func (l *StdLogger) Error(msg string, kv ...interface{}) { log.Println(msg, kv) }
//
//	conv := convert.New(convert.WithLogger(&StdLogger{}))
type Logger interface {
	// Debug logs a debug message with optional key-value pairs
	Debug(msg string, keysAndValues ...interface{})

	// Info logs an info message with optional key-value pairs
	Info(msg string, keysAndValues ...interface{})

	// Error logs an error message with optional key-value pairs
	Error(msg string, keysAndValues ...interface{})
}
