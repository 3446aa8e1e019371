// Package storage provides output sinks for encoded firmware images.
// Outputs are staged beside their destination and only become visible once
// committed, so a failed conversion never leaves a truncated image behind.
// Finished images can optionally be published to S3.
package storage

import (
	"context"
	"io"
)

// Storage defines the interface for writing conversion outputs.
type Storage interface {
	// Stage opens a staged output for path. Nothing appears at path until
	// the returned Staged is committed.
	Stage(ctx context.Context, path string) (Staged, error)

	// Publish uploads a finished artifact and returns its URL.
	// Returns ErrS3NotConfigured if no remote store is configured.
	Publish(ctx context.Context, key string, data io.Reader) (url string, err error)
}

// Staged is an in-progress output. Exactly one of Commit or Abort should be
// called; Abort after a successful Commit is a no-op.
type Staged interface {
	io.Writer

	// Name returns the path of the staging file.
	Name() string

	// Commit flushes the staged data and atomically moves it into place.
	Commit() error

	// Abort discards the staged data.
	Abort() error
}
