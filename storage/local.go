package storage

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ErrS3NotConfigured is returned when publishing is attempted
// without S3 configuration.
var ErrS3NotConfigured = errors.New("S3 storage is not configured")

// ErrAlreadyFinished is returned when a staged output is written to or
// committed after Commit or Abort.
var ErrAlreadyFinished = errors.New("staged output already finished")

// DefaultFileMode is the permission of committed outputs.
const DefaultFileMode os.FileMode = 0o644

// LocalStorage implements Storage on the local filesystem.
// Staging files are created in the destination directory so the final
// rename never crosses a filesystem boundary.
type LocalStorage struct {
	mode os.FileMode
}

// NewLocalStorage creates a new LocalStorage. A zero mode selects
// DefaultFileMode.
func NewLocalStorage(mode os.FileMode) *LocalStorage {
	if mode == 0 {
		mode = DefaultFileMode
	}
	return &LocalStorage{mode: mode}
}

// Stage creates a hidden staging file next to path.
func (s *LocalStorage) Stage(ctx context.Context, path string) (Staged, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("context cancelled: %w", ctx.Err())
	default:
	}

	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	if base == "" {
		return nil, fmt.Errorf("stage %q: destination is a directory", path)
	}

	f, err := os.CreateTemp(dir, "."+base+".tmp-*")
	if err != nil {
		return nil, fmt.Errorf("create staging file: %w", err)
	}

	return &stagedFile{
		f:    f,
		w:    bufio.NewWriterSize(f, 64*1024),
		dst:  path,
		mode: s.mode,
	}, nil
}

// Publish is not supported by LocalStorage and returns ErrS3NotConfigured.
func (s *LocalStorage) Publish(_ context.Context, _ string, _ io.Reader) (string, error) {
	return "", ErrS3NotConfigured
}

type stagedFile struct {
	f    *os.File
	w    *bufio.Writer
	dst  string
	mode os.FileMode
	done bool
}

func (sf *stagedFile) Name() string {
	return sf.f.Name()
}

func (sf *stagedFile) Write(p []byte) (int, error) {
	if sf.done {
		return 0, ErrAlreadyFinished
	}
	return sf.w.Write(p)
}

func (sf *stagedFile) Commit() error {
	if sf.done {
		return ErrAlreadyFinished
	}
	sf.done = true

	tmp := sf.f.Name()
	fail := func(err error) error {
		_ = sf.f.Close()
		_ = os.Remove(tmp)
		return err
	}

	if err := sf.w.Flush(); err != nil {
		return fail(fmt.Errorf("flush staging file: %w", err))
	}
	if err := sf.f.Sync(); err != nil {
		return fail(fmt.Errorf("sync staging file: %w", err))
	}
	if err := sf.f.Chmod(sf.mode); err != nil {
		return fail(fmt.Errorf("chmod staging file: %w", err))
	}
	if err := sf.f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close staging file: %w", err)
	}
	if err := os.Rename(tmp, sf.dst); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("move output into place: %w", err)
	}
	return nil
}

func (sf *stagedFile) Abort() error {
	if sf.done {
		return nil
	}
	sf.done = true

	_ = sf.f.Close()
	if err := os.Remove(sf.f.Name()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove staging file: %w", err)
	}
	return nil
}
