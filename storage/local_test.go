package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_StageCommit(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "firmware.uf2")
	s := NewLocalStorage(0)

	staged, err := s.Stage(context.Background(), dst)
	require.NoError(t, err)

	assert.Equal(t, dir, filepath.Dir(staged.Name()))
	assert.True(t, strings.HasPrefix(filepath.Base(staged.Name()), ".firmware.uf2.tmp-"))

	_, err = staged.Write([]byte("block data"))
	require.NoError(t, err)

	// Destination must not exist before commit.
	_, err = os.Stat(dst)
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, staged.Commit())

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "block data", string(got))

	info, err := os.Stat(dst)
	require.NoError(t, err)
	assert.Equal(t, DefaultFileMode, info.Mode().Perm())

	_, err = os.Stat(staged.Name())
	assert.True(t, os.IsNotExist(err))

	// Abort after commit is a no-op and leaves the output alone.
	require.NoError(t, staged.Abort())
	_, err = os.Stat(dst)
	assert.NoError(t, err)

	_, err = staged.Write([]byte("x"))
	assert.ErrorIs(t, err, ErrAlreadyFinished)
	assert.ErrorIs(t, staged.Commit(), ErrAlreadyFinished)
}

func TestLocalStorage_StageAbort(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "out.uf2")
	require.NoError(t, os.WriteFile(dst, []byte("previous"), 0o644))

	staged, err := NewLocalStorage(0).Stage(context.Background(), dst)
	require.NoError(t, err)

	_, err = staged.Write([]byte("partial"))
	require.NoError(t, err)
	require.NoError(t, staged.Abort())

	// The previous output survives and no staging file is left behind.
	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "previous", string(got))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestLocalStorage_CommitReplacesExisting(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "out.uf2")
	require.NoError(t, os.WriteFile(dst, []byte("old"), 0o600))

	staged, err := NewLocalStorage(0o600).Stage(context.Background(), dst)
	require.NoError(t, err)
	_, err = staged.Write([]byte("new"))
	require.NoError(t, err)
	require.NoError(t, staged.Commit())

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "new", string(got))
}

func TestLocalStorage_StageErrors(t *testing.T) {
	s := NewLocalStorage(0)

	tests := []struct {
		name   string
		ctx    func() context.Context
		path   string
		errMsg string
	}{
		{
			name: "cancelled context",
			ctx: func() context.Context {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				return ctx
			},
			path:   filepath.Join(t.TempDir(), "out.uf2"),
			errMsg: "context cancelled",
		},
		{
			name:   "missing directory",
			ctx:    context.Background,
			path:   filepath.Join(t.TempDir(), "missing", "out.uf2"),
			errMsg: "create staging file",
		},
		{
			name:   "directory destination",
			ctx:    context.Background,
			path:   t.TempDir() + string(filepath.Separator),
			errMsg: "destination is a directory",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Stage(tt.ctx(), tt.path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestLocalStorage_Publish(t *testing.T) {
	_, err := NewLocalStorage(0).Publish(context.Background(), "key", strings.NewReader("data"))
	assert.ErrorIs(t, err, ErrS3NotConfigured)
}
