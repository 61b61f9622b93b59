package media

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChecksum(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.mp4")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	sum, err := Checksum(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824", sum)

	ok, err := VerifyChecksum(context.Background(), path, sum)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, os.WriteFile(path, []byte("hello!"), 0o644))
	ok, err = VerifyChecksum(context.Background(), path, sum)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestChecksum_Errors(t *testing.T) {
	_, err := Checksum(context.Background(), filepath.Join(t.TempDir(), "missing.mkv"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "a.mkv")
	require.NoError(t, os.WriteFile(path, []byte("data"), 0o644))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Checksum(ctx, path)
	assert.ErrorIs(t, err, context.Canceled)
}
