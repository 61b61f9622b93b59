package media

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// ctxReader stops a long read once ctx is done
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

// Checksum returns the hex encoded SHA-256 of the file at path
func Checksum(ctx context.Context, path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file for checksum: %w", err)
	}
	defer file.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, ctxReader{ctx: ctx, r: file}); err != nil {
		return "", fmt.Errorf("failed to calculate checksum of %s: %w", path, err)
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}

// VerifyChecksum reports whether the file at path still has the stored checksum
func VerifyChecksum(ctx context.Context, path, stored string) (bool, error) {
	sum, err := Checksum(ctx, path)
	if err != nil {
		return false, err
	}
	return sum == stored, nil
}
