package probe

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/dhowden/tag"

	"hollywoo/internal/models"
)

// TagReader reads the title from container tags (MP4/M4V atoms). It knows
// nothing about resolution or duration.
type TagReader struct{}

// Probe reads the tags of path
func (TagReader) Probe(ctx context.Context, path string) (*models.Metadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	m, err := tag.ReadFrom(file)
	if err != nil {
		if err == tag.ErrNoTagsFound {
			return &models.Metadata{}, nil
		}
		return nil, fmt.Errorf("failed to read tags: %w", err)
	}

	return &models.Metadata{Title: strings.TrimSpace(m.Title())}, nil
}
