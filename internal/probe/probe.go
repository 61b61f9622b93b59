package probe

import (
	"context"
	"errors"

	"hollywoo/internal/models"
)

// ErrNoMetadata is returned when a probe ran but found nothing usable
var ErrNoMetadata = errors.New("no metadata")

// Prober extracts metadata from a media file. Fields it cannot determine
// are left nil or empty.
type Prober interface {
	Probe(ctx context.Context, path string) (*models.Metadata, error)
}

// Func adapts a function to the Prober interface
type Func func(ctx context.Context, path string) (*models.Metadata, error)

func (f Func) Probe(ctx context.Context, path string) (*models.Metadata, error) {
	return f(ctx, path)
}

// Chain asks each prober in turn. For every field the first prober that
// fills it wins. Chain fails only if every prober failed.
type Chain []Prober

func (c Chain) Probe(ctx context.Context, path string) (*models.Metadata, error) {
	var (
		merged   models.Metadata
		firstErr error
		anyOK    bool
	)

	for _, p := range c {
		if complete(&merged) {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		md, err := p.Probe(ctx, path)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if md == nil {
			continue
		}
		anyOK = true

		if merged.Resolution == nil && md.Resolution != nil {
			merged.Resolution = md.Resolution
		}
		if merged.Duration == nil && md.Duration != nil {
			merged.Duration = md.Duration
		}
		if merged.Title == "" {
			merged.Title = md.Title
		}
	}

	if !anyOK {
		if firstErr == nil {
			firstErr = ErrNoMetadata
		}
		return nil, firstErr
	}
	return &merged, nil
}

func complete(md *models.Metadata) bool {
	return md.Resolution != nil && md.Duration != nil && md.Title != ""
}
