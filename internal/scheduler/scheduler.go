package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"hollywoo/internal/models"
)

// FolderLister lists the folders that should be re-scanned
type FolderLister interface {
	FolderGetAll(ctx context.Context) ([]*models.Folder, error)
}

// Submitter queues a scan of a folder root
type Submitter interface {
	Submit(root string) error
}

// Scheduler periodically queues a re-scan of every known folder
type Scheduler struct {
	cron      *cron.Cron
	spec      string
	folders   FolderLister
	submitter Submitter
	logger    zerolog.Logger
}

// New creates a scheduler. spec is a standard five field cron expression or
// a descriptor like "@every 6h".
func New(spec string, folders FolderLister, submitter Submitter, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:      cron.New(),
		spec:      spec,
		folders:   folders,
		submitter: submitter,
		logger:    logger,
	}
}

// Start registers the re-scan job and starts the cron loop
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, func() {
		s.RunOnce(context.Background())
	}); err != nil {
		return fmt.Errorf("failed to add rescan job %q: %w", s.spec, err)
	}

	s.cron.Start()
	s.logger.Info().Str("spec", s.spec).Msg("Scheduler started")
	return nil
}

// Stop stops the cron loop and waits for a running job to return
func (s *Scheduler) Stop() {
	s.logger.Info().Msg("Stopping scheduler")
	<-s.cron.Stop().Done()
}

// RunOnce queues a scan of every folder and returns how many were queued.
// An unreachable folder is still queued and its scan reports the failure.
func (s *Scheduler) RunOnce(ctx context.Context) int {
	folders, err := s.folders.FolderGetAll(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list folders")
		return 0
	}

	queued := 0
	for _, f := range folders {
		if err := s.submitter.Submit(f.Path); err != nil {
			s.logger.Warn().Err(err).Str("folder", f.Path).Msg("Could not queue rescan")
			continue
		}
		queued++
	}

	s.logger.Info().Int("queued", queued).Int("folders", len(folders)).Msg("Queued scheduled rescans")
	return queued
}
