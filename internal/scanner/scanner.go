package scanner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"hollywoo/internal/database"
	"hollywoo/internal/metrics"
	"hollywoo/internal/models"
	"hollywoo/internal/probe"
	"hollywoo/internal/tracing"
)

// ErrNotDirectory is returned when the scan root is missing or not a directory
var ErrNotDirectory = errors.New("not a directory")

// ReprobePolicy decides when metadata of an already indexed video is read again
type ReprobePolicy string

const (
	// ReprobeNever only advances mtime on known videos
	ReprobeNever ReprobePolicy = "never"
	// ReprobeChanged probes known videos whose mtime advanced
	ReprobeChanged ReprobePolicy = "changed"
	// ReprobeAlways probes every known video on every scan
	ReprobeAlways ReprobePolicy = "always"
)

// Config controls which files are indexed and how they are probed
type Config struct {
	MinSize    int64
	Extensions []string
	Workers    int
	BatchSize  int
	Reprobe    ReprobePolicy
	ProbeRate  float64 // probes per second, 0 is unlimited
}

// DefaultConfig returns the scanner defaults: 100 MiB minimum size and the
// usual video containers
func DefaultConfig() Config {
	return Config{
		MinSize:    100 * 1024 * 1024,
		Extensions: []string{"avi", "mp4", "m4v", "mkv", "mpg", "mpeg", "wmv", "m2ts"},
		Workers:    4,
		BatchSize:  100,
		Reprobe:    ReprobeNever,
	}
}

// Stats counts what one scan did
type Stats struct {
	Seen          int           `json:"seen" yaml:"seen"`
	Skipped       int           `json:"skipped" yaml:"skipped"`
	Inserted      int           `json:"inserted" yaml:"inserted"`
	Updated       int           `json:"updated" yaml:"updated"`
	Unchanged     int           `json:"unchanged" yaml:"unchanged"`
	ProbeFailures int           `json:"probe_failures" yaml:"probe_failures"`
	Errors        int           `json:"errors" yaml:"errors"`
	Duration      time.Duration `json:"duration" yaml:"duration"`
}

func (s *Stats) add(o Stats) {
	s.Inserted += o.Inserted
	s.Updated += o.Updated
	s.Unchanged += o.Unchanged
	s.Errors += o.Errors
}

// Result is the outcome of one scan. Err is nil if the scan completed and
// the folder's last_scan was stamped.
type Result struct {
	RunID  string         `json:"run_id" yaml:"run_id"`
	Root   string         `json:"root" yaml:"root"`
	Folder *models.Folder `json:"folder,omitempty" yaml:"folder,omitempty"`
	Stats  Stats          `json:"stats" yaml:"stats"`
	Err    error          `json:"-" yaml:"-"`
}

// Scanner reconciles directory trees with the index
type Scanner struct {
	db      *database.DB
	prober  probe.Prober
	cfg     Config
	exts    map[string]struct{}
	logger  zerolog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// New creates a scanner. Zero values in cfg fall back to DefaultConfig.
func New(db *database.DB, prober probe.Prober, cfg Config, logger zerolog.Logger, m *metrics.Metrics) *Scanner {
	def := DefaultConfig()
	if len(cfg.Extensions) == 0 {
		cfg.Extensions = def.Extensions
	}
	if cfg.Workers <= 0 {
		cfg.Workers = def.Workers
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = def.BatchSize
	}
	if cfg.Reprobe == "" {
		cfg.Reprobe = def.Reprobe
	}
	if m == nil {
		m = metrics.New(nil)
	}

	exts := make(map[string]struct{}, len(cfg.Extensions))
	for _, ext := range cfg.Extensions {
		exts[strings.ToLower(strings.TrimPrefix(ext, "."))] = struct{}{}
	}

	return &Scanner{
		db:      db,
		prober:  prober,
		cfg:     cfg,
		exts:    exts,
		logger:  logger,
		metrics: m,
		now:     time.Now,
	}
}

// candidate is a file that passed the filter
type candidate struct {
	path     string
	video    *models.Video // nil if not yet indexed
	advanced bool          // on-disk mtime is newer than the stored one
	probe    bool
	md       *models.Metadata
	probeErr error
}

// Scan walks root and brings the index in line with what it finds. The
// returned Result is never nil; on failure its Err matches the returned
// error and last_scan keeps its previous value.
func (s *Scanner) Scan(ctx context.Context, root string) (*Result, error) {
	start := time.Now()
	res := &Result{RunID: uuid.NewString(), Root: root}

	ctx, span := tracing.Start(ctx, "scanner.Scan", tracing.ScanTracingAttrs(res.RunID, root)...)
	defer span.End()

	logger := s.logger.With().Str("run_id", res.RunID).Logger()

	err := s.scan(ctx, logger, res)
	res.Stats.Duration = time.Since(start)
	res.Err = err

	status := "ok"
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status = "cancelled"
	default:
		status = "error"
	}
	s.metrics.ScansTotal.WithLabelValues(status).Inc()
	s.metrics.ScanDurationSeconds.Observe(res.Stats.Duration.Seconds())

	if err != nil {
		tracing.SetSpanError(ctx, err)
		logger.Error().Err(err).Str("folder", res.Root).Msg("Scan failed")
		return res, err
	}

	if n, err := s.db.Store().VideoCount(ctx); err == nil {
		s.metrics.VideosIndexed.Set(float64(n))
	}

	logger.Info().
		Str("folder", res.Root).
		Int("seen", res.Stats.Seen).
		Int("inserted", res.Stats.Inserted).
		Int("updated", res.Stats.Updated).
		Int("unchanged", res.Stats.Unchanged).
		Int("skipped", res.Stats.Skipped).
		Int("probe_failures", res.Stats.ProbeFailures).
		Int("errors", res.Stats.Errors).
		Dur("duration", res.Stats.Duration).
		Msg("Scan complete")
	return res, nil
}

func (s *Scanner) scan(ctx context.Context, logger zerolog.Logger, res *Result) error {
	root, err := filepath.Abs(res.Root)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", res.Root, err)
	}
	res.Root = root

	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrNotDirectory, root)
	}

	folder, err := s.folderFor(ctx, root)
	if err != nil {
		return err
	}
	res.Folder = folder
	logger = logger.With().Str("folder", root).Int64("folder_id", folder.ID).Logger()
	logger.Debug().Msg("Scanning folder")

	cache := newStatCache()
	defer cache.reset()

	paths, err := s.walk(ctx, logger, root, cache, &res.Stats)
	if err != nil {
		return err
	}

	for start := 0; start < len(paths); start += s.cfg.BatchSize {
		end := min(start+s.cfg.BatchSize, len(paths))
		if err := s.processBatch(ctx, logger, folder, cache, paths[start:end], &res.Stats); err != nil {
			return err
		}
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	stamped := *folder
	err = s.db.WithTx(ctx, func(st *database.Store) error {
		return st.FolderUpdateScan(ctx, &stamped, s.now())
	})
	if err != nil {
		return err
	}
	*folder = stamped
	return nil
}

// folderFor returns the Folder row for root, creating it if needed
func (s *Scanner) folderFor(ctx context.Context, root string) (*models.Folder, error) {
	folder, err := s.db.Store().FolderGetByPath(ctx, root)
	if err != nil {
		return nil, err
	}
	if folder != nil {
		return folder, nil
	}

	folder = &models.Folder{Path: root}
	err = s.db.WithTx(ctx, func(st *database.Store) error {
		return st.FolderAdd(ctx, folder)
	})
	if database.IsIntegrity(err) {
		// another scan of the same root got there first
		return s.db.Store().FolderGetByPath(ctx, root)
	}
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("folder", root).Int64("folder_id", folder.ID).Msg("Added folder")
	return folder, nil
}

// walk collects the files under root that pass the filter, in lexical order
func (s *Scanner) walk(ctx context.Context, logger zerolog.Logger, root string, cache *statCache, stats *Stats) ([]string, error) {
	var paths []string

	// WalkDir does not descend into a root that is itself a symlink, so walk
	// the target and report paths under root
	target, err := filepath.EvalSymlinks(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", root, err)
	}

	err = filepath.WalkDir(target, func(walked string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		path := walked
		if target != root {
			rel, relErr := filepath.Rel(target, walked)
			if relErr != nil {
				return relErr
			}
			path = filepath.Join(root, rel)
		}
		if err != nil {
			if walked == target {
				return err
			}
			logger.Warn().Err(err).Str("path", path).Msg("Cannot read entry, skipping")
			stats.Errors++
			s.metrics.FilesTotal.WithLabelValues(metrics.OutcomeError).Inc()
			return nil
		}
		if d.IsDir() {
			return nil
		}

		stats.Seen++
		ok, err := s.accept(cache, path)
		if err != nil {
			logger.Warn().Err(err).Str("path", path).Msg("Cannot stat file, skipping")
			stats.Errors++
			s.metrics.FilesTotal.WithLabelValues(metrics.OutcomeError).Inc()
			return nil
		}
		if !ok {
			stats.Skipped++
			s.metrics.FilesTotal.WithLabelValues(metrics.OutcomeSkipped).Inc()
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}
	return paths, nil
}

// accept reports whether path is a video the scanner should index
func (s *Scanner) accept(cache *statCache, path string) (bool, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if _, ok := s.exts[ext]; !ok {
		return false, nil
	}

	st, err := cache.stat(path)
	if err != nil {
		return false, err
	}
	if !st.mode.IsRegular() {
		return false, nil
	}
	return st.size >= s.cfg.MinSize, nil
}

func (s *Scanner) processBatch(ctx context.Context, logger zerolog.Logger, folder *models.Folder, cache *statCache, paths []string, stats *Stats) error {
	batch := make([]*candidate, 0, len(paths))
	store := s.db.Store()

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		c := &candidate{path: path}

		v, err := store.VideoGetByPath(ctx, path)
		if err != nil {
			return err
		}
		c.video = v

		if v == nil {
			c.probe = true
		} else {
			st, err := cache.stat(path)
			if err != nil {
				return fmt.Errorf("failed to stat %s: %w", path, err)
			}
			c.advanced = st.mtime.Unix() > v.Mtime.Unix()
			c.probe = s.cfg.Reprobe == ReprobeAlways ||
				(s.cfg.Reprobe == ReprobeChanged && c.advanced)
		}
		batch = append(batch, c)
	}

	if err := s.probeAll(ctx, logger, batch, stats); err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	var delta Stats
	err := s.db.WithTx(ctx, func(st *database.Store) error {
		delta = Stats{}
		for _, c := range batch {
			fst, err := cache.stat(c.path)
			if err != nil {
				return fmt.Errorf("failed to stat %s: %w", c.path, err)
			}

			outcome, err := s.apply(ctx, st, folder, c, fst.mtime)
			if database.IsIntegrity(err) {
				logger.Warn().Err(err).Str("path", c.path).Msg("Rejected by index, skipping")
				delta.Errors++
				continue
			}
			if err != nil {
				return err
			}

			switch outcome {
			case metrics.OutcomeInserted:
				delta.Inserted++
			case metrics.OutcomeUpdated:
				delta.Updated++
			default:
				delta.Unchanged++
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	stats.add(delta)
	s.metrics.FilesTotal.WithLabelValues(metrics.OutcomeInserted).Add(float64(delta.Inserted))
	s.metrics.FilesTotal.WithLabelValues(metrics.OutcomeUpdated).Add(float64(delta.Updated))
	s.metrics.FilesTotal.WithLabelValues(metrics.OutcomeUnchanged).Add(float64(delta.Unchanged))
	s.metrics.FilesTotal.WithLabelValues(metrics.OutcomeError).Add(float64(delta.Errors))
	return nil
}

// probeAll runs the prober on every candidate that needs it, at most
// Workers at a time. Probe errors are recorded on the candidate; only
// cancellation fails the batch.
func (s *Scanner) probeAll(ctx context.Context, logger zerolog.Logger, batch []*candidate, stats *Stats) error {
	var limiter *rate.Limiter
	if s.cfg.ProbeRate > 0 {
		limiter = rate.NewLimiter(rate.Limit(s.cfg.ProbeRate), 1)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Workers)

	for _, c := range batch {
		if !c.probe {
			continue
		}
		g.Go(func() error {
			if limiter != nil {
				if err := limiter.Wait(gctx); err != nil {
					return err
				}
			}
			c.md, c.probeErr = s.prober.Probe(gctx, c.path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, c := range batch {
		if !c.probe {
			continue
		}
		dropped := false
		if c.probeErr == nil && c.md != nil {
			c.md, dropped = sanitizeMetadata(c.md)
		}
		if c.probeErr != nil || c.md == nil || c.md.Resolution == nil || dropped {
			stats.ProbeFailures++
			s.metrics.ProbeFailuresTotal.Inc()
			ev := logger.Warn().Str("path", c.path)
			if c.probeErr != nil {
				ev = ev.Err(c.probeErr)
			}
			ev.Msg("Incomplete metadata from probe")
		}
	}
	return nil
}

// sanitizeMetadata drops probed values the index cannot hold: a duration
// that is not positive and a resolution with a side that is not positive.
// dropped reports whether anything was removed.
func sanitizeMetadata(md *models.Metadata) (clean *models.Metadata, dropped bool) {
	cp := *md
	if cp.Duration != nil && *cp.Duration <= 0 {
		cp.Duration = nil
		dropped = true
	}
	if r := cp.Resolution; r != nil && (r.Width <= 0 || r.Height <= 0) {
		// 0x0 is how a prober says unknown; anything else is bogus
		dropped = dropped || !r.IsUnknown()
		cp.Resolution = nil
	}
	return &cp, dropped
}

// apply writes one candidate and returns the file outcome
func (s *Scanner) apply(ctx context.Context, st *database.Store, folder *models.Folder, c *candidate, mtime time.Time) (string, error) {
	if c.video == nil {
		return metrics.OutcomeInserted, s.insert(ctx, st, folder, c, mtime)
	}

	v := c.video
	changed := false

	if c.advanced {
		if err := st.VideoSetMtime(ctx, v, mtime); err != nil {
			return "", err
		}
		changed = true
	}

	if c.probe && c.probeErr == nil && c.md != nil {
		refreshed, err := s.refresh(ctx, st, v, c.md)
		if err != nil {
			return "", err
		}
		changed = changed || refreshed
	}

	if changed {
		return metrics.OutcomeUpdated, nil
	}
	return metrics.OutcomeUnchanged, nil
}

func (s *Scanner) insert(ctx context.Context, st *database.Store, folder *models.Folder, c *candidate, mtime time.Time) error {
	v := &models.Video{
		FolderID: folder.ID,
		Path:     c.path,
		Mtime:    mtime,
	}

	title := ""
	if c.probeErr == nil && c.md != nil {
		v.Resolution = c.md.Resolution
		v.Duration = c.md.Duration
		title = c.md.Title
	}
	if v.Resolution == nil {
		v.Resolution = &models.Resolution{}
	}

	if err := st.VideoAdd(ctx, v); err != nil {
		return err
	}
	if title != "" {
		if err := st.VideoSetTitle(ctx, v, title); err != nil {
			return err
		}
	}
	c.video = v
	return nil
}

// refresh applies re-probed metadata that differs from the stored row. A
// field the probe could not determine never overwrites a stored value.
func (s *Scanner) refresh(ctx context.Context, st *database.Store, v *models.Video, md *models.Metadata) (bool, error) {
	changed := false

	if md.Resolution != nil && (v.Resolution == nil || *v.Resolution != *md.Resolution) {
		if err := st.VideoSetResolution(ctx, v, md.Resolution); err != nil {
			return changed, err
		}
		changed = true
	}
	if md.Duration != nil && (v.Duration == nil || *v.Duration != *md.Duration) {
		if err := st.VideoSetDuration(ctx, v, md.Duration); err != nil {
			return changed, err
		}
		changed = true
	}
	if md.Title != "" && md.Title != v.Title {
		if err := st.VideoSetTitle(ctx, v, md.Title); err != nil {
			return changed, err
		}
		changed = true
	}
	return changed, nil
}
