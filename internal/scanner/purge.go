package scanner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"hollywoo/internal/database"
	"hollywoo/internal/models"
)

// ErrFolderUnavailable is returned by Purge when a folder root cannot be
// reached, e.g. an unmounted network share. Purging it would drop every video.
var ErrFolderUnavailable = errors.New("folder unavailable")

// Purge removes the videos of folder whose files no longer exist, together
// with their links. A nil folder purges every folder; unavailable folders are
// then skipped and reported together in the returned error. It returns the
// number of videos removed.
func (s *Scanner) Purge(ctx context.Context, folder *models.Folder) (int, error) {
	store := s.db.Store()

	var folders []*models.Folder
	if folder != nil {
		folders = []*models.Folder{folder}
	} else {
		all, err := store.FolderGetAll(ctx)
		if err != nil {
			return 0, err
		}
		folders = all
	}

	removed := 0
	var unavailable []error
	for _, f := range folders {
		n, err := s.purgeFolder(ctx, f)
		removed += n
		if err != nil {
			if folder == nil && errors.Is(err, ErrFolderUnavailable) {
				s.logger.Warn().Err(err).Str("folder", f.Path).Msg("Skipping unavailable folder")
				unavailable = append(unavailable, err)
				continue
			}
			return removed, err
		}
	}
	return removed, errors.Join(unavailable...)
}

func (s *Scanner) purgeFolder(ctx context.Context, folder *models.Folder) (int, error) {
	logger := s.logger.With().Str("folder", folder.Path).Int64("folder_id", folder.ID).Logger()

	if info, err := os.Stat(folder.Path); err != nil || !info.IsDir() {
		return 0, fmt.Errorf("%w: %s", ErrFolderUnavailable, folder.Path)
	}

	videos, err := s.db.Store().VideoGetByFolder(ctx, folder.ID)
	if err != nil {
		return 0, err
	}

	var missing []*models.Video
	for _, v := range videos {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		_, err := os.Stat(v.Path)
		if errors.Is(err, fs.ErrNotExist) {
			missing = append(missing, v)
			continue
		}
		if err != nil {
			logger.Warn().Err(err).Str("path", v.Path).Msg("Cannot stat video, keeping it")
		}
	}
	if len(missing) == 0 {
		return 0, nil
	}

	err = s.db.WithTx(ctx, func(st *database.Store) error {
		for _, v := range missing {
			if err := st.VideoDelete(ctx, v.ID); err != nil && !errors.Is(err, database.ErrNotFound) {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	for _, v := range missing {
		logger.Info().Str("path", v.Path).Int64("video_id", v.ID).Msg("Purged missing video")
	}
	return len(missing), nil
}
