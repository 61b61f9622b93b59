package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"hollywoo/internal/database"
	"hollywoo/internal/media"
	"hollywoo/internal/models"
)

// videoDetail is a video with everything linked to it
type videoDetail struct {
	Video  *models.Video   `json:"video" yaml:"video"`
	Tags   []*models.Tag   `json:"tags" yaml:"tags"`
	People []models.Credit `json:"people" yaml:"people"`
}

func newVideosCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "videos",
		Short: "List and edit videos",
	}

	var folderPath string
	list := &cobra.Command{
		Use:   "list",
		Short: "List videos, optionally of one folder",
		Args:  cobra.NoArgs,
		RunE: a.withDB(func(cmd *cobra.Command, db *database.DB, args []string) error {
			store := db.Store()
			var (
				videos []*models.Video
				err    error
			)
			if folderPath != "" {
				f, ferr := lookupFolder(cmd, db, folderPath)
				if ferr != nil {
					return ferr
				}
				videos, err = store.VideoGetByFolder(cmd.Context(), f.ID)
			} else {
				videos, err = store.VideoGetAll(cmd.Context())
			}
			if err != nil {
				return err
			}
			return a.render(cmd.OutOrStdout(), videos)
		}),
	}
	list.Flags().StringVar(&folderPath, "folder", "", "only list videos of this folder")

	var unhide bool
	hide := &cobra.Command{
		Use:   "hide ID",
		Short: "Hide a video from listings",
		Args:  cobra.ExactArgs(1),
		RunE: a.withDB(func(cmd *cobra.Command, db *database.DB, args []string) error {
			v, err := lookupVideo(cmd, db, args[0])
			if err != nil {
				return err
			}
			if err := db.Store().VideoSetHidden(cmd.Context(), v, !unhide); err != nil {
				return err
			}
			return a.render(cmd.OutOrStdout(), v)
		}),
	}
	hide.Flags().BoolVar(&unhide, "unhide", false, "make the video visible again")

	var verify bool
	checksum := &cobra.Command{
		Use:   "checksum ID",
		Short: "Store the SHA-256 of a video file, or check it with --verify",
		Args:  cobra.ExactArgs(1),
		RunE: a.withDB(func(cmd *cobra.Command, db *database.DB, args []string) error {
			v, err := lookupVideo(cmd, db, args[0])
			if err != nil {
				return err
			}
			if verify {
				if v.Checksum == nil {
					return fmt.Errorf("video %d has no checksum", v.ID)
				}
				ok, err := media.VerifyChecksum(cmd.Context(), v.Path, *v.Checksum)
				if err != nil {
					return err
				}
				return a.render(cmd.OutOrStdout(), map[string]bool{"match": ok})
			}

			sum, err := media.Checksum(cmd.Context(), v.Path)
			if err != nil {
				return err
			}
			if err := db.Store().VideoSetChecksum(cmd.Context(), v, sum); err != nil {
				return err
			}
			return a.render(cmd.OutOrStdout(), v)
		}),
	}
	checksum.Flags().BoolVar(&verify, "verify", false, "compare the file with the stored checksum")

	cmd.AddCommand(
		list,
		hide,
		&cobra.Command{
			Use:   "show ID",
			Short: "Show a video with its tags and people",
			Args:  cobra.ExactArgs(1),
			RunE: a.withDB(func(cmd *cobra.Command, db *database.DB, args []string) error {
				v, err := lookupVideo(cmd, db, args[0])
				if err != nil {
					return err
				}
				store := db.Store()
				tags, err := store.VideoGetTags(cmd.Context(), v.ID)
				if err != nil {
					return err
				}
				people, err := store.VideoGetPeople(cmd.Context(), v.ID)
				if err != nil {
					return err
				}
				return a.render(cmd.OutOrStdout(), videoDetail{Video: v, Tags: tags, People: people})
			}),
		},
		&cobra.Command{
			Use:   "title ID TITLE",
			Short: "Set the title of a video",
			Args:  cobra.ExactArgs(2),
			RunE: a.withDB(func(cmd *cobra.Command, db *database.DB, args []string) error {
				v, err := lookupVideo(cmd, db, args[0])
				if err != nil {
					return err
				}
				if err := db.Store().VideoSetTitle(cmd.Context(), v, args[1]); err != nil {
					return err
				}
				return a.render(cmd.OutOrStdout(), v)
			}),
		},
		checksum,
		&cobra.Command{
			Use:   "rm ID",
			Short: "Remove a video from the catalog",
			Args:  cobra.ExactArgs(1),
			RunE: a.withDB(func(cmd *cobra.Command, db *database.DB, args []string) error {
				v, err := lookupVideo(cmd, db, args[0])
				if err != nil {
					return err
				}
				return db.Store().VideoDelete(cmd.Context(), v.ID)
			}),
		},
	)
	return cmd
}
