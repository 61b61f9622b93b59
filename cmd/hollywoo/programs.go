package main

import (
	"github.com/spf13/cobra"

	"hollywoo/internal/database"
	"hollywoo/internal/models"
)

func newProgramsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "programs",
		Short: "Group videos into programs such as a series",
	}

	// link runs fn with the program and video named by the first two args
	link := func(fn func(cmd *cobra.Command, db *database.DB, p *models.Program, videoID int64) error) func(*cobra.Command, []string) error {
		return a.withDB(func(cmd *cobra.Command, db *database.DB, args []string) error {
			p, err := lookupProgram(cmd, db, args[0])
			if err != nil {
				return err
			}
			id, err := parseID(args[1], "video")
			if err != nil {
				return err
			}
			return fn(cmd, db, p, id)
		})
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List programs",
			Args:  cobra.NoArgs,
			RunE: a.withDB(func(cmd *cobra.Command, db *database.DB, args []string) error {
				programs, err := db.Store().ProgramGetAll(cmd.Context())
				if err != nil {
					return err
				}
				return a.render(cmd.OutOrStdout(), programs)
			}),
		},
		&cobra.Command{
			Use:   "create TITLE",
			Short: "Create a program",
			Args:  cobra.ExactArgs(1),
			RunE: a.withDB(func(cmd *cobra.Command, db *database.DB, args []string) error {
				p := &models.Program{Title: args[0]}
				if err := db.Store().ProgramAdd(cmd.Context(), p); err != nil {
					return err
				}
				return a.render(cmd.OutOrStdout(), p)
			}),
		},
		&cobra.Command{
			Use:   "title ID TITLE",
			Short: "Rename a program",
			Args:  cobra.ExactArgs(2),
			RunE: a.withDB(func(cmd *cobra.Command, db *database.DB, args []string) error {
				p, err := lookupProgram(cmd, db, args[0])
				if err != nil {
					return err
				}
				if err := db.Store().ProgramSetTitle(cmd.Context(), p, args[1]); err != nil {
					return err
				}
				return a.render(cmd.OutOrStdout(), p)
			}),
		},
		&cobra.Command{
			Use:   "rm ID",
			Short: "Delete a program; its videos are kept",
			Args:  cobra.ExactArgs(1),
			RunE: a.withDB(func(cmd *cobra.Command, db *database.DB, args []string) error {
				p, err := lookupProgram(cmd, db, args[0])
				if err != nil {
					return err
				}
				return db.Store().ProgramDelete(cmd.Context(), p.ID)
			}),
		},
		&cobra.Command{
			Use:   "add ID VIDEO_ID",
			Short: "Add a video to a program",
			Args:  cobra.ExactArgs(2),
			RunE: link(func(cmd *cobra.Command, db *database.DB, p *models.Program, videoID int64) error {
				return db.Store().ProgramAddVideo(cmd.Context(), p.ID, videoID)
			}),
		},
		&cobra.Command{
			Use:   "remove ID VIDEO_ID",
			Short: "Remove a video from a program",
			Args:  cobra.ExactArgs(2),
			RunE: link(func(cmd *cobra.Command, db *database.DB, p *models.Program, videoID int64) error {
				return db.Store().ProgramRemoveVideo(cmd.Context(), p.ID, videoID)
			}),
		},
		&cobra.Command{
			Use:   "videos ID",
			Short: "List the videos of a program",
			Args:  cobra.ExactArgs(1),
			RunE: a.withDB(func(cmd *cobra.Command, db *database.DB, args []string) error {
				p, err := lookupProgram(cmd, db, args[0])
				if err != nil {
					return err
				}
				videos, err := db.Store().ProgramGetVideos(cmd.Context(), p.ID)
				if err != nil {
					return err
				}
				return a.render(cmd.OutOrStdout(), videos)
			}),
		},
	)
	return cmd
}
