package main

import (
	"github.com/spf13/cobra"

	"hollywoo/internal/database"
	"hollywoo/internal/models"
)

func newTagsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tags",
		Short: "Manage tags and tag videos",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list [VIDEO_ID]",
			Short: "List tags, or every tag with whether it is on a video",
			Args:  cobra.MaximumNArgs(1),
			RunE: a.withDB(func(cmd *cobra.Command, db *database.DB, args []string) error {
				if len(args) == 1 {
					v, err := lookupVideo(cmd, db, args[0])
					if err != nil {
						return err
					}
					flags, err := db.Store().TagGetAllForVideo(cmd.Context(), v.ID)
					if err != nil {
						return err
					}
					return a.render(cmd.OutOrStdout(), flags)
				}
				tags, err := db.Store().TagGetAll(cmd.Context())
				if err != nil {
					return err
				}
				return a.render(cmd.OutOrStdout(), tags)
			}),
		},
		&cobra.Command{
			Use:   "create NAME",
			Short: "Create a tag",
			Args:  cobra.ExactArgs(1),
			RunE: a.withDB(func(cmd *cobra.Command, db *database.DB, args []string) error {
				t := &models.Tag{Name: args[0]}
				if err := db.Store().TagCreate(cmd.Context(), t); err != nil {
					return err
				}
				return a.render(cmd.OutOrStdout(), t)
			}),
		},
		&cobra.Command{
			Use:   "rm NAME",
			Short: "Delete a tag and detach it from every video",
			Args:  cobra.ExactArgs(1),
			RunE: a.withDB(func(cmd *cobra.Command, db *database.DB, args []string) error {
				t, err := lookupTag(cmd, db, args[0])
				if err != nil {
					return err
				}
				return db.Store().TagDelete(cmd.Context(), t.ID)
			}),
		},
		&cobra.Command{
			Use:   "add NAME VIDEO_ID",
			Short: "Attach a tag to a video",
			Args:  cobra.ExactArgs(2),
			RunE: a.withDB(func(cmd *cobra.Command, db *database.DB, args []string) error {
				t, err := lookupTag(cmd, db, args[0])
				if err != nil {
					return err
				}
				v, err := lookupVideo(cmd, db, args[1])
				if err != nil {
					return err
				}
				return db.Store().TagLinkCreate(cmd.Context(), t.ID, v.ID)
			}),
		},
		&cobra.Command{
			Use:   "remove NAME VIDEO_ID",
			Short: "Detach a tag from a video",
			Args:  cobra.ExactArgs(2),
			RunE: a.withDB(func(cmd *cobra.Command, db *database.DB, args []string) error {
				t, err := lookupTag(cmd, db, args[0])
				if err != nil {
					return err
				}
				id, err := parseID(args[1], "video")
				if err != nil {
					return err
				}
				return db.Store().TagLinkDelete(cmd.Context(), t.ID, id)
			}),
		},
		&cobra.Command{
			Use:   "videos NAME",
			Short: "List the videos carrying a tag",
			Args:  cobra.ExactArgs(1),
			RunE: a.withDB(func(cmd *cobra.Command, db *database.DB, args []string) error {
				t, err := lookupTag(cmd, db, args[0])
				if err != nil {
					return err
				}
				videos, err := db.Store().TagGetVideos(cmd.Context(), t.ID)
				if err != nil {
					return err
				}
				return a.render(cmd.OutOrStdout(), videos)
			}),
		},
	)
	return cmd
}
