package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"hollywoo/internal/database"
)

func newFoldersCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "folders",
		Short: "List and manage scanned folders",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List folders",
			Args:  cobra.NoArgs,
			RunE: a.withDB(func(cmd *cobra.Command, db *database.DB, args []string) error {
				folders, err := db.Store().FolderGetAll(cmd.Context())
				if err != nil {
					return err
				}
				return a.render(cmd.OutOrStdout(), folders)
			}),
		},
		&cobra.Command{
			Use:   "remote FOLDER true|false",
			Short: "Mark a folder as living on a network share",
			Args:  cobra.ExactArgs(2),
			RunE: a.withDB(func(cmd *cobra.Command, db *database.DB, args []string) error {
				remote, err := strconv.ParseBool(args[1])
				if err != nil {
					return err
				}
				f, err := lookupFolder(cmd, db, args[0])
				if err != nil {
					return err
				}
				if err := db.Store().FolderSetRemote(cmd.Context(), f, remote); err != nil {
					return err
				}
				return a.render(cmd.OutOrStdout(), f)
			}),
		},
		&cobra.Command{
			Use:   "rm FOLDER",
			Short: "Forget a folder and every video in it",
			Args:  cobra.ExactArgs(1),
			RunE: a.withDB(func(cmd *cobra.Command, db *database.DB, args []string) error {
				f, err := lookupFolder(cmd, db, args[0])
				if err != nil {
					return err
				}
				return db.Store().FolderDelete(cmd.Context(), f.ID)
			}),
		},
	)
	return cmd
}
