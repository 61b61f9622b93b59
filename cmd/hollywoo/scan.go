package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"hollywoo/internal/models"
	"hollywoo/internal/scanner"
)

func newScanCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "scan DIR...",
		Short: "Scan directories and reconcile them with the catalog",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			flush, err := a.startTracing(ctx)
			if err != nil {
				return err
			}
			defer flush()

			db, err := a.openDB(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			s := a.newScanner(db)
			results := make([]*scanner.Result, 0, len(args))
			var failed error
			for _, root := range args {
				res, err := s.Scan(ctx, root)
				a.log.LogScan(res.RunID, res.Root, res.Stats.Duration, res.Stats.Inserted, res.Stats.Updated, err)
				results = append(results, res)
				if err != nil && failed == nil {
					failed = fmt.Errorf("scan of %s failed: %w", root, err)
				}
				if ctx.Err() != nil {
					break
				}
			}

			if err := a.render(cmd.OutOrStdout(), results); err != nil {
				return err
			}
			return failed
		},
	}
}

func newPurgeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "purge [FOLDER]",
		Short: "Remove videos whose files no longer exist",
		Long: "Remove videos whose files no longer exist, in FOLDER or in every folder.\n" +
			"A folder whose root is unreachable is left untouched.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, err := a.openDB(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			var folder *models.Folder
			if len(args) == 1 {
				if folder, err = lookupFolder(cmd, db, args[0]); err != nil {
					return err
				}
			}

			removed, err := a.newScanner(db).Purge(ctx, folder)
			if err != nil {
				return fmt.Errorf("purge failed after removing %d videos: %w", removed, err)
			}
			return a.render(cmd.OutOrStdout(), map[string]int{"removed": removed})
		},
	}
}
