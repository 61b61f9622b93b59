package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"hollywoo/internal/database"
	"hollywoo/internal/models"
)

func newPeopleCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "people",
		Short: "Manage people and their roles on videos",
	}

	var born int
	add := &cobra.Command{
		Use:   "add NAME",
		Short: "Add a person",
		Args:  cobra.ExactArgs(1),
		RunE: a.withDB(func(cmd *cobra.Command, db *database.DB, args []string) error {
			p := &models.Person{Name: args[0]}
			if cmd.Flags().Changed("born") {
				p.Born = &born
			}
			if err := db.Store().PersonAdd(cmd.Context(), p); err != nil {
				return err
			}
			return a.render(cmd.OutOrStdout(), p)
		}),
	}
	add.Flags().IntVar(&born, "born", 0, "year of birth")

	cmd.AddCommand(
		add,
		&cobra.Command{
			Use:   "list",
			Short: "List people",
			Args:  cobra.NoArgs,
			RunE: a.withDB(func(cmd *cobra.Command, db *database.DB, args []string) error {
				people, err := db.Store().PersonGetAll(cmd.Context())
				if err != nil {
					return err
				}
				return a.render(cmd.OutOrStdout(), people)
			}),
		},
		&cobra.Command{
			Use:   "born NAME YEAR",
			Short: "Set a person's year of birth; 0 clears it",
			Args:  cobra.ExactArgs(2),
			RunE: a.withDB(func(cmd *cobra.Command, db *database.DB, args []string) error {
				year, err := strconv.Atoi(args[1])
				if err != nil {
					return fmt.Errorf("invalid year %q", args[1])
				}
				p, err := lookupPerson(cmd, db, args[0])
				if err != nil {
					return err
				}
				var born *int
				if year != 0 {
					born = &year
				}
				if err := db.Store().PersonSetBorn(cmd.Context(), p, born); err != nil {
					return err
				}
				return a.render(cmd.OutOrStdout(), p)
			}),
		},
		&cobra.Command{
			Use:   "rm NAME",
			Short: "Delete a person and their credits",
			Args:  cobra.ExactArgs(1),
			RunE: a.withDB(func(cmd *cobra.Command, db *database.DB, args []string) error {
				p, err := lookupPerson(cmd, db, args[0])
				if err != nil {
					return err
				}
				return db.Store().PersonDelete(cmd.Context(), p.ID)
			}),
		},
		&cobra.Command{
			Use:   "credit NAME VIDEO_ID ROLE",
			Short: "Credit a person on a video in a role (Actor, Director, Writer...)",
			Args:  cobra.ExactArgs(3),
			RunE: a.withDB(func(cmd *cobra.Command, db *database.DB, args []string) error {
				p, err := lookupPerson(cmd, db, args[0])
				if err != nil {
					return err
				}
				v, err := lookupVideo(cmd, db, args[1])
				if err != nil {
					return err
				}
				return db.Store().PersonLinkCreate(cmd.Context(), p.ID, v.ID, args[2])
			}),
		},
		&cobra.Command{
			Use:   "uncredit NAME VIDEO_ID ROLE",
			Short: "Remove a person's role on a video",
			Args:  cobra.ExactArgs(3),
			RunE: a.withDB(func(cmd *cobra.Command, db *database.DB, args []string) error {
				p, err := lookupPerson(cmd, db, args[0])
				if err != nil {
					return err
				}
				id, err := parseID(args[1], "video")
				if err != nil {
					return err
				}
				return db.Store().PersonLinkDelete(cmd.Context(), p.ID, id, args[2])
			}),
		},
		&cobra.Command{
			Use:   "roles NAME",
			Short: "List the videos a person is credited on",
			Args:  cobra.ExactArgs(1),
			RunE: a.withDB(func(cmd *cobra.Command, db *database.DB, args []string) error {
				p, err := lookupPerson(cmd, db, args[0])
				if err != nil {
					return err
				}
				roles, err := db.Store().PersonGetRoles(cmd.Context(), p.ID)
				if err != nil {
					return err
				}
				return a.render(cmd.OutOrStdout(), roles)
			}),
		},
	)
	return cmd
}
