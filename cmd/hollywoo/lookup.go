package main

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"hollywoo/internal/database"
	"hollywoo/internal/models"
)

func parseID(s, what string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id %q", what, s)
	}
	return id, nil
}

// lookupFolder finds a folder by its root path, relative paths allowed
func lookupFolder(cmd *cobra.Command, db *database.DB, path string) (*models.Folder, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	f, err := db.Store().FolderGetByPath(cmd.Context(), abs)
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, fmt.Errorf("no folder %s", abs)
	}
	return f, nil
}

func lookupVideo(cmd *cobra.Command, db *database.DB, arg string) (*models.Video, error) {
	id, err := parseID(arg, "video")
	if err != nil {
		return nil, err
	}
	v, err := db.Store().VideoGetByID(cmd.Context(), id)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, fmt.Errorf("no video %d", id)
	}
	return v, nil
}

func lookupTag(cmd *cobra.Command, db *database.DB, name string) (*models.Tag, error) {
	t, err := db.Store().TagGetByName(cmd.Context(), name)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, fmt.Errorf("no tag %q", name)
	}
	return t, nil
}

func lookupPerson(cmd *cobra.Command, db *database.DB, name string) (*models.Person, error) {
	p, err := db.Store().PersonGetByName(cmd.Context(), name)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("no person %q", name)
	}
	return p, nil
}

func lookupProgram(cmd *cobra.Command, db *database.DB, arg string) (*models.Program, error) {
	id, err := parseID(arg, "program")
	if err != nil {
		return nil, err
	}
	p, err := db.Store().ProgramGetByID(cmd.Context(), id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("no program %d", id)
	}
	return p, nil
}

// withDB opens the catalog for the duration of fn
func (a *app) withDB(fn func(cmd *cobra.Command, db *database.DB, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		db, err := a.openDB(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close()
		return fn(cmd, db, args)
	}
}
