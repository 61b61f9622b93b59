package models

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"
)

// Folder is the root of a directory tree that is scanned for videos
type Folder struct {
	ID       int64      `json:"id" yaml:"id"`
	Path     string     `json:"path" yaml:"path"`
	LastScan *time.Time `json:"last_scan,omitempty" yaml:"last_scan,omitempty"` // nil until a scan has completed
	Remote   bool       `json:"remote" yaml:"remote"`
}

// Resolution is the size of a video frame in pixels. The zero value is the
// sentinel stored when the probe could not determine the size.
type Resolution struct {
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// IsUnknown reports whether r is the sentinel resolution
func (r Resolution) IsUnknown() bool {
	return r.Width == 0 && r.Height == 0
}

func (r Resolution) String() string {
	return fmt.Sprintf("%dx%d", r.Width, r.Height)
}

// Video is a single indexed video file
type Video struct {
	ID         int64       `json:"id" yaml:"id"`
	FolderID   int64       `json:"folder_id" yaml:"folder_id"`
	Path       string      `json:"path" yaml:"path"`
	Added      time.Time   `json:"added" yaml:"added"`
	Mtime      time.Time   `json:"mtime" yaml:"mtime"`
	Title      string      `json:"title" yaml:"title"`
	Checksum   *string     `json:"checksum,omitempty" yaml:"checksum,omitempty"`
	Resolution *Resolution `json:"resolution,omitempty" yaml:"resolution,omitempty"`
	Duration   *int64      `json:"duration_ms,omitempty" yaml:"duration_ms,omitempty"` // milliseconds
	Hidden     bool        `json:"hidden" yaml:"hidden"`
}

// DisplayTitle returns the title, or the file name if no title is set
func (v *Video) DisplayTitle() string {
	if v.Title != "" {
		return v.Title
	}
	return filepath.Base(v.Path)
}

// videoFields has the fields of Video without its marshalers
type videoFields Video

type videoOutput struct {
	videoFields  `yaml:",inline"`
	DisplayTitle string `json:"display_title" yaml:"display_title"`
}

func (v Video) output() videoOutput {
	return videoOutput{videoFields: videoFields(v), DisplayTitle: v.DisplayTitle()}
}

// MarshalJSON adds display_title to the stored fields
func (v Video) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.output())
}

func (v Video) MarshalYAML() (interface{}, error) {
	return v.output(), nil
}

// Program groups one or more videos, e.g. the episodes of a series
type Program struct {
	ID    int64  `json:"id" yaml:"id"`
	Title string `json:"title" yaml:"title"`
}

// Tag is a short label that can be attached to videos
type Tag struct {
	ID   int64  `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// Person participates in a video in some role: actor, director, writer...
type Person struct {
	ID   int64  `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
	Born *int   `json:"born,omitempty" yaml:"born,omitempty"` // year of birth
}

// Common person roles. Roles are free-form; these are only the usual ones.
const (
	RoleActor    = "Actor"
	RoleDirector = "Director"
	RoleWriter   = "Writer"
	RoleProducer = "Producer"
)

// TagFlag is a tag together with whether it is attached to a given video
type TagFlag struct {
	Tag    Tag  `json:"tag" yaml:"tag"`
	Linked bool `json:"linked" yaml:"linked"`
}

// RoleAssignment is one role a person holds on a video
type RoleAssignment struct {
	Video Video  `json:"video" yaml:"video"`
	Role  string `json:"role" yaml:"role"`
}

// Credit is one person credited on a video in a role
type Credit struct {
	Person Person `json:"person" yaml:"person"`
	Role   string `json:"role" yaml:"role"`
}

// Metadata is what a probe could find out about a media file.
// Fields the probe could not determine are left nil or empty.
type Metadata struct {
	Resolution *Resolution
	Duration   *int64 // milliseconds
	Title      string
}
