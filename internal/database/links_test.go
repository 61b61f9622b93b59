package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hollywoo/internal/models"
)

func TestTagGetAllForVideo(t *testing.T) {
	db, _ := newTestDB(t)
	ctx := context.Background()
	s := db.Store()
	f := addFolder(t, s, "/media/movies")
	v := addVideo(t, s, f, "/media/movies/a.mp4")

	flags, err := s.TagGetAllForVideo(ctx, v.ID)
	require.NoError(t, err)
	assert.NotNil(t, flags)
	assert.Empty(t, flags)

	for _, name := range []string{"Western", "Action", "Drama"} {
		require.NoError(t, s.TagCreate(ctx, &models.Tag{Name: name}))
	}
	action, err := s.TagGetByName(ctx, "Action")
	require.NoError(t, err)
	require.NoError(t, s.TagLinkCreate(ctx, action.ID, v.ID))

	flags, err = s.TagGetAllForVideo(ctx, v.ID)
	require.NoError(t, err)
	require.Len(t, flags, 3)
	assert.Equal(t, "Action", flags[0].Tag.Name)
	assert.True(t, flags[0].Linked)
	assert.Equal(t, "Drama", flags[1].Tag.Name)
	assert.False(t, flags[1].Linked)
	assert.Equal(t, "Western", flags[2].Tag.Name)
	assert.False(t, flags[2].Linked)
}

func TestTagGetVideos_OrderedByFolderThenPath(t *testing.T) {
	db, _ := newTestDB(t)
	ctx := context.Background()
	s := db.Store()

	// folder order differs from the global path order of the videos
	zeta := addFolder(t, s, "/zeta")
	alpha := addFolder(t, s, "/alpha")
	v1 := addVideo(t, s, zeta, "/zeta/a.mp4")
	v2 := addVideo(t, s, alpha, "/alpha/z.mp4")
	v3 := addVideo(t, s, alpha, "/alpha/b.mp4")

	tag := &models.Tag{Name: "Action"}
	require.NoError(t, s.TagCreate(ctx, tag))

	videos, err := s.TagGetVideos(ctx, tag.ID)
	require.NoError(t, err)
	assert.NotNil(t, videos)
	assert.Empty(t, videos)

	for _, v := range []*models.Video{v1, v2, v3} {
		require.NoError(t, s.TagLinkCreate(ctx, tag.ID, v.ID))
	}

	videos, err = s.TagGetVideos(ctx, tag.ID)
	require.NoError(t, err)
	require.Len(t, videos, 3)
	assert.Equal(t, v3.ID, videos[0].ID)
	assert.Equal(t, v2.ID, videos[1].ID)
	assert.Equal(t, v1.ID, videos[2].ID)

	tags, err := s.VideoGetTags(ctx, v1.ID)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, "Action", tags[0].Name)
}

func TestPersonGetRolesAndVideoGetPeople(t *testing.T) {
	db, _ := newTestDB(t)
	ctx := context.Background()
	s := db.Store()
	f := addFolder(t, s, "/media/movies")
	a := addVideo(t, s, f, "/media/movies/a.mp4")
	b := addVideo(t, s, f, "/media/movies/b.mp4")

	clint := &models.Person{Name: "Clint Eastwood"}
	lee := &models.Person{Name: "Lee Van Cleef"}
	require.NoError(t, s.PersonAdd(ctx, clint))
	require.NoError(t, s.PersonAdd(ctx, lee))

	roles, err := s.PersonGetRoles(ctx, clint.ID)
	require.NoError(t, err)
	assert.NotNil(t, roles)
	assert.Empty(t, roles)

	require.NoError(t, s.PersonLinkCreate(ctx, clint.ID, b.ID, models.RoleActor))
	require.NoError(t, s.PersonLinkCreate(ctx, clint.ID, a.ID, models.RoleDirector))
	require.NoError(t, s.PersonLinkCreate(ctx, clint.ID, a.ID, models.RoleActor))
	require.NoError(t, s.PersonLinkCreate(ctx, lee.ID, a.ID, models.RoleActor))

	roles, err = s.PersonGetRoles(ctx, clint.ID)
	require.NoError(t, err)
	require.Len(t, roles, 3)
	assert.Equal(t, a.ID, roles[0].Video.ID)
	assert.Equal(t, models.RoleActor, roles[0].Role)
	assert.Equal(t, a.ID, roles[1].Video.ID)
	assert.Equal(t, models.RoleDirector, roles[1].Role)
	assert.Equal(t, b.ID, roles[2].Video.ID)
	assert.Equal(t, "/media/movies/b.mp4", roles[2].Video.Path)

	credits, err := s.VideoGetPeople(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, credits, 3)
	assert.Equal(t, "Clint Eastwood", credits[0].Person.Name)
	assert.Equal(t, models.RoleActor, credits[0].Role)
	assert.Equal(t, "Clint Eastwood", credits[1].Person.Name)
	assert.Equal(t, models.RoleDirector, credits[1].Role)
	assert.Equal(t, "Lee Van Cleef", credits[2].Person.Name)

	credits, err = s.VideoGetPeople(ctx, 12345)
	require.NoError(t, err)
	assert.NotNil(t, credits)
	assert.Empty(t, credits)
}

func TestProgramGetVideos(t *testing.T) {
	db, _ := newTestDB(t)
	ctx := context.Background()
	s := db.Store()
	f := addFolder(t, s, "/media/tv")
	e2 := addVideo(t, s, f, "/media/tv/s01e02.mkv")
	e1 := addVideo(t, s, f, "/media/tv/s01e01.mkv")

	p := &models.Program{Title: "Show"}
	require.NoError(t, s.ProgramAdd(ctx, p))

	videos, err := s.ProgramGetVideos(ctx, p.ID)
	require.NoError(t, err)
	assert.NotNil(t, videos)
	assert.Empty(t, videos)

	require.NoError(t, s.ProgramAddVideo(ctx, p.ID, e2.ID))
	require.NoError(t, s.ProgramAddVideo(ctx, p.ID, e1.ID))

	videos, err = s.ProgramGetVideos(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, videos, 2)
	assert.Equal(t, e1.ID, videos[0].ID)
	assert.Equal(t, e2.ID, videos[1].ID)
}
