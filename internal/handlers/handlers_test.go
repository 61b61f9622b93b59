package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hollywoo/internal/database"
	"hollywoo/internal/models"
	"hollywoo/internal/scanner"
)

type fakeSubmitter struct {
	mu    sync.Mutex
	roots []string
	err   error
}

func (f *fakeSubmitter) Submit(root string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.roots = append(f.roots, root)
	return nil
}

type fixture struct {
	app   *fiber.App
	db    *database.DB
	scans *fakeSubmitter
	video *models.Video
	tag   *models.Tag
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store := db.Store()
	folder := &models.Folder{Path: "/media/movies"}
	require.NoError(t, store.FolderAdd(ctx, folder))
	video := &models.Video{
		FolderID:   folder.ID,
		Path:       "/media/movies/a.mp4",
		Mtime:      time.Unix(1700000000, 0),
		Resolution: &models.Resolution{Width: 1920, Height: 1080},
	}
	require.NoError(t, store.VideoAdd(ctx, video))
	tag := &models.Tag{Name: "Action"}
	require.NoError(t, store.TagCreate(ctx, tag))

	scans := &fakeSubmitter{}
	app := fiber.New()
	fh := NewFolderHandler(db, scans)
	vh := NewVideoHandler(db)
	th := NewTagHandler(db)
	ph := NewPersonHandler(db)
	app.Get("/api/folders", fh.GetFolders)
	app.Post("/api/folders", fh.ScanFolder)
	app.Get("/api/folders/:id/videos", fh.GetFolderVideos)
	app.Get("/api/videos/:id", vh.GetVideo)
	app.Get("/api/videos/:id/tags", vh.GetVideoTags)
	app.Post("/api/videos/:id/tags/:tagID", vh.AddVideoTag)
	app.Delete("/api/videos/:id/tags/:tagID", vh.RemoveVideoTag)
	app.Get("/api/videos/:id/people", vh.GetVideoPeople)
	app.Get("/api/tags", th.GetTags)
	app.Post("/api/tags", th.CreateTag)
	app.Get("/api/tags/:id/videos", th.GetTagVideos)
	app.Get("/api/people", ph.GetPeople)
	app.Get("/api/people/:id/roles", ph.GetPersonRoles)

	return &fixture{app: app, db: db, scans: scans, video: video, tag: tag}
}

func (f *fixture) do(t *testing.T, method, target, body string) (int, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func urlf(format string, args ...any) string {
	return fmt.Sprintf(format, args...)
}

func TestFolders(t *testing.T) {
	f := newFixture(t)

	code, body := f.do(t, http.MethodGet, "/api/folders", "")
	require.Equal(t, http.StatusOK, code)
	var folders []models.Folder
	require.NoError(t, json.Unmarshal(body, &folders))
	require.Len(t, folders, 1)
	assert.Equal(t, "/media/movies", folders[0].Path)

	code, body = f.do(t, http.MethodGet, urlf("/api/folders/%d/videos", folders[0].ID), "")
	require.Equal(t, http.StatusOK, code)
	var videos []models.Video
	require.NoError(t, json.Unmarshal(body, &videos))
	require.Len(t, videos, 1)
	assert.Equal(t, f.video.Path, videos[0].Path)

	code, _ = f.do(t, http.MethodGet, "/api/folders/999/videos", "")
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = f.do(t, http.MethodGet, "/api/folders/abc/videos", "")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestScanFolder(t *testing.T) {
	f := newFixture(t)

	code, body := f.do(t, http.MethodPost, "/api/folders", `{"path":"/media/tv"}`)
	require.Equal(t, http.StatusAccepted, code)
	assert.Contains(t, string(body), "queued")
	assert.Equal(t, []string{"/media/tv"}, f.scans.roots)

	code, _ = f.do(t, http.MethodPost, "/api/folders", `{"path":"  "}`)
	assert.Equal(t, http.StatusBadRequest, code)

	f.scans.err = scanner.ErrQueueFull
	code, _ = f.do(t, http.MethodPost, "/api/folders", `{"path":"/media/tv"}`)
	assert.Equal(t, http.StatusTooManyRequests, code)

	f.scans.err = scanner.ErrStopped
	code, _ = f.do(t, http.MethodPost, "/api/folders", `{"path":"/media/tv"}`)
	assert.Equal(t, http.StatusServiceUnavailable, code)
}

func TestGetVideo(t *testing.T) {
	f := newFixture(t)

	code, body := f.do(t, http.MethodGet, urlf("/api/videos/%d", f.video.ID), "")
	require.Equal(t, http.StatusOK, code)
	var v models.Video
	require.NoError(t, json.Unmarshal(body, &v))
	assert.Equal(t, f.video.ID, v.ID)
	require.NotNil(t, v.Resolution)
	assert.Equal(t, 1920, v.Resolution.Width)
	assert.Contains(t, string(body), `"display_title":"a.mp4"`)

	code, body = f.do(t, http.MethodGet, "/api/videos/42", "")
	assert.Equal(t, http.StatusNotFound, code)
	var e ErrorResponse
	require.NoError(t, json.Unmarshal(body, &e))
	assert.Equal(t, http.StatusNotFound, e.Code)

	code, _ = f.do(t, http.MethodGet, "/api/videos/-1", "")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestVideoTagLinks(t *testing.T) {
	f := newFixture(t)
	link := urlf("/api/videos/%d/tags/%d", f.video.ID, f.tag.ID)

	flags := func() []models.TagFlag {
		code, body := f.do(t, http.MethodGet, urlf("/api/videos/%d/tags", f.video.ID), "")
		require.Equal(t, http.StatusOK, code)
		var out []models.TagFlag
		require.NoError(t, json.Unmarshal(body, &out))
		return out
	}

	require.Len(t, flags(), 1)
	assert.False(t, flags()[0].Linked)

	code, _ := f.do(t, http.MethodPost, link, "")
	require.Equal(t, http.StatusNoContent, code)
	assert.True(t, flags()[0].Linked)

	// linking twice is an integrity violation
	code, body := f.do(t, http.MethodPost, link, "")
	assert.Equal(t, http.StatusConflict, code)
	assert.Contains(t, string(body), "Conflict")

	code, _ = f.do(t, http.MethodDelete, link, "")
	require.Equal(t, http.StatusNoContent, code)
	assert.False(t, flags()[0].Linked)

	// removing a missing link still succeeds
	code, _ = f.do(t, http.MethodDelete, link, "")
	assert.Equal(t, http.StatusNoContent, code)

	code, _ = f.do(t, http.MethodPost, urlf("/api/videos/%d/tags/999", f.video.ID), "")
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = f.do(t, http.MethodPost, urlf("/api/videos/999/tags/%d", f.tag.ID), "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestTags(t *testing.T) {
	f := newFixture(t)

	code, body := f.do(t, http.MethodPost, "/api/tags", `{"name":"Drama"}`)
	require.Equal(t, http.StatusCreated, code)
	var created models.Tag
	require.NoError(t, json.Unmarshal(body, &created))
	assert.NotZero(t, created.ID)

	code, _ = f.do(t, http.MethodPost, "/api/tags", `{"name":"Drama"}`)
	assert.Equal(t, http.StatusConflict, code)

	code, _ = f.do(t, http.MethodPost, "/api/tags", `{}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, body = f.do(t, http.MethodGet, "/api/tags", "")
	require.Equal(t, http.StatusOK, code)
	var tags []models.Tag
	require.NoError(t, json.Unmarshal(body, &tags))
	require.Len(t, tags, 2)
	assert.Equal(t, "Action", tags[0].Name)
	assert.Equal(t, "Drama", tags[1].Name)

	require.NoError(t, f.db.Store().TagLinkCreate(context.Background(), f.tag.ID, f.video.ID))
	code, body = f.do(t, http.MethodGet, urlf("/api/tags/%d/videos", f.tag.ID), "")
	require.Equal(t, http.StatusOK, code)
	var videos []models.Video
	require.NoError(t, json.Unmarshal(body, &videos))
	require.Len(t, videos, 1)

	code, body = f.do(t, http.MethodGet, urlf("/api/tags/%d/videos", created.ID), "")
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, "[]", string(body))

	code, _ = f.do(t, http.MethodGet, "/api/tags/999/videos", "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestPeople(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	store := f.db.Store()

	p := &models.Person{Name: "Jane Doe"}
	require.NoError(t, store.PersonAdd(ctx, p))
	require.NoError(t, store.PersonLinkCreate(ctx, p.ID, f.video.ID, models.RoleActor))
	require.NoError(t, store.PersonLinkCreate(ctx, p.ID, f.video.ID, models.RoleDirector))

	code, body := f.do(t, http.MethodGet, "/api/people", "")
	require.Equal(t, http.StatusOK, code)
	var people []models.Person
	require.NoError(t, json.Unmarshal(body, &people))
	require.Len(t, people, 1)

	code, body = f.do(t, http.MethodGet, urlf("/api/people/%d/roles", p.ID), "")
	require.Equal(t, http.StatusOK, code)
	var roles []models.RoleAssignment
	require.NoError(t, json.Unmarshal(body, &roles))
	require.Len(t, roles, 2)
	assert.Equal(t, models.RoleActor, roles[0].Role)

	code, body = f.do(t, http.MethodGet, urlf("/api/videos/%d/people", f.video.ID), "")
	require.Equal(t, http.StatusOK, code)
	var credits []models.Credit
	require.NoError(t, json.Unmarshal(body, &credits))
	require.Len(t, credits, 2)
	assert.Equal(t, "Jane Doe", credits[0].Person.Name)

	code, _ = f.do(t, http.MethodGet, "/api/people/999/roles", "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestHealthCheck(t *testing.T) {
	f := newFixture(t)
	f.app.Get("/healthz", NewHealthHandler(f.db).HealthCheck)

	code, body := f.do(t, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, code)
	var status HealthStatus
	require.NoError(t, json.Unmarshal(body, &status))
	assert.Equal(t, "ok", status.Status)
	assert.Equal(t, "ok", status.DB.Status)
	assert.Equal(t, int64(1), status.Videos)

	require.NoError(t, f.db.Close())
	code, body = f.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	require.NoError(t, json.Unmarshal(body, &status))
	assert.Equal(t, "error", status.Status)
}
