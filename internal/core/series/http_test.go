// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package series_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/reel/internal/core/series"
	"github.com/taibuivan/reel/internal/platform/apperr"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
	Code  string          `json:"code"`
}

type apiHarness struct {
	t      *testing.T
	router http.Handler
	assets *fakeAssets
}

func newHarness(t *testing.T, maxUpload int64) *apiHarness {
	t.Helper()
	service, assets := newService(t, series.NewMemoryBackend(nil))
	handler := series.NewHandler(service, assets, nil, maxUpload)

	router := chi.NewRouter()
	router.Mount("/api/v1/series", handler.Routes())
	router.Mount("/api/v1/show", handler.LegacyRoutes())
	return &apiHarness{t: t, router: router, assets: assets}
}

func (h *apiHarness) do(request *http.Request) (int, envelope) {
	h.t.Helper()
	recorder := httptest.NewRecorder()
	h.router.ServeHTTP(recorder, request)

	var body envelope
	require.NoError(h.t, json.Unmarshal(recorder.Body.Bytes(), &body), recorder.Body.String())
	return recorder.Code, body
}

func (h *apiHarness) json(method, path, body string) (int, envelope) {
	request := httptest.NewRequest(method, path, strings.NewReader(body))
	request.Header.Set("Content-Type", "application/json")
	return h.do(request)
}

type filePart struct {
	name    string
	content string
}

func (h *apiHarness) upload(path, field string, files ...filePart) (int, envelope) {
	h.t.Helper()
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	for _, file := range files {
		part, err := form.CreateFormFile(field, file.name)
		require.NoError(h.t, err)
		_, err = part.Write([]byte(file.content))
		require.NoError(h.t, err)
	}
	require.NoError(h.t, form.Close())

	request := httptest.NewRequest(http.MethodPost, path, &buf)
	request.Header.Set("Content-Type", form.FormDataContentType())
	return h.do(request)
}

func (h *apiHarness) createSeries(body string) series.Series {
	h.t.Helper()
	status, response := h.json(http.MethodPost, "/api/v1/series", body)
	require.Equal(h.t, http.StatusOK, status)

	var created series.Series
	require.NoError(h.t, json.Unmarshal(response.Data, &created))
	return created
}

/*
TestHTTP_SeriesCRUD exercises the JSON endpoints and their error codes.
*/
func TestHTTP_SeriesCRUD(t *testing.T) {
	h := newHarness(t, 1<<20)

	created := h.createSeries(`{"title": "Trip", "episodeCount": 2}`)
	assert.Equal(t, "Trip", created.Title)
	assert.Len(t, created.Episodes, 2)

	status, response := h.json(http.MethodPatch, "/api/v1/series/"+created.ID, `{"episodeCount": 1}`)
	require.Equal(t, http.StatusOK, status)
	var updated series.Series
	require.NoError(t, json.Unmarshal(response.Data, &updated))
	assert.Equal(t, 1, updated.EpisodeCount)

	status, response = h.json(http.MethodGet, "/api/v1/series/missing", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, apperr.CodeNotFound, response.Code)

	status, response = h.json(http.MethodPost, "/api/v1/series", `{"episodeCount": "two"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, apperr.CodeValidation, response.Code)

	status, _ = h.json(http.MethodDelete, "/api/v1/series/"+created.ID, "")
	assert.Equal(t, http.StatusOK, status)

	status, response = h.json(http.MethodGet, "/api/v1/series", "")
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[]`, string(response.Data))
}

/*
TestHTTP_UploadMedia stores files, then appends typed items in order.
*/
func TestHTTP_UploadMedia(t *testing.T) {
	h := newHarness(t, 1<<20)
	created := h.createSeries(`{}`)

	status, response := h.upload("/api/v1/series/"+created.ID+"/episodes/0/media", "media",
		filePart{"clip.mp4", "video-bytes"},
		filePart{"pic.png", "image-bytes"},
	)
	require.Equal(t, http.StatusOK, status, response.Error)

	var added []series.MediaItem
	require.NoError(t, json.Unmarshal(response.Data, &added))
	require.Len(t, added, 2)
	assert.Equal(t, series.MediaVideo, added[0].Type)
	assert.Equal(t, series.MediaImage, added[1].Type)
	assert.Equal(t, "clip.mp4", added[0].OriginalName)
	assert.True(t, h.assets.has(added[0].Filename))
	assert.Equal(t, "/uploads/"+added[1].Filename, added[1].URL)

	// Reorder, then delete one item and its asset
	order := `{"mediaIds": ["` + added[1].ID + `"]}`
	status, response = h.json(http.MethodPut, "/api/v1/series/"+created.ID+"/episodes/0/media/order", order)
	require.Equal(t, http.StatusOK, status)
	var reordered []series.MediaItem
	require.NoError(t, json.Unmarshal(response.Data, &reordered))
	assert.Equal(t, []string{added[1].ID, added[0].ID}, mediaIDs(reordered))

	status, _ = h.json(http.MethodDelete, "/api/v1/series/"+created.ID+"/episodes/0/media/"+added[0].ID, "")
	assert.Equal(t, http.StatusOK, status)
	assert.False(t, h.assets.has(added[0].Filename))
}

/*
TestHTTP_UploadRejected covers the 400 and 413 paths and discarding uploads
the document refused.
*/
func TestHTTP_UploadRejected(t *testing.T) {
	h := newHarness(t, 1<<20)
	created := h.createSeries(`{"episodeCount": 1}`)
	base := "/api/v1/series/" + created.ID

	// Unsupported type never reaches the store
	status, response := h.upload(base+"/episodes/0/media", "media", filePart{"notes.txt", "x"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, apperr.CodeValidation, response.Code)

	// Music into an image slot
	status, _ = h.upload(base+"/episodes/0/thumbnail", "thumbnail", filePart{"song.mp3", "x"})
	assert.Equal(t, http.StatusBadRequest, status)

	// Missing file
	status, response = h.upload(base+"/episodes/0/music", "other", filePart{"song.mp3", "x"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, apperr.CodeValidation, response.Code)

	// Out-of-range index: stored, then discarded
	status, response = h.upload(base+"/episodes/3/thumbnail", "thumbnail", filePart{"cover.png", "x"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, apperr.CodeInvalidIndex, response.Code)

	// Non-integer index
	status, _ = h.upload(base+"/episodes/first/thumbnail", "thumbnail", filePart{"cover.png", "x"})
	assert.Equal(t, http.StatusBadRequest, status)

	keys, err := h.assets.List(t.Context())
	require.NoError(t, err)
	assert.Empty(t, keys)

	// Oversized body
	small := newHarness(t, 512)
	smallSeries := small.createSeries(`{}`)
	status, response = small.upload("/api/v1/series/"+smallSeries.ID+"/thumbnail", "thumbnail", filePart{"big.png", strings.Repeat("x", 4096)})
	assert.Equal(t, http.StatusRequestEntityTooLarge, status)
	assert.Equal(t, apperr.CodePayloadTooLarge, response.Code)
}

/*
TestHTTP_ReorderRequiresArray rejects every non-array mediaIds value.
*/
func TestHTTP_ReorderRequiresArray(t *testing.T) {
	h := newHarness(t, 1<<20)
	created := h.createSeries(`{}`)
	path := "/api/v1/series/" + created.ID + "/episodes/0/media/order"

	for _, body := range []string{`{}`, `{"mediaIds": "a,b"}`, `{"mediaIds": null}`, `{"mediaIds": {"a": 1}}`} {
		status, response := h.json(http.MethodPut, path, body)
		assert.Equal(t, http.StatusBadRequest, status, body)
		assert.Equal(t, apperr.CodeValidation, response.Code, body)
	}

	status, _ := h.json(http.MethodPut, path, `{"mediaIds": []}`)
	assert.Equal(t, http.StatusOK, status)
}

/*
TestHTTP_Legacy serves the first series in the single-show shape.
*/
func TestHTTP_Legacy(t *testing.T) {
	h := newHarness(t, 1<<20)

	status, response := h.json(http.MethodGet, "/api/v1/show", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, apperr.CodeNotFound, response.Code)

	status, _ = h.upload("/api/v1/show/episodes/0/music", "music", filePart{"song.mp3", "x"})
	assert.Equal(t, http.StatusNotFound, status)

	h.createSeries(`{"title": "Home Movies", "episodeCount": 2}`)

	status, response = h.json(http.MethodGet, "/api/v1/show", "")
	require.Equal(t, http.StatusOK, status)
	var show series.LegacyShow
	require.NoError(t, json.Unmarshal(response.Data, &show))
	assert.Equal(t, "Home Movies", show.ShowTitle)
	assert.Equal(t, 2, show.EpisodeCount)

	status, response = h.upload("/api/v1/show/episodes/1/music", "music", filePart{"Theme Song.mp3", "x"})
	require.Equal(t, http.StatusOK, status)
	var episode series.Episode
	require.NoError(t, json.Unmarshal(response.Data, &episode))
	require.NotNil(t, episode.Music)
	assert.Equal(t, "Theme Song.mp3", *episode.MusicOriginalName)

	status, response = h.json(http.MethodPut, "/api/v1/show", `{"showTitle": "Renamed", "episodeCount": 1}`)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(response.Data, &show))
	assert.Equal(t, "Renamed", show.ShowTitle)
	assert.Len(t, show.Episodes, 1)
}
