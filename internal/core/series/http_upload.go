// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package series

import (
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/taibuivan/reel/internal/platform/apperr"
	"github.com/taibuivan/reel/internal/platform/constants"
	"github.com/taibuivan/reel/internal/platform/ctxutil"
	"github.com/taibuivan/reel/internal/platform/metrics"
	requestutil "github.com/taibuivan/reel/internal/platform/request"
	"github.com/taibuivan/reel/internal/platform/respond"
	"github.com/taibuivan/reel/internal/platform/storage"
	"github.com/taibuivan/reel/internal/platform/validate"
	"github.com/taibuivan/reel/pkg/slice"
)

// # Multipart Fields

const (
	fieldThumbnail = "thumbnail"
	fieldMusic     = "music"
	fieldMedia     = "media"
)

// upload is one file written to the asset store for the current request.
type upload struct {
	object       storage.Object
	originalName string
}

/*
ingest stores the files sent in a multipart field.

Description: Every file's extension is checked before any byte is stored. If a
Put fails midway, the files already stored for this request are discarded.

Parameters:
  - field: string (Multipart field name)
  - multiple: bool (Accept more than one file)
  - allowed: []string (Accepted extensions without the dot)

Returns:
  - []upload: Stored objects in submission order
  - error: 400 missing or rejected file, 413 oversized body, 500 store failure
*/
func (handler *Handler) ingest(writer http.ResponseWriter, request *http.Request, field string, multiple bool, allowed []string) ([]upload, error) {
	if err := requestutil.LimitBody(writer, request, handler.maxUpload, constants.MultipartMemory); err != nil {
		return nil, err
	}

	files := request.MultipartForm.File[field]
	if len(files) == 0 {
		return nil, validate.RequiredError(field, "A file is required")
	}
	if !multiple {
		files = files[:1]
	}

	var v validate.Validator
	for _, header := range files {
		v.Extension(field, header.Filename, allowed...)
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	uploads := make([]upload, 0, len(files))
	for _, header := range files {
		object, err := handler.store(request, header)
		if err != nil {
			handler.discard(request, uploads)
			return nil, apperr.Internal(err)
		}
		uploads = append(uploads, upload{object: object, originalName: header.Filename})
	}

	return uploads, nil
}

func (handler *Handler) store(request *http.Request, header *multipart.FileHeader) (storage.Object, error) {
	file, err := header.Open()
	if err != nil {
		return storage.Object{}, fmt.Errorf("open multipart file: %w", err)
	}
	defer file.Close()

	object, err := handler.assets.Put(request.Context(), file, storage.Meta{
		OriginalName: header.Filename,
		ContentType:  header.Header.Get("Content-Type"),
		Size:         header.Size,
	})
	handler.metrics.AssetOperation("put", metrics.Result(err))
	if err != nil {
		ctxutil.GetLogger(request.Context()).ErrorContext(request.Context(), "asset_put_failed",
			slog.String("original_name", header.Filename),
			slog.Any("error", err),
		)
		return storage.Object{}, err
	}
	return object, nil
}

// discard releases uploads that will never be referenced by the document.
func (handler *Handler) discard(request *http.Request, uploads []upload) {
	if len(uploads) == 0 {
		return
	}
	handler.service.Discard(request.Context(), slice.Map(uploads, func(u upload) string { return u.object.URL })...)
}

func cleanupForm(request *http.Request) {
	if request.MultipartForm != nil {
		_ = request.MultipartForm.RemoveAll()
	}
}

// # Upload Endpoints

/*
POST /api/v1/series/{id}/thumbnail.

Request:
  - thumbnail: file (jpg, jpeg, png, gif, webp)

Response:
  - 200: Series: With the new thumbnail URL
  - 400: Missing or rejected file
  - 404: Series not found
  - 413: Body too large
*/
func (handler *Handler) uploadSeriesThumbnail(writer http.ResponseWriter, request *http.Request) {
	defer cleanupForm(request)

	id, err := handler.seriesID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	uploads, err := handler.ingest(writer, request, fieldThumbnail, false, ImageExtensions)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	series, err := handler.service.SetSeriesThumbnail(request.Context(), id, uploads[0].object.URL)
	if err != nil {
		handler.discard(request, uploads)
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, series)
}

// POST .../episodes/{index}/thumbnail
func (handler *Handler) uploadEpisodeThumbnail(writer http.ResponseWriter, request *http.Request) {
	defer cleanupForm(request)

	id, index, err := handler.episodeTarget(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	uploads, err := handler.ingest(writer, request, fieldThumbnail, false, ImageExtensions)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	episode, err := handler.service.SetEpisodeThumbnail(request.Context(), id, index, uploads[0].object.URL)
	if err != nil {
		handler.discard(request, uploads)
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, episode)
}

// POST .../episodes/{index}/music
func (handler *Handler) uploadEpisodeMusic(writer http.ResponseWriter, request *http.Request) {
	defer cleanupForm(request)

	id, index, err := handler.episodeTarget(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	uploads, err := handler.ingest(writer, request, fieldMusic, false, MusicExtensions)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	episode, err := handler.service.SetEpisodeMusic(request.Context(), id, index, uploads[0].object.URL, uploads[0].originalName)
	if err != nil {
		handler.discard(request, uploads)
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, episode)
}

/*
POST .../episodes/{index}/media.

Request:
  - media: file[] (images and videos, kept in submission order)

Response:
  - 200: []MediaItem: The appended items
*/
func (handler *Handler) uploadMedia(writer http.ResponseWriter, request *http.Request) {
	defer cleanupForm(request)

	id, index, err := handler.episodeTarget(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	uploads, err := handler.ingest(writer, request, fieldMedia, true, MediaExtensions())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	inputs := slice.Map(uploads, func(u upload) MediaInput {
		return MediaInput{OriginalName: u.originalName, Key: u.object.Key, URL: u.object.URL}
	})

	added, err := handler.service.AddMedia(request.Context(), id, index, inputs)
	if err != nil {
		handler.discard(request, uploads)
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, added)
}
