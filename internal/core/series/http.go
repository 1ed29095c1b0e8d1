// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package series

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/reel/internal/platform/metrics"
	requestutil "github.com/taibuivan/reel/internal/platform/request"
	"github.com/taibuivan/reel/internal/platform/respond"
	"github.com/taibuivan/reel/internal/platform/storage"
	"github.com/taibuivan/reel/internal/platform/validate"
)

// # Handler Implementation

// Handler implements the HTTP layer for the series library and the legacy
// single-show API. Uploads are written to the [storage.AssetStore] before the
// document is touched.
type Handler struct {
	service   *Service
	assets    storage.AssetStore
	metrics   *metrics.Registry
	maxUpload int64
}

// NewHandler constructs a [Handler]. registry may be nil.
func NewHandler(service *Service, assets storage.AssetStore, registry *metrics.Registry, maxUploadBytes int64) *Handler {
	return &Handler{service: service, assets: assets, metrics: registry, maxUpload: maxUploadBytes}
}

// Routes returns the /api/v1/series router.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// ## Series
	router.Get("/", handler.listSeries)
	router.Post("/", handler.createSeries)
	router.Get("/{id}", handler.getSeries)
	router.Patch("/{id}", handler.updateSeries)
	router.Put("/{id}", handler.updateSeries)
	router.Delete("/{id}", handler.deleteSeries)

	router.Post("/{id}/thumbnail", handler.uploadSeriesThumbnail)

	// ## Episodes
	router.Route("/{id}/episodes/{index}", handler.episodeRoutes)

	return router
}

// episodeRoutes is shared with the legacy router, where the series id is
// absent and resolves to the first series.
func (handler *Handler) episodeRoutes(router chi.Router) {
	router.Post("/thumbnail", handler.uploadEpisodeThumbnail)
	router.Post("/music", handler.uploadEpisodeMusic)
	router.Delete("/music", handler.deleteEpisodeMusic)
	router.Post("/media", handler.uploadMedia)
	router.Put("/media/order", handler.reorderMedia)
	router.Delete("/media/{mediaID}", handler.deleteMedia)
}

// # Request Resolution

// seriesID returns the {id} segment, or the first series' id on legacy routes.
func (handler *Handler) seriesID(request *http.Request) (string, error) {
	if id := requestutil.Param(request, "id"); id != "" {
		return id, nil
	}
	return handler.service.PrimarySeriesID(request.Context())
}

// episodeTarget resolves the series id and the {index} segment.
func (handler *Handler) episodeTarget(request *http.Request) (string, int, error) {
	id, err := handler.seriesID(request)
	if err != nil {
		return "", 0, err
	}
	index, err := requestutil.Index(request, "index")
	if err != nil {
		return "", 0, err
	}
	return id, index, nil
}

// # Series Endpoints

/*
GET /api/v1/series.

Response:
  - 200: []Series: Every series in insertion order
*/
func (handler *Handler) listSeries(writer http.ResponseWriter, request *http.Request) {
	list, err := handler.service.ListSeries(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, list)
}

/*
POST /api/v1/series.

Request:
  - body: CreateInput (title?, description?, episodeCount?)

Response:
  - 200: Series: The created series
  - 400: Validation errors
*/
func (handler *Handler) createSeries(writer http.ResponseWriter, request *http.Request) {
	var input CreateInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	series, err := handler.service.CreateSeries(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, series)
}

/*
GET /api/v1/series/{id}.

Response:
  - 200: Series
  - 404: Series not found
*/
func (handler *Handler) getSeries(writer http.ResponseWriter, request *http.Request) {
	series, err := handler.service.GetSeries(request.Context(), requestutil.Param(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, series)
}

/*
PATCH /api/v1/series/{id}.

Description: Partial update. Supplying episodes replaces the array wholesale;
supplying episodeCount then grows or truncates it.

Response:
  - 200: Series: The updated series
  - 400: Validation errors
  - 404: Series not found
*/
func (handler *Handler) updateSeries(writer http.ResponseWriter, request *http.Request) {
	var patch Patch
	if err := requestutil.DecodeJSON(request, &patch); err != nil {
		respond.Error(writer, request, err)
		return
	}

	series, err := handler.service.UpdateSeries(request.Context(), requestutil.Param(request, "id"), patch)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, series)
}

/*
DELETE /api/v1/series/{id}.

Description: Deletes every asset the series owns, best-effort, then the series.

Response:
  - 200: Message
  - 404: Series not found
*/
func (handler *Handler) deleteSeries(writer http.ResponseWriter, request *http.Request) {
	if err := handler.service.DeleteSeries(request.Context(), requestutil.Param(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Message(writer, "Series deleted")
}

// # Episode Endpoints

// DELETE .../episodes/{index}/music
func (handler *Handler) deleteEpisodeMusic(writer http.ResponseWriter, request *http.Request) {
	id, index, err := handler.episodeTarget(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	episode, err := handler.service.DeleteEpisodeMusic(request.Context(), id, index)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, episode)
}

// DELETE .../episodes/{index}/media/{mediaID}
func (handler *Handler) deleteMedia(writer http.ResponseWriter, request *http.Request) {
	id, index, err := handler.episodeTarget(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.DeleteMedia(request.Context(), id, index, requestutil.Param(request, "mediaID")); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Message(writer, "Media deleted")
}

// reorderRequest keeps mediaIds raw so a non-array value is reported as such.
type reorderRequest struct {
	MediaIDs json.RawMessage `json:"mediaIds"`
}

/*
PUT .../episodes/{index}/media/order.

Request:
  - body: {"mediaIds": ["...", "..."]}

Response:
  - 200: []MediaItem: The new order
  - 400: mediaIds missing or not an array of strings
*/
func (handler *Handler) reorderMedia(writer http.ResponseWriter, request *http.Request) {
	id, index, err := handler.episodeTarget(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var body reorderRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	var orderedIDs []string
	if len(body.MediaIDs) == 0 || json.Unmarshal(body.MediaIDs, &orderedIDs) != nil || orderedIDs == nil {
		respond.Error(writer, request, validate.RequiredError("mediaIds", "Must be an array of media ids"))
		return
	}

	media, err := handler.service.ReorderMedia(request.Context(), id, index, orderedIDs)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, media)
}
