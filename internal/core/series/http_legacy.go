// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package series

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/taibuivan/reel/internal/platform/request"
	"github.com/taibuivan/reel/internal/platform/respond"
)

// # Legacy Single-Show API

// LegacyRoutes returns the /api/v1/show router. Every endpoint acts on the
// first series and answers 404 while the library is empty.
func (handler *Handler) LegacyRoutes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.getShow)
	router.Put("/", handler.updateShow)
	router.Route("/episodes/{index}", handler.episodeRoutes)

	return router
}

/*
GET /api/v1/show.

Response:
  - 200: LegacyShow: {showTitle, episodeCount, episodes} of the first series
  - 404: No series exists
*/
func (handler *Handler) getShow(writer http.ResponseWriter, request *http.Request) {
	show, err := handler.service.Legacy(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, show)
}

/*
PUT /api/v1/show.

Request:
  - body: LegacyPatch (showTitle?, episodeCount?, episodes?)

Response:
  - 200: LegacyShow
  - 404: No series exists
*/
func (handler *Handler) updateShow(writer http.ResponseWriter, request *http.Request) {
	var patch LegacyPatch
	if err := requestutil.DecodeJSON(request, &patch); err != nil {
		respond.Error(writer, request, err)
		return
	}

	show, err := handler.service.UpdateLegacy(request.Context(), patch)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, show)
}
