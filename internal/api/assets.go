// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/reel/internal/platform/apperr"
	"github.com/taibuivan/reel/internal/platform/ctxutil"
	"github.com/taibuivan/reel/internal/platform/respond"
	"github.com/taibuivan/reel/internal/platform/storage"
)

// AssetHandler streams stored uploads back to the browser.
type AssetHandler struct {
	assets storage.AssetStore
}

// NewAssetHandler constructs an [AssetHandler].
func NewAssetHandler(assets storage.AssetStore) *AssetHandler {
	return &AssetHandler{assets: assets}
}

/*
GET {ASSET_URL_PREFIX}*.

Description: Seekable stores (local disk) support Range requests, which video
players rely on. Other stores stream the whole object.

Response:
  - 200/206: Asset bytes
  - 404: Unknown key
*/
func (handler *AssetHandler) Serve(writer http.ResponseWriter, request *http.Request) {
	key := chi.URLParam(request, "*")
	if !storage.ValidKey(key) {
		respond.Error(writer, request, apperr.NotFound("Asset"))
		return
	}

	reader, info, err := handler.assets.Open(request.Context(), key)
	if errors.Is(err, storage.ErrNotFound) {
		respond.Error(writer, request, apperr.NotFound("Asset"))
		return
	}
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	defer reader.Close()

	if info.ContentType != "" {
		writer.Header().Set("Content-Type", info.ContentType)
	}
	writer.Header().Set("Cache-Control", "public, max-age=31536000, immutable")

	if seeker, ok := reader.(io.ReadSeeker); ok {
		http.ServeContent(writer, request, key, time.Time{}, seeker)
		return
	}

	if info.Size >= 0 {
		writer.Header().Set("Content-Length", strconv.FormatInt(info.Size, 10))
	}
	writer.WriteHeader(http.StatusOK)
	if _, err := io.Copy(writer, reader); err != nil {
		ctxutil.GetLogger(request.Context()).WarnContext(request.Context(), "asset_stream_interrupted",
			slog.String("key", key), slog.Any("error", err))
	}
}
