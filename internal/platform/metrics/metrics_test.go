// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package metrics_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/reel/internal/platform/metrics"
)

/*
TestRegistry_NilIsNoop ensures a nil registry can be passed around safely.
*/
func TestRegistry_NilIsNoop(t *testing.T) {
	var registry *metrics.Registry

	assert.NotPanics(t, func() {
		registry.AssetOperation("delete", metrics.ResultOK)
		registry.DocumentOperation("save", metrics.ResultError)
		registry.ObserveRequest("/api/v1/series", http.MethodGet, 200, time.Millisecond)
	})
}

/*
TestRegistry_Exposition verifies recorded counters show up on the handler.
*/
func TestRegistry_Exposition(t *testing.T) {
	registry := metrics.New()
	registry.AssetOperation("delete", metrics.Result(errors.New("boom")))
	registry.DocumentOperation("migrate", metrics.Result(nil))

	recorder := httptest.NewRecorder()
	registry.Handler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, recorder.Code)
	body := recorder.Body.String()
	assert.True(t, strings.Contains(body, `reel_asset_operations_total{operation="delete",result="error"} 1`))
	assert.True(t, strings.Contains(body, `reel_document_operations_total{operation="migrate",result="ok"} 1`))
}
