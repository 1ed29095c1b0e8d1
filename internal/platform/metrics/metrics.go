// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package metrics owns the Prometheus registry for the Reel process.

Collectors:

  - reel_http_requests_total / reel_http_request_duration_seconds: per route pattern.
  - reel_asset_operations_total: put/delete attempts against the AssetStore by result.
  - reel_document_operations_total: load/save/migrate against the document backend by result.

A nil [*Registry] is valid everywhere and records nothing, so tests and the CLI
can skip metrics without branching.
*/
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "reel"

// # Result Labels

const (
	ResultOK      = "ok"
	ResultError   = "error"
	ResultSkipped = "skipped"
)

// Registry groups the collectors registered for this process.
type Registry struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	assetOps     *prometheus.CounterVec
	documentOps  *prometheus.CounterVec
}

// New creates a registry with process and Go runtime collectors attached.
func New() *Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	r := &Registry{
		registry: registry,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests by route pattern, method and status.",
		}, []string{"route", "method", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		assetOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "asset",
			Name:      "operations_total",
			Help:      "AssetStore operations by kind and result.",
		}, []string{"operation", "result"}),
		documentOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "document",
			Name:      "operations_total",
			Help:      "Series document backend operations by kind and result.",
		}, []string{"operation", "result"}),
	}

	registry.MustRegister(r.httpRequests, r.httpDuration, r.assetOps, r.documentOps)
	return r
}

// Handler exposes the registry in the Prometheus text format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Gatherer returns the underlying gatherer (used by tests).
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// ObserveRequest records one finished HTTP request.
func (r *Registry) ObserveRequest(route, method string, status int, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	r.httpDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

// AssetOperation records one AssetStore call.
func (r *Registry) AssetOperation(operation, result string) {
	if r == nil {
		return
	}
	r.assetOps.WithLabelValues(operation, result).Inc()
}

// DocumentOperation records one document backend call.
func (r *Registry) DocumentOperation(operation, result string) {
	if r == nil {
		return
	}
	r.documentOps.WithLabelValues(operation, result).Inc()
}

// Result maps an error to the ok/error result label.
func Result(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultOK
}
