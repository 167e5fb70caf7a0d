// Copyright (c) 2026, the vidra contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package metrics exposes the prometheus collectors for scans and
// streaming.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns the registry and all application metrics. A nil
// *Collector is valid and records nothing, so metrics can be disabled
// by configuration without conditional wiring at every call site.
type Collector struct {
	registry *prometheus.Registry

	scansTotal    *prometheus.CounterVec
	scanDuration  prometheus.Histogram
	filesIndexed  *prometheus.GaugeVec
	streamsTotal  *prometheus.CounterVec
	streamedBytes prometheus.Counter
}

func NewCollector() *Collector {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	c := &Collector{
		registry: registry,
		scansTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vidra_scans_total",
			Help: "Completed folder scans by result.",
		}, []string{"folder", "result"}),
		scanDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "vidra_scan_duration_seconds",
			Help:    "Duration of folder scans.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		}),
		filesIndexed: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "vidra_files_indexed",
			Help: "Indexed media files per watch folder.",
		}, []string{"folder"}),
		streamsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vidra_stream_requests_total",
			Help: "Stream requests by HTTP status.",
		}, []string{"status"}),
		streamedBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vidra_stream_bytes_total",
			Help: "Total bytes written to streaming clients.",
		}),
	}

	registry.MustRegister(c.scansTotal, c.scanDuration, c.filesIndexed, c.streamsTotal, c.streamedBytes)
	return c
}

func (c *Collector) ScanCompleted(folder string, err error, duration time.Duration) {
	if c == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "error"
	}
	c.scansTotal.WithLabelValues(folder, result).Inc()
	c.scanDuration.Observe(duration.Seconds())
}

func (c *Collector) SetFilesIndexed(folder string, count int) {
	if c == nil {
		return
	}
	c.filesIndexed.WithLabelValues(folder).Set(float64(count))
}

func (c *Collector) StreamServed(status int, bytes int64) {
	if c == nil {
		return
	}
	c.streamsTotal.WithLabelValues(strconv.Itoa(status)).Inc()
	if bytes > 0 {
		c.streamedBytes.Add(float64(bytes))
	}
}

// Handler serves the registry in the standard exposition format.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
