// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package guardian

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// httpRequests counts handled requests.
	// Labels: route, method, status
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "guardian",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests handled by the guardian service",
	}, []string{"route", "method", "status"})

	// httpDuration tracks request latency.
	// Labels: route
	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "guardian",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})
)

// metricsMiddleware records request counts and latency by route template,
// so path parameters never explode label cardinality.
func metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}
