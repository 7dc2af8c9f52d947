// Copyright (c) 2026 MathLab. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package metrics collects and exposes Prometheus metrics for the API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Login outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// XP sources.
const (
	SourceManual  = "manual"
	SourceLesson  = "lesson"
	SourceProblem = "problem"
)

// Recorder is the metrics surface used by services and middleware.
type Recorder interface {
	ObserveHTTP(method, route string, status int, duration time.Duration)
	RecordLogin(provider, outcome string)
	RecordXP(source string, amount int)
	RecordLeaderboardCache(hit bool)
}

// Collector is the Prometheus-backed [Recorder].
type Collector struct {
	httpRequests    *prometheus.CounterVec
	httpLatency     *prometheus.HistogramVec
	logins          *prometheus.CounterVec
	xpAwarded       *prometheus.CounterVec
	leaderboardHits *prometheus.CounterVec
}

// NewCollector creates a Collector and registers its metrics on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mathlab_http_requests_total",
			Help: "HTTP requests by method, route pattern and status code.",
		}, []string{"method", "route", "status_code"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mathlab_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mathlab_logins_total",
			Help: "Login attempts by provider and outcome.",
		}, []string{"provider", "outcome"}),
		xpAwarded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mathlab_xp_awarded_total",
			Help: "XP credited to users by source.",
		}, []string{"source"}),
		leaderboardHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mathlab_leaderboard_cache_total",
			Help: "Weekly leaderboard cache lookups by result.",
		}, []string{"result"}),
	}

	reg.MustRegister(
		c.httpRequests,
		c.httpLatency,
		c.logins,
		c.xpAwarded,
		c.leaderboardHits,
	)

	return c
}

// ObserveHTTP records one finished HTTP request.
func (c *Collector) ObserveHTTP(method, route string, status int, duration time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpLatency.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordLogin records a login attempt.
func (c *Collector) RecordLogin(provider, outcome string) {
	c.logins.WithLabelValues(provider, outcome).Inc()
}

// RecordXP records XP credited from source. Non-positive amounts are ignored.
func (c *Collector) RecordXP(source string, amount int) {
	if amount <= 0 {
		return
	}
	c.xpAwarded.WithLabelValues(source).Add(float64(amount))
}

// RecordLeaderboardCache records a leaderboard cache hit or miss.
func (c *Collector) RecordLeaderboardCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	c.leaderboardHits.WithLabelValues(result).Inc()
}

// Handler returns the HTTP handler for Prometheus scrapes.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop discards everything. Useful in tests and tools.
type Nop struct{}

func (Nop) ObserveHTTP(string, string, int, time.Duration) {}
func (Nop) RecordLogin(string, string)                     {}
func (Nop) RecordXP(string, int)                           {}
func (Nop) RecordLeaderboardCache(bool)                    {}
