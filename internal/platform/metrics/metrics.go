// Copyright (c) 2026 Serenity. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package metrics exposes Prometheus instrumentation for the Serenity API.

Every collector lives on a private registry owned by [Metrics], so tests and
multiple servers in one process never collide on global registration.

Families:

  - serenity_login_attempts_total{kind,outcome}
  - serenity_session_resolutions_total{outcome}
  - serenity_sessions_swept_total
  - serenity_activities_recorded_total{kind}
  - serenity_badges_earned_total{badge}
  - serenity_http_request_duration_seconds{route,method,status}

A nil *Metrics is valid and records nothing.
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

const namespace = "serenity"

// # Outcome Labels

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeExpired = "expired"
	OutcomeMissing = "missing"
	OutcomeError   = "error"
)

// Metrics bundles the collectors used by services and middleware.
type Metrics struct {
	registry *prometheus.Registry

	loginAttempts      *prometheus.CounterVec
	sessionResolutions *prometheus.CounterVec
	sessionsSwept      prometheus.Counter
	activitiesRecorded *prometheus.CounterVec
	badgesEarned       *prometheus.CounterVec
	requestDuration    *prometheus.HistogramVec
}

// New creates the collectors and registers them, together with the Go runtime
// and process collectors, on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		loginAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "login_attempts_total",
			Help:      "Login attempts by identity kind and outcome",
		}, []string{"kind", "outcome"}),

		sessionResolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_resolutions_total",
			Help:      "Session token resolutions by outcome",
		}, []string{"outcome"}),

		sessionsSwept: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_swept_total",
			Help:      "Expired sessions removed by the background sweeper",
		}),

		activitiesRecorded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "activities_recorded_total",
			Help:      "Activities fed into the progression engine",
		}, []string{"kind"}),

		badgesEarned: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "badges_earned_total",
			Help:      "Badges unlocked, by badge id",
		}, []string{"badge"}),

		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"route", "method", "status"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.loginAttempts,
		m.sessionResolutions,
		m.sessionsSwept,
		m.activitiesRecorded,
		m.badgesEarned,
		m.requestDuration,
	)

	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// # Recorders

// LoginAttempt counts one login by identity kind ("student", "staff") and outcome.
func (m *Metrics) LoginAttempt(kind, outcome string) {
	if m == nil {
		return
	}
	m.loginAttempts.WithLabelValues(kind, outcome).Inc()
}

// SessionResolved counts one token resolution.
func (m *Metrics) SessionResolved(outcome string) {
	if m == nil {
		return
	}
	m.sessionResolutions.WithLabelValues(outcome).Inc()
}

// SessionsSwept adds the number of sessions removed by one sweep.
func (m *Metrics) SessionsSwept(count int) {
	if m == nil || count <= 0 {
		return
	}
	m.sessionsSwept.Add(float64(count))
}

// ActivityRecorded counts one activity of the given kind.
func (m *Metrics) ActivityRecorded(kind string) {
	if m == nil {
		return
	}
	m.activitiesRecorded.WithLabelValues(kind).Inc()
}

// BadgeEarned counts one badge unlock.
func (m *Metrics) BadgeEarned(badgeID string) {
	if m == nil {
		return
	}
	m.badgesEarned.WithLabelValues(badgeID).Inc()
}

// ObserveRequest records the latency of one finished HTTP request.
func (m *Metrics) ObserveRequest(route, method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(route, method, strconv.Itoa(status)).Observe(elapsed.Seconds())
}
