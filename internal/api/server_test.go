// Copyright (c) 2026 Serenity. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/serenity/internal/api"
	"github.com/taibuivan/serenity/internal/identity/access"
	"github.com/taibuivan/serenity/internal/identity/auth"
	"github.com/taibuivan/serenity/internal/platform/clock"
	"github.com/taibuivan/serenity/internal/platform/config"
	"github.com/taibuivan/serenity/internal/platform/metrics"
	"github.com/taibuivan/serenity/internal/platform/sec"
	"github.com/taibuivan/serenity/internal/progression"
	"github.com/taibuivan/serenity/internal/storage/memory"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code string `json:"code"`
	} `json:"error"`
}

type testServer struct {
	handler http.Handler
	clock   *clock.Fixed
}

func newTestServer(t *testing.T, health api.HealthDependencies) *testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	clk := clock.NewFixed(time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC))
	recorder := metrics.New()

	permissions := access.NewService(access.DefaultCatalog(), memory.NewOverrideRepository(), time.Second)

	streaks := progression.NewStreakEngine(memory.NewStreakRepository(), clk, time.Second)
	badges := progression.NewBadgeEvaluator(progression.DefaultCatalog(), memory.NewBadgeProgressRepository(), memory.NewCounterSource(), clk, time.Second)
	activities := progression.NewRecorder(streaks, badges, clk, recorder)

	authService := auth.NewService(memory.NewCredentialRepository(), memory.NewSessionStore(clk), activities, clk, recorder, auth.Options{
		SessionTTL: time.Hour,
	})

	_, err := authService.Provision(context.Background(), auth.ProvisionInput{
		Kind:           sec.KindStudent,
		Identifier:     "S-1",
		OrganizationID: "org-1",
		Password:       "correct-horse",
	})
	require.NoError(t, err)

	liveness, readiness := api.NewHealthHandlers(health, logger)

	cfg := &config.Config{ServerPort: "0", Environment: "test"}
	server := api.NewServer(t.Context(), cfg, logger, api.Dependencies{
		Sessions:    authService,
		Permissions: permissions,
		Metrics:     recorder,
	}, api.Handlers{
		Liveness:    liveness,
		Readiness:   readiness,
		Auth:        auth.NewHandler(authService, permissions, false),
		Access:      access.NewHandler(permissions),
		Progression: progression.NewHandler(activities),
	})

	return &testServer{handler: server.Handler(), clock: clk}
}

func (s *testServer) do(t *testing.T, method, path, body, token string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	request := httptest.NewRequest(method, path, strings.NewReader(body))
	request.Header.Set("Content-Type", "application/json")
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}

	recorder := httptest.NewRecorder()
	s.handler.ServeHTTP(recorder, request)

	var decoded envelope
	if strings.HasPrefix(recorder.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &decoded))
	}
	return recorder, decoded
}

func (s *testServer) login(t *testing.T) string {
	t.Helper()

	recorder, body := s.do(t, http.MethodPost, "/api/v1/auth/login", `{"identifier":"S-1","password":"correct-horse"}`, "")
	require.Equal(t, http.StatusOK, recorder.Code)

	var data struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &data))
	require.NotEmpty(t, data.Token)
	return data.Token
}

/*
TestServer_HealthEndpoints checks liveness, readiness and the metrics endpoint.
*/
func TestServer_HealthEndpoints(t *testing.T) {
	tests := []struct {
		name       string
		health     api.HealthDependencies
		path       string
		wantStatus int
	}{
		{
			name:       "Liveness",
			path:       "/health",
			wantStatus: http.StatusOK,
		},
		{
			name: "Ready when dependencies answer",
			health: api.HealthDependencies{
				CheckDatabase: func(context.Context) error { return nil },
				CheckCache:    func(context.Context) error { return nil },
			},
			path:       "/ready",
			wantStatus: http.StatusOK,
		},
		{
			name: "Degraded when redis is down",
			health: api.HealthDependencies{
				CheckDatabase: func(context.Context) error { return nil },
				CheckCache:    func(context.Context) error { return errors.New("connection refused") },
			},
			path:       "/ready",
			wantStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newTestServer(t, tt.health)

			recorder, body := server.do(t, http.MethodGet, tt.path, "", "")

			assert.Equal(t, tt.wantStatus, recorder.Code)
			assert.True(t, body.Success)
		})
	}

	t.Run("Metrics exposition", func(t *testing.T) {
		server := newTestServer(t, api.HealthDependencies{})

		request := httptest.NewRequest(http.MethodGet, "/metrics", nil)
		recorder := httptest.NewRecorder()
		server.handler.ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Contains(t, recorder.Body.String(), "serenity_")
	})
}

/*
TestServer_StudentJourney logs a student in, records an activity and reads
progress through the mounted routes.
*/
func TestServer_StudentJourney(t *testing.T) {
	server := newTestServer(t, api.HealthDependencies{})
	token := server.login(t)

	recorder, body := server.do(t, http.MethodPost, "/api/v1/activities", `{"kind":"journal"}`, token)
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())
	assert.True(t, body.Success)

	recorder, body = server.do(t, http.MethodGet, "/api/v1/progress", "", token)
	require.Equal(t, http.StatusOK, recorder.Code)

	var overview struct {
		Streak struct {
			Count int `json:"count"`
		} `json:"streak"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &overview))
	assert.Equal(t, 1, overview.Streak.Count)
}

/*
TestServer_RouteGuards verifies the guards applied at mount time.
*/
func TestServer_RouteGuards(t *testing.T) {
	server := newTestServer(t, api.HealthDependencies{})
	token := server.login(t)

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		token      string
		wantStatus int
		wantCode   string
	}{
		{
			name:       "Anonymous grant",
			method:     http.MethodPost,
			path:       "/api/v1/admin/permissions/grants",
			body:       `{"identity_id":"x","permission":"reports.view"}`,
			wantStatus: http.StatusUnauthorized,
			wantCode:   "UNAUTHORIZED",
		},
		{
			name:       "Student grant",
			method:     http.MethodPost,
			path:       "/api/v1/admin/permissions/grants",
			body:       `{"identity_id":"x","permission":"reports.view"}`,
			token:      token,
			wantStatus: http.StatusForbidden,
			wantCode:   "FORBIDDEN",
		},
		{
			name:       "Anonymous progress",
			method:     http.MethodGet,
			path:       "/api/v1/progress",
			wantStatus: http.StatusUnauthorized,
			wantCode:   "UNAUTHORIZED",
		},
		{
			name:       "Unknown activity kind",
			method:     http.MethodPost,
			path:       "/api/v1/activities",
			body:       `{"kind":"dance"}`,
			token:      token,
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_ERROR",
		},
		{
			name:       "Missing activity kind",
			method:     http.MethodPost,
			path:       "/api/v1/activities",
			body:       `{"kind":""}`,
			token:      token,
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_ERROR",
		},
		{
			name:       "Login activity is reserved",
			method:     http.MethodPost,
			path:       "/api/v1/activities",
			body:       `{"kind":"login"}`,
			token:      token,
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder, body := server.do(t, tt.method, tt.path, tt.body, tt.token)

			assert.Equal(t, tt.wantStatus, recorder.Code)
			assert.False(t, body.Success)
			assert.Equal(t, tt.wantCode, body.Error.Code)
		})
	}
}
