// Copyright (c) 2026 Serenity. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package respond_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/serenity/internal/platform/apperr"
	"github.com/taibuivan/serenity/internal/platform/respond"
)

/*
TestOK_Envelope verifies the success envelope shape.
*/
func TestOK_Envelope(t *testing.T) {
	recorder := httptest.NewRecorder()
	respond.OK(recorder, map[string]int{"streak_count": 2})

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, `{"success":true,"data":{"streak_count":2}}`, recorder.Body.String())
}

/*
TestError_Taxonomy verifies that each error code maps to its status and envelope.
*/
func TestError_Taxonomy(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"invalid_credentials", apperr.InvalidCredentials(), http.StatusUnauthorized, apperr.CodeInvalidCredentials},
		{"session_expired", apperr.SessionExpired(), http.StatusUnauthorized, apperr.CodeSessionExpired},
		{"forbidden", apperr.Forbidden("nope"), http.StatusForbidden, apperr.CodeForbidden},
		{"not_found", apperr.NotFound("Session"), http.StatusNotFound, apperr.CodeNotFound},
		{"persistence", apperr.PersistenceUnavailable(errors.New("dial tcp")), http.StatusServiceUnavailable, apperr.CodePersistenceUnavailable},
		{"plain_error", errors.New("boom"), http.StatusInternalServerError, apperr.CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			request := httptest.NewRequest(http.MethodGet, "/", nil)

			respond.Error(recorder, request, tt.err)

			assert.Equal(t, tt.status, recorder.Code)

			var envelope respond.ErrorEnvelope
			require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
			assert.False(t, envelope.Success)
			assert.Equal(t, tt.code, envelope.Error.Code)
			assert.NotEmpty(t, envelope.Message)
		})
	}
}

/*
TestError_HidesCause ensures internal causes never reach the client.
*/
func TestError_HidesCause(t *testing.T) {
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/", nil)

	respond.Error(recorder, request, apperr.PersistenceUnavailable(errors.New("password=hunter2")))

	assert.NotContains(t, recorder.Body.String(), "hunter2")
}
