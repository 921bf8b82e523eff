// Copyright (c) 2026 Serenity. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package progression

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/serenity/internal/identity/access"
	"github.com/taibuivan/serenity/internal/platform/middleware"
	requestutil "github.com/taibuivan/serenity/internal/platform/request"
	"github.com/taibuivan/serenity/internal/platform/respond"
	"github.com/taibuivan/serenity/internal/platform/validate"
)

// FieldKind is the activity kind field of a record request.
const FieldKind = "kind"

// Handler exposes activity recording and the progression overview.
type Handler struct {
	recorder *Recorder
}

// NewHandler constructs a new [Handler].
func NewHandler(recorder *Recorder) *Handler {
	return &Handler{recorder: recorder}
}

// Routes returns a [chi.Router] with the progression endpoints.
//
// # Endpoints
//   - POST /activities : Records one tracked action for the caller.
//   - GET  /progress   : Returns the caller's streak and badge progress.
func (handler *Handler) Routes(authenticate func(http.Handler) http.Handler, checker middleware.PermissionChecker) chi.Router {
	router := chi.NewRouter()
	router.Use(authenticate, middleware.RequireAuth)

	router.Post("/activities", handler.recordActivity)
	router.With(middleware.RequirePermission(checker, access.BadgesView)).Get("/progress", handler.progress)

	return router
}

type recordActivityRequest struct {
	Kind string `json:"kind"`
}

/*
RecordActivity records a tracked action for the authenticated identity.

POST /api/v1/activities

Description: Login activity is recorded by the sign-in flow and is not
accepted here.

Request:
  - Body: recordActivityRequest (Kind)

Response:
  - 200: Summary
  - 400: ErrValidation: Unknown or reserved kind
  - 503: ErrPersistenceUnavailable
*/
func (handler *Handler) recordActivity(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input recordActivityRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	kind, parseErr := ParseActivityKind(input.Kind)

	validator := &validate.Validator{}
	validator.Required(FieldKind, input.Kind).
		Custom(FieldKind, input.Kind != "" && parseErr != nil, "Unknown activity kind").
		Custom(FieldKind, kind == ActivityLogin, "Login activity is recorded at sign-in")
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	update, err := handler.recorder.Record(request.Context(), identity.ID, kind)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, update.Summary())
}

/*
Progress returns the caller's streak and every catalog badge.

GET /api/v1/progress

Response:
  - 200: Overview
  - 403: ErrForbidden: Missing badges.view
*/
func (handler *Handler) progress(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	overview, err := handler.recorder.Overview(request.Context(), identity.ID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, overview)
}
