// Copyright (c) 2026 Serenity. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package access

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/taibuivan/serenity/internal/platform/request"
	"github.com/taibuivan/serenity/internal/platform/respond"
)

// Handler exposes permission override management.
//
// The router that mounts it is responsible for authentication and for the
// permissions.grant guard.
type Handler struct {
	service *Service
}

// NewHandler constructs a new [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] with the override endpoints.
//
// # Endpoints
//   - POST /grants : Grants one permission to an admin profile.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Post("/grants", handler.grant)
	return router
}

type grantRequest struct {
	IdentityID string `json:"identity_id"`
	Permission string `json:"permission"`
}

/*
Grant attaches a permission override.

POST /api/v1/admin/permissions/grants

Response:
  - 204: No Content
  - 400: ErrValidation: Unknown permission or missing identity
  - 403: ErrForbidden: Grantor lacks the permission
*/
func (handler *Handler) grant(writer http.ResponseWriter, request *http.Request) {
	grantor, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input grantRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.Grant(request.Context(), grantor, input.IdentityID, Permission(input.Permission)); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
