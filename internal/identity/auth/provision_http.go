// Copyright (c) 2026 Serenity. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/serenity/internal/identity/access"
	"github.com/taibuivan/serenity/internal/platform/apperr"
	"github.com/taibuivan/serenity/internal/platform/middleware"
	requestutil "github.com/taibuivan/serenity/internal/platform/request"
	"github.com/taibuivan/serenity/internal/platform/respond"
	"github.com/taibuivan/serenity/internal/platform/sec"
)

// AdminRoutes returns a [chi.Router] with account provisioning endpoints.
//
// # Endpoints
//   - POST /students : Creates a student (users.create). Admins are pinned to their organization.
//   - POST /staff    : Creates an admin or superadmin. Superadmin only.
func (handler *Handler) AdminRoutes(authenticate func(http.Handler) http.Handler, checker middleware.PermissionChecker) chi.Router {
	router := chi.NewRouter()
	router.Use(authenticate, middleware.RequireAuth)

	router.With(middleware.RequirePermission(checker, access.UsersCreate)).Post("/students", handler.createStudent)
	router.With(middleware.RequireRole(sec.RoleSuperAdmin)).Post("/staff", handler.createStaff)

	return router
}

type createStudentRequest struct {
	Identifier     string `json:"identifier"`
	Password       string `json:"password"`
	OrganizationID string `json:"organization_id"`
}

type createStaffRequest struct {
	Kind           sec.Kind `json:"kind"`
	Email          string   `json:"email"`
	Password       string   `json:"password"`
	OrganizationID string   `json:"organization_id"`
}

/*
CreateStudent provisions a student account.

POST /api/v1/admin/students

Response:
  - 201: sec.Identity
  - 400: ErrValidation
  - 403: ErrForbidden: Foreign organization
  - 409: ErrConflict: Identifier taken
*/
func (handler *Handler) createStudent(writer http.ResponseWriter, request *http.Request) {
	caller, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input createStudentRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	// Organization-scoped callers may only provision into their own organization
	if caller.OrganizationID != nil {
		if input.OrganizationID == "" {
			input.OrganizationID = *caller.OrganizationID
		}
		if !caller.InOrganization(input.OrganizationID) {
			respond.Error(writer, request, apperr.Forbidden("Cannot provision outside your organization"))
			return
		}
	}

	identity, err := handler.authService.Provision(request.Context(), ProvisionInput{
		Kind:           sec.KindStudent,
		Identifier:     input.Identifier,
		OrganizationID: input.OrganizationID,
		Password:       input.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, identity)
}

/*
CreateStaff provisions an admin or superadmin account.

POST /api/v1/admin/staff

Response:
  - 201: sec.Identity
  - 400: ErrValidation: Student kind or bad email
  - 409: ErrConflict: Email taken
*/
func (handler *Handler) createStaff(writer http.ResponseWriter, request *http.Request) {
	var input createStaffRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if input.Kind == sec.KindStudent {
		respond.Error(writer, request, apperr.ValidationError("Validation failed",
			apperr.FieldError{Field: FieldKind, Message: "Must be one of: admin, superadmin"}))
		return
	}

	identity, err := handler.authService.Provision(request.Context(), ProvisionInput{
		Kind:           input.Kind,
		Email:          input.Email,
		OrganizationID: input.OrganizationID,
		Password:       input.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, identity)
}
