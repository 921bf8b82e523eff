// Copyright (c) 2026 Serenity. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/serenity/internal/identity/access"
	"github.com/taibuivan/serenity/internal/platform/constants"
	"github.com/taibuivan/serenity/internal/platform/middleware"
	requestutil "github.com/taibuivan/serenity/internal/platform/request"
	"github.com/taibuivan/serenity/internal/platform/respond"
	"github.com/taibuivan/serenity/internal/platform/sec"
	"github.com/taibuivan/serenity/internal/platform/validate"
	"github.com/taibuivan/serenity/internal/progression"
)

// # Definitions & Constructors

// PermissionLister returns an identity's effective permissions.
type PermissionLister interface {
	Permissions(context context.Context, identity *sec.Identity) ([]access.Permission, error)
}

// Handler implements authentication-related HTTP endpoints.
//
// # Scope
//
// This handler manages login, logout and the "who am I" lookup. It is the
// only place session cookies are written.
type Handler struct {
	authService  *Service
	permissions  PermissionLister
	cookieSecure bool
}

// NewHandler constructs a new [Handler] with its service dependencies.
func NewHandler(service *Service, permissions PermissionLister, cookieSecure bool) *Handler {
	return &Handler{
		authService:  service,
		permissions:  permissions,
		cookieSecure: cookieSecure,
	}
}

// Routes returns a [chi.Router] configured with authentication-specific routes.
//
// # Endpoints
//   - POST /login  : Authenticates a student or staff member and issues a session.
//   - POST /logout : Ends the presented session, if any.
//   - GET  /me     : Returns the caller's identity and permissions.
func (handler *Handler) Routes(authenticate, loginLimit func(http.Handler) http.Handler) chi.Router {
	router := chi.NewRouter()

	// Public endpoints
	router.With(loginLimit).Post("/login", handler.login)
	router.Post("/logout", handler.logout)

	// Protected endpoints
	router.Group(func(r chi.Router) {
		r.Use(authenticate, middleware.RequireAuth)
		r.Get("/me", handler.me)
	})

	return router
}

// # Request Payloads

type loginRequest struct {
	Identifier string `json:"identifier"`
	Email      string `json:"email"`
	Password   string `json:"password"`
}

type loginResponse struct {
	Token       string              `json:"token"`
	TokenType   string              `json:"token_type"`
	ExpiresAt   time.Time           `json:"expires_at"`
	Identity    *sec.Identity       `json:"identity"`
	Progression *progression.Update `json:"progression"`
}

type meResponse struct {
	Identity    *sec.Identity       `json:"identity"`
	Permissions []access.Permission `json:"permissions"`
}

/*
Login authenticates a student (identifier) or staff member (email).

POST /api/v1/auth/login

Description: Verifies credentials, issues an opaque session token, sets it
as an HttpOnly cookie and records the login as progression activity.

Request:
  - Body: loginRequest (Identifier or Email, Password)

Response:
  - 200: loginResponse
  - 400: ErrValidation: Both or neither login keys given
  - 401: ErrInvalidCredentials: Unknown account or wrong password
  - 429: ErrRateLimited: Too many attempts from this address
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	hasIdentifier := input.Identifier != ""
	hasEmail := input.Email != ""

	validator := &validate.Validator{}
	validator.Custom(FieldIdentifier, hasIdentifier == hasEmail, "Provide either identifier or email").
		Required(FieldPassword, input.Password)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	var (
		result *LoginResult
		err    error
	)
	if hasIdentifier {
		result, err = handler.authService.AuthenticateStudent(request.Context(), input.Identifier, input.Password)
	} else {
		result, err = handler.authService.AuthenticateStaff(request.Context(), input.Email, input.Password)
	}
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	http.SetCookie(writer, handler.sessionCookie(result.Token, result.ExpiresAt))

	respond.OK(writer, loginResponse{
		Token:       result.Token,
		TokenType:   "Bearer",
		ExpiresAt:   result.ExpiresAt,
		Identity:    result.Identity,
		Progression: result.Progression,
	})
}

/*
Logout ends the presented session.

POST /api/v1/auth/logout

Description: Idempotent. Unknown, expired or missing tokens still succeed
and the cookie is always cleared.

Response:
  - 204: No Content
  - 503: ErrPersistenceUnavailable: Session store unreachable
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	token, _ := middleware.SessionToken(request)

	if err := handler.authService.EndSession(request.Context(), token); err != nil {
		respond.Error(writer, request, err)
		return
	}

	http.SetCookie(writer, handler.sessionCookie("", time.Unix(0, 0)))
	respond.NoContent(writer)
}

/*
Me returns the caller's identity snapshot and effective permissions.

GET /api/v1/auth/me

Response:
  - 200: meResponse
  - 401: ErrUnauthorized or ErrSessionExpired
*/
func (handler *Handler) me(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	permissions, err := handler.permissions.Permissions(request.Context(), identity)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, meResponse{Identity: identity, Permissions: permissions})
}

// sessionCookie builds the session cookie; an empty token clears it.
func (handler *Handler) sessionCookie(token string, expiresAt time.Time) *http.Cookie {
	cookie := &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    token,
		Path:     constants.SessionCookiePath,
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   handler.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
	if token == "" {
		cookie.MaxAge = -1
	}
	return cookie
}
