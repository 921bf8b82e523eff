// Copyright (c) 2026 Serenity. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/taibuivan/serenity/internal/identity/access"
	"github.com/taibuivan/serenity/internal/platform/apperr"
	"github.com/taibuivan/serenity/internal/platform/constants"
	"github.com/taibuivan/serenity/internal/platform/ctxutil"
	"github.com/taibuivan/serenity/internal/platform/respond"
	"github.com/taibuivan/serenity/internal/platform/sec"
)

// SessionResolver turns an opaque session token into an identity.
//
// # Why an interface?
//
// Defining SessionResolver here decouples the middleware from the `auth` service
// implementation, allowing us to easily inject fakes during unit testing.
type SessionResolver interface {
	ResolveSession(context context.Context, token string) (*sec.Identity, error)
}

// PermissionChecker answers permission questions for a resolved identity.
type PermissionChecker interface {
	HasPermission(context context.Context, identity *sec.Identity, permission access.Permission) (bool, error)
}

// SessionToken extracts the session token from the request.
//
// A bearer Authorization header wins over the session cookie. It returns an
// empty token when neither is present, and ok=false when the header is malformed.
func SessionToken(request *http.Request) (token string, ok bool) {
	if header := request.Header.Get(constants.HeaderAuthorization); header != "" {
		scheme, value, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(value) == "" {
			return "", false
		}
		return strings.TrimSpace(value), true
	}

	if cookie, err := request.Cookie(constants.SessionCookieName); err == nil {
		return cookie.Value, true
	}

	return "", true
}

// Authenticate resolves the session token and injects the identity.
//
// # Flow
//  1. Read 'Authorization: Bearer <token>' or the session cookie.
//  2. If absent, request proceeds as anonymous.
//  3. If present, resolve it via [SessionResolver].
//  4. Inject [*sec.Identity] into the request context for downstream use.
//
// Unknown tokens are reported as UNAUTHORIZED, expired ones as SESSION_EXPIRED,
// and store outages as PERSISTENCE_UNAVAILABLE.
func Authenticate(resolver SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			token, ok := SessionToken(request)

			// ── 1. Format Validation ──────────────────────────────────────────
			if !ok {
				respond.Error(writer, request, apperr.Unauthorized("Invalid authorization format"))
				return
			}

			// ── 2. Anonymous Access ───────────────────────────────────────────
			if token == "" {
				next.ServeHTTP(writer, request)
				return
			}

			// ── 3. Session Resolution ─────────────────────────────────────────
			identity, err := resolver.ResolveSession(request.Context(), token)
			if err != nil {
				if apperr.HasCode(err, apperr.CodeNotFound) {
					err = apperr.Unauthorized("Invalid or expired session")
				}
				respond.Error(writer, request, err)
				return
			}

			// ── 4. Context Injection ──────────────────────────────────────────
			noteIdentity(request.Context(), identity.ID)
			ctx := ctxutil.WithIdentity(request.Context(), identity, token)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RequireAuth blocks requests that are not authenticated.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate].
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if ctxutil.GetIdentity(request.Context()) == nil {
			respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
			return
		}
		next.ServeHTTP(writer, request)
	})
}

// RequireRole blocks requests if the authenticated identity's role is below role.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate]. It automatically implies
// [RequireAuth] so you don't need to mount both.
func RequireRole(role sec.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			identity := ctxutil.GetIdentity(request.Context())

			// ── 1. Authentication Check ───────────────────────────────────────
			if identity == nil {
				respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
				return
			}

			// ── 2. Authorization Check ────────────────────────────────────────
			if !identity.Role.AtLeast(role) {
				respond.Error(writer, request, apperr.Forbidden("Insufficient permissions"))
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}

// RequirePermission blocks requests whose identity does not hold permission.
//
// Like [RequireRole] it implies [RequireAuth].
func RequirePermission(checker PermissionChecker, permission access.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			identity := ctxutil.GetIdentity(request.Context())
			if identity == nil {
				respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
				return
			}

			granted, err := checker.HasPermission(request.Context(), identity, permission)
			if err != nil {
				respond.Error(writer, request, err)
				return
			}
			if !granted {
				respond.Error(writer, request, apperr.Forbidden("Insufficient permissions"))
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}
