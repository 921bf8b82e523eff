// Copyright (c) 2026 Serenity. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/taibuivan/serenity/internal/platform/apperr"
	"github.com/taibuivan/serenity/internal/platform/clock"
	"github.com/taibuivan/serenity/internal/platform/ctxutil"
	"github.com/taibuivan/serenity/internal/platform/dberr"
	"github.com/taibuivan/serenity/internal/platform/metrics"
	"github.com/taibuivan/serenity/internal/platform/sec"
	"github.com/taibuivan/serenity/internal/platform/validate"
	"github.com/taibuivan/serenity/internal/progression"
	"github.com/taibuivan/serenity/pkg/loginkey"
	"github.com/taibuivan/serenity/pkg/uuid"
)

// # Contracts & Types

// ActivityRecorder is the one progression call authentication makes.
type ActivityRecorder interface {
	Record(context context.Context, identityID string, kind progression.ActivityKind) (*progression.Update, error)
}

// Options tunes the [Service]. Zero values fall back to package defaults.
type Options struct {
	SessionTTL   time.Duration
	StoreTimeout time.Duration
}

// Service implements authentication and session use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, token
// generation or session validity must be reviewed by the security team.
type Service struct {
	credentials  CredentialRepository
	sessions     SessionStore
	activities   ActivityRecorder
	clock        clock.Clock
	metrics      *metrics.Metrics
	sessionTTL   time.Duration
	storeTimeout time.Duration
}

// NewService constructs a new [Service] with necessary dependencies.
// activities and recorder may be nil.
func NewService(
	credentials CredentialRepository,
	sessions SessionStore,
	activities ActivityRecorder,
	clk clock.Clock,
	recorder *metrics.Metrics,
	options Options,
) *Service {
	if options.SessionTTL <= 0 {
		options.SessionTTL = DefaultSessionTTL
	}
	if options.StoreTimeout <= 0 {
		options.StoreTimeout = DefaultStoreTimeout
	}

	return &Service{
		credentials:  credentials,
		sessions:     sessions,
		activities:   activities,
		clock:        clk,
		metrics:      recorder,
		sessionTTL:   options.SessionTTL,
		storeTimeout: options.StoreTimeout,
	}
}

// # Authentication Flow

// LoginResult represents a successfully established session.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Identity  *sec.Identity

	// Progression is nil when recording the login activity failed.
	Progression *progression.Update
}

/*
AuthenticateStudent verifies a student identifier and password.

Parameters:
  - context: context.Context
  - identifier: string (institution-issued)
  - password: string

Returns:
  - *LoginResult: Issued session and login progression
  - error: InvalidCredentials or PersistenceUnavailable
*/
func (service *Service) AuthenticateStudent(context context.Context, identifier, password string) (*LoginResult, error) {
	return service.authenticate(context, "student", LoginKeyIdentifier, loginkey.Identifier(identifier), password,
		func(kind sec.Kind) bool { return kind == sec.KindStudent })
}

/*
AuthenticateStaff verifies an admin or superadmin email and password.

Parameters:
  - context: context.Context
  - email: string (case-insensitive)
  - password: string

Returns:
  - *LoginResult: Issued session and login progression
  - error: InvalidCredentials or PersistenceUnavailable
*/
func (service *Service) AuthenticateStaff(context context.Context, email, password string) (*LoginResult, error) {
	return service.authenticate(context, "staff", LoginKeyEmail, loginkey.Email(email), password,
		func(kind sec.Kind) bool { return kind == sec.KindAdmin || kind == sec.KindSuperAdmin })
}

// authenticate is the shared login path. Every failure returns the same
// generic error after the same bcrypt work.
func (service *Service) authenticate(ctx context.Context, label string, key LoginKey, value, password string, allowed func(sec.Kind) bool) (*LoginResult, error) {
	logger := ctxutil.GetLogger(ctx)

	// 1. Credential lookup
	lookupCtx, cancel := context.WithTimeout(ctx, service.storeTimeout)
	credential, err := service.credentials.FindByLoginKey(lookupCtx, key, value)
	cancel()

	if err != nil {
		if !apperr.HasCode(err, apperr.CodeNotFound) {
			service.metrics.LoginAttempt(label, metrics.OutcomeError)
			return nil, dberr.Wrap(err, "auth_service_credential_lookup")
		}

		// Unknown account: spend the same bcrypt time as a wrong password
		sec.EqualizeMissingAccount(password)
		service.metrics.LoginAttempt(label, metrics.OutcomeFailure)
		return nil, apperr.InvalidCredentials()
	}

	// 2. Password, then scope. Both checks run before deciding.
	passwordOK := sec.CheckPasswordHash(password, credential.PasswordHash)
	if !passwordOK || credential.Disabled || !allowed(credential.Identity.Kind) {
		service.metrics.LoginAttempt(label, metrics.OutcomeFailure)
		return nil, apperr.InvalidCredentials()
	}

	// 3. Session issue
	token, err := sec.GenerateSecureToken(SessionTokenLength)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("auth_service_token_generation_failed: %w", err))
	}

	identity := credential.Identity
	identity.Role = identity.Kind.Role()

	now := service.clock.Now()
	session := &Session{
		TokenHash:      sec.HashToken(token),
		IdentityID:     identity.ID,
		Kind:           identity.Kind,
		Role:           identity.Role,
		OrganizationID: identity.OrganizationID,
		CreatedAt:      now,
		ExpiresAt:      now.Add(service.sessionTTL),
	}

	putCtx, cancel := context.WithTimeout(ctx, service.storeTimeout)
	err = service.sessions.Put(putCtx, session)
	cancel()

	if err != nil {
		service.metrics.LoginAttempt(label, metrics.OutcomeError)
		return nil, dberr.Wrap(err, "auth_service_session_put")
	}

	service.metrics.LoginAttempt(label, metrics.OutcomeSuccess)
	logger.InfoContext(ctx, "login_succeeded",
		slog.String("identity_id", identity.ID),
		slog.String("kind", string(identity.Kind)),
	)

	result := &LoginResult{
		Token:     token,
		ExpiresAt: session.ExpiresAt,
		Identity:  &identity,
	}

	// 4. Login counts as activity. Its failure never revokes the session.
	if service.activities != nil {
		update, err := service.activities.Record(ctx, identity.ID, progression.ActivityLogin)
		if err != nil {
			logger.WarnContext(ctx, "login_progression_failed",
				slog.String("identity_id", identity.ID),
				slog.Any("error", err),
			)
		} else {
			result.Progression = update
		}
	}

	return result, nil
}

// # Session Lifecycle

/*
ResolveSession returns the identity bound to a live session token.

Parameters:
  - context: context.Context
  - token: string (raw token as presented by the client)

Returns:
  - *sec.Identity: Identity snapshot taken at login
  - error: NotFound, SessionExpired or PersistenceUnavailable
*/
func (service *Service) ResolveSession(ctx context.Context, token string) (*sec.Identity, error) {
	if token == "" {
		service.metrics.SessionResolved(metrics.OutcomeMissing)
		return nil, apperr.NotFound("Session")
	}

	getCtx, cancel := context.WithTimeout(ctx, service.storeTimeout)
	defer cancel()

	session, err := service.sessions.Get(getCtx, sec.HashToken(token))
	switch {
	case errors.Is(err, ErrSessionNotFound):
		service.metrics.SessionResolved(metrics.OutcomeMissing)
		return nil, apperr.NotFound("Session")
	case errors.Is(err, ErrSessionExpired):
		service.metrics.SessionResolved(metrics.OutcomeExpired)
		return nil, apperr.SessionExpired()
	case err != nil:
		service.metrics.SessionResolved(metrics.OutcomeError)
		return nil, dberr.Wrap(err, "auth_service_session_get")
	}

	service.metrics.SessionResolved(metrics.OutcomeSuccess)
	return session.Identity(), nil
}

/*
EndSession deletes the session for token. Ending an unknown or already
ended session succeeds.

Parameters:
  - context: context.Context
  - token: string

Returns:
  - error: PersistenceUnavailable on store failure
*/
func (service *Service) EndSession(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	deleteCtx, cancel := context.WithTimeout(ctx, service.storeTimeout)
	defer cancel()

	err := service.sessions.Delete(deleteCtx, sec.HashToken(token))
	if err != nil && !errors.Is(err, ErrSessionNotFound) {
		return dberr.Wrap(err, "auth_service_session_delete")
	}

	return nil
}

// # Provisioning

// ProvisionInput describes a new account.
type ProvisionInput struct {
	Kind           sec.Kind
	Identifier     string
	Email          string
	OrganizationID string
	Password       string
}

/*
Provision creates a new identity with a hashed password.

Description: Students are keyed by identifier, staff by email. Every
identity except a superadmin belongs to an organization.

Parameters:
  - context: context.Context
  - input: ProvisionInput

Returns:
  - *sec.Identity: Created identity
  - error: ValidationError, Conflict or PersistenceUnavailable
*/
func (service *Service) Provision(ctx context.Context, input ProvisionInput) (*sec.Identity, error) {
	if err := validateProvision(input); err != nil {
		return nil, err
	}

	hash, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("auth_service_hash_failed: %w", err))
	}

	credential := &Credential{
		Identity: sec.Identity{
			ID:   uuid.New(),
			Kind: input.Kind,
			Role: input.Kind.Role(),
		},
		PasswordHash: hash,
		CreatedAt:    service.clock.Now(),
	}

	if input.Kind == sec.KindStudent {
		identifier := loginkey.Identifier(input.Identifier)
		credential.Identifier = &identifier
	} else {
		email := loginkey.Email(input.Email)
		credential.Email = &email
	}

	if input.Kind != sec.KindSuperAdmin {
		organizationID := input.OrganizationID
		credential.Identity.OrganizationID = &organizationID
	}

	createCtx, cancel := context.WithTimeout(ctx, service.storeTimeout)
	defer cancel()

	if err := service.credentials.Create(createCtx, credential); err != nil {
		return nil, dberr.Wrap(err, "auth_service_provision")
	}

	return &credential.Identity, nil
}

// validateProvision checks the key, organization and password rules per kind.
func validateProvision(input ProvisionInput) error {
	validator := &validate.Validator{}
	validator.OneOf(FieldKind, string(input.Kind),
		string(sec.KindStudent), string(sec.KindAdmin), string(sec.KindSuperAdmin))
	validator.Required(FieldPassword, input.Password).
		MinLen(FieldPassword, input.Password, MinPasswordLength)

	if input.Kind == sec.KindStudent {
		validator.Required(FieldIdentifier, input.Identifier)
	} else {
		validator.Required(FieldEmail, input.Email).Email(FieldEmail, input.Email)
	}

	switch input.Kind {
	case sec.KindSuperAdmin:
		validator.Custom(FieldOrganizationID, input.OrganizationID != "", "Superadmins are not scoped to an organization")
	default:
		validator.Required(FieldOrganizationID, input.OrganizationID)
	}

	return validator.Err()
}
