package services

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/ldapgate/ldapgate/internal/core"
	"github.com/ldapgate/ldapgate/internal/models"
	"github.com/ldapgate/ldapgate/internal/store"
)

var (
	// ErrMissingCredentials means the request lacked a username or password
	ErrMissingCredentials = errors.New("must provide username and password")

	// ErrInvalidCredentials is the single outward signal for a wrong
	// password, an unknown username or an ambiguous directory match
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrServiceUnavailable covers every failure that is not the user's
	// fault: directory unreachable, service bind failure, identity
	// store failure
	ErrServiceUnavailable = errors.New("login service unavailable")
)

// Metric result labels for login outcomes
const (
	loginResultSuccess     = "success"
	loginResultBadRequest  = "bad_request"
	loginResultRejected    = "rejected"
	loginResultUnavailable = "unavailable"
)

// LoginResult is returned to the transport layer on a successful login
type LoginResult struct {
	Token     string
	TokenType string
	NotBefore time.Time
	ExpiresAt time.Time
	Identity  *models.Identity
}

// LoginService orchestrates a login attempt: input validation, directory
// authentication, identity reconciliation and token issuance. Every
// failure is terminal for the attempt; retry policy belongs to callers.
type LoginService struct {
	store         *store.Store
	authenticator core.DirectoryAuthenticator
	tokenProvider core.TokenProvider
	auditService  *AuditService
	metrics       core.Recorder
}

// NewLoginService creates a new login orchestrator
func NewLoginService(
	s *store.Store,
	authenticator core.DirectoryAuthenticator,
	tokenProvider core.TokenProvider,
	auditService *AuditService,
	metrics core.Recorder,
) *LoginService {
	return &LoginService{
		store:         s,
		authenticator: authenticator,
		tokenProvider: tokenProvider,
		auditService:  auditService,
		metrics:       metrics,
	}
}

// Login runs one self-contained login attempt. Attempts share no
// mutable state beyond the identity store's uniqueness constraints and
// the read-only signing key, so concurrent calls need no coordination.
func (s *LoginService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	start := time.Now()

	// Input validation happens before any directory contact
	if username == "" || password == "" {
		s.metrics.RecordLogin(loginResultBadRequest, time.Since(start))
		return nil, ErrMissingCredentials
	}

	// Directory authentication
	authStart := time.Now()
	result, err := s.authenticator.Authenticate(ctx, username, password)
	authDuration := time.Since(authStart)
	if result == nil {
		result = &core.AuthResult{Status: core.StatusUnavailable}
	}

	switch result.Status {
	case core.StatusUnavailable:
		// Raw directory errors are logged, never shown to the caller
		log.Printf("[Auth] Directory unavailable for user=%s provider=%s: %v",
			username, s.authenticator.Name(), err)
		s.metrics.RecordDirectoryRequest(loginResultUnavailable, authDuration)
		s.metrics.RecordLogin(loginResultUnavailable, time.Since(start))
		s.auditService.Log(ctx, AuditLogEntry{
			EventType:    models.EventDirectoryUnavailable,
			Severity:     models.SeverityError,
			Username:     username,
			Success:      false,
			ErrorMessage: errMessage(err),
		})
		return nil, ErrServiceUnavailable

	case core.StatusCredentialsRejected:
		log.Printf("[Auth] Failed for user=%s provider=%s: %v",
			username, s.authenticator.Name(), err)
		s.metrics.RecordDirectoryRequest(loginResultRejected, authDuration)
		s.metrics.RecordLogin(loginResultRejected, time.Since(start))
		s.auditService.Log(ctx, AuditLogEntry{
			EventType:    models.EventAuthenticationFailure,
			Severity:     models.SeverityWarning,
			Username:     username,
			Success:      false,
			ErrorMessage: errMessage(err),
		})
		return nil, ErrInvalidCredentials
	}

	s.metrics.RecordDirectoryRequest(loginResultSuccess, authDuration)

	// Identity reconciliation. The password is already proven correct,
	// so anything that goes wrong from here on is infrastructure.
	identity, err := s.reconcileIdentity(ctx, result)
	if err != nil {
		s.metrics.RecordLogin(loginResultUnavailable, time.Since(start))
		return nil, ErrServiceUnavailable
	}

	// Token issuance
	issueStart := time.Now()
	tokenResult, err := s.tokenProvider.Issue(ctx, identity.Username, identity.StableID)
	if err != nil {
		log.Printf("[Auth] Token issuance failed for user=%s: %v", username, err)
		s.metrics.RecordLogin(loginResultUnavailable, time.Since(start))
		return nil, ErrServiceUnavailable
	}
	s.metrics.RecordTokenIssued(time.Since(issueStart))

	s.metrics.RecordLogin(loginResultSuccess, time.Since(start))
	s.auditService.Log(ctx, AuditLogEntry{
		EventType: models.EventAuthenticationSuccess,
		Severity:  models.SeverityInfo,
		Username:  username,
		Success:   true,
		Details:   models.AuditDetails{"stable_id": identity.StableID},
	})
	s.auditService.Log(ctx, AuditLogEntry{
		EventType: models.EventTokenIssued,
		Severity:  models.SeverityInfo,
		Username:  username,
		Success:   true,
		Details: models.AuditDetails{
			"stable_id":  identity.StableID,
			"not_before": tokenResult.NotBefore.Unix(),
			"expires_at": tokenResult.ExpiresAt.Unix(),
		},
	})

	return &LoginResult{
		Token:     tokenResult.TokenString,
		TokenType: tokenResult.TokenType,
		NotBefore: tokenResult.NotBefore,
		ExpiresAt: tokenResult.ExpiresAt,
		Identity:  identity,
	}, nil
}

// reconcileIdentity looks up the identity for a verified login and
// creates it from directory attributes on the user's first login.
func (s *LoginService) reconcileIdentity(
	ctx context.Context,
	result *core.AuthResult,
) (*models.Identity, error) {
	identity, err := s.store.GetIdentityByUsername(result.Username)
	if err == nil {
		return identity, nil
	}
	if !errors.Is(err, store.ErrRecordNotFound) {
		log.Printf("[Auth] Identity lookup failed for user=%s: %v", result.Username, err)
		s.metrics.RecordDatabaseQueryError("identity_lookup")
		return nil, err
	}

	identity, err = s.store.CreateIdentity(result.Username, result.Email, result.DisplayName)
	if err != nil {
		if errors.Is(err, store.ErrIdentityConflict) {
			// Lost a race with a concurrent first login (or the
			// directory handed out a colliding email). The user can
			// simply retry and will hit the found-identity path.
			log.Printf("[Auth] Identity conflict for user=%s: %v", result.Username, err)
			s.auditService.Log(ctx, AuditLogEntry{
				EventType:    models.EventIdentityConflict,
				Severity:     models.SeverityError,
				Username:     result.Username,
				Success:      false,
				ErrorMessage: err.Error(),
			})
		} else {
			log.Printf("[Auth] Identity creation failed for user=%s: %v", result.Username, err)
			s.metrics.RecordDatabaseQueryError("identity_create")
		}
		s.metrics.RecordIdentityCreated(false)
		return nil, err
	}

	s.metrics.RecordIdentityCreated(true)
	s.auditService.Log(ctx, AuditLogEntry{
		EventType: models.EventIdentityCreated,
		Severity:  models.SeverityInfo,
		Username:  identity.Username,
		Success:   true,
		Details:   models.AuditDetails{"stable_id": identity.StableID},
	})
	log.Printf("[Auth] New identity created: %s", identity.Username)

	return identity, nil
}

// GetIdentityByStableID resolves the identity a validated token refers to
func (s *LoginService) GetIdentityByStableID(stableID string) (*models.Identity, error) {
	identity, err := s.store.GetIdentityByStableID(stableID)
	if err != nil {
		if !errors.Is(err, store.ErrRecordNotFound) {
			s.metrics.RecordDatabaseQueryError("identity_lookup")
		}
		return nil, err
	}
	return identity, nil
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
