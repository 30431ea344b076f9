package bootstrap

import (
	"github.com/ldapgate/ldapgate/internal/config"
	"github.com/ldapgate/ldapgate/internal/core"
	"github.com/ldapgate/ldapgate/internal/handlers"
	"github.com/ldapgate/ldapgate/internal/services"
	"github.com/ldapgate/ldapgate/internal/store"
)

// handlerSet holds all HTTP handlers
type handlerSet struct {
	auth     *handlers.AuthHandler
	token    *handlers.TokenHandler
	identity *handlers.IdentityHandler
	health   *handlers.HealthHandler
}

// initializeHandlers creates all HTTP handlers
func initializeHandlers(
	cfg *config.Config,
	loginService *services.LoginService,
	tokenProvider core.TokenProvider,
	db *store.Store,
	prometheusMetrics core.Recorder,
) handlerSet {
	return handlerSet{
		auth:     handlers.NewAuthHandler(loginService),
		token:    handlers.NewTokenHandler(tokenProvider, prometheusMetrics, cfg),
		identity: handlers.NewIdentityHandler(loginService),
		health:   handlers.NewHealthHandler(db),
	}
}
