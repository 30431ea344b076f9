package bootstrap

import (
	"fmt"
	"log"

	"github.com/ldapgate/ldapgate/internal/config"
	"github.com/ldapgate/ldapgate/internal/core"
	"github.com/ldapgate/ldapgate/internal/directory"
	"github.com/ldapgate/ldapgate/internal/metrics"
	"github.com/ldapgate/ldapgate/internal/token"
)

// initializeMetrics sets up the metrics recorder
func initializeMetrics(cfg *config.Config) core.Recorder {
	recorder := metrics.Init(cfg.MetricsEnabled)
	if cfg.MetricsEnabled {
		log.Println("Prometheus metrics initialized")
	} else {
		log.Println("Metrics disabled (using noop implementation)")
	}
	return recorder
}

// initializeAuthenticator creates the directory authenticator
func initializeAuthenticator(cfg *config.Config) (core.DirectoryAuthenticator, error) {
	authenticator, err := directory.NewLDAPAuthenticator(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize directory authenticator: %w", err)
	}
	log.Printf("Directory authenticator configured: %s (base=%s, attr=%s, timeout=%s)",
		cfg.LDAPURL, cfg.LDAPBaseDN, cfg.LDAPAccountAttr, cfg.LDAPTimeout)
	return authenticator, nil
}

// initializeTokenProvider loads the Ed25519 key pair and creates the
// token signer. The keys are loaded exactly once; nothing mutates them
// afterwards.
func initializeTokenProvider(cfg *config.Config) (core.TokenProvider, error) {
	provider, err := token.NewLocalTokenProviderFromFiles(
		cfg.JWTPrivateKeyPath,
		cfg.JWTPublicKeyPath,
		cfg.TokenExpiration,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token provider: %w", err)
	}
	log.Printf("Token provider configured: EdDSA, expiration=%s", cfg.TokenExpiration)
	return provider, nil
}
