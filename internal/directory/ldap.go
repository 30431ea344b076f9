package directory

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"log"
	"net"
	"os"

	"github.com/ldapgate/ldapgate/internal/config"
	"github.com/ldapgate/ldapgate/internal/core"

	"github.com/go-ldap/ldap/v3"
)

// Conn is the subset of the LDAP client the authenticator uses. The
// production implementation is *ldap.Conn; tests inject fakes.
type Conn interface {
	Bind(username, password string) error
	Search(req *ldap.SearchRequest) (*ldap.SearchResult, error)
	Close() error
}

// Dialer opens a directory connection for a single login attempt.
type Dialer func(ctx context.Context) (Conn, error)

// LDAPAuthenticator verifies credentials with a two-phase directory
// bind: a service-account bind to locate the user's entry, then a bind
// as that entry's DN with the supplied password. Connections are
// per-attempt and closed on every exit path.
type LDAPAuthenticator struct {
	bindDN       string
	bindPassword string
	baseDN       string
	accountAttr  string
	dial         Dialer
}

// NewLDAPAuthenticator creates an authenticator dialing the configured
// directory endpoint over TLS validated against the configured CA.
func NewLDAPAuthenticator(cfg *config.Config) (*LDAPAuthenticator, error) {
	tlsConfig := &tls.Config{MinVersion: tls.VersionTLS12}
	if cfg.LDAPCACert != "" {
		pem, err := os.ReadFile(cfg.LDAPCACert)
		if err != nil {
			return nil, fmt.Errorf("failed to read LDAP CA certificate: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("no certificates parsed from %s", cfg.LDAPCACert)
		}
		tlsConfig.RootCAs = pool
	}

	dial := func(ctx context.Context) (Conn, error) {
		dialer := &net.Dialer{Timeout: cfg.LDAPTimeout}
		if deadline, ok := ctx.Deadline(); ok {
			dialer.Deadline = deadline
		}
		conn, err := ldap.DialURL(
			cfg.LDAPURL,
			ldap.DialWithDialer(dialer),
			ldap.DialWithTLSConfig(tlsConfig),
		)
		if err != nil {
			return nil, err
		}
		// Bounds every subsequent bind/search on this connection; the
		// source behavior had no bound at all.
		conn.SetTimeout(cfg.LDAPTimeout)
		return conn, nil
	}

	return newLDAPAuthenticator(cfg, dial), nil
}

// newLDAPAuthenticator wires an authenticator onto an explicit dialer.
// Split out so tests can substitute fake connections.
func newLDAPAuthenticator(cfg *config.Config, dial Dialer) *LDAPAuthenticator {
	return &LDAPAuthenticator{
		bindDN:       cfg.LDAPBindDN,
		bindPassword: cfg.LDAPBindPassword,
		baseDN:       cfg.LDAPBaseDN,
		accountAttr:  cfg.LDAPAccountAttr,
		dial:         dial,
	}
}

// Authenticate verifies a username/password pair against the directory.
// The returned result's Status is always meaningful; err carries the
// underlying diagnostic for server-side logging and is non-nil whenever
// Status is not StatusSuccess.
func (a *LDAPAuthenticator) Authenticate(
	ctx context.Context,
	username, password string,
) (*core.AuthResult, error) {
	conn, err := a.dial(ctx)
	if err != nil {
		return &core.AuthResult{Status: core.StatusUnavailable, Username: username},
			fmt.Errorf("%w: dial: %v", ErrDirectoryUnavailable, err)
	}
	defer conn.Close()

	// Phase 1: bind as the service account. Failure here is an
	// infrastructure problem, not the user's.
	if err := conn.Bind(a.bindDN, a.bindPassword); err != nil {
		return &core.AuthResult{Status: core.StatusUnavailable, Username: username},
			fmt.Errorf("%w: service bind: %v", ErrDirectoryUnavailable, err)
	}

	// The username is untrusted input interpolated into filter grammar;
	// escaping is mandatory.
	filter := fmt.Sprintf("(%s=%s)", a.accountAttr, ldap.EscapeFilter(username))
	req := ldap.NewSearchRequest(
		a.baseDN,
		ldap.ScopeWholeSubtree,
		ldap.NeverDerefAliases,
		0, 0, false,
		filter,
		[]string{"cn", "mail"},
		nil,
	)

	result, err := conn.Search(req)
	if err != nil {
		// Collapsed to the same outward signal as a bad password so
		// callers cannot enumerate usernames.
		return &core.AuthResult{Status: core.StatusCredentialsRejected, Username: username},
			fmt.Errorf("%w: search: %v", ErrCredentialsRejected, err)
	}

	// Zero or multiple matches both reject without a verification bind.
	// Picking "the first" of an ambiguous match would change security
	// semantics.
	if len(result.Entries) != 1 {
		return &core.AuthResult{Status: core.StatusCredentialsRejected, Username: username},
			fmt.Errorf("%w: search matched %d entries", ErrCredentialsRejected, len(result.Entries))
	}

	entry := result.Entries[0]

	// Phase 2: bind as the located entry with the supplied password.
	if err := conn.Bind(entry.DN, password); err != nil {
		return &core.AuthResult{Status: core.StatusCredentialsRejected, Username: username},
			fmt.Errorf("%w: verification bind: %v", ErrCredentialsRejected, err)
	}

	return &core.AuthResult{
		Status:      core.StatusSuccess,
		Username:    username,
		DisplayName: entry.GetAttributeValue("cn"),
		Email:       entry.GetAttributeValue("mail"),
	}, nil
}

// Name returns provider name for logging
func (a *LDAPAuthenticator) Name() string {
	return "ldap"
}

// WarmupCheck dials and binds once so misconfiguration surfaces at
// startup instead of on the first login.
func (a *LDAPAuthenticator) WarmupCheck(ctx context.Context) error {
	conn, err := a.dial(ctx)
	if err != nil {
		return fmt.Errorf("%w: dial: %v", ErrDirectoryUnavailable, err)
	}
	defer conn.Close()

	if err := conn.Bind(a.bindDN, a.bindPassword); err != nil {
		return fmt.Errorf("%w: service bind: %v", ErrDirectoryUnavailable, err)
	}
	log.Printf("[Directory] Connectivity check passed (%s)", a.baseDN)
	return nil
}
