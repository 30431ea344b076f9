package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Database driver constants
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	// Server settings
	ServerAddr   string
	BaseURL      string
	IsProduction bool

	// Database
	DatabaseDriver string // "sqlite" or "postgres"
	DatabaseDSN    string // Database connection string (DSN or path)
	DBInitTimeout  time.Duration

	// Directory (LDAP) settings
	LDAPURL          string // e.g. "ldaps://ad.example.com:636"
	LDAPCACert       string // Path to the CA certificate validating the directory's TLS cert
	LDAPBindDN       string // Service account DN used for the search bind
	LDAPBindPassword string
	LDAPBaseDN       string // Search base for account lookups
	LDAPAccountAttr  string // Attribute matched against the login name (default: sAMAccountName)
	LDAPTimeout      time.Duration

	// Token settings
	JWTPrivateKeyPath string // PKCS8 PEM, Ed25519
	JWTPublicKeyPath  string // SPKI PEM, Ed25519
	TokenExpiration   time.Duration

	// Metrics
	MetricsEnabled bool
	MetricsToken   string // Optional bearer token protecting /metrics

	// Audit logging
	EnableAuditLogging bool
	AuditLogBufferSize int
	AuditLogRetention  int // days, 0 disables cleanup
}

func Load() *Config {
	// Load .env file if exists (ignore error if not found)
	_ = godotenv.Load()

	// Determine database driver and DSN
	driver := getEnv("DATABASE_DRIVER", DriverSQLite)
	var dsn string
	if driver == DriverSQLite {
		dsn = getEnv("DATABASE_DSN", getEnv("DATABASE_PATH", "ldapgate.db"))
	} else {
		dsn = getEnv("DATABASE_DSN", "")
	}

	return &Config{
		ServerAddr:     getEnv("SERVER_ADDR", ":8080"),
		BaseURL:        getEnv("BASE_URL", "http://localhost:8080"),
		IsProduction:   getEnv("ENVIRONMENT", "development") == "production",
		DatabaseDriver: driver,
		DatabaseDSN:    dsn,
		DBInitTimeout:  getEnvDuration("DB_INIT_TIMEOUT", 30*time.Second),

		// Directory
		LDAPURL:          getEnv("LDAP_URL", ""),
		LDAPCACert:       getEnv("LDAP_CA_CERT", ""),
		LDAPBindDN:       getEnv("LDAP_BIND_DN", ""),
		LDAPBindPassword: getEnv("LDAP_BIND_PASSWORD", ""),
		LDAPBaseDN:       getEnv("LDAP_BASE_DN", ""),
		LDAPAccountAttr:  getEnv("LDAP_ACCOUNT_ATTR", "sAMAccountName"),
		LDAPTimeout:      getEnvDuration("LDAP_TIMEOUT", 10*time.Second),

		// Token
		JWTPrivateKeyPath: getEnv("JWT_PRIVATE_KEY", ""),
		JWTPublicKeyPath:  getEnv("JWT_PUBLIC_KEY", ""),
		TokenExpiration:   getEnvDuration("TOKEN_EXPIRATION", time.Hour),

		// Metrics
		MetricsEnabled: getEnvBool("METRICS_ENABLED", true),
		MetricsToken:   getEnv("METRICS_TOKEN", ""),

		// Audit logging
		EnableAuditLogging: getEnvBool("ENABLE_AUDIT_LOGGING", true),
		AuditLogBufferSize: getEnvInt("AUDIT_LOG_BUFFER_SIZE", 1000),
		AuditLogRetention:  getEnvInt("AUDIT_LOG_RETENTION", 90),
	}
}

// Validate checks configuration consistency at startup
func (c *Config) Validate() error {
	if c.DatabaseDriver != DriverSQLite && c.DatabaseDriver != DriverPostgres {
		return fmt.Errorf("invalid DATABASE_DRIVER: %s (must be: sqlite, postgres)", c.DatabaseDriver)
	}
	if c.DatabaseDSN == "" {
		return errors.New("DATABASE_DSN is required")
	}
	if c.TokenExpiration <= 0 {
		return fmt.Errorf("invalid TOKEN_EXPIRATION: %s (must be positive)", c.TokenExpiration)
	}
	if c.LDAPTimeout <= 0 {
		return fmt.Errorf("invalid LDAP_TIMEOUT: %s (must be positive)", c.LDAPTimeout)
	}
	if c.AuditLogBufferSize < 0 {
		return fmt.Errorf("invalid AUDIT_LOG_BUFFER_SIZE: %d (must not be negative)", c.AuditLogBufferSize)
	}
	return nil
}

// ValidateDirectory checks the settings the directory authenticator needs.
// Kept separate from Validate so tests and tools that never touch the
// directory can run with a partial configuration.
func (c *Config) ValidateDirectory() error {
	if c.LDAPURL == "" {
		return errors.New("LDAP_URL is required")
	}
	if !strings.HasPrefix(c.LDAPURL, "ldap://") && !strings.HasPrefix(c.LDAPURL, "ldaps://") {
		return fmt.Errorf("invalid LDAP_URL: %q (must start with ldap:// or ldaps://)", c.LDAPURL)
	}
	if c.LDAPBindDN == "" || c.LDAPBindPassword == "" {
		return errors.New("LDAP_BIND_DN and LDAP_BIND_PASSWORD are required")
	}
	if c.LDAPBaseDN == "" {
		return errors.New("LDAP_BASE_DN is required")
	}
	if c.LDAPAccountAttr == "" {
		return errors.New("LDAP_ACCOUNT_ATTR must not be empty")
	}
	return nil
}

// ValidateTokenKeys checks that the signing key material is configured.
func (c *Config) ValidateTokenKeys() error {
	if c.JWTPrivateKeyPath == "" {
		return errors.New("JWT_PRIVATE_KEY is required")
	}
	if c.JWTPublicKeyPath == "" {
		return errors.New("JWT_PUBLIC_KEY is required")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var i int
		if _, err := fmt.Sscanf(value, "%d", &i); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
