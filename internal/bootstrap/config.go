package bootstrap

import (
	"log"

	"github.com/ldapgate/ldapgate/internal/config"
)

// validateAllConfiguration validates all configuration settings
func validateAllConfiguration(cfg *config.Config) {
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if err := cfg.ValidateDirectory(); err != nil {
		log.Fatalf("Invalid directory configuration: %v", err)
	}
	if err := cfg.ValidateTokenKeys(); err != nil {
		log.Fatalf("Invalid token key configuration: %v", err)
	}
}
