package config

import (
	"fmt"
	"strings"
)

// ValidateConfig checks that the configuration is complete for the current
// environment. Tests run on sqlite with an in-process secret, so only
// non-test environments require the full set.
func ValidateConfig(cfg *Config) error {
	if IsTest() {
		return nil
	}

	var errors []string

	if cfg.JWTSecret == "" {
		errors = append(errors, "JWT_SECRET (or the jwt_secret secret) is required")
	}
	if cfg.DBPassword == "" {
		errors = append(errors, "DB_PASSWORD (or the db_password secret) is required")
	}
	if cfg.MediaBackend != "local" && cfg.MediaBackend != "s3" {
		errors = append(errors, fmt.Sprintf("unknown MEDIA_BACKEND %q, expected local or s3", cfg.MediaBackend))
	}
	if cfg.MediaBackend == "s3" && cfg.S3Bucket == "" {
		errors = append(errors, "S3_BUCKET_NAME is required when MEDIA_BACKEND=s3")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(errors, "\n"))
	}

	return nil
}
