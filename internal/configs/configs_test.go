package configs

import "testing"

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"ENVIRONMENT", "PORT", "ALLOWED_ORIGINS", "JWT_SECRET",
		"ARCHIVE_DIR", "ARCHIVE_PREFIX",
		"S3_BUCKET_NAME", "S3_ENDPOINT", "S3_ACCESS_KEY_ID", "S3_SECRET_ACCESS_KEY",
		"DATABASE_URL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfigDevelopmentDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.Environment != "development" {
		t.Fatalf("environment = %q, want development", cfg.Environment)
	}
	if cfg.Port != 8080 {
		t.Fatalf("port = %d, want 8080", cfg.Port)
	}
	if cfg.ArchiveDir != "chat_logs" || cfg.ArchivePrefix != "transcripts" {
		t.Fatalf("archive defaults = %q/%q", cfg.ArchiveDir, cfg.ArchivePrefix)
	}
	if cfg.S3Configured() {
		t.Fatal("S3 must not count as configured with empty settings")
	}
	if cfg.DatabaseDSN == "" {
		t.Fatal("development must get a default DSN")
	}
}

func TestLoadConfigRejectsBadPort(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "80")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("privileged port must be rejected")
	}

	t.Setenv("PORT", "not-a-number")
	if _, err := LoadConfig(); err == nil {
		t.Fatal("non-numeric port must be rejected")
	}
}

func TestLoadConfigProductionRequirements(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENVIRONMENT", "production")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("production without JWT_SECRET must be rejected")
	}

	t.Setenv("JWT_SECRET", "secret")
	if _, err := LoadConfig(); err == nil {
		t.Fatal("production without S3 settings must be rejected")
	}

	t.Setenv("S3_BUCKET_NAME", "bucket")
	t.Setenv("S3_ENDPOINT", "https://s3.example.com")
	t.Setenv("S3_ACCESS_KEY_ID", "key")
	t.Setenv("S3_SECRET_ACCESS_KEY", "secret")
	if _, err := LoadConfig(); err == nil {
		t.Fatal("production without DATABASE_URL must be rejected")
	}

	t.Setenv("DATABASE_URL", "postgres://app:pw@db:5432/teamchat")
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !cfg.S3Configured() {
		t.Fatal("S3 should be configured")
	}
}

func TestLoadConfigParsesOrigins(t *testing.T) {
	clearEnv(t)
	t.Setenv("ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com ,")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if len(cfg.AllowedOrigins) != 2 {
		t.Fatalf("origins = %v, want 2 entries", cfg.AllowedOrigins)
	}
}
