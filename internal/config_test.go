package internal

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	pkgconfig "github.com/starford/casedesk/pkg/config"
)

func validConfig() *Config {
	cfg := NewDefaultConfig()
	cfg.Auth.JWTSecret = "0123456789abcdef"
	return cfg
}

func TestDefaultConfig_RequiresSecret(t *testing.T) {
	err := NewDefaultConfig().Validate()
	if err == nil || !strings.Contains(err.Error(), "jwt_secret is required") {
		t.Fatalf("expected missing secret error, got %v", err)
	}
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("default config with secret should pass: %v", err)
	}
}

func TestAuthConfig_ShortSecret(t *testing.T) {
	cfg := AuthConfig{JWTSecret: "short", TokenTTL: time.Hour}
	if err := cfg.Validate(); err == nil {
		t.Fatal("short secret should fail")
	}
}

func TestRevocationConfig_EmptyBackendDefaultsMemory(t *testing.T) {
	cfg := RevocationConfig{}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty backend should default to memory: %v", err)
	}
	if cfg.Backend != RevocationMemory {
		t.Errorf("backend = %q, want %q", cfg.Backend, RevocationMemory)
	}
}

func TestRevocationConfig_RedisNeedsURL(t *testing.T) {
	cfg := RevocationConfig{Backend: RevocationRedis}
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "redis_url is empty") {
		t.Fatalf("expected redis_url error, got %v", err)
	}

	cfg.RedisURL = "redis://localhost:6379/0"
	if err := cfg.Validate(); err != nil {
		t.Errorf("redis with url should pass: %v", err)
	}
}

func TestRevocationConfig_InvalidBackend(t *testing.T) {
	cfg := RevocationConfig{Backend: "etcd"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("invalid backend should fail validation")
	}
}

func TestHTTPConfig_PortRange(t *testing.T) {
	cfg := HTTPConfig{Port: 70000}
	if err := cfg.Validate(); err == nil {
		t.Fatal("port out of range should fail")
	}
	cfg.Port = 5000
	if got := cfg.Address(); got != ":5000" {
		t.Errorf("address = %q", got)
	}
}

func TestSeedConfig_Options(t *testing.T) {
	cfg := NewDefaultConfig().Seed
	cfg.Admin.Password = "s3cret"
	opts := cfg.Options()
	if opts.Admin.Username != "admin" || opts.Admin.Password != "s3cret" {
		t.Errorf("admin = %+v", opts.Admin)
	}
	if opts.General.Username != "user" {
		t.Errorf("general = %+v", opts.General)
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
app:
  log_level: debug
  http:
    port: 8081
auth:
  jwt_secret: ${CASEDESK_TEST_SECRET}
  token_ttl: 2h
revocation:
  backend: redis
  redis_url: redis://localhost:6379/1
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CASEDESK_TEST_SECRET", "a-very-long-test-secret")

	cfg := NewDefaultConfig()
	if err := pkgconfig.Load(path, cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.App.LogLevel.String() != "DEBUG" || cfg.App.HTTP.Port != 8081 {
		t.Errorf("app = %+v", cfg.App)
	}
	if cfg.Auth.TokenTTL != 2*time.Hour || cfg.Auth.JWTSecret != "a-very-long-test-secret" {
		t.Errorf("auth = %+v", cfg.Auth)
	}
	if cfg.SQLite.Path != "./casedesk.db" {
		t.Errorf("defaults lost: sqlite = %q", cfg.SQLite.Path)
	}
}

func TestShippedConfigLoads(t *testing.T) {
	t.Setenv("CASEDESK_JWT_SECRET", "shipped-config-secret")
	t.Setenv("CASEDESK_REDIS_URL", "")

	cfg := NewDefaultConfig()
	if err := pkgconfig.Load(filepath.Join("..", "config", "config.yaml"), cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.App.HTTP.Port != 5000 || cfg.Revocation.Backend != RevocationMemory {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestConfig_Redacted(t *testing.T) {
	cfg := validConfig()
	cfg.Revocation.RedisURL = "redis://:pw@localhost:6379/0"

	red := cfg.Redacted()
	if strings.Contains(red.Auth.JWTSecret, "0123") || strings.Contains(red.Revocation.RedisURL, "pw") {
		t.Errorf("secrets leaked: %+v", red)
	}
	if red.Seed.Admin.Password == cfg.Seed.Admin.Password {
		t.Error("seed password not masked")
	}
	if cfg.Auth.JWTSecret != "0123456789abcdef" {
		t.Error("Redacted modified the original")
	}

	data, err := pkgconfig.Marshal(red)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "token_ttl: 24h0m0s") {
		t.Errorf("marshalled config:\n%s", data)
	}
}
