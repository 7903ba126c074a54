package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestValidate_InvalidPort(t *testing.T) {
	cfg := Config{HTTP: HTTPConfig{Port: 70000}}
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_NoTransport(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error when neither transport is enabled")
	}
	expected := "no transport enabled: set http.port or transport.mcp_stdio"
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestValidate_StdioOnly(t *testing.T) {
	cfg := Config{Transport: TransportConfig{MCPStdio: true}}
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_InvalidDriver(t *testing.T) {
	cfg := Config{HTTP: HTTPConfig{Port: 8080}, Database: DatabaseConfig{Driver: "mongodb"}}
	cfg.ApplyDefaults()

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for unknown driver")
	}
	expected := `database.driver must be "valkey" or "redis", got "mongodb"`
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestValidate_KeyPrefix(t *testing.T) {
	cfg := Config{HTTP: HTTPConfig{Port: 8080}, Storage: StorageConfig{KeyPrefix: "vecmcp"}}
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for key prefix without separator")
	}
}

func TestValidate_ToolNames(t *testing.T) {
	tests := []struct {
		name    string
		tools   ToolsConfig
		wantErr bool
	}{
		{"known disabled", ToolsConfig{DisabledTools: []string{"drop-index", "insert-many"}}, false},
		{"unknown disabled", ToolsConfig{DisabledTools: []string{"find"}}, true},
		{"known confirmation", ToolsConfig{ConfirmationRequiredTools: []string{"drop-index"}}, false},
		{"unknown confirmation", ToolsConfig{ConfirmationRequiredTools: []string{"dropIndex"}}, true},
		{"known preview", ToolsConfig{PreviewFeatures: []string{"vectorSearch"}}, false},
		{"unknown preview", ToolsConfig{PreviewFeatures: []string{"search"}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{HTTP: HTTPConfig{Port: 8080}, Tools: tt.tools}
			cfg.ApplyDefaults()

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.Database.Driver != "valkey" {
		t.Errorf("expected Driver=valkey, got %q", cfg.Database.Driver)
	}
	if cfg.Database.ReadinessTimeout != 10 {
		t.Errorf("expected ReadinessTimeout=10, got %d", cfg.Database.ReadinessTimeout)
	}
	if cfg.Index.HNSWM != 16 {
		t.Errorf("expected HNSWM=16, got %d", cfg.Index.HNSWM)
	}
	if cfg.Storage.KeyPrefix != "vecmcp:" {
		t.Errorf("expected KeyPrefix='vecmcp:', got %q", cfg.Storage.KeyPrefix)
	}
	if cfg.Tools.CallTimeout() != 60*time.Second {
		t.Errorf("expected CallTimeout=60s, got %s", cfg.Tools.CallTimeout())
	}
	if cfg.Tools.MaxDocumentsPerInsert != 1000 {
		t.Errorf("expected MaxDocumentsPerInsert=1000, got %d", cfg.Tools.MaxDocumentsPerInsert)
	}
	if cfg.Embedding.Cache.TTLSec != 7*24*3600 {
		t.Errorf("expected cache TTL of one week, got %d", cfg.Embedding.Cache.TTLSec)
	}
}

func TestApplyDefaults_PreservesExisting(t *testing.T) {
	cfg := Config{
		HTTP:    HTTPConfig{ReadTimeoutSec: 30},
		Index:   IndexConfig{HNSWM: 32},
		Storage: StorageConfig{KeyPrefix: "custom:"},
		Tools:   ToolsConfig{CallTimeoutSec: 5},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 30 {
		t.Errorf("expected ReadTimeoutSec=30, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.Index.HNSWM != 32 {
		t.Errorf("expected HNSWM=32, got %d", cfg.Index.HNSWM)
	}
	if cfg.Storage.KeyPrefix != "custom:" {
		t.Errorf("expected KeyPrefix='custom:', got %q", cfg.Storage.KeyPrefix)
	}
	if cfg.Tools.CallTimeout() != 5*time.Second {
		t.Errorf("expected CallTimeout=5s, got %s", cfg.Tools.CallTimeout())
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("VECMCP_TEST_KEY", "sk-123")

	tests := []struct {
		in   string
		want string
	}{
		{"api_key: ${VECMCP_TEST_KEY}", "api_key: sk-123"},
		{"api_key: ${VECMCP_TEST_MISSING}", "api_key: "},
		{"level: ${VECMCP_TEST_MISSING:-debug}", "level: debug"},
		{"api_key: ${VECMCP_TEST_KEY:-unused}", "api_key: sk-123"},
		{"plain: value", "plain: value"},
	}
	for _, tt := range tests {
		if got := string(expandEnvVars([]byte(tt.in))); got != tt.want {
			t.Errorf("expandEnvVars(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParse(t *testing.T) {
	t.Setenv("VECMCP_TEST_ADDR", "valkey:6379")

	data := []byte(`
http:
  port: 8080
database:
  driver: redis
  addrs:
    - ${VECMCP_TEST_ADDR}
tools:
  read_only: true
  disabled_tools: [drop-index]
  preview_features: [vectorSearch]
transport:
  mcp_stdio: true
`)
	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Database.Driver != "redis" || len(cfg.Database.Addrs) != 1 || cfg.Database.Addrs[0] != "valkey:6379" {
		t.Errorf("unexpected database config: %+v", cfg.Database)
	}
	if !cfg.Tools.ReadOnly || cfg.Tools.DisabledTools[0] != "drop-index" {
		t.Errorf("unexpected tools config: %+v", cfg.Tools)
	}
	if !cfg.Transport.MCPStdio {
		t.Error("expected mcp_stdio enabled")
	}
	if cfg.Storage.KeyPrefix != "vecmcp:" {
		t.Errorf("defaults not applied: %q", cfg.Storage.KeyPrefix)
	}
}

func TestParse_Invalid(t *testing.T) {
	if _, err := Parse([]byte("http: [")); err == nil {
		t.Error("expected error for malformed yaml")
	}
	if _, err := Parse([]byte("http:\n  port: 0\n")); err == nil {
		t.Error("expected error for config without transports")
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "config"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config", "test.yaml"), []byte("transport:\n  mcp_stdio: true\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)

	cfg, err := Load("test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.Transport.MCPStdio {
		t.Error("expected mcp_stdio enabled")
	}

	if _, err := Load("missing"); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("ENV", "")
	if got := GetEnv(); got != "local" {
		t.Errorf("GetEnv() = %q, want local", got)
	}
	t.Setenv("ENV", "prod")
	if got := GetEnv(); got != "prod" {
		t.Errorf("GetEnv() = %q, want prod", got)
	}
}
