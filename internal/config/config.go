package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the vecmcp configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Tools     ToolsConfig     `yaml:"tools"`
	Auth      AuthConfig      `yaml:"auth"`
	Index     IndexConfig     `yaml:"index"`
	Storage   StorageConfig   `yaml:"storage"`
	Logging   LoggingConfig   `yaml:"logging"`
	Transport TransportConfig `yaml:"transport"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds authentication of the HTTP tool endpoint.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings. Port 0 disables the HTTP endpoint.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds the initial connection. Without addrs the server starts
// disconnected and waits for the connect tool.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver"` // valkey, redis (default: valkey)
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// IndexConfig holds HNSW settings of created vector fields.
type IndexConfig struct {
	HNSWM           int `yaml:"hnsw_m"`
	HNSWEFConstruct int `yaml:"hnsw_ef_construction"`
}

// StorageConfig holds storage settings.
type StorageConfig struct {
	KeyPrefix string `yaml:"key_prefix"`
}

// EmbeddingConfig holds the embeddings provider. An empty api_key leaves
// embedding generation unconfigured.
type EmbeddingConfig struct {
	Provider            string               `yaml:"provider"`
	APIKey              string               `yaml:"api_key"`
	BaseURL             string               `yaml:"base_url"`
	ProxyURL            string               `yaml:"proxy_url"`
	Model               string               `yaml:"model"`
	TimeoutSec          int                  `yaml:"timeout_sec"`
	MaxBatchSize        int                  `yaml:"max_batch_size"`
	DocumentInstruction string               `yaml:"document_instruction"`
	QueryInstruction    string               `yaml:"query_instruction"`
	Cache               EmbeddingCacheConfig `yaml:"cache"`
}

// EmbeddingCacheConfig holds the embedding cache kept in the connected cluster.
type EmbeddingCacheConfig struct {
	Enabled bool `yaml:"enabled"`
	TTLSec  int  `yaml:"ttl_sec"`
}

// ToolsConfig holds the access policy of the tool surface.
type ToolsConfig struct {
	ReadOnly                    bool     `yaml:"read_only"`
	DisabledTools               []string `yaml:"disabled_tools"`
	ConfirmationRequiredTools   []string `yaml:"confirmation_required_tools"`
	PreviewFeatures             []string `yaml:"preview_features"`
	DisableEmbeddingsValidation bool     `yaml:"disable_embeddings_validation"`
	CallTimeoutSec              int      `yaml:"call_timeout_sec"`
	MaxDocumentsPerInsert       int      `yaml:"max_documents_per_insert"`
}

// TransportConfig selects the transports to serve.
type TransportConfig struct {
	MCPStdio bool `yaml:"mcp_stdio"`
}

// CallTimeout returns the per-call timeout.
func (t ToolsConfig) CallTimeout() time.Duration {
	return time.Duration(t.CallTimeoutSec) * time.Second
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse expands environment variables in data, decodes it, applies defaults and validates.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 60
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "valkey"
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Index.HNSWM <= 0 {
		c.Index.HNSWM = 16
	}
	if c.Index.HNSWEFConstruct <= 0 {
		c.Index.HNSWEFConstruct = 200
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "vecmcp:"
	}
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "openai"
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = "text-embedding-3-small"
	}
	if c.Embedding.TimeoutSec <= 0 {
		c.Embedding.TimeoutSec = 30
	}
	if c.Embedding.MaxBatchSize <= 0 {
		c.Embedding.MaxBatchSize = 128
	}
	if c.Embedding.Cache.TTLSec <= 0 {
		c.Embedding.Cache.TTLSec = 7 * 24 * 3600
	}
	if c.Tools.CallTimeoutSec <= 0 {
		c.Tools.CallTimeoutSec = 60
	}
	if c.Tools.MaxDocumentsPerInsert <= 0 {
		c.Tools.MaxDocumentsPerInsert = 1000
	}
}

// knownTools mirrors the tool names accepted by disabled_tools and confirmation_required_tools.
var knownTools = []string{
	"connect", "insert-many", "vector-search", "create-index", "drop-index", "collection-indexes", "count",
}

var knownPreviewFeatures = []string{"vectorSearch"}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port < 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 0 and 65535, got %d", c.HTTP.Port)
	}
	if c.HTTP.Port == 0 && !c.Transport.MCPStdio {
		return fmt.Errorf("no transport enabled: set http.port or transport.mcp_stdio")
	}
	switch c.Database.Driver {
	case "valkey", "redis":
	default:
		return fmt.Errorf("database.driver must be \"valkey\" or \"redis\", got %q", c.Database.Driver)
	}
	if !strings.HasSuffix(c.Storage.KeyPrefix, ":") {
		return fmt.Errorf("storage.key_prefix must end with \":\", got %q", c.Storage.KeyPrefix)
	}
	for _, name := range c.Tools.DisabledTools {
		if !slices.Contains(knownTools, name) {
			return fmt.Errorf("tools.disabled_tools: unknown tool %q", name)
		}
	}
	for _, name := range c.Tools.ConfirmationRequiredTools {
		if !slices.Contains(knownTools, name) {
			return fmt.Errorf("tools.confirmation_required_tools: unknown tool %q", name)
		}
	}
	for _, f := range c.Tools.PreviewFeatures {
		if !slices.Contains(knownPreviewFeatures, f) {
			return fmt.Errorf("tools.preview_features: unknown feature %q", f)
		}
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
