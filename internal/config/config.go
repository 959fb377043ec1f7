// Package config resolves mcpchat settings from a .env file, an optional
// JSON or YAML config file and MCPCHAT_* environment variables, in that
// order of increasing precedence.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"mcpchat/internal/llm"
	"mcpchat/internal/tools/mcp"
)

const envPrefix = "MCPCHAT_"

var (
	// ErrInvalid is returned for settings that cannot be used.
	ErrInvalid = errors.New("invalid configuration")

	// ErrMissingCredential is returned when the provider needs an API key and none is set.
	ErrMissingCredential = errors.New("missing provider credential")
)

// Duration is a time.Duration written as "30s" or "2m" in config files.
type Duration time.Duration

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := parseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

type Config struct {
	Provider string `json:"provider" yaml:"provider"`
	Model    string `json:"model,omitempty" yaml:"model,omitempty"`
	BaseURL  string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	APIKey   string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// Server is the MCP server: a command line, or an http(s):// or sse:// URL.
	Server       string            `json:"server" yaml:"server"`
	ServerEnv    map[string]string `json:"server_env,omitempty" yaml:"server_env,omitempty"`
	ExcludeTools []string          `json:"exclude_tools" yaml:"exclude_tools"`

	MaxTokens   int     `json:"max_tokens" yaml:"max_tokens"`
	Temperature float64 `json:"temperature" yaml:"temperature"`

	// Zero timeouts wait indefinitely.
	TurnTimeout       Duration `json:"turn_timeout,omitempty" yaml:"turn_timeout,omitempty"`
	CompletionTimeout Duration `json:"completion_timeout,omitempty" yaml:"completion_timeout,omitempty"`
	ToolTimeout       Duration `json:"tool_timeout,omitempty" yaml:"tool_timeout,omitempty"`

	LogPath             string   `json:"log_path,omitempty" yaml:"log_path,omitempty"`
	DebugLogPath        string   `json:"debug_log_path,omitempty" yaml:"debug_log_path,omitempty"`
	DisabledMiddlewares []string `json:"disabled_middlewares,omitempty" yaml:"disabled_middlewares,omitempty"`
}

// Default returns the settings used when nothing is configured.
func Default() *Config {
	return &Config{
		Provider:     string(llm.ProviderHuggingFace),
		Server:       mcp.DefaultServer,
		ExcludeTools: []string{"list_tables"},
		MaxTokens:    4096,
		Temperature:  0,
		LogPath:      filepath.Join("bin", "mcpchat.log"),
		DebugLogPath: filepath.Join("bin", "middleware.debug.jsonl"),
	}
}

// Load reads .env (if present), then the config file at path (if path is
// set), then MCPCHAT_* overrides. The result is not validated.
func Load(path string) (*Config, error) {
	// Load environment variables from .env if present
	_ = godotenv.Load()

	cfg := Default()
	if strings.TrimSpace(path) != "" {
		if err := cfg.readFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(os.Getenv); err != nil {
		return nil, err
	}
	if cfg.APIKey == "" {
		cfg.APIKey = credential(llm.Provider(cfg.Provider), os.Getenv)
	}
	return cfg, nil
}

func (c *Config) readFile(path string) error {
	path, err := expandHome(path)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, c)
	default:
		err = json.Unmarshal(data, c)
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalid, path, err)
	}
	return nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	str := func(key string, dst *string) {
		if v := strings.TrimSpace(getenv(envPrefix + key)); v != "" {
			*dst = v
		}
	}
	list := func(key string, dst *[]string) {
		if v, ok := lookup(getenv, key); ok {
			*dst = splitList(v)
		}
	}

	str("PROVIDER", &c.Provider)
	str("MODEL", &c.Model)
	str("BASE_URL", &c.BaseURL)
	str("API_KEY", &c.APIKey)
	str("SERVER", &c.Server)
	str("LOG_PATH", &c.LogPath)
	str("DEBUG_LOG_PATH", &c.DebugLogPath)
	list("EXCLUDE_TOOLS", &c.ExcludeTools)
	list("DISABLED_MIDDLEWARES", &c.DisabledMiddlewares)

	if v, ok := lookup(getenv, "MAX_TOKENS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %sMAX_TOKENS: %v", ErrInvalid, envPrefix, err)
		}
		c.MaxTokens = n
	}
	if v, ok := lookup(getenv, "TEMPERATURE"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%w: %sTEMPERATURE: %v", ErrInvalid, envPrefix, err)
		}
		c.Temperature = f
	}
	for key, dst := range map[string]*Duration{
		"TURN_TIMEOUT":       &c.TurnTimeout,
		"COMPLETION_TIMEOUT": &c.CompletionTimeout,
		"TOOL_TIMEOUT":       &c.ToolTimeout,
	} {
		v, ok := lookup(getenv, key)
		if !ok {
			continue
		}
		d, err := parseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: %s%s: %v", ErrInvalid, envPrefix, key, err)
		}
		*dst = Duration(d)
	}
	return nil
}

// Validate checks the settings a session cannot start without, filling in
// the provider's default model when none is set.
func (c *Config) Validate() error {
	p := llm.Provider(strings.ToLower(strings.TrimSpace(c.Provider)))
	if !llm.Valid(p) {
		return fmt.Errorf("%w: unknown provider %q", ErrInvalid, c.Provider)
	}
	c.Provider = string(p)
	if c.Model == "" {
		c.Model = llm.DefaultModel(p)
	}
	if llm.NeedsAPIKey(p) && strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("%w: set %s or %s%s_API_KEY", ErrMissingCredential, credentialVars[p], envPrefix, strings.ToUpper(string(p)))
	}
	if strings.TrimSpace(c.Server) == "" {
		return fmt.Errorf("%w: no MCP server configured", ErrInvalid)
	}
	if c.MaxTokens < 0 {
		return fmt.Errorf("%w: max_tokens must not be negative", ErrInvalid)
	}
	return nil
}

// Settings returns the provider selection for llm.NewAdapter.
func (c *Config) Settings() llm.Settings {
	return llm.Settings{
		Provider: llm.Provider(c.Provider),
		Model:    c.Model,
		BaseURL:  c.BaseURL,
		APIKey:   c.APIKey,
	}
}

// ServerEnviron returns ServerEnv as sorted KEY=value entries.
func (c *Config) ServerEnviron() []string {
	out := make([]string, 0, len(c.ServerEnv))
	for k, v := range c.ServerEnv {
		out = append(out, k+"="+v)
	}
	sort.Strings(out)
	return out
}

// Save writes the config as YAML or JSON, chosen by the file extension.
// The API key is never written.
func (c *Config) Save(path string) error {
	path, err := expandHome(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	out := *c
	out.APIKey = ""

	var data []byte
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(&out)
	default:
		data, err = json.MarshalIndent(&out, "", "  ")
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// Provider specific credential variables, checked after MCPCHAT_<PROVIDER>_API_KEY.
var credentialVars = map[llm.Provider]string{
	llm.ProviderHuggingFace: "HUGGINGFACE_ACCESS_TOKEN",
	llm.ProviderGroq:        "GROQ_API_KEY",
	llm.ProviderOpenAI:      "OPENAI_API_KEY",
	llm.ProviderAnthropic:   "ANTHROPIC_API_KEY",
	llm.ProviderGemini:      "GOOGLE_API_KEY",
}

// Credential returns the API key the environment holds for provider.
func Credential(provider string) string {
	return credential(llm.Provider(provider), os.Getenv)
}

// credential checks MCPCHAT_API_KEY, then MCPCHAT_<PROVIDER>_API_KEY, then
// the provider's own variable.
func credential(p llm.Provider, getenv func(string) string) string {
	if v, ok := lookup(getenv, "API_KEY"); ok {
		return v
	}
	p = llm.Provider(strings.ToLower(strings.TrimSpace(string(p))))
	if v := strings.TrimSpace(getenv(envPrefix + strings.ToUpper(string(p)) + "_API_KEY")); v != "" {
		return v
	}
	if name, ok := credentialVars[p]; ok {
		return strings.TrimSpace(getenv(name))
	}
	return ""
}

func lookup(getenv func(string) string, key string) (string, bool) {
	v := strings.TrimSpace(getenv(envPrefix + key))
	return v, v != ""
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parseDuration accepts Go durations and bare seconds.
func parseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	return time.ParseDuration(s)
}

func expandHome(path string) (string, error) {
	// Expand ~ to home directory
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(home, path[2:])
	}
	return path, nil
}
