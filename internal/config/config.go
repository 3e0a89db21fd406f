// Package config loads and hot-reloads the wrapper's JSON config file
// (spec §6 "Persisted state layout: ./cursor-enhanced-config.json"),
// grounded on the teacher's config package pattern: a Config struct with
// nested sub-structs, RWMutex-guarded for hot paths, loaded once at
// startup and refreshed via fsnotify.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/nextlevelbuilder/cursor-enhanced-go/internal/delegate"
)

// DefaultConfigFileName is the canonical config file name (spec §6).
const DefaultConfigFileName = "cursor-enhanced-config.json"

// TelegramConfig holds the Chat Front-End's Telegram transport settings.
type TelegramConfig struct {
	BotToken       string   `json:"bot_token" toml:"bot_token"`
	Proxy          string   `json:"proxy,omitempty" toml:"proxy,omitempty"`
	AllowFrom      []string `json:"allow_from,omitempty" toml:"allow_from,omitempty"`
	RequestTimeout int      `json:"request_timeout_seconds,omitempty" toml:"request_timeout_seconds,omitempty"`
}

// Config is the wrapper's full configuration (spec §6).
type Config struct {
	ChildAgentBinaryPath string             `json:"child_agent_binary_path" toml:"child_agent_binary_path"`
	MCPConfigPath        string             `json:"mcp_config_path,omitempty" toml:"mcp_config_path,omitempty"`
	APIKey               string             `json:"api_key,omitempty" toml:"api_key,omitempty"`
	HomeAssistantToken   string             `json:"home_assistant_token,omitempty" toml:"home_assistant_token,omitempty"`
	Timezone             string             `json:"timezone,omitempty" toml:"timezone,omitempty"`
	DefaultHistoryLimit  int                `json:"default_history_limit,omitempty" toml:"default_history_limit,omitempty"`
	SystemPrompts        map[string]string  `json:"system_prompts,omitempty" toml:"system_prompts,omitempty"`
	Personas             []delegate.Persona `json:"personas,omitempty" toml:"personas,omitempty"`
	Telegram             TelegramConfig     `json:"telegram,omitempty" toml:"telegram,omitempty"`
	ToolsEnabled         map[string]bool    `json:"tools_enabled,omitempty" toml:"tools_enabled,omitempty"`
}

// Default returns a Config with the built-in defaults, before any file or
// environment overrides are applied.
func Default() Config {
	return Config{
		ChildAgentBinaryPath: "cursor-agent",
		Timezone:             "UTC",
		DefaultHistoryLimit:  20,
		SystemPrompts:        map[string]string{},
		ToolsEnabled:         map[string]bool{},
	}
}

// Load reads path (JSON, or TOML when path ends in ".toml" — spec's
// "TOML is accepted as an alternate load format"), falling back to
// defaults when the file does not exist, then applies CURSOR_* env var
// overrides. A ".env" file alongside path is loaded first if present.
func Load(path string) (Config, error) {
	envPath := filepath.Join(filepath.Dir(path), ".env")
	if _, err := os.Stat(envPath); err == nil {
		_ = godotenv.Load(envPath)
	}

	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if filepath.Ext(path) == ".toml" {
			if _, err := toml.Decode(string(data), &cfg); err != nil {
				return Config{}, fmt.Errorf("decode toml config %s: %w", path, err)
			}
		} else if err := json.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("decode json config %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// No config file yet: defaults + env vars only.
	default:
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	applyEnvOverrides(&cfg)
	return cfg, nil
}

// Save writes cfg to path as indented JSON (spec §5 "Atomic disk writes"
// is handled by storeutil elsewhere; config writes are infrequent admin
// operations, so a plain write suffices here).
func Save(path string, cfg Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CURSOR_AGENT_PATH"); v != "" {
		cfg.ChildAgentBinaryPath = v
	}
	if v := os.Getenv("CURSOR_MCP_CONFIG_PATH"); v != "" {
		cfg.MCPConfigPath = v
	}
	if v := os.Getenv("CURSOR_API_KEY"); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv("HOME_ASSISTANT_TOKEN"); v != "" {
		cfg.HomeAssistantToken = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("CURSOR_ENHANCED_HISTORY_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.DefaultHistoryLimit = n
		}
	}
	if v := os.Getenv("CURSOR_ENHANCED_TELEGRAM_REQUEST_TIMEOUT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Telegram.RequestTimeout = n
		}
	}
}

// Store is a hot-reloadable Config, guarded for concurrent readers while a
// Watch goroutine reloads it on file changes (spec's fsnotify addition to
// the Config Store).
type Store struct {
	path string

	mu  sync.RWMutex
	cfg Config
}

// NewStore loads path once and returns a Store wrapping it.
func NewStore(path string) (*Store, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	return &Store{path: path, cfg: cfg}, nil
}

// Get returns the current config snapshot.
func (s *Store) Get() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// reload re-reads the config file and swaps the snapshot in. A decode error
// is returned without swapping; Watch logs it and keeps the previous
// snapshot, so a transient partial write (editor save) is not fatal.
func (s *Store) reload() error {
	cfg, err := Load(s.path)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
	return nil
}
