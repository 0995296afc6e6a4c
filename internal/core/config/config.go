// Package config handles configuration loading and validation for smartlp.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"gopkg.in/yaml.v3"
)

// Selection backends.
const (
	BackendSQLite = "sqlite"
	BackendJSON   = "json"
)

// Built-in action names for keybindings. Keep list sorted A-Z.
const (
	ActionClear    = "clear"
	ActionDelete   = "delete"
	ActionDetail   = "detail"
	ActionNextPage = "next-page"
	ActionPanel    = "panel"
	ActionPrevPage = "prev-page"
	ActionRefresh  = "refresh"
	ActionRemove   = "remove"
	ActionSearch   = "search"
	ActionSwitch   = "switch"
	ActionToggle   = "toggle"
)

var validActions = []string{
	ActionClear, ActionDelete, ActionDetail, ActionNextPage, ActionPanel,
	ActionPrevPage, ActionRefresh, ActionRemove, ActionSearch, ActionSwitch,
	ActionToggle,
}

// Column names available for the entries and rules tables.
var (
	EntryColumns = []string{"id", "timestamp", "index", "source_type", "status", "log"}
	RuleColumns  = []string{"id", "name", "source_type", "regex", "description"}
)

// defaultKeybindings provides built-in keybindings that users can override.
var defaultKeybindings = map[string]Keybinding{
	"space": {Action: ActionToggle, Help: "toggle"},
	"enter": {Action: ActionDetail, Help: "details"},
	"c":     {Action: ActionClear, Help: "clear selection"},
	"d": {
		Action:  ActionDelete,
		Help:    "delete selected",
		Confirm: "Delete all selected records?",
	},
	"o":   {Action: ActionPanel, Help: "config panel"},
	"x":   {Action: ActionRemove, Help: "remove from panel"},
	"/":   {Action: ActionSearch, Help: "search"},
	"n":   {Action: ActionNextPage, Help: "next page"},
	"p":   {Action: ActionPrevPage, Help: "prev page"},
	"r":   {Action: ActionRefresh, Help: "refresh"},
	"tab": {Action: ActionSwitch, Help: "switch table"},
}

// Config holds the application configuration.
type Config struct {
	API         APIConfig             `yaml:"api"`
	Selection   SelectionConfig       `yaml:"selection"`
	Tables      TablesConfig          `yaml:"tables"`
	Delete      DeleteConfig          `yaml:"delete"`
	Database    DatabaseConfig        `yaml:"database"`
	TUI         TUIConfig             `yaml:"tui"`
	Keybindings map[string]Keybinding `yaml:"keybindings"`
	DataDir     string                `yaml:"-"` // set by caller, not from config file
}

// APIConfig configures the backend client.
type APIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Token   string        `yaml:"token"`
	Timeout time.Duration `yaml:"timeout"`
}

// SelectionConfig configures selection persistence.
type SelectionConfig struct {
	Prefix       string        `yaml:"prefix"`        // storage key prefix
	Backend      string        `yaml:"backend"`       // sqlite or json
	SyncDebounce time.Duration `yaml:"sync_debounce"` // quiet period before a panel sync
}

// TablesConfig configures record tables.
type TablesConfig struct {
	PageSize int `yaml:"page_size"`
}

// DeleteConfig throttles bulk deletes.
type DeleteConfig struct {
	RateLimit float64 `yaml:"rate_limit"` // requests per second
	Burst     int     `yaml:"burst"`
}

// DatabaseConfig configures the SQLite connection.
type DatabaseConfig struct {
	MaxOpenConns int `yaml:"max_open_conns"`
	MaxIdleConns int `yaml:"max_idle_conns"`
	BusyTimeout  int `yaml:"busy_timeout"` // milliseconds
}

// TUIConfig configures the terminal UI.
type TUIConfig struct {
	Theme   string       `yaml:"theme"`
	Columns TableColumns `yaml:"columns"`
}

// TableColumns lists the columns shown per table.
type TableColumns struct {
	Entries []string `yaml:"entries"`
	Rules   []string `yaml:"rules"`
}

// Keybinding defines a TUI keybinding action.
type Keybinding struct {
	Action  string `yaml:"action"`  // built-in action name
	Help    string `yaml:"help"`    // help text shown in TUI
	Confirm string `yaml:"confirm"` // confirmation prompt (empty = no confirm)
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			BaseURL: "http://localhost:5000",
			Timeout: 15 * time.Second,
		},
		Selection: SelectionConfig{
			Prefix:       "smartlp",
			Backend:      BackendSQLite,
			SyncDebounce: 100 * time.Millisecond,
		},
		Tables: TablesConfig{
			PageSize: 25,
		},
		Delete: DeleteConfig{
			RateLimit: 5,
			Burst:     1,
		},
		Database: DatabaseConfig{
			MaxOpenConns: 2,
			MaxIdleConns: 2,
			BusyTimeout:  5000,
		},
		TUI: TUIConfig{
			Theme: "tokyo-night",
			Columns: TableColumns{
				Entries: []string{"id", "timestamp", "index", "source_type", "log"},
				Rules:   []string{"id", "name", "source_type", "regex"},
			},
		},
		Keybindings: map[string]Keybinding{},
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the provided dataDir.
func Load(configPath, dataDir string) (*Config, error) {
	cfg, err := Read(configPath, dataDir)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Read is Load without validation.
func Read(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.DataDir = dataDir

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}

			// Re-set dataDir since Unmarshal may have cleared it
			cfg.DataDir = dataDir
		}
	}

	// Merge user keybindings into defaults (user config overrides defaults)
	cfg.Keybindings = mergeKeybindings(defaultKeybindings, cfg.Keybindings)

	cfg.applyDefaults()

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.API.Timeout == 0 {
		c.API.Timeout = defaults.API.Timeout
	}
	if c.Selection.Prefix == "" {
		c.Selection.Prefix = defaults.Selection.Prefix
	}
	if c.Selection.Backend == "" {
		c.Selection.Backend = defaults.Selection.Backend
	}
	if c.Selection.SyncDebounce == 0 {
		c.Selection.SyncDebounce = defaults.Selection.SyncDebounce
	}
	if c.Tables.PageSize == 0 {
		c.Tables.PageSize = defaults.Tables.PageSize
	}
	if c.Delete.RateLimit == 0 {
		c.Delete.RateLimit = defaults.Delete.RateLimit
	}
	if c.Delete.Burst == 0 {
		c.Delete.Burst = defaults.Delete.Burst
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = defaults.Database.MaxOpenConns
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = defaults.Database.MaxIdleConns
	}
	if c.Database.BusyTimeout == 0 {
		c.Database.BusyTimeout = defaults.Database.BusyTimeout
	}
	if c.TUI.Theme == "" {
		c.TUI.Theme = defaults.TUI.Theme
	}
	if len(c.TUI.Columns.Entries) == 0 {
		c.TUI.Columns.Entries = defaults.TUI.Columns.Entries
	}
	if len(c.TUI.Columns.Rules) == 0 {
		c.TUI.Columns.Rules = defaults.TUI.Columns.Rules
	}
}

// mergeKeybindings merges user keybindings into defaults.
// User keybindings override defaults for the same key.
func mergeKeybindings(defaults, user map[string]Keybinding) map[string]Keybinding {
	result := make(map[string]Keybinding, len(defaults)+len(user))
	for k, v := range defaults {
		result[k] = v
	}
	for k, v := range user {
		result[k] = v
	}
	return result
}

// Validate checks that the configuration is structurally valid.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data directory cannot be empty")
	}

	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url cannot be empty")
	}

	if c.API.Timeout < 0 {
		return fmt.Errorf("api.timeout cannot be negative")
	}

	if c.Selection.Prefix == "" {
		return fmt.Errorf("selection.prefix cannot be empty")
	}

	switch c.Selection.Backend {
	case BackendSQLite, BackendJSON:
	default:
		return fmt.Errorf("selection.backend must be %q or %q, got %q", BackendSQLite, BackendJSON, c.Selection.Backend)
	}

	if c.Selection.SyncDebounce < 0 {
		return fmt.Errorf("selection.sync_debounce cannot be negative")
	}

	if c.Tables.PageSize < 1 {
		return fmt.Errorf("tables.page_size must be at least 1")
	}

	if c.Delete.RateLimit <= 0 {
		return fmt.Errorf("delete.rate_limit must be positive")
	}

	if c.Delete.Burst < 1 {
		return fmt.Errorf("delete.burst must be at least 1")
	}

	if err := validateColumns("tui.columns.entries", c.TUI.Columns.Entries, EntryColumns); err != nil {
		return err
	}
	if err := validateColumns("tui.columns.rules", c.TUI.Columns.Rules, RuleColumns); err != nil {
		return err
	}

	for key, kb := range c.Keybindings {
		if kb.Action == "" {
			return fmt.Errorf("keybinding %q must have an action", key)
		}
		if !isValidAction(kb.Action) {
			return fmt.Errorf("keybinding %q has invalid action %q", key, kb.Action)
		}
	}

	return nil
}

func validateColumns(field string, cols, allowed []string) error {
	seen := make(map[string]bool, len(cols))
	for _, col := range cols {
		if !slices.Contains(allowed, col) {
			return fmt.Errorf("%s: unknown column %q", field, col)
		}
		if seen[col] {
			return fmt.Errorf("%s: duplicate column %q", field, col)
		}
		seen[col] = true
	}
	return nil
}

// KeyFor returns the first key bound to action, sorted by key name, and
// whether one exists.
func (c *Config) KeyFor(action string) (string, bool) {
	keys := make([]string, 0, len(c.Keybindings))
	for k, kb := range c.Keybindings {
		if kb.Action == action {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return "", false
	}
	slices.Sort(keys)
	return keys[0], true
}

// SelectionFile returns the path of the JSON selection store.
func (c *Config) SelectionFile() string {
	return filepath.Join(c.DataDir, "selection.json")
}

// LogFile returns the default log file path.
func (c *Config) LogFile() string {
	return filepath.Join(c.DataDir, "smartlp.log")
}

func isValidAction(action string) bool {
	return slices.Contains(validActions, action)
}
