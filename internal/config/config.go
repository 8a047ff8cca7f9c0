package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Backend identifies where lists and accounts are kept
type Backend string

const (
	BackendLocal  Backend = "local"  // SQLite database on this machine
	BackendRemote Backend = "remote" // Hosted account API
)

// Config holds all application configuration
type Config struct {
	TMDB    TMDBConfig    `mapstructure:"tmdb"`
	Account AccountConfig `mapstructure:"account"`
	UI      UIConfig      `mapstructure:"ui"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// TMDBConfig holds catalog API configuration
type TMDBConfig struct {
	APIKey       string        `mapstructure:"api_key"` // v3 key or v4 read access token
	BaseURL      string        `mapstructure:"base_url"`
	ImageBaseURL string        `mapstructure:"image_base_url"`
	Language     string        `mapstructure:"language"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

// AccountConfig holds list and account persistence configuration
type AccountConfig struct {
	Backend Backend `mapstructure:"backend"`
	URL     string  `mapstructure:"url"`     // Remote only
	DBPath  string  `mapstructure:"db_path"` // Local only
}

// UIConfig holds UI configuration
type UIConfig struct {
	DefaultTab  string `mapstructure:"default_tab"`
	ShowPosters bool   `mapstructure:"show_posters"`
	Browser     string `mapstructure:"browser"` // Empty for system default
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		TMDB: TMDBConfig{
			BaseURL:      "https://api.themoviedb.org/3",
			ImageBaseURL: "https://image.tmdb.org/t/p",
			Language:     "en-US",
			Timeout:      30 * time.Second,
		},
		Account: AccountConfig{
			Backend: BackendLocal,
			DBPath:  filepath.Join(DataDir(), "marquee.db"),
		},
		UI: UIConfig{
			DefaultTab:  "all",
			ShowPosters: true,
		},
		Logging: LoggingConfig{
			File:  filepath.Join(DataDir(), "marquee.log"),
			Level: "INFO",
		},
	}
}

// DataDir returns the directory for the database, session store and log
func DataDir() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "marquee")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "marquee")
	}
}

// defaultConfigPath returns the default config directory for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "marquee")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "marquee")
	}
}

// LoadConfig loads configuration from file and environment
func LoadConfig() (*Config, error) {
	return load(viper.GetViper(), defaultConfigPath(), ".")
}

func load(v *viper.Viper, paths ...string) (*Config, error) {
	cfg := DefaultConfig()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	// Defaults make every key visible to AutomaticEnv (MARQUEE_TMDB_API_KEY, ...)
	setDefaults(v, cfg)
	v.SetEnvPrefix("MARQUEE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	cfg.Account.DBPath = expandHome(cfg.Account.DBPath)
	cfg.Logging.File = expandHome(cfg.Logging.File)
	return cfg, nil
}

func setDefaults(v *viper.Viper, cfg *Config) {
	for key, value := range keys(cfg) {
		v.SetDefault(key, value)
	}
}

// keys flattens cfg into snake_case viper keys
func keys(cfg *Config) map[string]any {
	return map[string]any{
		"tmdb.api_key":        cfg.TMDB.APIKey,
		"tmdb.base_url":       cfg.TMDB.BaseURL,
		"tmdb.image_base_url": cfg.TMDB.ImageBaseURL,
		"tmdb.language":       cfg.TMDB.Language,
		"tmdb.timeout":        cfg.TMDB.Timeout,
		"account.backend":     string(cfg.Account.Backend),
		"account.url":         cfg.Account.URL,
		"account.db_path":     cfg.Account.DBPath,
		"ui.default_tab":      cfg.UI.DefaultTab,
		"ui.show_posters":     cfg.UI.ShowPosters,
		"ui.browser":          cfg.UI.Browser,
		"logging.file":        cfg.Logging.File,
		"logging.level":       cfg.Logging.Level,
	}
}

// SaveConfig saves the current configuration to file
func SaveConfig(cfg *Config) error {
	return save(viper.GetViper(), cfg, defaultConfigPath())
}

func save(v *viper.Viper, cfg *Config, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Set fields individually to ensure correct key names (snake_case)
	for key, value := range keys(cfg) {
		if d, ok := value.(time.Duration); ok {
			value = d.String()
		}
		v.Set(key, value)
	}

	configFile := filepath.Join(dir, "config.yaml")
	if err := v.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// IsConfigured returns true if a catalog API key is set
func (c *Config) IsConfigured() bool {
	return strings.TrimSpace(c.TMDB.APIKey) != ""
}

// Validate checks settings that have no usable fallback
func (c *Config) Validate() error {
	switch c.Account.Backend {
	case BackendLocal:
		if c.Account.DBPath == "" {
			return fmt.Errorf("account.db_path is required for the local backend")
		}
	case BackendRemote:
		if c.Account.URL == "" {
			return fmt.Errorf("account.url is required for the remote backend")
		}
	default:
		return fmt.Errorf("unknown account backend %q (want local or remote)", c.Account.Backend)
	}
	return nil
}

// Endpoint identifies the account backend, used to key the session store
func (c *Config) Endpoint() string {
	if c.Account.Backend == BackendRemote {
		return c.Account.URL
	}
	return "file://" + c.Account.DBPath
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
