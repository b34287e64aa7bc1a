package config

import (
	_ "embed"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/rubiojr/hackfinder/pkg/snippet"
)

//go:embed config.toml.sample
var configTemplate string

const (
	BackendLocal  = "local"
	BackendRemote = "remote"

	DefaultPageSize = 10
	MaxPageSize     = 50
	DefaultPort     = 8080
	DefaultTimeout  = 10 * time.Second
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	StorageDir string        `toml:"storage_dir"`
	IndexPath  string        `toml:"index_path"`
	PageSize   int           `toml:"page_size"`
	Snippet    SnippetConfig `toml:"snippet"`
	Backend    BackendConfig `toml:"backend"`
	Web        WebConfig     `toml:"web"`
	Import     ImportConfig  `toml:"import"`
}

type SnippetConfig struct {
	Window        int `toml:"window"`
	ContextBefore int `toml:"context_before"`
}

// BackendConfig selects where searches run: the local index, or a remote
// hackfinder server.
type BackendConfig struct {
	Type    string   `toml:"type"`
	URL     string   `toml:"url,omitempty"`
	Timeout Duration `toml:"timeout"`
}

type WebConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

type ImportConfig struct {
	// WatchDir, when set, is watched by the server for new crawler dumps.
	WatchDir string `toml:"watch_dir,omitempty"`
	// APIKey enables POST /api/hacks for bearer-authenticated clients.
	APIKey string `toml:"api_key,omitempty"`
}

type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

func GetDefaultConfig() (*Config, error) {
	storageDir, err := GetDefaultStorageDir()
	if err != nil {
		return nil, fmt.Errorf("getting default storage directory: %w", err)
	}
	return &Config{
		StorageDir: storageDir,
		IndexPath:  filepath.Join(storageDir, "hacks.db"),
		PageSize:   DefaultPageSize,
		Snippet: SnippetConfig{
			Window:        snippet.DefaultWindow,
			ContextBefore: snippet.DefaultContextBefore,
		},
		Backend: BackendConfig{
			Type:    BackendLocal,
			Timeout: Duration{DefaultTimeout},
		},
		Web: WebConfig{
			Host: "localhost",
			Port: DefaultPort,
		},
	}, nil
}

// LoadConfig reads the TOML file at configPath on top of the defaults. A
// missing file yields the defaults.
func LoadConfig(configPath string) (*Config, error) {
	config, err := GetDefaultConfig()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if os.IsNotExist(err) {
		return config, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	config.StorageDir = expandHome(config.StorageDir)
	config.IndexPath = expandHome(config.IndexPath)
	config.Import.WatchDir = expandHome(config.Import.WatchDir)
	if config.IndexPath == "" {
		config.IndexPath = filepath.Join(config.StorageDir, "hacks.db")
	}
	if config.Backend.Type == "" {
		config.Backend.Type = BackendLocal
	}
	if config.Backend.Timeout.Duration == 0 {
		config.Backend.Timeout = Duration{DefaultTimeout}
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks value ranges and the backend selection.
func (c *Config) Validate() error {
	if c.PageSize < 1 || c.PageSize > MaxPageSize {
		return fmt.Errorf("%w: page_size must be between 1 and %d, got %d", ErrInvalidConfig, MaxPageSize, c.PageSize)
	}
	if c.Snippet.Window < 1 {
		return fmt.Errorf("%w: snippet.window must be positive, got %d", ErrInvalidConfig, c.Snippet.Window)
	}
	if c.Snippet.ContextBefore < 0 || c.Snippet.ContextBefore >= c.Snippet.Window {
		return fmt.Errorf("%w: snippet.context_before must be in [0, window), got %d", ErrInvalidConfig, c.Snippet.ContextBefore)
	}
	switch c.Backend.Type {
	case BackendLocal:
	case BackendRemote:
		if c.Backend.URL == "" {
			return fmt.Errorf("%w: backend.url is required for the remote backend", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown backend type %q", ErrInvalidConfig, c.Backend.Type)
	}
	if c.Web.Port < 0 || c.Web.Port > 65535 {
		return fmt.Errorf("%w: web.port out of range: %d", ErrInvalidConfig, c.Web.Port)
	}
	return nil
}

// SnippetOptions returns the excerpt settings.
func (c *Config) SnippetOptions() snippet.Options {
	return snippet.Options{Window: c.Snippet.Window, ContextBefore: c.Snippet.ContextBefore}
}

// WebAddr returns the host:port the server listens on.
func (c *Config) WebAddr() string {
	return net.JoinHostPort(c.Web.Host, strconv.Itoa(c.Web.Port))
}

func (c *Config) SaveConfig(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	return os.WriteFile(configPath, data, 0644)
}

// SaveTemplateConfig writes the commented sample config with this
// config's storage paths filled in.
func (c *Config) SaveTemplateConfig(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	return os.WriteFile(configPath, []byte(c.generateConfigTemplate()), 0644)
}

func (c *Config) generateConfigTemplate() string {
	return strings.NewReplacer(
		"/home/user/.local/share/hackfinder/hacks.db", c.IndexPath,
		"/home/user/.local/share/hackfinder", c.StorageDir,
	).Replace(configTemplate)
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

// GetDefaultStorageDir returns the directory holding the index database.
func GetDefaultStorageDir() (string, error) {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting user home directory: %w", err)
		}
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	dir := filepath.Join(dataDir, "hackfinder")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating storage directory %s: %w", dir, err)
	}
	return dir, nil
}

// GetConfigDir returns the configuration directory for hackfinder.
func GetConfigDir() (string, error) {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting user home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	dir := filepath.Join(configDir, "hackfinder")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating config directory %s: %w", dir, err)
	}
	return dir, nil
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}

// GetDefaultLogPath returns where the terminal browser writes its log.
func GetDefaultLogPath() (string, error) {
	storageDir, err := GetDefaultStorageDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(storageDir, "browse.log"), nil
}
