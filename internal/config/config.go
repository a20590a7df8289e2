package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/spf13/viper"
)

const (
	DefaultAPIScheme  = "http"
	DefaultAPIHost    = "localhost"
	DefaultAPIPort    = 37240
	DefaultSocketPath = "/tmp/markdown_preview.sock"
)

// Config is the persisted application settings. Connection parameters
// come first from flags, then this file, then the defaults above.
type Config struct {
	APIScheme  string `yaml:"api_scheme"  json:"api_scheme"`
	APIHost    string `yaml:"api_host"    json:"api_host"`
	APIPort    int    `yaml:"api_port"    json:"api_port"`
	SocketPath string `yaml:"socket_path" json:"socket_path"`
	Editor     string `yaml:"editor"      json:"editor"`
	GUIEditor  string `yaml:"gui_editor"  json:"gui_editor"`
	SyncMode   string `yaml:"sync_mode"   json:"sync_mode"`
	FoldLevels []int  `yaml:"fold_levels" json:"fold_levels"`

	home string `yaml:"-" json:"-"`
}

var validSyncModes = map[string]bool{
	"manual": true,
	"auto":   true,
	"follow": true,
}

func ValidateSyncMode(mode string) error {
	if validSyncModes[mode] {
		return nil
	}
	return fmt.Errorf(
		"invalid sync mode: %q. Please choose from 'manual', 'auto', or 'follow'.",
		mode,
	)
}

func newConfig(home string) *Config {
	return &Config{
		APIScheme:  DefaultAPIScheme,
		APIHost:    DefaultAPIHost,
		APIPort:    DefaultAPIPort,
		SocketPath: DefaultSocketPath,
		Editor:     defaultEditor(),
		SyncMode:   "manual",
		home:       home,
	}
}

func defaultEditor() string {
	if ed := os.Getenv("EDITOR"); ed != "" {
		return ed
	}
	return "vi"
}

func (cfg *Config) ensureDefaults() {
	if cfg.APIScheme == "" {
		cfg.APIScheme = DefaultAPIScheme
	}
	if cfg.APIHost == "" {
		cfg.APIHost = DefaultAPIHost
	}
	if cfg.APIPort == 0 {
		cfg.APIPort = DefaultAPIPort
	}
	if cfg.SocketPath == "" {
		cfg.SocketPath = DefaultSocketPath
	}
	if cfg.Editor == "" {
		cfg.Editor = defaultEditor()
	}
	if cfg.SyncMode == "" {
		cfg.SyncMode = "manual"
	}
}

// Load reads the config file under home, filling defaults for anything
// unset. A missing or empty file yields the default config.
func Load(home string) (*Config, error) {
	cfg := newConfig(home)

	data, err := os.ReadFile(GetConfigPath(home))
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if len(strings.TrimSpace(string(data))) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
		cfg.home = home
		cfg.ensureDefaults()
	}

	if err := ValidateSyncMode(cfg.SyncMode); err != nil {
		return nil, err
	}

	cfg.syncViper()
	return cfg, nil
}

// syncViper mirrors the loaded values into viper so flag binding and
// config lookups agree.
func (cfg *Config) syncViper() {
	viper.Set("api_scheme", cfg.APIScheme)
	viper.Set("api_host", cfg.APIHost)
	viper.Set("api_port", cfg.APIPort)
	viper.Set("socket_path", cfg.SocketPath)
	viper.Set("editor", cfg.Editor)
	viper.Set("gui_editor", cfg.GUIEditor)
	viper.Set("sync_mode", cfg.SyncMode)
}

// BaseURL assembles the backend root from the connection parameters.
func (cfg *Config) BaseURL() string {
	return fmt.Sprintf("%s://%s:%d", cfg.APIScheme, cfg.APIHost, cfg.APIPort)
}

// ChangeSyncMode validates and persists a new sync mode.
func (cfg *Config) ChangeSyncMode(mode string) error {
	if err := ValidateSyncMode(mode); err != nil {
		return err
	}
	cfg.SyncMode = mode
	return cfg.Save()
}

// ChangeEditor persists a new editor command.
func (cfg *Config) ChangeEditor(editor string) error {
	if strings.TrimSpace(editor) == "" {
		return fmt.Errorf("editor command cannot be empty")
	}
	cfg.Editor = editor
	return cfg.Save()
}

func (cfg *Config) GetConfigPath() string {
	return GetConfigPath(cfg.home)
}

func (cfg *Config) Save() error {
	if err := ValidateSyncMode(cfg.SyncMode); err != nil {
		return err
	}

	cfg.syncViper()

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	configPath := cfg.GetConfigPath()
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0o644)
}
