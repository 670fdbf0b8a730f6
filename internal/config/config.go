package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// FilePermissions is the default permission mode for regular files (read/write for owner, read for others)
	FilePermissions = 0644
	// DirPermissions is the default permission mode for directories (rwxr-xr-x)
	DirPermissions = 0755
)

var (
	// ConfigDir is the global configuration directory (~/.tabkeys)
	ConfigDir string

	// SettingsFile is the global settings file
	SettingsFile string

	// HotkeysFile is the default hotkeys store for the file backend
	HotkeysFile string

	// DatabasePath is the SQLite database for the sqlite backend and the dispatch log
	DatabasePath string

	// GroupsFile is where the controller keeps its groups
	GroupsFile string

	// LogFile receives logs while the TUI owns the terminal
	LogFile string
)

// localSettingsFile overrides the global settings when present in the
// working directory
const localSettingsFile = ".tabkeys.yaml"

// Settings are the user-tunable options
type Settings struct {
	// ExtensionID is the only signal sender agents listen to
	ExtensionID string `yaml:"extensionId"`

	// ControllerURL is the controller's websocket endpoint. "local" runs
	// the controller inside the agent process.
	ControllerURL string `yaml:"controllerUrl"`

	// ListenAddr is where `tabkeys controller` listens
	ListenAddr string `yaml:"listenAddr"`

	// Store selects the hotkeys backend: "file" or "sqlite"
	Store string `yaml:"store"`

	// StorePath overrides the backend's default location
	StorePath string `yaml:"storePath,omitempty"`

	// ReleaseDelay is how long after a key press the TUI reports its release
	ReleaseDelay time.Duration `yaml:"releaseDelay"`

	// LogLevel is one of debug, info, warn, error
	LogLevel string `yaml:"logLevel"`

	// GroupsFile overrides the controller's groups file
	GroupsFile string `yaml:"groupsFile,omitempty"`
}

// LocalController is the ControllerURL value that embeds the controller
const LocalController = "local"

// DefaultSettings returns the settings used for anything not configured
func DefaultSettings() Settings {
	return Settings{
		ExtensionID:   "tabkeys@studiowebux",
		ControllerURL: "ws://127.0.0.1:7788/ws",
		ListenAddr:    "127.0.0.1:7788",
		Store:         "file",
		ReleaseDelay:  150 * time.Millisecond,
		LogLevel:      "info",
	}
}

// Initialize sets up the configuration directories and files
// It creates ~/.tabkeys/ if it doesn't exist
func Initialize() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	return InitializeAt(filepath.Join(homeDir, ".tabkeys"))
}

// InitializeAt is Initialize rooted at dir
func InitializeAt(dir string) error {
	// Set global paths
	ConfigDir = dir
	SettingsFile = filepath.Join(ConfigDir, "config.yaml")
	HotkeysFile = filepath.Join(ConfigDir, "hotkeys.yaml")
	DatabasePath = filepath.Join(ConfigDir, "tabkeys.db")
	GroupsFile = filepath.Join(ConfigDir, "groups.yaml")
	LogFile = filepath.Join(ConfigDir, "tabkeys.log")

	if err := os.MkdirAll(ConfigDir, DirPermissions); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", ConfigDir, err)
	}

	// Create default settings file if it doesn't exist
	if _, err := os.Stat(SettingsFile); os.IsNotExist(err) {
		data, err := yaml.Marshal(DefaultSettings())
		if err != nil {
			return fmt.Errorf("failed to encode default settings: %w", err)
		}
		if err := os.WriteFile(SettingsFile, data, FilePermissions); err != nil {
			return fmt.Errorf("failed to create settings file: %w", err)
		}
	}

	return nil
}

// GetSettingsFilePath returns the settings file path (local or global)
func GetSettingsFilePath() string {
	if _, err := os.Stat(localSettingsFile); err == nil {
		return localSettingsFile
	}
	return SettingsFile
}

// LoadSettings reads the settings file at path over the defaults. A
// missing file yields the defaults.
func LoadSettings(path string) (Settings, error) {
	settings := DefaultSettings()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return settings, nil
	}
	if err != nil {
		return settings, fmt.Errorf("failed to read settings: %w", err)
	}

	if err := yaml.Unmarshal(data, &settings); err != nil {
		return settings, fmt.Errorf("failed to parse settings %s: %w", path, err)
	}

	if settings.Store != "file" && settings.Store != "sqlite" {
		return settings, fmt.Errorf("invalid store %q in %s: want file or sqlite", settings.Store, path)
	}
	if settings.ReleaseDelay <= 0 {
		settings.ReleaseDelay = DefaultSettings().ReleaseDelay
	}

	return settings, nil
}

// ResolvedStorePath returns where the configured hotkeys backend lives
func (s Settings) ResolvedStorePath() (string, error) {
	if s.StorePath != "" {
		return ExpandPath(s.StorePath)
	}
	if s.Store == "sqlite" {
		return DatabasePath, nil
	}
	return HotkeysFile, nil
}

// ResolvedGroupsFile returns the controller's groups file
func (s Settings) ResolvedGroupsFile() (string, error) {
	if s.GroupsFile != "" {
		return ExpandPath(s.GroupsFile)
	}
	return GroupsFile, nil
}

// ExpandPath expands a leading ~/ and resolves relative paths against the
// config directory
func ExpandPath(path string) (string, error) {
	// Expand tilde to home directory
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	// If it's an absolute path, use it directly
	if filepath.IsAbs(path) {
		return path, nil
	}

	// Otherwise, it's relative to config directory
	return filepath.Join(ConfigDir, path), nil
}
