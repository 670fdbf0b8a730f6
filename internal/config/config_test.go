package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestInitializeAt(t *testing.T) {
	dir := filepath.Join(t.TempDir(), ".tabkeys")
	if err := InitializeAt(dir); err != nil {
		t.Fatalf("InitializeAt() error = %v", err)
	}

	if SettingsFile != filepath.Join(dir, "config.yaml") {
		t.Errorf("SettingsFile = %q", SettingsFile)
	}
	if DatabasePath != filepath.Join(dir, "tabkeys.db") {
		t.Errorf("DatabasePath = %q", DatabasePath)
	}

	settings, err := LoadSettings(SettingsFile)
	if err != nil {
		t.Fatalf("LoadSettings() error = %v", err)
	}
	if settings != DefaultSettings() {
		t.Errorf("written settings = %+v, want defaults", settings)
	}

	// a second run leaves the user's file alone
	if err := os.WriteFile(SettingsFile, []byte("logLevel: debug\n"), FilePermissions); err != nil {
		t.Fatal(err)
	}
	if err := InitializeAt(dir); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(SettingsFile)
	if string(data) != "logLevel: debug\n" {
		t.Errorf("settings overwritten: %q", data)
	}
}

func TestLoadSettings(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
		check   func(t *testing.T, s Settings)
		wantErr bool
	}{
		{
			name:    "overrides",
			content: "controllerUrl: local\nstore: sqlite\nreleaseDelay: 300ms\n",
			check: func(t *testing.T, s Settings) {
				if s.ControllerURL != LocalController {
					t.Errorf("ControllerURL = %q", s.ControllerURL)
				}
				if s.Store != "sqlite" {
					t.Errorf("Store = %q", s.Store)
				}
				if s.ReleaseDelay != 300*time.Millisecond {
					t.Errorf("ReleaseDelay = %v", s.ReleaseDelay)
				}
				if s.ExtensionID != DefaultSettings().ExtensionID {
					t.Errorf("ExtensionID = %q, want default", s.ExtensionID)
				}
			},
		},
		{
			name:    "non-positive delay falls back",
			content: "releaseDelay: 0s\n",
			check: func(t *testing.T, s Settings) {
				if s.ReleaseDelay != DefaultSettings().ReleaseDelay {
					t.Errorf("ReleaseDelay = %v", s.ReleaseDelay)
				}
			},
		},
		{name: "bad store", content: "store: redis\n", wantErr: true},
		{name: "bad yaml", content: "store: [\n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, strings.ReplaceAll(tt.name, " ", "_")+".yaml")
			if err := os.WriteFile(path, []byte(tt.content), FilePermissions); err != nil {
				t.Fatal(err)
			}

			s, err := LoadSettings(path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("LoadSettings() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.check != nil {
				tt.check(t, s)
			}
		})
	}

	s, err := LoadSettings(filepath.Join(dir, "missing.yaml"))
	if err != nil || s != DefaultSettings() {
		t.Errorf("missing file = %+v, %v", s, err)
	}
}

func TestResolvedPaths(t *testing.T) {
	dir := t.TempDir()
	if err := InitializeAt(dir); err != nil {
		t.Fatal(err)
	}

	s := DefaultSettings()
	if got, _ := s.ResolvedStorePath(); got != HotkeysFile {
		t.Errorf("file store path = %q", got)
	}

	s.Store = "sqlite"
	if got, _ := s.ResolvedStorePath(); got != DatabasePath {
		t.Errorf("sqlite store path = %q", got)
	}

	s.StorePath = "keys.toml"
	if got, _ := s.ResolvedStorePath(); got != filepath.Join(dir, "keys.toml") {
		t.Errorf("relative store path = %q", got)
	}

	s.GroupsFile = "/tmp/groups.yaml"
	if got, _ := s.ResolvedGroupsFile(); got != "/tmp/groups.yaml" {
		t.Errorf("absolute groups path = %q", got)
	}

	home, err := os.UserHomeDir()
	if err == nil {
		if got, _ := ExpandPath("~/x.yaml"); got != filepath.Join(home, "x.yaml") {
			t.Errorf("ExpandPath(~/x.yaml) = %q", got)
		}
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(&buf, "warn")
	if err != nil {
		t.Fatal(err)
	}

	logger.Info("[TEST] hidden")
	logger.Warn("[TEST] shown", "k", 1)
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Errorf("log output = %q", buf.String())
	}

	if _, err := NewLogger(&buf, "loud"); err == nil {
		t.Error("expected error for unknown level")
	}

	lvl, _ := ParseLevel("DEBUG")
	if lvl != slog.LevelDebug {
		t.Errorf("ParseLevel(DEBUG) = %v", lvl)
	}
}
