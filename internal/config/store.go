package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/muurk/brlreview/internal/braille"
	"github.com/muurk/brlreview/internal/logging"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Store holds the current settings. It implements braille.SettingsSource so
// the engine picks up changes on its next refresh.
type Store struct {
	mu       sync.RWMutex
	settings Settings
	v        *viper.Viper
	onChange []func(Settings)

	// Mutex for file operations
	fileMu sync.Mutex
}

var _ braille.SettingsSource = (*Store)(nil)

// NewStore returns a store holding s that is not backed by a file.
func NewStore(s *Settings) *Store {
	if s == nil {
		s = Default()
	}
	return &Store{settings: *s}
}

// Open loads settings like Load and keeps the file for Reload and Watch.
func Open(path string) (*Store, error) {
	v := newViper()
	if err := readConfig(v, path); err != nil {
		return nil, err
	}
	s, err := decode(v)
	if err != nil {
		return nil, err
	}
	logging.Debug("Loaded settings", zap.String("file", v.ConfigFileUsed()))
	return &Store{settings: *s, v: v}, nil
}

// Path returns the file the settings were read from, or "" when none was.
func (s *Store) Path() string {
	if s.v == nil {
		return ""
	}
	return s.v.ConfigFileUsed()
}

// Settings returns a copy of the current settings.
func (s *Store) Settings() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// BrailleSettings implements braille.SettingsSource. Settings that fail to
// parse were rejected on load, so the defaults are only a fallback for
// values set through Update.
func (s *Store) BrailleSettings() braille.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, err := s.settings.Braille.ToBraille()
	if err != nil {
		logging.Warn("Invalid braille settings, using defaults", zap.Error(err))
		return braille.DefaultSettings()
	}
	return b
}

// OnChange registers fn to run after the settings change.
func (s *Store) OnChange(fn func(Settings)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = append(s.onChange, fn)
}

// Update changes the settings in memory.
func (s *Store) Update(fn func(*Settings)) {
	s.mu.Lock()
	fn(&s.settings)
	current := s.settings
	callbacks := append([]func(Settings){}, s.onChange...)
	s.mu.Unlock()

	for _, cb := range callbacks {
		cb(current)
	}
}

// Reload reads the file again. Invalid files leave the settings unchanged.
func (s *Store) Reload() error {
	if s.v == nil || s.v.ConfigFileUsed() == "" {
		return nil
	}
	if err := s.v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to reload config file: %w", err)
	}
	loaded, err := decode(s.v)
	if err != nil {
		return err
	}
	s.Update(func(current *Settings) { *current = *loaded })
	return nil
}

// Watch reloads the settings whenever the file changes.
func (s *Store) Watch() {
	if s.v == nil || s.v.ConfigFileUsed() == "" {
		return
	}
	s.v.OnConfigChange(func(e fsnotify.Event) {
		if err := s.Reload(); err != nil {
			logging.Warn("Ignoring invalid config change", zap.String("file", e.Name), zap.Error(err))
			return
		}
		logging.Info("Reloaded settings", zap.String("file", e.Name))
	})
	s.v.WatchConfig()
}

// Save writes the settings to path, or to the default config file when path
// is empty. Performs an atomic write to prevent corruption on crash.
func (s *Store) Save(path string) error {
	s.fileMu.Lock()
	defer s.fileMu.Unlock()

	if path == "" {
		var err error
		if path, err = GetConfigPath(); err != nil {
			return fmt.Errorf("failed to get config path: %w", err)
		}
	}
	// Create directory with user-only permissions (0700)
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	settings := s.Settings()
	data, err := yaml.Marshal(&settings)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# brlreview configuration file
# Every key can be overridden from the environment, e.g.
# BRLREVIEW_BRAILLE_WORD_WRAP=true
#
# Location: ` + path + `

`)
	data = append(header, data...)

	// Write to temporary file first (atomic write)
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temporary config file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save config file: %w", err)
	}
	return nil
}
