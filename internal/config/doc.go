// Package config provides user configuration management for brlreview.
//
// Settings are read with viper from a YAML file, with defaults for every
// key and BRLREVIEW_* environment overrides. Nested keys use underscores in
// the environment: braille.word_wrap is BRLREVIEW_BRAILLE_WORD_WRAP.
//
// # Configuration File Location
//
// The configuration file is stored in platform-appropriate locations:
//   - Linux: $XDG_CONFIG_HOME/brlreview/config.yaml or $HOME/.config/brlreview/config.yaml
//   - macOS: $HOME/.config/brlreview/config.yaml
//   - Windows: %LOCALAPPDATA%\brlreview\config.yaml
//
// # Usage Example
//
//	store, err := config.Open(configPath)
//	if err != nil {
//	    return err
//	}
//	store.Watch()
//
//	engine := braille.NewEngine(braille.Options{
//	    Loop:     loop,
//	    Settings: store,
//	})
//
// # Thread Safety
//
// A Store may be read from any goroutine; Watch updates it from viper's
// watcher goroutine. Save writes atomically through a temporary file.
package config
