package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides: braille.word_wrap is read from
// BRLREVIEW_BRAILLE_WORD_WRAP.
const EnvPrefix = "BRLREVIEW"

// newViper returns a viper instance with every default registered, so that
// environment overrides apply to keys missing from the file.
func newViper() *viper.Viper {
	v := viper.New()
	d := Default()

	v.SetDefault("version", d.Version)

	v.SetDefault("braille.enabled", d.Braille.Enabled)
	v.SetDefault("braille.word_wrap", d.Braille.WordWrap)
	v.SetDefault("braille.contracted", d.Braille.Contracted)
	v.SetDefault("braille.contraction_table", d.Braille.ContractionTable)
	v.SetDefault("braille.link_indicator", d.Braille.LinkIndicator)
	v.SetDefault("braille.attribute_indicator", d.Braille.AttributeIndicator)
	v.SetDefault("braille.selection_indicator", d.Braille.SelectionIndicator)
	v.SetDefault("braille.end_of_line_indicator", d.Braille.EndOfLineIndicator)
	v.SetDefault("braille.flash_messages", d.Braille.FlashMessages)
	v.SetDefault("braille.flash_duration", d.Braille.FlashDuration)
	v.SetDefault("braille.flash_persistent", d.Braille.FlashPersistent)

	v.SetDefault("flat_review.pixel_delta", d.FlatReview.PixelDelta)
	v.SetDefault("flat_review.wrap_lines", d.FlatReview.WrapLines)
	v.SetDefault("flat_review.brief", d.FlatReview.Brief)

	v.SetDefault("display.url", d.Display.URL)
	v.SetDefault("display.client_name", d.Display.ClientName)
	v.SetDefault("display.discover_timeout", d.Display.DiscoverTimeout)
	v.SetDefault("display.listen", d.Display.Listen)
	v.SetDefault("display.width", d.Display.Width)
	v.SetDefault("display.advertise", d.Display.Advertise)
	v.SetDefault("display.cert_file", d.Display.CertFile)
	v.SetDefault("display.key_file", d.Display.KeyFile)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.file", d.Logging.File)

	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// readConfig points v at path, or at config.yaml in the config directory
// when path is empty, and reads it. A missing default file is not an error.
func readConfig(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		return nil
	}

	dir, err := GetConfigDir()
	if err != nil {
		return fmt.Errorf("failed to get config directory: %w", err)
	}
	v.AddConfigPath(dir)
	v.SetConfigName(configName)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

func decode(v *viper.Viper) (*Settings, error) {
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Load reads settings from path, or from the default config file when path
// is empty, applying defaults and BRLREVIEW_* environment overrides.
func Load(path string) (*Settings, error) {
	v := newViper()
	if err := readConfig(v, path); err != nil {
		return nil, err
	}
	return decode(v)
}
