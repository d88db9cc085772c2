package config

import (
	"fmt"
	"time"

	"github.com/muurk/brlreview/internal/braille"
	"github.com/muurk/brlreview/internal/discovery"
	"github.com/muurk/brlreview/internal/flatreview"
	"github.com/muurk/brlreview/internal/remote"
)

// CurrentVersion is the settings file format version.
const CurrentVersion = 1

// Settings is the whole configuration file.
type Settings struct {
	Version    int                `yaml:"version" mapstructure:"version"`
	Braille    BrailleSettings    `yaml:"braille" mapstructure:"braille"`
	FlatReview FlatReviewSettings `yaml:"flat_review" mapstructure:"flat_review"`
	Display    DisplaySettings    `yaml:"display" mapstructure:"display"`
	Logging    LoggingSettings    `yaml:"logging" mapstructure:"logging"`
}

// BrailleSettings mirrors braille.Settings with indicators spelled out.
type BrailleSettings struct {
	Enabled            bool          `yaml:"enabled" mapstructure:"enabled"`
	WordWrap           bool          `yaml:"word_wrap" mapstructure:"word_wrap"`
	Contracted         bool          `yaml:"contracted" mapstructure:"contracted"`
	ContractionTable   string        `yaml:"contraction_table" mapstructure:"contraction_table"`
	LinkIndicator      string        `yaml:"link_indicator" mapstructure:"link_indicator"`
	AttributeIndicator string        `yaml:"attribute_indicator" mapstructure:"attribute_indicator"`
	SelectionIndicator string        `yaml:"selection_indicator" mapstructure:"selection_indicator"`
	EndOfLineIndicator bool          `yaml:"end_of_line_indicator" mapstructure:"end_of_line_indicator"`
	FlashMessages      bool          `yaml:"flash_messages" mapstructure:"flash_messages"`
	FlashDuration      time.Duration `yaml:"flash_duration" mapstructure:"flash_duration"`
	FlashPersistent    bool          `yaml:"flash_persistent" mapstructure:"flash_persistent"`
}

// FlatReviewSettings configures the review context and presenter.
type FlatReviewSettings struct {
	PixelDelta int  `yaml:"pixel_delta" mapstructure:"pixel_delta"`
	WrapLines  bool `yaml:"wrap_lines" mapstructure:"wrap_lines"`
	Brief      bool `yaml:"brief" mapstructure:"brief"`
}

// DisplaySettings configures the virtual braille display, both the client
// side used by brlreview and the server side of brlreview-display.
type DisplaySettings struct {
	// URL of the display. Empty means discover one over mDNS.
	URL             string        `yaml:"url" mapstructure:"url"`
	ClientName      string        `yaml:"client_name" mapstructure:"client_name"`
	DiscoverTimeout time.Duration `yaml:"discover_timeout" mapstructure:"discover_timeout"`

	Listen    string `yaml:"listen" mapstructure:"listen"`
	Width     int    `yaml:"width" mapstructure:"width"`
	Advertise bool   `yaml:"advertise" mapstructure:"advertise"`
	CertFile  string `yaml:"cert_file" mapstructure:"cert_file"`
	KeyFile   string `yaml:"key_file" mapstructure:"key_file"`
}

// LoggingSettings configures internal/logging.
type LoggingSettings struct {
	Level string `yaml:"level" mapstructure:"level"`
	// File receives the log of the terminal UIs.
	File string `yaml:"file" mapstructure:"file"`
}

// Default returns the settings used when nothing is configured.
func Default() *Settings {
	b := braille.DefaultSettings()
	return &Settings{
		Version: CurrentVersion,
		Braille: BrailleSettings{
			Enabled:            b.Enabled,
			WordWrap:           b.WordWrap,
			Contracted:         b.Contracted,
			ContractionTable:   b.ContractionTable,
			LinkIndicator:      b.LinkIndicator.String(),
			AttributeIndicator: b.AttributeIndicator.String(),
			SelectionIndicator: b.SelectionIndicator.String(),
			EndOfLineIndicator: b.EndOfLineIndicator,
			FlashMessages:      b.FlashMessages,
			FlashDuration:      b.FlashDuration,
			FlashPersistent:    b.FlashPersistent,
		},
		FlatReview: FlatReviewSettings{
			PixelDelta: flatreview.DefaultPixelDelta,
		},
		Display: DisplaySettings{
			ClientName:      appName,
			DiscoverTimeout: discovery.DefaultScanTimeout,
			Listen:          ":8040",
			Width:           remote.DefaultWidth,
			Advertise:       true,
		},
		Logging: LoggingSettings{
			File: "/tmp/brlreview.log",
		},
	}
}

// Validate checks values that cannot be used as they are.
func (s *Settings) Validate() error {
	if s.Version != CurrentVersion {
		return fmt.Errorf("unsupported config version: %d (expected %d)", s.Version, CurrentVersion)
	}
	if _, err := s.Braille.ToBraille(); err != nil {
		return err
	}
	if s.FlatReview.PixelDelta < 0 {
		return fmt.Errorf("flat_review.pixel_delta must not be negative, got %d", s.FlatReview.PixelDelta)
	}
	if s.Display.Width < 0 {
		return fmt.Errorf("display.width must not be negative, got %d", s.Display.Width)
	}
	return nil
}

// ToBraille converts to braille.Settings.
func (b BrailleSettings) ToBraille() (braille.Settings, error) {
	link, err := braille.ParseIndicator(b.LinkIndicator)
	if err != nil {
		return braille.Settings{}, fmt.Errorf("braille.link_indicator: %w", err)
	}
	attr, err := braille.ParseIndicator(b.AttributeIndicator)
	if err != nil {
		return braille.Settings{}, fmt.Errorf("braille.attribute_indicator: %w", err)
	}
	sel, err := braille.ParseIndicator(b.SelectionIndicator)
	if err != nil {
		return braille.Settings{}, fmt.Errorf("braille.selection_indicator: %w", err)
	}
	return braille.Settings{
		Enabled:            b.Enabled,
		WordWrap:           b.WordWrap,
		Contracted:         b.Contracted,
		ContractionTable:   b.ContractionTable,
		LinkIndicator:      link,
		AttributeIndicator: attr,
		SelectionIndicator: sel,
		EndOfLineIndicator: b.EndOfLineIndicator,
		FlashMessages:      b.FlashMessages,
		FlashDuration:      b.FlashDuration,
		FlashPersistent:    b.FlashPersistent,
	}, nil
}
