package braille

import (
	"fmt"
	"strings"
	"time"
)

// Indicator is the dot pattern OR-ed into a cell to mark it.
type Indicator byte

const (
	IndicatorNone   Indicator = 0x00
	IndicatorDot7   Indicator = 0x40
	IndicatorDot8   Indicator = 0x80
	IndicatorDots78 Indicator = 0xC0
)

// String returns the indicator name used in configuration files.
func (i Indicator) String() string {
	switch i {
	case IndicatorNone:
		return "none"
	case IndicatorDot7:
		return "dot7"
	case IndicatorDot8:
		return "dot8"
	case IndicatorDots78:
		return "dots78"
	default:
		return fmt.Sprintf("Indicator(0x%02x)", byte(i))
	}
}

// ParseIndicator converts a configuration name to an Indicator.
func ParseIndicator(name string) (Indicator, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "none":
		return IndicatorNone, nil
	case "dot7":
		return IndicatorDot7, nil
	case "dot8":
		return IndicatorDot8, nil
	case "dots78":
		return IndicatorDots78, nil
	default:
		return IndicatorNone, fmt.Errorf("unknown indicator %q (want none, dot7, dot8 or dots78)", name)
	}
}

// Settings is the user-facing braille configuration. It is read through a
// SettingsSource on every refresh so changes apply without a restart.
type Settings struct {
	Enabled            bool
	WordWrap           bool
	Contracted         bool
	ContractionTable   string
	LinkIndicator      Indicator
	AttributeIndicator Indicator
	SelectionIndicator Indicator
	EndOfLineIndicator bool
	FlashMessages      bool
	FlashDuration      time.Duration
	FlashPersistent    bool
}

// DefaultFlashDuration is how long a flash message stays up by default.
const DefaultFlashDuration = 5 * time.Second

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		Enabled:            true,
		WordWrap:           false,
		Contracted:         false,
		ContractionTable:   "en-us-g2",
		LinkIndicator:      IndicatorDots78,
		AttributeIndicator: IndicatorNone,
		SelectionIndicator: IndicatorDots78,
		EndOfLineIndicator: true,
		FlashMessages:      true,
		FlashDuration:      DefaultFlashDuration,
		FlashPersistent:    false,
	}
}

// SettingsSource supplies the current settings.
type SettingsSource interface {
	BrailleSettings() Settings
}

// StaticSettings is a SettingsSource that never changes.
type StaticSettings Settings

// BrailleSettings implements SettingsSource.
func (s StaticSettings) BrailleSettings() Settings {
	return Settings(s)
}

// RenderOptions are the settings that affect how a Region is rendered.
// Line caches are keyed on them.
type RenderOptions struct {
	Contracted         bool
	Table              string
	LinkIndicator      Indicator
	AttributeIndicator Indicator
	SelectionIndicator Indicator
	EndOfLine          bool
}

// RenderOptions extracts the rendering subset of s.
func (s Settings) RenderOptions() RenderOptions {
	return RenderOptions{
		Contracted:         s.Contracted,
		Table:              s.ContractionTable,
		LinkIndicator:      s.LinkIndicator,
		AttributeIndicator: s.AttributeIndicator,
		SelectionIndicator: s.SelectionIndicator,
		EndOfLine:          s.EndOfLineIndicator,
	}
}
