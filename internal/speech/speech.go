package speech

import (
	"unicode"
)

// Voice selects how an utterance is spoken.
type Voice string

const (
	VoiceDefault Voice = "default"
	// VoiceUppercase is used for text that is entirely upper case.
	VoiceUppercase Voice = "uppercase"
	// VoiceSystem is used for messages generated by brlreview itself.
	VoiceSystem Voice = "system"
)

// Speaker is a speech sink.
type Speaker interface {
	Speak(text string, voice Voice)
}

// SpeakerFunc adapts a function to Speaker.
type SpeakerFunc func(text string, voice Voice)

// Speak implements Speaker.
func (f SpeakerFunc) Speak(text string, voice Voice) {
	f(text, voice)
}

// VoiceFor returns the voice for text: upper case when text has letters
// and all of them are upper case.
func VoiceFor(text string) Voice {
	if IsUpper(text) {
		return VoiceUppercase
	}
	return VoiceDefault
}

// IsUpper reports whether text has at least one cased letter and no lower
// case ones.
func IsUpper(text string) bool {
	cased := false
	for _, r := range text {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			cased = true
		}
	}
	return cased
}

// IsSpace reports whether text is non-empty and all white space.
func IsSpace(text string) bool {
	if text == "" {
		return false
	}
	for _, r := range text {
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

// Multi returns a Speaker that speaks through every speaker in order.
func Multi(speakers ...Speaker) Speaker {
	return SpeakerFunc(func(text string, voice Voice) {
		for _, s := range speakers {
			if s != nil {
				s.Speak(text, voice)
			}
		}
	})
}
