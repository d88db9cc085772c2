package speech

import (
	"fmt"
	"io"
	"sync"

	"github.com/muurk/brlreview/internal/logging"
	"go.uber.org/zap"
)

// LogSpeaker logs every utterance and optionally prints it to Out.
type LogSpeaker struct {
	mu  sync.Mutex
	Out io.Writer
}

// NewLogSpeaker returns a LogSpeaker printing to out, which may be nil.
func NewLogSpeaker(out io.Writer) *LogSpeaker {
	return &LogSpeaker{Out: out}
}

// Speak implements Speaker.
func (s *LogSpeaker) Speak(text string, voice Voice) {
	logging.Info("Speech", zap.String("text", text), zap.String("voice", string(voice)))

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Out == nil {
		return
	}
	if voice == VoiceDefault {
		_, _ = fmt.Fprintln(s.Out, text)
		return
	}
	_, _ = fmt.Fprintf(s.Out, "[%s] %s\n", voice, text)
}
