package presenter

import (
	"fmt"
	"strings"

	"github.com/muurk/brlreview/internal/flatreview"
	"github.com/muurk/brlreview/internal/logging"
	"github.com/muurk/brlreview/internal/speech"
	"go.uber.org/zap"
)

// AllLines returns the text of every line of the window.
func (p *Presenter) AllLines() []string {
	lines := p.Context().Lines()
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, "\n")
	}
	return lines
}

// SayAll speaks every line of the window that is not white space. The
// review cursor does not move.
func (p *Presenter) SayAll() {
	for _, line := range p.AllLines() {
		if line == "" || speech.IsSpace(line) {
			continue
		}
		p.speak(line)
	}
}

// ShowContents returns the whole window as text, one line per row.
func (p *Presenter) ShowContents() string {
	logging.Debug("Showing flat review contents")
	return strings.Join(p.AllLines(), "\n")
}

// CopyToClipboard replaces the clipboard with the text presented last.
func (p *Presenter) CopyToClipboard() error {
	if !p.IsActive() {
		p.message(MsgNotIn)
		return nil
	}
	if err := p.opts.Clipboard.WriteAll(strings.TrimRight(p.contents, "\n")); err != nil {
		return fmt.Errorf("failed to copy to clipboard: %w", err)
	}
	p.message(MsgCopied)
	return nil
}

// AppendToClipboard adds the text presented last to the clipboard,
// separated from what was there by a space.
func (p *Presenter) AppendToClipboard() error {
	if !p.IsActive() {
		p.message(MsgNotIn)
		return nil
	}
	existing, err := p.opts.Clipboard.ReadAll()
	if err != nil {
		return fmt.Errorf("failed to read clipboard: %w", err)
	}
	text := strings.TrimRight(p.contents, "\n")
	if existing != "" {
		text = existing + " " + text
	}
	if err := p.opts.Clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("failed to append to clipboard: %w", err)
	}
	p.message(MsgAppended)
	return nil
}

// Find searches the window and presents the line of the match.
func (p *Presenter) Find(q flatreview.Query) (bool, error) {
	loc, found, err := p.finder.Find(p.Context(), q)
	return p.found(loc, found, err)
}

// FindNext repeats the last search forwards.
func (p *Presenter) FindNext() (bool, error) {
	loc, found, err := p.finder.FindNext(p.Context())
	return p.found(loc, found, err)
}

// FindPrevious repeats the last search backwards.
func (p *Presenter) FindPrevious() (bool, error) {
	loc, found, err := p.finder.FindPrevious(p.Context())
	return p.found(loc, found, err)
}

func (p *Presenter) found(loc flatreview.Location, found bool, err error) (bool, error) {
	if err != nil {
		return false, err
	}
	if !found {
		p.message(MsgNotFound)
		return false, nil
	}
	logging.Debug("Flat review search matched",
		zap.Int("line", loc.Line),
		zap.Int("zone", loc.Zone),
		zap.Int("word", loc.Word),
	)
	p.presentLine(false, itemSpeak, 0)
	p.target = p.cursorCell()
	return true, nil
}
