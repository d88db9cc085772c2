package presenter

import (
	"fmt"

	"github.com/atotto/clipboard"
)

// Clipboard is the system clipboard as seen by the presenter.
type Clipboard interface {
	ReadAll() (string, error)
	WriteAll(text string) error
}

// SystemClipboard uses the desktop clipboard.
type SystemClipboard struct{}

// ReadAll implements Clipboard.
func (SystemClipboard) ReadAll() (string, error) {
	if clipboard.Unsupported {
		return "", fmt.Errorf("no clipboard utility available")
	}
	return clipboard.ReadAll()
}

// WriteAll implements Clipboard.
func (SystemClipboard) WriteAll(text string) error {
	if clipboard.Unsupported {
		return fmt.Errorf("no clipboard utility available")
	}
	return clipboard.WriteAll(text)
}

// MemoryClipboard keeps the clipboard in memory.
type MemoryClipboard struct {
	Text string
}

// ReadAll implements Clipboard.
func (m *MemoryClipboard) ReadAll() (string, error) {
	return m.Text, nil
}

// WriteAll implements Clipboard.
func (m *MemoryClipboard) WriteAll(text string) error {
	m.Text = text
	return nil
}
