package contraction

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/muurk/brlreview/internal/braille"
	"github.com/muurk/brlreview/internal/logging"
	"go.uber.org/zap"
)

//go:embed tables/*.yaml
var embedded embed.FS

// ErrUnknownTable is returned when a translation names a table that is not
// loaded.
var ErrUnknownTable = errors.New("unknown contraction table")

// TableTranslator implements braille.Translator over a set of Tables. It is
// safe for concurrent use.
type TableTranslator struct {
	mu     sync.RWMutex
	tables map[string]*Table
}

var _ braille.Translator = (*TableTranslator)(nil)

// New returns a translator holding the built-in tables.
func New() (*TableTranslator, error) {
	t := &TableTranslator{tables: make(map[string]*Table)}

	entries, err := embedded.ReadDir("tables")
	if err != nil {
		return nil, fmt.Errorf("failed to list built-in tables: %w", err)
	}
	for _, entry := range entries {
		data, err := embedded.ReadFile("tables/" + entry.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read built-in table %s: %w", entry.Name(), err)
		}
		table, err := ParseTable(data)
		if err != nil {
			return nil, fmt.Errorf("built-in table %s: %w", entry.Name(), err)
		}
		t.Register(table)
	}
	return t, nil
}

// Register adds or replaces a table.
func (t *TableTranslator) Register(table *Table) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tables[table.Name] = table
}

// LoadDir registers every *.yaml table in dir. Tables with the name of a
// built-in table replace it.
func (t *TableTranslator) LoadDir(dir string) error {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return fmt.Errorf("failed to list tables in %s: %w", dir, err)
	}
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read table: %w", err)
		}
		table, err := ParseTable(data)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		t.Register(table)
		logging.Debug("Loaded contraction table",
			zap.String("name", table.Name),
			zap.String("path", path),
		)
	}
	return nil
}

// Tables returns the names of the loaded tables, sorted.
func (t *TableTranslator) Tables() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	names := make([]string, 0, len(t.tables))
	for name := range t.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Table returns the named table.
func (t *TableTranslator) Table(name string) (*Table, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	table, ok := t.tables[name]
	return table, ok
}

// Translate contracts text with the named table. cursor is an offset into
// text or -1; the returned Cursor is its contracted offset.
func (t *TableTranslator) Translate(table, text string, cursor int) (braille.Translation, error) {
	tbl, ok := t.Table(table)
	if !ok {
		return braille.Translation{}, fmt.Errorf("%w %q", ErrUnknownTable, table)
	}

	runes := []rune(text)
	o := tbl.contract(runes)

	tr := braille.Translation{
		Text:   string(o.text),
		InPos:  o.inPos,
		OutPos: o.outPos,
		Cursor: -1,
	}
	switch {
	case cursor >= 0 && cursor < len(runes):
		tr.Cursor = o.inPos[cursor]
	case cursor == len(runes):
		tr.Cursor = len(o.text)
	}
	return tr, nil
}

// Expand returns the expanded text behind the contracted cells
// [start, end) of tr, given the text it was translated from.
func Expand(text string, tr braille.Translation, start, end int) string {
	runes := []rune(text)
	if start < 0 || start >= end || start >= len(tr.OutPos) {
		return ""
	}
	from := tr.OutPos[start]
	to := len(runes)
	if end < len(tr.OutPos) {
		to = tr.OutPos[end]
	}
	if to < from {
		return ""
	}
	return string(runes[from:to])
}
