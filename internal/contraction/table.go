package contraction

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"
)

// Table is a contraction table: whole-word signs, in-word letter groups
// and the capital and number prefixes.
type Table struct {
	Name        string            `yaml:"name"`
	Description string            `yaml:"description,omitempty"`
	CapitalSign string            `yaml:"capital_sign,omitempty"`
	NumberSign  string            `yaml:"number_sign,omitempty"`
	Words       map[string]string `yaml:"words,omitempty"`
	Groups      map[string]string `yaml:"groups,omitempty"`

	// groupKeys holds Groups keys as runes, longest first.
	groupKeys [][]rune
}

// ParseTable decodes a YAML table.
func ParseTable(data []byte) (*Table, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse contraction table: %w", err)
	}
	if err := t.compile(); err != nil {
		return nil, err
	}
	return &t, nil
}

func (t *Table) compile() error {
	if t.Name == "" {
		return fmt.Errorf("contraction table has no name")
	}

	words := make(map[string]string, len(t.Words))
	for k, v := range t.Words {
		if !isWord(k) || v == "" {
			return fmt.Errorf("table %s: invalid word entry %q", t.Name, k)
		}
		words[strings.ToLower(k)] = v
	}
	t.Words = words

	groups := make(map[string]string, len(t.Groups))
	t.groupKeys = t.groupKeys[:0]
	for k, v := range t.Groups {
		if !isWord(k) || v == "" {
			return fmt.Errorf("table %s: invalid group entry %q", t.Name, k)
		}
		k = strings.ToLower(k)
		groups[k] = v
		t.groupKeys = append(t.groupKeys, []rune(k))
	}
	t.Groups = groups
	sort.Slice(t.groupKeys, func(i, j int) bool {
		a, b := t.groupKeys[i], t.groupKeys[j]
		if len(a) != len(b) {
			return len(a) > len(b)
		}
		return string(a) < string(b)
	})
	return nil
}

func isWord(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// matchGroup returns the length and sign of the longest group starting at
// runes[i], or 0 when none matches.
func (t *Table) matchGroup(runes []rune, i int) (int, string) {
	for _, key := range t.groupKeys {
		if i+len(key) > len(runes) {
			continue
		}
		matched := true
		for k, r := range key {
			if unicode.ToLower(runes[i+k]) != r {
				matched = false
				break
			}
		}
		if matched {
			return len(key), t.Groups[string(key)]
		}
	}
	return 0, ""
}

// output accumulates contracted text and its offset maps.
type output struct {
	text   []rune
	inPos  []int
	outPos []int
}

func (o *output) emit(s string, src int) {
	for _, r := range s {
		o.text = append(o.text, r)
		o.outPos = append(o.outPos, src)
	}
}

// mark maps the expanded offsets [start, end) to the next output cell.
func (o *output) mark(start, end int) {
	for k := start; k < end; k++ {
		o.inPos[k] = len(o.text)
	}
}

var digitSigns = map[rune]string{
	'1': "a", '2': "b", '3': "c", '4': "d", '5': "e",
	'6': "f", '7': "g", '8': "h", '9': "i", '0': "j",
}

// contract translates runes with the table.
func (t *Table) contract(runes []rune) output {
	o := output{inPos: make([]int, len(runes))}
	n := len(runes)

	capital := func(r rune, src int) {
		if t.CapitalSign != "" && unicode.IsUpper(r) {
			o.emit(t.CapitalSign, src)
		}
	}

	for i := 0; i < n; {
		r := runes[i]

		if unicode.IsLetter(r) && (i == 0 || !unicode.IsLetter(runes[i-1])) {
			j := i
			for j < n && unicode.IsLetter(runes[j]) {
				j++
			}
			if sign, ok := t.Words[strings.ToLower(string(runes[i:j]))]; ok {
				o.mark(i, j)
				capital(r, i)
				o.emit(sign, i)
				i = j
				continue
			}
		}

		if sign, ok := digitSigns[r]; ok && t.NumberSign != "" {
			o.mark(i, i+1)
			if i == 0 || !unicode.IsDigit(runes[i-1]) {
				o.emit(t.NumberSign, i)
			}
			o.emit(sign, i)
			i++
			continue
		}

		if unicode.IsLetter(r) {
			if size, sign := t.matchGroup(runes, i); size > 0 {
				o.mark(i, i+size)
				capital(r, i)
				o.emit(sign, i)
				i += size
				continue
			}
			o.mark(i, i+1)
			capital(r, i)
			if t.CapitalSign != "" {
				r = unicode.ToLower(r)
			}
			o.emit(string(r), i)
			i++
			continue
		}

		o.mark(i, i+1)
		o.emit(string(r), i)
		i++
	}
	return o
}
