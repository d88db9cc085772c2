package speech

import (
	"fmt"
	"unicode/utf8"
)

var characterNames = map[rune]string{
	' ':      "space",
	'\t':     "tab",
	'\n':     "newline",
	' ': "no break space",
	'￼': "object",
	'.':      "dot",
	',':      "comma",
	':':      "colon",
	';':      "semicolon",
	'!':      "exclaim",
	'?':      "question",
	'-':      "dash",
	'_':      "underline",
	'/':      "slash",
	'\\':     "backslash",
	'(':      "left paren",
	')':      "right paren",
	'[':      "left bracket",
	']':      "right bracket",
	'{':      "left brace",
	'}':      "right brace",
	'<':      "less",
	'>':      "greater",
	'@':      "at",
	'#':      "pound",
	'$':      "dollar",
	'%':      "percent",
	'&':      "and",
	'*':      "star",
	'+':      "plus",
	'=':      "equals",
	'"':      "quote",
	'\'':     "apostrophe",
	'|':      "vertical line",
	'~':      "tilde",
	'`':      "grave",
	'^':      "caret",
}

// CharacterName returns the spoken name of a single character, or the
// character itself when it has no special name.
func CharacterName(ch string) string {
	r, size := utf8.DecodeRuneInString(ch)
	if size == 0 || size != len(ch) {
		return ch
	}
	if name, ok := characterNames[r]; ok {
		return name
	}
	return ch
}

// UnicodeName returns the code point of a single character, e.g. "U+0041".
func UnicodeName(ch string) string {
	r, size := utf8.DecodeRuneInString(ch)
	if size == 0 {
		return ""
	}
	return fmt.Sprintf("U+%04X", r)
}
