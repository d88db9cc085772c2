package presenter

import (
	"strings"

	"github.com/muurk/brlreview/internal/flatreview"
	"github.com/muurk/brlreview/internal/speech"
)

// presentation selects how a unit is spoken.
type presentation int

const (
	itemSpeak presentation = iota
	itemSpell
	itemPhonetic
	itemUnicode
)

// PresentLine speaks the current line and shows it in braille.
func (p *Presenter) PresentLine() {
	p.presentLine(false, itemSpeak, 0)
}

// SpellLine spells the current line.
func (p *Presenter) SpellLine() {
	p.presentLine(false, itemSpell, 0)
}

// PhoneticLine spells the current line phonetically.
func (p *Presenter) PhoneticLine() {
	p.presentLine(false, itemPhonetic, 0)
}

// PresentItem speaks the current word.
func (p *Presenter) PresentItem() {
	p.presentItem(false, itemSpeak, 0)
}

// SpellItem spells the current word.
func (p *Presenter) SpellItem() {
	p.presentItem(false, itemSpell, 0)
}

// PhoneticItem spells the current word phonetically.
func (p *Presenter) PhoneticItem() {
	p.presentItem(false, itemPhonetic, 0)
}

// PresentCharacter speaks the current character.
func (p *Presenter) PresentCharacter() {
	p.presentCharacter(false, itemSpeak, 0)
}

// SpellCharacter speaks the current character phonetically.
func (p *Presenter) SpellCharacter() {
	p.presentCharacter(false, itemPhonetic, 0)
}

// UnicodeCharacter speaks the code point of the current character.
func (p *Presenter) UnicodeCharacter() {
	p.presentCharacter(false, itemUnicode, 0)
}

// PresentObject speaks the role and name of the object under the cursor.
func (p *Presenter) PresentObject() {
	ctx := p.Context()
	obj := ctx.CurrentObject()
	if ctx.IsEmpty() {
		p.message(MsgBlank)
		return
	}
	tree := ctx.Tree()
	text := tree.Role(obj).String()
	if name := tree.Name(obj); name != "" {
		text = name + " " + text
	}
	p.speak(text)
}

func (p *Presenter) spell(text string, how presentation) {
	if how == itemPhonetic {
		for _, ch := range speech.Characters(text) {
			p.opts.Speaker.Speak(speech.Phonetic(ch), speech.VoiceFor(ch))
		}
		return
	}
	for _, ch := range speech.Characters(text) {
		p.opts.Speaker.Speak(speech.CharacterName(ch), speech.VoiceFor(ch))
	}
}

// presentLine presents the current line. quiet skips speech, for commands
// coming from the braille display.
func (p *Presenter) presentLine(quiet bool, how presentation, target int) {
	ctx := p.Context()
	line, _ := ctx.Current(flatreview.UnitLine)
	if !quiet {
		switch {
		case line == "" || line == "\n":
			p.message(MsgBlank)
		case speech.IsSpace(line):
			p.message(MsgWhiteSpace)
		case how == itemSpell || how == itemPhonetic:
			p.spell(line, how)
		default:
			p.speak(line)
		}
	}
	p.updateBraille(target)
	p.contents = line
}

func (p *Presenter) presentItem(quiet bool, how presentation, target int) {
	ctx := p.Context()
	word, _ := ctx.Current(flatreview.UnitWord)
	if !quiet {
		switch {
		case word == "" || word == "\n":
			p.message(MsgBlank)
		case speech.IsSpace(word):
			p.message(MsgWhiteSpace)
		case how == itemSpell || how == itemPhonetic:
			p.spell(word, how)
		default:
			p.speak(strings.TrimRight(word, " "))
		}
	}
	p.updateBraille(target)
	p.contents = word
}

func (p *Presenter) presentCharacter(quiet bool, how presentation, target int) {
	ctx := p.Context()
	ch, _ := ctx.Current(flatreview.UnitChar)
	if !quiet {
		switch {
		case ch == "":
			p.message(MsgBlank)
		case how == itemUnicode:
			p.opts.Speaker.Speak(speech.UnicodeName(ch), speech.VoiceDefault)
		case how == itemPhonetic:
			p.opts.Speaker.Speak(speech.Phonetic(ch), speech.VoiceFor(ch))
		default:
			p.opts.Speaker.Speak(speech.CharacterName(ch), speech.VoiceFor(ch))
		}
	}
	p.updateBraille(target)
	p.contents = ch
}
