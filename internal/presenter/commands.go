package presenter

import (
	"sort"

	"github.com/muurk/brlreview/internal/braille"
)

// Command is a named flat review command, as bound to keys by front ends
// and run by name from scripts.
type Command struct {
	Name        string
	Description string
	Run         func(p *Presenter) error
}

func move(fn func(*Presenter) bool) func(*Presenter) error {
	return func(p *Presenter) error {
		fn(p)
		return nil
	}
}

func present(fn func(*Presenter)) func(*Presenter) error {
	return func(p *Presenter) error {
		fn(p)
		return nil
	}
}

func search(fn func(*Presenter) (bool, error)) func(*Presenter) error {
	return func(p *Presenter) error {
		_, err := fn(p)
		return err
	}
}

func displayKey(c braille.KeyCommand) func(*Presenter) error {
	return func(p *Presenter) error {
		p.HandleBrailleKey(braille.Key{Command: c})
		return nil
	}
}

var commands = map[string]Command{}

func register(name, description string, run func(*Presenter) error) {
	commands[name] = Command{Name: name, Description: description, Run: run}
}

func init() {
	register("toggle", "Enter or leave flat review", present((*Presenter).Toggle))
	register("start", "Enter flat review", present((*Presenter).Start))
	register("quit", "Leave flat review", present((*Presenter).Quit))
	register("restrict", "Toggle restricting review to the object of interest", present((*Presenter).ToggleRestrict))

	register("home", "Go to the top left of the window", move((*Presenter).GoHome))
	register("end", "Go to the bottom right of the window", move((*Presenter).GoEnd))
	register("bottom-left", "Go to the start of the last line", move((*Presenter).GoBottomLeft))
	register("previous-line", "Go to the previous line", move((*Presenter).PreviousLine))
	register("next-line", "Go to the next line", move((*Presenter).NextLine))
	register("line-start", "Go to the start of the line", move((*Presenter).StartOfLine))
	register("line-end", "Go to the end of the line", move((*Presenter).EndOfLine))
	register("previous-item", "Go to the previous word", move((*Presenter).PreviousItem))
	register("next-item", "Go to the next word", move((*Presenter).NextItem))
	register("previous-character", "Go to the previous character", move((*Presenter).PreviousCharacter))
	register("next-character", "Go to the next character", move((*Presenter).NextCharacter))
	register("above", "Go to the character above", move((*Presenter).GoAbove))
	register("below", "Go to the character below", move((*Presenter).GoBelow))
	register("activate", "Activate the object under the review cursor", move((*Presenter).Activate))

	register("line", "Speak the line", present((*Presenter).PresentLine))
	register("spell-line", "Spell the line", present((*Presenter).SpellLine))
	register("phonetic-line", "Spell the line phonetically", present((*Presenter).PhoneticLine))
	register("item", "Speak the word", present((*Presenter).PresentItem))
	register("spell-item", "Spell the word", present((*Presenter).SpellItem))
	register("phonetic-item", "Spell the word phonetically", present((*Presenter).PhoneticItem))
	register("character", "Speak the character", present((*Presenter).PresentCharacter))
	register("spell-character", "Speak the character phonetically", present((*Presenter).SpellCharacter))
	register("unicode", "Speak the character's Unicode value", present((*Presenter).UnicodeCharacter))
	register("object", "Speak the object under the review cursor", present((*Presenter).PresentObject))
	register("say-all", "Speak every line of the window", present((*Presenter).SayAll))

	register("copy", "Copy what was last presented to the clipboard", (*Presenter).CopyToClipboard)
	register("append", "Append what was last presented to the clipboard", (*Presenter).AppendToClipboard)
	register("find-next", "Repeat the last search forwards", search((*Presenter).FindNext))
	register("find-previous", "Repeat the last search backwards", search((*Presenter).FindPrevious))

	register("pan-left", "Pan the braille display left", displayKey(braille.KeyPanLeft))
	register("pan-right", "Pan the braille display right", displayKey(braille.KeyPanRight))
}

// LookupCommand returns the command called name.
func LookupCommand(name string) (Command, bool) {
	c, ok := commands[name]
	return c, ok
}

// Commands returns every command sorted by name.
func Commands() []Command {
	list := make([]Command, 0, len(commands))
	for _, c := range commands {
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list
}
