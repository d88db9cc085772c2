// Package presenter implements flat review as a screen reader mode.
//
// A Presenter builds a flatreview.Context for the current window on first
// use and turns review commands into speech through a speech.Speaker and
// into braille through a braille.Engine. Commands from the keyboard speak
// what the cursor lands on; commands from the display, handled by
// HandleBrailleKey, only update the braille line.
//
// The text presented last can be copied or appended to the clipboard, the
// window can be searched with Find, and review can be restricted to the
// object of interest with ToggleRestrict.
package presenter
