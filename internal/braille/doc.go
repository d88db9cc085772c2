// Package braille renders lines of regions onto a refreshable braille
// display.
//
// A Region is a piece of text with a cursor and an attribute mask; a Line
// is a row of regions. The Engine keeps the displayed lines, the focused
// region and the viewport, pans across lines wider than the display, and
// shows flash messages.
//
// The display itself is reached through a Device. The Engine never calls a
// Device from the loop: connection attempts run on their own goroutine and
// every other call goes through a single worker goroutine, with results
// posted back to the loop. Each connection gets a session token, so
// results from a torn-down connection are discarded. Lost connections are
// retried with exponential backoff.
package braille
