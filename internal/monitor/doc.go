// Package monitor renders braille cells in the terminal.
//
// Render and Plain draw a Snapshot: the cells of one display row with the
// cursor cell and cells carrying dot 7 or dot 8 highlighted. Model wraps
// them in a Bubble Tea program that also emulates display keys, so a
// virtual display can be read and operated from a terminal.
package monitor
