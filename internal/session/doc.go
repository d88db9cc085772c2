// Package session runs flat review against one window.
//
// A Session owns the event loop, the braille engine and the presenter. The
// presenter and engine are single-threaded; Do hands a command to the loop
// and waits for the resulting Snapshot, so a terminal UI or a one-shot CLI
// command can drive review without sharing state across goroutines.
package session
