// Package remote implements a virtual braille display reachable over
// WebSocket.
//
// Server hosts the display: it announces its size, records the cells each
// connected screen reader writes and forwards key presses to the client
// that owns the display. Ownership follows the priority parameter, so a
// screen reader that goes idle hands the display to the next client
// without disconnecting.
//
// Dialer and Device are the screen reader side. Dialer implements
// braille.Dialer, so an Engine can drive a virtual display exactly like a
// hardware one:
//
//	engine := braille.NewEngine(braille.Options{
//	    Loop:   loop,
//	    Dialer: &remote.Dialer{URL: "ws://localhost:7010/", Name: "brlreview"},
//	})
//
// Messages use the binary frames of package protocol.
package remote
