package braille

import (
	"context"
	"fmt"
)

// Param identifies a device daemon parameter.
type Param int

const (
	// ParamPriority is this client's priority with the device daemon.
	ParamPriority Param = iota
)

const (
	// DefaultPriority is the priority of an active screen reader.
	DefaultPriority = 50

	// IdlePriority hands the display to other clients without
	// disconnecting.
	IdlePriority = 0
)

// KeyCommand is the decoded meaning of a display key.
type KeyCommand int

const (
	KeyNone KeyCommand = iota
	// KeyRoute is a cursor routing key. Key.Argument is the 0-based cell.
	KeyRoute
	KeyPanLeft
	KeyPanRight
	KeyReturnToFocus
	KeyToggleContracted
	KeyLineUp
	KeyLineDown
	KeyTop
	KeyBottom
)

var keyCommandNames = map[KeyCommand]string{
	KeyNone:             "none",
	KeyRoute:            "route",
	KeyPanLeft:          "pan-left",
	KeyPanRight:         "pan-right",
	KeyReturnToFocus:    "return-to-focus",
	KeyToggleContracted: "toggle-contracted",
	KeyLineUp:           "line-up",
	KeyLineDown:         "line-down",
	KeyTop:              "top",
	KeyBottom:           "bottom",
}

func (c KeyCommand) String() string {
	if name, ok := keyCommandNames[c]; ok {
		return name
	}
	return fmt.Sprintf("KeyCommand(%d)", int(c))
}

// ParseKeyCommand converts a command name to a KeyCommand.
func ParseKeyCommand(name string) (KeyCommand, error) {
	for cmd, n := range keyCommandNames {
		if n == name {
			return cmd, nil
		}
	}
	return KeyNone, fmt.Errorf("unknown key command %q", name)
}

// KeyFlags modify a key event.
type KeyFlags uint32

const (
	// FlagRepeatInitial marks the first event of an auto-repeating key.
	FlagRepeatInitial KeyFlags = 1 << iota
	// FlagRepeatDelay marks events generated while a key is held down.
	FlagRepeatDelay
	// FlagToggleOn asks a toggle command to switch on.
	FlagToggleOn
	// FlagToggleOff asks a toggle command to switch off.
	FlagToggleOff
)

// Key is one key event read from the display.
type Key struct {
	Command  KeyCommand
	Argument int
	Flags    KeyFlags
}

// Cells is one buffer written to a display.
type Cells struct {
	// Text holds exactly Width characters.
	Text string
	// Mask holds one OR-mask byte per character of Text.
	Mask []byte
	// Cursor is the 1-based cursor cell, 0 for no cursor.
	Cursor int
}

// Device is a connected braille display. Calls block and are made from a
// single worker goroutine, one at a time.
type Device interface {
	EnterRawMode() error
	// DisplaySize returns the number of cells. A width of 0 means the
	// display has not finished initializing.
	DisplaySize() (width, height int, err error)
	Write(cells Cells) error
	// ReadKey returns the next key. With wait false it returns ok false
	// immediately when no key is pending.
	ReadKey(wait bool) (key Key, ok bool, err error)
	SetParameter(param Param, value int) error
	LeaveRawMode() error
	Close() error
}

// Dialer opens a connection to a braille display. Dial must return
// promptly once ctx is done.
type Dialer interface {
	Dial(ctx context.Context) (Device, error)
}

// DialerFunc adapts a function to Dialer.
type DialerFunc func(ctx context.Context) (Device, error)

// Dial implements Dialer.
func (f DialerFunc) Dial(ctx context.Context) (Device, error) {
	return f(ctx)
}
