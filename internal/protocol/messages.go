package protocol

import (
	"encoding/binary"
	"fmt"
	"unicode/utf8"
)

// MessageType identifies the message carried by a frame.
type MessageType byte

// Message types. Hello, Write, Param and RawMode travel from the screen
// reader to the display; Size and Key travel from the display.
const (
	MsgTypeHello   MessageType = 0x01
	MsgTypeSize    MessageType = 0x02
	MsgTypeWrite   MessageType = 0x10
	MsgTypeKey     MessageType = 0x20
	MsgTypeParam   MessageType = 0x30
	MsgTypeRawMode MessageType = 0x31
)

func (t MessageType) String() string {
	switch t {
	case MsgTypeHello:
		return "hello"
	case MsgTypeSize:
		return "size"
	case MsgTypeWrite:
		return "write"
	case MsgTypeKey:
		return "key"
	case MsgTypeParam:
		return "param"
	case MsgTypeRawMode:
		return "raw-mode"
	default:
		return fmt.Sprintf("unknown(0x%02x)", byte(t))
	}
}

// Message is a decoded protocol message.
type Message interface {
	Type() MessageType
	String() string
	encode() ([]byte, error)
}

// Hello (0x01) introduces a client.
type Hello struct {
	Name string
}

func (m *Hello) Type() MessageType { return MsgTypeHello }

func (m *Hello) String() string { return fmt.Sprintf("Hello{name=%q}", m.Name) }

func (m *Hello) encode() ([]byte, error) {
	return []byte(m.Name), nil
}

// Size (0x02) announces the display geometry. A zero width means the
// display is still initializing.
//
//	[0-1] width  uint16
//	[2-3] height uint16
type Size struct {
	Width  int
	Height int
}

func (m *Size) Type() MessageType { return MsgTypeSize }

func (m *Size) String() string { return fmt.Sprintf("Size{%dx%d}", m.Width, m.Height) }

func (m *Size) encode() ([]byte, error) {
	if m.Width < 0 || m.Width > 0xffff || m.Height < 0 || m.Height > 0xffff {
		return nil, fmt.Errorf("display size %dx%d out of range", m.Width, m.Height)
	}
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint16(buf[0:2], uint16(m.Width))
	binary.LittleEndian.PutUint16(buf[2:4], uint16(m.Height))
	return buf, nil
}

// Write (0x10) replaces the display contents.
//
//	[0-1] cursor     uint16, 1-based cell, 0 for none
//	[2-3] text_len   uint16, bytes of UTF-8 text
//	[4+]  text
//	[..]  mask       one byte per character of text
type Write struct {
	Text   string
	Mask   []byte
	Cursor int
}

func (m *Write) Type() MessageType { return MsgTypeWrite }

func (m *Write) String() string {
	return fmt.Sprintf("Write{text=%q, cursor=%d}", m.Text, m.Cursor)
}

func (m *Write) encode() ([]byte, error) {
	if n := utf8.RuneCountInString(m.Text); len(m.Mask) != 0 && len(m.Mask) != n {
		return nil, fmt.Errorf("mask has %d bytes for %d characters", len(m.Mask), n)
	}
	if m.Cursor < 0 || m.Cursor > 0xffff || len(m.Text) > 0xffff {
		return nil, fmt.Errorf("write out of range: cursor %d, %d bytes", m.Cursor, len(m.Text))
	}

	buf := make([]byte, 4, 4+len(m.Text)+len(m.Mask))
	binary.LittleEndian.PutUint16(buf[0:2], uint16(m.Cursor))
	binary.LittleEndian.PutUint16(buf[2:4], uint16(len(m.Text)))
	buf = append(buf, m.Text...)
	if len(m.Mask) == 0 {
		buf = append(buf, make([]byte, utf8.RuneCountInString(m.Text))...)
	} else {
		buf = append(buf, m.Mask...)
	}
	return buf, nil
}

// Key (0x20) reports a key press on the display.
//
//	[0]   command  byte
//	[1-2] argument uint16
//	[3-6] flags    uint32
type Key struct {
	Command  byte
	Argument int
	Flags    uint32
}

func (m *Key) Type() MessageType { return MsgTypeKey }

func (m *Key) String() string {
	return fmt.Sprintf("Key{command=%d, argument=%d, flags=0x%x}", m.Command, m.Argument, m.Flags)
}

func (m *Key) encode() ([]byte, error) {
	if m.Argument < 0 || m.Argument > 0xffff {
		return nil, fmt.Errorf("key argument %d out of range", m.Argument)
	}
	buf := make([]byte, 7)
	buf[0] = m.Command
	binary.LittleEndian.PutUint16(buf[1:3], uint16(m.Argument))
	binary.LittleEndian.PutUint32(buf[3:7], m.Flags)
	return buf, nil
}

// Param (0x30) sets a display parameter.
//
//	[0]   param byte
//	[1-4] value int32
type Param struct {
	Param byte
	Value int32
}

func (m *Param) Type() MessageType { return MsgTypeParam }

func (m *Param) String() string { return fmt.Sprintf("Param{param=%d, value=%d}", m.Param, m.Value) }

func (m *Param) encode() ([]byte, error) {
	buf := make([]byte, 5)
	buf[0] = m.Param
	binary.LittleEndian.PutUint32(buf[1:5], uint32(m.Value))
	return buf, nil
}

// RawMode (0x31) enters or leaves raw key mode.
type RawMode struct {
	On bool
}

func (m *RawMode) Type() MessageType { return MsgTypeRawMode }

func (m *RawMode) String() string { return fmt.Sprintf("RawMode{on=%t}", m.On) }

func (m *RawMode) encode() ([]byte, error) {
	if m.On {
		return []byte{1}, nil
	}
	return []byte{0}, nil
}

// Encode builds a frame carrying m.
func Encode(messageID uint32, m Message) ([]byte, error) {
	payload, err := m.encode()
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", m.Type(), err)
	}
	return BuildFrame(messageID, m.Type(), payload)
}

// Decode parses a frame and the message it carries.
func Decode(data []byte) (uint32, Message, error) {
	frame, err := ParseFrame(data)
	if err != nil {
		return 0, nil, err
	}
	msg, err := frame.ParseMessage()
	if err != nil {
		return frame.MessageID, nil, err
	}
	return frame.MessageID, msg, nil
}

// ParseMessage decodes the frame payload according to its type.
func (f *Frame) ParseMessage() (Message, error) {
	p := f.Payload
	short := func(want int) error {
		return fmt.Errorf("%w: %s payload %d bytes (need %d)", ErrShortFrame, f.Type, len(p), want)
	}

	switch f.Type {
	case MsgTypeHello:
		if !utf8.Valid(p) {
			return nil, fmt.Errorf("hello name is not UTF-8")
		}
		return &Hello{Name: string(p)}, nil

	case MsgTypeSize:
		if len(p) < 4 {
			return nil, short(4)
		}
		return &Size{
			Width:  int(binary.LittleEndian.Uint16(p[0:2])),
			Height: int(binary.LittleEndian.Uint16(p[2:4])),
		}, nil

	case MsgTypeWrite:
		if len(p) < 4 {
			return nil, short(4)
		}
		textLen := int(binary.LittleEndian.Uint16(p[2:4]))
		if len(p) < 4+textLen {
			return nil, short(4 + textLen)
		}
		text := p[4 : 4+textLen]
		if !utf8.Valid(text) {
			return nil, fmt.Errorf("write text is not UTF-8")
		}
		n := utf8.RuneCount(text)
		if len(p) < 4+textLen+n {
			return nil, short(4 + textLen + n)
		}
		mask := make([]byte, n)
		copy(mask, p[4+textLen:])
		return &Write{
			Text:   string(text),
			Mask:   mask,
			Cursor: int(binary.LittleEndian.Uint16(p[0:2])),
		}, nil

	case MsgTypeKey:
		if len(p) < 7 {
			return nil, short(7)
		}
		return &Key{
			Command:  p[0],
			Argument: int(binary.LittleEndian.Uint16(p[1:3])),
			Flags:    binary.LittleEndian.Uint32(p[3:7]),
		}, nil

	case MsgTypeParam:
		if len(p) < 5 {
			return nil, short(5)
		}
		return &Param{Param: p[0], Value: int32(binary.LittleEndian.Uint32(p[1:5]))}, nil

	case MsgTypeRawMode:
		if len(p) < 1 {
			return nil, short(1)
		}
		return &RawMode{On: p[0] != 0}, nil

	default:
		return nil, fmt.Errorf("%w: 0x%02x", ErrUnknownType, byte(f.Type))
	}
}
