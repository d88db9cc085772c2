package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync/atomic"
)

// Frame constants
const (
	FrameSync    = 0x7e
	FrameVersion = 0x01

	// HeaderSize is Sync + Version + 4-byte ID + 2-byte length + type.
	HeaderSize = 9

	// MaxPayloadSize bounds a single message payload.
	MaxPayloadSize = 4096
)

var (
	// ErrShortFrame is returned for frames smaller than the header or the
	// declared payload.
	ErrShortFrame = errors.New("frame too small")

	// ErrBadSync is returned when a frame does not start with FrameSync.
	ErrBadSync = errors.New("invalid sync byte")

	// ErrBadVersion is returned for frames of another protocol version.
	ErrBadVersion = errors.New("invalid version")

	// ErrPayloadTooLarge is returned when building a frame over MaxPayloadSize.
	ErrPayloadTooLarge = errors.New("payload too large")

	// ErrUnknownType is returned when decoding a message type this package
	// does not know.
	ErrUnknownType = errors.New("unknown message type")
)

// Frame is one parsed protocol frame.
//
//	[0]     0x7e         FrameSync
//	[1]     0x01         FrameVersion
//	[2-5]   message_id   little-endian uint32
//	[6-7]   length       little-endian uint16, payload bytes
//	[8]     type         MessageType
//	[9+]    payload
type Frame struct {
	Version   byte
	MessageID uint32
	Type      MessageType
	Payload   []byte
}

// String returns a debug representation of the frame.
func (f *Frame) String() string {
	return fmt.Sprintf("Frame{id=%d, type=%s, len=%d}", f.MessageID, f.Type, len(f.Payload))
}

var messageIDCounter uint32

// GenerateMessageID returns the next message ID. IDs are never zero.
func GenerateMessageID() uint32 {
	for {
		if id := atomic.AddUint32(&messageIDCounter, 1); id != 0 {
			return id
		}
	}
}

// BuildFrame constructs a complete frame around payload.
func BuildFrame(messageID uint32, t MessageType, payload []byte) ([]byte, error) {
	if len(payload) > MaxPayloadSize {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrPayloadTooLarge, len(payload), MaxPayloadSize)
	}

	frame := make([]byte, HeaderSize+len(payload))
	frame[0] = FrameSync
	frame[1] = FrameVersion
	binary.LittleEndian.PutUint32(frame[2:6], messageID)
	binary.LittleEndian.PutUint16(frame[6:8], uint16(len(payload)))
	frame[8] = byte(t)
	copy(frame[HeaderSize:], payload)
	return frame, nil
}

// ParseFrame validates the header of data and splits off the payload.
// Trailing bytes after the declared payload are ignored.
func ParseFrame(data []byte) (*Frame, error) {
	if len(data) < HeaderSize {
		return nil, fmt.Errorf("%w: %d bytes (minimum %d)", ErrShortFrame, len(data), HeaderSize)
	}
	if data[0] != FrameSync {
		return nil, fmt.Errorf("%w: 0x%02x (expected 0x%02x)", ErrBadSync, data[0], FrameSync)
	}
	if data[1] != FrameVersion {
		return nil, fmt.Errorf("%w: 0x%02x (expected 0x%02x)", ErrBadVersion, data[1], FrameVersion)
	}

	length := int(binary.LittleEndian.Uint16(data[6:8]))
	if len(data) < HeaderSize+length {
		return nil, fmt.Errorf("%w: %d bytes, header declares %d", ErrShortFrame, len(data), HeaderSize+length)
	}

	return &Frame{
		Version:   data[1],
		MessageID: binary.LittleEndian.Uint32(data[2:6]),
		Type:      MessageType(data[8]),
		Payload:   data[HeaderSize : HeaderSize+length],
	}, nil
}
