// Package protocol implements the binary protocol spoken between brlreview
// and a virtual braille display.
//
// Each WebSocket binary message carries exactly one frame:
//   - Frame sync byte: 0x7e
//   - Protocol version: 0x01
//   - Message ID: 4 bytes (little-endian)
//   - Payload length: 2 bytes (little-endian)
//   - Message type: 1 byte
//   - Payload: Variable length
//
// # Message Types
//
// From the screen reader to the display:
//   - Hello: client name, sent once after connecting
//   - Write: cell text, attribute mask and cursor cell
//   - Param: display parameter, such as the client priority
//   - RawMode: enter or leave raw key mode
//
// From the display to the screen reader:
//   - Size: display width and height, sent on connect and on resize
//   - Key: a decoded key press with its argument and flags
//
// # Usage Example
//
//	data, err := protocol.Encode(protocol.GenerateMessageID(), &protocol.Write{
//	    Text:   "Name: Orca",
//	    Cursor: 7,
//	})
//	if err != nil {
//	    return err
//	}
//	_ = conn.WriteMessage(websocket.BinaryMessage, data)
//
//	_, msg, err := protocol.Decode(data)
//	if err != nil {
//	    return err
//	}
//	switch m := msg.(type) {
//	case *protocol.Key:
//	    fmt.Println("key", m.Command, m.Argument)
//	}
package protocol
