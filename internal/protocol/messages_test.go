package protocol

import (
	"bytes"
	"errors"
	"reflect"
	"testing"
)

func TestEncodeDecode(t *testing.T) {
	tests := []struct {
		name string
		msg  Message
		want Message
	}{
		{"hello", &Hello{Name: "brlreview"}, nil},
		{"size", &Size{Width: 40, Height: 1}, nil},
		{"write", &Write{Text: "Name: Orca", Mask: []byte{0, 0, 0, 0, 0, 0, 0xc0, 0xc0, 0xc0, 0xc0}, Cursor: 7}, nil},
		{"write without mask", &Write{Text: "ab"}, &Write{Text: "ab", Mask: []byte{0, 0}}},
		{"write non-ascii", &Write{Text: "né", Mask: []byte{0, 0x40}, Cursor: 2}, nil},
		{"key", &Key{Command: 1, Argument: 39, Flags: 0x3}, nil},
		{"negative param", &Param{Param: 0, Value: -1}, nil},
		{"raw mode", &RawMode{On: true}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := Encode(42, tt.msg)
			if err != nil {
				t.Fatalf("Encode() error = %v", err)
			}
			id, got, err := Decode(data)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if id != 42 {
				t.Errorf("Decode() id = %d, want 42", id)
			}
			want := tt.want
			if want == nil {
				want = tt.msg
			}
			if !reflect.DeepEqual(got, want) {
				t.Errorf("Decode() = %s, want %s", got, want)
			}
		})
	}
}

func TestWriteLayout(t *testing.T) {
	data, err := Encode(1, &Write{Text: "ab", Mask: []byte{0, 0x80}, Cursor: 2})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	want := []byte{0x02, 0x00, 0x02, 0x00, 'a', 'b', 0x00, 0x80}
	if !bytes.Equal(data[HeaderSize:], want) {
		t.Errorf("payload = % x, want % x", data[HeaderSize:], want)
	}
}

func TestEncodeErrors(t *testing.T) {
	tests := []struct {
		name string
		msg  Message
	}{
		{"mask length", &Write{Text: "abc", Mask: []byte{0}}},
		{"negative cursor", &Write{Text: "a", Cursor: -1}},
		{"size out of range", &Size{Width: 70000}},
		{"key argument", &Key{Argument: -2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Encode(1, tt.msg); err == nil {
				t.Errorf("Encode(%s) error = nil, want error", tt.msg)
			}
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	short := func(t MessageType, payload []byte) []byte {
		f, _ := BuildFrame(1, t, payload)
		return f
	}

	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{"unknown type", short(MessageType(0x99), nil), ErrUnknownType},
		{"short size", short(MsgTypeSize, []byte{1}), ErrShortFrame},
		{"short key", short(MsgTypeKey, []byte{1, 2}), ErrShortFrame},
		{"short param", short(MsgTypeParam, []byte{0}), ErrShortFrame},
		{"empty raw mode", short(MsgTypeRawMode, nil), ErrShortFrame},
		{"write missing mask", short(MsgTypeWrite, []byte{0, 0, 2, 0, 'a', 'b', 0}), ErrShortFrame},
		{"write missing text", short(MsgTypeWrite, []byte{0, 0, 5, 0, 'a'}), ErrShortFrame},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := Decode(tt.data); !errors.Is(err, tt.wantErr) {
				t.Errorf("Decode() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if _, _, err := Decode(short(MsgTypeHello, []byte{0xff, 0xfe})); err == nil {
		t.Error("Decode() of invalid UTF-8 hello error = nil, want error")
	}
}
