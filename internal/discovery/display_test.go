package discovery

import "testing"

func TestDisplay_URL(t *testing.T) {
	tests := []struct {
		name    string
		display *Display
		want    string
	}{
		{
			name:    "plain",
			display: &Display{IP: "192.168.4.16", Port: 7010},
			want:    "ws://192.168.4.16:7010/",
		},
		{
			name:    "tls with path",
			display: &Display{IP: "10.0.0.5", Port: 443, Metadata: map[string]string{"tls": "1", "path": "/display"}},
			want:    "wss://10.0.0.5:443/display",
		},
		{
			name:    "IPv6",
			display: &Display{IP: "fe80::1", Port: 7010},
			want:    "ws://[fe80::1]:7010/",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.display.URL(); got != tt.want {
				t.Errorf("URL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDisplay_String(t *testing.T) {
	d := &Display{Instance: "kitchen", IP: "192.168.4.16", Port: 7010, Width: 40}
	want := `Braille display "kitchen" (40 cells) at 192.168.4.16:7010`
	if got := d.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestDisplay_GetMetadata(t *testing.T) {
	var d Display
	if got := d.GetMetadata("width"); got != "" {
		t.Errorf("GetMetadata() on nil metadata = %q, want empty", got)
	}
	d.Metadata = map[string]string{"width": "40"}
	if got := d.GetMetadata("width"); got != "40" {
		t.Errorf("GetMetadata() = %q, want 40", got)
	}
}
