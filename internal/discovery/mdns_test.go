package discovery

import (
	"net"
	"testing"
	"time"

	"github.com/grandcat/zeroconf"
)

func entry(instance, host string, port int, v4, v6 []net.IP, text ...string) *zeroconf.ServiceEntry {
	e := zeroconf.NewServiceEntry(instance, ServiceType, ServiceDomain)
	e.HostName = host
	e.Port = port
	e.AddrIPv4 = v4
	e.AddrIPv6 = v6
	e.Text = text
	return e
}

func TestScanner_parseServiceEntry(t *testing.T) {
	scanner := NewScanner()

	tests := []struct {
		name      string
		entry     *zeroconf.ServiceEntry
		wantNil   bool
		wantIP    string
		wantPort  int
		wantWidth int
	}{
		{
			name:      "display with IPv4",
			entry:     entry("kitchen", "laptop.local.", 7010, []net.IP{net.ParseIP("192.168.4.16")}, nil, "proto=1", "width=40"),
			wantIP:    "192.168.4.16",
			wantPort:  7010,
			wantWidth: 40,
		},
		{
			name:     "display without width",
			entry:    entry("study", "desk.local.", 8080, []net.IP{net.ParseIP("10.0.0.5")}, nil),
			wantIP:   "10.0.0.5",
			wantPort: 8080,
		},
		{
			name:     "IPv6 only display",
			entry:    entry("hall", "pi.local.", 7010, nil, []net.IP{net.ParseIP("fe80::1")}),
			wantIP:   "fe80::1",
			wantPort: 7010,
		},
		{
			name:     "both IPv4 and IPv6 (should prefer IPv4)",
			entry:    entry("hall", "pi.local.", 7010, []net.IP{net.ParseIP("192.168.1.50")}, []net.IP{net.ParseIP("fe80::2")}),
			wantIP:   "192.168.1.50",
			wantPort: 7010,
		},
		{
			name:    "no IP address",
			entry:   entry("hall", "pi.local.", 7010, nil, nil),
			wantNil: true,
		},
		{
			name:    "no port",
			entry:   entry("hall", "pi.local.", 0, []net.IP{net.ParseIP("192.168.1.1")}, nil),
			wantNil: true,
		},
		{
			name:    "other protocol version",
			entry:   entry("hall", "pi.local.", 7010, []net.IP{net.ParseIP("192.168.1.1")}, nil, "proto=2"),
			wantNil: true,
		},
		{
			name:    "nil entry",
			entry:   nil,
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			display := scanner.parseServiceEntry(tt.entry)

			if tt.wantNil {
				if display != nil {
					t.Errorf("parseServiceEntry() = %v, want nil", display)
				}
				return
			}

			if display == nil {
				t.Fatal("parseServiceEntry() = nil, want non-nil display")
			}
			if display.Instance != tt.entry.Instance {
				t.Errorf("display.Instance = %v, want %v", display.Instance, tt.entry.Instance)
			}
			if display.IP != tt.wantIP {
				t.Errorf("display.IP = %v, want %v", display.IP, tt.wantIP)
			}
			if display.Port != tt.wantPort {
				t.Errorf("display.Port = %v, want %v", display.Port, tt.wantPort)
			}
			if display.Width != tt.wantWidth {
				t.Errorf("display.Width = %v, want %v", display.Width, tt.wantWidth)
			}
			if display.Hostname != tt.entry.HostName {
				t.Errorf("display.Hostname = %v, want %v", display.Hostname, tt.entry.HostName)
			}
			if time.Since(display.DiscoveredAt) > time.Second {
				t.Errorf("display.DiscoveredAt is not recent: %v", display.DiscoveredAt)
			}
		})
	}
}

func TestParseTXT(t *testing.T) {
	got := parseTXT([]string{"path=/", "width=40", "flag", "note=a=b"})

	want := map[string]string{
		"path":  "/",
		"width": "40",
		"flag":  "",
		"note":  "a=b",
	}
	if len(got) != len(want) {
		t.Errorf("parseTXT() has %d entries, want %d", len(got), len(want))
	}
	for key, value := range want {
		if got[key] != value {
			t.Errorf("parseTXT()[%q] = %q, want %q", key, got[key], value)
		}
	}
}

func TestAdvertisementTXT(t *testing.T) {
	tests := []struct {
		name string
		ad   Advertisement
		want []string
	}{
		{"plain", Advertisement{Port: 7010, Width: 40}, []string{"proto=1", "path=/", "width=40"}},
		{"tls", Advertisement{Port: 7010, Width: 20, TLS: true}, []string{"proto=1", "path=/", "width=20", "tls=1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.ad.txtRecords()
			if len(got) != len(tt.want) {
				t.Fatalf("txtRecords() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("txtRecords()[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}

			// What we advertise must parse back into the same display.
			e := entry("x", "h.local.", tt.ad.Port, []net.IP{net.ParseIP("10.0.0.1")}, nil, got...)
			d := NewScanner().parseServiceEntry(e)
			if d == nil || d.Width != tt.ad.Width {
				t.Errorf("parsed display = %v, want width %d", d, tt.ad.Width)
			}
		})
	}
}

func TestAdvertiseRejectsBadPort(t *testing.T) {
	if _, err := Advertise(Advertisement{Port: 0}); err == nil {
		t.Error("Advertise() with port 0 error = nil, want error")
	}
	var a *Advertiser
	a.Shutdown()
}

func TestNewScanner(t *testing.T) {
	scanner := NewScanner()

	if scanner == nil {
		t.Fatal("NewScanner() = nil, want scanner")
	}

	if scanner.Timeout != DefaultScanTimeout {
		t.Errorf("scanner.Timeout = %v, want %v", scanner.Timeout, DefaultScanTimeout)
	}
}

// Note: live mDNS discovery needs multicast and is not exercised here.
