package discovery

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Display represents a virtual braille display discovered on the network
type Display struct {
	// Instance is the advertised service instance name (e.g., "kitchen")
	Instance string

	// Hostname is the mDNS hostname (e.g., "laptop.local.")
	Hostname string

	// IP is the preferred address, IPv4 when available
	IP string

	// Port is the WebSocket port
	Port int

	// Width is the advertised cell count, 0 when not advertised
	Width int

	// Metadata contains the mDNS TXT record data
	// Common fields: "width=40", "path=/", "proto=1", "tls=1"
	Metadata map[string]string

	// DiscoveredAt is when the display was discovered
	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the display
func (d *Display) String() string {
	return fmt.Sprintf("Braille display %q (%d cells) at %s", d.Instance, d.Width, net.JoinHostPort(d.IP, strconv.Itoa(d.Port)))
}

// URL returns the WebSocket URL of the display
func (d *Display) URL() string {
	scheme := "ws"
	if d.GetMetadata("tls") == "1" {
		scheme = "wss"
	}
	path := d.GetMetadata("path")
	if path == "" {
		path = "/"
	}
	return fmt.Sprintf("%s://%s%s", scheme, net.JoinHostPort(d.IP, strconv.Itoa(d.Port)), path)
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (d *Display) GetMetadata(key string) string {
	if d.Metadata == nil {
		return ""
	}
	return d.Metadata[key]
}
