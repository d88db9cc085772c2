package discovery

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/grandcat/zeroconf"
	"github.com/muurk/brlreview/internal/logging"
	"go.uber.org/zap"
)

const (
	// ServiceType is the mDNS service type for virtual braille displays
	ServiceType = "_brlreview._tcp"

	// ServiceDomain is the mDNS domain (typically "local.")
	ServiceDomain = "local."

	// DefaultScanTimeout is the default timeout for display discovery
	DefaultScanTimeout = 5 * time.Second

	// ProtocolVersion is advertised in the "proto" TXT record
	ProtocolVersion = "1"
)

// Scanner handles mDNS display discovery
type Scanner struct {
	// Timeout is the maximum time to wait for display discovery
	Timeout time.Duration
}

// NewScanner creates a new mDNS scanner with default settings
func NewScanner() *Scanner {
	return &Scanner{
		Timeout: DefaultScanTimeout,
	}
}

// ScanForDisplays discovers all virtual displays on the local network
// until the timeout or ctx ends.
func (s *Scanner) ScanForDisplays(ctx context.Context) ([]*Display, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	var mu sync.Mutex
	displays := make([]*Display, 0)
	seen := make(map[string]bool)

	err := s.browse(ctx, func(d *Display) bool {
		mu.Lock()
		defer mu.Unlock()
		if !seen[d.Instance] {
			seen[d.Instance] = true
			displays = append(displays, d)
		}
		return false
	})
	if err != nil {
		return nil, err
	}

	<-ctx.Done()

	mu.Lock()
	defer mu.Unlock()
	return append([]*Display(nil), displays...), nil
}

// WaitForDisplay waits for a display by instance name. An empty name
// accepts the first display found.
func (s *Scanner) WaitForDisplay(ctx context.Context, instance string) (*Display, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	found := make(chan *Display, 1)
	err := s.browse(ctx, func(d *Display) bool {
		if instance != "" && d.Instance != instance {
			return false
		}
		select {
		case found <- d:
		default:
		}
		return true
	})
	if err != nil {
		return nil, err
	}

	select {
	case d := <-found:
		return d, nil
	case <-ctx.Done():
		if instance == "" {
			return nil, fmt.Errorf("no braille display found within %s", s.Timeout)
		}
		return nil, fmt.Errorf("braille display %q not found within %s", instance, s.Timeout)
	}
}

// browse starts resolving and calls visit for each display until visit
// returns true or ctx ends.
func (s *Scanner) browse(ctx context.Context, visit func(*Display) bool) error {
	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	entries := make(chan *zeroconf.ServiceEntry)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case entry, ok := <-entries:
				if !ok {
					return
				}
				d := s.parseServiceEntry(entry)
				if d == nil {
					continue
				}
				logging.Debug("Found braille display", zap.Stringer("display", d))
				if visit(d) {
					cancel()
					return
				}
			}
		}
	}()

	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		cancel()
		return fmt.Errorf("failed to browse for mDNS services: %w", err)
	}
	return nil
}

// parseServiceEntry converts a zeroconf service entry to a Display
// Returns nil if the entry has no usable address
func (s *Scanner) parseServiceEntry(entry *zeroconf.ServiceEntry) *Display {
	if entry == nil || entry.Port == 0 {
		return nil
	}

	// Get IP address (prefer IPv4)
	var ip string
	for _, addr := range entry.AddrIPv4 {
		ip = addr.String()
		break
	}

	// Fallback to IPv6 if no IPv4
	if ip == "" && len(entry.AddrIPv6) > 0 {
		ip = entry.AddrIPv6[0].String()
	}

	if ip == "" {
		return nil
	}

	metadata := parseTXT(entry.Text)
	if proto, ok := metadata["proto"]; ok && proto != ProtocolVersion {
		logging.Debug("Skipping display with another protocol version",
			zap.String("instance", entry.Instance),
			zap.String("proto", proto),
		)
		return nil
	}

	width, _ := strconv.Atoi(metadata["width"])

	return &Display{
		Instance:     entry.Instance,
		Hostname:     entry.HostName,
		IP:           ip,
		Port:         entry.Port,
		Width:        width,
		Metadata:     metadata,
		DiscoveredAt: time.Now(),
	}
}

// parseTXT splits "key=value" TXT records. Keys without a value map to "".
func parseTXT(records []string) map[string]string {
	metadata := make(map[string]string)
	for _, txt := range records {
		parts := strings.SplitN(txt, "=", 2)
		if len(parts) == 2 {
			metadata[parts[0]] = parts[1]
		} else {
			metadata[parts[0]] = ""
		}
	}
	return metadata
}

// QuickScan performs a fast scan with a 2-second timeout
func QuickScan(ctx context.Context) ([]*Display, error) {
	scanner := NewScanner()
	scanner.Timeout = 2 * time.Second
	return scanner.ScanForDisplays(ctx)
}
