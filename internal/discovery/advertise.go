package discovery

import (
	"fmt"
	"os"
	"strconv"

	"github.com/grandcat/zeroconf"
	"github.com/muurk/brlreview/internal/logging"
	"go.uber.org/zap"
)

// Advertisement describes a display to announce on the local network.
type Advertisement struct {
	// Instance is the service instance name. Defaults to the hostname.
	Instance string
	Port     int
	Width    int
	TLS      bool
}

// txtRecords returns the TXT records for the advertisement.
func (a Advertisement) txtRecords() []string {
	records := []string{
		"proto=" + ProtocolVersion,
		"path=/",
		"width=" + strconv.Itoa(a.Width),
	}
	if a.TLS {
		records = append(records, "tls=1")
	}
	return records
}

// Advertiser announces a display until Shutdown.
type Advertiser struct {
	server *zeroconf.Server
}

// Advertise registers the display with mDNS.
func Advertise(a Advertisement) (*Advertiser, error) {
	if a.Port <= 0 {
		return nil, fmt.Errorf("invalid port %d", a.Port)
	}
	if a.Instance == "" {
		host, err := os.Hostname()
		if err != nil {
			return nil, fmt.Errorf("failed to get hostname: %w", err)
		}
		a.Instance = host
	}

	server, err := zeroconf.Register(a.Instance, ServiceType, ServiceDomain, a.Port, a.txtRecords(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to register mDNS service: %w", err)
	}

	logging.Info("Advertising braille display",
		zap.String("instance", a.Instance),
		zap.String("service", ServiceType),
		zap.Int("port", a.Port),
		zap.Int("width", a.Width),
	)
	return &Advertiser{server: server}, nil
}

// Shutdown withdraws the advertisement.
func (a *Advertiser) Shutdown() {
	if a == nil || a.server == nil {
		return
	}
	a.server.Shutdown()
	a.server = nil
	logging.Debug("Stopped advertising braille display")
}
