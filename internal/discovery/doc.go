// Package discovery provides mDNS-based discovery of virtual braille displays.
//
// A display server advertises itself with Advertise using the
// "_brlreview._tcp" service type. Screen readers find it with a Scanner and
// connect to Display.URL.
//
// # TXT Records
//
//   - proto: protocol version, displays of another version are skipped
//   - path: WebSocket path, "/" when absent
//   - width: advertised cell count
//   - tls: "1" when the display expects wss://
//
// # Usage Example
//
//	adv, err := discovery.Advertise(discovery.Advertisement{Port: 7010, Width: 40})
//	if err != nil {
//	    return err
//	}
//	defer adv.Shutdown()
//
//	scanner := discovery.NewScanner()
//	display, err := scanner.WaitForDisplay(ctx, "")
//	if err != nil {
//	    return err
//	}
//	fmt.Println("connecting to", display.URL())
//
// # Network Requirements
//
// - Requires multicast support on the network interface
// - Displays must be on the same local network segment
// - Firewall must allow mDNS (UDP port 5353)
package discovery
