// Package discovery provides mDNS-based discovery of Home Assistant instances.
//
// Home Assistant advertises itself on the local network using the
// "_home-assistant._tcp" service type. This package browses for those
// advertisements and collects the connection details needed to reach the
// websocket API.
//
// # Discovery Process
//
// The discovery process works as follows:
//  1. Broadcasts mDNS queries on the local network
//  2. Listens for "_home-assistant._tcp" service advertisements
//  3. Extracts the address, port and TXT record metadata
//  4. Returns a list of discovered instances after the timeout period
//
// # Usage Example
//
//	// Discover instances with a 5-second timeout
//	instances, err := discovery.ScanForInstances(5 * time.Second)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, instance := range instances {
//	    fmt.Printf("Found: %s at %s\n", instance.Name, instance.BaseURL())
//	}
//
// # Instance Information
//
// Each discovered instance includes:
//   - Name: The location name from the TXT record (e.g., "Home")
//   - IP: IPv4 address (IPv6 fallback)
//   - Port: HTTP port (typically 8123)
//   - Version: Home Assistant core version
//   - Metadata: remaining TXT record data (base_url, uuid, ...)
//
// # Network Requirements
//
// - Requires multicast support on the network interface
// - The instance must be on the same local network segment
// - Firewall must allow mDNS (UDP port 5353)
//
// # Thread Safety
//
// This package is safe for concurrent use. Multiple discovery sessions can run
// simultaneously without interference.
package discovery
