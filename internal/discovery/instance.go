package discovery

import (
	"fmt"
	"time"
)

// Instance represents a Home Assistant installation discovered on the network
type Instance struct {
	// Name is the location name advertised by the instance (e.g., "Home")
	Name string

	// Hostname is the mDNS hostname (e.g., "homeassistant.local.")
	Hostname string

	// IP is the IPv4 address (e.g., "192.168.1.10")
	IP string

	// Port is the HTTP port (typically 8123)
	Port int

	// Version is the Home Assistant core version from the TXT record
	Version string

	// Metadata contains additional mDNS TXT record data
	// Common fields: "base_url", "uuid", "requires_api_password"
	Metadata map[string]string

	// DiscoveredAt is when the instance was discovered
	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the instance
func (i *Instance) String() string {
	return fmt.Sprintf("Home Assistant %q (%s) at %s:%d", i.Name, i.Version, i.IP, i.Port)
}

// BaseURL returns the HTTP base URL for the instance, preferring the
// advertised base_url TXT record over the raw address
func (i *Instance) BaseURL() string {
	if url := i.GetMetadata("base_url"); url != "" {
		return url
	}
	return fmt.Sprintf("http://%s:%d", i.IP, i.Port)
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (i *Instance) GetMetadata(key string) string {
	if i.Metadata == nil {
		return ""
	}
	return i.Metadata[key]
}
