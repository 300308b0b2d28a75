package urls

import (
	"fmt"
	"net/url"
	"strings"
)

// WebsocketPath is the Home Assistant websocket API endpoint.
const WebsocketPath = "/api/websocket"

// Websocket converts a Home Assistant base URL into its websocket API
// endpoint, mapping http(s) to ws(s). Accepts bare host:port too.
func Websocket(base string) (string, error) {
	base = strings.TrimRight(base, "/")
	if base == "" {
		return "", fmt.Errorf("empty base URL")
	}
	if !strings.Contains(base, "://") {
		base = "http://" + base
	}

	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid base URL %q: %w", base, err)
	}

	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}

	u.Path = WebsocketPath
	return u.String(), nil
}

// Thumbnail resolves a result's thumbnail reference against the Home
// Assistant base URL. References from the integration are either absolute
// already or server-relative API paths.
func Thumbnail(base, thumb string) string {
	if thumb == "" {
		return ""
	}
	if strings.Contains(thumb, "://") {
		return thumb
	}
	base = strings.TrimRight(base, "/")
	if !strings.HasPrefix(thumb, "/") {
		thumb = "/" + thumb
	}
	return base + thumb
}
