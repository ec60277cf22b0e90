// internal/app/system/wsauth/wsauth.go
// Package wsauth decides which browser origins may open the live socket.
package wsauth

import (
	"net/url"
	"strings"

	"github.com/coder/websocket"
)

// OriginPatterns splits a comma-separated ws_allowed_origins value into
// host patterns for websocket.AcceptOptions. Full URLs are reduced to
// their host; blanks are dropped. An empty result means same-origin only.
func OriginPatterns(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		p := strings.TrimSpace(part)
		if p == "" {
			continue
		}
		if strings.Contains(p, "://") {
			if u, err := url.Parse(p); err == nil && u.Host != "" {
				p = u.Host
			}
		}
		out = append(out, p)
	}
	return out
}

// AcceptOptions builds the options the live handler accepts connections
// with. Cross-origin upgrades are refused unless patterns allow them.
func AcceptOptions(patterns []string) *websocket.AcceptOptions {
	opts := &websocket.AcceptOptions{}
	if len(patterns) > 0 {
		opts.OriginPatterns = append([]string(nil), patterns...)
	}
	return opts
}
