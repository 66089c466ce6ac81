// internal/redact/redact.go
package redact

import "strings"

// URL masks a secret-bearing URL (webhook tokens live in the path).
// Keeps the first and last 10 characters of long URLs.
func URL(u string) string {
	if len(u) <= 20 {
		return "Invalid URL"
	}
	return u[:10] + "..." + u[len(u)-10:]
}

// Secret replaces a credential with a fixed marker.
func Secret(s string) string {
	if s == "" {
		return ""
	}
	return "****"
}

// Scrub removes every occurrence of the secrets from msg.
// Used on transport errors that echo request URLs back.
func Scrub(msg string, secrets ...string) string {
	for _, s := range secrets {
		if s == "" {
			continue
		}
		msg = strings.ReplaceAll(msg, s, URL(s))
	}
	return msg
}
