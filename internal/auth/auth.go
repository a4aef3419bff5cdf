// Package auth provides authentication helpers for git operations.
// It layers URL and host pattern matching on top of go-git's auth methods.
package auth

import (
	"path"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/transport"
)

// Provider interface that all auth providers must implement.
// Returns go-git's transport.AuthMethod directly.
type Provider interface {
	// Method returns the appropriate transport.AuthMethod for the given remote URL.
	// Returns nil if no authentication is needed/available for this URL.
	// Returns an error if authentication setup fails.
	Method(remoteURL string) (transport.AuthMethod, error)
}

// hostAllowed reports whether host matches any of the patterns.
// Patterns support glob wildcards ("*.github.com", "gitlab.*"); a pattern of
// the form "*.domain" also matches the bare domain itself. An empty pattern
// list allows every host.
func hostAllowed(host string, patterns []string) bool {
	if len(patterns) == 0 {
		return true
	}

	// Strip a port suffix before matching.
	if idx := strings.LastIndex(host, ":"); idx != -1 {
		host = host[:idx]
	}

	for _, pattern := range patterns {
		if ok, err := path.Match(pattern, host); err == nil && ok {
			return true
		}
		if suffix, found := strings.CutPrefix(pattern, "*."); found && host == suffix {
			return true
		}
	}
	return false
}
