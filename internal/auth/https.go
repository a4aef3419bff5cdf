package auth

import (
	"fmt"
	"net/url"

	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
)

// HTTPSProvider provides HTTPS basic/token authentication for git operations.
type HTTPSProvider struct {
	auth *http.BasicAuth

	// AllowedHosts restricts authentication to specific host patterns.
	// If empty, authentication is allowed for all HTTPS URLs.
	AllowedHosts []string
}

// NewHTTPSProvider creates an HTTPS provider with username/password credentials.
func NewHTTPSProvider(username, password string) *HTTPSProvider {
	return &HTTPSProvider{
		auth: &http.BasicAuth{
			Username: username,
			Password: password,
		},
	}
}

// NewHTTPSTokenProvider creates an HTTPS provider for token authentication.
// Most git providers (GitHub, GitLab, Bitbucket) use the token as password.
func NewHTTPSTokenProvider(token string) *HTTPSProvider {
	return &HTTPSProvider{
		auth: &http.BasicAuth{
			Username: "token", // Some providers need a username
			Password: token,
		},
	}
}

// WithAllowedHosts restricts the provider to URLs matching the host patterns.
func (p *HTTPSProvider) WithAllowedHosts(hosts ...string) *HTTPSProvider {
	p.AllowedHosts = hosts
	return p
}

// Method returns the authentication method for the given remote URL.
// Returns nil if the URL host is outside the allowed patterns.
//
//nolint:ireturn // go-git requires returning transport.AuthMethod interface
func (p *HTTPSProvider) Method(remoteURL string) (transport.AuthMethod, error) {
	parsedURL, err := url.Parse(remoteURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	if parsedURL.Scheme != "https" {
		return nil, fmt.Errorf("HTTPS auth provider only supports https:// URLs, got %s", parsedURL.Scheme)
	}

	if !hostAllowed(parsedURL.Host, p.AllowedHosts) {
		return nil, nil
	}

	return p.auth, nil
}
