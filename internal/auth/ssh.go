package auth

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/ssh"
	gossh "golang.org/x/crypto/ssh"
)

// SSHProvider provides SSH authentication for git operations, sourcing
// credentials from a key file, raw key bytes, or a running SSH agent.
type SSHProvider struct {
	// PrivateKeyPath is the path to the SSH private key file.
	PrivateKeyPath string

	// PrivateKey contains the SSH private key as bytes.
	PrivateKey []byte

	// Passphrase for encrypted private keys.
	Passphrase string

	// Username for SSH authentication (defaults to "git").
	Username string

	// UseAgent enables SSH agent integration.
	UseAgent bool

	// HostKeyCallback for host key verification (optional).
	HostKeyCallback gossh.HostKeyCallback

	// AllowedHosts restricts authentication to specific host patterns.
	// If empty, authentication is allowed for all SSH URLs.
	AllowedHosts []string
}

// NewSSHKeyProvider creates an SSH provider using a private key file.
func NewSSHKeyProvider(keyPath, passphrase string) *SSHProvider {
	return &SSHProvider{
		PrivateKeyPath: keyPath,
		Passphrase:     passphrase,
		Username:       "git",
	}
}

// NewSSHKeyBytesProvider creates an SSH provider using private key bytes.
func NewSSHKeyBytesProvider(keyBytes []byte, passphrase string) *SSHProvider {
	return &SSHProvider{
		PrivateKey: keyBytes,
		Passphrase: passphrase,
		Username:   "git",
	}
}

// NewSSHAgentProvider creates an SSH provider that uses the SSH agent.
func NewSSHAgentProvider() *SSHProvider {
	return &SSHProvider{
		UseAgent: true,
		Username: "git",
	}
}

// WithHostKeyCallback sets the host key verification callback.
func (p *SSHProvider) WithHostKeyCallback(callback gossh.HostKeyCallback) *SSHProvider {
	p.HostKeyCallback = callback
	return p
}

// WithAllowedHosts restricts the provider to URLs matching the host patterns.
func (p *SSHProvider) WithAllowedHosts(hosts ...string) *SSHProvider {
	p.AllowedHosts = hosts
	return p
}

// Method returns the authentication method for the given remote URL.
// Returns nil if the URL host is outside the allowed patterns.
//
//nolint:ireturn // go-git requires returning transport.AuthMethod interface
func (p *SSHProvider) Method(remoteURL string) (transport.AuthMethod, error) {
	host, scheme, err := extractSSHHost(remoteURL)
	if err != nil {
		return nil, err
	}

	if scheme != "ssh" && scheme != "git" && scheme != "git+ssh" {
		return nil, fmt.Errorf("SSH auth provider only supports SSH URLs, got %s", scheme)
	}

	if host != "" && !hostAllowed(host, p.AllowedHosts) {
		return nil, nil
	}

	switch {
	case p.UseAgent:
		return p.agentAuth()
	case p.PrivateKeyPath != "":
		return p.fileAuth()
	case len(p.PrivateKey) > 0:
		return p.bytesAuth()
	}

	return nil, fmt.Errorf("no SSH credentials configured")
}

// extractSSHHost pulls the host and scheme out of an SSH remote URL,
// including scp-style "git@host:path" URLs that url.Parse rejects.
func extractSSHHost(remoteURL string) (string, string, error) {
	if strings.HasPrefix(remoteURL, "git@") && !strings.HasPrefix(remoteURL, "git://") {
		parts := strings.SplitN(strings.TrimPrefix(remoteURL, "git@"), ":", 2)
		if len(parts) > 0 {
			return parts[0], "ssh", nil
		}
		return "", "", fmt.Errorf("invalid SSH URL: %s", remoteURL)
	}

	parsedURL, err := url.Parse(remoteURL)
	if err != nil {
		return "", "", fmt.Errorf("invalid URL: %w", err)
	}
	return parsedURL.Host, parsedURL.Scheme, nil
}

//nolint:ireturn // go-git requires returning transport.AuthMethod interface
func (p *SSHProvider) agentAuth() (transport.AuthMethod, error) {
	auth, err := ssh.NewSSHAgentAuth(p.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to create SSH agent auth: %w", err)
	}
	if p.HostKeyCallback != nil {
		auth.HostKeyCallback = p.HostKeyCallback
	}
	return auth, nil
}

//nolint:ireturn // go-git requires returning transport.AuthMethod interface
func (p *SSHProvider) fileAuth() (transport.AuthMethod, error) {
	if _, err := os.Stat(p.PrivateKeyPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("SSH private key file does not exist: %s", p.PrivateKeyPath)
	}
	auth, err := ssh.NewPublicKeysFromFile(p.Username, p.PrivateKeyPath, p.Passphrase)
	if err != nil {
		return nil, fmt.Errorf("failed to load SSH key from file: %w", err)
	}
	if p.HostKeyCallback != nil {
		auth.HostKeyCallback = p.HostKeyCallback
	}
	return auth, nil
}

//nolint:ireturn // go-git requires returning transport.AuthMethod interface
func (p *SSHProvider) bytesAuth() (transport.AuthMethod, error) {
	auth, err := ssh.NewPublicKeys(p.Username, p.PrivateKey, p.Passphrase)
	if err != nil {
		return nil, fmt.Errorf("failed to load SSH key from bytes: %w", err)
	}
	if p.HostKeyCallback != nil {
		auth.HostKeyCallback = p.HostKeyCallback
	}
	return auth, nil
}
