// Package gitx provides a high-level Go wrapper for go-git operations.
// This file contains the identity provider used when synthesizing commits.
package gitx

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// IdentityProvider supplies the default author/committer identity for
// commits the library synthesizes (merge commits, rebased commits).
type IdentityProvider interface {
	// Identity returns the signature to use. Implementations should return
	// ErrNoIdentity (possibly wrapped) when no identity can be resolved.
	Identity(ctx context.Context) (Signature, error)
}

// StaticIdentity is an IdentityProvider that always returns the same
// signature. Useful for tests and single-identity tooling.
type StaticIdentity struct {
	Name  string
	Email string
}

// Identity implements IdentityProvider.
func (s StaticIdentity) Identity(ctx context.Context) (Signature, error) {
	if s.Name == "" || s.Email == "" {
		return Signature{}, WrapError(ErrNoIdentity, "static identity incomplete")
	}
	return Signature{Name: s.Name, Email: s.Email}, nil
}

// resolveIdentity returns the identity for synthesized commits, consulting
// the configured provider first and falling back to the repository/global
// git configuration, then to the XDG identity file.
func (r *Repo) resolveIdentity(ctx context.Context) (Signature, error) {
	if r.options.Identity != nil {
		return r.options.Identity.Identity(ctx)
	}

	if sig, ok := r.configIdentity(); ok {
		return sig, nil
	}

	if sig, ok := xdgIdentity(); ok {
		return sig, nil
	}

	return Signature{}, WrapError(ErrNoIdentity, "set user.name/user.email or provide an IdentityProvider")
}

// configIdentity reads user.name/user.email from the merged repository,
// global, and system git configuration.
func (r *Repo) configIdentity() (Signature, bool) {
	cfg, err := r.repo.ConfigScoped(config.SystemScope)
	if err != nil || cfg.User.Name == "" || cfg.User.Email == "" {
		return Signature{}, false
	}
	return Signature{Name: cfg.User.Name, Email: cfg.User.Email}, true
}

// xdgIdentity reads a "Name <email>" line from $XDG_CONFIG_HOME/gitx/identity.
func xdgIdentity() (Signature, bool) {
	content, err := os.ReadFile(filepath.Join(xdg.ConfigHome, "gitx", "identity"))
	if err != nil {
		return Signature{}, false
	}

	line := strings.TrimSpace(strings.SplitN(string(content), "\n", 2)[0])
	start := strings.LastIndex(line, "<")
	end := strings.LastIndex(line, ">")
	if start <= 0 || end <= start {
		return Signature{}, false
	}

	name := strings.TrimSpace(line[:start])
	email := strings.TrimSpace(line[start+1 : end])
	if name == "" || email == "" {
		return Signature{}, false
	}
	return Signature{Name: name, Email: email}, true
}

// toObject converts the signature to go-git's form, defaulting the timestamp
// to now.
func (s Signature) toObject() object.Signature {
	when := s.When
	if when.IsZero() {
		when = time.Now()
	}
	return object.Signature{
		Name:  s.Name,
		Email: s.Email,
		When:  when,
	}
}
