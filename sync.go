// Package gitx provides a high-level Go wrapper for go-git operations.
// This file contains remote synchronization operations (fetch, push).
package gitx

import (
	"context"
	"errors"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/transport"
)

// Fetch refreshes remote-tracking references from the specified remote. It
// supports pruning stale remote branches and shallow fetching when depth > 0.
// Returns ErrAlreadyUpToDate if there are no changes to fetch.
//
// When Options.Fetcher is set it replaces the default go-git transport;
// otherwise authentication is resolved through Options.Auth.
//
// Context timeout/cancellation is honored during the fetch operation.
func (r *Repo) Fetch(ctx context.Context, remote string, prune bool, depth int) error {
	if remote == "" {
		remote = DefaultRemoteName
	}

	if r.options.Fetcher != nil {
		return r.options.Fetcher.Fetch(ctx, remote, prune, depth)
	}

	fetchOpts := &git.FetchOptions{
		RemoteName: remote,
		Prune:      prune,
		Depth:      depth,
	}

	authMethod, err := r.authFor(remote)
	if err != nil {
		return err
	}
	fetchOpts.Auth = authMethod

	err = r.repo.FetchContext(ctx, fetchOpts)
	if err != nil {
		if errors.Is(err, git.ErrRemoteNotFound) {
			return WrapError(ErrRemoteMissing, "fetch")
		}
		if errors.Is(err, git.NoErrAlreadyUpToDate) {
			return ErrAlreadyUpToDate
		}
		return WrapError(err, "failed to fetch from remote")
	}

	return nil
}

// Push pushes the current branch to the specified remote.
// It supports force pushing when force is true.
// Returns ErrNotFastForward if the push would overwrite remote changes and force is false.
// Returns ErrAlreadyUpToDate if there are no changes to push.
//
// Context timeout/cancellation is honored during the push operation.
func (r *Repo) Push(ctx context.Context, remote string, force bool) error {
	if remote == "" {
		remote = DefaultRemoteName
	}

	pushOpts := &git.PushOptions{
		RemoteName: remote,
		Force:      force,
	}

	authMethod, err := r.authFor(remote)
	if err != nil {
		return err
	}
	pushOpts.Auth = authMethod

	err = r.repo.PushContext(ctx, pushOpts)
	if err != nil {
		if errors.Is(err, git.ErrRemoteNotFound) {
			return WrapError(ErrRemoteMissing, "push")
		}
		if errors.Is(err, git.NoErrAlreadyUpToDate) {
			return ErrAlreadyUpToDate
		}
		if errors.Is(err, git.ErrNonFastForwardUpdate) {
			return ErrNotFastForward
		}
		return WrapError(err, "failed to push to remote")
	}

	return nil
}

// authFor resolves the auth method for the named remote's first URL, or nil
// when no AuthProvider is configured.
func (r *Repo) authFor(remote string) (transport.AuthMethod, error) {
	if r.options.Auth == nil {
		return nil, nil
	}

	remoteConfig, err := r.repo.Remote(remote)
	if err != nil {
		return nil, WrapError(ErrRemoteMissing, "failed to get remote configuration")
	}

	method, authErr := r.options.Auth.Method(remoteConfig.Config().URLs[0])
	if authErr != nil {
		return nil, WrapError(ErrAuthRequired, "failed to get authentication method")
	}
	return method, nil
}
