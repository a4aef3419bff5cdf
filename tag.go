// Package gitx provides a high-level Go wrapper for go-git operations.
// This file contains tag-related operations for repository management.
package gitx

import (
	"context"
	"path"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// TagFilter is a predicate function for filtering tags.
// Filters are applied progressively - a tag must pass ALL filters to be included.
type TagFilter func(name string, ref *plumbing.Reference) bool

// CreateTag creates a new tag at the specified target revision.
// If annotated is true, an annotated tag is created with the given message
// and the tagger taken from the identity chain. Otherwise a lightweight tag
// is created and the message is ignored.
//
// Context timeout/cancellation is honored during the operation.
func (r *Repo) CreateTag(ctx context.Context, name, target, message string, annotated bool) error {
	if name == "" {
		return WrapError(ErrInvalidRef, "tag name cannot be empty")
	}

	if target == "" {
		return WrapError(ErrInvalidRef, "target revision cannot be empty")
	}

	hash, err := r.repo.ResolveRevision(plumbing.Revision(target))
	if err != nil {
		return WrapError(ErrResolveFailed, "failed to resolve target revision")
	}

	tagRefName := plumbing.NewTagReferenceName(name)
	if _, err := r.repo.Reference(tagRefName, true); err == nil {
		return WrapErrorf(ErrTagExists, "tag %q", name)
	}

	if !annotated {
		tagRef := plumbing.NewHashReference(tagRefName, *hash)
		if err := r.repo.Storer.SetReference(tagRef); err != nil {
			return WrapError(err, "failed to create lightweight tag")
		}
		return nil
	}

	if message == "" {
		return WrapError(ErrInvalidRef, "annotated tag requires a message")
	}

	tagger, err := r.resolveIdentity(ctx)
	if err != nil {
		return err
	}

	who := tagger.toObject()
	_, err = r.repo.CreateTag(name, *hash, &git.CreateTagOptions{
		Tagger:  &who,
		Message: message,
	})
	if err != nil {
		return WrapError(err, "failed to create annotated tag")
	}

	return nil
}

// DeleteTag deletes the specified tag from the repository.
// Returns ErrTagMissing if the tag does not exist.
//
// Context timeout/cancellation is honored during the operation.
func (r *Repo) DeleteTag(ctx context.Context, name string) error {
	if name == "" {
		return WrapError(ErrInvalidRef, "tag name cannot be empty")
	}

	tagRefName := plumbing.NewTagReferenceName(name)
	if _, err := r.repo.Reference(tagRefName, true); err != nil {
		return WrapErrorf(ErrTagMissing, "tag %q", name)
	}

	if err := r.repo.Storer.RemoveReference(tagRefName); err != nil {
		return WrapError(err, "failed to delete tag")
	}

	return nil
}

// Tags returns a list of tags that pass all the provided filters.
// If no filters are provided, all tags are returned. Results are sorted
// alphabetically.
//
// Context timeout/cancellation is honored during the operation.
func (r *Repo) Tags(ctx context.Context, filters ...TagFilter) ([]string, error) {
	refs, err := r.repo.References()
	if err != nil {
		return nil, WrapError(err, "failed to get references")
	}

	var tags []string
	err = refs.ForEach(func(ref *plumbing.Reference) error {
		if !ref.Name().IsTag() {
			return nil
		}

		tagName := ref.Name().Short()
		if includeTag(tagName, ref, filters) {
			tags = append(tags, tagName)
		}
		return nil
	})
	if err != nil {
		return nil, WrapError(err, "failed to iterate references")
	}

	sort.Strings(tags)

	return tags, nil
}

func includeTag(name string, ref *plumbing.Reference, filters []TagFilter) bool {
	for _, filter := range filters {
		if filter != nil && !filter(name, ref) {
			return false
		}
	}
	return true
}

// TagPatternFilter returns a filter that matches tags against a glob pattern.
// Supports * (matches any number of characters) and ? (matches single character).
// For example: "v1.*" matches "v1.0", "v1.1", etc.
func TagPatternFilter(pattern string) TagFilter {
	return func(name string, ref *plumbing.Reference) bool {
		if pattern == "" {
			return true
		}
		matched, err := path.Match(pattern, name)
		return err == nil && matched
	}
}

// TagPrefixFilter returns a filter that matches tags with the given prefix.
// For example: "v" matches "v1.0", "v2.0", etc.
func TagPrefixFilter(prefix string) TagFilter {
	return func(name string, ref *plumbing.Reference) bool {
		return strings.HasPrefix(name, prefix)
	}
}

// TagExcludeFilter returns a filter that excludes tags matching the given pattern.
// For example: TagExcludeFilter("*-rc") excludes all release candidates.
func TagExcludeFilter(pattern string) TagFilter {
	includeFilter := TagPatternFilter(pattern)
	return func(name string, ref *plumbing.Reference) bool {
		return !includeFilter(name, ref)
	}
}
