package driven

import (
	"context"
	"time"
)

// Cloner materializes a remote repository as a fully fetched local copy.
type Cloner interface {
	Clone(ctx context.Context, remoteURL, localPath string) error
}

// Commit is one commit observed while walking a local repository.
type Commit interface {
	// When returns the commit timestamp.
	When() time.Time

	// ParentCount returns the number of parent commits. The root commit
	// has zero parents; merge commits have two or more.
	ParentCount() int

	// PatchAgainstParent returns the unified diff of this commit against
	// its sole parent. Only meaningful when ParentCount is exactly one.
	PatchAgainstParent() (string, error)
}

// History is an open local repository handle.
type History interface {
	// WalkOldestFirst iterates all commits reachable from HEAD in
	// oldest-to-newest time order. A non-nil error from fn stops the walk
	// and is returned unchanged.
	WalkOldestFirst(fn func(Commit) error) error

	// Close releases the handle's resources.
	Close()
}

// HistoryOpener opens a local repository for commit iteration.
type HistoryOpener interface {
	Open(localPath string) (History, error)
}
