package gitrepo

import (
	"fmt"
	"strings"
	"time"

	git2go "github.com/libgit2/git2go/v34"

	"github.com/custodia-labs/todoscout/internal/core/ports/driven"
)

var _ driven.HistoryOpener = Opener{}

// Opener opens local repositories with libgit2.
type Opener struct{}

// Open returns a history handle for the repository at path.
func (Opener) Open(path string) (driven.History, error) {
	repo, err := git2go.OpenRepository(path)
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}
	return &history{repo: repo}, nil
}

type history struct {
	repo *git2go.Repository
}

// WalkOldestFirst iterates all commits reachable from HEAD, oldest first.
func (h *history) WalkOldestFirst(fn func(driven.Commit) error) error {
	walk, err := h.repo.Walk()
	if err != nil {
		return fmt.Errorf("create revwalk: %w", err)
	}
	defer walk.Free()

	walk.Sorting(git2go.SortTime | git2go.SortReverse)
	if err := walk.PushHead(); err != nil {
		return fmt.Errorf("push HEAD to revwalk: %w", err)
	}

	var fnErr error
	err = walk.Iterate(func(c *git2go.Commit) bool {
		if err := fn(&commit{c: c, repo: h.repo}); err != nil {
			fnErr = err
			return false
		}
		return true
	})
	if fnErr != nil {
		return fnErr
	}
	if err != nil {
		return fmt.Errorf("revwalk iterate: %w", err)
	}
	return nil
}

// Close releases the repository resources.
func (h *history) Close() {
	if h.repo != nil {
		h.repo.Free()
		h.repo = nil
	}
}

type commit struct {
	c    *git2go.Commit
	repo *git2go.Repository
}

// When returns the committer timestamp.
func (c *commit) When() time.Time {
	return c.c.Committer().When
}

// ParentCount returns the number of parent commits.
func (c *commit) ParentCount() int {
	return int(c.c.ParentCount())
}

// PatchAgainstParent renders the unified diff of this commit against its
// sole parent.
func (c *commit) PatchAgainstParent() (string, error) {
	parent := c.c.Parent(0)
	if parent == nil {
		return "", fmt.Errorf("commit %s has no parent", c.c.Id())
	}
	defer parent.Free()

	parentTree, err := parent.Tree()
	if err != nil {
		return "", fmt.Errorf("get parent tree: %w", err)
	}
	defer parentTree.Free()

	tree, err := c.c.Tree()
	if err != nil {
		return "", fmt.Errorf("get commit tree: %w", err)
	}
	defer tree.Free()

	diff, err := c.repo.DiffTreeToTree(parentTree, tree, nil)
	if err != nil {
		return "", fmt.Errorf("diff trees: %w", err)
	}
	defer diff.Free()

	numDeltas, err := diff.NumDeltas()
	if err != nil {
		return "", fmt.Errorf("count deltas: %w", err)
	}

	var sb strings.Builder
	for i := 0; i < numDeltas; i++ {
		patch, err := diff.Patch(i)
		if err != nil {
			return "", fmt.Errorf("render patch %d: %w", i, err)
		}
		text, err := patch.String()
		patch.Free()
		if err != nil {
			return "", fmt.Errorf("render patch %d: %w", i, err)
		}
		sb.WriteString(text)
	}
	return sb.String(), nil
}
