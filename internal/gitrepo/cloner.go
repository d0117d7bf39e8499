package gitrepo

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	git2go "github.com/libgit2/git2go/v34"

	"github.com/custodia-labs/todoscout/internal/core/ports/driven"
)

var _ driven.Cloner = Cloner{}

// Cloner clones remote repositories with libgit2.
type Cloner struct{}

// Clone materializes remoteURL as a fully fetched working copy at
// localPath, creating parent directories as needed.
func (Cloner) Clone(ctx context.Context, remoteURL, localPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return fmt.Errorf("create clone dir: %w", err)
	}

	repo, err := git2go.Clone(remoteURL, localPath, &git2go.CloneOptions{})
	if err != nil {
		return fmt.Errorf("clone %s: %w", remoteURL, err)
	}
	repo.Free()
	return nil
}
