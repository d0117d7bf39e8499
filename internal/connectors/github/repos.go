package github

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/todoscout/internal/core/domain"
	"github.com/custodia-labs/todoscout/internal/core/ports/driven"
)

var _ driven.RepositoryFetcher = (*Client)(nil)

// FetchRepository looks up one repository's metadata. Not-found and
// access-revoked responses surface as driven.RemoteError values for which
// driven.IsGone holds.
func (c *Client) FetchRepository(ctx context.Context, fullName string) (domain.RepoMetadata, error) {
	owner, name, found := strings.Cut(fullName, "/")
	if !found {
		return domain.RepoMetadata{}, fmt.Errorf("invalid repository identifier %q", fullName)
	}

	var meta domain.RepoMetadata
	err := c.caller.Do(ctx, func() error {
		if err := c.pace.Wait(ctx); err != nil {
			return err
		}
		repo, _, err := c.gh.Repositories.Get(ctx, owner, name)
		if err != nil {
			return wrapError(err, "get repository")
		}

		meta = domain.RepoMetadata{
			FullName:  fullName,
			Stars:     repo.GetStargazersCount(),
			Forks:     repo.GetForksCount(),
			Watchers:  repo.GetSubscribersCount(),
			Fork:      repo.GetFork(),
			Private:   repo.GetPrivate(),
			Archived:  repo.GetArchived(),
			Size:      repo.GetSize(),
			CreatedAt: repo.GetCreatedAt().Time,
			UpdatedAt: repo.GetUpdatedAt().Time,
			CloneURL:  repo.GetCloneURL(),
		}
		return nil
	})
	return meta, err
}
