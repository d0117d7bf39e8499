package services

import (
	"sort"

	"github.com/custodia-labs/todoscout/internal/artifacts"
	"github.com/custodia-labs/todoscout/internal/core/domain"
)

// TopRepos loads the repository artifact and returns the n most-starred
// accepted repositories. Ties break on identifier so the order is stable.
func TopRepos(reposPath string, n int) ([]domain.RepoMetadata, error) {
	repos, err := artifacts.ReadRepoArtifact(reposPath)
	if err != nil {
		return nil, err
	}

	accepted := make([]domain.RepoMetadata, 0, len(repos))
	for name, entry := range repos {
		if entry.Skipped {
			continue
		}
		accepted = append(accepted, entry.Metadata(name))
	}
	sort.Slice(accepted, func(i, j int) bool {
		if accepted[i].Stars != accepted[j].Stars {
			return accepted[i].Stars > accepted[j].Stars
		}
		return accepted[i].FullName < accepted[j].FullName
	})

	if n > 0 && n < len(accepted) {
		accepted = accepted[:n]
	}
	return accepted, nil
}
