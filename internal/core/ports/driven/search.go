package driven

import (
	"context"

	"github.com/custodia-labs/todoscout/internal/core/domain"
)

// IssueSearchPage is one executed search's lazy result sequence plus the
// backend's reported total for the whole query.
type IssueSearchPage interface {
	// Total returns the backend-reported total result count for the query,
	// which can exceed the number of results the backend will actually
	// serve.
	Total() int

	// Each streams at most limit results to fn, fetching further pages
	// from the backend as needed. A non-nil error from fn stops the
	// iteration and is returned unchanged.
	Each(ctx context.Context, limit int, fn func(domain.IssueRecord) error) error
}

// IssueSearcher executes one issue search query.
type IssueSearcher interface {
	SearchIssues(ctx context.Context, query string) (IssueSearchPage, error)
}

// RepositoryFetcher looks up one repository's metadata by owner/name.
// A missing or inaccessible repository is reported via a RemoteError for
// which IsGone returns true; other backend failures carry their status and
// payload in the RemoteError as well.
type RepositoryFetcher interface {
	FetchRepository(ctx context.Context, fullName string) (domain.RepoMetadata, error)
}
