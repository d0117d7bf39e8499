package github

import (
	"context"
	"strings"

	gh "github.com/google/go-github/v80/github"

	"github.com/custodia-labs/todoscout/internal/core/domain"
	"github.com/custodia-labs/todoscout/internal/core/ports/driven"
)

var _ driven.IssueSearcher = (*Client)(nil)

// SearchIssues executes one search query and returns its lazy result page
// plus the backend-reported total.
func (c *Client) SearchIssues(ctx context.Context, query string) (driven.IssueSearchPage, error) {
	var total int
	err := c.caller.Do(ctx, func() error {
		if err := c.pace.Wait(ctx); err != nil {
			return err
		}
		res, _, err := c.gh.Search.Issues(ctx, query, &gh.SearchOptions{
			ListOptions: gh.ListOptions{PerPage: 1},
		})
		if err != nil {
			return wrapError(err, "search issues")
		}
		total = res.GetTotal()
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &searchPage{client: c, query: query, total: total}, nil
}

// searchPage pages through one sub-query's results on demand.
type searchPage struct {
	client *Client
	query  string
	total  int
}

// Total returns the backend-reported total for the query.
func (p *searchPage) Total() int {
	return p.total
}

// Each streams at most limit results to fn.
//
// The whole iteration is one retry unit: if a rate-limit pause hits
// mid-iteration, the retry restarts from the first page, so rows emitted
// before the pause can be emitted again. That duplication is a documented
// limitation of the sink; downstream stages collapse duplicates.
func (p *searchPage) Each(ctx context.Context, limit int, fn func(domain.IssueRecord) error) error {
	if limit <= 0 {
		return nil
	}

	return p.client.caller.Do(ctx, func() error {
		emitted := 0
		opts := &gh.SearchOptions{
			Sort:        "created",
			Order:       "asc",
			ListOptions: gh.ListOptions{PerPage: p.client.perPage},
		}
		for {
			if err := p.client.pace.Wait(ctx); err != nil {
				return err
			}
			res, resp, err := p.client.gh.Search.Issues(ctx, p.query, opts)
			if err != nil {
				return wrapError(err, "search issues page")
			}

			for _, issue := range res.Issues {
				if emitted >= limit {
					return nil
				}
				if err := fn(issueToRecord(issue)); err != nil {
					return err
				}
				emitted++
			}

			if emitted >= limit || resp.NextPage == 0 {
				return nil
			}
			opts.Page = resp.NextPage
		}
	})
}

// issueToRecord maps a search hit onto the sink's row model. The issue/PR
// kind is inferred locally: the search payload carries a pull-request link
// only for pull requests, so no extra remote call is needed.
func issueToRecord(issue *gh.Issue) domain.IssueRecord {
	kind := domain.KindIssue
	if issue.IsPullRequest() {
		kind = domain.KindPR
	}

	rec := domain.IssueRecord{
		Repo:      repoFromIssueURL(issue.GetRepositoryURL()),
		Number:    issue.GetNumber(),
		Title:     issue.GetTitle(),
		State:     issue.GetState(),
		Kind:      kind,
		CreatedAt: issue.GetCreatedAt().Time,
		UpdatedAt: issue.GetUpdatedAt().Time,
		Comments:  issue.GetComments(),
		Body:      issue.GetBody(),
	}
	if issue.ClosedAt != nil {
		rec.ClosedAt = issue.ClosedAt.Time
	}
	return rec
}

// repoFromIssueURL extracts owner/name from a repository API URL of the
// form .../repos/{owner}/{name}.
func repoFromIssueURL(url string) string {
	parts := strings.Split(url, "/")
	if len(parts) < 2 {
		return ""
	}
	return parts[len(parts)-2] + "/" + parts[len(parts)-1]
}
