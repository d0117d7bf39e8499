package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/todoscout/internal/core/domain"
	"github.com/custodia-labs/todoscout/internal/core/ports/driven"
)

var searchBase = time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)

func at(seconds int) time.Time {
	return searchBase.Add(time.Duration(seconds) * time.Second)
}

func issueAt(repo string, number, seconds int) domain.IssueRecord {
	return domain.IssueRecord{Repo: repo, Number: number, CreatedAt: at(seconds)}
}

type stubPage struct {
	total   int
	records []domain.IssueRecord
	eachErr error
}

func (p *stubPage) Total() int { return p.total }

func (p *stubPage) Each(_ context.Context, limit int, fn func(domain.IssueRecord) error) error {
	for i, rec := range p.records {
		if i >= limit {
			break
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
	return p.eachErr
}

// rangeSearcher serves a fixed issue timeline, answering each query with
// the issues whose creation time falls inside the query's created range.
type rangeSearcher struct {
	t       *testing.T
	issues  []domain.IssueRecord
	queried []domain.DateRange
}

func (s *rangeSearcher) SearchIssues(_ context.Context, query string) (driven.IssueSearchPage, error) {
	r := parseCreated(s.t, query)
	s.queried = append(s.queried, r)

	var hits []domain.IssueRecord
	for _, rec := range s.issues {
		if !rec.CreatedAt.Before(r.Start) && !rec.CreatedAt.After(r.End) {
			hits = append(hits, rec)
		}
	}
	return &stubPage{total: len(hits), records: hits}, nil
}

func parseCreated(t *testing.T, query string) domain.DateRange {
	t.Helper()

	i := strings.LastIndex(query, "created:")
	require.GreaterOrEqual(t, i, 0, "query %q has no created qualifier", query)
	from, to, found := strings.Cut(query[i+len("created:"):], "..")
	require.True(t, found)

	start, err := time.Parse(time.RFC3339, from)
	require.NoError(t, err)
	end, err := time.Parse(time.RFC3339, to)
	require.NoError(t, err)
	return domain.DateRange{Start: start, End: end}
}

func TestPartitionedSearch_BisectsUntilUnderCeiling(t *testing.T) {
	searcher := &rangeSearcher{t: t, issues: []domain.IssueRecord{
		issueAt("a/one", 1, 0),
		issueAt("a/one", 2, 5),
		issueAt("b/two", 3, 10),
		issueAt("b/two", 4, 40),
		issueAt("c/three", 5, 50),
		issueAt("c/three", 6, 55),
	}}
	search := &PartitionedSearch{Searcher: searcher, Ceiling: 4, Log: zerolog.Nop()}

	var got []int
	emitted, err := search.Run(context.Background(), domain.NewQuery(),
		domain.DateRange{Start: at(0), End: at(60)}, -1,
		func(rec domain.IssueRecord) error {
			got = append(got, rec.Number)
			return nil
		})

	require.NoError(t, err)
	assert.Equal(t, 6, emitted)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, got)

	// Full span first, then its lower half, then the adjacent remainder.
	require.Len(t, searcher.queried, 3)
	assert.Equal(t, domain.DateRange{Start: at(0), End: at(60)}, searcher.queried[0])
	assert.Equal(t, domain.DateRange{Start: at(0), End: at(30)}, searcher.queried[1])
	assert.Equal(t, domain.DateRange{Start: at(31), End: at(60)}, searcher.queried[2])
}

func TestPartitionedSearch_ResolvedRangesTileWithOneSecondGaps(t *testing.T) {
	issues := make([]domain.IssueRecord, 0, 40)
	for i := 0; i < 40; i++ {
		issues = append(issues, issueAt(fmt.Sprintf("o/r%d", i), i+1, i*25))
	}
	searcher := &rangeSearcher{t: t, issues: issues}
	search := &PartitionedSearch{Searcher: searcher, Ceiling: 10, Log: zerolog.Nop()}

	emitted, err := search.Run(context.Background(), domain.NewQuery(),
		domain.DateRange{Start: at(0), End: at(1000)}, -1,
		func(domain.IssueRecord) error { return nil })

	require.NoError(t, err)
	assert.Equal(t, 40, emitted)

	// Reconstruct the resolved sub-ranges (those the searcher reported under
	// the ceiling) and check the tiling invariant.
	var resolved []domain.DateRange
	for _, r := range searcher.queried {
		hits := 0
		for _, rec := range issues {
			if !rec.CreatedAt.Before(r.Start) && !rec.CreatedAt.After(r.End) {
				hits++
			}
		}
		if hits < 10 {
			resolved = append(resolved, r)
		}
	}
	require.NotEmpty(t, resolved)
	assert.Equal(t, at(0), resolved[0].Start)
	assert.Equal(t, at(1000), resolved[len(resolved)-1].End)
	for i := 1; i < len(resolved); i++ {
		assert.Equal(t, resolved[i-1].End.Add(time.Second), resolved[i].Start)
	}
}

func TestPartitionedSearch_StopsAtMaxResults(t *testing.T) {
	searcher := &rangeSearcher{t: t, issues: []domain.IssueRecord{
		issueAt("a/one", 1, 0),
		issueAt("a/one", 2, 5),
		issueAt("b/two", 3, 10),
		issueAt("b/two", 4, 40),
		issueAt("c/three", 5, 50),
		issueAt("c/three", 6, 55),
	}}
	search := &PartitionedSearch{Searcher: searcher, Ceiling: 4, Log: zerolog.Nop()}

	emitted, err := search.Run(context.Background(), domain.NewQuery(),
		domain.DateRange{Start: at(0), End: at(60)}, 3,
		func(domain.IssueRecord) error { return nil })

	require.NoError(t, err)
	assert.Equal(t, 3, emitted)
	// The first resolved sub-range satisfied the budget; the remainder of
	// the span was never queried.
	require.Len(t, searcher.queried, 2)
	assert.Equal(t, at(30), searcher.queried[1].End)
}

func TestPartitionedSearch_ZeroBudgetQueriesNothing(t *testing.T) {
	searcher := &rangeSearcher{t: t}
	search := &PartitionedSearch{Searcher: searcher, Ceiling: 4, Log: zerolog.Nop()}

	emitted, err := search.Run(context.Background(), domain.NewQuery(),
		domain.DateRange{Start: at(0), End: at(60)}, 0,
		func(domain.IssueRecord) error { return nil })

	require.NoError(t, err)
	assert.Zero(t, emitted)
	assert.Empty(t, searcher.queried)
}

type saturatedSearcher struct{}

func (saturatedSearcher) SearchIssues(context.Context, string) (driven.IssueSearchPage, error) {
	return &stubPage{total: 1000}, nil
}

func TestPartitionedSearch_OneSecondRangeOverCeilingFails(t *testing.T) {
	search := &PartitionedSearch{Searcher: saturatedSearcher{}, Log: zerolog.Nop()}

	emitted, err := search.Run(context.Background(), domain.NewQuery(),
		domain.DateRange{Start: at(0), End: at(1)}, -1,
		func(domain.IssueRecord) error { return nil })

	assert.ErrorIs(t, err, ErrUnresolvableRange)
	assert.Zero(t, emitted)
}

func TestPartitionedSearch_InvalidSpanRejected(t *testing.T) {
	search := &PartitionedSearch{Searcher: saturatedSearcher{}, Log: zerolog.Nop()}

	_, err := search.Run(context.Background(), domain.NewQuery(),
		domain.DateRange{Start: at(10), End: at(0)}, -1,
		func(domain.IssueRecord) error { return nil })

	assert.Error(t, err)
}

func TestPartitionedSearch_EmitErrorPropagates(t *testing.T) {
	searcher := &rangeSearcher{t: t, issues: []domain.IssueRecord{
		issueAt("a/one", 1, 0),
		issueAt("a/one", 2, 5),
	}}
	search := &PartitionedSearch{Searcher: searcher, Ceiling: 4, Log: zerolog.Nop()}
	boom := errors.New("sink full")

	emitted, err := search.Run(context.Background(), domain.NewQuery(),
		domain.DateRange{Start: at(0), End: at(60)}, -1,
		func(domain.IssueRecord) error { return boom })

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, emitted)
}
