package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/custodia-labs/todoscout/internal/core/domain"
	"github.com/custodia-labs/todoscout/internal/core/ports/driven"
)

// DefaultCeiling is the backend's fixed per-query result ceiling. A
// sub-query whose reported total reaches the ceiling cannot be paged
// through safely and must be narrowed.
const DefaultCeiling = 1000

// ErrUnresolvableRange means a one-second-wide sub-range still exceeds the
// result ceiling, so the date domain cannot be partitioned finely enough.
// This aborts the whole collection rather than looping forever.
var ErrUnresolvableRange = errors.New("sub-query exceeds result ceiling at one-second resolution")

// PartitionedSearch enumerates every result of a conceptually unbounded
// query by adaptively bisecting the query's creation-date domain whenever
// a sub-query's reported total would exceed the backend's per-query
// ceiling. Results are emitted in increasing date-range order with
// one-second adjacency between resolved sub-ranges.
type PartitionedSearch struct {
	Searcher driven.IssueSearcher
	Ceiling  int // defaults to DefaultCeiling when <= 0
	Log      zerolog.Logger
}

// Run enumerates base over span, emitting each result exactly once per
// resolved sub-range. A non-negative maxResults stops the enumeration
// early once that many results have been emitted; unexplored ranges are
// then never visited. Returns the number of results emitted.
func (s *PartitionedSearch) Run(
	ctx context.Context,
	base domain.Query,
	span domain.DateRange,
	maxResults int,
	emit func(domain.IssueRecord) error,
) (int, error) {
	if err := span.Validate(); err != nil {
		return 0, err
	}

	ceiling := s.Ceiling
	if ceiling <= 0 {
		ceiling = DefaultCeiling
	}
	unbounded := maxResults < 0

	emitted := 0
	curStart := span.Start
	for unbounded || emitted < maxResults {
		// Widest remaining span first; bisect only when the backend
		// reports too many results.
		curEnd := span.End
		for {
			sub := domain.DateRange{Start: curStart, End: curEnd}
			s.Log.Info().
				Time("from", sub.Start).
				Time("to", sub.End).
				Msg("searching sub-range")

			page, err := s.Searcher.SearchIssues(ctx, base.CreatedBetween(sub).String())
			if err != nil {
				return emitted, err
			}

			if page.Total() < ceiling {
				limit := page.Total()
				if !unbounded && limit > maxResults-emitted {
					limit = maxResults - emitted
				}
				s.Log.Info().
					Int("total", page.Total()).
					Int("taking", limit).
					Msg("processing sub-range")

				n := 0
				err := page.Each(ctx, limit, func(rec domain.IssueRecord) error {
					n++
					return emit(rec)
				})
				emitted += n
				if err != nil {
					return emitted, err
				}
				break
			}

			s.Log.Info().
				Int("total", page.Total()).
				Msg("sub-range exceeds ceiling; bisecting")

			halved := sub.Halve()
			if !halved.End.Before(curEnd) {
				return emitted, fmt.Errorf("range %s..%s: %w",
					sub.Start.Format(time.RFC3339), sub.End.Format(time.RFC3339),
					ErrUnresolvableRange)
			}
			curEnd = halved.End
		}

		if curEnd.Equal(span.End) {
			break
		}
		// The backend's date qualifier is inclusive on both ends, so the
		// next sub-range starts one second past the resolved one.
		curStart = curEnd.Add(time.Second)
	}
	return emitted, nil
}
