package services

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/custodia-labs/todoscout/internal/artifacts"
	"github.com/custodia-labs/todoscout/internal/core/domain"
	"github.com/custodia-labs/todoscout/internal/core/ports/driven"
)

// CollectStage drives the partitioned search for the configured query and
// streams every emitted row straight to the issue sink, so partial
// progress is never lost to an in-memory buffer.
//
// Known limitation, inherited from the backend's retry semantics: a
// rate-limit pause mid-sub-query restarts that sub-query's iteration, so
// rows emitted before the pause can appear twice in the sink. Downstream
// stages collapse duplicates.
type CollectStage struct {
	Searcher   driven.IssueSearcher
	Query      domain.Query
	Span       domain.DateRange
	MaxResults int // negative means unbounded
	Ceiling    int
	OutputPath string

	// RepoArtifactPath, when set, marks this stage done once resolution
	// has already produced its artifact: the sink is no longer needed.
	RepoArtifactPath string

	Log zerolog.Logger
}

// Name implements Stage.
func (s *CollectStage) Name() string { return "collect" }

// Outputs implements Stage.
func (s *CollectStage) Outputs() []string { return []string{s.OutputPath} }

// Probe implements Stage. An interrupted run leaves the sink renamed with
// a .partial suffix, which probes as corrupt so a rerun fails loudly
// instead of trusting an incomplete sink.
func (s *CollectStage) Probe() (artifacts.Status, error) {
	if _, err := os.Stat(partialPath(s.OutputPath)); err == nil {
		return artifacts.StatusCorrupt, fmt.Errorf(
			"found partial issue sink %s from an interrupted run; inspect or delete it to continue",
			partialPath(s.OutputPath))
	}

	if s.RepoArtifactPath != "" {
		if status, _ := artifacts.ProbeJSON(s.RepoArtifactPath); status == artifacts.StatusReady {
			return artifacts.StatusReady, nil
		}
	}
	return artifacts.ProbeCSV(s.OutputPath, artifacts.IssueHeader)
}

// Run implements Stage.
func (s *CollectStage) Run(ctx context.Context) error {
	s.Log.Info().Str("query", s.Query.String()).Msg("search query built")

	w, err := artifacts.NewIssueWriter(s.OutputPath)
	if err != nil {
		return err
	}

	search := &PartitionedSearch{Searcher: s.Searcher, Ceiling: s.Ceiling, Log: s.Log}
	emitted, runErr := search.Run(ctx, s.Query, s.Span, s.MaxResults, w.Append)

	if closeErr := w.Close(); runErr == nil {
		runErr = closeErr
	}
	if runErr != nil {
		// Keep what was collected for inspection, but out of the probe's
		// way so the next run does not mistake it for a complete sink.
		if mvErr := os.Rename(s.OutputPath, partialPath(s.OutputPath)); mvErr != nil {
			s.Log.Error().Err(mvErr).Msg("could not set aside partial issue sink")
		}
		return fmt.Errorf("after %d emitted rows: %w", emitted, runErr)
	}

	s.Log.Info().
		Int("results", emitted).
		Str("output", s.OutputPath).
		Msg("issue collection finished; sink may contain duplicates, downstream dedup collapses them")
	return nil
}

func partialPath(path string) string {
	return path + ".partial"
}
