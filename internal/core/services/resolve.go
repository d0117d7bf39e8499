package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/custodia-labs/todoscout/internal/artifacts"
	"github.com/custodia-labs/todoscout/internal/core/domain"
	"github.com/custodia-labs/todoscout/internal/core/ports/driven"
)

// ResolveStage streams the issue sink row by row, fetches each distinct
// repository's metadata exactly once, applies the acceptance policy, and
// attaches matched issue references to accepted repositories. A single
// repository's remote failure never aborts the stage; an unexpected local
// fault flushes everything resolved so far before propagating.
type ResolveStage struct {
	Fetcher    driven.RepositoryFetcher
	Policy     domain.AcceptancePolicy
	IssuesPath string
	OutputPath string
	Log        zerolog.Logger
}

type resolveTally struct {
	accepted int
	skipped  int
	gone     int
	failed   int
}

// Name implements Stage.
func (s *ResolveStage) Name() string { return "resolve" }

// Outputs implements Stage.
func (s *ResolveStage) Outputs() []string { return []string{s.OutputPath} }

// Probe implements Stage.
func (s *ResolveStage) Probe() (artifacts.Status, error) {
	return artifacts.ProbeJSON(s.OutputPath)
}

// Run implements Stage.
func (s *ResolveStage) Run(ctx context.Context) error {
	reader, err := artifacts.OpenIssueReader(s.IssuesPath)
	if err != nil {
		return err
	}
	defer reader.Close()

	repos := make(map[string]domain.RepoEntry)
	var tally resolveTally
	var lastRepo string
	var runErr error

	for {
		rec, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			runErr = err
			break
		}

		entry, seen := repos[rec.Repo]
		if !seen {
			entry, err = s.resolveOne(ctx, rec.Repo, &tally)
			if err != nil {
				runErr = err
				break
			}
			repos[rec.Repo] = entry
		}

		if !entry.Skipped && !hasIssue(entry.Issues, rec.Number) {
			entry.Issues = append(entry.Issues, domain.IssueRef{
				Number:    rec.Number,
				CreatedAt: rec.CreatedAt,
				State:     rec.State,
			})
			repos[rec.Repo] = entry
		}
		lastRepo = rec.Repo
	}

	// Flush whatever was resolved, even on the failure path, so a manual
	// resume has the partial picture.
	if werr := artifacts.WriteRepoArtifact(s.OutputPath, repos); werr != nil && runErr == nil {
		runErr = werr
	}

	if runErr != nil {
		s.Log.Error().
			Str("last_repo", lastRepo).
			Err(runErr).
			Msg("resolution aborted; partial artifact flushed")
		return fmt.Errorf("after repository %q: %w", lastRepo, runErr)
	}

	s.Log.Info().
		Int("accepted", tally.accepted).
		Int("skipped", tally.skipped).
		Int("gone", tally.gone).
		Int("failed", tally.failed).
		Int("distinct_repos", len(repos)).
		Str("output", s.OutputPath).
		Msg("repository resolution finished")
	return nil
}

// resolveOne fetches and classifies a repository seen for the first time
// in this pass. Remote per-entity failures become terminal skipped/error
// entries; anything else (retry budget exhausted, cancellation, local
// faults) aborts the stage.
func (s *ResolveStage) resolveOne(
	ctx context.Context, fullName string, tally *resolveTally,
) (domain.RepoEntry, error) {
	meta, err := s.Fetcher.FetchRepository(ctx, fullName)
	if err == nil {
		if s.Policy.Accepts(meta) {
			tally.accepted++
			s.Log.Debug().Str("repo", fullName).Msg("repository accepted")
			return domain.AcceptedEntry(meta), nil
		}
		tally.skipped++
		s.Log.Debug().Str("repo", fullName).Msg("repository skipped by policy")
		return domain.RepoEntry{Skipped: true}, nil
	}

	var remote *driven.RemoteError
	if driven.IsGone(err) {
		errors.As(err, &remote)
		tally.gone++
		s.Log.Warn().Str("repo", fullName).Int("status", remote.Status).
			Msg("repository gone or inaccessible; recorded and not retried")
		return domain.RepoEntry{
			Skipped: true,
			Error:   &domain.RemoteCause{Status: remote.Status},
		}, nil
	}
	if errors.As(err, &remote) {
		tally.failed++
		s.Log.Warn().Str("repo", fullName).Int("status", remote.Status).
			Str("payload", remote.Body).
			Msg("repository metadata fetch failed; recorded and not retried")
		return domain.RepoEntry{
			Skipped: true,
			Error:   &domain.RemoteCause{Status: remote.Status, Data: remote.Body},
		}, nil
	}

	return domain.RepoEntry{}, err
}

func hasIssue(refs []domain.IssueRef, number int) bool {
	for _, ref := range refs {
		if ref.Number == number {
			return true
		}
	}
	return false
}
