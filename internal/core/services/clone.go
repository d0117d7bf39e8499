package services

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/custodia-labs/todoscout/internal/artifacts"
	"github.com/custodia-labs/todoscout/internal/core/domain"
	"github.com/custodia-labs/todoscout/internal/core/ports/driven"
)

// progressEvery controls how often the clone loop logs a progress line.
const progressEvery = 50

// CloneStage materializes each accepted repository as a local working
// copy under CloneDir/owner/name. Repositories are visited in
// lexicographic identifier order so reruns and manual resume points are
// reproducible. One repository's clone failure is logged and counted but
// never stops the stage.
type CloneStage struct {
	Cloner    driven.Cloner
	ReposPath string
	CloneDir  string

	// ResumeAt skips every repository sorted before it without attempting
	// network work, resuming real cloning at that identifier.
	ResumeAt string

	Log zerolog.Logger
}

// Name implements Stage.
func (s *CloneStage) Name() string { return "clone" }

// Outputs implements Stage.
func (s *CloneStage) Outputs() []string { return []string{s.CloneDir} }

// Probe implements Stage. The stage always runs: its per-repository
// outputs are probed individually in Run, so an interrupted run resumes
// by skipping working copies that already exist.
func (s *CloneStage) Probe() (artifacts.Status, error) {
	return artifacts.StatusAbsent, nil
}

// Run implements Stage.
func (s *CloneStage) Run(ctx context.Context) error {
	repos, err := artifacts.ReadRepoArtifact(s.ReposPath)
	if err != nil {
		return err
	}
	names := acceptedNames(repos)

	var attempted, failed, resumeSkipped, alreadyCloned int
	var lastOK string
	for i, name := range names {
		if err := ctx.Err(); err != nil {
			return err
		}
		if s.ResumeAt != "" && name < s.ResumeAt {
			resumeSkipped++
			continue
		}

		path := clonePath(s.CloneDir, name)
		if _, err := os.Stat(path); err == nil {
			alreadyCloned++
			continue
		}

		attempted++
		if err := s.Cloner.Clone(ctx, repos[name].CloneURL, path); err != nil {
			failed++
			s.Log.Warn().Str("repo", name).Err(err).Msg("clone failed; continuing")
			continue
		}
		lastOK = name

		if attempted%progressEvery == 0 {
			s.Log.Info().
				Int("done", i+1).
				Int("of", len(names)).
				Msg("cloning progress")
		}
	}

	s.Log.Info().
		Int("attempted", attempted).
		Int("failed", failed).
		Int("resume_skipped", resumeSkipped).
		Int("already_cloned", alreadyCloned).
		Str("last_successful", lastOK).
		Msg("cloning finished")
	return nil
}

// acceptedNames returns the accepted repository identifiers in
// lexicographic order.
func acceptedNames(repos map[string]domain.RepoEntry) []string {
	names := make([]string, 0, len(repos))
	for name, entry := range repos {
		if entry.Skipped {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// clonePath derives a repository's local path from its identifier.
func clonePath(cloneDir, fullName string) string {
	owner, name, _ := strings.Cut(fullName, "/")
	return filepath.Join(cloneDir, owner, name)
}
