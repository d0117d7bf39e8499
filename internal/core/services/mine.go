package services

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/custodia-labs/todoscout/internal/artifacts"
	"github.com/custodia-labs/todoscout/internal/core/domain"
	"github.com/custodia-labs/todoscout/internal/core/ports/driven"
	"github.com/custodia-labs/todoscout/internal/todos"
)

// MineStage walks every cloned repository's commit history, oldest first,
// partitioned at the earliest-matched-issue timestamp. Commits strictly
// before that boundary with exactly one parent are mined for TODO-like
// signals; merge commits carry no single meaningful diff and the root has
// no prior state to diff against, so both are excluded. Repositories with
// no matched issue have no knowable boundary and are skipped entirely.
type MineStage struct {
	Opener        driven.HistoryOpener
	ReposPath     string
	CloneDir      string
	SignalsPath   string
	CloneInfoPath string
	Log           zerolog.Logger
}

// Name implements Stage.
func (s *MineStage) Name() string { return "mine" }

// Outputs implements Stage.
func (s *MineStage) Outputs() []string {
	return []string{s.SignalsPath, s.CloneInfoPath}
}

// Probe implements Stage. The stage is done only when both of its
// artifacts are valid; anything less reruns the traversal from scratch,
// which is safe because mining is a deterministic local computation that
// truncates its outputs on start.
func (s *MineStage) Probe() (artifacts.Status, error) {
	sigStatus, _ := artifacts.ProbeCSV(s.SignalsPath, artifacts.SignalHeader)
	infoStatus, _ := artifacts.ProbeCSV(s.CloneInfoPath, artifacts.CloneInfoHeader)
	if sigStatus == artifacts.StatusReady && infoStatus == artifacts.StatusReady {
		return artifacts.StatusReady, nil
	}
	return artifacts.StatusAbsent, nil
}

// Run implements Stage.
func (s *MineStage) Run(ctx context.Context) error {
	repos, err := artifacts.ReadRepoArtifact(s.ReposPath)
	if err != nil {
		return err
	}

	w, err := artifacts.NewSignalWriter(s.SignalsPath)
	if err != nil {
		return err
	}
	defer w.Close()

	var outcomes []domain.CloneOutcome
	var mined, noIssue, notCloned, walkFailed int
	for _, name := range acceptedNames(repos) {
		if err := ctx.Err(); err != nil {
			return err
		}

		boundary, ok := repos[name].EarliestIssue()
		if !ok {
			noIssue++
			continue
		}

		path := clonePath(s.CloneDir, name)
		if _, err := os.Stat(path); err != nil {
			notCloned++
			continue
		}

		outcome, err := s.mineRepo(name, path, boundary, w)
		if err != nil {
			return err
		}
		if !outcome.Cloned {
			walkFailed++
			continue
		}
		mined++
		outcomes = append(outcomes, outcome)
	}

	if err := artifacts.WriteCloneInfo(s.CloneInfoPath, outcomes); err != nil {
		return err
	}

	s.Log.Info().
		Int("mined", mined).
		Int("no_matched_issue", noIssue).
		Int("not_cloned", notCloned).
		Int("walk_failed", walkFailed).
		Str("signals", s.SignalsPath).
		Str("clone_info", s.CloneInfoPath).
		Msg("history mining finished")
	return nil
}

// mineRepo walks one repository. A broken working copy is tolerated (the
// outcome comes back not-Cloned); a sink write failure is a local I/O
// fault and aborts the stage.
func (s *MineStage) mineRepo(
	name, path string, boundary time.Time, w *artifacts.SignalWriter,
) (domain.CloneOutcome, error) {
	h, err := s.Opener.Open(path)
	if err != nil {
		s.Log.Warn().Str("repo", name).Err(err).Msg("cannot open working copy; skipping")
		return domain.CloneOutcome{}, nil
	}
	defer h.Close()

	owner, _, _ := strings.Cut(name, "/")
	total, pre := 0, 0
	var sinkErr error

	walkErr := h.WalkOldestFirst(func(c driven.Commit) error {
		total++
		if !c.When().Before(boundary) || c.ParentCount() != 1 {
			return nil
		}
		pre++

		patch, err := c.PatchAgainstParent()
		if err != nil {
			return err
		}
		for _, m := range todos.Scan(patch) {
			sig := domain.MinedSignal{
				Repo:       name,
				Owner:      owner,
				Title:      m.Title,
				Body:       m.Body,
				CommitDate: c.When(),
				Epoch:      domain.EpochPre,
			}
			if err := w.Append(sig); err != nil {
				sinkErr = err
				return err
			}
		}
		return nil
	})

	if sinkErr != nil {
		s.Log.Error().Str("repo", name).Err(sinkErr).Msg("signal sink write failed")
		return domain.CloneOutcome{}, sinkErr
	}
	if walkErr != nil {
		s.Log.Warn().Str("repo", name).Err(walkErr).Msg("history walk failed; skipping repository")
		return domain.CloneOutcome{}, nil
	}

	return domain.CloneOutcome{
		Repo:          name,
		Cloned:        true,
		TotalCommits:  total,
		EarliestIssue: boundary,
		PreCommits:    pre,
	}, nil
}
