package services

import (
	"context"
	"errors"
	"io"
	"sort"

	"github.com/rs/zerolog"

	"github.com/custodia-labs/todoscout/internal/artifacts"
	"github.com/custodia-labs/todoscout/internal/core/domain"
)

// MergeStage finalizes a run. It deduplicates the mined pre-epoch signals,
// drops signals whose title resurfaced as a matched issue in the same
// repository, rewrites the signal artifact in place, and joins issue
// counts, clone statistics, and repository metadata into one merged row
// per accepted repository.
type MergeStage struct {
	IssuesPath    string
	ReposPath     string
	CloneInfoPath string
	SignalsPath   string
	OutputPath    string
	Log           zerolog.Logger
}

// Name implements Stage.
func (s *MergeStage) Name() string { return "merge" }

// Outputs implements Stage.
func (s *MergeStage) Outputs() []string { return []string{s.OutputPath, s.SignalsPath} }

// Probe implements Stage.
func (s *MergeStage) Probe() (artifacts.Status, error) {
	return artifacts.ProbeCSV(s.OutputPath, artifacts.MergedHeader)
}

// Run implements Stage.
func (s *MergeStage) Run(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	repos, err := artifacts.ReadRepoArtifact(s.ReposPath)
	if err != nil {
		return err
	}
	issues, err := readDedupedIssues(s.IssuesPath)
	if err != nil {
		return err
	}
	outcomes, err := artifacts.ReadCloneInfo(s.CloneInfoPath)
	if err != nil {
		return err
	}
	signals, err := artifacts.ReadSignals(s.SignalsPath)
	if err != nil {
		return err
	}

	deduped := DedupSignals(signals)
	kept, crossDropped := dropResurfaced(deduped, issues)
	if err := artifacts.RewriteSignals(s.SignalsPath, kept); err != nil {
		return err
	}

	preCount := make(map[string]int)
	for _, sig := range kept {
		preCount[sig.Repo]++
	}
	postCount := make(map[string]int)
	for _, rec := range issues {
		postCount[rec.Repo]++
	}

	// One row per accepted repository, whether or not it was cloned. A
	// never-cloned repository keeps zero clone statistics.
	rows := make([]domain.MergedRow, 0, len(repos))
	for _, name := range acceptedNames(repos) {
		entry := repos[name]
		row := domain.MergedRow{
			Repo:          name,
			NumPreIssues:  preCount[name],
			NumPostIssues: postCount[name],
			Meta:          entry.Metadata(name),
		}
		if o, ok := outcomes[name]; ok {
			row.Cloned = o.Cloned
			row.TotalCommits = o.TotalCommits
			row.EarliestIssue = o.EarliestIssue
			row.PreCommits = o.PreCommits
		}
		rows = append(rows, row)
	}

	if err := artifacts.WriteMerged(s.OutputPath, rows); err != nil {
		return err
	}

	s.Log.Info().
		Int("signals_in", len(signals)).
		Int("signals_kept", len(kept)).
		Int("duplicates_dropped", len(signals)-len(deduped)).
		Int("resurfaced_dropped", crossDropped).
		Int("merged_rows", len(rows)).
		Str("output", s.OutputPath).
		Msg("merge finished")
	return nil
}

// DedupSignals collapses signals sharing a (repository, title) pair down
// to the chronologically first occurrence. The input is not modified.
func DedupSignals(signals []domain.MinedSignal) []domain.MinedSignal {
	ordered := make([]domain.MinedSignal, len(signals))
	copy(ordered, signals)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].CommitDate.Before(ordered[j].CommitDate)
	})

	seen := make(map[signalKey]bool, len(ordered))
	kept := ordered[:0]
	for _, sig := range ordered {
		k := signalKey{repo: sig.Repo, title: sig.Title}
		if seen[k] {
			continue
		}
		seen[k] = true
		kept = append(kept, sig)
	}
	return kept
}

type signalKey struct {
	repo  string
	title string
}

// dropResurfaced removes pre-epoch signals whose title later surfaced as a
// matched issue in the same repository; the issue record is the richer of
// the two and wins.
func dropResurfaced(
	signals []domain.MinedSignal, issues []domain.IssueRecord,
) ([]domain.MinedSignal, int) {
	post := make(map[signalKey]bool, len(issues))
	for _, rec := range issues {
		post[signalKey{repo: rec.Repo, title: rec.Title}] = true
	}

	kept := make([]domain.MinedSignal, 0, len(signals))
	dropped := 0
	for _, sig := range signals {
		if post[signalKey{repo: sig.Repo, title: sig.Title}] {
			dropped++
			continue
		}
		kept = append(kept, sig)
	}
	return kept, dropped
}

// readDedupedIssues streams the issue sink and collapses rows repeated for
// the same (repository, number) pair, keeping the first occurrence. The
// sink can legitimately hold such repeats after a throttled collection.
func readDedupedIssues(path string) ([]domain.IssueRecord, error) {
	reader, err := artifacts.OpenIssueReader(path)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	type issueKey struct {
		repo   string
		number int
	}
	seen := make(map[issueKey]bool)
	var records []domain.IssueRecord
	for {
		rec, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		k := issueKey{repo: rec.Repo, number: rec.Number}
		if seen[k] {
			continue
		}
		seen[k] = true
		records = append(records, rec)
	}
	return records, nil
}
