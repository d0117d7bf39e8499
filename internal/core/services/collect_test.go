package services

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/todoscout/internal/artifacts"
	"github.com/custodia-labs/todoscout/internal/core/domain"
	"github.com/custodia-labs/todoscout/internal/core/ports/driven"
)

func TestCollectStage_WritesEveryResultToSink(t *testing.T) {
	out := filepath.Join(t.TempDir(), "issues.csv")
	searcher := &rangeSearcher{t: t, issues: []domain.IssueRecord{
		issueAt("a/one", 1, 0),
		issueAt("b/two", 2, 10),
	}}
	stage := &CollectStage{
		Searcher:   searcher,
		Query:      domain.NewQuery().Author("todo-bot"),
		Span:       domain.DateRange{Start: at(0), End: at(60)},
		MaxResults: -1,
		Ceiling:    4,
		OutputPath: out,
		Log:        zerolog.Nop(),
	}

	require.NoError(t, stage.Run(context.Background()))

	reader, err := artifacts.OpenIssueReader(out)
	require.NoError(t, err)
	defer reader.Close()

	var numbers []int
	for {
		rec, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		numbers = append(numbers, rec.Number)
	}
	assert.Equal(t, []int{1, 2}, numbers)

	status, err := stage.Probe()
	require.NoError(t, err)
	assert.Equal(t, artifacts.StatusReady, status)
}

type failingSearcher struct {
	err error
}

func (s failingSearcher) SearchIssues(context.Context, string) (driven.IssueSearchPage, error) {
	return nil, s.err
}

func TestCollectStage_FailureSetsSinkAside(t *testing.T) {
	out := filepath.Join(t.TempDir(), "issues.csv")
	boom := errors.New("backend down")
	stage := &CollectStage{
		Searcher:   failingSearcher{err: boom},
		Span:       domain.DateRange{Start: at(0), End: at(60)},
		MaxResults: -1,
		OutputPath: out,
		Log:        zerolog.Nop(),
	}

	err := stage.Run(context.Background())
	assert.ErrorIs(t, err, boom)

	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr), "failed sink should not stay at its final path")
	_, statErr = os.Stat(out + ".partial")
	assert.NoError(t, statErr)

	status, err := stage.Probe()
	assert.Equal(t, artifacts.StatusCorrupt, status)
	assert.Error(t, err)
}

func TestCollectStage_ProbeReadyOnceResolutionArtifactExists(t *testing.T) {
	dir := t.TempDir()
	reposPath := filepath.Join(dir, "repos.json")
	require.NoError(t, artifacts.WriteRepoArtifact(reposPath, map[string]domain.RepoEntry{
		"a/one": {Stars: 1},
	}))

	stage := &CollectStage{
		OutputPath:       filepath.Join(dir, "issues.csv"),
		RepoArtifactPath: reposPath,
		Log:              zerolog.Nop(),
	}

	status, err := stage.Probe()
	require.NoError(t, err)
	assert.Equal(t, artifacts.StatusReady, status)
}

func TestCollectStage_ProbeAbsentWithoutOutputs(t *testing.T) {
	dir := t.TempDir()
	stage := &CollectStage{
		OutputPath:       filepath.Join(dir, "issues.csv"),
		RepoArtifactPath: filepath.Join(dir, "repos.json"),
		Log:              zerolog.Nop(),
	}

	status, _ := stage.Probe()
	assert.Equal(t, artifacts.StatusAbsent, status)
}
