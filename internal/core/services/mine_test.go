package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/todoscout/internal/artifacts"
	"github.com/custodia-labs/todoscout/internal/core/domain"
	"github.com/custodia-labs/todoscout/internal/core/ports/driven"
)

type fakeCommit struct {
	when    time.Time
	parents int
	patch   string
}

func (c fakeCommit) When() time.Time  { return c.when }
func (c fakeCommit) ParentCount() int { return c.parents }
func (c fakeCommit) PatchAgainstParent() (string, error) { return c.patch, nil }

type fakeHistory struct {
	commits []fakeCommit
	walkErr error
}

func (h *fakeHistory) WalkOldestFirst(fn func(driven.Commit) error) error {
	if h.walkErr != nil {
		return h.walkErr
	}
	for _, c := range h.commits {
		if err := fn(c); err != nil {
			return err
		}
	}
	return nil
}

func (h *fakeHistory) Close() {}

type fakeOpener struct {
	histories map[string]*fakeHistory
	openErr   map[string]error
}

func (o *fakeOpener) Open(localPath string) (driven.History, error) {
	if err, ok := o.openErr[localPath]; ok {
		return nil, err
	}
	h, ok := o.histories[localPath]
	if !ok {
		return nil, errors.New("no such repository")
	}
	return h, nil
}

func TestMineStage_CountsAndMinesPreBoundarySingleParentCommits(t *testing.T) {
	dir := t.TempDir()
	reposPath := filepath.Join(dir, "repos.json")
	cloneDir := filepath.Join(dir, "clones")
	signalsPath := filepath.Join(dir, "presignals.csv")
	infoPath := filepath.Join(dir, "cloneinfo.csv")

	boundary := at(100)
	require.NoError(t, artifacts.WriteRepoArtifact(reposPath, map[string]domain.RepoEntry{
		"a/one": {Issues: []domain.IssueRef{{Number: 1, CreatedAt: boundary}}},
	}))
	repoPath := filepath.Join(cloneDir, "a", "one")
	require.NoError(t, os.MkdirAll(repoPath, 0o755))

	opener := &fakeOpener{histories: map[string]*fakeHistory{
		repoPath: {commits: []fakeCommit{
			{when: at(5), parents: 0, patch: "+ // TODO: never seen, root has no parent"},
			{when: at(10), parents: 1, patch: "--- a/p.go\n+++ b/p.go\n+\t// TODO: fix the parser\n context"},
			{when: at(20), parents: 2, patch: "+ // TODO: merge commits are skipped"},
			{when: at(50), parents: 1, patch: "+\tplain added line\n-\tremoved line"},
			{when: at(100), parents: 1, patch: "+ // TODO: at the boundary, not strictly before"},
			{when: at(150), parents: 1, patch: "+ // TODO: after the boundary"},
		}},
	}}
	stage := &MineStage{
		Opener:        opener,
		ReposPath:     reposPath,
		CloneDir:      cloneDir,
		SignalsPath:   signalsPath,
		CloneInfoPath: infoPath,
		Log:           zerolog.Nop(),
	}

	require.NoError(t, stage.Run(context.Background()))

	signals, err := artifacts.ReadSignals(signalsPath)
	require.NoError(t, err)
	require.Len(t, signals, 1)
	assert.Equal(t, "a/one", signals[0].Repo)
	assert.Equal(t, "fix the parser", signals[0].Title)
	assert.Equal(t, at(10), signals[0].CommitDate)

	info, err := artifacts.ReadCloneInfo(infoPath)
	require.NoError(t, err)
	require.Contains(t, info, "a/one")
	outcome := info["a/one"]
	assert.True(t, outcome.Cloned)
	assert.Equal(t, 6, outcome.TotalCommits)
	assert.Equal(t, 2, outcome.PreCommits)
	assert.Equal(t, boundary, outcome.EarliestIssue)
}

func TestMineStage_SkipsRepositoriesWithoutBoundaryOrClone(t *testing.T) {
	dir := t.TempDir()
	reposPath := filepath.Join(dir, "repos.json")
	cloneDir := filepath.Join(dir, "clones")

	require.NoError(t, artifacts.WriteRepoArtifact(reposPath, map[string]domain.RepoEntry{
		"noissue/repo":  {},
		"unclonded/one": {Issues: []domain.IssueRef{{Number: 1, CreatedAt: at(100)}}},
	}))

	stage := &MineStage{
		Opener:        &fakeOpener{},
		ReposPath:     reposPath,
		CloneDir:      cloneDir,
		SignalsPath:   filepath.Join(dir, "presignals.csv"),
		CloneInfoPath: filepath.Join(dir, "cloneinfo.csv"),
		Log:           zerolog.Nop(),
	}

	require.NoError(t, stage.Run(context.Background()))

	signals, err := artifacts.ReadSignals(stage.SignalsPath)
	require.NoError(t, err)
	assert.Empty(t, signals)

	info, err := artifacts.ReadCloneInfo(stage.CloneInfoPath)
	require.NoError(t, err)
	assert.Empty(t, info)
}

func TestMineStage_ToleratesWalkFailure(t *testing.T) {
	dir := t.TempDir()
	reposPath := filepath.Join(dir, "repos.json")
	cloneDir := filepath.Join(dir, "clones")

	require.NoError(t, artifacts.WriteRepoArtifact(reposPath, map[string]domain.RepoEntry{
		"bad/repo":  {Issues: []domain.IssueRef{{Number: 1, CreatedAt: at(100)}}},
		"good/repo": {Issues: []domain.IssueRef{{Number: 2, CreatedAt: at(100)}}},
	}))
	badPath := filepath.Join(cloneDir, "bad", "repo")
	goodPath := filepath.Join(cloneDir, "good", "repo")
	require.NoError(t, os.MkdirAll(badPath, 0o755))
	require.NoError(t, os.MkdirAll(goodPath, 0o755))

	opener := &fakeOpener{
		histories: map[string]*fakeHistory{
			badPath:  {walkErr: errors.New("object database corrupt")},
			goodPath: {commits: []fakeCommit{{when: at(10), parents: 1, patch: "+ x"}}},
		},
	}
	stage := &MineStage{
		Opener:        opener,
		ReposPath:     reposPath,
		CloneDir:      cloneDir,
		SignalsPath:   filepath.Join(dir, "presignals.csv"),
		CloneInfoPath: filepath.Join(dir, "cloneinfo.csv"),
		Log:           zerolog.Nop(),
	}

	require.NoError(t, stage.Run(context.Background()))

	info, err := artifacts.ReadCloneInfo(stage.CloneInfoPath)
	require.NoError(t, err)
	assert.NotContains(t, info, "bad/repo")
	assert.Contains(t, info, "good/repo")
}

func TestMineStage_ProbeNeedsBothArtifacts(t *testing.T) {
	dir := t.TempDir()
	stage := &MineStage{
		SignalsPath:   filepath.Join(dir, "presignals.csv"),
		CloneInfoPath: filepath.Join(dir, "cloneinfo.csv"),
		Log:           zerolog.Nop(),
	}

	status, _ := stage.Probe()
	assert.Equal(t, artifacts.StatusAbsent, status)

	require.NoError(t, artifacts.RewriteSignals(stage.SignalsPath, nil))
	status, _ = stage.Probe()
	assert.Equal(t, artifacts.StatusAbsent, status)

	require.NoError(t, artifacts.WriteCloneInfo(stage.CloneInfoPath, nil))
	status, _ = stage.Probe()
	assert.Equal(t, artifacts.StatusReady, status)
}
