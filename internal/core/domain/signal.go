package domain

import "time"

// Epoch partitions a repository's history at its earliest matched issue.
type Epoch string

// Epoch values.
const (
	EpochPre  Epoch = "pre"
	EpochPost Epoch = "post"
)

// MinedSignal is a TODO-like comment discovered in one commit's diff
// during history mining.
type MinedSignal struct {
	Repo       string // owner/name
	Owner      string // author-declared owner (the repository owner)
	Title      string
	Body       string
	CommitDate time.Time
	Epoch      Epoch
}

// CloneOutcome summarizes one cloned repository's history relative to its
// epoch boundary. PreCommits never exceeds TotalCommits.
type CloneOutcome struct {
	Repo          string
	Cloned        bool
	TotalCommits  int
	EarliestIssue time.Time
	PreCommits    int
}

// MergedRow is one row of the final merged artifact: the outer-join union
// of repository metadata, issue counts per epoch, and clone statistics.
// A repository that was never cloned keeps Cloned false with zero counts
// rather than absent fields.
type MergedRow struct {
	Repo          string
	NumPreIssues  int
	NumPostIssues int
	Cloned        bool
	TotalCommits  int
	EarliestIssue time.Time
	PreCommits    int
	Meta          RepoMetadata
}
