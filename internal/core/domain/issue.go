package domain

import "time"

// IssueKind distinguishes issues from pull requests in the issue sink.
type IssueKind string

// Issue kinds as persisted in the sink's "type" column.
const (
	KindIssue IssueKind = "issue"
	KindPR    IssueKind = "pr"
)

// IssueRecord is one row of the issue sink: a single issue or pull request
// returned by the search backend. Immutable once written.
type IssueRecord struct {
	Repo      string // owner/name
	Number    int
	Title     string
	State     string
	Kind      IssueKind
	CreatedAt time.Time
	UpdatedAt time.Time
	ClosedAt  time.Time // zero if still open
	Comments  int
	Body      string
}

// IssueRef is the reference an accepted repository keeps for each of its
// matched issues.
type IssueRef struct {
	Number    int       `json:"number"`
	CreatedAt time.Time `json:"created_at"`
	State     string    `json:"state"`
}
