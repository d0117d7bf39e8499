package domain

import (
	"encoding/json"
	"time"
)

// RepoMetadata is the metadata record fetched once per distinct repository
// during resolution.
type RepoMetadata struct {
	FullName  string // owner/name
	Stars     int
	Forks     int
	Watchers  int
	Fork      bool
	Private   bool
	Archived  bool
	Size      int // backend's size estimate, in KiB
	CreatedAt time.Time
	UpdatedAt time.Time
	CloneURL  string
}

// AcceptancePolicy is the conjunctive set of predicates a repository must
// pass during resolution. Negative thresholds disable the corresponding
// minimum; false flags disable the corresponding exclusion.
type AcceptancePolicy struct {
	MinStars       int
	MinForks       int
	MinWatchers    int
	IgnoreForks    bool
	IgnorePrivate  bool
	IgnoreArchived bool
}

// Accepts reports whether m passes every configured predicate.
func (p AcceptancePolicy) Accepts(m RepoMetadata) bool {
	if p.MinStars >= 0 && m.Stars < p.MinStars {
		return false
	}
	if p.MinForks >= 0 && m.Forks < p.MinForks {
		return false
	}
	if p.MinWatchers >= 0 && m.Watchers < p.MinWatchers {
		return false
	}
	if p.IgnoreForks && m.Fork {
		return false
	}
	if p.IgnorePrivate && m.Private {
		return false
	}
	if p.IgnoreArchived && m.Archived {
		return false
	}
	return true
}

// RemoteCause records why a repository could not be resolved. Status is the
// backend's HTTP status; Data carries the response payload for failures
// other than plain not-found.
type RemoteCause struct {
	Status int    `json:"status"`
	Data   string `json:"data,omitempty"`
}

// RepoEntry is one entry of the repository artifact, keyed by owner/name.
// A skipped or failed entry carries only the Skipped flag and an optional
// cause; an accepted entry carries full metadata plus its issue references.
type RepoEntry struct {
	Skipped bool         `json:"skipped"`
	Error   *RemoteCause `json:"error"`

	Stars         int        `json:"stars"`
	Forks         int        `json:"forks"`
	Watchers      int        `json:"watchers"`
	IsFork        bool       `json:"is_fork"`
	IsPrivate     bool       `json:"is_private"`
	IsArchived    bool       `json:"is_archived"`
	EstimatedSize int        `json:"estimated_size"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	CloneURL      string     `json:"clone_url"`
	Issues        []IssueRef `json:"issues"`
}

// MarshalJSON keeps skipped entries minimal: only the skipped flag and the
// cause are persisted, matching the artifact contract.
func (e RepoEntry) MarshalJSON() ([]byte, error) {
	if e.Skipped {
		return json.Marshal(struct {
			Skipped bool         `json:"skipped"`
			Error   *RemoteCause `json:"error"`
		}{Skipped: true, Error: e.Error})
	}

	type full RepoEntry // avoid recursing into MarshalJSON
	return json.Marshal(full(e))
}

// AcceptedEntry builds the artifact entry for a repository that passed the
// acceptance policy.
func AcceptedEntry(m RepoMetadata) RepoEntry {
	return RepoEntry{
		Stars:         m.Stars,
		Forks:         m.Forks,
		Watchers:      m.Watchers,
		IsFork:        m.Fork,
		IsPrivate:     m.Private,
		IsArchived:    m.Archived,
		EstimatedSize: m.Size,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
		CloneURL:      m.CloneURL,
	}
}

// Metadata reconstructs the fetched metadata of an accepted entry.
func (e RepoEntry) Metadata(fullName string) RepoMetadata {
	return RepoMetadata{
		FullName:  fullName,
		Stars:     e.Stars,
		Forks:     e.Forks,
		Watchers:  e.Watchers,
		Fork:      e.IsFork,
		Private:   e.IsPrivate,
		Archived:  e.IsArchived,
		Size:      e.EstimatedSize,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
		CloneURL:  e.CloneURL,
	}
}

// EarliestIssue returns the creation time of the entry's earliest matched
// issue, or false if the entry has no issues.
func (e RepoEntry) EarliestIssue() (time.Time, bool) {
	if len(e.Issues) == 0 {
		return time.Time{}, false
	}
	earliest := e.Issues[0].CreatedAt
	for _, ref := range e.Issues[1:] {
		if ref.CreatedAt.Before(earliest) {
			earliest = ref.CreatedAt
		}
	}
	return earliest, true
}
