package domain

import (
	"fmt"
	"strings"
	"time"
)

// IssueType restricts a search to issues, pull requests, or both.
type IssueType string

// Allowed IssueType values.
const (
	TypeAny   IssueType = "any"
	TypeIssue IssueType = "issue"
	TypePR    IssueType = "pr"
)

// Validate reports whether t is one of the allowed type values.
func (t IssueType) Validate() error {
	switch t {
	case TypeAny, TypeIssue, TypePR:
		return nil
	}
	return fmt.Errorf("invalid issue type %q (expected one of: any, issue, pr)", string(t))
}

// IssueState restricts a search to open issues, closed issues, or both.
type IssueState string

// Allowed IssueState values.
const (
	StateAny    IssueState = "any"
	StateOpen   IssueState = "open"
	StateClosed IssueState = "closed"
)

// Validate reports whether s is one of the allowed state values.
func (s IssueState) Validate() error {
	switch s {
	case StateAny, StateOpen, StateClosed:
		return nil
	}
	return fmt.Errorf("invalid issue state %q (expected one of: any, open, closed)", string(s))
}

// Query is an immutable conjunction of search qualifiers. Each builder
// method returns a new Query; the receiver is never modified, so a base
// query can be shared and extended per sub-range by the partitioner.
// Qualifier order has no semantic meaning to the search backend.
type Query struct {
	clauses []string
}

// NewQuery returns an empty query.
func NewQuery() Query {
	return Query{}
}

func (q Query) with(clause string) Query {
	clauses := make([]string, len(q.clauses), len(q.clauses)+1)
	copy(clauses, q.clauses)
	return Query{clauses: append(clauses, clause)}
}

// Author restricts results to items created by the given login.
func (q Query) Author(login string) Query {
	if login == "" {
		return q
	}
	return q.with("author:" + login)
}

// PublicOnly excludes private repositories from the results.
func (q Query) PublicOnly() Query {
	return q.with("is:public")
}

// ExcludeArchived excludes archived repositories from the results.
func (q Query) ExcludeArchived() Query {
	return q.with("archived:false")
}

// Type restricts results to the given issue type. TypeAny adds no clause.
func (q Query) Type(t IssueType) Query {
	if t == TypeAny || t == "" {
		return q
	}
	return q.with("type:" + string(t))
}

// State restricts results to the given issue state. StateAny adds no clause.
func (q Query) State(s IssueState) Query {
	if s == StateAny || s == "" {
		return q
	}
	return q.with("state:" + string(s))
}

// Language restricts results to repositories in the given language.
func (q Query) Language(lang string) Query {
	if lang == "" || lang == "any" {
		return q
	}
	return q.with("language:" + lang)
}

// Raw appends free-form qualifier text verbatim. The text is not checked
// for syntax; the backend rejects malformed qualifiers at search time.
func (q Query) Raw(text string) Query {
	text = strings.TrimSpace(text)
	if text == "" {
		return q
	}
	return q.with(text)
}

// CreatedBetween restricts results to items created within r. Both bounds
// are inclusive on the backend, which is why adjacent partitioner ranges
// must be separated by one second.
func (q Query) CreatedBetween(r DateRange) Query {
	return q.with(fmt.Sprintf("created:%s..%s",
		r.Start.UTC().Format(time.RFC3339),
		r.End.UTC().Format(time.RFC3339)))
}

// String renders the query as the backend's space-separated qualifier syntax.
func (q Query) String() string {
	return strings.Join(q.clauses, " ")
}
