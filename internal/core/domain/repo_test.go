package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAcceptancePolicy_NegativeThresholdsDisable(t *testing.T) {
	policy := AcceptancePolicy{MinStars: -1, MinForks: -1, MinWatchers: -1}

	assert.True(t, policy.Accepts(RepoMetadata{Stars: 0, Forks: 0, Watchers: 0}))
}

func TestAcceptancePolicy_ConjunctivePredicates(t *testing.T) {
	policy := AcceptancePolicy{
		MinStars:       10,
		MinForks:       -1,
		MinWatchers:    -1,
		IgnoreForks:    true,
		IgnoreArchived: true,
	}

	assert.True(t, policy.Accepts(RepoMetadata{Stars: 10}))
	assert.False(t, policy.Accepts(RepoMetadata{Stars: 9}), "below minimum stars")
	assert.False(t, policy.Accepts(RepoMetadata{Stars: 10, Fork: true}), "forks excluded")
	assert.False(t, policy.Accepts(RepoMetadata{Stars: 10, Archived: true}), "archived excluded")
	assert.True(t, policy.Accepts(RepoMetadata{Stars: 10, Private: true}),
		"private allowed when not excluded")
}

func TestRepoEntry_EarliestIssue(t *testing.T) {
	base := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)

	_, ok := RepoEntry{}.EarliestIssue()
	assert.False(t, ok)

	entry := RepoEntry{Issues: []IssueRef{
		{Number: 2, CreatedAt: base.Add(time.Hour)},
		{Number: 1, CreatedAt: base},
		{Number: 3, CreatedAt: base.Add(2 * time.Hour)},
	}}
	earliest, ok := entry.EarliestIssue()
	assert.True(t, ok)
	assert.Equal(t, base, earliest)
}
