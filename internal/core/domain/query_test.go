package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestQuery_BuildsQualifiers(t *testing.T) {
	q := NewQuery().
		Author("todo-bot").
		PublicOnly().
		ExcludeArchived().
		Type(TypeIssue).
		State(StateOpen).
		Language("go").
		Raw("label:automated")

	assert.Equal(t,
		"author:todo-bot is:public archived:false type:issue state:open language:go label:automated",
		q.String())
}

func TestQuery_AnyValuesAddNoClause(t *testing.T) {
	q := NewQuery().
		Author("").
		Type(TypeAny).
		State(StateAny).
		Language("any").
		Raw("  ")

	assert.Equal(t, "", q.String())
}

func TestQuery_BuilderDoesNotMutateReceiver(t *testing.T) {
	base := NewQuery().Author("todo-bot")

	one := base.Type(TypeIssue)
	two := base.State(StateClosed)

	assert.Equal(t, "author:todo-bot", base.String())
	assert.Equal(t, "author:todo-bot type:issue", one.String())
	assert.Equal(t, "author:todo-bot state:closed", two.String())
}

func TestQuery_CreatedBetweenIsInclusiveRFC3339(t *testing.T) {
	r := DateRange{
		Start: time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2021, 1, 2, 0, 0, 0, 0, time.UTC),
	}

	q := NewQuery().CreatedBetween(r)

	assert.Equal(t, "created:2021-01-01T00:00:00Z..2021-01-02T00:00:00Z", q.String())
}

func TestIssueTypeAndState_Validate(t *testing.T) {
	assert.NoError(t, TypeIssue.Validate())
	assert.NoError(t, StateAny.Validate())
	assert.Error(t, IssueType("gist").Validate())
	assert.Error(t, IssueState("merged").Validate())
}
