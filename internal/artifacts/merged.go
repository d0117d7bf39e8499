package artifacts

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/custodia-labs/todoscout/internal/core/domain"
)

// MergedHeader is the merged artifact's column schema: one row per
// accepted repository, the union of issue counts, clone statistics, and
// repository metadata.
var MergedHeader = []string{
	"repo", "num_pre_issues", "num_post_issues",
	"cloned", "total_commits", "earliest_todo_issue", "pre_earliest_issue_commits",
	"stars", "forks", "watchers", "is_fork", "is_private", "is_archived",
	"estimated_size", "created_at", "updated_at", "clone_url",
}

// WriteMerged persists the merged artifact atomically at stage end.
func WriteMerged(path string, rows []domain.MergedRow) error {
	return WriteFileAtomic(path, func(f *os.File) error {
		w := csv.NewWriter(f)
		if err := w.Write(MergedHeader); err != nil {
			return fmt.Errorf("write merged header: %w", err)
		}
		for _, m := range rows {
			row := []string{
				m.Repo,
				strconv.Itoa(m.NumPreIssues),
				strconv.Itoa(m.NumPostIssues),
				strconv.FormatBool(m.Cloned),
				strconv.Itoa(m.TotalCommits),
				formatTime(m.EarliestIssue),
				strconv.Itoa(m.PreCommits),
				strconv.Itoa(m.Meta.Stars),
				strconv.Itoa(m.Meta.Forks),
				strconv.Itoa(m.Meta.Watchers),
				strconv.FormatBool(m.Meta.Fork),
				strconv.FormatBool(m.Meta.Private),
				strconv.FormatBool(m.Meta.Archived),
				strconv.Itoa(m.Meta.Size),
				formatTime(m.Meta.CreatedAt),
				formatTime(m.Meta.UpdatedAt),
				m.Meta.CloneURL,
			}
			if err := w.Write(row); err != nil {
				return fmt.Errorf("write merged row for %s: %w", m.Repo, err)
			}
		}
		w.Flush()
		return w.Error()
	})
}

// ReadMergedRepos returns the repository column of the merged artifact, in
// row order. Used by tests and the top-repository summary.
func ReadMergedRepos(path string) ([]string, error) {
	rows, err := readCSV(path, MergedHeader)
	if err != nil {
		return nil, fmt.Errorf("merged artifact: %w", err)
	}

	repos := make([]string, 0, len(rows))
	for _, row := range rows {
		repos = append(repos, row[0])
	}
	return repos, nil
}
