package artifacts

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/custodia-labs/todoscout/internal/core/domain"
)

// CloneInfoHeader is the clone-info artifact's column schema.
var CloneInfoHeader = []string{
	"repo", "cloned", "total_commits", "earliest_todo_issue", "pre_earliest_issue_commits",
}

// WriteCloneInfo persists clone outcomes atomically at stage end.
func WriteCloneInfo(path string, outcomes []domain.CloneOutcome) error {
	return WriteFileAtomic(path, func(f *os.File) error {
		w := csv.NewWriter(f)
		if err := w.Write(CloneInfoHeader); err != nil {
			return fmt.Errorf("write clone-info header: %w", err)
		}
		for _, o := range outcomes {
			row := []string{
				o.Repo,
				strconv.FormatBool(o.Cloned),
				strconv.Itoa(o.TotalCommits),
				formatTime(o.EarliestIssue),
				strconv.Itoa(o.PreCommits),
			}
			if err := w.Write(row); err != nil {
				return fmt.Errorf("write clone-info row for %s: %w", o.Repo, err)
			}
		}
		w.Flush()
		return w.Error()
	})
}

// ReadCloneInfo loads clone outcomes keyed by repository.
func ReadCloneInfo(path string) (map[string]domain.CloneOutcome, error) {
	rows, err := readCSV(path, CloneInfoHeader)
	if err != nil {
		return nil, fmt.Errorf("clone-info artifact: %w", err)
	}

	outcomes := make(map[string]domain.CloneOutcome, len(rows))
	for _, row := range rows {
		cloned, err := strconv.ParseBool(row[1])
		if err != nil {
			return nil, fmt.Errorf("clone-info row %q: bad cloned flag: %w", row[0], err)
		}
		total, err := strconv.Atoi(row[2])
		if err != nil {
			return nil, fmt.Errorf("clone-info row %q: bad commit count: %w", row[0], err)
		}
		earliest, err := parseTime(row[3])
		if err != nil {
			return nil, fmt.Errorf("clone-info row %q: bad earliest issue: %w", row[0], err)
		}
		pre, err := strconv.Atoi(row[4])
		if err != nil {
			return nil, fmt.Errorf("clone-info row %q: bad pre-commit count: %w", row[0], err)
		}
		outcomes[row[0]] = domain.CloneOutcome{
			Repo:          row[0],
			Cloned:        cloned,
			TotalCommits:  total,
			EarliestIssue: earliest,
			PreCommits:    pre,
		}
	}
	return outcomes, nil
}

// readCSV reads all data rows of a delimited artifact after verifying its
// header.
func readCSV(path string, header []string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(header)

	got, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if err := checkHeader(got, header); err != nil {
		return nil, err
	}

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	return rows, nil
}
