package artifacts

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/custodia-labs/todoscout/internal/core/domain"
)

// SignalHeader is the pre-epoch signal artifact's column schema. The file
// holds pre-epoch rows only, so no epoch column is persisted.
var SignalHeader = []string{"repo", "title", "body", "commit_date"}

// SignalWriter appends mined signals to the pre-epoch artifact, flushing
// each row so partial mining progress survives an interruption.
type SignalWriter struct {
	f *os.File
	w *csv.Writer
}

// NewSignalWriter creates (or truncates) the artifact at path and writes
// the header row.
func NewSignalWriter(path string) (*SignalWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create signal artifact: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(SignalHeader); err != nil {
		f.Close()
		return nil, fmt.Errorf("write signal header: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return nil, fmt.Errorf("flush signal header: %w", err)
	}

	return &SignalWriter{f: f, w: w}, nil
}

// Append writes one signal row and flushes it.
func (sw *SignalWriter) Append(sig domain.MinedSignal) error {
	row := []string{sig.Repo, sig.Title, sig.Body, formatTime(sig.CommitDate)}
	if err := sw.w.Write(row); err != nil {
		return fmt.Errorf("append signal row: %w", err)
	}
	sw.w.Flush()
	if err := sw.w.Error(); err != nil {
		return fmt.Errorf("flush signal row: %w", err)
	}
	return nil
}

// Close flushes and closes the artifact.
func (sw *SignalWriter) Close() error {
	sw.w.Flush()
	if err := sw.w.Error(); err != nil {
		sw.f.Close()
		return err
	}
	return sw.f.Close()
}

// ReadSignals loads all pre-epoch signals.
func ReadSignals(path string) ([]domain.MinedSignal, error) {
	rows, err := readCSV(path, SignalHeader)
	if err != nil {
		return nil, fmt.Errorf("signal artifact: %w", err)
	}

	signals := make([]domain.MinedSignal, 0, len(rows))
	for _, row := range rows {
		commitDate, err := parseTime(row[3])
		if err != nil {
			return nil, fmt.Errorf("signal row %q: bad commit date: %w", row[0], err)
		}
		signals = append(signals, domain.MinedSignal{
			Repo:       row[0],
			Owner:      ownerOf(row[0]),
			Title:      row[1],
			Body:       row[2],
			CommitDate: commitDate,
			Epoch:      domain.EpochPre,
		})
	}
	return signals, nil
}

// RewriteSignals atomically replaces the signal artifact with the given
// rows, preserving their order.
func RewriteSignals(path string, signals []domain.MinedSignal) error {
	return WriteFileAtomic(path, func(f *os.File) error {
		w := csv.NewWriter(f)
		if err := w.Write(SignalHeader); err != nil {
			return fmt.Errorf("write signal header: %w", err)
		}
		for _, sig := range signals {
			row := []string{sig.Repo, sig.Title, sig.Body, formatTime(sig.CommitDate)}
			if err := w.Write(row); err != nil {
				return fmt.Errorf("write signal row: %w", err)
			}
		}
		w.Flush()
		return w.Error()
	})
}

func ownerOf(fullName string) string {
	owner, _, found := strings.Cut(fullName, "/")
	if !found {
		return ""
	}
	return owner
}
