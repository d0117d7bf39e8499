package artifacts

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/custodia-labs/todoscout/internal/core/domain"
)

// IssueHeader is the issue sink's column schema, in contract order.
var IssueHeader = []string{
	"repo", "number", "title", "state", "type",
	"created_at", "updated_at", "closed_at", "num_comments", "body",
}

// IssueWriter appends IssueRecords to the issue sink. Every row is flushed
// to disk as soon as it is written, so a crash loses at most the row being
// written and never rows already emitted.
type IssueWriter struct {
	f *os.File
	w *csv.Writer
}

// NewIssueWriter creates (or truncates) the sink at path and writes the
// header row.
func NewIssueWriter(path string) (*IssueWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create issue sink: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(IssueHeader); err != nil {
		f.Close()
		return nil, fmt.Errorf("write issue sink header: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return nil, fmt.Errorf("flush issue sink header: %w", err)
	}

	return &IssueWriter{f: f, w: w}, nil
}

// Append writes one record and flushes it to disk.
func (iw *IssueWriter) Append(rec domain.IssueRecord) error {
	row := []string{
		rec.Repo,
		strconv.Itoa(rec.Number),
		rec.Title,
		rec.State,
		string(rec.Kind),
		formatTime(rec.CreatedAt),
		formatTime(rec.UpdatedAt),
		formatTime(rec.ClosedAt),
		strconv.Itoa(rec.Comments),
		rec.Body,
	}
	if err := iw.w.Write(row); err != nil {
		return fmt.Errorf("append issue row: %w", err)
	}
	iw.w.Flush()
	if err := iw.w.Error(); err != nil {
		return fmt.Errorf("flush issue row: %w", err)
	}
	return nil
}

// Close flushes and closes the sink.
func (iw *IssueWriter) Close() error {
	iw.w.Flush()
	if err := iw.w.Error(); err != nil {
		iw.f.Close()
		return err
	}
	return iw.f.Close()
}

// IssueReader streams the issue sink row by row without loading it
// wholesale.
type IssueReader struct {
	f *os.File
	r *csv.Reader
}

// OpenIssueReader opens the sink at path and verifies its header.
func OpenIssueReader(path string) (*IssueReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open issue sink: %w", err)
	}

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(IssueHeader)

	header, err := r.Read()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("read issue sink header: %w", err)
	}
	if err := checkHeader(header, IssueHeader); err != nil {
		f.Close()
		return nil, fmt.Errorf("issue sink: %w", err)
	}

	return &IssueReader{f: f, r: r}, nil
}

// Next returns the next record, or io.EOF once the sink is exhausted.
func (ir *IssueReader) Next() (domain.IssueRecord, error) {
	row, err := ir.r.Read()
	if errors.Is(err, io.EOF) {
		return domain.IssueRecord{}, io.EOF
	}
	if err != nil {
		return domain.IssueRecord{}, fmt.Errorf("read issue row: %w", err)
	}

	number, err := strconv.Atoi(row[1])
	if err != nil {
		return domain.IssueRecord{}, fmt.Errorf("issue row %q: bad number: %w", row[0], err)
	}
	comments, err := strconv.Atoi(row[8])
	if err != nil {
		return domain.IssueRecord{}, fmt.Errorf("issue row %q: bad comment count: %w", row[0], err)
	}
	createdAt, err := parseTime(row[5])
	if err != nil {
		return domain.IssueRecord{}, fmt.Errorf("issue row %q: bad created_at: %w", row[0], err)
	}
	updatedAt, err := parseTime(row[6])
	if err != nil {
		return domain.IssueRecord{}, fmt.Errorf("issue row %q: bad updated_at: %w", row[0], err)
	}
	closedAt, err := parseTime(row[7])
	if err != nil {
		return domain.IssueRecord{}, fmt.Errorf("issue row %q: bad closed_at: %w", row[0], err)
	}

	return domain.IssueRecord{
		Repo:      row[0],
		Number:    number,
		Title:     row[2],
		State:     row[3],
		Kind:      domain.IssueKind(row[4]),
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
		ClosedAt:  closedAt,
		Comments:  comments,
		Body:      row[9],
	}, nil
}

// Close closes the underlying file.
func (ir *IssueReader) Close() error {
	return ir.f.Close()
}

func checkHeader(got, want []string) error {
	if len(got) != len(want) {
		return fmt.Errorf("header has %d columns, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			return fmt.Errorf("header column %d is %q, want %q", i, got[i], want[i])
		}
	}
	return nil
}
