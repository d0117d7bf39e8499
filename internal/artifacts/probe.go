package artifacts

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
)

// Status classifies a stage's declared output artifact.
type Status int

// Probe outcomes.
const (
	// StatusAbsent means the artifact does not exist and the stage must run.
	StatusAbsent Status = iota
	// StatusReady means a prior run left a valid artifact; the stage no-ops.
	StatusReady
	// StatusCorrupt means the artifact exists but is partial or malformed.
	// The pipeline fails loudly rather than continuing from inconsistent
	// state.
	StatusCorrupt
)

// String returns the probe outcome name.
func (s Status) String() string {
	switch s {
	case StatusAbsent:
		return "absent"
	case StatusReady:
		return "ready"
	case StatusCorrupt:
		return "corrupt"
	}
	return "unknown"
}

// ProbeCSV inspects a delimited artifact: it is ready when it exists and
// its header matches the expected schema. The returned error describes the
// corruption when the status is StatusCorrupt.
func ProbeCSV(path string, header []string) (Status, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return StatusAbsent, nil
	}
	if err != nil {
		return StatusCorrupt, fmt.Errorf("probe %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	got, err := r.Read()
	if err != nil {
		return StatusCorrupt, fmt.Errorf("probe %s: unreadable header: %w", path, err)
	}
	if err := checkHeader(got, header); err != nil {
		return StatusCorrupt, fmt.Errorf("probe %s: %w", path, err)
	}
	return StatusReady, nil
}

// ProbeJSON inspects a JSON artifact: it is ready when it exists and
// parses as a JSON object.
func ProbeJSON(path string) (Status, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return StatusAbsent, nil
	}
	if err != nil {
		return StatusCorrupt, fmt.Errorf("probe %s: %w", path, err)
	}

	var v map[string]json.RawMessage
	if err := json.Unmarshal(data, &v); err != nil {
		return StatusCorrupt, fmt.Errorf("probe %s: malformed JSON: %w", path, err)
	}
	return StatusReady, nil
}

// ProbeDir inspects a directory output: it is ready when it exists and
// holds at least one entry.
func ProbeDir(path string) (Status, error) {
	entries, err := os.ReadDir(path)
	if os.IsNotExist(err) {
		return StatusAbsent, nil
	}
	if err != nil {
		return StatusCorrupt, fmt.Errorf("probe %s: %w", path, err)
	}
	if len(entries) == 0 {
		return StatusAbsent, nil
	}
	return StatusReady, nil
}
