package artifacts

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/custodia-labs/todoscout/internal/core/domain"
)

// WriteRepoArtifact persists the repository artifact atomically. Map keys
// (owner/name) are sorted by the JSON encoder, so the artifact is
// byte-for-byte reproducible from the same input.
func WriteRepoArtifact(path string, repos map[string]domain.RepoEntry) error {
	return WriteFileAtomic(path, func(f *os.File) error {
		data, err := json.MarshalIndent(repos, "", "  ")
		if err != nil {
			return fmt.Errorf("encode repo artifact: %w", err)
		}
		data = append(data, '\n')
		if _, err := f.Write(data); err != nil {
			return fmt.Errorf("write repo artifact: %w", err)
		}
		return nil
	})
}

// ReadRepoArtifact loads the repository artifact.
func ReadRepoArtifact(path string) (map[string]domain.RepoEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read repo artifact: %w", err)
	}

	repos := make(map[string]domain.RepoEntry)
	if err := json.Unmarshal(data, &repos); err != nil {
		return nil, fmt.Errorf("decode repo artifact: %w", err)
	}
	return repos, nil
}
