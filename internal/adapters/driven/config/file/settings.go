package file

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/todoscout/internal/core/domain"
)

// Settings is the full run configuration, loaded from a TOML file. Zero
// values are filled from Defaults before validation, so a minimal file
// only needs the search section.
type Settings struct {
	Search    SearchSettings   `toml:"search"`
	Filters   FilterSettings   `toml:"filters"`
	GitHub    GitHubSettings   `toml:"github"`
	Artifacts ArtifactSettings `toml:"artifacts"`
	Run       RunSettings      `toml:"run"`
	Log       LogSettings      `toml:"log"`
}

// SearchSettings shapes the issue search query and its date domain.
type SearchSettings struct {
	// Bot is the author login whose issues are enumerated.
	Bot string `toml:"bot"`

	Type     string `toml:"type"`
	State    string `toml:"state"`
	Language string `toml:"language"`

	// Query is appended to the built query verbatim, for qualifiers the
	// typed fields don't cover.
	Query string `toml:"query"`

	// StartDate and EndDate bound the creation-date domain, inclusive.
	// Either RFC 3339 timestamps or plain YYYY-MM-DD dates.
	StartDate string `toml:"start_date"`
	EndDate   string `toml:"end_date"`

	// MaxResults caps the enumeration; negative means unbounded.
	MaxResults int `toml:"max_results"`
}

// FilterSettings is the repository acceptance policy. Negative minimums
// disable the corresponding threshold.
type FilterSettings struct {
	MinStars       int  `toml:"min_stars"`
	MinForks       int  `toml:"min_forks"`
	MinWatchers    int  `toml:"min_watchers"`
	IgnoreForks    bool `toml:"ignore_forks"`
	IgnorePrivate  bool `toml:"ignore_private"`
	IgnoreArchived bool `toml:"ignore_archived"`
}

// GitHubSettings configures the search backend connection.
type GitHubSettings struct {
	// Token is the personal access token. When empty, the GITHUB_TOKEN
	// environment variable is consulted at load time.
	Token string `toml:"token"`

	// BaseURL points at a GitHub Enterprise instance; empty means
	// github.com.
	BaseURL string `toml:"base_url"`
}

// ArtifactSettings locates the run's on-disk artifacts.
type ArtifactSettings struct {
	// Dir holds the flat artifact files.
	Dir string `toml:"dir"`

	// CloneDir holds the per-repository working copies.
	CloneDir string `toml:"clone_dir"`
}

// RunSettings tweaks pipeline execution.
type RunSettings struct {
	// SkipCloning ends the pipeline after repository resolution.
	SkipCloning bool `toml:"skip_cloning"`

	// ResumeAt skips cloning every repository sorted before this
	// owner/name identifier.
	ResumeAt string `toml:"resume_at"`
}

// LogSettings configures the logger.
type LogSettings struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Defaults returns the settings used when the file leaves a field unset.
func Defaults() Settings {
	return Settings{
		Search: SearchSettings{
			Type:       "any",
			State:      "any",
			Language:   "any",
			StartDate:  "2011-01-01",
			MaxResults: -1,
		},
		Filters: FilterSettings{
			MinStars:    -1,
			MinForks:    -1,
			MinWatchers: -1,
		},
		Artifacts: ArtifactSettings{
			Dir:      "artifacts",
			CloneDir: "clones",
		},
		Log: LogSettings{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads settings from path, fills defaults, and validates. A missing
// end date defaults to the moment of loading.
func Load(path string) (Settings, error) {
	s := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("read settings: %w", err)
	}
	if err := toml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("parse settings %s: %w", path, err)
	}

	if s.GitHub.Token == "" {
		s.GitHub.Token = os.Getenv("GITHUB_TOKEN")
	}
	if s.Search.EndDate == "" {
		s.Search.EndDate = time.Now().UTC().Format(time.RFC3339)
	}

	if err := s.Validate(); err != nil {
		return Settings{}, fmt.Errorf("settings %s: %w", path, err)
	}
	return s, nil
}

// Validate checks enumerations and the date domain.
func (s Settings) Validate() error {
	if s.Search.Bot == "" {
		return fmt.Errorf("search.bot must name the author to enumerate")
	}
	if err := domain.IssueType(s.Search.Type).Validate(); err != nil {
		return fmt.Errorf("search.type: %w", err)
	}
	if err := domain.IssueState(s.Search.State).Validate(); err != nil {
		return fmt.Errorf("search.state: %w", err)
	}
	span, err := s.Span()
	if err != nil {
		return err
	}
	return span.Validate()
}

// Query builds the base search query from the typed fields. Private and
// archived exclusions are pushed into the query itself so excluded
// repositories don't consume search results.
func (s Settings) Query() domain.Query {
	q := domain.NewQuery().
		Author(s.Search.Bot).
		Type(domain.IssueType(s.Search.Type)).
		State(domain.IssueState(s.Search.State)).
		Language(s.Search.Language)
	if s.Filters.IgnorePrivate {
		q = q.PublicOnly()
	}
	if s.Filters.IgnoreArchived {
		q = q.ExcludeArchived()
	}
	return q.Raw(s.Search.Query)
}

// Policy builds the repository acceptance policy.
func (s Settings) Policy() domain.AcceptancePolicy {
	return domain.AcceptancePolicy{
		MinStars:       s.Filters.MinStars,
		MinForks:       s.Filters.MinForks,
		MinWatchers:    s.Filters.MinWatchers,
		IgnoreForks:    s.Filters.IgnoreForks,
		IgnorePrivate:  s.Filters.IgnorePrivate,
		IgnoreArchived: s.Filters.IgnoreArchived,
	}
}

// Span parses the configured date domain.
func (s Settings) Span() (domain.DateRange, error) {
	start, err := parseDate(s.Search.StartDate)
	if err != nil {
		return domain.DateRange{}, fmt.Errorf("search.start_date: %w", err)
	}
	end, err := parseDate(s.Search.EndDate)
	if err != nil {
		return domain.DateRange{}, fmt.Errorf("search.end_date: %w", err)
	}
	return domain.DateRange{Start: start, End: end}, nil
}

// Artifact path accessors. Filenames are fixed; only the directory moves.

func (s Settings) IssuesPath() string    { return filepath.Join(s.Artifacts.Dir, "issues.csv") }
func (s Settings) ReposPath() string     { return filepath.Join(s.Artifacts.Dir, "repos.json") }
func (s Settings) CloneInfoPath() string { return filepath.Join(s.Artifacts.Dir, "cloneinfo.csv") }
func (s Settings) SignalsPath() string   { return filepath.Join(s.Artifacts.Dir, "presignals.csv") }
func (s Settings) MergedPath() string    { return filepath.Join(s.Artifacts.Dir, "merged.csv") }

func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("not an RFC 3339 timestamp or YYYY-MM-DD date: %q", value)
	}
	return t.UTC(), nil
}
