// Package cli wires the pipeline behind a cobra command tree.
package cli

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/todoscout/internal/adapters/driven/config/file"
	"github.com/custodia-labs/todoscout/internal/connectors/github"
	"github.com/custodia-labs/todoscout/internal/core/services"
	"github.com/custodia-labs/todoscout/internal/gitrepo"
	"github.com/custodia-labs/todoscout/internal/logger"
)

var version = "dev"

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "todoscout",
	Short: "Mine TODO-bot issue activity across GitHub repositories",
	Long: `todoscout enumerates every issue a TODO bot has filed, resolves and
filters the repositories involved, clones them, and mines their commit
history for the TODO comments that predate the bot's arrival. Each stage
leaves a flat artifact on disk and is skipped on rerun when its artifact
is already complete.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "todoscout.toml",
		"path to the settings file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"log at debug level regardless of settings")
}

// Execute runs the command tree.
func Execute() error {
	return rootCmd.Execute()
}

// app bundles the loaded settings and root logger every command starts from.
type app struct {
	settings file.Settings
	log      zerolog.Logger
}

func buildApp(cmd *cobra.Command) (*app, error) {
	settings, err := file.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	level := settings.Log.Level
	if verbose {
		level = "debug"
	}
	log := logger.New(logger.Options{
		Level:  level,
		Format: settings.Log.Format,
		Writer: cmd.ErrOrStderr(),
	})

	if err := os.MkdirAll(settings.Artifacts.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact directory: %w", err)
	}
	return &app{settings: settings, log: log}, nil
}

func (a *app) githubClient(cmd *cobra.Command) (*github.Client, error) {
	return github.NewClient(cmd.Context(), github.Options{
		Token:   a.settings.GitHub.Token,
		BaseURL: a.settings.GitHub.BaseURL,
		Log:     a.log,
	})
}

func (a *app) collectStage(client *github.Client) (*services.CollectStage, error) {
	span, err := a.settings.Span()
	if err != nil {
		return nil, err
	}
	return &services.CollectStage{
		Searcher:         client,
		Query:            a.settings.Query(),
		Span:             span,
		MaxResults:       a.settings.Search.MaxResults,
		OutputPath:       a.settings.IssuesPath(),
		RepoArtifactPath: a.settings.ReposPath(),
		Log:              logger.ForStage(a.log, "collect"),
	}, nil
}

func (a *app) resolveStage(client *github.Client) *services.ResolveStage {
	return &services.ResolveStage{
		Fetcher:    client,
		Policy:     a.settings.Policy(),
		IssuesPath: a.settings.IssuesPath(),
		OutputPath: a.settings.ReposPath(),
		Log:        logger.ForStage(a.log, "resolve"),
	}
}

func (a *app) cloneStage() *services.CloneStage {
	return &services.CloneStage{
		Cloner:    gitrepo.Cloner{},
		ReposPath: a.settings.ReposPath(),
		CloneDir:  a.settings.Artifacts.CloneDir,
		ResumeAt:  a.settings.Run.ResumeAt,
		Log:       logger.ForStage(a.log, "clone"),
	}
}

func (a *app) mineStage() *services.MineStage {
	return &services.MineStage{
		Opener:        gitrepo.Opener{},
		ReposPath:     a.settings.ReposPath(),
		CloneDir:      a.settings.Artifacts.CloneDir,
		SignalsPath:   a.settings.SignalsPath(),
		CloneInfoPath: a.settings.CloneInfoPath(),
		Log:           logger.ForStage(a.log, "mine"),
	}
}

func (a *app) mergeStage() *services.MergeStage {
	return &services.MergeStage{
		IssuesPath:    a.settings.IssuesPath(),
		ReposPath:     a.settings.ReposPath(),
		CloneInfoPath: a.settings.CloneInfoPath(),
		SignalsPath:   a.settings.SignalsPath(),
		OutputPath:    a.settings.MergedPath(),
		Log:           logger.ForStage(a.log, "merge"),
	}
}

func (a *app) runPipeline(cmd *cobra.Command, stages ...services.Stage) error {
	p := &services.Pipeline{Stages: stages, Log: a.log}
	return p.Run(cmd.Context())
}
