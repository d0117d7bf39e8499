package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/todoscout/internal/core/services"
)

var (
	runSkipCloning bool
	runResumeAt    string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline",
	Long: `Runs every stage in order: collect, resolve, clone, mine, merge.
Stages whose artifacts already exist are skipped, so an interrupted run
can simply be started again.`,
	Args: cobra.NoArgs,
	RunE: runPipelineCmd,
}

func init() {
	runCmd.Flags().BoolVar(&runSkipCloning, "skip-cloning", false,
		"stop after repository resolution; skip cloning, mining, and merging")
	runCmd.Flags().StringVar(&runResumeAt, "resume-at", "",
		"skip cloning repositories sorted before this owner/name")
	rootCmd.AddCommand(runCmd)
}

func runPipelineCmd(cmd *cobra.Command, _ []string) error {
	a, err := buildApp(cmd)
	if err != nil {
		return err
	}
	if runSkipCloning {
		a.settings.Run.SkipCloning = true
	}
	if runResumeAt != "" {
		a.settings.Run.ResumeAt = runResumeAt
	}

	client, err := a.githubClient(cmd)
	if err != nil {
		return err
	}
	collect, err := a.collectStage(client)
	if err != nil {
		return err
	}

	stages := []services.Stage{collect, a.resolveStage(client)}
	if !a.settings.Run.SkipCloning {
		stages = append(stages, a.cloneStage(), a.mineStage(), a.mergeStage())
	}
	return a.runPipeline(cmd, stages...)
}
