package cli

import (
	"github.com/spf13/cobra"
)

// One command per stage, for reruns and debugging without the full
// pipeline. Each still goes through the pipeline driver so artifact
// probing behaves exactly as in a full run.

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Enumerate the bot's issues into the issue sink",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := buildApp(cmd)
		if err != nil {
			return err
		}
		client, err := a.githubClient(cmd)
		if err != nil {
			return err
		}
		collect, err := a.collectStage(client)
		if err != nil {
			return err
		}
		return a.runPipeline(cmd, collect)
	},
}

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Fetch and filter repository metadata for collected issues",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := buildApp(cmd)
		if err != nil {
			return err
		}
		client, err := a.githubClient(cmd)
		if err != nil {
			return err
		}
		return a.runPipeline(cmd, a.resolveStage(client))
	},
}

var cloneCmd = &cobra.Command{
	Use:   "clone",
	Short: "Clone every accepted repository",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := buildApp(cmd)
		if err != nil {
			return err
		}
		if cloneResumeAt != "" {
			a.settings.Run.ResumeAt = cloneResumeAt
		}
		return a.runPipeline(cmd, a.cloneStage())
	},
}

var cloneResumeAt string

var mineCmd = &cobra.Command{
	Use:   "mine",
	Short: "Mine cloned histories for pre-existing TODO comments",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := buildApp(cmd)
		if err != nil {
			return err
		}
		return a.runPipeline(cmd, a.mineStage())
	},
}

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Deduplicate signals and build the merged artifact",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := buildApp(cmd)
		if err != nil {
			return err
		}
		return a.runPipeline(cmd, a.mergeStage())
	},
}

func init() {
	cloneCmd.Flags().StringVar(&cloneResumeAt, "resume-at", "",
		"skip repositories sorted before this owner/name")
	rootCmd.AddCommand(collectCmd, resolveCmd, cloneCmd, mineCmd, mergeCmd)
}
