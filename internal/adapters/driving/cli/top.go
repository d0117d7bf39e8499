package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/todoscout/internal/core/services"
)

var topLimit int

var topCmd = &cobra.Command{
	Use:   "top",
	Short: "Show the most-starred accepted repositories",
	Args:  cobra.NoArgs,
	RunE:  runTop,
}

func init() {
	topCmd.Flags().IntVarP(&topLimit, "limit", "n", 25, "number of repositories to show")
	rootCmd.AddCommand(topCmd)
}

func runTop(cmd *cobra.Command, _ []string) error {
	a, err := buildApp(cmd)
	if err != nil {
		return err
	}

	repos, err := services.TopRepos(a.settings.ReposPath(), topLimit)
	if err != nil {
		return err
	}
	if len(repos) == 0 {
		cmd.Println("No accepted repositories yet. Run the resolve stage first.")
		return nil
	}

	for i, r := range repos {
		cmd.Printf("%3d. %-50s %8d stars %6d forks\n", i+1, r.FullName, r.Stars, r.Forks)
	}
	return nil
}
