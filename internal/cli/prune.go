package cli

import (
	"fmt"

	"github.com/lisanmuaddib/blog-agent/internal/archive"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove unusable posts from a local archive",
	Long: `Walk a directory of dumped posts (*.json) and delete reblogs, posts without
content and posts whose text is shorter than --min-size.`,
	RunE: runPrune,
}

func init() {
	rootCmd.AddCommand(pruneCmd)

	pruneCmd.Flags().String("dir", "", "archive directory to prune")
	pruneCmd.Flags().Int("min-size", archive.DefaultMinSize, "shortest text length to keep")
	pruneCmd.Flags().Bool("dry-run", false, "report without deleting")

	_ = viper.BindPFlag("prune.dir", pruneCmd.Flags().Lookup("dir"))
	_ = viper.BindPFlag("prune.min_size", pruneCmd.Flags().Lookup("min-size"))
	_ = viper.BindPFlag("prune.dry_run", pruneCmd.Flags().Lookup("dry-run"))
}

func runPrune(cmd *cobra.Command, _ []string) error {
	dir := viper.GetString("prune.dir")
	if dir == "" {
		return fmt.Errorf("an archive directory is required (--dir)")
	}

	result, err := archive.Prune(archive.PruneConfig{
		Dir:     dir,
		MinSize: viper.GetInt("prune.min_size"),
		DryRun:  viper.GetBool("prune.dry_run"),
		Logger:  logger,
	})
	if result != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "scanned %d, kept %d, removed %d\n",
			result.Scanned, result.Kept, result.TotalRemoved())
	}
	return err
}
