package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "chatstats",
		Short: "Descriptive analytics for exported chat transcripts",
		Long: `chatstats computes message, word, media and link counts, activity timelines,
sender rankings, word and emoji frequencies and a weekday/hour heatmap from a
parsed chat transcript (one JSON message record per line).`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newAnalyzeCmd(), newScopesCmd(), newServeCmd())
	return root
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
