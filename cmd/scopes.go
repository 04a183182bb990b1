package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ConfabulousDev/chatstats/internal/config"
)

func newScopesCmd() *cobra.Command {
	var configPath string

	c := &cobra.Command{
		Use:   "scopes FILE",
		Short: "List the scopes that can be analyzed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			log, err := readLogFile(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			for _, scope := range log.Scopes(cfg.Analytics.NotificationSender) {
				fmt.Fprintln(cmd.OutOrStdout(), scope)
			}
			return nil
		},
	}
	c.Flags().StringVar(&configPath, "config", "", "path to a config file")
	return c
}
