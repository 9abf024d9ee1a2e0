package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vitalvas/kestrel/config"
)

var envFiles []string

var rootCmd = &cobra.Command{
	Use:   "kestrel-demo",
	Short: "Example service built on kestrel",
	Long: `kestrel-demo serves a small user API, a chat WebSocket and
Prometheus metrics. Settings come from KESTREL_* environment variables
and an optional .env file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		if len(envFiles) == 0 {
			return nil
		}
		return config.LoadEnv(envFiles...)
	},
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return err
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "additional .env files to load")
}
