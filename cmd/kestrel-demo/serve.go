package main

import (
	"github.com/spf13/cobra"

	"github.com/vitalvas/kestrel/app"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := app.LoadConfig()
		if err != nil {
			return err
		}
		if serveAddr != "" {
			cfg.Addr = serveAddr
		}

		a, err := buildApp(cfg, nil)
		if err != nil {
			return err
		}
		return a.Run(cmd.Context())
	},
}

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "Print the route table as YAML",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := app.LoadConfig()
		if err != nil {
			return err
		}

		a, err := buildApp(cfg, nil)
		if err != nil {
			return err
		}
		return a.DumpRoutes(cmd.OutOrStdout())
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address, overrides KESTREL_ADDR")

	rootCmd.AddCommand(serveCmd, routesCmd)
}
