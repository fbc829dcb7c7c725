package cmd

import (
	"github.com/gatehouse-dev/gatehouse/internal/server"
	"github.com/spf13/cobra"

	_ "github.com/gatehouse-dev/gatehouse/docs" // Load swagger docs
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Gatehouse API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return server.RunWithSignalHandling(server.Config{
			Port:    servePort,
			Version: Version,
		})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to run the server on (overrides config)")
}
