package cmd

import (
	"github.com/spf13/cobra"
)

// Version is set via ldflags at build time
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:     "gatehousectl",
	Version: Version,
	Short:   "Gatehouse CLI - Multi-tenant identity and access management",
	Long: `Gatehousectl administers a Gatehouse deployment: it runs the server,
bootstraps operator accounts, and manages OAuth2 clients and their
permission catalogs.

Examples:
  # Run the API server
  gatehousectl serve --port 8470

  # Create a system operator account
  gatehousectl create-admin admin admin@example.com

  # Register an OAuth2 client and inspect its permission catalog
  gatehousectl create-client acme-portal
  gatehousectl list-permissions acme-portal`,
}

func Execute() error {
	return rootCmd.Execute()
}
