package cmd

import (
	"fmt"

	"github.com/gatehouse-dev/gatehouse/internal/service"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var createClientSecret string

var createClientCmd = &cobra.Command{
	Use:   "create-client <name>",
	Short: "Register an OAuth2 client application",
	Long: `Register an OAuth2 client. Each client gets its own permission catalog
seeded with the default team and member permissions.

The client secret is printed once; store it securely.`,
	Args: cobra.ExactArgs(1),
	RunE: runCreateClient,
}

var listClientsCmd = &cobra.Command{
	Use:   "list-clients",
	Short: "List registered OAuth2 clients",
	Args:  cobra.NoArgs,
	RunE:  runListClients,
}

func init() {
	rootCmd.AddCommand(createClientCmd)
	rootCmd.AddCommand(listClientsCmd)

	createClientCmd.Flags().StringVarP(&createClientSecret, "secret", "s", "", "Client secret (generated when omitted)")
}

func runCreateClient(cmd *cobra.Command, args []string) error {
	database, err := openDatabase()
	if err != nil {
		return err
	}

	secret := createClientSecret
	if secret == "" {
		secret = uuid.NewString()
	}

	client, err := service.NewClientService(database).Create(service.CreateClientRequest{
		Name:   args[0],
		Secret: secret,
	})
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	fmt.Printf("Client created\n")
	fmt.Printf("ID: %s\n", client.ID)
	fmt.Printf("Name: %s\n", client.Name)
	fmt.Printf("Secret: %s\n", secret)
	return nil
}

func runListClients(cmd *cobra.Command, args []string) error {
	database, err := openDatabase()
	if err != nil {
		return err
	}

	clients, err := service.NewClientService(database).List()
	if err != nil {
		return fmt.Errorf("failed to list clients: %w", err)
	}

	for _, client := range clients {
		status := "active"
		if client.Revoked {
			status = "revoked"
		}
		fmt.Printf("%s  %-30s %s\n", client.ID, client.Name, status)
	}
	return nil
}
