package cmd

import (
	"errors"
	"fmt"

	"github.com/gatehouse-dev/gatehouse/internal/service"
	"github.com/spf13/cobra"
)

var (
	createPermissionSlug        string
	createPermissionDescription string
)

var createPermissionCmd = &cobra.Command{
	Use:   "create-permission <client> <name>",
	Short: "Define a permission in a client's catalog",
	Long: `Define a permission on the named client. The slug is derived from the
name unless --slug is given, and is suffixed when already taken.

New permissions are attached to every Administrators team of the
client's workspaces.`,
	Args: cobra.ExactArgs(2),
	RunE: runCreatePermission,
}

var listPermissionsCmd = &cobra.Command{
	Use:   "list-permissions <client>",
	Short: "List a client's permission catalog",
	Args:  cobra.ExactArgs(1),
	RunE:  runListPermissions,
}

func init() {
	rootCmd.AddCommand(createPermissionCmd)
	rootCmd.AddCommand(listPermissionsCmd)

	createPermissionCmd.Flags().StringVar(&createPermissionSlug, "slug", "", "Permission slug (derived from name when omitted)")
	createPermissionCmd.Flags().StringVar(&createPermissionDescription, "description", "", "Permission description")
}

func runCreatePermission(cmd *cobra.Command, args []string) error {
	database, err := openDatabase()
	if err != nil {
		return err
	}

	client, err := service.NewClientService(database).GetByName(args[0])
	if err != nil {
		return fmt.Errorf("failed to resolve client %q: %w", args[0], err)
	}

	perm, err := service.NewPermissionService(database).Create(client.ID, service.CreatePermissionRequest{
		Name:        args[1],
		Slug:        createPermissionSlug,
		Description: createPermissionDescription,
	})
	var propErr *service.PropagationError
	if errors.As(err, &propErr) {
		fmt.Printf("Warning: permission created but not attached to all Administrators teams: %v\n", propErr)
	} else if err != nil {
		return fmt.Errorf("failed to create permission: %w", err)
	}

	fmt.Printf("Permission created\n")
	fmt.Printf("ID: %s\n", perm.ID)
	fmt.Printf("Name: %s\n", perm.Name)
	fmt.Printf("Slug: %s\n", perm.Slug)
	return nil
}

func runListPermissions(cmd *cobra.Command, args []string) error {
	database, err := openDatabase()
	if err != nil {
		return err
	}

	client, err := service.NewClientService(database).GetByName(args[0])
	if err != nil {
		return fmt.Errorf("failed to resolve client %q: %w", args[0], err)
	}

	perms, err := service.NewPermissionService(database).List(client.ID, service.OrderNameAsc)
	if err != nil {
		return fmt.Errorf("failed to list permissions: %w", err)
	}

	for _, perm := range perms {
		fmt.Printf("%s  %-30s %s\n", perm.ID, perm.Slug, perm.Name)
	}
	return nil
}
