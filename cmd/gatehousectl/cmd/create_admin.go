package cmd

import (
	"fmt"
	"syscall"

	"github.com/gatehouse-dev/gatehouse/internal/auth"
	"github.com/gatehouse-dev/gatehouse/internal/models"
	"github.com/gatehouse-dev/gatehouse/internal/rbac"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var createAdminPassword string

var createAdminCmd = &cobra.Command{
	Use:   "create-admin <username> <email>",
	Short: "Create a system operator account",
	Long: `Create a user and grant it the system operator role. Operators manage
OAuth2 clients and permission catalogs through the admin API.

Examples:
  # Interactive (prompts for password)
  gatehousectl create-admin admin admin@example.com

  # Non-interactive
  gatehousectl create-admin admin admin@example.com --password secret`,
	Args: cobra.ExactArgs(2),
	RunE: runCreateAdmin,
}

func init() {
	rootCmd.AddCommand(createAdminCmd)

	createAdminCmd.Flags().StringVarP(&createAdminPassword, "password", "p", "", "Password (prompted when omitted)")
}

func runCreateAdmin(cmd *cobra.Command, args []string) error {
	username := args[0]
	email := args[1]

	password := createAdminPassword
	if password == "" {
		fmt.Print("Password: ")
		bytePassword, err := term.ReadPassword(int(syscall.Stdin))
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Println() // newline after password input
		password = string(bytePassword)
	}
	if password == "" {
		return fmt.Errorf("password must not be empty")
	}

	database, err := openDatabase()
	if err != nil {
		return err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}
	if err := database.Create(&user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	if err := rbac.MakeAdmin(user.ID); err != nil {
		return fmt.Errorf("failed to grant operator role: %w", err)
	}

	fmt.Printf("Operator account created\n")
	fmt.Printf("ID: %s\n", user.ID)
	fmt.Printf("Username: %s\n", user.Username)
	fmt.Printf("Email: %s\n", user.Email)
	return nil
}
