package main

import (
	"fmt"
	"strings"

	"github.com/phrazzld/viva-api/internal/service/auth"
	"github.com/spf13/cobra"
)

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password <password>...",
	Short: "Print bcrypt hashes for seeding users",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cost, _ := cmd.Flags().GetInt("cost")
		hasher := auth.NewBcryptHasher(cost)
		for _, pw := range args {
			if strings.TrimSpace(pw) == "" {
				return fmt.Errorf("password cannot be blank")
			}
			hash, err := hasher.Hash(pw)
			if err != nil {
				return fmt.Errorf("failed to hash password: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
		}
		return nil
	},
}

func init() {
	hashPasswordCmd.Flags().Int("cost", 10, "bcrypt cost")
	rootCmd.AddCommand(hashPasswordCmd)
}
