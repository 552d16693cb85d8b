package cmd

import (
	"fmt"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/spigell/matchdeck/internal/secrets"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage the api token stored in the OS keychain",
}

var tokenSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Store the api token in the OS keychain",
	RunE: func(_ *cobra.Command, _ []string) error {
		prompt := promptui.Prompt{
			Label: "API token",
			Mask:  '*',
		}

		token, err := prompt.Run()
		if err != nil {
			return err
		}

		if err := secrets.Store(tokenAccount, token); err != nil {
			return fmt.Errorf("storing api token: %w", err)
		}

		fmt.Printf("api token stored in the %q keychain service\n", secrets.KeyringService)
		return nil
	},
}

var tokenForgetCmd = &cobra.Command{
	Use:   "forget",
	Short: "Remove the api token from the OS keychain",
	RunE: func(_ *cobra.Command, _ []string) error {
		if err := secrets.Forget(tokenAccount); err != nil {
			return fmt.Errorf("removing api token: %w", err)
		}

		fmt.Println("api token removed")
		return nil
	},
}

func init() {
	tokenCmd.AddCommand(tokenSetCmd, tokenForgetCmd)
	rootCmd.AddCommand(tokenCmd)
}
