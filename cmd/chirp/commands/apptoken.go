package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/chirpd-io/chirp/internal/constants"
)

// NewAppTokenCommand creates the app-token command group.
func NewAppTokenCommand() *cobra.Command {
	var save bool

	cmd := &cobra.Command{
		Use:   "app-token",
		Short: "Obtain an application-only bearer token",
		Long: `Exchange the consumer credentials for an OAuth2 bearer token.

Application-only requests are not signed per user and can only reach
endpoints that do not require a user context.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := buildClient()
			if err != nil {
				return err
			}

			token, err := client.GetAppToken(context.Background())
			if err != nil {
				return fmt.Errorf("failed to obtain app token: %w", err)
			}

			if save {
				config := loadConfig()
				config.BearerToken = token.AccessToken

				err = saveConfig(config)
				if err != nil {
					return fmt.Errorf("failed to save configuration: %w", err)
				}

				cmd.Println("Bearer token saved")

				return nil
			}

			cmd.Printf("token_type: %s\nbearer_token: %s\n", token.TokenType, token.AccessToken)

			return nil
		},
	}

	cmd.Flags().BoolVar(&save, "save", false, "persist the bearer token to the config file")

	cmd.AddCommand(newAppTokenInvalidateCommand())

	return cmd
}

func newAppTokenInvalidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "invalidate [TOKEN]",
		Short: "Revoke an application-only bearer token",
		Long:  "Revoke the given bearer token, or the stored one when omitted",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token := viper.GetString("bearer_token")
			if len(args) == 1 {
				token = args[0]
			}

			if token == "" {
				return constants.ErrNoBearerToken
			}

			client, err := buildClient()
			if err != nil {
				return err
			}

			err = client.InvalidateAppToken(context.Background(), token)
			if err != nil {
				return fmt.Errorf("failed to invalidate app token: %w", err)
			}

			// Drop the revoked token from the config file if it is the
			// stored one.
			config := loadConfig()
			if config.BearerToken == token {
				config.BearerToken = ""

				err = saveConfig(config)
				if err != nil {
					return fmt.Errorf("failed to save configuration: %w", err)
				}
			}

			cmd.Println("Bearer token invalidated")

			return nil
		},
	}
}
