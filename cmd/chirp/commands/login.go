package commands

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/chirpd-io/chirp/internal/constants"
	"github.com/chirpd-io/chirp/pkg/chirp"
)

// NewLoginCommand creates the login command.
func NewLoginCommand() *cobra.Command {
	var (
		username string
		password string
		useXAuth bool
		save     bool
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authorize the CLI for a user account",
		Long: `Obtain a user access token via the PIN-based OAuth flow.

The command fetches temporary credentials, prints the authorization URL to
open in a browser, and exchanges the PIN shown there for an access token.
With --xauth the username/password exchange is used instead, which only
works for consumer keys with xAuth enabled.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := buildClient()
			if err != nil {
				return err
			}

			ctx := context.Background()

			var token *chirp.AccessToken
			if useXAuth {
				token, err = xauthLogin(ctx, client, username, password)
			} else {
				token, err = pinLogin(ctx, client, cmd)
			}

			if err != nil {
				return err
			}

			cmd.Printf("Logged in as @%s (user id %s)\n", token.ScreenName, token.UserID)

			if save {
				config := loadConfig()
				config.Token = token.Token
				config.TokenSecret = token.Secret
				config.ScreenName = token.ScreenName
				config.UserID = token.UserID

				err = saveConfig(config)
				if err != nil {
					return fmt.Errorf("failed to save configuration: %w", err)
				}

				cmd.Println("Credentials saved")
			} else {
				cmd.Printf("token: %s\ntoken_secret: %s\n", token.Token, token.Secret)
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "username for xAuth")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password for xAuth (prompted when omitted)")
	cmd.Flags().BoolVar(&useXAuth, "xauth", false, "use the xAuth username/password exchange")
	cmd.Flags().BoolVar(&save, "save", false, "persist the token to the config file")

	return cmd
}

// pinLogin walks the PIN-based three-legged flow.
func pinLogin(ctx context.Context, client chirp.Client, cmd *cobra.Command) (*chirp.AccessToken, error) {
	temp, err := client.GetRequestToken(ctx, constants.OOBCallback)
	if err != nil {
		return nil, fmt.Errorf("failed to get request token: %w", err)
	}

	if !temp.CallbackConfirmed {
		return nil, constants.ErrCallbackNotConfirmed
	}

	authorizeURL, err := client.AuthorizationURL(temp.Token, nil)
	if err != nil {
		return nil, err
	}

	cmd.Printf("Open this URL in a browser and authorize the application:\n\n  %s\n\n", authorizeURL)

	reader := bufio.NewReader(os.Stdin)
	fmt.Print("PIN: ")

	pin, _ := reader.ReadString('\n')

	pin = strings.TrimSpace(pin)
	if pin == "" {
		return nil, constants.ErrEmptyPIN
	}

	token, err := client.GetAccessToken(ctx, temp.Token, temp.Secret, pin)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange PIN for access token: %w", err)
	}

	return token, nil
}

// xauthLogin exchanges a username and password directly.
func xauthLogin(ctx context.Context, client chirp.Client, username, password string) (*chirp.AccessToken, error) {
	if username == "" {
		reader := bufio.NewReader(os.Stdin)
		fmt.Print("Username: ")

		username, _ = reader.ReadString('\n')
		username = strings.TrimSpace(username)
	}

	if username == "" {
		return nil, constants.ErrEmptyUsername
	}

	if password == "" {
		fmt.Print("Password: ")

		bytePassword, err := term.ReadPassword(int(syscall.Stdin))
		if err != nil {
			return nil, fmt.Errorf("failed to read password: %w", err)
		}

		password = string(bytePassword)

		fmt.Println()
	}

	token, err := client.XAuthAccessToken(ctx, username, password)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange credentials for access token: %w", err)
	}

	return token, nil
}

// NewLogoutCommand creates the logout command.
func NewLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored user token",
		Long:  "Remove the stored access token pair from the config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			if config.Token == "" && config.TokenSecret == "" {
				cmd.Println("Not logged in")

				return nil
			}

			config.Token = ""
			config.TokenSecret = ""
			config.ScreenName = ""
			config.UserID = ""

			err := saveConfig(config)
			if err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}

			cmd.Println("Logged out")

			return nil
		},
	}
}
