package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/chirpd-io/chirp/internal/constants"
	"github.com/chirpd-io/chirp/pkg/chirp"
)

// NewUserCommand creates the user command.
func NewUserCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "user IDENTIFIER",
		Short: "Show a user profile",
		Long:  "Look up a user by screen name or numeric user id and show the profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			identifier := args[0]
			if identifier == "" {
				return constants.ErrIdentifierRequired
			}

			client, err := buildClient()
			if err != nil {
				return err
			}

			result, _, err := client.Invoke(context.Background(),
				[]string{chirp.IDSentinel}, "GET", "users/show", identifier)
			if err != nil {
				return err
			}

			switch viper.GetString("output") {
			case OutputFormatJSON, OutputFormatYAML:
				return renderResult(result)
			default:
				profile, ok := result.(map[string]any)
				if !ok {
					return fmt.Errorf("%w: user reply is not an object", constants.ErrUnexpectedReply)
				}

				return renderUserTable(profile)
			}
		},
	}
}

func renderUserTable(profile map[string]any) error {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Field", "Value")

	rows := [][2]string{
		{"Screen name", "@" + tableCell(profile["screen_name"])},
		{"Name", tableCell(profile["name"])},
		{"User ID", tableCell(profile["id_str"])},
		{"Description", tableCell(profile["description"])},
		{"Location", tableCell(profile["location"])},
		{"Followers", tableCell(profile["followers_count"])},
		{"Following", tableCell(profile["friends_count"])},
		{"Statuses", tableCell(profile["statuses_count"])},
		{"Created", tableCell(profile["created_at"])},
		{"Protected", tableCell(profile["protected"])},
		{"Verified", tableCell(profile["verified"])},
	}

	for _, row := range rows {
		_ = table.Append(row[0], row[1])
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

// identifierKey classifies a user identifier the way positional endpoint
// signatures do: all digits selects user_id, anything else screen_name.
func identifierKey(identifier string) string {
	if identifier == "" {
		return "screen_name"
	}

	for _, r := range identifier {
		if r < '0' || r > '9' {
			return "screen_name"
		}
	}

	return "user_id"
}
