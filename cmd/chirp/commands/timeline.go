package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/chirpd-io/chirp/internal/constants"
	"github.com/chirpd-io/chirp/pkg/chirp"
)

// NewTimelineCommand creates the timeline command.
func NewTimelineCommand() *cobra.Command {
	var (
		count int
		user  string
	)

	cmd := &cobra.Command{
		Use:   "timeline",
		Short: "Show a timeline of statuses",
		Long: `Show the home timeline of the logged-in user, or with --user the
public timeline of another account.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if count <= 0 {
				count = constants.DefaultTimelineCount
			}

			if count > constants.MaxTimelineCount {
				count = constants.MaxTimelineCount
			}

			client, err := buildClient()
			if err != nil {
				return err
			}

			path := "statuses/home_timeline"
			timelineArgs := chirp.Args{"count": count, "tweet_mode": "extended"}

			if user != "" {
				path = "statuses/user_timeline"
				timelineArgs[identifierKey(user)] = user
			} else if viper.GetString("token") == "" {
				// The home timeline has no application-only form.
				return constants.ErrNoAccessToken
			}

			result, _, err := client.Get(context.Background(), path, timelineArgs)
			if err != nil {
				return err
			}

			switch viper.GetString("output") {
			case OutputFormatJSON, OutputFormatYAML:
				return renderResult(result)
			default:
				statuses, ok := result.([]any)
				if !ok {
					return fmt.Errorf("%w: timeline reply is not an array", constants.ErrUnexpectedReply)
				}

				return renderTimelineTable(statuses)
			}
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", constants.DefaultTimelineCount, "number of statuses to show")
	cmd.Flags().StringVarP(&user, "user", "u", "", "screen name or numeric user id")

	return cmd
}

func renderTimelineTable(statuses []any) error {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("ID", "Created", "User", "Text")

	for _, entry := range statuses {
		status, ok := entry.(map[string]any)
		if !ok {
			continue
		}

		_ = table.Append(
			tableCell(status["id_str"]),
			tableCell(status["created_at"]),
			statusAuthor(status),
			statusText(status),
		)
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

func statusAuthor(status map[string]any) string {
	author, ok := status["user"].(map[string]any)
	if !ok {
		return NotAvailable
	}

	screenName, ok := author["screen_name"].(string)
	if !ok {
		return NotAvailable
	}

	return "@" + screenName
}

// statusText flattens a status body to a single truncated line. Extended
// mode puts the body under full_text; classic mode uses text.
func statusText(status map[string]any) string {
	text, ok := status["full_text"].(string)
	if !ok {
		text, _ = status["text"].(string)
	}

	text = strings.ReplaceAll(text, "\n", " ")

	if len(text) > constants.StringTruncationLength {
		return text[:constants.StringTruncationLength-3] + "..."
	}

	return text
}
