package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/chirpd-io/chirp/internal/constants"
	"github.com/chirpd-io/chirp/pkg/chirp"
)

// NewPostCommand creates the post command.
func NewPostCommand() *cobra.Command {
	var (
		mediaPaths []string
		replyTo    string
	)

	cmd := &cobra.Command{
		Use:   "post TEXT",
		Short: "Post a status update",
		Long: `Post a status update for the logged-in user.

Media files given with --media are uploaded to the media endpoint first
and attached to the status.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			status := strings.TrimSpace(strings.Join(args, " "))
			if status == "" {
				return constants.ErrStatusTextRequired
			}

			if viper.GetString("token") == "" || viper.GetString("token_secret") == "" {
				return constants.ErrNoAccessToken
			}

			client, err := buildClient()
			if err != nil {
				return err
			}

			ctx := context.Background()

			mediaIDs, err := uploadMedia(ctx, client, mediaPaths)
			if err != nil {
				return err
			}

			updateArgs := chirp.Args{"status": status}
			if len(mediaIDs) > 0 {
				updateArgs["media_ids"] = mediaIDs
			}

			if replyTo != "" {
				updateArgs["in_reply_to_status_id"] = replyTo
			}

			result, _, err := client.Post(ctx, "statuses/update", updateArgs)
			if err != nil {
				return err
			}

			if tweet, ok := result.(map[string]any); ok {
				cmd.Printf("Posted status %s\n", tableCell(tweet["id_str"]))
			}

			return renderResult(result)
		},
	}

	cmd.Flags().StringArrayVarP(&mediaPaths, "media", "m", nil, "media file to attach (repeatable)")
	cmd.Flags().StringVar(&replyTo, "reply-to", "", "status id this update replies to")

	return cmd
}

// uploadMedia sends each file to the media endpoint and collects the
// returned media ids.
func uploadMedia(ctx context.Context, client chirp.Client, paths []string) ([]string, error) {
	mediaIDs := make([]string, 0, len(paths))

	for _, path := range paths {
		file, err := readFileArg(path)
		if err != nil {
			return nil, err
		}

		result, _, err := client.Post(ctx, client.UploadURLFor("media/upload"), chirp.Args{"media": file})
		if err != nil {
			return nil, fmt.Errorf("failed to upload %s: %w", path, err)
		}

		object, ok := result.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: media upload reply is not an object", constants.ErrUnexpectedReply)
		}

		mediaID, ok := object["media_id_string"].(string)
		if !ok {
			return nil, fmt.Errorf("%w: media upload reply has no media id", constants.ErrUnexpectedReply)
		}

		mediaIDs = append(mediaIDs, mediaID)
	}

	return mediaIDs, nil
}
