package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chirpd-io/chirp/internal/constants"
)

// NewRequestCommand creates the request command, the escape hatch for
// endpoints without a dedicated command.
func NewRequestCommand() *cobra.Command {
	var upload bool

	cmd := &cobra.Command{
		Use:   "request METHOD PATH [key=value...]",
		Short: "Call an arbitrary API endpoint",
		Long: `Send a request to any endpoint of the configured API.

PATH is relative to the API endpoint ("users/show") and the configured
version segment and extension are applied automatically. Arguments are
key=value pairs; values parse as booleans and integers where they look
like one, and @path attaches a file for multipart upload.

Examples:
  chirp request GET users/show screen_name=semifor
  chirp request POST statuses/update status='hello world'
  chirp request POST media/upload media=@photo.jpg --upload`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, cmdArgs []string) error {
			method := strings.ToUpper(cmdArgs[0])
			path := cmdArgs[1]

			switch method {
			case "GET", "POST", "PUT", "DELETE":
			default:
				return fmt.Errorf("%w: %q", constants.ErrInvalidMethod, cmdArgs[0])
			}

			args, err := parseCallArgs(cmdArgs[2:])
			if err != nil {
				return err
			}

			client, err := buildClient()
			if err != nil {
				return err
			}

			if upload {
				path = client.UploadURLFor(path)
			}

			result, _, err := client.Request(context.Background(), method, path, args)
			if err != nil {
				return err
			}

			return renderResult(result)
		},
	}

	cmd.Flags().BoolVar(&upload, "upload", false, "send the request to the media upload endpoint")

	return cmd
}
