package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/chirpd-io/chirp/internal/constants"
	"github.com/chirpd-io/chirp/pkg/chirp"
	"github.com/chirpd-io/chirp/pkg/chirpclient"
)

// Common string constants used throughout the commands package.
const (
	NotAvailable = "N/A"

	// Output formats.
	OutputFormatJSON  = "json"
	OutputFormatYAML  = "yaml"
	OutputFormatTable = "table"

	// JSON formatting.
	defaultJSONIndent = "  "

	maskedSecretRunes = 4
)

// buildClient assembles a chirp client from the resolved configuration:
// flags, environment, and the config file, in that precedence.
func buildClient() (chirp.Client, error) {
	config := &chirp.Config{
		APIEndpoint:       viper.GetString("api"),
		UploadEndpoint:    viper.GetString("upload_api"),
		APIVersion:        viper.GetString("api_version"),
		Extension:         viper.GetString("extension"),
		ConsumerKey:       viper.GetString("consumer_key"),
		ConsumerSecret:    viper.GetString("consumer_secret"),
		AccessToken:       viper.GetString("token"),
		AccessTokenSecret: viper.GetString("token_secret"),
		BearerToken:       viper.GetString("bearer_token"),
		SkipTLSVerify:     viper.GetBool("skip_ssl_validation"),
		HTTPTimeout:       viper.GetDuration("timeout"),
	}

	if config.ConsumerKey == "" {
		return nil, constants.ErrNoConsumerKey
	}

	if config.ConsumerSecret == "" {
		return nil, constants.ErrNoConsumerSecret
	}

	// A bearer token without a user token pair selects app-only auth.
	if config.BearerToken != "" && config.AccessToken == "" {
		config.AppAuth = true
	}

	if viper.GetBool("verbose") {
		config.Debug = true
		config.Logger = NewConsoleLogger()
	}

	client, err := chirpclient.New(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return client, nil
}

// renderResult writes a decoded API result in the configured output format.
// Tables only suit flat objects, so arrays and nested values fall back to
// indented JSON cells.
func renderResult(result any) error {
	switch viper.GetString("output") {
	case OutputFormatJSON:
		return renderJSON(result)
	case OutputFormatYAML:
		return renderYAML(result)
	default:
		object, ok := result.(map[string]any)
		if !ok {
			return renderJSON(result)
		}

		return renderKeyValueTable(object)
	}
}

func renderJSON(result any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", defaultJSONIndent)

	if err := encoder.Encode(result); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}

func renderYAML(result any) error {
	encoder := yaml.NewEncoder(os.Stdout)
	defer encoder.Close()

	if err := encoder.Encode(result); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}

	return nil
}

func renderKeyValueTable(object map[string]any) error {
	keys := make([]string, 0, len(object))
	for key := range object {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Field", "Value")

	for _, key := range keys {
		_ = table.Append(key, tableCell(object[key]))
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

// tableCell formats one value for a table cell.
func tableCell(value any) string {
	switch v := value.(type) {
	case nil:
		return NotAvailable
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}

		return string(encoded)
	}
}

// parseCallArgs converts key=value command arguments into a request bag.
// Values parse as booleans and integers where they look like one, a value
// of @path attaches the file's bytes for multipart upload, and everything
// else stays a string.
func parseCallArgs(pairs []string) (chirp.Args, error) {
	args := chirp.Args{}

	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("%w: %q", constants.ErrMalformedArgument, pair)
		}

		parsed, err := parseCallValue(value)
		if err != nil {
			return nil, err
		}

		args[key] = parsed
	}

	return args, nil
}

func parseCallValue(value string) (any, error) {
	if strings.HasPrefix(value, "@") {
		return readFileArg(strings.TrimPrefix(value, "@"))
	}

	if value == "true" || value == "false" {
		return value == "true", nil
	}

	if number, err := strconv.ParseInt(value, 10, 64); err == nil {
		return number, nil
	}

	return value, nil
}

func readFileArg(path string) (*chirp.File, error) {
	content, err := os.ReadFile(path) // #nosec G304 -- path is operator input
	if err != nil {
		return nil, fmt.Errorf("failed to read file argument: %w", err)
	}

	return &chirp.File{
		Name:    filepath.Base(path),
		Content: content,
	}, nil
}

// maskSecret hides all but the last few characters of a credential.
func maskSecret(secret string) string {
	if secret == "" {
		return NotAvailable
	}

	if len(secret) <= maskedSecretRunes {
		return strings.Repeat("*", len(secret))
	}

	return strings.Repeat("*", len(secret)-maskedSecretRunes) + secret[len(secret)-maskedSecretRunes:]
}
