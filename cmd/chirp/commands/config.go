package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/chirpd-io/chirp/internal/constants"
)

// Config represents the persisted CLI configuration.
type Config struct {
	API        string `json:"api,omitempty"         yaml:"api,omitempty"`
	UploadAPI  string `json:"upload_api,omitempty"  yaml:"upload_api,omitempty"`
	APIVersion string `json:"api_version,omitempty" yaml:"api_version,omitempty"`
	Extension  string `json:"extension,omitempty"   yaml:"extension,omitempty"`

	ConsumerKey    string `json:"consumer_key,omitempty"    yaml:"consumer_key,omitempty"`
	ConsumerSecret string `json:"consumer_secret,omitempty" yaml:"consumer_secret,omitempty"`
	Token          string `json:"token,omitempty"           yaml:"token,omitempty"`
	TokenSecret    string `json:"token_secret,omitempty"    yaml:"token_secret,omitempty"`
	BearerToken    string `json:"bearer_token,omitempty"    yaml:"bearer_token,omitempty"`

	// Identity captured by the last login.
	ScreenName string `json:"screen_name,omitempty" yaml:"screen_name,omitempty"`
	UserID     string `json:"user_id,omitempty"     yaml:"user_id,omitempty"`

	Output  string `json:"output,omitempty" yaml:"output,omitempty"`
	Verbose bool   `json:"verbose,omitempty" yaml:"verbose,omitempty"`
}

// settableKeys are the config keys accepted by "config set".
var settableKeys = []string{
	"api", "upload_api", "api_version", "extension",
	"consumer_key", "consumer_secret", "token", "token_secret",
	"bearer_token", "output", "verbose",
}

// loadConfig builds the effective configuration from viper, which has the
// config file, environment, and flags already merged.
func loadConfig() *Config {
	return &Config{
		API:            viper.GetString("api"),
		UploadAPI:      viper.GetString("upload_api"),
		APIVersion:     viper.GetString("api_version"),
		Extension:      viper.GetString("extension"),
		ConsumerKey:    viper.GetString("consumer_key"),
		ConsumerSecret: viper.GetString("consumer_secret"),
		Token:          viper.GetString("token"),
		TokenSecret:    viper.GetString("token_secret"),
		BearerToken:    viper.GetString("bearer_token"),
		ScreenName:     viper.GetString("screen_name"),
		UserID:         viper.GetString("user_id"),
		Output:         viper.GetString("output"),
		Verbose:        viper.GetBool("verbose"),
	}
}

// configFilePath resolves the file that saveConfig writes: the file viper
// loaded, or the default location when no config file exists yet.
func configFilePath() (string, error) {
	if configFile := viper.ConfigFileUsed(); configFile != "" {
		return configFile, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	configDir := filepath.Join(home, ".chirp")

	err = os.MkdirAll(configDir, constants.ConfigDirPerm)
	if err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return filepath.Join(configDir, "config.yml"), nil
}

// saveConfig writes the configuration to the config file.
func saveConfig(config *Config) error {
	configFile, err := configFilePath()
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	err = os.WriteFile(configFile, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Manage chirp CLI configuration including credentials and settings",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetCommand())
	cmd.AddCommand(newConfigUnsetCommand())
	cmd.AddCommand(newConfigClearCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the current CLI configuration with secrets masked",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			switch viper.GetString("output") {
			case OutputFormatJSON, OutputFormatYAML:
				return renderResult(maskedConfigMap(config))
			default:
				return renderConfigTable(config)
			}
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Long:  "Set a configuration value and persist it to the config file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]

			if !isSettableKey(key) {
				return fmt.Errorf("%w: unknown key %q", constants.ErrMalformedArgument, key)
			}

			viper.Set(key, value)

			err := saveConfig(loadConfig())
			if err != nil {
				return err
			}

			cmd.Printf("Set %s\n", key)

			return nil
		},
	}
}

func newConfigUnsetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unset KEY",
		Short: "Unset a configuration value",
		Long:  "Remove a configuration value and persist the change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]

			if !isSettableKey(key) {
				return fmt.Errorf("%w: unknown key %q", constants.ErrMalformedArgument, key)
			}

			viper.Set(key, "")

			err := saveConfig(loadConfig())
			if err != nil {
				return err
			}

			cmd.Printf("Unset %s\n", key)

			return nil
		},
	}
}

func newConfigClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear stored credentials",
		Long:  "Remove all stored tokens from the config file, keeping endpoints and settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()
			config.Token = ""
			config.TokenSecret = ""
			config.BearerToken = ""
			config.ScreenName = ""
			config.UserID = ""

			err := saveConfig(config)
			if err != nil {
				return err
			}

			cmd.Println("Cleared stored credentials")

			return nil
		},
	}
}

func isSettableKey(key string) bool {
	for _, candidate := range settableKeys {
		if candidate == key {
			return true
		}
	}

	return false
}

// maskedConfigMap renders the config with secrets masked for structured
// output formats.
func maskedConfigMap(config *Config) map[string]any {
	return map[string]any{
		"api":             config.API,
		"upload_api":      config.UploadAPI,
		"api_version":     config.APIVersion,
		"extension":       config.Extension,
		"consumer_key":    config.ConsumerKey,
		"consumer_secret": maskSecret(config.ConsumerSecret),
		"token":           maskSecret(config.Token),
		"token_secret":    maskSecret(config.TokenSecret),
		"bearer_token":    maskSecret(config.BearerToken),
		"screen_name":     config.ScreenName,
		"user_id":         config.UserID,
		"output":          config.Output,
	}
}

func renderConfigTable(config *Config) error {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Setting", "Value")

	rows := [][2]string{
		{"api", orNotAvailable(config.API)},
		{"upload_api", orNotAvailable(config.UploadAPI)},
		{"api_version", orNotAvailable(config.APIVersion)},
		{"extension", orNotAvailable(config.Extension)},
		{"consumer_key", orNotAvailable(config.ConsumerKey)},
		{"consumer_secret", maskSecret(config.ConsumerSecret)},
		{"token", maskSecret(config.Token)},
		{"token_secret", maskSecret(config.TokenSecret)},
		{"bearer_token", maskSecret(config.BearerToken)},
		{"screen_name", orNotAvailable(config.ScreenName)},
		{"user_id", orNotAvailable(config.UserID)},
		{"output", orNotAvailable(config.Output)},
	}

	for _, row := range rows {
		_ = table.Append(row[0], row[1])
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

func orNotAvailable(value string) string {
	if value == "" {
		return NotAvailable
	}

	return value
}
