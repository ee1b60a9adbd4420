package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewVersionCommand(t *testing.T) {
	cmd := NewVersionCommand("1.2.3", "abcdef", "2026-01-01")
	assert.Equal(t, "version", cmd.Use)
	assert.Equal(t, "Display version information", cmd.Short)
	assert.NotNil(t, cmd.RunE)
}

func TestNewLoginCommand(t *testing.T) {
	cmd := NewLoginCommand()
	assert.Equal(t, "login", cmd.Use)
	assert.NotNil(t, cmd.RunE)

	assert.NotNil(t, cmd.Flags().Lookup("username"))
	assert.NotNil(t, cmd.Flags().Lookup("password"))
	assert.NotNil(t, cmd.Flags().Lookup("xauth"))
	assert.NotNil(t, cmd.Flags().Lookup("save"))
}

func TestNewLogoutCommand(t *testing.T) {
	cmd := NewLogoutCommand()
	assert.Equal(t, "logout", cmd.Use)
	assert.NotNil(t, cmd.RunE)
}

func TestNewAppTokenCommand(t *testing.T) {
	cmd := NewAppTokenCommand()
	assert.Equal(t, "app-token", cmd.Use)
	assert.NotNil(t, cmd.RunE)
	assert.NotNil(t, cmd.Flags().Lookup("save"))

	var commandNames []string
	for _, subcmd := range cmd.Commands() {
		commandNames = append(commandNames, subcmd.Name())
	}

	assert.Contains(t, commandNames, "invalidate")
}

func TestNewConfigCommand(t *testing.T) {
	cmd := NewConfigCommand()
	assert.Equal(t, "config", cmd.Use)

	subcommands := cmd.Commands()
	assert.Len(t, subcommands, 4)

	var commandNames []string
	for _, subcmd := range subcommands {
		commandNames = append(commandNames, subcmd.Name())
	}

	assert.Contains(t, commandNames, "show")
	assert.Contains(t, commandNames, "set")
	assert.Contains(t, commandNames, "unset")
	assert.Contains(t, commandNames, "clear")
}

func TestNewRequestCommand(t *testing.T) {
	cmd := NewRequestCommand()
	assert.Equal(t, "request METHOD PATH [key=value...]", cmd.Use)
	assert.NotNil(t, cmd.RunE)
	assert.NotNil(t, cmd.Args)
	assert.NotNil(t, cmd.Flags().Lookup("upload"))
}

func TestNewPostCommand(t *testing.T) {
	cmd := NewPostCommand()
	assert.Equal(t, "post TEXT", cmd.Use)
	assert.NotNil(t, cmd.RunE)
	assert.NotNil(t, cmd.Flags().Lookup("media"))
	assert.NotNil(t, cmd.Flags().Lookup("reply-to"))
}

func TestNewTimelineCommand(t *testing.T) {
	cmd := NewTimelineCommand()
	assert.Equal(t, "timeline", cmd.Use)
	assert.NotNil(t, cmd.RunE)
	assert.NotNil(t, cmd.Flags().Lookup("count"))
	assert.NotNil(t, cmd.Flags().Lookup("user"))
}

func TestNewUserCommand(t *testing.T) {
	cmd := NewUserCommand()
	assert.Equal(t, "user IDENTIFIER", cmd.Use)
	assert.NotNil(t, cmd.RunE)
	assert.NotNil(t, cmd.Args)
}

func TestIsSettableKey(t *testing.T) {
	assert.True(t, isSettableKey("api"))
	assert.True(t, isSettableKey("consumer_key"))
	assert.True(t, isSettableKey("bearer_token"))
	assert.False(t, isSettableKey("screen_name"))
	assert.False(t, isSettableKey("nonsense"))
}
