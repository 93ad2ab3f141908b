package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Config Command Tests

func TestConfigCmd_Use(t *testing.T) {
	assert.Equal(t, "config", configCmd.Use)
}

func TestConfigCmd_HasSubcommands(t *testing.T) {
	commands := configCmd.Commands()
	commandNames := make([]string, 0, len(commands))
	for _, cmd := range commands {
		commandNames = append(commandNames, cmd.Name())
	}

	assert.Contains(t, commandNames, "show")
	assert.Contains(t, commandNames, "set-key")
}

func TestConfigShowCmd_PrintsSettings(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"config", "show"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "[LLM]")
	assert.Contains(t, buf.String(), "provider:       openai")
	assert.Contains(t, buf.String(), "model:          gpt-4o-mini")
	assert.Contains(t, buf.String(), "api_key:        (not set)")
	assert.Contains(t, buf.String(), "[Chunking]")
	assert.Contains(t, buf.String(), "[Query]")
	assert.Contains(t, buf.String(), "[Ingest]")
}

func TestConfigShowCmd_MasksStoredKey(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	settings := settingsService.(*stubSettingsService)
	settings.settings.LLM.APIKey = "sk-proj-abcdef123456"

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"config", "show"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "sk-p...3456")
	assert.NotContains(t, buf.String(), "sk-proj-abcdef123456")
}

func TestConfigShowCmd_WarnsOnInvalidSettings(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	settings := settingsService.(*stubSettingsService)
	settings.validateErr = errors.New("LLM provider openai needs an API key (llm.api_key) or a base URL (llm.base_url)")

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"config", "show"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Warning:")
	assert.Contains(t, buf.String(), "needs an API key")
}

func TestConfigSetKeyCmd_UnknownTarget(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"config", "set-key", "search"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), `unknown target "search"`)
}

func TestConfigSetKeyCmd_UnknownProvider(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"config", "set-key", "llm", "--provider", "mistral"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), `unknown provider "mistral"`)
}

// maskAPIKey Tests

func TestMaskAPIKey(t *testing.T) {
	assert.Equal(t, "(not set)", maskAPIKey(""))
	assert.Equal(t, "****", maskAPIKey("short"))
	assert.Equal(t, "****", maskAPIKey("12345678"))
	assert.Equal(t, "sk-a...wxyz", maskAPIKey("sk-abc123-wxyz"))
}
