package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App:      AppConfig{Environment: "development"},
		Logger:   LoggerConfig{Level: "info"},
		Metadata: MetadataConfig{BasePath: "/tmp/shelfplay"},
		Shelf:    ShelfConfig{SortBy: "title"},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_Environment(t *testing.T) {
	for _, env := range []string{"development", "staging", "production"} {
		cfg := validConfig()
		cfg.App.Environment = env
		assert.NoError(t, cfg.Validate(), "environment %q should be valid", env)
	}

	for _, env := range []string{"", "prod", "local", "DEVELOPMENT"} {
		cfg := validConfig()
		cfg.App.Environment = env
		assert.Error(t, cfg.Validate(), "environment %q should be rejected", env)
	}
}

func TestValidate_LogLevel(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "WARN"} {
		cfg := validConfig()
		cfg.Logger.Level = level
		assert.NoError(t, cfg.Validate(), "level %q should be valid", level)
	}

	cfg := validConfig()
	cfg.Logger.Level = "verbose"
	assert.Error(t, cfg.Validate())
}

func TestValidate_SortOrder(t *testing.T) {
	for _, sort := range []string{"title", "recent"} {
		cfg := validConfig()
		cfg.Shelf.SortBy = sort
		assert.NoError(t, cfg.Validate(), "sort %q should be valid", sort)
	}

	cfg := validConfig()
	cfg.Shelf.SortBy = "author"
	assert.Error(t, cfg.Validate())
}

func TestValidate_EmptyBasePath(t *testing.T) {
	cfg := validConfig()
	cfg.Metadata.BasePath = ""
	assert.Error(t, cfg.Validate())
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := expandPath("~/shelfplay", "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "shelfplay"), got)

	got, err = expandPath("", "/fallback")
	require.NoError(t, err)
	assert.Equal(t, "/fallback", got)

	got, err = expandPath("/absolute/path", "/fallback")
	require.NoError(t, err)
	assert.Equal(t, "/absolute/path", got)
}

func TestExpandMetadataPath_Default(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	cfg := validConfig()
	cfg.Metadata.BasePath = ""
	require.NoError(t, cfg.expandMetadataPath())
	assert.Equal(t, filepath.Join(home, "shelfplay"), cfg.Metadata.BasePath)
}

func TestLoadEnvFile(t *testing.T) {
	tmpDir := t.TempDir()
	envFile := filepath.Join(tmpDir, ".env")
	content := "# comment line\nSHELF_TEST_KEY=from_file\nSHELF_TEST_QUOTED=\"quoted value\"\nSHELF_TEST_PRESET=from_file\n"
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o600))

	t.Setenv("SHELF_TEST_KEY", "")
	t.Setenv("SHELF_TEST_QUOTED", "")
	t.Setenv("SHELF_TEST_PRESET", "already_set")
	os.Unsetenv("SHELF_TEST_KEY")
	os.Unsetenv("SHELF_TEST_QUOTED")

	require.NoError(t, loadEnvFile(envFile))
	assert.Equal(t, "from_file", os.Getenv("SHELF_TEST_KEY"))
	assert.Equal(t, "quoted value", os.Getenv("SHELF_TEST_QUOTED"))
	assert.Equal(t, "already_set", os.Getenv("SHELF_TEST_PRESET"))
}

func TestLoadEnvFile_Missing(t *testing.T) {
	assert.Error(t, loadEnvFile("/nonexistent/.env"))
}

func TestLoadEnvFile_InvalidLine(t *testing.T) {
	tmpDir := t.TempDir()
	envFile := filepath.Join(tmpDir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("no equals sign here\n"), 0o600))

	assert.Error(t, loadEnvFile(envFile))
}
