package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "schemaevolve.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func testFlags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("config", "", "")
	flags.String("db-url", "", "")
	flags.String("dialect", "", "")
	flags.String("format", "", "")
	flags.String("log-level", "", "")
	flags.StringSlice("rename", nil, "")
	flags.StringArray("initial", nil, "")
	return flags
}

func TestLoadDefaults(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultDialect, cfg.Dialect)
	assert.Equal(t, DefaultFormat, cfg.Format)
	assert.Equal(t, DefaultHistory, cfg.History)
	assert.Empty(t, cfg.File)

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, level)
}

func TestLoadPrecedence(t *testing.T) {
	path := writeConfig(t, `
database_url: postgres://file/app
dialect: mysql
format: markdown
renames:
  - app.Person.name=full_name
initials:
  app.Person.age: "0"
`)

	t.Run("file", func(t *testing.T) {
		cfg, err := Load(path, nil)
		require.NoError(t, err)
		assert.Equal(t, path, cfg.File)
		assert.Equal(t, "postgres://file/app", cfg.DatabaseURL)
		assert.Equal(t, "mysql", cfg.Dialect)
		assert.Equal(t, "markdown", cfg.Format)
		assert.Equal(t, []string{"app.Person.name=full_name"}, cfg.Renames)
		assert.Equal(t, map[string]string{"app.Person.age": "0"}, cfg.Initials)
	})

	t.Run("env overrides file", func(t *testing.T) {
		t.Setenv("SCHEMAEVOLVE_DATABASE_URL", "postgres://env/app")
		t.Setenv("SCHEMAEVOLVE_LOG_LEVEL", "debug")

		cfg, err := Load(path, nil)
		require.NoError(t, err)
		assert.Equal(t, "postgres://env/app", cfg.DatabaseURL)
		level, err := cfg.Level()
		require.NoError(t, err)
		assert.Equal(t, slog.LevelDebug, level)
	})

	t.Run("flags override env", func(t *testing.T) {
		t.Setenv("SCHEMAEVOLVE_DATABASE_URL", "postgres://env/app")
		flags := testFlags()
		require.NoError(t, flags.Parse([]string{
			"--db-url", "sqlite://flag.db",
			"--dialect", "sqlite",
			"--rename", "app.Person.age=years",
			"--initial", "app.Person.code=1",
		}))

		cfg, err := Load(path, flags)
		require.NoError(t, err)
		assert.Equal(t, "sqlite://flag.db", cfg.DatabaseURL)
		assert.Equal(t, "sqlite", cfg.Dialect)
		assert.Equal(t, "markdown", cfg.Format, "unset flags keep the file value")
		assert.Equal(t, []string{"app.Person.age=years"}, cfg.Renames)
		assert.Equal(t, map[string]string{"app.Person.age": "0"}, cfg.Initials)
	})
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{name: "dialect", content: "dialect: oracle\n", wantErr: "invalid dialect"},
		{name: "format", content: "format: html\n", wantErr: "invalid format"},
		{name: "log level", content: "log_level: loud\n", wantErr: "invalid log level"},
		{name: "yaml", content: "dialect: [\n", wantErr: "error reading config file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content), nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
