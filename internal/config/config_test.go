package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_DefaultsAndOverrides(t *testing.T) {
	path := writeConfig(t, `
[logging]
level = "debug"
format = "json"

[server]
listen_addr = "0.0.0.0:9000"
cors_allowed_origins = ["https://example.org"]
cache_ttl_seconds = 0

[storage]
path = " /var/lib/flightrec/flights.db "

[reader]
charset = "latin1"
workers = 8
stop_on_error = true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "0.0.0.0:9000", cfg.Server.ListenAddr)
	assert.Equal(t, []string{"https://example.org"}, cfg.Server.CORSAllowedOrigins)
	assert.Equal(t, 0, cfg.Server.CacheTTLSeconds)
	assert.Equal(t, "/var/lib/flightrec/flights.db", cfg.Storage.Path)
	assert.Equal(t, "latin1", cfg.Reader.Charset)
	assert.Equal(t, 8, cfg.Reader.Workers)
	assert.True(t, cfg.Reader.StopOnError)

	// untouched keys keep their defaults
	def := Default()
	assert.Equal(t, def.Server.MaxUploadBytes, cfg.Server.MaxUploadBytes)
	assert.Equal(t, def.Reader.MaxLineSize, cfg.Reader.MaxLineSize)
}

func TestLoad_EmptyFileGivesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		content string
	}{
		{"bad level", "[logging]\nlevel = \"loud\"\n"},
		{"bad format", "[logging]\nformat = \"xml\"\n"},
		{"zero workers", "[reader]\nworkers = 0\n"},
		{"unknown charset", "[reader]\ncharset = \"klingon\"\n"},
		{"unknown key", "[reader]\nthreads = 3\n"},
		{"negative cache ttl", "[server]\ncache_ttl_seconds = -1\n"},
		{"empty storage path", "[storage]\npath = \"\"\n"},
		{"not toml", "this is = = not toml"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.content))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestDefault_IsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestReaderConfig_Options(t *testing.T) {
	cfg := Default()
	cfg.Reader.Charset = "latin1"
	cfg.Reader.StopOnError = true

	opts := cfg.Reader.Options()
	assert.Equal(t, "latin1", opts.Charset)
	assert.Equal(t, 4, opts.Workers)
	assert.True(t, opts.StopOnError)
	assert.Equal(t, 64*1024, opts.MaxLineSize)
}
