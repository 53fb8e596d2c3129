package appconf

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnvironment(t *testing.T) {
	tests := []struct {
		in      string
		want    Environment
		wantErr bool
	}{
		{"development", Development, false},
		{"dev", Development, false},
		{"TEST", Test, false},
		{" production ", Production, false},
		{"prod", Production, false},
		{"staging", Development, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseEnvironment(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEnvironmentString(t *testing.T) {
	assert.Equal(t, "development", Development.String())
	assert.Equal(t, "test", Test.String())
	assert.Equal(t, "production", Production.String())
	assert.Equal(t, "Environment(7)", Environment(7).String())
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, 4000, cfg.Port)
	assert.Equal(t, FormatJSON, cfg.DataFormat)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port too large", func(c *Config) { c.Port = 70000 }},
		{"negative rate limit", func(c *Config) { c.RateLimit = -1 }},
		{"unknown format", func(c *Config) { c.DataFormat = "xml" }},
		{"empty api key", func(c *Config) { c.ApiKeys = []string{""} }},
		{"bad environment", func(c *Config) { c.Env = Environment(5) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestParseAPIKeys(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, ParseAPIKeys(" a, ,b,"))
	assert.Nil(t, ParseAPIKeys(""))
}

func TestApplyEnvironment(t *testing.T) {
	env := map[string]string{
		EnvPort:           "8080",
		EnvEnvironment:    "production",
		EnvAPIKeys:        "one,two",
		EnvRateLimit:      "5",
		EnvVerbose:        "true",
		EnvRequestTimeout: "3s",
		EnvDataPath:       "/data/network.zip",
		EnvDataFormat:     "GTFS",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := Default()
	require.NoError(t, cfg.ApplyEnvironment(lookup))

	assert.Equal(t, Config{
		Port:           8080,
		Env:            Production,
		ApiKeys:        []string{"one", "two"},
		RateLimit:      5,
		Verbose:        true,
		RequestTimeout: 3 * time.Second,
		DataPath:       "/data/network.zip",
		DataFormat:     FormatGTFS,
	}, cfg)
}

func TestApplyEnvironmentErrors(t *testing.T) {
	for _, key := range []string{EnvPort, EnvEnvironment, EnvRateLimit, EnvVerbose, EnvRequestTimeout} {
		t.Run(key, func(t *testing.T) {
			cfg := Default()
			err := cfg.ApplyEnvironment(func(k string) (string, bool) {
				if k == key {
					return "???", true
				}
				return "", false
			})
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
port: 9000
env: test
api_keys: [k1, k2]
rate_limit: 20
verbose: true
request_timeout: 2s
data:
  path: network.json
  format: json
`)
	fc, err := LoadFromFile(path)
	require.NoError(t, err)

	cfg := Default()
	fc.ApplyTo(&cfg)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, Test, cfg.Env)
	assert.Equal(t, []string{"k1", "k2"}, cfg.ApiKeys)
	assert.Equal(t, 20, cfg.RateLimit)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, 2*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "network.json", cfg.DataPath)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromFilePartialKeepsDefaults(t *testing.T) {
	fc, err := LoadFromFile(writeConfig(t, "port: 5000\n"))
	require.NoError(t, err)

	cfg := Default()
	fc.ApplyTo(&cfg)
	assert.Equal(t, 5000, cfg.Port)
	assert.Equal(t, Default().ApiKeys, cfg.ApiKeys)
	assert.Equal(t, Default().RateLimit, cfg.RateLimit)
}

func TestLoadFromFileErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed yaml", "port: [1"},
		{"bad environment", "env: staging\n"},
		{"port out of range", "port: 99999\n"},
		{"bad format", "data:\n  format: csv\n"},
		{"bad timeout", "request_timeout: soon\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}

	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
