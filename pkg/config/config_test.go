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
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0o600))
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(ConfigPathEnv, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "HS256", cfg.Algorithm)
	assert.Equal(t, 30, cfg.AccessTokenExpireMinutes)
	assert.Equal(t, 100, cfg.ListPageSizeMax)
	assert.Equal(t, 20, cfg.ListPageSizeDefault)
	assert.True(t, cfg.AuditEnabled)
	assert.Equal(t, SourceDefault, cfg.Source("algorithm"))
	assert.Equal(t, SourceDefault, cfg.Source("unknown_attribute"))
}

func TestLoad_FileThenEnvironment(t *testing.T) {
	dir := writeConfig(t, `
secret_key: from-file
algorithm: HS384
access_token_expire_minutes: 60
allowed_hosts: ["https://ui.example.com"]
audit_enabled: false
list_page_size_default: 50
`)
	t.Setenv(ConfigPathEnv, dir)
	t.Setenv("ACCESS_TOKEN_EXPIRE_MINUTES", "15")
	t.Setenv("ALLOWED_HOSTS", "https://a.example.com, https://b.example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, ConfigFileName), cfg.ConfigFilePath())
	assert.Equal(t, "from-file", cfg.SecretKey)
	assert.Equal(t, SourceFile, cfg.Source("secret_key"))
	assert.Equal(t, "HS384", cfg.Algorithm)
	assert.False(t, cfg.AuditEnabled)
	assert.Equal(t, SourceFile, cfg.Source("audit_enabled"))
	assert.Equal(t, 50, cfg.ListPageSizeDefault)

	assert.Equal(t, 15, cfg.AccessTokenExpireMinutes)
	assert.Equal(t, SourceEnvironment, cfg.Source("access_token_expire_minutes"))
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.AllowedHosts)
	assert.Equal(t, 15*60, int(cfg.TokenTTL().Seconds()))
}

func TestLoad_Errors(t *testing.T) {
	t.Run("malformed file", func(t *testing.T) {
		t.Setenv(ConfigPathEnv, writeConfig(t, "algorithm: [unterminated"))
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("malformed environment", func(t *testing.T) {
		t.Setenv(ConfigPathEnv, t.TempDir())
		t.Setenv("LIST_PAGE_SIZE_MAX", "lots")
		_, err := Load()
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	valid := func() *RegistryConfig {
		c := Default()
		c.SecretKey = "s3cr3t"
		return c
	}

	tests := []struct {
		name    string
		mutate  func(c *RegistryConfig)
		wantErr string
	}{
		{name: "valid", mutate: func(*RegistryConfig) {}},
		{name: "missing secret", mutate: func(c *RegistryConfig) { c.SecretKey = "" }, wantErr: "secret_key"},
		{name: "bad algorithm", mutate: func(c *RegistryConfig) { c.Algorithm = "RS256" }, wantErr: "algorithm"},
		{name: "zero ttl", mutate: func(c *RegistryConfig) { c.AccessTokenExpireMinutes = 0 }, wantErr: "access_token_expire_minutes"},
		{name: "page max above limit", mutate: func(c *RegistryConfig) { c.ListPageSizeMax = 500 }, wantErr: "list_page_size_max"},
		{name: "default above max", mutate: func(c *RegistryConfig) { c.ListPageSizeMax = 10; c.ListPageSizeDefault = 20 }, wantErr: "list_page_size_default"},
		{name: "bad log level", mutate: func(c *RegistryConfig) { c.LogLevel = "loud" }, wantErr: "log_level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestFormat_RedactsSecrets(t *testing.T) {
	c := Default()
	c.SecretKey = "super-secret-value"
	c.DatabaseURL = "postgres://registry:hunter2@db:5432/registry"

	text := c.FormatText()
	assert.NotContains(t, text, "super-secret-value")
	assert.NotContains(t, text, "hunter2")
	assert.Contains(t, text, "postgres://registry:xxxxx@db:5432/registry")
	assert.Contains(t, text, "(redacted)")

	js, err := c.FormatJSON()
	require.NoError(t, err)
	assert.NotContains(t, js, "super-secret-value")
	assert.Contains(t, js, `"config_file"`)
}

func TestSplitAndTrim(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitAndTrim(" a , ,b "))
	assert.Empty(t, splitAndTrim(""))
}
