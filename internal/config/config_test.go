// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pmid-pdf/internal/secrets"
	"github.com/pdiddy/pmid-pdf/pkg/types"
)

func TestLoad_EnvironmentDefaults(t *testing.T) {
	tests := []struct {
		env      string
		host     string
		port     int
		level    string
		cacheTTL time.Duration
	}{
		{env: "production", host: "0.0.0.0", port: 8000, level: "warning", cacheTTL: 24 * time.Hour},
		{env: "development", host: "0.0.0.0", port: 8001, level: "info", cacheTTL: time.Hour},
		{env: "local", host: "localhost", port: 8002, level: "debug", cacheTTL: time.Hour},
	}
	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			t.Setenv("PMID_PDF_ENV", tt.env)
			cfg, err := Load(New(""), nil)
			require.NoError(t, err)

			assert.Equal(t, types.Environment(tt.env), cfg.Env)
			assert.Equal(t, tt.host, cfg.Server.Host)
			assert.Equal(t, tt.port, cfg.Server.Port)
			assert.Equal(t, tt.level, cfg.Logging.Level)
			assert.Equal(t, tt.cacheTTL, cfg.Cache.TTL)
			assert.Equal(t, []string{DefaultAPIKey}, cfg.APIKeys)
			assert.Equal(t, types.DriverSQLite, cfg.Storage.Driver)
			assert.Equal(t, types.TransportHTTP, cfg.Crawler.Transport)
			assert.Equal(t, 5*time.Minute, cfg.Crawler.Timeout)
			assert.Equal(t, time.Duration(0), cfg.Resolver.NegativeTTL)
		})
	}
}

func TestLoad_DefaultsToDevelopment(t *testing.T) {
	cfg, err := Load(New(""), nil)
	require.NoError(t, err)
	assert.Equal(t, types.EnvDevelopment, cfg.Env)
	assert.Equal(t, 8001, cfg.Server.Port)
}

func TestLoad_UnknownEnvironment(t *testing.T) {
	t.Setenv("PMID_PDF_ENV", "staging")
	_, err := Load(New(""), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown environment")
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("PMID_PDF_SERVER_PORT", "9090")
	t.Setenv("PMID_PDF_STORAGE_PDF_ROOT", "/srv/pdfs")
	t.Setenv("PMID_PDF_RESOLVER_NEGATIVE_TTL", "10m")
	t.Setenv("PMID_PDF_API_KEYS", "alpha,beta")

	cfg, err := Load(New(""), nil)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "/srv/pdfs", cfg.Storage.PDFRoot)
	assert.Equal(t, 10*time.Minute, cfg.Resolver.NegativeTTL)
	assert.Equal(t, []string{"alpha", "beta"}, cfg.APIKeys)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pmid-pdf.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
env: local
api_keys: [file-key]
storage:
  pdf_root: /data/pdfs
  driver: memory
crawler:
  transport: nats
  subject: crawl.now
cache:
  ttl: 30m
resolver:
  verify_pdf: true
`), 0o644))

	v := New(path)
	used, err := ReadFile(v)
	require.NoError(t, err)
	assert.Equal(t, path, used)

	cfg, err := Load(v, nil)
	require.NoError(t, err)
	assert.Equal(t, types.EnvLocal, cfg.Env)
	assert.Equal(t, 8002, cfg.Server.Port)
	assert.Equal(t, []string{"file-key"}, cfg.APIKeys)
	assert.Equal(t, types.DriverMemory, cfg.Storage.Driver)
	assert.Equal(t, types.TransportNATS, cfg.Crawler.Transport)
	assert.Equal(t, "crawl.now", cfg.Crawler.Subject)
	assert.Equal(t, 30*time.Minute, cfg.Cache.TTL)
	assert.True(t, cfg.Resolver.VerifyPDF)
}

func TestReadFile_MissingIsNotAnError(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("HOME", t.TempDir())
	used, err := ReadFile(New(""))
	require.NoError(t, err)
	assert.Empty(t, used)
}

func TestLoad_SecretsFillEmptyValues(t *testing.T) {
	t.Setenv("PMID_PDF_NCBI_EMAIL", "env@example.com")
	loaded := map[string]string{
		secrets.NCBIEmail:     "secret@example.com",
		secrets.NCBIAPIKey:    "ncbi-secret",
		secrets.CrawlerAPIKey: "crawler-secret",
		secrets.APIKeys:       "k1\nk2",
	}

	cfg, err := Load(New(""), loaded)
	require.NoError(t, err)
	assert.Equal(t, "env@example.com", cfg.NCBI.Email, "explicit value wins")
	assert.Equal(t, "ncbi-secret", cfg.NCBI.APIKey)
	assert.Equal(t, "crawler-secret", cfg.Crawler.APIKey)
	assert.Equal(t, []string{"k1", "k2"}, cfg.APIKeys)
}

func TestValidate(t *testing.T) {
	valid := types.Config{
		Server:  types.ServerConfig{Port: 8000},
		Storage: types.StorageConfig{PDFRoot: "/pdfs", Driver: types.DriverSQLite, SQLitePath: "a.db"},
		Crawler: types.CrawlerConfig{Transport: types.TransportHTTP},
	}
	require.NoError(t, Validate(valid))

	tests := []struct {
		name   string
		mutate func(c *types.Config)
		errMsg string
	}{
		{name: "missing root", mutate: func(c *types.Config) { c.Storage.PDFRoot = "" }, errMsg: "pdf_root"},
		{name: "bad port", mutate: func(c *types.Config) { c.Server.Port = 70000 }, errMsg: "server.port"},
		{name: "mongo without uri", mutate: func(c *types.Config) { c.Storage.Driver = types.DriverMongo }, errMsg: "mongo_uri"},
		{name: "unknown driver", mutate: func(c *types.Config) { c.Storage.Driver = "mysql" }, errMsg: "storage.driver"},
		{name: "unknown transport", mutate: func(c *types.Config) { c.Crawler.Transport = "smtp" }, errMsg: "crawler.transport"},
		{name: "negative ttl", mutate: func(c *types.Config) { c.Cache.TTL = -time.Second }, errMsg: "negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			err := Validate(c)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}
