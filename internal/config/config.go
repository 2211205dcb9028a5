// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config assembles the service configuration from defaults, an
// optional pmid-pdf.yaml, PMID_PDF_* environment variables and the
// .secrets/ directory, in increasing order of precedence except that
// secrets only fill values left empty.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/pmid-pdf/internal/secrets"
	"github.com/pdiddy/pmid-pdf/pkg/types"
)

const (
	// EnvPrefix prefixes every environment variable, e.g. PMID_PDF_SERVER_PORT.
	EnvPrefix = "PMID_PDF"

	// FileName is the config file base name searched for in ./ and
	// ~/.config/pmid-pdf/.
	FileName = "pmid-pdf"

	// DefaultAPIKey is accepted when no keys are configured.
	DefaultAPIKey = "test-key"
)

// envDefaults holds the per-environment listener, log and cache settings.
var envDefaults = map[types.Environment]struct {
	host     string
	port     int
	logLevel string
	cacheTTL time.Duration
}{
	types.EnvProduction:  {host: "0.0.0.0", port: 8000, logLevel: "warning", cacheTTL: 24 * time.Hour},
	types.EnvDevelopment: {host: "0.0.0.0", port: 8001, logLevel: "info", cacheTTL: time.Hour},
	types.EnvLocal:       {host: "localhost", port: 8002, logLevel: "debug", cacheTTL: time.Hour},
}

// New returns a viper instance reading the environment with EnvPrefix.
// When cfgFile is empty the standard locations are searched.
func New(cfgFile string) *viper.Viper {
	v := viper.New()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", FileName))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.BindEnv("api_keys")

	v.SetDefault("env", string(types.EnvDevelopment))
	return v
}

// ReadFile reads the config file if one is found. A missing file is not an
// error; the returned path is empty in that case.
func ReadFile(v *viper.Viper) (string, error) {
	err := v.ReadInConfig()
	if err == nil {
		return v.ConfigFileUsed(), nil
	}
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		return "", nil
	}
	return "", fmt.Errorf("reading config file: %w", err)
}

// SetDefaults registers defaults for every key. Keys must have a default to
// be picked up from the environment by Unmarshal.
func SetDefaults(v *viper.Viper, env types.Environment) {
	d := envDefaults[env]

	v.SetDefault("server.host", d.host)
	v.SetDefault("server.port", d.port)
	v.SetDefault("server.shutdown_timeout", 15*time.Second)

	v.SetDefault("storage.pdf_root", "./data/pdfs")
	v.SetDefault("storage.driver", string(types.DriverSQLite))
	v.SetDefault("storage.sqlite_path", "./data/pmid-pdf.db")
	v.SetDefault("storage.mongo_uri", "")
	v.SetDefault("storage.mongo_database", "pmid_pdf")

	v.SetDefault("crawler.transport", string(types.TransportHTTP))
	v.SetDefault("crawler.base_url", "http://localhost:9000")
	v.SetDefault("crawler.api_key", "")
	v.SetDefault("crawler.nats_url", "nats://localhost:4222")
	v.SetDefault("crawler.subject", "pubcrawler.fetch")
	v.SetDefault("crawler.timeout", 5*time.Minute)
	v.SetDefault("crawler.requests_per_second", 3.0)
	v.SetDefault("crawler.max_retries", 3)
	v.SetDefault("crawler.user_agent", "pmid-pdf/1.0")

	v.SetDefault("ncbi.email", "")
	v.SetDefault("ncbi.api_key", "")

	v.SetDefault("cache.ttl", d.cacheTTL)

	v.SetDefault("resolver.negative_ttl", time.Duration(0))
	v.SetDefault("resolver.verify_pdf", false)

	v.SetDefault("logging.level", d.logLevel)
	v.SetDefault("logging.format", "")
}

// Load builds the Config from v and fills empty credentials from the loaded
// secrets map.
func Load(v *viper.Viper, loaded map[string]string) (types.Config, error) {
	env := types.Environment(strings.ToLower(strings.TrimSpace(v.GetString("env"))))
	if _, ok := envDefaults[env]; !ok {
		return types.Config{}, fmt.Errorf("unknown environment %q (want production, development or local)", env)
	}
	SetDefaults(v, env)

	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("decoding config: %w", err)
	}
	cfg.Env = env

	applySecrets(&cfg, loaded)
	cfg.APIKeys = cleanKeys(cfg.APIKeys)
	if len(cfg.APIKeys) == 0 {
		cfg.APIKeys = []string{DefaultAPIKey}
	}

	if err := Validate(cfg); err != nil {
		return types.Config{}, err
	}
	return cfg, nil
}

func applySecrets(cfg *types.Config, loaded map[string]string) {
	fill := func(dst *string, key string) {
		if *dst == "" {
			*dst = loaded[key]
		}
	}
	fill(&cfg.NCBI.Email, secrets.NCBIEmail)
	fill(&cfg.NCBI.APIKey, secrets.NCBIAPIKey)
	fill(&cfg.Crawler.APIKey, secrets.CrawlerAPIKey)
	fill(&cfg.Storage.MongoURI, secrets.MongoURI)

	if len(cleanKeys(cfg.APIKeys)) == 0 {
		cfg.APIKeys = secrets.List(loaded[secrets.APIKeys])
	}
}

func cleanKeys(keys []string) []string {
	var out []string
	for _, k := range keys {
		out = append(out, secrets.List(k)...)
	}
	return out
}

// Validate rejects configurations the service cannot start with.
func Validate(cfg types.Config) error {
	var errs []error
	if cfg.Storage.PDFRoot == "" {
		errs = append(errs, errors.New("storage.pdf_root is required"))
	}
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", cfg.Server.Port))
	}
	switch cfg.Storage.Driver {
	case types.DriverSQLite:
		if cfg.Storage.SQLitePath == "" {
			errs = append(errs, errors.New("storage.sqlite_path is required for the sqlite driver"))
		}
	case types.DriverMongo:
		if cfg.Storage.MongoURI == "" {
			errs = append(errs, errors.New("storage.mongo_uri is required for the mongo driver"))
		}
	case types.DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown storage.driver %q", cfg.Storage.Driver))
	}
	switch cfg.Crawler.Transport {
	case types.TransportHTTP, types.TransportNATS:
	default:
		errs = append(errs, fmt.Errorf("unknown crawler.transport %q", cfg.Crawler.Transport))
	}
	if cfg.Cache.TTL < 0 || cfg.Resolver.NegativeTTL < 0 {
		errs = append(errs, errors.New("durations must not be negative"))
	}
	return errors.Join(errs...)
}
