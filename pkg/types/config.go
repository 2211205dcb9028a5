// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Environment selects per-deployment defaults (port, host, log level).
type Environment string

const (
	EnvProduction  Environment = "production"
	EnvDevelopment Environment = "development"
	EnvLocal       Environment = "local"
)

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Host string `json:"host" yaml:"host" mapstructure:"host"`
	Port int    `json:"port" yaml:"port" mapstructure:"port"`

	// ShutdownTimeout bounds graceful shutdown (default 15s).
	ShutdownTimeout time.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
}

// StoreDriver names a metadata store backend.
type StoreDriver string

const (
	DriverSQLite StoreDriver = "sqlite"
	DriverMongo  StoreDriver = "mongo"
	DriverMemory StoreDriver = "memory"
)

// StorageConfig holds the PDF root and the metadata store settings.
type StorageConfig struct {
	// PDFRoot is the directory under which every article's PDF lives at
	// {PDFRoot}/{relative_path}/article.pdf.
	PDFRoot string `json:"pdf_root" yaml:"pdf_root" mapstructure:"pdf_root"`

	Driver StoreDriver `json:"driver" yaml:"driver" mapstructure:"driver"`

	// SQLitePath is the database file for the sqlite driver.
	SQLitePath string `json:"sqlite_path" yaml:"sqlite_path" mapstructure:"sqlite_path"`

	MongoURI      string `json:"mongo_uri,omitempty" yaml:"mongo_uri,omitempty" mapstructure:"mongo_uri"`
	MongoDatabase string `json:"mongo_database" yaml:"mongo_database" mapstructure:"mongo_database"`
}

// CrawlerTransport names how the external crawler is reached.
type CrawlerTransport string

const (
	TransportHTTP CrawlerTransport = "http"
	TransportNATS CrawlerTransport = "nats"
)

// CrawlerConfig holds settings for the external fetch client.
type CrawlerConfig struct {
	Transport CrawlerTransport `json:"transport" yaml:"transport" mapstructure:"transport"`

	// BaseURL is the crawler service root for the http transport.
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// APIKey authenticates us to the crawler service.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	NATSURL string `json:"nats_url" yaml:"nats_url" mapstructure:"nats_url"`
	Subject string `json:"subject" yaml:"subject" mapstructure:"subject"`

	// Timeout bounds one fetch (default 5m).
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// RequestsPerSecond limits outbound crawl requests (default 3).
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second" mapstructure:"requests_per_second"`

	// MaxRetries is the retry budget for rate-limited responses (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`

	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// NCBIConfig is the identity passed through to the crawler.
type NCBIConfig struct {
	Email  string `json:"email" yaml:"email" mapstructure:"email"`
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`
}

// CacheConfig holds client-facing cache timing.
type CacheConfig struct {
	// TTL is advertised as Cache-Control max-age on served PDFs.
	TTL time.Duration `json:"ttl" yaml:"ttl" mapstructure:"ttl"`
}

// ResolverConfig tunes the resolution engine.
type ResolverConfig struct {
	// NegativeTTL suppresses re-fetching a PMID whose last attempt failed
	// within this window. Zero re-fetches on every request.
	NegativeTTL time.Duration `json:"negative_ttl" yaml:"negative_ttl" mapstructure:"negative_ttl"`

	// VerifyPDF parses fetched files before accepting them.
	VerifyPDF bool `json:"verify_pdf" yaml:"verify_pdf" mapstructure:"verify_pdf"`
}

// LoggingConfig selects log level and format ("json" or "text").
type LoggingConfig struct {
	Level  string `json:"level" yaml:"level" mapstructure:"level"`
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// Config groups every setting the service reads.
type Config struct {
	Env      Environment    `json:"env" yaml:"env" mapstructure:"env"`
	Server   ServerConfig   `json:"server" yaml:"server" mapstructure:"server"`
	APIKeys  []string       `json:"-" yaml:"api_keys" mapstructure:"api_keys"`
	Storage  StorageConfig  `json:"storage" yaml:"storage" mapstructure:"storage"`
	Crawler  CrawlerConfig  `json:"crawler" yaml:"crawler" mapstructure:"crawler"`
	NCBI     NCBIConfig     `json:"ncbi" yaml:"ncbi" mapstructure:"ncbi"`
	Cache    CacheConfig    `json:"cache" yaml:"cache" mapstructure:"cache"`
	Resolver ResolverConfig `json:"resolver" yaml:"resolver" mapstructure:"resolver"`
	Logging  LoggingConfig  `json:"logging" yaml:"logging" mapstructure:"logging"`
}
