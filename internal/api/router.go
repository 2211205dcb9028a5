// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package api is the HTTP surface of the service. Every JSON response uses
// the success or error envelope; PDFs are streamed as attachments.
package api

import (
	"context"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/pdiddy/pmid-pdf/internal/logging"
	"github.com/pdiddy/pmid-pdf/pkg/types"
)

// Resolver produces a servable PDF for a PMID.
type Resolver interface {
	Resolve(ctx context.Context, pmid string) (*types.Resolution, error)
}

// ArticleReader looks up stored article records without fetching.
type ArticleReader interface {
	Find(ctx context.Context, pmid string) (*types.ArticleRecord, error)
}

// Options wires the router's collaborators.
type Options struct {
	Resolver Resolver
	Articles ArticleReader

	// PDFPath maps a record's relative path to the PDF on disk.
	PDFPath func(relativePath string) string

	APIKeys []string

	// CacheTTL is advertised as max-age on served PDFs.
	CacheTTL time.Duration

	// MaxContentPages bounds text extraction for MCP responses (0 = all).
	MaxContentPages int

	Logger logrus.FieldLogger
}

type handlers struct {
	resolver        Resolver
	articles        ArticleReader
	pdfPath         func(string) string
	cacheTTL        time.Duration
	maxContentPages int
	log             logrus.FieldLogger
}

// NewRouter builds the gin engine with middleware and routes.
func NewRouter(opts Options) *gin.Engine {
	log := opts.Logger
	if log == nil {
		log = logging.Discard()
	}
	h := &handlers{
		resolver:        opts.Resolver,
		articles:        opts.Articles,
		pdfPath:         opts.PDFPath,
		cacheTTL:        opts.CacheTTL,
		maxContentPages: opts.MaxContentPages,
		log:             log,
	}

	r := gin.New()
	r.Use(RequestID(), Recovery(log), RequestLogger(log), Prometheus())

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = true
	corsCfg.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", apiKeyHeader}
	corsCfg.AllowMethods = []string{"GET", "OPTIONS"}
	corsCfg.ExposeHeaders = []string{"Content-Disposition", requestIDHeader}
	r.Use(cors.New(corsCfg))

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.GET("/health", h.health)

	authed := api.Group("", APIKeyAuth(opts.APIKeys))
	authed.GET("/pdf/:pmid", h.getPDF)
	authed.GET("/article/:pmid", h.getArticle)
	authed.GET("/mcp/:pmid", h.getMCP)

	r.NoRoute(h.notFound)
	return r
}
