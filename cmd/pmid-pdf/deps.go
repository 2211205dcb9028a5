// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/pdiddy/pmid-pdf/internal/crawler"
	"github.com/pdiddy/pmid-pdf/internal/resolve"
	"github.com/pdiddy/pmid-pdf/internal/store"
)

// deps is the wired object graph shared by the serve and resolve commands.
type deps struct {
	store   store.Store
	crawler crawler.Client
	engine  *resolve.Engine
}

func openDeps(ctx context.Context) (*deps, error) {
	if err := os.MkdirAll(cfg.Storage.PDFRoot, 0o755); err != nil {
		return nil, fmt.Errorf("creating pdf root: %w", err)
	}

	st, err := store.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("opening %s store: %w", cfg.Storage.Driver, err)
	}

	cl, err := crawler.New(cfg.Crawler, cfg.NCBI)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("creating crawler client: %w", err)
	}

	engine := resolve.NewEngine(st, cl, cfg.Storage.PDFRoot,
		resolve.WithLogger(log),
		resolve.WithNegativeTTL(cfg.Resolver.NegativeTTL),
		resolve.WithVerifyPDF(cfg.Resolver.VerifyPDF),
	)

	log.WithField("driver", cfg.Storage.Driver).
		WithField("transport", cfg.Crawler.Transport).
		WithField("pdf_root", cfg.Storage.PDFRoot).
		Debug("dependencies ready")

	return &deps{store: st, crawler: cl, engine: engine}, nil
}

func (d *deps) Close() error {
	return errors.Join(d.crawler.Close(), d.store.Close())
}
