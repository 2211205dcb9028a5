// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists ArticleRecords keyed by PMID.
//
// Every backend implements the same contract: Find returns nil when no record
// exists, and Upsert atomically inserts or partially updates a record,
// writing only the fields set in the update. An Upsert that fails leaves the
// stored record unchanged.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/pdiddy/pmid-pdf/pkg/types"
)

// ErrEmptyPMID is returned when a caller passes an empty key.
var ErrEmptyPMID = errors.New("pmid must not be empty")

// Store is the metadata store contract shared by all backends.
type Store interface {
	Find(ctx context.Context, pmid string) (*types.ArticleRecord, error)
	Upsert(ctx context.Context, pmid string, u types.ArticleUpdate) (*types.ArticleRecord, error)
	Ping(ctx context.Context) error
	Close() error
}

var (
	_ Store = (*SQLite)(nil)
	_ Store = (*Mongo)(nil)
	_ Store = (*Memory)(nil)
)

// Open returns the backend selected by cfg.Driver.
func Open(ctx context.Context, cfg types.StorageConfig) (Store, error) {
	switch cfg.Driver {
	case types.DriverSQLite, "":
		return OpenSQLite(cfg.SQLitePath)
	case types.DriverMongo:
		return OpenMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
	case types.DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
