// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"sync"
	"time"

	"github.com/pdiddy/pmid-pdf/pkg/types"
)

// Memory is an in-process Store guarded by a mutex. Records are handed out
// by value, so callers cannot change stored flags.
type Memory struct {
	mu      sync.Mutex
	records map[string]types.ArticleRecord
	now     func() time.Time
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		records: make(map[string]types.ArticleRecord),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (m *Memory) Find(_ context.Context, pmid string) (*types.ArticleRecord, error) {
	if pmid == "" {
		return nil, ErrEmptyPMID
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[pmid]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (m *Memory) Upsert(_ context.Context, pmid string, u types.ArticleUpdate) (*types.ArticleRecord, error) {
	if pmid == "" {
		return nil, ErrEmptyPMID
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	rec, ok := m.records[pmid]
	if !ok {
		rec = types.ArticleRecord{PMID: pmid, CreatedAt: now}
	}
	u.Apply(&rec)
	rec.UpdatedAt = now
	m.records[pmid] = rec

	out := rec
	return &out, nil
}

func (m *Memory) Ping(context.Context) error { return nil }

func (m *Memory) Close() error { return nil }
