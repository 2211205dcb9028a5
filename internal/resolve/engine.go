// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package resolve turns a PMID into a servable PDF. It consults the metadata
// store, re-checks the file on disk, falls back to the external crawler on a
// miss and reconciles the crawler's outcome back into the store.
//
// A record moves Unknown -> Cached or Failed after a fetch. A Cached record
// whose file has disappeared is reset to Unknown on the next read.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/pdiddy/pmid-pdf/internal/logging"
	"github.com/pdiddy/pmid-pdf/internal/metrics"
	"github.com/pdiddy/pmid-pdf/internal/pdffile"
	"github.com/pdiddy/pmid-pdf/pkg/types"
)

// Store is the subset of the metadata store the engine needs.
type Store interface {
	Find(ctx context.Context, pmid string) (*types.ArticleRecord, error)
	Upsert(ctx context.Context, pmid string, u types.ArticleUpdate) (*types.ArticleRecord, error)
}

// Fetcher asks the external crawler to download the PDF for a PMID.
type Fetcher interface {
	Fetch(ctx context.Context, pmid string) (types.FetchResult, error)
}

var (
	errFetchRejected = errors.New("crawler reported no pdf")
	errOutsideRoot   = errors.New("storage path is outside the pdf root")
	errMissingPDF    = errors.New("fetched pdf is missing or empty")
)

// Engine resolves PMIDs. It is safe for concurrent use; concurrent calls
// for the same PMID share one in-flight resolution.
type Engine struct {
	store   Store
	fetcher Fetcher
	root    string

	log         logrus.FieldLogger
	negativeTTL time.Duration
	verifyPDF   bool
	now         func() time.Time

	group singleflight.Group
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine's logger. The default discards output.
func WithLogger(l logrus.FieldLogger) Option {
	return func(e *Engine) { e.log = l }
}

// WithNegativeTTL suppresses re-fetching a PMID whose last attempt failed
// less than d ago. Zero disables suppression.
func WithNegativeTTL(d time.Duration) Option {
	return func(e *Engine) { e.negativeTTL = d }
}

// WithVerifyPDF makes the engine parse fetched files before accepting them.
func WithVerifyPDF(v bool) Option {
	return func(e *Engine) { e.verifyPDF = v }
}

// WithClock overrides the time source used for negative caching.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine returns an Engine that stores PDFs under root.
func NewEngine(store Store, fetcher Fetcher, root string, opts ...Option) *Engine {
	e := &Engine{
		store:   store,
		fetcher: fetcher,
		root:    filepath.Clean(root),
		log:     logging.Discard(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Root returns the PDF root directory.
func (e *Engine) Root() string { return e.root }

// PDFPath returns the absolute location of the PDF for a relative path.
func (e *Engine) PDFPath(relativePath string) string {
	return filepath.Join(e.root, relativePath, pdffile.FileName)
}

// Resolve returns the PDF for pmid, fetching it if needed. Errors are
// *Error values of KindNotAvailable or KindInternal.
//
// The resolution is detached from ctx cancellation so that a client that
// disconnects does not leave a fetched file unrecorded.
func (e *Engine) Resolve(ctx context.Context, pmid string) (*types.Resolution, error) {
	v, err, _ := e.group.Do(pmid, func() (any, error) {
		return e.resolve(context.WithoutCancel(ctx), pmid)
	})
	if err != nil {
		return nil, err
	}
	res := *v.(*types.Resolution)
	return &res, nil
}

func (e *Engine) resolve(ctx context.Context, pmid string) (*types.Resolution, error) {
	log := e.log.WithField("pmid", pmid)

	rec, err := e.store.Find(ctx, pmid)
	if err != nil {
		return nil, e.storeFault(log, pmid, "find", "looking up the record", err)
	}

	if rec != nil && e.suppressed(rec) {
		metrics.ResolutionsTotal.WithLabelValues(metrics.OutcomeSuppressed).Inc()
		return nil, notAvailable(pmid, true, nil)
	}

	if rec != nil && rec.HasPDF {
		if res, ok := e.cached(rec); ok {
			metrics.ResolutionsTotal.WithLabelValues(metrics.OutcomeHit).Inc()
			return res, nil
		}
		metrics.StaleEntriesTotal.Inc()
		log.WithField("relative_path", types.Deref(rec.RelativePath)).Warn("cached pdf is missing, clearing has_pdf")
		rec, err = e.store.Upsert(ctx, pmid, types.ArticleUpdate{HasPDF: types.Bool(false)})
		if err != nil {
			return nil, e.storeFault(log, pmid, "upsert", "clearing a stale record", err)
		}
	}

	attemptedBefore := rec != nil && rec.DownloadAttempted

	rel, desc, err := e.fetch(ctx, pmid)
	if err != nil {
		log.WithError(err).Warn("pdf fetch failed")
		return nil, e.recordFailure(ctx, log, pmid, attemptedBefore, err)
	}

	stored, err := e.store.Upsert(ctx, pmid, successUpdate(rec, rel, desc))
	if err != nil {
		return nil, e.storeFault(log, pmid, "upsert", "recording the fetched pdf", err)
	}

	metrics.ResolutionsTotal.WithLabelValues(metrics.OutcomeFetched).Inc()
	log.WithField("relative_path", rel).Info("pdf fetched")
	return e.resolution(stored, rel), nil
}

// suppressed reports whether a recent failure should short-circuit the fetch.
func (e *Engine) suppressed(rec *types.ArticleRecord) bool {
	return e.negativeTTL > 0 && rec.Failed() && e.now().Sub(rec.UpdatedAt) < e.negativeTTL
}

func (e *Engine) cached(rec *types.ArticleRecord) (*types.Resolution, bool) {
	if rec.RelativePath == nil {
		return nil, false
	}
	if !pdffile.ExistsNonEmpty(e.PDFPath(*rec.RelativePath)) {
		return nil, false
	}
	return e.resolution(rec, *rec.RelativePath), true
}

func (e *Engine) resolution(rec *types.ArticleRecord, rel string) *types.Resolution {
	return &types.Resolution{
		PMID:    rec.PMID,
		PDFPath: e.PDFPath(rel),
		Title:   rec.Title,
		Authors: rec.Authors,
		Journal: rec.Journal,
		Year:    rec.Year,
	}
}

// fetch invokes the crawler once and checks what it left on disk. Any
// error returned here sends the caller down the failure path.
func (e *Engine) fetch(ctx context.Context, pmid string) (rel string, desc *descriptor, err error) {
	start := time.Now()
	result, err := e.callFetcher(ctx, pmid)

	status := "success"
	if err != nil || !result.Success || !result.HasPDF {
		status = "failure"
	}
	metrics.FetchDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())

	if err != nil {
		return "", nil, err
	}
	if !result.Success || !result.HasPDF {
		if result.Error != "" {
			return "", nil, fmt.Errorf("%w: %s", errFetchRejected, result.Error)
		}
		return "", nil, errFetchRejected
	}

	rel, err = e.relative(result.StoragePath)
	if err != nil {
		return "", nil, err
	}
	pdfPath := e.PDFPath(rel)
	if !pdffile.ExistsNonEmpty(pdfPath) {
		return "", nil, fmt.Errorf("%w: %s", errMissingPDF, pdfPath)
	}
	if e.verifyPDF {
		if err := pdffile.Validate(pdfPath); err != nil {
			return "", nil, err
		}
	}

	desc, err = readDescriptor(filepath.Join(e.root, rel))
	if err != nil {
		return "", nil, err
	}
	return rel, desc, nil
}

// callFetcher converts a panicking fetcher into an error.
func (e *Engine) callFetcher(ctx context.Context, pmid string) (result types.FetchResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("fetcher panicked: %v", r)
		}
	}()
	return e.fetcher.Fetch(ctx, pmid)
}

// relative returns storagePath relative to the root. Paths that escape the
// root are rejected.
func (e *Engine) relative(storagePath string) (string, error) {
	if storagePath == "" {
		return "", fmt.Errorf("%w: empty path", errOutsideRoot)
	}
	abs := storagePath
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(e.root, abs)
	}
	rel, err := filepath.Rel(e.root, filepath.Clean(abs))
	if err != nil {
		return "", fmt.Errorf("%w: %v", errOutsideRoot, err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", errOutsideRoot, storagePath)
	}
	return filepath.ToSlash(rel), nil
}

// successUpdate builds the write for a fetched PDF. An existing record keeps
// its descriptive fields and only gains the ones it lacks.
func successUpdate(rec *types.ArticleRecord, rel string, desc *descriptor) types.ArticleUpdate {
	u := types.ArticleUpdate{
		HasPDF:            types.Bool(true),
		RelativePath:      types.String(rel),
		DownloadAttempted: types.Bool(true),
	}
	if desc == nil {
		return u
	}

	if rec != nil {
		if rec.DOI == nil {
			u.DOI = desc.DOI
		}
		if rec.Title == nil {
			u.Title = desc.Title
		}
		if rec.Authors == nil {
			u.Authors = desc.Authors
		}
		if rec.Journal == nil {
			u.Journal = desc.Journal
		}
		if rec.Year == nil {
			u.Year = desc.Year
		}
		return u
	}

	u.DOI = desc.DOI
	u.Title = desc.Title
	u.Authors = desc.Authors
	u.Journal = desc.Journal
	u.Year = desc.Year
	u.HasAbstract = types.Bool(desc.Abstract != "")
	u.FullTextAvailable = types.Bool(true)
	u.CommercialUseAllowed = types.Bool(desc.CommercialUseAllowed != nil && *desc.CommercialUseAllowed)
	return u
}

// recordFailure marks the attempt. Only download_attempted is written, so a
// concurrent success is never undone.
func (e *Engine) recordFailure(ctx context.Context, log logrus.FieldLogger, pmid string, attemptedBefore bool, cause error) error {
	metrics.ResolutionsTotal.WithLabelValues(metrics.OutcomeNotAvailable).Inc()

	nerr := notAvailable(pmid, attemptedBefore, cause)
	if _, err := e.store.Upsert(ctx, pmid, types.ArticleUpdate{DownloadAttempted: types.Bool(true)}); err != nil {
		metrics.StoreErrorsTotal.WithLabelValues("upsert").Inc()
		log.WithError(err).Error("recording failed download")
		nerr.PersistErr = err
	}
	return nerr
}

func (e *Engine) storeFault(log logrus.FieldLogger, pmid, op, doing string, err error) error {
	metrics.StoreErrorsTotal.WithLabelValues(op).Inc()
	metrics.ResolutionsTotal.WithLabelValues(metrics.OutcomeInternal).Inc()
	log.WithError(err).Errorf("store error while %s", doing)
	return internal(pmid, doing, err)
}
