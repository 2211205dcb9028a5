// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pdffile answers questions about PDF files on disk: whether one is
// present and non-empty, whether it parses, and what text it holds.
package pdffile

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

// FileName is the name every article PDF has inside its directory.
const FileName = "article.pdf"

var (
	// ErrNoPages indicates the file parsed but holds no pages.
	ErrNoPages = errors.New("pdf has no pages")

	// ErrUnreadable indicates the file is not a parseable PDF.
	ErrUnreadable = errors.New("pdf is unreadable")
)

// ExistsNonEmpty reports whether path is a regular, readable file of
// non-zero size. A missing path is false, never an error.
func ExistsNonEmpty(path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() || info.Size() == 0 {
		return false
	}
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	f.Close()
	return true
}

// Validate opens path as a PDF and checks that it has at least one page.
// The parser panics on some malformed input; that is reported as
// ErrUnreadable.
func Validate(path string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrUnreadable, r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	defer f.Close()

	if r.NumPage() < 1 {
		return ErrNoPages
	}
	return nil
}

// ExtractText returns the plain text of the first maxPages pages (all pages
// when maxPages <= 0). Pages whose text cannot be decoded are skipped.
func ExtractText(path string, maxPages int) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrUnreadable, r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	defer f.Close()

	n := r.NumPage()
	if maxPages > 0 && maxPages < n {
		n = maxPages
	}

	var b strings.Builder
	for i := 1; i <= n; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		pt, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(strings.TrimSpace(pt))
	}
	return b.String(), nil
}
