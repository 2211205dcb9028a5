// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the records shared by the store, the resolver, the
// crawler clients and the HTTP layer.
package types

import "time"

// ArticleRecord is the cached state for one PMID.
type ArticleRecord struct {
	// PMID is the PubMed identifier. Unique and never reassigned.
	PMID string `json:"pmid" yaml:"pmid" bson:"pmid"`

	DOI     *string `json:"doi,omitempty" yaml:"doi,omitempty" bson:"doi,omitempty"`
	Title   *string `json:"title,omitempty" yaml:"title,omitempty" bson:"title,omitempty"`
	Authors *string `json:"authors,omitempty" yaml:"authors,omitempty" bson:"authors,omitempty"`
	Journal *string `json:"journal,omitempty" yaml:"journal,omitempty" bson:"journal,omitempty"`
	Year    *int    `json:"year,omitempty" yaml:"year,omitempty" bson:"year,omitempty"`

	// HasPDF reports whether the store believes a usable PDF exists. It can
	// go stale when the file is removed behind our back, so readers must
	// re-check the file.
	HasPDF               bool `json:"has_pdf" yaml:"has_pdf" bson:"has_pdf"`
	HasAbstract          bool `json:"has_abstract" yaml:"has_abstract" bson:"has_abstract"`
	FullTextAvailable    bool `json:"full_text_available" yaml:"full_text_available" bson:"full_text_available"`
	CommercialUseAllowed bool `json:"commercial_use_allowed" yaml:"commercial_use_allowed" bson:"commercial_use_allowed"`

	// RelativePath is the PDF's containing directory relative to the PDF root.
	RelativePath *string `json:"relative_path,omitempty" yaml:"relative_path,omitempty" bson:"relative_path,omitempty"`

	// DownloadAttempted separates "never tried" from "tried and failed".
	DownloadAttempted bool `json:"download_attempted" yaml:"download_attempted" bson:"download_attempted"`

	CreatedAt time.Time `json:"created_at" yaml:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at" bson:"updated_at"`
}

// Failed reports whether a fetch was tried and no PDF is held.
func (r *ArticleRecord) Failed() bool {
	return r.DownloadAttempted && !r.HasPDF
}

// ArticleUpdate is a partial write. Nil fields are left untouched, so two
// updates that set disjoint fields never overwrite each other.
type ArticleUpdate struct {
	DOI     *string
	Title   *string
	Authors *string
	Journal *string
	Year    *int

	HasPDF               *bool
	HasAbstract          *bool
	FullTextAvailable    *bool
	CommercialUseAllowed *bool
	RelativePath         *string
	DownloadAttempted    *bool
}

// Fields returns the set fields keyed by their storage column name.
func (u ArticleUpdate) Fields() map[string]any {
	f := make(map[string]any)
	if u.DOI != nil {
		f["doi"] = *u.DOI
	}
	if u.Title != nil {
		f["title"] = *u.Title
	}
	if u.Authors != nil {
		f["authors"] = *u.Authors
	}
	if u.Journal != nil {
		f["journal"] = *u.Journal
	}
	if u.Year != nil {
		f["year"] = *u.Year
	}
	if u.HasPDF != nil {
		f["has_pdf"] = *u.HasPDF
	}
	if u.HasAbstract != nil {
		f["has_abstract"] = *u.HasAbstract
	}
	if u.FullTextAvailable != nil {
		f["full_text_available"] = *u.FullTextAvailable
	}
	if u.CommercialUseAllowed != nil {
		f["commercial_use_allowed"] = *u.CommercialUseAllowed
	}
	if u.RelativePath != nil {
		f["relative_path"] = *u.RelativePath
	}
	if u.DownloadAttempted != nil {
		f["download_attempted"] = *u.DownloadAttempted
	}
	return f
}

// Apply merges the set fields into r.
func (u ArticleUpdate) Apply(r *ArticleRecord) {
	if u.DOI != nil {
		r.DOI = String(*u.DOI)
	}
	if u.Title != nil {
		r.Title = String(*u.Title)
	}
	if u.Authors != nil {
		r.Authors = String(*u.Authors)
	}
	if u.Journal != nil {
		r.Journal = String(*u.Journal)
	}
	if u.Year != nil {
		r.Year = Int(*u.Year)
	}
	if u.HasPDF != nil {
		r.HasPDF = *u.HasPDF
	}
	if u.HasAbstract != nil {
		r.HasAbstract = *u.HasAbstract
	}
	if u.FullTextAvailable != nil {
		r.FullTextAvailable = *u.FullTextAvailable
	}
	if u.CommercialUseAllowed != nil {
		r.CommercialUseAllowed = *u.CommercialUseAllowed
	}
	if u.RelativePath != nil {
		r.RelativePath = String(*u.RelativePath)
	}
	if u.DownloadAttempted != nil {
		r.DownloadAttempted = *u.DownloadAttempted
	}
}

// FetchResult is what the external crawler reports for one PMID.
type FetchResult struct {
	Success bool `json:"success"`
	HasPDF  bool `json:"has_pdf"`

	// StoragePath is the absolute directory holding article.pdf and the
	// optional metadata sidecar.
	StoragePath string `json:"path"`

	Error string `json:"error,omitempty"`
}

// Resolution is a servable PDF plus the descriptive metadata on record.
type Resolution struct {
	PMID    string  `json:"pmid"`
	PDFPath string  `json:"pdf_path"`
	Title   *string `json:"title,omitempty"`
	Authors *string `json:"authors,omitempty"`
	Journal *string `json:"journal,omitempty"`
	Year    *int    `json:"year,omitempty"`
}

// String returns a pointer to s.
func String(s string) *string { return &s }

// Int returns a pointer to n.
func Int(n int) *int { return &n }

// Bool returns a pointer to b.
func Bool(b bool) *bool { return &b }

// Deref returns the pointed-to string or "".
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// ArticleMetadata is the public view of an ArticleRecord.
type ArticleMetadata struct {
	PMID                 string  `json:"pmid"`
	DOI                  *string `json:"doi"`
	Title                *string `json:"title"`
	Authors              *string `json:"authors"`
	Journal              *string `json:"journal"`
	Year                 *int    `json:"year"`
	HasPDF               bool    `json:"has_pdf"`
	HasAbstract          bool    `json:"has_abstract"`
	FullTextAvailable    bool    `json:"full_text_available"`
	CommercialUseAllowed bool    `json:"commercial_use_allowed"`
}

// Metadata returns the public view of r.
func (r *ArticleRecord) Metadata() ArticleMetadata {
	return ArticleMetadata{
		PMID:                 r.PMID,
		DOI:                  r.DOI,
		Title:                r.Title,
		Authors:              r.Authors,
		Journal:              r.Journal,
		Year:                 r.Year,
		HasPDF:               r.HasPDF,
		HasAbstract:          r.HasAbstract,
		FullTextAvailable:    r.FullTextAvailable,
		CommercialUseAllowed: r.CommercialUseAllowed,
	}
}

// MCPContext is a Model Context Protocol payload describing one article for
// a language model.
type MCPContext struct {
	Query           string           `json:"query"`
	PMID            string           `json:"pmid"`
	ArticleMetadata *ArticleMetadata `json:"article_metadata"`
	PDFContent      *string          `json:"pdf_content"`
}
