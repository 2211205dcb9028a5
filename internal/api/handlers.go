// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package api

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pdiddy/pmid-pdf/internal/apierror"
	"github.com/pdiddy/pmid-pdf/internal/pdffile"
	"github.com/pdiddy/pmid-pdf/internal/resolve"
	"github.com/pdiddy/pmid-pdf/pkg/types"
)

const maxPMIDLength = 20

// validPMID accepts 1 to 20 ASCII digits.
func validPMID(pmid string) bool {
	if pmid == "" || len(pmid) > maxPMIDLength {
		return false
	}
	for _, r := range pmid {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// pmidParam returns the validated :pmid, or aborts with 400.
func pmidParam(c *gin.Context) (string, bool) {
	pmid := c.Param("pmid")
	if !validPMID(pmid) {
		abortError(c, apierror.InvalidParameter, fmt.Sprintf("Invalid PMID: %s", pmid), pmidDetails(pmid))
		return "", false
	}
	return pmid, true
}

func (h *handlers) health(c *gin.Context) {
	respondSuccess(c, gin.H{"status": "healthy"})
}

func (h *handlers) getPDF(c *gin.Context) {
	pmid, ok := pmidParam(c)
	if !ok {
		return
	}

	res, err := h.resolver.Resolve(c.Request.Context(), pmid)
	if err != nil {
		h.resolveError(c, pmid, err)
		return
	}

	c.Header("Cache-Control", fmt.Sprintf("private, max-age=%d", int(h.cacheTTL.Seconds())))
	c.FileAttachment(res.PDFPath, pmid+".pdf")
}

func (h *handlers) resolveError(c *gin.Context, pmid string, err error) {
	var re *resolve.Error
	if errors.As(err, &re) && re.Kind == resolve.KindNotAvailable {
		abortError(c, re.Code, re.Message, pmidDetails(pmid))
		return
	}

	h.log.WithError(err).WithField("pmid", pmid).Error("resolving pdf")
	msg := fmt.Sprintf("An error occurred while resolving PMID: %s", pmid)
	if re != nil {
		msg = re.Message
	}
	abortError(c, apierror.InternalServerError, msg, pmidDetails(pmid))
}

func (h *handlers) getArticle(c *gin.Context) {
	pmid, ok := pmidParam(c)
	if !ok {
		return
	}

	rec, err := h.articles.Find(c.Request.Context(), pmid)
	if err != nil {
		h.log.WithError(err).WithField("pmid", pmid).Error("looking up article")
		abortError(c, apierror.DatabaseError, "", pmidDetails(pmid))
		return
	}
	if rec == nil {
		abortError(c, apierror.ArticleNotFound, fmt.Sprintf("Article not found for PMID: %s", pmid), pmidDetails(pmid))
		return
	}
	respondSuccess(c, rec.Metadata())
}

// getMCP returns a Model Context Protocol payload for the article. The PDF
// text is included only when include_content is true and a cached PDF is
// on disk; no fetch is triggered.
func (h *handlers) getMCP(c *gin.Context) {
	pmid, ok := pmidParam(c)
	if !ok {
		return
	}

	includeContent := false
	if v := c.Query("include_content"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			abortError(c, apierror.InvalidParameter, "include_content must be a boolean", pmidDetails(pmid))
			return
		}
		includeContent = b
	}

	rec, err := h.articles.Find(c.Request.Context(), pmid)
	if err != nil {
		h.log.WithError(err).WithField("pmid", pmid).Error("looking up article")
		abortError(c, apierror.DatabaseError, "", pmidDetails(pmid))
		return
	}

	query := c.Query("query")
	if query == "" {
		query = fmt.Sprintf("Information about PMID: %s", pmid)
	}
	out := types.MCPContext{Query: query, PMID: pmid}
	if rec != nil {
		md := rec.Metadata()
		out.ArticleMetadata = &md
		if includeContent {
			out.PDFContent = h.pdfContent(pmid, rec)
		}
	}
	respondSuccess(c, out)
}

func (h *handlers) pdfContent(pmid string, rec *types.ArticleRecord) *string {
	if !rec.HasPDF || rec.RelativePath == nil || h.pdfPath == nil {
		return nil
	}
	path := h.pdfPath(*rec.RelativePath)
	if !pdffile.ExistsNonEmpty(path) {
		return nil
	}
	text, err := pdffile.ExtractText(path, h.maxContentPages)
	if err != nil {
		h.log.WithError(err).WithField("pmid", pmid).Warn("extracting pdf text")
		return nil
	}
	return &text
}

func (h *handlers) notFound(c *gin.Context) {
	abortError(c, apierror.RouteNotFound, "", map[string]any{"path": c.Request.URL.Path})
}
