// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package apierror defines the stable, machine-readable error codes returned
// by the API together with their default messages and HTTP statuses.
package apierror

import "net/http"

// Code is a stable identifier carried in every error envelope.
type Code string

// Authentication.
const (
	InvalidAPIKey      Code = "INVALID_API_KEY"
	InvalidCredentials Code = "INVALID_CREDENTIALS"
	AuthError          Code = "AUTH_ERROR"
)

// Storage.
const (
	DatabaseError  Code = "DATABASE_ERROR"
	RecordNotFound Code = "RECORD_NOT_FOUND"
)

// Articles and PDFs.
const (
	ArticleNotFound   Code = "ARTICLE_NOT_FOUND"
	PDFNotAvailable   Code = "PDF_NOT_AVAILABLE"
	PDFDownloadFailed Code = "PDF_DOWNLOAD_FAILED"
)

// Requests.
const (
	InvalidRequest   Code = "INVALID_REQUEST"
	MissingParameter Code = "MISSING_PARAMETER"
	InvalidParameter Code = "INVALID_PARAMETER"
	RouteNotFound    Code = "NOT_FOUND"
)

// Upstream services and the catch-all.
const (
	ExternalServiceError Code = "EXTERNAL_SERVICE_ERROR"
	InternalServerError  Code = "INTERNAL_SERVER_ERROR"
)

var messages = map[Code]string{
	InvalidAPIKey:        "Invalid or missing API key",
	InvalidCredentials:   "Invalid username or password",
	AuthError:            "Authentication error",
	DatabaseError:        "Database error occurred",
	RecordNotFound:       "Record not found",
	ArticleNotFound:      "Article not found",
	PDFNotAvailable:      "PDF not available for this article",
	PDFDownloadFailed:    "Failed to download PDF",
	InvalidRequest:       "Invalid request",
	MissingParameter:     "Required parameter is missing",
	InvalidParameter:     "Parameter has invalid value",
	RouteNotFound:        "Resource not found",
	ExternalServiceError: "Error communicating with external service",
	InternalServerError:  "Internal server error",
}

var statuses = map[Code]int{
	InvalidAPIKey:        http.StatusUnauthorized,
	InvalidCredentials:   http.StatusUnauthorized,
	AuthError:            http.StatusUnauthorized,
	DatabaseError:        http.StatusInternalServerError,
	RecordNotFound:       http.StatusNotFound,
	ArticleNotFound:      http.StatusNotFound,
	PDFNotAvailable:      http.StatusNotFound,
	PDFDownloadFailed:    http.StatusNotFound,
	InvalidRequest:       http.StatusBadRequest,
	MissingParameter:     http.StatusBadRequest,
	InvalidParameter:     http.StatusBadRequest,
	RouteNotFound:        http.StatusNotFound,
	ExternalServiceError: http.StatusBadGateway,
	InternalServerError:  http.StatusInternalServerError,
}

// Message returns the default human-readable message for c.
func (c Code) Message() string {
	if m, ok := messages[c]; ok {
		return m
	}
	return "Unknown error"
}

// Status returns the HTTP status used when c is returned to a client.
// Unknown codes map to 500.
func (c Code) Status() int {
	if s, ok := statuses[c]; ok {
		return s
	}
	return http.StatusInternalServerError
}

func (c Code) String() string { return string(c) }
