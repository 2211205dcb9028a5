// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pdiddy/pmid-pdf/internal/apierror"
)

// successBody is the envelope for every successful JSON response.
type successBody struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// errorBody is the envelope for every error response.
type errorBody struct {
	Status  string         `json:"status"`
	Code    apierror.Code  `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details"`
}

func respondSuccess(c *gin.Context, data any) {
	c.JSON(http.StatusOK, successBody{Status: "success", Message: "Success", Data: data})
}

// abortError writes the error envelope with code's status. An empty message
// uses the code's default.
func abortError(c *gin.Context, code apierror.Code, message string, details map[string]any) {
	if message == "" {
		message = code.Message()
	}
	c.AbortWithStatusJSON(code.Status(), errorBody{
		Status:  "error",
		Code:    code,
		Message: message,
		Details: details,
	})
}

func pmidDetails(pmid string) map[string]any {
	return map[string]any{"pmid": pmid}
}
