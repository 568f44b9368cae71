package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/mrlokans/bookstore/internal/catalog"
	"github.com/mrlokans/bookstore/internal/forms"
	"github.com/mrlokans/bookstore/internal/store"
)

// --- Response Types ---

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`    // machine-readable error code
	Details any    `json:"details,omitempty"` // additional context (validation errors, etc.)
}

// SuccessResponse is a standard success response with optional data.
type SuccessResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// PaginatedResponse wraps paginated data with metadata.
type PaginatedResponse struct {
	Data       any   `json:"data"`
	Total      int64 `json:"total"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
	HasMore    bool  `json:"has_more"`
	TotalPages int   `json:"total_pages,omitempty"`
}

// --- Error Response Helpers ---

// respondBadRequest sends a 400 Bad Request response.
func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message})
}

// respondNotFound sends a 404 Not Found response.
func respondNotFound(c *gin.Context, resource string) {
	c.JSON(http.StatusNotFound, ErrorResponse{Error: resource + " not found"})
}

// respondInternalError logs the error and sends a 500 Internal Server Error response.
// The actual error is logged but not exposed to the client.
func respondInternalError(c *gin.Context, err error, context string) {
	log.Error().Err(err).Str("context", context).Msg("internal error")
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

// respondError sends an error response with the given status code.
func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorResponse{Error: message})
}

// respondStoreError maps a store or form error onto a JSON response.
func respondStoreError(c *gin.Context, err error, context string) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		respondInternalError(c, err, context)
		return
	}

	resp := ErrorResponse{Error: userMessage(err), Code: errorCode(err)}
	var missing *forms.MissingFieldsError
	if errors.As(err, &missing) {
		resp.Details = missing.Fields
	}
	c.JSON(status, resp)
}

// --- Success Response Helpers ---

// respondSuccess sends a 200 OK response with a message.
func respondSuccess(c *gin.Context, message string) {
	c.JSON(http.StatusOK, SuccessResponse{Message: message})
}

// respondCreated sends a 201 Created response with data.
func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

// respondAccepted sends a 202 Accepted response (for async operations).
func respondAccepted(c *gin.Context, message string, data any) {
	c.JSON(http.StatusAccepted, SuccessResponse{Message: message, Data: data})
}

// --- Error Mapping ---

// statusForError picks the HTTP status for a store or form error.
func statusForError(err error) int {
	var missing *forms.MissingFieldsError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &missing),
		errors.Is(err, store.ErrUnknownColumn),
		errors.Is(err, store.ErrColumnMismatch):
		return http.StatusBadRequest
	case errors.Is(err, catalog.ErrUnknownTable),
		errors.Is(err, store.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrDuplicate),
		errors.Is(err, store.ErrForeignKey):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func errorCode(err error) string {
	var missing *forms.MissingFieldsError
	switch {
	case errors.As(err, &missing):
		return "missing_fields"
	case errors.Is(err, store.ErrUnknownColumn):
		return "unknown_column"
	case errors.Is(err, catalog.ErrUnknownTable):
		return "unknown_table"
	case errors.Is(err, store.ErrRecordNotFound):
		return "not_found"
	case errors.Is(err, store.ErrDuplicate):
		return "duplicate"
	case errors.Is(err, store.ErrForeignKey):
		return "foreign_key"
	}
	return ""
}

// userMessage is the banner text for err. Known errors get their fixed
// message; anything else shows the driver message as the console always did.
func userMessage(err error) string {
	var missing *forms.MissingFieldsError
	switch {
	case errors.As(err, &missing):
		return forms.MissingFieldsMessage
	case errors.Is(err, catalog.ErrUnknownTable):
		return "Unknown table."
	case errors.Is(err, store.ErrRecordNotFound):
		return "Record not found."
	case errors.Is(err, store.ErrDuplicate):
		return "A record with the same key already exists."
	case errors.Is(err, store.ErrForeignKey):
		return "The record is referenced by, or references, a missing record."
	}
	return err.Error()
}

// --- Parameter Parsing ---

// parsePage reads a 1-based page number from the query string.
func parsePage(c *gin.Context) int {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// selectedID reads the grid selection from the id query parameter.
func selectedID(c *gin.Context) string {
	return strings.TrimSpace(c.Query("id"))
}

func totalPages(total int64, limit int) int {
	pages := (int(total) + limit - 1) / limit
	if pages < 1 {
		return 1
	}
	return pages
}
