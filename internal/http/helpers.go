package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/wordbook/internal/registry"
	"github.com/mrlokans/wordbook/internal/wordlib"
)

// --- Response Types ---

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`    // machine-readable error code
	Details any    `json:"details,omitempty"` // additional context (parse errors, etc.)
}

// SuccessResponse is a standard success response with optional data.
type SuccessResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Machine-readable error codes.
const (
	CodeUnknownLibrary = "unknown_library"
	CodeInvalidName    = "invalid_name"
	CodeInvalidEntry   = "invalid_entry"
	CodeMalformed      = "malformed_library"
	CodeNoLibrary      = "no_library"
)

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
	slog.Error("internal error", "context", context, "error", err, "request_id", requestIDFrom(c))
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

// respondError maps registry and wordlib errors to status codes.
func respondError(c *gin.Context, err error, context string) {
	var lineErr *wordlib.LineError
	switch {
	case errors.Is(err, registry.ErrUnknownLibrary):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error(), Code: CodeUnknownLibrary})
	case errors.Is(err, registry.ErrNoLibrary):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error(), Code: CodeNoLibrary})
	case errors.Is(err, registry.ErrInvalidName):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: CodeInvalidName})
	case errors.Is(err, wordlib.ErrInvalidEntry):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: CodeInvalidEntry})
	case errors.As(err, &lineErr):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   err.Error(),
			Code:    CodeMalformed,
			Details: gin.H{"line": lineErr.Line, "reason": lineErr.Reason},
		})
	case errors.Is(err, wordlib.ErrMalformed):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: CodeMalformed})
	default:
		respondInternalError(c, err, context)
	}
}

// --- Success Response Helpers ---

// respondSuccess sends a 200 OK response with a message.
func respondSuccess(c *gin.Context, message string) {
	c.JSON(http.StatusOK, SuccessResponse{Message: message})
}

// respondAccepted sends a 202 Accepted response with a message.
func respondAccepted(c *gin.Context, message string) {
	c.JSON(http.StatusAccepted, SuccessResponse{Message: message})
}

// respondCreated sends a 201 Created response with data.
func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

// --- Parameter Parsing ---

// parseRequiredParam extracts a non-empty URL parameter.
// Responds with a 400 error and returns "", false when it is missing.
func parseRequiredParam(c *gin.Context, paramName string) (string, bool) {
	value := c.Param(paramName)
	if value == "" {
		respondBadRequest(c, paramName+" is required")
		return "", false
	}
	return value, true
}
