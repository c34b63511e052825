package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"baul-admin-api/internal/importer"
	"baul-admin-api/internal/repositories"
	"baul-admin-api/internal/services"
	"baul-admin-api/pkg/lambda"
)

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// ImportErrorResponse is the body of a rejected bulk import
type ImportErrorResponse struct {
	Message string               `json:"mensaje"`
	Errors  []importer.LineError `json:"errores"`
}

// errorStatus maps a service error to its HTTP status and title
func errorStatus(err error) (int, string) {
	var rejected *importer.BatchRejectedError
	switch {
	case services.IsValidation(err), importer.IsStructural(err):
		return http.StatusBadRequest, "Validation failed"
	case errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Unauthorized"
	case repositories.IsNotFound(err):
		return http.StatusNotFound, "Not found"
	case repositories.IsDuplicate(err):
		return http.StatusConflict, "Conflict"
	case errors.As(err, &rejected):
		return http.StatusUnprocessableEntity, "Validation failed"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

// respondError writes err with the status it maps to
func respondError(c *gin.Context, err error) {
	status, title := errorStatus(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.JSON(status, ErrorResponse{Error: title, Message: err.Error()})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   "Invalid request body",
		Message: err.Error(),
	})
}

// jsonResponse builds a lambda response carrying body as JSON
func jsonResponse(status int, body any, headers map[string]string) (*lambda.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		status = http.StatusInternalServerError
		payload = []byte(`{"error":"Failed to marshal response"}`)
	}

	h := map[string]string{"Content-Type": "application/json"}
	for k, v := range headers {
		h[k] = v
	}

	return &lambda.Response{
		StatusCode: status,
		Headers:    h,
		Body:       payload,
	}, nil
}
