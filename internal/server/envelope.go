package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"crmconsole/internal/hubspot"
)

// envelope is the uniform response shape for every API route. Exactly one of
// Data and Error is set, keyed off OK.
type envelope struct {
	OK            bool   `json:"ok"`
	CorrelationID string `json:"correlationId"`
	Operation     string `json:"operation"`
	Data          any    `json:"data,omitempty"`
	Error         string `json:"error,omitempty"`
}

func respondOK(c *gin.Context, operation string, data any) {
	c.JSON(http.StatusOK, envelope{
		OK:            true,
		CorrelationID: correlationID(c),
		Operation:     operation,
		Data:          data,
	})
}

func respondError(c *gin.Context, operation string, status int, err error) {
	c.JSON(status, envelope{
		OK:            false,
		CorrelationID: correlationID(c),
		Operation:     operation,
		Error:         err.Error(),
	})
}

// respondAPIError maps a client error to an HTTP status: typed CRM errors
// keep their upstream status, oversized batches are the caller's fault, and
// anything else is a gateway-side failure.
func respondAPIError(c *gin.Context, operation string, err error) {
	var apiErr *hubspot.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode > 0 {
		respondError(c, operation, apiErr.StatusCode, err)
		return
	}
	if errors.Is(err, hubspot.ErrBatchTooLarge) {
		respondError(c, operation, http.StatusBadRequest, err)
		return
	}
	respondError(c, operation, http.StatusBadGateway, err)
}
