package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/allthingstrust/truststack/pkg/store"
)

// writeError maps a service-layer error to an HTTP status and JSON body,
// maps store-layer sentinel errors to HTTP status codes.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, errorResponse{Error: "resource not found"})
	case errors.Is(err, store.ErrValidation):
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	default:
		slog.Error("api: unexpected error", "error", err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}
