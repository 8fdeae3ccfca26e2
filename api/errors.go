package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"google.golang.org/grpc/status"

	bookingsapi "github.com/Domenick1991/trainbooking/internal/api/bookings_service_api"
	"github.com/Domenick1991/trainbooking/internal/domain"
)

type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// writeError answers with the HTTP status the gRPC gateway would use for the
// same error.
func writeError(c *gin.Context, err error) {
	code := runtime.HTTPStatusFromCode(status.Code(bookingsapi.StatusFromError(err)))
	if code >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.JSON(code, errorResponse{Success: false, Message: userMessage(err)})
}

func userMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrTicketNotFound):
		return "Ticket not found!"
	case errors.Is(err, domain.ErrNothingToUndo):
		return "No cancellations to undo!"
	case errors.Is(err, domain.ErrSnapshotNotFound):
		return "No saved data found!"
	default:
		return err.Error()
	}
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, errorResponse{Success: false, Message: message})
}
