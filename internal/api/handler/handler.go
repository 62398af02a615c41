package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/deveshsoni7/SlotSwapper/internal/apperr"
	"github.com/deveshsoni7/SlotSwapper/internal/service"
)

// Handler bundles the HTTP endpoints for dependency injection.
type Handler struct {
	Auth *AuthHandler
	Slot *SlotHandler
	Swap *SwapHandler
}

func NewHandler(auth *service.AuthService, slots *service.SlotService, swaps *service.SwapService) *Handler {
	return &Handler{
		Auth: &AuthHandler{auth: auth},
		Slot: &SlotHandler{slots: slots},
		Swap: &SwapHandler{swaps: swaps},
	}
}

// writeError maps domain errors to HTTP statuses. Precondition failures are
// 409: the caller raced someone and should refetch before retrying.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
	case errors.Is(err, apperr.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
	case errors.Is(err, apperr.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"message": "Forbidden"})
	case errors.Is(err, apperr.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Not found"})
	case errors.Is(err, apperr.ErrEmailTaken),
		errors.Is(err, apperr.ErrSlotNotOfferable),
		errors.Is(err, apperr.ErrSlotAlreadyPending),
		errors.Is(err, apperr.ErrAlreadyHandled),
		errors.Is(err, apperr.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"message": err.Error()})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal error"})
	}
}
