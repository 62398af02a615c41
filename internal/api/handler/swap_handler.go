package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/deveshsoni7/SlotSwapper/internal/api/middleware"
	"github.com/deveshsoni7/SlotSwapper/internal/apperr"
	"github.com/deveshsoni7/SlotSwapper/internal/service"
)

type SwapHandler struct {
	swaps *service.SwapService
}

// ListSwappable returns the marketplace: everyone else's OFFERABLE slots.
func (h *SwapHandler) ListSwappable(c *gin.Context) {
	slots, err := h.swaps.ListSwappable(c.Request.Context(), middleware.CallerID(c))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"events": slots})
}

type initiateRequest struct {
	MySlotID    int64 `json:"my_slot_id"`
	TheirSlotID int64 `json:"their_slot_id"`
}

func (h *SwapHandler) Initiate(c *gin.Context) {
	var req initiateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing slot ids"})
		return
	}

	swap, err := h.swaps.Initiate(c.Request.Context(), middleware.CallerID(c), req.MySlotID, req.TheirSlotID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"request": swap})
}

type respondRequest struct {
	Accept bool `json:"accept"`
}

func (h *SwapHandler) Respond(c *gin.Context) {
	requestID, err := strconv.ParseInt(c.Param("requestId"), 10, 64)
	if err != nil || requestID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request id"})
		return
	}

	var req respondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing body"})
		return
	}

	swap, err := h.swaps.Respond(c.Request.Context(), requestID, middleware.CallerID(c), req.Accept)
	if err != nil {
		// Ownership drift on accept is an integrity fault, not a caller
		// mistake; it surfaces as a server error.
		if errors.Is(err, apperr.ErrConflict) {
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal error"})
			return
		}
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"request": swap})
}

func (h *SwapHandler) ListIncoming(c *gin.Context) {
	requests, err := h.swaps.ListIncoming(c.Request.Context(), middleware.CallerID(c))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"requests": requests})
}

func (h *SwapHandler) ListOutgoing(c *gin.Context) {
	requests, err := h.swaps.ListOutgoing(c.Request.Context(), middleware.CallerID(c))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"requests": requests})
}
