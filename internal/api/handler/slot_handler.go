package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/deveshsoni7/SlotSwapper/internal/api/middleware"
	"github.com/deveshsoni7/SlotSwapper/internal/model"
	"github.com/deveshsoni7/SlotSwapper/internal/render"
	"github.com/deveshsoni7/SlotSwapper/internal/service"
)

type SlotHandler struct {
	slots *service.SlotService
}

type slotRequest struct {
	Title     string    `json:"title"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Status    string    `json:"status"`
}

func (r *slotRequest) toInput() service.SlotInput {
	return service.SlotInput{
		Title:     r.Title,
		StartTime: r.StartTime,
		EndTime:   r.EndTime,
		Status:    model.SlotStatus(r.Status),
	}
}

func slotID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid slot id"})
		return 0, false
	}
	return id, true
}

func (h *SlotHandler) List(c *gin.Context) {
	slots, err := h.slots.ListOwn(c.Request.Context(), middleware.CallerID(c))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"events": slots})
}

func (h *SlotHandler) Create(c *gin.Context) {
	var req slotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing fields"})
		return
	}

	slot, err := h.slots.Create(c.Request.Context(), middleware.CallerID(c), req.toInput())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"event": slot})
}

func (h *SlotHandler) Update(c *gin.Context) {
	id, ok := slotID(c)
	if !ok {
		return
	}

	var req slotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing fields"})
		return
	}

	slot, err := h.slots.Update(c.Request.Context(), middleware.CallerID(c), id, req.toInput())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"event": slot})
}

func (h *SlotHandler) Delete(c *gin.Context) {
	id, ok := slotID(c)
	if !ok {
		return
	}

	if err := h.slots.Delete(c.Request.Context(), middleware.CallerID(c), id); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// WeekImage renders the caller's current week as a PNG calendar.
func (h *SlotHandler) WeekImage(c *gin.Context) {
	slots, err := h.slots.ListOwn(c.Request.Context(), middleware.CallerID(c))
	if err != nil {
		writeError(c, err)
		return
	}

	png, err := render.WeekImage(slots, time.Now())
	if err != nil {
		writeError(c, err)
		return
	}

	c.Data(http.StatusOK, "image/png", png)
}
