package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/deveshsoni7/SlotSwapper/internal/apperr"
	"github.com/deveshsoni7/SlotSwapper/internal/model"
	"github.com/deveshsoni7/SlotSwapper/internal/repository"
)

// SlotService is the slot store: plain per-owner CRUD. Reservation
// transitions are out of bounds here; they belong to the swap coordinator
// and the ledger operations it drives.
type SlotService struct {
	slots  repository.SlotRepository
	logger *zap.Logger
}

func NewSlotService(slots repository.SlotRepository, logger *zap.Logger) *SlotService {
	return &SlotService{
		slots:  slots,
		logger: logger,
	}
}

// SlotInput carries owner-editable fields.
type SlotInput struct {
	Title     string
	StartTime time.Time
	EndTime   time.Time
	Status    model.SlotStatus
}

func (in *SlotInput) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return fmt.Errorf("%w: title is required", apperr.ErrValidation)
	}
	if in.StartTime.IsZero() || in.EndTime.IsZero() {
		return fmt.Errorf("%w: start_time and end_time are required", apperr.ErrValidation)
	}
	if !in.StartTime.Before(in.EndTime) {
		return fmt.Errorf("%w: start_time must be before end_time", apperr.ErrValidation)
	}
	if in.Status == "" {
		in.Status = model.SlotStatusBusy
	}
	if !model.ValidSlotStatus(in.Status) {
		return fmt.Errorf("%w: status must be BUSY or OFFERABLE", apperr.ErrValidation)
	}
	return nil
}

// Create adds a slot to the owner's calendar.
func (s *SlotService) Create(ctx context.Context, ownerID int64, in SlotInput) (*model.Slot, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	slot := &model.Slot{
		Title:     strings.TrimSpace(in.Title),
		StartTime: in.StartTime,
		EndTime:   in.EndTime,
		OwnerID:   ownerID,
		Status:    in.Status,
	}

	if err := s.slots.Create(ctx, slot); err != nil {
		return nil, err
	}

	s.logger.Info("Slot created",
		zap.Int64("slot_id", slot.ID),
		zap.Int64("owner_id", ownerID),
		zap.String("status", string(slot.Status)),
	)

	return slot, nil
}

// ListOwn returns the caller's slots ordered by start time.
func (s *SlotService) ListOwn(ctx context.Context, ownerID int64) ([]*model.Slot, error) {
	return s.slots.GetByOwner(ctx, ownerID)
}

// Update rewrites an owned slot. Slots committed to a live negotiation
// (RESERVED) are immutable until the negotiation resolves.
func (s *SlotService) Update(ctx context.Context, ownerID, slotID int64, in SlotInput) (*model.Slot, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	slot, err := s.slots.GetByID(ctx, slotID)
	if err != nil {
		return nil, fmt.Errorf("get slot: %w", err)
	}
	if slot == nil || slot.OwnerID != ownerID {
		return nil, apperr.ErrNotFound
	}
	if slot.Status == model.SlotStatusReserved {
		return nil, fmt.Errorf("%w: slot is part of a pending swap", apperr.ErrConflict)
	}

	slot.Title = strings.TrimSpace(in.Title)
	slot.StartTime = in.StartTime
	slot.EndTime = in.EndTime
	slot.Status = in.Status

	// The conditional update re-checks owner and status, so a reservation
	// racing between the read above and this write still loses.
	if err := s.slots.Update(ctx, slot); err != nil {
		return nil, err
	}

	return slot, nil
}

// Delete removes an owned slot. RESERVED slots are not deletable: pulling a
// slot out from under a pending negotiation would strand its counterpart.
func (s *SlotService) Delete(ctx context.Context, ownerID, slotID int64) error {
	slot, err := s.slots.GetByID(ctx, slotID)
	if err != nil {
		return fmt.Errorf("get slot: %w", err)
	}
	if slot == nil || slot.OwnerID != ownerID {
		return apperr.ErrNotFound
	}

	if err := s.slots.Delete(ctx, slotID, ownerID); err != nil {
		return err
	}

	s.logger.Info("Slot deleted",
		zap.Int64("slot_id", slotID),
		zap.Int64("owner_id", ownerID),
	)

	return nil
}
