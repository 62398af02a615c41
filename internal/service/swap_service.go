package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"github.com/deveshsoni7/SlotSwapper/internal/apperr"
	"github.com/deveshsoni7/SlotSwapper/internal/model"
	"github.com/deveshsoni7/SlotSwapper/internal/repository"
)

// SwapService coordinates negotiations. Every mutation runs inside one unit
// of work: both slot reservations and the request record move together or
// not at all, and no reader ever observes a half-applied swap.
type SwapService struct {
	slots  repository.SlotRepository
	swaps  repository.SwapRepository
	tx     repository.TxManager
	logger *zap.Logger
}

func NewSwapService(
	slots repository.SlotRepository,
	swaps repository.SwapRepository,
	tx repository.TxManager,
	logger *zap.Logger,
) *SwapService {
	return &SwapService{
		slots:  slots,
		swaps:  swaps,
		tx:     tx,
		logger: logger,
	}
}

// withRetry runs fn in a transaction, retrying the whole unit on Postgres
// serialization or deadlock aborts. Domain failures pass through untouched.
func (s *SwapService) withRetry(ctx context.Context, fn func(ctx context.Context) error) error {
	backoff := retry.WithMaxRetries(3, retry.NewFibonacci(10*time.Millisecond))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := s.tx.WithinTx(ctx, fn)
		if repository.IsSerializationFailure(err) {
			return retry.RetryableError(err)
		}
		return err
	})
}

// Initiate reserves the requester's slot, then the target slot, then records
// the PENDING request. Reservation order is fixed (offered first) so two
// users proposing mirrored swaps contend deterministically: the second to
// reach a contested slot fails fast with ErrSlotNotOfferable instead of
// waiting. Any failure aborts the transaction, which undoes every
// reservation taken so far.
func (s *SwapService) Initiate(ctx context.Context, requesterID, offeredSlotID, targetSlotID int64) (*model.SwapRequest, error) {
	if offeredSlotID <= 0 || targetSlotID <= 0 {
		return nil, fmt.Errorf("%w: both slot ids are required", apperr.ErrValidation)
	}
	if offeredSlotID == targetSlotID {
		return nil, fmt.Errorf("%w: cannot swap a slot with itself", apperr.ErrValidation)
	}

	var req *model.SwapRequest
	err := s.withRetry(ctx, func(ctx context.Context) error {
		offered, err := s.slots.Reserve(ctx, offeredSlotID, requesterID)
		if err != nil {
			return err
		}

		// Ownership predicate doubles as the self-swap guard: the target
		// must belong to someone else.
		target, err := s.slots.ReserveForeign(ctx, targetSlotID, requesterID)
		if err != nil {
			return err
		}

		req = &model.SwapRequest{
			RequesterID:   requesterID,
			RecipientID:   target.OwnerID,
			OfferedSlotID: offered.ID,
			TargetSlotID:  target.ID,
		}
		return s.swaps.CreateIfUnclaimed(ctx, req)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Swap initiated",
		zap.Int64("request_id", req.ID),
		zap.Int64("requester_id", requesterID),
		zap.Int64("recipient_id", req.RecipientID),
		zap.Int64("offered_slot_id", offeredSlotID),
		zap.Int64("target_slot_id", targetSlotID),
	)

	return req, nil
}

// Respond resolves a PENDING request. Only the recipient may respond; the
// decision is terminal.
func (s *SwapService) Respond(ctx context.Context, requestID, callerID int64, accept bool) (*model.SwapRequest, error) {
	req, err := s.swaps.GetByID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("get swap request: %w", err)
	}
	if req == nil {
		return nil, apperr.ErrNotFound
	}
	if req.RecipientID != callerID {
		return nil, apperr.ErrForbidden
	}
	if req.Status != model.SwapStatusPending {
		return nil, apperr.ErrAlreadyHandled
	}

	if accept {
		err = s.withRetry(ctx, func(ctx context.Context) error { return s.accept(ctx, req) })
	} else {
		err = s.withRetry(ctx, func(ctx context.Context) error { return s.reject(ctx, req) })
	}
	if err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			// Ownership drifted under a PENDING request: an invariant was
			// violated elsewhere. Abort and leave the request for manual
			// resolution instead of guessing.
			s.logger.Error("Swap integrity fault",
				zap.Int64("request_id", req.ID),
				zap.Error(err),
			)
		}
		return nil, err
	}

	return req, nil
}

// reject moves the request to REJECTED and frees both slots. The status
// transition goes first: if another caller already resolved the request the
// transaction aborts before any slot is touched.
func (s *SwapService) reject(ctx context.Context, req *model.SwapRequest) error {
	if err := s.swaps.Transition(ctx, req.ID, model.SwapStatusPending, model.SwapStatusRejected); err != nil {
		return err
	}
	if err := s.slots.Release(ctx, req.OfferedSlotID); err != nil {
		return fmt.Errorf("release offered slot: %w", err)
	}
	if err := s.slots.Release(ctx, req.TargetSlotID); err != nil {
		return fmt.Errorf("release target slot: %w", err)
	}

	req.Status = model.SwapStatusRejected

	s.logger.Info("Swap rejected",
		zap.Int64("request_id", req.ID),
		zap.Int64("recipient_id", req.RecipientID),
	)
	return nil
}

// accept crosses slot ownership, marks both slots BUSY, finalizes the
// request and cascades rejection onto every other PENDING request that
// referenced either slot — all inside the caller's transaction.
func (s *SwapService) accept(ctx context.Context, req *model.SwapRequest) error {
	// Winning this transition locks the request row; every competing
	// respond call is now excluded until we commit or abort.
	if err := s.swaps.Transition(ctx, req.ID, model.SwapStatusPending, model.SwapStatusAccepted); err != nil {
		return err
	}

	// Re-validate that ownership is still what the negotiation was built
	// on. Both slots have been RESERVED since initiation, so a mismatch
	// means the reservation contract was bypassed.
	offered, err := s.slots.GetByID(ctx, req.OfferedSlotID)
	if err != nil {
		return fmt.Errorf("get offered slot: %w", err)
	}
	target, err := s.slots.GetByID(ctx, req.TargetSlotID)
	if err != nil {
		return fmt.Errorf("get target slot: %w", err)
	}
	if offered == nil || target == nil {
		return fmt.Errorf("%w: negotiation slot missing", apperr.ErrConflict)
	}
	if offered.OwnerID != req.RequesterID || target.OwnerID != req.RecipientID {
		return fmt.Errorf("%w: slot ownership changed during negotiation", apperr.ErrConflict)
	}

	if err := s.slots.Reassign(ctx, req.OfferedSlotID, req.RecipientID); err != nil {
		return fmt.Errorf("reassign offered slot: %w", err)
	}
	if err := s.slots.Reassign(ctx, req.TargetSlotID, req.RequesterID); err != nil {
		return fmt.Errorf("reassign target slot: %w", err)
	}

	if err := s.cascadeReject(ctx, req); err != nil {
		return err
	}

	req.Status = model.SwapStatusAccepted

	s.logger.Info("Swap accepted",
		zap.Int64("request_id", req.ID),
		zap.Int64("requester_id", req.RequesterID),
		zap.Int64("recipient_id", req.RecipientID),
	)
	return nil
}

// cascadeReject force-rejects every other PENDING request touching either
// swapped slot and releases their non-shared reserved slots. The swapped
// slots themselves are BUSY now and must stay that way.
func (s *SwapService) cascadeReject(ctx context.Context, accepted *model.SwapRequest) error {
	stale, err := s.swaps.ListPendingBySlots(ctx, accepted.OfferedSlotID, accepted.TargetSlotID, accepted.ID)
	if err != nil {
		return fmt.Errorf("list stale requests: %w", err)
	}

	swapped := map[int64]bool{
		accepted.OfferedSlotID: true,
		accepted.TargetSlotID:  true,
	}

	for _, r := range stale {
		if err := s.swaps.Transition(ctx, r.ID, model.SwapStatusPending, model.SwapStatusRejected); err != nil {
			return fmt.Errorf("cascade reject request %d: %w", r.ID, err)
		}
		for _, slotID := range []int64{r.OfferedSlotID, r.TargetSlotID} {
			if swapped[slotID] {
				continue
			}
			if err := s.slots.Release(ctx, slotID); err != nil {
				return fmt.Errorf("cascade release slot %d: %w", slotID, err)
			}
		}
		s.logger.Info("Swap cascade-rejected",
			zap.Int64("request_id", r.ID),
			zap.Int64("accepted_request_id", accepted.ID),
		)
	}

	return nil
}

// ListSwappable is the marketplace projection: other users' OFFERABLE slots.
func (s *SwapService) ListSwappable(ctx context.Context, callerID int64) ([]*model.Slot, error) {
	return s.slots.GetOfferableExcluding(ctx, callerID)
}

// ListIncoming returns negotiations addressed to the caller.
func (s *SwapService) ListIncoming(ctx context.Context, callerID int64) ([]*model.SwapRequest, error) {
	return s.swaps.ListIncoming(ctx, callerID)
}

// ListOutgoing returns negotiations the caller started.
func (s *SwapService) ListOutgoing(ctx context.Context, callerID int64) ([]*model.SwapRequest, error) {
	return s.swaps.ListOutgoing(ctx, callerID)
}
