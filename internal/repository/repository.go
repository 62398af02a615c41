package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/deveshsoni7/SlotSwapper/internal/model"
)

// UserRepository stores accounts. Lookups return (nil, nil) when no row
// matches.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

// SlotRepository is the slot store plus the slot ledger. The ledger methods
// (Reserve, ReserveForeign, Release, Reassign) are single-row compare-and-set
// transitions: they either fully apply or fail without side effect.
type SlotRepository interface {
	Create(ctx context.Context, slot *model.Slot) error
	GetByID(ctx context.Context, id int64) (*model.Slot, error)
	GetByOwner(ctx context.Context, ownerID int64) ([]*model.Slot, error)
	// GetOfferableExcluding lists OFFERABLE slots not owned by ownerID,
	// soonest first, with Owner populated. Marketplace projection.
	GetOfferableExcluding(ctx context.Context, ownerID int64) ([]*model.Slot, error)
	// Update writes title/times/status for an owned row that is not
	// RESERVED. Returns apperr.ErrConflict when the row was concurrently
	// reserved or removed.
	Update(ctx context.Context, slot *model.Slot) error
	// Delete removes an owned row unless it is RESERVED
	// (apperr.ErrConflict).
	Delete(ctx context.Context, id, ownerID int64) error

	// Reserve transitions OFFERABLE -> RESERVED iff the slot is owned by
	// ownerID. Fails with apperr.ErrSlotNotOfferable.
	Reserve(ctx context.Context, slotID, ownerID int64) (*model.Slot, error)
	// ReserveForeign transitions OFFERABLE -> RESERVED iff the slot is NOT
	// owned by notOwnerID. Fails with apperr.ErrSlotNotOfferable.
	ReserveForeign(ctx context.Context, slotID, notOwnerID int64) (*model.Slot, error)
	// Release transitions RESERVED -> OFFERABLE. A slot that is not
	// RESERVED fails with apperr.ErrConflict.
	Release(ctx context.Context, slotID int64) error
	// Reassign hands a RESERVED slot to newOwner and marks it BUSY. Accept
	// path only; the slot must already be RESERVED under coordinator
	// control (apperr.ErrConflict otherwise).
	Reassign(ctx context.Context, slotID, newOwnerID int64) error
}

// SwapRepository is the negotiation store.
type SwapRepository interface {
	// CreateIfUnclaimed inserts a PENDING request. The partial unique
	// indexes make the no-other-PENDING check and the insert one atomic
	// step; a violation surfaces as apperr.ErrSlotAlreadyPending.
	CreateIfUnclaimed(ctx context.Context, req *model.SwapRequest) error
	GetByID(ctx context.Context, id int64) (*model.SwapRequest, error)
	// Transition moves the request from one status to another atomically.
	// Zero rows matched means the request already left `from`:
	// apperr.ErrAlreadyHandled.
	Transition(ctx context.Context, id int64, from, to model.SwapStatus) error
	// ListPendingBySlots returns PENDING requests (other than excludeID)
	// referencing either slot, rows locked for the caller's transaction.
	ListPendingBySlots(ctx context.Context, slotA, slotB, excludeID int64) ([]*model.SwapRequest, error)
	ListIncoming(ctx context.Context, recipientID int64) ([]*model.SwapRequest, error)
	ListOutgoing(ctx context.Context, requesterID int64) ([]*model.SwapRequest, error)
}

// TxManager runs a function inside one unit of work. Repository calls made
// with the context it passes down join that transaction.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Repository bundles all stores for dependency injection.
type Repository struct {
	Users UserRepository
	Slots SlotRepository
	Swaps SwapRepository
	Tx    TxManager
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{
		Users: NewUserRepository(pool),
		Slots: NewSlotRepository(pool),
		Swaps: NewSwapRepository(pool),
		Tx:    NewPgxTxManager(pool),
	}
}
