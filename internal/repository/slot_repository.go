package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/deveshsoni7/SlotSwapper/internal/apperr"
	"github.com/deveshsoni7/SlotSwapper/internal/model"
)

type PgxSlotRepository struct {
	pool *pgxpool.Pool
}

func NewSlotRepository(pool *pgxpool.Pool) *PgxSlotRepository {
	return &PgxSlotRepository{pool: pool}
}

const slotColumns = "id, title, start_time, end_time, owner_id, status, created_at, updated_at"

func scanSlot(row pgx.Row) (*model.Slot, error) {
	var slot model.Slot
	err := row.Scan(
		&slot.ID,
		&slot.Title,
		&slot.StartTime,
		&slot.EndTime,
		&slot.OwnerID,
		&slot.Status,
		&slot.CreatedAt,
		&slot.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

// Create inserts a new slot owned by slot.OwnerID.
func (r *PgxSlotRepository) Create(ctx context.Context, slot *model.Slot) error {
	query := `
		INSERT INTO slots (title, start_time, end_time, owner_id, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	err := db(ctx, r.pool).QueryRow(
		ctx, query,
		slot.Title,
		slot.StartTime,
		slot.EndTime,
		slot.OwnerID,
		slot.Status,
	).Scan(&slot.ID, &slot.CreatedAt, &slot.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create slot: %w", err)
	}

	return nil
}

// GetByID returns the slot or (nil, nil) when no row matches.
func (r *PgxSlotRepository) GetByID(ctx context.Context, id int64) (*model.Slot, error) {
	query := `SELECT ` + slotColumns + ` FROM slots WHERE id = $1`

	slot, err := scanSlot(db(ctx, r.pool).QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get slot by id: %w", err)
	}

	return slot, nil
}

// GetByOwner returns all slots of one owner ordered by start time.
func (r *PgxSlotRepository) GetByOwner(ctx context.Context, ownerID int64) ([]*model.Slot, error) {
	query := `
		SELECT ` + slotColumns + `
		FROM slots
		WHERE owner_id = $1
		ORDER BY start_time
	`

	rows, err := db(ctx, r.pool).Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("get slots by owner: %w", err)
	}
	defer rows.Close()

	var slots []*model.Slot
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		slots = append(slots, slot)
	}

	return slots, rows.Err()
}

// GetOfferableExcluding lists the marketplace: OFFERABLE slots of other
// owners, soonest first, with owner name and email attached.
func (r *PgxSlotRepository) GetOfferableExcluding(ctx context.Context, ownerID int64) ([]*model.Slot, error) {
	query := `
		SELECT s.id, s.title, s.start_time, s.end_time, s.owner_id, s.status,
		       s.created_at, s.updated_at, u.name, u.email
		FROM slots s
		JOIN users u ON u.id = s.owner_id
		WHERE s.owner_id <> $1 AND s.status = 'OFFERABLE'
		ORDER BY s.start_time
	`

	rows, err := db(ctx, r.pool).Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("get offerable slots: %w", err)
	}
	defer rows.Close()

	var slots []*model.Slot
	for rows.Next() {
		var slot model.Slot
		var owner model.User
		err := rows.Scan(
			&slot.ID,
			&slot.Title,
			&slot.StartTime,
			&slot.EndTime,
			&slot.OwnerID,
			&slot.Status,
			&slot.CreatedAt,
			&slot.UpdatedAt,
			&owner.Name,
			&owner.Email,
		)
		if err != nil {
			return nil, fmt.Errorf("scan offerable slot: %w", err)
		}
		owner.ID = slot.OwnerID
		slot.Owner = &owner
		slots = append(slots, &slot)
	}

	return slots, rows.Err()
}

// Update rewrites title, times and status of an owned row that is currently
// BUSY or OFFERABLE. RESERVED rows never match: reservation state belongs to
// the ledger operations below.
func (r *PgxSlotRepository) Update(ctx context.Context, slot *model.Slot) error {
	query := `
		UPDATE slots
		SET title = $1, start_time = $2, end_time = $3, status = $4, updated_at = NOW()
		WHERE id = $5 AND owner_id = $6 AND status IN ('BUSY', 'OFFERABLE')
		RETURNING updated_at
	`

	err := db(ctx, r.pool).QueryRow(
		ctx, query,
		slot.Title,
		slot.StartTime,
		slot.EndTime,
		slot.Status,
		slot.ID,
		slot.OwnerID,
	).Scan(&slot.UpdatedAt)

	if err != nil {
		if err == pgx.ErrNoRows {
			return apperr.ErrConflict
		}
		return fmt.Errorf("update slot: %w", err)
	}

	return nil
}

// Delete removes an owned row unless it is part of a live negotiation.
func (r *PgxSlotRepository) Delete(ctx context.Context, id, ownerID int64) error {
	query := `
		DELETE FROM slots
		WHERE id = $1 AND owner_id = $2 AND status <> 'RESERVED'
	`

	result, err := db(ctx, r.pool).Exec(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete slot: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperr.ErrConflict
	}

	return nil
}

// Reserve transitions OFFERABLE -> RESERVED iff the slot is owned by ownerID.
func (r *PgxSlotRepository) Reserve(ctx context.Context, slotID, ownerID int64) (*model.Slot, error) {
	query := `
		UPDATE slots
		SET status = 'RESERVED', updated_at = NOW()
		WHERE id = $1 AND owner_id = $2 AND status = 'OFFERABLE'
		RETURNING ` + slotColumns

	slot, err := scanSlot(db(ctx, r.pool).QueryRow(ctx, query, slotID, ownerID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperr.ErrSlotNotOfferable
		}
		return nil, fmt.Errorf("reserve slot: %w", err)
	}

	return slot, nil
}

// ReserveForeign transitions OFFERABLE -> RESERVED iff the slot belongs to
// someone other than notOwnerID. The returned row carries the owner the
// negotiation is addressed to.
func (r *PgxSlotRepository) ReserveForeign(ctx context.Context, slotID, notOwnerID int64) (*model.Slot, error) {
	query := `
		UPDATE slots
		SET status = 'RESERVED', updated_at = NOW()
		WHERE id = $1 AND owner_id <> $2 AND status = 'OFFERABLE'
		RETURNING ` + slotColumns

	slot, err := scanSlot(db(ctx, r.pool).QueryRow(ctx, query, slotID, notOwnerID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperr.ErrSlotNotOfferable
		}
		return nil, fmt.Errorf("reserve foreign slot: %w", err)
	}

	return slot, nil
}

// Release transitions RESERVED -> OFFERABLE.
func (r *PgxSlotRepository) Release(ctx context.Context, slotID int64) error {
	query := `
		UPDATE slots
		SET status = 'OFFERABLE', updated_at = NOW()
		WHERE id = $1 AND status = 'RESERVED'
	`

	result, err := db(ctx, r.pool).Exec(ctx, query, slotID)
	if err != nil {
		return fmt.Errorf("release slot: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperr.ErrConflict
	}

	return nil
}

// Reassign hands a RESERVED slot to newOwnerID and marks it BUSY.
func (r *PgxSlotRepository) Reassign(ctx context.Context, slotID, newOwnerID int64) error {
	query := `
		UPDATE slots
		SET owner_id = $1, status = 'BUSY', updated_at = NOW()
		WHERE id = $2 AND status = 'RESERVED'
	`

	result, err := db(ctx, r.pool).Exec(ctx, query, newOwnerID, slotID)
	if err != nil {
		return fmt.Errorf("reassign slot: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperr.ErrConflict
	}

	return nil
}
