package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/deveshsoni7/SlotSwapper/internal/apperr"
	"github.com/deveshsoni7/SlotSwapper/internal/model"
)

type PgxSwapRepository struct {
	pool *pgxpool.Pool
}

func NewSwapRepository(pool *pgxpool.Pool) *PgxSwapRepository {
	return &PgxSwapRepository{pool: pool}
}

// CreateIfUnclaimed inserts a PENDING request. The partial unique indexes on
// (offered_slot_id) and (target_slot_id) WHERE status='PENDING' turn the
// "no other pending request holds these slots" check and the insert into a
// single atomic step.
func (r *PgxSwapRepository) CreateIfUnclaimed(ctx context.Context, req *model.SwapRequest) error {
	query := `
		INSERT INTO swap_requests (requester_id, recipient_id, offered_slot_id, target_slot_id, status)
		VALUES ($1, $2, $3, $4, 'PENDING')
		RETURNING id, status, created_at
	`

	err := db(ctx, r.pool).QueryRow(
		ctx, query,
		req.RequesterID,
		req.RecipientID,
		req.OfferedSlotID,
		req.TargetSlotID,
	).Scan(&req.ID, &req.Status, &req.CreatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return apperr.ErrSlotAlreadyPending
		}
		return fmt.Errorf("create swap request: %w", err)
	}

	return nil
}

const swapColumns = "id, requester_id, recipient_id, offered_slot_id, target_slot_id, status, created_at"

func scanSwap(row pgx.Row) (*model.SwapRequest, error) {
	var req model.SwapRequest
	err := row.Scan(
		&req.ID,
		&req.RequesterID,
		&req.RecipientID,
		&req.OfferedSlotID,
		&req.TargetSlotID,
		&req.Status,
		&req.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// GetByID returns the request or (nil, nil) when no row matches.
func (r *PgxSwapRepository) GetByID(ctx context.Context, id int64) (*model.SwapRequest, error) {
	query := `SELECT ` + swapColumns + ` FROM swap_requests WHERE id = $1`

	req, err := scanSwap(db(ctx, r.pool).QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get swap request by id: %w", err)
	}

	return req, nil
}

// Transition moves the request from one status to another. Terminal once
// moved: zero matched rows means another caller got there first.
func (r *PgxSwapRepository) Transition(ctx context.Context, id int64, from, to model.SwapStatus) error {
	query := `
		UPDATE swap_requests
		SET status = $1
		WHERE id = $2 AND status = $3
	`

	result, err := db(ctx, r.pool).Exec(ctx, query, to, id, from)
	if err != nil {
		return fmt.Errorf("transition swap request: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperr.ErrAlreadyHandled
	}

	return nil
}

// ListPendingBySlots returns PENDING requests other than excludeID that
// reference either slot, locked FOR UPDATE so the caller's transaction can
// reject them without racing a concurrent respond.
func (r *PgxSwapRepository) ListPendingBySlots(ctx context.Context, slotA, slotB, excludeID int64) ([]*model.SwapRequest, error) {
	query := `
		SELECT ` + swapColumns + `
		FROM swap_requests
		WHERE status = 'PENDING'
		  AND id <> $1
		  AND (offered_slot_id IN ($2, $3) OR target_slot_id IN ($2, $3))
		FOR UPDATE
	`

	rows, err := db(ctx, r.pool).Query(ctx, query, excludeID, slotA, slotB)
	if err != nil {
		return nil, fmt.Errorf("list pending by slots: %w", err)
	}
	defer rows.Close()

	var reqs []*model.SwapRequest
	for rows.Next() {
		req, err := scanSwap(rows)
		if err != nil {
			return nil, fmt.Errorf("scan swap request: %w", err)
		}
		reqs = append(reqs, req)
	}

	return reqs, rows.Err()
}

// listQuery joins both slots and the counterpart user so list endpoints can
// render summaries without extra round trips.
const listQuery = `
	SELECT r.id, r.requester_id, r.recipient_id, r.offered_slot_id, r.target_slot_id,
	       r.status, r.created_at,
	       os.title, os.start_time, os.end_time, os.status,
	       ts.title, ts.start_time, ts.end_time, ts.status,
	       u.id, u.name, u.email
	FROM swap_requests r
	JOIN slots os ON os.id = r.offered_slot_id
	JOIN slots ts ON ts.id = r.target_slot_id
	JOIN users u ON u.id = %s
	WHERE %s = $1
	ORDER BY r.created_at DESC
`

func (r *PgxSwapRepository) list(ctx context.Context, query string, userID int64, incoming bool) ([]*model.SwapRequest, error) {
	rows, err := db(ctx, r.pool).Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list swap requests: %w", err)
	}
	defer rows.Close()

	var reqs []*model.SwapRequest
	for rows.Next() {
		var req model.SwapRequest
		var offered, target model.Slot
		var counterpart model.User
		err := rows.Scan(
			&req.ID,
			&req.RequesterID,
			&req.RecipientID,
			&req.OfferedSlotID,
			&req.TargetSlotID,
			&req.Status,
			&req.CreatedAt,
			&offered.Title,
			&offered.StartTime,
			&offered.EndTime,
			&offered.Status,
			&target.Title,
			&target.StartTime,
			&target.EndTime,
			&target.Status,
			&counterpart.ID,
			&counterpart.Name,
			&counterpart.Email,
		)
		if err != nil {
			return nil, fmt.Errorf("scan swap request: %w", err)
		}
		offered.ID = req.OfferedSlotID
		target.ID = req.TargetSlotID
		req.OfferedSlot = &offered
		req.TargetSlot = &target
		if incoming {
			req.Requester = &counterpart
		} else {
			req.Recipient = &counterpart
		}
		reqs = append(reqs, &req)
	}

	return reqs, rows.Err()
}

// ListIncoming returns requests addressed to recipientID, newest first, with
// the requester attached.
func (r *PgxSwapRepository) ListIncoming(ctx context.Context, recipientID int64) ([]*model.SwapRequest, error) {
	query := fmt.Sprintf(listQuery, "r.requester_id", "r.recipient_id")
	return r.list(ctx, query, recipientID, true)
}

// ListOutgoing returns requests created by requesterID, newest first, with
// the recipient attached.
func (r *PgxSwapRepository) ListOutgoing(ctx context.Context, requesterID int64) ([]*model.SwapRequest, error) {
	query := fmt.Sprintf(listQuery, "r.recipient_id", "r.requester_id")
	return r.list(ctx, query, requesterID, false)
}
