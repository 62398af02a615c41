package model

import "time"

type SlotStatus string

const (
	SlotStatusBusy      SlotStatus = "BUSY"      // Not tradeable, belongs to the owner's calendar
	SlotStatusOfferable SlotStatus = "OFFERABLE" // Published on the marketplace
	SlotStatusReserved  SlotStatus = "RESERVED"  // Committed to exactly one pending swap
)

// ValidSlotStatus reports whether s is a status an owner may set directly.
// RESERVED is excluded: only the ledger's reserve/release/reassign
// operations move a slot in or out of it.
func ValidSlotStatus(s SlotStatus) bool {
	return s == SlotStatusBusy || s == SlotStatusOfferable
}

type Slot struct {
	ID        int64      `json:"id"`
	Title     string     `json:"title"`
	StartTime time.Time  `json:"start_time"`
	EndTime   time.Time  `json:"end_time"`
	OwnerID   int64      `json:"owner_id"`
	Status    SlotStatus `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	// Convenience field, not stored in the slots table
	Owner *User `json:"owner,omitempty"`
}
