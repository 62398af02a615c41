package model

import "time"

type SwapStatus string

const (
	SwapStatusPending  SwapStatus = "PENDING"
	SwapStatusAccepted SwapStatus = "ACCEPTED"
	SwapStatusRejected SwapStatus = "REJECTED"
)

// SwapRequest is a two-party proposal to exchange ownership of two slots.
// While PENDING, both referenced slots are RESERVED; ACCEPTED and REJECTED
// are terminal.
type SwapRequest struct {
	ID            int64      `json:"id"`
	RequesterID   int64      `json:"requester_id"`
	RecipientID   int64      `json:"recipient_id"`
	OfferedSlotID int64      `json:"offered_slot_id"`
	TargetSlotID  int64      `json:"target_slot_id"`
	Status        SwapStatus `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`

	// Convenience fields, not stored in the swap_requests table
	OfferedSlot *Slot `json:"offered_slot,omitempty"`
	TargetSlot  *Slot `json:"target_slot,omitempty"`
	Requester   *User `json:"requester,omitempty"`
	Recipient   *User `json:"recipient,omitempty"`
}
