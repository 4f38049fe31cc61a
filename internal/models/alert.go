package models

import (
	"time"
)

// Alert types pushed by the ledger on transfer outcomes.
const (
	AlertTypeTransferFailed   = "TRANSFER_FAILED"
	AlertTypeAccountHalted    = "ACCOUNT_HALTED"
	AlertTypeTransferReversed = "TRANSFER_REVERSED"
)

// Alert is a pending notification in a user's mailbox. Alerts are consumed
// (removed) atomically when the owner drains the mailbox.
type Alert struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// AlertChannel is advisory delivery-channel metadata recorded by Subscribe.
// The polling mailbox never consumes it; it exists for a future push
// integration.
type AlertChannel struct {
	UserID    string    `json:"user_id"`
	Kind      string    `json:"kind"` // email, sms, push
	Address   string    `json:"address"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SubscribeRequest is the validated boundary struct for channel registration.
type SubscribeRequest struct {
	UserID  string `json:"userId" validate:"required,max=64"`
	Kind    string `json:"kind" validate:"required,oneof=email sms push"`
	Address string `json:"address" validate:"required,max=200"`
}

// PollAlertsRequest is the validated boundary struct for mailbox polling.
type PollAlertsRequest struct {
	UserID string `json:"userId" validate:"required,max=64"`
}
