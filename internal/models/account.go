package models

import (
	"time"
)

// Account statuses
const (
	AccountStatusActive = "ACTIVE"
	AccountStatusClosed = "CLOSED"
	// AccountStatusHalted marks an account frozen for manual reconciliation
	// after a failed transfer compensation. No balance movement is allowed
	// until an operator intervenes.
	AccountStatusHalted = "HALTED"
)

// Account represents a balance-bearing ledger account. Balances are stored
// as fixed-point integers in minor units (cents, kobo) and are only ever
// mutated through the ledger.
type Account struct {
	ID          string    `json:"id"`
	OwnerUserID string    `json:"owner_user_id"`
	DisplayName string    `json:"display_name"`
	Currency    string    `json:"currency"`
	Balance     int64     `json:"balance"` // in minor units
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// OpenAccountRequest is the validated boundary struct for account creation.
// The shell generates the account id; the core never mints entity ids itself.
type OpenAccountRequest struct {
	OwnerUserID string `json:"ownerUserId" validate:"required,max=64"`
	DisplayName string `json:"displayName" validate:"required,max=100"`
	Currency    string `json:"currency" validate:"required,len=3"`
}
