package models

import (
	"time"
)

// Transaction types
const (
	TransactionTypeTransfer          = "transfer"
	TransactionTypeCardAuthorization = "card_authorization"
)

// Transaction statuses. Every transfer resolves synchronously to SETTLED or
// FAILED before the call returns; QUEUED never survives past the call.
const (
	TransactionStatusQueued  = "QUEUED"
	TransactionStatusSettled = "SETTLED"
	TransactionStatusFailed  = "FAILED"
)

// Transaction is an immutable, append-only ledger record. Seq is assigned by
// the transaction log and is the authoritative ordering tie-break when
// timestamps collide.
type Transaction struct {
	ID            string     `json:"transaction_id"`
	Seq           uint64     `json:"seq"`
	Type          string     `json:"type"`
	FromAccountID string     `json:"from_account_id,omitempty"` // empty for card authorizations
	ToAccountID   string     `json:"to_account_id,omitempty"`
	Amount        int64      `json:"amount"` // in minor units, always positive
	Currency      string     `json:"currency"`
	Reference     string     `json:"reference,omitempty"` // caller reference; terminal id for authorizations
	Status        string     `json:"status"`
	FailureReason string     `json:"failure_reason,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	SettledAt     *time.Time `json:"settled_at,omitempty"`
}

// TransferRequest is the validated boundary struct for transfer creation.
type TransferRequest struct {
	FromAccountID string `json:"fromAccountId" validate:"required,max=64"`
	ToAccountID   string `json:"toAccountId" validate:"required,max=64"`
	Amount        int64  `json:"amount" validate:"required,gt=0"`
	Reference     string `json:"reference" validate:"omitempty,max=64"`
}

// CardAuthorizationRequest is the validated boundary struct for the card
// authorization stub.
type CardAuthorizationRequest struct {
	CardToken  string `json:"cardToken" validate:"required,max=64"`
	TerminalID string `json:"terminalId" validate:"required,max=64"`
	Amount     int64  `json:"amount" validate:"required,gt=0"`
	Currency   string `json:"currency" validate:"required,len=3"`
}
