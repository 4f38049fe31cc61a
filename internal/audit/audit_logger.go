package audit

import (
	"encoding/json"
	"log"
	"time"
)

type Event struct {
	Timestamp     time.Time `json:"timestamp"`
	EventType     string    `json:"event_type"`
	TransactionID string    `json:"transaction_id,omitempty"`
	AccountID     string    `json:"account_id,omitempty"`
	UserID        string    `json:"user_id,omitempty"`
	Amount        int64     `json:"amount,omitempty"`
	Status        string    `json:"status"`
	Details       any       `json:"details,omitempty"`
}

// Logger writes structured JSON audit events to the process log. Every
// transfer outcome, reversal and halt leaves a trace here in addition to the
// transaction log.
type Logger struct{}

func NewLogger() *Logger {
	return &Logger{}
}

func (a *Logger) LogTransfer(transactionID, fromAccount, toAccount string, amount int64, status string) {
	a.log(Event{
		Timestamp:     time.Now(),
		EventType:     "TRANSFER",
		TransactionID: transactionID,
		Amount:        amount,
		Status:        status,
		Details: map[string]string{
			"from_account": fromAccount,
			"to_account":   toAccount,
		},
	})
}

func (a *Logger) LogAuthorization(transactionID, terminalID string, amount int64) {
	a.log(Event{
		Timestamp:     time.Now(),
		EventType:     "CARD_AUTHORIZATION",
		TransactionID: transactionID,
		Amount:        amount,
		Status:        "APPROVED",
		Details:       map[string]string{"terminal_id": terminalID},
	})
}

func (a *Logger) LogAlertDrain(userID string, count int) {
	a.log(Event{
		Timestamp: time.Now(),
		EventType: "ALERT_DRAIN",
		UserID:    userID,
		Status:    "DELIVERED",
		Details:   map[string]int{"count": count},
	})
}

func (a *Logger) LogError(transactionID, accountID string, err error) {
	a.log(Event{
		Timestamp:     time.Now(),
		EventType:     "ERROR",
		TransactionID: transactionID,
		AccountID:     accountID,
		Status:        "FAILED",
		Details:       map[string]string{"error": err.Error()},
	})
}

func (a *Logger) log(event Event) {
	data, _ := json.Marshal(event)
	log.Printf("AUDIT: %s", string(data))
}
