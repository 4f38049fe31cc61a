package ledger

import (
	"errors"
	"sync"

	"github.com/pocketbank/backend/internal/models"
)

var ErrTransactionNotFound = errors.New("transaction not found")

// TransactionLog is the append-only record of all transfers and card
// authorizations. Append assigns a monotonically increasing sequence number
// used as the ordering tie-break when timestamps collide.
type TransactionLog struct {
	mu      sync.Mutex
	seq     uint64
	entries []models.Transaction
	byID    map[string]int
}

func NewTransactionLog() *TransactionLog {
	return &TransactionLog{
		byID: make(map[string]int),
	}
}

// Append records the transaction and returns it with its assigned sequence
// number. Entries are immutable once appended.
func (l *TransactionLog) Append(tx models.Transaction) models.Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.seq++
	tx.Seq = l.seq
	l.byID[tx.ID] = len(l.entries)
	l.entries = append(l.entries, tx)
	return tx
}

// Get returns the transaction with the given id.
func (l *TransactionLog) Get(id string) (models.Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx, ok := l.byID[id]
	if !ok {
		return models.Transaction{}, ErrTransactionNotFound
	}
	return l.entries[idx], nil
}

// Query returns all transactions referencing the account on either side, in
// append order.
func (l *TransactionLog) Query(accountID string) []models.Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := []models.Transaction{}
	for _, tx := range l.entries {
		if tx.FromAccountID == accountID || tx.ToAccountID == accountID {
			out = append(out, tx)
		}
	}
	return out
}

// All returns every transaction in append order.
func (l *TransactionLog) All() []models.Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]models.Transaction, len(l.entries))
	copy(out, l.entries)
	return out
}
