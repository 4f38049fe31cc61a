package ledger

import (
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"github.com/pocketbank/backend/internal/models"
)

// BalanceStore is what the engine needs from the account store. AccountStore
// satisfies it; tests substitute failing stores to drive the compensation
// paths.
type BalanceStore interface {
	Get(id string) (models.Account, error)
	AdjustBalance(id string, delta, minBalance int64) (int64, error)
	Halt(id string) error
}

// Notifier receives alerts for transfer outcomes the account owner must see.
type Notifier interface {
	Push(userID, alertType, message string) models.Alert
}

// EngineConfig controls overdraft policy. With overdraft disabled the debit
// floor is zero; enabled, balances may go as low as -OverdraftLimit.
type EngineConfig struct {
	AllowOverdraft bool
	OverdraftLimit int64
}

// Engine executes transfers as atomic debit/credit pairs against the account
// store and records every outcome in the transaction log. Each call resolves
// synchronously to a terminal status before returning; nothing is ever left
// half-applied at rest.
type Engine struct {
	store  BalanceStore
	txlog  *TransactionLog
	alerts Notifier

	minBalance int64

	// Per-account transfer locks, acquired in lexicographic id order so
	// opposite-direction transfers over the same pair cannot deadlock.
	lockMu sync.Mutex
	locks  map[string]*sync.Mutex
}

func NewEngine(store BalanceStore, txlog *TransactionLog, alerts Notifier, cfg EngineConfig) *Engine {
	minBalance := int64(0)
	if cfg.AllowOverdraft {
		minBalance = -cfg.OverdraftLimit
	}
	return &Engine{
		store:      store,
		txlog:      txlog,
		alerts:     alerts,
		minBalance: minBalance,
		locks:      make(map[string]*sync.Mutex),
	}
}

// Transfer moves amount from one account to another. Insufficient funds is a
// business outcome, not an engine fault: the call returns a FAILED
// transaction with a nil error and queues an alert for the sender. Engine
// errors (bad input, unknown account, inconsistency) come back as typed
// errors per errors.go.
func (e *Engine) Transfer(id, fromID, toID string, amount int64) (models.Transaction, error) {
	if id == "" {
		return models.Transaction{}, InvalidArgumentf("transaction id is required")
	}
	if amount <= 0 {
		return models.Transaction{}, InvalidArgumentf("amount must be positive, got %d", amount)
	}
	if fromID == "" || toID == "" {
		return models.Transaction{}, InvalidArgumentf("both account ids are required")
	}
	if fromID == toID {
		return models.Transaction{}, InvalidArgumentf("cannot transfer to the same account")
	}
	if _, err := e.txlog.Get(id); err == nil {
		return models.Transaction{}, InvalidArgumentf("transaction %s already recorded", id)
	}

	from, err := e.store.Get(fromID)
	if err != nil {
		return models.Transaction{}, err
	}
	to, err := e.store.Get(toID)
	if err != nil {
		return models.Transaction{}, err
	}
	if from.Status != models.AccountStatusActive {
		return models.Transaction{}, fmt.Errorf("source account %s: %w", fromID, statusErr(from.Status))
	}
	if to.Status != models.AccountStatusActive {
		return models.Transaction{}, fmt.Errorf("destination account %s: %w", toID, statusErr(to.Status))
	}
	if from.Currency != to.Currency {
		return models.Transaction{}, InvalidArgumentf("currency mismatch: %s vs %s", from.Currency, to.Currency)
	}

	// Lock both accounts for the critical section, lexicographic order first.
	first, second := fromID, toID
	if fromID > toID {
		first, second = toID, fromID
	}
	firstLock := e.accountLock(first)
	secondLock := e.accountLock(second)
	firstLock.Lock()
	defer firstLock.Unlock()
	secondLock.Lock()
	defer secondLock.Unlock()

	tx := models.Transaction{
		ID:            id,
		Type:          models.TransactionTypeTransfer,
		FromAccountID: fromID,
		ToAccountID:   toID,
		Amount:        amount,
		Currency:      from.Currency,
		CreatedAt:     time.Now(),
	}

	if _, err := e.store.AdjustBalance(fromID, -amount, e.minBalance); err != nil {
		tx.Status = models.TransactionStatusFailed
		tx.FailureReason = err.Error()
		tx = e.txlog.Append(tx)

		if IsInsufficientFunds(err) {
			log.Printf("[LEDGER] transfer %s failed: insufficient funds on %s", id, fromID)
			e.alerts.Push(from.OwnerUserID, models.AlertTypeTransferFailed,
				fmt.Sprintf("Transfer of %d %s to %s failed: insufficient funds", amount, tx.Currency, toID))
			return tx, nil
		}
		// Account vanished or was frozen between validation and debit.
		log.Printf("[LEDGER] transfer %s failed: debit on %s: %v", id, fromID, err)
		e.alerts.Push(from.OwnerUserID, models.AlertTypeTransferFailed,
			fmt.Sprintf("Transfer of %d %s to %s failed", amount, tx.Currency, toID))
		return tx, err
	}

	if _, err := e.store.AdjustBalance(toID, amount, math.MinInt64); err != nil {
		// Credit failed after a successful debit (e.g. destination closed
		// mid-flight). Compensate the debit before reporting failure.
		log.Printf("[LEDGER] transfer %s: credit on %s failed (%v), compensating %s", id, toID, err, fromID)

		if _, cerr := e.store.AdjustBalance(fromID, amount, math.MinInt64); cerr != nil {
			// Compensation must not fail silently: halt the source account so
			// no funds can move until an operator reconciles it.
			haltErr := e.store.Halt(fromID)
			log.Printf("[LEDGER] transfer %s: COMPENSATION FAILED on %s (%v), halted (halt err: %v)", id, fromID, cerr, haltErr)

			tx.Status = models.TransactionStatusFailed
			tx.FailureReason = fmt.Sprintf("credit failed: %v; compensation failed: %v", err, cerr)
			tx = e.txlog.Append(tx)

			e.alerts.Push(from.OwnerUserID, models.AlertTypeAccountHalted,
				fmt.Sprintf("Account %s halted pending reconciliation of transfer %s", fromID, id))
			return tx, fmt.Errorf("transfer %s: %w", id, ErrInternalInconsistency)
		}

		tx.Status = models.TransactionStatusFailed
		tx.FailureReason = fmt.Sprintf("credit failed: %v", err)
		tx = e.txlog.Append(tx)

		e.alerts.Push(from.OwnerUserID, models.AlertTypeTransferReversed,
			fmt.Sprintf("Transfer of %d %s to %s failed and was reversed", amount, tx.Currency, toID))
		return tx, nil
	}

	now := time.Now()
	tx.Status = models.TransactionStatusSettled
	tx.SettledAt = &now
	tx = e.txlog.Append(tx)

	log.Printf("[LEDGER] transfer %s settled: %s -> %s, amount %d %s", id, fromID, toID, amount, tx.Currency)
	return tx, nil
}

// AuthorizeCard records a card authorization without touching any account
// balance. It always approves; a real card-network integration would replace
// this stub.
func (e *Engine) AuthorizeCard(id, cardToken, terminalID string, amount int64, currency string) (models.Transaction, error) {
	if id == "" {
		return models.Transaction{}, InvalidArgumentf("transaction id is required")
	}
	if cardToken == "" || terminalID == "" {
		return models.Transaction{}, InvalidArgumentf("card token and terminal id are required")
	}
	if amount <= 0 {
		return models.Transaction{}, InvalidArgumentf("amount must be positive, got %d", amount)
	}
	if _, err := e.txlog.Get(id); err == nil {
		return models.Transaction{}, InvalidArgumentf("transaction %s already recorded", id)
	}

	now := time.Now()
	tx := e.txlog.Append(models.Transaction{
		ID:        id,
		Type:      models.TransactionTypeCardAuthorization,
		Amount:    amount,
		Currency:  currency,
		Reference: terminalID,
		Status:    models.TransactionStatusSettled,
		CreatedAt: now,
		SettledAt: &now,
	})

	log.Printf("[LEDGER] card authorization %s approved: terminal %s, amount %d %s", id, terminalID, amount, currency)
	return tx, nil
}

// ListTransactions returns the full log, or only transactions referencing the
// given account on either side, in append order.
func (e *Engine) ListTransactions(accountID string) []models.Transaction {
	if accountID == "" {
		return e.txlog.All()
	}
	return e.txlog.Query(accountID)
}

func (e *Engine) accountLock(id string) *sync.Mutex {
	e.lockMu.Lock()
	defer e.lockMu.Unlock()

	m, ok := e.locks[id]
	if !ok {
		m = &sync.Mutex{}
		e.locks[id] = m
	}
	return m
}

func statusErr(status string) error {
	if status == models.AccountStatusHalted {
		return ErrAccountHalted
	}
	return ErrNotFound
}
