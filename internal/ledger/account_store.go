package ledger

import (
	"strings"
	"sync"
	"time"

	"github.com/pocketbank/backend/internal/models"
)

// AccountStore owns every account record and is the exclusive mutation path
// for balances. Each account carries its own mutex so independent accounts
// never contend; the store-level RWMutex only guards the index itself.
type AccountStore struct {
	mu       sync.RWMutex
	accounts map[string]*accountEntry
	order    []string // insertion order for List
}

type accountEntry struct {
	mu   sync.Mutex
	acct models.Account
}

func NewAccountStore() *AccountStore {
	return &AccountStore{
		accounts: make(map[string]*accountEntry),
	}
}

// Open creates an account with zero balance and ACTIVE status. The account id
// is supplied by the caller; id generation policy lives outside the ledger.
func (s *AccountStore) Open(id, ownerUserID, displayName, currency string) (models.Account, error) {
	if strings.TrimSpace(id) == "" {
		return models.Account{}, InvalidArgumentf("account id is required")
	}
	if strings.TrimSpace(ownerUserID) == "" {
		return models.Account{}, InvalidArgumentf("owner user id is required")
	}
	if strings.TrimSpace(displayName) == "" {
		return models.Account{}, InvalidArgumentf("display name is required")
	}
	if strings.TrimSpace(currency) == "" {
		return models.Account{}, InvalidArgumentf("currency is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[id]; exists {
		return models.Account{}, InvalidArgumentf("account %s already exists", id)
	}

	now := time.Now()
	entry := &accountEntry{
		acct: models.Account{
			ID:          id,
			OwnerUserID: ownerUserID,
			DisplayName: displayName,
			Currency:    strings.ToUpper(currency),
			Balance:     0,
			Status:      models.AccountStatusActive,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
	}
	s.accounts[id] = entry
	s.order = append(s.order, id)

	return entry.acct, nil
}

// Get returns a snapshot of the account. Callers never see internal pointers.
func (s *AccountStore) Get(id string) (models.Account, error) {
	entry, err := s.lookup(id)
	if err != nil {
		return models.Account{}, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.acct, nil
}

// List returns snapshots of all accounts in insertion order, closed and
// halted accounts included.
func (s *AccountStore) List() []models.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Account, 0, len(s.order))
	for _, id := range s.order {
		entry := s.accounts[id]
		entry.mu.Lock()
		out = append(out, entry.acct)
		entry.mu.Unlock()
	}
	return out
}

// AdjustBalance applies a signed delta under the account's exclusive lock and
// fails with ErrInsufficientFunds when the resulting balance would drop below
// minBalance (normally 0; negative when overdraft is configured). A closed
// account behaves as missing; a halted account refuses all movement.
func (s *AccountStore) AdjustBalance(id string, delta, minBalance int64) (int64, error) {
	entry, err := s.lookup(id)
	if err != nil {
		return 0, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	switch entry.acct.Status {
	case models.AccountStatusClosed:
		return 0, ErrNotFound
	case models.AccountStatusHalted:
		return 0, ErrAccountHalted
	}

	next := entry.acct.Balance + delta
	if next < minBalance {
		return 0, ErrInsufficientFunds
	}

	entry.acct.Balance = next
	entry.acct.UpdatedAt = time.Now()
	return next, nil
}

// Close flips the account to CLOSED. Accounts are never deleted, so the
// transaction history they appear in stays resolvable.
func (s *AccountStore) Close(id string) error {
	entry, err := s.lookup(id)
	if err != nil {
		return err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if entry.acct.Status == models.AccountStatusHalted {
		return ErrAccountHalted
	}
	entry.acct.Status = models.AccountStatusClosed
	entry.acct.UpdatedAt = time.Now()
	return nil
}

// Halt freezes the account for manual reconciliation. Only the ledger engine
// calls this, on a failed transfer compensation.
func (s *AccountStore) Halt(id string) error {
	entry, err := s.lookup(id)
	if err != nil {
		return err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	entry.acct.Status = models.AccountStatusHalted
	entry.acct.UpdatedAt = time.Now()
	return nil
}

func (s *AccountStore) lookup(id string) (*accountEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.accounts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return entry, nil
}
