package ledger

import (
	"errors"
	"fmt"
)

// Error taxonomy surfaced across the ledger boundary. Callers match with
// errors.Is; the HTTP shell maps these to status codes.
var (
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrNotFound          = errors.New("account not found")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrAccountHalted     = errors.New("account halted for reconciliation")
	// ErrInternalInconsistency means a credit failed after a successful debit
	// and the compensating credit also failed. The source account is halted
	// so no funds can be lost before manual reconciliation.
	ErrInternalInconsistency = errors.New("internal ledger inconsistency")
)

// InvalidArgumentf wraps ErrInvalidArgument with a caller-facing detail.
func InvalidArgumentf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidArgument}, args...)...)
}

func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsInsufficientFunds(err error) bool {
	return errors.Is(err, ErrInsufficientFunds)
}
