package services

import (
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pocketbank/backend/internal/ledger"
	"github.com/pocketbank/backend/internal/models"
)

// AccountService exposes account lifecycle operations over HTTP. It owns id
// generation for new accounts; the ledger only ever sees pre-generated ids.
type AccountService struct {
	store     *ledger.AccountStore
	validator *ValidationHelper
}

func NewAccountService(store *ledger.AccountStore) *AccountService {
	return &AccountService{
		store:     store,
		validator: NewValidationHelper(),
	}
}

// OpenAccount creates a new account
// @Summary Open a new account
// @Description Open a balance-bearing account for a user
// @Tags accounts
// @Accept json
// @Produce json
// @Param account body models.OpenAccountRequest true "Account data"
// @Success 201 {object} models.Account
// @Failure 400 {object} ErrorResponse
// @Router /accounts [post]
func (as *AccountService) OpenAccount(w http.ResponseWriter, r *http.Request) {
	var req models.OpenAccountRequest
	if err := DecodeJSONBody(w, r, &req); err != nil {
		SendErrorResponse(w, err.Error(), http.StatusBadRequest, nil)
		return
	}

	if err := as.validator.ValidateStruct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	accountID := uuid.NewString()
	account, err := as.store.Open(accountID, req.OwnerUserID, req.DisplayName, req.Currency)
	if err != nil {
		log.Printf("[ACCOUNT] open failed for user %s: %v", req.OwnerUserID, err)
		SendLedgerError(w, err)
		return
	}

	log.Printf("[ACCOUNT] opened %s for user %s", account.ID, account.OwnerUserID)
	SendJSON(w, http.StatusCreated, account)
}

// GetAccount retrieves a single account
// @Summary Get account by ID
// @Tags accounts
// @Produce json
// @Param accountId path string true "Account ID"
// @Success 200 {object} models.Account
// @Failure 404 {object} ErrorResponse
// @Router /accounts/{accountId} [get]
func (as *AccountService) GetAccount(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountId")

	account, err := as.store.Get(accountID)
	if err != nil {
		SendLedgerError(w, err)
		return
	}

	SendJSON(w, http.StatusOK, account)
}

// ListAccounts returns all accounts in insertion order
// @Summary List accounts
// @Tags accounts
// @Produce json
// @Success 200 {object} object{accounts=[]models.Account,count=int}
// @Router /accounts [get]
func (as *AccountService) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts := as.store.List()
	SendJSON(w, http.StatusOK, map[string]any{
		"accounts": accounts,
		"count":    len(accounts),
	})
}

// CloseAccount flips an account to CLOSED
// @Summary Close an account
// @Tags accounts
// @Produce json
// @Param accountId path string true "Account ID"
// @Success 200 {object} models.Account
// @Failure 404 {object} ErrorResponse
// @Router /accounts/{accountId}/close [put]
func (as *AccountService) CloseAccount(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountId")

	if err := as.store.Close(accountID); err != nil {
		log.Printf("[ACCOUNT] close failed for %s: %v", accountID, err)
		SendLedgerError(w, err)
		return
	}

	account, err := as.store.Get(accountID)
	if err != nil {
		SendLedgerError(w, err)
		return
	}

	log.Printf("[ACCOUNT] closed %s", accountID)
	SendJSON(w, http.StatusOK, account)
}

// BalanceEnquiry retrieves the balance for an account
// @Summary Get account balance
// @Tags accounts
// @Produce json
// @Param accountId query string true "Account ID"
// @Success 200 {object} object{responseCode=string,accountId=string,availableBalance=int64,currency=string,status=string}
// @Failure 404 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /accounts/balance-enquiry [get]
func (as *AccountService) BalanceEnquiry(w http.ResponseWriter, r *http.Request) {
	accountID := strings.TrimSpace(r.URL.Query().Get("accountId"))
	if accountID == "" {
		SendErrorResponse(w, "accountId is required", http.StatusBadRequest, nil)
		return
	}

	account, err := as.store.Get(accountID)
	if err != nil {
		SendLedgerError(w, err)
		return
	}

	if account.Status != models.AccountStatusActive {
		SendErrorResponse(w, "Account not active", http.StatusForbidden, nil)
		return
	}

	SendJSON(w, http.StatusOK, map[string]any{
		"responseCode":     "00",
		"accountId":        account.ID,
		"availableBalance": account.Balance,
		"currency":         account.Currency,
		"status":           "SUCCESS",
	})
}
