package services

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/pocketbank/backend/internal/audit"
	"github.com/pocketbank/backend/internal/config"
	"github.com/pocketbank/backend/internal/ledger"
	"github.com/pocketbank/backend/internal/models"
)

// TransferService exposes transfer execution, deposits from the treasury
// account, the card-authorization stub and transaction queries over HTTP.
type TransferService struct {
	engine    *ledger.Engine
	txlog     *ledger.TransactionLog
	redis     *redis.Client
	cfg       *config.LedgerConfig
	audit     *audit.Logger
	validator *ValidationHelper
}

func NewTransferService(engine *ledger.Engine, txlog *ledger.TransactionLog, redisClient *redis.Client, cfg *config.LedgerConfig) *TransferService {
	return &TransferService{
		engine:    engine,
		txlog:     txlog,
		redis:     redisClient,
		cfg:       cfg,
		audit:     audit.NewLogger(),
		validator: NewValidationHelper(),
	}
}

// DepositRequest is the boundary struct for treasury-funded deposits.
type DepositRequest struct {
	AccountID string `json:"accountId" validate:"required,max=64"`
	Amount    int64  `json:"amount" validate:"required,gt=0"`
}

// CreateTransfer executes a transfer between two accounts
// @Summary Create a transfer
// @Description Execute an atomic debit/credit transfer. Insufficient funds is reported as a FAILED transaction, not an error.
// @Tags transfers
// @Accept json
// @Produce json
// @Param transfer body models.TransferRequest true "Transfer data"
// @Success 201 {object} models.Transaction
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /transfers [post]
func (ts *TransferService) CreateTransfer(w http.ResponseWriter, r *http.Request) {
	var req models.TransferRequest
	if err := DecodeJSONBody(w, r, &req); err != nil {
		SendErrorResponse(w, err.Error(), http.StatusBadRequest, nil)
		return
	}

	if err := ts.validator.ValidateStruct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	txID := uuid.NewString()
	tx, err := ts.engine.Transfer(txID, req.FromAccountID, req.ToAccountID, req.Amount)
	if err != nil {
		ts.audit.LogError(txID, req.FromAccountID, err)
		SendLedgerError(w, err)
		return
	}

	ts.audit.LogTransfer(tx.ID, tx.FromAccountID, tx.ToAccountID, tx.Amount, tx.Status)

	if tx.Status == models.TransactionStatusSettled {
		ts.queueForSettlement(r.Context(), &tx)
	}

	SendJSON(w, http.StatusCreated, tx)
}

// Deposit credits an account from the configured treasury account
// @Summary Deposit into an account
// @Description Model a cash-in as a transfer from the treasury funding account
// @Tags transfers
// @Accept json
// @Produce json
// @Param deposit body DepositRequest true "Deposit data"
// @Success 201 {object} models.Transaction
// @Failure 400 {object} ErrorResponse
// @Router /deposits [post]
func (ts *TransferService) Deposit(w http.ResponseWriter, r *http.Request) {
	var req DepositRequest
	if err := DecodeJSONBody(w, r, &req); err != nil {
		SendErrorResponse(w, err.Error(), http.StatusBadRequest, nil)
		return
	}

	if err := ts.validator.ValidateStruct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	txID := uuid.NewString()
	tx, err := ts.engine.Transfer(txID, ts.cfg.FundingAccountID, req.AccountID, req.Amount)
	if err != nil {
		ts.audit.LogError(txID, ts.cfg.FundingAccountID, err)
		SendLedgerError(w, err)
		return
	}

	ts.audit.LogTransfer(tx.ID, tx.FromAccountID, tx.ToAccountID, tx.Amount, tx.Status)
	SendJSON(w, http.StatusCreated, tx)
}

// AuthorizeCard records a card authorization
// @Summary Authorize a card payment
// @Description Card-network stub: records a settled authorization, always approves, moves no balance
// @Tags cards
// @Accept json
// @Produce json
// @Param authorization body models.CardAuthorizationRequest true "Authorization data"
// @Success 201 {object} models.Transaction
// @Failure 400 {object} ErrorResponse
// @Router /cards/authorize [post]
func (ts *TransferService) AuthorizeCard(w http.ResponseWriter, r *http.Request) {
	var req models.CardAuthorizationRequest
	if err := DecodeJSONBody(w, r, &req); err != nil {
		SendErrorResponse(w, err.Error(), http.StatusBadRequest, nil)
		return
	}

	if err := ts.validator.ValidateStruct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	txID := uuid.NewString()
	tx, err := ts.engine.AuthorizeCard(txID, req.CardToken, req.TerminalID, req.Amount, req.Currency)
	if err != nil {
		SendLedgerError(w, err)
		return
	}

	ts.audit.LogAuthorization(tx.ID, req.TerminalID, tx.Amount)
	SendJSON(w, http.StatusCreated, tx)
}

// ListTransactions returns transactions, optionally filtered by account
// @Summary List transactions
// @Tags transactions
// @Produce json
// @Param accountId query string false "Filter to transactions touching this account"
// @Success 200 {object} object{transactions=[]models.Transaction,count=int}
// @Router /transactions [get]
func (ts *TransferService) ListTransactions(w http.ResponseWriter, r *http.Request) {
	accountID := r.URL.Query().Get("accountId")
	transactions := ts.engine.ListTransactions(accountID)

	SendJSON(w, http.StatusOK, map[string]any{
		"transactions": transactions,
		"count":        len(transactions),
	})
}

// GetTransaction retrieves a transaction by id
// @Summary Get transaction by ID
// @Tags transactions
// @Produce json
// @Param txId path string true "Transaction ID"
// @Success 200 {object} models.Transaction
// @Failure 404 {object} ErrorResponse
// @Router /transactions/{txId} [get]
func (ts *TransferService) GetTransaction(w http.ResponseWriter, r *http.Request) {
	txID := chi.URLParam(r, "txId")

	tx, err := ts.txlog.Get(txID)
	if err != nil {
		SendLedgerError(w, err)
		return
	}

	SendJSON(w, http.StatusOK, tx)
}

// queueForSettlement pushes the settled transfer onto the Redis settlement
// queue. This runs after the transfer has resolved; the ledger critical
// section never performs I/O.
func (ts *TransferService) queueForSettlement(ctx context.Context, tx *models.Transaction) {
	if ts.redis == nil {
		return
	}

	data, err := json.Marshal(tx)
	if err != nil {
		log.Printf("[TRANSFER] failed to marshal %s for settlement: %v", tx.ID, err)
		return
	}

	if err := ts.redis.RPush(ctx, ts.cfg.SettlementQueueKey, data).Err(); err != nil {
		log.Printf("[TRANSFER] failed to queue %s for settlement: %v", tx.ID, err)
	}
}
