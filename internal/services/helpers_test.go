package services

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pocketbank/backend/internal/alerts"
	"github.com/pocketbank/backend/internal/config"
	"github.com/pocketbank/backend/internal/ledger"
)

// testEnv wires the full service stack against in-memory stores, mirroring
// the production router so handler tests exercise real routing and URL
// params.
type testEnv struct {
	store  *ledger.AccountStore
	txlog  *ledger.TransactionLog
	queue  *alerts.Queue
	engine *ledger.Engine
	cfg    *config.LedgerConfig
	router *chi.Mux
}

func newTestEnv(t *testing.T, redisClient *redis.Client) *testEnv {
	t.Helper()

	cfg := &config.LedgerConfig{
		FundingAccountID:   "treasury-0001",
		FundingUserID:      "system",
		FundingFloat:       1_000_000,
		SettlementQueueKey: "settlement_queue",
		PaymentRequestTTL:  5 * time.Minute,
	}

	store := ledger.NewAccountStore()
	txlog := ledger.NewTransactionLog()
	queue := alerts.NewQueue(alerts.NewMemoryChannelStore(), uuid.NewString)
	engine := ledger.NewEngine(store, txlog, queue, ledger.EngineConfig{})

	_, err := store.Open(cfg.FundingAccountID, cfg.FundingUserID, "Treasury", "USD")
	require.NoError(t, err)
	_, err = store.AdjustBalance(cfg.FundingAccountID, cfg.FundingFloat, math.MinInt64)
	require.NoError(t, err)

	accountService := NewAccountService(store)
	transferService := NewTransferService(engine, txlog, redisClient, cfg)
	alertService := NewAlertService(queue)
	paymentRequestService := NewPaymentRequestService(store, redisClient, cfg)
	settlementService := NewSettlementService(txlog)

	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/accounts", accountService.OpenAccount)
		r.Get("/accounts", accountService.ListAccounts)
		r.Get("/accounts/balance-enquiry", accountService.BalanceEnquiry)
		r.Get("/accounts/{accountId}", accountService.GetAccount)
		r.Put("/accounts/{accountId}/close", accountService.CloseAccount)

		r.Post("/transfers", transferService.CreateTransfer)
		r.Post("/deposits", transferService.Deposit)
		r.Post("/cards/authorize", transferService.AuthorizeCard)
		r.Get("/transactions", transferService.ListTransactions)
		r.Get("/transactions/{txId}", transferService.GetTransaction)

		r.Post("/alerts/poll", alertService.PollAlerts)
		r.Post("/alerts/subscribe", alertService.Subscribe)
		r.Get("/alerts/channels", alertService.ListChannels)

		r.Post("/payment-requests", paymentRequestService.CreatePaymentRequest)
		r.Post("/payment-requests/resolve", paymentRequestService.ResolvePaymentRequest)

		r.Post("/settlement/convert", settlementService.ConvertTransaction)
	})

	return &testEnv{
		store:  store,
		txlog:  txlog,
		queue:  queue,
		engine: engine,
		cfg:    cfg,
		router: r,
	}
}

// do executes a request against the test router. A nil body sends an empty
// request; otherwise body is JSON-encoded.
func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

// decode unmarshals the recorded JSON response body into dst.
func decode(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst))
}

// openAccount creates an account through the API and returns its id.
func (e *testEnv) openAccount(t *testing.T, ownerUserID, displayName string) string {
	t.Helper()

	rec := e.do(t, http.MethodPost, "/api/v1/accounts", map[string]any{
		"ownerUserId": ownerUserID,
		"displayName": displayName,
		"currency":    "USD",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		ID string `json:"id"`
	}
	decode(t, rec, &resp)
	require.NotEmpty(t, resp.ID)
	return resp.ID
}

// deposit funds an account from the treasury through the API.
func (e *testEnv) deposit(t *testing.T, accountID string, amount int64) {
	t.Helper()

	rec := e.do(t, http.MethodPost, "/api/v1/deposits", map[string]any{
		"accountId": accountID,
		"amount":    amount,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}
