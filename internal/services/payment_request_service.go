package services

import (
	"bytes"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image/png"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/skip2/go-qrcode"

	"github.com/pocketbank/backend/internal/config"
	"github.com/pocketbank/backend/internal/ledger"
)

// PaymentRequestService issues scannable payment requests: a short-lived
// token bound to a destination account and amount, rendered as a QR image.
// Resolving a token consumes it and yields ready-to-submit transfer
// parameters.
type PaymentRequestService struct {
	store     *ledger.AccountStore
	redis     *redis.Client
	cfg       *config.LedgerConfig
	validator *ValidationHelper
}

func NewPaymentRequestService(store *ledger.AccountStore, redisClient *redis.Client, cfg *config.LedgerConfig) *PaymentRequestService {
	return &PaymentRequestService{
		store:     store,
		redis:     redisClient,
		cfg:       cfg,
		validator: NewValidationHelper(),
	}
}

// PaymentRequest is the boundary struct for payment request creation.
type PaymentRequest struct {
	ToAccountID string `json:"toAccountId" validate:"required,max=64"`
	Amount      int64  `json:"amount" validate:"required,gt=0"`
}

// ResolveRequest is the boundary struct for token resolution.
type ResolveRequest struct {
	Token string `json:"token" validate:"required,max=200"`
}

type paymentRequestPayload struct {
	ToAccountID string `json:"toAccountId"`
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	IssuedAt    int64  `json:"issuedAt"`
	Nonce       string `json:"nonce"`
}

// CreatePaymentRequest issues a QR payment request
// @Summary Create a payment request
// @Description Issue a short-lived token and QR image for receiving a transfer into an account
// @Tags payment-requests
// @Accept json
// @Produce json
// @Param request body PaymentRequest true "Payment request data"
// @Success 201 {object} object{token=string,qrImage=string,expiresAt=string}
// @Failure 400 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /payment-requests [post]
func (ps *PaymentRequestService) CreatePaymentRequest(w http.ResponseWriter, r *http.Request) {
	if ps.redis == nil {
		SendErrorResponse(w, "Payment requests unavailable", http.StatusServiceUnavailable, nil)
		return
	}

	var req PaymentRequest
	if err := DecodeJSONBody(w, r, &req); err != nil {
		SendErrorResponse(w, err.Error(), http.StatusBadRequest, nil)
		return
	}

	if err := ps.validator.ValidateStruct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	account, err := ps.store.Get(req.ToAccountID)
	if err != nil {
		SendLedgerError(w, err)
		return
	}

	payload := paymentRequestPayload{
		ToAccountID: account.ID,
		Amount:      req.Amount,
		Currency:    account.Currency,
		IssuedAt:    time.Now().Unix(),
		Nonce:       generateNonce(),
	}
	data, err := json.Marshal(payload)
	if err != nil {
		SendErrorResponse(w, "Failed to create payment request", http.StatusInternalServerError, nil)
		return
	}

	token := base64.URLEncoding.EncodeToString(data)
	key := paymentRequestKey(token)
	if err := ps.redis.Set(r.Context(), key, data, ps.cfg.PaymentRequestTTL).Err(); err != nil {
		SendErrorResponse(w, "Failed to store payment request", http.StatusInternalServerError, nil)
		return
	}

	qr, err := qrcode.New(token, qrcode.Medium)
	if err != nil {
		SendErrorResponse(w, "Failed to render QR code", http.StatusInternalServerError, nil)
		return
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, qr.Image(256)); err != nil {
		SendErrorResponse(w, "Failed to render QR code", http.StatusInternalServerError, nil)
		return
	}

	SendJSON(w, http.StatusCreated, map[string]any{
		"token":     token,
		"qrImage":   base64.StdEncoding.EncodeToString(buf.Bytes()),
		"expiresAt": time.Now().Add(ps.cfg.PaymentRequestTTL).UTC().Format(time.RFC3339),
	})
}

// ResolvePaymentRequest consumes a token
// @Summary Resolve a payment request
// @Description Consume a payment-request token and return the transfer parameters it encodes
// @Tags payment-requests
// @Accept json
// @Produce json
// @Param request body ResolveRequest true "Token to resolve"
// @Success 200 {object} paymentRequestPayload
// @Failure 404 {object} ErrorResponse
// @Router /payment-requests/resolve [post]
func (ps *PaymentRequestService) ResolvePaymentRequest(w http.ResponseWriter, r *http.Request) {
	if ps.redis == nil {
		SendErrorResponse(w, "Payment requests unavailable", http.StatusServiceUnavailable, nil)
		return
	}

	var req ResolveRequest
	if err := DecodeJSONBody(w, r, &req); err != nil {
		SendErrorResponse(w, err.Error(), http.StatusBadRequest, nil)
		return
	}

	if err := ps.validator.ValidateStruct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	key := paymentRequestKey(req.Token)
	data, err := ps.redis.Get(r.Context(), key).Bytes()
	if err == redis.Nil {
		SendErrorResponse(w, "Invalid or expired payment request", http.StatusNotFound, nil)
		return
	}
	if err != nil {
		SendErrorResponse(w, "Failed to resolve payment request", http.StatusInternalServerError, nil)
		return
	}

	var payload paymentRequestPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		SendErrorResponse(w, "Failed to resolve payment request", http.StatusInternalServerError, nil)
		return
	}

	// One-shot token: consumed on first successful resolve.
	ps.redis.Del(r.Context(), key)

	SendJSON(w, http.StatusOK, payload)
}

func paymentRequestKey(token string) string {
	return fmt.Sprintf("payreq:%s", token)
}

func generateNonce() string {
	b := make([]byte, 16)
	rand.Read(b)
	return base64.URLEncoding.EncodeToString(b)
}
