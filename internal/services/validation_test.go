package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pocketbank/backend/internal/ledger"
	"github.com/pocketbank/backend/internal/models"
)

func TestValidationHelper_ValidateStruct(t *testing.T) {
	vh := NewValidationHelper()

	tests := []struct {
		name    string
		req     models.TransferRequest
		wantErr bool
	}{
		{
			name: "valid request",
			req: models.TransferRequest{
				FromAccountID: "acct-a",
				ToAccountID:   "acct-b",
				Amount:        100,
			},
			wantErr: false,
		},
		{
			name: "missing from account",
			req: models.TransferRequest{
				ToAccountID: "acct-b",
				Amount:      100,
			},
			wantErr: true,
		},
		{
			name: "non-positive amount",
			req: models.TransferRequest{
				FromAccountID: "acct-a",
				ToAccountID:   "acct-b",
				Amount:        0,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := vh.ValidateStruct(&tt.req)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDecodeJSONBody(t *testing.T) {
	decodeBody := func(body string) error {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		var dst models.TransferRequest
		return DecodeJSONBody(httptest.NewRecorder(), req, &dst)
	}

	t.Run("valid body", func(t *testing.T) {
		err := decodeBody(`{"fromAccountId":"a","toAccountId":"b","amount":100}`)
		assert.NoError(t, err)
	})

	t.Run("unknown field", func(t *testing.T) {
		err := decodeBody(`{"fromAccountId":"a","surprise":true}`)
		assert.Error(t, err)
	})

	t.Run("trailing content", func(t *testing.T) {
		err := decodeBody(`{"fromAccountId":"a"}{"fromAccountId":"b"}`)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "single JSON object")
	})

	t.Run("malformed JSON", func(t *testing.T) {
		err := decodeBody(`{"fromAccountId":`)
		assert.Error(t, err)
	})
}

func TestSendErrorResponse(t *testing.T) {
	vh := NewValidationHelper()

	rec := httptest.NewRecorder()
	validationErr := vh.ValidateStruct(&models.TransferRequest{})
	require.Error(t, validationErr)

	SendErrorResponse(rec, "Validation failed", http.StatusBadRequest, validationErr)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Validation failed", resp.Error)
	assert.Contains(t, resp.Details, "FromAccountID")
	assert.Contains(t, resp.Details, "Amount")
}

func TestSendLedgerError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"invalid argument", ledger.InvalidArgumentf("bad input"), http.StatusBadRequest},
		{"not found", ledger.ErrNotFound, http.StatusNotFound},
		{"transaction not found", ledger.ErrTransactionNotFound, http.StatusNotFound},
		{"halted", ledger.ErrAccountHalted, http.StatusConflict},
		{"inconsistency", ledger.ErrInternalInconsistency, http.StatusInternalServerError},
		{"unclassified", assert.AnError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			SendLedgerError(rec, tt.err)
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}
