package services

import (
	"encoding/xml"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/moov-io/iso20022/pkg/common"
	"github.com/moov-io/iso20022/pkg/pacs_v08"

	"github.com/pocketbank/backend/internal/ledger"
	"github.com/pocketbank/backend/internal/models"
)

const institutionBIC = "PKTBNKXX"

// SettlementService converts ledger records to ISO 20022 messages for the
// downstream settlement system: pacs.008 credit transfers for settled
// transfers, pacs.002 status reports for card authorizations and failures.
type SettlementService struct {
	txlog     *ledger.TransactionLog
	validator *ValidationHelper
}

func NewSettlementService(txlog *ledger.TransactionLog) *SettlementService {
	return &SettlementService{
		txlog:     txlog,
		validator: NewValidationHelper(),
	}
}

// ConvertRequest names the transaction to convert.
type ConvertRequest struct {
	TransactionID string `json:"transactionId" validate:"required,max=64"`
}

// ConvertTransaction renders a transaction as ISO 20022 XML
// @Summary Convert a transaction to ISO 20022
// @Description Render a settled transfer as pacs.008, anything else as a pacs.002 status report
// @Tags settlement
// @Accept json
// @Produce json
// @Param request body ConvertRequest true "Transaction to convert"
// @Success 200 {object} object{status=string,messageType=string,xml=string}
// @Failure 404 {object} ErrorResponse
// @Router /settlement/convert [post]
func (ss *SettlementService) ConvertTransaction(w http.ResponseWriter, r *http.Request) {
	var req ConvertRequest
	if err := DecodeJSONBody(w, r, &req); err != nil {
		SendErrorResponse(w, err.Error(), http.StatusBadRequest, nil)
		return
	}

	if err := ss.validator.ValidateStruct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	tx, err := ss.txlog.Get(req.TransactionID)
	if err != nil {
		SendLedgerError(w, err)
		return
	}

	var (
		doc         any
		messageType string
	)
	if tx.Type == models.TransactionTypeTransfer && tx.Status == models.TransactionStatusSettled {
		doc, err = ss.CreatePacs008(&tx)
		messageType = "pacs.008.001.08"
	} else {
		doc, err = ss.CreatePacs002(&tx, statusCode(&tx))
		messageType = "pacs.002.001.08"
	}
	if err != nil {
		SendErrorResponse(w, err.Error(), http.StatusInternalServerError, nil)
		return
	}

	xmlData, err := ss.ConvertToXML(doc)
	if err != nil {
		SendErrorResponse(w, err.Error(), http.StatusInternalServerError, nil)
		return
	}

	SendJSON(w, http.StatusOK, map[string]any{
		"status":      "converted",
		"messageType": messageType,
		"xml":         xmlData,
	})
}

// CreatePacs008 builds a pacs.008 FIToFICustomerCreditTransfer for a settled
// transfer. Amounts leave the ledger in minor units and enter the message in
// major units.
func (ss *SettlementService) CreatePacs008(tx *models.Transaction) (*pacs_v08.FIToFICustomerCreditTransferV08, error) {
	if tx.Status != models.TransactionStatusSettled {
		return nil, fmt.Errorf("transaction %s is not settled", tx.ID)
	}

	msgId := uuid.New().String()
	creDtTm := time.Now()
	settlementDate := time.Now()
	amount := float64(tx.Amount) / 100

	endToEnd := tx.Reference
	if endToEnd == "" {
		endToEnd = tx.ID
	}

	doc := &pacs_v08.FIToFICustomerCreditTransferV08{
		GrpHdr: pacs_v08.GroupHeader93{
			MsgId:   common.Max35Text(msgId),
			CreDtTm: common.ISODateTime(creDtTm),
			NbOfTxs: "1",
			TtlIntrBkSttlmAmt: &pacs_v08.ActiveCurrencyAndAmount{
				Ccy:   common.ActiveCurrencyCode(tx.Currency),
				Value: amount,
			},
			IntrBkSttlmDt: (*common.ISODate)(&settlementDate),
			SttlmInf: pacs_v08.SettlementInstruction7{
				SttlmMtd: "CLRG", // Clearing
			},
		},
		CdtTrfTxInf: []pacs_v08.CreditTransferTransaction39{
			{
				PmtId: pacs_v08.PaymentIdentification7{
					InstrId:    &[]common.Max35Text{common.Max35Text(tx.ID)}[0],
					EndToEndId: common.Max35Text(endToEnd),
					TxId:       &[]common.Max35Text{common.Max35Text(tx.ID)}[0],
				},
				IntrBkSttlmAmt: pacs_v08.ActiveCurrencyAndAmount{
					Ccy:   common.ActiveCurrencyCode(tx.Currency),
					Value: amount,
				},
				IntrBkSttlmDt: (*common.ISODate)(&settlementDate),
				ChrgBr:        "SLEV",
				DbtrAgt: pacs_v08.BranchAndFinancialInstitutionIdentification6{
					FinInstnId: pacs_v08.FinancialInstitutionIdentification18{
						BICFI: &[]common.BICFIDec2014Identifier{common.BICFIDec2014Identifier(institutionBIC)}[0],
					},
				},
				Dbtr: pacs_v08.PartyIdentification135{
					Nm: &[]common.Max140Text{common.Max140Text(tx.FromAccountID)}[0],
				},
				CdtrAgt: pacs_v08.BranchAndFinancialInstitutionIdentification6{
					FinInstnId: pacs_v08.FinancialInstitutionIdentification18{
						BICFI: &[]common.BICFIDec2014Identifier{common.BICFIDec2014Identifier(institutionBIC)}[0],
					},
				},
				Cdtr: pacs_v08.PartyIdentification135{
					Nm: &[]common.Max140Text{common.Max140Text(tx.ToAccountID)}[0],
				},
			},
		},
	}

	return doc, nil
}

// CreatePacs002 builds a pacs.002 payment status report for authorizations
// and failed transfers.
func (ss *SettlementService) CreatePacs002(tx *models.Transaction, status string) (*pacs_v08.FIToFIPaymentStatusReportV08, error) {
	msgId := uuid.New().String()
	creDtTm := time.Now()

	endToEnd := tx.Reference
	if endToEnd == "" {
		endToEnd = tx.ID
	}

	doc := &pacs_v08.FIToFIPaymentStatusReportV08{
		GrpHdr: pacs_v08.GroupHeader53{
			MsgId:   common.Max35Text(msgId),
			CreDtTm: common.ISODateTime(creDtTm),
		},
		TxInfAndSts: []pacs_v08.PaymentTransaction80{
			{
				OrgnlInstrId:    &[]common.Max35Text{common.Max35Text(tx.ID)}[0],
				OrgnlEndToEndId: &[]common.Max35Text{common.Max35Text(endToEnd)}[0],
				OrgnlTxId:       &[]common.Max35Text{common.Max35Text(tx.ID)}[0],
				TxSts:           &[]pacs_v08.ExternalPaymentTransactionStatus1Code{pacs_v08.ExternalPaymentTransactionStatus1Code(status)}[0],
			},
		},
	}

	return doc, nil
}

// ConvertToXML converts an ISO 20022 document to an XML string.
func (ss *SettlementService) ConvertToXML(doc any) (string, error) {
	xmlData, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal XML: %w", err)
	}
	return xml.Header + string(xmlData), nil
}

func statusCode(tx *models.Transaction) string {
	if tx.Status == models.TransactionStatusFailed {
		return "RJCT"
	}
	return "ACCP"
}
