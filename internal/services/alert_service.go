package services

import (
	"log"
	"net/http"

	"github.com/pocketbank/backend/internal/alerts"
	"github.com/pocketbank/backend/internal/audit"
	"github.com/pocketbank/backend/internal/models"
)

// AlertService exposes the polling mailbox over HTTP. Polling drains the
// mailbox: each alert is delivered exactly once.
type AlertService struct {
	queue     *alerts.Queue
	audit     *audit.Logger
	validator *ValidationHelper
}

func NewAlertService(queue *alerts.Queue) *AlertService {
	return &AlertService{
		queue:     queue,
		audit:     audit.NewLogger(),
		validator: NewValidationHelper(),
	}
}

// PollAlerts drains a user's pending alerts
// @Summary Poll pending alerts
// @Description Atomically return and remove all pending alerts for the user, oldest first
// @Tags alerts
// @Accept json
// @Produce json
// @Param poll body models.PollAlertsRequest true "Poll data"
// @Success 200 {object} object{alerts=[]models.Alert,count=int}
// @Failure 400 {object} ErrorResponse
// @Router /alerts/poll [post]
func (as *AlertService) PollAlerts(w http.ResponseWriter, r *http.Request) {
	var req models.PollAlertsRequest
	if err := DecodeJSONBody(w, r, &req); err != nil {
		SendErrorResponse(w, err.Error(), http.StatusBadRequest, nil)
		return
	}

	if err := as.validator.ValidateStruct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	drained := as.queue.Drain(req.UserID)
	if len(drained) > 0 {
		as.audit.LogAlertDrain(req.UserID, len(drained))
	}

	SendJSON(w, http.StatusOK, map[string]any{
		"alerts": drained,
		"count":  len(drained),
	})
}

// Subscribe records delivery-channel metadata for a user
// @Summary Subscribe an alert channel
// @Description Record email/sms/push delivery metadata. Advisory only; the mailbox stays poll-based.
// @Tags alerts
// @Accept json
// @Produce json
// @Param subscription body models.SubscribeRequest true "Channel data"
// @Success 200 {object} models.AlertChannel
// @Failure 400 {object} ErrorResponse
// @Router /alerts/subscribe [post]
func (as *AlertService) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req models.SubscribeRequest
	if err := DecodeJSONBody(w, r, &req); err != nil {
		SendErrorResponse(w, err.Error(), http.StatusBadRequest, nil)
		return
	}

	if err := as.validator.ValidateStruct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	channel := models.AlertChannel{Kind: req.Kind, Address: req.Address}
	if err := as.queue.Subscribe(r.Context(), req.UserID, channel); err != nil {
		log.Printf("[ALERTS] subscribe failed for user %s: %v", req.UserID, err)
		SendErrorResponse(w, "Failed to record channel", http.StatusInternalServerError, nil)
		return
	}

	channel.UserID = req.UserID
	SendJSON(w, http.StatusOK, channel)
}

// ListChannels returns the channels recorded for a user
// @Summary List alert channels
// @Tags alerts
// @Produce json
// @Param userId query string true "User ID"
// @Success 200 {object} object{channels=[]models.AlertChannel}
// @Router /alerts/channels [get]
func (as *AlertService) ListChannels(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		SendErrorResponse(w, "userId is required", http.StatusBadRequest, nil)
		return
	}

	channels, err := as.queue.Channels(r.Context(), userID)
	if err != nil {
		log.Printf("[ALERTS] channel lookup failed for user %s: %v", userID, err)
		SendErrorResponse(w, "Failed to list channels", http.StatusInternalServerError, nil)
		return
	}

	SendJSON(w, http.StatusOK, map[string]any{"channels": channels})
}
