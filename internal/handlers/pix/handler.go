package pix

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/lembretes/pix-service/internal/domain"
	"github.com/lembretes/pix-service/internal/domain/models"
	"github.com/lembretes/pix-service/internal/domain/ports"
	"github.com/lembretes/pix-service/internal/services/webhook"
	"github.com/shopspring/decimal"
)

// Narrow service interfaces so handler tests can stub the service layer.
type chargeCreator interface {
	CreateCharge(ctx context.Context, req *models.ChargeRequest) (*models.Charge, error)
}

type keyValidator interface {
	Validate(ctx context.Context, req *models.KeyValidationRequest) (*models.KeyValidation, error)
}

type webhookProcessor interface {
	Process(ctx context.Context, event *models.WebhookEvent) *webhook.Summary
}

// Handler exposes the Pix operations over HTTP.
type Handler struct {
	charges     chargeCreator
	refunds     webhook.Refunder
	validations keyValidator
	webhooks    webhookProcessor
	logger      ports.Logger
}

// NewHandler creates the HTTP handler over the service layer.
func NewHandler(charges chargeCreator, refunds webhook.Refunder, validations keyValidator, webhooks webhookProcessor, logger ports.Logger) *Handler {
	return &Handler{
		charges:     charges,
		refunds:     refunds,
		validations: validations,
		webhooks:    webhooks,
		logger:      logger,
	}
}

func (h *Handler) createCharge(w http.ResponseWriter, r *http.Request) {
	var req models.ChargeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.NewDomainError(domain.ErrorCodeValidationFailed, "invalid JSON body"))
		return
	}

	charge, err := h.charges.CreateCharge(r.Context(), &req)
	if err != nil {
		h.logger.Warn("charge request failed", ports.Err(err))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, chargeResponse{
		OK:          true,
		Mode:        string(charge.Mode),
		Payload:     charge.Payload,
		TxID:        charge.TxID,
		QRCodeImage: charge.QRCodeImage,
	})
}

type refundRequest struct {
	EndToEndID string          `json:"e2e_id"`
	RefundID   string          `json:"refund_id,omitempty"`
	Amount     decimal.Decimal `json:"amount"`
}

func (h *Handler) refund(w http.ResponseWriter, r *http.Request) {
	var req refundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.NewDomainError(domain.ErrorCodeValidationFailed, "invalid JSON body"))
		return
	}

	refund, err := h.refunds.Refund(r.Context(), req.EndToEndID, req.RefundID, req.Amount)
	if err != nil {
		h.logger.Warn("refund request failed", ports.Err(err))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, refundResponse{
		OK:         true,
		EndToEndID: refund.EndToEndID,
		RefundID:   refund.RefundID,
		RtrID:      refund.RtrID,
		Amount:     refund.Amount.StringFixed(2),
		Status:     refund.Status,
	})
}

func (h *Handler) validateKey(w http.ResponseWriter, r *http.Request) {
	var req models.KeyValidationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.NewDomainError(domain.ErrorCodeValidationFailed, "invalid JSON body"))
		return
	}

	validation, err := h.validations.Validate(r.Context(), &req)
	if err != nil {
		h.logger.Warn("key validation failed", ports.Err(err))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, validationResponse{
		OK:         true,
		EnvelopeID: validation.EnvelopeID,
		EndToEndID: validation.EndToEndID,
		Status:     validation.Status,
	})
}

// receiveWebhook acknowledges every delivery with 200; failures inside the
// batch are logged and counted, never propagated, so the PSP does not
// retry forever.
func (h *Handler) receiveWebhook(w http.ResponseWriter, r *http.Request) {
	var event models.WebhookEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		h.logger.Warn("malformed webhook body", ports.Err(err))
		writeJSON(w, http.StatusOK, ackResponse{OK: true})
		return
	}

	summary := h.webhooks.Process(r.Context(), &event)
	writeJSON(w, http.StatusOK, ackResponse{
		OK:        true,
		Refunded:  summary.Refunded,
		Skipped:   summary.Skipped,
		Duplicate: summary.Duplicate,
		Failed:    summary.Failed,
	})
}

func (h *Handler) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, ackResponse{OK: true})
}
