package pix

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/lembretes/pix-service/internal/domain"
)

type chargeResponse struct {
	OK          bool   `json:"ok"`
	Mode        string `json:"mode"`
	Payload     string `json:"payload"`
	TxID        string `json:"txid,omitempty"`
	QRCodeImage string `json:"qrcode_image,omitempty"`
}

type refundResponse struct {
	OK         bool   `json:"ok"`
	EndToEndID string `json:"e2e_id"`
	RefundID   string `json:"refund_id"`
	RtrID      string `json:"rtr_id,omitempty"`
	Amount     string `json:"amount"`
	Status     string `json:"status"`
}

type validationResponse struct {
	OK         bool   `json:"ok"`
	EnvelopeID string `json:"envelope_id"`
	EndToEndID string `json:"e2e_id,omitempty"`
	Status     string `json:"status"`
}

type ackResponse struct {
	OK        bool `json:"ok"`
	Refunded  int  `json:"refunded,omitempty"`
	Skipped   int  `json:"skipped,omitempty"`
	Duplicate int  `json:"duplicate,omitempty"`
	Failed    int  `json:"failed,omitempty"`
}

type errorBody struct {
	OK      bool        `json:"ok"`
	Code    string      `json:"code"`
	Error   string      `json:"error"`
	Details interface{} `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	code := domain.ErrorCodeInternalError
	message := "internal error"
	var details interface{}

	var domErr *domain.DomainError
	if errors.As(err, &domErr) {
		status = statusFor(domErr.Code)
		code = domErr.Code
		message = domErr.Message
		if len(domErr.Details) > 0 {
			details = domErr.Details
		}
	}

	writeJSON(w, status, errorBody{
		OK:      false,
		Code:    string(code),
		Error:   message,
		Details: details,
	})
}

// statusFor maps the domain taxonomy onto HTTP statuses: malformed input
// 400, business rejections 422, throttling 429, PSP failures 502.
func statusFor(code domain.ErrorCode) int {
	switch code {
	case domain.ErrorCodeValidationMissingField,
		domain.ErrorCodeValidationFailed,
		domain.ErrorCodeValidationAmountInvalid,
		domain.ErrorCodeValidationDocumentInvalid:
		return http.StatusBadRequest
	case domain.ErrorCodeValidationAmountOutOfBounds,
		domain.ErrorCodePSPOwnershipMismatch,
		domain.ErrorCodePSPKeyNotFound,
		domain.ErrorCodePSPDuplicate:
		return http.StatusUnprocessableEntity
	case domain.ErrorCodePSPRateLimited:
		return http.StatusTooManyRequests
	case domain.ErrorCodePSPError,
		domain.ErrorCodePSPAuthRejected,
		domain.ErrorCodePSPTimeout:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
