package ports

import (
	"context"

	"github.com/shopspring/decimal"
)

// SessionSource produces bearer tokens for authenticated PSP calls.
// Implementations own the mTLS client material and may cache tokens
// until their server-declared expiry.
type SessionSource interface {
	// Token returns a valid access token, reusing a cached one when possible.
	Token(ctx context.Context) (string, error)
	// Invalidate drops any cached token. Adapters call this after a 401 so
	// the next operation reauthenticates.
	Invalidate()
}

// CreateChargeRequest describes a PSP-hosted dynamic charge.
type CreateChargeRequest struct {
	Key           string
	Amount        decimal.Decimal
	PayerNote     string
	ExpirySeconds int
}

// CreateChargeResult is the explicit two-state outcome of charge creation:
// the PSP either returned the copy-paste payload directly, or only a
// location reference that requires one more round trip to render.
type CreateChargeResult struct {
	TxID       string
	Payload    string // set when the PSP answered with pixCopiaECola
	LocationID int64  // set when only loc.id came back
}

// IsDirect reports whether the payload arrived without a location hop.
func (r *CreateChargeResult) IsDirect() bool {
	return r.Payload != ""
}

// LocationPayload is the rendered QR payload fetched for a location id.
type LocationPayload struct {
	Payload string
	Image   string // base64 QR image, passed through to callers untouched
}

// ChargeGateway creates dynamic charges on the PSP.
type ChargeGateway interface {
	CreateCharge(ctx context.Context, req *CreateChargeRequest) (*CreateChargeResult, error)
	FetchLocationPayload(ctx context.Context, locationID int64) (*LocationPayload, error)
}

// RefundResult is the PSP's record of an issued refund.
type RefundResult struct {
	RefundID string
	RtrID    string
	Status   string
	Amount   decimal.Decimal
}

// RefundGateway issues monetary returns against received payments.
type RefundGateway interface {
	IssueRefund(ctx context.Context, endToEndID, refundID string, amount decimal.Decimal) (*RefundResult, error)
}

// SendPixRequest describes a payer-initiated transfer. Exactly one of
// CPF or CNPJ is set; the PSP enforces key ownership against it.
type SendPixRequest struct {
	EnvelopeID   string
	Amount       decimal.Decimal
	PayerKey     string
	PayerNote    string
	RecipientKey string
	CPF          string
	CNPJ         string
}

// SendPixResult is the PSP's acknowledgement of an accepted transfer.
// Settlement is asynchronous; the final state arrives via webhook.
type SendPixResult struct {
	EndToEndID string
	Status     string
}

// SendGateway submits payer-initiated transfers.
type SendGateway interface {
	SendPix(ctx context.Context, req *SendPixRequest) (*SendPixResult, error)
}
