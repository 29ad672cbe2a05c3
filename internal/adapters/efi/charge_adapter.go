package efi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/lembretes/pix-service/internal/domain/ports"
)

// ChargeAdapter implements ports.ChargeGateway against the Efí cob API.
type ChargeAdapter struct {
	rest restClient
}

// NewChargeAdapter creates a charge adapter bound to a session source.
func NewChargeAdapter(session ports.SessionSource, baseURL string, httpClient ports.HTTPClient, timeout time.Duration, logger ports.Logger) *ChargeAdapter {
	return &ChargeAdapter{
		rest: restClient{
			session: session,
			baseURL: baseURL,
			http:    httpClient,
			logger:  logger,
			timeout: timeout,
		},
	}
}

type cobCalendar struct {
	Expiracao int `json:"expiracao"`
}

type cobValue struct {
	Original string `json:"original"`
}

type cobRequest struct {
	Calendario         cobCalendar `json:"calendario"`
	Valor              cobValue    `json:"valor"`
	Chave              string      `json:"chave"`
	SolicitacaoPagador string      `json:"solicitacaoPagador,omitempty"`
}

type cobResponse struct {
	TxID          string `json:"txid"`
	PixCopiaECola string `json:"pixCopiaECola"`
	Loc           struct {
		ID int64 `json:"id"`
	} `json:"loc"`
}

// CreateCharge creates a dynamic charge. The PSP either answers with the
// copy-paste payload inline or with only a location id; both shapes are
// surfaced in the result and the caller resolves the second with
// FetchLocationPayload.
func (a *ChargeAdapter) CreateCharge(ctx context.Context, req *ports.CreateChargeRequest) (*ports.CreateChargeResult, error) {
	body := cobRequest{
		Calendario:         cobCalendar{Expiracao: req.ExpirySeconds},
		Valor:              cobValue{Original: req.Amount.StringFixed(2)},
		Chave:              req.Key,
		SolicitacaoPagador: req.PayerNote,
	}

	resp, err := a.rest.do(ctx, "create_charge", http.MethodPost, "/v2/cob", body)
	if err != nil {
		return nil, err
	}
	if !isSuccess(resp.StatusCode) {
		return nil, classify("COB_FAILED", resp)
	}

	var cob cobResponse
	if err := json.Unmarshal(resp.Body, &cob); err != nil {
		return nil, fmt.Errorf("unmarshal charge response: %w", err)
	}

	return &ports.CreateChargeResult{
		TxID:       cob.TxID,
		Payload:    cob.PixCopiaECola,
		LocationID: cob.Loc.ID,
	}, nil
}

type qrcodeResponse struct {
	QRCode       string `json:"qrcode"`
	ImagemQrcode string `json:"imagemQrcode"`
}

// FetchLocationPayload renders the QR payload for a charge that came back
// with only a location reference.
func (a *ChargeAdapter) FetchLocationPayload(ctx context.Context, locationID int64) (*ports.LocationPayload, error) {
	resp, err := a.rest.do(ctx, "fetch_qrcode", http.MethodGet, fmt.Sprintf("/v2/loc/%d/qrcode", locationID), nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, classify("QRCODE_FAILED", resp)
	}

	var qr qrcodeResponse
	if err := json.Unmarshal(resp.Body, &qr); err != nil {
		return nil, fmt.Errorf("unmarshal qrcode response: %w", err)
	}

	return &ports.LocationPayload{
		Payload: qr.QRCode,
		Image:   qr.ImagemQrcode,
	}, nil
}
