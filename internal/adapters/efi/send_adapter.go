package efi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/lembretes/pix-service/internal/domain/ports"
)

// SendAdapter implements ports.SendGateway against the Efí pix send API.
type SendAdapter struct {
	rest restClient
}

// NewSendAdapter creates a send adapter bound to a session source.
func NewSendAdapter(session ports.SessionSource, baseURL string, httpClient ports.HTTPClient, timeout time.Duration, logger ports.Logger) *SendAdapter {
	return &SendAdapter{
		rest: restClient{
			session: session,
			baseURL: baseURL,
			http:    httpClient,
			logger:  logger,
			timeout: timeout,
		},
	}
}

type sendPagador struct {
	Chave       string `json:"chave"`
	InfoPagador string `json:"infoPagador,omitempty"`
}

type sendFavorecido struct {
	Chave string `json:"chave"`
	CPF   string `json:"cpf,omitempty"`
	CNPJ  string `json:"cnpj,omitempty"`
}

type sendRequest struct {
	Valor      string         `json:"valor"`
	Pagador    sendPagador    `json:"pagador"`
	Favorecido sendFavorecido `json:"favorecido"`
}

type sendResponse struct {
	E2EID  string `json:"e2eId"`
	Status string `json:"status"`
}

// SendPix submits a payer-initiated transfer keyed by the envelope id.
// Declaring the recipient's CPF or CNPJ makes the PSP enforce key
// ownership: a mismatch is refused with a named violation.
func (a *SendAdapter) SendPix(ctx context.Context, req *ports.SendPixRequest) (*ports.SendPixResult, error) {
	body := sendRequest{
		Valor: req.Amount.StringFixed(2),
		Pagador: sendPagador{
			Chave:       req.PayerKey,
			InfoPagador: req.PayerNote,
		},
		Favorecido: sendFavorecido{
			Chave: req.RecipientKey,
			CPF:   req.CPF,
			CNPJ:  req.CNPJ,
		},
	}

	path := "/v3/gn/pix/" + url.PathEscape(req.EnvelopeID)
	resp, err := a.rest.do(ctx, "send_pix", http.MethodPut, path, body)
	if err != nil {
		return nil, err
	}
	if !isSuccess(resp.StatusCode) {
		return nil, classify("SEND_FAILED", resp)
	}

	var sr sendResponse
	if err := json.Unmarshal(resp.Body, &sr); err != nil {
		return nil, fmt.Errorf("unmarshal send response: %w", err)
	}

	return &ports.SendPixResult{
		EndToEndID: sr.E2EID,
		Status:     sr.Status,
	}, nil
}
