package efi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/lembretes/pix-service/internal/domain/ports"
	"github.com/shopspring/decimal"
)

// RefundAdapter implements ports.RefundGateway against the Efí devolução API.
type RefundAdapter struct {
	rest restClient
}

// NewRefundAdapter creates a refund adapter bound to a session source.
func NewRefundAdapter(session ports.SessionSource, baseURL string, httpClient ports.HTTPClient, timeout time.Duration, logger ports.Logger) *RefundAdapter {
	return &RefundAdapter{
		rest: restClient{
			session: session,
			baseURL: baseURL,
			http:    httpClient,
			logger:  logger,
			timeout: timeout,
		},
	}
}

type devolucaoRequest struct {
	Valor string `json:"valor"`
}

type devolucaoResponse struct {
	ID     string `json:"id"`
	RtrID  string `json:"rtrId"`
	Valor  string `json:"valor"`
	Status string `json:"status"`
}

// IssueRefund issues a monetary return against a received payment. The
// (endToEndID, refundID) pair is the idempotency key: the PSP rejects
// resubmissions of the same pair, which classify surfaces with the PSP's
// own error name so callers can tell duplicates from business rejections.
func (a *RefundAdapter) IssueRefund(ctx context.Context, endToEndID, refundID string, amount decimal.Decimal) (*ports.RefundResult, error) {
	path := fmt.Sprintf("/v2/pix/%s/devolucao/%s", url.PathEscape(endToEndID), url.PathEscape(refundID))
	body := devolucaoRequest{Valor: amount.StringFixed(2)}

	resp, err := a.rest.do(ctx, "refund", http.MethodPost, path, body)
	if err != nil {
		return nil, err
	}
	if !isSuccess(resp.StatusCode) {
		return nil, classify("REFUND_FAILED", resp)
	}

	var dev devolucaoResponse
	if err := json.Unmarshal(resp.Body, &dev); err != nil {
		return nil, fmt.Errorf("unmarshal refund response: %w", err)
	}

	result := &ports.RefundResult{
		RefundID: dev.ID,
		RtrID:    dev.RtrID,
		Status:   dev.Status,
		Amount:   amount,
	}
	if parsed, err := decimal.NewFromString(dev.Valor); err == nil {
		result.Amount = parsed
	}
	return result, nil
}
