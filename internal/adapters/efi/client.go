package efi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/lembretes/pix-service/internal/domain/ports"
	pkgerrors "github.com/lembretes/pix-service/pkg/errors"
	"github.com/lembretes/pix-service/pkg/observability"
)

// restClient is the shared plumbing of the PSP adapters: marshal, attach a
// bearer token, bound the call with a timeout, and hand back status plus
// raw body for the adapter to interpret.
type restClient struct {
	session ports.SessionSource
	baseURL string
	http    ports.HTTPClient
	logger  ports.Logger
	timeout time.Duration
}

type pspResponse struct {
	StatusCode int
	Body       []byte
	Header     http.Header
}

func (c *restClient) do(ctx context.Context, operation, method, path string, payload interface{}) (*pspResponse, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal %s request: %w", operation, err)
		}
		body = bytes.NewReader(data)
	}

	token, err := c.session.Token(ctx)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", operation, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug("calling PSP",
		ports.String("operation", operation),
		ports.String("method", method),
		ports.String("path", path),
	)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		observability.ObservePSPRequest(operation, 0, time.Since(start))
		if ctx.Err() == context.DeadlineExceeded {
			return nil, pkgerrors.NewPSPError("TIMEOUT", operation+" timed out", pkgerrors.CategoryNetworkError, true)
		}
		return nil, pkgerrors.NewPSPError("NETWORK_ERROR", "failed to reach PSP", pkgerrors.CategoryNetworkError, true)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, pkgerrors.NewPSPError("RESPONSE_READ", "failed to read PSP response", pkgerrors.CategoryNetworkError, true)
	}

	observability.ObservePSPRequest(operation, resp.StatusCode, time.Since(start))

	if resp.StatusCode == http.StatusUnauthorized {
		// Stale token; the next operation reauthenticates.
		c.session.Invalidate()
	}

	return &pspResponse{
		StatusCode: resp.StatusCode,
		Body:       respBody,
		Header:     resp.Header,
	}, nil
}

// pspErrorBody is the shape of Efí error responses. "nome" carries the
// machine-readable violation name.
type pspErrorBody struct {
	Nome     string `json:"nome"`
	Mensagem string `json:"mensagem"`
}

// classify maps a non-success PSP response onto a PSPError, preserving the
// status, raw body and the PSP's own error name.
func classify(code string, resp *pspResponse) *pkgerrors.PSPError {
	category := pkgerrors.CategoryProtocol
	retriable := resp.StatusCode >= 500

	if resp.StatusCode == http.StatusTooManyRequests {
		category = pkgerrors.CategoryRateLimit
		retriable = true
	}

	perr := pkgerrors.NewPSPError(code, "PSP returned non-success status", category, retriable).
		WithResponse(resp.StatusCode, string(resp.Body))

	var eb pspErrorBody
	if err := json.Unmarshal(resp.Body, &eb); err == nil {
		perr.ErrorName = eb.Nome
	}

	if category == pkgerrors.CategoryRateLimit {
		perr.BucketSize = resp.Header.Get("Bucket-Size")
		perr.RetryAfter = resp.Header.Get("Retry-After")
	}

	return perr
}

func isSuccess(status int) bool {
	return status == http.StatusOK || status == http.StatusCreated
}
