package efi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	pkgerrors "github.com/lembretes/pix-service/pkg/errors"
	"github.com/lembretes/pix-service/test/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRefundAdapter(server *httptest.Server) *RefundAdapter {
	session := &stubSession{token: "test-token"}
	return NewRefundAdapter(session, server.URL, server.Client(), 20*time.Second, mocks.NewMockLogger())
}

func TestRefundAdapter_IssueRefund_Success(t *testing.T) {
	var captured devolucaoRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v2/pix/E12345678202601011200abcdef123456/devolucao/DEV-1", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{
			"id":     "DEV-1",
			"rtrId":  "D12345678202601011200abcdef123456",
			"valor":  "25.00",
			"status": "EM_PROCESSAMENTO",
		})
	}))
	defer server.Close()

	adapter := newRefundAdapter(server)
	result, err := adapter.IssueRefund(context.Background(),
		"E12345678202601011200abcdef123456", "DEV-1", decimal.RequireFromString("25"))

	require.NoError(t, err)
	assert.Equal(t, "25.00", captured.Valor)
	assert.Equal(t, "DEV-1", result.RefundID)
	assert.Equal(t, "D12345678202601011200abcdef123456", result.RtrID)
	assert.Equal(t, "EM_PROCESSAMENTO", result.Status)
	assert.True(t, result.Amount.Equal(decimal.RequireFromString("25.00")))
}

func TestRefundAdapter_IssueRefund_Duplicate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{
			"nome":     "devolucao_duplicada",
			"mensagem": "devolucao ja solicitada",
		})
	}))
	defer server.Close()

	adapter := newRefundAdapter(server)
	_, err := adapter.IssueRefund(context.Background(), "E1", "DEV-1", decimal.RequireFromString("0.01"))

	require.Error(t, err)
	var pspErr *pkgerrors.PSPError
	require.ErrorAs(t, err, &pspErr)
	assert.Equal(t, "REFUND_FAILED", pspErr.Code)
	assert.Equal(t, "devolucao_duplicada", pspErr.ErrorName)
	assert.False(t, pspErr.IsRetriable)
}

func TestRefundAdapter_IssueRefund_ServerErrorIsRetriable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	adapter := newRefundAdapter(server)
	_, err := adapter.IssueRefund(context.Background(), "E1", "DEV-1", decimal.RequireFromString("0.01"))

	require.Error(t, err)
	var pspErr *pkgerrors.PSPError
	require.ErrorAs(t, err, &pspErr)
	assert.True(t, pspErr.IsRetriable)
}
