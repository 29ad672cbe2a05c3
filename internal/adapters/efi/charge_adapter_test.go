package efi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lembretes/pix-service/internal/domain/ports"
	pkgerrors "github.com/lembretes/pix-service/pkg/errors"
	"github.com/lembretes/pix-service/test/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubSession satisfies ports.SessionSource with a fixed token and records
// invalidations.
type stubSession struct {
	token       string
	tokenErr    error
	invalidated atomic.Int32
}

func (s *stubSession) Token(ctx context.Context) (string, error) {
	if s.tokenErr != nil {
		return "", s.tokenErr
	}
	return s.token, nil
}

func (s *stubSession) Invalidate() {
	s.invalidated.Add(1)
}

func newChargeAdapter(server *httptest.Server) (*ChargeAdapter, *stubSession) {
	session := &stubSession{token: "test-token"}
	adapter := NewChargeAdapter(session, server.URL, server.Client(), 20*time.Second, mocks.NewMockLogger())
	return adapter, session
}

func TestChargeAdapter_CreateCharge_DirectPayload(t *testing.T) {
	var captured cobRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v2/cob", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"txid":          "txid-123",
			"pixCopiaECola": "00020101021226...6304ABCD",
		})
	}))
	defer server.Close()

	adapter, _ := newChargeAdapter(server)
	result, err := adapter.CreateCharge(context.Background(), &ports.CreateChargeRequest{
		Key:           "recebedor@pix.com",
		Amount:        decimal.RequireFromString("10.5"),
		PayerNote:     "Pedido 42",
		ExpirySeconds: 3600,
	})

	require.NoError(t, err)
	assert.Equal(t, "txid-123", result.TxID)
	assert.Equal(t, "00020101021226...6304ABCD", result.Payload)
	assert.True(t, result.IsDirect())

	assert.Equal(t, 3600, captured.Calendario.Expiracao)
	assert.Equal(t, "10.50", captured.Valor.Original)
	assert.Equal(t, "recebedor@pix.com", captured.Chave)
	assert.Equal(t, "Pedido 42", captured.SolicitacaoPagador)
}

func TestChargeAdapter_CreateCharge_LocationOnly(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"txid": "txid-456",
			"loc":  map[string]interface{}{"id": 777},
		})
	}))
	defer server.Close()

	adapter, _ := newChargeAdapter(server)
	result, err := adapter.CreateCharge(context.Background(), &ports.CreateChargeRequest{
		Key:           "recebedor@pix.com",
		Amount:        decimal.RequireFromString("5.00"),
		ExpirySeconds: 3600,
	})

	require.NoError(t, err)
	assert.False(t, result.IsDirect())
	assert.Equal(t, int64(777), result.LocationID)
}

func TestChargeAdapter_FetchLocationPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v2/loc/777/qrcode", r.URL.Path)

		json.NewEncoder(w).Encode(map[string]interface{}{
			"qrcode":       "00020101...6304FFFF",
			"imagemQrcode": "data:image/png;base64,iVBOR",
		})
	}))
	defer server.Close()

	adapter, _ := newChargeAdapter(server)
	payload, err := adapter.FetchLocationPayload(context.Background(), 777)

	require.NoError(t, err)
	assert.Equal(t, "00020101...6304FFFF", payload.Payload)
	assert.Equal(t, "data:image/png;base64,iVBOR", payload.Image)
}

func TestChargeAdapter_CreateCharge_PSPRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{
			"nome":     "cobranca_invalida",
			"mensagem": "valor invalido",
		})
	}))
	defer server.Close()

	adapter, _ := newChargeAdapter(server)
	_, err := adapter.CreateCharge(context.Background(), &ports.CreateChargeRequest{
		Key:           "recebedor@pix.com",
		Amount:        decimal.RequireFromString("0.00"),
		ExpirySeconds: 3600,
	})

	require.Error(t, err)
	var pspErr *pkgerrors.PSPError
	require.ErrorAs(t, err, &pspErr)
	assert.Equal(t, "COB_FAILED", pspErr.Code)
	assert.Equal(t, http.StatusBadRequest, pspErr.StatusCode)
	assert.Equal(t, "cobranca_invalida", pspErr.ErrorName)
	assert.False(t, pspErr.IsRetriable)
}

func TestChargeAdapter_CreateCharge_UnauthorizedInvalidatesSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	adapter, session := newChargeAdapter(server)
	_, err := adapter.CreateCharge(context.Background(), &ports.CreateChargeRequest{
		Key:           "recebedor@pix.com",
		Amount:        decimal.RequireFromString("1.00"),
		ExpirySeconds: 3600,
	})

	require.Error(t, err)
	assert.Equal(t, int32(1), session.invalidated.Load())
}
