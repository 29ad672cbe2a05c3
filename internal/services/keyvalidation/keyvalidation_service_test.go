package keyvalidation

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/lembretes/pix-service/internal/config"
	"github.com/lembretes/pix-service/internal/domain"
	"github.com/lembretes/pix-service/internal/domain/models"
	"github.com/lembretes/pix-service/internal/domain/ports"
	pkgerrors "github.com/lembretes/pix-service/pkg/errors"
	"github.com/lembretes/pix-service/test/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockSendGateway struct {
	calls int
	last  *ports.SendPixRequest
	fn    func(ctx context.Context, req *ports.SendPixRequest) (*ports.SendPixResult, error)
}

func (m *mockSendGateway) SendPix(ctx context.Context, req *ports.SendPixRequest) (*ports.SendPixResult, error) {
	m.calls++
	m.last = req
	if m.fn != nil {
		return m.fn(ctx, req)
	}
	return &ports.SendPixResult{EndToEndID: "E1", Status: "EM_PROCESSAMENTO"}, nil
}

func newService(gateway *mockSendGateway) *Service {
	cfg := &config.PSPConfig{PayerKey: "pagador@pix.com"}
	svc := NewService(gateway, cfg, mocks.NewMockLogger())
	svc.now = func() time.Time { return time.UnixMilli(1756700000000) }
	return svc
}

func TestValidate_Validation(t *testing.T) {
	gateway := &mockSendGateway{}
	svc := newService(gateway)

	tests := []struct {
		name string
		req  *models.KeyValidationRequest
		code domain.ErrorCode
	}{
		{
			name: "missing key",
			req:  &models.KeyValidationRequest{Document: "11122233344"},
			code: domain.ErrorCodeValidationMissingField,
		},
		{
			name: "nine digit document",
			req:  &models.KeyValidationRequest{Key: "a@b.com", Document: "111222333"},
			code: domain.ErrorCodeValidationDocumentInvalid,
		},
		{
			name: "twelve digit document",
			req:  &models.KeyValidationRequest{Key: "a@b.com", Document: "111222333445"},
			code: domain.ErrorCodeValidationDocumentInvalid,
		},
		{
			name: "fifteen digit document",
			req:  &models.KeyValidationRequest{Key: "a@b.com", Document: "123456780001955"},
			code: domain.ErrorCodeValidationDocumentInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Validate(context.Background(), tt.req)
			require.Error(t, err)
			assert.Equal(t, tt.code, domain.GetErrorCode(err))
		})
	}
	assert.Zero(t, gateway.calls)
}

func TestValidate_CPF(t *testing.T) {
	gateway := &mockSendGateway{}
	svc := newService(gateway)

	result, err := svc.Validate(context.Background(), &models.KeyValidationRequest{
		Key:      "chave@pix.com",
		Document: "111.222.333-44",
	})

	require.NoError(t, err)
	assert.Equal(t, "E1", result.EndToEndID)
	assert.Equal(t, "EM_PROCESSAMENTO", result.Status)
	assert.True(t, strings.HasPrefix(result.EnvelopeID, "VALID1756700000000"))

	require.NotNil(t, gateway.last)
	assert.Equal(t, "pagador@pix.com", gateway.last.PayerKey)
	assert.Equal(t, "chave@pix.com", gateway.last.RecipientKey)
	assert.Equal(t, "11122233344", gateway.last.CPF, "document is normalized to digits")
	assert.Empty(t, gateway.last.CNPJ)
	assert.Equal(t, "0.01", gateway.last.Amount.StringFixed(2), "amount defaults to one cent")
}

func TestValidate_CNPJ(t *testing.T) {
	gateway := &mockSendGateway{}
	svc := newService(gateway)

	_, err := svc.Validate(context.Background(), &models.KeyValidationRequest{
		Key:      "12345678000195",
		Document: "12.345.678/0001-95",
		Amount:   decimal.RequireFromString("0.05"),
	})

	require.NoError(t, err)
	assert.Equal(t, "12345678000195", gateway.last.CNPJ)
	assert.Empty(t, gateway.last.CPF)
	assert.Equal(t, "0.05", gateway.last.Amount.StringFixed(2), "explicit amount is kept")
}

func TestValidate_ErrorClassification(t *testing.T) {
	tests := []struct {
		name      string
		errorName string
		status    int
		category  pkgerrors.ErrorCategory
		code      domain.ErrorCode
	}{
		{"ownership mismatch", "chave_nao_pertence_ao_documento", 422, pkgerrors.CategoryProtocol, domain.ErrorCodePSPOwnershipMismatch},
		{"key not found", "chave_favorecido_nao_encontrada", 422, pkgerrors.CategoryProtocol, domain.ErrorCodePSPKeyNotFound},
		{"duplicate envelope", "id_envio_duplicado", 422, pkgerrors.CategoryProtocol, domain.ErrorCodePSPDuplicate},
		{"rate limited", "", 429, pkgerrors.CategoryRateLimit, domain.ErrorCodePSPRateLimited},
		{"generic", "saldo_insuficiente", 422, pkgerrors.CategoryProtocol, domain.ErrorCodePSPError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pspErr := pkgerrors.NewPSPError("SEND_FAILED", "rejected", tt.category, tt.category == pkgerrors.CategoryRateLimit).
				WithResponse(tt.status, "{}")
			pspErr.ErrorName = tt.errorName

			gateway := &mockSendGateway{
				fn: func(ctx context.Context, req *ports.SendPixRequest) (*ports.SendPixResult, error) {
					return nil, pspErr
				},
			}
			svc := newService(gateway)

			_, err := svc.Validate(context.Background(), &models.KeyValidationRequest{
				Key:      "chave@pix.com",
				Document: "11122233344",
			})

			require.Error(t, err)
			assert.Equal(t, tt.code, domain.GetErrorCode(err))
			assert.ErrorIs(t, err, pspErr)
		})
	}
}
