package webhook

import (
	"context"
	"errors"
	"testing"

	"github.com/lembretes/pix-service/internal/domain/models"
	"github.com/lembretes/pix-service/test/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

type mockRefunder struct {
	calls []string
	err   error
}

func (m *mockRefunder) Refund(ctx context.Context, endToEndID, refundID string, amount decimal.Decimal) (*models.Refund, error) {
	m.calls = append(m.calls, endToEndID)
	if m.err != nil {
		return nil, m.err
	}
	return &models.Refund{EndToEndID: endToEndID, Amount: amount, Status: "DEVOLVIDO"}, nil
}

type mockLedger struct {
	seen map[string]bool
	err  error
}

func (m *mockLedger) MarkIfAbsent(ctx context.Context, endToEndID string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	if m.seen == nil {
		m.seen = map[string]bool{}
	}
	if m.seen[endToEndID] {
		return false, nil
	}
	m.seen[endToEndID] = true
	return true, nil
}

func TestProcess_RefundsOnlyMicroDeposits(t *testing.T) {
	refunder := &mockRefunder{}
	svc := NewService(refunder, &mockLedger{}, mocks.NewMockLogger())

	summary := svc.Process(context.Background(), &models.WebhookEvent{
		Pix: []models.PixNotification{
			{Valor: "0.01", EndToEndID: "E-micro"},
			{Valor: "50.00", EndToEndID: "E-regular"},
		},
	})

	assert.Equal(t, []string{"E-micro"}, refunder.calls)
	assert.Equal(t, 1, summary.Refunded)
	assert.Equal(t, 1, summary.Skipped)
}

func TestProcess_RedeliveryRefundsOnce(t *testing.T) {
	refunder := &mockRefunder{}
	ledger := &mockLedger{}
	svc := NewService(refunder, ledger, mocks.NewMockLogger())

	event := &models.WebhookEvent{
		Pix: []models.PixNotification{{Valor: "0.01", EndToEndID: "E1"}},
	}

	first := svc.Process(context.Background(), event)
	second := svc.Process(context.Background(), event)

	assert.Len(t, refunder.calls, 1)
	assert.Equal(t, 1, first.Refunded)
	assert.Equal(t, 1, second.Duplicate)
}

func TestProcess_MalformedItemsAreSkipped(t *testing.T) {
	refunder := &mockRefunder{}
	svc := NewService(refunder, &mockLedger{}, mocks.NewMockLogger())

	summary := svc.Process(context.Background(), &models.WebhookEvent{
		Pix: []models.PixNotification{
			{Valor: "abc", EndToEndID: "E1"},
			{Valor: "0.01", EndToEndID: ""},
			{Valor: "0.01", EndToEndID: "E2"},
		},
	})

	assert.Equal(t, []string{"E2"}, refunder.calls)
	assert.Equal(t, 2, summary.Skipped)
	assert.Equal(t, 1, summary.Refunded)
}

func TestProcess_OneFailureDoesNotAbortBatch(t *testing.T) {
	refunder := &mockRefunder{err: errors.New("psp unavailable")}
	svc := NewService(refunder, &mockLedger{}, mocks.NewMockLogger())

	summary := svc.Process(context.Background(), &models.WebhookEvent{
		Pix: []models.PixNotification{
			{Valor: "0.01", EndToEndID: "E1"},
			{Valor: "0.01", EndToEndID: "E2"},
		},
	})

	assert.Len(t, refunder.calls, 2, "the second item is still processed")
	assert.Equal(t, 2, summary.Failed)
}

func TestProcess_LedgerFailureCountsAsFailed(t *testing.T) {
	refunder := &mockRefunder{}
	svc := NewService(refunder, &mockLedger{err: errors.New("redis down")}, mocks.NewMockLogger())

	summary := svc.Process(context.Background(), &models.WebhookEvent{
		Pix: []models.PixNotification{{Valor: "0.01", EndToEndID: "E1"}},
	})

	assert.Empty(t, refunder.calls, "no refund without the idempotency guard")
	assert.Equal(t, 1, summary.Failed)
}
