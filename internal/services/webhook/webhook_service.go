package webhook

import (
	"context"

	"github.com/lembretes/pix-service/internal/domain/models"
	"github.com/lembretes/pix-service/internal/domain/ports"
	"github.com/lembretes/pix-service/pkg/observability"
	"github.com/shopspring/decimal"
)

// microDepositAmount marks a received payment as a key-validation deposit.
var microDepositAmount = decimal.RequireFromString("0.01")

// Refunder returns a received payment. An empty refundID asks the refund
// service to generate one. Satisfied by the refund service.
type Refunder interface {
	Refund(ctx context.Context, endToEndID, refundID string, amount decimal.Decimal) (*models.Refund, error)
}

// Summary counts the outcomes of one webhook batch.
type Summary struct {
	Refunded  int
	Skipped   int
	Duplicate int
	Failed    int
}

// Service ingests received-payment batches from the PSP. Payments of
// exactly the micro-deposit amount are key-validation deposits and are
// refunded automatically, guarded by the idempotency ledger so redelivered
// webhooks never refund twice.
type Service struct {
	refunder Refunder
	ledger   ports.IdempotencyLedger
	logger   ports.Logger
}

// NewService creates a new webhook ingestor.
func NewService(refunder Refunder, ledger ports.IdempotencyLedger, logger ports.Logger) *Service {
	return &Service{
		refunder: refunder,
		ledger:   ledger,
		logger:   logger,
	}
}

// Process handles every notification in the batch. One item's failure
// never aborts the rest; the returned summary is informational and the
// caller acknowledges the PSP regardless.
func (s *Service) Process(ctx context.Context, event *models.WebhookEvent) *Summary {
	summary := &Summary{}
	for i := range event.Pix {
		outcome := s.processItem(ctx, &event.Pix[i])
		observability.CountWebhookItem(outcome)
		switch outcome {
		case "refunded":
			summary.Refunded++
		case "skipped":
			summary.Skipped++
		case "duplicate":
			summary.Duplicate++
		case "failed":
			summary.Failed++
		}
	}
	return summary
}

func (s *Service) processItem(ctx context.Context, item *models.PixNotification) string {
	if item.EndToEndID == "" {
		s.logger.Warn("webhook item without endToEndId, skipping")
		return "skipped"
	}

	amount, err := item.Amount()
	if err != nil {
		s.logger.Warn("webhook item with malformed amount, skipping",
			ports.String("e2e_id", item.EndToEndID),
			ports.String("valor", item.Valor),
		)
		return "skipped"
	}

	if !amount.Equal(microDepositAmount) {
		// Regular payment, nothing to do here.
		s.logger.Info("payment received",
			ports.String("e2e_id", item.EndToEndID),
			ports.String("amount", amount.StringFixed(2)),
		)
		return "skipped"
	}

	first, err := s.ledger.MarkIfAbsent(ctx, item.EndToEndID)
	if err != nil {
		s.logger.Error("idempotency ledger unavailable",
			ports.String("e2e_id", item.EndToEndID),
			ports.Err(err),
		)
		return "failed"
	}
	if !first {
		s.logger.Info("micro-deposit already handled, skipping",
			ports.String("e2e_id", item.EndToEndID),
		)
		return "duplicate"
	}

	if _, err := s.refunder.Refund(ctx, item.EndToEndID, "", microDepositAmount); err != nil {
		s.logger.Error("failed to refund micro-deposit",
			ports.String("e2e_id", item.EndToEndID),
			ports.Err(err),
		)
		return "failed"
	}

	s.logger.Info("micro-deposit refunded",
		ports.String("e2e_id", item.EndToEndID),
	)
	return "refunded"
}
