package refund

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lembretes/pix-service/internal/config"
	"github.com/lembretes/pix-service/internal/domain"
	"github.com/lembretes/pix-service/internal/domain/models"
	"github.com/lembretes/pix-service/internal/domain/ports"
	pkgerrors "github.com/lembretes/pix-service/pkg/errors"
	"github.com/shopspring/decimal"
)

// Service issues refunds against received payments, enforcing the
// configured amount bounds before any PSP call.
type Service struct {
	gateway ports.RefundGateway
	cfg     *config.RefundConfig
	logger  ports.Logger
	now     func() time.Time
}

// NewService creates a new refund service.
func NewService(gateway ports.RefundGateway, cfg *config.RefundConfig, logger ports.Logger) *Service {
	return &Service{
		gateway: gateway,
		cfg:     cfg,
		logger:  logger,
		now:     time.Now,
	}
}

// Refund returns the given amount of the payment identified by its
// end-to-end id. The (endToEndID, refundID) pair is the PSP's idempotency
// key: a caller that supplies refundID can resubmit safely and get the
// duplicate rejection on the second attempt. When refundID is empty a
// fresh one is generated, so each attempt stands alone.
func (s *Service) Refund(ctx context.Context, endToEndID, refundID string, amount decimal.Decimal) (*models.Refund, error) {
	endToEndID = strings.TrimSpace(endToEndID)
	if endToEndID == "" {
		return nil, domain.NewDomainError(domain.ErrorCodeValidationMissingField, "endToEndId is required")
	}

	amount = amount.Round(2)
	if amount.LessThan(s.cfg.MinAmount) || amount.GreaterThan(s.cfg.MaxAmount) {
		return nil, domain.NewDomainError(domain.ErrorCodeValidationAmountOutOfBounds, "refund amount out of bounds").
			WithDetail("amount", amount.StringFixed(2)).
			WithDetail("min", s.cfg.MinAmount.StringFixed(2)).
			WithDetail("max", s.cfg.MaxAmount.StringFixed(2))
	}

	refundID = strings.TrimSpace(refundID)
	if refundID == "" {
		refundID = s.newRefundID()
	}
	result, err := s.gateway.IssueRefund(ctx, endToEndID, refundID, amount)
	if err != nil {
		return nil, mapGatewayError(err)
	}

	s.logger.Info("refund issued",
		ports.String("e2e_id", endToEndID),
		ports.String("refund_id", result.RefundID),
		ports.String("status", result.Status),
	)

	return &models.Refund{
		EndToEndID: endToEndID,
		RefundID:   result.RefundID,
		RtrID:      result.RtrID,
		Amount:     result.Amount,
		Status:     result.Status,
	}, nil
}

func (s *Service) newRefundID() string {
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	return fmt.Sprintf("DEV%d%s", s.now().UnixMilli(), suffix)
}

// mapGatewayError translates raw PSP failures into the domain taxonomy.
// Duplicate submissions and throttling are distinguishable from business
// rejections; the raw PSP response stays attached via the wrapped error.
func mapGatewayError(err error) error {
	var pspErr *pkgerrors.PSPError
	if !errors.As(err, &pspErr) {
		return domain.WrapError(domain.ErrorCodePSPError, "refund failed", err)
	}

	switch {
	case pspErr.ErrorName == "devolucao_duplicada" || pspErr.StatusCode == 409:
		return domain.WrapError(domain.ErrorCodePSPDuplicate, "refund already requested", err)
	case pspErr.Category == pkgerrors.CategoryRateLimit:
		return domain.WrapError(domain.ErrorCodePSPRateLimited, "PSP throttled the refund", err).
			WithDetail("bucket_size", pspErr.BucketSize).
			WithDetail("retry_after", pspErr.RetryAfter)
	case pspErr.Code == "TIMEOUT":
		return domain.WrapError(domain.ErrorCodePSPTimeout, "refund timed out", err)
	default:
		return domain.WrapError(domain.ErrorCodePSPError, "PSP rejected the refund", err).
			WithDetail("error_name", pspErr.ErrorName)
	}
}
