package keyvalidation

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

// defaultAmount is the micro-deposit value. The webhook ingestor recognizes
// incoming payments of exactly this amount as validation deposits and
// refunds them automatically.
var defaultAmount = decimal.RequireFromString("0.01")

// PSP error names for the known send rejections.
const (
	errNameOwnershipMismatch = "chave_nao_pertence_ao_documento"
	errNameKeyNotFound       = "chave_favorecido_nao_encontrada"
	errNameDuplicateEnvelope = "id_envio_duplicado"
)

// Service proves that a Pix key belongs to a tax document by sending a
// micro-deposit from the operator's payer key. The PSP checks ownership
// before accepting the transfer, so a mismatch fails synchronously;
// settlement of an accepted transfer arrives later via webhook.
type Service struct {
	gateway ports.SendGateway
	cfg     *config.PSPConfig
	logger  ports.Logger
	now     func() time.Time
}

// NewService creates a new key validation service.
func NewService(gateway ports.SendGateway, cfg *config.PSPConfig, logger ports.Logger) *Service {
	return &Service{
		gateway: gateway,
		cfg:     cfg,
		logger:  logger,
		now:     time.Now,
	}
}

// Validate sends the micro-deposit and classifies the outcome.
func (s *Service) Validate(ctx context.Context, req *models.KeyValidationRequest) (*models.KeyValidation, error) {
	key := strings.TrimSpace(req.Key)
	if key == "" {
		return nil, domain.NewDomainError(domain.ErrorCodeValidationMissingField, "key is required")
	}

	document := models.NormalizeDocument(req.Document)
	send := &ports.SendPixRequest{
		EnvelopeID:   s.newEnvelopeID(),
		Amount:       req.Amount,
		PayerKey:     s.cfg.PayerKey,
		PayerNote:    "validacao de chave pix",
		RecipientKey: key,
	}
	switch len(document) {
	case 11:
		send.CPF = document
	case 14:
		send.CNPJ = document
	default:
		return nil, domain.NewDomainError(domain.ErrorCodeValidationDocumentInvalid, "document must have 11 (CPF) or 14 (CNPJ) digits").
			WithDetail("digits", len(document))
	}

	if !send.Amount.IsPositive() {
		send.Amount = defaultAmount
	}

	result, err := s.gateway.SendPix(ctx, send)
	if err != nil {
		return nil, mapSendError(err)
	}

	s.logger.Info("key validation transfer accepted",
		ports.String("envelope_id", send.EnvelopeID),
		ports.String("e2e_id", result.EndToEndID),
		ports.String("status", result.Status),
	)

	return &models.KeyValidation{
		EnvelopeID: send.EnvelopeID,
		EndToEndID: result.EndToEndID,
		Status:     result.Status,
	}, nil
}

func (s *Service) newEnvelopeID() string {
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	return fmt.Sprintf("VALID%d%s", s.now().UnixMilli(), suffix)
}

// mapSendError translates the PSP's named rejections into the domain
// taxonomy so callers can distinguish an ownership mismatch from a missing
// key, a duplicate envelope or throttling.
func mapSendError(err error) error {
	var pspErr *pkgerrors.PSPError
	if !errors.As(err, &pspErr) {
		return domain.WrapError(domain.ErrorCodePSPError, "key validation failed", err)
	}

	switch {
	case pspErr.ErrorName == errNameOwnershipMismatch:
		return domain.WrapError(domain.ErrorCodePSPOwnershipMismatch, "key does not belong to the document", err)
	case pspErr.ErrorName == errNameKeyNotFound:
		return domain.WrapError(domain.ErrorCodePSPKeyNotFound, "recipient key not found", err)
	case pspErr.ErrorName == errNameDuplicateEnvelope:
		return domain.WrapError(domain.ErrorCodePSPDuplicate, "envelope id already used", err)
	case pspErr.Category == pkgerrors.CategoryRateLimit:
		return domain.WrapError(domain.ErrorCodePSPRateLimited, "PSP throttled the validation", err).
			WithDetail("bucket_size", pspErr.BucketSize).
			WithDetail("retry_after", pspErr.RetryAfter)
	case pspErr.Code == "TIMEOUT":
		return domain.WrapError(domain.ErrorCodePSPTimeout, "key validation timed out", err)
	default:
		return domain.WrapError(domain.ErrorCodePSPError, "PSP rejected the validation transfer", err).
			WithDetail("error_name", pspErr.ErrorName)
	}
}
