package charge

import (
	"context"
	"strings"

	"github.com/lembretes/pix-service/internal/config"
	"github.com/lembretes/pix-service/internal/domain"
	"github.com/lembretes/pix-service/internal/domain/models"
	"github.com/lembretes/pix-service/internal/domain/ports"
	"github.com/lembretes/pix-service/pkg/emv"
)

// Dynamic charges expire after one hour, matching the PSP default.
const chargeExpirySeconds = 3600

// Service produces payable BR Codes. Charges against the operator's own
// receiving key become PSP-registered dynamic charges; charges against any
// other key are encoded locally as static payloads with no I/O.
type Service struct {
	gateway ports.ChargeGateway
	cfg     *config.PSPConfig
	logger  ports.Logger
}

// NewService creates a new charge service.
func NewService(gateway ports.ChargeGateway, cfg *config.PSPConfig, logger ports.Logger) *Service {
	return &Service{
		gateway: gateway,
		cfg:     cfg,
		logger:  logger,
	}
}

// CreateCharge validates the request, routes it to the dynamic or static
// path, and returns the unified charge record.
func (s *Service) CreateCharge(ctx context.Context, req *models.ChargeRequest) (*models.Charge, error) {
	key := strings.TrimSpace(req.Key)
	if key == "" {
		return nil, domain.NewDomainError(domain.ErrorCodeValidationMissingField, "receiving key is required")
	}
	if !req.Amount.IsPositive() {
		return nil, domain.NewDomainError(domain.ErrorCodeValidationAmountInvalid, "amount must be positive").
			WithDetail("amount", req.Amount.String())
	}

	if s.isOwnKey(key) {
		return s.createDynamic(ctx, key, req)
	}
	return s.createStatic(key, req), nil
}

// isOwnKey reports whether the key is the operator's configured receiving
// key, compared case-insensitively after trimming.
func (s *Service) isOwnKey(key string) bool {
	own := strings.TrimSpace(s.cfg.ReceiverKey)
	return own != "" && strings.EqualFold(key, own)
}

func (s *Service) createDynamic(ctx context.Context, key string, req *models.ChargeRequest) (*models.Charge, error) {
	result, err := s.gateway.CreateCharge(ctx, &ports.CreateChargeRequest{
		Key:           key,
		Amount:        req.Amount,
		PayerNote:     req.Reference,
		ExpirySeconds: chargeExpirySeconds,
	})
	if err != nil {
		return nil, err
	}

	charge := &models.Charge{
		Mode: models.ChargeModeDynamic,
		TxID: result.TxID,
	}

	if result.IsDirect() {
		charge.Payload = result.Payload
		s.logger.Info("dynamic charge created",
			ports.String("txid", result.TxID),
			ports.String("source", "direct"),
		)
		return charge, nil
	}

	loc, err := s.gateway.FetchLocationPayload(ctx, result.LocationID)
	if err != nil {
		return nil, err
	}
	charge.Payload = loc.Payload
	charge.QRCodeImage = loc.Image

	s.logger.Info("dynamic charge created",
		ports.String("txid", result.TxID),
		ports.String("source", "location"),
	)
	return charge, nil
}

func (s *Service) createStatic(key string, req *models.ChargeRequest) *models.Charge {
	payload := emv.EncodeStatic(emv.StaticPayload{
		Key:       key,
		Amount:    req.Amount,
		Name:      req.Name,
		City:      req.City,
		Reference: req.Reference,
	})

	s.logger.Info("static charge encoded",
		ports.String("key_type", string(models.ClassifyKey(key))),
	)

	return &models.Charge{
		Mode:    models.ChargeModeStatic,
		Payload: payload,
	}
}
