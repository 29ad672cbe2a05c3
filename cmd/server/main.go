package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/lembretes/pix-service/internal/adapters/efi"
	"github.com/lembretes/pix-service/internal/adapters/ledger"
	"github.com/lembretes/pix-service/internal/adapters/secrets"
	"github.com/lembretes/pix-service/internal/config"
	"github.com/lembretes/pix-service/internal/domain/ports"
	pixHandler "github.com/lembretes/pix-service/internal/handlers/pix"
	chargeService "github.com/lembretes/pix-service/internal/services/charge"
	keyvalidationService "github.com/lembretes/pix-service/internal/services/keyvalidation"
	refundService "github.com/lembretes/pix-service/internal/services/refund"
	webhookService "github.com/lembretes/pix-service/internal/services/webhook"
	"github.com/lembretes/pix-service/pkg/observability"
	"github.com/lembretes/pix-service/pkg/security"
)

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	logAdapter, err := security.NewZapLoggerFromLevel(cfg.Logger.Level, cfg.Logger.Development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger error: %v\n", err)
		os.Exit(1)
	}
	defer logAdapter.Sync()
	logger := logAdapter
	zlog := logAdapter.Zap()

	zlog.Info("starting pix service",
		zap.Bool("sandbox", cfg.PSP.Sandbox),
		zap.String("psp_host", cfg.PSP.BaseURL()),
	)

	ctx := context.Background()
	if err := resolveSecrets(ctx, cfg, logger); err != nil {
		zlog.Fatal("failed to resolve secrets", zap.Error(err))
	}

	session, err := efi.NewSessionManager(&cfg.PSP, logger)
	if err != nil {
		zlog.Fatal("failed to initialize PSP session", zap.Error(err))
	}

	chargeGateway := efi.NewChargeAdapter(session, session.BaseURL(), session.Client(), cfg.PSP.RequestTimeout, logger)
	refundGateway := efi.NewRefundAdapter(session, session.BaseURL(), session.Client(), cfg.PSP.RequestTimeout, logger)
	sendGateway := efi.NewSendAdapter(session, session.BaseURL(), session.Client(), cfg.PSP.RequestTimeout, logger)

	idempotency, cleanup, err := buildLedger(ctx, &cfg.Ledger)
	if err != nil {
		zlog.Fatal("failed to initialize idempotency ledger", zap.Error(err))
	}
	defer cleanup()
	zlog.Info("idempotency ledger ready", zap.String("backend", cfg.Ledger.Backend))

	charges := chargeService.NewService(chargeGateway, &cfg.PSP, logger)
	refunds := refundService.NewService(refundGateway, &cfg.Refund, logger)
	validations := keyvalidationService.NewService(sendGateway, &cfg.PSP, logger)
	webhooks := webhookService.NewService(refunds, idempotency, logger)

	handler := pixHandler.NewHandler(charges, refunds, validations, webhooks, logger)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           pixHandler.NewRouter(handler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	metricsServer := observability.StartMetricsServer(fmt.Sprintf("%d", cfg.Server.MetricsPort))

	go func() {
		zlog.Info("HTTP server listening", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zlog.Error("HTTP server shutdown error", zap.Error(err))
	}
	if err := observability.ShutdownMetricsServer(metricsServer); err != nil {
		zlog.Error("metrics server shutdown error", zap.Error(err))
	}

	zlog.Info("stopped")
}

// resolveSecrets fills the PSP credentials from the configured secrets
// backend. With the default env backend the values already arrived through
// the environment and nothing is fetched.
func resolveSecrets(ctx context.Context, cfg *config.Config, logger ports.Logger) error {
	if cfg.Secrets.Backend == "env" {
		return nil
	}

	manager, err := secrets.NewFromConfig(ctx, &cfg.Secrets, logger)
	if err != nil {
		return err
	}

	secret, err := manager.GetSecret(ctx, "EFI_CLIENT_SECRET")
	if err != nil {
		return fmt.Errorf("resolve EFI_CLIENT_SECRET: %w", err)
	}
	cfg.PSP.ClientSecret = secret.Value

	// The certificate may be unencrypted; a missing passphrase is fine.
	if passphrase, err := manager.GetSecret(ctx, "EFI_CERT_PASSPHRASE"); err == nil {
		cfg.PSP.CertPassphrase = passphrase.Value
	}

	return nil
}

func buildLedger(ctx context.Context, cfg *config.LedgerConfig) (ports.IdempotencyLedger, func(), error) {
	switch cfg.Backend {
	case "redis":
		l, err := ledger.NewRedisLedger(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return l, func() { l.Close() }, nil
	case "memory":
		return ledger.NewMemoryLedger(cfg.TTL), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unsupported ledger backend: %s", cfg.Backend)
	}
}
