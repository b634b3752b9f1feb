package app

import (
	"context"
	"fmt"

	"github.com/opslane/riskplane/config"
	"github.com/opslane/riskplane/handlers"
	"github.com/opslane/riskplane/repositories"
	"github.com/opslane/riskplane/repositories/memory"
	"github.com/opslane/riskplane/repositories/postgres"
	"github.com/opslane/riskplane/services/audit"
	"github.com/opslane/riskplane/services/guardrail"
	"github.com/opslane/riskplane/services/pipeline"
	"github.com/opslane/riskplane/services/providers"
	"github.com/opslane/riskplane/services/providers/openai"
	"github.com/opslane/riskplane/services/reasoning"
	"github.com/opslane/riskplane/services/resolver"
	"github.com/opslane/riskplane/services/tools"
	"go.uber.org/zap"
)

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	DB     *postgres.DB // nil when running on the in-memory audit store
	Logger *zap.Logger

	// Repositories
	AuditRepo repositories.AuditRepository

	// Services
	Audit    *audit.AuditService
	Pipeline *pipeline.PipelineService

	// AuditStore is the readiness probe target; nil when the audit log
	// runs in memory and there is nothing external to check.
	AuditStore handlers.HealthChecker
}

// NewDependencies creates and wires up all application dependencies.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if err := deps.initAuditStore(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize audit store: %w", err)
	}

	if err := deps.initServices(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// initAuditStore selects the audit repository backend. Postgres when a
// database is configured, otherwise the in-memory store.
func (d *Dependencies) initAuditStore(ctx context.Context, cfg *config.Config) error {
	if cfg.Database == nil {
		d.AuditRepo = memory.NewAuditRepository()
		d.Logger.Info("audit store: in-memory (no database configured)")
		return nil
	}

	db, err := postgres.NewDB(*cfg.Database, d.Logger)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.InitSchema(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to initialize audit schema: %w", err)
	}

	d.DB = db
	d.AuditRepo = postgres.NewAuditRepository(db, d.Logger)
	d.AuditStore = db
	d.Logger.Info("audit store: postgres")
	return nil
}

// initServices wires the pipeline stages in execution order.
func (d *Dependencies) initServices(ctx context.Context, cfg *config.Config) error {
	auditService, err := audit.NewAuditService(ctx, d.AuditRepo, d.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize audit service: %w", err)
	}
	d.Audit = auditService

	guardrailService := guardrail.NewGuardrailService(cfg.Guardrail, d.Logger)

	provider := openai.NewOpenAIAdapter(providers.ProviderConfig{
		APIKey:  cfg.Reasoning.APIKey,
		BaseURL: cfg.Reasoning.BaseURL,
		Timeout: cfg.Reasoning.Timeout,
	}, cfg.Reasoning.Model)
	reasoningService := reasoning.NewReasoningService(provider, cfg.Reasoning, d.Logger)

	resolverService := resolver.NewResolverService()

	var notifier tools.Notifier
	if cfg.Notify.WebhookURL != "" {
		notifier = tools.NewWebhookNotifier(cfg.Notify.WebhookURL, cfg.Notify.Timeout)
		d.Logger.Info("ops notifications: webhook", zap.String("url", cfg.Notify.WebhookURL))
	} else {
		notifier = tools.NewLogNotifier(d.Logger)
		d.Logger.Info("ops notifications: application log (no webhook configured)")
	}
	dispatcher := tools.NewDispatcherService(notifier, d.Logger)

	d.Pipeline = pipeline.NewPipelineService(
		guardrailService,
		reasoningService,
		resolverService,
		dispatcher,
		auditService,
		d.Logger,
	)

	return nil
}

// Close gracefully shuts down all dependencies
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	var errs []error

	if d.DB != nil {
		if err := d.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		} else {
			d.Logger.Info("database connection closed")
		}
	}

	if d.Logger != nil {
		_ = d.Logger.Sync()
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %v", errs)
	}

	return nil
}
