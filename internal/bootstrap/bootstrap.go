package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kirillkom/request-classifier-console/internal/config"
	"github.com/kirillkom/request-classifier-console/internal/core/usecase"
	"github.com/kirillkom/request-classifier-console/internal/infrastructure/classifier/httpclient"
	"github.com/kirillkom/request-classifier-console/internal/infrastructure/extractor/pdfinfo"
	"github.com/kirillkom/request-classifier-console/internal/infrastructure/extractor/plaintext"
	"github.com/kirillkom/request-classifier-console/internal/infrastructure/preview"
	"github.com/kirillkom/request-classifier-console/internal/infrastructure/queue/nats"
	"github.com/kirillkom/request-classifier-console/internal/infrastructure/resilience"
	"github.com/kirillkom/request-classifier-console/internal/observability/metrics"
)

const serviceName = "request-classifier-console"

type App struct {
	Config config.Config

	Sessions *usecase.SessionManager
	Previews *preview.Registry
	Metrics  *metrics.ConsoleMetrics
	Breakers *resilience.Executor

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	precedence, err := usecase.ParseErrorPrecedence(cfg.ClassifyErrorPrecedence)
	if err != nil {
		return nil, fmt.Errorf("parse CLASSIFY_ERROR_PRECEDENCE: %w", err)
	}

	consoleMetrics := metrics.NewConsoleMetrics(serviceName)

	executor := resilience.NewExecutor(resilienceConfig(cfg, consoleMetrics))
	classifier := httpclient.NewWithOptions(cfg.ClassifyEndpoint, httpclient.Options{
		Timeout:            time.Duration(cfg.ClassifyTimeoutSeconds) * time.Second,
		ResilienceExecutor: executor,
	})

	previews := preview.NewRegistry("/preview/content/")
	consoleMetrics.RegisterLiveGauge("previews_live", "Preview handles not yet revoked.", previews.Live)

	deps := usecase.FormControllerDeps{
		Classifier: classifier,
		Previews:   previews,
		Text:       plaintext.NewDecoder(cfg.TextPreviewMaxKB << 10),
		PDF:        pdfinfo.NewInspector(),
		Observer:   consoleMetrics,
		Precedence: precedence,
	}

	closers := []func(){}
	if cfg.NATSURL != "" {
		publisher, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
			ResilienceExecutor: executor,
		})
		if err != nil {
			return nil, fmt.Errorf("init event publisher: %w", err)
		}
		deps.Events = publisher
		closers = append(closers, publisher.Close)
		slog.Info("classification_events_enabled", "subject", cfg.NATSSubject)
	}

	sessions := usecase.NewSessionManager(deps, time.Duration(cfg.SessionIdleTTLMinutes)*time.Minute)
	janitorCtx, stopJanitor := context.WithCancel(context.WithoutCancel(ctx))
	go sessions.RunJanitor(janitorCtx, time.Duration(cfg.SessionSweepSeconds)*time.Second)

	return &App{
		Config:   cfg,
		Sessions: sessions,
		Previews: previews,
		Metrics:  consoleMetrics,
		Breakers: executor,
		closeFn: func() {
			stopJanitor()
			sessions.Close()
			for _, closeFn := range closers {
				closeFn()
			}
		},
	}, nil
}

// resilienceConfig never retries a classification, since the service may
// already have acted on it. Event publishes are idempotent and get three tries.
func resilienceConfig(cfg config.Config, m *metrics.ConsoleMetrics) resilience.Config {
	policy := resilience.DefaultConfig()
	policy.Retry.MaxAttempts = 1
	policy.Operations = map[string]resilience.RetryPolicy{
		"nats.publish": {MaxAttempts: 3},
	}
	policy.Breaker.Enabled = cfg.BreakerEnabled
	if cfg.BreakerMinRequests > 0 {
		policy.Breaker.MinRequests = uint32(cfg.BreakerMinRequests)
	}
	policy.Breaker.FailureRatio = cfg.BreakerFailureRatio
	policy.Breaker.OpenTimeout = time.Duration(cfg.BreakerOpenTimeoutSecs) * time.Second
	policy.OnStateChange = m.ObserveBreakerState
	return policy
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
