// Command funnel serves the signup and checkout funnel API.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/funnel/modules/signup"
	"github.com/dmitrymomot/funnel/pkg/checkout"
	"github.com/dmitrymomot/funnel/pkg/config"
	"github.com/dmitrymomot/funnel/pkg/conversion"
	"github.com/dmitrymomot/funnel/pkg/environment"
	"github.com/dmitrymomot/funnel/pkg/httpserver"
	"github.com/dmitrymomot/funnel/pkg/i18n"
	"github.com/dmitrymomot/funnel/pkg/logger"
	"github.com/dmitrymomot/funnel/pkg/plan"
	"github.com/dmitrymomot/funnel/pkg/ratelimiter"
	"github.com/dmitrymomot/funnel/pkg/sink"
	"github.com/dmitrymomot/funnel/pkg/visitor"
	"github.com/dmitrymomot/funnel/pkg/webhook"
	"github.com/dmitrymomot/funnel/svc/funnel"
)

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var cfg appConfig
	if err := config.Load(&cfg); err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	log := logger.New(
		logger.WithMode(logger.ParseMode(cfg.Mode), cfg.ServiceName),
		logger.WithLevel(cfg.LogLevel),
		logger.WithContextExtractors(environment.LoggerExtractor(), visitor.LoggerExtractor()),
	)
	logger.SetAsDefault(log)

	texts, err := i18n.LoadCopy(i18n.WithLogger(log), i18n.WithMissingKeysLogging(true))
	if err != nil {
		return fmt.Errorf("loading copy: %w", err)
	}

	kafkaSink := sink.NewKafka(sink.SplitBrokers(cfg.Sinks.KafkaBrokers), cfg.Sinks.KafkaTopic)
	reporter := newReporter(cfg, log, kafkaSink)
	log.InfoContext(ctx, "conversion sinks registered", slog.Any("sinks", reporter.Sinks()))

	store := funnel.NewMemoryStore(
		funnel.WithIdleTTL(cfg.Funnel.SessionTTL),
		funnel.WithCapacity(cfg.Funnel.SessionCapacity),
	)

	opts := []funnel.Option{
		funnel.WithStore(store),
		funnel.WithCatalog(environment.Production, plan.Production()),
		funnel.WithCatalog(environment.Sandbox, plan.Sandbox()),
		funnel.WithReporter(reporter),
		funnel.WithLogger(log.With(logger.Component("funnel"))),
		funnel.WithSettleDelay(cfg.Funnel.SettleDelay),
		funnel.WithAckTimeout(cfg.Funnel.AckTimeout),
		funnel.WithSuccessURL(cfg.Funnel.SuccessURL),
	}
	notifications := make(map[environment.Environment]*checkout.NotificationParser, 2)
	for env, pc := range map[environment.Environment]checkout.PaddleConfig{
		environment.Production: cfg.Paddle,
		environment.Sandbox:    cfg.Sandbox,
	} {
		gw, err := checkout.NewPaddleGateway(pc, env)
		switch {
		case errors.Is(err, checkout.ErrMissingAPIKey):
			log.WarnContext(ctx, "paddle gateway not configured", slog.String("environment", env.String()))
		case err != nil:
			return fmt.Errorf("creating %s paddle gateway: %w", env, err)
		default:
			opts = append(opts, funnel.WithGateway(env, gw))
		}
		if pc.WebhookSecret != "" {
			notifications[env] = checkout.NewNotificationParser(pc.WebhookSecret)
		}
	}
	svc := funnel.NewService(opts...)

	limiter, err := ratelimiter.New(cfg.RateLimit)
	if err != nil {
		return fmt.Errorf("creating rate limiter: %w", err)
	}

	r := chi.NewRouter()
	r.Get("/healthz", httpserver.Health(log))
	r.Get("/readyz", httpserver.Health(log, httpserver.Check{
		Name: "paddle",
		Fn: func(context.Context) error {
			if cfg.Paddle.APIKey == "" {
				return checkout.ErrGatewayUnavailable
			}
			return nil
		},
	}))
	r.Mount("/", signup.Router(signup.RouterOptions{
		Funnel:        svc,
		Copy:          texts,
		Notifications: notifications,
		Logger:        log.With(logger.Component("signup")),
		Limiter:       limiter,
	}))

	server := httpserver.NewFromConfig(cfg.HTTP,
		httpserver.WithLogger(log.With(logger.Component("http"))),
		httpserver.WithStopHook(func() {
			store.Close()
			if err := kafkaSink.Close(); err != nil {
				log.Error("closing kafka writer", logger.Error(err))
			}
		}),
	)
	return server.Run(ctx, r)
}

// newReporter registers every configured sink with the traits its service
// expects. Unconfigured sinks report themselves disabled and are skipped.
func newReporter(cfg appConfig, log *slog.Logger, kafkaSink *sink.Kafka) *conversion.Reporter {
	s := cfg.Sinks
	httpOpts := []sink.Option{
		sink.WithSendOptions(webhook.WithMaxRetries(s.MaxRetries)),
		sink.WithCircuitBreaker(s.BreakerFailures, s.BreakerRecovery),
	}

	opts := []conversion.Option{
		conversion.WithLogger(log.With(logger.Component("conversion"))),
		conversion.WithTimeout(cfg.Funnel.ReportTimeout),
		conversion.WithSink(sink.NewCRM(s.CRMEndpoint, s.CRMPushKey, httpOpts...), conversion.Acknowledged),
		conversion.WithSink(sink.NewPlausible(s.PlausibleDomain, httpOpts...), conversion.RevenueRelevant),
		conversion.WithSink(sink.NewPixel(s.PixelEndpoint, httpOpts...), conversion.RevenueRelevant, conversion.SuppressInSandbox),
		conversion.WithSink(
			sink.NewGoals(s.GoalEndpoint, httpOpts...).WithGoalIDs(s.GoalPurchaseID, s.GoalFormSubmitID),
			conversion.RevenueRelevant, conversion.SuppressInSandbox,
		),
		conversion.WithSink(kafkaSink),
	}
	if s.LogEvents {
		opts = append(opts, conversion.WithSink(sink.NewLog(log.With(logger.Component("events")))))
	}
	return conversion.NewReporter(opts...)
}
