package main

import (
	"log/slog"
	"time"

	"github.com/dmitrymomot/funnel/pkg/checkout"
	"github.com/dmitrymomot/funnel/pkg/httpserver"
	"github.com/dmitrymomot/funnel/pkg/ratelimiter"
)

type appConfig struct {
	Mode        string     `env:"APP_MODE" envDefault:"development"`
	ServiceName string     `env:"SERVICE_NAME" envDefault:"funnel" validate:"required"`
	LogLevel    slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`

	HTTP      httpserver.Config
	RateLimit ratelimiter.Config

	Funnel  funnelConfig
	Paddle  checkout.PaddleConfig `envPrefix:"PADDLE_"`
	Sandbox checkout.PaddleConfig `envPrefix:"PADDLE_SANDBOX_"`
	Sinks   sinksConfig
}

type funnelConfig struct {
	SettleDelay     time.Duration `env:"FUNNEL_SETTLE_DELAY" envDefault:"500ms" validate:"gte=0"`
	AckTimeout      time.Duration `env:"FUNNEL_ACK_TIMEOUT" envDefault:"5s" validate:"gt=0"`
	SuccessURL      string        `env:"FUNNEL_SUCCESS_URL" envDefault:"https://yes.onetake.ai/onboarding" validate:"omitempty,url"`
	SessionTTL      time.Duration `env:"FUNNEL_SESSION_TTL" envDefault:"2h" validate:"gt=0"`
	SessionCapacity int           `env:"FUNNEL_SESSION_CAPACITY" envDefault:"100000" validate:"gt=0"`
	ReportTimeout   time.Duration `env:"FUNNEL_REPORT_TIMEOUT" envDefault:"10s" validate:"gt=0"`
}

type sinksConfig struct {
	CRMEndpoint      string        `env:"CRM_WEBHOOK_URL" validate:"omitempty,url"`
	CRMPushKey       string        `env:"CRM_PUSH_KEY"`
	PlausibleDomain  string        `env:"PLAUSIBLE_DOMAIN"`
	PixelEndpoint    string        `env:"PIXEL_POSTBACK_URL" validate:"omitempty,url"`
	GoalEndpoint     string        `env:"GOAL_ENDPOINT_URL" validate:"omitempty,url"`
	GoalPurchaseID   string        `env:"GOAL_PURCHASE_ID"`
	GoalFormSubmitID string        `env:"GOAL_FORM_SUBMIT_ID"`
	KafkaBrokers     string        `env:"KAFKA_BROKERS"`
	KafkaTopic       string        `env:"KAFKA_TOPIC" envDefault:"funnel.conversions"`
	LogEvents        bool          `env:"SINK_LOG_EVENTS" envDefault:"false"`
	MaxRetries       int           `env:"SINK_MAX_RETRIES" envDefault:"2" validate:"gte=0"`
	BreakerFailures  int           `env:"SINK_BREAKER_FAILURES" envDefault:"5" validate:"gt=0"`
	BreakerRecovery  time.Duration `env:"SINK_BREAKER_RECOVERY" envDefault:"30s" validate:"gt=0"`
}
