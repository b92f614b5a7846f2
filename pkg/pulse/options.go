package pulse

import (
	"log/slog"
	"time"

	"github.com/randalmurphal/pulse/pkg/pulse/config"
	"github.com/randalmurphal/pulse/pkg/pulse/journal"
	"github.com/randalmurphal/pulse/pkg/pulse/observability"
)

// DefaultTierTimeout bounds Critical and High listener invocations when
// neither an option nor a config value overrides it.
const DefaultTierTimeout = 5 * time.Second

// Config keys consulted by WithConfig. Values follow config.Duration
// coercion, so both "2s" and plain seconds (2 or 2.5) work.
const (
	CriticalTimeoutKey = "critical_timeout"
	HighTimeoutKey     = "high_timeout"
)

// busConfig holds construction-time configuration for a Bus.
type busConfig struct {
	criticalTimeout time.Duration
	highTimeout     time.Duration
	criticalSet     bool
	highSet         bool

	cfg    config.Config
	cfgSet bool

	logger     *slog.Logger
	recorder   observability.MetricsRecorder
	spans      observability.SpanManager
	journal    journal.Journal
	logContext func(fields map[string]any)
}

// Option configures a Bus at construction.
type Option func(*busConfig)

// WithCriticalTimeout bounds each Critical listener invocation.
// A zero or negative duration disables the bound.
// Takes precedence over WithConfig.
func WithCriticalTimeout(d time.Duration) Option {
	return func(c *busConfig) {
		c.criticalTimeout = d
		c.criticalSet = true
	}
}

// WithHighTimeout bounds each High listener invocation.
// A zero or negative duration disables the bound.
// Takes precedence over WithConfig.
func WithHighTimeout(d time.Duration) Option {
	return func(c *busConfig) {
		c.highTimeout = d
		c.highSet = true
	}
}

// WithConfig resolves tier timeouts from the keys CriticalTimeoutKey and
// HighTimeoutKey. Missing or malformed values silently fall back to
// DefaultTierTimeout; config lookups cannot fail.
func WithConfig(cfg config.Config) Option {
	return func(c *busConfig) {
		c.cfg = cfg
		c.cfgSet = true
	}
}

// WithLogger sets the structured logger for bus events.
// Without it the bus logs nothing.
func WithLogger(logger *slog.Logger) Option {
	return func(c *busConfig) {
		c.logger = logger
	}
}

// WithMetricsRecorder exports publish/error metrics to an external
// collector, alongside the bus's own counters.
func WithMetricsRecorder(rec observability.MetricsRecorder) Option {
	return func(c *busConfig) {
		c.recorder = rec
	}
}

// WithSpanManager traces each publish call.
func WithSpanManager(spans observability.SpanManager) Option {
	return func(c *busConfig) {
		c.spans = spans
	}
}

// WithJournal records isolated listener failures for later inspection.
// Journal writes are best-effort; a failed write is logged and dropped.
func WithJournal(j journal.Journal) Option {
	return func(c *busConfig) {
		c.journal = j
	}
}

// WithLogContext registers a best-effort hook called once per publish with
// the event name and the payload's key list, for attaching ambient
// diagnostic context. Panics inside the hook are swallowed; it can never
// break dispatch.
func WithLogContext(setContext func(fields map[string]any)) Option {
	return func(c *busConfig) {
		c.logContext = setContext
	}
}

// subscribeConfig holds per-subscription configuration.
type subscribeConfig struct {
	priority        Priority
	id              string
	once            bool
	allowDuplicates bool
}

// SubscribeOption configures one subscription.
type SubscribeOption func(*subscribeConfig)

// WithPriority sets the listener's scheduling tier. Default: Normal.
func WithPriority(p Priority) SubscribeOption {
	return func(c *subscribeConfig) {
		c.priority = p
	}
}

// WithID sets an explicit listener identifier. Without it, one is derived
// from the callback's function name and the event key.
func WithID(id string) SubscribeOption {
	return func(c *subscribeConfig) {
		c.id = id
	}
}

// Once removes the listener after its first matching publish.
func Once() SubscribeOption {
	return func(c *subscribeConfig) {
		c.once = true
	}
}

// AllowDuplicates permits registering the same identifier twice under one
// event key.
func AllowDuplicates() SubscribeOption {
	return func(c *subscribeConfig) {
		c.allowDuplicates = true
	}
}
