package service

import (
	"context"
	"strings"

	"efris-bridge/internal/domain/ports"
	"efris-bridge/internal/metrics"
	"efris-bridge/pkg/logger"
)

// SuppressionRule matches host validation messages that the EFRIS rate makes redundant.
type SuppressionRule string

// ExchangeRateUnavailable is raised by the host when its own rate lookup fails,
// usually before the EFRIS rate arrives or after it already replaced the value.
const ExchangeRateUnavailable SuppressionRule = "Exchange Rate not available"

func (r SuppressionRule) Matches(message string) bool {
	return strings.Contains(message, string(r))
}

// ValidationFilter swallows host notices matching its rule and forwards
// everything else untouched.
type ValidationFilter struct {
	next    ports.Notifier
	rule    SuppressionRule
	log     *logger.Logger
	metrics *metrics.Metrics
}

// NewValidationFilter wraps next once. Wrapping a notifier that is already a
// ValidationFilter returns it as is.
func NewValidationFilter(next ports.Notifier, log *logger.Logger, m *metrics.Metrics) ports.Notifier {
	if f, ok := next.(*ValidationFilter); ok {
		return f
	}
	return &ValidationFilter{
		next:    next,
		rule:    ExchangeRateUnavailable,
		log:     log,
		metrics: m,
	}
}

func (f *ValidationFilter) Throw(ctx context.Context, message, title string) {
	if f.rule.Matches(message) {
		f.suppressed("throw", message)
		return
	}
	f.next.Throw(ctx, message, title)
}

func (f *ValidationFilter) Msgprint(ctx context.Context, message, title, indicator string, alert bool) {
	if f.rule.Matches(message) {
		f.suppressed("msgprint", message)
		return
	}
	f.next.Msgprint(ctx, message, title, indicator, alert)
}

func (f *ValidationFilter) suppressed(primitive, message string) {
	f.metrics.SuppressedMessages.WithLabelValues(primitive).Inc()
	f.log.Info("Suppressed host exchange rate message", "primitive", primitive, "message", message)
}
