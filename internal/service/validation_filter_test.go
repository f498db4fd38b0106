package service

import (
	"context"
	"testing"

	"efris-bridge/pkg/logger"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observedLogger() (*logger.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.InfoLevel)
	return logger.FromZap(zap.New(core)), logs
}

func TestValidationFilter_SuppressesExchangeRateThrow(t *testing.T) {
	host := &recordingNotifier{}
	log, logs := observedLogger()
	m := newTestMetrics()
	filter := NewValidationFilter(host, log, m)

	assert.NotPanics(t, func() {
		filter.Throw(context.Background(), "Exchange Rate not available for USD", "Error")
	})

	assert.Empty(t, host.throws)
	assert.Equal(t, 1, logs.FilterMessage("Suppressed host exchange rate message").Len())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SuppressedMessages.WithLabelValues("throw")))
}

func TestValidationFilter_SuppressesExchangeRateMsgprint(t *testing.T) {
	host := &recordingNotifier{}
	filter := NewValidationFilter(host, newTestLogger(), newTestMetrics())

	filter.Msgprint(context.Background(), "Exchange Rate not available for EUR to UGX on 2026-10-15", "Warning", "orange", true)

	assert.Empty(t, host.msgprints)
}

func TestValidationFilter_PassesOtherMessagesUnchanged(t *testing.T) {
	host := &recordingNotifier{}
	log, logs := observedLogger()
	filter := NewValidationFilter(host, log, newTestMetrics())

	filter.Throw(context.Background(), "Stock not available", "Stock Error")
	filter.Msgprint(context.Background(), "Stock not available", "Stock", "red", true)
	filter.Msgprint(context.Background(), "exchange rate not available", "", "", false)

	require.Len(t, host.throws, 1)
	assert.Equal(t, throwCall{"Stock not available", "Stock Error"}, host.throws[0])
	require.Len(t, host.msgprints, 2)
	assert.Equal(t, msgprintCall{"Stock not available", "Stock", "red", true}, host.msgprints[0])
	assert.Equal(t, "exchange rate not available", host.msgprints[1].Message)
	assert.Zero(t, logs.Len())
}

func TestValidationFilter_WrappingIsIdempotent(t *testing.T) {
	host := &recordingNotifier{}
	log, logs := observedLogger()
	m := newTestMetrics()

	once := NewValidationFilter(host, log, m)
	twice := NewValidationFilter(once, log, m)
	require.Same(t, once, twice)

	twice.Throw(context.Background(), "Exchange Rate not available for USD", "")
	twice.Throw(context.Background(), "Stock not available", "")

	assert.Equal(t, 1, logs.Len())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SuppressedMessages.WithLabelValues("throw")))
	require.Len(t, host.throws, 1)
	assert.Equal(t, "Stock not available", host.throws[0].Message)
}

func TestSuppressionRule_Matches(t *testing.T) {
	assert.True(t, ExchangeRateUnavailable.Matches("Exchange Rate not available for USD"))
	assert.True(t, ExchangeRateUnavailable.Matches("Error: Exchange Rate not available"))
	assert.False(t, ExchangeRateUnavailable.Matches("Exchange Rate available"))
	assert.False(t, ExchangeRateUnavailable.Matches(""))
}
