package service

import (
	"context"
	"strings"

	"efris-bridge/internal/domain/model"
	"efris-bridge/internal/domain/ports"
	"efris-bridge/internal/metrics"
	"efris-bridge/pkg/logger"
	"efris-bridge/pkg/utils"

	"github.com/shopspring/decimal"
)

// RateFetcher asks the ERP for the EFRIS conversion rate of a currency.
// A nil cache disables the daily cache.
type RateFetcher struct {
	source  ports.RateSource
	cache   ports.RateCache
	log     *logger.Logger
	metrics *metrics.Metrics
}

func NewRateFetcher(source ports.RateSource, cache ports.RateCache, log *logger.Logger, m *metrics.Metrics) *RateFetcher {
	return &RateFetcher{
		source:  source,
		cache:   cache,
		log:     log,
		metrics: m,
	}
}

// Fetch performs at most one remote call and never returns an error: every
// failure is folded into the result for the caller to reconcile.
func (f *RateFetcher) Fetch(ctx context.Context, query model.RateQuery) model.RateResult {
	today := utils.Today()

	if f.cache != nil {
		if rate, found := f.cache.Get(ctx, query, today); found {
			f.metrics.RateCacheLookups.WithLabelValues("hit").Inc()
			f.log.Debug("Exchange rate found in cache", "query", query.String())
			return model.RateResult{Success: true, Rate: decimal.NewNullDecimal(rate)}
		}
		f.metrics.RateCacheLookups.WithLabelValues("miss").Inc()
	}

	f.log.Info("Fetching exchange rate from EFRIS", "query", query.String())
	resp, err := f.source.GetExchangeRate(ctx, query)
	if err != nil {
		f.log.Error("Failed to fetch exchange rate", "error", err, "query", query.String())
		return model.RateResult{Success: false, Message: err.Error()}
	}
	if resp == nil {
		return model.RateResult{Success: false}
	}
	if resp.Success != nil && !*resp.Success {
		return model.RateResult{Success: false, Message: resp.Message}
	}

	result := model.RateResult{Success: true, Message: resp.Message}
	rate, ok := parseRate(resp.Rate)
	if !ok {
		f.log.Warn("EFRIS returned no usable rate", "query", query.String(), "rate", resp.Rate)
		return result
	}
	result.Rate = decimal.NewNullDecimal(rate)

	if f.cache != nil && rate.IsPositive() {
		if err := f.cache.Set(ctx, query, today, rate); err != nil {
			f.log.Error("Failed to cache exchange rate", "error", err, "query", query.String())
		}
	}
	return result
}

// parseRate accepts the rate as sent on the wire; empty, unparsable and zero
// values are all "no rate".
func parseRate(raw string) (decimal.Decimal, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, false
	}
	rate, err := decimal.NewFromString(raw)
	if err != nil || rate.IsZero() {
		return decimal.Zero, false
	}
	return rate, true
}
