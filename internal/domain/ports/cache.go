package ports

import (
	"context"
	"time"

	"efris-bridge/internal/domain/model"

	"github.com/shopspring/decimal"
)

// RateCache holds the day's authoritative rate per currency and company.
type RateCache interface {
	Get(ctx context.Context, query model.RateQuery, date time.Time) (decimal.Decimal, bool)
	Set(ctx context.Context, query model.RateQuery, date time.Time, rate decimal.Decimal) error
	ClearExpired(ctx context.Context) error
}
