package service

import (
	"context"
	"fmt"

	"efris-bridge/internal/domain/model"
	"efris-bridge/internal/domain/ports"
	"efris-bridge/pkg/logger"

	"github.com/shopspring/decimal"
)

const fetchRateFailedMessage = "Failed to fetch exchange rate."

// ReconcilePolicy controls which outcomes produce a notice.
type ReconcilePolicy struct {
	// NotifyNeutralRate also announces a rate of exactly 1.
	NotifyNeutralRate bool
	// SurfaceFailures shows the authority's failure message (or a generic one).
	SurfaceFailures bool
}

// RateReconciler writes a fetched rate onto a document's conversion rate.
type RateReconciler struct {
	notifier ports.Notifier
	policy   ReconcilePolicy
	log      *logger.Logger
}

func NewRateReconciler(notifier ports.Notifier, policy ReconcilePolicy, log *logger.Logger) *RateReconciler {
	return &RateReconciler{
		notifier: notifier,
		policy:   policy,
		log:      log,
	}
}

// Reconcile applies result to doc and reports whether ConversionRate changed.
func (r *RateReconciler) Reconcile(ctx context.Context, doc *model.Document, result model.RateResult) bool {
	if !result.Success || !result.Rate.Valid {
		if r.policy.SurfaceFailures && !result.Success {
			msg := result.Message
			if msg == "" {
				msg = fetchRateFailedMessage
			}
			r.notifier.Msgprint(ctx, msg, "", "", false)
		}
		return false
	}

	rate := result.Rate.Decimal
	if !rate.IsPositive() {
		r.log.Warn("Ignoring non-positive exchange rate", "document", doc.Key(), "rate", rate.String())
		return false
	}

	doc.ConversionRate = rate
	r.log.Info("Applied EFRIS exchange rate", "document", doc.Key(), "currency", doc.Currency, "rate", rate.String())

	if rate.Equal(decimal.NewFromInt(1)) && !r.policy.NotifyNeutralRate {
		return true
	}
	r.notifier.Msgprint(ctx, fmt.Sprintf("Exchange Rate from EFRIS: %s", rate.String()), "", "", false)
	return true
}
