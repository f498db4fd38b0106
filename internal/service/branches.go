package service

import (
	"context"

	"efris-bridge/internal/domain/ports"
	"efris-bridge/pkg/logger"
)

// BranchSync refreshes the EFRIS branch ids of a company. Failures are only logged.
type BranchSync struct {
	source ports.BranchSource
	log    *logger.Logger
}

func NewBranchSync(source ports.BranchSource, log *logger.Logger) *BranchSync {
	return &BranchSync{source: source, log: log}
}

func (b *BranchSync) Sync(ctx context.Context, company string) {
	summary, err := b.source.FetchEfrisBranches(ctx, company)
	if err != nil {
		b.log.Error("Failed to fetch EFRIS branches", "error", err, "company", company)
		return
	}
	if summary == nil {
		return
	}
	if !summary.Success {
		b.log.Error("EFRIS branch fetch reported failure", "company", company, "error", summary.Error)
		return
	}
	for _, branch := range summary.NotFound {
		b.log.Warn("EFRIS branch has no matching company", "company", company, "branch", branch.BranchName, "branch_id", branch.BranchID)
	}
	b.log.Info("EFRIS branches synced", "company", company, "mapped", len(summary.Mapped), "not_found", len(summary.NotFound))
}
