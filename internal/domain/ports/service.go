package ports

import (
	"context"

	"efris-bridge/internal/domain/model"
)

// FormService handles ERP form events.
type FormService interface {
	CurrencyChanged(ctx context.Context, doc model.Document) (*model.FormReply, error)
	CompanyChanged(ctx context.Context, doc model.Document) error
	TaxIDChanged(ctx context.Context, doc model.Document) (*model.FormReply, error)
	NewCustomerToggled(ctx context.Context, doc model.Document) (*model.FormReply, error)
	SyncItems(ctx context.Context, req model.ItemSyncRequest) (*model.ItemSyncJob, error)
	CheckCreditNoteApproval(ctx context.Context, doc model.Document) (*model.FormReply, error)
}
