package ports

import (
	"context"

	"efris-bridge/internal/domain/model"
)

// RateSource resolves a conversion rate through the ERP's EFRIS integration.
type RateSource interface {
	GetExchangeRate(ctx context.Context, query model.RateQuery) (*model.RateResponse, error)
}

// CustomerDirectory looks up ERP customers. The bool is false when no customer has the tax id.
type CustomerDirectory interface {
	FindCustomerByTaxID(ctx context.Context, taxID string) (string, bool, error)
}

type TaxpayerSource interface {
	QueryCustomerDetails(ctx context.Context, req model.CustomerDetailsRequest) (*model.TaxpayerRecord, error)
}

type BranchSource interface {
	FetchEfrisBranches(ctx context.Context, company string) (*model.BranchSummary, error)
}

type ItemSyncQueue interface {
	EnqueueSyncEfrisItems(ctx context.Context, req model.ItemSyncRequest) (string, error)
}

// CreditNoteGateway reads the linked E Invoice and confirms its cancellation.
type CreditNoteGateway interface {
	EInvoiceStatus(ctx context.Context, eInvoice string) (string, error)
	ConfirmIRNCancellation(ctx context.Context, doc model.Document) error
}

// JobPublisher announces accepted background jobs to downstream consumers.
type JobPublisher interface {
	PublishItemSync(ctx context.Context, job model.ItemSyncJob) error
}
