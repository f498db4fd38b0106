package service

import (
	"context"

	"efris-bridge/internal/domain/model"
	"efris-bridge/internal/domain/ports"
	"efris-bridge/pkg/logger"
)

const (
	customerExistsMessage       = "Customer already exists!"
	customerFetchedMessage      = "Customer details fetched successfully!"
	customerFetchFailedMessage  = "Failed to fetch customer details from EFRIS."
	customerLookupFailedMessage = "Failed to look up customer by tax ID."
)

// CustomerResolver binds a document's customer from a tax id, asking EFRIS for
// the taxpayer when the customer is new to the ERP.
type CustomerResolver struct {
	directory ports.CustomerDirectory
	taxpayers ports.TaxpayerSource
	notifier  ports.Notifier
	log       *logger.Logger
}

func NewCustomerResolver(directory ports.CustomerDirectory, taxpayers ports.TaxpayerSource, notifier ports.Notifier, log *logger.Logger) *CustomerResolver {
	return &CustomerResolver{
		directory: directory,
		taxpayers: taxpayers,
		notifier:  notifier,
		log:       log,
	}
}

// Resolve ignores tax ids that are not yet ten digits.
func (r *CustomerResolver) Resolve(ctx context.Context, doc *model.Document, taxID string, isNew bool) {
	if !model.ValidTaxID(taxID) {
		return
	}

	name, found, err := r.directory.FindCustomerByTaxID(ctx, taxID)
	if err != nil {
		r.log.Error("Customer lookup failed", "error", err, "document", doc.Key())
		r.notifier.Msgprint(ctx, customerLookupFailedMessage, "", "", false)
		return
	}

	if found {
		doc.Customer = name
		if isNew {
			r.notifier.Msgprint(ctx, customerExistsMessage, "", "", false)
		}
		return
	}
	if !isNew {
		return
	}

	req := model.CustomerDetailsRequest{
		Doc:          doc.Name,
		ECompanyName: doc.Company,
		TaxID:        taxID,
		NinBrn:       "",
	}
	record, err := r.taxpayers.QueryCustomerDetails(ctx, req)
	if err != nil || record == nil || record.LegalName == "" {
		r.log.Error("Taxpayer query failed", "error", err, "document", doc.Key())
		r.notifier.Msgprint(ctx, customerFetchFailedMessage, "", "", false)
		return
	}

	doc.Customer = record.LegalName
	r.notifier.Msgprint(ctx, customerFetchedMessage, "", "", false)
}

// ToggleNewCustomer resets the tax id input whenever the new-customer flag flips.
func (r *CustomerResolver) ToggleNewCustomer(doc *model.Document, isNew bool) {
	doc.IsNewCustomer = isNew
	doc.NewCustomerTIN = ""
}
