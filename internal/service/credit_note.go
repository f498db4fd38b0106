package service

import (
	"context"
	"fmt"

	"efris-bridge/internal/domain/model"
	"efris-bridge/internal/domain/ports"
	"efris-bridge/pkg/logger"
)

const (
	unsavedDocumentMessage = "You must save the document before making e-invoicing request."
	unsavedDocumentTitle   = "Unsaved Document"
	approvalCheckFailed    = "Error while checking approval status from EFRIS."
)

// CreditNoteApproval checks whether EFRIS approved the cancellation behind a
// pending credit note.
type CreditNoteApproval struct {
	gateway  ports.CreditNoteGateway
	notifier ports.Notifier
	log      *logger.Logger
}

func NewCreditNoteApproval(gateway ports.CreditNoteGateway, notifier ports.Notifier, log *logger.Logger) *CreditNoteApproval {
	return &CreditNoteApproval{gateway: gateway, notifier: notifier, log: log}
}

// Applicable reports whether doc is a return invoice linked to an E Invoice.
// The E Invoice status itself is read from the ERP by Check.
func (c *CreditNoteApproval) Applicable(doc model.Document) bool {
	return doc.DocType == model.SalesInvoice &&
		doc.IsReturn &&
		doc.EInvoice != ""
}

func (c *CreditNoteApproval) Check(ctx context.Context, doc model.Document) error {
	if !c.Applicable(doc) {
		return ErrNotApplicable
	}
	if doc.Dirty {
		c.notifier.Throw(ctx, unsavedDocumentMessage, unsavedDocumentTitle)
		return ErrUnsavedDocument
	}

	status, err := c.gateway.EInvoiceStatus(ctx, doc.EInvoice)
	if err != nil {
		c.log.Error("Failed to read E Invoice status", "error", err, "document", doc.Key(), "e_invoice", doc.EInvoice)
		c.notifier.Msgprint(ctx, approvalCheckFailed, "", "", false)
		return fmt.Errorf("%w: %v", ErrExternalAPIFailure, err)
	}
	if status != model.CreditNotePending {
		c.log.Info("E Invoice is not awaiting credit note approval", "document", doc.Key(), "e_invoice", doc.EInvoice, "status", status)
		return ErrNotApplicable
	}

	if err := c.gateway.ConfirmIRNCancellation(ctx, doc); err != nil {
		c.log.Error("Error confirming IRN cancellation", "error", err, "document", doc.Key())
		c.notifier.Msgprint(ctx, approvalCheckFailed, "", "", false)
		return fmt.Errorf("%w: %v", ErrExternalAPIFailure, err)
	}
	c.log.Info("Checked EFRIS credit note approval", "document", doc.Key(), "e_invoice", doc.EInvoice)
	return nil
}
