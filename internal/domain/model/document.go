package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type DocType string

const (
	Quotation       DocType = "Quotation"
	SalesOrder      DocType = "Sales Order"
	SalesInvoice    DocType = "Sales Invoice"
	PurchaseInvoice DocType = "Purchase Invoice"
)

// CreditNotePending is the E Invoice status that allows an approval check.
const CreditNotePending = "EFRIS Credit Note Pending"

// Document is the form state posted by the ERP client. Handlers mutate a copy and
// send it back; the ERP remains the owner of the persisted record.
type Document struct {
	Name           string          `json:"name" validate:"required"`
	DocType        DocType         `json:"doctype" validate:"required,oneof=Quotation 'Sales Order' 'Sales Invoice' 'Purchase Invoice'"`
	Company        string          `json:"company"`
	Currency       Currency        `json:"currency"`
	ConversionRate decimal.Decimal `json:"conversion_rate"`
	Customer       string          `json:"customer,omitempty"`
	NewCustomerTIN string          `json:"custom_new_customer_tin,omitempty"`
	IsNewCustomer  bool            `json:"custom_is_new_customer"`
	IsReturn       bool            `json:"is_return"`
	EInvoice       string          `json:"efris_e_invoice,omitempty"`
	Dirty          bool            `json:"__unsaved,omitempty"`
}

// Key identifies the document across requests.
func (d Document) Key() string {
	return fmt.Sprintf("%s/%s", d.DocType, d.Name)
}

// FormReply is returned for every form event.
type FormReply struct {
	Document Document `json:"document"`
	Notices  []Notice `json:"notices"`
	Stale    bool     `json:"stale,omitempty"`
}
