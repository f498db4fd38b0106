package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"efris-bridge/internal/domain/model"
	"efris-bridge/internal/domain/ports"
	"efris-bridge/pkg/logger"
)

// ERP methods used by the form flows.
const (
	MethodGetExchangeRate        = "yana_efris.api.efris_api.get_exchange_rate"
	MethodFetchEfrisBranches     = "yana_efris.api.efris_api.fetch_efris_branches"
	MethodQueryCustomerDetails   = "yana_efris.api.efris_api.query_customer_details"
	MethodEnqueueSyncEfrisItems  = "yana_efris.api.efris_item_sync.enqueue_sync_efris_items"
	MethodConfirmIRNCancellation = "uganda_compliance.efris.api_classes.e_invoice.confirm_irn_cancellation"
	MethodGetValue               = "frappe.client.get_value"
)

// ERPAPI exposes the ERP's EFRIS methods through the domain ports.
type ERPAPI struct {
	caller Caller
	log    *logger.Logger
}

type exchangeRateMessage struct {
	Success *bool           `json:"success"`
	Rate    json.RawMessage `json:"rate"`
	Message json.RawMessage `json:"message"`
}

type customerDetailsMessage struct {
	Taxpayer *model.TaxpayerRecord `json:"taxpayer"`
}

func NewERPAPI(caller Caller, log *logger.Logger) *ERPAPI {
	return &ERPAPI{caller: caller, log: log}
}

func (e *ERPAPI) GetExchangeRate(ctx context.Context, query model.RateQuery) (*model.RateResponse, error) {
	args := map[string]string{
		"currency":     query.CurrencyCode.String(),
		"company_name": query.OrganizationID,
	}

	var msg *exchangeRateMessage
	if err := e.caller.Call(ctx, MethodGetExchangeRate, args, &msg); err != nil {
		return nil, err
	}
	if msg == nil {
		return nil, nil
	}
	return &model.RateResponse{
		Success: msg.Success,
		Rate:    rawText(msg.Rate),
		Message: rawText(msg.Message),
	}, nil
}

func (e *ERPAPI) FindCustomerByTaxID(ctx context.Context, taxID string) (string, bool, error) {
	args := map[string]any{
		"doctype":   "Customer",
		"filters":   map[string]string{"tax_id": taxID},
		"fieldname": "name",
	}

	var msg struct {
		Name string `json:"name"`
	}
	if err := e.caller.Call(ctx, MethodGetValue, args, &msg); err != nil {
		return "", false, err
	}
	if msg.Name == "" {
		return "", false, nil
	}
	return msg.Name, true, nil
}

func (e *ERPAPI) QueryCustomerDetails(ctx context.Context, req model.CustomerDetailsRequest) (*model.TaxpayerRecord, error) {
	var msg customerDetailsMessage
	if err := e.caller.Call(ctx, MethodQueryCustomerDetails, req, &msg); err != nil {
		return nil, err
	}
	if msg.Taxpayer == nil {
		return nil, fmt.Errorf("%s: no taxpayer in reply", MethodQueryCustomerDetails)
	}
	return msg.Taxpayer, nil
}

func (e *ERPAPI) FetchEfrisBranches(ctx context.Context, company string) (*model.BranchSummary, error) {
	var summary *model.BranchSummary
	if err := e.caller.Call(ctx, MethodFetchEfrisBranches, map[string]string{"company_name": company}, &summary); err != nil {
		return nil, err
	}
	return summary, nil
}

func (e *ERPAPI) EnqueueSyncEfrisItems(ctx context.Context, req model.ItemSyncRequest) (string, error) {
	var status string
	if err := e.caller.Call(ctx, MethodEnqueueSyncEfrisItems, req, &status); err != nil {
		return "", err
	}
	return status, nil
}

// EInvoiceStatus reads the status of the E Invoice document. A missing E Invoice
// has an empty status.
func (e *ERPAPI) EInvoiceStatus(ctx context.Context, eInvoice string) (string, error) {
	args := map[string]any{
		"doctype":   "E Invoice",
		"filters":   map[string]string{"name": eInvoice},
		"fieldname": "status",
	}

	var msg struct {
		Status string `json:"status"`
	}
	if err := e.caller.Call(ctx, MethodGetValue, args, &msg); err != nil {
		return "", err
	}
	return msg.Status, nil
}

func (e *ERPAPI) ConfirmIRNCancellation(ctx context.Context, doc model.Document) error {
	return e.caller.Call(ctx, MethodConfirmIRNCancellation, map[string]any{"sales_invoice": doc}, nil)
}

// rawText renders a JSON scalar as plain text: strings are unquoted, numbers
// kept verbatim, null and objects dropped.
func rawText(raw json.RawMessage) string {
	text := strings.TrimSpace(string(raw))
	if text == "" || text == "null" {
		return ""
	}
	if strings.HasPrefix(text, `"`) {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ""
		}
		return s
	}
	if strings.HasPrefix(text, "{") || strings.HasPrefix(text, "[") {
		return ""
	}
	return text
}

var (
	_ ports.RateSource        = (*ERPAPI)(nil)
	_ ports.CustomerDirectory = (*ERPAPI)(nil)
	_ ports.TaxpayerSource    = (*ERPAPI)(nil)
	_ ports.BranchSource      = (*ERPAPI)(nil)
	_ ports.ItemSyncQueue     = (*ERPAPI)(nil)
	_ ports.CreditNoteGateway = (*ERPAPI)(nil)
)
