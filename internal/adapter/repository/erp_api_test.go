package repository

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"efris-bridge/internal/domain/model"
	"efris-bridge/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubERP answers each method with a canned body and records the arguments.
type stubERP struct {
	replies map[string]string
	args    map[string]map[string]any
}

func (s *stubERP) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		method := r.URL.Path[len("/api/method/"):]
		body, _ := io.ReadAll(r.Body)
		var args map[string]any
		_ = json.Unmarshal(body, &args)
		s.args[method] = args

		reply, ok := s.replies[method]
		if !ok {
			t.Errorf("unexpected method %s", method)
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(reply))
	}
}

func newTestERPAPI(t *testing.T, replies map[string]string) (*ERPAPI, *stubERP) {
	stub := &stubERP{replies: replies, args: map[string]map[string]any{}}
	client, _ := newTestClient(t, stub.handler(t))
	return NewERPAPI(client, logger.NewNop()), stub
}

func TestERPAPI_GetExchangeRate(t *testing.T) {
	tests := []struct {
		name        string
		reply       string
		wantNil     bool
		wantSuccess *bool
		wantRate    string
		wantMessage string
	}{
		{name: "numeric rate", reply: `{"message": {"currency": "USD", "rate": 3700.5}}`, wantRate: "3700.5"},
		{name: "string rate", reply: `{"message": {"rate": "3700.50"}}`, wantRate: "3700.50"},
		{name: "null rate", reply: `{"message": {"rate": null}}`, wantRate: ""},
		{
			name:        "explicit failure",
			reply:       `{"message": {"success": false, "message": "Currency not supported"}}`,
			wantSuccess: new(bool),
			wantMessage: "Currency not supported",
		},
		{name: "no message", reply: `{}`, wantNil: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api, stub := newTestERPAPI(t, map[string]string{MethodGetExchangeRate: tt.reply})

			resp, err := api.GetExchangeRate(context.Background(), model.RateQuery{CurrencyCode: "USD", OrganizationID: "Acme Ltd"})
			require.NoError(t, err)

			assert.Equal(t, "USD", stub.args[MethodGetExchangeRate]["currency"])
			assert.Equal(t, "Acme Ltd", stub.args[MethodGetExchangeRate]["company_name"])

			if tt.wantNil {
				assert.Nil(t, resp)
				return
			}
			require.NotNil(t, resp)
			assert.Equal(t, tt.wantSuccess, resp.Success)
			assert.Equal(t, tt.wantRate, resp.Rate)
			assert.Equal(t, tt.wantMessage, resp.Message)
		})
	}
}

func TestERPAPI_FindCustomerByTaxID(t *testing.T) {
	api, stub := newTestERPAPI(t, map[string]string{MethodGetValue: `{"message": {"name": "CUST-0007"}}`})

	name, found, err := api.FindCustomerByTaxID(context.Background(), "1000012345")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "CUST-0007", name)

	args := stub.args[MethodGetValue]
	assert.Equal(t, "Customer", args["doctype"])
	assert.Equal(t, "name", args["fieldname"])
	assert.Equal(t, map[string]any{"tax_id": "1000012345"}, args["filters"])
}

func TestERPAPI_FindCustomerByTaxID_NotFound(t *testing.T) {
	api, _ := newTestERPAPI(t, map[string]string{MethodGetValue: `{"message": {}}`})

	_, found, err := api.FindCustomerByTaxID(context.Background(), "1000012345")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestERPAPI_QueryCustomerDetails(t *testing.T) {
	api, stub := newTestERPAPI(t, map[string]string{
		MethodQueryCustomerDetails: `{"message": {"taxpayer": {"legalName": "Kampala Traders Ltd", "tin": "1000012345"}}}`,
	})

	record, err := api.QueryCustomerDetails(context.Background(), model.CustomerDetailsRequest{
		Doc:          "SINV-0042",
		ECompanyName: "Acme Ltd",
		TaxID:        "1000012345",
	})
	require.NoError(t, err)
	assert.Equal(t, "Kampala Traders Ltd", record.LegalName)

	args := stub.args[MethodQueryCustomerDetails]
	assert.Equal(t, "SINV-0042", args["doc"])
	assert.Equal(t, "Acme Ltd", args["e_company_name"])
	assert.Equal(t, "", args["ninBrn"])
}

func TestERPAPI_QueryCustomerDetails_NoTaxpayer(t *testing.T) {
	api, _ := newTestERPAPI(t, map[string]string{MethodQueryCustomerDetails: `{"message": {}}`})

	_, err := api.QueryCustomerDetails(context.Background(), model.CustomerDetailsRequest{TaxID: "1000012345"})
	assert.Error(t, err)
}

func TestERPAPI_FetchEfrisBranches(t *testing.T) {
	api, stub := newTestERPAPI(t, map[string]string{
		MethodFetchEfrisBranches: `{"message": {"success": true, "mapped": [{"branchName": "Kampala", "branchId": "B1"}], "not_found": []}}`,
	})

	summary, err := api.FetchEfrisBranches(context.Background(), "Acme Ltd")
	require.NoError(t, err)
	require.NotNil(t, summary)
	assert.True(t, summary.Success)
	require.Len(t, summary.Mapped, 1)
	assert.Equal(t, "B1", summary.Mapped[0].BranchID)
	assert.Equal(t, "Acme Ltd", stub.args[MethodFetchEfrisBranches]["company_name"])
}

func TestERPAPI_EnqueueSyncEfrisItems(t *testing.T) {
	api, stub := newTestERPAPI(t, map[string]string{MethodEnqueueSyncEfrisItems: `{"message": "Sync started in background."}`})

	status, err := api.EnqueueSyncEfrisItems(context.Background(), model.ItemSyncRequest{CompanyName: "Acme Ltd", PageSize: 25, ChunkSize: 1})
	require.NoError(t, err)
	assert.Equal(t, "Sync started in background.", status)

	args := stub.args[MethodEnqueueSyncEfrisItems]
	assert.Equal(t, "Acme Ltd", args["company_name"])
	assert.EqualValues(t, 25, args["page_size"])
	assert.EqualValues(t, 1, args["chunk_size"])
}

func TestERPAPI_EInvoiceStatus(t *testing.T) {
	api, stub := newTestERPAPI(t, map[string]string{MethodGetValue: `{"message": {"status": "EFRIS Credit Note Pending"}}`})

	status, err := api.EInvoiceStatus(context.Background(), "EINV-0009")
	require.NoError(t, err)
	assert.Equal(t, model.CreditNotePending, status)

	args := stub.args[MethodGetValue]
	assert.Equal(t, "E Invoice", args["doctype"])
	assert.Equal(t, "status", args["fieldname"])
	assert.Equal(t, map[string]any{"name": "EINV-0009"}, args["filters"])
}

func TestERPAPI_EInvoiceStatus_Missing(t *testing.T) {
	api, _ := newTestERPAPI(t, map[string]string{MethodGetValue: `{"message": null}`})

	status, err := api.EInvoiceStatus(context.Background(), "EINV-0009")
	require.NoError(t, err)
	assert.Empty(t, status)
}

func TestERPAPI_ConfirmIRNCancellation(t *testing.T) {
	api, stub := newTestERPAPI(t, map[string]string{MethodConfirmIRNCancellation: `{"message": null}`})

	err := api.ConfirmIRNCancellation(context.Background(), model.Document{Name: "SINV-0042", DocType: model.SalesInvoice, IsReturn: true})
	require.NoError(t, err)

	doc, ok := stub.args[MethodConfirmIRNCancellation]["sales_invoice"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "SINV-0042", doc["name"])
	assert.Equal(t, true, doc["is_return"])
}

func TestRawText(t *testing.T) {
	tests := map[string]string{
		``:           "",
		`null`:       "",
		`"3700.5"`:   "3700.5",
		`3700.5`:     "3700.5",
		`{"a": 1}`:   "",
		`[1]`:        "",
		` "spaced" `: "spaced",
	}
	for in, want := range tests {
		assert.Equal(t, want, rawText(json.RawMessage(in)), in)
	}
}
