package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"efris-bridge/internal/domain/model"
	"efris-bridge/internal/metrics"
	"efris-bridge/pkg/logger"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

type MockRateSource struct {
	GetExchangeRateFunc func(ctx context.Context, query model.RateQuery) (*model.RateResponse, error)
	calls               atomic.Int32
}

func (m *MockRateSource) GetExchangeRate(ctx context.Context, query model.RateQuery) (*model.RateResponse, error) {
	m.calls.Add(1)
	return m.GetExchangeRateFunc(ctx, query)
}

type MockRateCache struct {
	GetFunc          func(ctx context.Context, query model.RateQuery, date time.Time) (decimal.Decimal, bool)
	SetFunc          func(ctx context.Context, query model.RateQuery, date time.Time, rate decimal.Decimal) error
	ClearExpiredFunc func(ctx context.Context) error
}

func (m *MockRateCache) Get(ctx context.Context, query model.RateQuery, date time.Time) (decimal.Decimal, bool) {
	return m.GetFunc(ctx, query, date)
}

func (m *MockRateCache) Set(ctx context.Context, query model.RateQuery, date time.Time, rate decimal.Decimal) error {
	return m.SetFunc(ctx, query, date, rate)
}

func (m *MockRateCache) ClearExpired(ctx context.Context) error {
	return m.ClearExpiredFunc(ctx)
}

type MockCustomerDirectory struct {
	FindCustomerByTaxIDFunc func(ctx context.Context, taxID string) (string, bool, error)
	calls                   int
}

func (m *MockCustomerDirectory) FindCustomerByTaxID(ctx context.Context, taxID string) (string, bool, error) {
	m.calls++
	return m.FindCustomerByTaxIDFunc(ctx, taxID)
}

type MockTaxpayerSource struct {
	QueryCustomerDetailsFunc func(ctx context.Context, req model.CustomerDetailsRequest) (*model.TaxpayerRecord, error)
	requests                 []model.CustomerDetailsRequest
}

func (m *MockTaxpayerSource) QueryCustomerDetails(ctx context.Context, req model.CustomerDetailsRequest) (*model.TaxpayerRecord, error) {
	m.requests = append(m.requests, req)
	return m.QueryCustomerDetailsFunc(ctx, req)
}

type MockBranchSource struct {
	FetchEfrisBranchesFunc func(ctx context.Context, company string) (*model.BranchSummary, error)
}

func (m *MockBranchSource) FetchEfrisBranches(ctx context.Context, company string) (*model.BranchSummary, error) {
	return m.FetchEfrisBranchesFunc(ctx, company)
}

type MockItemSyncQueue struct {
	EnqueueSyncEfrisItemsFunc func(ctx context.Context, req model.ItemSyncRequest) (string, error)
}

func (m *MockItemSyncQueue) EnqueueSyncEfrisItems(ctx context.Context, req model.ItemSyncRequest) (string, error) {
	return m.EnqueueSyncEfrisItemsFunc(ctx, req)
}

type MockJobPublisher struct {
	PublishItemSyncFunc func(ctx context.Context, job model.ItemSyncJob) error
}

func (m *MockJobPublisher) PublishItemSync(ctx context.Context, job model.ItemSyncJob) error {
	return m.PublishItemSyncFunc(ctx, job)
}

type MockCreditNoteGateway struct {
	EInvoiceStatusFunc         func(ctx context.Context, eInvoice string) (string, error)
	ConfirmIRNCancellationFunc func(ctx context.Context, doc model.Document) error
}

// EInvoiceStatus reports a pending credit note unless EInvoiceStatusFunc is set.
func (m *MockCreditNoteGateway) EInvoiceStatus(ctx context.Context, eInvoice string) (string, error) {
	if m.EInvoiceStatusFunc == nil {
		return model.CreditNotePending, nil
	}
	return m.EInvoiceStatusFunc(ctx, eInvoice)
}

func (m *MockCreditNoteGateway) ConfirmIRNCancellation(ctx context.Context, doc model.Document) error {
	return m.ConfirmIRNCancellationFunc(ctx, doc)
}

type throwCall struct {
	Message, Title string
}

type msgprintCall struct {
	Message, Title, Indicator string
	Alert                     bool
}

// recordingNotifier stands in for the host primitives.
type recordingNotifier struct {
	mu        sync.Mutex
	throws    []throwCall
	msgprints []msgprintCall
}

func (n *recordingNotifier) Throw(_ context.Context, message, title string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.throws = append(n.throws, throwCall{message, title})
}

func (n *recordingNotifier) Msgprint(_ context.Context, message, title, indicator string, alert bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msgprints = append(n.msgprints, msgprintCall{message, title, indicator, alert})
}

func newTestMetrics() *metrics.Metrics {
	return metrics.NewMetrics(prometheus.NewRegistry())
}

func newTestLogger() *logger.Logger {
	return logger.NewNop()
}

func boolPtr(b bool) *bool {
	return &b
}
