package service

import (
	"context"
	"errors"
	"strings"

	"efris-bridge/internal/domain/model"
	"efris-bridge/internal/domain/ports"
	"efris-bridge/internal/metrics"
	"efris-bridge/pkg/logger"
)

// FormService dispatches ERP form events to the EFRIS flows.
type FormService struct {
	fetcher     *RateFetcher
	reconciler  *RateReconciler
	customers   *CustomerResolver
	branches    *BranchSync
	items       *ItemSyncer
	creditNotes *CreditNoteApproval
	generations *RequestGenerations
	log         *logger.Logger
	metrics     *metrics.Metrics
}

type FormServiceDeps struct {
	Fetcher     *RateFetcher
	Reconciler  *RateReconciler
	Customers   *CustomerResolver
	Branches    *BranchSync
	Items       *ItemSyncer
	CreditNotes *CreditNoteApproval
}

func NewFormService(deps FormServiceDeps, log *logger.Logger, m *metrics.Metrics) *FormService {
	return &FormService{
		fetcher:     deps.Fetcher,
		reconciler:  deps.Reconciler,
		customers:   deps.Customers,
		branches:    deps.Branches,
		items:       deps.Items,
		creditNotes: deps.CreditNotes,
		generations: NewRequestGenerations(),
		log:         log,
		metrics:     m,
	}
}

// CurrencyChanged fetches the EFRIS rate for the document currency and applies
// it. When a newer currency change on the same document started meanwhile, the
// result is dropped and the reply is marked stale.
func (s *FormService) CurrencyChanged(ctx context.Context, doc model.Document) (*model.FormReply, error) {
	s.metrics.FormEventsTotal.WithLabelValues("currency").Inc()

	reply := &model.FormReply{Document: doc}
	if doc.Currency == "" || strings.TrimSpace(doc.Company) == "" {
		return reply, nil
	}
	if !doc.Currency.IsValid() {
		return nil, ErrInvalidCurrency
	}

	key := doc.Key() + "#currency"
	gen := s.generations.Begin(key)
	defer s.generations.Finish(key, gen)

	query := model.RateQuery{
		CurrencyCode:   doc.Currency.Normalize(),
		OrganizationID: doc.Company,
	}
	result := s.fetcher.Fetch(ctx, query)

	if !s.generations.IsCurrent(key, gen) {
		s.metrics.StaleRateResponses.Inc()
		s.log.Info("Discarding superseded rate response", "document", doc.Key(), "query", query.String())
		reply.Stale = true
		return reply, nil
	}

	s.reconciler.Reconcile(ctx, &reply.Document, result)
	return reply, nil
}

// CompanyChanged starts a branch sync in the background and returns immediately.
func (s *FormService) CompanyChanged(ctx context.Context, doc model.Document) error {
	s.metrics.FormEventsTotal.WithLabelValues("company").Inc()

	company := strings.TrimSpace(doc.Company)
	if company == "" {
		return nil
	}
	go s.branches.Sync(context.WithoutCancel(ctx), company)
	return nil
}

func (s *FormService) TaxIDChanged(ctx context.Context, doc model.Document) (*model.FormReply, error) {
	s.metrics.FormEventsTotal.WithLabelValues("tax_id").Inc()

	reply := &model.FormReply{Document: doc}
	s.customers.Resolve(ctx, &reply.Document, doc.NewCustomerTIN, doc.IsNewCustomer)
	return reply, nil
}

func (s *FormService) NewCustomerToggled(ctx context.Context, doc model.Document) (*model.FormReply, error) {
	s.metrics.FormEventsTotal.WithLabelValues("new_customer").Inc()

	reply := &model.FormReply{Document: doc}
	s.customers.ToggleNewCustomer(&reply.Document, doc.IsNewCustomer)
	return reply, nil
}

func (s *FormService) SyncItems(ctx context.Context, req model.ItemSyncRequest) (*model.ItemSyncJob, error) {
	s.metrics.FormEventsTotal.WithLabelValues("item_sync").Inc()
	return s.items.Enqueue(ctx, req)
}

// CheckCreditNoteApproval returns a reply even when the check fails so that
// the notices raised on the way reach the form.
func (s *FormService) CheckCreditNoteApproval(ctx context.Context, doc model.Document) (*model.FormReply, error) {
	s.metrics.FormEventsTotal.WithLabelValues("credit_note_approval").Inc()

	reply := &model.FormReply{Document: doc}
	err := s.creditNotes.Check(ctx, doc)
	if errors.Is(err, ErrUnsavedDocument) || errors.Is(err, ErrExternalAPIFailure) {
		return reply, err
	}
	if err != nil {
		return nil, err
	}
	return reply, nil
}

var _ ports.FormService = (*FormService)(nil)
