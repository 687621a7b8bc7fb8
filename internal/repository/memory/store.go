// Package memory is an in-process implementation of the repository ports.
// Transactions are serialized and run against a copy of the state that replaces
// the live state only on success.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"fieldops-service/internal/model"
	"fieldops-service/internal/repository"
)

type counterKey struct {
	companyID uuid.UUID
	docType   model.DocumentType
}

type state struct {
	serviceRequests map[uuid.UUID]model.ServiceRequest
	siteVisits      map[uuid.UUID]model.SiteVisit

	estimates          map[uuid.UUID]model.Estimate
	estimateItems      map[uuid.UUID][]model.EstimateItem
	estimateLabor      map[uuid.UUID][]model.EstimateLaborItem
	estimateActivities map[uuid.UUID][]model.EstimateActivity

	quotes     map[uuid.UUID]model.Quote
	quoteItems map[uuid.UUID][]model.QuoteItem

	workOrders         map[uuid.UUID]model.WorkOrder
	workOrderTeam      map[uuid.UUID][]model.WorkOrderTeam
	workOrderItems     map[uuid.UUID][]model.WorkOrderItem
	workOrderLabor     map[uuid.UUID][]model.WorkOrderLabor
	workOrderChecklist map[uuid.UUID][]model.WorkOrderChecklist
	workOrderPhotos    map[uuid.UUID][]model.WorkOrderPhoto
	workOrderActivity  map[uuid.UUID][]model.WorkOrderActivity

	invoices     map[uuid.UUID]model.Invoice
	invoiceItems map[uuid.UUID][]model.InvoiceItem
	payments     map[uuid.UUID][]model.Payment
	receipts     map[uuid.UUID]model.Receipt

	counters map[counterKey]model.DocumentCounter
}

func newState() *state {
	return &state{
		serviceRequests:    map[uuid.UUID]model.ServiceRequest{},
		siteVisits:         map[uuid.UUID]model.SiteVisit{},
		estimates:          map[uuid.UUID]model.Estimate{},
		estimateItems:      map[uuid.UUID][]model.EstimateItem{},
		estimateLabor:      map[uuid.UUID][]model.EstimateLaborItem{},
		estimateActivities: map[uuid.UUID][]model.EstimateActivity{},
		quotes:             map[uuid.UUID]model.Quote{},
		quoteItems:         map[uuid.UUID][]model.QuoteItem{},
		workOrders:         map[uuid.UUID]model.WorkOrder{},
		workOrderTeam:      map[uuid.UUID][]model.WorkOrderTeam{},
		workOrderItems:     map[uuid.UUID][]model.WorkOrderItem{},
		workOrderLabor:     map[uuid.UUID][]model.WorkOrderLabor{},
		workOrderChecklist: map[uuid.UUID][]model.WorkOrderChecklist{},
		workOrderPhotos:    map[uuid.UUID][]model.WorkOrderPhoto{},
		workOrderActivity:  map[uuid.UUID][]model.WorkOrderActivity{},
		invoices:           map[uuid.UUID]model.Invoice{},
		invoiceItems:       map[uuid.UUID][]model.InvoiceItem{},
		payments:           map[uuid.UUID][]model.Payment{},
		receipts:           map[uuid.UUID]model.Receipt{},
		counters:           map[counterKey]model.DocumentCounter{},
	}
}

func copyMap[K comparable, V any](src map[K]V) map[K]V {
	dst := make(map[K]V, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func copySliceMap[K comparable, V any](src map[K][]V) map[K][]V {
	dst := make(map[K][]V, len(src))
	for k, v := range src {
		dst[k] = append([]V(nil), v...)
	}
	return dst
}

func (s *state) clone() *state {
	return &state{
		serviceRequests:    copyMap(s.serviceRequests),
		siteVisits:         copyMap(s.siteVisits),
		estimates:          copyMap(s.estimates),
		estimateItems:      copySliceMap(s.estimateItems),
		estimateLabor:      copySliceMap(s.estimateLabor),
		estimateActivities: copySliceMap(s.estimateActivities),
		quotes:             copyMap(s.quotes),
		quoteItems:         copySliceMap(s.quoteItems),
		workOrders:         copyMap(s.workOrders),
		workOrderTeam:      copySliceMap(s.workOrderTeam),
		workOrderItems:     copySliceMap(s.workOrderItems),
		workOrderLabor:     copySliceMap(s.workOrderLabor),
		workOrderChecklist: copySliceMap(s.workOrderChecklist),
		workOrderPhotos:    copySliceMap(s.workOrderPhotos),
		workOrderActivity:  copySliceMap(s.workOrderActivity),
		invoices:           copyMap(s.invoices),
		invoiceItems:       copySliceMap(s.invoiceItems),
		payments:           copySliceMap(s.payments),
		receipts:           copyMap(s.receipts),
		counters:           copyMap(s.counters),
	}
}

type Store struct {
	mu    sync.Mutex
	state *state
	now   func() time.Time
}

func New() *Store {
	return &Store{state: newState(), now: time.Now}
}

func (s *Store) WithinTx(ctx context.Context, fn func(tx repository.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	work := s.state.clone()
	if err := fn(&tx{st: work, now: s.now}); err != nil {
		return err
	}
	s.state = work
	return nil
}

type tx struct {
	st  *state
	now func() time.Time
}

func (t *tx) ServiceRequests() repository.ServiceRequestRepository {
	return &serviceRequests{t}
}

func (t *tx) Estimates() repository.EstimateRepository {
	return &estimates{t}
}

func (t *tx) Quotes() repository.QuoteRepository {
	return &quotes{t}
}

func (t *tx) WorkOrders() repository.WorkOrderRepository {
	return &workOrders{t}
}

func (t *tx) Invoices() repository.InvoiceRepository {
	return &invoices{t}
}

func (t *tx) Counters() repository.CounterRepository {
	return &counters{t}
}

func stamp(created, updated *time.Time, now time.Time) {
	if created != nil && created.IsZero() {
		*created = now
	}
	if updated != nil {
		*updated = now
	}
}
