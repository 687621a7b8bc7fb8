package memory

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"fieldops-service/internal/model"
	"fieldops-service/internal/repository"
)

type counters struct {
	tx *tx
}

func (r *counters) LatestNumber(ctx context.Context, companyID uuid.UUID, docType model.DocumentType, prefix string) (string, error) {
	var numbers []string
	st := r.tx.st
	switch docType {
	case model.DocumentTypeEstimate:
		for _, e := range st.estimates {
			if e.CompanyID == companyID {
				numbers = append(numbers, e.EstimateNo)
			}
		}
	case model.DocumentTypeQuote:
		for _, q := range st.quotes {
			if q.CompanyID == companyID {
				numbers = append(numbers, q.QuoteNo)
			}
		}
	case model.DocumentTypeWorkOrder:
		for _, w := range st.workOrders {
			if w.CompanyID == companyID {
				numbers = append(numbers, w.WorkOrderNo)
			}
		}
	case model.DocumentTypeInvoice:
		for _, inv := range st.invoices {
			if inv.CompanyID == companyID {
				numbers = append(numbers, inv.InvoiceNo)
			}
		}
	case model.DocumentTypeReceipt:
		for _, rc := range st.receipts {
			if rc.CompanyID == companyID {
				numbers = append(numbers, rc.ReceiptNo)
			}
		}
	case model.DocumentTypePayment:
		for _, list := range st.payments {
			for _, p := range list {
				if p.CompanyID == companyID {
					numbers = append(numbers, p.PaymentNo)
				}
			}
		}
	default:
		return "", fmt.Errorf("unknown document type %q", docType)
	}

	latest := ""
	for _, number := range numbers {
		if !strings.HasPrefix(number, prefix) || strings.Contains(strings.TrimPrefix(number, prefix), "-") {
			continue
		}
		if len(number) > len(latest) || (len(number) == len(latest) && number > latest) {
			latest = number
		}
	}
	return latest, nil
}

func (r *counters) Increment(ctx context.Context, companyID uuid.UUID, docType model.DocumentType) (int64, string, error) {
	key := counterKey{companyID: companyID, docType: docType}
	counter, ok := r.tx.st.counters[key]
	if !ok {
		return 0, "", repository.ErrNotFound
	}
	counter.LastValue++
	counter.UpdatedAt = r.tx.now()
	r.tx.st.counters[key] = counter
	return counter.LastValue, counter.Format, nil
}

func (r *counters) Configure(ctx context.Context, counter *model.DocumentCounter) error {
	key := counterKey{companyID: counter.CompanyID, docType: counter.DocumentType}
	if existing, ok := r.tx.st.counters[key]; ok {
		counter.LastValue = existing.LastValue
	}
	counter.UpdatedAt = r.tx.now()
	r.tx.st.counters[key] = *counter
	return nil
}
