package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"fieldops-service/internal/model"
	"fieldops-service/internal/repository"
)

type quotes struct {
	tx *tx
}

func (r *quotes) Create(ctx context.Context, quote *model.Quote) error {
	_ = quote.BeforeCreate(nil)
	st := r.tx.st
	if _, exists := st.quotes[quote.ID]; exists {
		return repository.ErrDuplicate
	}
	for _, other := range st.quotes {
		if other.CompanyID == quote.CompanyID && other.QuoteNo == quote.QuoteNo {
			return repository.ErrDuplicate
		}
	}

	stamp(&quote.CreatedAt, &quote.UpdatedAt, r.tx.now())
	items := make([]model.QuoteItem, len(quote.Items))
	for i := range quote.Items {
		_ = quote.Items[i].BeforeCreate(nil)
		quote.Items[i].QuoteID = quote.ID
		items[i] = quote.Items[i]
	}
	st.quoteItems[quote.ID] = items

	row := *quote
	row.Items = nil
	st.quotes[quote.ID] = row
	return nil
}

func (r *quotes) GetByID(ctx context.Context, id uuid.UUID) (*model.Quote, error) {
	row, ok := r.tx.st.quotes[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	row.Items = append([]model.QuoteItem(nil), r.tx.st.quoteItems[id]...)
	sort.SliceStable(row.Items, func(i, j int) bool { return row.Items[i].SortOrder < row.Items[j].SortOrder })
	return &row, nil
}

func (r *quotes) GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Quote, error) {
	return r.GetByID(ctx, id)
}

func (r *quotes) Update(ctx context.Context, quote *model.Quote) error {
	if _, ok := r.tx.st.quotes[quote.ID]; !ok {
		return repository.ErrNotFound
	}
	quote.UpdatedAt = r.tx.now()
	row := *quote
	row.Items = nil
	r.tx.st.quotes[quote.ID] = row
	return nil
}

func (r *quotes) List(ctx context.Context, filter repository.QuoteListFilter) ([]model.Quote, error) {
	var result []model.Quote
	for _, row := range r.tx.st.quotes {
		if row.CompanyID != filter.CompanyID {
			continue
		}
		if filter.ServiceRequestID != nil && row.ServiceRequestID != *filter.ServiceRequestID {
			continue
		}
		if filter.Status != nil && row.Status != *filter.Status {
			continue
		}
		result = append(result, row)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (r *quotes) ListExpired(ctx context.Context, asOf time.Time) ([]model.Quote, error) {
	var result []model.Quote
	for _, row := range r.tx.st.quotes {
		if row.Status == model.QuoteStatusSent && row.ValidUntil.Before(asOf) {
			result = append(result, row)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ValidUntil.Before(result[j].ValidUntil) })
	return result, nil
}
