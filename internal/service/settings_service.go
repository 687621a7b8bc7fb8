package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"fieldops-service/internal/model"
	"fieldops-service/internal/numbering"
	"fieldops-service/internal/repository"
)

// SettingsService manages per-company numbering counters.
type SettingsService struct {
	engine
}

func NewSettingsService(store repository.Store, numbers *numbering.Generator, opts Options, log zerolog.Logger) *SettingsService {
	return &SettingsService{engine: newEngine(store, numbers, opts, log)}
}

type ConfigureCounterInput struct {
	DocumentType model.DocumentType `json:"document_type" validate:"required,enum"`
	Format       string             `json:"format" validate:"required,max=64"`
}

// ConfigureCounter sets the number format of a counter-backed document type.
// The current counter value is kept.
func (s *SettingsService) ConfigureCounter(ctx context.Context, principal model.Principal, input ConfigureCounterInput) (*model.DocumentCounter, error) {
	if !principal.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	input.Format = strings.TrimSpace(input.Format)
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if !input.DocumentType.UsesCounter() {
		return nil, invalidField("document_type", "counter")
	}
	if err := numbering.ValidateFormat(input.Format); err != nil {
		return nil, invalidField("format", "sequence")
	}

	counter := &model.DocumentCounter{
		CompanyID:    principal.CompanyID,
		DocumentType: input.DocumentType,
		Format:       input.Format,
	}
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		return tx.Counters().Configure(ctx, counter)
	})
	if err != nil {
		return nil, err
	}
	return counter, nil
}
