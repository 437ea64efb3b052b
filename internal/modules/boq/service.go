// Package boq manages bill-of-quantities items.
package boq

import (
	"context"
	"errors"
	"strings"

	"boqtracker/internal/domain"
	"boqtracker/internal/pkg/logger"
	"boqtracker/internal/pkg/validator"
	"boqtracker/internal/repository"
)

type Service struct {
	store *repository.Store
	log   *logger.Logger
}

func NewService(store *repository.Store, log *logger.Logger) *Service {
	return &Service{store: store, log: log.With("module", "boq")}
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (*domain.BOQItem, error) {
	if err := validator.Check("boq item", req); err != nil {
		return nil, err
	}
	section := strings.TrimSpace(req.SectionNumber)
	if section == "" {
		return nil, domain.Invalid("boq item", req.SectionNumber, "blank section number")
	}

	item := req.toItem(section)
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		if _, err := tx.BOQItems.GetBySectionNumber(ctx, section); err == nil {
			return domain.Duplicate("boq item", section)
		} else if !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return tx.BOQItems.Create(ctx, item)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// Update applies a partial edit and re-derives every total.
func (s *Service) Update(ctx context.Context, id int64, req UpdateRequest) (*domain.BOQItem, error) {
	if err := validator.Check("boq item", req); err != nil {
		return nil, err
	}

	var item *domain.BOQItem
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		if item, err = tx.BOQItems.GetByIDForUpdate(ctx, id); err != nil {
			return err
		}
		req.apply(item)
		return tx.BOQItems.Save(ctx, item)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.BOQItem, error) {
	return s.store.BOQItems.GetByID(ctx, id)
}

func (s *Service) GetBySection(ctx context.Context, sectionNumber string) (*domain.BOQItem, error) {
	return s.store.BOQItems.GetBySectionNumber(ctx, strings.TrimSpace(sectionNumber))
}

func (s *Service) List(ctx context.Context, req ListRequest) ([]domain.BOQItem, error) {
	return s.store.BOQItems.List(ctx, repository.BOQItemFilters{
		Structure:  req.Structure,
		System:     req.System,
		Subsection: req.Subsection,
		Search:     strings.TrimSpace(req.Search),
	})
}

// Import creates each record on its own. Bad records are reported and
// skipped.
func (s *Service) Import(ctx context.Context, records []CreateRequest) *ImportResult {
	out := &ImportResult{Records: make([]RecordOutcome, 0, len(records))}
	for i, rec := range records {
		outcome := RecordOutcome{Index: i, SectionNumber: strings.TrimSpace(rec.SectionNumber)}
		item, err := s.Create(ctx, rec)
		if err != nil {
			s.log.Warn("boq item import failed", "index", i, "section_number", rec.SectionNumber, "error", err)
			outcome.Err = err
			outcome.Error = err.Error()
			out.Failed++
		} else {
			outcome.Item = item
			out.Created++
		}
		out.Records = append(out.Records, outcome)
	}

	s.log.Info("boq items imported", "records", len(records), "created", out.Created, "failed", out.Failed)
	return out
}
