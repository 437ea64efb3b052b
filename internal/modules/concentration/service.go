// Package concentration keeps per-item concentration ledgers in step with
// calculation sheets while leaving manual entries alone.
package concentration

import (
	"context"
	"errors"

	"boqtracker/internal/domain"
	"boqtracker/internal/modules/aggregation"
	"boqtracker/internal/pkg/logger"
	"boqtracker/internal/pkg/validator"
	"boqtracker/internal/repository"
)

type Service struct {
	store  *repository.Store
	engine *aggregation.Engine
	log    *logger.Logger
}

func NewService(store *repository.Store, engine *aggregation.Engine, log *logger.Logger) *Service {
	return &Service{store: store, engine: engine, log: log.With("module", "concentration")}
}

// EnsureSheet returns the item's sheet, creating it from the current project
// info when absent. created reports whether a row was inserted.
func (s *Service) EnsureSheet(ctx context.Context, boqItemID int64) (sheet *domain.ConcentrationSheet, created bool, err error) {
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		sheet, created, err = s.EnsureSheetTx(ctx, tx, boqItemID)
		return err
	})
	if err != nil {
		return nil, false, err
	}
	return sheet, created, nil
}

func (s *Service) EnsureSheetTx(ctx context.Context, tx *repository.Store, boqItemID int64) (*domain.ConcentrationSheet, bool, error) {
	item, err := tx.BOQItems.GetByID(ctx, boqItemID)
	if err != nil {
		return nil, false, err
	}

	existing, err := tx.ConcentrationSheets.GetByBOQItemID(ctx, item.ID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, false, err
	}

	info, err := tx.ProjectInfo.Get(ctx)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, false, err
	}

	sheet := &domain.ConcentrationSheet{
		BOQItemID: item.ID,
		SheetName: SheetName(item),
	}
	if info != nil {
		info.ApplyTo(sheet)
	}
	if err := tx.ConcentrationSheets.Create(ctx, sheet); err != nil {
		return nil, false, err
	}
	return sheet, true, nil
}

// SheetName is the display name given to a new sheet.
func SheetName(item *domain.BOQItem) string {
	if item.Description == "" {
		return item.SectionNumber
	}
	return item.SectionNumber + " - " + item.Description
}

type EnsureAllResult struct {
	Created  int `json:"created"`
	Existing int `json:"existing"`
}

// EnsureAllSheets creates the missing sheet of every BOQ item.
func (s *Service) EnsureAllSheets(ctx context.Context) (*EnsureAllResult, error) {
	res := &EnsureAllResult{}
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		items, err := tx.BOQItems.List(ctx, repository.BOQItemFilters{})
		if err != nil {
			return err
		}
		for _, item := range items {
			_, created, err := s.EnsureSheetTx(ctx, tx, item.ID)
			if err != nil {
				return err
			}
			if created {
				res.Created++
			} else {
				res.Existing++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("concentration sheets ensured", "created", res.Created, "existing", res.Existing)
	return res, nil
}

// CreateManualEntry adds a user-authored entry and recomputes the owner.
func (s *Service) CreateManualEntry(ctx context.Context, sheetID int64, req ManualEntryRequest) (*domain.ConcentrationEntry, error) {
	if err := validator.Check("concentration entry", req); err != nil {
		return nil, err
	}

	var entry *domain.ConcentrationEntry
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		sheet, err := tx.ConcentrationSheets.GetByID(ctx, sheetID)
		if err != nil {
			return err
		}
		item, err := tx.BOQItems.GetByID(ctx, sheet.BOQItemID)
		if err != nil {
			return err
		}

		entry = req.toEntry(sheet.ID, item.SectionNumber)
		if err := tx.ConcentrationEntries.Create(ctx, entry); err != nil {
			return err
		}
		_, err = s.engine.RecomputeTx(ctx, tx, item.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("manual concentration entry created", "entry_id", entry.ID, "sheet_id", sheetID)
	return entry, nil
}

func (s *Service) GetSheet(ctx context.Context, id int64) (*domain.ConcentrationSheet, error) {
	return s.store.ConcentrationSheets.GetByID(ctx, id)
}

func (s *Service) GetSheetByBOQItem(ctx context.Context, boqItemID int64) (*domain.ConcentrationSheet, error) {
	return s.store.ConcentrationSheets.GetByBOQItemID(ctx, boqItemID)
}

func (s *Service) ListSheets(ctx context.Context) ([]domain.ConcentrationSheet, error) {
	return s.store.ConcentrationSheets.List(ctx)
}

func (s *Service) ListEntries(ctx context.Context, sheetID int64) ([]domain.ConcentrationEntry, error) {
	if _, err := s.store.ConcentrationSheets.GetByID(ctx, sheetID); err != nil {
		return nil, err
	}
	return s.store.ConcentrationEntries.ListBySheet(ctx, sheetID)
}
