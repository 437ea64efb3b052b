// Package calculation stores engineering calculation sheets and imports
// them from decoded documents.
package calculation

import (
	"context"
	"errors"
	"io"
	"strconv"
	"strings"
	"time"

	"boqtracker/internal/domain"
	"boqtracker/internal/pkg/logger"
	"boqtracker/internal/pkg/validator"
	"boqtracker/internal/repository"
)

type Service struct {
	store     *repository.Store
	decoder   Decoder
	populator Populator
	log       *logger.Logger
	now       func() time.Time
}

func NewService(store *repository.Store, decoder Decoder, populator Populator, log *logger.Logger) *Service {
	return &Service{
		store:     store,
		decoder:   decoder,
		populator: populator,
		log:       log.With("module", "calculation"),
		now:       time.Now,
	}
}

// CreateSheet stores a sheet and its entries. The (sheet no, drawing no)
// pair must be new and every entry needs a section number.
func (s *Service) CreateSheet(ctx context.Context, req CreateSheetRequest) (*SheetWithEntries, error) {
	if err := validator.Check("calculation sheet", req); err != nil {
		return nil, err
	}
	imp := &domain.CalculationImport{
		CalculationSheetNo: req.CalculationSheetNo,
		DrawingNo:          req.DrawingNo,
		Description:        req.Description,
	}
	for _, e := range req.Entries {
		imp.Entries = append(imp.Entries, domain.CalculationEntry{
			SectionNumber:     e.SectionNumber,
			EstimatedQuantity: e.EstimatedQuantity,
			QuantitySubmitted: e.QuantitySubmitted,
		})
	}
	return s.create(ctx, imp, req.Comment)
}

func (s *Service) create(ctx context.Context, imp *domain.CalculationImport, comment string) (*SheetWithEntries, error) {
	sheet := domain.CalculationSheet{
		CalculationSheetNo: strings.TrimSpace(imp.CalculationSheetNo),
		DrawingNo:          strings.TrimSpace(imp.DrawingNo),
		Description:        imp.Description,
		Comment:            comment,
		ImportedAt:         s.now(),
	}
	key := sheet.CalculationSheetNo + "/" + sheet.DrawingNo
	if sheet.CalculationSheetNo == "" || sheet.DrawingNo == "" {
		return nil, domain.Invalid("calculation sheet", key, "sheet number and drawing number are required")
	}

	entries := make([]domain.CalculationEntry, 0, len(imp.Entries))
	for i, e := range imp.Entries {
		e.SectionNumber = strings.TrimSpace(e.SectionNumber)
		if e.SectionNumber == "" {
			return nil, domain.Invalid("calculation sheet", key, "entry "+strconv.Itoa(i+1)+" has a blank section number")
		}
		e.ID = 0
		entries = append(entries, e)
	}

	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		if _, err := tx.CalculationSheets.GetByKey(ctx, sheet.CalculationSheetNo, sheet.DrawingNo); err == nil {
			return domain.Duplicate("calculation sheet", key)
		} else if !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		if err := tx.CalculationSheets.Create(ctx, &sheet); err != nil {
			return err
		}
		for i := range entries {
			entries[i].CalculationSheetID = sheet.ID
		}
		return tx.CalculationEntries.CreateBatch(ctx, entries)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("calculation sheet created",
		"calculation_sheet_id", sheet.ID,
		"calculation_sheet_no", sheet.CalculationSheetNo,
		"drawing_no", sheet.DrawingNo,
		"entries", len(entries),
	)
	return &SheetWithEntries{Sheet: sheet, Entries: entries}, nil
}

func (s *Service) UpdateSheet(ctx context.Context, id int64, patch SheetPatch) (*domain.CalculationSheet, error) {
	var sheet *domain.CalculationSheet
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		if sheet, err = tx.CalculationSheets.GetByID(ctx, id); err != nil {
			return err
		}
		if patch.Description != nil {
			sheet.Description = *patch.Description
		}
		if patch.Comment != nil {
			sheet.Comment = *patch.Comment
		}
		return tx.CalculationSheets.Save(ctx, sheet)
	})
	if err != nil {
		return nil, err
	}
	return sheet, nil
}

func (s *Service) GetSheet(ctx context.Context, id int64) (*SheetWithEntries, error) {
	sheet, err := s.store.CalculationSheets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	entries, err := s.store.CalculationEntries.ListBySheet(ctx, id)
	if err != nil {
		return nil, err
	}
	return &SheetWithEntries{Sheet: *sheet, Entries: entries}, nil
}

func (s *Service) ListSheets(ctx context.Context) ([]domain.CalculationSheet, error) {
	return s.store.CalculationSheets.List(ctx)
}

// AddEntry appends an entry. Concentration entries are not touched until
// the sheet is populated.
func (s *Service) AddEntry(ctx context.Context, sheetID int64, req EntryRequest) (*domain.CalculationEntry, error) {
	if err := validator.Check("calculation entry", req); err != nil {
		return nil, err
	}
	section := strings.TrimSpace(req.SectionNumber)
	if section == "" {
		return nil, domain.Invalid("calculation entry", "new", "blank section number")
	}

	entry := &domain.CalculationEntry{
		CalculationSheetID: sheetID,
		SectionNumber:      section,
		EstimatedQuantity:  req.EstimatedQuantity,
		QuantitySubmitted:  req.QuantitySubmitted,
	}
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		if _, err := tx.CalculationSheets.GetByID(ctx, sheetID); err != nil {
			return err
		}
		return tx.CalculationEntries.Create(ctx, entry)
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// Import decodes one file and stores the sheet. Decoder failures come back
// as *ImportError. A failed auto-populate keeps the sheet and is reported
// on the result.
func (s *Service) Import(ctx context.Context, filename string, r io.Reader, opts ImportOptions) (*ImportResult, error) {
	imp, err := s.decoder.Decode(ctx, filename, r)
	if err != nil {
		return nil, &ImportError{File: filename, Err: err}
	}

	sheet, err := s.create(ctx, imp, "")
	if err != nil {
		return nil, err
	}
	res := &ImportResult{File: filename, Sheet: sheet}

	if opts.AutoPopulate && s.populator != nil {
		pop, err := s.populator.PopulateFromCalculationSheet(ctx, sheet.Sheet.ID)
		if err != nil {
			s.log.Warn("auto populate failed", "file", filename, "calculation_sheet_id", sheet.Sheet.ID, "error", err)
			res.PopulateError = err.Error()
		} else {
			res.Population = pop
		}
	}
	return res, nil
}

// ImportMany imports every file, continuing past failures.
func (s *Service) ImportMany(ctx context.Context, files []ImportFile, opts ImportOptions) *BatchImportResult {
	out := &BatchImportResult{Files: make([]FileOutcome, 0, len(files))}
	for _, f := range files {
		res, err := s.Import(ctx, f.Name, f.Reader, opts)
		if err != nil {
			s.log.Warn("calculation import failed", "file", f.Name, "error", err)
			out.Files = append(out.Files, FileOutcome{File: f.Name, Error: err.Error(), Err: err})
			out.Failed++
			continue
		}
		out.Files = append(out.Files, FileOutcome{File: f.Name, Result: res})
		out.Succeeded++
	}

	s.log.Info("calculation import finished", "files", len(files), "succeeded", out.Succeeded, "failed", out.Failed)
	return out
}
