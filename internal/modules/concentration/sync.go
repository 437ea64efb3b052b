package concentration

import (
	"context"
	"errors"
	"strings"

	"boqtracker/internal/domain"
	"boqtracker/internal/modules/aggregation"
	"boqtracker/internal/repository"
)

// SyncResult reports what a single-source sync touched.
type SyncResult struct {
	Matched           int                           `json:"matched"`
	Updated           int                           `json:"updated"`
	Deleted           int                           `json:"deleted"`
	TouchedBOQItemIDs []int64                       `json:"touched_boq_item_ids"`
	Recomputed        []aggregation.RecomputeResult `json:"recomputed,omitempty"`
}

// PopulateResult reports one calculation sheet's population pass.
type PopulateResult struct {
	CalculationSheetID int64                         `json:"calculation_sheet_id"`
	CalculationSheetNo string                        `json:"calculation_sheet_no"`
	DrawingNo          string                        `json:"drawing_no"`
	Created            int                           `json:"created"`
	Updated            int                           `json:"updated"`
	Skipped            int                           `json:"skipped"`
	SkipReasons        []string                      `json:"skip_reasons,omitempty"`
	TouchedBOQItemIDs  []int64                       `json:"touched_boq_item_ids"`
	Recomputed         []aggregation.RecomputeResult `json:"recomputed,omitempty"`
}

// SheetOutcome is one sheet's slot in a bulk population. Exactly one of
// Result and Error is set.
type SheetOutcome struct {
	CalculationSheetID int64           `json:"calculation_sheet_id"`
	CalculationSheetNo string          `json:"calculation_sheet_no"`
	DrawingNo          string          `json:"drawing_no"`
	Result             *PopulateResult `json:"result,omitempty"`
	Error              string          `json:"error,omitempty"`
	Err                error           `json:"-"`
}

func (o SheetOutcome) OK() bool { return o.Err == nil }

type BulkPopulateResult struct {
	ClearedEntries int64                `json:"cleared_entries"`
	Sheets         []SheetOutcome       `json:"sheets"`
	Succeeded      int                  `json:"succeeded"`
	Failed         int                  `json:"failed"`
	Created        int                  `json:"created"`
	Updated        int                  `json:"updated"`
	Skipped        int                  `json:"skipped"`
	Warnings       []domain.SyncWarning `json:"warnings,omitempty"`
}

// SyncOnCalculationEntryUpdate refreshes the concentration entry mirroring
// calcEntryID and recomputes its owner. No match is a successful no-op.
func (s *Service) SyncOnCalculationEntryUpdate(ctx context.Context, calcEntryID int64) (*SyncResult, error) {
	var res *SyncResult
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		entry, sheet, err := loadCalculationEntry(ctx, tx, calcEntryID)
		if err != nil {
			return err
		}
		if res, err = s.MirrorEntryUpdateTx(ctx, tx, entry, sheet); err != nil {
			return err
		}
		res.Recomputed, err = s.engine.RecomputeManyTx(ctx, tx, res.TouchedBOQItemIDs)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// SyncOnCalculationEntryDeletion removes the mirror of calcEntryID, manual
// or not, and recomputes its owner. The calculation entry itself is left
// for the caller to delete.
func (s *Service) SyncOnCalculationEntryDeletion(ctx context.Context, calcEntryID int64) (*SyncResult, error) {
	var res *SyncResult
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		entry, sheet, err := loadCalculationEntry(ctx, tx, calcEntryID)
		if err != nil {
			return err
		}
		if res, err = s.MirrorEntryDeletionTx(ctx, tx, entry.SourceKey(sheet)); err != nil {
			return err
		}
		res.Recomputed, err = s.engine.RecomputeManyTx(ctx, tx, res.TouchedBOQItemIDs)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// SyncOnCalculationSheetDeletion removes every entry referencing the sheet's
// (calculationSheetNo, drawingNo) and recomputes each owner once.
func (s *Service) SyncOnCalculationSheetDeletion(ctx context.Context, calcSheetID int64) (*SyncResult, error) {
	var res *SyncResult
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		sheet, err := tx.CalculationSheets.GetByID(ctx, calcSheetID)
		if err != nil {
			return err
		}
		if res, err = s.MirrorSheetDeletionTx(ctx, tx, sheet); err != nil {
			return err
		}
		res.Recomputed, err = s.engine.RecomputeManyTx(ctx, tx, res.TouchedBOQItemIDs)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// MirrorEntryUpdateTx copies the calculation quantities onto the first
// entry matching the full source key. It does not recompute.
func (s *Service) MirrorEntryUpdateTx(ctx context.Context, tx *repository.Store, entry *domain.CalculationEntry, sheet *domain.CalculationSheet) (*SyncResult, error) {
	res := &SyncResult{}

	ce, err := tx.ConcentrationEntries.FindBySourceKey(ctx, entry.SourceKey(sheet))
	if errors.Is(err, domain.ErrNotFound) {
		return res, nil
	}
	if err != nil {
		return nil, err
	}

	ce.EstimatedQuantity = entry.EstimatedQuantity
	ce.QuantitySubmitted = entry.QuantitySubmitted
	if err := tx.ConcentrationEntries.Save(ctx, ce); err != nil {
		return nil, err
	}

	owner, err := tx.ConcentrationSheets.GetByID(ctx, ce.ConcentrationSheetID)
	if err != nil {
		return nil, err
	}
	res.Matched, res.Updated = 1, 1
	res.TouchedBOQItemIDs = []int64{owner.BOQItemID}
	return res, nil
}

// MirrorEntryMoveTx mirrors an entry whose section number changed. An
// existing entry under the new key is refreshed the way populate would
// refresh it; otherwise an AutoGenerated entry is created. The new section
// must name a BOQ item. It does not recompute.
func (s *Service) MirrorEntryMoveTx(ctx context.Context, tx *repository.Store, entry *domain.CalculationEntry, sheet *domain.CalculationSheet) (*SyncResult, error) {
	pop, err := s.populate(ctx, tx, sheet, []domain.CalculationEntry{*entry})
	if err != nil {
		return nil, err
	}
	return &SyncResult{
		Matched:           pop.Created + pop.Updated,
		Updated:           pop.Created + pop.Updated,
		TouchedBOQItemIDs: pop.TouchedBOQItemIDs,
	}, nil
}

// MirrorEntryDeletionTx deletes the first entry matching key. It does not
// recompute.
func (s *Service) MirrorEntryDeletionTx(ctx context.Context, tx *repository.Store, key domain.SourceKey) (*SyncResult, error) {
	res := &SyncResult{}

	ce, err := tx.ConcentrationEntries.FindBySourceKey(ctx, key)
	if errors.Is(err, domain.ErrNotFound) {
		return res, nil
	}
	if err != nil {
		return nil, err
	}

	owner, err := tx.ConcentrationSheets.GetByID(ctx, ce.ConcentrationSheetID)
	if err != nil {
		return nil, err
	}
	if err := tx.ConcentrationEntries.Delete(ctx, ce.ID); err != nil {
		return nil, err
	}
	res.Matched, res.Deleted = 1, 1
	res.TouchedBOQItemIDs = []int64{owner.BOQItemID}
	return res, nil
}

// MirrorSheetDeletionTx deletes every entry sourced from sheet regardless of
// section number. It does not recompute.
func (s *Service) MirrorSheetDeletionTx(ctx context.Context, tx *repository.Store, sheet *domain.CalculationSheet) (*SyncResult, error) {
	res := &SyncResult{}

	entries, err := tx.ConcentrationEntries.ListBySource(ctx, sheet.CalculationSheetNo, sheet.DrawingNo)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return res, nil
	}

	ids := make([]int64, 0, len(entries))
	sheetIDs := make([]int64, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ID)
		sheetIDs = append(sheetIDs, e.ConcentrationSheetID)
	}
	owners, err := tx.ConcentrationSheets.BOQItemIDs(ctx, aggregation.Distinct(sheetIDs))
	if err != nil {
		return nil, err
	}

	deleted, err := tx.ConcentrationEntries.DeleteByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	touched := make([]int64, 0, len(owners))
	for _, boqItemID := range owners {
		touched = append(touched, boqItemID)
	}
	res.Matched = len(entries)
	res.Deleted = int(deleted)
	res.TouchedBOQItemIDs = aggregation.Distinct(touched)
	return res, nil
}

// PopulateFromCalculationSheet mirrors every entry of the sheet into the
// owning concentration sheets. Manual matches are skipped; auto matches are
// overwritten; anything else is created as AutoGenerated. A blank section
// number or a section with no BOQ item aborts the whole sheet.
func (s *Service) PopulateFromCalculationSheet(ctx context.Context, calcSheetID int64) (*PopulateResult, error) {
	var res *PopulateResult
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		res, err = s.PopulateTx(ctx, tx, calcSheetID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("calculation sheet populated",
		"calculation_sheet_id", calcSheetID,
		"created", res.Created,
		"updated", res.Updated,
		"skipped", res.Skipped,
		"boq_items", len(res.TouchedBOQItemIDs),
	)
	return res, nil
}

// PopulateTx is PopulateFromCalculationSheet inside the caller's transaction,
// recompute included.
func (s *Service) PopulateTx(ctx context.Context, tx *repository.Store, calcSheetID int64) (*PopulateResult, error) {
	sheet, err := tx.CalculationSheets.GetByID(ctx, calcSheetID)
	if err != nil {
		return nil, err
	}
	entries, err := tx.CalculationEntries.ListBySheet(ctx, sheet.ID)
	if err != nil {
		return nil, err
	}

	res, err := s.populate(ctx, tx, sheet, entries)
	if err != nil {
		return nil, err
	}
	res.Recomputed, err = s.engine.RecomputeManyTx(ctx, tx, res.TouchedBOQItemIDs)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *Service) populate(ctx context.Context, tx *repository.Store, sheet *domain.CalculationSheet, entries []domain.CalculationEntry) (*PopulateResult, error) {
	res := &PopulateResult{
		CalculationSheetID: sheet.ID,
		CalculationSheetNo: sheet.CalculationSheetNo,
		DrawingNo:          sheet.DrawingNo,
	}

	// Preconditions first so a bad sheet writes nothing.
	items := make(map[string]*domain.BOQItem, len(entries))
	for _, e := range entries {
		section := strings.TrimSpace(e.SectionNumber)
		if section == "" {
			return nil, domain.Invalid("calculation entry", e.ID, "blank section number")
		}
		if _, ok := items[section]; ok {
			continue
		}
		item, err := tx.BOQItems.GetBySectionNumber(ctx, section)
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.Invalid("calculation entry", e.ID, "no BOQ item with section number "+section)
		}
		if err != nil {
			return nil, err
		}
		items[section] = item
	}

	var touched []int64
	for _, e := range entries {
		item := items[strings.TrimSpace(e.SectionNumber)]

		csheet, err := tx.ConcentrationSheets.GetByBOQItemID(ctx, item.ID)
		if errors.Is(err, domain.ErrNotFound) {
			res.Skipped++
			res.SkipReasons = append(res.SkipReasons, "no concentration sheet for section "+item.SectionNumber)
			continue
		}
		if err != nil {
			return nil, err
		}

		key := domain.SourceKey{
			SectionNumber:      item.SectionNumber,
			CalculationSheetNo: sheet.CalculationSheetNo,
			DrawingNo:          sheet.DrawingNo,
		}
		existing, err := tx.ConcentrationEntries.FindInSheetBySourceKey(ctx, csheet.ID, key)
		switch {
		case err == nil:
			if !domain.Replaceable(existing.Origin()) {
				res.Skipped++
				res.SkipReasons = append(res.SkipReasons, "manual entry kept for section "+item.SectionNumber)
				continue
			}
			existing.EstimatedQuantity = e.EstimatedQuantity
			existing.QuantitySubmitted = e.QuantitySubmitted
			existing.Description = sheet.Description
			existing.Notes = domain.NoteAutoUpdated
			if err := tx.ConcentrationEntries.Save(ctx, existing); err != nil {
				return nil, err
			}
			res.Updated++
		case errors.Is(err, domain.ErrNotFound):
			ce := &domain.ConcentrationEntry{
				ConcentrationSheetID: csheet.ID,
				SectionNumber:        item.SectionNumber,
				Description:          sheet.Description,
				EstimatedQuantity:    e.EstimatedQuantity,
				QuantitySubmitted:    e.QuantitySubmitted,
				Notes:                domain.NoteAutoPopulated,
			}
			ce.SetOrigin(domain.AutoGenerated{CalculationSheetNo: sheet.CalculationSheetNo, DrawingNo: sheet.DrawingNo})
			if err := tx.ConcentrationEntries.Create(ctx, ce); err != nil {
				return nil, err
			}
			res.Created++
		default:
			return nil, err
		}
		touched = append(touched, item.ID)
	}

	res.TouchedBOQItemIDs = aggregation.Distinct(touched)
	return res, nil
}

// PopulateFromAllCalculationSheets clears every auto entry, then rebuilds
// sheet by sheet with one commit per sheet. A failing sheet is recorded and
// the run continues. Items that lost auto entries but were not rebuilt are
// recomputed at the end.
func (s *Service) PopulateFromAllCalculationSheets(ctx context.Context) (*BulkPopulateResult, error) {
	out := &BulkPopulateResult{}

	var cleared []int64
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		sheetIDs, err := tx.ConcentrationEntries.AutoGeneratedSheetIDs(ctx)
		if err != nil {
			return err
		}
		owners, err := tx.ConcentrationSheets.BOQItemIDs(ctx, sheetIDs)
		if err != nil {
			return err
		}
		for _, id := range owners {
			cleared = append(cleared, id)
		}
		out.ClearedEntries, err = tx.ConcentrationEntries.DeleteAutoGenerated(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	sheets, err := s.store.CalculationSheets.List(ctx)
	if err != nil {
		return nil, err
	}

	rebuilt := make(map[int64]struct{})
	for _, sheet := range sheets {
		outcome := SheetOutcome{
			CalculationSheetID: sheet.ID,
			CalculationSheetNo: sheet.CalculationSheetNo,
			DrawingNo:          sheet.DrawingNo,
		}

		var res *PopulateResult
		err := s.store.Transaction(ctx, func(tx *repository.Store) error {
			var err error
			res, err = s.PopulateTx(ctx, tx, sheet.ID)
			return err
		})
		if err != nil {
			s.log.Warn("calculation sheet populate failed",
				"calculation_sheet_id", sheet.ID,
				"calculation_sheet_no", sheet.CalculationSheetNo,
				"drawing_no", sheet.DrawingNo,
				"error", err,
			)
			outcome.Err = err
			outcome.Error = err.Error()
			out.Failed++
			out.Sheets = append(out.Sheets, outcome)
			continue
		}

		outcome.Result = res
		out.Succeeded++
		out.Created += res.Created
		out.Updated += res.Updated
		out.Skipped += res.Skipped
		for _, id := range res.TouchedBOQItemIDs {
			rebuilt[id] = struct{}{}
		}
		out.Sheets = append(out.Sheets, outcome)
	}

	var stale []int64
	for _, id := range cleared {
		if _, ok := rebuilt[id]; !ok {
			stale = append(stale, id)
		}
	}
	for _, id := range aggregation.Distinct(stale) {
		if _, err := s.engine.RecomputeBoqTotals(ctx, id); err != nil {
			out.Warnings = append(out.Warnings, domain.NewSyncWarning("populate all calculation sheets", id, err))
		}
	}

	s.log.Info("all calculation sheets populated",
		"sheets", len(sheets),
		"succeeded", out.Succeeded,
		"failed", out.Failed,
		"cleared", out.ClearedEntries,
		"created", out.Created,
		"skipped", out.Skipped,
	)
	return out, nil
}

func loadCalculationEntry(ctx context.Context, tx *repository.Store, id int64) (*domain.CalculationEntry, *domain.CalculationSheet, error) {
	entry, err := tx.CalculationEntries.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	sheet, err := tx.CalculationSheets.GetByID(ctx, entry.CalculationSheetID)
	if err != nil {
		return nil, nil, err
	}
	return entry, sheet, nil
}
