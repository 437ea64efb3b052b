// Package cascade runs deletes and edits that ripple across the ledger.
// Each operation commits its primary mutation first and then recomputes the
// affected BOQ items; a recompute failure is reported as a warning because
// the primary change stays committed.
package cascade

import (
	"context"
	"errors"

	"boqtracker/internal/domain"
	"boqtracker/internal/modules/aggregation"
	"boqtracker/internal/modules/calculation"
	"boqtracker/internal/modules/concentration"
	"boqtracker/internal/pkg/logger"
	"boqtracker/internal/pkg/validator"
	"boqtracker/internal/repository"
)

// Outcome reports what a cascade removed and recomputed.
type Outcome struct {
	Operation         string                        `json:"operation"`
	Deleted           map[string]int64              `json:"deleted,omitempty"`
	TouchedBOQItemIDs []int64                       `json:"touched_boq_item_ids,omitempty"`
	Recomputed        []aggregation.RecomputeResult `json:"recomputed,omitempty"`
	Warnings          []domain.SyncWarning          `json:"warnings,omitempty"`
}

func (o *Outcome) deleted(kind string, n int64) {
	if n > 0 {
		o.Deleted[kind] += n
	}
}

func (o *Outcome) touch(ids ...int64) {
	o.TouchedBOQItemIDs = append(o.TouchedBOQItemIDs, ids...)
}

type CalculationEntryUpdate struct {
	Entry   *domain.CalculationEntry `json:"entry"`
	Outcome *Outcome                 `json:"outcome"`
}

type ConcentrationEntryUpdate struct {
	Entry   *domain.ConcentrationEntry `json:"entry"`
	Outcome *Outcome                   `json:"outcome"`
}

// Entity kinds used in Outcome.Deleted.
const (
	KindBOQItem            = "boq_item"
	KindConcentrationSheet = "concentration_sheet"
	KindConcentrationEntry = "concentration_entry"
	KindCalculationSheet   = "calculation_sheet"
	KindCalculationEntry   = "calculation_entry"
	KindContractUpdate     = "contract_update"
	KindQuantityUpdate     = "quantity_update"
)

type Coordinator struct {
	store      *repository.Store
	mirror     Mirror
	recomputer Recomputer
	log        *logger.Logger
}

func NewCoordinator(store *repository.Store, mirror Mirror, recomputer Recomputer, log *logger.Logger) *Coordinator {
	return &Coordinator{
		store:      store,
		mirror:     mirror,
		recomputer: recomputer,
		log:        log.With("module", "cascade"),
	}
}

func (c *Coordinator) run(ctx context.Context, op string, primary func(tx *repository.Store, out *Outcome) error) (*Outcome, error) {
	out := &Outcome{Operation: op, Deleted: map[string]int64{}}
	if err := c.store.Transaction(ctx, func(tx *repository.Store) error {
		return primary(tx, out)
	}); err != nil {
		return nil, err
	}

	out.TouchedBOQItemIDs = aggregation.Distinct(out.TouchedBOQItemIDs)
	for _, id := range out.TouchedBOQItemIDs {
		res, err := c.recomputer.RecomputeBoqTotals(ctx, id)
		if err != nil {
			c.log.Warn("recompute after cascade failed", "operation", op, "boq_item_id", id, "error", err)
			out.Warnings = append(out.Warnings, domain.NewSyncWarning(op, id, err))
			continue
		}
		out.Recomputed = append(out.Recomputed, *res)
	}

	c.log.Info("cascade applied",
		"operation", op,
		"deleted", out.Deleted,
		"recomputed", len(out.Recomputed),
		"warnings", len(out.Warnings),
	)
	return out, nil
}

// UpdateCalculationEntry edits a calculation entry and refreshes its
// mirror. When the section number changes the old mirror is removed and
// the entry is mirrored under its new section.
func (c *Coordinator) UpdateCalculationEntry(ctx context.Context, id int64, patch calculation.EntryPatch) (*CalculationEntryUpdate, error) {
	if err := validator.Check("calculation entry", patch); err != nil {
		return nil, err
	}

	var entry *domain.CalculationEntry
	out, err := c.run(ctx, "update calculation entry", func(tx *repository.Store, out *Outcome) error {
		var err error
		if entry, err = tx.CalculationEntries.GetByID(ctx, id); err != nil {
			return err
		}
		sheet, err := tx.CalculationSheets.GetByID(ctx, entry.CalculationSheetID)
		if err != nil {
			return err
		}

		oldKey := entry.SourceKey(sheet)
		if err := patch.Apply(entry); err != nil {
			return err
		}
		if err := tx.CalculationEntries.Save(ctx, entry); err != nil {
			return err
		}

		if entry.SectionNumber == oldKey.SectionNumber {
			res, err := c.mirror.MirrorEntryUpdateTx(ctx, tx, entry, sheet)
			if err != nil {
				return err
			}
			out.touch(res.TouchedBOQItemIDs...)
			return nil
		}

		removed, err := c.mirror.MirrorEntryDeletionTx(ctx, tx, oldKey)
		if err != nil {
			return err
		}
		out.deleted(KindConcentrationEntry, int64(removed.Deleted))
		out.touch(removed.TouchedBOQItemIDs...)

		// Entries that were never mirrored stay unmirrored until populate.
		mirror := c.mirror.MirrorEntryUpdateTx
		if removed.Deleted > 0 {
			mirror = c.mirror.MirrorEntryMoveTx
		}
		res, err := mirror(ctx, tx, entry, sheet)
		if err != nil {
			return err
		}
		out.touch(res.TouchedBOQItemIDs...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &CalculationEntryUpdate{Entry: entry, Outcome: out}, nil
}

// DeleteCalculationEntry removes the entry and its mirror.
func (c *Coordinator) DeleteCalculationEntry(ctx context.Context, id int64) (*Outcome, error) {
	return c.run(ctx, "delete calculation entry", func(tx *repository.Store, out *Outcome) error {
		entry, err := tx.CalculationEntries.GetByID(ctx, id)
		if err != nil {
			return err
		}
		sheet, err := tx.CalculationSheets.GetByID(ctx, entry.CalculationSheetID)
		if err != nil {
			return err
		}

		res, err := c.mirror.MirrorEntryDeletionTx(ctx, tx, entry.SourceKey(sheet))
		if err != nil {
			return err
		}
		out.deleted(KindConcentrationEntry, int64(res.Deleted))
		out.touch(res.TouchedBOQItemIDs...)

		if err := tx.CalculationEntries.Delete(ctx, entry.ID); err != nil {
			return err
		}
		out.deleted(KindCalculationEntry, 1)
		return nil
	})
}

// DeleteCalculationSheet removes the sheet, its entries and every
// concentration entry sourced from it.
func (c *Coordinator) DeleteCalculationSheet(ctx context.Context, id int64) (*Outcome, error) {
	return c.run(ctx, "delete calculation sheet", func(tx *repository.Store, out *Outcome) error {
		sheet, err := tx.CalculationSheets.GetByID(ctx, id)
		if err != nil {
			return err
		}

		res, err := c.mirror.MirrorSheetDeletionTx(ctx, tx, sheet)
		if err != nil {
			return err
		}
		out.deleted(KindConcentrationEntry, int64(res.Deleted))
		out.touch(res.TouchedBOQItemIDs...)

		n, err := tx.CalculationEntries.DeleteBySheet(ctx, sheet.ID)
		if err != nil {
			return err
		}
		out.deleted(KindCalculationEntry, n)

		if err := tx.CalculationSheets.Delete(ctx, sheet.ID); err != nil {
			return err
		}
		out.deleted(KindCalculationSheet, 1)
		return nil
	})
}

// UpdateConcentrationEntry edits an entry in place. Its origin is kept.
func (c *Coordinator) UpdateConcentrationEntry(ctx context.Context, id int64, patch concentration.EntryPatch) (*ConcentrationEntryUpdate, error) {
	var entry *domain.ConcentrationEntry
	out, err := c.run(ctx, "update concentration entry", func(tx *repository.Store, out *Outcome) error {
		var err error
		if entry, err = tx.ConcentrationEntries.GetByID(ctx, id); err != nil {
			return err
		}
		sheet, err := tx.ConcentrationSheets.GetByID(ctx, entry.ConcentrationSheetID)
		if err != nil {
			return err
		}

		patch.Apply(entry)
		if err := tx.ConcentrationEntries.Save(ctx, entry); err != nil {
			return err
		}
		out.touch(sheet.BOQItemID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &ConcentrationEntryUpdate{Entry: entry, Outcome: out}, nil
}

func (c *Coordinator) DeleteConcentrationEntry(ctx context.Context, id int64) (*Outcome, error) {
	return c.run(ctx, "delete concentration entry", func(tx *repository.Store, out *Outcome) error {
		entry, err := tx.ConcentrationEntries.GetByID(ctx, id)
		if err != nil {
			return err
		}
		sheet, err := tx.ConcentrationSheets.GetByID(ctx, entry.ConcentrationSheetID)
		if err != nil {
			return err
		}

		if err := tx.ConcentrationEntries.Delete(ctx, entry.ID); err != nil {
			return err
		}
		out.deleted(KindConcentrationEntry, 1)
		out.touch(sheet.BOQItemID)
		return nil
	})
}

// DeleteConcentrationSheet removes the entries explicitly, then the sheet.
// The owning item is recomputed to zero.
func (c *Coordinator) DeleteConcentrationSheet(ctx context.Context, id int64) (*Outcome, error) {
	return c.run(ctx, "delete concentration sheet", func(tx *repository.Store, out *Outcome) error {
		sheet, err := tx.ConcentrationSheets.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := deleteConcentrationSheet(ctx, tx, sheet, out); err != nil {
			return err
		}
		out.touch(sheet.BOQItemID)
		return nil
	})
}

// DeleteBOQItem removes the item with its sheet, entries and snapshot rows.
func (c *Coordinator) DeleteBOQItem(ctx context.Context, id int64) (*Outcome, error) {
	return c.run(ctx, "delete boq item", func(tx *repository.Store, out *Outcome) error {
		item, err := tx.BOQItems.GetByID(ctx, id)
		if err != nil {
			return err
		}

		sheet, err := tx.ConcentrationSheets.GetByBOQItemID(ctx, item.ID)
		switch {
		case err == nil:
			if err := deleteConcentrationSheet(ctx, tx, sheet, out); err != nil {
				return err
			}
		case errors.Is(err, domain.ErrNotFound):
		default:
			return err
		}

		n, err := tx.QuantityUpdates.DeleteByItem(ctx, item.ID)
		if err != nil {
			return err
		}
		out.deleted(KindQuantityUpdate, n)

		if err := tx.BOQItems.Delete(ctx, item.ID); err != nil {
			return err
		}
		out.deleted(KindBOQItem, 1)
		return nil
	})
}

// DeleteContractUpdate removes an update and its rows. Rollups are not
// affected so nothing is recomputed.
func (c *Coordinator) DeleteContractUpdate(ctx context.Context, id int64) (*Outcome, error) {
	return c.run(ctx, "delete contract update", func(tx *repository.Store, out *Outcome) error {
		if _, err := tx.ContractUpdates.GetByID(ctx, id); err != nil {
			return err
		}
		n, err := tx.QuantityUpdates.DeleteByUpdate(ctx, id)
		if err != nil {
			return err
		}
		out.deleted(KindQuantityUpdate, n)

		if err := tx.ContractUpdates.Delete(ctx, id); err != nil {
			return err
		}
		out.deleted(KindContractUpdate, 1)
		return nil
	})
}

func deleteConcentrationSheet(ctx context.Context, tx *repository.Store, sheet *domain.ConcentrationSheet, out *Outcome) error {
	n, err := tx.ConcentrationEntries.DeleteBySheet(ctx, sheet.ID)
	if err != nil {
		return err
	}
	out.deleted(KindConcentrationEntry, n)

	if err := tx.ConcentrationSheets.Delete(ctx, sheet.ID); err != nil {
		return err
	}
	out.deleted(KindConcentrationSheet, 1)
	return nil
}
