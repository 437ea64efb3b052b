// Package aggregation recomputes BOQ item rollups from concentration entries.
package aggregation

import (
	"context"
	"errors"
	"sort"

	"boqtracker/internal/domain"
	"boqtracker/internal/pkg/logger"
	"boqtracker/internal/pkg/money"
	"boqtracker/internal/repository"
)

type RecomputeResult struct {
	BOQItemID  int64         `json:"boq_item_id"`
	Found      bool          `json:"found"`
	EntryCount int           `json:"entry_count"`
	Rollup     domain.Rollup `json:"rollup"`
}

type Engine struct {
	store *repository.Store
	log   *logger.Logger
}

func NewEngine(store *repository.Store, log *logger.Logger) *Engine {
	return &Engine{store: store, log: log.With("module", "aggregation")}
}

// Rollup sums the four quantity columns of entries.
func Rollup(entries []domain.ConcentrationEntry) domain.Rollup {
	var est, sub, internal, approved money.Accumulator
	for _, e := range entries {
		est.Add(e.EstimatedQuantity)
		sub.Add(e.QuantitySubmitted)
		internal.Add(e.InternalQuantity)
		approved.Add(e.ApprovedByManagerQuantity)
	}
	return domain.Rollup{
		Estimated:         est.Float64(),
		Submitted:         sub.Float64(),
		Internal:          internal.Float64(),
		ApprovedByManager: approved.Float64(),
	}
}

// RecomputeBoqTotals recomputes one item in its own transaction.
func (e *Engine) RecomputeBoqTotals(ctx context.Context, boqItemID int64) (*RecomputeResult, error) {
	var res *RecomputeResult
	err := e.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		res, err = e.RecomputeTx(ctx, tx, boqItemID)
		return err
	})
	if err != nil {
		if res == nil {
			res = &RecomputeResult{BOQItemID: boqItemID}
		}
		return res, err
	}
	return res, nil
}

// RecomputeTx recomputes one item inside the caller's transaction. A
// missing sheet and an empty sheet both zero the rollups.
func (e *Engine) RecomputeTx(ctx context.Context, tx *repository.Store, boqItemID int64) (*RecomputeResult, error) {
	res := &RecomputeResult{BOQItemID: boqItemID}

	item, err := tx.BOQItems.GetByIDForUpdate(ctx, boqItemID)
	if err != nil {
		return res, err
	}
	res.Found = true

	var entries []domain.ConcentrationEntry
	sheet, err := tx.ConcentrationSheets.GetByBOQItemID(ctx, boqItemID)
	switch {
	case err == nil:
		entries, err = tx.ConcentrationEntries.ListBySheet(ctx, sheet.ID)
		if err != nil {
			return res, err
		}
	case errors.Is(err, domain.ErrNotFound):
	default:
		return res, err
	}

	res.EntryCount = len(entries)
	res.Rollup = Rollup(entries)
	item.ApplyRollup(res.Rollup)
	if err := tx.BOQItems.Save(ctx, item); err != nil {
		return res, err
	}

	e.log.Debug("boq totals recomputed",
		"boq_item_id", boqItemID,
		"entries", res.EntryCount,
		"estimated", res.Rollup.Estimated,
		"submitted", res.Rollup.Submitted,
	)
	return res, nil
}

// RecomputeManyTx recomputes each distinct id once, in ascending order.
func (e *Engine) RecomputeManyTx(ctx context.Context, tx *repository.Store, boqItemIDs []int64) ([]RecomputeResult, error) {
	ids := Distinct(boqItemIDs)
	out := make([]RecomputeResult, 0, len(ids))
	for _, id := range ids {
		res, err := e.RecomputeTx(ctx, tx, id)
		if err != nil {
			return out, err
		}
		out = append(out, *res)
	}
	return out, nil
}

// RecomputeMany is RecomputeManyTx in its own transaction.
func (e *Engine) RecomputeMany(ctx context.Context, boqItemIDs []int64) ([]RecomputeResult, error) {
	var out []RecomputeResult
	err := e.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		out, err = e.RecomputeManyTx(ctx, tx, boqItemIDs)
		return err
	})
	return out, err
}

// Distinct returns the unique ids in ascending order.
func Distinct(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
