package cascade

import (
	"context"

	"boqtracker/internal/domain"
	"boqtracker/internal/modules/aggregation"
	"boqtracker/internal/modules/concentration"
	"boqtracker/internal/repository"
)

// Recomputer refreshes one item's rollups in its own transaction.
type Recomputer interface {
	RecomputeBoqTotals(ctx context.Context, boqItemID int64) (*aggregation.RecomputeResult, error)
}

// Mirror applies calculation-side changes to concentration entries inside
// the caller's transaction.
type Mirror interface {
	MirrorEntryUpdateTx(ctx context.Context, tx *repository.Store, entry *domain.CalculationEntry, sheet *domain.CalculationSheet) (*concentration.SyncResult, error)
	MirrorEntryMoveTx(ctx context.Context, tx *repository.Store, entry *domain.CalculationEntry, sheet *domain.CalculationSheet) (*concentration.SyncResult, error)
	MirrorEntryDeletionTx(ctx context.Context, tx *repository.Store, key domain.SourceKey) (*concentration.SyncResult, error)
	MirrorSheetDeletionTx(ctx context.Context, tx *repository.Store, sheet *domain.CalculationSheet) (*concentration.SyncResult, error)
}
