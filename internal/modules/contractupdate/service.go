// Package contractupdate versions contract quantities as numbered,
// full-snapshot updates.
package contractupdate

import (
	"context"
	"fmt"
	"time"

	"boqtracker/internal/domain"
	"boqtracker/internal/pkg/lock"
	"boqtracker/internal/pkg/logger"
	"boqtracker/internal/pkg/money"
	"boqtracker/internal/pkg/validator"
	"boqtracker/internal/repository"
)

// SequenceLockKey serializes "read max index, write max+1".
const SequenceLockKey = "boq:contract-update-sequence"

type Service struct {
	store  *repository.Store
	locker lock.Locker
	log    *logger.Logger
	now    func() time.Time
}

func NewService(store *repository.Store, locker lock.Locker, log *logger.Logger) *Service {
	return &Service{
		store:  store,
		locker: locker,
		log:    log.With("module", "contractupdate"),
		now:    time.Now,
	}
}

// Snapshot is an update together with its per-item rows.
type Snapshot struct {
	Update domain.ContractQuantityUpdate  `json:"update"`
	Rows   []domain.BOQItemQuantityUpdate `json:"rows"`
}

// Create appends the next update and seeds one row per BOQ item from the
// item's original contract quantity. Any failure leaves no update behind.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Snapshot, error) {
	if err := validator.Check("contract update", req); err != nil {
		return nil, err
	}

	release, err := s.locker.Acquire(ctx, SequenceLockKey)
	if err != nil {
		return nil, fmt.Errorf("acquire contract update sequence: %w", err)
	}
	defer release()

	snap := &Snapshot{}
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		last, err := tx.ContractUpdates.MaxIndex(ctx)
		if err != nil {
			return err
		}

		update := domain.ContractQuantityUpdate{
			UpdateIndex: last + 1,
			Name:        domain.ContractUpdateName(last + 1),
			Description: req.Description,
			UpdateDate:  s.now(),
		}
		if req.UpdateDate != nil {
			update.UpdateDate = *req.UpdateDate
		}
		if err := tx.ContractUpdates.Create(ctx, &update); err != nil {
			return err
		}

		items, err := tx.BOQItems.List(ctx, repository.BOQItemFilters{})
		if err != nil {
			return err
		}
		rows := make([]domain.BOQItemQuantityUpdate, 0, len(items))
		for _, item := range items {
			rows = append(rows, domain.BOQItemQuantityUpdate{
				BOQItemID:               item.ID,
				ContractUpdateID:        update.ID,
				UpdatedContractQuantity: item.OriginalContractQuantity,
				UpdatedContractSum:      money.Total(item.OriginalContractQuantity, item.Price),
			})
		}
		if err := tx.QuantityUpdates.CreateBatch(ctx, rows); err != nil {
			return err
		}

		snap.Update = update
		snap.Rows = rows
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("contract update created",
		"contract_update_id", snap.Update.ID,
		"update_index", snap.Update.UpdateIndex,
		"rows", len(snap.Rows),
	)
	return snap, nil
}

func (s *Service) List(ctx context.Context) ([]domain.ContractQuantityUpdate, error) {
	return s.store.ContractUpdates.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (*Snapshot, error) {
	update, err := s.store.ContractUpdates.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	rows, err := s.store.QuantityUpdates.ListByUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Snapshot{Update: *update, Rows: rows}, nil
}

// UpdateBoqItemQuantity edits one row in place. A quantity alone
// recomputes the sum from the item's current price; a sum alone leaves the
// quantity untouched.
func (s *Service) UpdateBoqItemQuantity(ctx context.Context, updateID, boqItemID int64, req QuantityPatch) (*domain.BOQItemQuantityUpdate, error) {
	if req.Quantity == nil && req.Sum == nil {
		return nil, domain.Invalid("quantity update row", fmt.Sprintf("%d/%d", updateID, boqItemID), "quantity or sum is required")
	}
	if err := validator.Check("quantity update row", req); err != nil {
		return nil, err
	}

	var row *domain.BOQItemQuantityUpdate
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		row, err = tx.QuantityUpdates.Get(ctx, updateID, boqItemID)
		if err != nil {
			return err
		}

		if req.Quantity != nil {
			row.UpdatedContractQuantity = *req.Quantity
			if req.Sum == nil {
				item, err := tx.BOQItems.GetByID(ctx, boqItemID)
				if err != nil {
					return err
				}
				row.UpdatedContractSum = money.Total(*req.Quantity, item.Price)
			}
		}
		if req.Sum != nil {
			row.UpdatedContractSum = *req.Sum
		}
		return tx.QuantityUpdates.Save(ctx, row)
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}

// LatestFor returns the item's row from the highest-index update, or its
// original contract values when no update exists.
func (s *Service) LatestFor(ctx context.Context, boqItemID int64) (*domain.LatestContractQuantity, error) {
	item, err := s.store.BOQItems.GetByID(ctx, boqItemID)
	if err != nil {
		return nil, err
	}
	latest, err := Latest(ctx, s.store, []domain.BOQItem{*item})
	if err != nil {
		return nil, err
	}
	l := latest[item.ID]
	return &l, nil
}

// LatestForMany is LatestFor over several items. Unknown ids are NotFound.
func (s *Service) LatestForMany(ctx context.Context, boqItemIDs []int64) (map[int64]domain.LatestContractQuantity, error) {
	items := make([]domain.BOQItem, 0, len(boqItemIDs))
	for _, id := range boqItemIDs {
		item, err := s.store.BOQItems.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return Latest(ctx, s.store, items)
}

// Latest resolves the current contract quantity of every item with one
// query, falling back to the original contract.
func Latest(ctx context.Context, st *repository.Store, items []domain.BOQItem) (map[int64]domain.LatestContractQuantity, error) {
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	rows, err := st.QuantityUpdates.LatestForItems(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make(map[int64]domain.LatestContractQuantity, len(items))
	for _, item := range items {
		row, ok := rows[item.ID]
		if !ok {
			out[item.ID] = Fallback(&item)
			continue
		}
		out[item.ID] = domain.LatestContractQuantity{
			BOQItemID:        item.ID,
			Quantity:         row.UpdatedContractQuantity,
			Sum:              row.UpdatedContractSum,
			FromUpdate:       true,
			ContractUpdateID: row.ContractUpdateID,
			UpdateIndex:      row.UpdateIndex,
		}
	}
	return out, nil
}

// Fallback is the latest contract quantity of an item with no updates.
func Fallback(item *domain.BOQItem) domain.LatestContractQuantity {
	return domain.LatestContractQuantity{
		BOQItemID: item.ID,
		Quantity:  item.OriginalContractQuantity,
		Sum:       money.Total(item.OriginalContractQuantity, item.Price),
	}
}
