package repository

import (
	"context"

	"gorm.io/gorm"

	"boqtracker/internal/domain"
)

const (
	entityContractUpdate = "contract update"
	entityQuantityUpdate = "boq item quantity update"
)

type ContractUpdateRepository struct {
	db *gorm.DB
}

func NewContractUpdateRepository(db *gorm.DB) *ContractUpdateRepository {
	return &ContractUpdateRepository{db: db}
}

func (r *ContractUpdateRepository) Create(ctx context.Context, u *domain.ContractQuantityUpdate) error {
	err := r.db.WithContext(ctx).Create(u).Error
	return translate("create contract update", entityContractUpdate, u.UpdateIndex, err)
}

func (r *ContractUpdateRepository) GetByID(ctx context.Context, id int64) (*domain.ContractQuantityUpdate, error) {
	var u domain.ContractQuantityUpdate
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, translate("get contract update", entityContractUpdate, id, err)
	}
	return &u, nil
}

// List returns updates ordered by index.
func (r *ContractUpdateRepository) List(ctx context.Context) ([]domain.ContractQuantityUpdate, error) {
	var updates []domain.ContractQuantityUpdate
	if err := r.db.WithContext(ctx).Order("update_index").Find(&updates).Error; err != nil {
		return nil, translate("list contract updates", entityContractUpdate, "*", err)
	}
	return updates, nil
}

// MaxIndex returns the highest update index, 0 when there is none.
func (r *ContractUpdateRepository) MaxIndex(ctx context.Context) (int, error) {
	var max int
	err := r.db.WithContext(ctx).
		Model(&domain.ContractQuantityUpdate{}).
		Select("COALESCE(MAX(update_index), 0)").
		Scan(&max).Error
	if err != nil {
		return 0, translate("read max update index", entityContractUpdate, "*", err)
	}
	return max, nil
}

func (r *ContractUpdateRepository) Delete(ctx context.Context, id int64) error {
	tx := r.db.WithContext(ctx).Delete(&domain.ContractQuantityUpdate{}, id)
	if tx.Error != nil {
		return translate("delete contract update", entityContractUpdate, id, tx.Error)
	}
	if tx.RowsAffected == 0 {
		return domain.NotFound(entityContractUpdate, id)
	}
	return nil
}

type QuantityUpdateRepository struct {
	db *gorm.DB
}

func NewQuantityUpdateRepository(db *gorm.DB) *QuantityUpdateRepository {
	return &QuantityUpdateRepository{db: db}
}

func (r *QuantityUpdateRepository) CreateBatch(ctx context.Context, rows []domain.BOQItemQuantityUpdate) error {
	if len(rows) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).CreateInBatches(rows, 200).Error
	return translate("create quantity update rows", entityQuantityUpdate, len(rows), err)
}

func (r *QuantityUpdateRepository) Get(ctx context.Context, contractUpdateID, boqItemID int64) (*domain.BOQItemQuantityUpdate, error) {
	var row domain.BOQItemQuantityUpdate
	err := r.db.WithContext(ctx).
		Where("contract_update_id = ? AND boq_item_id = ?", contractUpdateID, boqItemID).
		First(&row).Error
	if err != nil {
		return nil, translate("get quantity update row", entityQuantityUpdate, itoa(contractUpdateID)+"/"+itoa(boqItemID), err)
	}
	return &row, nil
}

func (r *QuantityUpdateRepository) ListByUpdate(ctx context.Context, contractUpdateID int64) ([]domain.BOQItemQuantityUpdate, error) {
	var rows []domain.BOQItemQuantityUpdate
	err := r.db.WithContext(ctx).
		Where("contract_update_id = ?", contractUpdateID).
		Order("boq_item_id").
		Find(&rows).Error
	if err != nil {
		return nil, translate("list quantity update rows", entityQuantityUpdate, "for update "+itoa(contractUpdateID), err)
	}
	return rows, nil
}

// ListAll returns every row; reports fold them per update.
func (r *QuantityUpdateRepository) ListAll(ctx context.Context) ([]domain.BOQItemQuantityUpdate, error) {
	var rows []domain.BOQItemQuantityUpdate
	if err := r.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, translate("list quantity update rows", entityQuantityUpdate, "*", err)
	}
	return rows, nil
}

// LatestRow is a quantity update row joined with its update index.
type LatestRow struct {
	domain.BOQItemQuantityUpdate
	UpdateIndex int
}

// LatestForItems returns, per item, the row belonging to the highest-index
// update. Items without rows are absent from the map.
func (r *QuantityUpdateRepository) LatestForItems(ctx context.Context, boqItemIDs []int64) (map[int64]LatestRow, error) {
	out := make(map[int64]LatestRow, len(boqItemIDs))
	if len(boqItemIDs) == 0 {
		return out, nil
	}

	var rows []LatestRow
	err := r.db.WithContext(ctx).
		Table("boq_item_quantity_updates AS q").
		Select("q.*, u.update_index AS update_index").
		Joins("JOIN contract_quantity_updates AS u ON u.id = q.contract_update_id").
		Where("q.boq_item_id IN ?", boqItemIDs).
		Where("u.update_index = (?)",
			r.db.Table("boq_item_quantity_updates AS q2").
				Select("MAX(u2.update_index)").
				Joins("JOIN contract_quantity_updates AS u2 ON u2.id = q2.contract_update_id").
				Where("q2.boq_item_id = q.boq_item_id"),
		).
		Scan(&rows).Error
	if err != nil {
		return nil, translate("read latest quantity rows", entityQuantityUpdate, boqItemIDs, err)
	}
	for _, row := range rows {
		out[row.BOQItemID] = row
	}
	return out, nil
}

func (r *QuantityUpdateRepository) Save(ctx context.Context, row *domain.BOQItemQuantityUpdate) error {
	err := r.db.WithContext(ctx).Save(row).Error
	return translate("save quantity update row", entityQuantityUpdate, row.ID, err)
}

func (r *QuantityUpdateRepository) DeleteByUpdate(ctx context.Context, contractUpdateID int64) (int64, error) {
	tx := r.db.WithContext(ctx).Where("contract_update_id = ?", contractUpdateID).Delete(&domain.BOQItemQuantityUpdate{})
	if tx.Error != nil {
		return 0, translate("delete quantity update rows", entityQuantityUpdate, "for update "+itoa(contractUpdateID), tx.Error)
	}
	return tx.RowsAffected, nil
}

func (r *QuantityUpdateRepository) DeleteByItem(ctx context.Context, boqItemID int64) (int64, error) {
	tx := r.db.WithContext(ctx).Where("boq_item_id = ?", boqItemID).Delete(&domain.BOQItemQuantityUpdate{})
	if tx.Error != nil {
		return 0, translate("delete quantity update rows", entityQuantityUpdate, "for boq item "+itoa(boqItemID), tx.Error)
	}
	return tx.RowsAffected, nil
}

func (r *QuantityUpdateRepository) CountByItem(ctx context.Context, boqItemID int64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&domain.BOQItemQuantityUpdate{}).
		Where("boq_item_id = ?", boqItemID).
		Count(&n).Error
	if err != nil {
		return 0, translate("count quantity update rows", entityQuantityUpdate, "for boq item "+itoa(boqItemID), err)
	}
	return n, nil
}
