package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"boqtracker/internal/domain"
)

const entityBOQItem = "boq item"

type BOQItemFilters struct {
	Structure  string
	System     string
	Subsection string
	Search     string
}

type BOQItemRepository struct {
	db *gorm.DB
}

func NewBOQItemRepository(db *gorm.DB) *BOQItemRepository {
	return &BOQItemRepository{db: db}
}

func (r *BOQItemRepository) Create(ctx context.Context, item *domain.BOQItem) error {
	err := r.db.WithContext(ctx).Create(item).Error
	return translate("create boq item", entityBOQItem, item.SectionNumber, err)
}

func (r *BOQItemRepository) GetByID(ctx context.Context, id int64) (*domain.BOQItem, error) {
	var item domain.BOQItem
	if err := r.db.WithContext(ctx).First(&item, id).Error; err != nil {
		return nil, translate("get boq item", entityBOQItem, id, err)
	}
	return &item, nil
}

// GetByIDForUpdate locks the row for the rest of the transaction on
// databases that support row locks.
func (r *BOQItemRepository) GetByIDForUpdate(ctx context.Context, id int64) (*domain.BOQItem, error) {
	var item domain.BOQItem
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&item, id).Error
	if err != nil {
		return nil, translate("lock boq item", entityBOQItem, id, err)
	}
	return &item, nil
}

func (r *BOQItemRepository) GetBySectionNumber(ctx context.Context, sectionNumber string) (*domain.BOQItem, error) {
	var item domain.BOQItem
	err := r.db.WithContext(ctx).
		Where("section_number = ?", sectionNumber).
		First(&item).Error
	if err != nil {
		return nil, translate("get boq item by section", entityBOQItem, sectionNumber, err)
	}
	return &item, nil
}

func (r *BOQItemRepository) List(ctx context.Context, f BOQItemFilters) ([]domain.BOQItem, error) {
	q := r.db.WithContext(ctx).Model(&domain.BOQItem{})
	if f.Structure != "" {
		q = q.Where("structure = ?", f.Structure)
	}
	if f.System != "" {
		q = q.Where("system = ?", f.System)
	}
	if f.Subsection != "" {
		q = q.Where("subsection = ?", f.Subsection)
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		q = q.Where("section_number LIKE ? OR description LIKE ?", like, like)
	}

	var items []domain.BOQItem
	if err := q.Order("section_number").Find(&items).Error; err != nil {
		return nil, translate("list boq items", entityBOQItem, "*", err)
	}
	return items, nil
}

// Save writes every column, zero values included.
func (r *BOQItemRepository) Save(ctx context.Context, item *domain.BOQItem) error {
	err := r.db.WithContext(ctx).Save(item).Error
	return translate("save boq item", entityBOQItem, item.ID, err)
}

func (r *BOQItemRepository) Delete(ctx context.Context, id int64) error {
	tx := r.db.WithContext(ctx).Delete(&domain.BOQItem{}, id)
	if tx.Error != nil {
		return translate("delete boq item", entityBOQItem, id, tx.Error)
	}
	if tx.RowsAffected == 0 {
		return domain.NotFound(entityBOQItem, id)
	}
	return nil
}
