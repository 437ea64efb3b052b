package repository

import (
	"context"

	"gorm.io/gorm"

	"boqtracker/internal/domain"
)

const (
	entityCalculationSheet = "calculation sheet"
	entityCalculationEntry = "calculation entry"
)

type CalculationSheetRepository struct {
	db *gorm.DB
}

func NewCalculationSheetRepository(db *gorm.DB) *CalculationSheetRepository {
	return &CalculationSheetRepository{db: db}
}

func (r *CalculationSheetRepository) Create(ctx context.Context, sheet *domain.CalculationSheet) error {
	err := r.db.WithContext(ctx).Create(sheet).Error
	return translate("create calculation sheet", entityCalculationSheet, sheet.CalculationSheetNo+"/"+sheet.DrawingNo, err)
}

func (r *CalculationSheetRepository) GetByID(ctx context.Context, id int64) (*domain.CalculationSheet, error) {
	var sheet domain.CalculationSheet
	if err := r.db.WithContext(ctx).First(&sheet, id).Error; err != nil {
		return nil, translate("get calculation sheet", entityCalculationSheet, id, err)
	}
	return &sheet, nil
}

func (r *CalculationSheetRepository) GetByKey(ctx context.Context, calculationSheetNo, drawingNo string) (*domain.CalculationSheet, error) {
	var sheet domain.CalculationSheet
	err := r.db.WithContext(ctx).
		Where("calculation_sheet_no = ? AND drawing_no = ?", calculationSheetNo, drawingNo).
		First(&sheet).Error
	if err != nil {
		return nil, translate("get calculation sheet by key", entityCalculationSheet, calculationSheetNo+"/"+drawingNo, err)
	}
	return &sheet, nil
}

func (r *CalculationSheetRepository) List(ctx context.Context) ([]domain.CalculationSheet, error) {
	var sheets []domain.CalculationSheet
	err := r.db.WithContext(ctx).Order("id").Find(&sheets).Error
	if err != nil {
		return nil, translate("list calculation sheets", entityCalculationSheet, "*", err)
	}
	return sheets, nil
}

func (r *CalculationSheetRepository) Save(ctx context.Context, sheet *domain.CalculationSheet) error {
	err := r.db.WithContext(ctx).Save(sheet).Error
	return translate("save calculation sheet", entityCalculationSheet, sheet.ID, err)
}

func (r *CalculationSheetRepository) Delete(ctx context.Context, id int64) error {
	tx := r.db.WithContext(ctx).Delete(&domain.CalculationSheet{}, id)
	if tx.Error != nil {
		return translate("delete calculation sheet", entityCalculationSheet, id, tx.Error)
	}
	if tx.RowsAffected == 0 {
		return domain.NotFound(entityCalculationSheet, id)
	}
	return nil
}

type CalculationEntryRepository struct {
	db *gorm.DB
}

func NewCalculationEntryRepository(db *gorm.DB) *CalculationEntryRepository {
	return &CalculationEntryRepository{db: db}
}

func (r *CalculationEntryRepository) Create(ctx context.Context, e *domain.CalculationEntry) error {
	err := r.db.WithContext(ctx).Create(e).Error
	return translate("create calculation entry", entityCalculationEntry, e.SectionNumber, err)
}

func (r *CalculationEntryRepository) CreateBatch(ctx context.Context, entries []domain.CalculationEntry) error {
	if len(entries) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).CreateInBatches(entries, 200).Error
	return translate("create calculation entries", entityCalculationEntry, len(entries), err)
}

func (r *CalculationEntryRepository) GetByID(ctx context.Context, id int64) (*domain.CalculationEntry, error) {
	var e domain.CalculationEntry
	if err := r.db.WithContext(ctx).First(&e, id).Error; err != nil {
		return nil, translate("get calculation entry", entityCalculationEntry, id, err)
	}
	return &e, nil
}

func (r *CalculationEntryRepository) ListBySheet(ctx context.Context, sheetID int64) ([]domain.CalculationEntry, error) {
	var entries []domain.CalculationEntry
	err := r.db.WithContext(ctx).
		Where("calculation_sheet_id = ?", sheetID).
		Order("id").
		Find(&entries).Error
	if err != nil {
		return nil, translate("list calculation entries", entityCalculationEntry, "for sheet "+itoa(sheetID), err)
	}
	return entries, nil
}

func (r *CalculationEntryRepository) Save(ctx context.Context, e *domain.CalculationEntry) error {
	err := r.db.WithContext(ctx).Save(e).Error
	return translate("save calculation entry", entityCalculationEntry, e.ID, err)
}

func (r *CalculationEntryRepository) Delete(ctx context.Context, id int64) error {
	tx := r.db.WithContext(ctx).Delete(&domain.CalculationEntry{}, id)
	if tx.Error != nil {
		return translate("delete calculation entry", entityCalculationEntry, id, tx.Error)
	}
	if tx.RowsAffected == 0 {
		return domain.NotFound(entityCalculationEntry, id)
	}
	return nil
}

func (r *CalculationEntryRepository) DeleteBySheet(ctx context.Context, sheetID int64) (int64, error) {
	tx := r.db.WithContext(ctx).Where("calculation_sheet_id = ?", sheetID).Delete(&domain.CalculationEntry{})
	if tx.Error != nil {
		return 0, translate("delete calculation entries", entityCalculationEntry, "for sheet "+itoa(sheetID), tx.Error)
	}
	return tx.RowsAffected, nil
}
