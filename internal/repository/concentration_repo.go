package repository

import (
	"context"

	"gorm.io/gorm"

	"boqtracker/internal/domain"
)

const (
	entityConcentrationSheet = "concentration sheet"
	entityConcentrationEntry = "concentration entry"
)

type ConcentrationSheetRepository struct {
	db *gorm.DB
}

func NewConcentrationSheetRepository(db *gorm.DB) *ConcentrationSheetRepository {
	return &ConcentrationSheetRepository{db: db}
}

func (r *ConcentrationSheetRepository) Create(ctx context.Context, sheet *domain.ConcentrationSheet) error {
	err := r.db.WithContext(ctx).Create(sheet).Error
	return translate("create concentration sheet", entityConcentrationSheet, sheet.BOQItemID, err)
}

func (r *ConcentrationSheetRepository) GetByID(ctx context.Context, id int64) (*domain.ConcentrationSheet, error) {
	var sheet domain.ConcentrationSheet
	if err := r.db.WithContext(ctx).First(&sheet, id).Error; err != nil {
		return nil, translate("get concentration sheet", entityConcentrationSheet, id, err)
	}
	return &sheet, nil
}

func (r *ConcentrationSheetRepository) GetByBOQItemID(ctx context.Context, boqItemID int64) (*domain.ConcentrationSheet, error) {
	var sheet domain.ConcentrationSheet
	err := r.db.WithContext(ctx).Where("boq_item_id = ?", boqItemID).First(&sheet).Error
	if err != nil {
		return nil, translate("get concentration sheet by item", entityConcentrationSheet, "for boq item "+itoa(boqItemID), err)
	}
	return &sheet, nil
}

// BOQItemIDs maps sheet ids to their owning item ids.
func (r *ConcentrationSheetRepository) BOQItemIDs(ctx context.Context, sheetIDs []int64) (map[int64]int64, error) {
	out := make(map[int64]int64, len(sheetIDs))
	if len(sheetIDs) == 0 {
		return out, nil
	}
	var sheets []domain.ConcentrationSheet
	err := r.db.WithContext(ctx).
		Select("id", "boq_item_id").
		Where("id IN ?", sheetIDs).
		Find(&sheets).Error
	if err != nil {
		return nil, translate("resolve concentration sheet owners", entityConcentrationSheet, sheetIDs, err)
	}
	for _, s := range sheets {
		out[s.ID] = s.BOQItemID
	}
	return out, nil
}

func (r *ConcentrationSheetRepository) List(ctx context.Context) ([]domain.ConcentrationSheet, error) {
	var sheets []domain.ConcentrationSheet
	if err := r.db.WithContext(ctx).Order("id").Find(&sheets).Error; err != nil {
		return nil, translate("list concentration sheets", entityConcentrationSheet, "*", err)
	}
	return sheets, nil
}

func (r *ConcentrationSheetRepository) Save(ctx context.Context, sheet *domain.ConcentrationSheet) error {
	err := r.db.WithContext(ctx).Save(sheet).Error
	return translate("save concentration sheet", entityConcentrationSheet, sheet.ID, err)
}

// ApplyProjectInfo overwrites the denormalized project fields on every
// sheet, skipping empty values.
func (r *ConcentrationSheetRepository) ApplyProjectInfo(ctx context.Context, info *domain.ProjectInfo) (int64, error) {
	updates := map[string]interface{}{}
	if info.ProjectName != "" {
		updates["project_name"] = info.ProjectName
	}
	if info.ContractorInChargeName != "" {
		updates["contractor_in_charge_name"] = info.ContractorInChargeName
	}
	if info.ContractNo != "" {
		updates["contract_no"] = info.ContractNo
	}
	if info.DeveloperName != "" {
		updates["developer_name"] = info.DeveloperName
	}
	if len(updates) == 0 {
		return 0, nil
	}

	tx := r.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Model(&domain.ConcentrationSheet{}).
		Updates(updates)
	if tx.Error != nil {
		return 0, translate("push project info", entityConcentrationSheet, "*", tx.Error)
	}
	return tx.RowsAffected, nil
}

func (r *ConcentrationSheetRepository) Delete(ctx context.Context, id int64) error {
	tx := r.db.WithContext(ctx).Delete(&domain.ConcentrationSheet{}, id)
	if tx.Error != nil {
		return translate("delete concentration sheet", entityConcentrationSheet, id, tx.Error)
	}
	if tx.RowsAffected == 0 {
		return domain.NotFound(entityConcentrationSheet, id)
	}
	return nil
}

type ConcentrationEntryRepository struct {
	db *gorm.DB
}

func NewConcentrationEntryRepository(db *gorm.DB) *ConcentrationEntryRepository {
	return &ConcentrationEntryRepository{db: db}
}

func (r *ConcentrationEntryRepository) Create(ctx context.Context, e *domain.ConcentrationEntry) error {
	err := r.db.WithContext(ctx).Create(e).Error
	return translate("create concentration entry", entityConcentrationEntry, e.Key(), err)
}

func (r *ConcentrationEntryRepository) GetByID(ctx context.Context, id int64) (*domain.ConcentrationEntry, error) {
	var e domain.ConcentrationEntry
	if err := r.db.WithContext(ctx).First(&e, id).Error; err != nil {
		return nil, translate("get concentration entry", entityConcentrationEntry, id, err)
	}
	return &e, nil
}

func (r *ConcentrationEntryRepository) ListBySheet(ctx context.Context, sheetID int64) ([]domain.ConcentrationEntry, error) {
	var entries []domain.ConcentrationEntry
	err := r.db.WithContext(ctx).
		Where("concentration_sheet_id = ?", sheetID).
		Order("id").
		Find(&entries).Error
	if err != nil {
		return nil, translate("list concentration entries", entityConcentrationEntry, "for sheet "+itoa(sheetID), err)
	}
	return entries, nil
}

// FindBySourceKey returns the first entry anywhere matching the full key.
func (r *ConcentrationEntryRepository) FindBySourceKey(ctx context.Context, key domain.SourceKey) (*domain.ConcentrationEntry, error) {
	var e domain.ConcentrationEntry
	err := r.db.WithContext(ctx).
		Where("calculation_sheet_no = ? AND drawing_no = ? AND section_number = ?",
			key.CalculationSheetNo, key.DrawingNo, key.SectionNumber).
		Order("id").
		First(&e).Error
	if err != nil {
		return nil, translate("find concentration entry", entityConcentrationEntry, key, err)
	}
	return &e, nil
}

// FindInSheetBySourceKey is FindBySourceKey restricted to one sheet.
func (r *ConcentrationEntryRepository) FindInSheetBySourceKey(ctx context.Context, sheetID int64, key domain.SourceKey) (*domain.ConcentrationEntry, error) {
	var e domain.ConcentrationEntry
	err := r.db.WithContext(ctx).
		Where("concentration_sheet_id = ? AND calculation_sheet_no = ? AND drawing_no = ? AND section_number = ?",
			sheetID, key.CalculationSheetNo, key.DrawingNo, key.SectionNumber).
		Order("id").
		First(&e).Error
	if err != nil {
		return nil, translate("find concentration entry in sheet", entityConcentrationEntry, key, err)
	}
	return &e, nil
}

// ListBySource returns every entry referencing a calculation sheet,
// whatever its section number.
func (r *ConcentrationEntryRepository) ListBySource(ctx context.Context, calculationSheetNo, drawingNo string) ([]domain.ConcentrationEntry, error) {
	var entries []domain.ConcentrationEntry
	err := r.db.WithContext(ctx).
		Where("calculation_sheet_no = ? AND drawing_no = ?", calculationSheetNo, drawingNo).
		Order("id").
		Find(&entries).Error
	if err != nil {
		return nil, translate("list concentration entries by source", entityConcentrationEntry, calculationSheetNo+"/"+drawingNo, err)
	}
	return entries, nil
}

// AutoGeneratedSheetIDs lists the distinct sheets holding auto entries.
func (r *ConcentrationEntryRepository) AutoGeneratedSheetIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&domain.ConcentrationEntry{}).
		Where("is_manual = ?", false).
		Distinct().
		Pluck("concentration_sheet_id", &ids).Error
	if err != nil {
		return nil, translate("list auto-generated sheets", entityConcentrationEntry, "*", err)
	}
	return ids, nil
}

// DeleteAutoGenerated removes every auto entry system-wide.
func (r *ConcentrationEntryRepository) DeleteAutoGenerated(ctx context.Context) (int64, error) {
	tx := r.db.WithContext(ctx).Where("is_manual = ?", false).Delete(&domain.ConcentrationEntry{})
	if tx.Error != nil {
		return 0, translate("delete auto-generated entries", entityConcentrationEntry, "*", tx.Error)
	}
	return tx.RowsAffected, nil
}

func (r *ConcentrationEntryRepository) Save(ctx context.Context, e *domain.ConcentrationEntry) error {
	err := r.db.WithContext(ctx).Save(e).Error
	return translate("save concentration entry", entityConcentrationEntry, e.ID, err)
}

func (r *ConcentrationEntryRepository) Delete(ctx context.Context, id int64) error {
	tx := r.db.WithContext(ctx).Delete(&domain.ConcentrationEntry{}, id)
	if tx.Error != nil {
		return translate("delete concentration entry", entityConcentrationEntry, id, tx.Error)
	}
	if tx.RowsAffected == 0 {
		return domain.NotFound(entityConcentrationEntry, id)
	}
	return nil
}

func (r *ConcentrationEntryRepository) DeleteByIDs(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	tx := r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&domain.ConcentrationEntry{})
	if tx.Error != nil {
		return 0, translate("delete concentration entries", entityConcentrationEntry, ids, tx.Error)
	}
	return tx.RowsAffected, nil
}

func (r *ConcentrationEntryRepository) DeleteBySheet(ctx context.Context, sheetID int64) (int64, error) {
	tx := r.db.WithContext(ctx).Where("concentration_sheet_id = ?", sheetID).Delete(&domain.ConcentrationEntry{})
	if tx.Error != nil {
		return 0, translate("delete sheet entries", entityConcentrationEntry, "for sheet "+itoa(sheetID), tx.Error)
	}
	return tx.RowsAffected, nil
}

func (r *ConcentrationEntryRepository) CountBySheet(ctx context.Context, sheetID int64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&domain.ConcentrationEntry{}).
		Where("concentration_sheet_id = ?", sheetID).
		Count(&n).Error
	if err != nil {
		return 0, translate("count sheet entries", entityConcentrationEntry, "for sheet "+itoa(sheetID), err)
	}
	return n, nil
}
