package domain

import "time"

// CalculationSheet is engineering source data, unique per
// (CalculationSheetNo, DrawingNo).
type CalculationSheet struct {
	ID                 int64     `json:"id" gorm:"primaryKey"`
	CalculationSheetNo string    `json:"calculation_sheet_no" gorm:"type:varchar(128);not null;uniqueIndex:idx_calculation_sheets_key,priority:1"`
	DrawingNo          string    `json:"drawing_no" gorm:"type:varchar(128);not null;uniqueIndex:idx_calculation_sheets_key,priority:2"`
	Description        string    `json:"description" gorm:"type:text"`
	Comment            string    `json:"comment" gorm:"type:text"`
	ImportedAt         time.Time `json:"imported_at"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func (CalculationSheet) TableName() string { return "calculation_sheets" }

type CalculationEntry struct {
	ID                 int64     `json:"id" gorm:"primaryKey"`
	CalculationSheetID int64     `json:"calculation_sheet_id" gorm:"not null;index"`
	SectionNumber      string    `json:"section_number" gorm:"type:varchar(64);not null;index"`
	EstimatedQuantity  float64   `json:"estimated_quantity" gorm:"not null;default:0"`
	QuantitySubmitted  float64   `json:"quantity_submitted" gorm:"not null;default:0"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func (CalculationEntry) TableName() string { return "calculation_entries" }

// SourceKey builds the concentration matching key for this entry on sheet.
func (e *CalculationEntry) SourceKey(sheet *CalculationSheet) SourceKey {
	return SourceKey{
		SectionNumber:      e.SectionNumber,
		CalculationSheetNo: sheet.CalculationSheetNo,
		DrawingNo:          sheet.DrawingNo,
	}
}

// CalculationImport is what a document decoder hands the core: one sheet
// header plus its decoded entries.
type CalculationImport struct {
	CalculationSheetNo string
	DrawingNo          string
	Description        string
	Entries            []CalculationEntry
}
