package domain

import "time"

// ConcentrationSheet is the per-item ledger. Project fields are copies of
// ProjectInfo kept in sync on every ProjectInfo update.
type ConcentrationSheet struct {
	ID                     int64     `json:"id" gorm:"primaryKey"`
	BOQItemID              int64     `json:"boq_item_id" gorm:"not null;uniqueIndex:idx_concentration_sheets_boq_item"`
	SheetName              string    `json:"sheet_name" gorm:"type:varchar(255)"`
	ProjectName            string    `json:"project_name" gorm:"type:varchar(255)"`
	ContractorInChargeName string    `json:"contractor_in_charge_name" gorm:"type:varchar(255)"`
	ContractNo             string    `json:"contract_no" gorm:"type:varchar(128)"`
	DeveloperName          string    `json:"developer_name" gorm:"type:varchar(255)"`
	CreatedAt              time.Time `json:"created_at"`
	UpdatedAt              time.Time `json:"updated_at"`
}

func (ConcentrationSheet) TableName() string { return "concentration_sheets" }

// SourceKey identifies the calculation source an entry mirrors.
type SourceKey struct {
	SectionNumber      string `json:"section_number"`
	CalculationSheetNo string `json:"calculation_sheet_no"`
	DrawingNo          string `json:"drawing_no"`
}

// ConcentrationEntry is one quantity line in a concentration sheet.
type ConcentrationEntry struct {
	ID                   int64  `json:"id" gorm:"primaryKey"`
	ConcentrationSheetID int64  `json:"concentration_sheet_id" gorm:"not null;index"`
	SectionNumber        string `json:"section_number" gorm:"type:varchar(64);index:idx_concentration_entries_source,priority:3"`
	CalculationSheetNo   string `json:"calculation_sheet_no" gorm:"type:varchar(128);index:idx_concentration_entries_source,priority:1"`
	DrawingNo            string `json:"drawing_no" gorm:"type:varchar(128);index:idx_concentration_entries_source,priority:2"`
	Description          string `json:"description" gorm:"type:text"`

	EstimatedQuantity         float64 `json:"estimated_quantity" gorm:"not null;default:0"`
	QuantitySubmitted         float64 `json:"quantity_submitted" gorm:"not null;default:0"`
	InternalQuantity          float64 `json:"internal_quantity" gorm:"not null;default:0"`
	ApprovedByManagerQuantity float64 `json:"approved_by_manager_quantity" gorm:"not null;default:0"`

	Notes    string `json:"notes" gorm:"type:text"`
	IsManual bool   `json:"is_manual" gorm:"not null;default:false;index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ConcentrationEntry) TableName() string { return "concentration_entries" }

// Key returns the triple the sync engine matches on.
func (e *ConcentrationEntry) Key() SourceKey {
	return SourceKey{
		SectionNumber:      e.SectionNumber,
		CalculationSheetNo: e.CalculationSheetNo,
		DrawingNo:          e.DrawingNo,
	}
}

// Origin reports who owns the entry's quantities.
func (e *ConcentrationEntry) Origin() EntryOrigin {
	if e.IsManual {
		return Manual{}
	}
	return AutoGenerated{CalculationSheetNo: e.CalculationSheetNo, DrawingNo: e.DrawingNo}
}

// SetOrigin stamps the origin onto the persisted columns.
func (e *ConcentrationEntry) SetOrigin(o EntryOrigin) {
	switch v := o.(type) {
	case Manual:
		e.IsManual = true
	case AutoGenerated:
		e.IsManual = false
		e.CalculationSheetNo = v.CalculationSheetNo
		e.DrawingNo = v.DrawingNo
	}
}

// EntryOrigin is either Manual or AutoGenerated. Only AutoGenerated entries
// may be overwritten or cleared by calculation-sheet synchronization.
type EntryOrigin interface {
	entryOrigin()
}

// Manual marks an entry authored by a user.
type Manual struct{}

// AutoGenerated marks an entry created by sync from a calculation sheet.
type AutoGenerated struct {
	CalculationSheetNo string
	DrawingNo          string
}

func (Manual) entryOrigin()        {}
func (AutoGenerated) entryOrigin() {}

// Replaceable reports whether sync may overwrite an entry with this origin.
func Replaceable(o EntryOrigin) bool {
	_, ok := o.(AutoGenerated)
	return ok
}

// Notes tags written by sync.
const (
	NoteAutoPopulated = "Auto-populated from calculation sheet"
	NoteAutoUpdated   = "Auto-updated from calculation sheet"
)
