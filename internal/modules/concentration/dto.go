package concentration

import (
	"strings"

	"boqtracker/internal/domain"
)

type ManualEntryRequest struct {
	SectionNumber             string  `json:"section_number" validate:"max=64"`
	CalculationSheetNo        string  `json:"calculation_sheet_no" validate:"max=128"`
	DrawingNo                 string  `json:"drawing_no" validate:"max=128"`
	Description               string  `json:"description"`
	EstimatedQuantity         float64 `json:"estimated_quantity"`
	QuantitySubmitted         float64 `json:"quantity_submitted"`
	InternalQuantity          float64 `json:"internal_quantity"`
	ApprovedByManagerQuantity float64 `json:"approved_by_manager_quantity"`
	Notes                     string  `json:"notes"`
}

func (r ManualEntryRequest) toEntry(sheetID int64, defaultSection string) *domain.ConcentrationEntry {
	section := strings.TrimSpace(r.SectionNumber)
	if section == "" {
		section = defaultSection
	}
	e := &domain.ConcentrationEntry{
		ConcentrationSheetID:      sheetID,
		SectionNumber:             section,
		CalculationSheetNo:        strings.TrimSpace(r.CalculationSheetNo),
		DrawingNo:                 strings.TrimSpace(r.DrawingNo),
		Description:               r.Description,
		EstimatedQuantity:         r.EstimatedQuantity,
		QuantitySubmitted:         r.QuantitySubmitted,
		InternalQuantity:          r.InternalQuantity,
		ApprovedByManagerQuantity: r.ApprovedByManagerQuantity,
		Notes:                     r.Notes,
	}
	e.SetOrigin(domain.Manual{})
	return e
}

// EntryPatch is a partial edit of a concentration entry. Nil fields are
// left as they are.
type EntryPatch struct {
	Description               *string  `json:"description"`
	EstimatedQuantity         *float64 `json:"estimated_quantity"`
	QuantitySubmitted         *float64 `json:"quantity_submitted"`
	InternalQuantity          *float64 `json:"internal_quantity"`
	ApprovedByManagerQuantity *float64 `json:"approved_by_manager_quantity"`
	Notes                     *string  `json:"notes"`
}

// Apply writes the patch onto e.
func (p EntryPatch) Apply(e *domain.ConcentrationEntry) {
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.EstimatedQuantity != nil {
		e.EstimatedQuantity = *p.EstimatedQuantity
	}
	if p.QuantitySubmitted != nil {
		e.QuantitySubmitted = *p.QuantitySubmitted
	}
	if p.InternalQuantity != nil {
		e.InternalQuantity = *p.InternalQuantity
	}
	if p.ApprovedByManagerQuantity != nil {
		e.ApprovedByManagerQuantity = *p.ApprovedByManagerQuantity
	}
	if p.Notes != nil {
		e.Notes = *p.Notes
	}
}
