package calculation

import (
	"io"
	"strings"

	"boqtracker/internal/domain"
	"boqtracker/internal/modules/concentration"
)

type EntryRequest struct {
	SectionNumber     string  `json:"section_number" validate:"required,max=64"`
	EstimatedQuantity float64 `json:"estimated_quantity"`
	QuantitySubmitted float64 `json:"quantity_submitted"`
}

type CreateSheetRequest struct {
	CalculationSheetNo string         `json:"calculation_sheet_no" validate:"required,max=128"`
	DrawingNo          string         `json:"drawing_no" validate:"required,max=128"`
	Description        string         `json:"description"`
	Comment            string         `json:"comment"`
	Entries            []EntryRequest `json:"entries" validate:"dive"`
}

// SheetPatch edits the user-editable sheet fields. Nil fields are kept.
type SheetPatch struct {
	Description *string `json:"description"`
	Comment     *string `json:"comment"`
}

// EntryPatch is a partial edit of a calculation entry.
type EntryPatch struct {
	SectionNumber     *string  `json:"section_number" validate:"omitempty,max=64"`
	EstimatedQuantity *float64 `json:"estimated_quantity"`
	QuantitySubmitted *float64 `json:"quantity_submitted"`
}

// Apply writes the patch onto e. A section number that trims to blank is
// rejected.
func (p EntryPatch) Apply(e *domain.CalculationEntry) error {
	if p.SectionNumber != nil {
		section := strings.TrimSpace(*p.SectionNumber)
		if section == "" {
			return domain.Invalid("calculation entry", e.ID, "blank section number")
		}
		e.SectionNumber = section
	}
	if p.EstimatedQuantity != nil {
		e.EstimatedQuantity = *p.EstimatedQuantity
	}
	if p.QuantitySubmitted != nil {
		e.QuantitySubmitted = *p.QuantitySubmitted
	}
	return nil
}

// SheetWithEntries is a calculation sheet with its entries.
type SheetWithEntries struct {
	Sheet   domain.CalculationSheet   `json:"sheet"`
	Entries []domain.CalculationEntry `json:"entries"`
}

type ImportOptions struct {
	AutoPopulate bool
}

// ImportResult reports one file. Population is set only when requested
// and it succeeded; PopulateError keeps the sheet but reports the failure.
type ImportResult struct {
	File          string                        `json:"file"`
	Sheet         *SheetWithEntries             `json:"sheet,omitempty"`
	Population    *concentration.PopulateResult `json:"population,omitempty"`
	PopulateError string                        `json:"populate_error,omitempty"`
}

// ImportFile is one upload in a batch.
type ImportFile struct {
	Name   string
	Reader io.Reader
}

type FileOutcome struct {
	File   string        `json:"file"`
	Result *ImportResult `json:"result,omitempty"`
	Error  string        `json:"error,omitempty"`
	Err    error         `json:"-"`
}

type BatchImportResult struct {
	Files     []FileOutcome `json:"files"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
}
