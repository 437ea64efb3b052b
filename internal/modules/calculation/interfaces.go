package calculation

import (
	"context"
	"io"

	"boqtracker/internal/domain"
	"boqtracker/internal/modules/concentration"
)

// Decoder turns an uploaded document into a calculation sheet.
type Decoder interface {
	Decode(ctx context.Context, filename string, r io.Reader) (*domain.CalculationImport, error)
}

// Populator mirrors a stored calculation sheet into concentration entries.
type Populator interface {
	PopulateFromCalculationSheet(ctx context.Context, calcSheetID int64) (*concentration.PopulateResult, error)
}
