// Package excelimport decodes calculation sheets from .xlsx workbooks.
//
// The first worksheet holds label/value header rows followed by a table:
//
//	Calculation Sheet No | CS-12
//	Drawing No           | DWG-3
//	Description          | Footings
//	Section Number       | Estimated Quantity | Quantity Submitted
//	A-100                | 3                  | 2
//
// Header labels are matched case-insensitively in column A. Blank rows are
// ignored and an empty quantity cell reads as 0.
package excelimport

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"boqtracker/internal/domain"
)

const (
	labelSheetNo     = "calculation sheet no"
	labelDrawingNo   = "drawing no"
	labelDescription = "description"
	labelSection     = "section number"
)

type Decoder struct{}

func NewDecoder() *Decoder { return &Decoder{} }

func (d *Decoder) Decode(ctx context.Context, filename string, r io.Reader) (*domain.CalculationImport, error) {
	if ext := strings.ToLower(filepath.Ext(filename)); ext != ".xlsx" {
		return nil, fmt.Errorf("unsupported file type %q: only .xlsx files are allowed", ext)
	}

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	out := &domain.CalculationImport{}
	inTable := false
	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if isBlank(row) {
			continue
		}
		rowNo := i + 1
		first := strings.TrimSpace(row[0])

		if !inTable {
			switch normalize(first) {
			case labelSheetNo:
				out.CalculationSheetNo = cell(row, 1)
			case labelDrawingNo:
				out.DrawingNo = cell(row, 1)
			case labelDescription:
				out.Description = cell(row, 1)
			case labelSection:
				inTable = true
			default:
				return nil, fmt.Errorf("row %d: unexpected header label %q", rowNo, first)
			}
			continue
		}

		if first == "" {
			return nil, fmt.Errorf("row %d: section number is empty", rowNo)
		}
		est, err := quantity(row, 1)
		if err != nil {
			return nil, fmt.Errorf("row %d: estimated quantity: %w", rowNo, err)
		}
		sub, err := quantity(row, 2)
		if err != nil {
			return nil, fmt.Errorf("row %d: quantity submitted: %w", rowNo, err)
		}
		out.Entries = append(out.Entries, domain.CalculationEntry{
			SectionNumber:     first,
			EstimatedQuantity: est,
			QuantitySubmitted: sub,
		})
	}

	if out.CalculationSheetNo == "" || out.DrawingNo == "" {
		return nil, fmt.Errorf("missing %q or %q header", "Calculation Sheet No", "Drawing No")
	}
	if !inTable {
		return nil, fmt.Errorf("missing %q table header", "Section Number")
	}
	return out, nil
}

func normalize(s string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), ":")
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func quantity(row []string, i int) (float64, error) {
	v := strings.ReplaceAll(cell(row, i), ",", "")
	if v == "" {
		return 0, nil
	}
	return strconv.ParseFloat(v, 64)
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
