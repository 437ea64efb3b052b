// Package testhelpers provides an in-memory ledger store and fixtures for tests.
package testhelpers

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"gorm.io/gorm"

	"boqtracker/internal/database"
	"boqtracker/internal/domain"
	"boqtracker/internal/repository"
)

var dbSeq atomic.Int64

// NewTestDB opens a private in-memory sqlite database with the ledger schema.
// One connection keeps every query on the same memory database.
func NewTestDB(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, dbSeq.Add(1))
	db, err := database.Connect(dsn, database.Options{Silent: true, MaxOpenConns: 1})
	if err != nil {
		t.Fatalf("failed to open sqlite db: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// NewTestStore wraps NewTestDB in a repository.Store.
func NewTestStore(t testing.TB) *repository.Store {
	t.Helper()
	return repository.NewStore(NewTestDB(t))
}

// CreateBOQItem inserts an item with consistent totals.
func CreateBOQItem(t testing.TB, st *repository.Store, section string, price, originalQty float64) *domain.BOQItem {
	t.Helper()

	item := &domain.BOQItem{
		SectionNumber:            section,
		Description:              "Item " + section,
		Unit:                     "m3",
		Price:                    price,
		OriginalContractQuantity: originalQty,
	}
	item.RecalculateTotals()
	if err := st.BOQItems.Create(context.Background(), item); err != nil {
		t.Fatalf("failed to create boq item %s: %v", section, err)
	}
	return item
}

// CreateConcentrationSheet inserts an empty sheet for boqItemID.
func CreateConcentrationSheet(t testing.TB, st *repository.Store, boqItemID int64) *domain.ConcentrationSheet {
	t.Helper()

	sheet := &domain.ConcentrationSheet{BOQItemID: boqItemID, SheetName: fmt.Sprintf("Sheet %d", boqItemID)}
	if err := st.ConcentrationSheets.Create(context.Background(), sheet); err != nil {
		t.Fatalf("failed to create concentration sheet: %v", err)
	}
	return sheet
}

// CreateConcentrationEntry inserts e as given.
func CreateConcentrationEntry(t testing.TB, st *repository.Store, e domain.ConcentrationEntry) *domain.ConcentrationEntry {
	t.Helper()

	if err := st.ConcentrationEntries.Create(context.Background(), &e); err != nil {
		t.Fatalf("failed to create concentration entry: %v", err)
	}
	return &e
}

// CreateCalculationSheet inserts a sheet with its entries.
func CreateCalculationSheet(t testing.TB, st *repository.Store, sheetNo, drawingNo string, entries ...domain.CalculationEntry) (*domain.CalculationSheet, []domain.CalculationEntry) {
	t.Helper()

	ctx := context.Background()
	sheet := &domain.CalculationSheet{CalculationSheetNo: sheetNo, DrawingNo: drawingNo, Description: "Calc " + sheetNo}
	if err := st.CalculationSheets.Create(ctx, sheet); err != nil {
		t.Fatalf("failed to create calculation sheet: %v", err)
	}
	for i := range entries {
		entries[i].CalculationSheetID = sheet.ID
	}
	if err := st.CalculationEntries.CreateBatch(ctx, entries); err != nil {
		t.Fatalf("failed to create calculation entries: %v", err)
	}
	return sheet, entries
}

// ReloadBOQItem reads the item back from the store.
func ReloadBOQItem(t testing.TB, st *repository.Store, id int64) *domain.BOQItem {
	t.Helper()

	item, err := st.BOQItems.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("failed to reload boq item %d: %v", id, err)
	}
	return item
}
