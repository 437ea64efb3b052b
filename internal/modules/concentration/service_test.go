package concentration

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boqtracker/internal/domain"
	"boqtracker/internal/modules/aggregation"
	"boqtracker/internal/pkg/logger"
	"boqtracker/internal/repository"
	"boqtracker/internal/testhelpers"
)

func newService(t *testing.T) (*Service, *repository.Store) {
	t.Helper()
	st := testhelpers.NewTestStore(t)
	log := logger.NewNop()
	return NewService(st, aggregation.NewEngine(st, log), log), st
}

func entriesFor(t *testing.T, st *repository.Store, sheetID int64) []domain.ConcentrationEntry {
	t.Helper()
	entries, err := st.ConcentrationEntries.ListBySheet(context.Background(), sheetID)
	require.NoError(t, err)
	return entries
}

func TestEnsureSheet_CreatesOnceWithProjectInfo(t *testing.T) {
	svc, st := newService(t)
	ctx := context.Background()

	require.NoError(t, st.ProjectInfo.Save(ctx, &domain.ProjectInfo{ProjectName: "Tower B", ContractNo: "C-77"}))
	item := testhelpers.CreateBOQItem(t, st, "A-100", 10, 5)

	sheet, created, err := svc.EnsureSheet(ctx, item.ID)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, item.ID, sheet.BOQItemID)
	assert.Equal(t, "A-100 - Item A-100", sheet.SheetName)
	assert.Equal(t, "Tower B", sheet.ProjectName)
	assert.Equal(t, "C-77", sheet.ContractNo)
	assert.Empty(t, sheet.DeveloperName)

	again, created, err := svc.EnsureSheet(ctx, item.ID)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, sheet.ID, again.ID)
}

func TestEnsureSheet_MissingItem(t *testing.T) {
	svc, _ := newService(t)

	_, _, err := svc.EnsureSheet(context.Background(), 99)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEnsureAllSheets(t *testing.T) {
	svc, st := newService(t)
	a := testhelpers.CreateBOQItem(t, st, "A-100", 10, 5)
	testhelpers.CreateBOQItem(t, st, "B-200", 20, 8)
	testhelpers.CreateBOQItem(t, st, "C-300", 30, 1)
	testhelpers.CreateConcentrationSheet(t, st, a.ID)

	res, err := svc.EnsureAllSheets(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Created)
	assert.Equal(t, 1, res.Existing)

	sheets, err := svc.ListSheets(context.Background())
	require.NoError(t, err)
	assert.Len(t, sheets, 3)
}

func TestCreateManualEntry_RecomputesOwner(t *testing.T) {
	svc, st := newService(t)
	ctx := context.Background()
	item := testhelpers.CreateBOQItem(t, st, "A-100", 10, 5)
	sheet := testhelpers.CreateConcentrationSheet(t, st, item.ID)

	entry, err := svc.CreateManualEntry(ctx, sheet.ID, ManualEntryRequest{
		Description:       "site measure",
		EstimatedQuantity: 2.5,
		InternalQuantity:  1,
	})
	require.NoError(t, err)
	assert.True(t, entry.IsManual)
	assert.Equal(t, domain.Manual{}, entry.Origin())
	assert.Equal(t, "A-100", entry.SectionNumber)

	got := testhelpers.ReloadBOQItem(t, st, item.ID)
	assert.Equal(t, 2.5, got.EstimatedQuantity)
	assert.Equal(t, 25.0, got.TotalEstimate)
	assert.Equal(t, 10.0, got.InternalTotal)
}

func TestCreateManualEntry_MissingSheet(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.CreateManualEntry(context.Background(), 7, ManualEntryRequest{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestScenario_PopulateEditDelete(t *testing.T) {
	svc, st := newService(t)
	ctx := context.Background()

	item := testhelpers.CreateBOQItem(t, st, "A-100", 10, 5)
	csheet := testhelpers.CreateConcentrationSheet(t, st, item.ID)
	calc, entries := testhelpers.CreateCalculationSheet(t, st, "CS1", "DWG1",
		domain.CalculationEntry{SectionNumber: "A-100", EstimatedQuantity: 3, QuantitySubmitted: 2})

	res, err := svc.PopulateFromCalculationSheet(ctx, calc.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Created)
	assert.Equal(t, 0, res.Updated)
	assert.Equal(t, []int64{item.ID}, res.TouchedBOQItemIDs)

	mirrored := entriesFor(t, st, csheet.ID)
	require.Len(t, mirrored, 1)
	assert.False(t, mirrored[0].IsManual)
	assert.Equal(t, domain.AutoGenerated{CalculationSheetNo: "CS1", DrawingNo: "DWG1"}, mirrored[0].Origin())
	assert.Equal(t, domain.NoteAutoPopulated, mirrored[0].Notes)

	got := testhelpers.ReloadBOQItem(t, st, item.ID)
	assert.Equal(t, 3.0, got.EstimatedQuantity)
	assert.Equal(t, 30.0, got.TotalEstimate)
	assert.Equal(t, 2.0, got.QuantitySubmitted)
	assert.Equal(t, 20.0, got.TotalSubmitted)

	calcEntry := entries[0]
	calcEntry.EstimatedQuantity = 4
	require.NoError(t, st.CalculationEntries.Save(ctx, &calcEntry))

	sync, err := svc.SyncOnCalculationEntryUpdate(ctx, calcEntry.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, sync.Updated)

	mirrored = entriesFor(t, st, csheet.ID)
	require.Len(t, mirrored, 1)
	assert.Equal(t, 4.0, mirrored[0].EstimatedQuantity)
	assert.Equal(t, 40.0, testhelpers.ReloadBOQItem(t, st, item.ID).TotalEstimate)

	del, err := svc.SyncOnCalculationSheetDeletion(ctx, calc.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, del.Deleted)
	assert.Empty(t, entriesFor(t, st, csheet.ID))

	got = testhelpers.ReloadBOQItem(t, st, item.ID)
	assert.Zero(t, got.EstimatedQuantity)
	assert.Zero(t, got.TotalEstimate)
	assert.Zero(t, got.QuantitySubmitted)
	assert.Zero(t, got.TotalSubmitted)
}

func TestPopulate_ReplaceNotDuplicate(t *testing.T) {
	svc, st := newService(t)
	ctx := context.Background()

	a := testhelpers.CreateBOQItem(t, st, "A-100", 10, 5)
	b := testhelpers.CreateBOQItem(t, st, "B-200", 2, 5)
	sa := testhelpers.CreateConcentrationSheet(t, st, a.ID)
	sb := testhelpers.CreateConcentrationSheet(t, st, b.ID)
	calc, _ := testhelpers.CreateCalculationSheet(t, st, "CS1", "DWG1",
		domain.CalculationEntry{SectionNumber: "A-100", EstimatedQuantity: 3},
		domain.CalculationEntry{SectionNumber: "B-200", EstimatedQuantity: 6})

	first, err := svc.PopulateFromCalculationSheet(ctx, calc.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, first.Created)

	second, err := svc.PopulateFromCalculationSheet(ctx, calc.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Created)
	assert.Equal(t, 2, second.Updated)

	for _, id := range []int64{sa.ID, sb.ID} {
		got := entriesFor(t, st, id)
		require.Len(t, got, 1)
		assert.Equal(t, domain.NoteAutoUpdated, got[0].Notes)
	}
	assert.Equal(t, 12.0, testhelpers.ReloadBOQItem(t, st, b.ID).TotalEstimate)
}

func TestPopulate_PreservesManualEntries(t *testing.T) {
	svc, st := newService(t)
	ctx := context.Background()

	item := testhelpers.CreateBOQItem(t, st, "A-100", 10, 5)
	csheet := testhelpers.CreateConcentrationSheet(t, st, item.ID)
	manual := testhelpers.CreateConcentrationEntry(t, st, domain.ConcentrationEntry{
		ConcentrationSheetID: csheet.ID,
		SectionNumber:        "A-100",
		CalculationSheetNo:   "CS1",
		DrawingNo:            "DWG1",
		Description:          "agreed on site",
		EstimatedQuantity:    9,
		QuantitySubmitted:    8,
		IsManual:             true,
	})
	calc, _ := testhelpers.CreateCalculationSheet(t, st, "CS1", "DWG1",
		domain.CalculationEntry{SectionNumber: "A-100", EstimatedQuantity: 3, QuantitySubmitted: 2})

	res, err := svc.PopulateFromCalculationSheet(ctx, calc.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Created)
	assert.Equal(t, 0, res.Updated)
	assert.Equal(t, 1, res.Skipped)

	bulk, err := svc.PopulateFromAllCalculationSheets(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, bulk.Succeeded)
	assert.Equal(t, 1, bulk.Skipped)

	got := entriesFor(t, st, csheet.ID)
	require.Len(t, got, 1)
	assert.Equal(t, manual.ID, got[0].ID)
	assert.True(t, got[0].IsManual)
	assert.Equal(t, "agreed on site", got[0].Description)
	assert.Equal(t, 9.0, got[0].EstimatedQuantity)
	assert.Equal(t, 8.0, got[0].QuantitySubmitted)
}

func TestPopulate_StructuralFailuresWriteNothing(t *testing.T) {
	svc, st := newService(t)
	ctx := context.Background()

	item := testhelpers.CreateBOQItem(t, st, "A-100", 10, 5)
	csheet := testhelpers.CreateConcentrationSheet(t, st, item.ID)

	missing, _ := testhelpers.CreateCalculationSheet(t, st, "CS1", "DWG1",
		domain.CalculationEntry{SectionNumber: "A-100", EstimatedQuantity: 3},
		domain.CalculationEntry{SectionNumber: "Z-999", EstimatedQuantity: 1})
	_, err := svc.PopulateFromCalculationSheet(ctx, missing.ID)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, err.Error(), "Z-999")

	blank, _ := testhelpers.CreateCalculationSheet(t, st, "CS2", "DWG1",
		domain.CalculationEntry{SectionNumber: "A-100", EstimatedQuantity: 3},
		domain.CalculationEntry{SectionNumber: "  ", EstimatedQuantity: 1})
	_, err = svc.PopulateFromCalculationSheet(ctx, blank.ID)
	assert.ErrorIs(t, err, domain.ErrValidation)

	assert.Empty(t, entriesFor(t, st, csheet.ID))
	assert.Zero(t, testhelpers.ReloadBOQItem(t, st, item.ID).EstimatedQuantity)
}

func TestPopulate_SkipsItemsWithoutSheet(t *testing.T) {
	svc, st := newService(t)
	testhelpers.CreateBOQItem(t, st, "A-100", 10, 5)
	calc, _ := testhelpers.CreateCalculationSheet(t, st, "CS1", "DWG1",
		domain.CalculationEntry{SectionNumber: "A-100", EstimatedQuantity: 3})

	res, err := svc.PopulateFromCalculationSheet(context.Background(), calc.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Skipped)
	assert.Len(t, res.SkipReasons, 1)
	assert.Empty(t, res.TouchedBOQItemIDs)
}

func TestPopulateAll_PartialSuccessAndStaleReset(t *testing.T) {
	svc, st := newService(t)
	ctx := context.Background()

	a := testhelpers.CreateBOQItem(t, st, "A-100", 10, 5)
	b := testhelpers.CreateBOQItem(t, st, "B-200", 10, 5)
	sa := testhelpers.CreateConcentrationSheet(t, st, a.ID)
	sb := testhelpers.CreateConcentrationSheet(t, st, b.ID)

	// Left over from a calculation sheet that no longer exists.
	testhelpers.CreateConcentrationEntry(t, st, domain.ConcentrationEntry{
		ConcentrationSheetID: sb.ID, SectionNumber: "B-200", CalculationSheetNo: "OLD", DrawingNo: "X", EstimatedQuantity: 7,
	})
	_, err := svc.engine.RecomputeBoqTotals(ctx, b.ID)
	require.NoError(t, err)
	require.Equal(t, 70.0, testhelpers.ReloadBOQItem(t, st, b.ID).TotalEstimate)

	good, _ := testhelpers.CreateCalculationSheet(t, st, "CS1", "DWG1",
		domain.CalculationEntry{SectionNumber: "A-100", EstimatedQuantity: 3})
	bad, _ := testhelpers.CreateCalculationSheet(t, st, "CS2", "DWG2",
		domain.CalculationEntry{SectionNumber: "NOPE", EstimatedQuantity: 1})

	res, err := svc.PopulateFromAllCalculationSheets(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.ClearedEntries)
	assert.Equal(t, 1, res.Succeeded)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, 1, res.Created)
	assert.Empty(t, res.Warnings)

	require.Len(t, res.Sheets, 2)
	byID := map[int64]SheetOutcome{}
	for _, o := range res.Sheets {
		byID[o.CalculationSheetID] = o
	}
	assert.True(t, byID[good.ID].OK())
	assert.False(t, byID[bad.ID].OK())
	assert.ErrorIs(t, byID[bad.ID].Err, domain.ErrValidation)

	assert.Len(t, entriesFor(t, st, sa.ID), 1)
	assert.Empty(t, entriesFor(t, st, sb.ID))
	assert.Equal(t, 30.0, testhelpers.ReloadBOQItem(t, st, a.ID).TotalEstimate)
	assert.Zero(t, testhelpers.ReloadBOQItem(t, st, b.ID).TotalEstimate)

	again, err := svc.PopulateFromAllCalculationSheets(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, again.ClearedEntries)
	assert.Len(t, entriesFor(t, st, sa.ID), 1)
}

func TestSyncOnCalculationEntryDeletion_RemovesManualMirror(t *testing.T) {
	svc, st := newService(t)
	ctx := context.Background()

	item := testhelpers.CreateBOQItem(t, st, "A-100", 10, 5)
	csheet := testhelpers.CreateConcentrationSheet(t, st, item.ID)
	testhelpers.CreateConcentrationEntry(t, st, domain.ConcentrationEntry{
		ConcentrationSheetID: csheet.ID, SectionNumber: "A-100", CalculationSheetNo: "CS1", DrawingNo: "DWG1",
		EstimatedQuantity: 2, IsManual: true,
	})
	testhelpers.CreateConcentrationEntry(t, st, domain.ConcentrationEntry{
		ConcentrationSheetID: csheet.ID, SectionNumber: "A-100", EstimatedQuantity: 1, IsManual: true,
	})
	_, entries := testhelpers.CreateCalculationSheet(t, st, "CS1", "DWG1",
		domain.CalculationEntry{SectionNumber: "A-100", EstimatedQuantity: 3})

	res, err := svc.SyncOnCalculationEntryDeletion(ctx, entries[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Deleted)

	left := entriesFor(t, st, csheet.ID)
	require.Len(t, left, 1)
	assert.Empty(t, left[0].CalculationSheetNo)
	assert.Equal(t, 1.0, testhelpers.ReloadBOQItem(t, st, item.ID).EstimatedQuantity)
}

func TestSync_NoMatchIsNoop(t *testing.T) {
	svc, st := newService(t)
	ctx := context.Background()
	calc, entries := testhelpers.CreateCalculationSheet(t, st, "CS1", "DWG1",
		domain.CalculationEntry{SectionNumber: "A-100", EstimatedQuantity: 3})

	up, err := svc.SyncOnCalculationEntryUpdate(ctx, entries[0].ID)
	require.NoError(t, err)
	assert.Zero(t, up.Matched)
	assert.Empty(t, up.TouchedBOQItemIDs)

	del, err := svc.SyncOnCalculationSheetDeletion(ctx, calc.ID)
	require.NoError(t, err)
	assert.Zero(t, del.Deleted)

	_, err = svc.SyncOnCalculationEntryUpdate(ctx, 404)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEntryPatch_Apply(t *testing.T) {
	qty := 4.0
	note := "checked"
	e := &domain.ConcentrationEntry{EstimatedQuantity: 1, QuantitySubmitted: 2, Notes: "x"}

	EntryPatch{EstimatedQuantity: &qty, Notes: &note}.Apply(e)
	assert.Equal(t, 4.0, e.EstimatedQuantity)
	assert.Equal(t, 2.0, e.QuantitySubmitted)
	assert.Equal(t, "checked", e.Notes)
}
