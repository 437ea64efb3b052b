package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boqtracker/internal/domain"
	"boqtracker/internal/repository"
	"boqtracker/internal/testhelpers"
)

func TestBOQItemRepository_DuplicateSectionNumber(t *testing.T) {
	st := testhelpers.NewTestStore(t)
	testhelpers.CreateBOQItem(t, st, "A-100", 10, 5)

	err := st.BOQItems.Create(context.Background(), &domain.BOQItem{SectionNumber: "A-100"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestBOQItemRepository_NotFound(t *testing.T) {
	st := testhelpers.NewTestStore(t)
	ctx := context.Background()

	_, err := st.BOQItems.GetByID(ctx, 404)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = st.BOQItems.GetBySectionNumber(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.ErrorIs(t, st.BOQItems.Delete(ctx, 404), domain.ErrNotFound)
}

func TestBOQItemRepository_ListFilters(t *testing.T) {
	st := testhelpers.NewTestStore(t)
	ctx := context.Background()

	a := testhelpers.CreateBOQItem(t, st, "A-100", 10, 5)
	a.Structure = "Bridge"
	require.NoError(t, st.BOQItems.Save(ctx, a))
	testhelpers.CreateBOQItem(t, st, "B-200", 10, 5)

	items, err := st.BOQItems.List(ctx, repository.BOQItemFilters{Structure: "Bridge"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "A-100", items[0].SectionNumber)

	items, err = st.BOQItems.List(ctx, repository.BOQItemFilters{Search: "B-2"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "B-200", items[0].SectionNumber)
}

func TestTransactionRollsBack(t *testing.T) {
	st := testhelpers.NewTestStore(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := st.Transaction(ctx, func(tx *repository.Store) error {
		if err := tx.BOQItems.Create(ctx, &domain.BOQItem{SectionNumber: "A-100"}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = st.BOQItems.GetBySectionNumber(ctx, "A-100")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestConcentrationEntryRepository_SourceQueries(t *testing.T) {
	st := testhelpers.NewTestStore(t)
	ctx := context.Background()

	item := testhelpers.CreateBOQItem(t, st, "A-100", 10, 5)
	sheet := testhelpers.CreateConcentrationSheet(t, st, item.ID)

	auto := testhelpers.CreateConcentrationEntry(t, st, domain.ConcentrationEntry{
		ConcentrationSheetID: sheet.ID, SectionNumber: "A-100", CalculationSheetNo: "CS1", DrawingNo: "DWG1", EstimatedQuantity: 3,
	})
	testhelpers.CreateConcentrationEntry(t, st, domain.ConcentrationEntry{
		ConcentrationSheetID: sheet.ID, SectionNumber: "A-101", CalculationSheetNo: "CS1", DrawingNo: "DWG1", IsManual: true,
	})
	testhelpers.CreateConcentrationEntry(t, st, domain.ConcentrationEntry{
		ConcentrationSheetID: sheet.ID, SectionNumber: "A-100", CalculationSheetNo: "CS2", DrawingNo: "DWG1",
	})

	found, err := st.ConcentrationEntries.FindBySourceKey(ctx, domain.SourceKey{SectionNumber: "A-100", CalculationSheetNo: "CS1", DrawingNo: "DWG1"})
	require.NoError(t, err)
	assert.Equal(t, auto.ID, found.ID)

	_, err = st.ConcentrationEntries.FindInSheetBySourceKey(ctx, sheet.ID+1, auto.Key())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	bySource, err := st.ConcentrationEntries.ListBySource(ctx, "CS1", "DWG1")
	require.NoError(t, err)
	assert.Len(t, bySource, 2)

	sheetIDs, err := st.ConcentrationEntries.AutoGeneratedSheetIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{sheet.ID}, sheetIDs)

	n, err := st.ConcentrationEntries.DeleteAutoGenerated(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	left, err := st.ConcentrationEntries.ListBySheet(ctx, sheet.ID)
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.True(t, left[0].IsManual)
}

func TestConcentrationSheetRepository_ApplyProjectInfo(t *testing.T) {
	st := testhelpers.NewTestStore(t)
	ctx := context.Background()

	a := testhelpers.CreateBOQItem(t, st, "A-100", 10, 5)
	b := testhelpers.CreateBOQItem(t, st, "B-200", 10, 5)
	s1 := testhelpers.CreateConcentrationSheet(t, st, a.ID)
	testhelpers.CreateConcentrationSheet(t, st, b.ID)

	s1.ContractNo = "C-OLD"
	require.NoError(t, st.ConcentrationSheets.Save(ctx, s1))

	n, err := st.ConcentrationSheets.ApplyProjectInfo(ctx, &domain.ProjectInfo{ProjectName: "Tower"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	got, err := st.ConcentrationSheets.GetByID(ctx, s1.ID)
	require.NoError(t, err)
	assert.Equal(t, "Tower", got.ProjectName)
	assert.Equal(t, "C-OLD", got.ContractNo)

	n, err = st.ConcentrationSheets.ApplyProjectInfo(ctx, &domain.ProjectInfo{})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestQuantityUpdateRepository_LatestForItems(t *testing.T) {
	st := testhelpers.NewTestStore(t)
	ctx := context.Background()

	a := testhelpers.CreateBOQItem(t, st, "A-100", 10, 5)
	b := testhelpers.CreateBOQItem(t, st, "B-200", 20, 8)
	c := testhelpers.CreateBOQItem(t, st, "C-300", 1, 1)

	u1 := &domain.ContractQuantityUpdate{UpdateIndex: 1, Name: domain.ContractUpdateName(1)}
	u2 := &domain.ContractQuantityUpdate{UpdateIndex: 2, Name: domain.ContractUpdateName(2)}
	require.NoError(t, st.ContractUpdates.Create(ctx, u1))
	require.NoError(t, st.ContractUpdates.Create(ctx, u2))

	require.NoError(t, st.QuantityUpdates.CreateBatch(ctx, []domain.BOQItemQuantityUpdate{
		{BOQItemID: a.ID, ContractUpdateID: u1.ID, UpdatedContractQuantity: 5, UpdatedContractSum: 50},
		{BOQItemID: b.ID, ContractUpdateID: u1.ID, UpdatedContractQuantity: 8, UpdatedContractSum: 160},
		{BOQItemID: a.ID, ContractUpdateID: u2.ID, UpdatedContractQuantity: 6, UpdatedContractSum: 60},
	}))

	latest, err := st.QuantityUpdates.LatestForItems(ctx, []int64{a.ID, b.ID, c.ID})
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, 2, latest[a.ID].UpdateIndex)
	assert.Equal(t, 6.0, latest[a.ID].UpdatedContractQuantity)
	assert.Equal(t, 1, latest[b.ID].UpdateIndex)
	_, ok := latest[c.ID]
	assert.False(t, ok)

	max, err := st.ContractUpdates.MaxIndex(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, max)

	err = st.QuantityUpdates.CreateBatch(ctx, []domain.BOQItemQuantityUpdate{{BOQItemID: a.ID, ContractUpdateID: u2.ID}})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestContractUpdateRepository_MaxIndexEmpty(t *testing.T) {
	st := testhelpers.NewTestStore(t)
	max, err := st.ContractUpdates.MaxIndex(context.Background())
	require.NoError(t, err)
	assert.Zero(t, max)
}

func TestProjectInfoRepository_Singleton(t *testing.T) {
	st := testhelpers.NewTestStore(t)
	ctx := context.Background()

	_, err := st.ProjectInfo.Get(ctx)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	info := &domain.ProjectInfo{ProjectName: "Tower"}
	require.NoError(t, st.ProjectInfo.Save(ctx, info))
	info.ContractNo = "C-1"
	require.NoError(t, st.ProjectInfo.Save(ctx, info))

	got, err := st.ProjectInfo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, info.ID, got.ID)
	assert.Equal(t, "C-1", got.ContractNo)
}
