package report

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boqtracker/internal/domain"
	"boqtracker/internal/modules/contractupdate"
	"boqtracker/internal/pkg/lock"
	"boqtracker/internal/pkg/logger"
	"boqtracker/internal/repository"
	"boqtracker/internal/testhelpers"
)

func createGrouped(t *testing.T, st *repository.Store, section, structure string, price, qty float64) *domain.BOQItem {
	t.Helper()
	item := testhelpers.CreateBOQItem(t, st, section, price, qty)
	item.Structure = structure
	require.NoError(t, st.BOQItems.Save(context.Background(), item))
	return item
}

func TestSummaries_ContractUpdateSumsFallBack(t *testing.T) {
	st := testhelpers.NewTestStore(t)
	svc := NewService(st)
	updates := contractupdate.NewService(st, lock.NewLocal(), logger.NewNop())
	ctx := context.Background()

	a := createGrouped(t, st, "A-100", "Tower", 10, 5)
	createGrouped(t, st, "A-200", "Tower", 20, 8)
	createGrouped(t, st, "B-100", "Podium", 1, 3)

	snap, err := updates.Create(ctx, contractupdate.CreateRequest{})
	require.NoError(t, err)
	q := 7.0
	_, err = updates.UpdateBoqItemQuantity(ctx, snap.Update.ID, a.ID, contractupdate.QuantityPatch{Quantity: &q})
	require.NoError(t, err)

	// Created after the snapshot, so it has no row in it.
	createGrouped(t, st, "A-300", "Tower", 2, 10)

	sum, err := svc.Summaries(ctx, ByStructure)
	require.NoError(t, err)
	assert.Equal(t, ByStructure, sum.GroupBy)
	require.Len(t, sum.ContractUpdates, 1)
	require.Len(t, sum.Groups, 2)

	podium, tower := sum.Groups[0], sum.Groups[1]
	assert.Equal(t, "Podium", podium.Key)
	assert.Equal(t, 1, podium.ItemCount)
	assert.Equal(t, 3.0, podium.TotalContractSum)
	assert.Equal(t, 3.0, podium.ContractUpdateSums[snap.Update.ID])

	assert.Equal(t, "Tower", tower.Key)
	assert.Equal(t, 3, tower.ItemCount)
	assert.Equal(t, 230.0, tower.TotalContractSum)
	assert.Equal(t, 70.0+160.0+20.0, tower.ContractUpdateSums[snap.Update.ID])
}

func TestSummaries_RejectsUnknownGrouping(t *testing.T) {
	svc := NewService(testhelpers.NewTestStore(t))

	_, err := svc.Summaries(context.Background(), GroupBy("floor"))
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestSheetBundle(t *testing.T) {
	st := testhelpers.NewTestStore(t)
	svc := NewService(st)
	ctx := context.Background()

	item := testhelpers.CreateBOQItem(t, st, "A-100", 10, 5)
	sheet := testhelpers.CreateConcentrationSheet(t, st, item.ID)
	testhelpers.CreateConcentrationEntry(t, st, domain.ConcentrationEntry{ConcentrationSheetID: sheet.ID, EstimatedQuantity: 1.5, QuantitySubmitted: 1})
	testhelpers.CreateConcentrationEntry(t, st, domain.ConcentrationEntry{ConcentrationSheetID: sheet.ID, EstimatedQuantity: 2, IsManual: true})

	b, err := svc.SheetBundle(ctx, sheet.ID)
	require.NoError(t, err)
	assert.Len(t, b.Entries, 2)
	assert.Equal(t, 3.5, b.Totals.Quantities.Estimated)
	assert.Equal(t, 35.0, b.Totals.TotalEstimate)
	assert.Equal(t, 10.0, b.Totals.TotalSubmitted)
	assert.Equal(t, item.ID, b.Item.ID)
	assert.False(t, b.LatestContract.FromUpdate)
	assert.Equal(t, 50.0, b.LatestContract.Sum)

	_, err = svc.SheetBundle(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestItemView(t *testing.T) {
	st := testhelpers.NewTestStore(t)
	svc := NewService(st)
	ctx := context.Background()

	item := testhelpers.CreateBOQItem(t, st, "A-100", 10, 5)
	view, err := svc.ItemView(ctx, item.ID)
	require.NoError(t, err)
	assert.Nil(t, view.ConcentrationSheetID)
	assert.Equal(t, 5.0, view.LatestContract.Quantity)

	sheet := testhelpers.CreateConcentrationSheet(t, st, item.ID)
	view, err = svc.ItemView(ctx, item.ID)
	require.NoError(t, err)
	require.NotNil(t, view.ConcentrationSheetID)
	assert.Equal(t, sheet.ID, *view.ConcentrationSheetID)
}
