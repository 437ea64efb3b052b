package cascade

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boqtracker/internal/domain"
	"boqtracker/internal/modules/calculation"
	"boqtracker/internal/modules/concentration"
	"boqtracker/internal/testhelpers"
)

func setupRouter(t *testing.T) (*gin.Engine, *fixture) {
	t.Helper()
	f := newFixture(t)
	router, v1 := testhelpers.NewRouter()
	NewHandler(f.coord).RegisterRoutes(v1, v1)
	return router, f
}

func TestHandler_CalculationEntryEditRecomputesOwner(t *testing.T) {
	router, f := setupRouter(t)
	a := testhelpers.CreateBOQItem(t, f.st, "A-100", 10, 5)
	testhelpers.CreateConcentrationSheet(t, f.st, a.ID)
	calc, entries := testhelpers.CreateCalculationSheet(t, f.st, "CS1", "DWG1",
		domain.CalculationEntry{SectionNumber: "A-100", EstimatedQuantity: 1})
	_, err := f.sync.PopulateFromCalculationSheet(context.Background(), calc.ID)
	require.NoError(t, err)

	resp := testhelpers.PerformRequest(router, http.MethodPatch,
		fmt.Sprintf("/api/v1/calculation-entries/%d", entries[0].ID), calculation.EntryPatch{EstimatedQuantity: ptr(6.0)})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	var res CalculationEntryUpdate
	testhelpers.DecodeEnvelope(t, resp, &res)
	assert.Equal(t, 6.0, res.Entry.EstimatedQuantity)
	assert.Empty(t, res.Outcome.Warnings)
	assert.Equal(t, 60.0, testhelpers.ReloadBOQItem(t, f.st, a.ID).TotalEstimate)

	resp = testhelpers.PerformRequest(router, http.MethodDelete, fmt.Sprintf("/api/v1/calculation-sheets/%d", calc.ID), nil)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Zero(t, testhelpers.ReloadBOQItem(t, f.st, a.ID).TotalEstimate)
}

func TestHandler_ConcentrationEntryEditAndDelete(t *testing.T) {
	router, f := setupRouter(t)
	a := testhelpers.CreateBOQItem(t, f.st, "A-100", 10, 5)
	sheet := testhelpers.CreateConcentrationSheet(t, f.st, a.ID)
	entry := testhelpers.CreateConcentrationEntry(t, f.st, domain.ConcentrationEntry{
		ConcentrationSheetID: sheet.ID, SectionNumber: "A-100", IsManual: true,
	})

	resp := testhelpers.PerformRequest(router, http.MethodPatch,
		fmt.Sprintf("/api/v1/concentration-entries/%d", entry.ID), concentration.EntryPatch{InternalQuantity: ptr(2.0)})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, 20.0, testhelpers.ReloadBOQItem(t, f.st, a.ID).InternalTotal)

	resp = testhelpers.PerformRequest(router, http.MethodDelete, fmt.Sprintf("/api/v1/concentration-entries/%d", entry.ID), nil)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	var out Outcome
	testhelpers.DecodeEnvelope(t, resp, &out)
	assert.Equal(t, int64(1), out.Deleted[KindConcentrationEntry])
	assert.Zero(t, testhelpers.ReloadBOQItem(t, f.st, a.ID).InternalTotal)
}

func TestHandler_DeleteMissing(t *testing.T) {
	router, _ := setupRouter(t)

	for _, path := range []string{
		"/api/v1/boq-items/9",
		"/api/v1/concentration-sheets/9",
		"/api/v1/contract-updates/9",
		"/api/v1/calculation-entries/9",
	} {
		resp := testhelpers.PerformRequest(router, http.MethodDelete, path, nil)
		assert.Equal(t, http.StatusNotFound, resp.Code, path)
	}

	resp := testhelpers.PerformRequest(router, http.MethodDelete, "/api/v1/boq-items/x", nil)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}
