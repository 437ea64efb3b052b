package concentration

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"boqtracker/internal/pkg/response"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts sheet reads, manual entries and the population
// triggers. The bulk rebuild goes on admin. Entry edits and deletes are
// mounted by the cascade handler.
func (h *Handler) RegisterRoutes(public, protected, admin *gin.RouterGroup) {
	if public != nil {
		public.GET("/concentration-sheets", h.ListSheets)
		public.GET("/concentration-sheets/:id", h.GetSheet)
		public.GET("/concentration-sheets/:id/entries", h.ListEntries)
		public.GET("/boq-items/:id/concentration-sheet", h.GetSheetByBOQItem)
	}
	if protected != nil {
		protected.POST("/boq-items/:id/concentration-sheet", h.EnsureSheet)
		protected.POST("/concentration-sheets/ensure-all", h.EnsureAllSheets)
		protected.POST("/concentration-sheets/:id/entries", h.CreateManualEntry)
		protected.POST("/calculation-sheets/:id/populate", h.Populate)
	}
	if admin != nil {
		admin.POST("/calculation-sheets/populate-all", h.PopulateAll)
	}
}

// @Router /concentration-sheets [GET]
func (h *Handler) ListSheets(c *gin.Context) {
	sheets, err := h.svc.ListSheets(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, sheets)
}

// @Router /concentration-sheets/:id [GET]
func (h *Handler) GetSheet(c *gin.Context) {
	id, ok := response.ParamID(c, "id")
	if !ok {
		return
	}
	sheet, err := h.svc.GetSheet(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, sheet)
}

// @Router /concentration-sheets/:id/entries [GET]
func (h *Handler) ListEntries(c *gin.Context) {
	id, ok := response.ParamID(c, "id")
	if !ok {
		return
	}
	entries, err := h.svc.ListEntries(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, entries)
}

// @Router /boq-items/:id/concentration-sheet [GET]
func (h *Handler) GetSheetByBOQItem(c *gin.Context) {
	id, ok := response.ParamID(c, "id")
	if !ok {
		return
	}
	sheet, err := h.svc.GetSheetByBOQItem(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, sheet)
}

// EnsureSheet creates the item's sheet if it is missing. Responds 201 when
// a sheet was created and 200 when it already existed.
// @Router /boq-items/:id/concentration-sheet [POST]
func (h *Handler) EnsureSheet(c *gin.Context) {
	id, ok := response.ParamID(c, "id")
	if !ok {
		return
	}
	sheet, created, err := h.svc.EnsureSheet(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	response.Success(c, status, sheet)
}

// @Router /concentration-sheets/ensure-all [POST]
func (h *Handler) EnsureAllSheets(c *gin.Context) {
	res, err := h.svc.EnsureAllSheets(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, res)
}

// @Router /concentration-sheets/:id/entries [POST]
func (h *Handler) CreateManualEntry(c *gin.Context) {
	id, ok := response.ParamID(c, "id")
	if !ok {
		return
	}
	var req ManualEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	entry, err := h.svc.CreateManualEntry(c.Request.Context(), id, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, entry)
}

// Populate mirrors one calculation sheet into the concentration ledgers.
// @Router /calculation-sheets/:id/populate [POST]
func (h *Handler) Populate(c *gin.Context) {
	id, ok := response.ParamID(c, "id")
	if !ok {
		return
	}
	res, err := h.svc.PopulateFromCalculationSheet(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, res)
}

// PopulateAll rebuilds every auto-generated entry. Per-sheet failures are
// reported in the body.
// @Router /calculation-sheets/populate-all [POST]
func (h *Handler) PopulateAll(c *gin.Context) {
	res, err := h.svc.PopulateFromAllCalculationSheets(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, res)
}
