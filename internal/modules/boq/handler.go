package boq

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

func (h *Handler) RegisterRoutes(public, protected *gin.RouterGroup) {
	if public != nil {
		public.GET("/boq-items", h.List)
		public.GET("/boq-items/:id", h.Get)
		public.GET("/boq-items/by-section/:section", h.GetBySection)
	}
	if protected != nil {
		protected.POST("/boq-items", h.Create)
		protected.POST("/boq-items/import", h.Import)
		protected.PATCH("/boq-items/:id", h.Update)
	}
}

// List returns BOQ items filtered by grouping attributes and a free-text search.
// @Router /boq-items [GET]
func (h *Handler) List(c *gin.Context) {
	var req ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BindError(c, err)
		return
	}
	items, err := h.svc.List(c.Request.Context(), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, items)
}

// @Router /boq-items/:id [GET]
func (h *Handler) Get(c *gin.Context) {
	id, ok := response.ParamID(c, "id")
	if !ok {
		return
	}
	item, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, item)
}

// @Router /boq-items/by-section/:section [GET]
func (h *Handler) GetBySection(c *gin.Context) {
	item, err := h.svc.GetBySection(c.Request.Context(), c.Param("section"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, item)
}

// Create adds a BOQ item with its totals derived from quantities and price.
// @Router /boq-items [POST]
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	item, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, item)
}

// @Router /boq-items/:id [PATCH]
func (h *Handler) Update(c *gin.Context) {
	id, ok := response.ParamID(c, "id")
	if !ok {
		return
	}
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	item, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, item)
}

// Import creates many items; per-record failures are reported, not fatal.
// @Router /boq-items/import [POST]
func (h *Handler) Import(c *gin.Context) {
	var records []CreateRequest
	if err := c.ShouldBindJSON(&records); err != nil {
		response.BindError(c, err)
		return
	}
	response.Success(c, http.StatusOK, h.svc.Import(c.Request.Context(), records))
}
