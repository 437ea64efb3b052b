package contractupdate

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

// RegisterRoutes mounts snapshot creation and edits. Deleting an update is
// mounted by the cascade handler.
func (h *Handler) RegisterRoutes(public, protected *gin.RouterGroup) {
	if public != nil {
		public.GET("/contract-updates", h.List)
		public.GET("/contract-updates/:id", h.Get)
		public.GET("/boq-items/:id/latest-contract", h.LatestFor)
	}
	if protected != nil {
		protected.POST("/contract-updates", h.Create)
		protected.PATCH("/contract-updates/:id/items/:boqItemId", h.UpdateBoqItemQuantity)
	}
}

// @Router /contract-updates [GET]
func (h *Handler) List(c *gin.Context) {
	updates, err := h.svc.List(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, updates)
}

// @Router /contract-updates/:id [GET]
func (h *Handler) Get(c *gin.Context) {
	id, ok := response.ParamID(c, "id")
	if !ok {
		return
	}
	snap, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, snap)
}

// Create snapshots every BOQ item under the next update index.
// @Router /contract-updates [POST]
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	snap, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, snap)
}

// @Router /contract-updates/:id/items/:boqItemId [PATCH]
func (h *Handler) UpdateBoqItemQuantity(c *gin.Context) {
	updateID, ok := response.ParamID(c, "id")
	if !ok {
		return
	}
	itemID, ok := response.ParamID(c, "boqItemId")
	if !ok {
		return
	}
	var patch QuantityPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.BindError(c, err)
		return
	}
	row, err := h.svc.UpdateBoqItemQuantity(c.Request.Context(), updateID, itemID, patch)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, row)
}

// @Router /boq-items/:id/latest-contract [GET]
func (h *Handler) LatestFor(c *gin.Context) {
	id, ok := response.ParamID(c, "id")
	if !ok {
		return
	}
	latest, err := h.svc.LatestFor(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, latest)
}
