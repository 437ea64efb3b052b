package report

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

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	reports := r.Group("/reports")
	{
		reports.GET("/boq-items/:id", h.ItemView)
		reports.GET("/concentration-sheets/:id", h.SheetBundle)
		reports.GET("/summaries", h.Summaries) // ?group_by=structure|system|subsection
	}
}

// @Router /reports/boq-items/:id [GET]
func (h *Handler) ItemView(c *gin.Context) {
	id, ok := response.ParamID(c, "id")
	if !ok {
		return
	}
	view, err := h.svc.ItemView(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// @Router /reports/concentration-sheets/:id [GET]
func (h *Handler) SheetBundle(c *gin.Context) {
	id, ok := response.ParamID(c, "id")
	if !ok {
		return
	}
	bundle, err := h.svc.SheetBundle(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, bundle)
}

// @Router /reports/summaries [GET]
func (h *Handler) Summaries(c *gin.Context) {
	g := GroupBy(c.DefaultQuery("group_by", string(ByStructure)))
	sums, err := h.svc.Summaries(c.Request.Context(), g)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, sums)
}
