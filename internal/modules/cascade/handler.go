package cascade

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"boqtracker/internal/modules/calculation"
	"boqtracker/internal/modules/concentration"
	"boqtracker/internal/pkg/response"
)

type Handler struct {
	coord *Coordinator
}

func NewHandler(coord *Coordinator) *Handler {
	return &Handler{coord: coord}
}

// RegisterRoutes mounts every edit and delete that must recompute BOQ
// totals before the response is written. Deleting a BOQ item goes on admin.
func (h *Handler) RegisterRoutes(protected, admin *gin.RouterGroup) {
	protected.PATCH("/calculation-entries/:id", h.UpdateCalculationEntry)
	protected.DELETE("/calculation-entries/:id", h.deleteBy(h.coord.DeleteCalculationEntry))
	protected.DELETE("/calculation-sheets/:id", h.deleteBy(h.coord.DeleteCalculationSheet))
	protected.PATCH("/concentration-entries/:id", h.UpdateConcentrationEntry)
	protected.DELETE("/concentration-entries/:id", h.deleteBy(h.coord.DeleteConcentrationEntry))
	protected.DELETE("/concentration-sheets/:id", h.deleteBy(h.coord.DeleteConcentrationSheet))
	protected.DELETE("/contract-updates/:id", h.deleteBy(h.coord.DeleteContractUpdate))
	admin.DELETE("/boq-items/:id", h.deleteBy(h.coord.DeleteBOQItem))
}

// @Router /calculation-entries/:id [PATCH]
func (h *Handler) UpdateCalculationEntry(c *gin.Context) {
	id, ok := response.ParamID(c, "id")
	if !ok {
		return
	}
	var patch calculation.EntryPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.BindError(c, err)
		return
	}
	res, err := h.coord.UpdateCalculationEntry(c.Request.Context(), id, patch)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, res)
}

// @Router /concentration-entries/:id [PATCH]
func (h *Handler) UpdateConcentrationEntry(c *gin.Context) {
	id, ok := response.ParamID(c, "id")
	if !ok {
		return
	}
	var patch concentration.EntryPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.BindError(c, err)
		return
	}
	res, err := h.coord.UpdateConcentrationEntry(c.Request.Context(), id, patch)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, res)
}

func (h *Handler) deleteBy(op func(ctx context.Context, id int64) (*Outcome, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := response.ParamID(c, "id")
		if !ok {
			return
		}
		out, err := op(c.Request.Context(), id)
		if err != nil {
			response.FromError(c, err)
			return
		}
		response.Success(c, http.StatusOK, out)
	}
}
