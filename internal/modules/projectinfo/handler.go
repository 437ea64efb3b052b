package projectinfo

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
		public.GET("/project-info", h.Get)
	}
	if protected != nil {
		protected.PUT("/project-info", h.Update)
	}
}

// @Router /project-info [GET]
func (h *Handler) Get(c *gin.Context) {
	info, err := h.svc.Get(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, info)
}

// Update saves the project header and copies it onto every concentration sheet.
// @Router /project-info [PUT]
func (h *Handler) Update(c *gin.Context) {
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	res, err := h.svc.Update(c.Request.Context(), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, res)
}
