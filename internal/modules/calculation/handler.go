package calculation

import (
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"boqtracker/internal/pkg/response"
)

// MaxImportFiles bounds one multipart import request.
const MaxImportFiles = 50

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts sheet CRUD and import. Entry edits and sheet
// deletes are mounted by the cascade handler.
func (h *Handler) RegisterRoutes(public, protected *gin.RouterGroup) {
	if public != nil {
		public.GET("/calculation-sheets", h.ListSheets)
		public.GET("/calculation-sheets/:id", h.GetSheet)
	}
	if protected != nil {
		protected.POST("/calculation-sheets", h.CreateSheet)
		protected.POST("/calculation-sheets/import", h.Import)
		protected.PATCH("/calculation-sheets/:id", h.UpdateSheet)
		protected.POST("/calculation-sheets/:id/entries", h.AddEntry)
	}
}

// @Router /calculation-sheets [GET]
func (h *Handler) ListSheets(c *gin.Context) {
	sheets, err := h.svc.ListSheets(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, sheets)
}

// @Router /calculation-sheets/:id [GET]
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

// @Router /calculation-sheets [POST]
func (h *Handler) CreateSheet(c *gin.Context) {
	var req CreateSheetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	sheet, err := h.svc.CreateSheet(c.Request.Context(), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, sheet)
}

// @Router /calculation-sheets/:id [PATCH]
func (h *Handler) UpdateSheet(c *gin.Context) {
	id, ok := response.ParamID(c, "id")
	if !ok {
		return
	}
	var patch SheetPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.BindError(c, err)
		return
	}
	sheet, err := h.svc.UpdateSheet(c.Request.Context(), id, patch)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, sheet)
}

// @Router /calculation-sheets/:id/entries [POST]
func (h *Handler) AddEntry(c *gin.Context) {
	id, ok := response.ParamID(c, "id")
	if !ok {
		return
	}
	var req EntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	entry, err := h.svc.AddEntry(c.Request.Context(), id, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, entry)
}

// Import accepts one or more spreadsheets in the multipart field "files".
// A single file fails the request on a decode error; a batch reports
// per-file outcomes. ?auto_populate=true mirrors each sheet after import.
// @Router /calculation-sheets/import [POST]
func (h *Handler) Import(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		response.BindError(c, err)
		return
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "No files uploaded")
		return
	}
	if len(headers) > MaxImportFiles {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Too many files, max "+strconv.Itoa(MaxImportFiles))
		return
	}
	autoPopulate, _ := strconv.ParseBool(c.Query("auto_populate"))
	opts := ImportOptions{AutoPopulate: autoPopulate}

	files := make([]ImportFile, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			response.BindError(c, err)
			return
		}
		defer func(f multipart.File) { _ = f.Close() }(f)
		files = append(files, ImportFile{Name: fh.Filename, Reader: f})
	}

	if len(files) == 1 {
		res, err := h.svc.Import(c.Request.Context(), files[0].Name, files[0].Reader, opts)
		if err != nil {
			response.FromError(c, err)
			return
		}
		response.Success(c, http.StatusCreated, res)
		return
	}
	response.Success(c, http.StatusOK, h.svc.ImportMany(c.Request.Context(), files, opts))
}
