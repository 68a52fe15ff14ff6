// Package handler exposes the upload endpoints that feed the import
// pipelines.
package handler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	importservice "recetario/internal/domain/import/service"
)

// maxUploadMemory caps the in-memory portion of multipart parsing.
const maxUploadMemory = 32 << 20

// allowedExtensions is the shared upload validation: anything else is
// rejected before the pipeline runs.
var allowedExtensions = map[string]struct{}{
	".pdf":  {},
	".xls":  {},
	".xlsx": {},
	".md":   {},
}

// importFunc is one of the three service pipelines.
type importFunc func(ctx context.Context, data []byte) (*importservice.Summary, error)

// Handler handles document upload requests
type Handler struct {
	importSvc *importservice.Service
	logger    *slog.Logger
}

// NewHandler creates a new upload handler
func NewHandler(importSvc *importservice.Service, logger *slog.Logger) *Handler {
	return &Handler{
		importSvc: importSvc,
		logger:    logger.With(slog.String("component", "import_handler")),
	}
}

// Routes returns the upload routes
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Post("/recipes", h.UploadRecipes)
	r.Post("/meats", h.UploadMeatPrices)
	r.Post("/vegetables", h.UploadVegetablePrices)

	return r
}

// UploadRecipes ingests a markdown recipe catalog (full replace).
func (h *Handler) UploadRecipes(w http.ResponseWriter, r *http.Request) {
	h.processUpload(w, r, h.importSvc.ImportRecipes)
}

// UploadMeatPrices ingests an xlsx meat price sheet.
func (h *Handler) UploadMeatPrices(w http.ResponseWriter, r *http.Request) {
	h.processUpload(w, r, h.importSvc.ImportMeatPrices)
}

// UploadVegetablePrices ingests a pdf vegetable price list.
func (h *Handler) UploadVegetablePrices(w http.ResponseWriter, r *http.Request) {
	h.processUpload(w, r, h.importSvc.ImportVegetablePrices)
}

type uploadResponse struct {
	Message string                 `json:"message"`
	Data    *importservice.Summary `json:"data,omitempty"`
}

func (h *Handler) processUpload(w http.ResponseWriter, r *http.Request, run importFunc) {
	data, err := h.readUploadedFile(r)
	if err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, uploadResponse{Message: err.Error()})
		return
	}

	summary, err := run(r.Context(), data)
	if err != nil {
		h.logger.Error("import pipeline failed", slog.Any("error", err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, uploadResponse{Message: err.Error()})
		return
	}

	message := fmt.Sprintf("Processed %d items.", summary.ProcessedCount)
	if len(summary.Errors) > 0 {
		message += " Some errors were found."
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, uploadResponse{Message: message, Data: summary})
}

// readUploadedFile extracts the "file" multipart field and enforces the
// shared extension check.
func (h *Handler) readUploadedFile(r *http.Request) ([]byte, error) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		return nil, fmt.Errorf("invalid multipart request: %w", err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, fmt.Errorf("missing file field: %w", err)
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if _, ok := allowedExtensions[ext]; !ok {
		return nil, fmt.Errorf("unsupported file type, expected one of: .pdf, .xls, .xlsx, .md")
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded file: %w", err)
	}
	return data, nil
}
