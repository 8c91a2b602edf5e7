package documents

import (
	"errors"
	"io"
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"

	"medlense-backend/internal/extract"
	"medlense-backend/internal/shared/server/middleware"
	"medlense-backend/internal/shared/server/respond"
	"medlense-backend/internal/shared/telemetry"
)

const maxUploadSize = 50 << 20 // 50MB, matching the original transport limit

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches document routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/documents", h.upload)
	rg.GET("/documents", h.list)
	rg.GET("/documents/:id", h.get)
}

func (h *Handler) upload(c *gin.Context) {
	ownerID := middleware.UserIDFromContext(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}
	mimeType := fileHeader.Header.Get("Content-Type")

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	defer file.Close()

	// Spool the upload to a request-scoped temp file so the pipeline works
	// from a stable handle. Removal is guaranteed on every exit path;
	// a failed removal is logged, never surfaced.
	tmp, err := os.CreateTemp("", "medlense-upload-*")
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to buffer upload", nil)
		return
	}
	defer func() {
		tmp.Close()
		if rmErr := os.Remove(tmp.Name()); rmErr != nil {
			telemetry.Warn("upload.cleanup_failed", map[string]any{
				"path":       tmp.Name(),
				"err":        rmErr.Error(),
				"request_id": c.GetString("requestId"),
			})
		}
	}()
	if _, err := io.Copy(tmp, file); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to buffer upload", nil)
		return
	}

	res, err := h.Svc.Ingest(c.Request.Context(), ownerID, fileHeader.Filename, mimeType, tmp)
	if err != nil {
		switch {
		case errors.Is(err, extract.ErrExtraction):
			respond.Error(c, http.StatusBadRequest, "extraction_error", "could not extract text from file", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to ingest document", nil)
		}
		return
	}

	c.Set("documentId", res.Document.ID)
	respond.JSON(c, http.StatusOK, toIngestResponse(res))
}

func (h *Handler) get(c *gin.Context) {
	ownerID := middleware.UserIDFromContext(c)

	doc, err := h.Svc.Get(c.Request.Context(), ownerID, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch document", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, toDocumentResponse(doc))
}

func (h *Handler) list(c *gin.Context) {
	ownerID := middleware.UserIDFromContext(c)

	limit := 20
	offset := 0
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if limit < 0 {
		limit = 0
	}
	if limit > 50 {
		limit = 50
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}
	if offset < 0 {
		offset = 0
	}

	docs, err := h.Svc.List(c.Request.Context(), ownerID, limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list documents", nil)
		return
	}

	resp := make([]DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		resp = append(resp, toDocumentResponse(doc))
	}
	respond.JSON(c, http.StatusOK, resp)
}
