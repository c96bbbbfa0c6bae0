package resumes

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"resumecrack-backend/internal/shared/server/middleware"
	"resumecrack-backend/internal/shared/server/respond"
	"resumecrack-backend/internal/shared/storage/object"
	"resumecrack-backend/internal/shared/telemetry"
	"resumecrack-backend/internal/shared/util"
)

const maxUploadBytes = 20 << 20

// Handler exposes the resume pipeline and record store over HTTP.
type Handler struct {
	pipeline *Pipeline
	records  *Store
	objects  object.ObjectStore
	wiper    *Wiper
}

// NewHandler wires the HTTP layer around the pipeline and stores.
func NewHandler(pipeline *Pipeline, records *Store, objects object.ObjectStore, wiper *Wiper) *Handler {
	return &Handler{
		pipeline: pipeline,
		records:  records,
		objects:  objects,
		wiper:    wiper,
	}
}

// RegisterRoutes mounts the resume endpoints on the given group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/resumes", h.submit)
	rg.GET("/resumes", h.list)
	rg.GET("/resumes/:id", h.get)
	rg.GET("/resumes/:id/file", h.file)
	rg.GET("/resumes/:id/image", h.image)
	rg.DELETE("/resumes/:id", h.delete)
	rg.POST("/admin/wipe", h.wipe)
}

func (h *Handler) submit(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}
	if fileHeader.Size <= 0 || fileHeader.Size > maxUploadBytes {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file size exceeds limit", nil)
		return
	}
	if _, err := util.SanitizeFileName(fileHeader.Filename); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid file name", nil)
		return
	}
	if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".pdf") {
		respond.Error(c, http.StatusBadRequest, "validation_error", "only PDF files are accepted", nil)
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "failed to read file", nil)
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes+1))
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "failed to read file", nil)
		return
	}
	if int64(len(data)) > maxUploadBytes {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file size exceeds limit", nil)
		return
	}

	input := SubmitInput{
		UserID:         middleware.UserIDFromContext(c),
		FileName:       fileHeader.Filename,
		File:           data,
		CompanyName:    strings.TrimSpace(c.PostForm("companyName")),
		JobTitle:       strings.TrimSpace(c.PostForm("jobTitle")),
		JobDescription: strings.TrimSpace(c.PostForm("jobDescription")),
		Observer: func(stage Stage, message string) {
			c.Set("pipelineStage", stage.String())
			telemetry.Info("pipeline.stage", map[string]any{
				"stage":      stage.String(),
				"message":    message,
				"request_id": middleware.RequestIDFromContext(c),
			})
		},
	}

	record, err := h.pipeline.Submit(c.Request.Context(), input)
	if err != nil {
		h.respondPipelineError(c, err)
		return
	}
	c.Set("resumeId", record.ID)
	respond.JSON(c, http.StatusCreated, record)
}

func (h *Handler) respondPipelineError(c *gin.Context, err error) {
	var perr *PipelineError
	stage := ""
	if errors.As(err, &perr) {
		stage = perr.Stage.String()
	}
	details := gin.H{"stage": stage}

	switch {
	case errors.Is(err, ErrParseFailure):
		respond.Error(c, http.StatusUnprocessableEntity, "parse_failure", "Model output was not valid feedback", details)
	case errors.Is(err, ErrAnalysisFailure):
		respond.Error(c, http.StatusBadGateway, "analysis_failure", "Resume analysis failed", details)
	case errors.Is(err, ErrConversionFailure):
		respond.Error(c, http.StatusInternalServerError, "conversion_failure", "Failed to convert resume to image", details)
	case errors.Is(err, ErrUploadFailure):
		respond.Error(c, http.StatusInternalServerError, "upload_failure", "Failed to store resume", details)
	case errors.Is(err, ErrPersistFailure):
		respond.Error(c, http.StatusInternalServerError, "persist_failure", "Failed to save resume record", details)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal", "Submission failed", details)
	}
}

func (h *Handler) list(c *gin.Context) {
	includeDeleted := c.Query("includeDeleted") == "true"

	var (
		records []*ResumeRecord
		err     error
	)
	if includeDeleted {
		records, err = h.records.List(c.Request.Context())
	} else {
		records, err = h.records.ListLive(c.Request.Context())
	}
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal", "Failed to list resumes", nil)
		return
	}
	respond.OK(c, gin.H{"resumes": records})
}

func (h *Handler) get(c *gin.Context) {
	record, err := h.records.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "Resume not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal", "Failed to read resume", nil)
		return
	}
	respond.OK(c, record)
}

func (h *Handler) file(c *gin.Context) {
	h.streamBlob(c, func(r *ResumeRecord) (string, string) {
		return r.ResumePath, "application/pdf"
	})
}

func (h *Handler) image(c *gin.Context) {
	h.streamBlob(c, func(r *ResumeRecord) (string, string) {
		return r.ImagePath, "image/png"
	})
}

func (h *Handler) streamBlob(c *gin.Context, pick func(*ResumeRecord) (path, contentType string)) {
	record, err := h.records.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "Resume not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal", "Failed to read resume", nil)
		return
	}

	path, contentType := pick(record)
	blob, err := h.objects.Open(c.Request.Context(), path)
	if err != nil {
		respond.Error(c, http.StatusNotFound, "not_found", "Blob not found", nil)
		return
	}
	defer blob.Close()

	c.Header("Content-Type", contentType)
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, blob); err != nil {
		telemetry.Warn("resumes.stream_failed", map[string]any{
			"resume_id": record.ID,
			"path":      path,
			"error":     err.Error(),
		})
	}
}

// delete tombstones the record. Blob deletion is best-effort; failures are
// logged and do not block the soft delete.
func (h *Handler) delete(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	record, err := h.records.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "Resume not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal", "Failed to read resume", nil)
		return
	}

	for _, path := range []string{record.ResumePath, record.ImagePath} {
		if path == "" {
			continue
		}
		if err := h.objects.Delete(ctx, path); err != nil {
			telemetry.Warn("resumes.blob_delete_failed", map[string]any{
				"resume_id": id,
				"path":      path,
				"error":     err.Error(),
			})
		}
	}

	deleted, err := h.records.SoftDelete(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "Resume not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal", "Failed to delete resume", nil)
		return
	}
	respond.OK(c, deleted)
}

func (h *Handler) wipe(c *gin.Context) {
	result, err := h.wiper.WipeAll(c.Request.Context())
	if err != nil {
		if errors.Is(err, ErrPartialWipeFailure) {
			respond.JSON(c, http.StatusMultiStatus, result)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal", "Wipe failed", nil)
		return
	}
	respond.OK(c, result)
}
