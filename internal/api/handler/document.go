package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/talentwire/docpipe/internal/domain"
	"github.com/talentwire/docpipe/internal/repository"
	"github.com/talentwire/docpipe/internal/service"
)

// maxUploadBytes caps the accepted document size.
const maxUploadBytes = 10 << 20

// DocumentHandler handles document submission and status endpoints.
type DocumentHandler struct {
	processing *service.ProcessingService
	jobs       repository.JobStore
}

// NewDocumentHandler creates a new document handler.
func NewDocumentHandler(processing *service.ProcessingService, jobs repository.JobStore) *DocumentHandler {
	return &DocumentHandler{
		processing: processing,
		jobs:       jobs,
	}
}

// submitConfig is the optional per-submission configuration blob.
type submitConfig struct {
	DisabledNodes       []string `json:"disabledNodes"`
	ConfidenceThreshold *float64 `json:"confidenceThreshold"`
}

// Submit handles POST /documents. The document is accepted with 202 and
// processed in the background; progress is observable via Status and the
// webhook callback.
func (h *DocumentHandler) Submit(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Missing file: a multipart 'file' field is required",
		})
		return
	}
	if fileHeader.Size > maxUploadBytes {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("File too large: limit is %d bytes", maxUploadBytes),
		})
		return
	}

	jobType := c.PostForm("type")
	if jobType == "" {
		jobType = string(domain.JobTypeJobDescription)
	}
	if jobType != string(domain.JobTypeJobDescription) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Unsupported type: " + jobType,
		})
		return
	}

	webhookURL := c.PostForm("webhookUrl")
	if err := validateWebhookURL(webhookURL); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	var cfg submitConfig
	if raw := c.PostForm("config"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid config: " + err.Error(),
			})
			return
		}
		if cfg.ConfidenceThreshold != nil && (*cfg.ConfidenceThreshold < 0 || *cfg.ConfidenceThreshold > 1) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid config: confidenceThreshold must be in [0, 1]",
			})
			return
		}
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Cannot read file: " + err.Error(),
		})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Cannot read file: " + err.Error(),
		})
		return
	}
	if len(data) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Missing file: uploaded file is empty",
		})
		return
	}

	resp, err := h.processing.Submit(c.Request.Context(), &service.SubmitRequest{
		FileName:            fileHeader.Filename,
		MimeType:            fileHeader.Header.Get("Content-Type"),
		Data:                data,
		WebhookURL:          webhookURL,
		CorrelationID:       c.PostForm("correlationId"),
		DisabledNodes:       cfg.DisabledNodes,
		ConfidenceThreshold: cfg.ConfidenceThreshold,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Submission failed: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusAccepted, resp)
}

// Status handles GET /documents/:id.
func (h *DocumentHandler) Status(c *gin.Context) {
	id := c.Param("id")

	job, err := h.jobs.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrJobNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Unknown processing id: " + id,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Status lookup failed: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"processingId": job.ID,
		"type":         job.Type,
		"status":       job.Status,
		"progress":     job.Progress,
		"result":       job.Result,
		"error":        job.Error,
		"createdAt":    job.CreatedAt,
		"startedAt":    job.StartedAt,
		"completedAt":  job.CompletedAt,
	})
}

func validateWebhookURL(raw string) error {
	if raw == "" {
		return errors.New("Missing webhookUrl")
	}
	u, err := url.ParseRequestURI(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New("Invalid webhookUrl: must be an absolute http(s) URL")
	}
	return nil
}
