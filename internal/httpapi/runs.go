package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dusk-indust/tutorgen/internal/orchestrator"
	"github.com/dusk-indust/tutorgen/internal/runstore"
	"github.com/dusk-indust/tutorgen/internal/tutorial"
)

// StartRun queues a background run and answers 202 with the job.
// POST /v1/runs
func (h *Handler) StartRun(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": ErrorBody{Code: "INVALID_REQUEST", Message: err.Error()}})
		return
	}

	if _, err := tutorial.NewTopic(req.Topic); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errorBody(err)})
		return
	}

	job := h.opts.Runs.Create(req.Topic)
	// The run outlives the request.
	ctx := context.WithoutCancel(c.Request.Context())
	go h.runJob(ctx, job.ID, req.Topic)

	c.Header("Location", "/v1/runs/"+job.ID)
	c.JSON(http.StatusAccepted, job)
}

func (h *Handler) runJob(ctx context.Context, id, topic string) {
	log := h.log.With("job_id", id)
	res, err := h.pipeline.Run(ctx, topic, func(ev orchestrator.ProgressEvent) {
		if rerr := h.opts.Runs.Record(id, ev); rerr != nil {
			log.Warn("record progress", "error", rerr)
		}
	})

	_, body := h.respond(res, err)
	var code, msg string
	if body.Error != nil {
		code, msg = body.Error.Code, body.Error.Message
	}
	if ferr := h.opts.Runs.Finish(id, res, body.Files, code, msg); ferr != nil {
		log.Warn("finish job", "error", ferr)
	}
}

// GetRun returns one job.
// GET /v1/runs/:id
func (h *Handler) GetRun(c *gin.Context) {
	job, err := h.opts.Runs.Get(c.Param("id"))
	if errors.Is(err, runstore.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": ErrorBody{Code: "NOT_FOUND", Message: err.Error()}})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": ErrorBody{Code: "INTERNAL", Message: err.Error()}})
		return
	}
	c.JSON(http.StatusOK, job)
}

// ListRuns pages through jobs, oldest first.
// GET /v1/runs?state=done&page_size=10&page_token=<id>
func (h *Handler) ListRuns(c *gin.Context) {
	req := runstore.ListRequest{
		State:     c.Query("state"),
		PageToken: c.Query("page_token"),
	}
	if raw := c.Query("page_size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": ErrorBody{Code: "INVALID_REQUEST", Message: "page_size must be a non-negative integer"}})
			return
		}
		req.PageSize = n
	}

	resp, err := h.opts.Runs.List(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": ErrorBody{Code: "INVALID_REQUEST", Message: err.Error()}})
		return
	}
	c.JSON(http.StatusOK, resp)
}
