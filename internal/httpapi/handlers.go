package httpapi

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/dusk-indust/tutorgen/internal/export"
	"github.com/dusk-indust/tutorgen/internal/library"
	"github.com/dusk-indust/tutorgen/internal/orchestrator"
)

// GenerateRequest is the body of POST /v1/tutorials and its stream variant.
type GenerateRequest struct {
	Topic string `json:"topic" binding:"required"`
}

// TutorialResponse is the outcome of one run.
type TutorialResponse struct {
	*orchestrator.Result
	Files []string   `json:"files,omitempty"`
	Error *ErrorBody `json:"error,omitempty"`
}

// Health reports liveness.
// GET /healthz
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready probes the backend.
// GET /readyz
func (h *Handler) Ready(c *gin.Context) {
	if h.opts.Detector == nil {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
		return
	}
	r := h.opts.Detector.Detect(c.Request.Context())
	if !r.Ready() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": r.Backend.Error(), "codeLint": r.CodeLint})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready", "codeLint": r.CodeLint})
}

// Generate runs the pipeline and answers with the result.
// POST /v1/tutorials
func (h *Handler) Generate(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": ErrorBody{Code: "INVALID_REQUEST", Message: err.Error()}})
		return
	}

	res, err := h.pipeline.Run(c.Request.Context(), req.Topic, nil)
	status, body := h.respond(res, err)
	c.JSON(status, body)
}

// Stream runs the pipeline, sending each progress event as an SSE "progress"
// event and the outcome as a final "result" event.
// POST /v1/tutorials/stream
func (h *Handler) Stream(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": ErrorBody{Code: "INVALID_REQUEST", Message: err.Error()}})
		return
	}

	c.Header("Content-Type", "text/event-stream; charset=utf-8")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	var mu sync.Mutex
	res, err := h.pipeline.Run(c.Request.Context(), req.Topic, func(ev orchestrator.ProgressEvent) {
		mu.Lock()
		defer mu.Unlock()
		c.SSEvent("progress", ev)
		c.Writer.Flush()
	})

	_, body := h.respond(res, err)
	mu.Lock()
	defer mu.Unlock()
	c.SSEvent("result", body)
	c.Writer.Flush()
}

// List returns the tutorials exported to the output directory.
// GET /v1/tutorials
func (h *Handler) List(c *gin.Context) {
	if h.opts.OutputDir == "" {
		c.JSON(http.StatusOK, gin.H{"tutorials": []library.Entry{}})
		return
	}
	entries, err := library.Scan(h.opts.OutputDir)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": ErrorBody{Code: "LIST_FAILED", Message: err.Error()}})
		return
	}
	if entries == nil {
		entries = []library.Entry{}
	}
	c.JSON(http.StatusOK, gin.H{"tutorials": entries})
}

// respond builds the status and body for a finished run and writes exports
// when the run is done.
func (h *Handler) respond(res *orchestrator.Result, err error) (int, TutorialResponse) {
	if err != nil {
		h.log.Warn("run failed", "error", err)
		return statusFor(err), TutorialResponse{Result: res, Error: errorBody(err)}
	}

	body := TutorialResponse{Result: res}
	if res.State == orchestrator.StateRejected {
		return http.StatusUnprocessableEntity, body
	}

	if h.opts.OutputDir != "" {
		files, werr := export.Write(h.opts.OutputDir, res, h.opts.Formats, h.opts.Now())
		body.Files = files
		if werr != nil {
			h.log.Error("export failed", "run_id", res.RunID, "error", werr)
		}
	}
	return http.StatusOK, body
}
