package server

import (
	"io"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"

	"sprintwatch/internal/report"
	"sprintwatch/internal/sprint"
)

// Handlers exposes the served state over HTTP. Reads come from the current
// report snapshot; mutations go through State so persistence and re-triage
// stay in one place.
type Handlers struct {
	st *State
}

func NewHandlers(st *State) *Handlers {
	return &Handlers{st: st}
}

func (h *Handlers) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// currentReport fetches the served report, answering 404 itself when no
// snapshot has been ingested yet.
func (h *Handlers) currentReport(c *gin.Context) (report.Report, bool) {
	rep, ok := h.st.Report()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no snapshot ingested yet"})
	}
	return rep, ok
}

func (h *Handlers) GetReport(c *gin.Context) {
	rep, ok := h.currentReport(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, rep)
}

func (h *Handlers) GetMetrics(c *gin.Context) {
	rep, ok := h.currentReport(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, rep.Metrics)
}

func (h *Handlers) GetAlerts(c *gin.Context) {
	rep, ok := h.currentReport(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, rep.Alerts)
}

func (h *Handlers) GetWorkload(c *gin.Context) {
	rep, ok := h.currentReport(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"workload": rep.Workload, "highRemaining": rep.HighRemaining})
}

func (h *Handlers) GetBurndown(c *gin.Context) {
	var sprintEnd time.Time
	if raw := c.Query("sprint_end"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "sprint_end must be YYYY-MM-DD"})
			return
		}
		sprintEnd = parsed
	}

	view, err := h.st.Burndown(sprintEnd)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handlers) ListDismissals(c *gin.Context) {
	c.JSON(http.StatusOK, h.st.Dismissals())
}

func (h *Handlers) PostDismissal(c *gin.Context) {
	var req struct {
		IssueKey    string `json:"issue_key"`
		AlertType   string `json:"alert_type"`
		DismissedBy string `json:"dismissed_by"`
		Remarks     string `json:"remarks"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.IssueKey == "" || req.AlertType == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "issue_key and alert_type are required"})
		return
	}

	if err := h.st.Dismiss(req.IssueKey, sprint.AlertType(req.AlertType), req.DismissedBy, req.Remarks); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "dismissed"})
}

func (h *Handlers) GetSnapshotInfo(c *gin.Context) {
	meta, err := h.st.SnapshotInfo()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if meta == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no snapshot ingested yet"})
		return
	}
	c.JSON(http.StatusOK, meta)
}

func (h *Handlers) UploadSnapshot(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart field \"file\" is required"})
		return
	}
	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rep, err := h.st.Ingest(data, filepath.Base(file.Filename), time.Now())
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rep)
}
