// Package api exposes a running checker over HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/amartya2002/uptime-notifier/uptime"
)

// Monitor is the part of *uptime.Checker the API needs.
type Monitor interface {
	AddSite(ep uptime.Endpoint) (uptime.Endpoint, error)
	RemoveSite(id string) bool
	ListSites() []uptime.Endpoint
	Status(id string) (uptime.Result, bool)
	GetLogs(id string, limit int) []uptime.Result
}

type Site struct {
	URL            string `json:"url" binding:"required,url"`
	Name           string `json:"name" binding:"required"`
	ExpectedStatus int    `json:"expected_status,omitempty"`
	CheckInterval  int    `json:"check_interval,omitempty" binding:"omitempty,min=1"` // seconds
	Schedule       string `json:"schedule,omitempty"`
}

type LogResponse struct {
	Timestamp  time.Time `json:"timestamp"`
	Kind       string    `json:"kind"`
	StatusCode int       `json:"status_code"`
	LatencyMS  int64     `json:"latency_ms"`
	Status     string    `json:"status"`
	Notified   bool      `json:"notified"`
}

type SiteLogResponse struct {
	Site uptime.Endpoint `json:"site"`
	Logs []LogResponse   `json:"logs"`
}

type StatusResponse struct {
	Site      uptime.Endpoint `json:"site"`
	Status    string          `json:"status"`
	Kind      string          `json:"kind,omitempty"`
	Title     string          `json:"title,omitempty"`
	Message   string          `json:"message,omitempty"`
	CheckedAt *time.Time      `json:"checked_at,omitempty"`
}

const logLimit = 50

// NewRouter wires the HTTP routes onto a gin engine.
func NewRouter(m Monitor, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger))

	h := &handlers{monitor: m, logger: logger}
	r.GET("/health", h.health)
	r.GET("/sites", h.listSites)
	r.POST("/sites", h.addSite)
	r.DELETE("/sites/:id", h.removeSite)
	r.GET("/sites/:id/status", h.siteStatus)
	r.GET("/sites/:id/logs", h.siteLogs)
	return r
}

func requestLogger(l *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		l.Debug("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}

type handlers struct {
	monitor Monitor
	logger  *zap.Logger
}

func (h *handlers) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *handlers) listSites(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"sites": h.monitor.ListSites()})
}

func (h *handlers) addSite(c *gin.Context) {
	var site Site
	if err := c.ShouldBindJSON(&site); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ep, err := h.monitor.AddSite(uptime.Endpoint{
		ID:             uuid.NewString(),
		Name:           site.Name,
		URL:            site.URL,
		Method:         http.MethodGet,
		Frequency:      time.Duration(site.CheckInterval) * time.Second,
		Schedule:       site.Schedule,
		ExpectedStatus: site.ExpectedStatus,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.logger.Info("Site added via API", zap.String("id", ep.ID), zap.String("url", ep.URL))

	c.JSON(http.StatusCreated, gin.H{
		"message": "Site added successfully",
		"site":    ep,
	})
}

func (h *handlers) removeSite(c *gin.Context) {
	if !h.monitor.RemoveSite(c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Site not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) siteStatus(c *gin.Context) {
	res, ok := h.monitor.Status(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Site not found"})
		return
	}
	resp := StatusResponse{Site: res.Endpoint, Status: "PENDING"}
	if !res.Timestamp.IsZero() {
		ts := res.Timestamp
		resp.Status = upDown(res.Success())
		resp.Kind = res.Outcome.Kind.String()
		resp.Title = res.Outcome.Title
		resp.Message = res.Outcome.Message
		resp.CheckedAt = &ts
	}
	c.JSON(http.StatusOK, resp)
}

func (h *handlers) siteLogs(c *gin.Context) {
	rawLogs := h.monitor.GetLogs(c.Param("id"), logLimit)
	if len(rawLogs) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "No logs found for site"})
		return
	}

	logs := make([]LogResponse, 0, len(rawLogs))
	for _, l := range rawLogs {
		logs = append(logs, LogResponse{
			Timestamp:  l.Timestamp,
			Kind:       l.Outcome.Kind.String(),
			StatusCode: l.Outcome.StatusCode,
			LatencyMS:  l.Outcome.Latency.Milliseconds(),
			Status:     upDown(l.Success()),
			Notified:   l.Notified,
		})
	}

	// Attach site metadata from the latest log
	c.JSON(http.StatusOK, SiteLogResponse{
		Site: rawLogs[len(rawLogs)-1].Endpoint,
		Logs: logs,
	})
}

func upDown(ok bool) string {
	if ok {
		return "UP"
	}
	return "DOWN"
}
