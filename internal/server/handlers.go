package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/FabriceFx/Google-Workspace-Status-Monitor/internal/scheduler"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	db        *gorm.DB
	scheduler *scheduler.Scheduler
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Database  string            `json:"database"`
	Details   map[string]string `json:"details,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// NewHandlers creates new HTTP handlers
func NewHandlers(db *gorm.DB, sched *scheduler.Scheduler) *Handlers {
	return &Handlers{
		db:        db,
		scheduler: sched,
	}
}

// SetupRoutes sets up all HTTP routes
func (h *Handlers) SetupRoutes(router *gin.Engine) {
	// Health check
	router.GET("/healthz", h.HealthCheck)

	// Prometheus metrics
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API routes
	api := router.Group("/api/v1")
	{
		api.POST("/scheduler/start", h.StartScheduler)
		api.POST("/scheduler/stop", h.StopScheduler)
		api.POST("/scheduler/run-once", h.RunOnce)
		api.GET("/scheduler/status", h.GetSchedulerStatus)
	}
}

// HealthCheck handles health check requests
func (h *Handlers) HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Database:  "ok",
		Details:   make(map[string]string),
	}

	// Check database connection
	if err := h.db.Raw("SELECT 1").Error; err != nil {
		response.Status = "error"
		response.Database = "error"
		logrus.Errorf("Database health check failed: %v", err)
	}

	// Check scheduler status
	if h.scheduler.IsRunning() {
		response.Details["scheduler"] = "running"
		response.Details["next_run"] = h.scheduler.GetNextRun().Format(time.RFC3339)
		response.Details["last_run"] = h.scheduler.GetLastRun().Format(time.RFC3339)
	} else {
		response.Details["scheduler"] = "stopped"
	}

	statusCode := http.StatusOK
	if response.Status == "error" {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, response)
}

// StartScheduler handles requests to start the scheduler
func (h *Handlers) StartScheduler(c *gin.Context) {
	if err := h.scheduler.Start(); err != nil {
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "scheduler_start_failed",
			Message: err.Error(),
			Code:    http.StatusConflict,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "started"})
}

// StopScheduler handles requests to stop the scheduler
func (h *Handlers) StopScheduler(c *gin.Context) {
	if err := h.scheduler.Stop(); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "scheduler_stop_failed",
			Message: err.Error(),
			Code:    http.StatusInternalServerError,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "stopped"})
}

// RunOnce handles requests to trigger one processing pass immediately
func (h *Handlers) RunOnce(c *gin.Context) {
	if err := h.scheduler.RunOnce(); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "pass_failed",
			Message: err.Error(),
			Code:    http.StatusInternalServerError,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "completed"})
}

// GetSchedulerStatus returns the current scheduler state
func (h *Handlers) GetSchedulerStatus(c *gin.Context) {
	status := gin.H{
		"running": h.scheduler.IsRunning(),
	}

	if h.scheduler.IsRunning() {
		status["next_run"] = h.scheduler.GetNextRun().Format(time.RFC3339)
		status["last_run"] = h.scheduler.GetLastRun().Format(time.RFC3339)
	}

	c.JSON(http.StatusOK, status)
}
