package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"todoapi/internal/adapter/http/middleware"
	"todoapi/internal/config"
)

const (
	StatusOk        = "ok"
	StatusDown      = "down"
	StatusDisabled  = "disabled"
	healthDBTimeout = 2 * time.Second
)

// PingFunc checks one backing service. A nil PingFunc means the service is not configured.
type PingFunc func(ctx context.Context) error

type HealthBasic struct {
	AppName           string `json:"app_name"`
	AppVersion        string `json:"app_version"`
	CurrentSystemTime string `json:"current_system_time"`
	Message           string `json:"message"`
}

type HealthServices struct {
	Mysql string `json:"mysql"`
	Redis string `json:"redis"`
}

type HealthAdvanced struct {
	AppName           string         `json:"app_name"`
	AppVersion        string         `json:"app_version"`
	CurrentSystemTime string         `json:"current_system_time"`
	Language          string         `json:"language"`
	Storage           string         `json:"storage"`
	Status            HealthServices `json:"status"`
}

type HealthHandler struct {
	app       config.AppConfig
	pingMySQL PingFunc
	pingRedis PingFunc
}

func NewHealthHandler(app config.AppConfig, pingMySQL, pingRedis PingFunc) *HealthHandler {
	return &HealthHandler{app: app, pingMySQL: pingMySQL, pingRedis: pingRedis}
}

// CheckHealth fails only when a configured store is unreachable. Redis is optional.
func (h *HealthHandler) CheckHealth(c *gin.Context) {
	statusCode := http.StatusOK
	message := StatusOk

	if check(c.Request.Context(), h.pingMySQL) == StatusDown {
		statusCode = http.StatusInternalServerError
		message = StatusDown
	}

	c.JSON(statusCode, HealthBasic{
		AppName:           h.app.Name,
		AppVersion:        h.app.Version,
		CurrentSystemTime: time.Now().Format(time.DateTime),
		Message:           message,
	})
}

func (h *HealthHandler) CheckHealthReport(c *gin.Context) {
	ctx := c.Request.Context()

	c.JSON(http.StatusOK, HealthAdvanced{
		AppName:           h.app.Name,
		AppVersion:        h.app.Version,
		CurrentSystemTime: time.Now().Format(time.DateTime),
		Language:          middleware.GetLang(c),
		Storage:           h.app.Storage,
		Status: HealthServices{
			Mysql: check(ctx, h.pingMySQL),
			Redis: check(ctx, h.pingRedis),
		},
	})
}

func check(ctx context.Context, ping PingFunc) string {
	if ping == nil {
		return StatusDisabled
	}
	// Avoid hanging health checks if a dependency stalls.
	timeoutCtx, cancel := context.WithTimeout(ctx, healthDBTimeout)
	defer cancel()
	if ping(timeoutCtx) != nil {
		return StatusDown
	}
	return StatusOk
}
