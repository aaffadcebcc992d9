package http

import (
	"time"

	"todoapi/internal/adapter/http/handlers"
	"todoapi/internal/adapter/http/middleware"
	"todoapi/internal/core/ports"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handlers struct {
	Health *handlers.HealthHandler
	Auth   *handlers.AuthHandler
	Todos  *handlers.TodoHandler
}

// NewRouter builds the gin engine with recovery, request logging and an allow-all CORS policy.
func NewRouter(logger *zap.Logger, trustedProxies []string) (*gin.Engine, error) {
	r := gin.New()
	if err := r.SetTrustedProxies(trustedProxies); err != nil {
		return nil, err
	}
	r.Use(
		gin.Recovery(),
		middleware.GinZapMiddleware(logger),
		cors.New(cors.Config{
			AllowAllOrigins: true,
			AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:    []string{"Origin", "Content-Type", "Authorization", "Accept-Language"},
			MaxAge:          12 * time.Hour,
		}),
	)
	return r, nil
}

func RegisterRoutes(r *gin.Engine, tokens ports.TokenIssuer, h Handlers) {
	api := r.Group("/api")
	api.Use(middleware.LanguageMiddleware())
	{
		api.GET("/health", h.Health.CheckHealth)
		api.GET("/health/report", h.Health.CheckHealthReport)

		api.POST("/auth/register", h.Auth.Register)
		api.POST("/auth/login", h.Auth.Login)
		api.GET("/auth/validate", middleware.RequireBearer(tokens), h.Auth.Validate)
	}

	todos := api.Group("/todos", middleware.RequireBearer(tokens))
	{
		todos.GET("", h.Todos.GetAll)
		todos.GET("/filter", h.Todos.Filter)
		todos.GET("/stats/completed", h.Todos.CompletedPercentage)
		todos.GET("/stats/pending", h.Todos.PendingPercentage)
		todos.GET("/:id", h.Todos.GetByID)
		todos.POST("", h.Todos.Create)
		todos.POST("/priority/:level", h.Todos.CreateWithPriority)
		todos.PUT("/:id", h.Todos.Update)
		todos.DELETE("/:id", h.Todos.Delete)
		todos.POST("/:id/soft-delete", h.Todos.SoftDelete)
	}
}
