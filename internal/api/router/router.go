package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/deveshsoni7/SlotSwapper/internal/api/handler"
	"github.com/deveshsoni7/SlotSwapper/internal/api/middleware"
	"github.com/deveshsoni7/SlotSwapper/internal/auth"
	"github.com/deveshsoni7/SlotSwapper/internal/config"
	"github.com/deveshsoni7/SlotSwapper/internal/redis"
)

// Setup wires middleware and routes into a gin engine.
func Setup(cfg *config.Config, h *handler.Handler, tokens *auth.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.ClientOrigin))

	api := r.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{"ok": true})
		})

		authGroup := api.Group("/auth")
		{
			limited := middleware.RateLimit(rdb, 10, time.Minute)
			authGroup.POST("/signup", limited, h.Auth.Signup)
			authGroup.POST("/login", limited, h.Auth.Login)
			authGroup.GET("/me", middleware.JWTAuth(tokens), h.Auth.Me)
		}

		authorized := api.Group("")
		authorized.Use(middleware.JWTAuth(tokens))
		{
			events := authorized.Group("/events")
			{
				events.GET("", h.Slot.List)
				events.POST("", h.Slot.Create)
				events.GET("/week.png", h.Slot.WeekImage)
				events.PUT("/:id", h.Slot.Update)
				events.DELETE("/:id", h.Slot.Delete)
			}

			authorized.GET("/swappable-slots", h.Swap.ListSwappable)
			authorized.POST("/swap-request", h.Swap.Initiate)
			authorized.POST("/swap-response/:requestId", h.Swap.Respond)
			authorized.GET("/swap-requests/incoming", h.Swap.ListIncoming)
			authorized.GET("/swap-requests/outgoing", h.Swap.ListOutgoing)
		}
	}

	return r
}
