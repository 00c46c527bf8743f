package api

import (
	"net/http"

	authDelivery "taskflow-backend/internal/auth/delivery"
	authUsecase "taskflow-backend/internal/auth/usecase"
	pushDelivery "taskflow-backend/internal/push/delivery"
	pushUsecase "taskflow-backend/internal/push/usecase"
	taskDelivery "taskflow-backend/internal/task/delivery"
	taskUsecase "taskflow-backend/internal/task/usecase"
	"taskflow-backend/pkg/config"
	"taskflow-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	authUsecase authUsecase.AuthUsecase
	config      *config.Config
	logger      *zap.Logger
	authHandler *authDelivery.AuthHandler
	taskHandler *taskDelivery.TaskHandler
	pushHandler *pushDelivery.PushHandler
}

func NewHandler(
	authUc authUsecase.AuthUsecase,
	taskUc taskUsecase.TaskUsecase,
	pushUc pushUsecase.PushUsecase,
	cfg *config.Config,
	log *zap.Logger,
) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		authUsecase: authUc,
		config:      cfg,
		logger:      log,
		authHandler: authDelivery.NewAuthHandler(authUc, log.Named("auth")),
		taskHandler: taskDelivery.NewTaskHandler(taskUc, log.Named("tasks")),
		pushHandler: pushDelivery.NewPushHandler(pushUc, log.Named("push")),
	}
}

// Engine builds the gin engine with middleware and the full route table.
func (h *Handler) Engine() *gin.Engine {
	if h.config.GinMode != "" {
		gin.SetMode(h.config.GinMode)
	}

	r := gin.New()
	r.Use(logger.GinMiddleware(h.logger.Named("http")))
	r.Use(gin.Recovery())
	r.Use(corsMiddleware(h.config.CORSAllowedOrigins))

	SetupRoutes(r, h)
	return r
}

// corsMiddleware reflects the request origin when allowed is empty, otherwise only listed origins.
func corsMiddleware(allowed []string) gin.HandlerFunc {
	allowedSet := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		allowedSet[o] = struct{}{}
	}

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			if _, ok := allowedSet[origin]; ok || len(allowedSet) == 0 {
				c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
				c.Writer.Header().Set("Vary", "Origin")
			}
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
