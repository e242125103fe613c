// Package v1 implements routing paths. Each services in own file.
package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"voice_relay/entity"
	"voice_relay/pkg/logger"
)

const traceName = "HTTP-v1"

// NewRouter -.
// Swagger spec:
// @title       Voice Relay API
// @description Read-only catalog of stored voice messages
// @version     1.0
// @host        localhost:8080
// @BasePath    /v1
// @securityDefinitions.apikey BearerAuth
// @in   header
// @name Authorization
func NewRouter(handler *gin.Engine, l logger.Interface, voices entity.VoiceUsecase, store Pinger, metrics http.Handler, token string) {
	handler.Use(requestLogger(l))
	handler.Use(gin.Recovery())

	// Swagger
	swaggerHandler := ginSwagger.DisablingWrapHandler(swaggerFiles.Handler, "DISABLE_SWAGGER_HTTP_HANDLER")
	handler.GET("/swagger/*any", swaggerHandler)

	// K8s probe
	newHealthRoutes(handler, voices, store, l)

	// Prometheus metrics
	if metrics != nil {
		handler.GET("/metrics", gin.WrapH(metrics))
	}

	// Routers
	h := handler.Group("/v1")
	h.Use(bearerAuth(token))
	{
		newVoiceRoutes(h, voices, l)
	}
}

func requestLogger(l logger.Interface) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		l.Debug("http - %s %s - %d - %s", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}
