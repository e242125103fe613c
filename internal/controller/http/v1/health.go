package v1

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"voice_relay/entity"
	"voice_relay/pkg/logger"
)

// Pinger checks that the backing store is open and usable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type healthRoutes struct {
	voices entity.VoiceUsecase
	store  Pinger
	l      logger.Interface
}

type healthResponse struct {
	Status string `json:"status" example:"ok"`
	Voices int    `json:"voices" example:"12"`
}

func newHealthRoutes(handler *gin.Engine, voices entity.VoiceUsecase, store Pinger, l logger.Interface) {
	r := &healthRoutes{voices, store, l}
	handler.GET("/healthz", r.health)
}

// @Summary     Health check
// @Description Reports whether the voice store is reachable
// @ID          health
// @Tags        health
// @Produce     json
// @Success     200 {object} healthResponse
// @Failure     503 {object} response
// @Router      /healthz [get]
func (r *healthRoutes) health(c *gin.Context) {
	if r.store != nil {
		if err := r.store.Ping(c.Request.Context()); err != nil {
			r.l.Error(err, "http - health - ping")
			errorResponse(c, http.StatusServiceUnavailable, "store unavailable")
			return
		}
	}

	n, err := r.voices.Count(c.Request.Context())
	if err != nil {
		r.l.Error(err, "http - health")
		errorResponse(c, http.StatusServiceUnavailable, "store unavailable")
		return
	}

	c.JSON(http.StatusOK, healthResponse{Status: "ok", Voices: n})
}
