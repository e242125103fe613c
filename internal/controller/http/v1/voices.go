package v1

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"voice_relay/config"
	"voice_relay/entity"
	"voice_relay/pkg/logger"
)

type voiceRoutes struct {
	voices entity.VoiceUsecase
	l      logger.Interface
}

func newVoiceRoutes(handler *gin.RouterGroup, voices entity.VoiceUsecase, l logger.Interface) {
	r := &voiceRoutes{voices, l}

	h := handler.Group("/voices")
	{
		h.GET("", r.list)
		h.GET("/:file_id", r.get)
	}
}

type voiceListResponse struct {
	Voices []entity.Voice `json:"voices"`
}

// @Summary     List voices
// @Description Stored voices, optionally filtered by a title or caption substring
// @ID          list-voices
// @Tags        voices
// @Produce     json
// @Param       q     query string false "search text"
// @Param       limit query int    false "max results (1..50)"
// @Success     200 {object} voiceListResponse
// @Failure     500 {object} response
// @Security    BearerAuth
// @Router      /voices [get]
func (r *voiceRoutes) list(c *gin.Context) {
	ctx, span := otel.Tracer(traceName).Start(c.Request.Context(), "list-voices")
	defer span.End()

	limit := parseLimit(c.Query("limit"))
	query := c.Query("q")
	span.SetAttributes(attribute.String("query", query), attribute.Int("limit", limit))

	voices, err := r.voices.Search(ctx, query, limit)
	if err != nil {
		r.l.Error(err, "http - v1 - list")
		errorResponse(c, http.StatusInternalServerError, "failed to list voices")
		return
	}

	c.JSON(http.StatusOK, voiceListResponse{voices})
}

// @Summary     Get voice
// @Description One stored voice by Telegram file id
// @ID          get-voice
// @Tags        voices
// @Produce     json
// @Param       file_id path string true "Telegram file id"
// @Success     200 {object} entity.Voice
// @Failure     404 {object} response
// @Failure     500 {object} response
// @Security    BearerAuth
// @Router      /voices/{file_id} [get]
func (r *voiceRoutes) get(c *gin.Context) {
	ctx, span := otel.Tracer(traceName).Start(c.Request.Context(), "get-voice")
	defer span.End()

	v, err := r.voices.Get(ctx, c.Param("file_id"))
	switch {
	case errors.Is(err, entity.ErrVoiceNotFound):
		errorResponse(c, http.StatusNotFound, "voice not found")
		return
	case err != nil:
		r.l.Error(err, "http - v1 - get")
		errorResponse(c, http.StatusInternalServerError, "failed to get voice")
		return
	}

	c.JSON(http.StatusOK, v)
}

func parseLimit(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 || n > config.MaxInlineResults {
		return config.MaxInlineResults
	}
	return n
}
