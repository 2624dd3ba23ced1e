package handlers

import (
	"net/http"

	"churn-prediction-service/internal/adapters/primary/http/dto"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

func (h *Handler) GetModel(c *gin.Context) {
	artifact, err := h.artifacts.Get(c.Request.Context())
	if err != nil {
		log.WithError(err).Error("get model artifact failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToModelArtifactResponse(artifact))
}

func (h *Handler) Healthz(c *gin.Context) {
	status := gin.H{
		"artifacts":   h.artifacts.Loaded(),
		"predictions": h.predictions.Loaded(),
	}
	if !h.artifacts.Loaded() || !h.predictions.Loaded() {
		status["status"] = "unhealthy"
		c.JSON(http.StatusServiceUnavailable, status)
		return
	}
	status["status"] = "ok"
	c.JSON(http.StatusOK, status)
}
