package handlers

import (
	"net/http"

	"churn-prediction-service/internal/adapters/primary/http/charts"
	"churn-prediction-service/internal/core/domain"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

func (h *Handler) DistributionChart(c *gin.Context) {
	table, err := h.predictions.All(c.Request.Context())
	if err != nil {
		mapDomainError(c, err)
		return
	}

	img, err := charts.Distribution(table, domain.HistogramBins)
	if err != nil {
		log.WithError(err).Error("render distribution chart failed")
		mapDomainError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", img)
}

func (h *Handler) SplitChart(c *gin.Context) {
	summary, err := h.predictions.Summary(c.Request.Context())
	if err != nil {
		mapDomainError(c, err)
		return
	}

	img, err := charts.Split(summary)
	if err != nil {
		log.WithError(err).Error("render split chart failed")
		mapDomainError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", img)
}
