package handlers

import (
	"churn-prediction-service/internal/core/services"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	artifacts   *services.ArtifactStore
	predictions *services.PredictionCache
}

func New(artifacts *services.ArtifactStore, predictions *services.PredictionCache) *Handler {
	return &Handler{
		artifacts:   artifacts,
		predictions: predictions,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	// Predictions
	r.GET("/predictions", h.ListPredictions)
	r.GET("/predictions/top", h.TopRisk)
	r.GET("/predictions/export", h.ExportPredictions)
	r.GET("/customers/:customer_id", h.LookupCustomer)

	// Distribution
	r.GET("/summary", h.GetSummary)
	r.GET("/charts/distribution.png", h.DistributionChart)
	r.GET("/charts/split.png", h.SplitChart)

	// Model
	r.GET("/model", h.GetModel)
}

// RegisterHealth adds the readiness probe at the router root.
func (h *Handler) RegisterHealth(r gin.IRoutes) {
	r.GET("/healthz", h.Healthz)
}
