package handlers

import (
	"fmt"
	"net/http"

	"churn-prediction-service/internal/adapters/primary/http/dto"
	"churn-prediction-service/internal/core/domain"
	"churn-prediction-service/internal/core/services"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

const exportFilename = "churn_predictions.csv"

func (h *Handler) ListPredictions(c *gin.Context) {
	table, err := h.predictions.All(c.Request.Context())
	if err != nil {
		log.WithError(err).Error("list predictions failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ListPredictionsResponse{
		Items:   dto.ToPredictionResponses(table, table.Records),
		Total:   table.Len(),
		Columns: table.ExportColumns(),
	})
}

func (h *Handler) TopRisk(c *gin.Context) {
	var q dto.TopRiskQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrInvalidTopN.Error()})
		return
	}

	top, err := h.predictions.TopRisk(c.Request.Context(), q.N)
	if err != nil {
		mapDomainError(c, err)
		return
	}
	table, err := h.predictions.All(c.Request.Context())
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.TopRiskResponse{
		Items:     dto.ToPredictionResponses(table, top),
		Requested: q.N,
		Returned:  len(top),
	})
}

func (h *Handler) LookupCustomer(c *gin.Context) {
	customerID := c.Param("customer_id")
	if customerID == "" {
		mapDomainError(c, domain.ErrInvalidCustomerID)
		return
	}

	rec, found, err := h.predictions.Lookup(c.Request.Context(), customerID)
	if err != nil {
		log.WithError(err).Error("lookup customer failed")
		mapDomainError(c, err)
		return
	}
	if !found {
		mapDomainError(c, domain.ErrCustomerNotFound)
		return
	}
	table, err := h.predictions.All(c.Request.Context())
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToPredictionResponse(table, *rec))
}

func (h *Handler) ExportPredictions(c *gin.Context) {
	var q dto.ExportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		mapDomainError(c, fmt.Errorf("%w: %v", domain.ErrUnsupportedEncoding, err))
		return
	}

	data, err := h.predictions.Export(c.Request.Context(), q.Encoding)
	if err != nil {
		log.WithError(err).Error("export predictions failed")
		mapDomainError(c, err)
		return
	}

	charset := q.Encoding
	if charset == "" {
		charset = services.DefaultExportEncoding
	}
	c.Header("Content-Disposition", `attachment; filename="`+exportFilename+`"`)
	c.Data(http.StatusOK, "text/csv; charset="+charset, data)
}

func (h *Handler) GetSummary(c *gin.Context) {
	summary, err := h.predictions.Summary(c.Request.Context())
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}
