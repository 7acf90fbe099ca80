package api

import (
	"errors"
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"compsengine/server/internal/comps"
	"compsengine/server/internal/models"
	"compsengine/server/internal/queue"
)

type Handler struct {
	engine *comps.Engine
	queue  *queue.IngestQueue
	logger *logrus.Logger
}

// PropertyRequest is one property record in an ingest payload.
type PropertyRequest struct {
	Address      string   `json:"address" binding:"required"`
	City         string   `json:"city" binding:"required"`
	State        string   `json:"state" binding:"required"`
	PostalCode   string   `json:"postal_code"`
	ListPrice    *float64 `json:"list_price"`
	Bedrooms     *int     `json:"bedrooms"`
	Bathrooms    *float64 `json:"bathrooms"`
	LivingArea   *float64 `json:"living_area"`
	YearBuilt    *int     `json:"year_built"`
	PropertyType string   `json:"property_type"`
	Status       string   `json:"status"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
}

// ResearchRequest is one deep-research run: the matched address plus its
// ranked comp rows.
type ResearchRequest struct {
	Address string                      `json:"address" binding:"required"`
	City    string                      `json:"city"`
	State   string                      `json:"state"`
	Sales   []models.ResearchCompSale   `json:"sales"`
	Rentals []models.ResearchCompRental `json:"rentals"`
}

func NewHandler(engine *comps.Engine, queue *queue.IngestQueue, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}

	return &Handler{
		engine: engine,
		queue:  queue,
		logger: logger,
	}
}

// GetCompsDashboard returns the full comps report for a property: subject,
// candidates from all three sources, metrics, recommendation, voice summary.
func (h *Handler) GetCompsDashboard(c *gin.Context) {
	id, ok := h.propertyID(c)
	if !ok {
		return
	}

	report, err := h.engine.BuildReport(id)
	if err != nil {
		h.reportError(c, err, "Failed to build comps report")
		return
	}

	c.JSON(http.StatusOK, report)
}

// GetSaleComps returns the sales-only view.
func (h *Handler) GetSaleComps(c *gin.Context) {
	id, ok := h.propertyID(c)
	if !ok {
		return
	}

	report, err := h.engine.BuildSalesReport(id)
	if err != nil {
		h.reportError(c, err, "Failed to build sales report")
		return
	}

	c.JSON(http.StatusOK, report)
}

// GetRentalComps returns the rentals-only view.
func (h *Handler) GetRentalComps(c *gin.Context) {
	id, ok := h.propertyID(c)
	if !ok {
		return
	}

	report, err := h.engine.BuildRentalsReport(id)
	if err != nil {
		h.reportError(c, err, "Failed to build rentals report")
		return
	}

	c.JSON(http.StatusOK, report)
}

// IngestProperties queues a batch of property records for upsert.
func (h *Handler) IngestProperties(c *gin.Context) {
	var reqs []PropertyRequest
	if err := c.ShouldBindJSON(&reqs); err != nil {
		h.logger.WithError(err).Error("Failed to parse properties payload")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request parameters"})
		return
	}
	if len(reqs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Empty properties payload"})
		return
	}

	properties := make([]*models.Property, 0, len(reqs))
	for _, req := range reqs {
		status := req.Status
		if status == "" {
			status = "active"
		}
		properties = append(properties, &models.Property{
			Address:      req.Address,
			City:         req.City,
			State:        req.State,
			PostalCode:   req.PostalCode,
			ListPrice:    req.ListPrice,
			Bedrooms:     req.Bedrooms,
			Bathrooms:    req.Bathrooms,
			LivingArea:   req.LivingArea,
			YearBuilt:    req.YearBuilt,
			PropertyType: req.PropertyType,
			Status:       status,
			Latitude:     req.Latitude,
			Longitude:    req.Longitude,
		})
	}

	h.pushBatch(c, &models.IngestBatch{Properties: properties})
}

// IngestResearch queues a deep-research result for upsert.
func (h *Handler) IngestResearch(c *gin.Context) {
	var req ResearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Error("Failed to parse research payload")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request parameters"})
		return
	}

	for _, s := range req.Sales {
		if s.SalePrice <= 0 || s.SimilarityScore < 0 || s.SimilarityScore > 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Comp sales need a positive price and a similarity score in [0,1]"})
			return
		}
	}
	for _, r := range req.Rentals {
		if r.MonthlyRent <= 0 || r.SimilarityScore < 0 || r.SimilarityScore > 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Comp rentals need a positive rent and a similarity score in [0,1]"})
			return
		}
	}

	h.pushBatch(c, &models.IngestBatch{
		Research: &models.ResearchBatch{
			Record: models.ResearchRecord{
				Address: req.Address,
				City:    req.City,
				State:   req.State,
			},
			Sales:   req.Sales,
			Rentals: req.Rentals,
		},
	})
}

func (h *Handler) pushBatch(c *gin.Context, batch *models.IngestBatch) {
	if err := h.queue.Push(batch); err != nil {
		h.logger.WithError(err).Error("Failed to queue ingest batch")
		if errors.Is(err, queue.ErrQueueFull) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Ingest queue is full, retry later"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to queue batch"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "queued"})
}

func (h *Handler) propertyID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid property id"})
		return 0, false
	}
	return id, true
}

func (h *Handler) reportError(c *gin.Context, err error, msg string) {
	if errors.Is(err, comps.ErrPropertyNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
		return
	}
	h.logger.WithError(err).Error(msg)
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
}
