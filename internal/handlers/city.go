package handlers

import (
	"errors"
	"net/http"

	"oms-customers/internal/database"
	"oms-customers/internal/metrics"
	"oms-customers/internal/middleware"
	"oms-customers/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const cityLookupLimit = 10

type CityHandler struct {
	repo CitySearcher
	log  *logrus.Logger
}

func NewCityHandler(repo CitySearcher, log *logrus.Logger) *CityHandler {
	return &CityHandler{repo: repo, log: log}
}

// Lookup handles GET /customers/cities?term=. It never fails the request:
// autocomplete degrades to an empty list when the store misbehaves.
func (h *CityHandler) Lookup(c *gin.Context) {
	term := c.Query("term")
	if term == "" {
		metrics.CityLookups.WithLabelValues("empty").Inc()
		c.JSON(http.StatusOK, []models.CityOption{})
		return
	}

	cities, err := h.repo.SearchActiveCities(c.Request.Context(), term, cityLookupLimit)
	if err != nil {
		metrics.CityLookups.WithLabelValues("error").Inc()
		h.log.WithError(err).
			WithField("request_id", middleware.RequestIDFrom(c)).
			Error("city query failed")

		if errors.Is(err, database.ErrUnavailable) {
			c.JSON(http.StatusOK, gin.H{"error": "Database connection failed."})
			return
		}
		c.JSON(http.StatusOK, []models.CityOption{})
		return
	}

	metrics.CityLookups.WithLabelValues("ok").Inc()
	c.JSON(http.StatusOK, cities)
}
