package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/loantrack/loans"
	"github.com/yourusername/loantrack/stats"
)

type StatsHandler struct {
	Service    *loans.Service
	Aggregator *stats.Aggregator
}

func NewStatsHandler(service *loans.Service, aggregator *stats.Aggregator) *StatsHandler {
	return &StatsHandler{Service: service, Aggregator: aggregator}
}

func queryInt(c *gin.Context, key string, fallback int) int {
	if v, err := strconv.Atoi(c.Query(key)); err == nil {
		return v
	}
	return fallback
}

// GetStatistics returns the aggregate figures for a period window
// (3_months, 6_months, 9_months, 12_months; anything else means all time).
func (h *StatsHandler) GetStatistics(c *gin.Context) {
	result, err := h.Service.Statistics(loans.PeriodWindow(c.Query("period")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetMonthlyInterest returns the zero-filled realized-interest series.
func (h *StatsHandler) GetMonthlyInterest(c *gin.Context) {
	series, err := h.Aggregator.MonthlyInterestIncome(queryInt(c, "months", 12))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, series)
}

// GetStatusDistribution returns loan counts per status.
func (h *StatsHandler) GetStatusDistribution(c *gin.Context) {
	dist, err := h.Aggregator.StatusDistribution()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dist)
}

// GetTopBorrowers ranks borrowers by realized interest.
func (h *StatsHandler) GetTopBorrowers(c *gin.Context) {
	ranking, err := h.Aggregator.InterestByBorrower(queryInt(c, "months", 12), queryInt(c, "limit", 12))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ranking)
}
