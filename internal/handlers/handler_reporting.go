package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/openbooks-app/openbooks/internal/core/domain"
	portssvc "github.com/openbooks-app/openbooks/internal/core/ports/services"
	"github.com/openbooks-app/openbooks/internal/dto"
	"github.com/openbooks-app/openbooks/internal/utils/accounting"
)

// reportingHandler handles HTTP requests for financial reports and the
// balance cache repair endpoints.
type reportingHandler struct {
	reportingService portssvc.ReportingService
	balanceService   portssvc.BalanceService
}

// registerReportingRoutes registers routes related to reports.
func registerReportingRoutes(rg *gin.RouterGroup, reportingService portssvc.ReportingService, balanceService portssvc.BalanceService) {
	h := &reportingHandler{reportingService: reportingService, balanceService: balanceService}

	reports := rg.Group("/reports")
	{
		reports.GET("/trial-balance", h.trialBalance)
		reports.GET("/income-statement", h.incomeStatement)
		reports.GET("/balance-sheet", h.balanceSheet)
	}

	balances := rg.Group("/balances")
	{
		balances.POST("/rebuild", h.rebuildAll)
		balances.POST("/rebuild/:code", h.rebuildAccount)
	}
}

const dateLayout = "2006-01-02"

// parseDateQuery reads a YYYY-MM-DD query parameter, defaulting to def when
// absent. The returned bool reports whether parsing succeeded.
func parseDateQuery(c *gin.Context, name string, def time.Time) (time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	t, err := time.ParseInLocation(dateLayout, raw, time.UTC)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": name + " must be YYYY-MM-DD"})
		return time.Time{}, false
	}
	return t, true
}

// parseAsOfQuery reads the as-of date for snapshot reports. The documented
// parameter is as_of; asOf is accepted as an alias.
func parseAsOfQuery(c *gin.Context) (time.Time, bool) {
	name := "as_of"
	if c.Query(name) == "" && c.Query("asOf") != "" {
		name = "asOf"
	}
	return parseDateQuery(c, name, time.Now().UTC())
}

// trialBalance serves both variants: from/to bounds a period report, a lone
// as_of (or nothing, defaulting to today) reports cumulative totals.
func (h *reportingHandler) trialBalance(c *gin.Context) {
	if c.Query("from") != "" || c.Query("to") != "" {
		from, ok := parseDateQuery(c, "from", time.Time{})
		if !ok {
			return
		}
		to, ok := parseDateQuery(c, "to", time.Now().UTC())
		if !ok {
			return
		}
		rows, err := h.reportingService.TrialBalancePeriod(c.Request.Context(), from, to)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.ToTrialBalancePeriodResponse(rows, from, to))
		return
	}

	asOf, ok := parseAsOfQuery(c)
	if !ok {
		return
	}

	if c.Query("verify") == "true" {
		verified, verr := h.reportingService.TrialBalanceFromCache(c.Request.Context(), asOf)
		if verr != nil {
			respondError(c, verr)
			return
		}
		c.JSON(http.StatusOK, dto.ToTrialBalanceResponse(verified, asOf))
		return
	}

	rows, err := h.reportingService.TrialBalance(c.Request.Context(), asOf)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToTrialBalanceResponse(rows, asOf))
}

func (h *reportingHandler) incomeStatement(c *gin.Context) {
	from, ok := parseDateQuery(c, "from", time.Time{})
	if !ok {
		return
	}
	to, ok := parseDateQuery(c, "to", time.Now().UTC())
	if !ok {
		return
	}

	report, err := h.reportingService.IncomeStatement(c.Request.Context(), from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToIncomeStatementResponse(report, from, to))
}

func (h *reportingHandler) balanceSheet(c *gin.Context) {
	asOf, ok := parseAsOfQuery(c)
	if !ok {
		return
	}

	report, err := h.reportingService.BalanceSheet(c.Request.Context(), asOf)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToBalanceSheetResponse(report, asOf))
}

func (h *reportingHandler) rebuildAll(c *gin.Context) {
	count, err := h.balanceService.RebuildAll(c.Request.Context(), actorID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rebuilt": count})
}

func (h *reportingHandler) rebuildAccount(c *gin.Context) {
	period, ok := parseDateQuery(c, "period", accounting.PeriodOf(time.Now().UTC()))
	if !ok {
		return
	}

	balance, err := h.balanceService.Rebuild(c.Request.Context(), c.Param("code"), period, actorID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToBalanceResponses([]domain.Balance{*balance})[0])
}
