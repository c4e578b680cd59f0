package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"pandapos/internal/models"

	"github.com/gin-gonic/gin"
)

// window reads ?from and ?to. Missing bounds default to the last seven days
// ending tomorrow midnight.
func (a *API) window(c *gin.Context) (time.Time, time.Time, bool) {
	from, err := a.timeQuery(c, "from")
	if err != nil {
		badRequest(c, err)
		return time.Time{}, time.Time{}, false
	}
	to, err := a.timeQuery(c, "to")
	if err != nil {
		badRequest(c, err)
		return time.Time{}, time.Time{}, false
	}
	if to.IsZero() {
		now := time.Now().In(a.loc)
		to = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, a.loc).AddDate(0, 0, 1)
	}
	if from.IsZero() {
		from = to.AddDate(0, 0, -7)
	}
	if !from.Before(to) {
		badRequest(c, errors.New("from must be before to"))
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}

func (a *API) day(c *gin.Context) (time.Time, bool) {
	day, err := a.timeQuery(c, "date")
	if err != nil {
		badRequest(c, err)
		return time.Time{}, false
	}
	if day.IsZero() {
		day = time.Now().In(a.loc)
	}
	return day, true
}

// SalesReport totals sales per item over a window
func (a *API) SalesReport(c *gin.Context) {
	from, to, ok := a.window(c)
	if !ok {
		return
	}
	rows, err := a.reports.SalesByItem(c.Request.Context(), from, to)
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"from": from, "to": to, "items": rows})
}

// HourlyReport breaks one day's sales down by hour
func (a *API) HourlyReport(c *gin.Context) {
	day, ok := a.day(c)
	if !ok {
		return
	}
	rows, err := a.reports.HourlySales(c.Request.Context(), day)
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": day.Format("2006-01-02"), "hours": rows})
}

// DailyReport is the end-of-day summary
func (a *API) DailyReport(c *gin.Context) {
	day, ok := a.day(c)
	if !ok {
		return
	}
	sum, err := a.reports.DailySummary(c.Request.Context(), day)
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}

// RestockReport lists inventory that needs reordering
func (a *API) RestockReport(c *gin.Context) {
	items, err := a.reports.RestockReport(c.Request.Context())
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// UsageReport totals inventory consumed over a window
func (a *API) UsageReport(c *gin.Context) {
	from, to, ok := a.window(c)
	if !ok {
		return
	}
	rows, err := a.reports.ProductUsage(c.Request.Context(), from, to)
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"from": from, "to": to, "usage": rows})
}

// ListPromotions returns every promotion
func (a *API) ListPromotions(c *gin.Context) {
	promos, err := a.store.ListPromotions(c.Request.Context())
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, promos)
}

type promotionRequest struct {
	Code        string     `json:"code" binding:"required"`
	Description string     `json:"description"`
	PercentOff  float64    `json:"percent_off"`
	Active      *bool      `json:"active"`
	ExpiresAt   *time.Time `json:"expires_at"`
	MinOrders   int        `json:"min_orders"`
}

// CreatePromotion adds a promo code. It is active unless the body says
// otherwise.
func (a *API) CreatePromotion(c *gin.Context) {
	var req promotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	p := models.Promotion{
		Code:        strings.TrimSpace(req.Code),
		Description: req.Description,
		PercentOff:  req.PercentOff,
		Active:      req.Active == nil || *req.Active,
		ExpiresAt:   req.ExpiresAt,
		MinOrders:   req.MinOrders,
	}
	if p.MinOrders <= 0 {
		p.MinOrders = 3
	}
	if err := a.store.CreatePromotion(c.Request.Context(), &p); err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// SendPromotion emails the promotion to every eligible customer who has
// not received it yet
func (a *API) SendPromotion(c *gin.Context) {
	if a.promos == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "promotional email is not configured"})
		return
	}
	res, err := a.promos.Send(c.Request.Context(), c.Param("code"))
	if err != nil {
		a.respondError(c, err)
		return
	}
	if a.monitor != nil {
		a.monitor.RecordMetric("last_promo_code", res.Code)
		a.monitor.RecordMetric("last_promo_sent", res.Sent)
	}
	c.JSON(http.StatusOK, res)
}
