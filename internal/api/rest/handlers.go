package rest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"max.ks1230/tcmb-rates/internal/entity/currency"
	"max.ks1230/tcmb-rates/internal/logger"
	"max.ks1230/tcmb-rates/internal/model/customerr"
	"max.ks1230/tcmb-rates/internal/model/rates"
	"max.ks1230/tcmb-rates/internal/model/reports"
)

const healthTimeout = 2 * time.Second

type ratesService interface {
	LatestRates(ctx context.Context) (rates.LatestRates, error)
	History(ctx context.Context, code string, from, to *time.Time) ([]currency.RateRecord, error)
	Convert(ctx context.Context, amount float64, from, to string) (rates.Conversion, error)
	Stats(ctx context.Context) (currency.Stats, error)
	Currencies(ctx context.Context) ([]currency.RateRecord, error)
}

type reportGenerator interface {
	Generate(ctx context.Context, code, period string) (reports.Report, error)
}

type ingestTrigger interface {
	RunToday(ctx context.Context) (rates.IngestResult, error)
}

type pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	rates    ratesService
	reports  reportGenerator
	ingestor ingestTrigger
	db       pinger
	cache    string
}

// NewHandler takes the name of the active cache backend for health output
// ("none" when reads go straight to the store).
func NewHandler(rates ratesService, reports reportGenerator, ingestor ingestTrigger, db pinger, cacheBackend string) *Handler {
	return &Handler{
		rates:    rates,
		reports:  reports,
		ingestor: ingestor,
		db:       db,
		cache:    cacheBackend,
	}
}

func (h *Handler) root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "TCMB exchange rates API",
		"endpoints": gin.H{
			"health":     "/api/health",
			"latest":     "/api/rates/latest",
			"history":    "/api/rates/history",
			"report":     "/api/rates/report",
			"update":     "/api/rates/update",
			"stats":      "/api/stats",
			"convert":    "/api/convert",
			"currencies": "/api/currencies",
		},
	})
}

func (h *Handler) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		logger.Error("health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "unhealthy",
			"database": "disconnected",
			"cache":    h.cache,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"database":  "connected",
		"cache":     h.cache,
		"timestamp": time.Now().UTC(),
	})
}

func (h *Handler) latestRates(c *gin.Context) {
	latest, err := h.rates.LatestRates(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    toRateResponses(latest.Records),
		"source":  latest.Source,
		"count":   len(latest.Records),
	})
}

func (h *Handler) history(c *gin.Context) {
	from, err := queryDate(c, "start_date")
	if err != nil {
		writeError(c, err)
		return
	}
	to, err := queryDate(c, "end_date")
	if err != nil {
		writeError(c, err)
		return
	}

	code := currency.Normalize(c.DefaultQuery("currency", currency.USD))
	recs, err := h.rates.History(c.Request.Context(), code, from, to)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"data":     toRateResponses(recs),
		"currency": code,
		"count":    len(recs),
	})
}

func (h *Handler) report(c *gin.Context) {
	report, err := h.reports.Generate(c.Request.Context(), c.DefaultQuery("currency", currency.USD), c.Query("period"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    toReportResponse(report),
	})
}

func queryDate(c *gin.Context, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	date, err := currency.ParseDate(raw)
	if err != nil {
		return nil, customerr.Validation(key, "should be YYYY-MM-DD")
	}
	return &date, nil
}

func (h *Handler) triggerIngestion(c *gin.Context) {
	res, err := h.ingestor.RunToday(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"message":     fmt.Sprintf("%d new rates saved", res.Saved),
		"saved_count": res.Saved,
		"date":        formatDate(res.Date),
	})
}

func (h *Handler) stats(c *gin.Context) {
	stats, err := h.rates.Stats(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    stats,
	})
}

func (h *Handler) convert(c *gin.Context) {
	var req convertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, customerr.Validation("", "amount, from_currency and to_currency are required, amount must be a number"))
		return
	}
	amount, err := req.Amount.Float64()
	if err != nil {
		writeError(c, customerr.Validation("amount", "must be a number"))
		return
	}

	res, err := h.rates.Convert(c.Request.Context(), amount, req.FromCurrency, req.ToCurrency)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    toConvertResponse(res),
	})
}

func (h *Handler) currencies(c *gin.Context) {
	recs, err := h.rates.Currencies(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    toRateResponses(recs),
		"count":   len(recs),
	})
}

func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	msg := "internal server error"

	switch {
	case customerr.IsValidation(err):
		status, msg = http.StatusBadRequest, err.Error()
	case customerr.IsNotFound(err):
		status, msg = http.StatusNotFound, err.Error()
	case customerr.IsUpstream(err):
		msg = "rates feed is unavailable"
	case customerr.IsPersistence(err):
		msg = "rates could not be saved"
	}

	if status == http.StatusInternalServerError {
		logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"error":   msg,
	})
}
