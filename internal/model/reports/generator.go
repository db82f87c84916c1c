package reports

import (
	"context"
	"sort"
	"time"

	"github.com/jinzhu/now"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"max.ks1230/tcmb-rates/internal/entity/currency"
	"max.ks1230/tcmb-rates/internal/logger"
	"max.ks1230/tcmb-rates/internal/model/customerr"
)

const (
	PeriodWeek  = "week"
	PeriodMonth = "month"
	PeriodYear  = "year"

	// a year of daily bulletins fits
	reportLimit = 400
)

var periodStarts = map[string]func(*now.Now) time.Time{
	PeriodWeek:  (*now.Now).BeginningOfWeek,
	PeriodMonth: (*now.Now).BeginningOfMonth,
	PeriodYear:  (*now.Now).BeginningOfYear,
}

var calendar = &now.Config{
	WeekStartDay: time.Monday,
	TimeLocation: time.UTC,
}

type ratesStorage interface {
	History(ctx context.Context, code string, from, to *time.Time, limit uint64) ([]currency.RateRecord, error)
}

type config interface {
	Location() *time.Location
}

// Report summarises sell rates of one currency since the start of the
// current week, month or year.
type Report struct {
	Code          string
	Period        string
	From          time.Time
	To            time.Time
	Samples       int
	First         float64
	Last          float64
	Min           float64
	Max           float64
	Average       float64
	ChangePercent float64
}

type Generator struct {
	storage ratesStorage
	loc     *time.Location
	now     func() time.Time
}

func NewGenerator(config config, storage ratesStorage) *Generator {
	return &Generator{
		storage: storage,
		loc:     config.Location(),
		now:     time.Now,
	}
}

// Generate builds the report for code. An empty period means month.
func (g *Generator) Generate(ctx context.Context, code, period string) (Report, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "generateReport")
	defer span.Finish()

	logger.Info("Generate report - start", zap.String("code", code), zap.String("period", period))
	defer logger.Info("Generate report - end")

	code = currency.Normalize(code)
	if code == "" {
		code = currency.USD
	}
	if period == "" {
		period = PeriodMonth
	}
	startOf, ok := periodStarts[period]
	if !ok {
		return Report{}, customerr.Validation("period", "should be one of week, month, year")
	}

	to := currency.DateOf(g.now().In(g.loc))
	from := startOf(calendar.With(to))

	recs, err := g.storage.History(ctx, code, &from, &to, reportLimit)
	if err != nil {
		return Report{}, errors.Wrap(err, "generate report")
	}
	if len(recs) == 0 {
		return Report{}, customerr.NotFound(code, customerr.ErrNoRates)
	}

	report := summarise(recs)
	report.Code = code
	report.Period = period
	report.From = from
	report.To = to
	return report, nil
}

func summarise(recs []currency.RateRecord) Report {
	sorted := make([]currency.RateRecord, len(recs))
	copy(sorted, recs)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	first := sorted[0].SellRate
	last := sorted[len(sorted)-1].SellRate
	minRate, maxRate := first, first
	sum := decimal.Zero
	for _, rec := range sorted {
		if rec.SellRate < minRate {
			minRate = rec.SellRate
		}
		if rec.SellRate > maxRate {
			maxRate = rec.SellRate
		}
		sum = sum.Add(decimal.NewFromFloat(rec.SellRate))
	}

	avg, _ := sum.Div(decimal.NewFromInt(int64(len(sorted)))).Round(4).Float64()
	var change float64
	if first > 0 {
		change, _ = decimal.NewFromFloat(last).
			Sub(decimal.NewFromFloat(first)).
			Div(decimal.NewFromFloat(first)).
			Mul(decimal.NewFromInt(100)).
			Round(2).
			Float64()
	}

	return Report{
		Samples:       len(sorted),
		First:         first,
		Last:          last,
		Min:           minRate,
		Max:           maxRate,
		Average:       avg,
		ChangePercent: change,
	}
}

func ReportPeriods() []string {
	res := make([]string, 0, len(periodStarts))
	for k := range periodStarts {
		res = append(res, k)
	}
	sort.Strings(res)
	return res
}
