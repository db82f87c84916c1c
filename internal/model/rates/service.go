package rates

import (
	"context"
	"encoding/json"
	"math"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"max.ks1230/tcmb-rates/internal/clients/cache"
	"max.ks1230/tcmb-rates/internal/entity/currency"
	"max.ks1230/tcmb-rates/internal/logger"
	"max.ks1230/tcmb-rates/internal/model/customerr"
)

const (
	LatestRatesKey = "latest_rates"
	HistoryLimit   = 100

	SourceCache    = "cache"
	SourceDatabase = "database"

	conversionPlaces = 4
)

type ratesReader interface {
	LatestDate(ctx context.Context) (time.Time, bool, error)
	RatesAt(ctx context.Context, date time.Time) ([]currency.RateRecord, error)
	RateAt(ctx context.Context, date time.Time, code string) (currency.RateRecord, bool, error)
	History(ctx context.Context, code string, from, to *time.Time, limit uint64) ([]currency.RateRecord, error)
	Stats(ctx context.Context) (currency.Stats, error)
}

type ratesCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

type LatestRates struct {
	Records []currency.RateRecord
	Source  string
}

type Conversion struct {
	Amount    float64
	From      string
	To        string
	Converted float64
	RateDate  time.Time
	FromRate  float64
	ToRate    float64
}

// Service answers read queries. Only LatestRates goes through the cache,
// history and conversion always read the store.
type Service struct {
	storage      ratesReader
	cache        ratesCache
	cacheTTL     time.Duration
	cacheTimeout time.Duration
}

func NewService(storage ratesReader, cache ratesCache, cacheConf cacheConfig) *Service {
	return &Service{
		storage:      storage,
		cache:        cache,
		cacheTTL:     cacheConf.TTL(),
		cacheTimeout: cacheConf.Timeout(),
	}
}

func (s *Service) LatestRates(ctx context.Context) (LatestRates, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "latestRates")
	defer span.Finish()

	if recs, ok := s.cachedLatest(ctx); ok {
		span.SetTag("source", SourceCache)
		return LatestRates{Records: recs, Source: SourceCache}, nil
	}

	date, ok, err := s.storage.LatestDate(ctx)
	if err != nil {
		ext.Error.Set(span, true)
		return LatestRates{}, errors.Wrap(err, "latest rates")
	}
	if !ok {
		return LatestRates{}, customerr.NotFound("", customerr.ErrNoRates)
	}

	recs, err := s.storage.RatesAt(ctx, date)
	if err != nil {
		ext.Error.Set(span, true)
		return LatestRates{}, errors.Wrap(err, "latest rates")
	}
	s.cacheLatest(ctx, recs)

	span.SetTag("source", SourceDatabase)
	return LatestRates{Records: recs, Source: SourceDatabase}, nil
}

func (s *Service) cachedLatest(ctx context.Context) ([]currency.RateRecord, bool) {
	if s.cache == nil {
		return nil, false
	}
	ctx, cancel := context.WithTimeout(ctx, s.cacheTimeout)
	defer cancel()

	data, err := s.cache.Get(ctx, LatestRatesKey)
	if errors.Is(err, cache.ErrMiss) {
		observeCache(cacheMiss)
		return nil, false
	}
	if err != nil {
		observeCache(cacheError)
		logger.Warn("cache read failed", zap.Error(err))
		return nil, false
	}

	var recs []currency.RateRecord
	if err = json.Unmarshal(data, &recs); err != nil {
		observeCache(cacheError)
		logger.Warn("cached latest rates are corrupted", zap.Error(err))
		return nil, false
	}
	observeCache(cacheHit)
	return recs, true
}

func (s *Service) cacheLatest(ctx context.Context, recs []currency.RateRecord) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(recs)
	if err != nil {
		logger.Warn("cannot encode latest rates", zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(ctx, s.cacheTimeout)
	defer cancel()
	if err = s.cache.Set(ctx, LatestRatesKey, data, s.cacheTTL); err != nil {
		logger.Warn("cache write failed", zap.Error(err))
	}
}

// History returns at most HistoryLimit records of code, newest first.
// Both bounds are inclusive and optional; an empty code means USD.
func (s *Service) History(ctx context.Context, code string, from, to *time.Time) ([]currency.RateRecord, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "history")
	defer span.Finish()

	code = currency.Normalize(code)
	if code == "" {
		code = currency.USD
	}
	span.SetTag("currency", code)

	from = datePtr(from)
	to = datePtr(to)

	recs, err := s.storage.History(ctx, code, from, to, HistoryLimit)
	if err != nil {
		ext.Error.Set(span, true)
		return nil, errors.Wrap(err, "history")
	}
	return recs, nil
}

func datePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := currency.DateOf(*t)
	return &d
}

// Convert prices amount through the local currency using sell rates of the
// most recent stored day. Buy rates are never used.
func (s *Service) Convert(ctx context.Context, amount float64, from, to string) (Conversion, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "convert")
	defer span.Finish()

	from = currency.Normalize(from)
	to = currency.Normalize(to)

	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return Conversion{}, customerr.Validation("amount", "must be a positive number")
	}
	if from == "" {
		return Conversion{}, customerr.Validation("from_currency", "is required")
	}
	if to == "" {
		return Conversion{}, customerr.Validation("to_currency", "is required")
	}

	refDate, ok, err := s.storage.LatestDate(ctx)
	if err != nil {
		ext.Error.Set(span, true)
		return Conversion{}, errors.Wrap(err, "convert")
	}
	if !ok {
		return Conversion{}, customerr.NotFound("", customerr.ErrNoRates)
	}

	fromRate, err := s.sellRate(ctx, refDate, from, customerr.ErrFromCurrencyNotFound)
	if err != nil {
		return Conversion{}, err
	}
	// from the local currency the target must be a stored quote, so TRY -> TRY is NotFound
	lookupTo := s.sellRate
	if from == currency.TRY {
		lookupTo = s.storedSellRate
	}
	toRate, err := lookupTo(ctx, refDate, to, customerr.ErrToCurrencyNotFound)
	if err != nil {
		return Conversion{}, err
	}

	converted, _ := decimal.NewFromFloat(amount).
		Mul(decimal.NewFromFloat(fromRate)).
		Div(decimal.NewFromFloat(toRate)).
		Round(conversionPlaces).
		Float64()

	return Conversion{
		Amount:    amount,
		From:      from,
		To:        to,
		Converted: converted,
		RateDate:  refDate,
		FromRate:  fromRate,
		ToRate:    toRate,
	}, nil
}

func (s *Service) sellRate(ctx context.Context, date time.Time, code string, notFound error) (float64, error) {
	if code == currency.TRY {
		return 1, nil
	}
	return s.storedSellRate(ctx, date, code, notFound)
}

func (s *Service) storedSellRate(ctx context.Context, date time.Time, code string, notFound error) (float64, error) {
	rec, ok, err := s.storage.RateAt(ctx, date, code)
	if err != nil {
		return 0, errors.Wrap(err, "convert")
	}
	if !ok || rec.SellRate <= 0 {
		return 0, customerr.NotFound(code, notFound)
	}
	return rec.SellRate, nil
}

func (s *Service) Stats(ctx context.Context) (currency.Stats, error) {
	stats, err := s.storage.Stats(ctx)
	return stats, errors.Wrap(err, "stats")
}

// Currencies lists the most recent day's records followed by the local currency.
func (s *Service) Currencies(ctx context.Context) ([]currency.RateRecord, error) {
	date, ok, err := s.storage.LatestDate(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "currencies")
	}
	if !ok {
		return nil, customerr.NotFound("", customerr.ErrNoRates)
	}

	recs, err := s.storage.RatesAt(ctx, date)
	if err != nil {
		return nil, errors.Wrap(err, "currencies")
	}
	return append(recs, currency.LocalRecord(date)), nil
}
