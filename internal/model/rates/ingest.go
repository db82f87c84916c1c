package rates

import (
	"context"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
	"go.uber.org/zap"
	"max.ks1230/tcmb-rates/internal/entity/currency"
	"max.ks1230/tcmb-rates/internal/logger"
	"max.ks1230/tcmb-rates/internal/model/customerr"
)

type ratesWriter interface {
	SaveRates(ctx context.Context, recs []currency.RateRecord) ([]string, error)
}

type ratesProvider interface {
	FetchRawRates(ctx context.Context, date time.Time) ([]currency.RawRate, error)
}

type cacheInvalidator interface {
	Delete(ctx context.Context, key string) error
}

type ingestedPublisher interface {
	PublishIngested(ctx context.Context, event currency.IngestedEvent) error
}

type config interface {
	Location() *time.Location
}

type cacheConfig interface {
	TTL() time.Duration
	Timeout() time.Duration
}

type IngestResult struct {
	Date     time.Time
	Received int
	Saved    int
}

// Ingestor turns feed output into stored rate records. It does not care what
// triggered it: the daily puller, the HTTP endpoint and the CLI all call Run.
type Ingestor struct {
	storage      ratesWriter
	provider     ratesProvider
	cache        cacheInvalidator
	publisher    ingestedPublisher
	loc          *time.Location
	cacheTimeout time.Duration
	now          func() time.Time
}

// NewIngestor accepts a nil cache, in which case there is nothing to invalidate.
func NewIngestor(storage ratesWriter, provider ratesProvider, cache cacheInvalidator, config config, cacheConf cacheConfig) *Ingestor {
	return &Ingestor{
		storage:      storage,
		provider:     provider,
		cache:        cache,
		loc:          config.Location(),
		cacheTimeout: cacheConf.Timeout(),
		now:          time.Now,
	}
}

// SetPublisher enables "rates ingested" notifications.
func (i *Ingestor) SetPublisher(publisher ingestedPublisher) {
	i.publisher = publisher
}

// Today is the current calendar day in the configured timezone.
func (i *Ingestor) Today() time.Time {
	return currency.DateOf(i.now().In(i.loc))
}

func (i *Ingestor) RunToday(ctx context.Context) (IngestResult, error) {
	return i.Run(ctx, i.Today())
}

// Run fetches the bulletin for date and ingests it.
func (i *Ingestor) Run(ctx context.Context, date time.Time) (IngestResult, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "runIngestion")
	defer span.Finish()

	date = currency.DateOf(date)
	start := time.Now()

	raw, err := i.provider.FetchRawRates(ctx, date)
	if err != nil {
		ext.Error.Set(span, true)
		observeIngest(time.Since(start), statusUpstream, 0)
		logger.Error("cannot fetch rates", zap.Time("date", date), zap.Error(err))
		return IngestResult{Date: date}, customerr.Upstream(err)
	}
	return i.Ingest(ctx, date, raw)
}

// Ingest stores every valid raw rate that is not stored yet for date.
// Either all new rows are committed or none are.
func (i *Ingestor) Ingest(ctx context.Context, date time.Time, raw []currency.RawRate) (IngestResult, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "ingestRates")
	defer span.Finish()

	start := time.Now()
	date = currency.DateOf(date)
	res := IngestResult{Date: date, Received: len(raw)}

	recs := i.normalize(date, raw)
	if len(recs) == 0 {
		logger.Warn("no rates to ingest, feed may not be published yet",
			zap.Time("date", date), zap.Int("received", len(raw)))
		observeIngest(time.Since(start), statusEmpty, 0)
		return res, nil
	}

	savedCodes, err := i.storage.SaveRates(ctx, recs)
	if err != nil {
		ext.Error.Set(span, true)
		observeIngest(time.Since(start), statusPersistence, 0)
		logger.Error("cannot save rates", zap.Time("date", date), zap.Error(err))
		return res, customerr.Persistence(err)
	}
	saved := len(savedCodes)
	res.Saved = saved
	span.SetTag("saved", saved)
	observeIngest(time.Since(start), statusOK, saved)

	logger.Info("rates ingested",
		zap.Time("date", date),
		zap.Int("received", len(raw)),
		zap.Int("saved", saved))

	if saved > 0 {
		i.invalidateLatest(ctx)
		i.publish(ctx, date, savedCodes)
	}
	return res, nil
}

func (i *Ingestor) normalize(date time.Time, raw []currency.RawRate) []currency.RateRecord {
	created := i.now().UTC()
	seen := make(map[string]struct{}, len(raw))
	recs := make([]currency.RateRecord, 0, len(raw))

	for _, r := range raw {
		code := currency.Normalize(r.Code)
		if code == "" || code == currency.TRY {
			continue
		}
		// a non-positive buy rate means the bank did not quote the currency that day
		if r.ForexBuying <= 0 {
			continue
		}
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}

		if r.ForexSelling > 0 && r.ForexBuying > r.ForexSelling {
			logger.Warn("buy rate above sell rate",
				zap.String("code", code),
				zap.Float64("buy", r.ForexBuying),
				zap.Float64("sell", r.ForexSelling))
		}

		recs = append(recs, currency.RateRecord{
			Date:              date,
			Code:              code,
			Name:              r.Name,
			BuyRate:           r.ForexBuying,
			SellRate:          r.ForexSelling,
			EffectiveBuyRate:  r.BanknoteBuying,
			EffectiveSellRate: r.BanknoteSelling,
			CreatedAt:         created,
		})
	}
	return recs
}

func (i *Ingestor) invalidateLatest(ctx context.Context) {
	if i.cache == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, i.cacheTimeout)
	defer cancel()

	if err := i.cache.Delete(ctx, LatestRatesKey); err != nil {
		logger.Warn("cannot invalidate latest rates cache", zap.Error(err))
	}
}

// publish announces the rows written by this run. Codes skipped as already
// stored are not part of the event.
func (i *Ingestor) publish(ctx context.Context, date time.Time, savedCodes []string) {
	if i.publisher == nil {
		return
	}

	err := i.publisher.PublishIngested(ctx, currency.IngestedEvent{
		Date:  date,
		Saved: len(savedCodes),
		Codes: savedCodes,
	})
	if err != nil {
		logger.Warn("cannot publish ingested event", zap.Error(err))
	}
}
