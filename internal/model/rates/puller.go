package rates

import (
	"context"
	"time"

	"github.com/jinzhu/now"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"max.ks1230/tcmb-rates/internal/logger"
)

const clockLayout = "15:04"

type ingestRunner interface {
	RunToday(ctx context.Context) (IngestResult, error)
}

type pullerConfig interface {
	Location() *time.Location
	IngestAt() string
	IngestOnStart() bool
	IngestTimeout() time.Duration
}

// Puller triggers one ingestion per day at a fixed wall-clock time.
type Puller struct {
	ingestor ingestRunner
	loc      *time.Location
	offset   time.Duration
	onStart  bool
	timeout  time.Duration
	now      func() time.Time
}

func NewPuller(ingestor ingestRunner, config pullerConfig) (*Puller, error) {
	at, err := time.Parse(clockLayout, config.IngestAt())
	if err != nil {
		return nil, errors.Wrapf(err, "invalid ingest time %q", config.IngestAt())
	}
	return &Puller{
		ingestor: ingestor,
		loc:      config.Location(),
		offset:   time.Duration(at.Hour())*time.Hour + time.Duration(at.Minute())*time.Minute,
		onStart:  config.IngestOnStart(),
		timeout:  config.IngestTimeout(),
		now:      time.Now,
	}, nil
}

// NextRun is the first scheduled moment strictly after from.
func (p *Puller) NextRun(from time.Time) time.Time {
	from = from.In(p.loc)
	next := now.With(from).BeginningOfDay().Add(p.offset)
	if !next.After(from) {
		next = now.With(from.AddDate(0, 0, 1)).BeginningOfDay().Add(p.offset)
	}
	return next
}

func (p *Puller) Pull(ctx context.Context) {
	firstTick := make(chan struct{}, 1)
	if p.onStart {
		firstTick <- struct{}{}
	}

	timer := time.NewTimer(p.untilNext())
	defer timer.Stop()

	logger.Info("Start pulling rates", zap.Time("next", p.NextRun(p.now())))
	for {
		select {
		case <-ctx.Done():
			logger.Info("Stop pulling rates")
			return
		// fake first tick to pull rates immediately
		case <-firstTick:
			p.pullOnce(ctx)
		case <-timer.C:
			p.pullOnce(ctx)
			timer.Reset(p.untilNext())
		}
	}
}

func (p *Puller) untilNext() time.Duration {
	current := p.now()
	return p.NextRun(current).Sub(current)
}

func (p *Puller) pullOnce(ctx context.Context) {
	logger.Info("Pulling today's rates...")

	span, ctx := opentracing.StartSpanFromContext(ctx, "pullRates")
	defer span.Finish()

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	res, err := p.ingestor.RunToday(ctx)
	if err != nil {
		logger.Error("scheduled ingestion failed", zap.Time("date", res.Date), zap.Error(err))
		return
	}
	logger.Info("Successfully pulled rates", zap.Time("date", res.Date), zap.Int("saved", res.Saved))
}
