package rates

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"
	"max.ks1230/tcmb-rates/internal/entity/currency"
)

type storageMock struct {
	mock.Mock
}

func (m *storageMock) SaveRates(ctx context.Context, recs []currency.RateRecord) ([]string, error) {
	args := m.Called(ctx, recs)
	codes, _ := args.Get(0).([]string)
	return codes, args.Error(1)
}

func (m *storageMock) LatestDate(ctx context.Context) (time.Time, bool, error) {
	args := m.Called(ctx)
	return args.Get(0).(time.Time), args.Bool(1), args.Error(2)
}

func (m *storageMock) RatesAt(ctx context.Context, date time.Time) ([]currency.RateRecord, error) {
	args := m.Called(ctx, date)
	recs, _ := args.Get(0).([]currency.RateRecord)
	return recs, args.Error(1)
}

func (m *storageMock) RateAt(ctx context.Context, date time.Time, code string) (currency.RateRecord, bool, error) {
	args := m.Called(ctx, date, code)
	return args.Get(0).(currency.RateRecord), args.Bool(1), args.Error(2)
}

func (m *storageMock) History(ctx context.Context, code string, from, to *time.Time, limit uint64) ([]currency.RateRecord, error) {
	args := m.Called(ctx, code, from, to, limit)
	recs, _ := args.Get(0).([]currency.RateRecord)
	return recs, args.Error(1)
}

func (m *storageMock) Stats(ctx context.Context) (currency.Stats, error) {
	args := m.Called(ctx)
	return args.Get(0).(currency.Stats), args.Error(1)
}

type cacheMock struct {
	mock.Mock
}

func (m *cacheMock) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

func (m *cacheMock) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return m.Called(ctx, key, value, ttl).Error(0)
}

func (m *cacheMock) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

type publisherMock struct {
	mock.Mock
}

func (m *publisherMock) PublishIngested(ctx context.Context, event currency.IngestedEvent) error {
	return m.Called(ctx, event).Error(0)
}

type stubProvider struct {
	mu    sync.Mutex
	rates []currency.RawRate
	err   error
	dates []time.Time
}

func (p *stubProvider) FetchRawRates(_ context.Context, date time.Time) ([]currency.RawRate, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dates = append(p.dates, date)
	return p.rates, p.err
}

type appConfig struct {
	loc *time.Location
}

func (c appConfig) Location() *time.Location { return c.loc }

type ttlConfig struct{}

func (ttlConfig) TTL() time.Duration     { return 300 * time.Second }
func (ttlConfig) Timeout() time.Duration { return time.Second }
