package tcmb

import (
	"context"
	"time"

	"go.uber.org/zap"
	"max.ks1230/tcmb-rates/internal/entity/currency"
	"max.ks1230/tcmb-rates/internal/logger"
)

// Provider is anything that can fetch a day's bulletin.
type Provider interface {
	FetchRawRates(ctx context.Context, date time.Time) ([]currency.RawRate, error)
}

// SampleRates is served by SampleFallback when the feed cannot be reached.
var SampleRates = []currency.RawRate{
	{Code: currency.USD, Name: "ABD DOLARI", ForexBuying: 32.50, ForexSelling: 32.60, BanknoteBuying: 32.45, BanknoteSelling: 32.65},
	{Code: currency.EUR, Name: "EURO", ForexBuying: 35.20, ForexSelling: 35.30, BanknoteBuying: 35.15, BanknoteSelling: 35.35},
	{Code: currency.GBP, Name: "İNGİLİZ STERLİNİ", ForexBuying: 41.80, ForexSelling: 41.90, BanknoteBuying: 41.75, BanknoteSelling: 41.95},
}

// SampleFallback answers with SampleRates whenever the wrapped provider fails.
// Only meant for demo and local setups: the samples are not real quotes.
type SampleFallback struct {
	provider Provider
}

func NewSampleFallback(provider Provider) *SampleFallback {
	return &SampleFallback{provider: provider}
}

func (f *SampleFallback) FetchRawRates(ctx context.Context, date time.Time) ([]currency.RawRate, error) {
	rates, err := f.provider.FetchRawRates(ctx, date)
	if err == nil {
		return rates, nil
	}

	logger.Warn("rates feed failed, serving sample rates", zap.Error(err))
	res := make([]currency.RawRate, len(SampleRates))
	copy(res, SampleRates)
	return res, nil
}
