package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"max.ks1230/tcmb-rates/internal/entity/currency"
)

type rateKey struct {
	date time.Time
	code string
}

// InMemStorage keeps rate records in a map keyed like the unique index of the table.
// Used by the dev profile and by tests.
type InMemStorage struct {
	mu    sync.RWMutex
	rates map[rateKey]currency.RateRecord
}

func NewInMemStorage() *InMemStorage {
	return &InMemStorage{rates: make(map[rateKey]currency.RateRecord)}
}

func (s *InMemStorage) Ping(context.Context) error {
	return nil
}

func (s *InMemStorage) SaveRates(ctx context.Context, recs []currency.RateRecord) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	saved := make([]string, 0, len(recs))
	for _, rec := range recs {
		rec.Date = currency.DateOf(rec.Date)
		k := rateKey{date: rec.Date, code: rec.Code}
		if _, ok := s.rates[k]; ok {
			continue
		}
		s.rates[k] = rec
		saved = append(saved, rec.Code)
	}
	return saved, nil
}

func (s *InMemStorage) LatestDate(context.Context) (time.Time, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest time.Time
	for k := range s.rates {
		if k.date.After(latest) {
			latest = k.date
		}
	}
	return latest, !latest.IsZero(), nil
}

func (s *InMemStorage) RatesAt(_ context.Context, date time.Time) ([]currency.RateRecord, error) {
	date = currency.DateOf(date)
	res := s.filter(func(rec currency.RateRecord) bool {
		return rec.Date.Equal(date)
	})
	sort.Slice(res, func(i, j int) bool {
		return res[i].Code < res[j].Code
	})
	return res, nil
}

func (s *InMemStorage) RateAt(_ context.Context, date time.Time, code string) (currency.RateRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.rates[rateKey{date: currency.DateOf(date), code: code}]
	return rec, ok, nil
}

func (s *InMemStorage) History(_ context.Context, code string, from, to *time.Time, limit uint64) ([]currency.RateRecord, error) {
	res := s.filter(func(rec currency.RateRecord) bool {
		if rec.Code != code {
			return false
		}
		if from != nil && rec.Date.Before(*from) {
			return false
		}
		if to != nil && rec.Date.After(*to) {
			return false
		}
		return true
	})
	sort.Slice(res, func(i, j int) bool {
		return res[i].Date.After(res[j].Date)
	})
	if uint64(len(res)) > limit {
		res = res[:limit]
	}
	return res, nil
}

func (s *InMemStorage) Stats(context.Context) (currency.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	res := currency.Stats{
		TotalRecords: int64(len(s.rates)),
		Currencies:   make([]currency.Info, 0),
	}
	seen := make(map[currency.Info]struct{})
	for _, rec := range s.rates {
		if res.LastUpdate == nil || rec.CreatedAt.After(*res.LastUpdate) {
			created := rec.CreatedAt
			res.LastUpdate = &created
		}
		info := currency.Info{Code: rec.Code, Name: rec.Name}
		if _, ok := seen[info]; !ok {
			seen[info] = struct{}{}
			res.Currencies = append(res.Currencies, info)
		}
	}
	sort.Slice(res.Currencies, func(i, j int) bool {
		if res.Currencies[i].Code == res.Currencies[j].Code {
			return res.Currencies[i].Name < res.Currencies[j].Name
		}
		return res.Currencies[i].Code < res.Currencies[j].Code
	})
	return res, nil
}

func (s *InMemStorage) filter(keep func(currency.RateRecord) bool) []currency.RateRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	res := make([]currency.RateRecord, 0)
	for _, rec := range s.rates {
		if keep(rec) {
			res = append(res, rec)
		}
	}
	return res
}
