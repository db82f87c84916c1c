package currency

import (
	"strings"
	"time"
)

const (
	TRY = "TRY"
	USD = "USD"
	EUR = "EUR"
	GBP = "GBP"

	// LocalName is the display name of the local currency entry.
	LocalName = "TÜRK LİRASI"

	DateLayout = "2006-01-02"
)

// RateRecord is a single day's quote for one foreign currency, in local units.
type RateRecord struct {
	Date              time.Time `json:"date"`
	Code              string    `json:"currency_code"`
	Name              string    `json:"currency_name"`
	BuyRate           float64   `json:"buy_rate"`
	SellRate          float64   `json:"sell_rate"`
	EffectiveBuyRate  float64   `json:"effective_buy_rate"`
	EffectiveSellRate float64   `json:"effective_sell_rate"`
	CreatedAt         time.Time `json:"created_at"`
}

// RawRate is a feed entry before validation. Missing numeric values are 0.
type RawRate struct {
	Code            string
	Name            string
	ForexBuying     float64
	ForexSelling    float64
	BanknoteBuying  float64
	BanknoteSelling float64
}

type Info struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type Stats struct {
	TotalRecords int64      `json:"total_records"`
	LastUpdate   *time.Time `json:"last_update"`
	Currencies   []Info     `json:"currencies"`
}

// Normalize upper-cases a currency code and strips whitespace.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// DateOf returns the calendar day of t (in t's location) as a UTC midnight.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(s))
}

// LocalRecord is the synthetic entry for the local currency at date.
func LocalRecord(date time.Time) RateRecord {
	return RateRecord{
		Date:              date,
		Code:              TRY,
		Name:              LocalName,
		BuyRate:           1,
		SellRate:          1,
		EffectiveBuyRate:  1,
		EffectiveSellRate: 1,
	}
}
