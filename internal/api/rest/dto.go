package rest

import (
	"encoding/json"
	"time"

	"max.ks1230/tcmb-rates/internal/entity/currency"
	"max.ks1230/tcmb-rates/internal/model/rates"
	"max.ks1230/tcmb-rates/internal/model/reports"
)

type rateResponse struct {
	Date              string     `json:"date,omitempty"`
	CurrencyCode      string     `json:"currency_code"`
	CurrencyName      string     `json:"currency_name"`
	BuyRate           float64    `json:"buy_rate"`
	SellRate          float64    `json:"sell_rate"`
	EffectiveBuyRate  float64    `json:"effective_buy_rate"`
	EffectiveSellRate float64    `json:"effective_sell_rate"`
	CreatedAt         *time.Time `json:"created_at,omitempty"`
}

type convertRequest struct {
	Amount       json.Number `json:"amount" binding:"required"`
	FromCurrency string      `json:"from_currency" binding:"required"`
	ToCurrency   string      `json:"to_currency" binding:"required"`
}

type convertResponse struct {
	Amount          float64 `json:"amount"`
	FromCurrency    string  `json:"from_currency"`
	ToCurrency      string  `json:"to_currency"`
	ConvertedAmount float64 `json:"converted_amount"`
	RateDate        string  `json:"rate_date"`
	FromRate        float64 `json:"from_rate"`
	ToRate          float64 `json:"to_rate"`
}

type reportResponse struct {
	CurrencyCode  string  `json:"currency_code"`
	Period        string  `json:"period"`
	StartDate     string  `json:"start_date"`
	EndDate       string  `json:"end_date"`
	Samples       int     `json:"samples"`
	FirstRate     float64 `json:"first_rate"`
	LastRate      float64 `json:"last_rate"`
	MinRate       float64 `json:"min_rate"`
	MaxRate       float64 `json:"max_rate"`
	AverageRate   float64 `json:"average_rate"`
	ChangePercent float64 `json:"change_percent"`
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(currency.DateLayout)
}

func toRateResponse(rec currency.RateRecord) rateResponse {
	res := rateResponse{
		Date:              formatDate(rec.Date),
		CurrencyCode:      rec.Code,
		CurrencyName:      rec.Name,
		BuyRate:           rec.BuyRate,
		SellRate:          rec.SellRate,
		EffectiveBuyRate:  rec.EffectiveBuyRate,
		EffectiveSellRate: rec.EffectiveSellRate,
	}
	if !rec.CreatedAt.IsZero() {
		created := rec.CreatedAt
		res.CreatedAt = &created
	}
	return res
}

func toRateResponses(recs []currency.RateRecord) []rateResponse {
	res := make([]rateResponse, 0, len(recs))
	for _, rec := range recs {
		res = append(res, toRateResponse(rec))
	}
	return res
}

func toConvertResponse(c rates.Conversion) convertResponse {
	return convertResponse{
		Amount:          c.Amount,
		FromCurrency:    c.From,
		ToCurrency:      c.To,
		ConvertedAmount: c.Converted,
		RateDate:        formatDate(c.RateDate),
		FromRate:        c.FromRate,
		ToRate:          c.ToRate,
	}
}

func toReportResponse(r reports.Report) reportResponse {
	return reportResponse{
		CurrencyCode:  r.Code,
		Period:        r.Period,
		StartDate:     formatDate(r.From),
		EndDate:       formatDate(r.To),
		Samples:       r.Samples,
		FirstRate:     r.First,
		LastRate:      r.Last,
		MinRate:       r.Min,
		MaxRate:       r.Max,
		AverageRate:   r.Average,
		ChangePercent: r.ChangePercent,
	}
}
