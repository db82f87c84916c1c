package tcmb

import (
	"context"
	"encoding/xml"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"max.ks1230/tcmb-rates/internal/entity/currency"
	"max.ks1230/tcmb-rates/internal/logger"
)

const todayFile = "today.xml"

type config interface {
	BaseURL() string
	Timeout() time.Duration
	RetryCount() int
}

type Client struct {
	client  *resty.Client
	baseURL string
	loc     *time.Location
	now     func() time.Time
}

type ratesDocument struct {
	XMLName    xml.Name       `xml:"Tarih_Date"`
	Date       string         `xml:"Date,attr"`
	Currencies []currencyNode `xml:"Currency"`
}

type currencyNode struct {
	Code            string `xml:"Kod,attr"`
	CurrencyCode    string `xml:"CurrencyCode,attr"`
	Name            string `xml:"Isim"`
	ForexBuying     string `xml:"ForexBuying"`
	ForexSelling    string `xml:"ForexSelling"`
	BanknoteBuying  string `xml:"BanknoteBuying"`
	BanknoteSelling string `xml:"BanknoteSelling"`
}

// New builds a feed client. loc decides which calendar day counts as "today".
func New(config config, loc *time.Location) *Client {
	client := resty.New().
		SetTimeout(config.Timeout()).
		SetRetryCount(config.RetryCount()).
		SetHeader("Accept", "application/xml")

	return &Client{
		client:  client,
		baseURL: strings.TrimRight(config.BaseURL(), "/"),
		loc:     loc,
		now:     time.Now,
	}
}

// FetchRawRates downloads the bulletin for date. The bank publishes the
// current day as today.xml and older days as YYYYMM/DDMMYYYY.xml.
func (c *Client) FetchRawRates(ctx context.Context, date time.Time) ([]currency.RawRate, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "fetchRawRates")
	defer span.Finish()

	url := c.urlFor(date)
	span.SetTag("url", url)
	logger.Info("fetching rates feed", zap.String("url", url))

	resp, err := c.client.R().SetContext(ctx).Get(url)
	if err != nil {
		ext.Error.Set(span, true)
		return nil, errors.Wrap(err, "request rates feed")
	}
	if resp.IsError() {
		ext.Error.Set(span, true)
		return nil, errors.Errorf("rates feed responded %d", resp.StatusCode())
	}

	rates, err := Parse(resp.Body())
	if err != nil {
		ext.Error.Set(span, true)
		return nil, err
	}
	return rates, nil
}

func (c *Client) urlFor(date time.Time) string {
	today := c.now().In(c.loc)
	if date.IsZero() || sameDay(date, today) {
		return fmt.Sprintf("%s/%s", c.baseURL, todayFile)
	}
	return fmt.Sprintf("%s/%s/%s.xml", c.baseURL, date.Format("200601"), date.Format("02012006"))
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// Parse decodes a bulletin. Empty or malformed numbers become 0 so that the
// caller can drop the currency instead of failing the whole document.
func Parse(body []byte) ([]currency.RawRate, error) {
	var doc ratesDocument
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, errors.Wrap(err, "parse rates feed")
	}

	rates := make([]currency.RawRate, 0, len(doc.Currencies))
	for _, node := range doc.Currencies {
		code := node.Code
		if code == "" {
			code = node.CurrencyCode
		}
		rates = append(rates, currency.RawRate{
			Code:            currency.Normalize(code),
			Name:            strings.TrimSpace(node.Name),
			ForexBuying:     safeFloat(node.ForexBuying),
			ForexSelling:    safeFloat(node.ForexSelling),
			BanknoteBuying:  safeFloat(node.BanknoteBuying),
			BanknoteSelling: safeFloat(node.BanknoteSelling),
		})
	}
	return rates, nil
}

func safeFloat(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
