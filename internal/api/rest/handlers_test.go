package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"max.ks1230/tcmb-rates/internal/clients/cache"
	"max.ks1230/tcmb-rates/internal/entity/currency"
	"max.ks1230/tcmb-rates/internal/model/customerr"
	"max.ks1230/tcmb-rates/internal/model/rates"
	"max.ks1230/tcmb-rates/internal/model/reports"
	"max.ks1230/tcmb-rates/internal/model/storage"
)

type cacheConf struct{}

func (cacheConf) TTL() time.Duration     { return 5 * time.Minute }
func (cacheConf) Timeout() time.Duration { return time.Second }

type utcConfig struct{}

func (utcConfig) Location() *time.Location { return time.UTC }

type triggerMock struct {
	mock.Mock
}

func (m *triggerMock) RunToday(ctx context.Context) (rates.IngestResult, error) {
	args := m.Called(ctx)
	return args.Get(0).(rates.IngestResult), args.Error(1)
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("connection refused") }

var day = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func seededStorage(t *testing.T) *storage.InMemStorage {
	t.Helper()
	db := storage.NewInMemStorage()
	_, err := db.SaveRates(context.Background(), []currency.RateRecord{
		{Date: day, Code: "USD", Name: "ABD DOLARI", BuyRate: 30.0, SellRate: 30.1},
		{Date: day, Code: "EUR", Name: "EURO", BuyRate: 33.0, SellRate: 33.2},
	})
	require.NoError(t, err)
	return db
}

func newTestRouter(t *testing.T, db *storage.InMemStorage, trigger ingestTrigger) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	service := rates.NewService(db, cache.NewMemory(), cacheConf{})
	return NewRouter(NewHandler(service, reports.NewGenerator(utcConfig{}, db), trigger, db, "memory"))
}

func doRequest(router http.Handler, method, path string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var res map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	return res
}

func Test_LatestRates_SecondCallIsServedFromCache(t *testing.T) {
	router := newTestRouter(t, seededStorage(t), &triggerMock{})

	first := decode(t, doRequest(router, http.MethodGet, "/api/rates/latest", nil))
	second := decode(t, doRequest(router, http.MethodGet, "/api/rates/latest", nil))

	assert.Equal(t, true, first["success"])
	assert.Equal(t, "database", first["source"])
	assert.Equal(t, "cache", second["source"])
	assert.Len(t, second["data"], 2)
}

func Test_LatestRates_OnEmptyStore_ShouldReturnNotFound(t *testing.T) {
	router := newTestRouter(t, storage.NewInMemStorage(), &triggerMock{})

	w := doRequest(router, http.MethodGet, "/api/rates/latest", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, false, decode(t, w)["success"])
}

func Test_History_DefaultsToUSD(t *testing.T) {
	router := newTestRouter(t, seededStorage(t), &triggerMock{})

	w := doRequest(router, http.MethodGet, "/api/rates/history", nil)

	require.Equal(t, http.StatusOK, w.Code)
	res := decode(t, w)
	assert.Equal(t, "USD", res["currency"])
	assert.EqualValues(t, 1, res["count"])
}

func Test_History_WithMalformedDate_ShouldReturnBadRequest(t *testing.T) {
	router := newTestRouter(t, seededStorage(t), &triggerMock{})

	w := doRequest(router, http.MethodGet, "/api/rates/history?currency=eur&start_date=01.01.2024", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func Test_Convert(t *testing.T) {
	router := newTestRouter(t, seededStorage(t), &triggerMock{})

	w := doRequest(router, http.MethodPost, "/api/convert",
		[]byte(`{"amount": 100, "from_currency": "usd", "to_currency": "TRY"}`))

	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].(map[string]any)
	assert.Equal(t, 3010.0, data["converted_amount"])
	assert.Equal(t, "2024-01-01", data["rate_date"])
	assert.Equal(t, 1.0, data["to_rate"])
}

func Test_Convert_WithoutCurrencies_ShouldReturnBadRequest(t *testing.T) {
	router := newTestRouter(t, seededStorage(t), &triggerMock{})

	w := doRequest(router, http.MethodPost, "/api/convert", []byte(`{"amount": 100}`))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func Test_Convert_WithUnknownCurrency_ShouldReturnNotFound(t *testing.T) {
	router := newTestRouter(t, seededStorage(t), &triggerMock{})

	w := doRequest(router, http.MethodPost, "/api/convert",
		[]byte(`{"amount": 1, "from_currency": "XYZ", "to_currency": "TRY"}`))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, decode(t, w)["error"], "'from' currency not found")
}

// untouchedRates fails the test on any call.
type untouchedRates struct {
	t *testing.T
}

func (u untouchedRates) LatestRates(context.Context) (rates.LatestRates, error) {
	u.t.Error("LatestRates must not be called")
	return rates.LatestRates{}, nil
}

func (u untouchedRates) History(context.Context, string, *time.Time, *time.Time) ([]currency.RateRecord, error) {
	u.t.Error("History must not be called")
	return nil, nil
}

func (u untouchedRates) Convert(context.Context, float64, string, string) (rates.Conversion, error) {
	u.t.Error("Convert must not be called")
	return rates.Conversion{}, nil
}

func (u untouchedRates) Stats(context.Context) (currency.Stats, error) {
	u.t.Error("Stats must not be called")
	return currency.Stats{}, nil
}

func (u untouchedRates) Currencies(context.Context) ([]currency.RateRecord, error) {
	u.t.Error("Currencies must not be called")
	return nil, nil
}

func Test_Convert_WithNonNumericAmount_ShouldFailBeforeLookup(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := storage.NewInMemStorage()
	router := NewRouter(NewHandler(untouchedRates{t: t}, reports.NewGenerator(utcConfig{}, db), &triggerMock{}, db, "none"))

	cases := map[string]string{
		"string":   `{"amount": "abc", "from_currency": "USD", "to_currency": "EUR"}`,
		"bool":     `{"amount": true, "from_currency": "USD", "to_currency": "EUR"}`,
		"overflow": `{"amount": 1e400, "from_currency": "USD", "to_currency": "EUR"}`,
		"missing":  `{"from_currency": "USD", "to_currency": "EUR"}`,
		"null":     `{"amount": null, "from_currency": "USD", "to_currency": "EUR"}`,
		"not json": `amount=100`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			w := doRequest(router, http.MethodPost, "/api/convert", []byte(body))

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, false, decode(t, w)["success"])
		})
	}
}

func Test_Convert_LocalToLocal_ShouldReturnNotFound(t *testing.T) {
	router := newTestRouter(t, seededStorage(t), &triggerMock{})

	w := doRequest(router, http.MethodPost, "/api/convert",
		[]byte(`{"amount": 100, "from_currency": "TRY", "to_currency": "TRY"}`))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, decode(t, w)["error"], "'to' currency not found")
}

func Test_Currencies_OnEmptyStore_ShouldReturnNotFound(t *testing.T) {
	router := newTestRouter(t, storage.NewInMemStorage(), &triggerMock{})

	w := doRequest(router, http.MethodGet, "/api/currencies", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func Test_Currencies_ShouldIncludeLocalCurrency(t *testing.T) {
	router := newTestRouter(t, seededStorage(t), &triggerMock{})

	w := doRequest(router, http.MethodGet, "/api/currencies", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), currency.LocalName)
	assert.EqualValues(t, 3, decode(t, w)["count"])
}

func Test_Stats(t *testing.T) {
	router := newTestRouter(t, seededStorage(t), &triggerMock{})

	w := doRequest(router, http.MethodGet, "/api/stats", nil)

	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].(map[string]any)
	assert.EqualValues(t, 2, data["total_records"])
}

func Test_TriggerIngestion(t *testing.T) {
	trigger := &triggerMock{}
	trigger.On("RunToday", mock.Anything).Return(rates.IngestResult{Date: day, Received: 20, Saved: 19}, nil)
	router := newTestRouter(t, seededStorage(t), trigger)

	w := doRequest(router, http.MethodPost, "/api/rates/update", nil)

	require.Equal(t, http.StatusOK, w.Code)
	res := decode(t, w)
	assert.Equal(t, "19 new rates saved", res["message"])
	assert.EqualValues(t, 19, res["saved_count"])
	trigger.AssertExpectations(t)
}

func Test_TriggerIngestion_WhenFeedFails_ShouldHideCause(t *testing.T) {
	trigger := &triggerMock{}
	trigger.On("RunToday", mock.Anything).
		Return(rates.IngestResult{}, customerr.Upstream(errors.New("dial tcp: i/o timeout")))
	router := newTestRouter(t, seededStorage(t), trigger)

	w := doRequest(router, http.MethodPost, "/api/rates/update", nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "i/o timeout")
}

func Test_Health(t *testing.T) {
	router := newTestRouter(t, seededStorage(t), &triggerMock{})

	w := doRequest(router, http.MethodGet, "/api/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", decode(t, w)["status"])
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))
}

func Test_Health_WhenDatabaseIsDown(t *testing.T) {
	gin.SetMode(gin.TestMode)
	service := rates.NewService(storage.NewInMemStorage(), nil, cacheConf{})
	router := NewRouter(NewHandler(service, reports.NewGenerator(utcConfig{}, storage.NewInMemStorage()), &triggerMock{}, failingPinger{}, "none"))

	w := doRequest(router, http.MethodGet, "/api/health", nil)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func Test_RequestID_IsPropagated(t *testing.T) {
	router := newTestRouter(t, seededStorage(t), &triggerMock{})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, "abc-123", w.Header().Get(requestIDHeader))
}

func Test_Report_WithUnknownPeriod_ShouldReturnBadRequest(t *testing.T) {
	router := newTestRouter(t, seededStorage(t), &triggerMock{})

	w := doRequest(router, http.MethodGet, "/api/rates/report?currency=USD&period=decade", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func Test_Report_WithoutRecentRates_ShouldReturnNotFound(t *testing.T) {
	router := newTestRouter(t, storage.NewInMemStorage(), &triggerMock{})

	w := doRequest(router, http.MethodGet, "/api/rates/report?period=week", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func Test_Report(t *testing.T) {
	db := storage.NewInMemStorage()
	today := currency.DateOf(time.Now().UTC())
	_, err := db.SaveRates(context.Background(), []currency.RateRecord{
		{Date: today, Code: "USD", Name: "ABD DOLARI", BuyRate: 30.0, SellRate: 30.1},
	})
	require.NoError(t, err)
	router := newTestRouter(t, db, &triggerMock{})

	w := doRequest(router, http.MethodGet, "/api/rates/report?currency=usd&period=month", nil)

	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].(map[string]any)
	assert.Equal(t, "USD", data["currency_code"])
	assert.EqualValues(t, 1, data["samples"])
	assert.Equal(t, 30.1, data["last_rate"])
}
