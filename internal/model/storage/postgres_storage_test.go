package storage

import (
	"context"
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"max.ks1230/tcmb-rates/internal/entity/currency"
)

var testDate = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func newMockStorage(t *testing.T) (*PostgresStorage, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewWithDB(db), mock
}

func testRecords() []currency.RateRecord {
	created := time.Date(2024, 1, 1, 4, 0, 0, 0, time.UTC)
	return []currency.RateRecord{
		{Date: testDate, Code: "USD", Name: "ABD DOLARI", BuyRate: 32.5, SellRate: 32.6, EffectiveBuyRate: 32.45, EffectiveSellRate: 32.65, CreatedAt: created},
		{Date: testDate, Code: "EUR", Name: "EURO", BuyRate: 35.2, SellRate: 35.3, EffectiveBuyRate: 35.15, EffectiveSellRate: 35.35, CreatedAt: created},
	}
}

func rateRows() *sqlmock.Rows {
	return sqlmock.NewRows(rateColumns)
}

func rowOf(rec currency.RateRecord) []driver.Value {
	return []driver.Value{
		rec.Date, rec.Code, rec.Name,
		rec.BuyRate, rec.SellRate, rec.EffectiveBuyRate, rec.EffectiveSellRate,
		rec.CreatedAt,
	}
}

func Test_SaveRates_ShouldReturnOnlyInsertedCodes(t *testing.T) {
	s, mock := newMockStorage(t)
	recs := testRecords()
	insert := regexp.QuoteMeta("INSERT INTO rate_records") + ".*" +
		regexp.QuoteMeta("ON CONFLICT (date, currency_code) DO NOTHING")

	mock.ExpectBegin()
	mock.ExpectExec(insert).
		WithArgs(testDate, "USD", "ABD DOLARI", 32.5, 32.6, 32.45, 32.65, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(insert).
		WithArgs(testDate, "EUR", "EURO", 35.2, 35.3, 35.15, 35.35, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	saved, err := s.SaveRates(context.Background(), recs)

	require.NoError(t, err)
	assert.Equal(t, []string{"USD"}, saved)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_SaveRates_ShouldRollbackWholeBatchOnFailure(t *testing.T) {
	s, mock := newMockStorage(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO rate_records")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO rate_records")).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	saved, err := s.SaveRates(context.Background(), testRecords())

	assert.Error(t, err)
	assert.Empty(t, saved)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_LatestDate(t *testing.T) {
	s, mock := newMockStorage(t)
	query := regexp.QuoteMeta("SELECT MAX(date) FROM rate_records")

	mock.ExpectQuery(query).
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(testDate))
	mock.ExpectQuery(query).
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(nil))

	latest, ok, err := s.LatestDate(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, testDate, latest)

	_, ok, err = s.LatestDate(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_RateAt_ShouldReportMissingRow(t *testing.T) {
	s, mock := newMockStorage(t)
	usd := testRecords()[0]
	query := regexp.QuoteMeta("FROM rate_records WHERE currency_code = $1 AND date = $2")

	mock.ExpectQuery(query).
		WithArgs("USD", testDate).
		WillReturnRows(rateRows().AddRow(rowOf(usd)...))
	mock.ExpectQuery(query).
		WithArgs("XYZ", testDate).
		WillReturnRows(rateRows())

	rec, ok, err := s.RateAt(context.Background(), testDate, "USD")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 32.6, rec.SellRate)

	_, ok, err = s.RateAt(context.Background(), testDate, "XYZ")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_History_ShouldApplyBoundsAndLimit(t *testing.T) {
	s, mock := newMockStorage(t)
	from := testDate.AddDate(0, 0, -7)
	usd := testRecords()[0]

	mock.ExpectQuery(regexp.QuoteMeta(
		"FROM rate_records WHERE currency_code = $1 AND date >= $2 AND date <= $3 ORDER BY date DESC LIMIT 100",
	)).
		WithArgs("USD", from, testDate).
		WillReturnRows(rateRows().AddRow(rowOf(usd)...))

	recs, err := s.History(context.Background(), "USD", &from, &testDate, 100)

	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "USD", recs[0].Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_History_WithoutBounds(t *testing.T) {
	s, mock := newMockStorage(t)

	mock.ExpectQuery(regexp.QuoteMeta(
		"FROM rate_records WHERE currency_code = $1 ORDER BY date DESC LIMIT 100",
	)).
		WithArgs("EUR").
		WillReturnRows(rateRows())

	recs, err := s.History(context.Background(), "EUR", nil, nil, 100)

	require.NoError(t, err)
	assert.Empty(t, recs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_Stats(t *testing.T) {
	s, mock := newMockStorage(t)
	created := time.Date(2024, 1, 1, 4, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*), MAX(created_at) FROM rate_records")).
		WillReturnRows(sqlmock.NewRows([]string{"count", "max"}).AddRow(int64(2), created))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT DISTINCT currency_code, currency_name FROM rate_records")).
		WillReturnRows(sqlmock.NewRows([]string{"currency_code", "currency_name"}).
			AddRow("EUR", "EURO").
			AddRow("USD", "ABD DOLARI"))

	stats, err := s.Stats(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalRecords)
	require.NotNil(t, stats.LastUpdate)
	assert.Equal(t, created, *stats.LastUpdate)
	assert.Equal(t, []currency.Info{{Code: "EUR", Name: "EURO"}, {Code: "USD", Name: "ABD DOLARI"}}, stats.Currencies)
	assert.NoError(t, mock.ExpectationsWereMet())
}
