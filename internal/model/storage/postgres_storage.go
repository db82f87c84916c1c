package storage

import (
	"context"
	"database/sql"
	"embed"
	"time"

	sq "github.com/Masterminds/squirrel"
	// postgres driver
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	migrate "github.com/rubenv/sql-migrate"
	"go.uber.org/zap"
	"max.ks1230/tcmb-rates/internal/entity/currency"
	"max.ks1230/tcmb-rates/internal/logger"
)

const ratesTable = "rate_records"

//go:embed migrations/*.sql
var migrations embed.FS

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var rateColumns = []string{
	"date",
	"currency_code",
	"currency_name",
	"buy_rate",
	"sell_rate",
	"effective_buy_rate",
	"effective_sell_rate",
	"created_at",
}

type config interface {
	DSN() string
}

type PostgresStorage struct {
	db *sql.DB
}

func NewPostgresStorage(config config) (*PostgresStorage, error) {
	db, err := sql.Open("postgres", config.DSN())
	if err != nil {
		return nil, errors.Wrap(err, "cannot connect to database")
	}
	if err = db.Ping(); err != nil {
		return nil, errors.Wrap(err, "cannot connect to database")
	}
	return &PostgresStorage{db}, nil
}

// NewWithDB wraps an already opened handle.
func NewWithDB(db *sql.DB) *PostgresStorage {
	return &PostgresStorage{db}
}

// Migrate applies every pending migration and returns how many ran.
func (s *PostgresStorage) Migrate() (int, error) {
	source := &migrate.EmbedFileSystemMigrationSource{
		FileSystem: migrations,
		Root:       "migrations",
	}
	n, err := migrate.Exec(s.db, "postgres", source, migrate.Up)
	if err != nil {
		return 0, errors.Wrap(err, "apply migrations")
	}
	return n, nil
}

func (s *PostgresStorage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresStorage) Close() error {
	return s.db.Close()
}

// SaveRates inserts the records that are not stored yet for their (date, code)
// in a single transaction and returns the codes of the rows it wrote.
func (s *PostgresStorage) SaveRates(ctx context.Context, recs []currency.RateRecord) ([]string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "save rates")
	}
	defer func() {
		txErr := tx.Rollback()
		if txErr != nil && !errors.Is(txErr, sql.ErrTxDone) {
			logger.Error("error when transaction rollback", zap.Error(txErr))
		}
	}()

	saved := make([]string, 0, len(recs))
	for _, rec := range recs {
		query := psql.Insert(ratesTable).
			Columns(rateColumns...).
			Values(
				rec.Date,
				rec.Code,
				rec.Name,
				rec.BuyRate,
				rec.SellRate,
				rec.EffectiveBuyRate,
				rec.EffectiveSellRate,
				rec.CreatedAt,
			).
			Suffix("ON CONFLICT (date, currency_code) DO NOTHING")

		res, err := query.RunWith(tx).ExecContext(ctx)
		if err != nil {
			return nil, errors.Wrapf(err, "save rate %s", rec.Code)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return nil, errors.Wrap(err, "save rates")
		}
		if n > 0 {
			saved = append(saved, rec.Code)
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "save rates")
	}
	return saved, nil
}

func (s *PostgresStorage) LatestDate(ctx context.Context) (time.Time, bool, error) {
	query := psql.Select("MAX(date)").From(ratesTable)

	var latest sql.NullTime
	err := query.RunWith(s.db).QueryRowContext(ctx).Scan(&latest)
	if err != nil {
		return time.Time{}, false, errors.Wrap(err, "latest date")
	}
	if !latest.Valid {
		return time.Time{}, false, nil
	}
	return currency.DateOf(latest.Time), true, nil
}

func (s *PostgresStorage) RatesAt(ctx context.Context, date time.Time) ([]currency.RateRecord, error) {
	query := psql.Select(rateColumns...).
		From(ratesTable).
		Where(sq.Eq{"date": date}).
		OrderBy("currency_code")

	recs, err := s.queryRates(ctx, query)
	return recs, errors.Wrap(err, "rates at date")
}

func (s *PostgresStorage) RateAt(ctx context.Context, date time.Time, code string) (currency.RateRecord, bool, error) {
	query := psql.Select(rateColumns...).
		From(ratesTable).
		Where(sq.Eq{"date": date, "currency_code": code})

	rec, err := scanRate(query.RunWith(s.db).QueryRowContext(ctx))
	if errors.Is(err, sql.ErrNoRows) {
		return currency.RateRecord{}, false, nil
	}
	if err != nil {
		return currency.RateRecord{}, false, errors.Wrap(err, "rate at date")
	}
	return rec, true, nil
}

func (s *PostgresStorage) History(ctx context.Context, code string, from, to *time.Time, limit uint64) ([]currency.RateRecord, error) {
	query := psql.Select(rateColumns...).
		From(ratesTable).
		Where(sq.Eq{"currency_code": code})
	if from != nil {
		query = query.Where(sq.GtOrEq{"date": *from})
	}
	if to != nil {
		query = query.Where(sq.LtOrEq{"date": *to})
	}
	query = query.OrderBy("date DESC").Limit(limit)

	recs, err := s.queryRates(ctx, query)
	return recs, errors.Wrap(err, "history")
}

func (s *PostgresStorage) Stats(ctx context.Context) (currency.Stats, error) {
	var (
		res        currency.Stats
		lastUpdate sql.NullTime
	)
	err := psql.Select("COUNT(*)", "MAX(created_at)").
		From(ratesTable).
		RunWith(s.db).
		QueryRowContext(ctx).
		Scan(&res.TotalRecords, &lastUpdate)
	if err != nil {
		return currency.Stats{}, errors.Wrap(err, "stats")
	}
	if lastUpdate.Valid {
		res.LastUpdate = &lastUpdate.Time
	}

	rows, err := psql.Select("currency_code", "currency_name").
		Distinct().
		From(ratesTable).
		OrderBy("currency_code", "currency_name").
		RunWith(s.db).
		QueryContext(ctx)
	if err != nil {
		return currency.Stats{}, errors.Wrap(err, "stats")
	}
	defer closeRows(rows)

	res.Currencies = make([]currency.Info, 0)
	for rows.Next() {
		var info currency.Info
		if err = rows.Scan(&info.Code, &info.Name); err != nil {
			return currency.Stats{}, errors.Wrap(err, "stats")
		}
		res.Currencies = append(res.Currencies, info)
	}
	if err = rows.Err(); err != nil {
		return currency.Stats{}, errors.Wrap(err, "stats")
	}
	return res, nil
}

func (s *PostgresStorage) queryRates(ctx context.Context, query sq.SelectBuilder) ([]currency.RateRecord, error) {
	rows, err := query.RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)

	recs := make([]currency.RateRecord, 0)
	for rows.Next() {
		rec, err := scanRate(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return recs, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRate(row scanner) (currency.RateRecord, error) {
	var rec currency.RateRecord
	err := row.Scan(
		&rec.Date,
		&rec.Code,
		&rec.Name,
		&rec.BuyRate,
		&rec.SellRate,
		&rec.EffectiveBuyRate,
		&rec.EffectiveSellRate,
		&rec.CreatedAt,
	)
	if err != nil {
		return currency.RateRecord{}, err
	}
	rec.Date = currency.DateOf(rec.Date)
	return rec, nil
}

func closeRows(rows *sql.Rows) {
	if err := rows.Close(); err != nil {
		logger.Error("error closing rows", zap.Error(err))
	}
}
