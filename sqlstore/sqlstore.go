// Package sqlstore keeps the latest record of every symbol in a SQL table.
// Postgres and SQLite are supported.
package sqlstore

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"strings"
	"text/template"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	_ "modernc.org/sqlite"
	"szakszon.com/stockinfo"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type DB struct {
	DB     *sql.DB
	Driver string
	opts   options
}

// Open connects to Postgres for postgres:// URLs and opens a SQLite
// database file otherwise.
func Open(dsn string, os ...Option) (*DB, error) {
	opts := defaultOptions
	for _, o := range os {
		opts = o(opts)
	}

	driver := DriverSQLite
	if strings.HasPrefix(dsn, "postgres://") ||
		strings.HasPrefix(dsn, "postgresql://") {
		driver = DriverPostgres
	}

	sqlDB, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %v: %v", driver, err)
	}
	if driver == DriverSQLite {
		sqlDB.SetMaxOpenConns(1)
	}

	return &DB{
		DB:     sqlDB,
		Driver: driver,
		opts:   opts,
	}, nil
}

func (db *DB) Close() error {
	return db.DB.Close()
}

func (db *DB) table() string {
	return pq.QuoteIdentifier(db.opts.table)
}

func (db *DB) placeholders() sq.PlaceholderFormat {
	if db.Driver == DriverPostgres {
		return sq.Dollar
	}
	return sq.Question
}

func (db *DB) InitSchema(ctx context.Context) error {
	tmpl := template.Must(template.New("init").Parse(initSchemaTmpl))
	params := map[string]string{"Table": db.table()}
	buf := &bytes.Buffer{}
	err := tmpl.Execute(buf, params)
	if err != nil {
		return err
	}

	return db.execTx(ctx, func(runner runner) error {
		_, err := runner.ExecContext(ctx, buf.String())
		return err
	})
}

// Write upserts records, one row per symbol.
func (db *DB) Write(
	ctx context.Context,
	records []*stockinfo.Record,
) error {
	if len(records) == 0 {
		return nil
	}

	updatedAt := db.opts.clock().UTC()
	return db.execTx(ctx, func(runner runner) error {
		for _, r := range records {
			q := sq.Insert(db.table()).
				Columns(
					"symbol",
					"company_name",
					"next_earnings_date",
					"dividend_offered",
					"ex_dividend_date",
					"annual_dividend_yield",
					"run_id",
					"updated_at",
				).
				Values(
					r.Symbol,
					r.CompanyName,
					r.NextEarningsDate,
					r.DividendOffered,
					r.ExDividendDate,
					r.AnnualDividendYield,
					db.opts.runID,
					updatedAt,
				).
				Suffix(upsertSuffix).
				PlaceholderFormat(db.placeholders())

			sql, args, err := q.ToSql()
			if err != nil {
				return err
			}
			_, err = runner.ExecContext(ctx, sql, args...)
			if err != nil {
				return fmt.Errorf("%v: %v", r.Symbol, err)
			}
		}
		return nil
	})
}

type RecordFilter struct {
	Symbols []string
	Limit   uint64
}

func (db *DB) Records(
	ctx context.Context,
	f *RecordFilter,
) ([]*stockinfo.Record, error) {
	records := make([]*stockinfo.Record, 0)

	err := db.execNonTx(ctx, func(runner runner) error {
		q := sq.Select(
			"symbol",
			"company_name",
			"next_earnings_date",
			"dividend_offered",
			"ex_dividend_date",
			"annual_dividend_yield",
		).
			From(db.table()).
			OrderBy("symbol").
			PlaceholderFormat(db.placeholders())

		if f != nil && len(f.Symbols) > 0 {
			q = q.Where(sq.Eq{"symbol": f.Symbols})
		}
		if f != nil && f.Limit > 0 {
			q = q.Limit(f.Limit)
		}

		sql, args, err := q.ToSql()
		if err != nil {
			return err
		}

		rows, err := runner.QueryContext(ctx, sql, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			r := &stockinfo.Record{}
			err = rows.Scan(
				&r.Symbol,
				&r.CompanyName,
				&r.NextEarningsDate,
				&r.DividendOffered,
				&r.ExDividendDate,
				&r.AnnualDividendYield,
			)
			if err != nil {
				return err
			}
			records = append(records, r)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

type runner interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
}

func (db *DB) execTx(
	ctx context.Context,
	fn func(runner runner) error,
) error {
	txOpts := &sql.TxOptions{}
	if db.Driver == DriverPostgres {
		txOpts.Isolation = sql.LevelSerializable
	}
	tx, err := db.DB.BeginTx(ctx, txOpts)
	if err != nil {
		return err
	}

	err = fn(tx)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("tx err: %v, rb err: %v", err, rbErr)
		}
		return err
	}

	return tx.Commit()
}

func (db *DB) execNonTx(
	ctx context.Context,
	fn func(runner runner) error,
) error {
	return fn(db.DB)
}

const upsertSuffix = `on conflict (symbol) do update set
    company_name = excluded.company_name,
    next_earnings_date = excluded.next_earnings_date,
    dividend_offered = excluded.dividend_offered,
    ex_dividend_date = excluded.ex_dividend_date,
    annual_dividend_yield = excluded.annual_dividend_yield,
    run_id = excluded.run_id,
    updated_at = excluded.updated_at`

const initSchemaTmpl = `
create table if not exists {{.Table}} (
    symbol                 text not null,
    company_name           text not null,
    next_earnings_date     text not null,
    dividend_offered       text not null,
    ex_dividend_date       text not null,
    annual_dividend_yield  text not null,
    run_id                 text not null,
    updated_at             timestamp not null,
    PRIMARY KEY(symbol)
);
`

type options struct {
	table string
	runID string
	clock func() time.Time
}

var defaultOptions = options{
	table: "stock_record",
	clock: time.Now,
}

type Option func(o options) options

func Table(v string) Option {
	return func(o options) options {
		o.table = v
		return o
	}
}

// RunID tags the rows written by this connection.
func RunID(v string) Option {
	return func(o options) options {
		o.runID = v
		return o
	}
}

func Clock(v func() time.Time) Option {
	return func(o options) options {
		if v != nil {
			o.clock = v
		}
		return o
	}
}
