package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"salesboard/internal/core"
)

// SQLRepository implements records.Store on SQLite or PostgreSQL.
type SQLRepository struct {
	db      *sql.DB
	dialect Dialect
}

func NewSQLiteRepository(dbPath string) (*SQLRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}
	return open(SQLite, dbPath+"?_pragma=busy_timeout(5000)")
}

func NewPostgresRepository(dsn string) (*SQLRepository, error) {
	return open(Postgres, dsn)
}

func open(d Dialect, dsn string) (*SQLRepository, error) {
	db, err := sql.Open(d.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", d, err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Run migrations
	if err := RunMigrations(d, dsn); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLRepository{db: db, dialect: d}, nil
}

func (r *SQLRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Dialect reports which SQL flavour the repository speaks.
func (r *SQLRepository) Dialect() Dialect {
	return r.dialect
}

func (r *SQLRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// InsertMany stores every transaction inside a single database transaction.
func (r *SQLRepository) InsertMany(ctx context.Context, txs []core.Transaction) (int, error) {
	dbtx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin insert: %w", err)
	}
	defer dbtx.Rollback()

	stmt, err := dbtx.PrepareContext(ctx, r.dialect.Rebind(
		`INSERT INTO transactions (title, description, price, category, image, sold, date_of_sale)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`))
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, t := range txs {
		if _, err := stmt.ExecContext(ctx,
			t.Title, t.Description, t.Price, t.Category, t.Image, t.Sold, t.DateOfSale.UTC().UnixMilli(),
		); err != nil {
			return 0, fmt.Errorf("insert record %d: %w", i, err)
		}
	}

	if err := dbtx.Commit(); err != nil {
		return 0, fmt.Errorf("commit insert: %w", err)
	}

	slog.InfoContext(ctx, "Transactions saved", "component", "storage", "dialect", r.dialect.String(), "count", len(txs))
	return len(txs), nil
}

// List returns one page ordered by date of sale, then id.
func (r *SQLRepository) List(ctx context.Context, q core.ListQuery) ([]core.Transaction, error) {
	q = q.Normalize()
	if q.Range.IsEmpty() {
		return []core.Transaction{}, nil
	}

	where, args := monthClause(q.Range)
	if q.Search != "" {
		pattern := "%" + escapeLike(strings.ToLower(q.Search)) + "%"
		cond := []string{
			r.dialect.Lower("title") + ` LIKE ? ESCAPE '\'`,
			r.dialect.Lower("description") + ` LIKE ? ESCAPE '\'`,
		}
		args = append(args, pattern, pattern)
		if price, ok := q.SearchPrice(); ok {
			cond = append(cond, "price = ?")
			args = append(args, price)
		}
		where += " AND (" + strings.Join(cond, " OR ") + ")"
	}
	args = append(args, q.PerPage, q.Offset())

	query := `SELECT id, title, description, price, category, image, sold, date_of_sale
		FROM transactions WHERE ` + where + `
		ORDER BY date_of_sale ASC, id ASC
		LIMIT ? OFFSET ?`

	rows, err := r.db.QueryContext(ctx, r.dialect.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	out := make([]core.Transaction, 0, q.PerPage)
	for rows.Next() {
		var (
			t      core.Transaction
			id     int64
			millis int64
		)
		if err := rows.Scan(&id, &t.Title, &t.Description, &t.Price, &t.Category, &t.Image, &t.Sold, &millis); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t.ID = strconv.FormatInt(id, 10)
		t.DateOfSale = time.UnixMilli(millis).UTC()
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

// Statistics computes the three month aggregates in one pass.
func (r *SQLRepository) Statistics(ctx context.Context, rg core.MonthRange) (core.Statistics, error) {
	var st core.Statistics
	if rg.IsEmpty() {
		return st, nil
	}
	where, args := monthClause(rg)
	query := `SELECT
			COALESCE(SUM(CASE WHEN sold THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN sold THEN 0 ELSE 1 END), 0),
			COALESCE(SUM(CASE WHEN sold THEN price ELSE 0 END), 0)
		FROM transactions WHERE ` + where

	if err := r.db.QueryRowContext(ctx, r.dialect.Rebind(query), args...).
		Scan(&st.TotalSold, &st.TotalNotSold, &st.TotalSaleAmount); err != nil {
		return core.Statistics{}, fmt.Errorf("month statistics: %w", err)
	}
	return st, nil
}

func (r *SQLRepository) CountInPriceRange(ctx context.Context, rg core.MonthRange, p core.PriceRange) (int64, error) {
	if rg.IsEmpty() {
		return 0, nil
	}
	where, args := monthClause(rg)
	where += " AND price >= ?"
	args = append(args, p.Min)
	if !p.Open {
		where += " AND price <= ?"
		args = append(args, p.Max)
	}

	var n int64
	if err := r.db.QueryRowContext(ctx, r.dialect.Rebind(`SELECT COUNT(*) FROM transactions WHERE `+where), args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count price range %s: %w", p.Label, err)
	}
	return n, nil
}

func (r *SQLRepository) CategoryCounts(ctx context.Context, rg core.MonthRange) ([]core.CategoryCount, error) {
	out := []core.CategoryCount{}
	if rg.IsEmpty() {
		return out, nil
	}
	where, args := monthClause(rg)
	query := `SELECT category, COUNT(*) FROM transactions WHERE ` + where + `
		GROUP BY category ORDER BY category ASC`

	rows, err := r.db.QueryContext(ctx, r.dialect.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("category counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c core.CategoryCount
		if err := rows.Scan(&c.Category, &c.Count); err != nil {
			return nil, fmt.Errorf("scan category count: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category counts: %w", err)
	}
	return out, nil
}

func (r *SQLRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return n, nil
}

func monthClause(rg core.MonthRange) (string, []any) {
	return "date_of_sale >= ? AND date_of_sale < ?", []any{rg.Start.UnixMilli(), rg.End.UnixMilli()}
}
