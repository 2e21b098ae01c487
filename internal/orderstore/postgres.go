package orderstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Jeda-Ngoding/pos-mvp/internal/domain"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/lib/pq"
)

// deletedProductLabel is what the report shows for lines whose product was
// removed from the catalog after the sale.
const deletedProductLabel = "(produk dihapus)"

type Repository struct {
	db *sql.DB
}

func NewRepository(cred *Credentials) (*Repository, error) {
	psqlconn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cred.Host,
		cred.Port,
		cred.User,
		cred.Password,
		cred.DBName)

	db, err := sql.Open("postgres", psqlconn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if e2 := db.Ping(); e2 != nil {
		return nil, fmt.Errorf("failed to ping database: %w", e2)
	}

	db.SetMaxOpenConns(100)
	db.SetMaxIdleConns(10)
	return &Repository{db: db}, nil
}

func (r *Repository) RunMigrations(cred *Credentials) error {
	driver, err := postgres.WithInstance(r.db, &postgres.Config{
		MigrationsTable: "pos_schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", cred.MigrationsDirPath),
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if e2 := m.Up(); e2 != nil && !errors.Is(e2, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", e2)
	}

	return nil
}

// InsertOrder writes the sale header and returns it with the generated id.
// This is deliberately a standalone statement, not part of a transaction with
// the line insert; see the checkout service for the consequences.
func (r *Repository) InsertOrder(ctx context.Context, total int64) (*domain.Order, error) {
	query := `INSERT INTO transactions (total, created_at)
	          VALUES ($1, NOW()) RETURNING id, created_at`

	order := &domain.Order{Total: total}
	err := r.db.QueryRowContext(ctx, query, total).Scan(&order.ID, &order.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert transaction: %w", err)
	}
	return order, nil
}

// InsertOrderLines writes the sale's line items in one round trip using
// pq.Array over unnest, so a batch either lands whole or not at all.
func (r *Repository) InsertOrderLines(ctx context.Context, orderID int64, lines []domain.OrderLine) error {
	if len(lines) == 0 {
		return nil
	}

	productIDs := make([]int64, len(lines))
	quantities := make([]int64, len(lines))
	prices := make([]int64, len(lines))
	for i, l := range lines {
		productIDs[i] = l.ProductID
		quantities[i] = int64(l.Quantity)
		prices[i] = l.Price
	}

	query := `INSERT INTO transaction_items (transaction_id, product_id, quantity, price)
	          SELECT $1, unnest($2::bigint[]), unnest($3::bigint[]), unnest($4::bigint[])`

	_, err := r.db.ExecContext(ctx, query,
		orderID,
		pq.Array(productIDs),
		pq.Array(quantities),
		pq.Array(prices))
	if err != nil {
		return fmt.Errorf("insert transaction items: %w", err)
	}
	return nil
}

func (r *Repository) GetOrderByID(ctx context.Context, id int64) (*domain.Order, error) {
	query := `SELECT id, total, created_at FROM transactions WHERE id = $1`

	var order domain.Order
	err := r.db.QueryRowContext(ctx, query, id).Scan(&order.ID, &order.Total, &order.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query transaction by id: %w", err)
	}
	return &order, nil
}

// CountOrderLines reports how many line items reference the order. Used to
// reconcile orphaned headers left behind by a failed line-item write.
func (r *Repository) CountOrderLines(ctx context.Context, orderID int64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transaction_items WHERE transaction_id = $1`, orderID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count transaction items: %w", err)
	}
	return n, nil
}

// ListOrders returns one report page, newest first, plus the exact total row
// count for pagination.
func (r *Repository) ListOrders(ctx context.Context, filter ReportFilter) ([]domain.Order, int, error) {
	where := ` WHERE 1=1`
	args := []interface{}{}
	if !filter.From.IsZero() {
		args = append(args, filter.From)
		where += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To)
		where += fmt.Sprintf(" AND created_at <= $%d", len(args))
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}

	offset := (filter.Page - 1) * filter.PerPage
	args = append(args, filter.PerPage, offset)
	query := fmt.Sprintf(
		`SELECT id, total, created_at FROM transactions%s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`,
		where, len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(&o.ID, &o.Total, &o.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan transaction row: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("row iteration error: %w", err)
	}

	return orders, total, nil
}

// SummarySince aggregates the sale count and revenue from `since` onward.
func (r *Repository) SummarySince(ctx context.Context, since time.Time) (*DailySummary, error) {
	query := `SELECT COUNT(*), COALESCE(SUM(total), 0) FROM transactions WHERE created_at >= $1`

	var s DailySummary
	if err := r.db.QueryRowContext(ctx, query, since).Scan(&s.OrderCount, &s.Revenue); err != nil {
		return nil, fmt.Errorf("query summary: %w", err)
	}
	return &s, nil
}

// SoldLinesSince returns every line item sold from `since` onward, annotated
// with the product's current display name. The join is a LEFT JOIN so lines
// survive product deletion; COALESCE normalizes the name to one shape before
// the aggregator ever sees it.
func (r *Repository) SoldLinesSince(ctx context.Context, since time.Time) ([]domain.SoldLine, error) {
	query := `SELECT ti.product_id, COALESCE(p.name, $2), ti.quantity
	          FROM transaction_items ti
	          JOIN transactions t ON t.id = ti.transaction_id
	          LEFT JOIN products p ON p.id = ti.product_id
	          WHERE t.created_at >= $1
	          ORDER BY t.created_at, ti.id`

	rows, err := r.db.QueryContext(ctx, query, since, deletedProductLabel)
	if err != nil {
		return nil, fmt.Errorf("query sold lines: %w", err)
	}
	defer rows.Close()

	var lines []domain.SoldLine
	for rows.Next() {
		var l domain.SoldLine
		if err := rows.Scan(&l.ProductID, &l.ProductName, &l.Quantity); err != nil {
			return nil, fmt.Errorf("scan sold line: %w", err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return lines, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}
