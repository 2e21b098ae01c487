package orderstore

import (
	"context"
	"errors"
	"time"

	"github.com/Jeda-Ngoding/pos-mvp/internal/domain"
)

var ErrOrderNotFound = errors.New("order not found")

type Credentials struct {
	Host              string
	Port              int
	User              string
	Password          string
	DBName            string
	MigrationsDirPath string
}

// ReportFilter scopes the transactions report. Zero From/To means no bound on
// that side. From/To are inclusive and already expanded to day boundaries by
// the caller.
type ReportFilter struct {
	From    time.Time
	To      time.Time
	Page    int
	PerPage int
}

// DailySummary is the dashboard's headline numbers for one time window.
type DailySummary struct {
	OrderCount int   `json:"order_count"`
	Revenue    int64 `json:"revenue"`
}

type Store interface {
	InsertOrder(ctx context.Context, total int64) (*domain.Order, error)
	InsertOrderLines(ctx context.Context, orderID int64, lines []domain.OrderLine) error
	GetOrderByID(ctx context.Context, id int64) (*domain.Order, error)
	CountOrderLines(ctx context.Context, orderID int64) (int, error)
	ListOrders(ctx context.Context, filter ReportFilter) ([]domain.Order, int, error)
	SummarySince(ctx context.Context, since time.Time) (*DailySummary, error)
	SoldLinesSince(ctx context.Context, since time.Time) ([]domain.SoldLine, error)
	RunMigrations(*Credentials) error
	Close() error
}
