package report

import (
	"context"
	"fmt"
	"time"

	"github.com/Jeda-Ngoding/pos-mvp/internal/domain"
	"github.com/Jeda-Ngoding/pos-mvp/internal/orderstore"
)

// SalesStore is the read side of the order store used by the dashboard and
// the transactions report.
type SalesStore interface {
	ListOrders(ctx context.Context, filter orderstore.ReportFilter) ([]domain.Order, int, error)
	SummarySince(ctx context.Context, since time.Time) (*orderstore.DailySummary, error)
	SoldLinesSince(ctx context.Context, since time.Time) ([]domain.SoldLine, error)
}

// Summary is the dashboard header: today's sale count, today's revenue and
// the top sellers of the day.
type Summary struct {
	OrderCount  int                 `json:"order_count"`
	Revenue     int64               `json:"revenue"`
	TopProducts []domain.TopProduct `json:"top_products"`
}

// Page is one page of the transactions report.
type Page struct {
	Orders     []domain.Order `json:"transactions"`
	Page       int            `json:"page"`
	PerPage    int            `json:"per_page"`
	TotalCount int            `json:"total_count"`
	TotalPages int            `json:"total_pages"`
}

type Service struct {
	store   SalesStore
	perPage int
	now     func() time.Time
}

func NewService(store SalesStore, perPage int) *Service {
	if perPage <= 0 {
		perPage = 5
	}
	return &Service{store: store, perPage: perPage, now: time.Now}
}

// DashboardSummary aggregates today's sales: header numbers straight from
// the store, top sellers computed here from today's sold lines.
func (s *Service) DashboardSummary(ctx context.Context) (*Summary, error) {
	since := startOfDay(s.now())

	daily, err := s.store.SummarySince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("load daily summary: %w", err)
	}

	lines, err := s.store.SoldLinesSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("load sold lines: %w", err)
	}

	return &Summary{
		OrderCount:  daily.OrderCount,
		Revenue:     daily.Revenue,
		TopProducts: TopProducts(lines),
	}, nil
}

// Transactions returns one report page, newest first. from/to are inclusive
// day-granular bounds; a zero value leaves that side open. The page number is
// clamped to 1.
func (s *Service) Transactions(ctx context.Context, from, to time.Time, page int) (*Page, error) {
	if page < 1 {
		page = 1
	}

	filter := orderstore.ReportFilter{
		Page:    page,
		PerPage: s.perPage,
	}
	if !from.IsZero() {
		filter.From = startOfDay(from)
	}
	if !to.IsZero() {
		filter.To = endOfDay(to)
	}

	orders, total, err := s.store.ListOrders(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	totalPages := (total + s.perPage - 1) / s.perPage

	return &Page{
		Orders:     orders,
		Page:       page,
		PerPage:    s.perPage,
		TotalCount: total,
		TotalPages: totalPages,
	}, nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return startOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}
