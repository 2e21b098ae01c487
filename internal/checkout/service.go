package checkout

import (
	"context"

	"github.com/Jeda-Ngoding/pos-mvp/internal/domain"
	"github.com/Jeda-Ngoding/pos-mvp/internal/metrics"
	log "github.com/sirupsen/logrus"
)

// OrderStore is the slice of the order store this service needs: two
// independent inserts over the same logical connection. No transaction
// spanning both is assumed to exist.
type OrderStore interface {
	InsertOrder(ctx context.Context, total int64) (*domain.Order, error)
	InsertOrderLines(ctx context.Context, orderID int64, lines []domain.OrderLine) error
}

// Publisher emits a sale-completed event after a successful checkout. May be
// nil when eventing is not configured.
type Publisher interface {
	SaleCompleted(ctx context.Context, order *domain.Order, lines []domain.OrderLine)
}

type Service struct {
	store     OrderStore
	publisher Publisher
}

func NewService(store OrderStore, publisher Publisher) *Service {
	return &Service{store: store, publisher: publisher}
}

// Submit turns the cart into a persisted sale: first the header with the
// cart's total, then the line items carrying each line's add-time price.
// The two writes are sequential and not atomic. On full success the cart is
// cleared; on any failure it is left intact so the user can retry.
//
// Failure modes:
//   - empty cart: *ValidationError, zero store calls
//   - header insert fails: *SubmissionError, nothing persisted
//   - line insert fails: *PartialSubmissionError carrying the orphaned
//     header's id, which is also logged for manual reconciliation
func (s *Service) Submit(ctx context.Context, cart *domain.Cart) (*domain.Order, error) {
	if cart.IsEmpty() {
		metrics.CheckoutsTotal.WithLabelValues("validation_failed").Inc()
		return nil, &ValidationError{Reason: "cart is empty"}
	}

	order, err := s.store.InsertOrder(ctx, cart.Total())
	if err != nil {
		metrics.CheckoutsTotal.WithLabelValues("failed").Inc()
		return nil, &SubmissionError{Err: err}
	}

	lines := make([]domain.OrderLine, 0, cart.Len())
	for _, l := range cart.Lines {
		lines = append(lines, domain.OrderLine{
			OrderID:   order.ID,
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			Price:     l.Price,
		})
	}

	if err := s.store.InsertOrderLines(ctx, order.ID, lines); err != nil {
		metrics.CheckoutsTotal.WithLabelValues("partial").Inc()
		log.WithFields(log.Fields{
			"order_id": order.ID,
			"total":    order.Total,
			"lines":    len(lines),
		}).Error("order header persisted without line items, needs manual reconciliation")
		return nil, &PartialSubmissionError{OrderID: order.ID, Err: err}
	}

	cart.Clear()
	metrics.CheckoutsTotal.WithLabelValues("completed").Inc()

	log.WithFields(log.Fields{
		"order_id": order.ID,
		"total":    order.Total,
		"lines":    len(lines),
	}).Info("checkout completed")

	if s.publisher != nil {
		s.publisher.SaleCompleted(ctx, order, lines)
	}

	return order, nil
}
