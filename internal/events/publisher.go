package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Jeda-Ngoding/pos-mvp/internal/domain"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	log "github.com/sirupsen/logrus"
)

// SaleEvent is the payload published after a successful checkout so other
// systems (accounting exports, reorder alerts) can react. The POS itself
// never consumes it.
type SaleEvent struct {
	EventID   string             `json:"event_id"`
	OrderID   int64              `json:"order_id"`
	Total     int64              `json:"total"`
	Lines     []domain.OrderLine `json:"lines"`
	CreatedAt time.Time          `json:"created_at"`
}

type SalePublisher struct {
	timeout time.Duration
	writer  *kafka.Writer
}

func NewSalePublisher(topic string, brokers ...string) *SalePublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return &SalePublisher{timeout: 5 * time.Second, writer: w}
}

// SaleCompleted publishes fire-and-forget: the checkout already succeeded,
// so a broker hiccup is logged and dropped rather than failing the sale.
func (p *SalePublisher) SaleCompleted(_ context.Context, order *domain.Order, lines []domain.OrderLine) {
	event := SaleEvent{
		EventID:   uuid.New().String(),
		OrderID:   order.ID,
		Total:     order.Total,
		Lines:     lines,
		CreatedAt: order.CreatedAt,
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		defer cancel()

		payload, err := json.Marshal(event)
		if err != nil {
			log.Printf("failed to marshal sale event %v: %v", event.EventID, err)
			return
		}

		err = p.writer.WriteMessages(ctx, kafka.Message{
			Key:   []byte(event.EventID),
			Value: payload,
		})
		if err != nil {
			log.Printf("failed to publish sale event for order %d: %v", order.ID, err)
		}
	}()
}

func (p *SalePublisher) Close() error {
	return p.writer.Close()
}
