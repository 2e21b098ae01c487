package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"
	log "github.com/sirupsen/logrus"
)

// ImageClient uploads product images to an S3-compatible object storage
// bucket over plain HTTP PUT. The storage service is an external dependency
// that can flap independently of the database, so calls go through a circuit
// breaker: while it is open, uploads fail fast instead of tying up checkout
// staff waiting on timeouts.
type ImageClient struct {
	client    *resty.Client
	breaker   *gobreaker.CircuitBreaker
	baseURL   string
	publicURL string
}

func NewImageClient(baseURL, publicURL string) *ImageClient {
	settings := gobreaker.Settings{
		Name:    "image-storage",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.WithFields(log.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("image storage circuit breaker state change")
		},
	}

	return &ImageClient{
		client:    resty.New().SetTimeout(10 * time.Second).SetRetryCount(0),
		breaker:   gobreaker.NewCircuitBreaker(settings),
		baseURL:   baseURL,
		publicURL: publicURL,
	}
}

// Upload PUTs the object and returns its public URL.
func (c *ImageClient) Upload(ctx context.Context, objectName, contentType string, data []byte) (string, error) {
	_, err := c.breaker.Execute(func() (interface{}, error) {
		resp, err := c.client.R().
			SetContext(ctx).
			SetHeader("Content-Type", contentType).
			SetBody(data).
			Put(fmt.Sprintf("%s/%s", c.baseURL, objectName))
		if err != nil {
			return nil, err
		}
		if resp.IsError() {
			return nil, fmt.Errorf("image storage returned %s", resp.Status())
		}
		return nil, nil
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", objectName, err)
	}

	return fmt.Sprintf("%s/%s", c.publicURL, objectName), nil
}
