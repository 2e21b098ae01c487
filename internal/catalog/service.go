package catalog

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Jeda-Ngoding/pos-mvp/internal/domain"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// ImageStore uploads product images to external object storage and returns
// the public URL. May be nil when image upload is not configured.
type ImageStore interface {
	Upload(ctx context.Context, objectName, contentType string, data []byte) (string, error)
}

// Service fronts the catalog store with a cache-aside product cache. The POS
// screen resolves a product through here on every cart add, so single
// product reads are cached; paginated listings go straight to the store.
type Service struct {
	repo   ProductRepository
	cache  ProductCache
	images ImageStore
	sfg    singleflight.Group // Prevents cache stampede
}

func NewService(repo ProductRepository, cache ProductCache, images ImageStore) *Service {
	return &Service{
		repo:   repo,
		cache:  cache,
		images: images,
	}
}

// GetProduct returns one product, from cache when possible. Concurrent
// misses for the same id collapse into a single store read.
func (s *Service) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	v, err, _ := s.sfg.Do(strconv.FormatInt(id, 10), func() (interface{}, error) {
		if s.cache != nil {
			p, errGet := s.cache.Get(ctx, id)
			if errGet == nil {
				return p, nil
			}
			if !errors.Is(errGet, ErrCacheMiss) {
				log.Printf("cache get error: %v", errGet) // log cache error but continue
			}
		}

		p, errRepo := s.repo.Get(ctx, id)
		if errRepo != nil {
			return nil, errRepo
		}

		if s.cache != nil {
			go func() {
				if errSet := s.cache.Set(context.Background(), p); errSet != nil {
					log.Printf("cache set error: %v", errSet)
				}
			}()
		}

		return p, nil
	})

	if err != nil {
		return nil, err
	}

	return v.(*domain.Product), nil
}

// ListProducts returns one catalog page plus the exact total count.
func (s *Service) ListProducts(ctx context.Context, page, perPage int) ([]domain.Product, int, error) {
	return s.repo.List(ctx, page, perPage)
}

func (s *Service) CreateProduct(ctx context.Context, p *domain.Product) error {
	if err := validate(p); err != nil {
		return err
	}
	return s.repo.Create(ctx, p)
}

func (s *Service) UpdateProduct(ctx context.Context, p *domain.Product) error {
	if err := validate(p); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return err
	}
	s.invalidate(p.ID)
	return nil
}

func (s *Service) DeleteProduct(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(id)
	return nil
}

// AttachImage uploads the image bytes to object storage and stores the
// resulting URL on the product.
func (s *Service) AttachImage(ctx context.Context, id int64, filename, contentType string, data []byte) (*domain.Product, error) {
	if s.images == nil {
		return nil, errors.New("image storage is not configured")
	}

	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	objectName := fmt.Sprintf("products/%d/%s", id, filename)
	url, err := s.images.Upload(ctx, objectName, contentType, data)
	if err != nil {
		return nil, fmt.Errorf("upload image: %w", err)
	}

	p.ImageURL = url
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	s.invalidate(id)
	return p, nil
}

var errInvalidProduct = errors.New("product needs a name and a non-negative price")

func validate(p *domain.Product) error {
	if p.Name == "" || p.Price < 0 {
		return errInvalidProduct
	}
	return nil
}

func (s *Service) invalidate(id int64) {
	if s.cache == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, id); err != nil {
		log.Printf("cache invalidate error: %v", err)
	}
}
