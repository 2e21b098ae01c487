package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Jeda-Ngoding/pos-mvp/internal/cart"
	"github.com/Jeda-Ngoding/pos-mvp/internal/catalog"
	"github.com/Jeda-Ngoding/pos-mvp/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubProductRepo backs the catalog service in handler tests.
type stubProductRepo struct {
	products map[int64]domain.Product
}

func newStubProductRepo(products ...domain.Product) *stubProductRepo {
	r := &stubProductRepo{products: make(map[int64]domain.Product)}
	for _, p := range products {
		r.products[p.ID] = p
	}
	return r
}

func (s *stubProductRepo) List(_ context.Context, page, perPage int) ([]domain.Product, int, error) {
	var out []domain.Product
	for _, p := range s.products {
		out = append(out, p)
	}
	return out, len(s.products), nil
}

func (s *stubProductRepo) Get(_ context.Context, id int64) (*domain.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, catalog.ErrProductNotFound
	}
	return &p, nil
}

func (s *stubProductRepo) Create(_ context.Context, p *domain.Product) error {
	p.ID = int64(len(s.products) + 1)
	s.products[p.ID] = *p
	return nil
}

func (s *stubProductRepo) Update(_ context.Context, p *domain.Product) error {
	if _, ok := s.products[p.ID]; !ok {
		return catalog.ErrProductNotFound
	}
	s.products[p.ID] = *p
	return nil
}

func (s *stubProductRepo) Delete(_ context.Context, id int64) error {
	if _, ok := s.products[id]; !ok {
		return catalog.ErrProductNotFound
	}
	delete(s.products, id)
	return nil
}

func newCartFixture(products ...domain.Product) (*CartHandler, *cart.Store) {
	carts := cart.NewStore(time.Hour)
	catalogService := catalog.NewService(newStubProductRepo(products...), nil, nil)
	return NewCartHandler(carts, catalogService), carts
}

func withSession(r *http.Request, sessionID string) *http.Request {
	ctx := context.WithValue(r.Context(), "session_id", sessionID)
	return r.WithContext(ctx)
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func seedCart(t *testing.T, carts *cart.Store, sessionID string, fn func(*domain.Cart)) {
	t.Helper()
	_, err := carts.Update(sessionID, func(c *domain.Cart) error {
		fn(c)
		return nil
	})
	require.NoError(t, err)
}

func TestGetCart_NewSessionMintsID(t *testing.T) {
	handler, _ := newCartFixture()

	recorder := httptest.NewRecorder()
	request := withSession(httptest.NewRequest("GET", "/", nil), "")

	handler.GetCart(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)

	var resp CartResponseDTO
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
	assert.NotEmpty(t, resp.SessionID)
	assert.Equal(t, resp.SessionID, recorder.Header().Get("X-Session-ID"))
	assert.Empty(t, resp.Lines)
	assert.Equal(t, int64(0), resp.Total)
}

func TestAddItem_Success(t *testing.T) {
	handler, carts := newCartFixture(domain.Product{ID: 1, Name: "Kopi Susu", Price: 1000})

	body, _ := json.Marshal(AddItemRequestDTO{ProductID: 1})
	recorder := httptest.NewRecorder()
	request := withSession(httptest.NewRequest("POST", "/", bytes.NewReader(body)), "session-1")

	handler.AddItem(recorder, request)

	require.Equal(t, http.StatusCreated, recorder.Code)

	var resp CartResponseDTO
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
	require.Len(t, resp.Lines, 1)
	assert.Equal(t, int64(1000), resp.Lines[0].Price)
	assert.Equal(t, 1, resp.Lines[0].Quantity)
	assert.Equal(t, int64(1000), resp.Total)

	c := carts.Get("session-1")
	require.NotNil(t, c)
	assert.Equal(t, 1, c.Len())
}

func TestAddItem_UnknownProduct(t *testing.T) {
	handler, _ := newCartFixture()

	body, _ := json.Marshal(AddItemRequestDTO{ProductID: 42})
	recorder := httptest.NewRecorder()
	request := withSession(httptest.NewRequest("POST", "/", bytes.NewReader(body)), "session-1")

	handler.AddItem(recorder, request)

	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestAddItem_InvalidBody(t *testing.T) {
	handler, _ := newCartFixture()

	recorder := httptest.NewRecorder()
	request := withSession(httptest.NewRequest("POST", "/", bytes.NewReader([]byte("{"))), "session-1")

	handler.AddItem(recorder, request)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestDecrement_ClampsAtOne(t *testing.T) {
	handler, carts := newCartFixture(domain.Product{ID: 1, Name: "Kopi", Price: 1000})
	seedCart(t, carts, "session-1", func(c *domain.Cart) {
		c.Add(domain.Product{ID: 1, Name: "Kopi", Price: 1000})
	})

	recorder := httptest.NewRecorder()
	request := withSession(httptest.NewRequest("POST", "/", nil), "session-1")
	request = withURLParam(request, "product_id", "1")

	handler.DecrementQuantity(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)

	var resp CartResponseDTO
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
	require.Len(t, resp.Lines, 1)
	assert.Equal(t, 1, resp.Lines[0].Quantity)
}

func TestRemoveItem(t *testing.T) {
	handler, carts := newCartFixture()
	seedCart(t, carts, "session-1", func(c *domain.Cart) {
		c.Add(domain.Product{ID: 1, Name: "Kopi", Price: 1000})
	})

	recorder := httptest.NewRecorder()
	request := withSession(httptest.NewRequest("DELETE", "/", nil), "session-1")
	request = withURLParam(request, "product_id", "1")

	handler.RemoveItem(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, 0, carts.Get("session-1").Len())
}

func TestMutateLine_InvalidProductID(t *testing.T) {
	handler, _ := newCartFixture()

	recorder := httptest.NewRecorder()
	request := withSession(httptest.NewRequest("POST", "/", nil), "session-1")
	request = withURLParam(request, "product_id", "abc")

	handler.IncrementQuantity(recorder, request)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}
