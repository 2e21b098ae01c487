package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/Jeda-Ngoding/pos-mvp/internal/cart"
	"github.com/Jeda-Ngoding/pos-mvp/internal/catalog"
	"github.com/Jeda-Ngoding/pos-mvp/internal/domain"
	"github.com/go-chi/chi/v5"
)

type CartHandler struct {
	carts   *cart.Store
	catalog *catalog.Service
}

func NewCartHandler(carts *cart.Store, catalogService *catalog.Service) *CartHandler {
	return &CartHandler{
		carts:   carts,
		catalog: catalogService,
	}
}

type AddItemRequestDTO struct {
	ProductID int64 `json:"product_id"`
}

type CartResponseDTO struct {
	SessionID string            `json:"session_id"`
	Lines     []domain.CartLine `json:"lines"`
	Total     int64             `json:"total"`
}

// cartResponse snapshots the cart's lines so the response stays stable once
// the session lock is released.
func cartResponse(c *domain.Cart) CartResponseDTO {
	lines := make([]domain.CartLine, len(c.Lines))
	copy(lines, c.Lines)
	return CartResponseDTO{
		Lines: lines,
		Total: c.Total(),
	}
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	var resp CartResponseDTO
	sessionID, _ := h.carts.Update(getSessionID(r.Context()), func(c *domain.Cart) error {
		resp = cartResponse(c)
		return nil
	})
	resp.SessionID = sessionID

	w.Header().Set("X-Session-ID", sessionID)
	respondJSON(w, http.StatusOK, resp)
}

// AddItem puts one unit of a product into the session's cart, capturing the
// product's current catalog price as the line price.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be positive")
		return
	}

	product, err := h.catalog.GetProduct(r.Context(), req.ProductID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "product not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load product")
		return
	}

	var resp CartResponseDTO
	sessionID, _ := h.carts.Update(getSessionID(r.Context()), func(c *domain.Cart) error {
		c.Add(*product)
		resp = cartResponse(c)
		return nil
	})
	resp.SessionID = sessionID

	w.Header().Set("X-Session-ID", sessionID)
	respondJSON(w, http.StatusCreated, resp)
}

func (h *CartHandler) IncrementQuantity(w http.ResponseWriter, r *http.Request) {
	h.mutateLine(w, r, func(c *domain.Cart, productID int64) {
		c.IncrementQuantity(productID)
	})
}

func (h *CartHandler) DecrementQuantity(w http.ResponseWriter, r *http.Request) {
	h.mutateLine(w, r, func(c *domain.Cart, productID int64) {
		c.DecrementQuantity(productID)
	})
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	h.mutateLine(w, r, func(c *domain.Cart, productID int64) {
		c.Remove(productID)
	})
}

func (h *CartHandler) mutateLine(w http.ResponseWriter, r *http.Request, mutate func(*domain.Cart, int64)) {
	productIDStr := chi.URLParam(r, "product_id")
	productID, err := strconv.ParseInt(productIDStr, 10, 64)
	if err != nil || productID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a positive integer")
		return
	}

	var resp CartResponseDTO
	sessionID, _ := h.carts.Update(getSessionID(r.Context()), func(c *domain.Cart) error {
		mutate(c, productID)
		resp = cartResponse(c)
		return nil
	})
	resp.SessionID = sessionID

	w.Header().Set("X-Session-ID", sessionID)
	respondJSON(w, http.StatusOK, resp)
}
