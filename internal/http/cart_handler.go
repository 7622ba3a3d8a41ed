package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/fjod/go_cart/cart-store/internal/cart"
	"github.com/fjod/go_cart/cart-store/internal/catalog"
	"github.com/fjod/go_cart/cart-store/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

// CartStore is the part of cart.Store the handlers use.
type CartStore interface {
	Cart() domain.Cart
	AddProduct(ctx context.Context, productID int64) error
	RemoveProduct(ctx context.Context, productID int64) error
	UpdateProductAmount(ctx context.Context, req cart.UpdateProductAmount) error
}

// Inventory answers availability lookups outside the cart's writer lock.
type Inventory interface {
	GetStock(ctx context.Context, productID int64) (domain.Stock, error)
}

type CartHandler struct {
	store     CartStore
	inventory Inventory
	timeout   time.Duration
	log       logrus.FieldLogger
}

func NewCartHandler(store CartStore, inventory Inventory, timeout time.Duration, log logrus.FieldLogger) *CartHandler {
	return &CartHandler{
		store:     store,
		inventory: inventory,
		timeout:   timeout,
		log:       log,
	}
}

type AddItemRequestDTO struct {
	ProductID int64 `json:"product_id"`
}

type UpdateAmountRequestDTO struct {
	Amount int `json:"amount"`
}

type CartResponse struct {
	Items    domain.Cart `json:"items"`
	Quantity int         `json:"quantity"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	h.respondCart(w, http.StatusOK)
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID <= 0 {
		h.respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be positive")
		return
	}

	if err := h.store.AddProduct(ctx, req.ProductID); err != nil {
		h.handleStoreError(w, r, err)
		return
	}

	h.respondCart(w, http.StatusCreated)
}

func (h *CartHandler) UpdateAmount(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	productID, ok := h.productIDParam(w, r)
	if !ok {
		return
	}

	var req UpdateAmountRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	// non-positive amounts are accepted and ignored by the store
	err := h.store.UpdateProductAmount(ctx, cart.UpdateProductAmount{ProductID: productID, Amount: req.Amount})
	if err != nil {
		h.handleStoreError(w, r, err)
		return
	}

	h.respondCart(w, http.StatusOK)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	productID, ok := h.productIDParam(w, r)
	if !ok {
		return
	}

	if err := h.store.RemoveProduct(ctx, productID); err != nil {
		h.handleStoreError(w, r, err)
		return
	}

	h.respondCart(w, http.StatusOK)
}

func (h *CartHandler) GetStock(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	productID, ok := h.productIDParam(w, r)
	if !ok {
		return
	}

	stock, err := h.inventory.GetStock(ctx, productID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			h.respondError(w, http.StatusNotFound, "not_found", "product not found")
			return
		}
		h.log.WithError(err).WithField("request_id", getRequestID(r.Context())).Warn("stock lookup failed")
		h.respondError(w, http.StatusBadGateway, "upstream_failure", "stock lookup failed")
		return
	}

	h.respondJSON(w, http.StatusOK, stock)
}

func (h *CartHandler) productIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "product_id"), 10, 64)
	if err != nil || productID <= 0 {
		h.respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a positive integer")
		return 0, false
	}
	return productID, true
}

func (h *CartHandler) handleStoreError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, cart.ErrOutOfStock):
		h.respondError(w, http.StatusConflict, "out_of_stock", err.Error())
	case errors.Is(err, cart.ErrNotInCart):
		h.respondError(w, http.StatusNotFound, "not_in_cart", cart.ErrNotInCart.Error())
	case errors.Is(err, cart.ErrRemoveProduct):
		h.respondError(w, http.StatusBadGateway, "upstream_failure", cart.ErrRemoveProduct.Error())
	case errors.Is(err, cart.ErrAddProduct):
		h.respondError(w, http.StatusBadGateway, "upstream_failure", cart.ErrAddProduct.Error())
	case errors.Is(err, cart.ErrUpdateAmount):
		h.respondError(w, http.StatusBadGateway, "upstream_failure", cart.ErrUpdateAmount.Error())
	default:
		h.log.WithError(err).WithField("request_id", getRequestID(r.Context())).Error("unexpected cart error")
		h.respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func (h *CartHandler) respondCart(w http.ResponseWriter, status int) {
	c := h.store.Cart()
	h.respondJSON(w, status, CartResponse{Items: c, Quantity: c.Quantity()})
}

func (h *CartHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.WithError(err).Error("failed to encode response")
	}
}

func (h *CartHandler) respondError(w http.ResponseWriter, status int, code, message string) {
	h.respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}
