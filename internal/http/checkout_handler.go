package http

import (
	"errors"
	"net/http"

	"github.com/Jeda-Ngoding/pos-mvp/internal/cart"
	"github.com/Jeda-Ngoding/pos-mvp/internal/checkout"
	"github.com/Jeda-Ngoding/pos-mvp/internal/domain"
)

type CheckoutHandler struct {
	carts     *cart.Store
	submitter *checkout.Service
}

func NewCheckoutHandler(carts *cart.Store, submitter *checkout.Service) *CheckoutHandler {
	return &CheckoutHandler{
		carts:     carts,
		submitter: submitter,
	}
}

type CheckoutResponseDTO struct {
	Order *domain.Order `json:"order"`
}

type CheckoutErrorDTO struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	OrderID int64  `json:"order_id,omitempty"`
}

// Checkout submits the session's cart. The three failure modes of the
// submitter map onto distinct HTTP responses so the till operator sees what
// actually happened; a partial submission surfaces the orphaned order id.
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var order *domain.Order
	sessionID, err := h.carts.Update(getSessionID(r.Context()), func(c *domain.Cart) error {
		var subErr error
		order, subErr = h.submitter.Submit(r.Context(), c)
		return subErr
	})
	w.Header().Set("X-Session-ID", sessionID)

	if err != nil {
		var vErr *checkout.ValidationError
		if errors.As(err, &vErr) {
			respondJSON(w, http.StatusUnprocessableEntity, CheckoutErrorDTO{
				Error: vErr.Reason,
				Code:  "validation_failed",
			})
			return
		}

		var pErr *checkout.PartialSubmissionError
		if errors.As(err, &pErr) {
			respondJSON(w, http.StatusBadGateway, CheckoutErrorDTO{
				Error:   "checkout partially failed, sale recorded without items",
				Code:    "partial_submission",
				OrderID: pErr.OrderID,
			})
			return
		}

		respondJSON(w, http.StatusBadGateway, CheckoutErrorDTO{
			Error: "checkout failed, nothing was recorded",
			Code:  "submission_failed",
		})
		return
	}

	respondJSON(w, http.StatusCreated, CheckoutResponseDTO{Order: order})
}
