package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/posterzone/storefront/internal/domain/identity"
	"github.com/posterzone/storefront/internal/domain/order"
)

type checkoutRequest struct {
	ShippingAddress order.ShippingAddress `json:"shipping_address"`
}

type orderView struct {
	ID              string                `json:"id"`
	Status          string                `json:"status"`
	Items           []orderItemView       `json:"items,omitempty"`
	Subtotal        decimal.Decimal       `json:"subtotal"`
	BundleDiscount  decimal.Decimal       `json:"bundle_discount"`
	CouponDiscount  decimal.Decimal       `json:"coupon_discount"`
	Shipping        decimal.Decimal       `json:"shipping"`
	Tax             decimal.Decimal       `json:"tax"`
	Total           decimal.Decimal       `json:"total"`
	ShippingAddress order.ShippingAddress `json:"shipping_address"`
	CreatedAt       time.Time             `json:"created_at"`
}

type orderItemView struct {
	PosterID  string          `json:"poster_id"`
	Title     string          `json:"title"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	Size      string          `json:"size,omitempty"`
}

func viewOrder(o *order.Order) orderView {
	items := make([]orderItemView, len(o.Items))
	for i, it := range o.Items {
		items[i] = orderItemView{
			PosterID:  it.PosterID,
			Title:     it.Title,
			UnitPrice: it.UnitPrice,
			Quantity:  it.Quantity,
			Size:      it.Size,
		}
	}
	return orderView{
		ID:              o.ID,
		Status:          string(o.Status),
		Items:           items,
		Subtotal:        o.Subtotal,
		BundleDiscount:  o.BundleDiscount,
		CouponDiscount:  o.CouponDiscount,
		Shipping:        o.Shipping,
		Tax:             o.Tax,
		Total:           o.Total,
		ShippingAddress: o.ShippingAddress,
		CreatedAt:       o.CreatedAt,
	}
}

// submitOrder places the order for the authenticated user's session cart.
// On failure the cart is untouched and the customer may correct and retry.
func (h *Handler) submitOrder(w http.ResponseWriter, r *http.Request) {
	u, ok := h.user(w, r)
	if !ok {
		return
	}
	sid := h.sessionID(w, r)

	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	o, err := h.checkout.Checkout(r.Context(), order.CheckoutRequest{
		SessionID: sid,
		UserID:    u.ID,
		Address:   req.ShippingAddress,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, viewOrder(o))
}

// getOrder returns one of the caller's own orders.
func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	u, ok := h.user(w, r)
	if !ok {
		return
	}

	o, err := h.orders.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if o.UserID != u.ID && !u.HasScope(identity.ScopeAdmin) {
		// Not found rather than forbidden: order IDs are not enumerable.
		writeError(w, http.StatusNotFound, "order not found")
		return
	}
	writeJSON(w, http.StatusOK, viewOrder(o))
}

// getProfile returns the caller's stored shipping defaults, if any.
func (h *Handler) getProfile(w http.ResponseWriter, r *http.Request) {
	u, ok := h.user(w, r)
	if !ok {
		return
	}

	p, err := h.profiles.GetByUserID(r.Context(), u.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "no profile")
		return
	}
	writeJSON(w, http.StatusOK, profileView{
		Name:    p.Name,
		Email:   p.Email,
		Address: p.Address,
		City:    p.City,
		State:   p.State,
		Pincode: p.Pincode,
		Phone:   p.Phone,
		Country: p.Country,
	})
}

type profileView struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
	Phone   string `json:"phone"`
	Country string `json:"country"`
}
