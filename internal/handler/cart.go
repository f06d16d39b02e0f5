package handler

import (
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/posterzone/storefront/internal/domain/cart"
	"github.com/posterzone/storefront/internal/domain/pricing"
	"github.com/posterzone/storefront/internal/domain/promo"
	"github.com/posterzone/storefront/internal/domain/settings"
)

type cartLineView struct {
	ID        string          `json:"id"`
	PosterID  string          `json:"poster_id"`
	Title     string          `json:"title"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	Image     string          `json:"image,omitempty"`
	Size      string          `json:"size,omitempty"`
}

type cartView struct {
	Lines      []cartLineView  `json:"lines"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	CouponCode string          `json:"coupon_code,omitempty"`
	BundleID   string          `json:"bundle_id,omitempty"`
}

func viewCart(c cart.Cart) cartView {
	lines := make([]cartLineView, len(c.Lines))
	for i, l := range c.Lines {
		lines[i] = cartLineView{
			ID:        l.ID,
			PosterID:  l.PosterID,
			Title:     l.Title,
			UnitPrice: l.UnitPrice,
			Quantity:  l.Quantity,
			Image:     l.Image,
			Size:      l.Size,
		}
	}
	return cartView{
		Lines:      lines,
		Subtotal:   c.Subtotal().Round(2),
		CouponCode: c.CouponCode,
		BundleID:   c.BundleID,
	}
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	sid := h.sessionID(w, r)
	writeJSON(w, http.StatusOK, viewCart(h.carts.Get(sid)))
}

type addItemRequest struct {
	PosterID string `json:"poster_id"`
	Quantity int    `json:"quantity"`
	Size     string `json:"size"`
}

func (h *Handler) addCartItem(w http.ResponseWriter, r *http.Request) {
	sid := h.sessionID(w, r)

	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	// Line contents come from the catalog, never from the client.
	p, err := h.posters.GetByID(r.Context(), req.PosterID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	c, err := h.carts.AddLine(sid, cart.Line{
		PosterID:  p.ID,
		Title:     p.Title,
		UnitPrice: p.Price,
		Quantity:  req.Quantity,
		Image:     h.imageURL(p.Image.Thumbnail),
		Size:      req.Size,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewCart(c))
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) updateCartItem(w http.ResponseWriter, r *http.Request) {
	sid := h.sessionID(w, r)

	var req updateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	c, err := h.carts.UpdateQuantity(sid, r.PathValue("id"), req.Quantity)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewCart(c))
}

func (h *Handler) removeCartItem(w http.ResponseWriter, r *http.Request) {
	sid := h.sessionID(w, r)

	c, err := h.carts.RemoveLine(sid, r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewCart(c))
}

type offerView struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Savings     decimal.Decimal `json:"savings"`
}

// listOffers returns the bundle offers applicable to the current cart, each
// with the savings it would yield right now.
func (h *Handler) listOffers(w http.ResponseWriter, r *http.Request) {
	sid := h.sessionID(w, r)
	c := h.carts.Get(sid)

	offers, err := h.bundles.ListActive(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	applicable := promo.Evaluate(c.Lines, offers)
	views := make([]offerView, len(applicable))
	for i, a := range applicable {
		views[i] = offerView{
			ID:          a.Offer.ID,
			Title:       a.Offer.Title,
			Description: a.Offer.Description,
			Savings:     a.Savings,
		}
	}
	writeJSON(w, http.StatusOK, views)
}

type selectBundleRequest struct {
	BundleID string `json:"bundle_id"`
}

func (h *Handler) selectBundle(w http.ResponseWriter, r *http.Request) {
	sid := h.sessionID(w, r)

	var req selectBundleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	offer, err := h.bundles.GetByID(r.Context(), req.BundleID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	c := h.carts.Get(sid)
	if _, ok := promo.SavingsFor(*offer, c.Lines); !ok {
		writeError(w, http.StatusUnprocessableEntity, "selected bundle offer is not applicable")
		return
	}

	writeJSON(w, http.StatusOK, viewCart(h.carts.SelectBundle(sid, offer.ID)))
}

func (h *Handler) clearBundle(w http.ResponseWriter, r *http.Request) {
	sid := h.sessionID(w, r)
	writeJSON(w, http.StatusOK, viewCart(h.carts.ClearBundle(sid)))
}

type applyCouponRequest struct {
	Code string `json:"code"`
}

type appliedCouponView struct {
	Code        string          `json:"code"`
	Discount    decimal.Decimal `json:"discount"`
	Description string          `json:"description,omitempty"`
}

// applyCoupon validates the code against the current subtotal and, when it
// passes, records it on the session. Applying replaces any previous code.
// Rejections leave the cart state unchanged.
func (h *Handler) applyCoupon(w http.ResponseWriter, r *http.Request) {
	sid := h.sessionID(w, r)

	var req applyCouponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	c := h.carts.Get(sid)
	applied, err := h.resolver.Resolve(r.Context(), req.Code, c.Subtotal())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	h.carts.ApplyCoupon(sid, applied.Code)
	writeJSON(w, http.StatusOK, appliedCouponView{
		Code:        applied.Code,
		Discount:    applied.Amount,
		Description: applied.Description,
	})
}

func (h *Handler) removeCoupon(w http.ResponseWriter, r *http.Request) {
	sid := h.sessionID(w, r)
	writeJSON(w, http.StatusOK, viewCart(h.carts.RemoveCoupon(sid)))
}

type totalsView struct {
	Subtotal           decimal.Decimal `json:"subtotal"`
	BundleDiscount     decimal.Decimal `json:"bundle_discount"`
	CouponDiscount     decimal.Decimal `json:"coupon_discount"`
	DiscountedSubtotal decimal.Decimal `json:"discounted_subtotal"`
	Shipping           decimal.Decimal `json:"shipping"`
	Tax                decimal.Decimal `json:"tax"`
	Total              decimal.Decimal `json:"total"`
}

func viewTotals(t pricing.Totals) totalsView {
	return totalsView{
		Subtotal:           t.Subtotal,
		BundleDiscount:     t.BundleDiscount,
		CouponDiscount:     t.CouponDiscount,
		DiscountedSubtotal: t.DiscountedSubtotal,
		Shipping:           t.Shipping,
		Tax:                t.Tax,
		Total:              t.Total,
	}
}

// getTotals quotes the full pricing breakdown for the current cart state:
// subtotal, both discounts, shipping, tax, total. Derived on every call.
func (h *Handler) getTotals(w http.ResponseWriter, r *http.Request) {
	sid := h.sessionID(w, r)
	c := h.carts.Get(sid)
	subtotal := c.Subtotal()

	bundleDiscount := decimal.Zero
	if c.BundleID != "" {
		offer, err := h.bundles.GetByID(r.Context(), c.BundleID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		// A selection that no longer applies contributes nothing rather
		// than failing the quote; the cart may have shrunk since.
		if savings, ok := promo.SavingsFor(*offer, c.Lines); ok {
			bundleDiscount = savings
		}
	}

	couponDiscount := decimal.Zero
	if c.CouponCode != "" {
		applied, err := h.resolver.Resolve(r.Context(), c.CouponCode, subtotal)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		couponDiscount = applied.Amount
	}

	cfg, err := settings.PricingConfig(r.Context(), h.settings)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, viewTotals(pricing.Compute(subtotal, bundleDiscount, couponDiscount, cfg)))
}
