package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/posterzone/storefront/internal/domain/coupon"
	"github.com/posterzone/storefront/internal/domain/order"
)

const defaultListLimit = 100

func (h *Handler) adminListOrders(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.admin(w, r); !ok {
		return
	}

	var status order.Status
	if raw := r.URL.Query().Get("status"); raw != "" {
		parsed, err := order.ParseStatus(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		status = parsed
	}

	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 1000 {
			limit = n
		}
	}

	orders, err := h.orders.ListByStatus(r.Context(), status, limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	views := make([]orderView, len(orders))
	for i := range orders {
		views[i] = viewOrder(&orders[i])
	}
	writeJSON(w, http.StatusOK, views)
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) adminUpdateStatus(w http.ResponseWriter, r *http.Request) {
	u, ok := h.admin(w, r)
	if !ok {
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	next, err := order.ParseStatus(req.Status)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	o, err := h.checkout.Transition(r.Context(), u.Name, r.PathValue("id"), next)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOrder(o))
}

type couponAdminView struct {
	ID           string          `json:"id"`
	Code         string          `json:"code"`
	DiscountType string          `json:"discount_type"`
	Value        decimal.Decimal `json:"value"`
	MinOrder     decimal.Decimal `json:"min_order"`
	MaxUses      int             `json:"max_uses"`
	Uses         int             `json:"uses"`
	ExpiresAt    *time.Time      `json:"expires_at,omitempty"`
	Description  string          `json:"description,omitempty"`
	Active       bool            `json:"active"`
}

func (h *Handler) adminListCoupons(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.admin(w, r); !ok {
		return
	}

	coupons, err := h.coupons.List(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	views := make([]couponAdminView, len(coupons))
	for i, c := range coupons {
		views[i] = viewCoupon(c)
	}
	writeJSON(w, http.StatusOK, views)
}

func viewCoupon(c coupon.Coupon) couponAdminView {
	return couponAdminView{
		ID:           c.ID,
		Code:         c.Code,
		DiscountType: string(c.DiscountType),
		Value:        c.Value,
		MinOrder:     c.MinOrder,
		MaxUses:      c.MaxUses,
		Uses:         c.Uses,
		ExpiresAt:    c.ExpiresAt,
		Description:  c.Description,
		Active:       c.Active,
	}
}

// adminExportAudit streams the audit log as NDJSON, one entry per line,
// newest first. Encoded with jx to avoid buffering the whole export.
func (h *Handler) adminExportAudit(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.admin(w, r); !ok {
		return
	}

	limit := 1000
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 10000 {
			limit = n
		}
	}

	entries, err := h.auditLog.List(r.Context(), limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.WriteHeader(http.StatusOK)

	var e jx.Encoder
	for _, entry := range entries {
		e.Reset()
		e.Obj(func(e *jx.Encoder) {
			e.Field("id", func(e *jx.Encoder) { e.Str(entry.ID) })
			e.Field("actor", func(e *jx.Encoder) { e.Str(entry.Actor) })
			e.Field("action", func(e *jx.Encoder) { e.Str(entry.Action) })
			e.Field("entity", func(e *jx.Encoder) { e.Str(entry.Entity) })
			e.Field("entity_id", func(e *jx.Encoder) { e.Str(entry.EntityID) })
			e.Field("detail", func(e *jx.Encoder) { e.Str(entry.Detail) })
			e.Field("created_at", func(e *jx.Encoder) { e.Str(entry.CreatedAt.Format(time.RFC3339)) })
		})
		if _, err := w.Write(append(e.Bytes(), '\n')); err != nil {
			return
		}
	}
}
