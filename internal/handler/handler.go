// Package handler exposes the storefront HTTP API. Handlers decode JSON,
// delegate to the domain, and map domain errors onto HTTP statuses; no
// business rules live here.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/posterzone/storefront/internal/domain/audit"
	"github.com/posterzone/storefront/internal/domain/cart"
	"github.com/posterzone/storefront/internal/domain/coupon"
	"github.com/posterzone/storefront/internal/domain/identity"
	"github.com/posterzone/storefront/internal/domain/order"
	"github.com/posterzone/storefront/internal/domain/poster"
	"github.com/posterzone/storefront/internal/domain/promo"
	"github.com/posterzone/storefront/internal/domain/settings"
)

// Config holds non-dependency configuration for the Handler.
type Config struct {
	// ImageBaseURL is prepended to relative image paths in poster responses.
	// When empty, image paths are returned as stored.
	ImageBaseURL string
}

// Handler wires the HTTP surface to the domain.
type Handler struct {
	cfg      Config
	posters  poster.Repository
	carts    *cart.Store
	bundles  promo.Repository
	coupons  coupon.Repository
	resolver *coupon.Resolver
	orders   order.Repository
	checkout *order.Service
	settings settings.Repository
	profiles identity.ProfileRepository
	auditLog audit.Repository
	auth     identity.Provider
}

// New constructs a Handler with the required domain dependencies.
func New(
	cfg Config,
	posters poster.Repository,
	carts *cart.Store,
	bundles promo.Repository,
	coupons coupon.Repository,
	resolver *coupon.Resolver,
	orders order.Repository,
	checkout *order.Service,
	settingsRepo settings.Repository,
	profiles identity.ProfileRepository,
	auditLog audit.Repository,
	auth identity.Provider,
) *Handler {
	return &Handler{
		cfg:      cfg,
		posters:  posters,
		carts:    carts,
		bundles:  bundles,
		coupons:  coupons,
		resolver: resolver,
		orders:   orders,
		checkout: checkout,
		settings: settingsRepo,
		profiles: profiles,
		auditLog: auditLog,
		auth:     auth,
	}
}

// Register binds all routes to the provided ServeMux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/posters", h.listPosters)
	mux.HandleFunc("GET /api/posters/{id}", h.getPoster)

	mux.HandleFunc("GET /api/cart", h.getCart)
	mux.HandleFunc("POST /api/cart/items", h.addCartItem)
	mux.HandleFunc("PATCH /api/cart/items/{id}", h.updateCartItem)
	mux.HandleFunc("DELETE /api/cart/items/{id}", h.removeCartItem)
	mux.HandleFunc("GET /api/cart/offers", h.listOffers)
	mux.HandleFunc("PUT /api/cart/bundle", h.selectBundle)
	mux.HandleFunc("DELETE /api/cart/bundle", h.clearBundle)
	mux.HandleFunc("POST /api/cart/coupon", h.applyCoupon)
	mux.HandleFunc("DELETE /api/cart/coupon", h.removeCoupon)
	mux.HandleFunc("GET /api/cart/totals", h.getTotals)

	mux.HandleFunc("POST /api/checkout", h.submitOrder)
	mux.HandleFunc("GET /api/orders/{id}", h.getOrder)
	mux.HandleFunc("GET /api/profile", h.getProfile)

	mux.HandleFunc("GET /api/admin/orders", h.adminListOrders)
	mux.HandleFunc("POST /api/admin/orders/{id}/status", h.adminUpdateStatus)
	mux.HandleFunc("GET /api/admin/coupons", h.adminListCoupons)
	mux.HandleFunc("GET /api/admin/audit", h.adminExportAudit)
}

// sessionID returns the cart session for the request, minting one when the
// client has not sent X-Session-ID yet. The (possibly new) ID is echoed on
// the response so the client can persist it.
func (h *Handler) sessionID(w http.ResponseWriter, r *http.Request) string {
	id := r.Header.Get("X-Session-ID")
	if id == "" || len(id) > 128 {
		id = uuid.New().String()
	}
	w.Header().Set("X-Session-ID", id)
	return id
}

// user authenticates the request, writing a 401 on failure.
func (h *Handler) user(w http.ResponseWriter, r *http.Request) (*identity.User, bool) {
	u, err := h.auth.Authenticate(r.Context(), r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return nil, false
	}
	return u, true
}

// admin authenticates the request and requires the admin scope.
func (h *Handler) admin(w http.ResponseWriter, r *http.Request) (*identity.User, bool) {
	u, ok := h.user(w, r)
	if !ok {
		return nil, false
	}
	if !u.HasScope(identity.ScopeAdmin) {
		writeError(w, http.StatusForbidden, "admin scope required")
		return nil, false
	}
	return u, true
}

type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Code: status, Message: msg})
}

// writeDomainError maps domain errors onto HTTP statuses. Coupon rejections
// and checkout validation failures are client errors; anything unrecognized
// is treated as a backend failure with no detail leaked.
func writeDomainError(w http.ResponseWriter, err error) {
	var (
		minErr     *coupon.MinimumNotMetError
		valErr     *order.ValidationError
		unavailErr *order.PosterUnavailableError
		transErr   *order.InvalidTransitionError
	)

	switch {
	case errors.Is(err, coupon.ErrInvalidCoupon):
		writeError(w, http.StatusUnprocessableEntity, "invalid coupon code")
	case errors.As(err, &minErr):
		writeError(w, http.StatusUnprocessableEntity, minErr.Error())
	case errors.Is(err, coupon.ErrUsageLimitReached):
		writeError(w, http.StatusUnprocessableEntity, "coupon usage limit reached")
	case errors.Is(err, coupon.ErrExpired):
		writeError(w, http.StatusUnprocessableEntity, "coupon expired")
	case errors.Is(err, order.ErrEmptyCart):
		writeError(w, http.StatusBadRequest, "cart is empty")
	case errors.As(err, &valErr):
		writeError(w, http.StatusBadRequest, valErr.Error())
	case errors.As(err, &unavailErr):
		writeError(w, http.StatusUnprocessableEntity, unavailErr.Error())
	case errors.Is(err, order.ErrBundleNotApplicable):
		writeError(w, http.StatusUnprocessableEntity, "selected bundle offer is not applicable")
	case errors.As(err, &transErr):
		writeError(w, http.StatusConflict, transErr.Error())
	case errors.Is(err, cart.ErrLineNotFound):
		writeError(w, http.StatusNotFound, "cart line not found")
	case errors.Is(err, cart.ErrInvalidQuantity):
		writeError(w, http.StatusUnprocessableEntity, "quantity must be greater than 0")
	case errors.Is(err, poster.ErrNotFound):
		writeError(w, http.StatusNotFound, "poster not found")
	case errors.Is(err, promo.ErrNotFound):
		writeError(w, http.StatusUnprocessableEntity, "bundle offer not found")
	case errors.Is(err, order.ErrNotFound):
		writeError(w, http.StatusNotFound, "order not found")
	default:
		writeError(w, http.StatusBadGateway, "backend unavailable, please retry")
	}
}

func (h *Handler) imageURL(path string) string {
	if path == "" || h.cfg.ImageBaseURL == "" {
		return path
	}
	return h.cfg.ImageBaseURL + "/" + path
}
