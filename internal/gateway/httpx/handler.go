package httpx

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jcmexdev/shoe-fulfillment/internal/cart"
	cartdomain "github.com/jcmexdev/shoe-fulfillment/internal/cart/domain"
	"github.com/jcmexdev/shoe-fulfillment/internal/checkout"
	"github.com/jcmexdev/shoe-fulfillment/internal/coordinator/checkoutlog"
	"github.com/jcmexdev/shoe-fulfillment/internal/fault"
	"github.com/jcmexdev/shoe-fulfillment/internal/gateway/httpx/middlewares"
	"github.com/jcmexdev/shoe-fulfillment/internal/order"
	orderdomain "github.com/jcmexdev/shoe-fulfillment/internal/order/domain"
	"github.com/jcmexdev/shoe-fulfillment/internal/pkg/session"
	"github.com/jcmexdev/shoe-fulfillment/internal/user"
)

// Handler handles incoming HTTP requests for the fulfillment core.
type Handler struct {
	carts       *cart.Service
	checkout    *checkout.Service
	orders      *order.Service
	users       user.Directory
	checkoutLog checkoutlog.Repository // nil-safe: status endpoint 404s if nil
	sessions    session.Store
	orderRepo   order.Repository
}

func NewHandler(
	carts *cart.Service,
	co *checkout.Service,
	orders *order.Service,
	users user.Directory,
	log checkoutlog.Repository,
	sessions session.Store,
	orderRepo order.Repository,
) *Handler {
	return &Handler{
		carts:       carts,
		checkout:    co,
		orders:      orders,
		users:       users,
		checkoutLog: log,
		sessions:    sessions,
		orderRepo:   orderRepo,
	}
}

// --- cart ---

func (h *Handler) ListCart(w http.ResponseWriter, r *http.Request) {
	userID, _ := middlewares.UserID(r.Context())

	lines, err := h.carts.ListItems(r.Context(), userID)
	if err != nil {
		writeFault(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapCartLines(lines))
}

func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request) {
	userID, _ := middlewares.UserID(r.Context())

	var req AddToCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if req.ProductID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "product_id is required")
		return
	}

	line, err := h.carts.AddItem(r.Context(), userID, req.ProductID, req.Size, req.Quantity)
	if err != nil {
		writeFault(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapCartLine(line))
}

func (h *Handler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	userID, _ := middlewares.UserID(r.Context())
	lineID := chi.URLParam(r, "id")

	if err := h.carts.RemoveItem(r.Context(), userID, lineID); err != nil {
		writeFault(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) UpdateCartQuantity(w http.ResponseWriter, r *http.Request) {
	userID, _ := middlewares.UserID(r.Context())
	lineID := chi.URLParam(r, "id")

	qty, err := strconv.Atoi(r.URL.Query().Get("quantity"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "quantity must be an integer")
		return
	}

	line, removed, err := h.carts.UpdateQuantity(r.Context(), userID, lineID, qty)
	if err != nil {
		writeFault(w, err)
		return
	}
	if removed {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, mapCartLine(line))
}

// --- orders ---

func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	userID, _ := middlewares.UserID(r.Context())

	var req CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	o, err := h.checkout.CreateOrder(r.Context(), userID, req.ShippingAddress, req.PhoneNumber)
	if err != nil {
		writeFault(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, mapOrder(o))
}

func (h *Handler) GetUserOrders(w http.ResponseWriter, r *http.Request) {
	requesterID, _ := middlewares.UserID(r.Context())
	targetID := chi.URLParam(r, "userID")

	// A non-admin may only list their own orders.
	if requesterID != targetID && !h.isAdmin(r) {
		writeError(w, http.StatusForbidden, "forbidden", "cannot view other users' orders")
		return
	}

	orders, err := h.orders.GetUserOrders(r.Context(), targetID)
	if err != nil {
		writeFault(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapOrders(orders))
}

func (h *Handler) GetAllOrders(w http.ResponseWriter, r *http.Request) {
	if !h.isAdmin(r) {
		writeError(w, http.StatusForbidden, "forbidden", "admin privileges required")
		return
	}

	orders, err := h.orders.GetAllOrders(r.Context())
	if err != nil {
		writeFault(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapOrders(orders))
}

func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	if !h.isAdmin(r) {
		writeError(w, http.StatusForbidden, "forbidden", "admin privileges required to update status")
		return
	}

	orderID := chi.URLParam(r, "id")
	status := r.URL.Query().Get("status")

	o, err := h.orders.UpdateStatus(r.Context(), orderID, status)
	if err != nil {
		writeFault(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapOrder(o))
}

// --- checkout status ---

func (h *Handler) GetCheckoutStatus(w http.ResponseWriter, r *http.Request) {
	checkoutID := chi.URLParam(r, "id")
	if h.checkoutLog == nil {
		writeError(w, http.StatusNotFound, "not_found", "checkout log disabled")
		return
	}

	entry, err := h.checkoutLog.GetLatest(r.Context(), checkoutID)
	if err != nil {
		writeFault(w, err)
		return
	}
	writeJSON(w, http.StatusOK, CheckoutStatusResponse{
		CheckoutID:    entry.CheckoutID,
		Status:        string(entry.Status),
		CurrentStep:   entry.CurrentStep,
		ErrorMessages: entry.ErrorMessages,
		TraceID:       entry.TraceID,
		UpdatedAt:     entry.UpdatedAt.Format(time.RFC3339),
	})
}

// --- admin / auth ---

func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	if !h.isAdmin(r) {
		writeError(w, http.StatusForbidden, "forbidden", "admin privileges required")
		return
	}

	active, err := h.sessions.ActiveCount(r.Context())
	if err != nil {
		writeFault(w, err)
		return
	}
	total, err := h.orderRepo.Count(r.Context())
	if err != nil {
		writeFault(w, err)
		return
	}
	writeJSON(w, http.StatusOK, DashboardResponse{
		ActiveSessions: active,
		TotalOrders:    total,
	})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	token, ok := middlewares.SessionToken(r.Context())
	if ok {
		if err := h.sessions.Invalidate(r.Context(), token); err != nil {
			writeFault(w, err)
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) isAdmin(r *http.Request) bool {
	userID, ok := middlewares.UserID(r.Context())
	if !ok {
		return false
	}
	u, err := h.users.GetUser(r.Context(), userID)
	return err == nil && u.Admin
}

// --- mapping ---

func mapCartLine(l cartdomain.Line) CartLineResponse {
	return CartLineResponse{
		ID:        l.ID,
		ProductID: l.ProductID,
		Size:      l.Size,
		Quantity:  l.Quantity,
	}
}

func mapCartLines(lines []cartdomain.Line) []CartLineResponse {
	out := make([]CartLineResponse, len(lines))
	for i, l := range lines {
		out[i] = mapCartLine(l)
	}
	return out
}

func mapOrder(o orderdomain.Order) OrderResponse {
	items := make([]OrderLineResponse, len(o.Lines))
	for i, l := range o.Lines {
		items[i] = OrderLineResponse{
			ID:        l.ID,
			ProductID: l.ProductID,
			Size:      l.Size,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Subtotal:  l.Subtotal,
		}
	}
	return OrderResponse{
		ID:              o.ID,
		UserID:          o.UserID,
		OrderNumber:     o.Number,
		Status:          string(o.Status),
		TotalAmount:     o.Total,
		ShippingAddress: o.ShippingAddress,
		PhoneNumber:     o.PhoneNumber,
		Items:           items,
		CreatedAt:       o.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:       o.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func mapOrders(orders []orderdomain.Order) []OrderResponse {
	out := make([]OrderResponse, len(orders))
	for i, o := range orders {
		out[i] = mapOrder(o)
	}
	return out
}

// --- writing ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{
		Error:   code,
		Message: msg,
	})
}

// writeFault maps the fault taxonomy to HTTP status codes. Anything that is
// not a typed fault is an internal error; its details stay in the logs.
func writeFault(w http.ResponseWriter, err error) {
	kind, ok := fault.KindOf(err)
	if !ok {
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected error")
		return
	}

	status := http.StatusBadRequest
	switch kind {
	case fault.KindNotFound:
		status = http.StatusNotFound
	case fault.KindInsufficientStock, fault.KindConflict:
		status = http.StatusConflict
	}
	writeError(w, status, kind.String(), err.Error())
}
