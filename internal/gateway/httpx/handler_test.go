package httpx_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jcmexdev/shoe-fulfillment/internal/cart"
	cartmemory "github.com/jcmexdev/shoe-fulfillment/internal/cart/memory"
	"github.com/jcmexdev/shoe-fulfillment/internal/catalog"
	"github.com/jcmexdev/shoe-fulfillment/internal/checkout"
	"github.com/jcmexdev/shoe-fulfillment/internal/coordinator/checkoutlog"
	"github.com/jcmexdev/shoe-fulfillment/internal/gateway/httpx"
	"github.com/jcmexdev/shoe-fulfillment/internal/order"
	ordermemory "github.com/jcmexdev/shoe-fulfillment/internal/order/memory"
	"github.com/jcmexdev/shoe-fulfillment/internal/pkg/session"
	"github.com/jcmexdev/shoe-fulfillment/internal/user"
)

const (
	userToken  = "token-u1"
	adminToken = "token-admin"
)

func newTestServer(t *testing.T) (*httptest.Server, order.Repository) {
	t.Helper()

	cat := catalog.NewMemoryStore(
		catalog.Product{ID: "p1", Name: "Runner", Price: 89.90, Stock: 10, Sizes: []int{40, 41, 42}},
		catalog.Product{ID: "p2", Name: "Court", Price: 74.50, Stock: 1, Sizes: []int{42, 43, 44}},
	)
	users := user.NewMemoryDirectory(
		user.User{ID: "u1", Name: "Ada"},
		user.User{ID: "admin", Name: "Root", Admin: true},
	)
	carts := cartmemory.NewRepository()
	orders := ordermemory.NewRepository()
	log := checkoutlog.NewMemoryRepository()

	sessions := session.NewMemoryStore()
	ctx := context.Background()
	if err := sessions.Create(ctx, "u1", userToken); err != nil {
		t.Fatalf("seed session: %v", err)
	}
	if err := sessions.Create(ctx, "admin", adminToken); err != nil {
		t.Fatalf("seed session: %v", err)
	}

	handler := httpx.NewHandler(
		cart.NewService(carts, cat),
		checkout.NewService(carts, cat, users, orders, log),
		order.NewService(orders),
		users,
		log,
		sessions,
		orders,
	)

	srv := httptest.NewServer(httpx.NewRouter(handler, sessions))
	t.Cleanup(srv.Close)
	return srv, orders
}

func request(t *testing.T, method, url, token, body string, out any) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s %s response: %v", method, url, err)
		}
	}
	return resp
}

func TestRequestsWithoutSessionAreRejected(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/cart/"},
		{http.MethodPost, "/api/orders/"},
		{http.MethodGet, "/api/admin/sessions"},
	} {
		resp := request(t, tc.method, srv.URL+tc.path, "", "{}", nil)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("%s %s without token: expected 401, got %d", tc.method, tc.path, resp.StatusCode)
		}
	}

	resp := request(t, http.MethodGet, srv.URL+"/api/cart/", "bogus", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unknown token, got %d", resp.StatusCode)
	}
}

func TestCartFlow(t *testing.T) {
	srv, _ := newTestServer(t)

	var added httpx.CartLineResponse
	resp := request(t, http.MethodPost, srv.URL+"/api/cart/", userToken,
		`{"product_id":"p1","size":42,"quantity":2}`, &added)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("add to cart: expected 200, got %d", resp.StatusCode)
	}
	if added.Quantity != 2 || added.ProductID != "p1" {
		t.Fatalf("unexpected line: %+v", added)
	}

	// Same product and size merges into the existing line.
	var merged httpx.CartLineResponse
	request(t, http.MethodPost, srv.URL+"/api/cart/", userToken,
		`{"product_id":"p1","size":42,"quantity":3}`, &merged)
	if merged.ID != added.ID || merged.Quantity != 5 {
		t.Fatalf("expected merged line with quantity 5, got %+v", merged)
	}

	var lines []httpx.CartLineResponse
	request(t, http.MethodGet, srv.URL+"/api/cart/", userToken, "", &lines)
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}

	// Quantity update via query param.
	var updated httpx.CartLineResponse
	resp = request(t, http.MethodPut,
		fmt.Sprintf("%s/api/cart/%s/quantity?quantity=1", srv.URL, added.ID), userToken, "", &updated)
	if resp.StatusCode != http.StatusOK || updated.Quantity != 1 {
		t.Fatalf("update quantity: status %d line %+v", resp.StatusCode, updated)
	}

	// Quantity 0 removes the line; repeating it is still 204, not 404.
	for i := 0; i < 2; i++ {
		resp = request(t, http.MethodPut,
			fmt.Sprintf("%s/api/cart/%s/quantity?quantity=0", srv.URL, added.ID), userToken, "", nil)
		if resp.StatusCode != http.StatusNoContent {
			t.Fatalf("expected 204 on zero quantity (call %d), got %d", i+1, resp.StatusCode)
		}
	}

	request(t, http.MethodGet, srv.URL+"/api/cart/", userToken, "", &lines)
	if len(lines) != 0 {
		t.Fatalf("expected empty cart, got %d lines", len(lines))
	}
}

func TestAddToCartErrors(t *testing.T) {
	srv, _ := newTestServer(t)

	cases := []struct {
		name string
		body string
		want int
	}{
		{"bad json", `{`, http.StatusBadRequest},
		{"missing product", `{"size":42,"quantity":1}`, http.StatusBadRequest},
		{"unknown product", `{"product_id":"nope","size":42,"quantity":1}`, http.StatusNotFound},
		{"invalid size", `{"product_id":"p1","size":35,"quantity":1}`, http.StatusBadRequest},
		{"invalid quantity", `{"product_id":"p1","size":42,"quantity":0}`, http.StatusBadRequest},
		{"over stock", `{"product_id":"p2","size":42,"quantity":5}`, http.StatusConflict},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := request(t, http.MethodPost, srv.URL+"/api/cart/", userToken, tc.body, nil)
			if resp.StatusCode != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, resp.StatusCode)
			}
		})
	}
}

func TestCheckoutOverHTTP(t *testing.T) {
	srv, _ := newTestServer(t)

	request(t, http.MethodPost, srv.URL+"/api/cart/", userToken,
		`{"product_id":"p1","size":42,"quantity":2}`, nil)

	// Empty shipping address rejected.
	resp := request(t, http.MethodPost, srv.URL+"/api/orders/", userToken,
		`{"shipping_address":"","phone_number":"+49123"}`, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for blank address, got %d", resp.StatusCode)
	}

	var created httpx.OrderResponse
	resp = request(t, http.MethodPost, srv.URL+"/api/orders/", userToken,
		`{"shipping_address":"1 Main St","phone_number":"+49123"}`, &created)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if created.Status != "PENDING" || !strings.HasPrefix(created.OrderNumber, "ORD-") {
		t.Fatalf("unexpected order: %+v", created)
	}
	if created.TotalAmount != 179.80 {
		t.Fatalf("expected total 179.80, got %v", created.TotalAmount)
	}

	// Cart is empty now, so a second checkout fails.
	resp = request(t, http.MethodPost, srv.URL+"/api/orders/", userToken,
		`{"shipping_address":"1 Main St","phone_number":"+49123"}`, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty cart, got %d", resp.StatusCode)
	}

	// The checkout audit trail is queryable under the order id.
	var status httpx.CheckoutStatusResponse
	resp = request(t, http.MethodGet, srv.URL+"/api/checkouts/"+created.ID, userToken, "", &status)
	if resp.StatusCode != http.StatusOK || status.Status != "COMPLETED" {
		t.Fatalf("expected COMPLETED checkout, got status %d body %+v", resp.StatusCode, status)
	}
}

func TestOrderEndpointsEnforceOwnershipAndAdmin(t *testing.T) {
	srv, _ := newTestServer(t)

	request(t, http.MethodPost, srv.URL+"/api/cart/", userToken,
		`{"product_id":"p1","size":42,"quantity":1}`, nil)
	var created httpx.OrderResponse
	request(t, http.MethodPost, srv.URL+"/api/orders/", userToken,
		`{"shipping_address":"1 Main St","phone_number":"+49123"}`, &created)

	// Owner can list their own orders.
	var mine []httpx.OrderResponse
	resp := request(t, http.MethodGet, srv.URL+"/api/orders/user/u1", userToken, "", &mine)
	if resp.StatusCode != http.StatusOK || len(mine) != 1 {
		t.Fatalf("owner listing: status %d, %d orders", resp.StatusCode, len(mine))
	}

	// A non-admin cannot read someone else's orders.
	resp = request(t, http.MethodGet, srv.URL+"/api/orders/user/admin", userToken, "", nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}

	// Admin can.
	resp = request(t, http.MethodGet, srv.URL+"/api/orders/user/u1", adminToken, "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("admin listing: expected 200, got %d", resp.StatusCode)
	}

	// Listing all orders is admin-only.
	resp = request(t, http.MethodGet, srv.URL+"/api/orders/", userToken, "", nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 on GET /api/orders/ for non-admin, got %d", resp.StatusCode)
	}

	// Status update is admin-only; any-to-any transitions are allowed.
	resp = request(t, http.MethodPut,
		fmt.Sprintf("%s/api/orders/%s/status?status=shipped", srv.URL, created.ID), userToken, "", nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin status update, got %d", resp.StatusCode)
	}

	var updated httpx.OrderResponse
	resp = request(t, http.MethodPut,
		fmt.Sprintf("%s/api/orders/%s/status?status=shipped", srv.URL, created.ID), adminToken, "", &updated)
	if resp.StatusCode != http.StatusOK || updated.Status != "SHIPPED" {
		t.Fatalf("admin status update: status %d order %+v", resp.StatusCode, updated)
	}

	resp = request(t, http.MethodPut,
		fmt.Sprintf("%s/api/orders/%s/status?status=REFUNDED", srv.URL, created.ID), adminToken, "", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid status, got %d", resp.StatusCode)
	}
}

func TestAdminDashboardAndLogout(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := request(t, http.MethodGet, srv.URL+"/api/admin/sessions", userToken, "", nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin dashboard, got %d", resp.StatusCode)
	}

	var dash httpx.DashboardResponse
	resp = request(t, http.MethodGet, srv.URL+"/api/admin/sessions", adminToken, "", &dash)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("dashboard: expected 200, got %d", resp.StatusCode)
	}
	if dash.ActiveSessions != 2 || dash.TotalOrders != 0 {
		t.Fatalf("unexpected dashboard: %+v", dash)
	}

	resp = request(t, http.MethodPost, srv.URL+"/api/auth/logout", userToken, "", nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("logout: expected 204, got %d", resp.StatusCode)
	}

	// The token is dead afterwards.
	resp = request(t, http.MethodGet, srv.URL+"/api/cart/", userToken, "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", resp.StatusCode)
	}

	request(t, http.MethodGet, srv.URL+"/api/admin/sessions", adminToken, "", &dash)
	if dash.ActiveSessions != 1 {
		t.Fatalf("expected 1 active session after logout, got %d", dash.ActiveSessions)
	}
}
