package httpx

type AddToCartRequest struct {
	ProductID string `json:"product_id"`
	Size      int    `json:"size"`
	Quantity  int    `json:"quantity"`
}

type CartLineResponse struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	Size      int    `json:"size"`
	Quantity  int    `json:"quantity"`
}

type CreateOrderRequest struct {
	ShippingAddress string `json:"shipping_address"`
	PhoneNumber     string `json:"phone_number"`
}

type OrderResponse struct {
	ID              string              `json:"id"`
	UserID          string              `json:"user_id"`
	OrderNumber     string              `json:"order_number"`
	Status          string              `json:"status"`
	TotalAmount     float64             `json:"total_amount"`
	ShippingAddress string              `json:"shipping_address"`
	PhoneNumber     string              `json:"phone_number"`
	Items           []OrderLineResponse `json:"items"`
	CreatedAt       string              `json:"created_at"`
	UpdatedAt       string              `json:"updated_at"`
}

type OrderLineResponse struct {
	ID        string  `json:"id"`
	ProductID string  `json:"product_id"`
	Size      int     `json:"size"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	Subtotal  float64 `json:"subtotal"`
}

type CheckoutStatusResponse struct {
	CheckoutID    string `json:"checkout_id"`
	Status        string `json:"status"`
	CurrentStep   string `json:"current_step,omitempty"`
	ErrorMessages string `json:"error_messages,omitempty"`
	TraceID       string `json:"trace_id,omitempty"`
	UpdatedAt     string `json:"updated_at"`
}

type DashboardResponse struct {
	ActiveSessions int `json:"active_sessions"`
	TotalOrders    int `json:"total_orders"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
