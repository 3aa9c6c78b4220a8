package model

// Order statuses as reported by the backend while the vendor fulfils.
const (
	OrderPending    = "pending"
	OrderProcessing = "processing"
	OrderCompleted  = "completed"
	OrderFailed     = "failed"
)

// Order is a placed data bundle order.
type Order struct {
	ID             string `json:"id"`
	UserID         string `json:"userId"`
	ProductID      string `json:"productId"`
	Status         string `json:"status"`
	CreatedAt      string `json:"createdAt"`
	ProductName    string `json:"productName,omitempty"`
	DataAmount     string `json:"dataAmount,omitempty"`
	PhoneNumber    string `json:"phoneNumber,omitempty"`
	ProductNetwork string `json:"productNetwork,omitempty"`
}

// Done reports whether the vendor has finished with the order.
func (o *Order) Done() bool {
	return o.Status == OrderCompleted || o.Status == OrderFailed
}

// Pagination describes a page of results.
type Pagination struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Pages int `json:"pages"`
}

// OrderPage is one page of a user's orders.
type OrderPage struct {
	Orders         []Order    `json:"orders"`
	Pagination     Pagination `json:"pagination"`
	CompletedCount int        `json:"completedCount,omitempty"`
}

// NewOrder is the direct order creation payload.
type NewOrder struct {
	ProductID string `json:"productId"`
}
