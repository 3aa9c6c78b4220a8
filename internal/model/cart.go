package model

// CartLine is a pending purchase intent held only on the client, keyed by
// (ProductID, PhoneNumber). Display fields are denormalized at add time so
// the line renders without a product lookup.
type CartLine struct {
	ID          string  `json:"id"`
	ProductID   string  `json:"productId"`
	Name        string  `json:"name"`
	Network     string  `json:"network"`
	DataAmount  string  `json:"dataAmount"`
	Price       float64 `json:"price"`
	PhoneNumber string  `json:"phoneNumber"`
	Quantity    int     `json:"quantity"`
}

// ServerCartLine is a cart entry already persisted by the backend. The client
// treats it as opaque beyond product and quantity.
type ServerCartLine struct {
	Product  *Product `json:"product"`
	Quantity int      `json:"quantity"`
}

// PendingEntry is an add-to-cart staged while fully unauthenticated, pushed
// to the server cart after the next successful login.
type PendingEntry struct {
	ProductID   string `json:"productId"`
	Quantity    int    `json:"quantity"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
}

// CartAddRequest is the server cart add payload.
type CartAddRequest struct {
	ProductID   string `json:"productId"`
	Quantity    int    `json:"quantity"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
}

// Payment methods accepted at checkout.
const (
	PaymentWallet   = "wallet"
	PaymentPaystack = "paystack"
)

// CheckoutRequest is the checkout payload.
type CheckoutRequest struct {
	PaymentMethod string `json:"paymentMethod"`
}

// CheckoutResult is the checkout response. Gateway checkouts carry an
// authorization URL, either nested or at the top level depending on the
// backend code path; wallet checkouts report status "ok".
type CheckoutResult struct {
	Status           string `json:"status,omitempty"`
	AuthorizationURL string `json:"authorization_url,omitempty"`
	Data             *struct {
		AuthorizationURL string `json:"authorization_url,omitempty"`
	} `json:"data,omitempty"`
}

// RedirectURL returns the gateway authorization URL, or "" for inline
// (wallet) completion.
func (r *CheckoutResult) RedirectURL() string {
	if r.Data != nil && r.Data.AuthorizationURL != "" {
		return r.Data.AuthorizationURL
	}
	return r.AuthorizationURL
}
