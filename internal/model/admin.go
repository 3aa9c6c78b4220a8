package model

// Totals is the admin aggregate report.
type Totals struct {
	TotalOrders  int     `json:"totalOrders"`
	TotalRevenue float64 `json:"totalRevenue"`
	TotalUsers   int     `json:"totalUsers"`
	TotalAgents  int     `json:"totalAgents"`
}

// WalletLoad is the admin wallet funding payload.
type WalletLoad struct {
	Amount float64 `json:"amount"`
}

// PaystackInit is the payment initialization payload. Amount is in minor
// units (kobo/pesewas).
type PaystackInit struct {
	Amount   int64             `json:"amount"`
	Email    string            `json:"email"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// PaystackAuthorization is the payment initialization response.
type PaystackAuthorization struct {
	Status  bool   `json:"status"`
	Message string `json:"message,omitempty"`
	Data    struct {
		AuthorizationURL string `json:"authorization_url"`
		AccessCode       string `json:"access_code,omitempty"`
		Reference        string `json:"reference,omitempty"`
	} `json:"data"`
}
