package model

// User roles as reported by the backend.
const (
	RoleAdmin = "admin"
	RoleAgent = "agent"
	RoleUser  = "user"
)

// User is the backend's view of an account.
type User struct {
	ID               string  `json:"id"`
	Username         string  `json:"username"`
	Email            string  `json:"email,omitempty"`
	PhoneNumber      string  `json:"phoneNumber,omitempty"`
	Role             string  `json:"role"`
	IsVerified       bool    `json:"isVerified"`
	Balance          float64 `json:"balance"`
	TotalOrdersToday int     `json:"totalOrdersToday,omitempty"`
	TotalSpentToday  float64 `json:"totalSpentToday,omitempty"`
}

// Credentials is the login payload. Identifier accepts username or email.
type Credentials struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// Registration is the account creation payload.
type Registration struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	Role        string `json:"role,omitempty"`
}

// AuthResponse is returned by login and register.
type AuthResponse struct {
	User        User   `json:"user"`
	AccessToken string `json:"accessToken"`
}
