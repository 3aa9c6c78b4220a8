package model

// Product is a purchasable data bundle.
type Product struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Network     string   `json:"network"`
	DataAmount  string   `json:"dataAmount"`
	Price       float64  `json:"price"`
	UserPrice   *float64 `json:"userPrice,omitempty"`
	AgentPrice  *float64 `json:"agentPrice,omitempty"`
	Description string   `json:"description,omitempty"`
}

// PriceFor returns the unit price for a role, falling back to the base price
// when no role-specific price is set.
func (p *Product) PriceFor(role string) float64 {
	switch role {
	case RoleAgent:
		if p.AgentPrice != nil {
			return *p.AgentPrice
		}
	default:
		if p.UserPrice != nil {
			return *p.UserPrice
		}
	}
	return p.Price
}

// NewProduct is the admin product creation payload.
type NewProduct struct {
	Name        string   `json:"name"`
	Network     string   `json:"network"`
	DataAmount  string   `json:"dataAmount"`
	Price       *float64 `json:"price,omitempty"`
	UserPrice   *float64 `json:"userPrice,omitempty"`
	AgentPrice  *float64 `json:"agentPrice,omitempty"`
	Description string   `json:"description,omitempty"`
}
