package domain

// ============================================================
// Customer
// ============================================================

// Customer is the opaque identity carried by accounts and cards.
// Identity management lives outside the ledger; only the id and a
// display name travel with the reference.
type Customer struct {
	ID   string `json:"customer_id"`
	Name string `json:"name"`
}

// NewCustomer builds a customer reference.
func NewCustomer(id, name string) Customer {
	return Customer{ID: id, Name: name}
}

func (c Customer) String() string {
	if c.Name == "" {
		return c.ID
	}
	return c.Name
}
