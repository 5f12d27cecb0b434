package domain

type User struct {
	ID          string `db:"id" json:"id"`
	Email       string `db:"email" json:"email"`
	Hash        string `db:"password_hash" json:"-"`
	DisplayName string `db:"display_name" json:"displayName"`
	FirstName   string `db:"first_name" json:"firstName,omitempty"`
	LastName    string `db:"last_name" json:"lastName,omitempty"`
	IsAdmin     bool   `db:"is_admin" json:"isAdmin"`
	CreatedAt   string `db:"created_at" json:"createdAt"`
}

type AddressType string

const (
	AddressShipping AddressType = "shipping"
	AddressBilling  AddressType = "billing"
)

// CountryUS is the only country with mandatory state and postal code.
const (
	CountryUS      = "United States"
	CountryGeorgia = "Georgia"
)

// ShipsTo reports whether orders can be shipped to country.
func ShipsTo(country string) bool {
	return country == CountryUS || country == CountryGeorgia
}

type Address struct {
	ID           string      `db:"id" json:"id"`
	UserID       string      `db:"user_id" json:"-"`
	Type         AddressType `db:"type" json:"type"`
	FirstName    string      `db:"first_name" json:"firstName"`
	LastName     string      `db:"last_name" json:"lastName"`
	AddressLine1 string      `db:"address_line_1" json:"addressLine1"`
	AddressLine2 string      `db:"address_line_2" json:"addressLine2,omitempty"`
	City         string      `db:"city" json:"city"`
	State        string      `db:"state" json:"state"`
	PostalCode   string      `db:"postal_code" json:"postalCode"`
	Country      string      `db:"country" json:"country"`
	Phone        string      `db:"phone" json:"phone,omitempty"`
	IsDefault    bool        `db:"is_default" json:"isDefault"`
	CreatedAt    string      `db:"created_at" json:"createdAt"`
	UpdatedAt    string      `db:"updated_at" json:"updatedAt"`
}

type Favourite struct {
	ProductID string  `json:"product_id"`
	CreatedAt string  `json:"created_at"`
	Product   Product `json:"product"`
}
