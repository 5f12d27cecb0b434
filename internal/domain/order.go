package domain

import "github.com/shopspring/decimal"

// ShippingInfo is the shipping form captured during checkout and stored with the order.
type ShippingInfo struct {
	FirstName  string `json:"firstName" validate:"required"`
	LastName   string `json:"lastName" validate:"required"`
	Email      string `json:"email" validate:"required,basicemail"`
	Phone      string `json:"phone" validate:"required"`
	Address    string `json:"address" validate:"required"`
	City       string `json:"city" validate:"required"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country" validate:"required,shipcountry"`
}

const OrderStatusConfirmed = "confirmed"

type Order struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id,omitempty"`
	SessionID string          `json:"-"`
	Email     string          `json:"email"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Shipping  decimal.Decimal `json:"shipping"`
	Tax       decimal.Decimal `json:"tax"`
	Total     decimal.Decimal `json:"total"`
	Status    string          `json:"status"`
	ShipTo    ShippingInfo    `json:"shipping_address"`
	Items     []OrderItem     `json:"items"`
	CreatedAt string          `json:"created_at"`
}

type OrderItem struct {
	ProductID  string          `db:"product_id" json:"product_id"`
	Name       string          `db:"product_name" json:"name"`
	ColorName  string          `db:"color_name" json:"color"`
	ColorValue string          `db:"color_value" json:"color_value"`
	Size       string          `db:"size" json:"size"`
	Quantity   int             `db:"quantity" json:"quantity"`
	UnitPrice  decimal.Decimal `db:"unit_price" json:"unit_price"`
}

func (i OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
