package models

import "time"

// OrderRecord is one row of the orders sheet, already typed by the loader.
// The pipeline treats it as read-only and re-validates it defensively.
type OrderRecord struct {
	ClientID    string
	ClientName  string
	ClientPhone string
	ClientEmail string

	RestaurantName      string
	PickupAddressBookID string

	DeliveryRawAddress string
	DeliveryLatitude   float64
	DeliveryLongitude  float64
	DeliveryDetails    string

	// 3 = Mon/Wed/Fri, 5 = Mon..Fri. Anything else is skipped with a warning.
	DeliveryFrequency int

	// Descriptive order id from the sheet, used as the package description.
	OrderDescription string

	// RFC3339 pickup instant, kept exactly as loaded.
	PickupTimeUTC string

	PickupCode string
	City       string
	Country    string
	PostalCode string
}

// The detail blocks below are derived once at quote time and must reach the
// order stage unmodified. A missing field is an error there, never a default.

type ClientDetails struct {
	ClientID string
	Name     string
	Phone    string
	Email    string
}

type RestaurantDetails struct {
	Name                string
	PickupAddressBookID string
}

type OrderDetails struct {
	Description       string
	DeliveryFrequency int
	PickupCode        string
	City              string
	Country           string
	PostalCode        string
}

// AuditRecord is one flattened row for the append-only result log.
type AuditRecord struct {
	Timestamp           time.Time `json:"timestamp"`
	OrderID             string    `json:"order_id"`
	QuoteID             string    `json:"quote_id"`
	OrderState          string    `json:"order_state"`
	CreatedAt           string    `json:"created_at"`
	ClientID            string    `json:"client_id"`
	ClientName          string    `json:"client_name"`
	ClientPhone         string    `json:"client_phone"`
	ClientEmail         string    `json:"client_email"`
	RestaurantName      string    `json:"restaurant_name"`
	PickupAddressBookID string    `json:"pickup_address_book_id"`
	PickupTime          string    `json:"pickup_time"`
	PickupOrderCode     string    `json:"pickup_order_code"`
	DeliveryAddress     string    `json:"delivery_address"`
	DeliveryLatitude    float64   `json:"delivery_latitude"`
	DeliveryLongitude   float64   `json:"delivery_longitude"`
	QuotePrice          float64   `json:"quote_price"`
	Currency            string    `json:"currency"`
	Description         string    `json:"description"`
}
