package models

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EarPieceVariant is one of the three fixed product tiers.
type EarPieceVariant string

const (
	VariantStandard EarPieceVariant = "standard"
	VariantPremium  EarPieceVariant = "premium"
	VariantMedical  EarPieceVariant = "medical"
)

// UnitPrice returns the fixed per-variant price. Prices are frozen at order
// creation; an unknown variant returns ok=false.
func (v EarPieceVariant) UnitPrice() (decimal.Decimal, bool) {
	switch v {
	case VariantStandard:
		return decimal.NewFromFloat(49.99), true
	case VariantPremium:
		return decimal.NewFromFloat(99.99), true
	case VariantMedical:
		return decimal.NewFromFloat(199.99), true
	default:
		return decimal.Zero, false
	}
}

// OrderStatus follows the ordered progression pending -> confirmed ->
// manufacturing -> shipped -> delivered, plus the terminal cancelled.
type OrderStatus string

const (
	OrderPending       OrderStatus = "pending"
	OrderConfirmed     OrderStatus = "confirmed"
	OrderManufacturing OrderStatus = "manufacturing"
	OrderShipped       OrderStatus = "shipped"
	OrderDelivered     OrderStatus = "delivered"
	OrderCancelled     OrderStatus = "cancelled"
)

// Cancellable reports whether the user may still cancel from this status.
func (s OrderStatus) Cancellable() bool {
	return s == OrderPending || s == OrderConfirmed
}

// ShippingAddress is attached at confirmation time. Every field is required.
type ShippingAddress struct {
	Name    string `json:"name"`
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zip_code"`
	Country string `json:"country"`
}

type Order struct {
	ID                uuid.UUID
	UserID            uuid.UUID
	ReconstructionJob string
	Variant           EarPieceVariant
	Quantity          int
	Price             decimal.Decimal
	Status            OrderStatus
	ShippingAddress   *ShippingAddress
	TrackingNumber    sql.NullString
	EstimatedDelivery sql.NullTime
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
