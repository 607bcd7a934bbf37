package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DeliveryStatus is the fulfilment state of an order.
type DeliveryStatus string

const (
	DeliveryPending   DeliveryStatus = "Pending"
	DeliveryDelivered DeliveryStatus = "Delivered"
)

// Order is a customer order owned by the order-tracking side of the app.
// The notification engine only reads it.
type Order struct {
	ID               string          `json:"id"`
	CustomerName     string          `json:"customerName"`
	Address          string          `json:"address"`
	MobileNo         string          `json:"mobileNo"`
	Item             string          `json:"item"`
	Quantity         int64           `json:"quantity"`
	OrderDate        time.Time       `json:"orderDate"`
	DeliveryDate     time.Time       `json:"deliveryDate"` // calendar date; only Y/M/D is used
	AdvanceAmount    decimal.Decimal `json:"advanceAmount"`
	TotalAmount      decimal.Decimal `json:"totalAmount"`
	RemainingBalance decimal.Decimal `json:"remainingBalance"`
	DeliveryStatus   DeliveryStatus  `json:"deliveryStatus"`
	Notes            string          `json:"notes"`
}
