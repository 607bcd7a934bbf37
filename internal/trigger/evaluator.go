// Package trigger holds the pure parts of the notification engine: deciding
// whether a trigger matches an order, rendering alert text and resolving who
// receives it.
package trigger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Hirdyansh9/Orderbook/internal/models"
)

// Data is the placeholder data produced for a matched order.
type Data map[string]any

// observer computes the numeric observation for one field. ok is false when
// the order is not eligible for that field.
type observer interface {
	observe(o models.Order, today time.Time, data Data) (value decimal.Decimal, ok bool)
}

type deliveryInDays struct{ loc *time.Location }

func (f deliveryInDays) observe(o models.Order, today time.Time, data Data) (decimal.Decimal, bool) {
	if o.DeliveryStatus != models.DeliveryPending {
		return decimal.Zero, false
	}
	days := DaysUntil(today, o.DeliveryDate, f.loc)
	if days < 0 {
		data["days"] = -days
	} else {
		data["days"] = days
	}
	data["deliveryDate"] = o.DeliveryDate
	return decimal.NewFromInt(days), true
}

type remainingBalance struct{}

// Only delivered orders are chased for payment.
func (remainingBalance) observe(o models.Order, _ time.Time, _ Data) (decimal.Decimal, bool) {
	if o.DeliveryStatus != models.DeliveryDelivered {
		return decimal.Zero, false
	}
	return o.RemainingBalance, true
}

type totalAmount struct{}

func (totalAmount) observe(o models.Order, _ time.Time, _ Data) (decimal.Decimal, bool) {
	return o.TotalAmount, true
}

type quantity struct{}

func (quantity) observe(o models.Order, _ time.Time, _ Data) (decimal.Decimal, bool) {
	return decimal.NewFromInt(o.Quantity), true
}

// Evaluator decides whether a trigger matches an order.
type Evaluator struct {
	loc       *time.Location
	now       func() time.Time
	observers map[models.Field]observer
}

// NewEvaluator builds an evaluator computing calendar days in loc. A nil
// clock means time.Now.
func NewEvaluator(loc *time.Location, now func() time.Time) *Evaluator {
	if loc == nil {
		loc = time.Local
	}
	if now == nil {
		now = time.Now
	}
	return &Evaluator{
		loc: loc,
		now: now,
		observers: map[models.Field]observer{
			models.FieldDeliveryInDays:   deliveryInDays{loc: loc},
			models.FieldRemainingBalance: remainingBalance{},
			models.FieldTotalAmount:      totalAmount{},
			models.FieldQuantity:         quantity{},
		},
	}
}

// Evaluate returns whether t matches o and the template data for the alert.
// Unknown fields and stock triggers never match.
func (e *Evaluator) Evaluate(t models.Trigger, o models.Order) (bool, Data) {
	data := baseData(o)
	if !appliesToOrders(t.Type) {
		return false, data
	}
	obs, ok := e.observers[t.Condition]
	if !ok {
		return false, data
	}
	value, ok := obs.observe(o, e.now(), data)
	if !ok {
		return false, data
	}
	return t.Operator.Compare(value, t.Threshold), data
}

func appliesToOrders(rt models.RecordType) bool {
	return rt == models.RecordOrder || rt == models.RecordCustomer
}

func baseData(o models.Order) Data {
	return Data{
		"id":               o.ID,
		"customerName":     o.CustomerName,
		"item":             o.Item,
		"quantity":         o.Quantity,
		"totalAmount":      o.TotalAmount,
		"advanceAmount":    o.AdvanceAmount,
		"remainingBalance": o.RemainingBalance,
		"address":          o.Address,
		"mobileNo":         o.MobileNo,
	}
}

// DaysUntil returns the signed number of calendar days from today, taken as
// a date in loc, to the calendar date carried by due. due is not moved into
// loc: a DATE column arrives as midnight UTC and shifting it would change
// the day west of UTC. Negative means due is in the past.
func DaysUntil(today, due time.Time, loc *time.Location) int64 {
	ty, tm, td := today.In(loc).Date()
	dy, dm, dd := due.Date()
	from := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	to := time.Date(dy, dm, dd, 0, 0, 0, 0, time.UTC)
	return int64(to.Sub(from) / (24 * time.Hour))
}
