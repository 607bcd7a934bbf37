package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ErrNotFound is returned by stores when the requested record does not exist.
var ErrNotFound = errors.New("not found")

// RecordType scopes which kind of business record a trigger applies to.
type RecordType string

const (
	RecordOrder    RecordType = "order"
	RecordCustomer RecordType = "customer"
	RecordStock    RecordType = "stock"
)

// Field names the record attribute a trigger evaluates.
type Field string

const (
	FieldDeliveryInDays   Field = "deliveryInDays"
	FieldRemainingBalance Field = "remainingBalance"
	FieldTotalAmount      Field = "totalAmount"
	FieldQuantity         Field = "quantity"
)

// Operator compares an observed value against a trigger threshold.
type Operator string

const (
	OpLessOrEqual    Operator = "<="
	OpLess           Operator = "<"
	OpGreaterOrEqual Operator = ">="
	OpGreater        Operator = ">"
	OpEqual          Operator = "==="
	OpNotEqual       Operator = "!=="
)

// Normalize maps the short equality spellings onto the stored ones.
func (o Operator) Normalize() Operator {
	switch o {
	case "==":
		return OpEqual
	case "!=", "≠":
		return OpNotEqual
	case "≤":
		return OpLessOrEqual
	case "≥":
		return OpGreaterOrEqual
	}
	return o
}

// Compare applies the operator to (value, threshold). Unknown operators never match.
func (o Operator) Compare(value, threshold decimal.Decimal) bool {
	c := value.Cmp(threshold)
	switch o.Normalize() {
	case OpLessOrEqual:
		return c <= 0
	case OpLess:
		return c < 0
	case OpGreaterOrEqual:
		return c >= 0
	case OpGreater:
		return c > 0
	case OpEqual:
		return c == 0
	case OpNotEqual:
		return c != 0
	default:
		return false
	}
}

// Severity drives alert styling only.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
	SeveritySuccess Severity = "success"
)

func (s Severity) Valid() bool {
	switch s {
	case SeverityInfo, SeverityWarning, SeverityError, SeveritySuccess:
		return true
	}
	return false
}

// Recipient specifiers reserved by the resolver.
const (
	RecipientAll       = "all"
	RecipientOwner     = "owner"
	RecipientEmployees = "employees"
)

// Trigger is a single configured rule.
type Trigger struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Enabled         bool            `json:"enabled"`
	Type            RecordType      `json:"type"`
	Condition       Field           `json:"condition"`
	Operator        Operator        `json:"operator"`
	Threshold       decimal.Decimal `json:"threshold"`
	Severity        Severity        `json:"notificationType"`
	TitleTemplate   string          `json:"titleTemplate"`
	MessageTemplate string          `json:"messageTemplate"`
	Recipients      []string        `json:"recipients"`
}

// RecipientSpecifiers returns the trigger recipients, defaulting to everyone.
func (t Trigger) RecipientSpecifiers() []string {
	if len(t.Recipients) == 0 {
		return []string{RecipientAll}
	}
	return t.Recipients
}

// MarshalJSON renders the threshold as a JSON number.
func (t Trigger) MarshalJSON() ([]byte, error) {
	type Alias Trigger
	return json.Marshal(&struct {
		Threshold json.Number `json:"threshold"`
		*Alias
	}{
		Threshold: json.Number(t.Threshold.String()),
		Alias:     (*Alias)(&t),
	})
}

// Policy is the ordered trigger list owned by one account.
type Policy struct {
	OwnerID   string    `json:"ownerId"`
	Triggers  []Trigger `json:"triggers"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// EnabledTriggers returns the enabled triggers in policy order.
func (p Policy) EnabledTriggers() []Trigger {
	var out []Trigger
	for _, t := range p.Triggers {
		if t.Enabled {
			out = append(out, t)
		}
	}
	return out
}

// PolicyUpdate represents the input structure for replacing a policy's triggers.
type PolicyUpdate struct {
	Triggers []Trigger `json:"triggers" binding:"required"`
}

// Validate checks the shape of each trigger. Semantic compatibility of
// field, operator and threshold is left to the evaluator.
func (u PolicyUpdate) Validate() error {
	seen := make(map[string]bool, len(u.Triggers))
	for i, t := range u.Triggers {
		if t.ID == "" || t.Name == "" {
			return fmt.Errorf("trigger %d: id and name are required", i)
		}
		if seen[t.ID] {
			return fmt.Errorf("trigger %d: duplicate id %q", i, t.ID)
		}
		seen[t.ID] = true
		if t.TitleTemplate == "" || t.MessageTemplate == "" {
			return fmt.Errorf("trigger %q: title and message templates are required", t.ID)
		}
		if !t.Severity.Valid() {
			return fmt.Errorf("trigger %q: invalid notification type %q", t.ID, t.Severity)
		}
	}
	return nil
}

// Normalized returns a copy with operators normalised and recipients defaulted.
func (u PolicyUpdate) Normalized() []Trigger {
	out := make([]Trigger, len(u.Triggers))
	for i, t := range u.Triggers {
		t.Operator = t.Operator.Normalize()
		t.Recipients = t.RecipientSpecifiers()
		out[i] = t
	}
	return out
}

// DefaultTriggers is the trigger set given to a policy on first access.
func DefaultTriggers() []Trigger {
	all := []string{RecipientAll}
	return []Trigger{
		{
			ID:              "deliveryReminder2Days",
			Name:            "Delivery Reminder",
			Enabled:         true,
			Type:            RecordOrder,
			Condition:       FieldDeliveryInDays,
			Threshold:       decimal.NewFromInt(2),
			Operator:        OpLessOrEqual,
			Severity:        SeverityInfo,
			TitleTemplate:   "Upcoming Delivery",
			MessageTemplate: "Order for {customerName} ({item}) is scheduled for delivery on {deliveryDate}. Contact: {mobileNo}",
			Recipients:      all,
		},
		{
			ID:              "deliveryDeadline",
			Name:            "Delivery Deadline Today",
			Enabled:         true,
			Type:            RecordOrder,
			Condition:       FieldDeliveryInDays,
			Threshold:       decimal.Zero,
			Operator:        OpEqual,
			Severity:        SeverityWarning,
			TitleTemplate:   "Delivery Due Today",
			MessageTemplate: "Order for {customerName} ({item}, {quantity} units) must be delivered today. Address: {address}",
			Recipients:      all,
		},
		{
			ID:              "deliveryOverdue",
			Name:            "Delivery Overdue",
			Enabled:         true,
			Type:            RecordOrder,
			Condition:       FieldDeliveryInDays,
			Threshold:       decimal.Zero,
			Operator:        OpLess,
			Severity:        SeverityError,
			TitleTemplate:   "Delivery Overdue",
			MessageTemplate: "Order for {customerName} ({item}) was due {days} day(s) ago. Immediate action required!",
			Recipients:      all,
		},
		{
			ID:              "paymentPendingAfterDelivery",
			Name:            "Payment Pending After Delivery",
			Enabled:         true,
			Type:            RecordOrder,
			Condition:       FieldRemainingBalance,
			Threshold:       decimal.Zero,
			Operator:        OpGreater,
			Severity:        SeverityWarning,
			TitleTemplate:   "Payment Pending",
			MessageTemplate: "{customerName} has pending payment of ₹{remainingBalance} (Total: ₹{totalAmount}, Advance: ₹{advanceAmount}). Contact: {mobileNo}",
			Recipients:      all,
		},
		{
			ID:              "highValueOrder",
			Name:            "High Value Order",
			Enabled:         true,
			Type:            RecordOrder,
			Condition:       FieldTotalAmount,
			Threshold:       decimal.NewFromInt(50000),
			Operator:        OpGreaterOrEqual,
			Severity:        SeveritySuccess,
			TitleTemplate:   "High Value Order",
			MessageTemplate: "New high-value order from {customerName} for ₹{totalAmount} ({item}, {quantity} units).",
			Recipients:      all,
		},
		{
			ID:              "largeQuantityOrder",
			Name:            "Large Quantity Order",
			Enabled:         false,
			Type:            RecordOrder,
			Condition:       FieldQuantity,
			Threshold:       decimal.NewFromInt(100),
			Operator:        OpGreaterOrEqual,
			Severity:        SeverityInfo,
			TitleTemplate:   "Large Quantity Order",
			MessageTemplate: "Order from {customerName} includes {quantity} units of {item}.",
			Recipients:      all,
		},
	}
}
