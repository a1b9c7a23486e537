package domain

import (
	"fmt"
	"math"
	"strings"
)

// MinimumChargeMinorUnits is the smallest amount the payment processor
// accepts, in minor currency units.
const MinimumChargeMinorUnits = 50

// MinorUnits converts a displayed total into integer minor units, rounding
// half away from zero on the cents boundary and clamping to the processor
// minimum. A total of 12.50 must become exactly 1250.
func MinorUnits(total float64) int64 {
	amount := int64(math.Round(total * 100))
	if amount < MinimumChargeMinorUnits {
		amount = MinimumChargeMinorUnits
	}
	return amount
}

type PaymentIntentRequest struct {
	UserID      int64             `json:"userId"`
	Amount      int64             `json:"amount"`
	Currency    string            `json:"currency"`
	CartID      int64             `json:"cartId"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	Description string            `json:"description,omitempty"`
	CustomerID  string            `json:"customerId,omitempty"`
}

// PaymentIntent is the created intent. ClientSecret is the capability token
// handed to the external payment presenter; it is spent once the intent is
// confirmed or the cart it was derived from changes.
type PaymentIntent struct {
	ClientSecret    string `json:"clientSecret"`
	PaymentIntentID string `json:"paymentIntentId"`
	Amount          int64  `json:"amount"`
	Currency        string `json:"currency"`
	Status          string `json:"status"`
	RequiresAction  bool   `json:"requiresAction"`
}

type ConfirmPaymentRequest struct {
	PaymentIntentID   string `json:"paymentIntentId"`
	PaymentMethodID   string `json:"paymentMethodId"`
	UserID            int64  `json:"userId"`
	CartID            int64  `json:"cartId"`
	SavePaymentMethod bool   `json:"savePaymentMethod,omitempty"`
}

type PaymentConfirmation struct {
	Success        bool   `json:"success"`
	PaymentID      string `json:"paymentId"`
	OrderID        string `json:"orderId,omitempty"`
	ReceiptURL     string `json:"receiptUrl,omitempty"`
	RequiresAction bool   `json:"requiresAction"`
	NextAction     string `json:"nextAction,omitempty"`
}

type PaymentMethod struct {
	ID        string       `json:"id"`
	Type      string       `json:"type"`
	Card      *CardDetails `json:"card"`
	Created   int64        `json:"created"`
	IsDefault bool         `json:"isDefault"`
}

type CardDetails struct {
	Brand    string `json:"brand"`
	Last4    string `json:"last4"`
	ExpMonth int    `json:"expMonth"`
	ExpYear  int    `json:"expYear"`
	Country  string `json:"country,omitempty"`
	Funding  string `json:"funding,omitempty"`
}

// DisplayName renders a payment method for lists, e.g. "Visa •••• 4242".
func (m PaymentMethod) DisplayName() string {
	if m.Type == "card" && m.Card != nil {
		return fmt.Sprintf("%s •••• %s", title(m.Card.Brand), m.Card.Last4)
	}
	return title(strings.ReplaceAll(m.Type, "_", " "))
}

// Expiration renders the card expiry as "M/YY".
func (c CardDetails) Expiration() string {
	year := fmt.Sprintf("%d", c.ExpYear)
	if len(year) > 2 {
		year = year[len(year)-2:]
	}
	return fmt.Sprintf("%d/%s", c.ExpMonth, year)
}

func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
