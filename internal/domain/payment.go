package domain

import "time"

type PaymentMethod string

const (
	PaymentMethodCreditCard PaymentMethod = "credit_card"
	PaymentMethodMandiriVA  PaymentMethod = "mandiri_va"
	PaymentMethodGopay      PaymentMethod = "gopay"
)

type Payment struct {
	ID        int64
	BookingID int64
	Name      string
	PaidAt    time.Time
}

// CheckoutRequest is what the payment provider needs to open a checkout session.
type CheckoutRequest struct {
	OrderID       string
	Amount        int64
	Method        string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	FinishURL     string
}

type CheckoutSession struct {
	Token       string
	RedirectURL string
}
