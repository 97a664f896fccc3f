// Package provider talks to the external payment gateway.
package provider

import (
	"context"
	"crypto/sha512"
	"encoding/hex"
	"fmt"

	"github.com/Domenick1991/skyticket/internal/domain"
	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
)

// MidtransCheckout opens Snap checkout sessions.
type MidtransCheckout struct {
	client snap.Client
}

func NewMidtransCheckout(serverKey string, production bool) *MidtransCheckout {
	env := midtrans.Sandbox
	if production {
		env = midtrans.Production
	}

	var client snap.Client
	client.New(serverKey, env)
	return &MidtransCheckout{client: client}
}

func (m *MidtransCheckout) CreateCheckout(ctx context.Context, req domain.CheckoutRequest) (*domain.CheckoutSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resp, snapErr := m.client.CreateTransaction(buildSnapRequest(req))
	if snapErr != nil {
		return nil, fmt.Errorf("snap create transaction: %s", snapErr.GetMessage())
	}
	if resp == nil || resp.Token == "" {
		return nil, fmt.Errorf("snap create transaction: empty response")
	}

	return &domain.CheckoutSession{Token: resp.Token, RedirectURL: resp.RedirectURL}, nil
}

func buildSnapRequest(req domain.CheckoutRequest) *snap.Request {
	snapReq := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  req.OrderID,
			GrossAmt: req.Amount,
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: req.CustomerName,
			Email: req.CustomerEmail,
			Phone: req.CustomerPhone,
		},
		EnabledPayments: []snap.SnapPaymentType{snapPaymentType(req.Method)},
	}
	if req.Method == string(domain.PaymentMethodCreditCard) {
		snapReq.CreditCard = &snap.CreditCardDetails{Secure: true}
	}
	if req.FinishURL != "" {
		snapReq.Callbacks = &snap.Callbacks{Finish: req.FinishURL}
	}
	return snapReq
}

func snapPaymentType(method string) snap.SnapPaymentType {
	if method == string(domain.PaymentMethodMandiriVA) {
		return snap.SnapPaymentType("echannel")
	}
	return snap.SnapPaymentType(method)
}

// Signature computes the signature_key Midtrans attaches to payment notifications.
func Signature(orderID, statusCode, grossAmount, serverKey string) string {
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + serverKey))
	return hex.EncodeToString(sum[:])
}
