package payment

import (
	"fmt"
	"strings"
	"time"

	"github.com/Domenick1991/skyticket/internal/domain"
)

type FakePaymentInput struct {
	PaymentMethod  string `json:"paymentMethod"`
	CardNumber     string `json:"cardNumber"`
	CardHolderName string `json:"cardHolderName"`
	CVV            string `json:"cvv"`
	ExpiryDate     string `json:"expiryDate"`
}

// checkoutMethod normalizes a method for the hosted checkout. The provider decides which
// payment types it enables, so any well-formed identifier is passed through.
func checkoutMethod(raw string) (domain.PaymentMethod, error) {
	method := strings.ToLower(strings.TrimSpace(raw))
	if method == "" {
		return "", fmt.Errorf("%w: payment method is required", domain.ErrInvalidRequest)
	}
	for _, r := range method {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '_' {
			return "", domain.ErrInvalidPaymentMethod
		}
	}
	return domain.PaymentMethod(method), nil
}

// parseMethod accepts only the methods the simulated payment flow knows how to settle.
func parseMethod(raw string) (domain.PaymentMethod, error) {
	switch method := domain.PaymentMethod(strings.ToLower(strings.TrimSpace(raw))); method {
	case domain.PaymentMethodCreditCard, domain.PaymentMethodMandiriVA, domain.PaymentMethodGopay:
		return method, nil
	case "":
		return "", fmt.Errorf("%w: payment method is required", domain.ErrInvalidRequest)
	default:
		return "", domain.ErrInvalidPaymentMethod
	}
}

// validateFakePayment checks card details for credit_card. Wallets and virtual accounts need nothing else.
func validateFakePayment(input FakePaymentInput, now time.Time) (domain.PaymentMethod, error) {
	method, err := parseMethod(input.PaymentMethod)
	if err != nil {
		return "", err
	}
	if method != domain.PaymentMethodCreditCard {
		return method, nil
	}

	number := strings.NewReplacer(" ", "", "-", "").Replace(input.CardNumber)
	if len(number) < 12 || len(number) > 19 || !isDigits(number) {
		return "", fmt.Errorf("%w: card number", domain.ErrInvalidPaymentDetails)
	}
	if strings.TrimSpace(input.CardHolderName) == "" {
		return "", fmt.Errorf("%w: card holder name", domain.ErrInvalidPaymentDetails)
	}
	if cvv := strings.TrimSpace(input.CVV); len(cvv) < 3 || len(cvv) > 4 || !isDigits(cvv) {
		return "", fmt.Errorf("%w: cvv", domain.ErrInvalidPaymentDetails)
	}

	expiry, err := time.Parse("01/06", strings.TrimSpace(input.ExpiryDate))
	if err != nil {
		return "", fmt.Errorf("%w: expiry date must be MM/YY", domain.ErrInvalidPaymentDetails)
	}
	// A card stays valid through the last day of its expiry month.
	if !now.Before(expiry.AddDate(0, 1, 0)) {
		return "", fmt.Errorf("%w: card is expired", domain.ErrInvalidPaymentDetails)
	}
	return method, nil
}
