package payment

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Domenick1991/skyticket/internal/domain"
)

const (
	referencePrefix       = "BOOKING-"
	legacyReferencePrefix = "BOOKING with ID "
)

// OrderReference is the order id sent to the payment provider for a booking.
func OrderReference(bookingID int64, now time.Time) string {
	return fmt.Sprintf("%s%d-%d", referencePrefix, bookingID, now.Unix())
}

// ParseOrderReference extracts the booking id from BOOKING-<id>-<unix> and from the
// older "BOOKING with ID <id>-<millis>" form.
func ParseOrderReference(orderID string) (int64, error) {
	var rest string
	switch {
	case strings.HasPrefix(orderID, legacyReferencePrefix):
		rest = strings.TrimPrefix(orderID, legacyReferencePrefix)
	case strings.HasPrefix(orderID, referencePrefix):
		rest = strings.TrimPrefix(orderID, referencePrefix)
	default:
		return 0, domain.ErrInvalidReference
	}

	idPart, tsPart, ok := strings.Cut(rest, "-")
	if !ok || !isDigits(tsPart) {
		return 0, domain.ErrInvalidReference
	}
	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.ErrInvalidReference
	}
	return id, nil
}

// parseGrossAmount converts a provider amount such as "550000.00" to whole currency units.
func parseGrossAmount(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	whole, frac, _ := strings.Cut(raw, ".")
	if !isDigits(whole) || (frac != "" && !isDigits(frac)) {
		return 0, fmt.Errorf("%w: malformed gross_amount %q", domain.ErrInvalidRequest, raw)
	}
	if strings.Trim(frac, "0") != "" {
		return 0, domain.ErrAmountMismatch
	}
	amount, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: malformed gross_amount %q", domain.ErrInvalidRequest, raw)
	}
	return amount, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
