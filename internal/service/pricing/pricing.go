// Package pricing derives booking amounts from ticket fares and passenger composition.
package pricing

// TaxPercent is the booking tax rate applied to the fare subtotal.
const TaxPercent = 10

type Input struct {
	DepartureFare  int64
	ReturnFare     *int64
	Adults         int
	Children       int
	Infants        int
	Donation       bool
	DonationAmount int64
}

type Quote struct {
	FarePassengers int   `json:"fare_passengers"`
	Subtotal       int64 `json:"subtotal"`
	Tax            int64 `json:"tax"`
	Donation       int64 `json:"donation"`
	Total          int64 `json:"total_price"`
}

// Calculate prices a booking. Infants ride free; tax is rounded half up.
func Calculate(in Input) Quote {
	farePassengers := in.Adults + in.Children

	subtotal := in.DepartureFare * int64(farePassengers)
	if in.ReturnFare != nil {
		subtotal += *in.ReturnFare * int64(farePassengers)
	}

	var donation int64
	if in.Donation {
		donation = in.DonationAmount
	}

	tax := Tax(subtotal)
	return Quote{
		FarePassengers: farePassengers,
		Subtotal:       subtotal,
		Tax:            tax,
		Donation:       donation,
		Total:          subtotal + tax + donation,
	}
}

// Tax returns round-half-up(subtotal * 10%).
func Tax(subtotal int64) int64 {
	return (subtotal*TaxPercent + 50) / 100
}
