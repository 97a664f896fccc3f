package domain

import "time"

type Airport struct {
	ID   int64  `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
	City string `json:"city"`
}

type Flight struct {
	ID               int64     `json:"id"`
	FlightNumber     string    `json:"flight_number"`
	DepartureAirport Airport   `json:"departure_airport"`
	ArrivalAirport   Airport   `json:"arrival_airport"`
	DepartureTime    time.Time `json:"departure_time"`
	ArrivalTime      time.Time `json:"arrival_time"`
	Count            int64     `json:"count"`
	LowestFare       *int64    `json:"lowest_fare,omitempty"`
}

type SeatClass struct {
	ID   int64  `json:"id"`
	Type string `json:"type"`
}

type Ticket struct {
	ID                 int64     `json:"id"`
	Flight             Flight    `json:"flight"`
	SeatClass          SeatClass `json:"seat_class"`
	Price              int64     `json:"price"`
	AfterDiscountPrice *int64    `json:"after_discount_price,omitempty"`
	PromoID            *int64    `json:"promo_id,omitempty"`
}

// Fare is the per-passenger price charged for the ticket, discounted when a promo applies.
func (t *Ticket) Fare() int64 {
	if t.PromoID != nil && t.AfterDiscountPrice != nil {
		return *t.AfterDiscountPrice
	}
	return t.Price
}
